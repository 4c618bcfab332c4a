package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/wtask/chatrelay/internal/chat"
	"github.com/wtask/chatrelay/internal/chat/handler"
	"github.com/wtask/chatrelay/internal/chat/metrics"
	"github.com/wtask/chatrelay/internal/logging"
	"github.com/wtask/chatrelay/pkg/background"
)

const metricsShutdownTimeout = 5 * time.Second

func main() {
	log, err := logging.New(BinaryName, Config.LogLevel, Config.LogFormat, os.Stdout)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		log.Debug().Msgf(format, args...)
	})); err != nil {
		log.Warn().Err(err).Msg("unable to set GOMAXPROCS")
	}
	log.Info().
		Str("version", Version).
		Str("addr", Config.Addr).
		Int("workers", Config.Workers).
		Dur("read_timeout", Config.ReadTimeout).
		Dur("write_timeout", Config.WriteTimeout).
		Int("max_line_size", Config.MaxLineSize).
		Str("metrics_addr", Config.MetricsAddr).
		Msg("started with config")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := metrics.NewRegistry()
	server, err := chat.NewServer(
		Config.Addr,
		chat.WithWorkers(Config.Workers),
		chat.WithLogger(log),
		chat.WithMetrics(registry),
		chat.WithHandler(
			handler.WithReadTimeout(Config.ReadTimeout),
			handler.WithWriteTimeout(Config.WriteTimeout),
			handler.WithMaxLineSize(Config.MaxLineSize),
		),
	)
	if err != nil {
		log.Error().Err(err).Msg("can't start chat server")
		os.Exit(1)
	}

	scope, cancel := background.WithParent(ctx)
	if Config.MetricsAddr != "" {
		serveMetrics(scope, log, registry)
	}
	scope.Go(func(context.Context) {
		if err := server.Run(); !errors.Is(err, chat.ErrServerClosed) {
			log.Error().Err(err).Msg("chat server failed")
		}
	})

	<-ctx.Done()
	log.Info().Msg("got stop signal")
	started := time.Now()
	if err := server.Shutdown(); err != nil {
		log.Warn().Err(err).Msg("chat server shutdown")
	}
	cancel()
	log.Info().Dur("elapsed", time.Since(started)).Msg("chat server stopped, bye")
}

// serveMetrics - exposes metrics over HTTP until scope expires.
func serveMetrics(scope *background.Scope, log zerolog.Logger, registry *metrics.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", registry.Handler())
	srv := &http.Server{
		Addr:              Config.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	scope.Go(func(context.Context) {
		log.Info().Str("addr", srv.Addr).Msg("metrics endpoint is listening")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics endpoint failed")
		}
	})
	scope.Go(func(ctx context.Context) {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("metrics endpoint shutdown")
		}
	})
}
