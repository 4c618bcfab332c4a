package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wtask/chatrelay/internal/config"
	"github.com/wtask/chatrelay/pkg/semver"
)

var (
	// Config - current configuration of the server
	Config *config.Config

	// BinaryName - name of run application binary
	BinaryName = strings.TrimSuffix(filepath.Base(os.Args[0]), filepath.Ext(os.Args[0]))

	// version - injected at build time: -ldflags "-X main.version=1.2.3"
	version = "0.4.0"

	// Version - app version fingerprint
	Version = parseVersion(version)
)

func parseVersion(s string) string {
	v, err := semver.Parse(s)
	if err != nil {
		return semver.V{PreRelease: "unknown"}.String()
	}
	return v.String()
}

func init() {
	out := flag.CommandLine.Output()
	printUsage := func() {
		fmt.Fprintf(out, "Launch chat relay server over TCP\n\n\t%s [options]\nOptions:\n\n", BinaryName)
		flag.PrintDefaults()
		fmt.Fprint(out, "\nEnvironment variables CHAT_ADDR, CHAT_WORKERS, CHAT_READ_TIMEOUT, CHAT_WRITE_TIMEOUT,\n")
		fmt.Fprint(out, "CHAT_MAX_LINE_SIZE, CHAT_METRICS_ADDR, LOG_LEVEL, LOG_FORMAT set defaults for the options.\n\n")
	}
	printError := func(msg string) {
		fmt.Fprintf(out, "%s (v%s) error:\n\n\t%s\n", BinaryName, Version, msg)
	}

	cfg, err := config.Load()
	if err != nil {
		printError(err.Error())
		os.Exit(1)
	}

	help, printVersion := false, false
	flag.BoolVar(&help, "help", false, "Print usage help")
	flag.BoolVar(&printVersion, "version", false, "Print version")
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "Number of connections served at the same time")
	flag.DurationVar(&cfg.ReadTimeout, "read-timeout", cfg.ReadTimeout, "Idle duration before client is disconnected, 0 disables timeout")
	flag.DurationVar(&cfg.WriteTimeout, "write-timeout", cfg.WriteTimeout, "Limit for writing single response, 0 disables timeout")
	flag.IntVar(&cfg.MaxLineSize, "max-line-size", cfg.MaxLineSize, "Max request line size in bytes")
	flag.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Listen address of Prometheus metrics endpoint, empty disables it")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	flag.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: json, pretty")

	flag.Parse()

	if help {
		printUsage()
		os.Exit(0)
	}
	if printVersion {
		fmt.Fprintln(out, BinaryName, Version)
		os.Exit(0)
	}

	if err := cfg.Validate(); err != nil {
		printError(err.Error())
		os.Exit(1)
	}
	Config = cfg
}
