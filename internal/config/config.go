// Package config loads chat server configuration from environment and optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

// DefaultEnvFile - file read by Load when no files are given. It is optional.
const DefaultEnvFile = ".env"

var (
	// ErrParse - environment value can not be parsed into config field.
	ErrParse = errors.New("config.Load: unable to parse environment")

	// ErrInvalid - config values are out of allowed range.
	ErrInvalid = errors.New("config.Load: invalid configuration")
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// hostname_port does not accept port 0, which is fine for listener
	err := v.RegisterValidation("listen_addr", func(fl validator.FieldLevel) bool {
		return isListenAddr(v, fl.Field().String())
	})
	if err != nil {
		panic(err)
	}
	return v
}

// isListenAddr - reports whether addr is [host]:port with port in 0..65535.
func isListenAddr(v *validator.Validate, addr string) bool {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	if _, err := strconv.ParseUint(port, 10, 16); err != nil {
		return false
	}
	return host == "" || v.Var(host, "ip|hostname_rfc1123") == nil
}

// Config - chat server configuration.
// Priority: environment variables > .env file > defaults.
type Config struct {
	// Addr - listen address of chat server, port 0 picks ephemeral port
	Addr string `env:"CHAT_ADDR" envDefault:"127.0.0.1:20000" validate:"required,listen_addr"`
	// Workers - number of connections served at the same time
	Workers int `env:"CHAT_WORKERS" envDefault:"4" validate:"min=1"`
	// ReadTimeout - idle period before client is disconnected, zero means no timeout
	ReadTimeout time.Duration `env:"CHAT_READ_TIMEOUT" envDefault:"0s" validate:"min=0s"`
	// WriteTimeout - limit for writing single response, zero means no timeout
	WriteTimeout time.Duration `env:"CHAT_WRITE_TIMEOUT" envDefault:"0s" validate:"min=0s"`
	// MaxLineSize - limit for request line in bytes
	MaxLineSize int `env:"CHAT_MAX_LINE_SIZE" envDefault:"65536" validate:"min=16"`
	// MetricsAddr - listen address of metrics endpoint, empty value disables it
	MetricsAddr string `env:"CHAT_METRICS_ADDR" validate:"omitempty,listen_addr"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json" validate:"oneof=json pretty"`
}

// Load - reads given .env files (DefaultEnvFile if it exists, when none is given),
// then process environment on top of them.
func Load(files ...string) (*Config, error) {
	fileEnv, err := readEnvFiles(files...)
	if err != nil {
		return nil, err
	}
	return Parse(lo.Assign(fileEnv, environ()))
}

// Parse - builds config from environment map and validates it.
func Parse(environment map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environment}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate - checks config values, it should be called again after overriding values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

func readEnvFiles(files ...string) (map[string]string, error) {
	if len(files) == 0 {
		if _, err := os.Stat(DefaultEnvFile); errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		files = []string{DefaultEnvFile}
	}
	values, err := godotenv.Read(files...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return values, nil
}

func environ() map[string]string {
	result := map[string]string{}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			result[k] = v
		}
	}
	return result
}
