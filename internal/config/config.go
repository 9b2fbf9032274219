package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config aggregates all runtime settings required by the application.
type Config struct {
	AppName string `env:"APP_NAME" validate:"required"`
	Store   StoreConfig
	Photo   PhotoConfig
	Context ContextConfig
	Logger  LoggerConfig
}

type StoreConfig struct {
	BaseURL        string        `env:"STORE_BASE_URL" validate:"required,url"`
	RequestTimeout time.Duration `env:"STORE_REQUEST_TIMEOUT" validate:"gt=0"`
	MaxConns       int           `env:"STORE_MAX_CONNS" validate:"gte=0"`
}

type PhotoConfig struct {
	MaxWidth int `env:"PHOTO_MAX_WIDTH" validate:"gte=16,lte=8192"`
	Quality  int `env:"PHOTO_QUALITY" validate:"gte=1,lte=100"`
}

type ContextConfig struct {
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
}

type LoggerConfig struct {
	Level    string `env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	Encoding string `env:"LOG_ENCODING" validate:"oneof=json console"`
}

// Option adjusts a loaded configuration before it is validated, e.g. with
// command line overrides.
type Option func(*Config)

// Load reads configuration from environment variables, optionally seeded from
// envFile, applies opts and validates the result. An empty envFile tries
// ./.env and ignores its absence.
func Load(envFile string, opts ...Option) (*Config, error) {
	if envFile == "" {
		_ = godotenv.Load(".env")
	} else if err := godotenv.Load(envFile); err != nil {
		return nil, fmt.Errorf("load env file %s: %w", envFile, err)
	}

	cfg := &Config{
		AppName: getString("APP_NAME", "rentalctl"),
		Store: StoreConfig{
			BaseURL:        strings.TrimSpace(os.Getenv("STORE_BASE_URL")),
			RequestTimeout: getDuration("STORE_REQUEST_TIMEOUT", 10*time.Second),
			MaxConns:       getInt("STORE_MAX_CONNS", 8),
		},
		Photo: PhotoConfig{
			MaxWidth: getInt("PHOTO_MAX_WIDTH", 1024),
			Quality:  getInt("PHOTO_QUALITY", 80),
		},
		Context: ContextConfig{
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 5*time.Second),
		},
		Logger: LoggerConfig{
			Level:    strings.ToLower(getString("LOG_LEVEL", "warn")),
			Encoding: getString("LOG_ENCODING", "console"),
		},
	}

	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// WithStoreURL overrides STORE_BASE_URL when url is not empty.
func WithStoreURL(url string) Option {
	return func(c *Config) {
		if url = strings.TrimSpace(url); url != "" {
			c.Store.BaseURL = url
		}
	}
}

// WithLogLevel overrides LOG_LEVEL when level is not empty.
func WithLogLevel(level string) Option {
	return func(c *Config) {
		if level != "" {
			c.Logger.Level = strings.ToLower(level)
		}
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report env variable names instead of Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// Validate checks every setting and reports all violations at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "url":
		return fmt.Sprintf("%s must be an absolute URL, got %q", fe.Field(), fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", fe.Field(), fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s fails %s=%s (got %v)", fe.Field(), fe.Tag(), fe.Param(), fe.Value())
	}
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}
