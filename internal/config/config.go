package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the service settings. Precedence: defaults, then the YAML file
// named by CONFIG_FILE, then environment variables.
type Config struct {
	Port           string
	DataSourceURL  string
	DatasetPath    string
	FetchTimeout   time.Duration
	FetchRetries   int
	DisplayTZ      string
	AllowedOrigins []string
	LogLevel       string
	Environment    string

	Location *time.Location
}

type fileConfig struct {
	Port            *string  `yaml:"port"`
	DataSourceURL   *string  `yaml:"data_source_url"`
	DatasetPath     *string  `yaml:"dataset_path"`
	FetchTimeoutSec *int     `yaml:"fetch_timeout_sec"`
	FetchRetries    *int     `yaml:"fetch_retries"`
	DisplayTZ       *string  `yaml:"display_tz"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
	LogLevel        *string  `yaml:"log_level"`
	Environment     *string  `yaml:"environment"`
}

func defaults() Config {
	return Config{
		Port:           "8080",
		FetchTimeout:   30 * time.Second,
		FetchRetries:   0,
		DisplayTZ:      "Local",
		AllowedOrigins: []string{"*"},
		LogLevel:       "info",
		Environment:    "local",
	}
}

// Load builds and validates the configuration.
func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}

	cfg.Port = envStr("PORT", cfg.Port)
	cfg.DataSourceURL = envStr("DATA_SOURCE_URL", cfg.DataSourceURL)
	cfg.DatasetPath = envStr("DATASET_PATH", cfg.DatasetPath)
	var errs []error
	timeoutSec, err := envInt("FETCH_TIMEOUT_SEC", int(cfg.FetchTimeout/time.Second))
	errs = append(errs, err)
	cfg.FetchTimeout = time.Duration(timeoutSec) * time.Second
	cfg.FetchRetries, err = envInt("FETCH_RETRIES", cfg.FetchRetries)
	errs = append(errs, err)
	cfg.DisplayTZ = envStr("DISPLAY_TZ", cfg.DisplayTZ)
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitList(v)
	}
	cfg.LogLevel = envStr("LOG_LEVEL", cfg.LogLevel)
	cfg.Environment = envStr("ENVIRONMENT", cfg.Environment)

	if err := errors.Join(append(errs, cfg.Validate())...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	setStr(&c.Port, fc.Port)
	setStr(&c.DataSourceURL, fc.DataSourceURL)
	setStr(&c.DatasetPath, fc.DatasetPath)
	if fc.FetchTimeoutSec != nil {
		c.FetchTimeout = time.Duration(*fc.FetchTimeoutSec) * time.Second
	}
	if fc.FetchRetries != nil {
		c.FetchRetries = *fc.FetchRetries
	}
	setStr(&c.DisplayTZ, fc.DisplayTZ)
	if len(fc.AllowedOrigins) > 0 {
		c.AllowedOrigins = fc.AllowedOrigins
	}
	setStr(&c.LogLevel, fc.LogLevel)
	setStr(&c.Environment, fc.Environment)
	return nil
}

// Validate checks the settings and resolves DisplayTZ into Location.
func (c *Config) Validate() error {
	var errs []error
	if c.DataSourceURL == "" && c.DatasetPath == "" {
		errs = append(errs, errors.New("one of DATA_SOURCE_URL or DATASET_PATH is required"))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("fetch timeout must be positive, got %s", c.FetchTimeout))
	}
	if c.FetchRetries < 0 {
		errs = append(errs, fmt.Errorf("fetch retries must not be negative, got %d", c.FetchRetries))
	}
	loc, err := time.LoadLocation(c.DisplayTZ)
	if err != nil {
		errs = append(errs, fmt.Errorf("display time zone: %w", err))
	}
	c.Location = loc
	return errors.Join(errs...)
}

func setStr(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envInt returns fallback when key is unset and an error when it is not an
// integer.
func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fallback, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}
