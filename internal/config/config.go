package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

const (
	envPrefix     = "DASHBOARD"
	configFileEnv = "DASHBOARD_CONFIG_FILE"
)

type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Data     DataConfig     `yaml:"data" envconfig:"DATA"`
	Logger   LoggerConfig   `yaml:"logger" envconfig:"LOG"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Report   ReportConfig   `yaml:"report" envconfig:"REPORT"`
	Tracing  TracingConfig  `yaml:"tracing" envconfig:"TRACING"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST" default:"localhost"`
	Port            int           `yaml:"port" envconfig:"PORT" default:"8084"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

type DataConfig struct {
	File        string        `yaml:"file" envconfig:"FILE" default:"sales.xlsx"`
	Sheet       string        `yaml:"sheet" envconfig:"SHEET"`
	LoadTimeout time.Duration `yaml:"load_timeout" envconfig:"LOAD_TIMEOUT" default:"30s"`
}

type LoggerConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format string `yaml:"format" envconfig:"FORMAT" default:"json"`
}

type SecurityConfig struct {
	EnableRateLimit bool     `yaml:"enable_rate_limit" envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	RateLimitRPS    int      `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS" default:"100"`
	RateLimitBurst  int      `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST" default:"10"`
	AllowedOrigins  []string `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8084"`
	TrustedProxies  []string `yaml:"trusted_proxies" envconfig:"TRUSTED_PROXIES" default:"127.0.0.1"`
	MaxUploadBytes  int64    `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" default:"33554432"`
}

type ReportConfig struct {
	TopN          int    `yaml:"top_n" envconfig:"TOP_N" default:"5"`
	ExportTopN    int    `yaml:"export_top_n" envconfig:"EXPORT_TOP_N" default:"20"`
	HistogramBins int    `yaml:"histogram_bins" envconfig:"HISTOGRAM_BINS" default:"30"`
	Title         string `yaml:"title" envconfig:"TITLE" default:"Sales Analytics Report"`
}

type TracingConfig struct {
	Enabled  bool   `yaml:"enabled" envconfig:"ENABLED" default:"false"`
	Exporter string `yaml:"exporter" envconfig:"EXPORTER" default:"stdout"`
}

// Load reads configuration from DASHBOARD_* environment variables. When
// DASHBOARD_CONFIG_FILE names a YAML file, values present in the file
// override the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if path := os.Getenv(configFileEnv); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Data.File == "" {
		return fmt.Errorf("data file path cannot be empty")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.Logger.Level) {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.Logger.Level, strings.Join(validLogLevels, ", "))
	}

	validLogFormats := []string{"json", "text"}
	if !slices.Contains(validLogFormats, c.Logger.Format) {
		return fmt.Errorf("invalid log format %q, must be one of: %s", c.Logger.Format, strings.Join(validLogFormats, ", "))
	}

	if c.Security.RateLimitRPS <= 0 {
		return fmt.Errorf("rate limit RPS must be positive")
	}

	if c.Security.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit burst must be positive")
	}

	if c.Security.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive")
	}

	if c.Report.TopN <= 0 || c.Report.ExportTopN <= 0 {
		return fmt.Errorf("report top N values must be positive")
	}

	if c.Report.HistogramBins <= 0 {
		return fmt.Errorf("histogram bins must be positive")
	}

	validExporters := []string{"stdout", "none"}
	if !slices.Contains(validExporters, c.Tracing.Exporter) {
		return fmt.Errorf("invalid trace exporter %q, must be one of: %s", c.Tracing.Exporter, strings.Join(validExporters, ", "))
	}

	return nil
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
