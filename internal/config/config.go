package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"github.com/jgtann/gdp-dashboard/internal/dataprocessing"
	apperrors "github.com/jgtann/gdp-dashboard/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Data      DataConfig      `yaml:"data" envconfig:"DATA"`
	Chart     ChartConfig     `yaml:"chart" envconfig:"CHART"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST"`
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// DataConfig describes the observation table source
type DataConfig struct {
	// Source is a csv/xlsx path or sheets:<spreadsheetID>/<range>
	Source          string `yaml:"source" envconfig:"SOURCE"`
	DuplicatePolicy string `yaml:"duplicate_policy" envconfig:"DUPLICATE_POLICY"`
	// DataDir is scanned for selectable sources
	DataDir               string `yaml:"data_dir" envconfig:"DIR"`
	SheetsCredentialsFile string `yaml:"sheets_credentials_file" envconfig:"SHEETS_CREDENTIALS_FILE"`
	SheetsAPIKey          string `yaml:"sheets_api_key" envconfig:"SHEETS_API_KEY"`
	SheetsEndpoint        string `yaml:"sheets_endpoint" envconfig:"SHEETS_ENDPOINT"`
	// Preload loads Source before the server starts accepting requests
	Preload bool `yaml:"preload" envconfig:"PRELOAD"`
}

// SheetsConfig converts the Sheets settings for the reader
func (d DataConfig) SheetsConfig() dataprocessing.SheetsConfig {
	return dataprocessing.SheetsConfig{
		CredentialsFile: d.SheetsCredentialsFile,
		APIKey:          d.SheetsAPIKey,
		Endpoint:        d.SheetsEndpoint,
	}
}

// Policy returns the parsed duplicate policy. validate has already checked it.
func (d DataConfig) Policy() dataprocessing.DuplicatePolicy {
	p, _ := dataprocessing.ParseDuplicatePolicy(d.DuplicatePolicy)
	return p
}

// ChartConfig contains chart rendering settings
type ChartConfig struct {
	Width         int           `yaml:"width" envconfig:"WIDTH"`
	Height        int           `yaml:"height" envconfig:"HEIGHT"`
	Theme         string        `yaml:"theme" envconfig:"THEME"`
	RenderTimeout time.Duration `yaml:"render_timeout" envconfig:"RENDER_TIMEOUT"`
}

// TelemetryConfig contains OpenTelemetry settings
type TelemetryConfig struct {
	Enabled      bool   `yaml:"enabled" envconfig:"ENABLED"`
	ServiceName  string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	StdoutTraces bool   `yaml:"stdout_traces" envconfig:"STDOUT_TRACES"`
	Prometheus   bool   `yaml:"prometheus" envconfig:"PROMETHEUS"`
	Environment  string `yaml:"environment" envconfig:"ENVIRONMENT"`
}

// Load loads configuration from the default file locations and the
// environment
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom loads configuration from path (skipped when empty) and the
// environment. Environment variables take precedence over the file.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg; absent keys keep their values
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.UnmarshalStrict(data, cfg)
}

// Validate checks the configuration and normalizes enumerated values. A
// failure is a config *apperrors.AppError wrapping the first problem found.
func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return apperrors.NewConfigError("invalid configuration", err)
	}
	return nil
}

func (c *Config) validate() error {
	// port 0 listens on a free port
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified when CORS is enabled")
	}
	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive")
	}

	c.Logging.Level = strings.ToLower(c.Logging.Level)
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}
	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid log output %q: must be console, file or both", c.Logging.Output)
	}
	if c.Logging.Format != "json" {
		// Only the JSON handler is supported.
		c.Logging.Format = "json"
	}
	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogFile
	}

	if _, err := dataprocessing.ParseDuplicatePolicy(c.Data.DuplicatePolicy); err != nil {
		return err
	}

	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		return fmt.Errorf("chart width and height must be positive")
	}
	if c.Chart.RenderTimeout <= 0 {
		c.Chart.RenderTimeout = DefaultRenderTimeout
	}
	return nil
}

// getConfigFilePath returns the path to the config file, or "" when none exists
func getConfigFilePath() string {
	if p := os.Getenv(EnvConfigFile); p != "" {
		return p
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            DefaultPort,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  DefaultRequestTimeout,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     50,
				Burst:   100,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: DefaultLogFile,
		},
		Data: DataConfig{
			Source:          DefaultSource,
			DuplicatePolicy: string(dataprocessing.DuplicateReject),
			DataDir:         DefaultDataDir,
		},
		Chart: ChartConfig{
			Width:         DefaultChartWidth,
			Height:        DefaultChartHeight,
			Theme:         DefaultChartTheme,
			RenderTimeout: DefaultRenderTimeout,
		},
		Telemetry: TelemetryConfig{
			Enabled:     true,
			ServiceName: "accuracy-dashboard",
			Prometheus:  true,
			Environment: "development",
		},
	}
}
