package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"go.uber.org/zap/zapcore"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Analysis AnalysisConfig
	Session  SessionConfig
	Render   RenderConfig
	Proxy    ProxyConfig
	Log      LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Environment     string        `mapstructure:"environment"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// AnalysisConfig holds the remote analysis service configuration
type AnalysisConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	EndpointPath  string        `mapstructure:"endpoint_path"`
	Timeout       time.Duration `mapstructure:"timeout"`         // 0 = no timeout
	RatePerSecond float64       `mapstructure:"rate_per_second"` // 0 = unlimited
}

// SessionConfig holds browser session configuration
type SessionConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	CookieName      string        `mapstructure:"cookie_name"`
}

// RenderConfig holds page rendering configuration
type RenderConfig struct {
	FallbackImage   string        `mapstructure:"fallback_image"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

// ProxyConfig holds the development proxy configuration
type ProxyConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Target  string `mapstructure:"target"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/instafinder/")

	v.SetEnvPrefix("FINDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.shutdown_timeout", "10s")

	// Analysis service defaults
	v.SetDefault("analysis.base_url", "http://localhost:8000")
	v.SetDefault("analysis.endpoint_path", "/api/process-instagram")
	v.SetDefault("analysis.timeout", "0s")
	v.SetDefault("analysis.rate_per_second", 0)

	// Session defaults
	v.SetDefault("session.ttl", "30m")
	v.SetDefault("session.cleanup_interval", "1m")
	v.SetDefault("session.cookie_name", "finder_session")

	// Render defaults
	v.SetDefault("render.fallback_image", "/static/fallback.svg")
	v.SetDefault("render.refresh_interval", "2s")

	// Proxy defaults
	v.SetDefault("proxy.enabled", false)
	v.SetDefault("proxy.target", "http://localhost:8000")

	v.SetDefault("log.level", "info")
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.Server.Environment {
	case "development", "production", "test":
	default:
		return fmt.Errorf("environment must be 'development', 'production' or 'test', got: %s", config.Server.Environment)
	}

	if err := validateHTTPURL(config.Analysis.BaseURL); err != nil {
		return fmt.Errorf("analysis base URL %w (set FINDER_ANALYSIS_BASE_URL)", err)
	}

	if config.Analysis.Timeout < 0 {
		return fmt.Errorf("analysis timeout must not be negative, got: %s", config.Analysis.Timeout)
	}

	if config.Analysis.RatePerSecond < 0 {
		return fmt.Errorf("analysis rate must not be negative, got: %v", config.Analysis.RatePerSecond)
	}

	if config.Session.TTL <= 0 {
		return fmt.Errorf("session TTL must be positive, got: %s", config.Session.TTL)
	}

	if config.Session.CookieName == "" {
		return fmt.Errorf("session cookie name is required")
	}

	if config.Proxy.Enabled {
		if err := validateHTTPURL(config.Proxy.Target); err != nil {
			return fmt.Errorf("proxy target %w (set FINDER_PROXY_TARGET)", err)
		}
	}

	if _, err := zapcore.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	return nil
}

func validateHTTPURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("is required")
	}
	parsed, err := url.Parse(raw)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("must be an http(s) URL, got: %s", raw)
	}
	return nil
}

// loadEnvFile loads ./.env into the process environment if it exists.
// Variables that are already set win over the file.
func loadEnvFile() error {
	if err := gotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
