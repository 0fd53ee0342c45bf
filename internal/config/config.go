package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/username/sithub-client/internal/preferences"
)

// Config represents application configuration
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Display     DisplayConfig     `mapstructure:"display"`
	Preferences PreferencesConfig `mapstructure:"preferences"`
	Log         LogConfig         `mapstructure:"log"`
	Watch       WatchConfig       `mapstructure:"watch"`
}

// ServerConfig points at the SitHub server
type ServerConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout string `mapstructure:"timeout"`
}

// AuthConfig holds local login credentials
type AuthConfig struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

// DisplayConfig controls date rendering
type DisplayConfig struct {
	Locale string `mapstructure:"locale"` // empty: taken from LC_ALL / LC_TIME / LANG
}

// PreferencesConfig selects the preference storage backend
type PreferencesConfig struct {
	Backend string `mapstructure:"backend"` // memory, file or sqlite
	Path    string `mapstructure:"path"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// WatchConfig represents watch mode configuration
type WatchConfig struct {
	Interval string `mapstructure:"interval"`
}

// Load loads configuration from file, a .env file and SITHUB_* environment
// variables. With an empty configPath a missing config file is not an error.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.sithub-client")
		v.AddConfigPath("/etc/sithub-client")
	}

	v.SetEnvPrefix("SITHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.ExpandEnvVars()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// setDefaults registers every key so AutomaticEnv can override it
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.base_url", "http://127.0.0.1:9900")
	v.SetDefault("server.timeout", "30s")
	v.SetDefault("auth.email", "")
	v.SetDefault("auth.password", "")
	v.SetDefault("display.locale", "")
	v.SetDefault("preferences.backend", preferences.BackendFile)
	v.SetDefault("preferences.path", "")
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "warn")
	v.SetDefault("watch.interval", "1m")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.BaseURL == "" {
		return fmt.Errorf("server.base_url is required")
	}
	if !strings.HasPrefix(c.Server.BaseURL, "http://") && !strings.HasPrefix(c.Server.BaseURL, "https://") {
		return fmt.Errorf("server.base_url must start with http:// or https://, got '%s'", c.Server.BaseURL)
	}

	switch c.Preferences.Backend {
	case preferences.BackendMemory, preferences.BackendFile, preferences.BackendSQLite:
	default:
		return fmt.Errorf("preferences.backend must be 'memory', 'file' or 'sqlite', got '%s'", c.Preferences.Backend)
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be 'debug', 'info', 'warn' or 'error', got '%s'", c.Log.Level)
	}

	if (c.Auth.Email == "") != (c.Auth.Password == "") {
		return fmt.Errorf("auth.email and auth.password must be set together")
	}

	return nil
}

// GetTimeout returns the HTTP request timeout
func (c *ServerConfig) GetTimeout() time.Duration {
	if c.Timeout == "" {
		return 30 * time.Second
	}
	duration, err := time.ParseDuration(c.Timeout)
	if err != nil || duration <= 0 {
		return 30 * time.Second
	}
	return duration
}

// GetInterval returns the watch polling interval
func (c *WatchConfig) GetInterval() time.Duration {
	if c.Interval == "" {
		return time.Minute
	}
	duration, err := time.ParseDuration(c.Interval)
	if err != nil || duration <= 0 {
		return time.Minute
	}
	return duration
}

// GetPath returns the preference storage path, defaulting to a file under
// the user config directory
func (c *PreferencesConfig) GetPath() string {
	if c.Path != "" {
		return c.Path
	}
	name := "preferences.json"
	if c.Backend == preferences.BackendSQLite {
		name = "preferences.db"
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return name
	}
	return filepath.Join(dir, "sithub-client", name)
}

// HasCredentials reports whether login credentials are configured
func (c *AuthConfig) HasCredentials() bool {
	return c.Email != "" && c.Password != ""
}

// ExpandEnvVars expands environment variables in config strings
func (c *Config) ExpandEnvVars() {
	c.Auth.Email = os.ExpandEnv(c.Auth.Email)
	c.Auth.Password = os.ExpandEnv(c.Auth.Password)
	c.Preferences.Path = os.ExpandEnv(c.Preferences.Path)
	c.Log.File = os.ExpandEnv(c.Log.File)
}
