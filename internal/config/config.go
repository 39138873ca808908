// Package config loads and validates application configuration from a YAML
// file, a .env file, and environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App      App      `mapstructure:"app"`
	Database Database `mapstructure:"database"`
	News     News     `mapstructure:"news"`
	AI       AI       `mapstructure:"ai"`
	Email    Email    `mapstructure:"email"`
	Cron     Cron     `mapstructure:"cron"`
	Server   Server   `mapstructure:"server"`
}

// App holds general application configuration.
type App struct {
	LogLevel string `mapstructure:"log_level"`
}

// Database holds the relational store configuration. The URL is the only
// hard-required setting in the whole config.
type Database struct {
	URL      string `mapstructure:"url"`
	AdminURL string `mapstructure:"admin_url"` // Optional elevated connection for migrations
}

// News holds the news-search backend configuration.
type News struct {
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url"`
	PageSize int    `mapstructure:"page_size"`
	Timeout  string `mapstructure:"timeout"`
}

// AI holds the classification backend configuration.
type AI struct {
	Gemini Gemini `mapstructure:"gemini"`
}

// Gemini holds Google Gemini configuration.
type Gemini struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	Timeout string `mapstructure:"timeout"`
}

// Email holds the digest delivery configuration.
type Email struct {
	ResendAPIKey string `mapstructure:"resend_api_key"`
	FromAddress  string `mapstructure:"from_address"`
	FromName     string `mapstructure:"from_name"`
	Timeout      string `mapstructure:"timeout"`
}

// Cron holds the shared secret that gates the trigger endpoints.
type Cron struct {
	Secret string `mapstructure:"secret"`
}

// Server holds HTTP server configuration.
type Server struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

var globalConfig *Config

// Load loads the configuration from the given file (or the default search
// path), layering .env and environment variables on top.
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".signalhound")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary.
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// Reset clears the cached configuration. Intended for tests.
func Reset() {
	globalConfig = nil
	viper.Reset()
}

// setDefaults sets default configuration values.
func setDefaults() {
	viper.SetDefault("app.log_level", "info")

	viper.SetDefault("news.base_url", "https://newsapi.org/v2")
	viper.SetDefault("news.page_size", 20)
	viper.SetDefault("news.timeout", "30s")

	viper.SetDefault("ai.gemini.model", "gemini-2.0-flash")
	viper.SetDefault("ai.gemini.timeout", "45s")

	viper.SetDefault("email.from_address", "noreply@signalhound.dev")
	viper.SetDefault("email.from_name", "Competitor Intel")
	viper.SetDefault("email.timeout", "30s")

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 15*time.Second)
	viper.SetDefault("server.write_timeout", 120*time.Second)
}

// bindEnvironmentVariables maps well-known environment variables onto viper keys.
func bindEnvironmentVariables() {
	bindEnvKeys("database.url", []string{
		"DATABASE_URL",
		"POSTGRES_URL",
	})

	bindEnvKeys("database.admin_url", []string{
		"DATABASE_ADMIN_URL",
	})

	bindEnvKeys("news.api_key", []string{
		"NEWS_API_KEY",
		"NEWSAPI_KEY",
	})

	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	bindEnvKeys("email.resend_api_key", []string{
		"RESEND_API_KEY",
	})

	bindEnvKeys("email.from_address", []string{
		"EMAIL_FROM_ADDRESS",
	})

	bindEnvKeys("cron.secret", []string{
		"CRON_SECRET",
	})

	bindEnvKeys("app.log_level", []string{
		"LOG_LEVEL",
	})
}

// bindEnvKeys binds the first found environment variable to a viper key.
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// validateConfig enforces the startup contract: storage is mandatory, every
// external backend is optional and degrades at the component that uses it.
func validateConfig(config *Config) error {
	var errors []string

	if config.Database.URL == "" {
		errors = append(errors, "database URL is required. Set DATABASE_URL environment variable or database.url in config file")
	}

	if config.News.PageSize < 1 || config.News.PageSize > 100 {
		errors = append(errors, fmt.Sprintf("news.page_size must be between 1 and 100, got %d", config.News.PageSize))
	}

	for key, raw := range map[string]string{
		"news.timeout":      config.News.Timeout,
		"ai.gemini.timeout": config.AI.Gemini.Timeout,
		"email.timeout":     config.Email.Timeout,
	} {
		if raw == "" {
			continue
		}
		if _, err := time.ParseDuration(raw); err != nil {
			errors = append(errors, fmt.Sprintf("%s is not a valid duration: %q", key, raw))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Duration parses a configured duration string, falling back when unset or invalid.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

// Convenience getters for commonly used configuration values
func GetDatabaseURL() string  { return Get().Database.URL }
func GetNewsAPIKey() string   { return Get().News.APIKey }
func GetGeminiAPIKey() string { return Get().AI.Gemini.APIKey }
func GetCronSecret() string   { return Get().Cron.Secret }
