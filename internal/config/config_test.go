package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func loadFromTempFile(t *testing.T, contents string) (*Config, error) {
	t.Helper()
	Reset()
	t.Cleanup(Reset)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return Load(path)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	_, err := loadFromTempFile(t, "app:\n  log_level: debug\n")
	if err == nil {
		t.Fatal("Expected an error when database URL is missing")
	}
	if !strings.Contains(err.Error(), "database URL is required") {
		t.Errorf("Expected database URL error, got: %v", err)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := loadFromTempFile(t, "database:\n  url: postgres://localhost/signalhound\n")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.News.PageSize != 20 {
		t.Errorf("Expected default page size 20, got %d", cfg.News.PageSize)
	}
	if cfg.News.BaseURL != "https://newsapi.org/v2" {
		t.Errorf("Unexpected default news base URL: %s", cfg.News.BaseURL)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.App.LogLevel != "info" {
		t.Errorf("Expected default log level info, got %s", cfg.App.LogLevel)
	}
}

func TestLoadRejectsBadDurations(t *testing.T) {
	_, err := loadFromTempFile(t, `
database:
  url: postgres://localhost/signalhound
news:
  timeout: soon
`)
	if err == nil {
		t.Fatal("Expected an error for an unparsable timeout")
	}
	if !strings.Contains(err.Error(), "news.timeout") {
		t.Errorf("Expected news.timeout in error, got: %v", err)
	}
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("CRON_SECRET", "s3cret")
	t.Setenv("NEWS_API_KEY", "newskey")

	cfg, err := loadFromTempFile(t, "database:\n  url: postgres://localhost/signalhound\n")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Cron.Secret != "s3cret" {
		t.Errorf("Expected cron secret from environment, got %q", cfg.Cron.Secret)
	}
	if cfg.News.APIKey != "newskey" {
		t.Errorf("Expected news API key from environment, got %q", cfg.News.APIKey)
	}
}

func TestDurationHelper(t *testing.T) {
	if got := Duration("45s", time.Minute); got != 45*time.Second {
		t.Errorf("Expected 45s, got %v", got)
	}
	if got := Duration("", time.Minute); got != time.Minute {
		t.Errorf("Expected fallback for empty value, got %v", got)
	}
	if got := Duration("bogus", time.Minute); got != time.Minute {
		t.Errorf("Expected fallback for invalid value, got %v", got)
	}
}
