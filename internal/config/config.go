// Package config loads application configuration from a YAML file with
// environment variable overrides. Secrets live in .env locally and in real
// env vars in production.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Site      SiteConfig      `yaml:"site"`
	Mail      MailConfig      `yaml:"mail"`
	Events    EventsConfig    `yaml:"events"`
	Redis     RedisConfig     `yaml:"redis"`
	Broadcast BroadcastConfig `yaml:"broadcast"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the listen host, honoring container environments where the
// server must bind all interfaces.
func (c ServerConfig) GetHost() string {
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// DatabaseConfig holds the subscriber store connection settings.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// SiteConfig describes the public website this service backs. The URL scopes
// CORS and is the base for verification/unsubscribe links; the link prefix is
// the site's localized route segment (the site serves /en/... routes).
type SiteConfig struct {
	Name       string `yaml:"name"`
	URL        string `yaml:"url"`
	LinkPrefix string `yaml:"link_prefix"`
	AdminKey   string `yaml:"admin_key"`
}

// VerifyURL builds the emailed verification link for a token.
func (c SiteConfig) VerifyURL(token string) string {
	return c.URL + c.LinkPrefix + "/verify?token=" + token
}

// UnsubscribeURL builds the emailed unsubscribe link for a token.
func (c SiteConfig) UnsubscribeURL(token string) string {
	return c.URL + c.LinkPrefix + "/unsubscribe?token=" + token
}

// MailConfig holds transactional email provider settings. With no API key
// (and provider "resend") the mailer runs in dev mode: nothing is sent and
// links are logged instead.
type MailConfig struct {
	Provider       string `yaml:"provider"` // "resend" (default) or "ses"
	ResendAPIKey   string `yaml:"resend_api_key"`
	From           string `yaml:"from"`
	SESRegion      string `yaml:"ses_region"`
	SESAccessKey   string `yaml:"ses_access_key"`
	SESSecretKey   string `yaml:"ses_secret_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured send timeout as a duration.
func (c MailConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// EventsConfig holds the public event feed settings.
type EventsConfig struct {
	BaseURL         string `yaml:"base_url"`
	StartYear       int    `yaml:"start_year"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
}

// CacheTTL returns the feed cache TTL as a duration.
func (c EventsConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// RedisConfig holds the optional Redis cache settings. Empty URL disables
// caching entirely.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// BroadcastConfig holds update-broadcast settings.
type BroadcastConfig struct {
	FallbackLink string `yaml:"fallback_link"`
	Workers      int    `yaml:"workers"`
}

// Load reads and parses the configuration file, filling in defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Site.Name == "" {
		cfg.Site.Name = "Tech Moncton"
	}
	if cfg.Site.URL == "" {
		cfg.Site.URL = "http://localhost:4321"
	}
	if cfg.Site.LinkPrefix == "" {
		cfg.Site.LinkPrefix = "/en"
	}
	if cfg.Mail.Provider == "" {
		cfg.Mail.Provider = "resend"
	}
	if cfg.Mail.From == "" {
		cfg.Mail.From = "Tech Moncton <noreply@monctontechhive.ca>"
	}
	if cfg.Mail.TimeoutSeconds == 0 {
		cfg.Mail.TimeoutSeconds = 30
	}
	if cfg.Mail.SESRegion == "" {
		cfg.Mail.SESRegion = "ca-central-1"
	}
	if cfg.Events.BaseURL == "" {
		cfg.Events.BaseURL = "https://raw.githubusercontent.com/TechMoncton/Meetups/main"
	}
	if cfg.Events.StartYear == 0 {
		cfg.Events.StartYear = 2024
	}
	if cfg.Events.CacheTTLSeconds == 0 {
		cfg.Events.CacheTTLSeconds = 900
	}
	if cfg.Broadcast.Workers == 0 {
		cfg.Broadcast.Workers = 8
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// A .env file (if present) is loaded first, so secrets can live in .env
// locally and in real env vars when deployed.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		// Env-only deployment: no config file, defaults plus overrides.
		cfg = &Config{}
		applyDefaults(cfg)
	} else if err != nil {
		return nil, err
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("SITE_URL"); v != "" {
		cfg.Site.URL = v
	}
	if v := os.Getenv("SITE_NAME"); v != "" {
		cfg.Site.Name = v
	}
	if v := os.Getenv("ADMIN_KEY"); v != "" {
		cfg.Site.AdminKey = v
	}
	if v := os.Getenv("RESEND_API_KEY"); v != "" {
		cfg.Mail.ResendAPIKey = v
	}
	if v := os.Getenv("EMAIL_FROM"); v != "" {
		cfg.Mail.From = v
	}
	if v := os.Getenv("MAIL_PROVIDER"); v != "" {
		cfg.Mail.Provider = v
	}
	if v := os.Getenv("AWS_SES_REGION"); v != "" {
		cfg.Mail.SESRegion = v
	}
	if v := os.Getenv("AWS_SES_ACCESS_KEY"); v != "" {
		cfg.Mail.SESAccessKey = v
	}
	if v := os.Getenv("AWS_SES_SECRET_KEY"); v != "" {
		cfg.Mail.SESSecretKey = v
	}
	if v := os.Getenv("UPDATE_FALLBACK_LINK"); v != "" {
		cfg.Broadcast.FallbackLink = v
	}
	if v := os.Getenv("EVENTS_BASE_URL"); v != "" {
		cfg.Events.BaseURL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	return cfg, nil
}
