// Package common provides shared utilities for haito
package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for haito
type Config struct {
	Environment string          `toml:"environment"`
	Currency    string          `toml:"currency"` // Native currency of held securities (default "JPY")
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Clients     ClientsConfig   `toml:"clients"`
	Cache       CacheConfig     `toml:"cache"`
	News        NewsConfig      `toml:"news"`
	Auth        AuthConfig      `toml:"auth"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
	Logging     LoggingConfig   `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// StorageConfig holds the file store layout and the optional per-user document store.
type StorageConfig struct {
	DataPath       string          `toml:"data_path"`
	HoldingsFile   string          `toml:"holdings_file"`
	PriceCacheFile string          `toml:"price_cache_file"`
	ScheduleFile   string          `toml:"schedule_file"`
	SurrealDB      SurrealDBConfig `toml:"surrealdb"`
}

// SurrealDBConfig holds the connection settings for the user document store.
// An empty Address disables document sync.
type SurrealDBConfig struct {
	Address   string `toml:"address"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the per-write timeout
func (c *SurrealDBConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// Enabled reports whether a document store address is configured.
func (c *SurrealDBConfig) Enabled() bool {
	return strings.TrimSpace(c.Address) != ""
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Yahoo YahooConfig `toml:"yahoo"`
	News  GNewsConfig `toml:"news"`
}

// YahooConfig holds Yahoo Finance API configuration
type YahooConfig struct {
	BaseURL        string `toml:"base_url"`         // chart + quote endpoints
	ProfileBaseURL string `toml:"profile_base_url"` // quoteSummary endpoint
	SymbolSuffix   string `toml:"symbol_suffix"`
	RateLimit      int    `toml:"rate_limit"`
	Timeout        string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *YahooConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// GNewsConfig holds Google News RSS configuration
type GNewsConfig struct {
	BaseURL   string `toml:"base_url"`
	Language  string `toml:"language"`
	Region    string `toml:"region"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *GNewsConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 8 * time.Second
	}
	return d
}

// CacheConfig holds the price cache configuration
type CacheConfig struct {
	PriceTTL string `toml:"price_ttl"`
}

// GetPriceTTL parses and returns the price cache TTL
func (c *CacheConfig) GetPriceTTL() time.Duration {
	d, err := time.ParseDuration(c.PriceTTL)
	if err != nil || d <= 0 {
		return FreshnessPrice
	}
	return d
}

// NewsConfig holds news aggregation limits
type NewsConfig struct {
	MaxWorkers     int `toml:"max_workers"`
	PerTickerLimit int `toml:"per_ticker_limit"` // aggregate view
	SingleLimit    int `toml:"single_limit"`     // filtered view
	SummaryLength  int `toml:"summary_length"`
}

// AuthConfig holds bearer token verification settings.
type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"`
	Issuer    string `toml:"issuer"`
	Audience  string `toml:"audience"`
}

// SchedulerConfig holds background job configuration.
type SchedulerConfig struct {
	RefreshCron string `toml:"refresh_cron"` // empty disables the scheduled refresh
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "console" or "json"
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Currency:    "JPY",
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000"},
		},
		Storage: StorageConfig{
			DataPath:       "data",
			HoldingsFile:   "stocks.json",
			PriceCacheFile: "price_cache.json",
			ScheduleFile:   "dividends.json",
			SurrealDB: SurrealDBConfig{
				Namespace: "haito",
				Database:  "haito",
				Timeout:   "5s",
			},
		},
		Clients: ClientsConfig{
			Yahoo: YahooConfig{
				BaseURL:        "https://query1.finance.yahoo.com",
				ProfileBaseURL: "https://query2.finance.yahoo.com",
				SymbolSuffix:   ".T",
				RateLimit:      5,
				Timeout:        "10s",
			},
			News: GNewsConfig{
				BaseURL:   "https://news.google.com/rss/search",
				Language:  "ja",
				Region:    "JP",
				RateLimit: 8,
				Timeout:   "8s",
			},
		},
		Cache: CacheConfig{
			PriceTTL: "300s",
		},
		News: NewsConfig{
			MaxWorkers:     8,
			PerTickerLimit: 4,
			SingleLimit:    10,
			SummaryLength:  200,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// A .env file in the working directory is loaded first; variables already
// set in the environment win over it.
func LoadConfig(paths ...string) (*Config, error) {
	_ = godotenv.Load()

	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)
	normalize(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("HAITO_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("HAITO_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("HAITO_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("HAITO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("HAITO_DATA_PATH"); path != "" {
		config.Storage.DataPath = path
	}

	// CORS_ORIGINS is the name the web client deployment already uses
	origins := os.Getenv("HAITO_CORS_ORIGINS")
	if origins == "" {
		origins = os.Getenv("CORS_ORIGINS")
	}
	if origins != "" {
		config.Server.CORSOrigins = splitList(origins)
	}

	if v := os.Getenv("HAITO_AUTH_JWT_SECRET"); v != "" {
		config.Auth.JWTSecret = v
	}

	if v := os.Getenv("HAITO_SURREALDB_ADDRESS"); v != "" {
		config.Storage.SurrealDB.Address = v
	}
	if v := os.Getenv("HAITO_SURREALDB_USERNAME"); v != "" {
		config.Storage.SurrealDB.Username = v
	}
	if v := os.Getenv("HAITO_SURREALDB_PASSWORD"); v != "" {
		config.Storage.SurrealDB.Password = v
	}

	if v := os.Getenv("HAITO_REFRESH_CRON"); v != "" {
		config.Scheduler.RefreshCron = v
	}
}

// normalize clamps values that would otherwise break the services.
func normalize(config *Config) {
	config.Currency = strings.ToUpper(strings.TrimSpace(config.Currency))
	if config.Currency == "" {
		config.Currency = "JPY"
	}
	if config.News.MaxWorkers <= 0 || config.News.MaxWorkers > 8 {
		config.News.MaxWorkers = 8
	}
	if config.News.PerTickerLimit <= 0 {
		config.News.PerTickerLimit = 4
	}
	if config.News.SingleLimit <= 0 {
		config.News.SingleLimit = 10
	}
	if config.News.SummaryLength <= 0 {
		config.News.SummaryLength = 200
	}
}

// HoldingsPath returns the full path of the holdings document.
func (c *Config) HoldingsPath() string {
	return filepath.Join(c.Storage.DataPath, c.Storage.HoldingsFile)
}

// PriceCachePath returns the full path of the price cache document.
func (c *Config) PriceCachePath() string {
	return filepath.Join(c.Storage.DataPath, c.Storage.PriceCacheFile)
}

// SchedulePath returns the full path of the dividend schedule template.
func (c *Config) SchedulePath() string {
	return filepath.Join(c.Storage.DataPath, c.Storage.ScheduleFile)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
