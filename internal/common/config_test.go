package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "JPY", cfg.Currency)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, ".T", cfg.Clients.Yahoo.SymbolSuffix)
	assert.Equal(t, 300*time.Second, cfg.Cache.GetPriceTTL())
	assert.Equal(t, 10*time.Second, cfg.Clients.Yahoo.GetTimeout())
	assert.Equal(t, 8*time.Second, cfg.Clients.News.GetTimeout())
	assert.Equal(t, 8, cfg.News.MaxWorkers)
	assert.False(t, cfg.Storage.SurrealDB.Enabled())
}

func TestLoadConfig_FileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "haito.toml")
	content := `
environment = "production"

[server]
port = 9090
cors_origins = ["https://app.example.com"]

[storage]
data_path = "/var/lib/haito"

[cache]
price_ttl = "2m"

[news]
max_workers = 32
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, filepath.Join("/var/lib/haito", "stocks.json"), cfg.HoldingsPath())
	assert.Equal(t, 2*time.Minute, cfg.Cache.GetPriceTTL())
	assert.Equal(t, 8, cfg.News.MaxWorkers, "workers are capped at 8")
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
}

func TestLoadConfig_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("server = [broken"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("HAITO_PORT", "7000")
	t.Setenv("HAITO_DATA_PATH", "/tmp/haito-data")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("HAITO_AUTH_JWT_SECRET", "s3cret")
	t.Setenv("HAITO_SURREALDB_ADDRESS", "ws://localhost:8000/rpc")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "/tmp/haito-data", cfg.Storage.DataPath)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.True(t, cfg.Storage.SurrealDB.Enabled())
}

func TestGetTimeout_InvalidFallsBack(t *testing.T) {
	y := YahooConfig{Timeout: "soon"}
	assert.Equal(t, 10*time.Second, y.GetTimeout())

	c := CacheConfig{PriceTTL: "-5s"}
	assert.Equal(t, FreshnessPrice, c.GetPriceTTL())
}

func TestIsFresh(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	assert.True(t, IsFresh(now.Add(-299*time.Second), now, FreshnessPrice))
	assert.False(t, IsFresh(now.Add(-300*time.Second), now, FreshnessPrice))
	assert.False(t, IsFresh(time.Time{}, now, FreshnessPrice))
}
