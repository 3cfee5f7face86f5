// Package storage provides file-backed JSON persistence for haito.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bobmcallan/haito/internal/common"
	"github.com/bobmcallan/haito/internal/models"
)

const holdingsKey = "holdings"

// FileStore keeps each document in its own JSON file. Every write replaces
// the whole document via temp file + rename, so readers never observe a
// partial write. Concurrent writers are last-writer-wins.
type FileStore struct {
	holdingsPath   string
	priceCachePath string
	schedulePath   string
	logger         *common.Logger
}

// NewFileStore creates a FileStore from config and ensures the data directory exists.
func NewFileStore(logger *common.Logger, config *common.Config) (*FileStore, error) {
	return NewFileStoreAt(logger, config.HoldingsPath(), config.PriceCachePath(), config.SchedulePath())
}

// NewFileStoreAt creates a FileStore with explicit document paths.
func NewFileStoreAt(logger *common.Logger, holdingsPath, priceCachePath, schedulePath string) (*FileStore, error) {
	for _, p := range []string{holdingsPath, priceCachePath, schedulePath} {
		dir := filepath.Dir(p)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	fs := &FileStore{
		holdingsPath:   holdingsPath,
		priceCachePath: priceCachePath,
		schedulePath:   schedulePath,
		logger:         logger,
	}

	logger.Debug().
		Str("holdings", holdingsPath).
		Str("price_cache", priceCachePath).
		Str("schedule", schedulePath).
		Msg("FileStore opened")
	return fs, nil
}

// readJSON reads and unmarshals a JSON file. Returns found=false when the
// file does not exist or is empty.
func readJSON(path string, dest interface{}) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(data) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return true, nil
}

// writeJSON marshals data to indented JSON and writes it atomically.
func writeJSON(path string, data interface{}) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	jsonData = append(jsonData, '\n')

	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(jsonData); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// LoadHoldings returns the holdings list. A missing document is an empty list.
func (fs *FileStore) LoadHoldings(ctx context.Context) ([]models.Holding, error) {
	var doc map[string]json.RawMessage
	found, err := readJSON(fs.holdingsPath, &doc)
	if err != nil {
		return nil, err
	}
	if !found {
		return []models.Holding{}, nil
	}

	raw, ok := doc[holdingsKey]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return []models.Holding{}, nil
	}

	var holdings []models.Holding
	if err := json.Unmarshal(raw, &holdings); err != nil {
		return nil, fmt.Errorf("failed to parse holdings in %s: %w", fs.holdingsPath, err)
	}
	return holdings, nil
}

// SaveHoldings replaces the holdings list. Other top-level keys already in
// the document are preserved.
func (fs *FileStore) SaveHoldings(ctx context.Context, holdings []models.Holding) error {
	doc := map[string]json.RawMessage{}
	if _, err := readJSON(fs.holdingsPath, &doc); err != nil {
		fs.logger.Warn().Err(err).Str("path", fs.holdingsPath).Msg("Existing holdings document unreadable, rewriting")
		doc = map[string]json.RawMessage{}
	}
	if doc == nil {
		doc = map[string]json.RawMessage{}
	}

	if holdings == nil {
		holdings = []models.Holding{}
	}
	raw, err := json.Marshal(holdings)
	if err != nil {
		return fmt.Errorf("failed to marshal holdings: %w", err)
	}
	doc[holdingsKey] = raw

	if err := writeJSON(fs.holdingsPath, doc); err != nil {
		return fmt.Errorf("failed to save holdings: %w", err)
	}
	return nil
}

// LoadPriceCache returns the cache document. A missing document is an empty cache.
func (fs *FileStore) LoadPriceCache(ctx context.Context) (models.PriceCache, error) {
	cache := models.PriceCache{}
	if _, err := readJSON(fs.priceCachePath, &cache); err != nil {
		return models.PriceCache{}, err
	}
	if cache == nil {
		cache = models.PriceCache{}
	}
	return cache, nil
}

// SavePriceCache replaces the cache document.
func (fs *FileStore) SavePriceCache(ctx context.Context, cache models.PriceCache) error {
	if err := writeJSON(fs.priceCachePath, cache); err != nil {
		return fmt.Errorf("failed to save price cache: %w", err)
	}
	return nil
}

// ClearPriceCache deletes the cache document.
func (fs *FileStore) ClearPriceCache(ctx context.Context) error {
	if err := os.Remove(fs.priceCachePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove price cache: %w", err)
	}
	fs.logger.Debug().Str("path", fs.priceCachePath).Msg("Price cache cleared")
	return nil
}

// LoadScheduleTemplate returns the dividend schedule template. A missing
// document is an empty template.
func (fs *FileStore) LoadScheduleTemplate(ctx context.Context) (*models.ScheduleTemplate, error) {
	tmpl := &models.ScheduleTemplate{}
	if _, err := readJSON(fs.schedulePath, tmpl); err != nil {
		return nil, err
	}
	return tmpl, nil
}
