// Package surrealdb mirrors per-user holdings into SurrealDB.
package surrealdb

import (
	"context"
	"fmt"

	"github.com/bobmcallan/haito/internal/common"
	"github.com/bobmcallan/haito/internal/models"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

const holdingTable = "user_holding"

// HoldingStore writes one document per (user, ticker).
type HoldingStore struct {
	db     *surrealdb.DB
	logger *common.Logger
	exec   func(ctx context.Context, sql string, vars map[string]any) error
}

// Connect dials SurrealDB, signs in and selects the configured namespace.
func Connect(ctx context.Context, logger *common.Logger, config *common.SurrealDBConfig) (*HoldingStore, error) {
	db, err := surrealdb.New(config.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": config.Username,
		"pass": config.Password,
	}); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
	}

	if err := db.Use(ctx, config.Namespace, config.Database); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	store, err := NewHoldingStore(ctx, db, logger)
	if err != nil {
		db.Close(ctx)
		return nil, err
	}

	logger.Info().
		Str("address", config.Address).
		Str("namespace", config.Namespace).
		Str("database", config.Database).
		Msg("SurrealDB holding store initialized")

	return store, nil
}

// NewHoldingStore wraps an open connection and defines the table.
func NewHoldingStore(ctx context.Context, db *surrealdb.DB, logger *common.Logger) (*HoldingStore, error) {
	// SurrealDB v3 errors on querying tables that were never defined
	sql := fmt.Sprintf("DEFINE TABLE IF NOT EXISTS %s SCHEMALESS", holdingTable)
	if _, err := surrealdb.Query[any](ctx, db, sql, nil); err != nil {
		return nil, fmt.Errorf("failed to define table %s: %w", holdingTable, err)
	}
	store := &HoldingStore{db: db, logger: logger}
	store.exec = store.query
	return store, nil
}

func (s *HoldingStore) query(ctx context.Context, sql string, vars map[string]any) error {
	_, err := surrealdb.Query[[]models.UserHoldingDocument](ctx, s.db, sql, vars)
	return err
}

func recordID(userID, ticker string) string {
	return userID + "_" + ticker
}

// PutUserHolding upserts the document in a single attempt.
func (s *HoldingStore) PutUserHolding(ctx context.Context, doc *models.UserHoldingDocument) error {
	if doc == nil || doc.UserID == "" || doc.Holding.Ticker == "" {
		return fmt.Errorf("user holding document requires user_id and ticker")
	}

	sql := "UPSERT $rid CONTENT $record"
	vars := map[string]any{
		"rid":    surrealmodels.NewRecordID(holdingTable, recordID(doc.UserID, doc.Holding.Ticker)),
		"record": doc,
	}

	if err := s.exec(ctx, sql, vars); err != nil {
		return fmt.Errorf("failed to put user holding: %w", err)
	}
	return nil
}

// GetUserHolding returns the stored document, or nil when absent.
func (s *HoldingStore) GetUserHolding(ctx context.Context, userID, ticker string) (*models.UserHoldingDocument, error) {
	doc, err := surrealdb.Select[models.UserHoldingDocument](ctx, s.db, surrealmodels.NewRecordID(holdingTable, recordID(userID, ticker)))
	if err != nil {
		return nil, fmt.Errorf("failed to select user holding: %w", err)
	}
	return doc, nil
}

// Close closes the underlying connection.
func (s *HoldingStore) Close(ctx context.Context) error {
	return s.db.Close(ctx)
}
