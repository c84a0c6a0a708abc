// Package storage persists learned pattern rule state in SQLite so that
// confidence adjustments survive across runs.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/ledgerparse/ledgerparse/internal/model"
	"github.com/ledgerparse/ledgerparse/internal/registry"
)

// expectedSchemaVersion is the latest schema version the application
// expects after migration.
const expectedSchemaVersion = 1

// SQLiteStore implements registry.Store on a local SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// migration is one database schema step.
type migration struct {
	up          func(*sql.Tx) error
	description string
	version     int
}

var migrations = []migration{
	{
		version:     1,
		description: "Pattern rule state",
		up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS pattern_rules (
					id TEXT PRIMARY KEY,
					statement_type TEXT NOT NULL,
					issuer TEXT NOT NULL DEFAULT '',
					confidence REAL NOT NULL DEFAULT 0,
					hit_count INTEGER NOT NULL DEFAULT 0,
					miss_count INTEGER NOT NULL DEFAULT 0,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_pattern_rules_type ON pattern_rules(statement_type, issuer)`,
			}
			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
}

// NewSQLiteStore opens (creating if needed) the rule database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("dbPath must not be empty")
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate applies all pending schema migrations.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	var currentVersion int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion); err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := m.up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", m.version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.version, commitErr)
		}

		slog.Info("Applied migration",
			"version", m.version,
			"description", m.description)
	}

	var finalVersion int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion); err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}
	if finalVersion != expectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", expectedSchemaVersion, finalVersion)
	}
	return nil
}

// LoadRules reads the saved learnable state of every rule.
func (s *SQLiteStore) LoadRules() (map[string]registry.RuleState, error) {
	rows, err := s.db.Query(
		`SELECT id, confidence, hit_count, miss_count, updated_at FROM pattern_rules`)
	if err != nil {
		return nil, fmt.Errorf("failed to query pattern rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	states := make(map[string]registry.RuleState)
	for rows.Next() {
		var (
			id        string
			state     registry.RuleState
			updatedAt sql.NullTime
		)
		if err := rows.Scan(&id, &state.Confidence, &state.HitCount, &state.MissCount, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pattern rule: %w", err)
		}
		if updatedAt.Valid {
			state.UpdatedAt = updatedAt.Time
		}
		states[id] = state
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pattern rules: %w", err)
	}
	return states, nil
}

// SaveRules upserts the current state of all rules in one transaction.
func (s *SQLiteStore) SaveRules(rules []model.PatternRule) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO pattern_rules (id, statement_type, issuer, confidence, hit_count, miss_count, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			confidence = excluded.confidence,
			hit_count = excluded.hit_count,
			miss_count = excluded.miss_count,
			updated_at = excluded.updated_at`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range rules {
		r := &rules[i]
		updatedAt := r.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = time.Now().UTC()
		}
		if _, err := stmt.Exec(r.ID, string(r.Type), r.Issuer, r.Confidence, r.HitCount, r.MissCount, updatedAt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to save rule %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rule state: %w", err)
	}
	return nil
}

// Reset deletes all saved rule state, reverting rules to their priors on
// the next load.
func (s *SQLiteStore) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM pattern_rules`); err != nil {
		return fmt.Errorf("failed to reset pattern rules: %w", err)
	}
	return nil
}
