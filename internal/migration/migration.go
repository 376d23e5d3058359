package migration

import (
	"context"
	"fmt"
	"time"

	"gocatalog/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migration is one schema step. Up receives the driver name so a step can
// pick dialect-specific DDL.
type Migration struct {
	Version string
	Name    string
	Up      func(driver string) []string
}

// MigrationRunner applies migrations in order and records each one in
// schema_migrations, so reruns are no-ops.
type MigrationRunner struct {
	migrations []Migration
}

// NewRunner creates a runner over the ledger migrations.
func NewRunner() *MigrationRunner {
	return &MigrationRunner{migrations: ledgerMigrations}
}

// Version returns the newest migration version
func (r *MigrationRunner) Version() string {
	if len(r.migrations) == 0 {
		return ""
	}
	return r.migrations[len(r.migrations)-1].Version
}

// Run executes all pending migrations in order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP NOT NULL
		)
	`); err != nil {
		return errors.DatabaseError("failed to create schema_migrations", err)
	}

	applied := make(map[string]bool)
	var versions []string
	if err := db.SelectContext(ctx, &versions, `SELECT version FROM schema_migrations`); err != nil {
		return errors.DatabaseError("failed to read schema_migrations", err)
	}
	for _, v := range versions {
		applied[v] = true
	}

	for _, m := range r.migrations {
		if applied[m.Version] {
			continue
		}
		if err := r.apply(ctx, db, m); err != nil {
			return err
		}
	}
	return nil
}

func (r *MigrationRunner) apply(ctx context.Context, db *sqlx.DB, m Migration) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("failed to begin migration", err)
	}
	defer tx.Rollback()

	for _, stmt := range m.Up(db.DriverName()) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return errors.DatabaseError(fmt.Sprintf("migration %s (%s) failed", m.Version, m.Name), err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		tx.Rebind(`INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)`),
		m.Version, m.Name, time.Now().UTC(),
	); err != nil {
		return errors.DatabaseError("failed to record migration", err)
	}
	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("failed to commit migration", err)
	}
	return nil
}

var ledgerMigrations = []Migration{
	{
		Version: "0001",
		Name:    "create gateway_usage",
		Up: func(driver string) []string {
			idColumn := "BIGSERIAL PRIMARY KEY"
			if driver == "sqlite" {
				idColumn = "INTEGER PRIMARY KEY AUTOINCREMENT"
			}
			return []string{
				fmt.Sprintf(`CREATE TABLE IF NOT EXISTS gateway_usage (
					id %s,
					request_id TEXT NOT NULL,
					provider TEXT NOT NULL,
					model TEXT NOT NULL,
					operation TEXT NOT NULL,
					outcome TEXT NOT NULL,
					prompt_chars INTEGER NOT NULL DEFAULT 0,
					completion_chars INTEGER NOT NULL DEFAULT 0,
					latency_ms BIGINT NOT NULL DEFAULT 0,
					error_message TEXT NOT NULL DEFAULT '',
					created_at TIMESTAMP NOT NULL
				)`, idColumn),
			}
		},
	},
	{
		Version: "0002",
		Name:    "index gateway_usage by time",
		Up: func(string) []string {
			return []string{
				`CREATE INDEX IF NOT EXISTS idx_gateway_usage_created_at ON gateway_usage (created_at)`,
				`CREATE INDEX IF NOT EXISTS idx_gateway_usage_operation ON gateway_usage (operation, outcome)`,
			}
		},
	},
}
