// Package sqlstore persists the gateway usage ledger through sqlx. Postgres
// is the production target; sqlite serves local runs and tests.
package sqlstore

import (
	"context"
	"fmt"

	"gocatalog/internal/errors"
	"gocatalog/internal/migration"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

func init() {
	// modernc registers as "sqlite", which sqlx does not know by default.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Open connects and applies the schema.
func Open(ctx context.Context, driver, url string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, driver, url)
	if err != nil {
		return nil, errors.DatabaseError(fmt.Sprintf("failed to connect to %s", driver), err)
	}
	if driver == "sqlite" {
		// An in-memory database exists per connection.
		db.SetMaxOpenConns(1)
	}
	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate applies pending ledger migrations.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	return migration.NewRunner().Run(ctx, db)
}
