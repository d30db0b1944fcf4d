package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/okhotnikov/surveysync/internal/client/migrations"
	"github.com/okhotnikov/surveysync/internal/client/repositories/queuestore"
	"github.com/okhotnikov/surveysync/internal/logging"
	"github.com/pressly/goose/v3"
)

// Repositories bundles the client-side persistence layer.
type Repositories struct {
	Queue queuestore.Repository

	db *sql.DB
}

func (r *Repositories) Close() error {
	return r.db.Close()
}

// RunMigrations applies the embedded schema migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens the client database, migrates it, and builds the
// repositories. The sqlite driver must be registered by the importer.
func InitDatabase(ctx context.Context, dsn string, log logging.Logger) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repositories{
		Queue: queuestore.NewSQLiteRepository(db, log),
		db:    db,
	}, nil
}
