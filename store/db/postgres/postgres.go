package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	// Import the Postgres driver.
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/hrygo/coursebot/internal/profile"
	"github.com/hrygo/coursebot/store"
)

type DB struct {
	db         *sql.DB
	profile    *profile.Profile
	dimensions int
}

// NewDB opens a Postgres database with the pgvector extension available.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile == nil || profile.DSN == "" {
		return nil, errors.New("dsn required")
	}

	db, err := sql.Open("postgres", profile.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open db")
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	return &DB{db: db, profile: profile, dimensions: profile.EmbeddingDimensions}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Migrate creates the pgvector extension and the document table.
func (d *DB) Migrate(ctx context.Context) error {
	column := "vector"
	if d.dimensions > 0 {
		column = fmt.Sprintf("vector(%d)", d.dimensions)
	}

	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS course_document (
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			content TEXT NOT NULL,
			metadata JSONB NOT NULL DEFAULT '{}',
			embedding ` + column + ` NOT NULL,
			created_ts BIGINT NOT NULL,
			PRIMARY KEY (collection, id)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "failed to migrate: %s", firstLine(stmt))
		}
	}
	slog.Debug("postgres: schema ready", "dimensions", d.dimensions)
	return nil
}

func placeholder(n int) string {
	return "$" + fmt.Sprint(n)
}

func placeholders(n int) string {
	list := make([]string, n)
	for i := range list {
		list[i] = placeholder(i + 1)
	}
	return strings.Join(list, ", ")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
