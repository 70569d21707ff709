package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

// Postgres represents a PostgreSQL database connection
type Postgres struct {
	DB *sql.DB
}

// NewPostgres creates a new PostgreSQL connection
func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Postgres{DB: db}, nil
}

// Migrate applies all pending migrations from the given source URL
// (e.g. file://migrations). An up-to-date schema is not an error.
func (p *Postgres) Migrate(sourceURL string) error {
	driver, err := migratepg.WithInstance(p.DB, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(sourceURL, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}

// Close closes the database connection
func (p *Postgres) Close() error {
	return p.DB.Close()
}

// Ping checks if the database is available
func (p *Postgres) Ping(ctx context.Context) error {
	return p.DB.PingContext(ctx)
}
