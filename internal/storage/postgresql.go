// Package storage implements the PostgreSQL persistence for users,
// repair requests and responses. The engine never writes partial
// entities: a lifecycle operation mutates an in-memory snapshot and
// SaveRequest persists the whole thing in one transaction, so paired
// fields like the selection id and the status change together.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	// pgx driver registration for database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Storage wraps the database connection.
type Storage struct {
	DB *sql.DB
}

// New opens a PostgreSQL connection and verifies it.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady verifies the schema was migrated.
func CheckDatabaseReady(storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRow(`SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'repair_requests'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table repair_requests missing or query error: %w", err)
	}
	return nil
}
