package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Sections maps a section name to its key/value pairs.
type Sections map[string]map[string]string

// Repository defines the interface for durable persistence operations.
type Repository interface {
	LoadAll(ctx context.Context) (Sections, error)
	SaveAll(ctx context.Context, data Sections) error
	DeleteSection(ctx context.Context, section string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed persistence repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// LoadAll reads every stored key.
func (r *SQLiteRepository) LoadAll(ctx context.Context) (Sections, error) {
	const query = `SELECT section, key, value FROM persistence ORDER BY section, key`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying persistence: %w", err)
	}
	defer rows.Close()

	out := make(Sections)
	for rows.Next() {
		var section, key, value string
		if err := rows.Scan(&section, &key, &value); err != nil {
			return nil, fmt.Errorf("scanning persistence row: %w", err)
		}
		if out[section] == nil {
			out[section] = make(map[string]string)
		}
		out[section][key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating persistence rows: %w", err)
	}
	return out, nil
}

// SaveAll upserts every key in data in a single transaction. Keys that
// are not in data are left untouched.
func (r *SQLiteRepository) SaveAll(ctx context.Context, data Sections) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting persistence transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	const query = `INSERT INTO persistence (section, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(section, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing persistence upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for section, kv := range data {
		for key, value := range kv {
			if _, err := stmt.ExecContext(ctx, section, key, value, now); err != nil {
				return fmt.Errorf("saving %s.%s: %w", section, key, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing persistence: %w", err)
	}
	return nil
}

// DeleteSection removes every key of a section.
func (r *SQLiteRepository) DeleteSection(ctx context.Context, section string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM persistence WHERE section = ?`, section)
	if err != nil {
		return fmt.Errorf("deleting section %s: %w", section, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrSectionNotFound
	}
	return nil
}
