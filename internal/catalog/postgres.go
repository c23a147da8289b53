package catalog

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresCatalog reads events from the events table.
type PostgresCatalog struct {
	db *sql.DB
}

// NewPostgresCatalog returns a catalog backed by db.
func NewPostgresCatalog(db *sql.DB) *PostgresCatalog {
	return &PostgresCatalog{db: db}
}

// GetCapacity returns the event's capacity or ErrEventNotFound.
func (c *PostgresCatalog) GetCapacity(ctx context.Context, eventID string) (int, error) {
	var capacity int
	err := c.db.QueryRowContext(ctx, `SELECT capacity FROM events WHERE id = $1`, eventID).Scan(&capacity)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrEventNotFound
	}
	if err != nil {
		return 0, err
	}
	return capacity, nil
}

// Upsert creates the event or updates its title and capacity. Used by cmd/seed.
// Attendance capacity is not touched here; an existing attendance record is resized separately.
func (c *PostgresCatalog) Upsert(ctx context.Context, e Event) error {
	if e.Capacity < 1 {
		return ErrInvalidCapacity
	}
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO events (id, title, capacity) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title, capacity = EXCLUDED.capacity`,
		e.ID, e.Title, e.Capacity)
	return err
}
