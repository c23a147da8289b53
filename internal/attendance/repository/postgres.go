package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"event-rsvp/backend/internal/attendance/domain"
)

const pgUniqueViolation = "23505"

// PostgresStore keeps attendance in event_attendance (capacity + count) and event_attendees (membership).
// TryAdd and Remove lock the event's event_attendance row for the duration of their transaction,
// which serializes writers per event while leaving other events untouched.
type PostgresStore struct {
	db   *sql.DB
	nowF func() time.Time
}

// NewPostgresStore returns an attendance store backed by db.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, nowF: func() time.Time { return time.Now().UTC() }}
}

// TryAdd evaluates existence, membership, and capacity under the event row lock and inserts in the same transaction.
func (r *PostgresStore) TryAdd(ctx context.Context, eventID, userID string) (domain.AddResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.AddResult{}, err
	}
	defer func() { _ = tx.Rollback() }()

	snap := domain.Snapshot{EventID: eventID}
	err = tx.QueryRowContext(ctx,
		`SELECT capacity, attendee_count FROM event_attendance WHERE event_id = $1 FOR UPDATE`,
		eventID,
	).Scan(&snap.Capacity, &snap.AttendeeCount)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.AddResult{Outcome: domain.NotFound}, nil
	}
	if err != nil {
		return domain.AddResult{}, err
	}

	var member bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM event_attendees WHERE event_id = $1 AND user_id = $2)`,
		eventID, userID,
	).Scan(&member); err != nil {
		return domain.AddResult{}, err
	}
	if member {
		return domain.AddResult{Outcome: domain.AlreadyMember, Snapshot: snap}, nil
	}
	if snap.AttendeeCount >= snap.Capacity {
		return domain.AddResult{Outcome: domain.CapacityExceeded, Snapshot: snap}, nil
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO event_attendees (event_id, user_id, joined_at) VALUES ($1, $2, $3)`,
		eventID, userID, r.nowF(),
	); err != nil {
		if isUniqueViolation(err) {
			return domain.AddResult{Outcome: domain.AlreadyMember, Snapshot: snap}, nil
		}
		return domain.AddResult{}, err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE event_attendance SET attendee_count = attendee_count + 1 WHERE event_id = $1`,
		eventID,
	); err != nil {
		return domain.AddResult{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.AddResult{}, err
	}
	snap.AttendeeCount++
	return domain.AddResult{Outcome: domain.Added, Snapshot: snap}, nil
}

// Remove deletes the membership and decrements the count under the event row lock.
func (r *PostgresStore) Remove(ctx context.Context, eventID, userID string) (domain.RemoveOutcome, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.NotMember, err
	}
	defer func() { _ = tx.Rollback() }()

	var locked string
	err = tx.QueryRowContext(ctx,
		`SELECT event_id FROM event_attendance WHERE event_id = $1 FOR UPDATE`, eventID,
	).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotMember, ErrEventNotFound
	}
	if err != nil {
		return domain.NotMember, err
	}

	res, err := tx.ExecContext(ctx,
		`DELETE FROM event_attendees WHERE event_id = $1 AND user_id = $2`, eventID, userID)
	if err != nil {
		return domain.NotMember, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.NotMember, err
	}
	if n == 0 {
		return domain.NotMember, nil
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE event_attendance SET attendee_count = attendee_count - 1 WHERE event_id = $1`, eventID,
	); err != nil {
		return domain.NotMember, err
	}
	if err := tx.Commit(); err != nil {
		return domain.NotMember, err
	}
	return domain.Removed, nil
}

// Get returns capacity and attendee count.
func (r *PostgresStore) Get(ctx context.Context, eventID string) (domain.Snapshot, error) {
	snap := domain.Snapshot{EventID: eventID}
	err := r.db.QueryRowContext(ctx,
		`SELECT capacity, attendee_count FROM event_attendance WHERE event_id = $1`, eventID,
	).Scan(&snap.Capacity, &snap.AttendeeCount)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Snapshot{}, ErrEventNotFound
	}
	if err != nil {
		return domain.Snapshot{}, err
	}
	return snap, nil
}

// IsMember reports whether userID holds a spot.
func (r *PostgresStore) IsMember(ctx context.Context, eventID, userID string) (bool, error) {
	var member bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM event_attendees a WHERE a.event_id = e.event_id AND a.user_id = $2)
		FROM event_attendance e WHERE e.event_id = $1`,
		eventID, userID,
	).Scan(&member)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrEventNotFound
	}
	if err != nil {
		return false, err
	}
	return member, nil
}

// Ensure inserts the attendance record unless one exists.
func (r *PostgresStore) Ensure(ctx context.Context, eventID string, capacity int) error {
	if capacity < 1 {
		return ErrInvalidCapacity
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_attendance (event_id, capacity) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING`,
		eventID, capacity)
	return err
}

// Resize updates capacity only while it stays at or above the attendee count.
func (r *PostgresStore) Resize(ctx context.Context, eventID string, capacity int) error {
	if capacity < 1 {
		return ErrInvalidCapacity
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE event_attendance SET capacity = $2 WHERE event_id = $1 AND attendee_count <= $2`,
		eventID, capacity)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	if _, err := r.Get(ctx, eventID); err != nil {
		return err
	}
	return ErrCapacityBelowAttendance
}

// ListAttendees returns attendees ordered by join time.
func (r *PostgresStore) ListAttendees(ctx context.Context, eventID string) ([]domain.Attendee, error) {
	if _, err := r.Get(ctx, eventID); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, joined_at FROM event_attendees WHERE event_id = $1 ORDER BY joined_at, user_id`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Attendee
	for rows.Next() {
		var a domain.Attendee
		if err := rows.Scan(&a.UserID, &a.JoinedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
