package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"event-rsvp/backend/internal/challenge/domain"
)

// PostgresRepository stores challenges in otp_challenges.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a challenge repository that uses the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Replace inserts c and deletes older unverified challenges for the pair. A transaction-scoped advisory
// lock on the pair orders concurrent issues, so the row with the highest seq is the only one left.
func (r *PostgresRepository) Replace(ctx context.Context, c *domain.Challenge) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock(hashtext($1::text || '/' || $2::text))`, c.UserID, c.EventID,
	); err != nil {
		return err
	}
	var seq int64
	if err := tx.QueryRowContext(ctx, `
		INSERT INTO otp_challenges (id, user_id, event_id, code_hash, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING seq`,
		c.ID, c.UserID, c.EventID, c.CodeHash, c.CreatedAt, c.ExpiresAt,
	).Scan(&seq); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM otp_challenges
		WHERE user_id = $1 AND event_id = $2 AND verified = FALSE AND seq < $3`,
		c.UserID, c.EventID, seq,
	); err != nil {
		return err
	}
	return tx.Commit()
}

// FindLive returns the matching live challenge, or nil if not found.
func (r *PostgresRepository) FindLive(ctx context.Context, userID, eventID, codeHash string, now time.Time) (*domain.Challenge, error) {
	c := &domain.Challenge{}
	var verifiedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, event_id, code_hash, created_at, expires_at, verified, verified_at
		FROM otp_challenges
		WHERE user_id = $1 AND event_id = $2 AND code_hash = $3 AND verified = FALSE AND expires_at > $4
		ORDER BY seq DESC LIMIT 1`,
		userID, eventID, codeHash, now,
	).Scan(&c.ID, &c.UserID, &c.EventID, &c.CodeHash, &c.CreatedAt, &c.ExpiresAt, &c.Verified, &verifiedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if verifiedAt.Valid {
		t := verifiedAt.Time
		c.VerifiedAt = &t
	}
	return c, nil
}

// MarkVerified flips verified for id; the WHERE clause makes the transition one-way.
func (r *PostgresRepository) MarkVerified(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE otp_challenges SET verified = TRUE, verified_at = $2 WHERE id = $1 AND verified = FALSE`,
		id, at)
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
	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM otp_challenges WHERE id = $1)`, id,
	).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrAlreadyVerified
}

// InvalidateAll deletes unverified challenges for the pair.
func (r *PostgresRepository) InvalidateAll(ctx context.Context, userID, eventID string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM otp_challenges WHERE user_id = $1 AND event_id = $2 AND verified = FALSE`,
		userID, eventID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Retire deletes the unverified challenge id.
func (r *PostgresRepository) Retire(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM otp_challenges WHERE id = $1 AND verified = FALSE`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// DeleteExpired deletes challenges expiring at or before the given time.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM otp_challenges WHERE expires_at <= $1`, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
