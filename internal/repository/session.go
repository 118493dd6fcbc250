// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/nodehub/nodehub/internal/models"
	"github.com/vinovest/sqlx"
)

// CreateSession stores a new session row.
func (r *Repository) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time) (*models.Session, error) {
	sess := &models.Session{
		ID:        id,
		UserID:    userID,
		ExpiresAt: expiresAt.UTC(),
		CreatedAt: now(),
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, expires_at, created_at) VALUES (?, ?, ?, ?)`,
		sess.ID, sess.UserID, sess.ExpiresAt, sess.CreatedAt)
	if err != nil {
		return nil, wrapError(err)
	}
	return sess, nil
}

// GetSession retrieves a session by token, expired or not.
func (r *Repository) GetSession(ctx context.Context, id string) (*models.Session, error) {
	var sess models.Session
	if err := sqlx.GetContext(ctx, r.db, &sess, `SELECT * FROM sessions WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &sess, nil
}

// DeleteSession deletes a session. Deleting a missing session is not an error.
func (r *Repository) DeleteSession(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return err
}

// DeleteUserSessions deletes every session of a user except keepID.
func (r *Repository) DeleteUserSessions(ctx context.Context, userID int64, keepID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ? AND id != ?`, userID, keepID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteExpiredSessions deletes all sessions, of any user, that expired at or before t.
func (r *Repository) DeleteExpiredSessions(ctx context.Context, t time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, t.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountSessions returns the number of stored sessions, expired ones included.
func (r *Repository) CountSessions(ctx context.Context) (int64, error) {
	var count int64
	err := sqlx.GetContext(ctx, r.db, &count, `SELECT COUNT(*) FROM sessions`)
	return count, err
}
