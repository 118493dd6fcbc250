// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// Session is a server-side login session addressed by an opaque token.
type Session struct { //nolint:govet // fieldalignment: readability over optimization
	ID        string    `db:"id" json:"-"`
	UserID    int64     `db:"user_id" json:"user_id"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ValidAt reports whether the session is still valid at t.
// Expiry is exclusive: a session expiring exactly at t is no longer valid.
func (s *Session) ValidAt(t time.Time) bool {
	return s.ExpiresAt.After(t)
}
