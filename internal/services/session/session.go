// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package session issues and validates admin sessions. A session is a row in
// the sessions table keyed by a random token; the browser holds the token in
// a signed cookie.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"codeberg.org/nodehub/nodehub/internal/config"
	"codeberg.org/nodehub/nodehub/internal/models"
	"codeberg.org/nodehub/nodehub/internal/repository"
	"github.com/gorilla/securecookie"
)

const (
	tokenBytes      = 32
	keyBytes        = 32
	defaultLifetime = 7 * 24 * time.Hour
)

// Manager creates, validates and deletes sessions and encodes their cookies.
type Manager struct {
	repo          *repository.Repository
	codec         *securecookie.SecureCookie
	cookieName    string
	lifetime      time.Duration
	secure        bool
	purgeOnCreate bool
}

// NewManager creates a session manager. An empty hash key is replaced by a
// random one, which invalidates all cookies on restart.
func NewManager(repo *repository.Repository, cfg *config.SessionConfig, secure bool) (*Manager, error) {
	hashKey, err := decodeKey(cfg.HashKey, "hash")
	if err != nil {
		return nil, err
	}
	if hashKey == nil {
		slog.Warn("session_hash_key_missing", "hint", "set --session-hash-key to keep sessions across restarts")
		hashKey = securecookie.GenerateRandomKey(keyBytes)
	}

	blockKey, err := decodeKey(cfg.BlockKey, "block")
	if err != nil {
		return nil, err
	}

	lifetime := cfg.Lifetime()
	if lifetime <= 0 {
		lifetime = defaultLifetime
	}

	codec := securecookie.New(hashKey, blockKey)
	codec.MaxAge(int(lifetime / time.Second))

	return &Manager{
		repo:          repo,
		codec:         codec,
		cookieName:    cfg.CookieName,
		lifetime:      lifetime,
		secure:        secure,
		purgeOnCreate: cfg.PurgeOnCreate,
	}, nil
}

func decodeKey(value, name string) ([]byte, error) {
	if value == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("invalid session %s key: %w", name, err)
	}
	if len(key) != keyBytes {
		return nil, fmt.Errorf("invalid session %s key: must be %d bytes, got %d", name, keyBytes, len(key))
	}
	return key, nil
}

// Lifetime returns how long a new session stays valid.
func (m *Manager) Lifetime() time.Duration {
	return m.lifetime
}

// Create stores a new session for userID and returns its token.
func (m *Manager) Create(ctx context.Context, userID int64) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}

	if _, err := m.repo.CreateSession(ctx, token, userID, time.Now().Add(m.lifetime)); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	if m.purgeOnCreate {
		if _, err := m.PurgeExpired(ctx); err != nil {
			slog.Error("session_purge_failed", "error", err)
		}
	}

	return token, nil
}

// Validate returns the user owning token, or nil when the token is empty,
// unknown or expired. Every call consults the store.
func (m *Manager) Validate(ctx context.Context, token string) *models.User {
	if token == "" {
		return nil
	}

	sess, err := m.repo.GetSession(ctx, token)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			slog.Error("session_lookup_failed", "error", err)
		}
		return nil
	}

	if !sess.ValidAt(time.Now()) {
		return nil
	}

	user, err := m.repo.GetUserByID(ctx, sess.UserID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			slog.Error("session_user_lookup_failed", "user_id", sess.UserID, "error", err)
		}
		return nil
	}
	return user
}

// Delete removes a session. Deleting an unknown token succeeds.
func (m *Manager) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := m.repo.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteOthers ends every session of userID except keep.
func (m *Manager) DeleteOthers(ctx context.Context, userID int64, keep string) error {
	if _, err := m.repo.DeleteUserSessions(ctx, userID, keep); err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}
	return nil
}

// PurgeExpired deletes every expired session and returns how many were removed.
func (m *Manager) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := m.repo.DeleteExpiredSessions(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	if n > 0 {
		slog.Info("sessions_purged", "count", n)
	}
	return n, nil
}

// Cookie returns the signed cookie carrying token.
func (m *Manager) Cookie(token string) (*http.Cookie, error) {
	encoded, err := m.codec.Encode(m.cookieName, token)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session cookie: %w", err)
	}
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   int(m.lifetime / time.Second),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// Clear returns a cookie that removes the session cookie.
func (m *Manager) Clear() *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// TokenFromRequest extracts the session token from r. A missing cookie or
// one that fails verification yields "".
func (m *Manager) TokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	var token string
	if err := m.codec.Decode(m.cookieName, cookie.Value, &token); err != nil {
		return ""
	}
	return token
}

// TokenFromCookieHeader extracts the session token from a raw Cookie header
// value such as "a=1; session=...".
func (m *Manager) TokenFromCookieHeader(header string) string {
	if header == "" {
		return ""
	}
	r := &http.Request{Header: http.Header{"Cookie": {header}}}
	return m.TokenFromRequest(r)
}

// User resolves the user behind the session cookie of r.
func (m *Manager) User(ctx context.Context, r *http.Request) *models.User {
	return m.Validate(ctx, m.TokenFromRequest(r))
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
