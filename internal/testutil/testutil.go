// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"codeberg.org/nodehub/nodehub/internal/database"
	"codeberg.org/nodehub/nodehub/internal/models"
	"codeberg.org/nodehub/nodehub/internal/repository"
	"codeberg.org/nodehub/nodehub/internal/services/auth"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
)

// TestPassword is the password given to users created by NewTestUser.
const TestPassword = "correct-horse-battery"

// NewTestDB creates an isolated in-memory SQLite database for a single test.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	repo := repository.New(db)
	return db, repo
}

// NewTestUser creates a test user whose password is TestPassword.
func NewTestUser(t *testing.T, repo *repository.Repository, username string) *models.User {
	t.Helper()
	hash, err := auth.HashPassword(TestPassword)
	require.NoError(t, err)
	user, err := repo.CreateUser(context.Background(), username, hash)
	require.NoError(t, err)
	return user
}

// NewTestNodeRequest stores a pending node request with a fixed tracking id.
func NewTestNodeRequest(t *testing.T, repo *repository.Repository, trackingID string, nodeType models.NodeType, endpoint string) *models.NodeRequest {
	t.Helper()
	req := &models.NodeRequest{
		TrackingID:   trackingID,
		NodeType:     nodeType,
		Name:         "Test " + string(nodeType),
		Endpoint:     endpoint,
		ContactEmail: "operator@example.com",
		ContactName:  "Operator",
		Status:       models.StatusPending,
	}
	require.NoError(t, repo.CreateNodeRequest(context.Background(), req))
	return req
}

// NewTestTokenRequest stores a pending token request with a fixed tracking id.
func NewTestTokenRequest(t *testing.T, repo *repository.Repository, trackingID string) *models.TokenRequest {
	t.Helper()
	req := &models.TokenRequest{
		TrackingID:      trackingID,
		FirstName:       "Ada",
		LastName:        "Lovelace",
		Email:           "ada@example.com",
		WalletAddress:   "0x1234567890123456789012345678901234567890",
		RequestedAmount: "10",
		Reason:          "testing contracts",
		Status:          models.StatusPending,
	}
	require.NoError(t, repo.CreateTokenRequest(context.Background(), req))
	return req
}

// NewEchoContext creates an Echo context for handler tests.
func NewEchoContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

// NewEchoContextWithHeaders creates an Echo context with custom headers.
func NewEchoContextWithHeaders(e *echo.Echo, method, path string, body io.Reader, headers map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, path string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}
