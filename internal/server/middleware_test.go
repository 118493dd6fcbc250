// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"codeberg.org/nodehub/nodehub/internal/appcontext"
	"codeberg.org/nodehub/nodehub/internal/config"
	"codeberg.org/nodehub/nodehub/internal/i18n"
	"codeberg.org/nodehub/nodehub/internal/models"
	"codeberg.org/nodehub/nodehub/internal/services/session"
	"codeberg.org/nodehub/nodehub/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHashKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func TestI18nMiddleware(t *testing.T) {
	require.NoError(t, i18n.Init())

	e := echo.New()
	e.Use(i18nMiddleware())

	var locale string
	e.GET("/", func(c echo.Context) error {
		locale = i18n.GetLocale(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	t.Run("English header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept-Language", "en-US")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.True(t, strings.HasPrefix(locale, "en"), "expected locale to start with 'en', got %s", locale)
	})

	t.Run("German header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept-Language", "de-DE")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.True(t, strings.HasPrefix(locale, "de"), "expected locale to start with 'de', got %s", locale)
	})
}

func newTestSessions(t *testing.T) (*session.Manager, *models.User) {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	sessions, err := session.NewManager(repo, &config.SessionConfig{
		CookieName: "_session",
		MaxAge:     3600,
		HashKey:    testHashKey,
	}, false)
	require.NoError(t, err)
	return sessions, testutil.NewTestUser(t, repo, "admin")
}

func TestLoadUser(t *testing.T) {
	sessions, user := newTestSessions(t)
	token, err := sessions.Create(context.Background(), user.ID)
	require.NoError(t, err)
	cookie, err := sessions.Cookie(token)
	require.NoError(t, err)

	e := echo.New()
	e.Use(loadUser(sessions))

	var got *appcontext.Context
	e.GET("/", func(c echo.Context) error {
		got = appcontext.From(c)
		return c.NoContent(http.StatusOK)
	})

	t.Run("no cookie", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.NotNil(t, got)
		assert.Nil(t, got.User)
		assert.Empty(t, got.SessionToken)
	})

	t.Run("valid cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(cookie)
		e.ServeHTTP(httptest.NewRecorder(), req)

		require.NotNil(t, got.User)
		assert.Equal(t, user.ID, got.User.ID)
		assert.Equal(t, token, got.SessionToken)
	})

	t.Run("deleted session", func(t *testing.T) {
		require.NoError(t, sessions.Delete(context.Background(), token))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(cookie)
		e.ServeHTTP(httptest.NewRecorder(), req)

		assert.Nil(t, got.User)
		assert.Empty(t, got.SessionToken)
	})
}

func TestRequireAuth(t *testing.T) {
	e := echo.New()
	var user *models.User
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			return next(&appcontext.Context{Context: c, User: user})
		}
	})
	e.Use(requireAuth())
	e.GET("/protected", func(c echo.Context) error {
		return c.String(http.StatusOK, "protected content")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok":false`)

	user = &models.User{ID: 1, Username: "admin"}
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "protected content", rec.Body.String())
}

func TestCSRF(t *testing.T) {
	e := echo.New()
	admin := e.Group("/admin", csrfMiddleware(&config.Config{}), csrfToHeader())
	admin.GET("/ping", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	admin.POST("/ping", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/ping", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	token := rec.Header().Get(CSRFHeader)
	require.NotEmpty(t, token)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "/admin", cookies[0].Path)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/ping", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/admin/ping", nil)
	req.AddCookie(cookies[0])
	req.Header.Set(CSRFHeader, token)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSubmissionLimiter(t *testing.T) {
	e := echo.New()
	e.POST("/submit", func(c echo.Context) error { return c.NoContent(http.StatusCreated) }, submissionLimiter(2))

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodPost, "/submit", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodPost, "/submit", nil)
	req.RemoteAddr = "192.0.2.2:1234"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestSubmissionLimiter_Disabled(t *testing.T) {
	e := echo.New()
	e.POST("/submit", func(c echo.Context) error { return c.NoContent(http.StatusCreated) }, submissionLimiter(0))

	for range 20 {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/submit", nil))
		assert.Equal(t, http.StatusCreated, rec.Code)
	}
}

func TestBodyLimit(t *testing.T) {
	assert.Equal(t, "1M", bodyLimit(0))
	assert.Equal(t, "5M", bodyLimit(5))
}
