// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"net/http"

	"codeberg.org/nodehub/nodehub/internal/appcontext"
	"codeberg.org/nodehub/nodehub/internal/handlers"
	"codeberg.org/nodehub/nodehub/internal/services/session"
	"github.com/labstack/echo/v4"
)

// loadUser wraps the Echo context with our custom Context and resolves the
// session cookie to its admin. Invalid or expired cookies leave it anonymous.
func loadUser(sessions *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &appcontext.Context{Context: c}
			if token := sessions.TokenFromRequest(c.Request()); token != "" {
				if user := sessions.Validate(c.Request().Context(), token); user != nil {
					cc.User = user
					cc.SessionToken = token
				}
			}
			return next(cc)
		}
	}
}

// requireAuth rejects requests without a logged in admin.
func requireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if appcontext.UserOf(c) == nil {
				return handlers.Fail(c, http.StatusUnauthorized, "error_unauthorized", nil)
			}
			return next(c)
		}
	}
}
