// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"codeberg.org/nodehub/nodehub/internal/i18n"
	"codeberg.org/nodehub/nodehub/internal/repository"
	"codeberg.org/nodehub/nodehub/internal/services/approval"
	"codeberg.org/nodehub/nodehub/internal/services/auth"
	"codeberg.org/nodehub/nodehub/internal/services/ledger"
	"github.com/labstack/echo/v4"
)

// OK writes {"ok": true} merged with fields.
func OK(c echo.Context, code int, fields echo.Map) error {
	body := echo.Map{"ok": true}
	for k, v := range fields {
		body[k] = v
	}
	return c.JSON(code, body)
}

// Fail writes {"ok": false, "error": <localized messageID>} merged with fields.
func Fail(c echo.Context, code int, messageID string, fields echo.Map) error {
	body := echo.Map{"ok": false, "error": i18n.T(c.Request().Context(), messageID)}
	for k, v := range fields {
		body[k] = v
	}
	return c.JSON(code, body)
}

// BadRequest reports an unreadable request body or parameter.
func BadRequest(c echo.Context) error {
	return Fail(c, http.StatusBadRequest, "error_invalid_request", nil)
}

// NotFound reports a missing resource.
func NotFound(c echo.Context) error {
	return Fail(c, http.StatusNotFound, "error_not_found", nil)
}

// Error maps a service error to a JSON response. Unknown errors are logged
// and reported as internal errors without details.
func Error(c echo.Context, err error) error {
	var (
		verr *ledger.ValidationError
		dup  *ledger.DuplicateError
		perr *auth.PasswordValidationError
	)
	switch {
	case errors.As(err, &verr):
		return Fail(c, http.StatusBadRequest, "error_validation", echo.Map{"field": verr.Field, "message": verr.Message})
	case errors.As(err, &dup):
		return Fail(c, http.StatusConflict, "error_duplicate", echo.Map{"source": dup.Result.Source})
	case errors.As(err, &perr):
		return Fail(c, http.StatusBadRequest, "error_weak_password", echo.Map{"messages": perr.Messages()})
	case errors.Is(err, auth.ErrInvalidCredentials):
		return Fail(c, http.StatusUnauthorized, "error_invalid_credentials", nil)
	case errors.Is(err, auth.ErrSetupComplete):
		return Fail(c, http.StatusForbidden, "error_setup_complete", nil)
	case errors.Is(err, auth.ErrUserExists):
		return Fail(c, http.StatusConflict, "error_user_exists", nil)
	case errors.Is(err, auth.ErrInvalidUsername):
		return Fail(c, http.StatusBadRequest, "error_invalid_username", nil)
	case errors.Is(err, approval.ErrInvalidTransition):
		return Fail(c, http.StatusConflict, "error_invalid_transition", nil)
	case errors.Is(err, approval.ErrListingExists), errors.Is(err, repository.ErrDuplicate):
		return Fail(c, http.StatusConflict, "error_listing_exists", nil)
	case errors.Is(err, approval.ErrNotFound), errors.Is(err, auth.ErrUserNotFound), errors.Is(err, repository.ErrNotFound):
		return NotFound(c)
	}

	slog.Error("request_failed", "method", c.Request().Method, "path", c.Path(), "error", err)
	return Fail(c, http.StatusInternalServerError, "error_internal", nil)
}
