// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"log/slog"
	"net/http"

	"codeberg.org/nodehub/nodehub/internal/appcontext"
	"codeberg.org/nodehub/nodehub/internal/models"
	"codeberg.org/nodehub/nodehub/internal/services/auth"
	"codeberg.org/nodehub/nodehub/internal/services/session"
	"codeberg.org/nodehub/nodehub/internal/sse"
	"github.com/labstack/echo/v4"
)

// AuthHandlers contains handlers for admin authentication and accounts.
type AuthHandlers struct {
	auth     *auth.Service
	sessions *session.Manager
	events   *sse.Hub
}

// NewAuth creates a new AuthHandlers instance.
func NewAuth(authService *auth.Service, sessions *session.Manager) *AuthHandlers {
	return &AuthHandlers{
		auth:     authService,
		sessions: sessions,
	}
}

// CredentialsRequest is the body of setup and login.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UsernameRequest is the body of a username change.
type UsernameRequest struct {
	Username string `json:"username"`
}

// PasswordRequest is the body of a password change.
type PasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// SetupStatus reports whether the first admin still has to be created.
func (h *AuthHandlers) SetupStatus(c echo.Context) error {
	required, err := h.auth.IsFirstTimeSetup(c.Request().Context())
	if err != nil {
		return Error(c, err)
	}
	return OK(c, http.StatusOK, echo.Map{
		"setup_required":  required,
		"password_policy": h.auth.PasswordValidator().HelpTexts(),
	})
}

// Setup creates the first admin and logs them in.
func (h *AuthHandlers) Setup(c echo.Context) error {
	var body CredentialsRequest
	if err := c.Bind(&body); err != nil {
		return BadRequest(c)
	}
	user, err := h.auth.Setup(c.Request().Context(), body.Username, body.Password)
	if err != nil {
		return Error(c, err)
	}
	if err := h.startSession(c, user); err != nil {
		return Error(c, err)
	}
	return OK(c, http.StatusCreated, echo.Map{"user": user})
}

// Login checks the credentials and starts a session.
func (h *AuthHandlers) Login(c echo.Context) error {
	var body CredentialsRequest
	if err := c.Bind(&body); err != nil {
		return BadRequest(c)
	}
	user, err := h.auth.Login(c.Request().Context(), body.Username, body.Password)
	if err != nil {
		return Error(c, err)
	}
	if err := h.startSession(c, user); err != nil {
		return Error(c, err)
	}
	return OK(c, http.StatusOK, echo.Map{"user": user})
}

// Logout ends the current session and clears the cookie.
func (h *AuthHandlers) Logout(c echo.Context) error {
	token := appcontext.SessionTokenOf(c)
	if token == "" {
		token = h.sessions.TokenFromRequest(c.Request())
	}
	if err := h.sessions.Delete(c.Request().Context(), token); err != nil {
		return Error(c, err)
	}
	if h.events != nil && token != "" {
		h.events.CloseSession(token)
	}
	c.SetCookie(h.sessions.Clear())
	return OK(c, http.StatusOK, nil)
}

// Me returns the logged in admin.
func (h *AuthHandlers) Me(c echo.Context) error {
	user := appcontext.UserOf(c)
	if user == nil {
		return Fail(c, http.StatusUnauthorized, "error_unauthorized", nil)
	}
	return OK(c, http.StatusOK, echo.Map{"user": user})
}

// ChangeUsername renames the logged in admin.
func (h *AuthHandlers) ChangeUsername(c echo.Context) error {
	user := appcontext.UserOf(c)
	if user == nil {
		return Fail(c, http.StatusUnauthorized, "error_unauthorized", nil)
	}
	var body UsernameRequest
	if err := c.Bind(&body); err != nil {
		return BadRequest(c)
	}
	if err := h.auth.ChangeUsername(c.Request().Context(), user.ID, body.Username); err != nil {
		return Error(c, err)
	}
	return OK(c, http.StatusOK, nil)
}

// ChangePassword replaces the password of the logged in admin and ends
// their other sessions.
func (h *AuthHandlers) ChangePassword(c echo.Context) error {
	user := appcontext.UserOf(c)
	if user == nil {
		return Fail(c, http.StatusUnauthorized, "error_unauthorized", nil)
	}
	var body PasswordRequest
	if err := c.Bind(&body); err != nil {
		return BadRequest(c)
	}
	ctx := c.Request().Context()
	if err := h.auth.ChangePassword(ctx, user.ID, body.CurrentPassword, body.NewPassword); err != nil {
		return Error(c, err)
	}
	if err := h.sessions.DeleteOthers(ctx, user.ID, appcontext.SessionTokenOf(c)); err != nil {
		slog.Error("session_cleanup_failed", "user_id", user.ID, "error", err)
	}
	return OK(c, http.StatusOK, nil)
}

func (h *AuthHandlers) startSession(c echo.Context, user *models.User) error {
	token, err := h.sessions.Create(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	cookie, err := h.sessions.Cookie(token)
	if err != nil {
		return err
	}
	c.SetCookie(cookie)
	return nil
}
