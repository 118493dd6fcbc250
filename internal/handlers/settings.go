// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"
	"regexp"
	"strings"

	"codeberg.org/nodehub/nodehub/internal/services/ledger"
	"github.com/labstack/echo/v4"
)

const maxSettingLen = 2000

var settingKeyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,63}$`)

// SettingRequest is the body of a setting update.
type SettingRequest struct {
	Value string `json:"value"`
}

// Settings lists all site settings.
func (h *Handlers) Settings(c echo.Context) error {
	settings, err := h.repo.ListSettings(c.Request().Context())
	if err != nil {
		return Error(c, err)
	}
	return OK(c, http.StatusOK, echo.Map{"settings": settings})
}

// PutSetting creates or replaces the setting named by :key.
func (h *Handlers) PutSetting(c echo.Context) error {
	key := c.Param("key")
	if !settingKeyPattern.MatchString(key) {
		return BadRequest(c)
	}
	var body SettingRequest
	if err := c.Bind(&body); err != nil {
		return BadRequest(c)
	}
	value := strings.TrimSpace(body.Value)
	if err := validateSetting(key, value); err != nil {
		return Error(c, err)
	}
	if err := h.repo.SetSetting(c.Request().Context(), key, value); err != nil {
		return Error(c, err)
	}
	return OK(c, http.StatusOK, echo.Map{"key": key, "value": value})
}

// DeleteSetting removes the setting named by :key.
func (h *Handlers) DeleteSetting(c echo.Context) error {
	key := c.Param("key")
	if !settingKeyPattern.MatchString(key) {
		return BadRequest(c)
	}
	if err := h.repo.DeleteSetting(c.Request().Context(), key); err != nil {
		return Error(c, err)
	}
	return OK(c, http.StatusOK, nil)
}

func validateSetting(key, value string) error {
	if len(value) > maxSettingLen {
		return &ledger.ValidationError{Field: "value", Message: "is too long"}
	}
	if key == ledger.SettingMaxTokenAmount {
		if _, err := ledger.ParseAmount(value); err != nil {
			return &ledger.ValidationError{Field: "value", Message: "must be a positive decimal amount"}
		}
	}
	return nil
}
