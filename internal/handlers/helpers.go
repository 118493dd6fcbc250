// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"strconv"

	"codeberg.org/nodehub/nodehub/internal/models"
	"github.com/labstack/echo/v4"
)

var errInvalidID = errors.New("invalid id")

// paramID parses the :id path parameter.
func paramID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// statusFilter reads the ?status= query parameter. Empty means all.
func statusFilter(c echo.Context) (models.Status, bool) {
	switch s := models.Status(c.QueryParam("status")); s {
	case "", models.StatusPending, models.StatusApproved, models.StatusRejected, models.StatusTransferred:
		return s, true
	}
	return "", false
}
