// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package appcontext provides the custom Echo context.
package appcontext

import (
	"codeberg.org/nodehub/nodehub/internal/models"
	"github.com/labstack/echo/v4"
)

// Context is a custom Echo context carrying the admin behind the session
// cookie, if any.
type Context struct {
	echo.Context
	User         *models.User // nil if not authenticated
	SessionToken string       // "" if no valid session cookie was sent
}

// GetUser returns the authenticated user, or nil if not authenticated.
func (c *Context) GetUser() *models.User {
	return c.User
}

// IsAuthenticated returns true if the user is authenticated.
func (c *Context) IsAuthenticated() bool {
	return c.User != nil
}

// From returns the custom context behind c, or nil when c is a plain echo
// context.
func From(c echo.Context) *Context {
	cc, _ := c.(*Context)
	return cc
}

// UserOf returns the authenticated user of c, or nil.
func UserOf(c echo.Context) *models.User {
	if cc := From(c); cc != nil {
		return cc.User
	}
	return nil
}

// SessionTokenOf returns the session token of c, or "".
func SessionTokenOf(c echo.Context) string {
	if cc := From(c); cc != nil {
		return cc.SessionToken
	}
	return ""
}
