// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"codeberg.org/nodehub/nodehub/internal/config"
	"codeberg.org/nodehub/nodehub/internal/handlers"
	"codeberg.org/nodehub/nodehub/internal/i18n"
	"codeberg.org/nodehub/nodehub/internal/services/session"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// CSRFHeader carries the CSRF token in both directions: admin responses
// expose it and admin mutations must echo it back.
const CSRFHeader = "X-CSRF-Token"

func setupMiddleware(e *echo.Echo, cfg *config.Config, sessions *session.Manager) {
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger())
	e.Use(middleware.Secure())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/admin/events"
		},
	}))
	e.Use(middleware.BodyLimit(bodyLimit(cfg.Server.MaxBodySize)))
	e.Use(i18nMiddleware())
	e.Use(loadUser(sessions))
}

func bodyLimit(mb int) string {
	if mb <= 0 {
		mb = 1
	}
	return fmt.Sprintf("%dM", mb)
}

// csrfMiddleware configures CSRF protection for the admin API. The token
// travels in a cookie scoped to /admin and must be repeated in CSRFHeader.
func csrfMiddleware(cfg *config.Config) echo.MiddlewareFunc {
	secure := strings.HasPrefix(cfg.Server.BaseURL, "https://")

	return middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "header:" + CSRFHeader,
		CookieName:     "_csrf",
		CookiePath:     "/admin",
		CookieSecure:   secure,
		CookieHTTPOnly: true,
		CookieSameSite: http.SameSiteStrictMode,
		ErrorHandler: func(_ error, c echo.Context) error {
			return handlers.Fail(c, http.StatusForbidden, "error_forbidden", nil)
		},
	})
}

// csrfToHeader exposes the CSRF token in the response so API clients can
// send it back.
func csrfToHeader() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token, ok := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string); ok {
				c.Response().Header().Set(CSRFHeader, token)
			}
			return next(c)
		}
	}
}

// submissionLimiter limits public submissions to perMinute requests per
// client IP. A non-positive limit disables it.
func submissionLimiter(perMinute int) echo.MiddlewareFunc {
	if perMinute <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(perMinute) / 60),
		Burst:     perMinute,
		ExpiresIn: 3 * time.Minute,
	})
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		ErrorHandler: func(c echo.Context, _ error) error {
			return handlers.Fail(c, http.StatusForbidden, "error_forbidden", nil)
		},
		DenyHandler: func(c echo.Context, identifier string, _ error) error {
			slog.Warn("submission_rate_limited", "ip", identifier, "path", c.Path())
			return handlers.Fail(c, http.StatusTooManyRequests, "error_rate_limited", nil)
		},
	})
}

// requestLogger returns middleware that logs requests using slog.
func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			}

			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
				slog.LogAttrs(c.Request().Context(), slog.LevelError, "request", attrs...)
			} else {
				slog.LogAttrs(c.Request().Context(), slog.LevelInfo, "request", attrs...)
			}

			return nil
		},
	})
}

// i18nMiddleware sets the locale based on Accept-Language header.
func i18nMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			acceptLang := c.Request().Header.Get("Accept-Language")
			lang := i18n.MatchLanguage(acceptLang)
			ctx := i18n.WithLocale(c.Request().Context(), lang)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
