// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package notify tells submitters about review decisions. Delivery is best
// effort: failures are reported in a Result and never retried.
package notify

import (
	"context"
	"errors"
	"log/slog"

	"codeberg.org/nodehub/nodehub/internal/models"
)

var (
	// ErrDisabled is reported when no mail transport is configured.
	ErrDisabled = errors.New("email notifications are disabled")
	// ErrNoRecipient is reported for requests submitted without an email.
	ErrNoRecipient = errors.New("request has no contact email")
)

// Result reports whether a notification went out.
type Result struct {
	Sent bool
	Err  error
}

// Error returns the failure message, or "" when there was none.
func (r Result) Error() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Notifier delivers decision messages. The decision is taken from the
// request's current status; reason is the admin's explanation.
type Notifier interface {
	NodeDecision(ctx context.Context, req *models.NodeRequest, reason string) Result
	TokenDecision(ctx context.Context, req *models.TokenRequest, reason string) Result
}

// Log is the Notifier used when SMTP is not configured. It only logs.
type Log struct{}

func (Log) NodeDecision(_ context.Context, req *models.NodeRequest, _ string) Result {
	slog.Info("notification_skipped", "tracking_id", req.TrackingID, "status", req.Status, "to", req.ContactEmail)
	return Result{Err: ErrDisabled}
}

func (Log) TokenDecision(_ context.Context, req *models.TokenRequest, _ string) Result {
	slog.Info("notification_skipped", "tracking_id", req.TrackingID, "status", req.Status, "to", req.Email)
	return Result{Err: ErrDisabled}
}
