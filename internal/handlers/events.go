// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"codeberg.org/nodehub/nodehub/internal/appcontext"
	"codeberg.org/nodehub/nodehub/internal/models"
	"codeberg.org/nodehub/nodehub/internal/sse"
	"github.com/labstack/echo/v4"
)

// HeartbeatInterval keeps idle admin streams alive through proxies.
var HeartbeatInterval = 30 * time.Second

// RequestEvent is the payload of request_submitted and request_decided.
type RequestEvent struct {
	Kind       string        `json:"kind"` // "node" or "token"
	ID         int64         `json:"id"`
	TrackingID string        `json:"tracking_id"`
	Status     models.Status `json:"status"`
}

// SessionChecker resolves a session token to its admin, or nil once the
// session has ended. *session.Manager implements it.
type SessionChecker interface {
	Validate(ctx context.Context, token string) *models.User
}

// WithEvents makes the handlers announce submissions and decisions on hub.
// Open streams re-check their session through sessions on every heartbeat
// and end once it is no longer valid; a nil checker skips the re-check.
func (h *Handlers) WithEvents(hub *sse.Hub, sessions SessionChecker) *Handlers {
	h.events = hub
	h.sessions = sessions
	return h
}

// WithEvents lets logout close the session's event streams.
func (h *AuthHandlers) WithEvents(hub *sse.Hub) *AuthHandlers {
	h.events = hub
	return h
}

func (h *Handlers) publish(name string, ev RequestEvent) {
	if h.events == nil {
		return
	}
	msg, err := sse.FormatJSON(name, ev)
	if err != nil {
		slog.Error("event_encode_failed", "event", name, "error", err)
		return
	}
	h.events.Broadcast(msg)
}

func nodeEvent(r *models.NodeRequest) RequestEvent {
	return RequestEvent{Kind: "node", ID: r.ID, TrackingID: r.TrackingID, Status: r.Status}
}

func tokenEvent(r *models.TokenRequest) RequestEvent {
	return RequestEvent{Kind: "token", ID: r.ID, TrackingID: r.TrackingID, Status: r.Status}
}

// Events streams review events to a logged in admin until the client goes
// away or the session ends.
func (h *Handlers) Events(c echo.Context) error {
	token := appcontext.SessionTokenOf(c)
	if token == "" || h.events == nil {
		return Fail(c, http.StatusUnauthorized, "error_unauthorized", nil)
	}

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	ch := h.events.Register(token)
	defer h.events.Unregister(token, ch)

	if _, err := w.Write([]byte(sse.FormatEvent(sse.EventConnected, "ok"))); err != nil {
		return nil
	}
	w.Flush()

	ticker := time.NewTicker(HeartbeatInterval)
	defer ticker.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if h.sessions != nil && h.sessions.Validate(ctx, token) == nil {
				slog.Info("event_stream_session_ended")
				return nil
			}
			if _, err := w.Write([]byte(sse.Heartbeat)); err != nil {
				return nil
			}
			w.Flush()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if _, err := w.Write([]byte(msg)); err != nil {
				return nil
			}
			w.Flush()
		}
	}
}
