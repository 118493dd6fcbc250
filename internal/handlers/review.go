// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"codeberg.org/nodehub/nodehub/internal/services/notify"
	"codeberg.org/nodehub/nodehub/internal/sse"
	"github.com/labstack/echo/v4"
)

// DecisionRequest is the body of approve, reject and notes updates.
type DecisionRequest struct {
	Notes  string `json:"notes"`
	Reason string `json:"reason"`
}

// TransferRequest is the body of a token transfer confirmation.
type TransferRequest struct {
	Amount string `json:"amount"`
}

type notificationJSON struct {
	Sent  bool   `json:"sent"`
	Error string `json:"error,omitempty"`
}

func notification(r notify.Result) notificationJSON {
	return notificationJSON{Sent: r.Sent, Error: r.Error()}
}

// NodeRequests lists node requests, optionally filtered by ?status=.
func (h *Handlers) NodeRequests(c echo.Context) error {
	status, ok := statusFilter(c)
	if !ok {
		return BadRequest(c)
	}
	reqs, err := h.ledger.NodeRequests(c.Request().Context(), status)
	if err != nil {
		return Error(c, err)
	}
	return OK(c, http.StatusOK, echo.Map{"requests": reqs})
}

// NodeRequest returns a single node request.
func (h *Handlers) NodeRequest(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return BadRequest(c)
	}
	req, err := h.ledger.NodeRequest(c.Request().Context(), id)
	if err != nil {
		return Error(c, err)
	}
	if req == nil {
		return NotFound(c)
	}
	return OK(c, http.StatusOK, echo.Map{"request": req})
}

// ApproveNode approves a node request and publishes its listing.
func (h *Handlers) ApproveNode(c echo.Context) error {
	id, body, err := decision(c)
	if err != nil {
		return BadRequest(c)
	}
	out, err := h.engine.ApproveNode(c.Request().Context(), id, body.Notes)
	if err != nil {
		return Error(c, err)
	}
	h.publish(sse.EventRequestDecided, nodeEvent(out.Request))
	return OK(c, http.StatusOK, echo.Map{
		"request":      out.Request,
		"listing":      out.Listing,
		"notification": notification(out.Notification),
	})
}

// RejectNode rejects a node request.
func (h *Handlers) RejectNode(c echo.Context) error {
	id, body, err := decision(c)
	if err != nil {
		return BadRequest(c)
	}
	out, err := h.engine.RejectNode(c.Request().Context(), id, body.reason())
	if err != nil {
		return Error(c, err)
	}
	h.publish(sse.EventRequestDecided, nodeEvent(out.Request))
	return OK(c, http.StatusOK, echo.Map{
		"request":      out.Request,
		"notification": notification(out.Notification),
	})
}

// NodeNotes replaces the admin notes of a node request.
func (h *Handlers) NodeNotes(c echo.Context) error {
	id, body, err := decision(c)
	if err != nil {
		return BadRequest(c)
	}
	req, err := h.engine.UpdateNodeNotes(c.Request().Context(), id, body.Notes)
	if err != nil {
		return Error(c, err)
	}
	return OK(c, http.StatusOK, echo.Map{"request": req})
}

// TokenRequests lists token requests, optionally filtered by ?status=.
func (h *Handlers) TokenRequests(c echo.Context) error {
	status, ok := statusFilter(c)
	if !ok {
		return BadRequest(c)
	}
	reqs, err := h.ledger.TokenRequests(c.Request().Context(), status)
	if err != nil {
		return Error(c, err)
	}
	return OK(c, http.StatusOK, echo.Map{"requests": reqs})
}

// TokenRequest returns a single token request.
func (h *Handlers) TokenRequest(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return BadRequest(c)
	}
	req, err := h.ledger.TokenRequest(c.Request().Context(), id)
	if err != nil {
		return Error(c, err)
	}
	if req == nil {
		return NotFound(c)
	}
	return OK(c, http.StatusOK, echo.Map{"request": req})
}

// ApproveToken approves a token request.
func (h *Handlers) ApproveToken(c echo.Context) error {
	id, body, err := decision(c)
	if err != nil {
		return BadRequest(c)
	}
	out, err := h.engine.ApproveToken(c.Request().Context(), id, body.Notes)
	if err != nil {
		return Error(c, err)
	}
	h.publish(sse.EventRequestDecided, tokenEvent(out.Request))
	return OK(c, http.StatusOK, echo.Map{"request": out.Request, "notification": notification(out.Notification)})
}

// RejectToken rejects a token request.
func (h *Handlers) RejectToken(c echo.Context) error {
	id, body, err := decision(c)
	if err != nil {
		return BadRequest(c)
	}
	out, err := h.engine.RejectToken(c.Request().Context(), id, body.reason())
	if err != nil {
		return Error(c, err)
	}
	h.publish(sse.EventRequestDecided, tokenEvent(out.Request))
	return OK(c, http.StatusOK, echo.Map{"request": out.Request, "notification": notification(out.Notification)})
}

// TransferToken records the amount sent for an approved token request.
func (h *Handlers) TransferToken(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return BadRequest(c)
	}
	var body TransferRequest
	if err := c.Bind(&body); err != nil {
		return BadRequest(c)
	}
	out, err := h.engine.MarkTransferred(c.Request().Context(), id, body.Amount)
	if err != nil {
		return Error(c, err)
	}
	h.publish(sse.EventRequestDecided, tokenEvent(out.Request))
	return OK(c, http.StatusOK, echo.Map{"request": out.Request, "notification": notification(out.Notification)})
}

// TokenNotes replaces the admin notes of a token request.
func (h *Handlers) TokenNotes(c echo.Context) error {
	id, body, err := decision(c)
	if err != nil {
		return BadRequest(c)
	}
	req, err := h.engine.UpdateTokenNotes(c.Request().Context(), id, body.Notes)
	if err != nil {
		return Error(c, err)
	}
	return OK(c, http.StatusOK, echo.Map{"request": req})
}

// decision reads the :id parameter and an optional decision body.
func decision(c echo.Context) (int64, DecisionRequest, error) {
	var body DecisionRequest
	id, err := paramID(c)
	if err != nil {
		return 0, body, err
	}
	if err := c.Bind(&body); err != nil {
		return 0, body, err
	}
	return id, body, nil
}

// reason prefers the explicit reason and falls back to the notes.
func (d DecisionRequest) reason() string {
	if d.Reason != "" {
		return d.Reason
	}
	return d.Notes
}
