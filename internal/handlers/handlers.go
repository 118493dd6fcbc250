// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"log/slog"
	"net/http"

	"codeberg.org/nodehub/nodehub/internal/repository"
	"codeberg.org/nodehub/nodehub/internal/services/approval"
	"codeberg.org/nodehub/nodehub/internal/services/ledger"
	"codeberg.org/nodehub/nodehub/internal/sse"
	"github.com/labstack/echo/v4"
)

// Handlers contains the public API and the admin review, directory and
// settings handlers.
type Handlers struct {
	repo     *repository.Repository
	ledger   *ledger.Service
	engine   *approval.Engine
	events   *sse.Hub
	sessions SessionChecker
}

// New creates a new Handlers instance.
func New(repo *repository.Repository, ledger *ledger.Service, engine *approval.Engine) *Handlers {
	return &Handlers{repo: repo, ledger: ledger, engine: engine}
}

// Health returns the health status.
func (h *Handlers) Health(c echo.Context) error {
	if err := h.repo.DB().PingContext(c.Request().Context()); err != nil {
		slog.Error("health_check_failed", "error", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// RPCEndpoints lists the active RPC endpoints.
func (h *Handlers) RPCEndpoints(c echo.Context) error {
	items, err := h.repo.ListRPCEndpoints(c.Request().Context(), true)
	if err != nil {
		return Error(c, err)
	}
	return OK(c, http.StatusOK, echo.Map{"items": items})
}

// BootNodes lists the active boot nodes.
func (h *Handlers) BootNodes(c echo.Context) error {
	items, err := h.repo.ListBootNodes(c.Request().Context(), true)
	if err != nil {
		return Error(c, err)
	}
	return OK(c, http.StatusOK, echo.Map{"items": items})
}

// BeaconNodes lists the active beacon nodes.
func (h *Handlers) BeaconNodes(c echo.Context) error {
	items, err := h.repo.ListBeaconNodes(c.Request().Context(), true)
	if err != nil {
		return Error(c, err)
	}
	return OK(c, http.StatusOK, echo.Map{"items": items})
}

// SubmitNode records a node listing request.
func (h *Handlers) SubmitNode(c echo.Context) error {
	var sub ledger.NodeSubmission
	if err := c.Bind(&sub); err != nil {
		return BadRequest(c)
	}
	req, err := h.ledger.CreateNodeRequest(c.Request().Context(), sub)
	if err != nil {
		return Error(c, err)
	}
	h.publish(sse.EventRequestSubmitted, nodeEvent(req))
	return OK(c, http.StatusCreated, echo.Map{"tracking_id": req.TrackingID, "status": req.Status})
}

// SubmitToken records a faucet token request.
func (h *Handlers) SubmitToken(c echo.Context) error {
	var sub ledger.TokenSubmission
	if err := c.Bind(&sub); err != nil {
		return BadRequest(c)
	}
	req, err := h.ledger.CreateTokenRequest(c.Request().Context(), sub)
	if err != nil {
		return Error(c, err)
	}
	h.publish(sse.EventRequestSubmitted, tokenEvent(req))
	return OK(c, http.StatusCreated, echo.Map{"tracking_id": req.TrackingID, "status": req.Status})
}

// RequestStatus reports the review status behind a tracking id.
func (h *Handlers) RequestStatus(c echo.Context) error {
	view, err := h.ledger.Status(c.Request().Context(), c.Param("tracking_id"))
	if err != nil {
		return Error(c, err)
	}
	if view == nil {
		return NotFound(c)
	}
	return OK(c, http.StatusOK, echo.Map{"request": view})
}
