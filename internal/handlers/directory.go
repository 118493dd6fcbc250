// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"
	"strings"

	"codeberg.org/nodehub/nodehub/internal/models"
	"codeberg.org/nodehub/nodehub/internal/services/ledger"
	"github.com/labstack/echo/v4"
)

// RPCEndpointRequest is the admin body for creating or editing an RPC endpoint.
type RPCEndpointRequest struct {
	Name     string `json:"name"`
	Endpoint string `json:"endpoint"`
	Type     string `json:"type"`
	ChainID  string `json:"chain_id"`
	IsActive *bool  `json:"is_active"`
}

// BootNodeRequest is the admin body for creating or editing a boot node.
type BootNodeRequest struct {
	Name     string `json:"name"`
	Enode    string `json:"enode"`
	IsActive *bool  `json:"is_active"`
}

// BeaconNodeRequest is the admin body for creating or editing a beacon node.
type BeaconNodeRequest struct {
	Name     string `json:"name"`
	ENR      string `json:"enr"`
	Endpoint string `json:"endpoint"`
	IsActive *bool  `json:"is_active"`
}

func (r RPCEndpointRequest) apply(e *models.RPCEndpoint) error {
	e.Name = strings.TrimSpace(r.Name)
	e.Endpoint = strings.TrimSpace(r.Endpoint)
	e.ChainID = strings.TrimSpace(r.ChainID)
	switch t := strings.TrimSpace(r.Type); t {
	case "":
		if e.Type == "" {
			e.Type = models.RPCTypeOfficial
		}
	case models.RPCTypeOfficial, models.RPCTypeCommunity:
		e.Type = t
	default:
		return &ledger.ValidationError{Field: "type", Message: "must be official or community"}
	}
	if r.IsActive != nil {
		e.IsActive = *r.IsActive
	}
	return ledger.ValidateListing(models.NodeTypeRPC, e.Name, e.Endpoint)
}

func (r BootNodeRequest) apply(n *models.BootNode) error {
	n.Name = strings.TrimSpace(r.Name)
	n.Enode = strings.TrimSpace(r.Enode)
	if r.IsActive != nil {
		n.IsActive = *r.IsActive
	}
	return ledger.ValidateListing(models.NodeTypeBootnode, n.Name, n.Enode)
}

func (r BeaconNodeRequest) apply(n *models.BeaconNode) error {
	n.Name = strings.TrimSpace(r.Name)
	n.ENR = strings.TrimSpace(r.ENR)
	n.Endpoint = strings.TrimSpace(r.Endpoint)
	if r.IsActive != nil {
		n.IsActive = *r.IsActive
	}
	return ledger.ValidateListing(models.NodeTypeBeacon, n.Name, n.ENR)
}

// AdminRPCEndpoints lists all RPC endpoints, including inactive ones.
func (h *Handlers) AdminRPCEndpoints(c echo.Context) error {
	items, err := h.repo.ListRPCEndpoints(c.Request().Context(), false)
	if err != nil {
		return Error(c, err)
	}
	return OK(c, http.StatusOK, echo.Map{"items": items})
}

// CreateRPCEndpoint adds an RPC endpoint. New listings are active.
func (h *Handlers) CreateRPCEndpoint(c echo.Context) error {
	var body RPCEndpointRequest
	if err := c.Bind(&body); err != nil {
		return BadRequest(c)
	}
	e := &models.RPCEndpoint{IsActive: true}
	if err := body.apply(e); err != nil {
		return Error(c, err)
	}
	if err := h.repo.CreateRPCEndpoint(c.Request().Context(), e); err != nil {
		return Error(c, err)
	}
	return OK(c, http.StatusCreated, echo.Map{"item": e})
}

// UpdateRPCEndpoint edits an RPC endpoint.
func (h *Handlers) UpdateRPCEndpoint(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return BadRequest(c)
	}
	var body RPCEndpointRequest
	if err := c.Bind(&body); err != nil {
		return BadRequest(c)
	}
	ctx := c.Request().Context()
	e, err := h.repo.GetRPCEndpoint(ctx, id)
	if err != nil {
		return Error(c, err)
	}
	if err := body.apply(e); err != nil {
		return Error(c, err)
	}
	if err := h.repo.UpdateRPCEndpoint(ctx, e); err != nil {
		return Error(c, err)
	}
	return OK(c, http.StatusOK, echo.Map{"item": e})
}

// DeleteRPCEndpoint removes an RPC endpoint.
func (h *Handlers) DeleteRPCEndpoint(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return BadRequest(c)
	}
	if err := h.repo.DeleteRPCEndpoint(c.Request().Context(), id); err != nil {
		return Error(c, err)
	}
	return OK(c, http.StatusOK, nil)
}

// AdminBootNodes lists all boot nodes, including inactive ones.
func (h *Handlers) AdminBootNodes(c echo.Context) error {
	items, err := h.repo.ListBootNodes(c.Request().Context(), false)
	if err != nil {
		return Error(c, err)
	}
	return OK(c, http.StatusOK, echo.Map{"items": items})
}

// CreateBootNode adds a boot node. New listings are active.
func (h *Handlers) CreateBootNode(c echo.Context) error {
	var body BootNodeRequest
	if err := c.Bind(&body); err != nil {
		return BadRequest(c)
	}
	n := &models.BootNode{IsActive: true}
	if err := body.apply(n); err != nil {
		return Error(c, err)
	}
	if err := h.repo.CreateBootNode(c.Request().Context(), n); err != nil {
		return Error(c, err)
	}
	return OK(c, http.StatusCreated, echo.Map{"item": n})
}

// UpdateBootNode edits a boot node.
func (h *Handlers) UpdateBootNode(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return BadRequest(c)
	}
	var body BootNodeRequest
	if err := c.Bind(&body); err != nil {
		return BadRequest(c)
	}
	ctx := c.Request().Context()
	n, err := h.repo.GetBootNode(ctx, id)
	if err != nil {
		return Error(c, err)
	}
	if err := body.apply(n); err != nil {
		return Error(c, err)
	}
	if err := h.repo.UpdateBootNode(ctx, n); err != nil {
		return Error(c, err)
	}
	return OK(c, http.StatusOK, echo.Map{"item": n})
}

// DeleteBootNode removes a boot node.
func (h *Handlers) DeleteBootNode(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return BadRequest(c)
	}
	if err := h.repo.DeleteBootNode(c.Request().Context(), id); err != nil {
		return Error(c, err)
	}
	return OK(c, http.StatusOK, nil)
}

// AdminBeaconNodes lists all beacon nodes, including inactive ones.
func (h *Handlers) AdminBeaconNodes(c echo.Context) error {
	items, err := h.repo.ListBeaconNodes(c.Request().Context(), false)
	if err != nil {
		return Error(c, err)
	}
	return OK(c, http.StatusOK, echo.Map{"items": items})
}

// CreateBeaconNode adds a beacon node. New listings are active.
func (h *Handlers) CreateBeaconNode(c echo.Context) error {
	var body BeaconNodeRequest
	if err := c.Bind(&body); err != nil {
		return BadRequest(c)
	}
	n := &models.BeaconNode{IsActive: true}
	if err := body.apply(n); err != nil {
		return Error(c, err)
	}
	if err := h.repo.CreateBeaconNode(c.Request().Context(), n); err != nil {
		return Error(c, err)
	}
	return OK(c, http.StatusCreated, echo.Map{"item": n})
}

// UpdateBeaconNode edits a beacon node.
func (h *Handlers) UpdateBeaconNode(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return BadRequest(c)
	}
	var body BeaconNodeRequest
	if err := c.Bind(&body); err != nil {
		return BadRequest(c)
	}
	ctx := c.Request().Context()
	n, err := h.repo.GetBeaconNode(ctx, id)
	if err != nil {
		return Error(c, err)
	}
	if err := body.apply(n); err != nil {
		return Error(c, err)
	}
	if err := h.repo.UpdateBeaconNode(ctx, n); err != nil {
		return Error(c, err)
	}
	return OK(c, http.StatusOK, echo.Map{"item": n})
}

// DeleteBeaconNode removes a beacon node.
func (h *Handlers) DeleteBeaconNode(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return BadRequest(c)
	}
	if err := h.repo.DeleteBeaconNode(c.Request().Context(), id); err != nil {
		return Error(c, err)
	}
	return OK(c, http.StatusOK, nil)
}
