// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package approval moves submitted requests through review. Approving a node
// request publishes its directory listing in the same transaction; the
// submitter is notified after commit.
package approval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"codeberg.org/nodehub/nodehub/internal/models"
	"codeberg.org/nodehub/nodehub/internal/repository"
	"codeberg.org/nodehub/nodehub/internal/services/ledger"
	"codeberg.org/nodehub/nodehub/internal/services/notify"
)

var (
	ErrNotFound          = errors.New("request not found")
	ErrInvalidTransition = errors.New("request is not in a state that allows this decision")
	ErrListingExists     = errors.New("a directory listing for this endpoint already exists")
)

// NodeOutcome is the result of deciding a node request. Listing is the
// published *models.RPCEndpoint, *models.BootNode or *models.BeaconNode and
// is nil for rejections.
type NodeOutcome struct {
	Request      *models.NodeRequest
	Listing      any
	Notification notify.Result
}

// TokenOutcome is the result of deciding a token request.
type TokenOutcome struct {
	Request      *models.TokenRequest
	Notification notify.Result
}

type Engine struct {
	repo     *repository.Repository
	notifier notify.Notifier
}

func NewEngine(repo *repository.Repository, notifier notify.Notifier) *Engine {
	return &Engine{repo: repo, notifier: notifier}
}

// ApproveNode approves a pending node request and publishes its listing.
func (e *Engine) ApproveNode(ctx context.Context, id int64, notes string) (*NodeOutcome, error) {
	out := &NodeOutcome{}
	err := e.repo.WithTx(ctx, func(tx *repository.Repository) error {
		req, err := transitionNode(ctx, tx, id, models.StatusApproved, notes)
		if err != nil {
			return err
		}
		listing, err := publish(ctx, tx, req)
		if err != nil {
			return err
		}
		out.Request, out.Listing = req, listing
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("node_request_approved", "id", id, "tracking_id", out.Request.TrackingID, "node_type", out.Request.NodeType)
	out.Notification = e.notifier.NodeDecision(ctx, out.Request, notes)
	return out, nil
}

// RejectNode rejects a pending node request, keeping reason as admin notes.
func (e *Engine) RejectNode(ctx context.Context, id int64, reason string) (*NodeOutcome, error) {
	out := &NodeOutcome{}
	err := e.repo.WithTx(ctx, func(tx *repository.Repository) error {
		req, err := transitionNode(ctx, tx, id, models.StatusRejected, reason)
		out.Request = req
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("node_request_rejected", "id", id, "tracking_id", out.Request.TrackingID)
	out.Notification = e.notifier.NodeDecision(ctx, out.Request, reason)
	return out, nil
}

// UpdateNodeNotes replaces the admin notes of a node request in any status.
func (e *Engine) UpdateNodeNotes(ctx context.Context, id int64, notes string) (*models.NodeRequest, error) {
	if err := e.repo.UpdateNodeRequestNotes(ctx, id, notes); err != nil {
		return nil, mapNotFound(err, "failed to update notes")
	}
	req, err := e.repo.GetNodeRequest(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "failed to load node request")
	}
	return req, nil
}

// ApproveToken approves a pending token request.
func (e *Engine) ApproveToken(ctx context.Context, id int64, notes string) (*TokenOutcome, error) {
	return e.decideToken(ctx, id, models.StatusPending, models.StatusApproved, notes, func(tx *repository.Repository) error {
		return tx.TransitionTokenRequest(ctx, id, models.StatusPending, models.StatusApproved, notes)
	})
}

// RejectToken rejects a pending token request, keeping reason as admin notes.
func (e *Engine) RejectToken(ctx context.Context, id int64, reason string) (*TokenOutcome, error) {
	return e.decideToken(ctx, id, models.StatusPending, models.StatusRejected, reason, func(tx *repository.Repository) error {
		return tx.TransitionTokenRequest(ctx, id, models.StatusPending, models.StatusRejected, reason)
	})
}

// MarkTransferred records that amount tokens were sent for an approved
// request. amount may differ from the requested amount.
func (e *Engine) MarkTransferred(ctx context.Context, id int64, amount string) (*TokenOutcome, error) {
	amount = strings.TrimSpace(amount)
	if _, err := ledger.ParseAmount(amount); err != nil {
		return nil, err
	}
	return e.decideToken(ctx, id, models.StatusApproved, models.StatusTransferred, "", func(tx *repository.Repository) error {
		req, err := tx.GetTokenRequest(ctx, id)
		if err != nil {
			return err
		}
		return tx.MarkTokenRequestTransferred(ctx, id, amount, req.AdminNotes)
	})
}

// UpdateTokenNotes replaces the admin notes of a token request in any status.
func (e *Engine) UpdateTokenNotes(ctx context.Context, id int64, notes string) (*models.TokenRequest, error) {
	if err := e.repo.UpdateTokenRequestNotes(ctx, id, notes); err != nil {
		return nil, mapNotFound(err, "failed to update notes")
	}
	req, err := e.repo.GetTokenRequest(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "failed to load token request")
	}
	return req, nil
}

func (e *Engine) decideToken(ctx context.Context, id int64, from, to models.Status, reason string, apply func(tx *repository.Repository) error) (*TokenOutcome, error) {
	out := &TokenOutcome{}
	err := e.repo.WithTx(ctx, func(tx *repository.Repository) error {
		req, err := tx.GetTokenRequest(ctx, id)
		if err != nil {
			return mapNotFound(err, "failed to load token request")
		}
		if req.Status != from {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, req.Status, to)
		}
		if err := apply(tx); err != nil {
			return transitionError(err)
		}
		out.Request, err = tx.GetTokenRequest(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to reload token request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("token_request_"+string(to), "id", id, "tracking_id", out.Request.TrackingID)
	out.Notification = e.notifier.TokenDecision(ctx, out.Request, reason)
	return out, nil
}

// transitionNode moves a pending node request to status and returns the
// updated row.
func transitionNode(ctx context.Context, tx *repository.Repository, id int64, status models.Status, notes string) (*models.NodeRequest, error) {
	req, err := tx.GetNodeRequest(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "failed to load node request")
	}
	if req.Status != models.StatusPending {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, req.Status, status)
	}
	if err := tx.TransitionNodeRequest(ctx, id, models.StatusPending, status, notes); err != nil {
		return nil, transitionError(err)
	}
	req, err = tx.GetNodeRequest(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload node request: %w", err)
	}
	return req, nil
}

// publish inserts the directory listing for an approved node request.
func publish(ctx context.Context, tx *repository.Repository, req *models.NodeRequest) (any, error) {
	var (
		listing any
		err     error
	)
	switch req.NodeType {
	case models.NodeTypeRPC:
		e := &models.RPCEndpoint{Name: req.Name, Endpoint: req.Endpoint, Type: models.RPCTypeCommunity, IsActive: true}
		listing, err = e, tx.CreateRPCEndpoint(ctx, e)
	case models.NodeTypeBootnode:
		n := &models.BootNode{Name: req.Name, Enode: req.Endpoint, IsActive: true}
		listing, err = n, tx.CreateBootNode(ctx, n)
	case models.NodeTypeBeacon:
		n := &models.BeaconNode{Name: req.Name, ENR: req.Endpoint, IsActive: true}
		listing, err = n, tx.CreateBeaconNode(ctx, n)
	default:
		return nil, fmt.Errorf("unknown node type %q", req.NodeType)
	}
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, ErrListingExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to publish listing: %w", err)
	}
	return listing, nil
}

// transitionError maps a conditional update that matched no row to
// ErrInvalidTransition.
func transitionError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrInvalidTransition
	}
	return fmt.Errorf("failed to update request: %w", err)
}

func mapNotFound(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}
