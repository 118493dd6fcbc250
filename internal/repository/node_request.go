// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"

	"codeberg.org/nodehub/nodehub/internal/models"
	"github.com/vinovest/sqlx"
)

// CreateNodeRequest inserts a node request and fills in its ID and timestamps.
// A tracking id collision yields ErrDuplicate.
func (r *Repository) CreateNodeRequest(ctx context.Context, req *models.NodeRequest) error {
	ts := now()
	err := sqlx.GetContext(ctx, r.db, req,
		`INSERT INTO node_requests
		   (tracking_id, node_type, name, endpoint, contact_email, contact_name, description, status, admin_notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING *`,
		req.TrackingID, string(req.NodeType), req.Name, req.Endpoint, req.ContactEmail, req.ContactName,
		req.Description, string(req.Status), req.AdminNotes, ts, ts)
	return wrapError(err)
}

// GetNodeRequest retrieves a node request by ID.
func (r *Repository) GetNodeRequest(ctx context.Context, id int64) (*models.NodeRequest, error) {
	var req models.NodeRequest
	if err := sqlx.GetContext(ctx, r.db, &req, `SELECT * FROM node_requests WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &req, nil
}

// GetNodeRequestByTrackingID retrieves a node request by its tracking id.
func (r *Repository) GetNodeRequestByTrackingID(ctx context.Context, trackingID string) (*models.NodeRequest, error) {
	var req models.NodeRequest
	if err := sqlx.GetContext(ctx, r.db, &req, `SELECT * FROM node_requests WHERE tracking_id = ?`, trackingID); err != nil {
		return nil, wrapError(err)
	}
	return &req, nil
}

// ListNodeRequests returns node requests, newest first.
// An empty status returns requests of every status.
func (r *Repository) ListNodeRequests(ctx context.Context, status models.Status) ([]models.NodeRequest, error) {
	reqs := []models.NodeRequest{}
	var err error
	if status == "" {
		err = sqlx.SelectContext(ctx, r.db, &reqs, `SELECT * FROM node_requests ORDER BY created_at DESC, id DESC`)
	} else {
		err = sqlx.SelectContext(ctx, r.db, &reqs,
			`SELECT * FROM node_requests WHERE status = ? ORDER BY created_at DESC, id DESC`, string(status))
	}
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

// FindOpenNodeRequestByEndpoint returns the oldest request for endpoint that
// has not been rejected.
func (r *Repository) FindOpenNodeRequestByEndpoint(ctx context.Context, endpoint string) (*models.NodeRequest, error) {
	var req models.NodeRequest
	err := sqlx.GetContext(ctx, r.db, &req,
		`SELECT * FROM node_requests WHERE endpoint = ? AND status != ? ORDER BY id LIMIT 1`,
		endpoint, string(models.StatusRejected))
	if err != nil {
		return nil, wrapError(err)
	}
	return &req, nil
}

// TransitionNodeRequest moves a node request from one status to another and
// stores notes. It returns ErrNotFound when no request with that ID is in
// the from status.
func (r *Repository) TransitionNodeRequest(ctx context.Context, id int64, from, to models.Status, notes string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE node_requests SET status = ?, admin_notes = ?, updated_at = ? WHERE id = ? AND status = ?`,
		string(to), notes, now(), id, string(from))
	if err != nil {
		return err
	}
	return checkAffected(res)
}

// UpdateNodeRequestNotes replaces the admin notes of a node request.
func (r *Repository) UpdateNodeRequestNotes(ctx context.Context, id int64, notes string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE node_requests SET admin_notes = ?, updated_at = ? WHERE id = ?`,
		notes, now(), id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}
