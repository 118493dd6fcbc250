// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"

	"codeberg.org/nodehub/nodehub/internal/models"
	"github.com/vinovest/sqlx"
)

// CreateTokenRequest inserts a token request and fills in its ID and timestamps.
// A tracking id collision yields ErrDuplicate.
func (r *Repository) CreateTokenRequest(ctx context.Context, req *models.TokenRequest) error {
	ts := now()
	err := sqlx.GetContext(ctx, r.db, req,
		`INSERT INTO token_requests
		   (tracking_id, first_name, last_name, email, wallet_address, requested_amount, reason, contact_info,
		    status, transferred_amount, admin_notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING *`,
		req.TrackingID, req.FirstName, req.LastName, req.Email, req.WalletAddress, req.RequestedAmount,
		req.Reason, req.ContactInfo, string(req.Status), req.TransferredAmount, req.AdminNotes, ts, ts)
	return wrapError(err)
}

// GetTokenRequest retrieves a token request by ID.
func (r *Repository) GetTokenRequest(ctx context.Context, id int64) (*models.TokenRequest, error) {
	var req models.TokenRequest
	if err := sqlx.GetContext(ctx, r.db, &req, `SELECT * FROM token_requests WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &req, nil
}

// GetTokenRequestByTrackingID retrieves a token request by its tracking id.
func (r *Repository) GetTokenRequestByTrackingID(ctx context.Context, trackingID string) (*models.TokenRequest, error) {
	var req models.TokenRequest
	if err := sqlx.GetContext(ctx, r.db, &req, `SELECT * FROM token_requests WHERE tracking_id = ?`, trackingID); err != nil {
		return nil, wrapError(err)
	}
	return &req, nil
}

// ListTokenRequests returns token requests, newest first.
// An empty status returns requests of every status.
func (r *Repository) ListTokenRequests(ctx context.Context, status models.Status) ([]models.TokenRequest, error) {
	reqs := []models.TokenRequest{}
	var err error
	if status == "" {
		err = sqlx.SelectContext(ctx, r.db, &reqs, `SELECT * FROM token_requests ORDER BY created_at DESC, id DESC`)
	} else {
		err = sqlx.SelectContext(ctx, r.db, &reqs,
			`SELECT * FROM token_requests WHERE status = ? ORDER BY created_at DESC, id DESC`, string(status))
	}
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

// TransitionTokenRequest moves a token request from one status to another
// and stores notes. It returns ErrNotFound when no request with that ID is
// in the from status.
func (r *Repository) TransitionTokenRequest(ctx context.Context, id int64, from, to models.Status, notes string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE token_requests SET status = ?, admin_notes = ?, updated_at = ? WHERE id = ? AND status = ?`,
		string(to), notes, now(), id, string(from))
	if err != nil {
		return err
	}
	return checkAffected(res)
}

// MarkTokenRequestTransferred moves an approved token request to transferred
// and records the amount actually sent.
func (r *Repository) MarkTokenRequestTransferred(ctx context.Context, id int64, amount, notes string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE token_requests SET status = ?, transferred_amount = ?, admin_notes = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		string(models.StatusTransferred), amount, notes, now(), id, string(models.StatusApproved))
	if err != nil {
		return err
	}
	return checkAffected(res)
}

// UpdateTokenRequestNotes replaces the admin notes of a token request.
func (r *Repository) UpdateTokenRequestNotes(ctx context.Context, id int64, notes string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE token_requests SET admin_notes = ?, updated_at = ? WHERE id = ?`,
		notes, now(), id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}
