// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"

	"codeberg.org/nodehub/nodehub/internal/models"
	"github.com/vinovest/sqlx"
)

// ===== RPC endpoints =====

// CreateRPCEndpoint inserts an RPC endpoint and fills in its ID and timestamps.
func (r *Repository) CreateRPCEndpoint(ctx context.Context, e *models.RPCEndpoint) error {
	if e.Type == "" {
		e.Type = models.RPCTypeOfficial
	}
	ts := now()
	err := sqlx.GetContext(ctx, r.db, e,
		`INSERT INTO rpc_endpoints (name, endpoint, type, chain_id, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 RETURNING *`,
		e.Name, e.Endpoint, e.Type, e.ChainID, e.IsActive, ts, ts)
	return wrapError(err)
}

// GetRPCEndpoint retrieves an RPC endpoint by ID.
func (r *Repository) GetRPCEndpoint(ctx context.Context, id int64) (*models.RPCEndpoint, error) {
	var e models.RPCEndpoint
	if err := sqlx.GetContext(ctx, r.db, &e, `SELECT * FROM rpc_endpoints WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &e, nil
}

// FindRPCEndpointByURL retrieves an RPC endpoint by its URL.
func (r *Repository) FindRPCEndpointByURL(ctx context.Context, endpoint string) (*models.RPCEndpoint, error) {
	var e models.RPCEndpoint
	if err := sqlx.GetContext(ctx, r.db, &e, `SELECT * FROM rpc_endpoints WHERE endpoint = ?`, endpoint); err != nil {
		return nil, wrapError(err)
	}
	return &e, nil
}

// ListRPCEndpoints returns RPC endpoints ordered by name.
func (r *Repository) ListRPCEndpoints(ctx context.Context, activeOnly bool) ([]models.RPCEndpoint, error) {
	endpoints := []models.RPCEndpoint{}
	query := `SELECT * FROM rpc_endpoints`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY name, id`
	if err := sqlx.SelectContext(ctx, r.db, &endpoints, query); err != nil {
		return nil, err
	}
	return endpoints, nil
}

// UpdateRPCEndpoint saves all editable fields of an RPC endpoint.
func (r *Repository) UpdateRPCEndpoint(ctx context.Context, e *models.RPCEndpoint) error {
	e.UpdatedAt = now()
	res, err := r.db.ExecContext(ctx,
		`UPDATE rpc_endpoints SET name = ?, endpoint = ?, type = ?, chain_id = ?, is_active = ?, updated_at = ?
		 WHERE id = ?`,
		e.Name, e.Endpoint, e.Type, e.ChainID, e.IsActive, e.UpdatedAt, e.ID)
	if err != nil {
		return wrapError(err)
	}
	return checkAffected(res)
}

// DeleteRPCEndpoint deletes an RPC endpoint by ID.
func (r *Repository) DeleteRPCEndpoint(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rpc_endpoints WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

// ===== Boot nodes =====

// CreateBootNode inserts a boot node and fills in its ID and timestamps.
func (r *Repository) CreateBootNode(ctx context.Context, n *models.BootNode) error {
	ts := now()
	err := sqlx.GetContext(ctx, r.db, n,
		`INSERT INTO boot_nodes (name, enode, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 RETURNING *`,
		n.Name, n.Enode, n.IsActive, ts, ts)
	return wrapError(err)
}

// GetBootNode retrieves a boot node by ID.
func (r *Repository) GetBootNode(ctx context.Context, id int64) (*models.BootNode, error) {
	var n models.BootNode
	if err := sqlx.GetContext(ctx, r.db, &n, `SELECT * FROM boot_nodes WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &n, nil
}

// FindBootNodeByEnode retrieves a boot node by its enode URL.
func (r *Repository) FindBootNodeByEnode(ctx context.Context, enode string) (*models.BootNode, error) {
	var n models.BootNode
	if err := sqlx.GetContext(ctx, r.db, &n, `SELECT * FROM boot_nodes WHERE enode = ?`, enode); err != nil {
		return nil, wrapError(err)
	}
	return &n, nil
}

// ListBootNodes returns boot nodes ordered by name.
func (r *Repository) ListBootNodes(ctx context.Context, activeOnly bool) ([]models.BootNode, error) {
	nodes := []models.BootNode{}
	query := `SELECT * FROM boot_nodes`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY name, id`
	if err := sqlx.SelectContext(ctx, r.db, &nodes, query); err != nil {
		return nil, err
	}
	return nodes, nil
}

// UpdateBootNode saves all editable fields of a boot node.
func (r *Repository) UpdateBootNode(ctx context.Context, n *models.BootNode) error {
	n.UpdatedAt = now()
	res, err := r.db.ExecContext(ctx,
		`UPDATE boot_nodes SET name = ?, enode = ?, is_active = ?, updated_at = ? WHERE id = ?`,
		n.Name, n.Enode, n.IsActive, n.UpdatedAt, n.ID)
	if err != nil {
		return wrapError(err)
	}
	return checkAffected(res)
}

// DeleteBootNode deletes a boot node by ID.
func (r *Repository) DeleteBootNode(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM boot_nodes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

// ===== Beacon nodes =====

// CreateBeaconNode inserts a beacon node and fills in its ID and timestamps.
func (r *Repository) CreateBeaconNode(ctx context.Context, n *models.BeaconNode) error {
	ts := now()
	err := sqlx.GetContext(ctx, r.db, n,
		`INSERT INTO beacon_nodes (name, enr, endpoint, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 RETURNING *`,
		n.Name, n.ENR, n.Endpoint, n.IsActive, ts, ts)
	return wrapError(err)
}

// GetBeaconNode retrieves a beacon node by ID.
func (r *Repository) GetBeaconNode(ctx context.Context, id int64) (*models.BeaconNode, error) {
	var n models.BeaconNode
	if err := sqlx.GetContext(ctx, r.db, &n, `SELECT * FROM beacon_nodes WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &n, nil
}

// FindBeaconNode retrieves a beacon node whose ENR or endpoint equals value.
func (r *Repository) FindBeaconNode(ctx context.Context, value string) (*models.BeaconNode, error) {
	var n models.BeaconNode
	err := sqlx.GetContext(ctx, r.db, &n,
		`SELECT * FROM beacon_nodes WHERE enr = ? OR (endpoint != '' AND endpoint = ?) LIMIT 1`,
		value, value)
	if err != nil {
		return nil, wrapError(err)
	}
	return &n, nil
}

// ListBeaconNodes returns beacon nodes ordered by name.
func (r *Repository) ListBeaconNodes(ctx context.Context, activeOnly bool) ([]models.BeaconNode, error) {
	nodes := []models.BeaconNode{}
	query := `SELECT * FROM beacon_nodes`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY name, id`
	if err := sqlx.SelectContext(ctx, r.db, &nodes, query); err != nil {
		return nil, err
	}
	return nodes, nil
}

// UpdateBeaconNode saves all editable fields of a beacon node.
func (r *Repository) UpdateBeaconNode(ctx context.Context, n *models.BeaconNode) error {
	n.UpdatedAt = now()
	res, err := r.db.ExecContext(ctx,
		`UPDATE beacon_nodes SET name = ?, enr = ?, endpoint = ?, is_active = ?, updated_at = ? WHERE id = ?`,
		n.Name, n.ENR, n.Endpoint, n.IsActive, n.UpdatedAt, n.ID)
	if err != nil {
		return wrapError(err)
	}
	return checkAffected(res)
}

// DeleteBeaconNode deletes a beacon node by ID.
func (r *Repository) DeleteBeaconNode(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM beacon_nodes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}
