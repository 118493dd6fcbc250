// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// RPC endpoint types.
const (
	RPCTypeOfficial  = "official"
	RPCTypeCommunity = "community"
)

// RPCEndpoint is a published JSON-RPC endpoint, keyed by its URL.
type RPCEndpoint struct { //nolint:govet // fieldalignment: readability over optimization
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Endpoint  string    `db:"endpoint" json:"endpoint"`
	Type      string    `db:"type" json:"type"`
	ChainID   string    `db:"chain_id" json:"chain_id,omitempty"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// BootNode is a published execution-layer boot node, keyed by its enode URL.
type BootNode struct { //nolint:govet // fieldalignment: readability over optimization
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Enode     string    `db:"enode" json:"enode"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// BeaconNode is a published consensus-layer node, keyed by its ENR.
type BeaconNode struct { //nolint:govet // fieldalignment: readability over optimization
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	ENR       string    `db:"enr" json:"enr"`
	Endpoint  string    `db:"endpoint" json:"endpoint,omitempty"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
