// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// NodeType selects which directory table an approved node request lands in.
type NodeType string

const (
	NodeTypeRPC      NodeType = "rpc"
	NodeTypeBootnode NodeType = "bootnode"
	NodeTypeBeacon   NodeType = "beacon"
)

// Valid reports whether t is one of the known node types.
func (t NodeType) Valid() bool {
	switch t {
	case NodeTypeRPC, NodeTypeBootnode, NodeTypeBeacon:
		return true
	}
	return false
}

// Status is the review state of a node or token request.
type Status string

const (
	StatusPending     Status = "pending"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
	StatusTransferred Status = "transferred" // token requests only
)

// Tracking id prefixes.
const (
	NodeRequestPrefix  = "REQ"
	TokenRequestPrefix = "TKN"
)

// NodeRequest is a community submission for a directory listing.
// For beacon submissions Endpoint carries the node's ENR.
type NodeRequest struct { //nolint:govet // fieldalignment: readability over optimization
	ID           int64     `db:"id" json:"id"`
	TrackingID   string    `db:"tracking_id" json:"tracking_id"`
	NodeType     NodeType  `db:"node_type" json:"node_type"`
	Name         string    `db:"name" json:"name"`
	Endpoint     string    `db:"endpoint" json:"endpoint"`
	ContactEmail string    `db:"contact_email" json:"contact_email"`
	ContactName  string    `db:"contact_name" json:"contact_name"`
	Description  string    `db:"description" json:"description"`
	Status       Status    `db:"status" json:"status"`
	AdminNotes   string    `db:"admin_notes" json:"admin_notes"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// TokenRequest is a faucet request for test tokens.
// Amounts are decimal strings to avoid float rounding.
type TokenRequest struct { //nolint:govet // fieldalignment: readability over optimization
	ID                int64     `db:"id" json:"id"`
	TrackingID        string    `db:"tracking_id" json:"tracking_id"`
	FirstName         string    `db:"first_name" json:"first_name"`
	LastName          string    `db:"last_name" json:"last_name"`
	Email             string    `db:"email" json:"email"`
	WalletAddress     string    `db:"wallet_address" json:"wallet_address"`
	RequestedAmount   string    `db:"requested_amount" json:"requested_amount"`
	Reason            string    `db:"reason" json:"reason"`
	ContactInfo       string    `db:"contact_info" json:"contact_info"`
	Status            Status    `db:"status" json:"status"`
	TransferredAmount string    `db:"transferred_amount" json:"transferred_amount,omitempty"`
	AdminNotes        string    `db:"admin_notes" json:"admin_notes"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// FullName returns the requester's display name.
func (r *TokenRequest) FullName() string {
	if r.LastName == "" {
		return r.FirstName
	}
	return r.FirstName + " " + r.LastName
}
