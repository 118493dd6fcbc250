// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package duplicate decides whether a submitted node is already known, either
// as an open request or as a published listing.
package duplicate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"codeberg.org/nodehub/nodehub/internal/models"
	"codeberg.org/nodehub/nodehub/internal/repository"
)

// Source names where a duplicate was found.
type Source string

const (
	SourceNone       Source = ""
	SourceRequest    Source = "node_request"
	SourceRPC        Source = "rpc_endpoint"
	SourceBootNode   Source = "boot_node"
	SourceBeaconNode Source = "beacon_node"
)

// Result is the outcome of a duplicate check. ID is the matching row in the
// table named by Source.
type Result struct {
	Duplicate bool   `json:"duplicate"`
	Source    Source `json:"source,omitempty"`
	ID        int64  `json:"id,omitempty"`
}

type Checker struct {
	repo *repository.Repository
}

func New(repo *repository.Repository) *Checker {
	return &Checker{repo: repo}
}

// In returns a checker that reads through repo, typically a transaction.
func (c *Checker) In(repo *repository.Repository) *Checker {
	return &Checker{repo: repo}
}

// Check looks for endpoint first among requests that were not rejected and
// then in the directory table for nodeType. The first match wins.
func (c *Checker) Check(ctx context.Context, endpoint string, nodeType models.NodeType) (Result, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return Result{}, nil
	}

	req, err := c.repo.FindOpenNodeRequestByEndpoint(ctx, endpoint)
	found, err := match(err)
	if err != nil {
		return Result{}, fmt.Errorf("failed to check node requests: %w", err)
	}
	if found {
		return Result{Duplicate: true, Source: SourceRequest, ID: req.ID}, nil
	}

	switch nodeType {
	case models.NodeTypeRPC:
		e, err := c.repo.FindRPCEndpointByURL(ctx, endpoint)
		return result(SourceRPC, err, func() int64 { return e.ID })
	case models.NodeTypeBootnode:
		n, err := c.repo.FindBootNodeByEnode(ctx, endpoint)
		return result(SourceBootNode, err, func() int64 { return n.ID })
	case models.NodeTypeBeacon:
		n, err := c.repo.FindBeaconNode(ctx, endpoint)
		return result(SourceBeaconNode, err, func() int64 { return n.ID })
	}
	return Result{}, nil
}

func result(source Source, err error, id func() int64) (Result, error) {
	found, err := match(err)
	if err != nil {
		return Result{}, fmt.Errorf("failed to check %s: %w", source, err)
	}
	if !found {
		return Result{}, nil
	}
	return Result{Duplicate: true, Source: source, ID: id()}, nil
}

func match(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repository.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}
