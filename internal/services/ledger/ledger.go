// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package ledger records community submissions: node listing requests and
// faucet token requests. Every new request is stored as pending under a
// random tracking id.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"codeberg.org/nodehub/nodehub/internal/models"
	"codeberg.org/nodehub/nodehub/internal/repository"
	"codeberg.org/nodehub/nodehub/internal/services/duplicate"
	"github.com/ethereum/go-ethereum/common"
)

// SettingMaxTokenAmount is the settings key holding the largest amount a
// single token request may ask for. Unset means no limit.
const SettingMaxTokenAmount = "faucet_max_amount"

const trackingIDAttempts = 3

// NodeSubmission is a visitor's request to list a node.
type NodeSubmission struct {
	NodeType     models.NodeType `json:"node_type"`
	Name         string          `json:"name"`
	Endpoint     string          `json:"endpoint"`
	ContactEmail string          `json:"contact_email"`
	ContactName  string          `json:"contact_name"`
	Description  string          `json:"description"`
}

// TokenSubmission is a visitor's request for test tokens.
type TokenSubmission struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	WalletAddress   string `json:"wallet_address"`
	RequestedAmount string `json:"requested_amount"`
	Reason          string `json:"reason"`
	ContactInfo     string `json:"contact_info"`
}

// StatusView is the public view of a request, without contact data.
type StatusView struct {
	TrackingID string        `json:"tracking_id"`
	Kind       string        `json:"kind"`
	Status     models.Status `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// Request kinds in a StatusView.
const (
	KindNode  = "node"
	KindToken = "token"
)

type Service struct {
	repo    *repository.Repository
	checker *duplicate.Checker
}

func NewService(repo *repository.Repository, checker *duplicate.Checker) *Service {
	return &Service{repo: repo, checker: checker}
}

// CreateNodeRequest validates sub, rejects it with a *DuplicateError when the
// endpoint is already known, and stores it as pending. The check and the
// insert share one transaction.
func (s *Service) CreateNodeRequest(ctx context.Context, sub NodeSubmission) (*models.NodeRequest, error) {
	sub = sub.normalize()
	if err := sub.validate(); err != nil {
		return nil, err
	}

	req := &models.NodeRequest{
		NodeType:     sub.NodeType,
		Name:         sub.Name,
		Endpoint:     sub.Endpoint,
		ContactEmail: sub.ContactEmail,
		ContactName:  sub.ContactName,
		Description:  sub.Description,
		Status:       models.StatusPending,
	}

	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		res, err := s.checker.In(tx).Check(ctx, sub.Endpoint, sub.NodeType)
		if err != nil {
			return err
		}
		if res.Duplicate {
			return &DuplicateError{Result: res}
		}
		return insertWithTrackingID(models.NodeRequestPrefix, &req.TrackingID, func() error {
			return tx.CreateNodeRequest(ctx, req)
		})
	})
	if err != nil {
		var dup *DuplicateError
		if errors.As(err, &dup) {
			slog.Info("node_request_duplicate", "endpoint", sub.Endpoint, "source", dup.Result.Source, "id", dup.Result.ID)
			return nil, err
		}
		return nil, fmt.Errorf("failed to create node request: %w", err)
	}

	slog.Info("node_request_created", "tracking_id", req.TrackingID, "node_type", req.NodeType)
	return req, nil
}

// CreateTokenRequest validates sub and stores it as pending. The wallet
// address is stored in checksummed form.
func (s *Service) CreateTokenRequest(ctx context.Context, sub TokenSubmission) (*models.TokenRequest, error) {
	sub = sub.normalize()
	if err := sub.validate(); err != nil {
		return nil, err
	}
	if err := s.checkMaxAmount(ctx, sub.RequestedAmount); err != nil {
		return nil, err
	}

	req := &models.TokenRequest{
		FirstName:       sub.FirstName,
		LastName:        sub.LastName,
		Email:           sub.Email,
		WalletAddress:   common.HexToAddress(sub.WalletAddress).Hex(),
		RequestedAmount: sub.RequestedAmount,
		Reason:          sub.Reason,
		ContactInfo:     sub.ContactInfo,
		Status:          models.StatusPending,
	}

	err := insertWithTrackingID(models.TokenRequestPrefix, &req.TrackingID, func() error {
		return s.repo.CreateTokenRequest(ctx, req)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}

	slog.Info("token_request_created", "tracking_id", req.TrackingID, "wallet", req.WalletAddress)
	return req, nil
}

func (s *Service) checkMaxAmount(ctx context.Context, amount string) error {
	setting, err := s.repo.GetSetting(ctx, SettingMaxTokenAmount)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", SettingMaxTokenAmount, err)
	}

	limit, err := ParseAmount(setting.Value)
	if err != nil {
		slog.Warn("invalid_setting", "key", SettingMaxTokenAmount, "value", setting.Value)
		return nil
	}
	requested, err := parseAmount("requested_amount", amount)
	if err != nil {
		return err
	}
	if requested.Cmp(limit) > 0 {
		return invalid("requested_amount", "must not exceed "+setting.Value)
	}
	return nil
}

// insertWithTrackingID assigns a fresh tracking id to *id and runs insert,
// retrying with a new id when the previous one collided.
func insertWithTrackingID(prefix string, id *string, insert func() error) error {
	var err error
	for range trackingIDAttempts {
		if *id, err = NewTrackingID(prefix); err != nil {
			return err
		}
		err = insert()
		if !errors.Is(err, repository.ErrDuplicate) {
			return err
		}
		slog.Warn("tracking_id_collision", "tracking_id", *id)
	}
	return err
}

// NodeRequests lists node requests with the given status, or all when
// status is empty.
func (s *Service) NodeRequests(ctx context.Context, status models.Status) ([]models.NodeRequest, error) {
	reqs, err := s.repo.ListNodeRequests(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list node requests: %w", err)
	}
	return reqs, nil
}

// NodeRequest returns the node request with id, or nil when there is none.
func (s *Service) NodeRequest(ctx context.Context, id int64) (*models.NodeRequest, error) {
	return orNil(s.repo.GetNodeRequest(ctx, id))
}

// NodeRequestByTrackingID returns the node request with trackingID, or nil.
func (s *Service) NodeRequestByTrackingID(ctx context.Context, trackingID string) (*models.NodeRequest, error) {
	return orNil(s.repo.GetNodeRequestByTrackingID(ctx, trackingID))
}

// TokenRequests lists token requests with the given status, or all when
// status is empty.
func (s *Service) TokenRequests(ctx context.Context, status models.Status) ([]models.TokenRequest, error) {
	reqs, err := s.repo.ListTokenRequests(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list token requests: %w", err)
	}
	return reqs, nil
}

// TokenRequest returns the token request with id, or nil when there is none.
func (s *Service) TokenRequest(ctx context.Context, id int64) (*models.TokenRequest, error) {
	return orNil(s.repo.GetTokenRequest(ctx, id))
}

// TokenRequestByTrackingID returns the token request with trackingID, or nil.
func (s *Service) TokenRequestByTrackingID(ctx context.Context, trackingID string) (*models.TokenRequest, error) {
	return orNil(s.repo.GetTokenRequestByTrackingID(ctx, trackingID))
}

// Status returns the public view of the request with trackingID, or nil when
// the id is malformed or unknown.
func (s *Service) Status(ctx context.Context, trackingID string) (*StatusView, error) {
	trackingID = strings.ToUpper(strings.TrimSpace(trackingID))
	if !ValidTrackingID(trackingID) {
		return nil, nil
	}

	if trackingID[:3] == models.NodeRequestPrefix {
		req, err := s.NodeRequestByTrackingID(ctx, trackingID)
		if err != nil || req == nil {
			return nil, err
		}
		return &StatusView{
			TrackingID: req.TrackingID,
			Kind:       KindNode,
			Status:     req.Status,
			CreatedAt:  req.CreatedAt,
			UpdatedAt:  req.UpdatedAt,
		}, nil
	}

	req, err := s.TokenRequestByTrackingID(ctx, trackingID)
	if err != nil || req == nil {
		return nil, err
	}
	return &StatusView{
		TrackingID: req.TrackingID,
		Kind:       KindToken,
		Status:     req.Status,
		CreatedAt:  req.CreatedAt,
		UpdatedAt:  req.UpdatedAt,
	}, nil
}

func orNil[T any](v *T, err error) (*T, error) {
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}
