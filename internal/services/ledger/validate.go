// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package ledger

import (
	"math/big"
	"net/mail"
	"net/url"
	"strings"
	"unicode/utf8"

	"codeberg.org/nodehub/nodehub/internal/models"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/p2p/enode"
)

const (
	maxNameLen  = 100
	maxTextLen  = 2000
	maxFieldLen = 500
)

func (s NodeSubmission) normalize() NodeSubmission {
	s.NodeType = models.NodeType(strings.ToLower(strings.TrimSpace(string(s.NodeType))))
	s.Name = strings.TrimSpace(s.Name)
	s.Endpoint = strings.TrimSpace(s.Endpoint)
	s.ContactEmail = strings.TrimSpace(s.ContactEmail)
	s.ContactName = strings.TrimSpace(s.ContactName)
	s.Description = strings.TrimSpace(s.Description)
	return s
}

func (s NodeSubmission) validate() error {
	if !s.NodeType.Valid() {
		return invalid("node_type", "must be one of rpc, bootnode, beacon")
	}
	if err := required("name", s.Name, maxNameLen); err != nil {
		return err
	}
	if err := required("endpoint", s.Endpoint, maxFieldLen); err != nil {
		return err
	}
	if err := validateEndpoint(s.NodeType, s.Endpoint, false); err != nil {
		return err
	}
	if s.ContactEmail != "" {
		if err := validateEmail("contact_email", s.ContactEmail); err != nil {
			return err
		}
	}
	if err := optional("contact_email", s.ContactEmail, maxFieldLen); err != nil {
		return err
	}
	if err := optional("contact_name", s.ContactName, maxNameLen); err != nil {
		return err
	}
	return optional("description", s.Description, maxTextLen)
}

// validateEndpoint checks the endpoint format expected for each node type:
// an http(s) or ws(s) URL for rpc, an enode:// URL for bootnode and an ENR
// or absolute URL for beacon. Submissions only get the shape checked; strict
// mode parses enode URLs and ENRs with go-ethereum and is used for listings
// an admin edits directly.
func validateEndpoint(nodeType models.NodeType, endpoint string, strict bool) error {
	switch nodeType {
	case models.NodeTypeRPC:
		return validateURL(endpoint)
	case models.NodeTypeBootnode:
		if !strings.HasPrefix(endpoint, "enode://") {
			return invalid("endpoint", "must be an enode:// URL")
		}
		if strict {
			if _, err := enode.ParseV4(endpoint); err != nil {
				return invalid("endpoint", "invalid enode URL: "+err.Error())
			}
		}
	case models.NodeTypeBeacon:
		if !strings.HasPrefix(endpoint, "enr:") {
			if strict {
				return invalid("endpoint", "must be an ENR starting with enr:")
			}
			return validateURL(endpoint)
		}
		if strict {
			if _, err := enode.Parse(enode.ValidSchemes, endpoint); err != nil {
				return invalid("endpoint", "invalid ENR: "+err.Error())
			}
		}
	}
	return nil
}

func validateURL(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return invalid("endpoint", "must be an absolute URL")
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
		return nil
	default:
		return invalid("endpoint", "must use http, https, ws or wss")
	}
}

// ValidateListing checks the name and endpoint of a directory listing edited
// by an admin. For beacon listings endpoint is the ENR.
func ValidateListing(nodeType models.NodeType, name, endpoint string) error {
	if err := required("name", name, maxNameLen); err != nil {
		return err
	}
	if err := required("endpoint", endpoint, maxFieldLen); err != nil {
		return err
	}
	return validateEndpoint(nodeType, endpoint, true)
}

func (s TokenSubmission) normalize() TokenSubmission {
	s.FirstName = strings.TrimSpace(s.FirstName)
	s.LastName = strings.TrimSpace(s.LastName)
	s.Email = strings.TrimSpace(s.Email)
	s.WalletAddress = strings.TrimSpace(s.WalletAddress)
	s.RequestedAmount = strings.TrimSpace(s.RequestedAmount)
	s.Reason = strings.TrimSpace(s.Reason)
	s.ContactInfo = strings.TrimSpace(s.ContactInfo)
	return s
}

func (s TokenSubmission) validate() error {
	if err := required("first_name", s.FirstName, maxNameLen); err != nil {
		return err
	}
	if err := optional("last_name", s.LastName, maxNameLen); err != nil {
		return err
	}
	if err := validateEmail("email", s.Email); err != nil {
		return err
	}
	if !common.IsHexAddress(s.WalletAddress) || !strings.HasPrefix(strings.ToLower(s.WalletAddress), "0x") {
		return invalid("wallet_address", "must be a 0x-prefixed 20-byte hex address")
	}
	if _, err := parseAmount("requested_amount", s.RequestedAmount); err != nil {
		return err
	}
	if err := required("reason", s.Reason, maxTextLen); err != nil {
		return err
	}
	return optional("contact_info", s.ContactInfo, maxFieldLen)
}

// ParseAmount parses a positive decimal token amount such as "0.5" or "10".
func ParseAmount(amount string) (*big.Rat, error) {
	return parseAmount("amount", amount)
}

func parseAmount(field, amount string) (*big.Rat, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, invalid(field, "is required")
	}
	if strings.ContainsAny(amount, "/eE") {
		return nil, invalid(field, "must be a plain decimal number")
	}
	r, ok := new(big.Rat).SetString(amount)
	if !ok {
		return nil, invalid(field, "must be a decimal number")
	}
	if r.Sign() <= 0 {
		return nil, invalid(field, "must be greater than zero")
	}
	return r, nil
}

func validateEmail(field, value string) error {
	if value == "" {
		return invalid(field, "is required")
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return invalid(field, "must be a valid email address")
	}
	return nil
}

func required(field, value string, maxLen int) error {
	if value == "" {
		return invalid(field, "is required")
	}
	return optional(field, value, maxLen)
}

func optional(field, value string, maxLen int) error {
	if utf8.RuneCountInString(value) > maxLen {
		return invalid(field, "is too long")
	}
	return nil
}
