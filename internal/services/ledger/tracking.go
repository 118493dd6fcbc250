// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package ledger

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

var trackingIDPattern = regexp.MustCompile(`^(REQ|TKN)-[0-9A-F]{8}$`)

// NewTrackingID returns prefix, a dash and 8 uppercase hex digits drawn from
// 4 random bytes, e.g. "REQ-A1B2C3D4".
func NewTrackingID(prefix string) (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate tracking id: %w", err)
	}
	return prefix + "-" + strings.ToUpper(hex.EncodeToString(b)), nil
}

// ValidTrackingID reports whether id has the shape produced by NewTrackingID
// for a node or token request.
func ValidTrackingID(id string) bool {
	return trackingIDPattern.MatchString(id)
}
