// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package sse

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Event names sent on the admin stream.
const (
	EventConnected        = "connected"
	EventRequestSubmitted = "request_submitted"
	EventRequestDecided   = "request_decided"
)

// FormatEvent formats a message as an SSE event with optional event name.
// Multiline content is prefixed with "data:" per line.
func FormatEvent(eventName, data string) string {
	var sb strings.Builder

	if eventName != "" {
		fmt.Fprintf(&sb, "event: %s\n", eventName)
	}
	for _, line := range strings.Split(data, "\n") {
		fmt.Fprintf(&sb, "data: %s\n", line)
	}
	sb.WriteString("\n")
	return sb.String()
}

// FormatJSON formats payload as the JSON data of a named event.
func FormatJSON(eventName string, payload any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode %s event: %w", eventName, err)
	}
	return FormatEvent(eventName, string(data)), nil
}

// Heartbeat is an SSE comment that keeps the connection alive.
const Heartbeat = ": heartbeat\n\n"
