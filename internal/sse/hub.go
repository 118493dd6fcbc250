// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package sse

import (
	"sync"

	"github.com/samber/lo"
)

// Hub fans out review events to the connected admin streams, grouped by
// session. Several tabs of one session share a session ID.
type Hub struct {
	clients map[string][]chan string
	mu      sync.RWMutex
}

// NewHub creates a new SSE hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[string][]chan string)}
}

// Register adds a new client channel for the given session.
func (h *Hub) Register(sessionID string) chan string {
	ch := make(chan string, 16)

	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[sessionID] = append(h.clients[sessionID], ch)
	return ch
}

// Unregister removes and closes a client channel. Channels already closed
// by CloseSession are ignored.
func (h *Hub) Unregister(sessionID string, ch chan string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.clients[sessionID]
	if !lo.Contains(clients, ch) {
		return
	}
	remaining := lo.Without(clients, ch)
	if len(remaining) == 0 {
		delete(h.clients, sessionID)
	} else {
		h.clients[sessionID] = remaining
	}
	close(ch)
}

// CloseSession ends every stream of a session, e.g. after logout.
func (h *Hub) CloseSession(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.clients[sessionID] {
		close(ch)
	}
	delete(h.clients, sessionID)
}

// Broadcast sends a message to all connected clients. Full channels drop
// the message.
func (h *Hub) Broadcast(message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, clients := range h.clients {
		for _, ch := range clients {
			select {
			case ch <- message:
			default:
			}
		}
	}
}

// ClientCount returns the total number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return lo.SumBy(lo.Values(h.clients), func(clients []chan string) int {
		return len(clients)
	})
}

// SessionCount returns the number of sessions with active connections.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}
