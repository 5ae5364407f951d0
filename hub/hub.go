// Package hub coordinates presence, chat routing, and typing relays across
// every connected session. One mutex spans each registry mutation and the
// fan-out derived from it, so clients never observe a notification that
// disagrees with the user list sent alongside it.
package hub

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"switchboard-chat-server/domain"
	"switchboard-chat-server/registry"
)

type Hub struct {
	mu       sync.Mutex
	registry *registry.Registry
	conns    map[string]domain.Connection
	typing   map[string]bool
}

func New() *Hub {
	return &Hub{
		registry: registry.New(),
		conns:    make(map[string]domain.Connection),
		typing:   make(map[string]bool),
	}
}

// Join registers the connection under username, publishes the updated user
// list to everyone, then announces the join to everyone else.
func (h *Hub) Join(conn domain.Connection, username string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, err := h.registry.Register(conn.ID(), username)
	if err != nil {
		slog.Warn("overwrote stale session", "clientId", conn.ID(), "username", username)
	}
	h.conns[conn.ID()] = conn

	h.publishUserListLocked()
	h.broadcastLocked(encode(domain.EventUserJoined, domain.PresencePayload{
		ID:       s.ID,
		Username: s.Username,
	}), s.ID)

	slog.Info("user joined", "clientId", s.ID, "username", s.Username, "clients", h.registry.Len())
}

// Leave removes the connection's session and typing state, publishes the
// trimmed user list to the remaining sessions, then announces the departure.
// Connections that never joined leave no trace.
func (h *Hub) Leave(conn domain.Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.conns, conn.ID())
	delete(h.typing, conn.ID())

	s, ok := h.registry.Remove(conn.ID())
	if !ok {
		return
	}

	h.publishUserListLocked()
	h.broadcastLocked(encode(domain.EventUserLeft, domain.PresencePayload{
		ID:       s.ID,
		Username: s.Username,
	}), "")

	slog.Info("user left", "clientId", s.ID, "username", s.Username, "clients", h.registry.Len())
}

// SendPublic broadcasts a chat message to every session, sender included.
// Blank messages and unknown senders are dropped.
func (h *Hub) SendPublic(senderID, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.registry.Get(senderID)
	if !ok {
		return
	}

	h.broadcastLocked(encode(domain.EventReceiveMessage, domain.ChatMessage{
		ID:        uuid.NewString(),
		Sender:    s.Username,
		Message:   text,
		Timestamp: time.Now().UTC(),
	}), "")
}

// SendPrivate delivers a chat message to the target and echoes it back to the
// sender. An absent target yields a system message to the sender only; a send
// racing the target's disconnect lands on that same path.
func (h *Hub) SendPrivate(senderID, targetID, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.registry.Get(senderID)
	if !ok {
		return
	}

	target, ok := h.registry.Get(targetID)
	if !ok {
		h.sendToLocked(senderID, encode(domain.EventReceiveMessage, domain.ChatMessage{
			ID:        uuid.NewString(),
			Message:   fmt.Sprintf("User %s is no longer online or does not exist.", targetID),
			Timestamp: time.Now().UTC(),
			System:    true,
		}))
		return
	}

	frame := encode(domain.EventPrivateMessage, domain.ChatMessage{
		ID:        uuid.NewString(),
		Sender:    s.Username,
		Message:   text,
		Timestamp: time.Now().UTC(),
		ToUser:    target.Username,
	})
	h.sendToLocked(target.ID, frame)
	h.sendToLocked(s.ID, frame)
}

// SetTyping relays the sender's typing state to every other session, exactly
// as reported. The state is kept only so /stats can count active typists and
// so it dies with the session.
func (h *Hub) SetTyping(senderID string, isTyping bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.registry.Get(senderID)
	if !ok {
		return
	}

	if isTyping {
		h.typing[senderID] = true
	} else {
		delete(h.typing, senderID)
	}

	h.broadcastLocked(encode(domain.EventTypingUsers, domain.TypingNotice{
		Username: s.Username,
		IsTyping: isTyping,
	}), senderID)
}

func (h *Hub) Stats() (clients, typing int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.registry.Len(), len(h.typing)
}

// publishUserListLocked snapshots the registry and sends the full list, in
// join order, to every connection.
func (h *Hub) publishUserListLocked() {
	sessions := h.registry.List()
	entries := make([]domain.UserEntry, 0, len(sessions))
	for _, s := range sessions {
		entries = append(entries, domain.UserEntry{ID: s.ID, Username: s.Username})
	}
	h.broadcastLocked(encode(domain.EventUserList, entries), "")
}

// broadcastLocked delivers frame to every connection except exceptID. A
// failed delivery closes that one connection and never aborts the rest.
func (h *Hub) broadcastLocked(frame []byte, exceptID string) {
	if frame == nil {
		return
	}
	for id, conn := range h.conns {
		if id == exceptID {
			continue
		}
		h.deliverLocked(conn, frame)
	}
}

func (h *Hub) sendToLocked(id string, frame []byte) {
	if frame == nil {
		return
	}
	if conn, ok := h.conns[id]; ok {
		h.deliverLocked(conn, frame)
	}
}

func (h *Hub) deliverLocked(conn domain.Connection, frame []byte) {
	if err := conn.Send(frame); err != nil {
		slog.Warn("send failed, closing connection", "clientId", conn.ID(), "error", err)
		conn.Close()
	}
}

func encode(event string, payload any) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal error", "event", event, "error", err)
		return nil
	}
	frame, err := json.Marshal(domain.Envelope{Type: event, Data: data})
	if err != nil {
		slog.Error("marshal error", "event", event, "error", err)
		return nil
	}
	return frame
}
