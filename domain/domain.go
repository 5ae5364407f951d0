// Package domain defines the wire protocol, the session model, and the
// interfaces that connect the transport, protocol, and hub layers.
package domain

import (
	"encoding/json"
	"errors"
	"time"
)

// Inbound event types.
const (
	EventUserJoin       = "user_join"
	EventSendMessage    = "send_message"
	EventPrivateMessage = "private_message"
	EventTyping         = "typing"
)

// Outbound event types.
const (
	EventUserList       = "user_list"
	EventUserJoined     = "user_joined"
	EventUserLeft       = "user_left"
	EventReceiveMessage = "receive_message"
	EventTypingUsers    = "typing_users"
)

// ErrDuplicateConnection reports a registration for a connection id that
// already holds a session. The registry overwrites the stale entry; the
// caller decides how loudly to complain.
var ErrDuplicateConnection = errors.New("duplicate connection id")

// Envelope is the framing for every message in either direction.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// JoinPayload carries the display name a client claims at join time.
type JoinPayload struct {
	Username string `json:"username"`
}

// SendMessagePayload is a public chat message from a client.
type SendMessagePayload struct {
	Message string `json:"message"`
}

// PrivateMessagePayload addresses a message to one connection id.
type PrivateMessagePayload struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// TypingPayload toggles the sender's typing indicator.
type TypingPayload struct {
	IsTyping bool `json:"isTyping"`
}

// UserEntry is one row of the published user list.
type UserEntry struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// PresencePayload announces a single join or leave.
type PresencePayload struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// TypingNotice is the relayed typing state of one user.
type TypingNotice struct {
	Username string `json:"username"`
	IsTyping bool   `json:"isTyping"`
}

// ChatMessage is a delivered chat message. Public and system messages go out
// as receive_message; private ones as private_message with ToUser set.
// System messages set System and omit Sender.
type ChatMessage struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender,omitempty"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	ToUser    string    `json:"toUser,omitempty"`
	System    bool      `json:"system,omitempty"`
}

// Session is the registered identity of one live connection.
type Session struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	JoinedAt time.Time `json:"joinedAt"`
}

// Connection is the transport-level handle the hub delivers frames through.
type Connection interface {
	ID() string
	Send(data []byte) error
	Close() error
}

// Roster is the shared presence and routing surface. Every method is safe for
// concurrent use; registry mutation and the resulting fan-out happen as one
// atomic step relative to other callers.
type Roster interface {
	Join(conn Connection, username string)
	Leave(conn Connection)
	SendPublic(senderID, text string)
	SendPrivate(senderID, targetID, text string)
	SetTyping(senderID string, isTyping bool)
	Stats() (clients, typing int)
}

// MessageHandler consumes inbound frames and the disconnect signal for one
// connection. The transport adapter calls it from a single goroutine.
type MessageHandler interface {
	Handle(conn Connection, data []byte)
	Disconnect(conn Connection)
}
