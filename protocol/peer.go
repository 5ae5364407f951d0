// Package protocol drives the per-connection lifecycle: a connection is
// unjoined until it declares a display name, joined while it chats, and
// closed once the transport drops.
package protocol

import (
	"encoding/json"
	"log/slog"
	"strings"

	"switchboard-chat-server/domain"
)

type State int

const (
	StateUnjoined State = iota
	StateJoined
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnjoined:
		return "unjoined"
	case StateJoined:
		return "joined"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Peer owns one connection's state machine and dispatches its decoded events
// into the roster. The transport adapter calls Handle and Disconnect from a
// single goroutine, so state needs no lock.
type Peer struct {
	roster domain.Roster
	state  State
}

func NewPeer(roster domain.Roster) *Peer {
	return &Peer{roster: roster, state: StateUnjoined}
}

func (p *Peer) State() State { return p.state }

func (p *Peer) Handle(conn domain.Connection, data []byte) {
	if p.state == StateClosed {
		return
	}

	var env domain.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		slog.Warn("invalid frame", "clientId", conn.ID(), "error", err)
		return
	}

	switch p.state {
	case StateUnjoined:
		if env.Type != domain.EventUserJoin {
			slog.Debug("dropping event before join", "clientId", conn.ID(), "event", env.Type)
			return
		}
		p.handleJoin(conn, env.Data)
	case StateJoined:
		p.dispatch(conn, env)
	}
}

// Disconnect moves the peer to its terminal state. A joined peer is removed
// from the roster; an unjoined one has no presence to clear.
func (p *Peer) Disconnect(conn domain.Connection) {
	if p.state == StateJoined {
		p.roster.Leave(conn)
	}
	p.state = StateClosed
}

func (p *Peer) handleJoin(conn domain.Connection, data json.RawMessage) {
	var join domain.JoinPayload
	if err := json.Unmarshal(data, &join); err != nil {
		slog.Warn("invalid join payload", "clientId", conn.ID(), "error", err)
		return
	}

	username := strings.TrimSpace(join.Username)
	if username == "" {
		slog.Debug("dropping join with empty username", "clientId", conn.ID())
		return
	}

	p.roster.Join(conn, username)
	p.state = StateJoined
}

func (p *Peer) dispatch(conn domain.Connection, env domain.Envelope) {
	switch env.Type {
	case domain.EventSendMessage:
		var msg domain.SendMessagePayload
		if err := json.Unmarshal(env.Data, &msg); err != nil {
			slog.Warn("invalid message payload", "clientId", conn.ID(), "error", err)
			return
		}
		p.roster.SendPublic(conn.ID(), msg.Message)

	case domain.EventPrivateMessage:
		var pm domain.PrivateMessagePayload
		if err := json.Unmarshal(env.Data, &pm); err != nil {
			slog.Warn("invalid private payload", "clientId", conn.ID(), "error", err)
			return
		}
		p.roster.SendPrivate(conn.ID(), pm.To, pm.Message)

	case domain.EventTyping:
		var t domain.TypingPayload
		if err := json.Unmarshal(env.Data, &t); err != nil {
			slog.Warn("invalid typing payload", "clientId", conn.ID(), "error", err)
			return
		}
		p.roster.SetTyping(conn.ID(), t.IsTyping)

	case domain.EventUserJoin:
		slog.Warn("duplicate join ignored", "clientId", conn.ID())

	default:
		slog.Debug("unknown event", "clientId", conn.ID(), "event", env.Type)
	}
}
