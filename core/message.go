// Package core holds the conversation domain of parley: roles, messages,
// per-session histories, the session store, and gateway configuration.
package core

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Role identifies the sender of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ParseRole normalizes and validates a role string. Anything other than
// system, user, or assistant fails with ErrInvalidRole.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(s)); r {
	case RoleSystem, RoleUser, RoleAssistant:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q (must be one of: system, user, assistant)", ErrInvalidRole, s)
	}
}

// Message is a single role-tagged entry in a conversation. Messages are
// immutable once created; History hands out copies, never its own slice.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id,omitempty"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Tags      []string  `json:"tags,omitempty"`
}

// History owns the ordered message sequence of one session. Appends are
// serialized by an internal lock, so concurrent requests against the same
// session cannot lose or interleave messages. The sequence is append-only;
// a leading system message is never removed.
type History struct {
	sessionID string

	mu       sync.RWMutex
	messages []Message
}

// NewHistory creates an empty history. If sessionID is empty a fresh UUID
// is generated.
func NewHistory(sessionID string) *History {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	return &History{sessionID: sessionID}
}

// SessionID returns the unique session identifier.
func (h *History) SessionID() string {
	return h.sessionID
}

// AppendOption sets optional fields on a message being appended.
type AppendOption func(*Message)

// WithUserID tags the message with the id of the user who sent it.
func WithUserID(userID string) AppendOption {
	return func(m *Message) { m.UserID = userID }
}

// WithTags attaches ordered tags to the message.
func WithTags(tags ...string) AppendOption {
	return func(m *Message) { m.Tags = tags }
}

// Append validates the role, constructs a Message, and appends it to the
// history, returning the created message.
func (h *History) Append(role Role, content string, opts ...AppendOption) (Message, error) {
	r, err := ParseRole(string(role))
	if err != nil {
		return Message{}, err
	}

	msg := Message{
		ID:        uuid.NewString(),
		SessionID: h.sessionID,
		Role:      r,
		Content:   content,
		Timestamp: time.Now(),
	}
	for _, o := range opts {
		o(&msg)
	}
	// Each message owns its tag slice; callers cannot mutate it afterwards.
	msg.Tags = slices.Clone(msg.Tags)

	h.mu.Lock()
	h.messages = append(h.messages, msg)
	h.mu.Unlock()

	return msg, nil
}

// Messages returns a defensive copy of the conversation in append order.
func (h *History) Messages() []Message {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Message, len(h.messages))
	for i, m := range h.messages {
		out[i] = m
		out[i].Tags = slices.Clone(m.Tags)
	}
	return out
}

// Len returns the number of messages in the history.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.messages)
}
