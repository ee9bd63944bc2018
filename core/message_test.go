package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"system", RoleSystem, false},
		{"user", RoleUser, false},
		{"assistant", RoleAssistant, false},
		{"USER", RoleUser, false},
		{"Assistant", RoleAssistant, false},
		{"bot", "", true},
		{"", "", true},
		{"tool", "", true},
	}

	for _, tt := range tests {
		got, err := ParseRole(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidRole) {
				t.Errorf("ParseRole(%q): expected ErrInvalidRole, got %v", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseRole(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseRole(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHistory_AppendOrder(t *testing.T) {
	h := NewHistory("")

	const n = 10
	for i := 0; i < n; i++ {
		if _, err := h.Append(RoleUser, fmt.Sprintf("message %d", i)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	msgs := h.Messages()
	if len(msgs) != n {
		t.Fatalf("expected %d messages, got %d", n, len(msgs))
	}
	for i, m := range msgs {
		if want := fmt.Sprintf("message %d", i); m.Content != want {
			t.Errorf("message %d: content %q, want %q", i, m.Content, want)
		}
	}
}

func TestHistory_AppendInvalidRole(t *testing.T) {
	h := NewHistory("")

	_, err := h.Append(Role("bot"), "hi")
	if !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
	if h.Len() != 0 {
		t.Fatalf("invalid append must not grow the history, got len %d", h.Len())
	}
}

func TestHistory_GeneratedSessionID(t *testing.T) {
	h := NewHistory("")
	if h.SessionID() == "" {
		t.Fatal("expected a generated session id")
	}

	h2 := NewHistory("")
	if h.SessionID() == h2.SessionID() {
		t.Fatal("two histories must not share a session id")
	}

	msg, err := h.Append(RoleUser, "hello")
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if msg.SessionID != h.SessionID() {
		t.Errorf("message session id %q, want %q", msg.SessionID, h.SessionID())
	}
	if msg.ID == "" {
		t.Error("expected a generated message id")
	}
	if msg.Timestamp.IsZero() {
		t.Error("expected a non-zero timestamp")
	}
}

func TestHistory_SuppliedSessionID(t *testing.T) {
	h := NewHistory("my-session")
	if h.SessionID() != "my-session" {
		t.Fatalf("session id %q, want %q", h.SessionID(), "my-session")
	}
}

func TestHistory_AppendOptions(t *testing.T) {
	h := NewHistory("")

	msg, err := h.Append(RoleUser, "hi", WithUserID("u-1"), WithTags("greeting", "test"))
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if msg.UserID != "u-1" {
		t.Errorf("user id %q, want %q", msg.UserID, "u-1")
	}
	if len(msg.Tags) != 2 || msg.Tags[0] != "greeting" || msg.Tags[1] != "test" {
		t.Errorf("tags %v, want [greeting test]", msg.Tags)
	}
}

func TestHistory_MessagesAreCopies(t *testing.T) {
	h := NewHistory("")
	if _, err := h.Append(RoleUser, "hi", WithTags("a")); err != nil {
		t.Fatalf("Append: %v", err)
	}

	msgs := h.Messages()
	msgs[0].Content = "mutated"
	msgs[0].Tags[0] = "mutated"

	fresh := h.Messages()
	if fresh[0].Content != "hi" {
		t.Error("mutating the returned slice must not affect the history")
	}
	if fresh[0].Tags[0] != "a" {
		t.Error("mutating returned tags must not affect the history")
	}
}
