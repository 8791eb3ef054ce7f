// Package conversation holds the append-only message log exchanged between
// the investigating agent and the model during one RCA episode.
package conversation

import (
	"errors"
	"fmt"
)

// Role identifies the author of a message in the conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single entry in the conversation. Immutable once appended.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ErrInvariantViolation signals an append that would break the role ordering
// contract. This is a programming bug in the caller, never a recoverable
// runtime condition.
var ErrInvariantViolation = errors.New("conversation: role ordering invariant violated")

// History is the ordered, append-only log for one episode. The first two
// entries must be exactly one system message followed by one user message;
// after that, roles strictly alternate between user and assistant.
//
// History performs no truncation or summarization. The full log is rendered
// on every model call; unbounded growth is an accepted operating constraint
// and context-length failures surface at the model-client boundary.
type History struct {
	messages []Message
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{}
}

// Append adds a message to the end of the log, enforcing the ordering
// invariant. The returned error wraps ErrInvariantViolation.
func (h *History) Append(msg Message) error {
	switch {
	case msg.Role != RoleSystem && msg.Role != RoleUser && msg.Role != RoleAssistant:
		return fmt.Errorf("%w: unknown role %q", ErrInvariantViolation, msg.Role)
	case len(h.messages) == 0:
		if msg.Role != RoleSystem {
			return fmt.Errorf("%w: first message must be %q, got %q", ErrInvariantViolation, RoleSystem, msg.Role)
		}
	case len(h.messages) == 1:
		if msg.Role != RoleUser {
			return fmt.Errorf("%w: second message must be %q, got %q", ErrInvariantViolation, RoleUser, msg.Role)
		}
	default:
		if msg.Role == RoleSystem {
			return fmt.Errorf("%w: only the first message may be %q", ErrInvariantViolation, RoleSystem)
		}
		if last := h.messages[len(h.messages)-1].Role; last == msg.Role {
			return fmt.Errorf("%w: consecutive %q messages", ErrInvariantViolation, msg.Role)
		}
	}

	h.messages = append(h.messages, msg)
	return nil
}

// Render returns the full ordered sequence for submission to the model.
// The returned slice is a copy; callers cannot mutate the log through it.
func (h *History) Render() []Message {
	out := make([]Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// Len reports the number of messages appended so far.
func (h *History) Len() int {
	return len(h.messages)
}

// Last returns the most recent message, if any.
func (h *History) Last() (Message, bool) {
	if len(h.messages) == 0 {
		return Message{}, false
	}
	return h.messages[len(h.messages)-1], true
}
