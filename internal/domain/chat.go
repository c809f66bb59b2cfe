package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChatRole identifies who authored a chat message.
type ChatRole string

const (
	RoleUser  ChatRole = "user"
	RoleModel ChatRole = "model"
)

// ChatStatus tracks a message through its streaming lifecycle:
// PENDING -> STREAMING -> COMPLETE, or PENDING/STREAMING -> FAILED.
type ChatStatus string

const (
	ChatPending   ChatStatus = "PENDING"
	ChatStreaming ChatStatus = "STREAMING"
	ChatComplete  ChatStatus = "COMPLETE"
	ChatFailed    ChatStatus = "FAILED"
)

// ChatMessage is one entry in the conversation log. Text grows while the
// message is STREAMING.
type ChatMessage struct {
	ID        string     `json:"id"`
	Role      ChatRole   `json:"role"`
	Text      string     `json:"text"`
	Status    ChatStatus `json:"status"`
	Timestamp time.Time  `json:"timestamp"`
}

// NewUserMessage builds a finished user message.
func NewUserMessage(text string) ChatMessage {
	return ChatMessage{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Text:      text,
		Status:    ChatComplete,
		Timestamp: time.Now(),
	}
}

// NewModelMessage builds the empty placeholder that a streaming response
// will fill in.
func NewModelMessage() ChatMessage {
	return ChatMessage{
		ID:        uuid.NewString(),
		Role:      RoleModel,
		Status:    ChatPending,
		Timestamp: time.Now(),
	}
}

// ChatEventType names the transitions of the message lifecycle.
type ChatEventType string

const (
	EventChunk    ChatEventType = "chunk"
	EventComplete ChatEventType = "complete"
	EventFail     ChatEventType = "fail"
)

// ChatEvent is one lifecycle transition applied to a message by ID.
// Text carries the appended chunk for EventChunk, or the replacement
// text for EventFail (empty means keep whatever already streamed).
type ChatEvent struct {
	Type ChatEventType
	Text string
}

func ChunkEvent(text string) ChatEvent { return ChatEvent{Type: EventChunk, Text: text} }
func CompleteEvent() ChatEvent         { return ChatEvent{Type: EventComplete} }
func FailEvent(text string) ChatEvent  { return ChatEvent{Type: EventFail, Text: text} }

// ApplyChatEvent returns a new message list with the event applied to the
// message with the given ID. It is total: an unknown ID or event type
// returns the list unchanged (as a copy). Callers install the returned
// list wholesale.
func ApplyChatEvent(msgs []ChatMessage, id string, ev ChatEvent) []ChatMessage {
	out := make([]ChatMessage, len(msgs))
	copy(out, msgs)

	for i := range out {
		if out[i].ID != id {
			continue
		}
		switch ev.Type {
		case EventChunk:
			out[i].Text += ev.Text
			out[i].Status = ChatStreaming
		case EventComplete:
			out[i].Status = ChatComplete
		case EventFail:
			if ev.Text != "" {
				out[i].Text = ev.Text
			}
			out[i].Status = ChatFailed
		}
		break
	}
	return out
}
