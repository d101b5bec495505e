package voice

import (
	"context"
	"sync"

	"github.com/voxprep/backend/internal/models"
)

type EventType string

const (
	EventCallStart   EventType = "call-start"
	EventCallEnd     EventType = "call-end"
	EventSpeechStart EventType = "speech-start"
	EventSpeechEnd   EventType = "speech-end"
	EventTranscript  EventType = "transcript"
	EventError       EventType = "error"
)

// Event is one asynchronous lifecycle/transcript signal from the voice agent.
type Event struct {
	Type    EventType   `json:"type"`
	Role    models.Role `json:"role,omitempty"`
	Text    string      `json:"text,omitempty"`
	Final   bool        `json:"is_final,omitempty"`
	Message string      `json:"message,omitempty"`
}

// CallParams describes one call launch against the remote agent.
type CallParams struct {
	SessionID string
	UserID    string
	UserName  string
	Type      string // "interview" | "generate"
	Questions []string
}

// Provider is the call-provider boundary. Launch failures are synchronous;
// everything after a successful launch arrives through subscriptions. Calls,
// teardown, and event feeds are all keyed by session: one session's events
// are never visible to another session's subscribers.
type Provider interface {
	Configured() bool
	Start(ctx context.Context, p CallParams) error
	Stop(ctx context.Context, sessionID string) error
	Subscribe(sessionID string) *Subscription
}

// Subscription is an explicitly owned event feed. Close releases it; events
// sent after Close are dropped.
type Subscription struct {
	C <-chan Event

	once   sync.Once
	cancel func()
}

// NewSubscription wraps an event channel with its release hook. Provider
// implementations (and their test doubles) build subscriptions with it.
func NewSubscription(c chan Event, cancel func()) *Subscription {
	return &Subscription{C: c, cancel: cancel}
}

func (s *Subscription) Close() {
	s.once.Do(s.cancel)
}
