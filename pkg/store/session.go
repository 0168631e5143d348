package store

import (
	"sync"
	"time"

	"aided-be/pkg/citation"
	"aided-be/pkg/flow"
)

// Roles used in the transcript. Replies are stored under "model" and
// mapped to the provider's role names at the wire.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Choice is a button attached to a transcript message.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Message is one transcript entry, already rendered for display.
type Message struct {
	Id        string            `json:"id"`
	Role      string            `json:"role"`
	Text      string            `json:"text"`
	HTML      string            `json:"html,omitempty"`
	Citations []citation.Record `json:"citations,omitempty"`
	Choices   []Choice          `json:"choices,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// Session is the active chat session state in memory. All mutation goes
// through the controller while holding the session lock.
type Session struct {
	mu sync.Mutex

	ID              string         `json:"id"`
	PolicyId        string         `json:"policy_id"`
	AnnouncedPolicy bool           `json:"announced_policy"`
	Flow            flow.State     `json:"flow"`
	RetryLedger     map[string]int `json:"-"`
	Transcript      []Message      `json:"transcript"`
	LastSubmitAt    time.Time      `json:"-"`
	InFlight        bool           `json:"-"`
	CreatedAt       time.Time      `json:"created_at"`
}

func NewSession(id, policyId string) *Session {
	return &Session{
		ID:          id,
		PolicyId:    policyId,
		RetryLedger: make(map[string]int),
		CreatedAt:   time.Now(),
	}
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// Append adds a message to the transcript and returns it.
func (s *Session) Append(msg Message) Message {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	s.Transcript = append(s.Transcript, msg)
	return msg
}

// History returns the transcript's role/text pairs for building the
// model prompt. Rendered HTML and choices stay out of the prompt.
func (s *Session) History() []Message {
	out := make([]Message, len(s.Transcript))
	copy(out, s.Transcript)
	return out
}
