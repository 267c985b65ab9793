package store

import (
	"fmt"
	"time"
)

// State is the dialogue position of a call. States are ordered; a session's
// state never moves backwards.
type State int

const (
	StateWelcome State = iota
	StateMode
	StateOrder
	StateExtras
	StateName
	StatePhone
	StateAddress
	StateSummary
)

var stateNames = [...]string{"WELCOME", "MODE", "ORDER", "EXTRAS", "NAME", "PHONE", "ADDRESS", "SUMMARY"}

func (s State) String() string {
	if s < StateWelcome || s > StateSummary {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for i, name := range stateNames {
		if name == string(text) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown dialogue state %q", string(text))
}

// Fulfillment modes
const (
	ModeDelivery = "delivery"
	ModePickup   = "pickup"
)

// Message roles in the per-call history
const (
	RoleCaller = "user"
	RoleAgent  = "assistant"
)

// OrderLine is one unit of a menu item. Quantity 3 yields three lines.
type OrderLine struct {
	Item           string   `json:"item"`
	Extras         []string `json:"extras"`
	ExtrasResolved bool     `json:"extras_resolved"`
}

// HasExtra reports whether extra is already on the line.
func (l *OrderLine) HasExtra(extra string) bool {
	for _, e := range l.Extras {
		if e == extra {
			return true
		}
	}
	return false
}

// AddExtra adds extra with set semantics.
func (l *OrderLine) AddExtra(extra string) {
	if !l.HasExtra(extra) {
		l.Extras = append(l.Extras, extra)
	}
}

// Clarification is the single pending question raised when an extra mention
// matched several catalog extras. It covers the LineCount lines created by
// that mention, starting at LineIndex.
type Clarification struct {
	LineIndex int      `json:"line_index"`
	LineCount int      `json:"line_count,omitempty"`
	Keyword   string   `json:"keyword"`
	Options   []string `json:"options"`
}

// Covers returns the indexes, below n, of the lines the answer applies to.
// A zero LineCount covers LineIndex alone.
func (c Clarification) Covers(n int) []int {
	count := c.LineCount
	if count < 1 {
		count = 1
	}
	var idx []int
	for i := c.LineIndex; i < c.LineIndex+count && i < n; i++ {
		if i >= 0 {
			idx = append(idx, i)
		}
	}
	return idx
}

// Message is one entry of the call's dialogue history.
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Session is the full state of one phone call.
type Session struct {
	CallID string `json:"call_id"`
	State  State  `json:"state"`
	Mode   string `json:"mode"`

	Lines      []OrderLine `json:"lines"`
	ActiveLine int         `json:"active_line"`

	CustomerName    string `json:"customer_name"`
	CustomerPhone   string `json:"customer_phone"`
	CustomerAddress string `json:"customer_address"`

	Pending *Clarification `json:"pending,omitempty"`

	History []Message `json:"history"`

	// Replay detection for redelivered webhooks
	LastDeliveryKey string    `json:"last_delivery_key"`
	LastDeliveryAt  time.Time `json:"last_delivery_at"`
	LastReply       string    `json:"last_reply"`
	LastContinue    bool      `json:"last_continue"`

	// AwaitingConfirmation is set while the last reply was the order summary.
	AwaitingConfirmation bool `json:"awaiting_confirmation"`

	Confirmed bool   `json:"confirmed"`
	Placed    bool   `json:"placed"`
	OrderID   string `json:"order_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession starts a call in WELCOME.
func NewSession(callID string, now time.Time) *Session {
	return &Session{
		CallID:    callID,
		State:     StateWelcome,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Advance moves the state pointer forward. Requests to move backwards are
// ignored.
func (s *Session) Advance(to State) {
	if to > s.State {
		s.State = to
	}
}

// FirstUnresolved returns the index of the first line whose extras are not
// final, or -1.
func (s *Session) FirstUnresolved() int {
	for i := range s.Lines {
		if !s.Lines[i].ExtrasResolved {
			return i
		}
	}
	return -1
}

// AppendHistory records a message, keeping at most limit entries.
func (s *Session) AppendHistory(role, text string, limit int) {
	if text == "" {
		return
	}
	s.History = append(s.History, Message{Role: role, Text: text})
	if limit > 0 && len(s.History) > limit {
		s.History = append([]Message(nil), s.History[len(s.History)-limit:]...)
	}
}

// Clone returns a deep copy so a failed turn never leaks partial mutations
// into the stored session.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	if s.Lines != nil {
		cp.Lines = make([]OrderLine, len(s.Lines))
		for i, l := range s.Lines {
			cp.Lines[i] = l
			if l.Extras != nil {
				cp.Lines[i].Extras = append([]string(nil), l.Extras...)
			}
		}
	}
	if s.Pending != nil {
		p := *s.Pending
		p.Options = append([]string(nil), s.Pending.Options...)
		cp.Pending = &p
	}
	if s.History != nil {
		cp.History = append([]Message(nil), s.History...)
	}
	return &cp
}
