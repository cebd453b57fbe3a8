package board

import "github.com/hylla/roost/internal/domain"

// SessionState is a drag session's lifecycle phase.
type SessionState int

// Session states.
const (
	SessionIdle SessionState = iota
	SessionActive
	SessionResolving
)

// String returns a readable state name.
func (s SessionState) String() string {
	switch s {
	case SessionIdle:
		return "idle"
	case SessionActive:
		return "active"
	case SessionResolving:
		return "resolving"
	default:
		return "unknown"
	}
}

// Point is a pointer position in screen cells.
type Point struct {
	X int
	Y int
}

// Add returns p translated by (dx, dy).
func (p Point) Add(dx, dy int) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Visual describes how the dragged card is drawn.
type Visual struct {
	Opacity float64
	Scale   float64
}

// Visual states for a resting and a lifted card.
var (
	NeutralVisual = Visual{Opacity: 1, Scale: 1}
	LiftedVisual  = Visual{Opacity: 0.8, Scale: 1.05}
)

// Lifted reports whether v differs from the resting look.
func (v Visual) Lifted() bool {
	return v != NeutralVisual
}

// Session tracks one card relocation gesture.
type Session struct {
	state   SessionState
	card    domain.Card
	origin  Point
	pointer Point
	valid   bool
	visual  Visual
	scroll  *ScrollTracker
}

// NewSession constructs an idle session. scroll, when set, is locked for the
// duration of an active drag.
func NewSession(scroll *ScrollTracker) *Session {
	return &Session{visual: NeutralVisual, scroll: scroll}
}

// Begin starts a drag of card from its screen center.
func (s *Session) Begin(card domain.Card, center Point) error {
	if s.state != SessionIdle {
		return ErrSessionBusy
	}
	s.state = SessionActive
	s.card = card
	s.origin = center
	s.pointer = center
	s.valid = true
	s.visual = LiftedVisual
	if s.scroll != nil {
		s.scroll.Lock()
	}
	return nil
}

// Move sets the live pointer to the origin translated by the gesture delta.
func (s *Session) Move(dx, dy int) error {
	if s.state != SessionActive {
		return ErrNoActiveSession
	}
	s.pointer = s.origin.Add(dx, dy)
	return nil
}

// Release snapshots the live pointer and enters resolution.
func (s *Session) Release() (Point, error) {
	if s.state != SessionActive || !s.valid {
		return Point{}, ErrNoActiveSession
	}
	s.state = SessionResolving
	return s.pointer, nil
}

// MarkCommitted invalidates the session once a commit has started for it.
func (s *Session) MarkCommitted() {
	s.valid = false
}

// Finish ends resolution and returns the session to idle.
func (s *Session) Finish() {
	if s.state != SessionResolving {
		return
	}
	s.clear()
}

// Cancel abandons an active drag. It reports whether a drag was cancelled.
func (s *Session) Cancel() bool {
	if s.state != SessionActive {
		return false
	}
	s.clear()
	return true
}

func (s *Session) clear() {
	s.state = SessionIdle
	s.card = domain.Card{}
	s.origin = Point{}
	s.pointer = Point{}
	s.valid = false
	s.visual = NeutralVisual
	if s.scroll != nil {
		s.scroll.Unlock()
	}
}

// State returns the current lifecycle phase.
func (s *Session) State() SessionState { return s.state }

// Card returns the dragged card.
func (s *Session) Card() domain.Card { return s.card }

// Origin returns the pointer position captured at drag start.
func (s *Session) Origin() Point { return s.origin }

// Pointer returns the live pointer position.
func (s *Session) Pointer() Point { return s.pointer }

// Valid reports whether the session may still be resolved.
func (s *Session) Valid() bool { return s.valid }

// Visual returns the dragged card's current look.
func (s *Session) Visual() Visual { return s.visual }
