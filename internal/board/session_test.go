package board

import (
	"testing"

	"github.com/hylla/roost/internal/domain"
)

// TestSessionLifecycle verifies the idle, active, resolving, idle sequence.
func TestSessionLifecycle(t *testing.T) {
	scroll := &ScrollTracker{}
	s := NewSession(scroll)
	card := domain.Card{ID: "c1", Status: domain.StatusSeen}

	if err := s.Begin(card, Point{X: 10, Y: 4}); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if s.State() != SessionActive || !s.Valid() || s.Visual() != LiftedVisual {
		t.Fatalf("unexpected active session %v %v %#v", s.State(), s.Valid(), s.Visual())
	}
	if !scroll.Locked() {
		t.Fatal("expected scroll locked while active")
	}
	if err := s.Begin(card, Point{}); err != ErrSessionBusy {
		t.Fatalf("expected ErrSessionBusy, got %v", err)
	}
	if err := s.Move(5, -2); err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if err := s.Move(30, 1); err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if got := s.Pointer(); got != (Point{X: 40, Y: 5}) {
		t.Fatalf("expected pointer from origin plus delta, got %#v", got)
	}

	p, err := s.Release()
	if err != nil || p != (Point{X: 40, Y: 5}) {
		t.Fatalf("Release() = %#v, %v", p, err)
	}
	if s.State() != SessionResolving {
		t.Fatalf("expected resolving, got %v", s.State())
	}
	if err := s.Begin(card, Point{}); err != ErrSessionBusy {
		t.Fatalf("expected ErrSessionBusy while resolving, got %v", err)
	}
	if err := s.Move(1, 1); err != ErrNoActiveSession {
		t.Fatalf("expected ErrNoActiveSession while resolving, got %v", err)
	}
	if s.Cancel() {
		t.Fatal("expected cancel to be refused after release")
	}

	s.Finish()
	if s.State() != SessionIdle || s.Visual() != NeutralVisual || s.Card().ID != "" {
		t.Fatalf("expected cleared idle session, got %v %#v", s.State(), s.Card())
	}
	if scroll.Locked() {
		t.Fatal("expected scroll unlocked after finish")
	}
}

// TestSessionCancel verifies cancellation reverts visuals and unlocks scroll.
func TestSessionCancel(t *testing.T) {
	scroll := &ScrollTracker{}
	s := NewSession(scroll)
	if s.Cancel() {
		t.Fatal("expected cancel on idle session to be a no-op")
	}
	if err := s.Begin(domain.Card{ID: "c1"}, Point{X: 1, Y: 1}); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if !s.Cancel() {
		t.Fatal("expected active drag to cancel")
	}
	if s.State() != SessionIdle || s.Visual().Lifted() || scroll.Locked() {
		t.Fatalf("unexpected state after cancel %v %#v %v", s.State(), s.Visual(), scroll.Locked())
	}
	if _, err := s.Release(); err != ErrNoActiveSession {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}
}

// TestSessionInvalidCannotRelease verifies a committed session is not resolved twice.
func TestSessionInvalidCannotRelease(t *testing.T) {
	s := NewSession(nil)
	if err := s.Begin(domain.Card{ID: "c1"}, Point{}); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	s.MarkCommitted()
	if _, err := s.Release(); err != ErrNoActiveSession {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}
	if !s.Cancel() {
		t.Fatal("expected invalid active session to remain cancellable")
	}
}
