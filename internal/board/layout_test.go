package board

import (
	"testing"

	"github.com/hylla/roost/internal/domain"
)

// TestLayoutRegistryLastWriteWins verifies overwrite semantics and stable order.
func TestLayoutRegistryLastWriteWins(t *testing.T) {
	r := NewLayoutRegistry()
	r.Register(domain.StatusSeen, 0, 20)
	r.Register(domain.StatusInterested, 22, 20)
	r.Register(domain.StatusSeen, 5, 18)

	got, ok := r.Extent(domain.StatusSeen)
	if !ok || got != (Extent{OriginX: 5, Width: 18}) {
		t.Fatalf("Extent(seen) = %#v, %v", got, ok)
	}
	cols := r.Columns()
	if len(cols) != 2 || cols[0].Status != domain.StatusSeen || cols[1].Status != domain.StatusInterested {
		t.Fatalf("unexpected column order %#v", cols)
	}
	if _, ok := r.Extent(domain.StatusVisited); ok {
		t.Fatal("expected missing extent for unregistered status")
	}
}

// TestLayoutRegistryForgetAndReset verifies column removal.
func TestLayoutRegistryForgetAndReset(t *testing.T) {
	r := NewLayoutRegistry()
	r.Register(domain.StatusSeen, 0, 20)
	r.Register(domain.StatusInterested, 22, 20)
	r.Register(domain.StatusContacted, 44, -4)
	if e, _ := r.Extent(domain.StatusContacted); e.Width != 0 {
		t.Fatalf("expected negative width clamped, got %d", e.Width)
	}
	r.Forget(domain.StatusInterested)
	r.Forget(domain.StatusVisited)
	if r.Len() != 2 {
		t.Fatalf("expected 2 columns, got %d", r.Len())
	}
	if cols := r.Columns(); cols[1].Status != domain.StatusContacted {
		t.Fatalf("unexpected order after forget %#v", cols)
	}
	r.Reset()
	if r.Len() != 0 {
		t.Fatalf("expected empty registry, got %d", r.Len())
	}
}

// TestScrollTrackerLock verifies offsets are frozen while locked.
func TestScrollTrackerLock(t *testing.T) {
	var s ScrollTracker
	if !s.SetOffset(12) || s.Offset() != 12 {
		t.Fatalf("expected offset 12, got %d", s.Offset())
	}
	s.Lock()
	if s.SetOffset(40) {
		t.Fatal("expected locked tracker to reject offset")
	}
	if s.Offset() != 12 {
		t.Fatalf("expected offset unchanged, got %d", s.Offset())
	}
	s.Unlock()
	if !s.SetOffset(-3) || s.Offset() != -3 {
		t.Fatalf("expected raw offset -3, got %d", s.Offset())
	}
}
