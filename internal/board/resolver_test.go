package board

import (
	"testing"

	"github.com/hylla/roost/internal/domain"
)

func scenarioRegistry() *LayoutRegistry {
	r := NewLayoutRegistry()
	r.Register(domain.StatusSeen, 0, 280)
	r.Register(domain.StatusInterested, 292, 280)
	return r
}

// TestResolveScenarios verifies resolution against the reference column layout.
func TestResolveScenarios(t *testing.T) {
	r := scenarioRegistry()
	cases := []struct {
		name   string
		x      int
		scroll int
		want   domain.Status
		ok     bool
	}{
		{name: "interested at rest", x: 400, scroll: 0, want: domain.StatusInterested, ok: true},
		{name: "interested scrolled", x: 400, scroll: 10, want: domain.StatusInterested, ok: true},
		{name: "seen scrolled", x: 200, scroll: 10, want: domain.StatusSeen, ok: true},
		{name: "left of every column", x: -50, scroll: 0, ok: false},
		{name: "gap between columns", x: 286, scroll: 0, ok: false},
		{name: "right of every column", x: 573, scroll: 0, ok: false},
		{name: "scrolled past interested", x: 400, scroll: 300, ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Resolve(tc.x, r, tc.scroll)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("Resolve(%d, _, %d) = %q, %v; want %q, %v", tc.x, tc.scroll, got, ok, tc.want, tc.ok)
			}
		})
	}
}

// TestResolveBoundaryFirstMatch verifies closed edges and registration-order tie breaks.
func TestResolveBoundaryFirstMatch(t *testing.T) {
	r := NewLayoutRegistry()
	r.Register(domain.StatusSeen, 0, 10)
	r.Register(domain.StatusInterested, 10, 10)
	for _, x := range []int{0, 10} {
		got, ok := Resolve(x, r, 0)
		if !ok || got != domain.StatusSeen {
			t.Fatalf("Resolve(%d) = %q, %v; want seen", x, got, ok)
		}
	}
	got, ok := Resolve(20, r, 0)
	if !ok || got != domain.StatusInterested {
		t.Fatalf("Resolve(20) = %q, %v; want interested", got, ok)
	}
}

// TestResolveMembership verifies every point strictly inside an extent resolves to that column only.
func TestResolveMembership(t *testing.T) {
	r := NewLayoutRegistry()
	statuses := domain.BoardStatuses()
	for i, status := range statuses {
		r.Register(status, i*30, 27)
	}
	for _, scroll := range []int{0, 7, 45, -12} {
		for _, col := range r.Columns() {
			start := col.Extent.OriginX - scroll
			for x := start + 1; x < start+col.Extent.Width; x++ {
				got, ok := Resolve(x, r, scroll)
				if !ok || got != col.Status {
					t.Fatalf("scroll %d x %d: got %q, %v; want %q", scroll, x, got, ok, col.Status)
				}
				matches := 0
				for _, other := range r.Columns() {
					if other.Extent.Contains(x, scroll) {
						matches++
					}
				}
				if matches != 1 {
					t.Fatalf("scroll %d x %d matched %d columns", scroll, x, matches)
				}
			}
		}
	}
}

// TestResolveScrollCorrectionLaw verifies resolve(x, s) equals resolve(x+s, 0).
func TestResolveScrollCorrectionLaw(t *testing.T) {
	r := NewLayoutRegistry()
	r.Register(domain.StatusSeen, 3, 40)
	r.Register(domain.StatusContacted, 50, 25)
	r.Register(domain.StatusVisited, 90, 60)
	for s := -60; s <= 160; s += 7 {
		for x := -80; x <= 220; x++ {
			gotS, okS := Resolve(x, r, s)
			got0, ok0 := Resolve(x+s, r, 0)
			if gotS != got0 || okS != ok0 {
				t.Fatalf("x=%d s=%d: %q,%v != %q,%v", x, s, gotS, okS, got0, ok0)
			}
		}
	}
}

// TestResolveUnregisteredColumn verifies a column without layout is unselectable.
func TestResolveUnregisteredColumn(t *testing.T) {
	if _, ok := Resolve(10, NewLayoutRegistry(), 0); ok {
		t.Fatal("expected miss on empty registry")
	}
	if _, ok := Resolve(10, nil, 0); ok {
		t.Fatal("expected miss on nil registry")
	}
}
