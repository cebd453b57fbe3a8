package tui

import (
	"testing"

	"charm.land/bubbles/v2/key"
)

// TestKeyMapHelpCoversBindings verifies every binding appears in full help exactly once.
func TestKeyMapHelpCoversBindings(t *testing.T) {
	k := newKeyMap()
	seen := map[string]int{}
	for _, group := range k.FullHelp() {
		for _, b := range group {
			seen[b.Help().Desc]++
		}
	}
	for _, b := range []key.Binding{
		k.quit, k.reload, k.toggleHelp, k.columnLeft, k.columnRight, k.cardUp, k.cardDown,
		k.moveLeft, k.moveRight, k.details, k.filter, k.copyAddress, k.toggleFlag, k.dismiss, k.cancel,
	} {
		if seen[b.Help().Desc] != 1 {
			t.Fatalf("binding %q appears %d times in full help", b.Help().Desc, seen[b.Help().Desc])
		}
	}
	if len(k.ShortHelp()) == 0 {
		t.Fatal("expected short help bindings")
	}
}

// TestKeyMapMoveBindings verifies bracket keys move cards between columns.
func TestKeyMapMoveBindings(t *testing.T) {
	k := newKeyMap()
	if !key.Matches(keyRune('['), k.moveLeft) || !key.Matches(keyRune(']'), k.moveRight) {
		t.Fatal("expected [ and ] to match card move bindings")
	}
	if key.Matches(keyRune('h'), k.moveLeft) {
		t.Fatal("h must select columns, not move cards")
	}
}
