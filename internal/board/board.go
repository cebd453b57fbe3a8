package board

import (
	"context"
	"errors"

	"github.com/hylla/roost/internal/domain"
)

// DropOutcome classifies the result of releasing a drag.
type DropOutcome int

// Drop outcomes.
const (
	DropMiss DropOutcome = iota
	DropNoop
	DropCommit
)

// String returns a readable outcome name.
func (o DropOutcome) String() string {
	switch o {
	case DropMiss:
		return "miss"
	case DropNoop:
		return "noop"
	case DropCommit:
		return "commit"
	default:
		return "unknown"
	}
}

// Drop describes a released drag.
type Drop struct {
	Outcome    DropOutcome
	CardID     string
	Pointer    Point
	Target     domain.Status
	Transition Transition
}

// Option configures a Board.
type Option func(*Board)

// WithNotifier sets the commit failure notifier.
func WithNotifier(n Notifier) Option {
	return func(b *Board) {
		b.notifier = n
	}
}

// Board owns the card list and the drag, layout, scroll and commit state of
// one mounted board.
type Board struct {
	cards     []domain.Card
	registry  *LayoutRegistry
	scroll    *ScrollTracker
	session   *Session
	committer *Committer
	notifier  Notifier
}

// NewBoard constructs a board over cards.
func NewBoard(cards []domain.Card, updater StatusUpdater, opts ...Option) *Board {
	b := &Board{
		cards:    append([]domain.Card(nil), cards...),
		registry: NewLayoutRegistry(),
		scroll:   &ScrollTracker{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	b.session = NewSession(b.scroll)
	b.committer = NewCommitter(updater, b.notifier)
	return b
}

// Cards returns a copy of the current card list.
func (b *Board) Cards() []domain.Card {
	return append([]domain.Card(nil), b.cards...)
}

// Card returns the card with id.
func (b *Board) Card(id string) (domain.Card, bool) {
	idx := indexOfCard(b.cards, id)
	if idx < 0 {
		return domain.Card{}, false
	}
	return b.cards[idx], true
}

// Column returns the cards currently in status, in list order.
func (b *Board) Column(status domain.Status) []domain.Card {
	out := make([]domain.Card, 0)
	for _, card := range b.cards {
		if card.Status == status {
			out = append(out, card)
		}
	}
	return out
}

// Replace swaps in a refreshed card list. Cards with an in-flight commit keep
// their optimistic status until it settles.
func (b *Board) Replace(cards []domain.Card) {
	next := append([]domain.Card(nil), cards...)
	for i := range next {
		if t, ok := b.committer.PendingTransition(next[i].ID); ok {
			next[i].Status = t.To
		}
	}
	b.cards = next
}

// RegisterColumn records a column extent from a layout pass.
func (b *Board) RegisterColumn(status domain.Status, originX, width int) {
	b.registry.Register(status, originX, width)
}

// Layout exposes the column registry.
func (b *Board) Layout() *LayoutRegistry {
	return b.registry
}

// SetScrollOffset records the viewport offset. It is ignored during a drag.
func (b *Board) SetScrollOffset(x int) bool {
	return b.scroll.SetOffset(x)
}

// ScrollOffset returns the viewport offset.
func (b *Board) ScrollOffset() int {
	return b.scroll.Offset()
}

// Session exposes the drag session for rendering.
func (b *Board) Session() *Session {
	return b.session
}

// Dragging reports whether a drag is active.
func (b *Board) Dragging() bool {
	return b.session.State() == SessionActive
}

// Pending reports whether cardID has an unsettled commit.
func (b *Board) Pending(cardID string) bool {
	return b.committer.Pending(cardID)
}

// BeginDrag starts dragging cardID from center.
func (b *Board) BeginDrag(cardID string, center Point) error {
	if b.session.State() != SessionIdle {
		return ErrSessionBusy
	}
	card, ok := b.Card(cardID)
	if !ok {
		return ErrCardNotFound
	}
	if b.committer.Pending(cardID) {
		return ErrCommitPending
	}
	return b.session.Begin(card, center)
}

// MoveDrag applies a gesture translation delta.
func (b *Board) MoveDrag(dx, dy int) error {
	return b.session.Move(dx, dy)
}

// CancelDrag abandons the active drag without side effects.
func (b *Board) CancelDrag() bool {
	return b.session.Cancel()
}

// ReleaseDrag resolves the drop target and, when it changes the card's status,
// applies the optimistic transition. The caller persists a DropCommit result
// with Persist and reports the outcome with Settle.
func (b *Board) ReleaseDrag() (Drop, error) {
	pointer, err := b.session.Release()
	if err != nil {
		return Drop{}, err
	}
	defer b.session.Finish()

	cardID := b.session.Card().ID
	drop := Drop{Outcome: DropMiss, CardID: cardID, Pointer: pointer}
	target, ok := Resolve(pointer.X, b.registry, b.scroll.Offset())
	if !ok {
		return drop, nil
	}
	drop.Target = target
	b.session.MarkCommitted()
	t, err := b.committer.Begin(b.cards, cardID, target)
	switch {
	case errors.Is(err, ErrNoopTransition):
		drop.Outcome = DropNoop
		return drop, nil
	case err != nil:
		return drop, err
	}
	drop.Outcome = DropCommit
	drop.Transition = t
	return drop, nil
}

// StartMove applies an optimistic transition of cardID to status outside of a
// drag gesture.
func (b *Board) StartMove(cardID string, to domain.Status) (Transition, error) {
	return b.committer.Begin(b.cards, cardID, to)
}

// Persist issues the persistence call for t.
func (b *Board) Persist(ctx context.Context, t Transition) error {
	return b.committer.Persist(ctx, t)
}

// Settle applies the persistence outcome for t and reports whether it reverted.
func (b *Board) Settle(t Transition, err error) bool {
	return b.committer.Settle(b.cards, t, err)
}

// Move commits cardID to status synchronously.
func (b *Board) Move(ctx context.Context, cardID string, to domain.Status) error {
	return b.committer.Commit(ctx, b.cards, cardID, to)
}
