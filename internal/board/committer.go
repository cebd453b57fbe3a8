package board

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/hylla/roost/internal/domain"
)

// StatusUpdater persists a property status change.
type StatusUpdater interface {
	UpdatePropertyStatus(ctx context.Context, propertyID string, status domain.Status) (domain.Property, error)
}

// Notifier receives one notification per failed commit.
type Notifier interface {
	CommitFailed(Transition, error)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Transition, error)

// CommitFailed calls f.
func (f NotifierFunc) CommitFailed(t Transition, err error) {
	f(t, err)
}

// Transition is a reversible status change of one card.
type Transition struct {
	CardID string
	From   domain.Status
	To     domain.Status
}

// Invert returns the transition that undoes t.
func (t Transition) Invert() Transition {
	return Transition{CardID: t.CardID, From: t.To, To: t.From}
}

// Apply sets the target status on the matching card and reports whether one was found.
func (t Transition) Apply(cards []domain.Card) bool {
	idx := indexOfCard(cards, t.CardID)
	if idx < 0 {
		return false
	}
	cards[idx].Status = t.To
	return true
}

// Committer applies optimistic status transitions and settles them against a
// StatusUpdater. At most one transition per card is in flight.
type Committer struct {
	updater  StatusUpdater
	notifier Notifier
	pending  map[string]Transition
}

// NewCommitter constructs a committer.
func NewCommitter(updater StatusUpdater, notifier Notifier) *Committer {
	return &Committer{
		updater:  updater,
		notifier: notifier,
		pending:  map[string]Transition{},
	}
}

// Begin applies the transition of cardID to status on cards and marks the card pending.
func (c *Committer) Begin(cards []domain.Card, cardID string, to domain.Status) (Transition, error) {
	idx := indexOfCard(cards, cardID)
	if idx < 0 {
		return Transition{}, ErrCardNotFound
	}
	if c.Pending(cardID) {
		return Transition{}, ErrCommitPending
	}
	if !to.OnBoard() {
		return Transition{}, domain.ErrInvalidStatus
	}
	from := cards[idx].Status
	if from == to {
		return Transition{}, ErrNoopTransition
	}
	t := Transition{CardID: cardID, From: from, To: to}
	t.Apply(cards)
	c.pending[cardID] = t
	return t, nil
}

// Persist issues the single persistence call for t.
func (c *Committer) Persist(ctx context.Context, t Transition) error {
	if c.updater == nil {
		return ErrNoStatusUpdater
	}
	if _, err := c.updater.UpdatePropertyStatus(ctx, t.CardID, t.To); err != nil {
		return fmt.Errorf("update status of %s to %s: %w", t.CardID, t.To, err)
	}
	return nil
}

// Settle resolves a pending transition. On error the card reverts to its prior
// status and the notifier fires once. It reports whether a revert happened.
func (c *Committer) Settle(cards []domain.Card, t Transition, err error) bool {
	pending, ok := c.pending[t.CardID]
	if !ok || pending != t {
		return false
	}
	delete(c.pending, t.CardID)
	if err == nil {
		return false
	}
	t.Invert().Apply(cards)
	log.Warn("status commit failed", "card", t.CardID, "from", t.From, "to", t.To, "err", err)
	if c.notifier != nil {
		c.notifier.CommitFailed(t, err)
	}
	return true
}

// Commit runs Begin, Persist and Settle in sequence.
func (c *Committer) Commit(ctx context.Context, cards []domain.Card, cardID string, to domain.Status) error {
	t, err := c.Begin(cards, cardID, to)
	if err != nil {
		return err
	}
	err = c.Persist(ctx, t)
	c.Settle(cards, t, err)
	return err
}

// Pending reports whether a transition for cardID is in flight.
func (c *Committer) Pending(cardID string) bool {
	_, ok := c.pending[cardID]
	return ok
}

// PendingTransition returns the in-flight transition for cardID.
func (c *Committer) PendingTransition(cardID string) (Transition, bool) {
	t, ok := c.pending[cardID]
	return t, ok
}

func indexOfCard(cards []domain.Card, id string) int {
	for i := range cards {
		if cards[i].ID == id {
			return i
		}
	}
	return -1
}
