package tui

import (
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/hylla/roost/internal/board"
	"github.com/hylla/roost/internal/domain"
)

// boardHit describes what sits under one viewport cell.
type boardHit struct {
	column int
	card   int
	cardID string
	center board.Point
}

// hitTest maps a viewport cell to a column and, when present, a card.
func (m Model) hitTest(x, y int) (boardHit, bool) {
	if y < boardTop {
		return boardHit{}, false
	}
	scroll := m.board.ScrollOffset()
	status, ok := board.Resolve(x, m.board.Layout(), scroll)
	if !ok {
		return boardHit{}, false
	}
	hit := boardHit{column: status.Index(), card: -1}
	row := y - cardsTop
	if row < 0 {
		return hit, true
	}
	idx := row / cardHeight
	cards := m.visibleColumn(status)
	if idx >= len(cards) {
		return hit, true
	}
	extent, _ := m.board.Layout().Extent(status)
	hit.card = idx
	hit.cardID = cards[idx].ID
	hit.center = board.Point{
		X: extent.OriginX - scroll + extent.Width/2,
		Y: cardsTop + idx*cardHeight + cardHeight/2,
	}
	return hit, true
}

// handleMouseClick selects what was pressed and arms a long press on cards.
func (m Model) handleMouseClick(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	if msg.Button != tea.MouseLeft || m.mode != modeNone || m.help.ShowAll {
		return m, nil
	}
	if m.board.Dragging() {
		// The release for this drag never arrived.
		m.abandonDrag("drag cancelled")
	}
	hit, ok := m.hitTest(msg.X, msg.Y)
	if !ok {
		m.press = pressState{}
		return m, nil
	}
	m.selectedColumn = hit.column
	if hit.card < 0 {
		m.selectedCard = 0
		m.press = pressState{}
		return m, nil
	}
	m.selectedCard = hit.card
	if m.board.Pending(hit.cardID) {
		m.press = pressState{}
		m.status = "still saving"
		return m, nil
	}

	m.pressSeq++
	at := board.Point{X: msg.X, Y: msg.Y}
	m.press = pressState{
		armed:  true,
		seq:    m.pressSeq,
		cardID: hit.cardID,
		start:  at,
		last:   at,
		center: hit.center,
	}
	seq := m.pressSeq
	return m, tea.Tick(m.longPressDelay, func(time.Time) tea.Msg {
		return longPressMsg{seq: seq}
	})
}

// activateDrag starts the drag once a press outlives the long-press delay.
func (m Model) activateDrag(msg longPressMsg) (tea.Model, tea.Cmd) {
	if !m.press.armed || m.press.active || msg.seq != m.press.seq {
		return m, nil
	}
	if err := m.board.BeginDrag(m.press.cardID, m.press.center); err != nil {
		m.press = pressState{}
		m.status = "can't drag: " + err.Error()
		return m, nil
	}
	m.press.active = true
	if dx, dy := m.press.last.X-m.press.start.X, m.press.last.Y-m.press.start.Y; dx != 0 || dy != 0 {
		m.trackPointer(dx, dy)
	}
	card := m.board.Session().Card()
	m.status = "dragging " + card.Title
	return m, nil
}

// handleMouseMotion feeds the gesture translation into the drag session.
func (m Model) handleMouseMotion(msg tea.MouseMotionMsg) (tea.Model, tea.Cmd) {
	if !m.press.armed {
		return m, nil
	}
	m.press.last = board.Point{X: msg.X, Y: msg.Y}
	if m.press.active {
		m.trackPointer(m.press.last.X-m.press.start.X, m.press.last.Y-m.press.start.Y)
	}
	return m, nil
}

// handleMouseRelease drops the dragged card. A release before the long press
// fires is a plain click.
func (m Model) handleMouseRelease(msg tea.MouseReleaseMsg) (tea.Model, tea.Cmd) {
	if !m.press.armed {
		return m, nil
	}
	wasActive, start := m.press.active, m.press.start
	m.press = pressState{}
	if !wasActive || !m.board.Dragging() {
		return m, nil
	}
	m.trackPointer(msg.X-start.X, msg.Y-start.Y)

	drop, err := m.board.ReleaseDrag()
	if err != nil {
		return m, m.showToast("drop failed: " + err.Error())
	}
	switch drop.Outcome {
	case board.DropMiss:
		m.status = "dropped outside the columns"
		return m, nil
	case board.DropNoop:
		m.status = "already in " + drop.Target.Label()
		return m, nil
	}
	m.selectCard(drop.CardID)
	m.status = "saving..."
	return m, m.persistCmd(drop.Transition)
}

// trackPointer moves the live pointer of the active drag. Callers only reach
// it with the session Active, the one state in which MoveDrag cannot fail.
func (m Model) trackPointer(dx, dy int) {
	_ = m.board.MoveDrag(dx, dy)
}

// abandonDrag cancels the drag session and forgets the press that started it.
func (m *Model) abandonDrag(status string) {
	m.board.CancelDrag()
	m.press = pressState{}
	m.status = status
}

// handleMouseWheel scrolls the board horizontally or moves the card cursor.
func (m Model) handleMouseWheel(msg tea.MouseWheelMsg) (tea.Model, tea.Cmd) {
	if m.mode != modeNone || m.help.ShowAll {
		return m, nil
	}
	horizontal := msg.Mod&tea.ModShift != 0
	switch msg.Button {
	case tea.MouseWheelLeft:
		m.scrollBy(-m.scrollStep)
	case tea.MouseWheelRight:
		m.scrollBy(m.scrollStep)
	case tea.MouseWheelUp:
		if horizontal {
			m.scrollBy(-m.scrollStep)
		} else if !m.board.Dragging() && m.selectedCard > 0 {
			m.selectedCard--
		}
	case tea.MouseWheelDown:
		if horizontal {
			m.scrollBy(m.scrollStep)
		} else if !m.board.Dragging() {
			m.selectedCard++
			m.clampSelection()
		}
	}
	return m, nil
}

// dragGhostOrigin returns where the lifted card is drawn in the viewport.
func (m Model) dragGhostOrigin() (board.Point, domain.Card, bool) {
	session := m.board.Session()
	if session.State() != board.SessionActive {
		return board.Point{}, domain.Card{}, false
	}
	p := session.Pointer()
	return board.Point{X: p.X - m.columnWidth/2, Y: p.Y - cardHeight/2}, session.Card(), true
}
