package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"
	"github.com/hylla/roost/internal/board"
	"github.com/hylla/roost/internal/domain"
	"github.com/sahilm/fuzzy"
)

// Service is the property backend behind the board.
type Service interface {
	ListBoardCards(context.Context) ([]domain.Card, error)
	GetProperty(context.Context, string) (domain.Property, error)
	UpdatePropertyStatus(context.Context, string, domain.Status) (domain.Property, error)
	ListStatusHistory(context.Context, string, int) ([]domain.StatusChange, error)
}

// flagger is implemented by backends that can toggle the flag marker.
type flagger interface {
	SetPropertyFlagged(context.Context, string, bool) (domain.Property, error)
}

// inputMode represents a selectable mode.
type inputMode int

const (
	modeNone inputMode = iota
	modeFilter
	modeDetail
)

// Board geometry in terminal cells.
const (
	boardTop   = 2
	cardsTop   = boardTop + 2
	cardHeight = 4
)

// Model is the bubbletea model for the property board.
type Model struct {
	svc      Service
	board    *board.Board
	failed   *failureQueue
	keys     keyMap
	help     help.Model
	title    string
	status   string
	err      error
	ready    bool
	loaded   bool
	width    int
	height   int
	mode     inputMode
	filter   textinput.Model
	query    string
	detail   detailState
	md       *markdownRenderer
	press    pressState
	toast    toastState
	copyText func(string) error

	columnWidth    int
	columnGap      int
	scrollStep     int
	longPressDelay time.Duration
	toastDuration  time.Duration
	showPrice      bool
	historyLimit   int

	selectedColumn int
	selectedCard   int
	pressSeq       int
}

// pressState tracks one mouse press that may become a drag.
type pressState struct {
	armed  bool
	active bool
	seq    int
	cardID string
	start  board.Point
	last   board.Point
	center board.Point
}

type toastState struct {
	text string
	seq  int
}

type detailState struct {
	loading  bool
	property domain.Property
	history  []domain.StatusChange
}

// failureQueue collects commit failures reported by the board notifier until
// the next update drains them.
type failureQueue struct {
	items []failedCommit
}

type failedCommit struct {
	transition board.Transition
	err        error
}

func (q *failureQueue) push(t board.Transition, err error) {
	q.items = append(q.items, failedCommit{transition: t, err: err})
}

func (q *failureQueue) drain() []failedCommit {
	out := q.items
	q.items = nil
	return out
}

// cardsLoadedMsg carries a refreshed card list.
type cardsLoadedMsg struct {
	cards []domain.Card
	err   error
}

// longPressMsg fires when a press has been held long enough to start a drag.
type longPressMsg struct {
	seq int
}

// commitSettledMsg carries the persistence outcome of one transition.
type commitSettledMsg struct {
	transition board.Transition
	err        error
}

type toastExpiredMsg struct {
	seq int
}

type detailLoadedMsg struct {
	property domain.Property
	history  []domain.StatusChange
	err      error
}

// actionMsg carries message data through update handling.
type actionMsg struct {
	status string
	err    error
	reload bool
}

// NewModel constructs a board model over svc.
func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	filter := textinput.New()
	filter.Prompt = "/ "
	filter.Placeholder = "title or address"
	filter.CharLimit = 120
	m := Model{
		svc:            svc,
		failed:         &failureQueue{},
		keys:           newKeyMap(),
		help:           h,
		title:          "roost",
		status:         "loading...",
		filter:         filter,
		md:             &markdownRenderer{},
		copyText:       clipboard.WriteAll,
		columnWidth:    28,
		columnGap:      2,
		scrollStep:     10,
		longPressDelay: 350 * time.Millisecond,
		toastDuration:  4 * time.Second,
		showPrice:      true,
		historyLimit:   20,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	failed := m.failed
	m.board = board.NewBoard(nil, svc, board.WithNotifier(board.NotifierFunc(failed.push)))
	m.layoutColumns()
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return m.loadCards
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		m.scrollBy(0)
		return m, nil

	case tea.FocusMsg:
		return m, m.loadCards

	case tea.BlurMsg:
		if m.board.Dragging() {
			m.abandonDrag("drag cancelled: focus lost")
		}
		return m, nil

	case cardsLoadedMsg:
		if msg.err != nil {
			if !m.loaded {
				m.err = msg.err
				return m, nil
			}
			return m, m.showToast("reload failed: " + msg.err.Error())
		}
		m.err = nil
		m.loaded = true
		m.board.Replace(msg.cards)
		m.clampSelection()
		m.status = "ready"
		return m, nil

	case longPressMsg:
		return m.activateDrag(msg)

	case commitSettledMsg:
		reverted := m.board.Settle(msg.transition, msg.err)
		cmd := m.reportFailures()
		if !reverted && msg.err == nil {
			m.status = "moved to " + msg.transition.To.Label()
		}
		m.clampSelection()
		return m, cmd

	case toastExpiredMsg:
		if msg.seq == m.toast.seq {
			m.toast = toastState{seq: m.toast.seq}
		}
		return m, nil

	case detailLoadedMsg:
		if m.mode != modeDetail {
			return m, nil
		}
		if msg.err != nil {
			m.mode = modeNone
			m.detail = detailState{}
			return m, m.showToast("details unavailable: " + msg.err.Error())
		}
		m.detail = detailState{property: msg.property, history: msg.history}
		return m, nil

	case actionMsg:
		if msg.err != nil {
			return m, m.showToast(msg.err.Error())
		}
		if msg.status != "" {
			m.status = msg.status
		}
		if msg.reload {
			return m, m.loadCards
		}
		return m, nil

	case tea.KeyPressMsg:
		switch m.mode {
		case modeFilter:
			return m.handleFilterKey(msg)
		case modeDetail:
			return m.handleDetailKey(msg)
		}
		return m.handleNormalModeKey(msg)

	case tea.MouseClickMsg:
		return m.handleMouseClick(msg)

	case tea.MouseMotionMsg:
		return m.handleMouseMotion(msg)

	case tea.MouseReleaseMsg:
		return m.handleMouseRelease(msg)

	case tea.MouseWheelMsg:
		return m.handleMouseWheel(msg)

	default:
		if m.mode == modeFilter {
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			return m, cmd
		}
		return m, nil
	}
}

// loadCards fetches the open properties as board cards.
func (m Model) loadCards() tea.Msg {
	cards, err := m.svc.ListBoardCards(context.Background())
	return cardsLoadedMsg{cards: cards, err: err}
}

// layoutColumns registers every board column extent. Extents end one cell
// before the gap so neighbouring columns never share a boundary cell.
func (m *Model) layoutColumns() {
	layout := m.board.Layout()
	layout.Reset()
	for i, status := range domain.BoardStatuses() {
		layout.Register(status, m.columnOrigin(i), m.columnWidth-1)
	}
}

func (m Model) columnOrigin(idx int) int {
	return idx * (m.columnWidth + m.columnGap)
}

func (m Model) contentWidth() int {
	n := len(domain.BoardStatuses())
	return n*m.columnWidth + (n-1)*m.columnGap
}

func (m Model) maxScroll() int {
	if m.width <= 0 {
		return 0
	}
	return max(0, m.contentWidth()-m.width)
}

// scrollBy shifts the viewport. The board ignores the change during a drag.
func (m *Model) scrollBy(delta int) bool {
	target := clamp(m.board.ScrollOffset()+delta, 0, m.maxScroll())
	if target == m.board.ScrollOffset() {
		return false
	}
	return m.board.SetScrollOffset(target)
}

// ensureColumnVisible scrolls so the selected column is fully on screen.
func (m *Model) ensureColumnVisible() {
	if m.width <= 0 {
		return
	}
	origin := m.columnOrigin(m.selectedColumn)
	offset := m.board.ScrollOffset()
	switch {
	case origin < offset:
		m.scrollBy(origin - offset)
	case origin+m.columnWidth > offset+m.width:
		m.scrollBy(origin + m.columnWidth - offset - m.width)
	}
}

// visibleColumn returns the cards shown in status after filtering.
func (m Model) visibleColumn(status domain.Status) []domain.Card {
	cards := m.board.Column(status)
	query := strings.TrimSpace(m.query)
	if query == "" || len(cards) == 0 {
		return cards
	}
	matches := fuzzy.FindFrom(query, cardSource(cards))
	idx := make([]int, 0, len(matches))
	for _, match := range matches {
		idx = append(idx, match.Index)
	}
	slices.Sort(idx)
	out := make([]domain.Card, 0, len(idx))
	for _, i := range idx {
		out = append(out, cards[i])
	}
	return out
}

// cardSource adapts cards to fuzzy.Source.
type cardSource []domain.Card

func (s cardSource) String(i int) string {
	return s[i].Title + " " + s[i].Address
}

func (s cardSource) Len() int {
	return len(s)
}

func (m Model) selectedStatus() domain.Status {
	statuses := domain.BoardStatuses()
	return statuses[clamp(m.selectedColumn, 0, len(statuses)-1)]
}

// selectedCardValue returns the focused card.
func (m Model) selectedCardValue() (domain.Card, bool) {
	cards := m.visibleColumn(m.selectedStatus())
	if len(cards) == 0 {
		return domain.Card{}, false
	}
	return cards[clamp(m.selectedCard, 0, len(cards)-1)], true
}

// selectCard moves the selection onto cardID wherever it currently sits.
func (m *Model) selectCard(cardID string) {
	card, ok := m.board.Card(cardID)
	if !ok || !card.Status.OnBoard() {
		return
	}
	m.selectedColumn = card.Status.Index()
	for i, c := range m.visibleColumn(card.Status) {
		if c.ID == cardID {
			m.selectedCard = i
			break
		}
	}
	m.ensureColumnVisible()
}

// clampSelection clamps selections.
func (m *Model) clampSelection() {
	m.selectedColumn = clamp(m.selectedColumn, 0, len(domain.BoardStatuses())-1)
	cards := m.visibleColumn(m.selectedStatus())
	m.selectedCard = clamp(m.selectedCard, 0, max(0, len(cards)-1))
}

// showToast displays text and schedules its expiry.
func (m *Model) showToast(text string) tea.Cmd {
	m.toast.seq++
	m.toast.text = text
	if m.toastDuration <= 0 {
		return nil
	}
	seq := m.toast.seq
	return tea.Tick(m.toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

// reportFailures turns drained commit failures into one toast.
func (m *Model) reportFailures() tea.Cmd {
	failures := m.failed.drain()
	if len(failures) == 0 {
		return nil
	}
	last := failures[len(failures)-1]
	title := last.transition.CardID
	if card, ok := m.board.Card(last.transition.CardID); ok && card.Title != "" {
		title = card.Title
	}
	text := fmt.Sprintf("couldn't move %q to %s, moved back to %s", title, last.transition.To.Label(), last.transition.From.Label())
	if len(failures) > 1 {
		text += fmt.Sprintf(" (+%d more)", len(failures)-1)
	}
	m.status = "move failed"
	return m.showToast(text)
}

// persistCmd issues the persistence call for t off the update loop.
func (m Model) persistCmd(t board.Transition) tea.Cmd {
	b := m.board
	return func() tea.Msg {
		err := b.Persist(context.Background(), t)
		return commitSettledMsg{transition: t, err: err}
	}
}

// moveSelected moves the focused card one column by keyboard.
func (m Model) moveSelected(delta int) (tea.Model, tea.Cmd) {
	card, ok := m.selectedCardValue()
	if !ok {
		return m, nil
	}
	target, ok := card.Status.Neighbor(delta)
	if !ok {
		m.status = "no column that way"
		return m, nil
	}
	t, err := m.board.StartMove(card.ID, target)
	switch {
	case errors.Is(err, board.ErrCommitPending):
		m.status = "still saving " + card.Title
		return m, nil
	case err != nil:
		return m, m.showToast(err.Error())
	}
	m.selectCard(card.ID)
	m.status = "saving..."
	return m, m.persistCmd(t)
}

// handleNormalModeKey handles board keys.
func (m Model) handleNormalModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.board.Dragging() {
		switch {
		case key.Matches(msg, m.keys.cancel):
			m.abandonDrag("drag cancelled")
		case msg.String() == "ctrl+c":
			return m, tea.Quit
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.cancel):
		if m.query != "" {
			m.query = ""
			m.filter.SetValue("")
			m.clampSelection()
			m.status = "filter cleared"
		}
		return m, nil
	case key.Matches(msg, m.keys.dismiss):
		m.toast = toastState{seq: m.toast.seq}
		return m, nil
	case key.Matches(msg, m.keys.reload):
		m.status = "reloading..."
		return m, m.loadCards
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.columnLeft):
		if m.selectedColumn > 0 {
			m.selectedColumn--
			m.selectedCard = 0
			m.ensureColumnVisible()
		}
		return m, nil
	case key.Matches(msg, m.keys.columnRight):
		if m.selectedColumn < len(domain.BoardStatuses())-1 {
			m.selectedColumn++
			m.selectedCard = 0
			m.ensureColumnVisible()
		}
		return m, nil
	case key.Matches(msg, m.keys.cardUp):
		if m.selectedCard > 0 {
			m.selectedCard--
		}
		return m, nil
	case key.Matches(msg, m.keys.cardDown):
		m.selectedCard++
		m.clampSelection()
		return m, nil
	case key.Matches(msg, m.keys.moveLeft):
		return m.moveSelected(-1)
	case key.Matches(msg, m.keys.moveRight):
		return m.moveSelected(1)
	case key.Matches(msg, m.keys.details):
		return m.openDetail()
	case key.Matches(msg, m.keys.filter):
		m.mode = modeFilter
		m.filter.SetValue(m.query)
		m.filter.CursorEnd()
		m.status = "filter"
		return m, m.filter.Focus()
	case key.Matches(msg, m.keys.copyAddress):
		return m.copySelectedAddress()
	case key.Matches(msg, m.keys.toggleFlag):
		return m.toggleSelectedFlag()
	default:
		return m, nil
	}
}

// handleFilterKey edits the live fuzzy filter.
func (m Model) handleFilterKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeNone
		m.query = ""
		m.filter.SetValue("")
		m.filter.Blur()
		m.clampSelection()
		m.status = "filter cleared"
		return m, nil
	case "enter":
		m.mode = modeNone
		m.filter.Blur()
		m.query = strings.TrimSpace(m.filter.Value())
		m.clampSelection()
		m.status = "ready"
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.query = strings.TrimSpace(m.filter.Value())
	m.clampSelection()
	return m, cmd
}

func (m Model) handleDetailKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.cancel), key.Matches(msg, m.keys.details), msg.String() == "q":
		m.mode = modeNone
		m.detail = detailState{}
		return m, nil
	case key.Matches(msg, m.keys.copyAddress):
		return m.copySelectedAddress()
	}
	return m, nil
}

// openDetail loads the focused property with its history.
func (m Model) openDetail() (tea.Model, tea.Cmd) {
	card, ok := m.selectedCardValue()
	if !ok {
		return m, nil
	}
	m.mode = modeDetail
	m.detail = detailState{loading: true}
	svc, limit := m.svc, m.historyLimit
	return m, func() tea.Msg {
		ctx := context.Background()
		property, err := svc.GetProperty(ctx, card.ID)
		if err != nil {
			return detailLoadedMsg{err: err}
		}
		history, err := svc.ListStatusHistory(ctx, card.ID, limit)
		if err != nil {
			return detailLoadedMsg{err: err}
		}
		return detailLoadedMsg{property: property, history: history}
	}
}

func (m Model) copySelectedAddress() (tea.Model, tea.Cmd) {
	card, ok := m.selectedCardValue()
	if m.mode == modeDetail && m.detail.property.ID != "" {
		card, ok = m.detail.property.Card(), true
	}
	if !ok {
		return m, nil
	}
	address := strings.TrimSpace(card.Address)
	if address == "" {
		m.status = "no address to copy"
		return m, nil
	}
	if err := m.copyText(address); err != nil {
		return m, m.showToast("clipboard: " + err.Error())
	}
	m.status = "copied " + address
	return m, nil
}

func (m Model) toggleSelectedFlag() (tea.Model, tea.Cmd) {
	card, ok := m.selectedCardValue()
	if !ok {
		return m, nil
	}
	f, ok := m.svc.(flagger)
	if !ok {
		m.status = "flagging is not available on this backend"
		return m, nil
	}
	flagged := !card.Flagged
	return m, func() tea.Msg {
		if _, err := f.SetPropertyFlagged(context.Background(), card.ID, flagged); err != nil {
			return actionMsg{err: err}
		}
		status := "unflagged " + card.Title
		if flagged {
			status = "flagged " + card.Title
		}
		return actionMsg{status: status, reload: true}
	}
}

// clamp clamps v into [minV, maxV].
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}
