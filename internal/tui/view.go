package tui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/hylla/roost/internal/domain"
)

var (
	accent    = lipgloss.Color("62")
	highlight = lipgloss.Color("212")
	muted     = lipgloss.Color("241")
	dim       = lipgloss.Color("239")
	danger    = lipgloss.Color("203")
)

// View handles view.
func (m Model) View() tea.View {
	if m.err != nil {
		return newBoardView("error: " + m.err.Error() + "\n\npress r to retry • q quit\n")
	}
	if !m.ready {
		return newBoardView("loading...")
	}

	lines := append(m.renderHeader(), m.renderBoard()...)
	content := strings.Join(lines, "\n")

	helpBubble := m.help
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(muted).
		BorderTop(true).
		BorderForeground(dim).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))
	footer := helpLine
	if m.toast.text != "" {
		footer = m.renderToast() + "\n" + helpLine
	}

	contentHeight := lipgloss.Height(content)
	if m.height > 0 {
		contentHeight = max(0, m.height-lipgloss.Height(footer))
		content = fitLines(content, contentHeight)
	}
	if ghost := m.renderGhost(); ghost != nil {
		content = composeAt(content, ghost.content, ghost.x, ghost.y, max(1, m.width), max(1, contentHeight))
	}
	full := content + "\n" + footer

	if m.mode == modeDetail {
		height := lipgloss.Height(full)
		if m.height > 0 {
			height = m.height
		}
		full = overlayOnContent(full, m.renderDetail(), max(1, m.width), max(1, height))
	}
	return newBoardView(full)
}

func newBoardView(content string) tea.View {
	v := tea.NewView(content)
	v.MouseMode = tea.MouseModeCellMotion
	v.AltScreen = true
	v.ReportFocus = true
	return v
}

// renderHeader renders the title row and the status or filter row.
func (m Model) renderHeader() []string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statusStyle := lipgloss.NewStyle().Foreground(dim)

	header := titleStyle.Render(m.title)
	header += statusStyle.Render(fmt.Sprintf("  %d open", len(m.board.Cards())))
	if m.query != "" && m.mode != modeFilter {
		header += statusStyle.Render("  filter: " + m.query)
	}
	if maxScroll := m.maxScroll(); maxScroll > 0 {
		header += statusStyle.Render(fmt.Sprintf("  ◀ %d/%d ▶", m.board.ScrollOffset(), maxScroll))
	}

	second := statusStyle.Render(m.status)
	if m.mode == modeFilter {
		second = m.filter.View()
	}
	return []string{header, second}
}

// renderBoard renders all columns side by side and cuts them to the viewport.
func (m Model) renderBoard() []string {
	statuses := domain.BoardStatuses()
	columns := make([][]string, len(statuses))
	rows := 0
	for i, status := range statuses {
		columns[i] = m.renderColumn(i, status)
		rows = max(rows, len(columns[i]))
	}

	gap := strings.Repeat(" ", m.columnGap)
	lines := make([]string, rows)
	for r := range rows {
		var b strings.Builder
		for i, col := range columns {
			if i > 0 {
				b.WriteString(gap)
			}
			line := ""
			if r < len(col) {
				line = col[r]
			}
			b.WriteString(padCells(line, m.columnWidth))
		}
		lines[r] = b.String()
	}
	if m.width > 0 {
		offset := m.board.ScrollOffset()
		for r := range lines {
			lines[r] = ansi.Cut(lines[r], offset, offset+m.width)
		}
	}
	return lines
}

// renderColumn renders one column: title, rule, and its cards.
func (m Model) renderColumn(idx int, status domain.Status) []string {
	cards := m.visibleColumn(status)
	selected := idx == m.selectedColumn
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(muted)
	ruleStyle := lipgloss.NewStyle().Foreground(dim)
	if selected {
		titleStyle = titleStyle.Foreground(accent)
		ruleStyle = ruleStyle.Foreground(accent)
	}
	title := fmt.Sprintf("%s (%d)", status.Label(), len(cards))
	lines := []string{
		titleStyle.Render(ansi.Truncate(title, m.columnWidth, "…")),
		ruleStyle.Render(strings.Repeat("─", m.columnWidth)),
	}

	session := m.board.Session()
	for i, card := range cards {
		switch {
		case m.board.Dragging() && session.Card().ID == card.ID:
			lines = append(lines, m.renderPlaceholder()...)
		default:
			lines = append(lines, m.renderCard(card, selected && i == m.selectedCard, false)...)
		}
	}
	return lines
}

// renderCard draws one card as cardHeight lines of exactly columnWidth cells.
func (m Model) renderCard(card domain.Card, selected, lifted bool) []string {
	inner := max(1, m.columnWidth-2)
	title := card.Title
	if card.Flagged {
		title = "★ " + title
	}
	if m.board.Pending(card.ID) {
		title += " …"
	}

	border := lipgloss.NewStyle().Foreground(dim)
	text := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	sub := lipgloss.NewStyle().Foreground(muted)
	if selected {
		border = border.Foreground(highlight)
		text = text.Bold(true)
	}
	if lifted {
		border = border.Foreground(highlight).Faint(true)
		text = text.Faint(true)
		sub = sub.Faint(true)
	}

	edge := strings.Repeat("─", inner)
	return []string{
		border.Render("╭" + edge + "╮"),
		border.Render("│") + text.Render(padCells(ansi.Truncate(title, inner, "…"), inner)) + border.Render("│"),
		border.Render("│") + sub.Render(padCells(ansi.Truncate(m.cardMeta(card), inner, "…"), inner)) + border.Render("│"),
		border.Render("╰" + edge + "╯"),
	}
}

// renderPlaceholder marks the slot a dragged card was lifted from.
func (m Model) renderPlaceholder() []string {
	inner := max(1, m.columnWidth-2)
	style := lipgloss.NewStyle().Foreground(dim)
	edge := strings.Repeat("┄", inner)
	blank := strings.Repeat(" ", inner)
	return []string{
		style.Render("╭" + edge + "╮"),
		style.Render("┆" + blank + "┆"),
		style.Render("┆" + blank + "┆"),
		style.Render("╰" + edge + "╯"),
	}
}

// cardMeta summarizes rooms, size and price for the card's second line.
func (m Model) cardMeta(card domain.Card) string {
	parts := make([]string, 0, 3)
	if card.Rooms > 0 {
		parts = append(parts, fmt.Sprintf("%dr", card.Rooms))
	}
	if card.SizeSqm > 0 {
		parts = append(parts, formatSize(card.SizeSqm))
	}
	if m.showPrice && card.Price > 0 {
		parts = append(parts, formatPrice(card.Price))
	}
	if len(parts) == 0 {
		return card.Address
	}
	return strings.Join(parts, " · ")
}

type ghostLayer struct {
	content string
	x, y    int
}

// renderGhost renders the lifted card at the drag pointer.
func (m Model) renderGhost() *ghostLayer {
	at, card, ok := m.dragGhostOrigin()
	if !ok {
		return nil
	}
	lifted := m.board.Session().Visual().Lifted()
	return &ghostLayer{
		content: strings.Join(m.renderCard(card, true, lifted), "\n"),
		x:       at.X,
		y:       at.Y,
	}
}

func (m Model) renderToast() string {
	return lipgloss.NewStyle().
		Foreground(danger).
		Bold(true).
		Padding(0, 1).
		Render("! " + m.toast.text + "  (x to dismiss)")
}

// renderDetail renders the property detail modal.
func (m Model) renderDetail() string {
	width := clamp(m.width-8, 24, 88)
	body := "loading..."
	if !m.detail.loading && m.detail.property.ID != "" {
		body = m.md.render(propertyMarkdown(m.detail.property, m.detail.history), width-4)
	}
	hint := lipgloss.NewStyle().Foreground(muted).Render("esc close • y copy address")
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Render(body + "\n\n" + hint)
}

// padCells pads or truncates s to exactly width terminal cells.
func padCells(s string, width int) string {
	w := ansi.StringWidth(s)
	switch {
	case w == width:
		return s
	case w > width:
		return ansi.Truncate(s, width, "")
	default:
		return s + strings.Repeat(" ", width-w)
	}
}

// fitLines fits lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}

// composeAt draws overlay over base with its top-left corner at x, y.
func composeAt(base, overlay string, x, y, width, height int) string {
	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	canvas.Compose(lipgloss.NewLayer(base).X(0).Y(0).Z(0))
	canvas.Compose(lipgloss.NewLayer(overlay).X(x).Y(y).Z(5))
	return canvas.Render()
}

// overlayOnContent centers overlay over base.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}
	centered := lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, overlay)
	return composeAt(base, centered, 0, 0, width, height)
}
