package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/hylla/roost/internal/domain"
)

// markdownRenderer renders markdown for terminal views and recreates the renderer when wrap width changes.
type markdownRenderer struct {
	width    int
	renderer *glamour.TermRenderer
}

// render converts markdown input into ANSI-styled terminal text with the requested wrap width.
func (r *markdownRenderer) render(markdown string, width int) string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}

	wrapWidth := max(width, 24)
	if r.renderer == nil || r.width != wrapWidth {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(wrapWidth),
		)
		if err != nil {
			return markdown
		}
		r.renderer = renderer
		r.width = wrapWidth
	}

	rendered, err := r.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimRight(rendered, "\n")
}

// propertyMarkdown builds the detail document for one property.
func propertyMarkdown(p domain.Property, history []domain.StatusChange) string {
	var b strings.Builder
	title := p.Title
	if p.Flagged {
		title = "★ " + title
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	if p.Address != "" {
		fmt.Fprintf(&b, "%s\n\n", p.Address)
	}
	b.WriteString("| status | rooms | size | price |\n|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %s | %d | %s | %s |\n\n", p.Status.Label(), p.Rooms, formatSize(p.SizeSqm), formatPrice(p.Price))
	if notes := strings.TrimSpace(p.Notes); notes != "" {
		b.WriteString("## Notes\n\n")
		b.WriteString(notes)
		b.WriteString("\n\n")
	}
	if len(history) > 0 {
		b.WriteString("## History\n\n")
		for _, change := range history {
			fmt.Fprintf(&b, "- %s: %s → %s\n", change.OccurredAt.Local().Format("2006-01-02 15:04"), change.From.Label(), change.To.Label())
		}
	}
	return b.String()
}

// formatPrice renders whole currency units with thin grouping.
func formatPrice(price int64) string {
	if price <= 0 {
		return "-"
	}
	switch {
	case price >= 1_000_000:
		return fmt.Sprintf("%.2fM", float64(price)/1_000_000)
	case price >= 10_000:
		return fmt.Sprintf("%dk", price/1_000)
	default:
		return fmt.Sprintf("%d", price)
	}
}

func formatSize(sqm float64) string {
	if sqm <= 0 {
		return "-"
	}
	if sqm == float64(int64(sqm)) {
		return fmt.Sprintf("%dm²", int64(sqm))
	}
	return fmt.Sprintf("%.1fm²", sqm)
}
