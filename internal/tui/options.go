package tui

import "time"

// Option configures a Model.
type Option func(*Model)

// WithColumnWidth sets the board column width and the gap between columns.
func WithColumnWidth(width, gap int) Option {
	return func(m *Model) {
		if width > 0 {
			m.columnWidth = width
		}
		if gap >= 0 {
			m.columnGap = gap
		}
	}
}

// WithLongPressDelay sets how long a press must be held before a drag starts.
func WithLongPressDelay(d time.Duration) Option {
	return func(m *Model) {
		if d >= 0 {
			m.longPressDelay = d
		}
	}
}

// WithScrollStep sets the horizontal scroll distance per wheel tick.
func WithScrollStep(step int) Option {
	return func(m *Model) {
		if step > 0 {
			m.scrollStep = step
		}
	}
}

// WithToastDuration sets how long failure notices stay visible. Zero keeps
// them until dismissed.
func WithToastDuration(d time.Duration) Option {
	return func(m *Model) {
		if d >= 0 {
			m.toastDuration = d
		}
	}
}

func WithShowPrice(show bool) Option {
	return func(m *Model) {
		m.showPrice = show
	}
}

func WithHistoryLimit(limit int) Option {
	return func(m *Model) {
		if limit > 0 {
			m.historyLimit = limit
		}
	}
}

// WithClipboard overrides the clipboard writer used by the copy action.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		if write != nil {
			m.copyText = write
		}
	}
}

// WithTitle sets the header title.
func WithTitle(title string) Option {
	return func(m *Model) {
		if title != "" {
			m.title = title
		}
	}
}
