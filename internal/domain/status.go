package domain

import "strings"

// Status identifies a property's position in the search pipeline.
type Status string

// Status values. The last two are terminal and never shown as board columns.
const (
	StatusSeen           Status = "seen"
	StatusInterested     Status = "interested"
	StatusContacted      Status = "contacted"
	StatusVisitScheduled Status = "visit_scheduled"
	StatusVisited        Status = "visited"
	StatusOfferMade      Status = "offer_made"
	StatusBought         Status = "bought"
	StatusDiscarded      Status = "discarded"
)

var boardStatuses = []Status{
	StatusSeen,
	StatusInterested,
	StatusContacted,
	StatusVisitScheduled,
	StatusVisited,
	StatusOfferMade,
}

var statusLabels = map[Status]string{
	StatusSeen:           "Seen",
	StatusInterested:     "Interested",
	StatusContacted:      "Contacted",
	StatusVisitScheduled: "Visit scheduled",
	StatusVisited:        "Visited",
	StatusOfferMade:      "Offer made",
	StatusBought:         "Bought",
	StatusDiscarded:      "Discarded",
}

// BoardStatuses returns the board column statuses in left-to-right order.
func BoardStatuses() []Status {
	out := make([]Status, len(boardStatuses))
	copy(out, boardStatuses)
	return out
}

// AllStatuses returns every known status, board statuses first.
func AllStatuses() []Status {
	return append(BoardStatuses(), StatusBought, StatusDiscarded)
}

// ParseStatus normalizes raw input into a known status.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	s = Status(strings.ReplaceAll(string(s), "-", "_"))
	if !s.Valid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Terminal reports whether s closes the pipeline.
func (s Status) Terminal() bool {
	return s == StatusBought || s == StatusDiscarded
}

// OnBoard reports whether s renders as a board column.
func (s Status) OnBoard() bool {
	return s.Valid() && !s.Terminal()
}

// Label returns the human-facing column title.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// Index returns the board column index of s, or -1 when s is not on the board.
func (s Status) Index() int {
	for i, candidate := range boardStatuses {
		if candidate == s {
			return i
		}
	}
	return -1
}

// Neighbor returns the board status delta columns away from s.
func (s Status) Neighbor(delta int) (Status, bool) {
	idx := s.Index()
	if idx < 0 {
		return "", false
	}
	next := idx + delta
	if next < 0 || next >= len(boardStatuses) {
		return "", false
	}
	return boardStatuses[next], true
}
