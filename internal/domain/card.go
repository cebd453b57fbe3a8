package domain

// Card is the board projection of a property.
type Card struct {
	ID      string
	Status  Status
	Title   string
	Address string
	Rooms   int
	SizeSqm float64
	Price   int64
	Flagged bool
}

// CardsFor projects properties into board cards, skipping terminal statuses.
func CardsFor(properties []Property) []Card {
	out := make([]Card, 0, len(properties))
	for _, p := range properties {
		if !p.Status.OnBoard() {
			continue
		}
		out = append(out, p.Card())
	}
	return out
}
