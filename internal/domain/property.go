package domain

import (
	"strings"
	"time"
)

// Property represents a tracked real-estate listing.
type Property struct {
	ID        string
	Title     string
	Address   string
	Rooms     int
	SizeSqm   float64
	Price     int64
	Flagged   bool
	Status    Status
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PropertyInput holds the user-supplied fields for a new property.
type PropertyInput struct {
	Title   string
	Address string
	Rooms   int
	SizeSqm float64
	Price   int64
	Status  Status
	Notes   string
}

// NewProperty constructs a validated property.
func NewProperty(id string, in PropertyInput, now time.Time) (Property, error) {
	id = strings.TrimSpace(id)
	in.Title = strings.TrimSpace(in.Title)
	in.Address = strings.TrimSpace(in.Address)
	if id == "" {
		return Property{}, ErrInvalidID
	}
	if in.Title == "" {
		return Property{}, ErrInvalidTitle
	}
	if in.Status == "" {
		in.Status = StatusSeen
	}
	if !in.Status.Valid() {
		return Property{}, ErrInvalidStatus
	}
	if in.Rooms < 0 {
		return Property{}, ErrInvalidRooms
	}
	if in.SizeSqm < 0 {
		return Property{}, ErrInvalidSize
	}
	if in.Price < 0 {
		return Property{}, ErrInvalidPrice
	}

	return Property{
		ID:        id,
		Title:     in.Title,
		Address:   in.Address,
		Rooms:     in.Rooms,
		SizeSqm:   in.SizeSqm,
		Price:     in.Price,
		Status:    in.Status,
		Notes:     strings.TrimSpace(in.Notes),
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}, nil
}

// SetStatus moves the property to status and reports whether it changed.
func (p *Property) SetStatus(status Status, now time.Time) (bool, error) {
	if !status.Valid() {
		return false, ErrInvalidStatus
	}
	if p.Status == status {
		return false, nil
	}
	p.Status = status
	p.UpdatedAt = now.UTC()
	return true, nil
}

// SetFlagged marks or unmarks the property.
func (p *Property) SetFlagged(flagged bool, now time.Time) {
	if p.Flagged == flagged {
		return
	}
	p.Flagged = flagged
	p.UpdatedAt = now.UTC()
}

// Card projects the property into its board card.
func (p Property) Card() Card {
	return Card{
		ID:      p.ID,
		Status:  p.Status,
		Title:   p.Title,
		Address: p.Address,
		Rooms:   p.Rooms,
		SizeSqm: p.SizeSqm,
		Price:   p.Price,
		Flagged: p.Flagged,
	}
}
