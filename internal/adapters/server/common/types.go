// Package common provides transport-agnostic server contracts used by HTTP and MCP adapters.
package common

import (
	"context"
	"errors"
	"time"

	"github.com/hylla/roost/internal/domain"
)

// ErrInvalidRequest reports malformed transport input.
var ErrInvalidRequest = errors.New("invalid request")

// ErrNotFound reports missing transport-visible resources.
var ErrNotFound = errors.New("not found")

// Property is the wire shape of one tracked property.
type Property struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Address   string        `json:"address"`
	Rooms     int           `json:"rooms"`
	SizeSqm   float64       `json:"size_sqm"`
	Price     int64         `json:"price"`
	Flagged   bool          `json:"flagged"`
	Status    domain.Status `json:"status"`
	Notes     string        `json:"notes,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// StatusChange is the wire shape of one status history entry.
type StatusChange struct {
	ID         int64         `json:"id"`
	PropertyID string        `json:"property_id"`
	From       domain.Status `json:"from"`
	To         domain.Status `json:"to"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// ListPropertiesRequest stores transport input for property listing.
type ListPropertiesRequest struct {
	IncludeClosed bool
	Query         string
}

// CreatePropertyRequest stores transport input for property creation.
type CreatePropertyRequest struct {
	Title   string        `json:"title"`
	Address string        `json:"address"`
	Rooms   int           `json:"rooms"`
	SizeSqm float64       `json:"size_sqm"`
	Price   int64         `json:"price"`
	Status  domain.Status `json:"status,omitempty"`
	Notes   string        `json:"notes,omitempty"`
}

// UpdateStatusRequest stores transport input for a status change.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// PropertyService exposes property operations to transport adapters.
type PropertyService interface {
	ListProperties(context.Context, ListPropertiesRequest) ([]Property, error)
	GetProperty(context.Context, string) (Property, error)
	CreateProperty(context.Context, CreatePropertyRequest) (Property, error)
	UpdatePropertyStatus(context.Context, string, string) (Property, error)
	ListStatusHistory(context.Context, string, int) ([]StatusChange, error)
}

// PropertyFromDomain maps a domain property onto its wire shape.
func PropertyFromDomain(p domain.Property) Property {
	return Property{
		ID:        p.ID,
		Title:     p.Title,
		Address:   p.Address,
		Rooms:     p.Rooms,
		SizeSqm:   p.SizeSqm,
		Price:     p.Price,
		Flagged:   p.Flagged,
		Status:    p.Status,
		Notes:     p.Notes,
		CreatedAt: p.CreatedAt.UTC(),
		UpdatedAt: p.UpdatedAt.UTC(),
	}
}

// ToDomain maps the wire shape back onto a domain property.
func (p Property) ToDomain() domain.Property {
	return domain.Property{
		ID:        p.ID,
		Title:     p.Title,
		Address:   p.Address,
		Rooms:     p.Rooms,
		SizeSqm:   p.SizeSqm,
		Price:     p.Price,
		Flagged:   p.Flagged,
		Status:    p.Status,
		Notes:     p.Notes,
		CreatedAt: p.CreatedAt.UTC(),
		UpdatedAt: p.UpdatedAt.UTC(),
	}
}

// StatusChangeFromDomain maps a domain history entry onto its wire shape.
func StatusChangeFromDomain(c domain.StatusChange) StatusChange {
	return StatusChange{
		ID:         c.ID,
		PropertyID: c.PropertyID,
		From:       c.From,
		To:         c.To,
		OccurredAt: c.OccurredAt.UTC(),
	}
}

// ToDomain maps the wire shape back onto a domain history entry.
func (c StatusChange) ToDomain() domain.StatusChange {
	return domain.StatusChange{
		ID:         c.ID,
		PropertyID: c.PropertyID,
		From:       c.From,
		To:         c.To,
		OccurredAt: c.OccurredAt.UTC(),
	}
}
