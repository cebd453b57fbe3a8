package app

import (
	"context"

	"github.com/hylla/roost/internal/domain"
)

// Repository persists properties and their status history.
type Repository interface {
	CreateProperty(context.Context, domain.Property) error
	UpdateProperty(context.Context, domain.Property) error
	GetProperty(context.Context, string) (domain.Property, error)
	ListProperties(context.Context, bool) ([]domain.Property, error)
	DeleteProperty(context.Context, string) error
	ListStatusChanges(context.Context, string, int) ([]domain.StatusChange, error)
}
