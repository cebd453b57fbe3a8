package common

import (
	"context"
	"errors"
	"fmt"

	"github.com/hylla/roost/internal/app"
	"github.com/hylla/roost/internal/domain"
)

// AppServiceAdapter maps transport contracts onto app.Service property APIs.
type AppServiceAdapter struct {
	service *app.Service
}

// NewAppServiceAdapter builds one common adapter over an app.Service instance.
func NewAppServiceAdapter(service *app.Service) *AppServiceAdapter {
	return &AppServiceAdapter{service: service}
}

// ListProperties lists properties, optionally filtered by a text query.
func (a *AppServiceAdapter) ListProperties(ctx context.Context, in ListPropertiesRequest) ([]Property, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	properties, err := a.service.SearchProperties(ctx, in.Query, in.IncludeClosed)
	if err != nil {
		return nil, mapAppError("list properties", err)
	}
	out := make([]Property, 0, len(properties))
	for _, p := range properties {
		out = append(out, PropertyFromDomain(p))
	}
	return out, nil
}

// GetProperty returns one property.
func (a *AppServiceAdapter) GetProperty(ctx context.Context, propertyID string) (Property, error) {
	if err := a.ready(); err != nil {
		return Property{}, err
	}
	p, err := a.service.GetProperty(ctx, propertyID)
	if err != nil {
		return Property{}, mapAppError("get property", err)
	}
	return PropertyFromDomain(p), nil
}

// CreateProperty creates one property.
func (a *AppServiceAdapter) CreateProperty(ctx context.Context, in CreatePropertyRequest) (Property, error) {
	if err := a.ready(); err != nil {
		return Property{}, err
	}
	p, err := a.service.CreateProperty(ctx, domain.PropertyInput{
		Title:   in.Title,
		Address: in.Address,
		Rooms:   in.Rooms,
		SizeSqm: in.SizeSqm,
		Price:   in.Price,
		Status:  in.Status,
		Notes:   in.Notes,
	})
	if err != nil {
		return Property{}, mapAppError("create property", err)
	}
	return PropertyFromDomain(p), nil
}

// UpdatePropertyStatus parses rawStatus and moves the property to it.
func (a *AppServiceAdapter) UpdatePropertyStatus(ctx context.Context, propertyID, rawStatus string) (Property, error) {
	if err := a.ready(); err != nil {
		return Property{}, err
	}
	status, err := domain.ParseStatus(rawStatus)
	if err != nil {
		return Property{}, mapAppError("update property status", err)
	}
	p, err := a.service.UpdatePropertyStatus(ctx, propertyID, status)
	if err != nil {
		return Property{}, mapAppError("update property status", err)
	}
	return PropertyFromDomain(p), nil
}

// ListStatusHistory returns the newest status changes first.
func (a *AppServiceAdapter) ListStatusHistory(ctx context.Context, propertyID string, limit int) ([]StatusChange, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	changes, err := a.service.ListStatusHistory(ctx, propertyID, limit)
	if err != nil {
		return nil, mapAppError("list status history", err)
	}
	out := make([]StatusChange, 0, len(changes))
	for _, c := range changes {
		out = append(out, StatusChangeFromDomain(c))
	}
	return out, nil
}

func (a *AppServiceAdapter) ready() error {
	if a == nil || a.service == nil {
		return fmt.Errorf("app service adapter is not configured: %w", ErrInvalidRequest)
	}
	return nil
}

// mapAppError translates app and domain errors into transport errors.
func mapAppError(operation string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, app.ErrNotFound):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrNotFound, err))
	case isDomainValidationErr(err), errors.Is(err, app.ErrInvalidDeleteMode):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrInvalidRequest, err))
	default:
		return fmt.Errorf("%s: %w", operation, err)
	}
}

func isDomainValidationErr(err error) bool {
	for _, target := range []error{
		domain.ErrInvalidID,
		domain.ErrInvalidTitle,
		domain.ErrInvalidAddress,
		domain.ErrInvalidStatus,
		domain.ErrInvalidRooms,
		domain.ErrInvalidSize,
		domain.ErrInvalidPrice,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
