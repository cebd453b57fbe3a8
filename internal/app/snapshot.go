package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hylla/roost/internal/domain"
)

// SnapshotVersion defines a package constant value.
const SnapshotVersion = "roost.snapshot.v1"

// Snapshot is a portable export of every tracked property.
type Snapshot struct {
	Version    string             `json:"version"`
	ExportedAt time.Time          `json:"exported_at"`
	Properties []SnapshotProperty `json:"properties"`
}

// SnapshotProperty represents snapshot property data used by this package.
type SnapshotProperty struct {
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

// ExportSnapshot handles export snapshot.
func (s *Service) ExportSnapshot(ctx context.Context, includeClosed bool) (Snapshot, error) {
	properties, err := s.repo.ListProperties(ctx, includeClosed)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: s.clock().UTC(),
		Properties: make([]SnapshotProperty, 0, len(properties)),
	}
	for _, p := range properties {
		snap.Properties = append(snap.Properties, snapshotPropertyFromDomain(p))
	}
	snap.sort()
	return snap, nil
}

// ImportSnapshot creates missing properties and overwrites existing ones.
func (s *Service) ImportSnapshot(ctx context.Context, snap Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	snap.sort()
	for _, sp := range snap.Properties {
		p := sp.toDomain()
		if _, err := s.repo.GetProperty(ctx, p.ID); err == nil {
			if err := s.repo.UpdateProperty(ctx, p); err != nil {
				return err
			}
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
		if err := s.repo.CreateProperty(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Validate validates the requested operation.
func (s *Snapshot) Validate() error {
	if s.Version != "" && s.Version != SnapshotVersion {
		return fmt.Errorf("%w: unsupported version %q", ErrInvalidSnapshot, s.Version)
	}
	seen := map[string]struct{}{}
	for i, p := range s.Properties {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return fmt.Errorf("%w: properties[%d].id is required", ErrInvalidSnapshot, i)
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: duplicate property id %q", ErrInvalidSnapshot, id)
		}
		seen[id] = struct{}{}
		if strings.TrimSpace(p.Title) == "" {
			return fmt.Errorf("%w: properties[%d].title is required", ErrInvalidSnapshot, i)
		}
		if !p.Status.Valid() {
			return fmt.Errorf("%w: properties[%d].status %q", ErrInvalidSnapshot, i, p.Status)
		}
	}
	return nil
}

func (s *Snapshot) sort() {
	sort.SliceStable(s.Properties, func(i, j int) bool {
		a, b := s.Properties[i], s.Properties[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

func snapshotPropertyFromDomain(p domain.Property) SnapshotProperty {
	return SnapshotProperty{
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

func (p SnapshotProperty) toDomain() domain.Property {
	updated := p.UpdatedAt.UTC()
	if updated.IsZero() {
		updated = p.CreatedAt.UTC()
	}
	return domain.Property{
		ID:        strings.TrimSpace(p.ID),
		Title:     strings.TrimSpace(p.Title),
		Address:   strings.TrimSpace(p.Address),
		Rooms:     p.Rooms,
		SizeSqm:   p.SizeSqm,
		Price:     p.Price,
		Flagged:   p.Flagged,
		Status:    p.Status,
		Notes:     p.Notes,
		CreatedAt: p.CreatedAt.UTC(),
		UpdatedAt: updated,
	}
}
