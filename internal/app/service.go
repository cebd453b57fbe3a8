package app

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/hylla/roost/internal/domain"
)

// DeleteMode represents a selectable mode.
type DeleteMode string

// DeleteModeDiscard and related constants define package defaults.
const (
	DeleteModeDiscard DeleteMode = "discard"
	DeleteModeHard    DeleteMode = "hard"
)

const defaultHistoryLimit = 50

// ServiceConfig holds configuration for service.
type ServiceConfig struct {
	DefaultDeleteMode DeleteMode
	HistoryLimit      int
}

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// Service implements property use cases over a Repository.
type Service struct {
	repo              Repository
	idGen             IDGenerator
	clock             Clock
	defaultDeleteMode DeleteMode
	historyLimit      int
}

// NewService constructs a new value for this package.
func NewService(repo Repository, idGen IDGenerator, clock Clock, cfg ServiceConfig) *Service {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if clock == nil {
		clock = time.Now
	}
	if cfg.DefaultDeleteMode == "" {
		cfg.DefaultDeleteMode = DeleteModeDiscard
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = defaultHistoryLimit
	}
	return &Service{
		repo:              repo,
		idGen:             idGen,
		clock:             clock,
		defaultDeleteMode: cfg.DefaultDeleteMode,
		historyLimit:      cfg.HistoryLimit,
	}
}

// CreateProperty creates property.
func (s *Service) CreateProperty(ctx context.Context, in domain.PropertyInput) (domain.Property, error) {
	property, err := domain.NewProperty(s.idGen(), in, s.clock())
	if err != nil {
		return domain.Property{}, err
	}
	if err := s.repo.CreateProperty(ctx, property); err != nil {
		return domain.Property{}, err
	}
	return property, nil
}

// GetProperty returns one property.
func (s *Service) GetProperty(ctx context.Context, propertyID string) (domain.Property, error) {
	propertyID = strings.TrimSpace(propertyID)
	if propertyID == "" {
		return domain.Property{}, domain.ErrInvalidID
	}
	return s.repo.GetProperty(ctx, propertyID)
}

// ListProperties lists properties; closed ones are included on request.
func (s *Service) ListProperties(ctx context.Context, includeClosed bool) ([]domain.Property, error) {
	properties, err := s.repo.ListProperties(ctx, includeClosed)
	if err != nil {
		return nil, err
	}
	sortProperties(properties)
	return properties, nil
}

// ListBoardCards returns the cards for every on-board property.
func (s *Service) ListBoardCards(ctx context.Context) ([]domain.Card, error) {
	properties, err := s.ListProperties(ctx, false)
	if err != nil {
		return nil, err
	}
	return domain.CardsFor(properties), nil
}

// UpdatePropertyStatus moves a property to status.
func (s *Service) UpdatePropertyStatus(ctx context.Context, propertyID string, status domain.Status) (domain.Property, error) {
	property, err := s.GetProperty(ctx, propertyID)
	if err != nil {
		return domain.Property{}, err
	}
	changed, err := property.SetStatus(status, s.clock())
	if err != nil {
		return domain.Property{}, err
	}
	if !changed {
		return property, nil
	}
	if err := s.repo.UpdateProperty(ctx, property); err != nil {
		return domain.Property{}, err
	}
	return property, nil
}

// SetPropertyFlagged marks or unmarks a property.
func (s *Service) SetPropertyFlagged(ctx context.Context, propertyID string, flagged bool) (domain.Property, error) {
	property, err := s.GetProperty(ctx, propertyID)
	if err != nil {
		return domain.Property{}, err
	}
	if property.Flagged == flagged {
		return property, nil
	}
	property.SetFlagged(flagged, s.clock())
	if err := s.repo.UpdateProperty(ctx, property); err != nil {
		return domain.Property{}, err
	}
	return property, nil
}

// DeleteProperty discards or hard-deletes a property.
func (s *Service) DeleteProperty(ctx context.Context, propertyID string, mode DeleteMode) error {
	if mode == "" {
		mode = s.defaultDeleteMode
	}
	switch mode {
	case DeleteModeDiscard:
		_, err := s.UpdatePropertyStatus(ctx, propertyID, domain.StatusDiscarded)
		return err
	case DeleteModeHard:
		propertyID = strings.TrimSpace(propertyID)
		if propertyID == "" {
			return domain.ErrInvalidID
		}
		return s.repo.DeleteProperty(ctx, propertyID)
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDeleteMode, mode)
	}
}

// ListStatusHistory returns the newest status changes for a property first.
func (s *Service) ListStatusHistory(ctx context.Context, propertyID string, limit int) ([]domain.StatusChange, error) {
	if _, err := s.GetProperty(ctx, propertyID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > s.historyLimit {
		limit = s.historyLimit
	}
	return s.repo.ListStatusChanges(ctx, strings.TrimSpace(propertyID), limit)
}

// SearchProperties returns properties whose title, address or notes contain query.
func (s *Service) SearchProperties(ctx context.Context, query string, includeClosed bool) ([]domain.Property, error) {
	properties, err := s.ListProperties(ctx, includeClosed)
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return properties, nil
	}
	out := make([]domain.Property, 0, len(properties))
	for _, p := range properties {
		haystack := strings.ToLower(strings.Join([]string{p.Title, p.Address, p.Notes}, "\n"))
		if strings.Contains(haystack, query) {
			out = append(out, p)
		}
	}
	return out, nil
}

func sortProperties(properties []domain.Property) {
	slices.SortStableFunc(properties, func(a, b domain.Property) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
