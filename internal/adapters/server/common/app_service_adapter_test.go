package common

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/hylla/roost/internal/adapters/storage/sqlite"
	"github.com/hylla/roost/internal/app"
	"github.com/hylla/roost/internal/domain"
)

// newAdapterForTest builds an adapter over a temp sqlite-backed service.
func newAdapterForTest(t *testing.T) *AppServiceAdapter {
	t.Helper()
	repo, err := sqlite.Open(filepath.Join(t.TempDir(), "roost.db"))
	if err != nil {
		t.Fatalf("sqlite.Open() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})
	n := 0
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := app.NewService(repo, func() string {
		n++
		return fmt.Sprintf("p%d", n)
	}, func() time.Time {
		now = now.Add(time.Second)
		return now
	}, app.ServiceConfig{})
	return NewAppServiceAdapter(svc)
}

// TestAppServiceAdapterPropertyFlow verifies create, list, status update, and history mapping.
func TestAppServiceAdapterPropertyFlow(t *testing.T) {
	ctx := context.Background()
	adapter := newAdapterForTest(t)

	created, err := adapter.CreateProperty(ctx, CreatePropertyRequest{Title: "Loft", Address: "Main 1", Rooms: 2, Price: 100})
	if err != nil {
		t.Fatalf("CreateProperty() error = %v", err)
	}
	if created.ID != "p1" || created.Status != domain.StatusSeen {
		t.Fatalf("unexpected created property %#v", created)
	}
	if _, err := adapter.CreateProperty(ctx, CreatePropertyRequest{Title: "Villa", Address: "Hill 2"}); err != nil {
		t.Fatalf("CreateProperty(second) error = %v", err)
	}

	updated, err := adapter.UpdatePropertyStatus(ctx, created.ID, "Visit-Scheduled")
	if err != nil {
		t.Fatalf("UpdatePropertyStatus() error = %v", err)
	}
	if updated.Status != domain.StatusVisitScheduled {
		t.Fatalf("unexpected status %q", updated.Status)
	}

	filtered, err := adapter.ListProperties(ctx, ListPropertiesRequest{Query: "hill"})
	if err != nil || len(filtered) != 1 || filtered[0].Title != "Villa" {
		t.Fatalf("unexpected filtered list %#v, %v", filtered, err)
	}

	history, err := adapter.ListStatusHistory(ctx, created.ID, 10)
	if err != nil {
		t.Fatalf("ListStatusHistory() error = %v", err)
	}
	if len(history) != 1 || history[0].From != domain.StatusSeen || history[0].To != domain.StatusVisitScheduled {
		t.Fatalf("unexpected history %#v", history)
	}
}

// TestAppServiceAdapterErrorMapping verifies not-found and validation mapping.
func TestAppServiceAdapterErrorMapping(t *testing.T) {
	ctx := context.Background()
	adapter := newAdapterForTest(t)

	if _, err := adapter.GetProperty(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := adapter.UpdatePropertyStatus(ctx, "missing", "sold"); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for bad status, got %v", err)
	}
	if _, err := adapter.CreateProperty(ctx, CreatePropertyRequest{Title: " "}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for empty title, got %v", err)
	}
	var nilAdapter *AppServiceAdapter
	if _, err := nilAdapter.GetProperty(ctx, "p1"); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for unconfigured adapter, got %v", err)
	}
}

// TestPropertyWireRoundTrip verifies domain mapping keeps every card field.
func TestPropertyWireRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	p, err := domain.NewProperty("p1", domain.PropertyInput{Title: "Loft", Address: "Main 1", Rooms: 3, SizeSqm: 71.5, Price: 9, Status: domain.StatusOfferMade}, now)
	if err != nil {
		t.Fatalf("NewProperty() error = %v", err)
	}
	p.Flagged = true
	got := PropertyFromDomain(p).ToDomain()
	if got != p {
		t.Fatalf("round trip mismatch\n got %#v\nwant %#v", got, p)
	}
}
