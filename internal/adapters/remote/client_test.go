package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/hylla/roost/internal/adapters/server/common"
	"github.com/hylla/roost/internal/adapters/server/httpapi"
	"github.com/hylla/roost/internal/adapters/storage/sqlite"
	"github.com/hylla/roost/internal/app"
	"github.com/hylla/roost/internal/domain"
)

// newRemoteForTest serves the REST API over a temp sqlite store and returns a client plus the backing service.
func newRemoteForTest(t *testing.T) (*Client, *app.Service) {
	t.Helper()
	repo, err := sqlite.Open(filepath.Join(t.TempDir(), "roost.db"))
	if err != nil {
		t.Fatalf("sqlite.Open() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})
	n := 0
	now := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	svc := app.NewService(repo, func() string {
		n++
		return fmt.Sprintf("p%d", n)
	}, func() time.Time {
		now = now.Add(time.Minute)
		return now
	}, app.ServiceConfig{})

	mux := http.NewServeMux()
	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", httpapi.NewHandler(common.NewAppServiceAdapter(svc))))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL+"/api/v1", 0)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client, svc
}

// TestClientRoundTrip verifies list, get, status update, and history against a live handler.
func TestClientRoundTrip(t *testing.T) {
	ctx := context.Background()
	client, svc := newRemoteForTest(t)
	loft, err := svc.CreateProperty(ctx, domain.PropertyInput{Title: "Loft", Address: "Canal 3", Rooms: 2, Price: 1800000})
	if err != nil {
		t.Fatalf("CreateProperty() error = %v", err)
	}
	if _, err := svc.CreateProperty(ctx, domain.PropertyInput{Title: "Cabin", Status: domain.StatusDiscarded}); err != nil {
		t.Fatalf("CreateProperty() error = %v", err)
	}

	open, err := client.ListProperties(ctx, false)
	if err != nil {
		t.Fatalf("ListProperties() error = %v", err)
	}
	if len(open) != 1 || open[0].ID != loft.ID || open[0].Price != 1800000 {
		t.Fatalf("unexpected open properties %#v", open)
	}
	all, err := client.ListProperties(ctx, true)
	if err != nil || len(all) != 2 {
		t.Fatalf("ListProperties(includeClosed) = %d rows, %v", len(all), err)
	}
	cards, err := client.ListBoardCards(ctx)
	if err != nil || len(cards) != 1 || cards[0].Status != domain.StatusSeen {
		t.Fatalf("ListBoardCards() = %#v, %v", cards, err)
	}

	updated, err := client.UpdatePropertyStatus(ctx, loft.ID, domain.StatusVisitScheduled)
	if err != nil {
		t.Fatalf("UpdatePropertyStatus() error = %v", err)
	}
	if updated.Status != domain.StatusVisitScheduled {
		t.Fatalf("unexpected updated status %q", updated.Status)
	}
	got, err := client.GetProperty(ctx, loft.ID)
	if err != nil || got.Status != domain.StatusVisitScheduled {
		t.Fatalf("GetProperty() = %#v, %v", got, err)
	}

	history, err := client.ListStatusHistory(ctx, loft.ID, 5)
	if err != nil {
		t.Fatalf("ListStatusHistory() error = %v", err)
	}
	if len(history) != 1 || history[0].From != domain.StatusSeen || history[0].To != domain.StatusVisitScheduled {
		t.Fatalf("unexpected history %#v", history)
	}
}

// TestClientErrorMapping verifies API errors unwrap to app sentinels.
func TestClientErrorMapping(t *testing.T) {
	ctx := context.Background()
	client, svc := newRemoteForTest(t)

	_, err := client.GetProperty(ctx, "missing")
	if !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("expected app.ErrNotFound, got %v", err)
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound || statusErr.Code != "not_found" {
		t.Fatalf("unexpected status error %#v", statusErr)
	}

	p, err := svc.CreateProperty(ctx, domain.PropertyInput{Title: "Loft"})
	if err != nil {
		t.Fatalf("CreateProperty() error = %v", err)
	}
	if _, err := client.UpdatePropertyStatus(ctx, p.ID, domain.Status("sold")); !errors.Is(err, ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
}

// TestClientTimeout verifies the configured timeout bounds slow servers.
func TestClientTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client, err := NewClient(server.URL, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if _, err := client.ListProperties(context.Background(), false); err == nil {
		t.Fatal("expected timeout error")
	}
}

// TestClientPlainErrorBody verifies non-envelope error bodies are kept as messages.
func TestClientPlainErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := NewClient(server.URL+"/", time.Second)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	_, err = client.GetProperty(context.Background(), "p1")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusBadGateway || statusErr.Message != "upstream down" {
		t.Fatalf("unexpected error %v", err)
	}
	if errors.Is(err, app.ErrNotFound) {
		t.Fatal("502 must not unwrap to ErrNotFound")
	}
}

// TestNewClientRejectsBadEndpoints verifies endpoint validation.
func TestNewClientRejectsBadEndpoints(t *testing.T) {
	for _, endpoint := range []string{"", "ftp://host", "http://", "::"} {
		if _, err := NewClient(endpoint, 0); !errors.Is(err, ErrInvalidEndpoint) {
			t.Fatalf("NewClient(%q) error = %v, want ErrInvalidEndpoint", endpoint, err)
		}
	}
}
