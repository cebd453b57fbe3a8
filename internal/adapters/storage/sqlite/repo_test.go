package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/hylla/roost/internal/app"
	"github.com/hylla/roost/internal/domain"
	_ "modernc.org/sqlite"
)

func TestRepository_PropertyLifecycle(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "roost.db")
	repo, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})

	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	property, err := domain.NewProperty("p1", domain.PropertyInput{
		Title:   "Canal loft",
		Address: "Kanalgatan 3",
		Rooms:   3,
		SizeSqm: 74.5,
		Price:   4_150_000,
		Notes:   "## Pros\n- light",
	}, now)
	if err != nil {
		t.Fatalf("NewProperty() error = %v", err)
	}
	if err := repo.CreateProperty(ctx, property); err != nil {
		t.Fatalf("CreateProperty() error = %v", err)
	}

	loaded, err := repo.GetProperty(ctx, property.ID)
	if err != nil {
		t.Fatalf("GetProperty() error = %v", err)
	}
	if loaded.SizeSqm != 74.5 || loaded.Price != 4_150_000 || loaded.Notes != property.Notes || !loaded.CreatedAt.Equal(now) {
		t.Fatalf("unexpected loaded property %#v", loaded)
	}

	later := now.Add(time.Hour)
	if _, err := loaded.SetStatus(domain.StatusInterested, later); err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}
	loaded.SetFlagged(true, later)
	if err := repo.UpdateProperty(ctx, loaded); err != nil {
		t.Fatalf("UpdateProperty() error = %v", err)
	}
	loaded.Title = "Canal loft (renovated)"
	if err := repo.UpdateProperty(ctx, loaded); err != nil {
		t.Fatalf("UpdateProperty(title) error = %v", err)
	}
	if _, err := loaded.SetStatus(domain.StatusVisited, later.Add(time.Hour)); err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}
	if err := repo.UpdateProperty(ctx, loaded); err != nil {
		t.Fatalf("UpdateProperty(visited) error = %v", err)
	}

	reloaded, err := repo.GetProperty(ctx, property.ID)
	if err != nil {
		t.Fatalf("GetProperty() error = %v", err)
	}
	if reloaded.Status != domain.StatusVisited || !reloaded.Flagged || reloaded.Title != "Canal loft (renovated)" {
		t.Fatalf("unexpected reloaded property %#v", reloaded)
	}

	changes, err := repo.ListStatusChanges(ctx, property.ID, 10)
	if err != nil {
		t.Fatalf("ListStatusChanges() error = %v", err)
	}
	if len(changes) != 2 {
		t.Fatalf("expected 2 status changes, got %#v", changes)
	}
	if changes[0].From != domain.StatusInterested || changes[0].To != domain.StatusVisited {
		t.Fatalf("unexpected newest change %#v", changes[0])
	}
	if changes[1].From != domain.StatusSeen || changes[1].To != domain.StatusInterested {
		t.Fatalf("unexpected oldest change %#v", changes[1])
	}

	if err := repo.DeleteProperty(ctx, property.ID); err != nil {
		t.Fatalf("DeleteProperty() error = %v", err)
	}
	if _, err := repo.GetProperty(ctx, property.ID); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.DeleteProperty(ctx, property.ID); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for repeated delete, got %v", err)
	}
}

func TestRepository_ListPropertiesFiltersClosed(t *testing.T) {
	ctx := context.Background()
	repo, err := Open(filepath.Join(t.TempDir(), "roost.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})

	base := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	inputs := []struct {
		id     string
		status domain.Status
	}{
		{id: "a", status: domain.StatusSeen},
		{id: "b", status: domain.StatusBought},
		{id: "c", status: domain.StatusOfferMade},
		{id: "d", status: domain.StatusDiscarded},
	}
	for i, in := range inputs {
		p, err := domain.NewProperty(in.id, domain.PropertyInput{Title: in.id, Status: in.status}, base.Add(time.Duration(i)*time.Minute))
		if err != nil {
			t.Fatalf("NewProperty() error = %v", err)
		}
		if err := repo.CreateProperty(ctx, p); err != nil {
			t.Fatalf("CreateProperty() error = %v", err)
		}
	}

	open, err := repo.ListProperties(ctx, false)
	if err != nil {
		t.Fatalf("ListProperties(open) error = %v", err)
	}
	if len(open) != 2 || open[0].ID != "a" || open[1].ID != "c" {
		t.Fatalf("unexpected open properties %#v", open)
	}
	all, err := repo.ListProperties(ctx, true)
	if err != nil {
		t.Fatalf("ListProperties(all) error = %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 properties, got %d", len(all))
	}
}

func TestRepository_UpdateMissingProperty(t *testing.T) {
	repo, err := Open(filepath.Join(t.TempDir(), "roost.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})
	err = repo.UpdateProperty(context.Background(), domain.Property{ID: "ghost", Title: "x", Status: domain.StatusSeen})
	if !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepository_MigratesLegacyPropertiesTable(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "legacy.db")
	db, err := sql.Open(driverName, dbPath)
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	_, err = db.Exec(`CREATE TABLE properties (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		rooms INTEGER NOT NULL DEFAULT 0,
		size_sqm REAL NOT NULL DEFAULT 0,
		price INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'seen',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`)
	if err != nil {
		t.Fatalf("create legacy table error = %v", err)
	}
	_, err = db.Exec(`INSERT INTO properties(id, title, status, created_at, updated_at) VALUES ('old', 'Old flat', 'contacted', '2026-01-01T00:00:00Z', '2026-01-01T00:00:00Z')`)
	if err != nil {
		t.Fatalf("insert legacy row error = %v", err)
	}
	_ = db.Close()

	repo, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})
	p, err := repo.GetProperty(context.Background(), "old")
	if err != nil {
		t.Fatalf("GetProperty() error = %v", err)
	}
	if p.Flagged || p.Notes != "" || p.Status != domain.StatusContacted {
		t.Fatalf("unexpected migrated property %#v", p)
	}
}
