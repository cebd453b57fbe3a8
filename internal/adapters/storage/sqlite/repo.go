package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hylla/roost/internal/app"
	"github.com/hylla/roost/internal/domain"
	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

const propertyColumns = `id, title, address, rooms, size_sqm, price, flagged, status, notes, created_at, updated_at`

// migrations run in order; the index of the last applied step is stored in
// PRAGMA user_version.
var migrations = [][]string{
	{
		`CREATE TABLE IF NOT EXISTS properties (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			address TEXT NOT NULL DEFAULT '',
			rooms INTEGER NOT NULL DEFAULT 0,
			size_sqm REAL NOT NULL DEFAULT 0,
			price INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'seen',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS status_changes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			property_id TEXT NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
			from_status TEXT NOT NULL,
			to_status TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_properties_status ON properties(status)`,
		`CREATE INDEX IF NOT EXISTS idx_status_changes_property ON status_changes(property_id, created_at)`,
	},
	{
		`ALTER TABLE properties ADD COLUMN flagged INTEGER NOT NULL DEFAULT 0`,
		`ALTER TABLE properties ADD COLUMN notes TEXT NOT NULL DEFAULT ''`,
	},
}

// Repository stores properties and their status history in sqlite.
type Repository struct {
	db *sql.DB
}

// Open creates the parent directory if needed, opens path and brings the
// schema up to date.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	dsn := "file:" + filepath.ToSlash(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// Ping backs the server readiness probe.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) migrate(ctx context.Context) error {
	var version int
	if err := r.db.QueryRowContext(ctx, `PRAGMA user_version`).Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for next := version; next < len(migrations); next++ {
		err := r.inTx(ctx, func(tx *sql.Tx) error {
			for _, stmt := range migrations[next] {
				if _, err := tx.ExecContext(ctx, stmt); err != nil && !isDuplicateColumnErr(err) {
					return err
				}
			}
			_, err := tx.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d`, next+1))
			return err
		})
		if err != nil {
			return fmt.Errorf("migrate sqlite to v%d: %w", next+1, err)
		}
	}
	return nil
}

// inTx runs fn in a transaction, committing only when fn succeeds.
func (r *Repository) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (r *Repository) CreateProperty(ctx context.Context, p domain.Property) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO properties(`+propertyColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Address, p.Rooms, p.SizeSqm, p.Price, p.Flagged, string(p.Status), p.Notes,
		ts(p.CreatedAt), ts(p.UpdatedAt),
	)
	return err
}

// UpdateProperty writes p and, in the same transaction, records a status
// change row when the stored status differs.
func (r *Repository) UpdateProperty(ctx context.Context, p domain.Property) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		prev, err := getPropertyByID(ctx, tx, p.ID)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE properties
			SET title = ?, address = ?, rooms = ?, size_sqm = ?, price = ?, flagged = ?, status = ?, notes = ?, updated_at = ?
			WHERE id = ?`,
			p.Title, p.Address, p.Rooms, p.SizeSqm, p.Price, p.Flagged, string(p.Status), p.Notes,
			ts(p.UpdatedAt), p.ID,
		)
		if err != nil || prev.Status == p.Status {
			return err
		}
		occurred := p.UpdatedAt
		if occurred.IsZero() {
			occurred = time.Now()
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO status_changes(property_id, from_status, to_status, created_at) VALUES (?, ?, ?, ?)`,
			p.ID, string(prev.Status), string(p.Status), ts(occurred),
		)
		if err != nil {
			return fmt.Errorf("insert status change: %w", err)
		}
		return nil
	})
}

func (r *Repository) GetProperty(ctx context.Context, id string) (domain.Property, error) {
	return getPropertyByID(ctx, r.db, id)
}

// ListProperties returns properties oldest first. Bought and discarded ones
// are left out unless includeClosed is set.
func (r *Repository) ListProperties(ctx context.Context, includeClosed bool) ([]domain.Property, error) {
	var where string
	var args []any
	if !includeClosed {
		where = ` WHERE status NOT IN (?, ?)`
		args = []any{string(domain.StatusBought), string(domain.StatusDiscarded)}
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+propertyColumns+` FROM properties`+where+` ORDER BY created_at ASC, id ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Property{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeleteProperty removes a property; its history goes with it via the
// foreign key cascade.
func (r *Repository) DeleteProperty(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM properties WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return app.ErrNotFound
	}
	return nil
}

// ListStatusChanges returns up to limit changes, newest first. A limit of
// zero or less means 50.
func (r *Repository) ListStatusChanges(ctx context.Context, propertyID string, limit int) ([]domain.StatusChange, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, property_id, from_status, to_status, created_at
		FROM status_changes
		WHERE property_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, propertyID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.StatusChange{}
	for rows.Next() {
		var c domain.StatusChange
		var from, to, created string
		if err := rows.Scan(&c.ID, &c.PropertyID, &from, &to, &created); err != nil {
			return nil, err
		}
		c.From, c.To, c.OccurredAt = domain.Status(from), domain.Status(to), parseTS(created)
		out = append(out, c)
	}
	return out, rows.Err()
}

// rowQuerier is satisfied by both *sql.DB and *sql.Tx.
type rowQuerier interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

func getPropertyByID(ctx context.Context, q rowQuerier, id string) (domain.Property, error) {
	return scanProperty(q.QueryRowContext(ctx, `SELECT `+propertyColumns+` FROM properties WHERE id = ?`, id))
}

func scanProperty(row interface{ Scan(...any) error }) (domain.Property, error) {
	var p domain.Property
	var status, created, updated string
	err := row.Scan(&p.ID, &p.Title, &p.Address, &p.Rooms, &p.SizeSqm, &p.Price, &p.Flagged, &status, &p.Notes, &created, &updated)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return domain.Property{}, app.ErrNotFound
	case err != nil:
		return domain.Property{}, err
	}
	p.Status = domain.Status(status)
	p.CreatedAt, p.UpdatedAt = parseTS(created), parseTS(updated)
	return p, nil
}

func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTS(v string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// isDuplicateColumnErr lets the column migration run over databases that
// already carry the column.
func isDuplicateColumnErr(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "duplicate column name")
}
