// Package store persists imported datasets so serving does not require
// the source CSV files. Enabled flags never touch the store; they are
// session state and reset on every restart.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/terramesa/uplinkmap/internal/db"
	"github.com/terramesa/uplinkmap/internal/hierarchy"
)

// Store provides dataset snapshot and import-history operations.
type Store struct {
	db *db.DB
}

// NewStore creates a new dataset store.
func NewStore(d *db.DB) *Store {
	return &Store{db: d}
}

// ImportRecord describes one completed import run.
type ImportRecord struct {
	ID         string    `json:"id"`
	ImportedAt time.Time `json:"imported_at"`
	Provinces  int       `json:"provinces"`
	Cities     int       `json:"cities"`
	Barangays  int       `json:"barangays"`
	Dropped    int       `json:"dropped"`
	Source     string    `json:"source"`
}

// ReplaceNodes swaps the stored dataset for the given nodes in one
// transaction. each, when non-nil, runs after every insert so callers
// can report progress.
func (s *Store) ReplaceNodes(ctx context.Context, nodes []hierarchy.Node, each func()) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning import: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM nodes`); err != nil {
		return fmt.Errorf("clearing nodes: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO nodes (id, kind, name, parent_id, lat, lng, geohash) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, n := range nodes {
		var parent sql.NullString
		if n.ParentID != "" {
			parent = sql.NullString{String: n.ParentID, Valid: true}
		}
		var lat, lng sql.NullFloat64
		if n.Coords != nil {
			lat = sql.NullFloat64{Float64: n.Coords.Lat, Valid: true}
			lng = sql.NullFloat64{Float64: n.Coords.Lng, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, n.ID, string(n.Kind), n.Name, parent, lat, lng, n.Geohash); err != nil {
			return fmt.Errorf("inserting node %s/%s: %w", n.Kind, n.ID, err)
		}
		if each != nil {
			each()
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing import: %w", err)
	}
	return nil
}

// LoadNodes reads the stored dataset back, provinces first, each kind
// ordered by id.
func (s *Store) LoadNodes(ctx context.Context) ([]hierarchy.Node, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, name, parent_id, lat, lng, geohash FROM nodes
		 ORDER BY CASE kind WHEN 'province' THEN 0 WHEN 'city' THEN 1 ELSE 2 END, id`)
	if err != nil {
		return nil, fmt.Errorf("loading nodes: %w", err)
	}
	defer rows.Close()

	var nodes []hierarchy.Node
	for rows.Next() {
		var (
			n      hierarchy.Node
			kind   string
			parent sql.NullString
			lat    sql.NullFloat64
			lng    sql.NullFloat64
		)
		if err := rows.Scan(&n.ID, &kind, &n.Name, &parent, &lat, &lng, &n.Geohash); err != nil {
			return nil, fmt.Errorf("scanning node: %w", err)
		}
		n.Kind = hierarchy.Kind(kind)
		n.ParentID = parent.String
		if lat.Valid && lng.Valid {
			n.Coords = &hierarchy.LatLng{Lat: lat.Float64, Lng: lng.Float64}
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// CountNodes reports how many nodes are stored.
func (s *Store) CountNodes(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM nodes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting nodes: %w", err)
	}
	return n, nil
}

// RecordImport appends one import run to the history.
func (s *Store) RecordImport(ctx context.Context, rec *ImportRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.ImportedAt.IsZero() {
		rec.ImportedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO imports (id, imported_at, provinces, cities, barangays, dropped, source)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ImportedAt, rec.Provinces, rec.Cities, rec.Barangays, rec.Dropped, rec.Source,
	)
	if err != nil {
		return fmt.Errorf("recording import: %w", err)
	}
	return nil
}

// LastImport returns the most recent import run, or sql.ErrNoRows when
// nothing was ever imported.
func (s *Store) LastImport(ctx context.Context) (*ImportRecord, error) {
	rec := &ImportRecord{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, imported_at, provinces, cities, barangays, dropped, source
		 FROM imports ORDER BY imported_at DESC, id LIMIT 1`,
	).Scan(&rec.ID, &rec.ImportedAt, &rec.Provinces, &rec.Cities, &rec.Barangays, &rec.Dropped, &rec.Source)
	if err != nil {
		return nil, fmt.Errorf("getting last import: %w", err)
	}
	return rec, nil
}
