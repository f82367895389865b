// Package storage caches the unified entity set in a local SQLite
// database so downstream queries don't have to re-parse the artifact.
package storage

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/umadb/umascope/pkg/unify"
)

type DB struct {
	sql *sql.DB
}

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	// Ensure schema exists for convenience.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS entities (
  id              INTEGER PRIMARY KEY,
  name            TEXT NOT NULL,
  base_name       TEXT NOT NULL,
  variant         TEXT NOT NULL,
  description     TEXT,
  innate_distance TEXT NOT NULL DEFAULT '',
  innate_style    TEXT NOT NULL DEFAULT '',
  lv2_score       TEXT,
  lv3_score       TEXT,
  lv4_score       TEXT,
  lv5_score       TEXT,
  trials_score    TEXT,
  trials_distance TEXT,
  trials_style    TEXT,
  parent_score    TEXT,
  debuffer_type   TEXT,
  run_id          INTEGER NOT NULL DEFAULT 0,
  first_seen_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  last_seen_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(base_name, variant)
);
CREATE INDEX IF NOT EXISTS idx_entities_base ON entities(base_name);
CREATE TABLE IF NOT EXISTS entity_changes (
  id          INTEGER PRIMARY KEY,
  occurred_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  base_name   TEXT NOT NULL,
  variant     TEXT NOT NULL,
  change_type TEXT NOT NULL CHECK (change_type IN ('added','updated','removed'))
);
CREATE INDEX IF NOT EXISTS idx_changes_time ON entity_changes(occurred_at);
    `); err != nil {
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// Change records one difference observed while loading an entity set.
type Change struct {
	OccurredAt time.Time
	BaseName   string
	Variant    string
	ChangeType string
}

// Load replaces the cached set with entities, diffing against what is
// already stored. Rows untouched by this run are swept and logged as
// removed.
func (d *DB) Load(ctx context.Context, entities []unify.Entity) ([]Change, error) {
	now := time.Now().UTC()
	runID := time.Now().UnixNano()

	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	rows, err := tx.QueryContext(ctx, "SELECT base_name, variant, description, lv2_score, lv3_score, lv4_score, lv5_score FROM entities")
	if err != nil {
		return nil, err
	}

	existingMap := make(map[string]string)
	for rows.Next() {
		var (
			base, variant        string
			desc, l2, l3, l4, l5 sql.NullString
		)
		if err = rows.Scan(&base, &variant, &desc, &l2, &l3, &l4, &l5); err != nil {
			rows.Close()
			return nil, err
		}
		existingMap[identityKey(base, variant)] = fingerprint(desc.String, l2.String, l3.String, l4.String, l5.String)
	}
	if err = rows.Close(); err != nil {
		return nil, err
	}

	var changes []Change
	for _, e := range entities {
		key := identityKey(e.BaseName, e.Variant)
		fp := fingerprint(unify.Deref(e.Description), unify.Deref(e.Lv2.Score), unify.Deref(e.Lv3.Score), unify.Deref(e.Lv4.Score), unify.Deref(e.Lv5.Score))

		prev, existed := existingMap[key]
		if !existed {
			_, err = tx.ExecContext(ctx, `INSERT INTO entities(name, base_name, variant, description, innate_distance, innate_style, lv2_score, lv3_score, lv4_score, lv5_score, trials_score, trials_distance, trials_style, parent_score, debuffer_type, run_id, first_seen_at, last_seen_at) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP,CURRENT_TIMESTAMP)`,
				e.Name, e.BaseName, e.Variant, e.Description,
				strings.Join(e.InnateDistance, "/"), strings.Join(e.InnateStyle, "/"),
				e.Lv2.Score, e.Lv3.Score, e.Lv4.Score, e.Lv5.Score,
				e.Trials.Score, e.Trials.Distance, e.Trials.Style,
				e.Parent.Score, e.Debuffer.Type, runID)
			if err != nil {
				return nil, err
			}
			changes = append(changes, Change{OccurredAt: now, BaseName: e.BaseName, Variant: e.Variant, ChangeType: "added"})
			existingMap[key] = fp
		} else {
			if prev != fp {
				changes = append(changes, Change{OccurredAt: now, BaseName: e.BaseName, Variant: e.Variant, ChangeType: "updated"})
			}
			_, err = tx.ExecContext(ctx, `UPDATE entities SET name = ?, description = ?, innate_distance = ?, innate_style = ?, lv2_score = ?, lv3_score = ?, lv4_score = ?, lv5_score = ?, trials_score = ?, trials_distance = ?, trials_style = ?, parent_score = ?, debuffer_type = ?, run_id = ?, last_seen_at = CURRENT_TIMESTAMP WHERE base_name = ? AND variant = ?`,
				e.Name, e.Description,
				strings.Join(e.InnateDistance, "/"), strings.Join(e.InnateStyle, "/"),
				e.Lv2.Score, e.Lv3.Score, e.Lv4.Score, e.Lv5.Score,
				e.Trials.Score, e.Trials.Distance, e.Trials.Style,
				e.Parent.Score, e.Debuffer.Type, runID,
				e.BaseName, e.Variant)
			if err != nil {
				return nil, err
			}
		}
	}

	staleRows, err := tx.QueryContext(ctx, "SELECT base_name, variant FROM entities WHERE run_id != ?", runID)
	if err != nil {
		return nil, err
	}
	type staleEntry struct{ Base, Variant string }
	var toRemove []staleEntry
	for staleRows.Next() {
		var s staleEntry
		if err = staleRows.Scan(&s.Base, &s.Variant); err != nil {
			staleRows.Close()
			return nil, err
		}
		toRemove = append(toRemove, s)
	}
	if err = staleRows.Close(); err != nil {
		return nil, err
	}

	if len(toRemove) > 0 {
		_, err = tx.ExecContext(ctx, `DELETE FROM entities WHERE run_id != ?`, runID)
		if err != nil {
			return nil, err
		}
		for _, s := range toRemove {
			changes = append(changes, Change{OccurredAt: now, BaseName: s.Base, Variant: s.Variant, ChangeType: "removed"})
		}
	}

	for _, c := range changes {
		_, err = tx.ExecContext(ctx, `INSERT INTO entity_changes(occurred_at, base_name, variant, change_type) VALUES(CURRENT_TIMESTAMP, ?, ?, ?)`, c.BaseName, c.Variant, c.ChangeType)
		if err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return changes, nil
}

// ListOptions controls selection when listing cached entities.
type ListOptions struct {
	NameFilter string
	Variant    string
}

// Row is the flattened cached form of an entity.
type Row struct {
	Name           string
	BaseName       string
	Variant        string
	Description    string
	InnateDistance string
	InnateStyle    string
	Lv2, Lv3       string
	Lv4, Lv5       string
}

func (d *DB) List(ctx context.Context, opts ListOptions) ([]Row, error) {
	where := "WHERE 1=1"
	args := []interface{}{}
	if opts.NameFilter != "" {
		where += " AND name LIKE ?"
		args = append(args, "%"+opts.NameFilter+"%")
	}
	if opts.Variant != "" {
		where += " AND variant = ?"
		args = append(args, opts.Variant)
	}

	q := "SELECT name, base_name, variant, description, innate_distance, innate_style, lv2_score, lv3_score, lv4_score, lv5_score FROM entities " + where + " ORDER BY name"
	rows, err := d.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		var desc, l2, l3, l4, l5 sql.NullString
		if err := rows.Scan(&r.Name, &r.BaseName, &r.Variant, &desc, &r.InnateDistance, &r.InnateStyle, &l2, &l3, &l4, &l5); err != nil {
			return nil, err
		}
		r.Description = desc.String
		r.Lv2, r.Lv3, r.Lv4, r.Lv5 = l2.String, l3.String, l4.String, l5.String
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type VariantStats struct {
	Variant     string
	EntityCount int
	Described   int
}

func (d *DB) GetStats(ctx context.Context) ([]VariantStats, error) {
	query := `
		SELECT
			variant,
			COUNT(*),
			COUNT(description)
		FROM
			entities
		GROUP BY
			variant
		ORDER BY
			variant;
	`
	rows, err := d.sql.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []VariantStats
	for rows.Next() {
		var s VariantStats
		if err := rows.Scan(&s.Variant, &s.EntityCount, &s.Described); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
