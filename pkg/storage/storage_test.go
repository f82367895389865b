package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/umadb/umascope/pkg/unify"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func sp(s string) *string { return &s }

func testEntities() []unify.Entity {
	return []unify.Entity{
		{
			Name:           "Gold Ship",
			BaseName:       "Gold Ship",
			Variant:        "Original",
			Description:    sp("Unpredictable."),
			InnateDistance: []string{"Long"},
			InnateStyle:    []string{"End Closer"},
			Lv2:            unify.RatingLevel{Score: sp("5")},
		},
		{
			Name:     "Haru Urara",
			BaseName: "Haru Urara",
			Variant:  "Original",
			Lv2:      unify.RatingLevel{Score: sp("2")},
		},
	}
}

func TestLoadDiffing(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	changes, err := db.Load(ctx, testEntities())
	if err != nil {
		t.Fatal(err)
	}
	if len(changes) != 2 {
		t.Fatalf("first load: %d changes, want 2 adds", len(changes))
	}
	for _, c := range changes {
		if c.ChangeType != "added" {
			t.Fatalf("first load change type = %q", c.ChangeType)
		}
	}

	changes, err = db.Load(ctx, testEntities())
	if err != nil {
		t.Fatal(err)
	}
	if len(changes) != 0 {
		t.Fatalf("identical reload: %d changes, want 0", len(changes))
	}

	modified := testEntities()
	modified[0].Lv2 = unify.RatingLevel{Score: sp("4")}
	modified = modified[:1] // drop Haru Urara
	changes, err = db.Load(ctx, modified)
	if err != nil {
		t.Fatal(err)
	}
	var updated, removed int
	for _, c := range changes {
		switch c.ChangeType {
		case "updated":
			updated++
		case "removed":
			removed++
		default:
			t.Fatalf("unexpected change type %q", c.ChangeType)
		}
	}
	if updated != 1 || removed != 1 {
		t.Fatalf("updated=%d removed=%d, want 1/1", updated, removed)
	}
}

func TestListAndStats(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.Load(ctx, testEntities()); err != nil {
		t.Fatal(err)
	}

	rows, err := db.List(ctx, ListOptions{NameFilter: "Gold"})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Name != "Gold Ship" {
		t.Fatalf("rows = %+v", rows)
	}
	if rows[0].InnateStyle != "End Closer" || rows[0].Lv2 != "5" {
		t.Fatalf("flattened row = %+v", rows[0])
	}

	stats, err := db.GetStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(stats) != 1 || stats[0].Variant != "Original" || stats[0].EntityCount != 2 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats[0].Described != 1 {
		t.Fatalf("described count = %d, want 1", stats[0].Described)
	}
}
