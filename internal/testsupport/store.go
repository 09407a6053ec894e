package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"memograph/internal/logging"
	"memograph/internal/store"
	"memograph/internal/trip"
)

// NewTrip creates a trip folder with the given photo files (relative paths,
// arbitrary content) and returns its resolved layout.
func NewTrip(t testing.TB, photos map[string]string) *trip.Layout {
	t.Helper()

	root := filepath.Join(t.TempDir(), "test_trip")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("mkdir trip root: %v", err)
	}
	for rel, content := range photos {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir for %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}

	layout, err := trip.Resolve(root, "labels.csv")
	if err != nil {
		t.Fatalf("trip.Resolve: %v", err)
	}
	if err := layout.Ensure(); err != nil {
		t.Fatalf("layout.Ensure: %v", err)
	}
	return layout
}

// SeedStore writes a store with the given columns and rows and returns it.
// Each row maps column to value; missing columns come out empty.
func SeedStore(t testing.TB, path string, columns []string, rows []map[string]string) *store.Store {
	t.Helper()

	table := store.NewTable(columns)
	for _, fields := range rows {
		rec := store.NewRecord(fields[store.IdentityColumn])
		for col, value := range fields {
			rec.Set(col, value)
		}
		if err := table.Append(rec); err != nil {
			t.Fatalf("append %s: %v", rec.Identity(), err)
		}
	}

	st := store.New(path, nil, logging.NewNop())
	if err := st.Save(table); err != nil {
		t.Fatalf("save store: %v", err)
	}
	return st
}
