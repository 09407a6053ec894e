package store_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"memograph/internal/logging"
	"memograph/internal/store"
)

func newStore(t *testing.T, name string) *store.Store {
	t.Helper()
	return store.New(filepath.Join(t.TempDir(), name), nil, logging.NewNop())
}

func seedTable(t *testing.T, s *store.Store) *store.Table {
	t.Helper()
	table := store.NewTable([]string{"local_path", "datetime_original", "day_number"})
	for _, row := range [][]string{
		{"a.jpg", "2024:08:16 09:00:00", ""},
		{"sub/b.jpg", "2024:08:16 18:00:00", ""},
		{"c.jpg", "2024:08:17 07:00:00", ""},
	} {
		rec := store.NewRecord(row[0])
		rec.Set("datetime_original", row[1])
		rec.Set("day_number", row[2])
		if err := table.Append(rec); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	if err := s.Save(table); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	return table
}

func TestLoadMissingFileYieldsEmptyTable(t *testing.T) {
	s := newStore(t, "labels.csv")
	table, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if table.Len() != 0 {
		t.Fatalf("expected empty table, got %d records", table.Len())
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newStore(t, "labels.csv")
	seedTable(t, s)

	first, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}

	table, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := s.Save(table); err != nil {
		t.Fatalf("re-Save failed: %v", err)
	}

	second, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Fatalf("round trip changed bytes:\n%s\nvs\n%s", first, second)
	}
}

func TestSaveCreatesParentDirectory(t *testing.T) {
	dir := t.TempDir()
	s := store.New(filepath.Join(dir, "MemoGraph", "labels.csv"), nil, logging.NewNop())
	table := store.NewTable([]string{"local_path"})
	if err := table.Append(store.NewRecord("a.jpg")); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(table); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(s.Path()); err != nil {
		t.Fatalf("store file not written: %v", err)
	}
}

func TestSaveProjectsSchema(t *testing.T) {
	s := newStore(t, "labels.csv")
	table := store.NewTable([]string{"local_path", "caption"})
	rec := store.NewRecord("a.jpg")
	rec.Set("caption", "a lake")
	rec.Set("obsolete_column", "dropped")
	if err := table.Append(rec); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(table); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "dropped") || strings.Contains(string(data), "obsolete_column") {
		t.Fatalf("unknown column leaked into output:\n%s", data)
	}

	reloaded, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	got, ok := reloaded.Lookup("a.jpg")
	if !ok || got.Get("caption") != "a lake" {
		t.Fatalf("schema columns lost: %#v", got)
	}
}

func TestLoadRetainsMalformedRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "labels.csv")
	content := "local_path,datetime_original,day_number\n" +
		"a.jpg,2024:08:16 09:00:00,1\n" +
		"b.jpg,2024:08:16 10:00:00\n" + // short row, retained padded
		",,\n" + // blank row, dropped
		"c.jpg,2024:08:17 07:00:00,2,extra\n" // long row, retained truncated
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s := store.New(path, nil, logging.NewNop())
	table, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if table.Len() != 3 {
		t.Fatalf("expected 3 records, got %d", table.Len())
	}
	if len(table.Issues) != 2 {
		t.Fatalf("expected 2 row issues, got %v", table.Issues)
	}
	b, ok := table.Lookup("b.jpg")
	if !ok || b.Get("day_number") != "" {
		t.Fatalf("short row not padded: %#v", b)
	}
	c, ok := table.Lookup("c.jpg")
	if !ok || c.Get("day_number") != "2" {
		t.Fatalf("long row not truncated: %#v", c)
	}
}

func TestMergeStageOutputByIdentity(t *testing.T) {
	s := newStore(t, "labels.csv")
	table := seedTable(t, s)

	changed, err := table.MergeStageOutput(map[string]map[string]string{
		"sub/b.jpg": {"day_number": "1"},
	})
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if changed != 1 {
		t.Fatalf("changed = %d, want 1", changed)
	}

	for _, identity := range []string{"a.jpg", "c.jpg"} {
		rec, _ := table.Lookup(identity)
		if rec.Get("day_number") != "" {
			t.Fatalf("record %s was modified by another identity's merge", identity)
		}
	}
	b, _ := table.Lookup("sub/b.jpg")
	if b.Get("day_number") != "1" {
		t.Fatalf("target record not updated: %#v", b)
	}
}

func TestMergeUnknownIdentityLeavesTableUnmodified(t *testing.T) {
	s := newStore(t, "labels.csv")
	table := seedTable(t, s)

	_, err := table.MergeStageOutput(map[string]map[string]string{
		"a.jpg":     {"day_number": "9"},
		"ghost.jpg": {"day_number": "1"},
	})
	if !errors.Is(err, store.ErrUnknownIdentity) {
		t.Fatalf("expected ErrUnknownIdentity, got %v", err)
	}

	a, _ := table.Lookup("a.jpg")
	if a.Get("day_number") != "" {
		t.Fatal("partial write observed after failed merge")
	}
}

func TestMergeIdenticalValuesCountsZero(t *testing.T) {
	s := newStore(t, "labels.csv")
	table := seedTable(t, s)

	if _, err := table.MergeStageOutput(map[string]map[string]string{"a.jpg": {"day_number": "1"}}); err != nil {
		t.Fatal(err)
	}
	changed, err := table.MergeStageOutput(map[string]map[string]string{"a.jpg": {"day_number": "1"}})
	if err != nil {
		t.Fatal(err)
	}
	if changed != 0 {
		t.Fatalf("re-merge of identical values changed %d records", changed)
	}
}

func TestLoadAppendsSchemaBaseline(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "labels.csv")
	content := "local_path,caption\na.jpg,a lake\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s := store.New(path, []string{"local_path", "day_number", "caption", "notes"}, logging.NewNop())
	table, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := []string{"local_path", "caption", "day_number", "notes"}
	if len(table.Columns) != len(want) {
		t.Fatalf("columns = %v, want %v", table.Columns, want)
	}
	for i, col := range want {
		if table.Columns[i] != col {
			t.Fatalf("columns = %v, want %v", table.Columns, want)
		}
	}

	if err := s.Save(table); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "local_path,caption,day_number,notes\n") {
		t.Fatalf("baseline not persisted:\n%s", data)
	}
}

func TestAppendRejectsDuplicateIdentity(t *testing.T) {
	table := store.NewTable([]string{"local_path"})
	if err := table.Append(store.NewRecord("a.jpg")); err != nil {
		t.Fatal(err)
	}
	if err := table.Append(store.NewRecord("a.jpg")); !errors.Is(err, store.ErrDuplicateIdentity) {
		t.Fatalf("expected ErrDuplicateIdentity, got %v", err)
	}
}
