package backup

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"memograph/internal/logging"
)

func writeStore(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "labels.csv")
	if err := os.WriteFile(path, []byte("local_path\na.jpg\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func managerWithClock(t *testing.T, dir string, retention int) (*Manager, *time.Time) {
	t.Helper()
	m := NewManager(dir, retention, logging.NewNop())
	clock := time.Date(2024, 8, 16, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return m, &clock
}

func TestSnapshotMissingStoreIsNoop(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(filepath.Join(dir, "backups"), 3, logging.NewNop())
	path, err := m.Snapshot(filepath.Join(dir, "labels.csv"))
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if path != "" {
		t.Fatalf("expected no-op, got %q", path)
	}
}

func TestSnapshotCopiesStore(t *testing.T) {
	dir := t.TempDir()
	storePath := writeStore(t, dir)
	m, _ := managerWithClock(t, filepath.Join(dir, "backups"), 3)

	snap, err := m.Snapshot(storePath)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(snap), "labels_") || !strings.HasSuffix(snap, ".csv") {
		t.Fatalf("unexpected snapshot name %q", snap)
	}

	want, _ := os.ReadFile(storePath)
	got, err := os.ReadFile(snap)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(want) {
		t.Fatalf("snapshot content differs: %q vs %q", got, want)
	}
}

func TestRotationBound(t *testing.T) {
	dir := t.TempDir()
	storePath := writeStore(t, dir)
	m, _ := managerWithClock(t, filepath.Join(dir, "backups"), 3)

	var created []string
	for i := 0; i < 5; i++ {
		snap, err := m.Snapshot(storePath)
		if err != nil {
			t.Fatalf("Snapshot %d failed: %v", i, err)
		}
		created = append(created, snap)
	}

	remaining, err := m.List(storePath)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(remaining) != 3 {
		t.Fatalf("expected 3 snapshots after rotation, got %d: %v", len(remaining), remaining)
	}
	// the three most recent creations survive, newest first
	for i, want := range []string{created[4], created[3], created[2]} {
		if remaining[i] != want {
			t.Fatalf("remaining[%d] = %q, want %q", i, remaining[i], want)
		}
	}
}

func TestRotationKeepsAllUnderRetention(t *testing.T) {
	dir := t.TempDir()
	storePath := writeStore(t, dir)
	m, _ := managerWithClock(t, filepath.Join(dir, "backups"), 5)

	for i := 0; i < 2; i++ {
		if _, err := m.Snapshot(storePath); err != nil {
			t.Fatal(err)
		}
	}
	remaining, err := m.List(storePath)
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 2 {
		t.Fatalf("expected min(N, K) = 2 snapshots, got %d", len(remaining))
	}
}

func TestListIgnoresOtherStores(t *testing.T) {
	dir := t.TempDir()
	storePath := writeStore(t, dir)
	backupsDir := filepath.Join(dir, "backups")
	m, _ := managerWithClock(t, backupsDir, 3)

	if _, err := m.Snapshot(storePath); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(backupsDir, "other_20240816_090001.000000000.csv"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	remaining, err := m.List(storePath)
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 1 {
		t.Fatalf("expected 1 snapshot for labels store, got %v", remaining)
	}
}
