package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WritePhoto drops a fake photo at the target path: a JPEG magic prefix
// followed by filler up to the requested size. Enough to exercise checksum
// and walk logic without shipping image fixtures.
func WritePhoto(t testing.TB, path string, size int) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	content := append([]byte{0xff, 0xd8, 0xff, 0xe0}, make([]byte, max(size-4, 0))...)
	for i := 4; i < len(content); i++ {
		content[i] = byte(i % 251)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
