package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"memograph/internal/testsupport"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[geocoder]
enabled = false

[vision]
enabled = false

[logging]
format = "json"
level = "error"
to_file = false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	out, err := runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("output does not mention target: %s", out)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[store]") {
		t.Fatal("sample config missing store section")
	}

	if _, err := runCLI(t, "config", "init", "--path", target); err == nil {
		t.Fatal("second init without --overwrite must fail")
	}
}

func seedQueryTrip(t *testing.T) string {
	t.Helper()
	layout := testsupport.NewTrip(t, map[string]string{
		"a.jpg": "photo-a",
		"b.jpg": "photo-b",
	})
	testsupport.SeedStore(t, layout.StorePath,
		[]string{"local_path", "day_number", "species_tags", "caption"},
		[]map[string]string{
			{"local_path": "a.jpg", "day_number": "1", "species_tags": "Kingfisher", "caption": "a bird on a wire"},
			{"local_path": "b.jpg", "day_number": "2", "caption": "camp at dusk"},
		})
	return layout.Root
}

func TestQueryCommandFilters(t *testing.T) {
	cfgPath := writeTestConfig(t)
	root := seedQueryTrip(t)

	out, err := runCLI(t, "-c", cfgPath, "query", root, "--species", "kingfisher")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if !strings.Contains(out, "a.jpg") || strings.Contains(out, "b.jpg") {
		t.Fatalf("unexpected query output:\n%s", out)
	}
	if !strings.Contains(out, "1 of 2 record(s) matched") {
		t.Fatalf("missing match summary:\n%s", out)
	}
}

func TestQueryCommandExports(t *testing.T) {
	cfgPath := writeTestConfig(t)
	root := seedQueryTrip(t)

	out, err := runCLI(t, "-c", cfgPath, "query", root, "--day", "2", "--export", "day2.csv")
	if err != nil {
		t.Fatalf("query --export failed: %v", err)
	}
	exported := filepath.Join(root, "MemoGraph", "outputs", "day2.csv")
	data, err := os.ReadFile(exported)
	if err != nil {
		t.Fatalf("export not written: %v\noutput:\n%s", err, out)
	}
	if !strings.Contains(string(data), "b.jpg") || strings.Contains(string(data), "a.jpg") {
		t.Fatalf("unexpected export contents:\n%s", data)
	}
}

func TestStageCommandRunsScan(t *testing.T) {
	cfgPath := writeTestConfig(t)
	layout := testsupport.NewTrip(t, map[string]string{
		"a.jpg": "photo-a",
		"b.jpg": "photo-b",
	})

	out, err := runCLI(t, "-c", cfgPath, "stage", "scan", layout.Root)
	if err != nil {
		t.Fatalf("stage scan failed: %v", err)
	}
	if !strings.Contains(out, "2 added") {
		t.Fatalf("expected two added records:\n%s", out)
	}
	if _, err := os.Stat(layout.StorePath); err != nil {
		t.Fatalf("store not created: %v", err)
	}
}

func TestStageCommandUnknownStage(t *testing.T) {
	cfgPath := writeTestConfig(t)
	layout := testsupport.NewTrip(t, nil)

	if _, err := runCLI(t, "-c", cfgPath, "stage", "blog", layout.Root); err == nil {
		t.Fatal("expected error for unknown stage")
	}
}

func TestBackupsCommandEmpty(t *testing.T) {
	cfgPath := writeTestConfig(t)
	layout := testsupport.NewTrip(t, nil)

	out, err := runCLI(t, "-c", cfgPath, "backups", layout.Root)
	if err != nil {
		t.Fatalf("backups failed: %v", err)
	}
	if !strings.Contains(out, "No snapshots yet") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestRunCommandMissingTrip(t *testing.T) {
	cfgPath := writeTestConfig(t)
	if _, err := runCLI(t, "-c", cfgPath, "run", filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing trip folder")
	}
}
