package stages

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"memograph/internal/exifmeta"
	"memograph/internal/logging"
	"memograph/internal/services"
	"memograph/internal/store"
	"memograph/internal/trip"
)

func newTrip(t *testing.T) *trip.Layout {
	t.Helper()
	root := filepath.Join(t.TempDir(), "ladakh_2024")
	for _, dir := range []string{root, filepath.Join(root, "sub"), filepath.Join(root, trip.WorkDirName)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	files := map[string]string{
		"a.jpg":     "jpeg-bytes-a",
		"sub/b.png": "png-bytes-b",
		"notes.txt": "not a photo",
		filepath.Join(trip.WorkDirName, "stray.jpg"): "must be skipped",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(root, filepath.FromSlash(name)), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	layout, err := trip.Resolve(root, "labels.csv")
	if err != nil {
		t.Fatal(err)
	}
	return layout
}

func TestScanDiscoversNewPhotos(t *testing.T) {
	layout := newTrip(t)
	scan := NewScan(layout, []string{".jpg", ".png"}, logging.NewNop())

	outcome, err := scan.Execute(context.Background(), store.NewTable(nil))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if len(outcome.Added) != 2 {
		t.Fatalf("Added = %d, want 2", len(outcome.Added))
	}
	byID := make(map[string]*store.Record)
	for _, rec := range outcome.Added {
		byID[rec.Identity()] = rec
	}
	rec, ok := byID["sub/b.png"]
	if !ok {
		t.Fatalf("nested photo missing, got %v", outcome.Added)
	}
	if rec.Get("image_name") != "b.png" {
		t.Fatalf("image_name = %q", rec.Get("image_name"))
	}
	if rec.Get("md5sum") == "" {
		t.Fatal("md5sum not computed")
	}
	if _, found := byID[trip.WorkDirName+"/stray.jpg"]; found {
		t.Fatal("working directory must be excluded from the walk")
	}
}

func TestScanRefreshesKnownPhotosWithoutTouchingEnrichment(t *testing.T) {
	layout := newTrip(t)
	scan := NewScan(layout, []string{".jpg", ".png"}, logging.NewNop())

	table := store.NewTable([]string{"local_path", "caption"})
	known := store.NewRecord("a.jpg")
	known.Set("caption", "hand written caption")
	if err := table.Append(known); err != nil {
		t.Fatal(err)
	}

	outcome, err := scan.Execute(context.Background(), table)
	if err != nil {
		t.Fatal(err)
	}
	if len(outcome.Added) != 1 {
		t.Fatalf("only the unknown photo should be added, got %d", len(outcome.Added))
	}
	fields, ok := outcome.Updates["a.jpg"]
	if !ok {
		t.Fatal("known photo should get its scan columns refreshed")
	}
	if _, touched := fields["caption"]; touched {
		t.Fatal("scan must not write enrichment columns")
	}
}

func TestScanUsesMetadataReader(t *testing.T) {
	layout := newTrip(t)
	scan := NewScan(layout, []string{".jpg"}, logging.NewNop())
	scan.readMeta = func(string) (exifmeta.Metadata, error) {
		return exifmeta.Metadata{
			DateTimeOriginal: "2024:08:16 09:00:00",
			DeviceModel:      "Canon EOS R6",
			Lat:              "33.900000",
			Lon:              "78.400000",
		}, nil
	}

	outcome, err := scan.Execute(context.Background(), store.NewTable(nil))
	if err != nil {
		t.Fatal(err)
	}
	if len(outcome.Added) != 1 {
		t.Fatalf("Added = %d", len(outcome.Added))
	}
	rec := outcome.Added[0]
	if rec.Get("datetime_original") != "2024:08:16 09:00:00" || rec.Get("gps_lat") != "33.900000" {
		t.Fatalf("metadata not recorded: %+v", rec.Fields)
	}
}

func TestDaysEmptyTableIsNoOp(t *testing.T) {
	outcome, err := NewDays(logging.NewNop()).Execute(context.Background(), store.NewTable(nil))
	if err != nil {
		t.Fatal(err)
	}
	if len(outcome.Updates) != 0 {
		t.Fatalf("unexpected updates %v", outcome.Updates)
	}
}

func TestDaysNoTimestampsFailsStage(t *testing.T) {
	table := store.NewTable([]string{"local_path", "datetime_original"})
	rec := store.NewRecord("a.jpg")
	rec.Set("datetime_original", "not a timestamp")
	if err := table.Append(rec); err != nil {
		t.Fatal(err)
	}

	_, err := NewDays(logging.NewNop()).Execute(context.Background(), table)
	if !errors.Is(err, services.ErrResourceMissing) {
		t.Fatalf("expected resource-missing classification, got %v", err)
	}
}

type fakeResolver struct {
	place string
	err   error
	calls int
}

func (f *fakeResolver) Resolve(context.Context, float64, float64) (string, error) {
	f.calls++
	return f.place, f.err
}

func locateTable(t *testing.T) *store.Table {
	t.Helper()
	table := store.NewTable([]string{"local_path", "gps_lat", "gps_lon", "location_inferred"})
	rows := []map[string]string{
		{"local_path": "gps.jpg", "gps_lat": "33.9", "gps_lon": "78.4"},
		{"local_path": "nogps.jpg"},
		{"local_path": "done.jpg", "gps_lat": "34.1", "gps_lon": "77.5", "location_inferred": "Leh, Ladakh, India"},
	}
	for _, fields := range rows {
		rec := store.NewRecord(fields["local_path"])
		for col, value := range fields {
			rec.Set(col, value)
		}
		if err := table.Append(rec); err != nil {
			t.Fatal(err)
		}
	}
	return table
}

func TestLocateResolvesAndFallsBack(t *testing.T) {
	resolver := &fakeResolver{place: "Spangmik, Ladakh, India"}
	locate := NewLocate(resolver, "Ladakh 2024", logging.NewNop())

	outcome, err := locate.Execute(context.Background(), locateTable(t))
	if err != nil {
		t.Fatal(err)
	}
	if got := outcome.Updates["gps.jpg"]["location_inferred"]; got != "Spangmik, Ladakh, India" {
		t.Fatalf("gps record = %q", got)
	}
	if got := outcome.Updates["nogps.jpg"]["location_inferred"]; got != "Ladakh 2024" {
		t.Fatalf("fallback = %q", got)
	}
	if outcome.Skipped != 1 {
		t.Fatalf("pre-filled record should be skipped, Skipped = %d", outcome.Skipped)
	}
	if resolver.calls != 1 {
		t.Fatalf("resolver called %d times, want 1", resolver.calls)
	}
}

func TestLocateResolverFailureFallsBackToHint(t *testing.T) {
	resolver := &fakeResolver{err: errors.New("geocoder unreachable")}
	locate := NewLocate(resolver, "Ladakh 2024", logging.NewNop())

	outcome, err := locate.Execute(context.Background(), locateTable(t))
	if err != nil {
		t.Fatalf("per-record failures must not fail the stage: %v", err)
	}
	if got := outcome.Updates["gps.jpg"]["location_inferred"]; got != "Ladakh 2024" {
		t.Fatalf("geocoder failure must fall back to the trip hint, got %q", got)
	}
	if got := outcome.Updates["nogps.jpg"]["location_inferred"]; got != "Ladakh 2024" {
		t.Fatalf("fallback should still apply, got %q", got)
	}
}

func TestLocateResolverFailureWithoutHintSkipsRecord(t *testing.T) {
	resolver := &fakeResolver{err: errors.New("geocoder unreachable")}
	locate := NewLocate(resolver, "", logging.NewNop())

	outcome, err := locate.Execute(context.Background(), locateTable(t))
	if err != nil {
		t.Fatalf("per-record failures must not fail the stage: %v", err)
	}
	if _, updated := outcome.Updates["gps.jpg"]; updated {
		t.Fatal("without a hint the failed lookup must leave the record for the next run")
	}
	// gps.jpg and nogps.jpg both skip; done.jpg is pre-filled.
	if outcome.Skipped != 3 {
		t.Fatalf("Skipped = %d, want 3", outcome.Skipped)
	}
}

func TestLocateNilResolverUsesFallback(t *testing.T) {
	locate := NewLocate(nil, "Ladakh 2024", logging.NewNop())
	outcome, err := locate.Execute(context.Background(), locateTable(t))
	if err != nil {
		t.Fatal(err)
	}
	if got := outcome.Updates["gps.jpg"]["location_inferred"]; got != "Ladakh 2024" {
		t.Fatalf("disabled geocoder should fall back, got %q", got)
	}
}

type fakeAnnotator struct {
	labels  []string
	species []string
	faces   int
	caption string
	journal string
	err     error
	calls   int
}

func (f *fakeAnnotator) Labels(context.Context, string) ([]string, error) {
	f.calls++
	return f.labels, f.err
}

func (f *fakeAnnotator) Species(context.Context, string) ([]string, error) {
	f.calls++
	return f.species, f.err
}

func (f *fakeAnnotator) DetectFaces(context.Context, string) (int, error) {
	f.calls++
	return f.faces, f.err
}

func (f *fakeAnnotator) Caption(context.Context, string) (string, error) {
	f.calls++
	return f.caption, f.err
}

func (f *fakeAnnotator) CreativeCaption(context.Context, string) (string, error) {
	f.calls++
	return f.journal, f.err
}

func visionTable(t *testing.T) *store.Table {
	t.Helper()
	table := store.NewTable([]string{
		"local_path", "faces_detected", "detected_objects", "species_tags", "caption", "caption_ai",
	})
	for _, identity := range []string{"a.jpg", "sub/b.png"} {
		if err := table.Append(store.NewRecord(identity)); err != nil {
			t.Fatal(err)
		}
	}
	return table
}

func TestFacesRecordsCount(t *testing.T) {
	layout := newTrip(t)
	annotator := &fakeAnnotator{faces: 2}
	outcome, err := NewFaces(layout, annotator, logging.NewNop()).Execute(context.Background(), visionTable(t))
	if err != nil {
		t.Fatal(err)
	}
	if got := outcome.Updates["a.jpg"]["faces_detected"]; got != "2" {
		t.Fatalf("faces_detected = %q", got)
	}
}

func TestFacesZeroIsRecordedNotSkipped(t *testing.T) {
	layout := newTrip(t)
	annotator := &fakeAnnotator{faces: 0}
	outcome, err := NewFaces(layout, annotator, logging.NewNop()).Execute(context.Background(), visionTable(t))
	if err != nil {
		t.Fatal(err)
	}
	if got := outcome.Updates["a.jpg"]["faces_detected"]; got != "0" {
		t.Fatalf("zero faces must be written as %q to mark the photo checked, got %q", "0", got)
	}
}

func TestLabelsJoinsList(t *testing.T) {
	layout := newTrip(t)
	annotator := &fakeAnnotator{labels: []string{"lake", "mountains", "prayer flags"}}
	outcome, err := NewLabels(layout, annotator, logging.NewNop()).Execute(context.Background(), visionTable(t))
	if err != nil {
		t.Fatal(err)
	}
	if got := outcome.Updates["a.jpg"]["detected_objects"]; got != "lake; mountains; prayer flags" {
		t.Fatalf("detected_objects = %q", got)
	}
}

func TestVisionStageSkipsFilledRecords(t *testing.T) {
	layout := newTrip(t)
	table := visionTable(t)
	rec, _ := table.Lookup("a.jpg")
	rec.Set("caption", "already captioned")

	annotator := &fakeAnnotator{caption: "new caption"}
	outcome, err := NewCaption(layout, annotator, logging.NewNop()).Execute(context.Background(), table)
	if err != nil {
		t.Fatal(err)
	}
	if _, updated := outcome.Updates["a.jpg"]; updated {
		t.Fatal("filled record must be skipped")
	}
	if annotator.calls != 1 {
		t.Fatalf("annotator called %d times, want 1 for the empty record", annotator.calls)
	}
}

func TestVisionStageMissingPhotoIsSkipped(t *testing.T) {
	layout := newTrip(t)
	table := visionTable(t)
	if err := table.Append(store.NewRecord("ghost.jpg")); err != nil {
		t.Fatal(err)
	}

	annotator := &fakeAnnotator{caption: "fine"}
	outcome, err := NewCaption(layout, annotator, logging.NewNop()).Execute(context.Background(), table)
	if err != nil {
		t.Fatalf("missing photo must not fail the stage: %v", err)
	}
	if _, updated := outcome.Updates["ghost.jpg"]; updated {
		t.Fatal("missing photo must not be annotated")
	}
	if outcome.Skipped != 1 {
		t.Fatalf("Skipped = %d, want 1", outcome.Skipped)
	}
}

func TestVisionStageAnnotatorFailureContinues(t *testing.T) {
	layout := newTrip(t)
	annotator := &fakeAnnotator{err: errors.New("model overloaded")}
	outcome, err := NewSpecies(layout, annotator, logging.NewNop()).Execute(context.Background(), visionTable(t))
	if err != nil {
		t.Fatalf("per-record failure must not fail the stage: %v", err)
	}
	if len(outcome.Updates) != 0 {
		t.Fatalf("no updates expected, got %v", outcome.Updates)
	}
	if outcome.Skipped != 2 {
		t.Fatalf("Skipped = %d, want 2", outcome.Skipped)
	}
}
