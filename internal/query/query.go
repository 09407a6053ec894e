// Package query evaluates column predicates over a record table and
// optionally exports the matches to a new store.
package query

import (
	"fmt"
	"log/slog"
	"strings"

	"memograph/internal/logging"
	"memograph/internal/store"
)

// Filters is a conjunction of independent predicates. Zero values disable a
// predicate. The extension list is the single OR'd exception: any listed
// suffix matches.
type Filters struct {
	Text     string // substring over caption and caption_ai
	Species  string // substring over species_tags
	People   string // substring over people_tags
	Location string // substring over location_inferred
	Device   string // substring over device_model
	Notes    string // substring over notes
	Faces    bool   // faces_detected flag set
	Date     string // YYYY-MM-DD or YYYY-MM-DD:YYYY-MM-DD over datetime_original
	Day      string // integer or low:high over day_number
	Ext      string // comma-separated suffix list over image_name
	Limit    int    // result cap; 0 means unlimited
}

// Engine evaluates filters against a table.
type Engine struct {
	logger *slog.Logger
}

// NewEngine builds a query engine.
func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{logger: logging.NewComponentLogger(logger, "query")}
}

// Run scans the table in store order and returns the matching records. The
// cap short-circuits the scan, so results are deterministic for a given
// store.
func (e *Engine) Run(table *store.Table, f Filters) []*store.Record {
	var matched []*store.Record
	for _, rec := range table.Records {
		if !e.matches(rec, f) {
			continue
		}
		matched = append(matched, rec)
		if f.Limit > 0 && len(matched) >= f.Limit {
			break
		}
	}
	e.logger.Debug("query evaluated",
		logging.Int("scanned", table.Len()),
		logging.Int("matched", len(matched)))
	return matched
}

func (e *Engine) matches(rec *store.Record, f Filters) bool {
	if f.Text != "" {
		if !containsFold(rec.Get("caption"), f.Text) && !containsFold(rec.Get("caption_ai"), f.Text) {
			return false
		}
	}
	if f.Species != "" && !containsFold(rec.Get("species_tags"), f.Species) {
		return false
	}
	if f.People != "" && !containsFold(rec.Get("people_tags"), f.People) {
		return false
	}
	if f.Location != "" && !containsFold(rec.Get("location_inferred"), f.Location) {
		return false
	}
	if f.Device != "" && !containsFold(rec.Get("device_model"), f.Device) {
		return false
	}
	if f.Notes != "" && !containsFold(rec.Get("notes"), f.Notes) {
		return false
	}
	if f.Faces && !flagSet(rec.Get("faces_detected")) {
		return false
	}
	if f.Date != "" && !matchesDate(rec.Get("datetime_original"), f.Date) {
		return false
	}
	if f.Day != "" && !matchesIntRange(rec.Get("day_number"), f.Day) {
		return false
	}
	if f.Ext != "" && !matchesExtension(rec, f.Ext) {
		return false
	}
	return true
}

// Export writes the matched records to a new store at destPath. With
// fullSchema the export carries the complete source schema; otherwise only
// the columns the matched records themselves carry, in source order.
func (e *Engine) Export(table *store.Table, matched []*store.Record, destPath string, fullSchema bool) error {
	columns := append([]string(nil), table.Columns...)
	if !fullSchema && len(matched) > 0 {
		narrow := columns[:0]
		for _, col := range columns {
			if _, ok := matched[0].Fields[col]; ok {
				narrow = append(narrow, col)
			}
		}
		columns = narrow
	}

	out := store.NewTable(columns)
	out.Records = matched

	dest := store.New(destPath, nil, e.logger)
	if err := dest.Save(out); err != nil {
		return fmt.Errorf("export query results: %w", err)
	}
	e.logger.Info("query results exported",
		logging.Int("records", len(matched)),
		logging.String("path", destPath))
	return nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// flagSet treats a column as a boolean flag: set when non-empty and not a
// literal zero.
func flagSet(value string) bool {
	value = strings.TrimSpace(value)
	return value != "" && value != "0"
}
