package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"memograph/internal/logging"
)

// Store manages persistence of one trip's record table.
type Store struct {
	path   string
	schema []string
	logger *slog.Logger
}

// New creates a store bound to the given CSV path. The schema is the column
// baseline: every loaded table has the missing members appended, so the first
// save after a load carries the full baseline. A nil schema keeps the file's
// columns as-is.
func New(path string, schema []string, logger *slog.Logger) *Store {
	return &Store{
		path:   path,
		schema: append([]string(nil), schema...),
		logger: logging.NewComponentLogger(logger, "store"),
	}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the full table into memory. A missing file yields an empty
// table, which is a valid state distinct from a read failure.
func (s *Store) Load() (*Table, error) {
	file, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewTable(s.schema), nil
		}
		return nil, fmt.Errorf("open store %s: %w", s.path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read store %s: %w", s.path, err)
	}
	if len(rows) == 0 {
		return NewTable(s.schema), nil
	}

	table := NewTable(rows[0])
	table.EnsureColumns(s.schema)
	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		if len(row) != len(table.Columns) {
			issue := fmt.Sprintf("row %d: %d fields, header has %d", i+2, len(row), len(table.Columns))
			table.Issues = append(table.Issues, issue)
			s.logger.Warn("malformed store row retained",
				logging.String("path", s.path),
				logging.String("detail", issue))
			row = fitRow(row, len(table.Columns))
		}
		rec := &Record{Fields: make(map[string]string, len(table.Columns))}
		for j, col := range table.Columns {
			rec.Fields[col] = row[j]
		}
		identity := rec.Identity()
		if identity == "" {
			table.Issues = append(table.Issues, fmt.Sprintf("row %d: empty %s", i+2, IdentityColumn))
			s.logger.Warn("store row without identity retained",
				logging.String("path", s.path),
				logging.Int("row", i+2))
			table.Records = append(table.Records, rec)
			continue
		}
		if _, exists := table.index[identity]; exists {
			return nil, fmt.Errorf("%w: %s at row %d", ErrDuplicateIdentity, identity, i+2)
		}
		table.Records = append(table.Records, rec)
		table.index[identity] = rec
	}
	return table, nil
}

// Save writes all records using exactly the table's column order. Columns a
// record carries beyond the schema are dropped; columns it lacks are written
// as empty strings. The parent directory is created when missing.
func (s *Store) Save(table *Table) error {
	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create store directory: %w", err)
		}
	}

	file, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("create store %s: %w", s.path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(table.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	row := make([]string, len(table.Columns))
	for _, rec := range table.Records {
		for i, col := range table.Columns {
			row[i] = rec.Fields[col]
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row %s: %w", rec.Identity(), err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush store %s: %w", s.path, err)
	}
	return file.Close()
}

// MergeStageOutput overwrites the named fields on the matching records. All
// identities are validated before any field is touched: an identity absent
// from the table is an error and leaves every record unmodified. Returns the
// number of records whose stored values actually changed.
func (t *Table) MergeStageOutput(updates map[string]map[string]string) (int, error) {
	for identity := range updates {
		if _, ok := t.index[identity]; !ok {
			return 0, fmt.Errorf("%w: %s", ErrUnknownIdentity, identity)
		}
	}

	changed := 0
	for identity, fields := range updates {
		rec := t.index[identity]
		recChanged := false
		for col, value := range fields {
			if rec.Fields[col] != value {
				rec.Set(col, value)
				recChanged = true
			}
		}
		if recChanged {
			changed++
		}
	}
	return changed, nil
}

func blankRow(row []string) bool {
	for _, field := range row {
		if field != "" {
			return false
		}
	}
	return true
}

func fitRow(row []string, width int) []string {
	if len(row) > width {
		return row[:width]
	}
	out := make([]string, width)
	copy(out, row)
	return out
}
