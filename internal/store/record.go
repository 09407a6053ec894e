package store

// IdentityColumn is the column whose value uniquely identifies a record
// within one store: the photo path relative to the trip folder.
const IdentityColumn = "local_path"

// Record is one row of the store. Fields may carry columns beyond the current
// schema; unknown columns survive in memory and are pruned only at save time
// by schema projection. An empty string means "not yet known".
type Record struct {
	Fields map[string]string
}

// NewRecord returns a record with the identity field set.
func NewRecord(identity string) *Record {
	return &Record{Fields: map[string]string{IdentityColumn: identity}}
}

// Identity returns the record's unique key.
func (r *Record) Identity() string {
	return r.Fields[IdentityColumn]
}

// Get returns the value of the named column, or "" when unset.
func (r *Record) Get(column string) string {
	return r.Fields[column]
}

// Set assigns the value of the named column.
func (r *Record) Set(column, value string) {
	if r.Fields == nil {
		r.Fields = make(map[string]string)
	}
	r.Fields[column] = value
}

// Table is the in-memory form of one store: records in load order plus the
// ordered schema. The table owns its records for the duration of a load
// cycle; nothing mutates them concurrently.
type Table struct {
	Columns []string
	Records []*Record

	// Issues collects row-level diagnostics gathered during load.
	Issues []string

	index map[string]*Record
}

// NewTable builds an empty table with the given schema.
func NewTable(columns []string) *Table {
	return &Table{
		Columns: append([]string(nil), columns...),
		index:   make(map[string]*Record),
	}
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.Records)
}

// Lookup returns the record with the given identity.
func (t *Table) Lookup(identity string) (*Record, bool) {
	rec, ok := t.index[identity]
	return rec, ok
}

// Append adds a new record to the table. Only the scan stage introduces new
// identities; everything else updates existing records through
// MergeStageOutput.
func (t *Table) Append(rec *Record) error {
	identity := rec.Identity()
	if identity == "" {
		return ErrUnknownIdentity
	}
	if _, exists := t.index[identity]; exists {
		return ErrDuplicateIdentity
	}
	if t.index == nil {
		t.index = make(map[string]*Record)
	}
	t.Records = append(t.Records, rec)
	t.index[identity] = rec
	return nil
}

// EnsureColumns appends any missing required columns to the schema,
// preserving existing column order.
func (t *Table) EnsureColumns(required []string) {
	t.Columns = ExtendHeader(t.Columns, required)
}
