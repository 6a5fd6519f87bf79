// Package storage holds the mutable table state for mimicsql.
//
// What: A flat catalog mapping table names to ordered row sequences, plus
// YAML fixture loading and dumping for test harnesses.
// How: Rows are maps from field name to scalar value; the catalog is a plain
// Go map whose live reference is handed out to embedders on purpose, so
// fixtures can be seeded and state asserted on without going through SQL.
// Why: The store is the engine's entire mutable state. Keeping it a naked,
// inspectable structure is what makes the engine usable as a test double.
package storage

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Row is a single record, mapping field name to a scalar value
// (string, number, boolean, or nil).
type Row map[string]any

// Store maps table names to their ordered row sequences. Row order is
// insertion order and is observable through pagination.
type Store struct {
	tables map[string][]Row
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{tables: map[string][]Row{}}
}

// Tables returns the live table mapping. Mutations through the returned map
// are visible to every executor sharing this store. This is a deliberate
// backdoor for test harnesses, not part of the production contract.
func (s *Store) Tables() map[string][]Row {
	return s.tables
}

// Rows returns the row sequence for a table and whether the table exists.
func (s *Store) Rows(name string) ([]Row, bool) {
	rows, ok := s.tables[name]
	return rows, ok
}

// Ensure creates the named table as empty if it does not exist yet and
// returns its current rows. Tables come into being on first reference.
func (s *Store) Ensure(name string) []Row {
	if _, ok := s.tables[name]; !ok {
		s.tables[name] = []Row{}
	}
	return s.tables[name]
}

// SetRows replaces the row sequence of a table.
func (s *Store) SetRows(name string, rows []Row) {
	s.tables[name] = rows
}

// Append adds rows to the end of a table, creating it if needed.
func (s *Store) Append(name string, rows ...Row) {
	s.tables[name] = append(s.Ensure(name), rows...)
}

// Drop removes a table. Dropping a missing table is a no-op.
func (s *Store) Drop(name string) {
	delete(s.tables, name)
}

// LoadYAML seeds the store from a YAML document of the form:
//
//	users:
//	  - id: 1
//	    name: John
//	  - id: 2
//	    name: Richy
//
// Tables present in the document replace any table of the same name;
// tables absent from the document are left untouched.
func (s *Store) LoadYAML(r io.Reader) error {
	var fixture map[string][]map[string]any
	if err := yaml.NewDecoder(r).Decode(&fixture); err != nil {
		return fmt.Errorf("decode fixture: %w", err)
	}
	for name, raw := range fixture {
		rows := make([]Row, len(raw))
		for i, m := range raw {
			rows[i] = Row(m)
		}
		s.tables[name] = rows
	}
	return nil
}

// DumpYAML writes the current table state as a YAML fixture document.
func (s *Store) DumpYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(s.tables); err != nil {
		return fmt.Errorf("encode fixture: %w", err)
	}
	return enc.Close()
}
