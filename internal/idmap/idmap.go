// Package idmap persists the durable old-id to new-id mappings that make
// migration runs resumable. One CSV file per resource kind, two columns
// (old_id, new_id), one header row. Every successful creation is appended
// and synced before the migrator moves to the next record, so an interrupted
// run resumes past everything it already migrated.
package idmap

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Kind names a resource kind's mapping file.
type Kind string

const (
	Products       Kind = "products"
	Prices         Kind = "prices"
	InlineProducts Kind = "products-inline"
	InlinePrices   Kind = "prices-inline"
	Coupons        Kind = "coupons"
	PromotionCodes Kind = "promotion-codes"
	Subscriptions  Kind = "subscriptions"
	Invoices       Kind = "invoices"
)

// FileName returns the default mapping file name for the kind.
func (k Kind) FileName() string {
	return string(k) + ".csv"
}

var header = []string{"old_id", "new_id"}

// MissingMappingError reports a required dependency that has not been
// migrated yet.
type MissingMappingError struct {
	Kind  Kind
	OldID string
}

func (e *MissingMappingError) Error() string {
	return fmt.Sprintf("no %s mapping for %s", e.Kind, e.OldID)
}

// Map is one kind's mapping, loaded fully into memory. Entries are
// append-only: once written they are never mutated, only extended.
type Map struct {
	kind    Kind
	path    string
	entries map[string]string
}

// Open loads the mapping at path. A missing file is an empty mapping, not an
// error: first runs start with no state.
func Open(path string, kind Kind) (*Map, error) {
	m := &Map{kind: kind, path: path, entries: make(map[string]string)}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s mapping: %w", kind, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 2
	first := true
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s mapping: %w", kind, err)
		}
		if first {
			first = false
			if row[0] == header[0] && row[1] == header[1] {
				continue
			}
		}
		m.entries[row[0]] = row[1]
	}
	return m, nil
}

// Kind returns the mapping's resource kind.
func (m *Map) Kind() Kind { return m.kind }

// Path returns the mapping's file path.
func (m *Map) Path() string { return m.path }

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.entries) }

// Get returns the new-account id for oldID.
func (m *Map) Get(oldID string) (string, bool) {
	newID, ok := m.entries[oldID]
	return newID, ok
}

// Has reports whether oldID has already been migrated.
func (m *Map) Has(oldID string) bool {
	_, ok := m.entries[oldID]
	return ok
}

// Require returns the new-account id for oldID or a MissingMappingError.
func (m *Map) Require(oldID string) (string, error) {
	newID, ok := m.entries[oldID]
	if !ok {
		return "", &MissingMappingError{Kind: m.kind, OldID: oldID}
	}
	return newID, nil
}

// Record adds one mapping and persists it durably before returning. This is
// the run's checkpoint: the write is flushed and synced per entry, never
// batched, so a crash loses at most the in-flight record. Re-recording an
// identical pair is a no-op; a conflicting pair is an error because the
// mapping is append-only.
func (m *Map) Record(oldID, newID string) error {
	if existing, ok := m.entries[oldID]; ok {
		if existing == newID {
			return nil
		}
		return fmt.Errorf("%s mapping for %s already exists (%s, refusing to overwrite with %s)", m.kind, oldID, existing, newID)
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("failed to create mapping directory: %w", err)
	}
	f, err := os.OpenFile(m.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s mapping for append: %w", m.kind, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s mapping: %w", m.kind, err)
	}
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("failed to write %s mapping header: %w", m.kind, err)
		}
	}
	if err := w.Write([]string{oldID, newID}); err != nil {
		return fmt.Errorf("failed to write %s mapping row: %w", m.kind, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s mapping: %w", m.kind, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s mapping: %w", m.kind, err)
	}

	m.entries[oldID] = newID
	return nil
}
