package session

import (
	"sync"

	"github.com/uaepulse/pulse-backend/internal/cleaning"
	"github.com/uaepulse/pulse-backend/pkg/enums"
	pkgerrors "github.com/uaepulse/pulse-backend/pkg/errors"
	"github.com/uaepulse/pulse-backend/pkg/table"
)

// Store is the in-memory working set: the raw uploads and, once cleaning
// has run, the latest result. One instance is shared across requests, so
// every accessor takes the lock and hands out clones rather than internal
// references.
type Store struct {
	mu     sync.RWMutex
	raw    map[enums.TableName]*table.Table
	result *cleaning.Result
}

func NewStore() *Store {
	return &Store{raw: make(map[enums.TableName]*table.Table)}
}

// PutRaw replaces the raw upload for one table and invalidates any prior
// cleaning result, since it no longer reflects the stored inputs.
func (s *Store) PutRaw(name enums.TableName, t *table.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw[name] = t.Clone()
	s.result = nil
}

// Raw returns a clone of the raw upload for one table, or nil when the
// table has not been uploaded.
func (s *Store) Raw(name enums.TableName) *table.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.raw[name]; ok {
		return t.Clone()
	}
	return nil
}

// RawAll returns clones of all four raw tables. Missing tables come back
// as empty tables with no columns so the pipeline can report the missing
// required columns itself.
func (s *Store) RawAll() (products, stores, sales, inventory *table.Table) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rawOrEmpty(enums.TableProducts),
		s.rawOrEmpty(enums.TableStores),
		s.rawOrEmpty(enums.TableSales),
		s.rawOrEmpty(enums.TableInventory)
}

func (s *Store) rawOrEmpty(name enums.TableName) *table.Table {
	if t, ok := s.raw[name]; ok {
		return t.Clone()
	}
	return table.New()
}

// SetResult stores the outcome of a cleaning run.
func (s *Store) SetResult(result *cleaning.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = result
}

// Result returns the latest cleaning result, or a typed not-found error
// when cleaning has not run since the last upload.
func (s *Store) Result() (*cleaning.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no cleaning run available; upload data and run cleaning first")
	}
	return s.result, nil
}

// TablesForAnalysis returns the cleaned tables when a run exists, falling
// back to the raw uploads otherwise. KPI reads tolerate raw data; they
// just produce noisier numbers.
func (s *Store) TablesForAnalysis() (products, stores, sales, inventory *table.Table) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result != nil {
		return s.result.Products.Clone(), s.result.Stores.Clone(), s.result.Sales.Clone(), s.result.Inventory.Clone()
	}
	return s.rawOrEmpty(enums.TableProducts),
		s.rawOrEmpty(enums.TableStores),
		s.rawOrEmpty(enums.TableSales),
		s.rawOrEmpty(enums.TableInventory)
}

// Uploaded reports which tables have raw data and how many rows each holds.
func (s *Store) Uploaded() map[enums.TableName]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[enums.TableName]int, len(s.raw))
	for name, t := range s.raw {
		out[name] = t.Len()
	}
	return out
}

// HasCleaned reports whether a cleaning result is available.
func (s *Store) HasCleaned() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result != nil
}

// Reset drops all uploads and any cleaning result.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw = make(map[enums.TableName]*table.Table)
	s.result = nil
}
