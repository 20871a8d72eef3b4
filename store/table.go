package store

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/tranvh/opsched/models"
)

// Grid is the transport-level view of one spreadsheet tab: raw rows in, raw
// rows out. Implementations address data rows by their zero-based offset
// below the header; translating that offset into the sheet's own addressing
// (which counts the header) is the implementation's job.
type Grid interface {
	// ReadRange returns every row in the tab's used range, header included.
	ReadRange(ctx context.Context, table string) ([][]string, error)
	// ReadHeader returns only the first row of the tab, or an empty slice if
	// the tab has no rows at all.
	ReadHeader(ctx context.Context, table string) ([]string, error)
	// AppendRow appends row after the last used row of the tab.
	AppendRow(ctx context.Context, table string, row []string) error
	// UpdateRow overwrites the data row at the given zero-based data offset.
	UpdateRow(ctx context.Context, table string, index int, row []string) error
	// DeleteRow structurally removes the data row at the given zero-based
	// data offset, shifting all following rows up by one.
	DeleteRow(ctx context.Context, table string, index int) error
}

// SheetStore implements Store on top of a Grid. It holds no row cache; every
// operation that needs positions performs a fresh read, so table scans are
// O(rows) per call. That is acceptable for interactive admin-sized tables
// and is a documented scaling limit, not an accident.
type SheetStore struct {
	grid Grid

	mu     sync.Mutex
	tables map[string]*sync.Mutex
}

var _ Store = (*SheetStore)(nil)

// NewSheetStore creates a SheetStore over the given grid.
func NewSheetStore(grid Grid) *SheetStore {
	return &SheetStore{
		grid:   grid,
		tables: make(map[string]*sync.Mutex),
	}
}

// tableLock returns the mutex serializing writes for one table. The Sheets
// API has no transactions, so every write is a read (locate row / fetch
// header) followed by a write; interleaving two such sequences on the same
// table from this process would corrupt row addressing. The lock closes that
// window in-process only; concurrent writers in other processes remain
// subject to the sheet's own last-write-wins semantics.
func (s *SheetStore) tableLock(table string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.tables[table]
	if !ok {
		l = &sync.Mutex{}
		s.tables[table] = l
	}
	return l
}

// readAll fetches the tab and converts it to records.
func (s *SheetStore) readAll(ctx context.Context, table string) ([]models.Record, error) {
	rows, err := s.grid.ReadRange(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", table, err)
	}
	return rowsToRecords(rows), nil
}

// headers resolves the table's current schema.
func (s *SheetStore) headers(ctx context.Context, table string) ([]string, error) {
	header, err := s.grid.ReadHeader(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read header of table %s: %w", table, err)
	}
	if len(header) == 0 {
		return nil, fmt.Errorf("table %s: %w", table, ErrNoHeader)
	}
	return header, nil
}

// locate scans the table for the first record whose id field equals id and
// returns its zero-based data-row offset along with the record itself.
func (s *SheetStore) locate(ctx context.Context, table, id string) (int, models.Record, error) {
	records, err := s.readAll(ctx, table)
	if err != nil {
		return 0, nil, err
	}
	for i, rec := range records {
		if rec["id"] == id {
			return i, rec, nil
		}
	}
	return 0, nil, fmt.Errorf("table %s, id %s: %w", table, id, ErrRowNotFound)
}

// List implements Store.
func (s *SheetStore) List(ctx context.Context, table string, filters map[string]string) ([]models.Record, error) {
	records, err := s.readAll(ctx, table)
	if err != nil {
		return nil, err
	}
	if len(filters) == 0 {
		return records, nil
	}
	filtered := make([]models.Record, 0, len(records))
	for _, rec := range records {
		if matchesFilters(rec, filters) {
			filtered = append(filtered, rec)
		}
	}
	return filtered, nil
}

// Find implements Store.
func (s *SheetStore) Find(ctx context.Context, table, id string) (models.Record, error) {
	_, rec, err := s.locate(ctx, table, id)
	return rec, err
}

// Insert implements Store. The generated id is unique only by virtue of the
// millisecond timestamp and resource prefix; no duplicate check is made.
func (s *SheetStore) Insert(ctx context.Context, table, idPrefix string, fields models.Record) (models.Record, error) {
	lock := s.tableLock(table)
	lock.Lock()
	defer lock.Unlock()

	header, err := s.headers(ctx, table)
	if err != nil {
		return nil, err
	}

	rec := fields.Clone()
	rec["id"] = idPrefix + "-" + strconv.FormatInt(time.Now().UnixMilli(), 10)

	if err := s.grid.AppendRow(ctx, table, recordToRow(header, rec, nil)); err != nil {
		return nil, fmt.Errorf("failed to append to table %s: %w", table, err)
	}
	return rec, nil
}

// Update implements Store. The merge is per header field: the caller's value
// if the key is present (an empty string counts as present), else the
// pre-update value. The whole row is written back at the located offset.
func (s *SheetStore) Update(ctx context.Context, table, id string, fields models.Record) (models.Record, error) {
	lock := s.tableLock(table)
	lock.Lock()
	defer lock.Unlock()

	index, old, err := s.locate(ctx, table, id)
	if err != nil {
		return nil, err
	}
	header, err := s.headers(ctx, table)
	if err != nil {
		return nil, err
	}

	merged := make(models.Record, len(header))
	for _, field := range header {
		if v, ok := fields[field]; ok {
			merged[field] = v
		} else {
			merged[field] = old[field]
		}
	}

	if err := s.grid.UpdateRow(ctx, table, index, recordToRow(header, merged, nil)); err != nil {
		return nil, fmt.Errorf("failed to update row %d of table %s: %w", index, table, err)
	}
	return merged, nil
}

// Delete implements Store. The located offset is data-relative; the grid
// translates it into the sheet's structural addressing, which counts the
// header row. Any offset computed before a concurrent delete is stale, which
// is exactly why the whole locate-then-delete sequence runs under the table
// lock.
func (s *SheetStore) Delete(ctx context.Context, table, id string) error {
	lock := s.tableLock(table)
	lock.Lock()
	defer lock.Unlock()

	index, _, err := s.locate(ctx, table, id)
	if err != nil {
		return err
	}
	if err := s.grid.DeleteRow(ctx, table, index); err != nil {
		return fmt.Errorf("failed to delete row %d of table %s: %w", index, table, err)
	}
	return nil
}
