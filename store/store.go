// Package store maps tabs of a remote Google Sheets spreadsheet onto
// relational-style tables. A tab's first row is treated as the table schema
// and every row beneath it as a record keyed by the header field names.
//
// The spreadsheet is the sole owner of table state: nothing is cached, and
// every operation that needs a row position re-reads the tab. The store
// offers no transactions beyond what the Sheets API itself provides; a
// per-table mutex closes the read-then-write race within this process only.
package store

import (
	"context"
	"errors"

	"github.com/tranvh/opsched/models"
)

var (
	// ErrRowNotFound is returned when no row in the table matches the requested id.
	ErrRowNotFound = errors.New("no row matches the requested id")
	// ErrNoHeader is returned when a table is missing the header row that a
	// write operation needs to shape its row.
	ErrNoHeader = errors.New("table has no header row")
)

// Store is the interface for table-level operations over the spreadsheet.
// It defines all the data operations required by the API handlers.
type Store interface {
	// List returns every record in the table, or only those matching all
	// filter pairs by exact string equality. An empty table yields an empty
	// slice, never an error.
	List(ctx context.Context, table string, filters map[string]string) ([]models.Record, error)
	// Find returns the first record whose id field equals id, or ErrRowNotFound.
	Find(ctx context.Context, table, id string) (models.Record, error)
	// Insert appends fields as a new trailing row, assigning an id of the
	// form "<idPrefix>-<unix-millis>". It returns the stored record
	// including the generated id.
	Insert(ctx context.Context, table, idPrefix string, fields models.Record) (models.Record, error)
	// Update merges fields over the existing record with the given id and
	// writes the whole row back at the same offset. Fields omitted by the
	// caller keep their previous values. Returns the merged record.
	Update(ctx context.Context, table, id string, fields models.Record) (models.Record, error)
	// Delete removes the row with the given id, shifting all following rows
	// up by one. Deleting a missing id fails with ErrRowNotFound.
	Delete(ctx context.Context, table, id string) error
}
