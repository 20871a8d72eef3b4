package store

import (
	"context"
	"fmt"

	"google.golang.org/api/sheets/v4"
)

// sheetsGrid implements Grid over the Google Sheets API. One value addresses
// a whole spreadsheet; tables are tabs addressed by title.
type sheetsGrid struct {
	svc           *sheets.Service
	spreadsheetID string
}

// NewSheetsGrid creates a Grid backed by the given Sheets service and
// spreadsheet. The service must already carry credentials with spreadsheet
// scope; the grid adds no retry or backoff of its own.
func NewSheetsGrid(svc *sheets.Service, spreadsheetID string) Grid {
	return &sheetsGrid{svc: svc, spreadsheetID: spreadsheetID}
}

func (g *sheetsGrid) ReadRange(ctx context.Context, table string) ([][]string, error) {
	resp, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, table).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		rows = append(rows, cellsToStrings(row))
	}
	return rows, nil
}

func (g *sheetsGrid) ReadHeader(ctx context.Context, table string) ([]string, error) {
	resp, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, fmt.Sprintf("%s!1:1", table)).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}
	return cellsToStrings(resp.Values[0]), nil
}

func (g *sheetsGrid) AppendRow(ctx context.Context, table string, row []string) error {
	vr := &sheets.ValueRange{Values: [][]any{stringsToCells(row)}}
	_, err := g.svc.Spreadsheets.Values.Append(g.spreadsheetID, table, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	return err
}

func (g *sheetsGrid) UpdateRow(ctx context.Context, table string, index int, row []string) error {
	// A1 rows are one-based and row 1 is the header, so data row N lives at
	// sheet row N+2.
	target := fmt.Sprintf("%s!A%d", table, index+2)
	vr := &sheets.ValueRange{Values: [][]any{stringsToCells(row)}}
	_, err := g.svc.Spreadsheets.Values.Update(g.spreadsheetID, target, vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	return err
}

func (g *sheetsGrid) DeleteRow(ctx context.Context, table string, index int) error {
	sheetID, err := g.sheetID(ctx, table)
	if err != nil {
		return err
	}
	// DeleteDimension addresses rows zero-based over the whole tab, header
	// included, so data row N is dimension row N+1. Getting this wrong
	// deletes a neighboring row.
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(index + 1),
					EndIndex:   int64(index + 2),
				},
			},
		}},
	}
	_, err = g.svc.Spreadsheets.BatchUpdate(g.spreadsheetID, req).Context(ctx).Do()
	return err
}

// sheetID resolves a tab title to its numeric sheet id, which structural
// requests require in place of the title.
func (g *sheetsGrid) sheetID(ctx context.Context, table string) (int64, error) {
	meta, err := g.svc.Spreadsheets.Get(g.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, err
	}
	for _, sh := range meta.Sheets {
		if sh.Properties != nil && sh.Properties.Title == table {
			return sh.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("sheet with name %s not found", table)
}

func cellsToStrings(cells []any) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		if c == nil {
			continue
		}
		if s, ok := c.(string); ok {
			out[i] = s
		} else {
			out[i] = fmt.Sprint(c)
		}
	}
	return out
}

func stringsToCells(row []string) []any {
	out := make([]any, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}
