package store

import "github.com/tranvh/opsched/models"

// The functions in this file are the pure Record<->row codec. They know
// nothing about the Sheets transport so they can be tested without it.

// rowsToRecords projects a raw grid onto records, using row 0 as the header.
// A grid with fewer than two rows has no records: a missing or header-only
// tab is an empty table, not an error. Cells beyond the header length are
// dropped; missing trailing cells become the empty string.
func rowsToRecords(rows [][]string) []models.Record {
	if len(rows) < 2 {
		return nil
	}
	header := rows[0]
	records := make([]models.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(models.Record, len(header))
		for i, field := range header {
			if i < len(row) {
				rec[field] = row[i]
			} else {
				rec[field] = ""
			}
		}
		records = append(records, rec)
	}
	return records
}

// recordToRow orders field values to match the header. For each header field
// the caller-supplied value wins; otherwise the fallback record's value is
// used; otherwise the cell is empty. The header is the sole schema authority:
// fields not named by it never reach the sheet.
func recordToRow(header []string, fields, fallback models.Record) []string {
	row := make([]string, len(header))
	for i, field := range header {
		if v, ok := fields[field]; ok {
			row[i] = v
		} else {
			row[i] = fallback[field]
		}
	}
	return row
}

// matchesFilters reports whether the record satisfies every filter pair by
// exact string equality. No partial or range matching.
func matchesFilters(rec models.Record, filters map[string]string) bool {
	for field, want := range filters {
		if rec[field] != want {
			return false
		}
	}
	return true
}
