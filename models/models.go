// Package models contains the data structures used throughout the application.
// These structures define the shape of API requests and responses, as well as the
// representation of spreadsheet rows flowing between the store and the handlers.
package models

import "fmt"

// Spreadsheet tab names. Each tab backs one API resource; the first row of a
// tab is its schema.
const (
	TableUsers          = "Users"
	TableOperatingRooms = "OperatingRooms"
	TableSurgeryTypes   = "SurgeryTypes"
	TablePatients       = "Patients"
	TableSurgeries      = "Surgeries"
)

// Record is one logical row of a table: a mapping from header field name to
// cell value. All values are strings because the backing spreadsheet is
// untyped. A Record carries no positional information; the row offset is
// re-derived by the store whenever a write-by-id needs it.
type Record map[string]string

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// EnrichedSurgery is a surgery record denormalized for the API response: all
// the flat surgery fields plus a nested "surgeon" object looked up from the
// Users table.
type EnrichedSurgery map[string]any

// CoerceFields converts a decoded JSON object into a Record. Clients send
// numbers and booleans freely; the spreadsheet only stores strings, so
// everything is stringified on the way in.
func CoerceFields(body map[string]any) Record {
	fields := make(Record, len(body))
	for k, v := range body {
		fields[k] = CoerceValue(v)
	}
	return fields
}

// CoerceValue stringifies a single decoded JSON value.
func CoerceValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		// encoding/json decodes all numbers as float64. Keep integers free of
		// a trailing ".0".
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned on a successful login. The token is a placeholder:
// it is signed but nothing in the API requires it. See the login handler.
type LoginResponse struct {
	User  Record `json:"user"`
	Token string `json:"token"`
}

// StatusUpdateRequest is the body of PATCH /api/surgeries/{id}/status.
// Time optionally overrides the timestamp stamped on the transition.
type StatusUpdateRequest struct {
	Status string `json:"status"`
	Time   string `json:"time,omitempty"`
}

// ErrorResponse is the JSON body sent for any failed request.
type ErrorResponse struct {
	Message string `json:"message"`
}
