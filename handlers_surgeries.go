package main

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tranvh/opsched/models"
)

// The surgeries resource deviates from the generic CRUD factory: listings
// are denormalized with the surgeon's user record, writes flatten a nested
// surgeon object, and status changes go through a dedicated transition path.

// ListSurgeriesHandler returns all surgeries, each enriched with its surgeon.
// An optional ?date=YYYY-MM-DD query keeps only surgeries scheduled on that
// calendar date.
func (app *App) ListSurgeriesHandler(w http.ResponseWriter, r *http.Request) {
	surgeries, err := app.Schedule.List(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		app.sendStoreError(w, err)
		return
	}
	if surgeries == nil {
		surgeries = []models.EnrichedSurgery{}
	}
	writeJSON(w, http.StatusOK, surgeries)
}

// CreateSurgeryHandler inserts a new surgery. The backend assigns the id and
// the initial Scheduled status; a nested surgeon object in the body is
// reduced to its id.
func (app *App) CreateSurgeryHandler(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		app.sendErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	rec, err := app.Schedule.Create(r.Context(), body)
	if err != nil {
		app.sendStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// UpdateSurgeryHandler merge-updates a surgery, with the same surgeon
// flattening as on create.
func (app *App) UpdateSurgeryHandler(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		app.sendErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	rec, err := app.Schedule.Update(r.Context(), chi.URLParam(r, "id"), body)
	if err != nil {
		app.sendStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// UpdateSurgeryStatusHandler handles PATCH /api/surgeries/{id}/status. The
// body carries the new status and an optional timestamp override for the
// startTime/endTime stamp.
func (app *App) UpdateSurgeryStatusHandler(w http.ResponseWriter, r *http.Request) {
	var req models.StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		app.sendErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Status == "" {
		app.sendErrorResponse(w, "status is required", http.StatusBadRequest)
		return
	}
	rec, err := app.Schedule.SetStatus(r.Context(), chi.URLParam(r, "id"), req.Status, req.Time)
	if err != nil {
		app.sendStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
