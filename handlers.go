package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tranvh/opsched/config"
	"github.com/tranvh/opsched/models"
	"github.com/tranvh/opsched/schedule"
	"github.com/tranvh/opsched/store"
)

// App encapsulates the application's dependencies: the table store, the
// surgery service built on top of it, and the process configuration. It is
// the receiver for all HTTP handlers, which keeps dependency injection
// explicit and makes the handlers testable against a mock store.
type App struct {
	Store    store.Store
	Schedule *schedule.Service
	Cfg      *config.Config
}

// resource binds one API mount point to its spreadsheet tab and the prefix
// used when generating ids for new records.
type resource struct {
	mount  string
	table  string
	prefix string
}

// The four plain CRUD resources. Surgeries get their own routes because of
// enrichment and the status write path.
var resources = []resource{
	{mount: "users", table: models.TableUsers, prefix: "user"},
	{mount: "operating-rooms", table: models.TableOperatingRooms, prefix: "or"},
	{mount: "surgery-types", table: models.TableSurgeryTypes, prefix: "st"},
	{mount: "patients", table: models.TablePatients, prefix: "patient"},
}

// RegisterHandlers mounts every API route on the router. Each plain resource
// gets the same four handlers instantiated from the generic factory below;
// there is no per-resource logic.
func (app *App) RegisterHandlers(r chi.Router) {
	for _, res := range resources {
		r.Route("/api/"+res.mount, func(r chi.Router) {
			r.Get("/", app.listHandler(res))
			r.Post("/", app.createHandler(res))
			r.Put("/{id}", app.updateHandler(res))
			r.Delete("/{id}", app.deleteHandler(res))
		})
	}

	surgeries := resource{mount: "surgeries", table: models.TableSurgeries, prefix: "surg"}
	r.Route("/api/surgeries", func(r chi.Router) {
		r.Get("/", app.ListSurgeriesHandler)
		r.Post("/", app.CreateSurgeryHandler)
		r.Put("/{id}", app.UpdateSurgeryHandler)
		r.Patch("/{id}/status", app.UpdateSurgeryStatusHandler)
		r.Delete("/{id}", app.deleteHandler(surgeries))
	})

	r.Post("/api/login", app.LoginHandler)
	r.Get("/api/health", app.HealthHandler)
}

// sendErrorResponse formats and sends a JSON error body.
func (app *App) sendErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(models.ErrorResponse{Message: message})
}

// sendStoreError translates store failures into HTTP responses: a missing
// row is the client's mistake, everything else (schema or upstream) is a
// server error.
func (app *App) sendStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrRowNotFound):
		app.sendErrorResponse(w, "Row not found", http.StatusNotFound)
	case errors.Is(err, store.ErrNoHeader):
		app.sendErrorResponse(w, err.Error(), http.StatusInternalServerError)
	default:
		slog.Error("Store operation failed", "err", err)
		app.sendErrorResponse(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// decodeFields reads a JSON object body into a Record, stringifying values.
func decodeFields(r *http.Request) (models.Record, error) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, err
	}
	return models.CoerceFields(body), nil
}

// --- Generic CRUD handler factory ---

// listHandler returns all records of the resource's table. Query string
// parameters become exact-match field filters, e.g. /api/users?role=Doctor.
func (app *App) listHandler(res resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		var filters map[string]string
		if len(query) > 0 {
			filters = make(map[string]string, len(query))
			for key, values := range query {
				filters[key] = values[0]
			}
		}

		records, err := app.Store.List(r.Context(), res.table, filters)
		if err != nil {
			app.sendStoreError(w, err)
			return
		}
		if records == nil {
			records = []models.Record{}
		}
		writeJSON(w, http.StatusOK, records)
	}
}

// createHandler inserts the request body as a new record and echoes it back
// with the generated id.
func (app *App) createHandler(res resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fields, err := decodeFields(r)
		if err != nil {
			app.sendErrorResponse(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		rec, err := app.Store.Insert(r.Context(), res.table, res.prefix, fields)
		if err != nil {
			app.sendStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, rec)
	}
}

// updateHandler merge-updates the record addressed by the id path parameter.
func (app *App) updateHandler(res resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fields, err := decodeFields(r)
		if err != nil {
			app.sendErrorResponse(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		rec, err := app.Store.Update(r.Context(), res.table, chi.URLParam(r, "id"), fields)
		if err != nil {
			app.sendStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

// deleteHandler removes the record addressed by the id path parameter.
// Deleting an id that does not exist is a 404, not a silent no-op.
func (app *App) deleteHandler(res resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := app.Store.Delete(r.Context(), res.table, chi.URLParam(r, "id")); err != nil {
			app.sendStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HealthHandler reports process liveness.
func (app *App) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
