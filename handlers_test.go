package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tranvh/opsched/config"
	"github.com/tranvh/opsched/models"
	"github.com/tranvh/opsched/schedule"
	"github.com/tranvh/opsched/store"
)

// newTestApp wires an App with the given mock store behind a fresh router.
func newTestApp(ms *MockStore) *chi.Mux {
	app := &App{
		Store:    ms,
		Schedule: schedule.New(ms),
		Cfg: &config.Config{
			LoginPassword: "password",
			JWTSecret:     "test-secret",
		},
	}
	r := chi.NewRouter()
	app.RegisterHandlers(r)
	return r
}

func TestListHandler(t *testing.T) {
	tests := []struct {
		name               string
		url                string
		mockSetup          func(*MockStore)
		expectedStatusCode int
		expectedBody       string
	}{
		{
			name: "List All",
			url:  "/api/users",
			mockSetup: func(ms *MockStore) {
				ms.On("List", mock.Anything, models.TableUsers, map[string]string(nil)).
					Return([]models.Record{{"id": "u1", "name": "Alice"}}, nil)
			},
			expectedStatusCode: http.StatusOK,
			expectedBody:       `[{"id":"u1","name":"Alice"}]`,
		},
		{
			name: "Query Params Become Filters",
			url:  "/api/users?role=Doctor",
			mockSetup: func(ms *MockStore) {
				ms.On("List", mock.Anything, models.TableUsers, map[string]string{"role": "Doctor"}).
					Return([]models.Record{{"id": "u1", "role": "Doctor"}}, nil)
			},
			expectedStatusCode: http.StatusOK,
			expectedBody:       `[{"id":"u1","role":"Doctor"}]`,
		},
		{
			name: "Empty Table Is An Empty Array",
			url:  "/api/operating-rooms",
			mockSetup: func(ms *MockStore) {
				ms.On("List", mock.Anything, models.TableOperatingRooms, map[string]string(nil)).
					Return([]models.Record{}, nil)
			},
			expectedStatusCode: http.StatusOK,
			expectedBody:       `[]`,
		},
		{
			name: "Upstream Failure Is A Server Error",
			url:  "/api/patients",
			mockSetup: func(ms *MockStore) {
				ms.On("List", mock.Anything, models.TablePatients, map[string]string(nil)).
					Return(nil, errors.New("quota exceeded"))
			},
			expectedStatusCode: http.StatusInternalServerError,
			expectedBody:       `{"message":"quota exceeded"}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mockStore := new(MockStore)
			tc.mockSetup(mockStore)
			r := newTestApp(mockStore)

			req := httptest.NewRequest("GET", tc.url, nil)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatusCode, rr.Code)
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
			mockStore.AssertExpectations(t)
		})
	}
}

func TestCreateHandler(t *testing.T) {
	t.Run("Insert And Echo With Generated Id", func(t *testing.T) {
		mockStore := new(MockStore)
		mockStore.On("Insert", mock.Anything, models.TableOperatingRooms, "or", models.Record{"name": "Room 1"}).
			Return(models.Record{"id": "or-1756000000000", "name": "Room 1"}, nil)
		r := newTestApp(mockStore)

		req := httptest.NewRequest("POST", "/api/operating-rooms", bytes.NewBufferString(`{"name": "Room 1"}`))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)
		assert.JSONEq(t, `{"id":"or-1756000000000","name":"Room 1"}`, rr.Body.String())
		mockStore.AssertExpectations(t)
	})

	t.Run("Numbers Are Stringified", func(t *testing.T) {
		mockStore := new(MockStore)
		mockStore.On("Insert", mock.Anything, models.TableOperatingRooms, "or", models.Record{"name": "Room 2", "floor": "3"}).
			Return(models.Record{"id": "or-2", "name": "Room 2", "floor": "3"}, nil)
		r := newTestApp(mockStore)

		req := httptest.NewRequest("POST", "/api/operating-rooms", bytes.NewBufferString(`{"name": "Room 2", "floor": 3}`))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)
		mockStore.AssertExpectations(t)
	})

	t.Run("Invalid Body", func(t *testing.T) {
		mockStore := new(MockStore)
		r := newTestApp(mockStore)

		req := httptest.NewRequest("POST", "/api/users", bytes.NewBufferString(`not json`))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Missing Header Row Is A Server Error", func(t *testing.T) {
		mockStore := new(MockStore)
		mockStore.On("Insert", mock.Anything, models.TableUsers, "user", mock.Anything).
			Return(nil, fmt.Errorf("table Users: %w", store.ErrNoHeader))
		r := newTestApp(mockStore)

		req := httptest.NewRequest("POST", "/api/users", bytes.NewBufferString(`{"name": "x"}`))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestUpdateHandler(t *testing.T) {
	t.Run("Partial Update Returns Merged Record", func(t *testing.T) {
		mockStore := new(MockStore)
		mockStore.On("Update", mock.Anything, models.TableUsers, "u1", models.Record{"role": "Doctor"}).
			Return(models.Record{"id": "u1", "name": "A", "role": "Doctor"}, nil)
		r := newTestApp(mockStore)

		req := httptest.NewRequest("PUT", "/api/users/u1", bytes.NewBufferString(`{"role": "Doctor"}`))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"id":"u1","name":"A","role":"Doctor"}`, rr.Body.String())
		mockStore.AssertExpectations(t)
	})

	t.Run("Unknown Id Is Not Found", func(t *testing.T) {
		mockStore := new(MockStore)
		mockStore.On("Update", mock.Anything, models.TableUsers, "nonexistent-id", mock.Anything).
			Return(nil, store.ErrRowNotFound)
		r := newTestApp(mockStore)

		req := httptest.NewRequest("PUT", "/api/users/nonexistent-id", bytes.NewBufferString(`{"name": "x"}`))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.JSONEq(t, `{"message":"Row not found"}`, rr.Body.String())
	})
}

func TestDeleteHandler(t *testing.T) {
	t.Run("Delete Responds No Content", func(t *testing.T) {
		mockStore := new(MockStore)
		mockStore.On("Delete", mock.Anything, models.TableSurgeryTypes, "st-1").Return(nil)
		r := newTestApp(mockStore)

		req := httptest.NewRequest("DELETE", "/api/surgery-types/st-1", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Empty(t, rr.Body.String())
		mockStore.AssertExpectations(t)
	})

	t.Run("Delete Missing Id Is Not Found", func(t *testing.T) {
		mockStore := new(MockStore)
		mockStore.On("Delete", mock.Anything, models.TableSurgeryTypes, "nonexistent-id").
			Return(fmt.Errorf("table SurgeryTypes, id nonexistent-id: %w", store.ErrRowNotFound))
		r := newTestApp(mockStore)

		req := httptest.NewRequest("DELETE", "/api/surgery-types/nonexistent-id", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestHealthHandler(t *testing.T) {
	r := newTestApp(new(MockStore))

	req := httptest.NewRequest("GET", "/api/health", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}
