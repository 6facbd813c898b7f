package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fournil/api/internal/database"
	"github.com/fournil/api/internal/handler"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// --- Mock ClosedDayStore ---

type mockClosedDayStore struct {
	createClosedDayFn func(ctx context.Context, closedOn pgtype.Date) (database.ClosedDay, error)
	deleteClosedDayFn func(ctx context.Context, id uuid.UUID) (int64, error)
	listClosedDaysFn  func(ctx context.Context) ([]database.ClosedDay, error)
}

func (m *mockClosedDayStore) CreateClosedDay(ctx context.Context, closedOn pgtype.Date) (database.ClosedDay, error) {
	if m.createClosedDayFn != nil {
		return m.createClosedDayFn(ctx, closedOn)
	}
	return database.ClosedDay{}, nil
}

func (m *mockClosedDayStore) DeleteClosedDay(ctx context.Context, id uuid.UUID) (int64, error) {
	if m.deleteClosedDayFn != nil {
		return m.deleteClosedDayFn(ctx, id)
	}
	return 0, nil
}

func (m *mockClosedDayStore) ListClosedDays(ctx context.Context) ([]database.ClosedDay, error) {
	if m.listClosedDaysFn != nil {
		return m.listClosedDaysFn(ctx)
	}
	return []database.ClosedDay{}, nil
}

func setupClosedDayRouter(store *mockClosedDayStore) *chi.Mux {
	h := handler.NewClosedDayHandler(store)
	r := chi.NewRouter()
	h.RegisterPublicRoutes(r)
	h.RegisterStaffRoutes(r)
	return r
}

// =====================
// Tests
// =====================

func TestListClosedDays(t *testing.T) {
	store := &mockClosedDayStore{
		listClosedDaysFn: func(ctx context.Context) ([]database.ClosedDay, error) {
			return []database.ClosedDay{
				{ID: uuid.New(), ClosedOn: pgtype.Date{Time: mustParseDate(t, "2026-12-25"), Valid: true}},
			}, nil
		},
	}
	router := setupClosedDayRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/closed-days", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	resp := decodeResponse(t, rr)
	days, ok := resp["closed_days"].([]interface{})
	if !ok || len(days) != 1 {
		t.Fatalf("expected 1 closed day, got: %v", resp["closed_days"])
	}
	day := days[0].(map[string]interface{})
	if day["date"] != "2026-12-25" {
		t.Errorf("expected 2026-12-25, got: %v", day["date"])
	}
}

func TestCreateClosedDay(t *testing.T) {
	var got pgtype.Date
	store := &mockClosedDayStore{
		createClosedDayFn: func(ctx context.Context, closedOn pgtype.Date) (database.ClosedDay, error) {
			got = closedOn
			return database.ClosedDay{ID: uuid.New(), ClosedOn: closedOn}, nil
		},
	}
	router := setupClosedDayRouter(store)

	rr := doJSONRequest(t, router, http.MethodPost, "/closed-days", map[string]string{"date": "2026-12-25"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if !got.Valid || got.Time.Format("2006-01-02") != "2026-12-25" {
		t.Errorf("expected 2026-12-25 passed to store, got: %+v", got)
	}
}

func TestCreateClosedDay_DuplicateIsSuccess(t *testing.T) {
	// The insert is idempotent: the store returns the existing row and the
	// handler still responds 201.
	existing := database.ClosedDay{
		ID:       uuid.New(),
		ClosedOn: pgtype.Date{Time: mustParseDate(t, "2026-12-25"), Valid: true},
	}
	store := &mockClosedDayStore{
		createClosedDayFn: func(ctx context.Context, closedOn pgtype.Date) (database.ClosedDay, error) {
			return existing, nil
		},
	}
	router := setupClosedDayRouter(store)

	rr := doJSONRequest(t, router, http.MethodPost, "/closed-days", map[string]string{"date": "2026-12-25"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 on duplicate, got %d", rr.Code)
	}
	resp := decodeResponse(t, rr)
	if resp["id"] != existing.ID.String() {
		t.Errorf("expected existing row in response, got: %v", resp["id"])
	}
}

func TestCreateClosedDay_BadDate(t *testing.T) {
	router := setupClosedDayRouter(&mockClosedDayStore{})

	rr := doJSONRequest(t, router, http.MethodPost, "/closed-days", map[string]string{"date": "25/12/2026"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestDeleteClosedDay(t *testing.T) {
	store := &mockClosedDayStore{
		deleteClosedDayFn: func(ctx context.Context, id uuid.UUID) (int64, error) {
			return 1, nil
		},
	}
	router := setupClosedDayRouter(store)

	req := httptest.NewRequest(http.MethodDelete, "/closed-days/"+uuid.New().String(), nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
}

func TestDeleteClosedDay_NotFound(t *testing.T) {
	router := setupClosedDayRouter(&mockClosedDayStore{})

	req := httptest.NewRequest(http.MethodDelete, "/closed-days/"+uuid.New().String(), nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}
