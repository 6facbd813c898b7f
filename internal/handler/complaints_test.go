package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fournil/api/internal/database"
	"github.com/fournil/api/internal/handler"
	"github.com/fournil/api/internal/middleware"
)

// --- Mock ComplaintStore ---

type mockComplaintStore struct {
	createComplaintFn  func(ctx context.Context, arg database.CreateComplaintParams) (database.Complaint, error)
	listComplaintsFn   func(ctx context.Context) ([]database.Complaint, error)
	resolveComplaintFn func(ctx context.Context, id uuid.UUID) (database.Complaint, error)
}

func (m *mockComplaintStore) CreateComplaint(ctx context.Context, arg database.CreateComplaintParams) (database.Complaint, error) {
	if m.createComplaintFn != nil {
		return m.createComplaintFn(ctx, arg)
	}
	return database.Complaint{
		ID:      uuid.New(),
		UserID:  arg.UserID,
		OrderID: arg.OrderID,
		Message: arg.Message,
	}, nil
}

func (m *mockComplaintStore) ListComplaints(ctx context.Context) ([]database.Complaint, error) {
	if m.listComplaintsFn != nil {
		return m.listComplaintsFn(ctx)
	}
	return []database.Complaint{}, nil
}

func (m *mockComplaintStore) ResolveComplaint(ctx context.Context, id uuid.UUID) (database.Complaint, error) {
	if m.resolveComplaintFn != nil {
		return m.resolveComplaintFn(ctx, id)
	}
	return database.Complaint{}, pgx.ErrNoRows
}

func setupComplaintRouter(store *mockComplaintStore) *chi.Mux {
	h := handler.NewComplaintHandler(store)
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(testJWTSecret))
		h.RegisterRoutes(r)
		h.RegisterStaffRoutes(r)
	})
	return r
}

func TestCreateComplaint_WithOrderReference(t *testing.T) {
	claims := clientClaims()
	orderID := uuid.New()
	store := &mockComplaintStore{
		createComplaintFn: func(ctx context.Context, arg database.CreateComplaintParams) (database.Complaint, error) {
			if arg.UserID != claims.UserID {
				t.Errorf("expected complaint owned by caller, got %v", arg.UserID)
			}
			if !arg.OrderID.Valid || uuid.UUID(arg.OrderID.Bytes) != orderID {
				t.Errorf("expected order reference %v, got %v", orderID, arg.OrderID)
			}
			return database.Complaint{ID: uuid.New(), UserID: arg.UserID, OrderID: arg.OrderID, Message: arg.Message}, nil
		},
	}
	router := setupComplaintRouter(store)

	rr := doAuthRequest(t, router, http.MethodPost, "/complaints", map[string]interface{}{
		"order_id": orderID.String(),
		"message":  "Le pain était trop cuit.",
	}, claims)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["order_id"] != orderID.String() {
		t.Errorf("expected order_id in response, got: %v", resp["order_id"])
	}
}

func TestCreateComplaint_WithoutOrderReference(t *testing.T) {
	store := &mockComplaintStore{
		createComplaintFn: func(ctx context.Context, arg database.CreateComplaintParams) (database.Complaint, error) {
			if arg.OrderID.Valid {
				t.Error("expected no order reference")
			}
			return database.Complaint{ID: uuid.New(), UserID: arg.UserID, Message: arg.Message}, nil
		},
	}
	router := setupComplaintRouter(store)

	rr := doAuthRequest(t, router, http.MethodPost, "/complaints", map[string]interface{}{
		"message": "L'accueil était désagréable.",
	}, clientClaims())

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
}

func TestCreateComplaint_BlankMessage(t *testing.T) {
	router := setupComplaintRouter(&mockComplaintStore{})

	rr := doAuthRequest(t, router, http.MethodPost, "/complaints", map[string]interface{}{
		"message": "   ",
	}, clientClaims())

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestCreateComplaint_UnknownOrder(t *testing.T) {
	store := &mockComplaintStore{
		createComplaintFn: func(ctx context.Context, arg database.CreateComplaintParams) (database.Complaint, error) {
			return database.Complaint{}, &pgconn.PgError{Code: "23503"}
		},
	}
	router := setupComplaintRouter(store)

	rr := doAuthRequest(t, router, http.MethodPost, "/complaints", map[string]interface{}{
		"order_id": uuid.New().String(),
		"message":  "Commande jamais reçue.",
	}, clientClaims())

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestListComplaints(t *testing.T) {
	store := &mockComplaintStore{
		listComplaintsFn: func(ctx context.Context) ([]database.Complaint, error) {
			return []database.Complaint{
				{ID: uuid.New(), UserID: uuid.New(), Message: "Non résolu", Resolved: false},
				{ID: uuid.New(), UserID: uuid.New(), Message: "Résolu", Resolved: true},
			}, nil
		},
	}
	router := setupComplaintRouter(store)

	rr := doAuthRequest(t, router, http.MethodGet, "/staff/complaints", nil, bakerClaims())

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	resp := decodeResponse(t, rr)
	complaints, ok := resp["complaints"].([]interface{})
	if !ok || len(complaints) != 2 {
		t.Fatalf("expected 2 complaints, got: %v", resp["complaints"])
	}
}

func TestResolveComplaint(t *testing.T) {
	complaintID := uuid.New()
	store := &mockComplaintStore{
		resolveComplaintFn: func(ctx context.Context, id uuid.UUID) (database.Complaint, error) {
			if id != complaintID {
				t.Errorf("expected complaint ID %v, got %v", complaintID, id)
			}
			return database.Complaint{ID: id, UserID: uuid.New(), Message: "Le pain était trop cuit.", Resolved: true}, nil
		},
	}
	router := setupComplaintRouter(store)

	rr := doAuthRequest(t, router, http.MethodPatch, "/staff/complaints/"+complaintID.String()+"/resolve", nil, bakerClaims())

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	resp := decodeResponse(t, rr)
	if resp["resolved"] != true {
		t.Errorf("expected resolved true, got: %v", resp["resolved"])
	}
}

func TestResolveComplaint_NotFound(t *testing.T) {
	store := &mockComplaintStore{
		resolveComplaintFn: func(ctx context.Context, id uuid.UUID) (database.Complaint, error) {
			return database.Complaint{}, pgx.ErrNoRows
		},
	}
	router := setupComplaintRouter(store)

	rr := doAuthRequest(t, router, http.MethodPatch, "/staff/complaints/"+uuid.New().String()+"/resolve", nil, bakerClaims())

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}
