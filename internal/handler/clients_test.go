package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/fournil/api/internal/database"
	"github.com/fournil/api/internal/handler"
	"github.com/fournil/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- Mocks ---

type mockClientStore struct {
	listClientsFn func(ctx context.Context) ([]database.User, error)
}

func (m *mockClientStore) ListClients(ctx context.Context) ([]database.User, error) {
	if m.listClientsFn != nil {
		return m.listClientsFn(ctx)
	}
	return []database.User{}, nil
}

type mockBalanceCrediter struct {
	creditFn func(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, reason string) (*database.User, error)
}

func (m *mockBalanceCrediter) Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, reason string) (*database.User, error) {
	return m.creditFn(ctx, userID, amount, reason)
}

func setupClientRouter(store *mockClientStore, svc *mockBalanceCrediter) *chi.Mux {
	h := handler.NewClientHandler(store, svc)
	r := chi.NewRouter()
	h.RegisterStaffRoutes(r)
	return r
}

// =====================
// Tests
// =====================

func TestListClients(t *testing.T) {
	store := &mockClientStore{
		listClientsFn: func(ctx context.Context) ([]database.User, error) {
			return []database.User{
				{
					ID:       uuid.New(),
					FullName: "Marie Dupont",
					Email:    "marie@example.com",
					Role:     database.UserRoleCLIENT,
					Balance:  makeNumeric("12.50"),
				},
			}, nil
		},
	}
	router := setupClientRouter(store, &mockBalanceCrediter{})

	rr := doJSONRequest(t, router, http.MethodGet, "/staff/clients", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	resp := decodeResponse(t, rr)
	clients, ok := resp["clients"].([]interface{})
	if !ok || len(clients) != 1 {
		t.Fatalf("expected 1 client, got: %v", resp["clients"])
	}
	c := clients[0].(map[string]interface{})
	if c["balance"] != "12.50" {
		t.Errorf("expected balance 12.50, got: %v", c["balance"])
	}
}

func TestAddBalance_Success(t *testing.T) {
	clientID := uuid.New()
	var gotAmount decimal.Decimal
	var gotReason string
	svc := &mockBalanceCrediter{
		creditFn: func(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, reason string) (*database.User, error) {
			gotAmount = amount
			gotReason = reason
			return &database.User{ID: userID, Balance: makeNumeric("32.50")}, nil
		},
	}
	router := setupClientRouter(&mockClientStore{}, svc)

	rr := doJSONRequest(t, router, http.MethodPut, "/staff/clients/"+clientID.String()+"/add-balance",
		map[string]string{"amount": "20.00", "reason": "cash at counter"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if !gotAmount.Equal(decimal.RequireFromString("20.00")) {
		t.Errorf("expected relative amount 20.00, got: %s", gotAmount)
	}
	if gotReason != "cash at counter" {
		t.Errorf("expected reason forwarded, got: %q", gotReason)
	}

	resp := decodeResponse(t, rr)
	if resp["balance"] != "32.50" {
		t.Errorf("expected new balance 32.50, got: %v", resp["balance"])
	}
}

func TestAddBalance_RejectsNonPositive(t *testing.T) {
	svc := &mockBalanceCrediter{
		creditFn: func(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, reason string) (*database.User, error) {
			return nil, service.ErrNonPositiveAmount
		},
	}
	router := setupClientRouter(&mockClientStore{}, svc)

	rr := doJSONRequest(t, router, http.MethodPut, "/staff/clients/"+uuid.New().String()+"/add-balance",
		map[string]string{"amount": "-5.00"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestAddBalance_UnknownClient(t *testing.T) {
	svc := &mockBalanceCrediter{
		creditFn: func(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, reason string) (*database.User, error) {
			return nil, service.ErrUserNotFound
		},
	}
	router := setupClientRouter(&mockClientStore{}, svc)

	rr := doJSONRequest(t, router, http.MethodPut, "/staff/clients/"+uuid.New().String()+"/add-balance",
		map[string]string{"amount": "10.00"})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}
