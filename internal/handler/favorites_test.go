package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fournil/api/internal/database"
	"github.com/fournil/api/internal/handler"
	"github.com/fournil/api/internal/middleware"
)

// --- Mock FavoriteStore ---

type mockFavoriteStore struct {
	createFavoriteFn      func(ctx context.Context, arg database.CreateFavoriteParams) (database.Favorite, error)
	deleteFavoriteFn      func(ctx context.Context, arg database.DeleteFavoriteParams) (int64, error)
	listFavoritesByUserFn func(ctx context.Context, userID uuid.UUID) ([]database.ListFavoritesByUserRow, error)
}

func (m *mockFavoriteStore) CreateFavorite(ctx context.Context, arg database.CreateFavoriteParams) (database.Favorite, error) {
	if m.createFavoriteFn != nil {
		return m.createFavoriteFn(ctx, arg)
	}
	return database.Favorite{ID: uuid.New(), UserID: arg.UserID, ProductID: arg.ProductID}, nil
}

func (m *mockFavoriteStore) DeleteFavorite(ctx context.Context, arg database.DeleteFavoriteParams) (int64, error) {
	if m.deleteFavoriteFn != nil {
		return m.deleteFavoriteFn(ctx, arg)
	}
	return 0, nil
}

func (m *mockFavoriteStore) ListFavoritesByUser(ctx context.Context, userID uuid.UUID) ([]database.ListFavoritesByUserRow, error) {
	if m.listFavoritesByUserFn != nil {
		return m.listFavoritesByUserFn(ctx, userID)
	}
	return []database.ListFavoritesByUserRow{}, nil
}

func setupFavoriteRouter(store *mockFavoriteStore) *chi.Mux {
	h := handler.NewFavoriteHandler(store)
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(testJWTSecret))
		h.RegisterRoutes(r)
	})
	return r
}

func TestListFavorites_JoinsProductSummary(t *testing.T) {
	claims := clientClaims()
	productID := uuid.New()
	store := &mockFavoriteStore{
		listFavoritesByUserFn: func(ctx context.Context, userID uuid.UUID) ([]database.ListFavoritesByUserRow, error) {
			if userID != claims.UserID {
				t.Errorf("expected list scoped to caller, got %v", userID)
			}
			return []database.ListFavoritesByUserRow{
				{
					ID:          uuid.New(),
					UserID:      userID,
					ProductID:   productID,
					ProductName: "Pain aux céréales",
					Price:       makeNumeric("2.80"),
					PromoPrice:  makeNumeric("2.20"),
					Available:   true,
				},
			}, nil
		},
	}
	router := setupFavoriteRouter(store)

	rr := doAuthRequest(t, router, http.MethodGet, "/favorites", nil, claims)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	resp := decodeResponse(t, rr)
	favorites, ok := resp["favorites"].([]interface{})
	if !ok || len(favorites) != 1 {
		t.Fatalf("expected 1 favorite, got: %v", resp["favorites"])
	}
	f := favorites[0].(map[string]interface{})
	if f["product_name"] != "Pain aux céréales" {
		t.Errorf("expected joined product name, got: %v", f["product_name"])
	}
	if f["promo_price"] != "2.20" {
		t.Errorf("expected promo price 2.20, got: %v", f["promo_price"])
	}
}

func TestCreateFavorite(t *testing.T) {
	claims := clientClaims()
	productID := uuid.New()
	store := &mockFavoriteStore{
		createFavoriteFn: func(ctx context.Context, arg database.CreateFavoriteParams) (database.Favorite, error) {
			if arg.UserID != claims.UserID {
				t.Errorf("expected favorite owned by caller, got %v", arg.UserID)
			}
			return database.Favorite{ID: uuid.New(), UserID: arg.UserID, ProductID: arg.ProductID}, nil
		},
	}
	router := setupFavoriteRouter(store)

	rr := doAuthRequest(t, router, http.MethodPost, "/favorites", map[string]interface{}{
		"product_id": productID.String(),
	}, claims)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["product_id"] != productID.String() {
		t.Errorf("expected product_id %s, got: %v", productID, resp["product_id"])
	}
}

func TestCreateFavorite_UnknownProduct(t *testing.T) {
	store := &mockFavoriteStore{
		createFavoriteFn: func(ctx context.Context, arg database.CreateFavoriteParams) (database.Favorite, error) {
			return database.Favorite{}, &pgconn.PgError{Code: "23503"}
		},
	}
	router := setupFavoriteRouter(store)

	rr := doAuthRequest(t, router, http.MethodPost, "/favorites", map[string]interface{}{
		"product_id": uuid.New().String(),
	}, clientClaims())

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestCreateFavorite_InvalidProductID(t *testing.T) {
	router := setupFavoriteRouter(&mockFavoriteStore{})

	rr := doAuthRequest(t, router, http.MethodPost, "/favorites", map[string]interface{}{
		"product_id": "not-a-uuid",
	}, clientClaims())

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestDeleteFavorite_ScopedToOwner(t *testing.T) {
	claims := clientClaims()
	favoriteID := uuid.New()
	store := &mockFavoriteStore{
		deleteFavoriteFn: func(ctx context.Context, arg database.DeleteFavoriteParams) (int64, error) {
			if arg.UserID != claims.UserID {
				t.Errorf("expected delete scoped to caller, got %v", arg.UserID)
			}
			if arg.ID != favoriteID {
				t.Errorf("expected favorite ID %v, got %v", favoriteID, arg.ID)
			}
			return 1, nil
		},
	}
	router := setupFavoriteRouter(store)

	rr := doAuthRequest(t, router, http.MethodDelete, "/favorites/"+favoriteID.String(), nil, claims)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
}

func TestDeleteFavorite_NotFound(t *testing.T) {
	store := &mockFavoriteStore{
		deleteFavoriteFn: func(ctx context.Context, arg database.DeleteFavoriteParams) (int64, error) {
			return 0, nil
		},
	}
	router := setupFavoriteRouter(store)

	rr := doAuthRequest(t, router, http.MethodDelete, "/favorites/"+uuid.New().String(), nil, clientClaims())

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}
