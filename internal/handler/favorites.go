package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/fournil/api/internal/database"
	"github.com/fournil/api/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// FavoriteStore defines the database methods needed by favorite handlers.
type FavoriteStore interface {
	CreateFavorite(ctx context.Context, arg database.CreateFavoriteParams) (database.Favorite, error)
	DeleteFavorite(ctx context.Context, arg database.DeleteFavoriteParams) (int64, error)
	ListFavoritesByUser(ctx context.Context, userID uuid.UUID) ([]database.ListFavoritesByUserRow, error)
}

// FavoriteHandler handles per-user product favorites.
type FavoriteHandler struct {
	store FavoriteStore
}

func NewFavoriteHandler(store FavoriteStore) *FavoriteHandler {
	return &FavoriteHandler{store: store}
}

func (h *FavoriteHandler) RegisterRoutes(r chi.Router) {
	r.Get("/favorites", h.List)
	r.Post("/favorites", h.Create)
	r.Delete("/favorites/{id}", h.Delete)
}

// --- Request / Response types ---

type createFavoriteRequest struct {
	ProductID string `json:"product_id"`
}

type favoriteResponse struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name,omitempty"`
	Price       string    `json:"price,omitempty"`
	PromoPrice  *string   `json:"promo_price,omitempty"`
	Available   bool      `json:"available"`
	ImageURL    *string   `json:"image_url,omitempty"`
}

// --- Handlers ---

// List handles GET /favorites with the joined product summary.
func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	favorites, err := h.store.ListFavoritesByUser(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("ERROR: list favorites: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]favoriteResponse, len(favorites))
	for i, f := range favorites {
		fr := favoriteResponse{
			ID:          f.ID,
			ProductID:   f.ProductID,
			ProductName: f.ProductName,
			Price:       numericToString(f.Price),
			Available:   f.Available,
		}
		if f.PromoPrice.Valid {
			s := numericToString(f.PromoPrice)
			fr.PromoPrice = &s
		}
		if f.ImageUrl.Valid {
			fr.ImageURL = &f.ImageUrl.String
		}
		resp[i] = fr
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"favorites": resp})
}

// Create handles POST /favorites. Favoriting twice returns the existing row.
func (h *FavoriteHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req createFavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product_id"})
		return
	}

	favorite, err := h.store.CreateFavorite(r.Context(), database.CreateFavoriteParams{
		UserID:    claims.UserID,
		ProductID: productID,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
			return
		}
		log.Printf("ERROR: create favorite: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, favoriteResponse{
		ID:        favorite.ID,
		ProductID: favorite.ProductID,
	})
}

// Delete handles DELETE /favorites/{id}, scoped to the caller.
func (h *FavoriteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid favorite ID"})
		return
	}

	affected, err := h.store.DeleteFavorite(r.Context(), database.DeleteFavoriteParams{
		ID:     id,
		UserID: claims.UserID,
	})
	if err != nil {
		log.Printf("ERROR: delete favorite: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if affected == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "favorite not found"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
