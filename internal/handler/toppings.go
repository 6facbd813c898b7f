package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/fournil/api/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ToppingStore defines the database methods needed by topping handlers.
type ToppingStore interface {
	CreateTopping(ctx context.Context, arg database.CreateToppingParams) (database.Topping, error)
	GetTopping(ctx context.Context, id uuid.UUID) (database.Topping, error)
	ListToppings(ctx context.Context) ([]database.Topping, error)
	ListAvailableToppings(ctx context.Context) ([]database.Topping, error)
	UpdateTopping(ctx context.Context, arg database.UpdateToppingParams) (database.Topping, error)
}

// ToppingHandler handles sandwich-topping endpoints.
type ToppingHandler struct {
	store ToppingStore
}

func NewToppingHandler(store ToppingStore) *ToppingHandler {
	return &ToppingHandler{store: store}
}

func (h *ToppingHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/toppings", h.ListAvailable)
}

func (h *ToppingHandler) RegisterStaffRoutes(r chi.Router) {
	r.Get("/staff/toppings", h.List)
	r.Post("/staff/toppings", h.Create)
	r.Patch("/staff/toppings/{id}", h.Update)
}

// --- Request / Response types ---

type createToppingRequest struct {
	Name      string `json:"name"`
	Price     string `json:"price"`
	Available *bool  `json:"available"`
}

type updateToppingRequest struct {
	Name      *string `json:"name"`
	Price     *string `json:"price"`
	Available *bool   `json:"available"`
}

type toppingResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Price     string    `json:"price"`
	Available bool      `json:"available"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// --- Handlers ---

func (h *ToppingHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	toppings, err := h.store.ListAvailableToppings(r.Context())
	if err != nil {
		log.Printf("ERROR: list available toppings: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"toppings": toToppingResponses(toppings)})
}

func (h *ToppingHandler) List(w http.ResponseWriter, r *http.Request) {
	toppings, err := h.store.ListToppings(r.Context())
	if err != nil {
		log.Printf("ERROR: list toppings: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"toppings": toToppingResponses(toppings)})
}

func (h *ToppingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createToppingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Name == "" || req.Price == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name and price are required"})
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price"})
		return
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}

	topping, err := h.store.CreateTopping(r.Context(), database.CreateToppingParams{
		Name:      req.Name,
		Price:     decimalToNumeric(price),
		Available: available,
	})
	if err != nil {
		log.Printf("ERROR: create topping: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toToppingResponse(topping))
}

func (h *ToppingHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid topping ID"})
		return
	}

	var req updateToppingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	current, err := h.store.GetTopping(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "topping not found"})
			return
		}
		log.Printf("ERROR: get topping: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	params := database.UpdateToppingParams{
		ID:        current.ID,
		Name:      current.Name,
		Price:     current.Price,
		Available: current.Available,
	}
	if req.Name != nil {
		if *req.Name == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name cannot be empty"})
			return
		}
		params.Name = *req.Name
	}
	if req.Price != nil {
		p, err := decimal.NewFromString(*req.Price)
		if err != nil || p.IsNegative() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price"})
			return
		}
		params.Price = decimalToNumeric(p)
	}
	if req.Available != nil {
		params.Available = *req.Available
	}

	updated, err := h.store.UpdateTopping(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: update topping: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toToppingResponse(updated))
}

// --- Helpers ---

func toToppingResponses(toppings []database.Topping) []toppingResponse {
	resp := make([]toppingResponse, len(toppings))
	for i, t := range toppings {
		resp[i] = toToppingResponse(t)
	}
	return resp
}

func toToppingResponse(t database.Topping) toppingResponse {
	return toppingResponse{
		ID:        t.ID,
		Name:      t.Name,
		Price:     numericToString(t.Price),
		Available: t.Available,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}
