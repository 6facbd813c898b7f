package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/fournil/api/internal/database"
	"github.com/fournil/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClientStore defines the database methods needed by the staff client views.
type ClientStore interface {
	ListClients(ctx context.Context) ([]database.User, error)
}

// BalanceCrediter is satisfied by *service.BalanceService.
type BalanceCrediter interface {
	Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, reason string) (*database.User, error)
}

// ClientHandler handles the staff-facing client endpoints: listing accounts
// and crediting prepaid balances.
type ClientHandler struct {
	store ClientStore
	svc   BalanceCrediter
}

func NewClientHandler(store ClientStore, svc BalanceCrediter) *ClientHandler {
	return &ClientHandler{store: store, svc: svc}
}

func (h *ClientHandler) RegisterStaffRoutes(r chi.Router) {
	r.Get("/staff/clients", h.List)
	r.Put("/staff/clients/{id}/add-balance", h.AddBalance)
}

// --- Request / Response types ---

type addBalanceRequest struct {
	Amount string `json:"amount"`
	Reason string `json:"reason"`
}

type addBalanceResponse struct {
	ID      uuid.UUID `json:"id"`
	Balance string    `json:"balance"`
}

// --- Handlers ---

// List handles GET /staff/clients.
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	clients, err := h.store.ListClients(r.Context())
	if err != nil {
		log.Printf("ERROR: list clients: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]userResponse, len(clients))
	for i, c := range clients {
		resp[i] = toUserResponse(c)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"clients": resp})
}

// AddBalance handles PUT /staff/clients/{id}/add-balance. The amount is a
// relative credit, never an absolute balance value.
func (h *ClientHandler) AddBalance(w http.ResponseWriter, r *http.Request) {
	clientID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid client ID"})
		return
	}

	var req addBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Amount == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "amount is required"})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid amount"})
		return
	}

	user, err := h.svc.Credit(r.Context(), clientID, amount, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNonPositiveAmount):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, service.ErrUserNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		default:
			log.Printf("ERROR: credit balance: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	if req.Reason != "" {
		log.Printf("balance credit: client=%s amount=%s reason=%q", clientID, amount.StringFixed(2), req.Reason)
	}

	writeJSON(w, http.StatusOK, addBalanceResponse{
		ID:      user.ID,
		Balance: numericToString(user.Balance),
	})
}
