package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/fournil/api/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// ClosedDayStore defines the database methods needed by the closure calendar.
type ClosedDayStore interface {
	CreateClosedDay(ctx context.Context, closedOn pgtype.Date) (database.ClosedDay, error)
	DeleteClosedDay(ctx context.Context, id uuid.UUID) (int64, error)
	ListClosedDays(ctx context.Context) ([]database.ClosedDay, error)
}

// ClosedDayHandler manages the closure calendar consumed by the checkout
// date picker.
type ClosedDayHandler struct {
	store ClosedDayStore
}

func NewClosedDayHandler(store ClosedDayStore) *ClosedDayHandler {
	return &ClosedDayHandler{store: store}
}

func (h *ClosedDayHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/closed-days", h.List)
}

func (h *ClosedDayHandler) RegisterStaffRoutes(r chi.Router) {
	r.Post("/closed-days", h.Create)
	r.Delete("/closed-days/{id}", h.Delete)
}

// --- Request / Response types ---

type createClosedDayRequest struct {
	Date string `json:"date"`
}

type closedDayResponse struct {
	ID   uuid.UUID `json:"id"`
	Date string    `json:"date"`
}

// --- Handlers ---

// List handles GET /closed-days.
func (h *ClosedDayHandler) List(w http.ResponseWriter, r *http.Request) {
	days, err := h.store.ListClosedDays(r.Context())
	if err != nil {
		log.Printf("ERROR: list closed days: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]closedDayResponse, len(days))
	for i, d := range days {
		resp[i] = toClosedDayResponse(d)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"closed_days": resp})
}

// Create handles POST /closed-days. Adding a date that is already closed is
// a no-op success, not an error.
func (h *ClosedDayHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createClosedDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Date == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date is required"})
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date format, use YYYY-MM-DD"})
		return
	}

	day, err := h.store.CreateClosedDay(r.Context(), pgtype.Date{Time: date, Valid: true})
	if err != nil {
		log.Printf("ERROR: create closed day: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toClosedDayResponse(day))
}

// Delete handles DELETE /closed-days/{id}.
func (h *ClosedDayHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid closed day ID"})
		return
	}

	affected, err := h.store.DeleteClosedDay(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: delete closed day: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if affected == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "closed day not found"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

func toClosedDayResponse(d database.ClosedDay) closedDayResponse {
	resp := closedDayResponse{ID: d.ID}
	if d.ClosedOn.Valid {
		resp.Date = d.ClosedOn.Time.Format("2006-01-02")
	}
	return resp
}
