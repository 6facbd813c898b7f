package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/fournil/api/internal/database"
	"github.com/fournil/api/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// ComplaintStore defines the database methods needed by complaint handlers.
type ComplaintStore interface {
	CreateComplaint(ctx context.Context, arg database.CreateComplaintParams) (database.Complaint, error)
	ListComplaints(ctx context.Context) ([]database.Complaint, error)
	ResolveComplaint(ctx context.Context, id uuid.UUID) (database.Complaint, error)
}

// ComplaintHandler handles customer complaints and their staff follow-up.
type ComplaintHandler struct {
	store ComplaintStore
}

func NewComplaintHandler(store ComplaintStore) *ComplaintHandler {
	return &ComplaintHandler{store: store}
}

// RegisterRoutes mounts the authenticated complaint endpoint.
func (h *ComplaintHandler) RegisterRoutes(r chi.Router) {
	r.Post("/complaints", h.Create)
}

// RegisterStaffRoutes mounts the staff-only complaint endpoints.
func (h *ComplaintHandler) RegisterStaffRoutes(r chi.Router) {
	r.Get("/staff/complaints", h.List)
	r.Patch("/staff/complaints/{id}/resolve", h.Resolve)
}

// --- Request / Response types ---

type createComplaintRequest struct {
	OrderID string `json:"order_id"`
	Message string `json:"message"`
}

type complaintResponse struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	OrderID   *uuid.UUID `json:"order_id,omitempty"`
	Message   string     `json:"message"`
	Resolved  bool       `json:"resolved"`
	CreatedAt time.Time  `json:"created_at"`
}

// --- Handlers ---

// Create handles POST /complaints. The order reference is optional.
func (h *ComplaintHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req createComplaintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}

	var orderID pgtype.UUID
	if req.OrderID != "" {
		id, err := uuid.Parse(req.OrderID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order_id"})
			return
		}
		orderID = pgtype.UUID{Bytes: id, Valid: true}
	}

	complaint, err := h.store.CreateComplaint(r.Context(), database.CreateComplaintParams{
		UserID:  claims.UserID,
		OrderID: orderID,
		Message: req.Message,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: create complaint: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toComplaintResponse(complaint))
}

// List handles GET /staff/complaints, unresolved first.
func (h *ComplaintHandler) List(w http.ResponseWriter, r *http.Request) {
	complaints, err := h.store.ListComplaints(r.Context())
	if err != nil {
		log.Printf("ERROR: list complaints: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]complaintResponse, len(complaints))
	for i, c := range complaints {
		resp[i] = toComplaintResponse(c)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"complaints": resp})
}

// Resolve handles PATCH /staff/complaints/{id}/resolve.
func (h *ComplaintHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid complaint ID"})
		return
	}

	complaint, err := h.store.ResolveComplaint(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "complaint not found"})
			return
		}
		log.Printf("ERROR: resolve complaint: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toComplaintResponse(complaint))
}

func toComplaintResponse(c database.Complaint) complaintResponse {
	resp := complaintResponse{
		ID:        c.ID,
		UserID:    c.UserID,
		Message:   c.Message,
		Resolved:  c.Resolved,
		CreatedAt: c.CreatedAt,
	}
	if c.OrderID.Valid {
		id := uuid.UUID(c.OrderID.Bytes)
		resp.OrderID = &id
	}
	return resp
}
