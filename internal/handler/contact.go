package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/fournil/api/internal/database"
	"github.com/fournil/api/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// ContactStore defines the database methods needed by contact handlers.
type ContactStore interface {
	CreateContactMessage(ctx context.Context, arg database.CreateContactMessageParams) (database.ContactMessage, error)
	ListContactMessages(ctx context.Context) ([]database.ContactMessage, error)
}

// ContactHandler handles the public contact form and its staff inbox.
type ContactHandler struct {
	store ContactStore
}

func NewContactHandler(store ContactStore) *ContactHandler {
	return &ContactHandler{store: store}
}

// RegisterRoutes mounts the public contact form endpoint.
func (h *ContactHandler) RegisterRoutes(r chi.Router) {
	r.Post("/contact", h.Create)
}

// RegisterStaffRoutes mounts the staff-only inbox endpoint.
func (h *ContactHandler) RegisterStaffRoutes(r chi.Router) {
	r.Get("/staff/contact-messages", h.List)
}

// --- Request / Response types ---

type createContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type contactMessageResponse struct {
	ID        uuid.UUID  `json:"id"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Message   string     `json:"message"`
	CreatedAt time.Time  `json:"created_at"`
}

// --- Handlers ---

// Create handles POST /contact. The endpoint is public; when the caller is
// authenticated the message is linked to their account.
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Message = strings.TrimSpace(req.Message)
	if req.Name == "" || req.Email == "" || req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name, email and message are required"})
		return
	}
	if !strings.Contains(req.Email, "@") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid email address"})
		return
	}

	var userID pgtype.UUID
	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil {
		userID = pgtype.UUID{Bytes: claims.UserID, Valid: true}
	}

	message, err := h.store.CreateContactMessage(r.Context(), database.CreateContactMessageParams{
		UserID:  userID,
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	})
	if err != nil {
		log.Printf("ERROR: create contact message: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toContactResponse(message))
}

// List handles GET /staff/contact-messages.
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	messages, err := h.store.ListContactMessages(r.Context())
	if err != nil {
		log.Printf("ERROR: list contact messages: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]contactMessageResponse, len(messages))
	for i, m := range messages {
		resp[i] = toContactResponse(m)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"messages": resp})
}

func toContactResponse(m database.ContactMessage) contactMessageResponse {
	resp := contactMessageResponse{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Message:   m.Message,
		CreatedAt: m.CreatedAt,
	}
	if m.UserID.Valid {
		id := uuid.UUID(m.UserID.Bytes)
		resp.UserID = &id
	}
	return resp
}
