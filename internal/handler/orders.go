package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/fournil/api/internal/database"
	"github.com/fournil/api/internal/middleware"
	"github.com/fournil/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error)
	CancelOrder(ctx context.Context, req service.CancelOrderRequest) (*database.Order, error)
}

// OrderStore defines the database methods needed by order read/update
// handlers. Satisfied by *database.Queries.
type OrderStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]database.Order, error)
	ListOrdersByPickupDate(ctx context.Context, arg database.ListOrdersByPickupDateParams) ([]database.Order, error)
	ListOrderLinesByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderLine, error)
	ListOrderLineToppingsByLine(ctx context.Context, orderLineID uuid.UUID) ([]database.OrderLineTopping, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
}

// OrderNotifier pushes order events to the staff dashboard feed.
// Satisfied by *ws.Hub; nil disables notifications.
type OrderNotifier interface {
	BroadcastOrder(eventType string, payload interface{})
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc      OrderServicer
	store    OrderStore
	notifier OrderNotifier
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer, store OrderStore, notifier OrderNotifier) *OrderHandler {
	return &OrderHandler{svc: svc, store: store, notifier: notifier}
}

// RegisterRoutes registers the client-facing order endpoints.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/orders", h.Create)
	r.Get("/orders", h.ListMine)
	r.Get("/orders/{id}", h.Get)
	r.Patch("/orders/{id}/cancel", h.Cancel)
}

// RegisterStaffRoutes registers the baker-facing order endpoints.
func (h *OrderHandler) RegisterStaffRoutes(r chi.Router) {
	r.Get("/staff/orders", h.ListByDate)
	r.Patch("/staff/orders/{id}/status", h.UpdateStatus)
}

// --- Request / Response types ---

type createOrderRequest struct {
	PickupDate string                   `json:"pickup_date"`
	PickupSlot string                   `json:"pickup_slot"`
	Notes      string                   `json:"notes"`
	Lines      []createOrderLineRequest `json:"lines"`
}

type createOrderLineRequest struct {
	ProductID  string   `json:"product_id"`
	Quantity   int32    `json:"quantity"`
	BreadType  string   `json:"bread_type"`
	ToppingIDs []string `json:"topping_ids"`
}

type orderResponse struct {
	ID          uuid.UUID           `json:"id"`
	UserID      uuid.UUID           `json:"user_id"`
	PickupDate  string              `json:"pickup_date"`
	PickupSlot  string              `json:"pickup_slot"`
	Status      string              `json:"status"`
	Notes       *string             `json:"notes"`
	TotalAmount string              `json:"total_amount"`
	ReadyAt     *time.Time          `json:"ready_at"`
	DeliveredAt *time.Time          `json:"delivered_at"`
	CancelledAt *time.Time          `json:"cancelled_at"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Lines       []orderLineResponse `json:"lines"`
}

type orderLineResponse struct {
	ID          uuid.UUID             `json:"id"`
	ProductID   *string               `json:"product_id"`
	ProductName string                `json:"product_name"`
	Quantity    int32                 `json:"quantity"`
	UnitPrice   string                `json:"unit_price"`
	BreadType   *string               `json:"bread_type"`
	LineTotal   string                `json:"line_total"`
	Toppings    []lineToppingResponse `json:"toppings"`
}

type lineToppingResponse struct {
	ID          uuid.UUID `json:"id"`
	ToppingID   *string   `json:"topping_id"`
	ToppingName string    `json:"topping_name"`
	UnitPrice   string    `json:"unit_price"`
}

// createOrderResponse includes the balance left after the debit so the SPA
// can update its display without a second request.
type createOrderResponse struct {
	orderResponse
	Balance string `json:"balance"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// --- Handlers ---

// Create handles POST /orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.PickupDate == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "pickup_date is required"})
		return
	}
	if req.PickupSlot == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "pickup_slot is required"})
		return
	}
	if len(req.Lines) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "lines are required"})
		return
	}
	for i, line := range req.Lines {
		if line.ProductID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": fmt.Sprintf("lines[%d]: product_id is required", i),
			})
			return
		}
		if line.Quantity <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": fmt.Sprintf("lines[%d]: quantity must be > 0", i),
			})
			return
		}
	}

	svcLines := make([]service.CreateOrderLineRequest, len(req.Lines))
	for i, line := range req.Lines {
		svcLines[i] = service.CreateOrderLineRequest{
			ProductID:  line.ProductID,
			Quantity:   line.Quantity,
			BreadType:  line.BreadType,
			ToppingIDs: line.ToppingIDs,
		}
	}

	result, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		UserID:     claims.UserID,
		PickupDate: req.PickupDate,
		PickupSlot: req.PickupSlot,
		Notes:      req.Notes,
		Lines:      svcLines,
	})
	if err != nil {
		var unavailable *service.UnavailableItemsError
		switch {
		case errors.As(err, &unavailable):
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":             "some items are no longer available",
				"unavailable_items": unavailable.Names,
			})
		case errors.Is(err, service.ErrInsufficientBalance):
			writeJSON(w, http.StatusPaymentRequired, map[string]string{"error": err.Error()})
		case isOrderValidationError(err):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			log.Printf("ERROR: create order: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	resp := createOrderResponse{
		orderResponse: toOrderResponse(result),
		Balance:       numericToString(result.Balance),
	}

	if h.notifier != nil {
		h.notifier.BroadcastOrder("order.created", resp.orderResponse)
	}

	writeJSON(w, http.StatusCreated, resp)
}

// ListMine handles GET /orders: the caller's own history, newest first.
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	orders, err := h.store.ListOrdersByUser(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = dbOrderToResponse(o)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"orders": resp})
}

// Get handles GET /orders/{id}: full order with lines and toppings.
// Clients see only their own orders; bakers see any.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	order, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if order.UserID != claims.UserID && claims.Role != "BAKER" {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "access denied"})
		return
	}

	resp, err := h.buildDetailResponse(r.Context(), order)
	if err != nil {
		log.Printf("ERROR: load order detail: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Cancel handles PATCH /orders/{id}/cancel: the owner cancels a pending
// order; the captured total is refunded in the same transaction.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	cancelled, err := h.svc.CancelOrder(r.Context(), service.CancelOrderRequest{
		OrderID:     orderID,
		RequestedBy: claims.UserID,
		IsStaff:     claims.Role == "BAKER",
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		case errors.Is(err, service.ErrNotOrderOwner):
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "access denied"})
		case errors.Is(err, service.ErrNotCancellable):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			log.Printf("ERROR: cancel order: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	resp := dbOrderToResponse(*cancelled)
	if h.notifier != nil {
		h.notifier.BroadcastOrder("order.status_changed", resp)
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListByDate handles GET /staff/orders?date=YYYY-MM-DD[&status=...]: the
// baker's queue for a pickup date, ordered by slot.
func (h *OrderHandler) ListByDate(w http.ResponseWriter, r *http.Request) {
	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date is required"})
		return
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date format, use YYYY-MM-DD"})
		return
	}

	params := database.ListOrdersByPickupDateParams{
		PickupDate: pgtype.Date{Time: date, Valid: true},
	}
	if s := r.URL.Query().Get("status"); s != "" {
		if !isValidOrderStatus(database.OrderStatus(s)) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
			return
		}
		params.Status = pgtype.Text{String: s, Valid: true}
	}

	orders, err := h.store.ListOrdersByPickupDate(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: list orders by date: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		detail, err := h.buildDetailResponse(r.Context(), o)
		if err != nil {
			log.Printf("ERROR: load order detail: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		resp[i] = detail
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"orders": resp})
}

// UpdateStatus handles PATCH /staff/orders/{id}/status. Transitions are
// validated against the adjacency table; the write is a compare-and-set on
// the status read here, so two bakers racing get a 409 instead of a lost
// update. Cancellation goes through the service for the refund.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status is required"})
		return
	}

	newStatus := database.OrderStatus(req.Status)
	if !isValidOrderStatus(newStatus) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return
	}

	current, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order for status update: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if err := validateStatusTransition(current.Status, newStatus); err != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}

	if newStatus == database.OrderStatusCANCELLED {
		cancelled, err := h.svc.CancelOrder(r.Context(), service.CancelOrderRequest{
			OrderID:     orderID,
			RequestedBy: claims.UserID,
			IsStaff:     true,
		})
		if err != nil {
			switch {
			case errors.Is(err, service.ErrOrderNotFound):
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			case errors.Is(err, service.ErrNotCancellable):
				writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			default:
				log.Printf("ERROR: cancel order: %v", err)
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			}
			return
		}
		resp := dbOrderToResponse(*cancelled)
		if h.notifier != nil {
			h.notifier.BroadcastOrder("order.status_changed", resp)
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	updated, err := h.store.UpdateOrderStatus(r.Context(), database.UpdateOrderStatusParams{
		ID:         orderID,
		Status:     newStatus,
		FromStatus: current.Status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "order status changed, please retry"})
			return
		}
		log.Printf("ERROR: update order status: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := dbOrderToResponse(updated)
	if h.notifier != nil {
		h.notifier.BroadcastOrder("order.status_changed", resp)
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

func (h *OrderHandler) buildDetailResponse(ctx context.Context, order database.Order) (orderResponse, error) {
	lines, err := h.store.ListOrderLinesByOrder(ctx, order.ID)
	if err != nil {
		return orderResponse{}, fmt.Errorf("list order lines: %w", err)
	}

	lineResponses := make([]orderLineResponse, len(lines))
	for i, line := range lines {
		toppings, err := h.store.ListOrderLineToppingsByLine(ctx, line.ID)
		if err != nil {
			return orderResponse{}, fmt.Errorf("list line toppings: %w", err)
		}
		lineResponses[i] = dbOrderLineToResponse(line, toppings)
	}

	resp := dbOrderToResponse(order)
	resp.Lines = lineResponses
	return resp, nil
}

// isOrderValidationError checks if the error is a known validation error
// from the service layer that should result in 400 Bad Request.
func isOrderValidationError(err error) bool {
	return errors.Is(err, service.ErrEmptyLines) ||
		errors.Is(err, service.ErrInvalidQuantity) ||
		errors.Is(err, service.ErrInvalidProductID) ||
		errors.Is(err, service.ErrInvalidToppingID) ||
		errors.Is(err, service.ErrInvalidPickupSlot) ||
		errors.Is(err, service.ErrInvalidPickupDate) ||
		errors.Is(err, service.ErrPickupDatePast) ||
		errors.Is(err, service.ErrPickupDayClosed) ||
		errors.Is(err, service.ErrInvalidBreadType) ||
		errors.Is(err, service.ErrNotSandwich)
}

func toOrderResponse(result *service.CreateOrderResult) orderResponse {
	resp := dbOrderToResponse(result.Order)
	resp.Lines = make([]orderLineResponse, len(result.Lines))
	for i, lr := range result.Lines {
		resp.Lines[i] = dbOrderLineToResponse(lr.Line, lr.Toppings)
	}
	return resp
}

func dbOrderToResponse(o database.Order) orderResponse {
	resp := orderResponse{
		ID:          o.ID,
		UserID:      o.UserID,
		PickupSlot:  string(o.PickupSlot),
		Status:      string(o.Status),
		TotalAmount: numericToString(o.TotalAmount),
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
		Lines:       []orderLineResponse{},
	}
	if o.PickupDate.Valid {
		resp.PickupDate = o.PickupDate.Time.Format("2006-01-02")
	}
	if o.Notes.Valid {
		resp.Notes = &o.Notes.String
	}
	if o.ReadyAt.Valid {
		resp.ReadyAt = &o.ReadyAt.Time
	}
	if o.DeliveredAt.Valid {
		resp.DeliveredAt = &o.DeliveredAt.Time
	}
	if o.CancelledAt.Valid {
		resp.CancelledAt = &o.CancelledAt.Time
	}
	return resp
}

func dbOrderLineToResponse(line database.OrderLine, toppings []database.OrderLineTopping) orderLineResponse {
	resp := orderLineResponse{
		ID:          line.ID,
		ProductName: line.ProductName,
		Quantity:    line.Quantity,
		UnitPrice:   numericToString(line.UnitPrice),
		LineTotal:   numericToString(line.LineTotal),
	}
	if line.ProductID.Valid {
		s := uuid.UUID(line.ProductID.Bytes).String()
		resp.ProductID = &s
	}
	if line.BreadType.Valid {
		resp.BreadType = &line.BreadType.String
	}

	resp.Toppings = make([]lineToppingResponse, len(toppings))
	for j, top := range toppings {
		tr := lineToppingResponse{
			ID:          top.ID,
			ToppingName: top.ToppingName,
			UnitPrice:   numericToString(top.UnitPrice),
		}
		if top.ToppingID.Valid {
			s := uuid.UUID(top.ToppingID.Bytes).String()
			tr.ToppingID = &s
		}
		resp.Toppings[j] = tr
	}
	return resp
}

func numericToString(n pgtype.Numeric) string {
	if !n.Valid {
		return "0.00"
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return "0.00"
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return "0.00"
	}
	return d.StringFixed(2)
}

// isValidOrderStatus checks if the given status is a valid order status.
func isValidOrderStatus(s database.OrderStatus) bool {
	switch s {
	case database.OrderStatusPENDING,
		database.OrderStatusPREPARING,
		database.OrderStatusREADY,
		database.OrderStatusDELIVERED,
		database.OrderStatusCANCELLED:
		return true
	}
	return false
}

// allowedTransitions defines valid status transitions. Cancellation is only
// legal from PENDING; DELIVERED and CANCELLED are terminal.
var allowedTransitions = map[database.OrderStatus][]database.OrderStatus{
	database.OrderStatusPENDING:   {database.OrderStatusPREPARING, database.OrderStatusCANCELLED},
	database.OrderStatusPREPARING: {database.OrderStatusREADY},
	database.OrderStatusREADY:     {database.OrderStatusDELIVERED},
}

// validateStatusTransition checks if the transition from current to next is allowed.
func validateStatusTransition(current, next database.OrderStatus) error {
	allowed, ok := allowedTransitions[current]
	if !ok {
		return fmt.Errorf("cannot transition from %s", current)
	}
	for _, s := range allowed {
		if s == next {
			return nil
		}
	}
	return fmt.Errorf("cannot transition from %s to %s", current, next)
}
