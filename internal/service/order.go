package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fournil/api/internal/database"
	"github.com/fournil/api/internal/enum"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Errors returned by the order service.
var (
	ErrEmptyLines          = errors.New("lines are required")
	ErrInvalidQuantity     = errors.New("quantity must be > 0")
	ErrInvalidProductID    = errors.New("invalid product_id")
	ErrInvalidToppingID    = errors.New("invalid topping_id")
	ErrInvalidPickupSlot   = errors.New("invalid pickup_slot")
	ErrInvalidPickupDate   = errors.New("invalid pickup_date, use YYYY-MM-DD")
	ErrPickupDatePast      = errors.New("pickup_date is in the past")
	ErrPickupDayClosed     = errors.New("the bakery is closed on the requested pickup date")
	ErrInvalidBreadType    = errors.New("invalid bread_type")
	ErrNotSandwich         = errors.New("bread_type and toppings are only valid on sandwich products")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrUserNotFound        = errors.New("user not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrNotOrderOwner       = errors.New("order belongs to another user")
	ErrNotCancellable      = errors.New("only pending orders can be cancelled")
)

// UnavailableItemsError lists every referenced product or topping that is
// missing or marked unavailable. The whole order is rejected; nothing is
// created.
type UnavailableItemsError struct {
	Names []string
}

func (e *UnavailableItemsError) Error() string {
	return "unavailable items: " + strings.Join(e.Names, ", ")
}

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed by the order lifecycle.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	IsClosedDay(ctx context.Context, closedOn pgtype.Date) (bool, error)
	GetProductForOrder(ctx context.Context, id uuid.UUID) (database.GetProductForOrderRow, error)
	GetToppingForOrder(ctx context.Context, id uuid.UUID) (database.GetToppingForOrderRow, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error)
	DebitUserBalance(ctx context.Context, arg database.DebitUserBalanceParams) (database.User, error)
	CreditUserBalance(ctx context.Context, arg database.CreditUserBalanceParams) (database.User, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderLine(ctx context.Context, arg database.CreateOrderLineParams) (database.OrderLine, error)
	CreateOrderLineTopping(ctx context.Context, arg database.CreateOrderLineToppingParams) (database.OrderLineTopping, error)
	GetOrderForUpdate(ctx context.Context, id uuid.UUID) (database.Order, error)
	CancelOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
// This allows the service to create store instances from transactions.
type NewOrderStore func(db database.DBTX) OrderStore

// CreateOrderRequest is the validated input for placing an order. Prices
// never come from the client; they are recomputed from the catalog inside
// the transaction.
type CreateOrderRequest struct {
	UserID     uuid.UUID
	PickupDate string // YYYY-MM-DD
	PickupSlot string
	Notes      string
	Lines      []CreateOrderLineRequest
}

// CreateOrderLineRequest is a single cart line.
type CreateOrderLineRequest struct {
	ProductID  string
	Quantity   int32
	BreadType  string   // sandwich lines only
	ToppingIDs []string // sandwich lines only
}

// CreateOrderResult is the full created order with lines.
type CreateOrderResult struct {
	Order   database.Order
	Lines   []OrderLineResult
	Balance pgtype.Numeric // user's balance after the debit
}

// OrderLineResult is a line with its toppings.
type OrderLineResult struct {
	Line     database.OrderLine
	Toppings []database.OrderLineTopping
}

// OrderService handles the order lifecycle: placement with balance debit,
// and cancellation with refund. Both run as single transactions.
type OrderService struct {
	pool     TxBeginner
	newStore NewOrderStore
	now      func() time.Time
}

// NewOrderService creates a new OrderService.
func NewOrderService(pool TxBeginner, newStore NewOrderStore) *OrderService {
	return &OrderService{pool: pool, newStore: newStore, now: time.Now}
}

// toppingInfo holds data about a line topping to insert.
type toppingInfo struct {
	toppingID uuid.UUID
	name      string
	unitPrice decimal.Decimal
}

// processedLine holds a prepared order line and its toppings.
type processedLine struct {
	params   database.CreateOrderLineParams
	toppings []toppingInfo
}

// CreateOrder validates the cart, recomputes authoritative prices, debits
// the user's balance, and inserts the order rows — all in one transaction.
// Unavailable or missing catalog items reject the whole order with their
// names; an insufficient balance rolls everything back.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	if len(req.Lines) == 0 {
		return nil, ErrEmptyLines
	}

	slot, err := validatePickupSlot(req.PickupSlot)
	if err != nil {
		return nil, err
	}

	pickupDate, err := time.Parse("2006-01-02", req.PickupDate)
	if err != nil {
		return nil, ErrInvalidPickupDate
	}
	today := s.now().Truncate(24 * time.Hour)
	if pickupDate.Before(time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, pickupDate.Location())) {
		return nil, ErrPickupDatePast
	}

	for i, line := range req.Lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("lines[%d]: %w", i, ErrInvalidQuantity)
		}
		if line.BreadType != "" && !isValidBreadType(line.BreadType) {
			return nil, fmt.Errorf("lines[%d]: %w", i, ErrInvalidBreadType)
		}
	}

	// --- Begin transaction ---
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	// Closed-day check happens server-side, not only in the date picker.
	pgDate := pgtype.Date{Time: pickupDate, Valid: true}
	closed, err := store.IsClosedDay(ctx, pgDate)
	if err != nil {
		return nil, fmt.Errorf("check closed day: %w", err)
	}
	if closed {
		return nil, ErrPickupDayClosed
	}

	// --- Process lines: re-check availability + compute prices ---
	var unavailable []string
	orderTotal := decimal.Zero
	var lines []processedLine

	for i, line := range req.Lines {
		productID, err := uuid.Parse(line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("lines[%d]: %w", i, ErrInvalidProductID)
		}

		product, err := store.GetProductForOrder(ctx, productID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				unavailable = append(unavailable, line.ProductID)
				continue
			}
			return nil, fmt.Errorf("lines[%d]: get product: %w", i, err)
		}
		if !product.Available {
			unavailable = append(unavailable, product.Name)
			continue
		}

		isSandwich := product.ProductType == database.ProductTypeSANDWICH
		if !isSandwich && (line.BreadType != "" || len(line.ToppingIDs) > 0) {
			return nil, fmt.Errorf("lines[%d]: %w", i, ErrNotSandwich)
		}

		// Promo price wins when present and positive.
		unitPrice := effectivePrice(product.Price, product.PromoPrice)

		toppingsPerUnit := decimal.Zero
		var lineToppings []toppingInfo
		for j, tid := range line.ToppingIDs {
			toppingID, err := uuid.Parse(tid)
			if err != nil {
				return nil, fmt.Errorf("lines[%d].toppings[%d]: %w", i, j, ErrInvalidToppingID)
			}
			topping, err := store.GetToppingForOrder(ctx, toppingID)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					unavailable = append(unavailable, tid)
					continue
				}
				return nil, fmt.Errorf("lines[%d].toppings[%d]: get topping: %w", i, j, err)
			}
			if !topping.Available {
				unavailable = append(unavailable, topping.Name)
				continue
			}
			price := numericToDecimal(topping.Price)
			toppingsPerUnit = toppingsPerUnit.Add(price)
			lineToppings = append(lineToppings, toppingInfo{
				toppingID: toppingID,
				name:      topping.Name,
				unitPrice: price,
			})
		}

		// Toppings apply to each sandwich in the line.
		qty := decimal.NewFromInt32(line.Quantity)
		lineTotal := unitPrice.Add(toppingsPerUnit).Mul(qty)
		orderTotal = orderTotal.Add(lineTotal)

		breadType := pgtype.Text{}
		if line.BreadType != "" {
			breadType = pgtype.Text{String: line.BreadType, Valid: true}
		}

		lines = append(lines, processedLine{
			params: database.CreateOrderLineParams{
				ProductID:   pgtype.UUID{Bytes: productID, Valid: true},
				ProductName: product.Name,
				Quantity:    line.Quantity,
				UnitPrice:   decimalToNumeric(unitPrice),
				BreadType:   breadType,
				LineTotal:   decimalToNumeric(lineTotal),
			},
			toppings: lineToppings,
		})
	}

	if len(unavailable) > 0 {
		return nil, &UnavailableItemsError{Names: unavailable}
	}

	// --- Debit balance: conditional update, no overdraft race ---
	user, err := store.DebitUserBalance(ctx, database.DebitUserBalanceParams{
		ID:     req.UserID,
		Amount: decimalToNumeric(orderTotal),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Zero rows updated: user missing or balance short of the total.
			if _, getErr := store.GetUserByID(ctx, req.UserID); getErr != nil {
				if errors.Is(getErr, pgx.ErrNoRows) {
					return nil, ErrUserNotFound
				}
				return nil, fmt.Errorf("get user: %w", getErr)
			}
			return nil, ErrInsufficientBalance
		}
		return nil, fmt.Errorf("debit balance: %w", err)
	}

	// --- Insert order ---
	notes := pgtype.Text{}
	if req.Notes != "" {
		notes = pgtype.Text{String: req.Notes, Valid: true}
	}

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		UserID:      req.UserID,
		PickupDate:  pgDate,
		PickupSlot:  slot,
		Notes:       notes,
		TotalAmount: decimalToNumeric(orderTotal),
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	// --- Insert lines ---
	var lineResults []OrderLineResult
	for _, pl := range lines {
		pl.params.OrderID = order.ID
		line, err := store.CreateOrderLine(ctx, pl.params)
		if err != nil {
			return nil, fmt.Errorf("create order line: %w", err)
		}

		var toppingResults []database.OrderLineTopping
		for _, top := range pl.toppings {
			olt, err := store.CreateOrderLineTopping(ctx, database.CreateOrderLineToppingParams{
				OrderLineID: line.ID,
				ToppingID:   pgtype.UUID{Bytes: top.toppingID, Valid: true},
				ToppingName: top.name,
				UnitPrice:   decimalToNumeric(top.unitPrice),
			})
			if err != nil {
				return nil, fmt.Errorf("create order line topping: %w", err)
			}
			toppingResults = append(toppingResults, olt)
		}

		lineResults = append(lineResults, OrderLineResult{
			Line:     line,
			Toppings: toppingResults,
		})
	}

	// --- Commit ---
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &CreateOrderResult{
		Order:   order,
		Lines:   lineResults,
		Balance: user.Balance,
	}, nil
}

// CancelOrderRequest identifies the order and who is asking.
type CancelOrderRequest struct {
	OrderID     uuid.UUID
	RequestedBy uuid.UUID
	IsStaff     bool
}

// CancelOrder cancels a PENDING order and refunds its captured total to the
// owner's balance in the same transaction. Owners may only cancel their own
// orders; staff may cancel any pending order.
func (s *OrderService) CancelOrder(ctx context.Context, req CancelOrderRequest) (*database.Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	current, err := store.GetOrderForUpdate(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	if !req.IsStaff && current.UserID != req.RequestedBy {
		return nil, ErrNotOrderOwner
	}
	if current.Status != database.OrderStatusPENDING {
		return nil, ErrNotCancellable
	}

	cancelled, err := store.CancelOrder(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Row is locked, so the status cannot have moved under us.
			return nil, ErrNotCancellable
		}
		return nil, fmt.Errorf("cancel order: %w", err)
	}

	if _, err := store.CreditUserBalance(ctx, database.CreditUserBalanceParams{
		ID:     cancelled.UserID,
		Amount: cancelled.TotalAmount,
	}); err != nil {
		return nil, fmt.Errorf("refund balance: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &cancelled, nil
}

// --- Helpers ---

func validatePickupSlot(s string) (database.PickupSlot, error) {
	switch s {
	case enum.PickupSlotMorning, enum.PickupSlotMidday, enum.PickupSlotEvening:
		return database.PickupSlot(s), nil
	}
	return "", ErrInvalidPickupSlot
}

func isValidBreadType(s string) bool {
	switch s {
	case enum.BreadTypeWhite, enum.BreadTypeWholemeal, enum.BreadTypeHalfWhite, enum.BreadTypeGray:
		return true
	}
	return false
}

// effectivePrice applies the promo override: a promo price counts only when
// present and strictly positive.
func effectivePrice(price, promo pgtype.Numeric) decimal.Decimal {
	if promo.Valid {
		p := numericToDecimal(promo)
		if p.IsPositive() {
			return p
		}
	}
	return numericToDecimal(price)
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
