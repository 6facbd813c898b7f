package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, user_id, pickup_date, pickup_slot, status, notes, total_amount, ready_at, delivered_at, cancelled_at, created_at, updated_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.UserID, &o.PickupDate, &o.PickupSlot, &o.Status, &o.Notes, &o.TotalAmount,
		&o.ReadyAt, &o.DeliveredAt, &o.CancelledAt, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

const createOrder = `
INSERT INTO orders (user_id, pickup_date, pickup_slot, notes, total_amount)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + orderColumns

type CreateOrderParams struct {
	UserID      uuid.UUID
	PickupDate  pgtype.Date
	PickupSlot  PickupSlot
	Notes       pgtype.Text
	TotalAmount pgtype.Numeric
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder,
		arg.UserID,
		arg.PickupDate,
		arg.PickupSlot,
		arg.Notes,
		arg.TotalAmount,
	)
	return scanOrder(row)
}

const createOrderLine = `
INSERT INTO order_lines (order_id, product_id, product_name, quantity, unit_price, bread_type, line_total)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, order_id, product_id, product_name, quantity, unit_price, bread_type, line_total
`

type CreateOrderLineParams struct {
	OrderID     uuid.UUID
	ProductID   pgtype.UUID
	ProductName string
	Quantity    int32
	UnitPrice   pgtype.Numeric
	BreadType   pgtype.Text
	LineTotal   pgtype.Numeric
}

func (q *Queries) CreateOrderLine(ctx context.Context, arg CreateOrderLineParams) (OrderLine, error) {
	row := q.db.QueryRow(ctx, createOrderLine,
		arg.OrderID,
		arg.ProductID,
		arg.ProductName,
		arg.Quantity,
		arg.UnitPrice,
		arg.BreadType,
		arg.LineTotal,
	)
	var l OrderLine
	err := row.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.ProductName, &l.Quantity, &l.UnitPrice, &l.BreadType, &l.LineTotal)
	return l, err
}

const createOrderLineTopping = `
INSERT INTO order_line_toppings (order_line_id, topping_id, topping_name, unit_price)
VALUES ($1, $2, $3, $4)
RETURNING id, order_line_id, topping_id, topping_name, unit_price
`

type CreateOrderLineToppingParams struct {
	OrderLineID uuid.UUID
	ToppingID   pgtype.UUID
	ToppingName string
	UnitPrice   pgtype.Numeric
}

func (q *Queries) CreateOrderLineTopping(ctx context.Context, arg CreateOrderLineToppingParams) (OrderLineTopping, error) {
	row := q.db.QueryRow(ctx, createOrderLineTopping,
		arg.OrderLineID,
		arg.ToppingID,
		arg.ToppingName,
		arg.UnitPrice,
	)
	var t OrderLineTopping
	err := row.Scan(&t.ID, &t.OrderLineID, &t.ToppingID, &t.ToppingName, &t.UnitPrice)
	return t, err
}

const getOrder = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrder, id))
}

// GetOrderForUpdate locks the row for the remainder of the transaction.
const getOrderForUpdate = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`

func (q *Queries) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrderForUpdate, id))
}

const listOrdersByUser = `
SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC
`

func (q *Queries) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrdersByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

const listOrdersByPickupDate = `
SELECT ` + orderColumns + ` FROM orders
WHERE pickup_date = $1 AND ($2::text IS NULL OR status = $2)
ORDER BY pickup_slot, created_at
`

type ListOrdersByPickupDateParams struct {
	PickupDate pgtype.Date
	Status     pgtype.Text
}

func (q *Queries) ListOrdersByPickupDate(ctx context.Context, arg ListOrdersByPickupDateParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrdersByPickupDate, arg.PickupDate, arg.Status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func collectOrders(rows pgx.Rows) ([]Order, error) {
	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

const listOrderLinesByOrder = `
SELECT id, order_id, product_id, product_name, quantity, unit_price, bread_type, line_total
FROM order_lines WHERE order_id = $1
`

func (q *Queries) ListOrderLinesByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderLine, error) {
	rows, err := q.db.Query(ctx, listOrderLinesByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lines []OrderLine
	for rows.Next() {
		var l OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.ProductName, &l.Quantity, &l.UnitPrice, &l.BreadType, &l.LineTotal); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

const listOrderLineToppingsByLine = `
SELECT id, order_line_id, topping_id, topping_name, unit_price
FROM order_line_toppings WHERE order_line_id = $1
`

func (q *Queries) ListOrderLineToppingsByLine(ctx context.Context, orderLineID uuid.UUID) ([]OrderLineTopping, error) {
	rows, err := q.db.Query(ctx, listOrderLineToppingsByLine, orderLineID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var toppings []OrderLineTopping
	for rows.Next() {
		var t OrderLineTopping
		if err := rows.Scan(&t.ID, &t.OrderLineID, &t.ToppingID, &t.ToppingName, &t.UnitPrice); err != nil {
			return nil, err
		}
		toppings = append(toppings, t)
	}
	return toppings, rows.Err()
}

// UpdateOrderStatus is a compare-and-set: it only applies when the row still
// holds the expected current status, so racing staff updates surface as
// pgx.ErrNoRows instead of silently clobbering each other. The fulfillment
// timestamps are stamped by the status being entered.
const updateOrderStatus = `
UPDATE orders SET
    status = $2,
    ready_at = CASE WHEN $2 = 'READY' THEN now() ELSE ready_at END,
    delivered_at = CASE WHEN $2 = 'DELIVERED' THEN now() ELSE delivered_at END,
    cancelled_at = CASE WHEN $2 = 'CANCELLED' THEN now() ELSE cancelled_at END,
    updated_at = now()
WHERE id = $1 AND status = $3
RETURNING ` + orderColumns

type UpdateOrderStatusParams struct {
	ID         uuid.UUID
	Status     OrderStatus
	FromStatus OrderStatus
}

func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, updateOrderStatus, arg.ID, arg.Status, arg.FromStatus))
}

// CancelOrder flips a PENDING order to CANCELLED atomically; pgx.ErrNoRows
// means the order is missing or already past PENDING.
const cancelOrder = `
UPDATE orders SET status = 'CANCELLED', cancelled_at = now(), updated_at = now()
WHERE id = $1 AND status = 'PENDING'
RETURNING ` + orderColumns

func (q *Queries) CancelOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, cancelOrder, id))
}
