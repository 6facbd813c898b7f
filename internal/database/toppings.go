package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const toppingColumns = `id, name, price, available, created_at, updated_at`

func scanTopping(row pgx.Row) (Topping, error) {
	var t Topping
	err := row.Scan(&t.ID, &t.Name, &t.Price, &t.Available, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

const createTopping = `
INSERT INTO toppings (name, price, available)
VALUES ($1, $2, $3)
RETURNING ` + toppingColumns

type CreateToppingParams struct {
	Name      string
	Price     pgtype.Numeric
	Available bool
}

func (q *Queries) CreateTopping(ctx context.Context, arg CreateToppingParams) (Topping, error) {
	return scanTopping(q.db.QueryRow(ctx, createTopping, arg.Name, arg.Price, arg.Available))
}

const getTopping = `SELECT ` + toppingColumns + ` FROM toppings WHERE id = $1`

func (q *Queries) GetTopping(ctx context.Context, id uuid.UUID) (Topping, error) {
	return scanTopping(q.db.QueryRow(ctx, getTopping, id))
}

const listToppings = `SELECT ` + toppingColumns + ` FROM toppings ORDER BY name`

func (q *Queries) ListToppings(ctx context.Context) ([]Topping, error) {
	return q.queryToppings(ctx, listToppings)
}

const listAvailableToppings = `SELECT ` + toppingColumns + ` FROM toppings WHERE available = true ORDER BY name`

func (q *Queries) ListAvailableToppings(ctx context.Context) ([]Topping, error) {
	return q.queryToppings(ctx, listAvailableToppings)
}

func (q *Queries) queryToppings(ctx context.Context, sql string) ([]Topping, error) {
	rows, err := q.db.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var toppings []Topping
	for rows.Next() {
		t, err := scanTopping(rows)
		if err != nil {
			return nil, err
		}
		toppings = append(toppings, t)
	}
	return toppings, rows.Err()
}

const updateTopping = `
UPDATE toppings SET name = $2, price = $3, available = $4, updated_at = now()
WHERE id = $1
RETURNING ` + toppingColumns

type UpdateToppingParams struct {
	ID        uuid.UUID
	Name      string
	Price     pgtype.Numeric
	Available bool
}

func (q *Queries) UpdateTopping(ctx context.Context, arg UpdateToppingParams) (Topping, error) {
	return scanTopping(q.db.QueryRow(ctx, updateTopping, arg.ID, arg.Name, arg.Price, arg.Available))
}

const getToppingForOrder = `
SELECT id, name, price, available FROM toppings WHERE id = $1
`

type GetToppingForOrderRow struct {
	ID        uuid.UUID
	Name      string
	Price     pgtype.Numeric
	Available bool
}

func (q *Queries) GetToppingForOrder(ctx context.Context, id uuid.UUID) (GetToppingForOrderRow, error) {
	row := q.db.QueryRow(ctx, getToppingForOrder, id)
	var t GetToppingForOrderRow
	err := row.Scan(&t.ID, &t.Name, &t.Price, &t.Available)
	return t, err
}
