package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const productColumns = `id, name, price, promo_price, product_type, available, image_url, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.PromoPrice, &p.ProductType, &p.Available, &p.ImageUrl, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

const createProduct = `
INSERT INTO products (name, price, promo_price, product_type, available, image_url)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + productColumns

type CreateProductParams struct {
	Name        string
	Price       pgtype.Numeric
	PromoPrice  pgtype.Numeric
	ProductType ProductType
	Available   bool
	ImageUrl    pgtype.Text
}

func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, createProduct,
		arg.Name,
		arg.Price,
		arg.PromoPrice,
		arg.ProductType,
		arg.Available,
		arg.ImageUrl,
	)
	return scanProduct(row)
}

const getProduct = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

func (q *Queries) GetProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	return scanProduct(q.db.QueryRow(ctx, getProduct, id))
}

const listProducts = `SELECT ` + productColumns + ` FROM products ORDER BY product_type, name`

func (q *Queries) ListProducts(ctx context.Context) ([]Product, error) {
	return q.queryProducts(ctx, listProducts)
}

const listAvailableProducts = `SELECT ` + productColumns + ` FROM products WHERE available = true ORDER BY product_type, name`

func (q *Queries) ListAvailableProducts(ctx context.Context) ([]Product, error) {
	return q.queryProducts(ctx, listAvailableProducts)
}

func (q *Queries) queryProducts(ctx context.Context, sql string) ([]Product, error) {
	rows, err := q.db.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

const updateProduct = `
UPDATE products
SET name = $2, price = $3, promo_price = $4, available = $5, image_url = $6, updated_at = now()
WHERE id = $1
RETURNING ` + productColumns

type UpdateProductParams struct {
	ID         uuid.UUID
	Name       string
	Price      pgtype.Numeric
	PromoPrice pgtype.Numeric
	Available  bool
	ImageUrl   pgtype.Text
}

func (q *Queries) UpdateProduct(ctx context.Context, arg UpdateProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, updateProduct,
		arg.ID,
		arg.Name,
		arg.Price,
		arg.PromoPrice,
		arg.Available,
		arg.ImageUrl,
	)
	return scanProduct(row)
}

const deleteProduct = `DELETE FROM products WHERE id = $1`

func (q *Queries) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteProduct, id)
	return err
}

const getProductForOrder = `
SELECT id, name, price, promo_price, product_type, available
FROM products WHERE id = $1
`

type GetProductForOrderRow struct {
	ID          uuid.UUID
	Name        string
	Price       pgtype.Numeric
	PromoPrice  pgtype.Numeric
	ProductType ProductType
	Available   bool
}

func (q *Queries) GetProductForOrder(ctx context.Context, id uuid.UUID) (GetProductForOrderRow, error) {
	row := q.db.QueryRow(ctx, getProductForOrder, id)
	var p GetProductForOrderRow
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.PromoPrice, &p.ProductType, &p.Available)
	return p, err
}
