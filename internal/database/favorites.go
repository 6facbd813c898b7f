package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createFavorite = `
INSERT INTO favorites (user_id, product_id) VALUES ($1, $2)
ON CONFLICT (user_id, product_id) DO UPDATE SET user_id = EXCLUDED.user_id
RETURNING id, user_id, product_id, created_at
`

type CreateFavoriteParams struct {
	UserID    uuid.UUID
	ProductID uuid.UUID
}

func (q *Queries) CreateFavorite(ctx context.Context, arg CreateFavoriteParams) (Favorite, error) {
	row := q.db.QueryRow(ctx, createFavorite, arg.UserID, arg.ProductID)
	var f Favorite
	err := row.Scan(&f.ID, &f.UserID, &f.ProductID, &f.CreatedAt)
	return f, err
}

// DeleteFavorite is scoped to the owning user so one client cannot remove
// another's favorite by guessing IDs.
const deleteFavorite = `DELETE FROM favorites WHERE id = $1 AND user_id = $2`

type DeleteFavoriteParams struct {
	ID     uuid.UUID
	UserID uuid.UUID
}

func (q *Queries) DeleteFavorite(ctx context.Context, arg DeleteFavoriteParams) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteFavorite, arg.ID, arg.UserID)
	return tag.RowsAffected(), err
}

const listFavoritesByUser = `
SELECT f.id, f.user_id, f.product_id, f.created_at,
       p.name, p.price, p.promo_price, p.available, p.image_url
FROM favorites f
JOIN products p ON p.id = f.product_id
WHERE f.user_id = $1
ORDER BY f.created_at DESC
`

type ListFavoritesByUserRow struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	ProductID   uuid.UUID
	CreatedAt   time.Time
	ProductName string
	Price       pgtype.Numeric
	PromoPrice  pgtype.Numeric
	Available   bool
	ImageUrl    pgtype.Text
}

func (q *Queries) ListFavoritesByUser(ctx context.Context, userID uuid.UUID) ([]ListFavoritesByUserRow, error) {
	rows, err := q.db.Query(ctx, listFavoritesByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var favorites []ListFavoritesByUserRow
	for rows.Next() {
		var f ListFavoritesByUserRow
		if err := rows.Scan(&f.ID, &f.UserID, &f.ProductID, &f.CreatedAt,
			&f.ProductName, &f.Price, &f.PromoPrice, &f.Available, &f.ImageUrl); err != nil {
			return nil, err
		}
		favorites = append(favorites, f)
	}
	return favorites, rows.Err()
}
