package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// CreateClosedDay is idempotent: inserting a date that is already closed
// returns the existing row instead of a constraint error.
const createClosedDay = `
INSERT INTO closed_days (closed_on) VALUES ($1)
ON CONFLICT (closed_on) DO UPDATE SET closed_on = EXCLUDED.closed_on
RETURNING id, closed_on, created_at
`

func (q *Queries) CreateClosedDay(ctx context.Context, closedOn pgtype.Date) (ClosedDay, error) {
	row := q.db.QueryRow(ctx, createClosedDay, closedOn)
	var d ClosedDay
	err := row.Scan(&d.ID, &d.ClosedOn, &d.CreatedAt)
	return d, err
}

const deleteClosedDay = `DELETE FROM closed_days WHERE id = $1`

func (q *Queries) DeleteClosedDay(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteClosedDay, id)
	return tag.RowsAffected(), err
}

const listClosedDays = `SELECT id, closed_on, created_at FROM closed_days ORDER BY closed_on`

func (q *Queries) ListClosedDays(ctx context.Context) ([]ClosedDay, error) {
	rows, err := q.db.Query(ctx, listClosedDays)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var days []ClosedDay
	for rows.Next() {
		var d ClosedDay
		if err := rows.Scan(&d.ID, &d.ClosedOn, &d.CreatedAt); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

const isClosedDay = `SELECT EXISTS (SELECT 1 FROM closed_days WHERE closed_on = $1)`

func (q *Queries) IsClosedDay(ctx context.Context, closedOn pgtype.Date) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, isClosedDay, closedOn).Scan(&exists)
	return exists, err
}
