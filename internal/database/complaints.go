package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createComplaint = `
INSERT INTO complaints (user_id, order_id, message)
VALUES ($1, $2, $3)
RETURNING id, user_id, order_id, message, resolved, created_at
`

type CreateComplaintParams struct {
	UserID  uuid.UUID
	OrderID pgtype.UUID
	Message string
}

func (q *Queries) CreateComplaint(ctx context.Context, arg CreateComplaintParams) (Complaint, error) {
	row := q.db.QueryRow(ctx, createComplaint, arg.UserID, arg.OrderID, arg.Message)
	var c Complaint
	err := row.Scan(&c.ID, &c.UserID, &c.OrderID, &c.Message, &c.Resolved, &c.CreatedAt)
	return c, err
}

const listComplaints = `
SELECT id, user_id, order_id, message, resolved, created_at
FROM complaints ORDER BY resolved, created_at DESC
`

func (q *Queries) ListComplaints(ctx context.Context) ([]Complaint, error) {
	rows, err := q.db.Query(ctx, listComplaints)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var complaints []Complaint
	for rows.Next() {
		var c Complaint
		if err := rows.Scan(&c.ID, &c.UserID, &c.OrderID, &c.Message, &c.Resolved, &c.CreatedAt); err != nil {
			return nil, err
		}
		complaints = append(complaints, c)
	}
	return complaints, rows.Err()
}

const resolveComplaint = `
UPDATE complaints SET resolved = true WHERE id = $1
RETURNING id, user_id, order_id, message, resolved, created_at
`

func (q *Queries) ResolveComplaint(ctx context.Context, id uuid.UUID) (Complaint, error) {
	row := q.db.QueryRow(ctx, resolveComplaint, id)
	var c Complaint
	err := row.Scan(&c.ID, &c.UserID, &c.OrderID, &c.Message, &c.Resolved, &c.CreatedAt)
	return c, err
}
