package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createContactMessage = `
INSERT INTO contact_messages (user_id, name, email, message)
VALUES ($1, $2, $3, $4)
RETURNING id, user_id, name, email, message, created_at
`

type CreateContactMessageParams struct {
	UserID  pgtype.UUID
	Name    string
	Email   string
	Message string
}

func (q *Queries) CreateContactMessage(ctx context.Context, arg CreateContactMessageParams) (ContactMessage, error) {
	row := q.db.QueryRow(ctx, createContactMessage, arg.UserID, arg.Name, arg.Email, arg.Message)
	var m ContactMessage
	err := row.Scan(&m.ID, &m.UserID, &m.Name, &m.Email, &m.Message, &m.CreatedAt)
	return m, err
}

const listContactMessages = `
SELECT id, user_id, name, email, message, created_at
FROM contact_messages ORDER BY created_at DESC
`

func (q *Queries) ListContactMessages(ctx context.Context) ([]ContactMessage, error) {
	rows, err := q.db.Query(ctx, listContactMessages)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var messages []ContactMessage
	for rows.Next() {
		var m ContactMessage
		if err := rows.Scan(&m.ID, &m.UserID, &m.Name, &m.Email, &m.Message, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
