package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createUser = `
INSERT INTO users (full_name, email, phone, hashed_password, role)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, full_name, email, phone, hashed_password, role, balance, created_at, updated_at
`

type CreateUserParams struct {
	FullName       string
	Email          string
	Phone          pgtype.Text
	HashedPassword string
	Role           UserRole
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, createUser,
		arg.FullName,
		arg.Email,
		arg.Phone,
		arg.HashedPassword,
		arg.Role,
	)
	var u User
	err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.Phone, &u.HashedPassword, &u.Role, &u.Balance, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const getUserByEmail = `
SELECT id, full_name, email, phone, hashed_password, role, balance, created_at, updated_at
FROM users WHERE email = $1
`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRow(ctx, getUserByEmail, email)
	var u User
	err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.Phone, &u.HashedPassword, &u.Role, &u.Balance, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const getUserByID = `
SELECT id, full_name, email, phone, hashed_password, role, balance, created_at, updated_at
FROM users WHERE id = $1
`

func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	row := q.db.QueryRow(ctx, getUserByID, id)
	var u User
	err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.Phone, &u.HashedPassword, &u.Role, &u.Balance, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const listClients = `
SELECT id, full_name, email, phone, hashed_password, role, balance, created_at, updated_at
FROM users WHERE role = 'CLIENT' ORDER BY full_name
`

func (q *Queries) ListClients(ctx context.Context) ([]User, error) {
	rows, err := q.db.Query(ctx, listClients)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.FullName, &u.Email, &u.Phone, &u.HashedPassword, &u.Role, &u.Balance, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

const updateUserPassword = `
UPDATE users SET hashed_password = $2, updated_at = now() WHERE id = $1
RETURNING id, full_name, email, phone, hashed_password, role, balance, created_at, updated_at
`

type UpdateUserPasswordParams struct {
	ID             uuid.UUID
	HashedPassword string
}

func (q *Queries) UpdateUserPassword(ctx context.Context, arg UpdateUserPasswordParams) (User, error) {
	row := q.db.QueryRow(ctx, updateUserPassword, arg.ID, arg.HashedPassword)
	var u User
	err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.Phone, &u.HashedPassword, &u.Role, &u.Balance, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const deleteUser = `DELETE FROM users WHERE id = $1`

func (q *Queries) DeleteUser(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteUser, id)
	return err
}

const creditUserBalance = `
UPDATE users SET balance = balance + $2, updated_at = now()
WHERE id = $1
RETURNING id, full_name, email, phone, hashed_password, role, balance, created_at, updated_at
`

type CreditUserBalanceParams struct {
	ID     uuid.UUID
	Amount pgtype.Numeric
}

func (q *Queries) CreditUserBalance(ctx context.Context, arg CreditUserBalanceParams) (User, error) {
	row := q.db.QueryRow(ctx, creditUserBalance, arg.ID, arg.Amount)
	var u User
	err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.Phone, &u.HashedPassword, &u.Role, &u.Balance, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// DebitUserBalance is a conditional update: it only debits when the balance
// covers the amount, so concurrent checkouts cannot overdraw. Returns
// pgx.ErrNoRows when the balance is insufficient (or the user is missing).
const debitUserBalance = `
UPDATE users SET balance = balance - $2, updated_at = now()
WHERE id = $1 AND balance >= $2
RETURNING id, full_name, email, phone, hashed_password, role, balance, created_at, updated_at
`

type DebitUserBalanceParams struct {
	ID     uuid.UUID
	Amount pgtype.Numeric
}

func (q *Queries) DebitUserBalance(ctx context.Context, arg DebitUserBalanceParams) (User, error) {
	row := q.db.QueryRow(ctx, debitUserBalance, arg.ID, arg.Amount)
	var u User
	err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.Phone, &u.HashedPassword, &u.Role, &u.Balance, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
