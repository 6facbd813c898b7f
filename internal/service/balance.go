package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fournil/api/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Errors returned by the balance service.
var (
	ErrNonPositiveAmount = errors.New("amount must be positive")
)

// BalanceStore defines the DB methods needed for balance adjustments.
type BalanceStore interface {
	CreditUserBalance(ctx context.Context, arg database.CreditUserBalanceParams) (database.User, error)
}

// BalanceService handles staff-initiated balance credits. Debits happen
// only inside order placement; there is no endpoint that writes an absolute
// balance value.
type BalanceService struct {
	store BalanceStore
}

func NewBalanceService(store BalanceStore) *BalanceService {
	return &BalanceService{store: store}
}

// Credit adds a positive amount to a client's balance as a single relative
// update and returns the updated user. The reason is for the audit log only.
func (s *BalanceService) Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, reason string) (*database.User, error) {
	if !amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}

	user, err := s.store.CreditUserBalance(ctx, database.CreditUserBalanceParams{
		ID:     userID,
		Amount: decimalToNumeric(amount),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("credit balance: %w", err)
	}
	return &user, nil
}
