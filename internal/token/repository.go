package token

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

var (
	ErrTokenNotFound       = errors.New("token not found")
	ErrTokenBlocked        = errors.New("token is blocked")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNonPositiveAmount   = errors.New("amount must be positive")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Resolve(ctx context.Context, credential string) (*Token, error) {
	// Exact, case-sensitive match on the stored credential.
	var t Token
	err := r.db.GetContext(ctx, &t,
		`SELECT id, token, balance, is_blocked, created_at, updated_at
		 FROM tokens
		 WHERE token = $1`,
		credential,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}

	return &t, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Token, error) {
	var t Token
	err := r.db.GetContext(ctx, &t,
		`SELECT id, token, balance, is_blocked, created_at, updated_at
		 FROM tokens
		 WHERE id = $1`,
		id,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}

	return &t, nil
}

func (r *repository) Create(ctx context.Context, credential string, balance decimal.Decimal) (*Token, error) {
	var t Token
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO tokens (token, balance)
		 VALUES ($1, $2)
		 RETURNING id, token, balance, is_blocked, created_at, updated_at`,
		credential, balance,
	).StructScan(&t)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// Credit adds amount to the token balance. The row is locked for the span of
// the transaction so concurrent mutations on the same token serialize.
func (r *repository) Credit(ctx context.Context, tokenID string, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrNonPositiveAmount
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return decimal.Zero, err
	}
	defer tx.Rollback()

	newBalance, err := CreditTx(ctx, tx, tokenID, amount)
	if err != nil {
		return decimal.Zero, err
	}

	return newBalance, tx.Commit()
}

// Debit subtracts amount from the token balance. The guard runs at the point
// of write, under the row lock, so a stale caller-side balance check can
// never overdraw the token.
func (r *repository) Debit(ctx context.Context, tokenID string, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrNonPositiveAmount
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return decimal.Zero, err
	}
	defer tx.Rollback()

	newBalance, err := DebitTx(ctx, tx, tokenID, amount)
	if err != nil {
		return decimal.Zero, err
	}

	return newBalance, tx.Commit()
}

func (r *repository) SetBlocked(ctx context.Context, tokenID string, blocked bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tokens SET is_blocked = $1, updated_at = NOW() WHERE id = $2`,
		blocked, tokenID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrTokenNotFound
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, tokenID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tokens WHERE id = $1`, tokenID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrTokenNotFound
	}

	return nil
}

func (r *repository) List(ctx context.Context, limit, offset int) ([]Token, error) {
	if limit <= 0 {
		limit = 50
	}

	var tokens []Token
	err := r.db.SelectContext(ctx, &tokens,
		`SELECT id, token, balance, is_blocked, created_at, updated_at
		 FROM tokens
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}

	return tokens, nil
}

// CreditTx and DebitTx run inside a caller-owned transaction so multi-table
// flows (purchase, recharge approval, cancellation refund) can mutate the
// ledger atomically with their own writes.

func CreditTx(ctx context.Context, tx *sqlx.Tx, tokenID string, amount decimal.Decimal) (decimal.Decimal, error) {
	balance, err := lockBalance(ctx, tx, tokenID)
	if err != nil {
		return decimal.Zero, err
	}

	newBalance := balance.Add(amount)
	if err := writeBalance(ctx, tx, tokenID, newBalance); err != nil {
		return decimal.Zero, err
	}

	return newBalance, nil
}

func DebitTx(ctx context.Context, tx *sqlx.Tx, tokenID string, amount decimal.Decimal) (decimal.Decimal, error) {
	balance, err := lockBalance(ctx, tx, tokenID)
	if err != nil {
		return decimal.Zero, err
	}

	newBalance := balance.Sub(amount)
	if newBalance.IsNegative() {
		return decimal.Zero, ErrInsufficientBalance
	}

	if err := writeBalance(ctx, tx, tokenID, newBalance); err != nil {
		return decimal.Zero, err
	}

	return newBalance, nil
}

func lockBalance(ctx context.Context, tx *sqlx.Tx, tokenID string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := tx.QueryRowxContext(ctx,
		`SELECT balance FROM tokens WHERE id = $1 FOR UPDATE`,
		tokenID,
	).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, ErrTokenNotFound
		}
		return decimal.Zero, err
	}

	return balance, nil
}

func writeBalance(ctx context.Context, tx *sqlx.Tx, tokenID string, balance decimal.Decimal) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE tokens SET balance = $1, updated_at = NOW() WHERE id = $2`,
		balance, tokenID,
	)
	return err
}
