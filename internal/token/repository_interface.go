package token

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	Resolve(ctx context.Context, credential string) (*Token, error)
	GetByID(ctx context.Context, id string) (*Token, error)
	Create(ctx context.Context, credential string, balance decimal.Decimal) (*Token, error)
	Credit(ctx context.Context, tokenID string, amount decimal.Decimal) (decimal.Decimal, error)
	Debit(ctx context.Context, tokenID string, amount decimal.Decimal) (decimal.Decimal, error)
	SetBlocked(ctx context.Context, tokenID string, blocked bool) error
	Delete(ctx context.Context, tokenID string) error
	List(ctx context.Context, limit, offset int) ([]Token, error)
}
