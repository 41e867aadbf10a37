package token

import (
	"time"

	"github.com/shopspring/decimal"
)

// Token is a customer wallet: the opaque credential doubles as the account
// identifier, there are no customer accounts beyond it.
type Token struct {
	ID        string          `db:"id" json:"id"`
	Token     string          `db:"token" json:"token"`
	Balance   decimal.Decimal `db:"balance" json:"balance"`
	IsBlocked bool            `db:"is_blocked" json:"is_blocked"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

type VerifyRequest struct {
	Token string `json:"token" binding:"required"`
}

type CreateTokenRequest struct {
	Balance decimal.Decimal `json:"balance"`
}

type AdjustBalanceRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

type SetBlockedRequest struct {
	Blocked bool `json:"blocked"`
}
