package order

import (
	"crypto/rand"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusRejected   = "rejected"
	StatusCancelled  = "cancelled"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// ValidTransition reports whether an order may move from one status to
// another. Completed, rejected and cancelled are terminal.
func ValidTransition(from, to string) bool {
	switch from {
	case StatusPending:
		return to == StatusInProgress || to == StatusCompleted ||
			to == StatusRejected || to == StatusCancelled
	case StatusInProgress:
		return to == StatusCompleted || to == StatusRejected
	}
	return false
}

type Order struct {
	ID               string          `db:"id" json:"id"`
	OrderNumber      string          `db:"order_number" json:"order_number"`
	TokenID          string          `db:"token_id" json:"token_id"`
	ProductID        string          `db:"product_id" json:"product_id"`
	ProductOptionID  string          `db:"product_option_id" json:"product_option_id"`
	Quantity         int             `db:"quantity" json:"quantity"`
	TotalPrice       decimal.Decimal `db:"total_price" json:"total_price"`
	DiscountAmount   decimal.Decimal `db:"discount_amount" json:"discount_amount"`
	CouponCode       *string         `db:"coupon_code" json:"coupon_code,omitempty"`
	Status           string          `db:"status" json:"status"`
	VerificationLink *string         `db:"verification_link" json:"verification_link,omitempty"`
	Email            *string         `db:"email" json:"email,omitempty"`
	Password         *string         `db:"password" json:"password,omitempty"`
	TextValue        *string         `db:"text_value" json:"text_value,omitempty"`
	StockContent     *string         `db:"stock_content" json:"stock_content,omitempty"`
	ResponseMessage  *string         `db:"response_message" json:"response_message,omitempty"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}

// OrderWithDetails is the admin list view, joined with the catalog and the
// owning token's credential.
type OrderWithDetails struct {
	Order
	ProductName     string `db:"product_name" json:"product_name"`
	OptionName      string `db:"option_name" json:"option_name"`
	TokenCredential string `db:"token_credential" json:"token_credential"`
}

type PurchaseRequest struct {
	ProductOptionID  string  `json:"product_option_id" binding:"required"`
	Quantity         int     `json:"quantity"`
	CouponCode       *string `json:"coupon_code"`
	VerificationLink *string `json:"verification_link"`
	Email            *string `json:"email"`
	Password         *string `json:"password"`
	TextValue        *string `json:"text_value"`
}

type TransitionRequest struct {
	Status          string  `json:"status" binding:"required"`
	ResponseMessage *string `json:"response_message"`
}

// PurchaseParams is the priced, validated input the repository persists.
type PurchaseParams struct {
	TokenID          string
	ProductID        string
	ProductOptionID  string
	Quantity         int
	TotalPrice       decimal.Decimal
	DiscountAmount   decimal.Decimal
	CouponCode       *string
	VerificationLink *string
	Email            *string
	Password         *string
	TextValue        *string
}

const orderNumberAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// NewOrderNumber returns a short human-readable reference like BP-7KQ2M9XC.
// The alphabet drops easily-confused characters.
func NewOrderNumber() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	for i, b := range buf {
		buf[i] = orderNumberAlphabet[int(b)%len(orderNumberAlphabet)]
	}
	return "BP-" + string(buf)
}
