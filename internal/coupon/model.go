package coupon

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

var (
	ErrCouponNotFound  = errors.New("coupon not found")
	ErrCouponInactive  = errors.New("coupon is not active")
	ErrCouponExpired   = errors.New("coupon has expired")
	ErrCouponExhausted = errors.New("coupon has no uses left")
)

type Coupon struct {
	ID            string          `db:"id" json:"id"`
	Code          string          `db:"code" json:"code"`
	DiscountType  string          `db:"discount_type" json:"discount_type"`
	DiscountValue decimal.Decimal `db:"discount_value" json:"discount_value"`
	MaxUses       *int            `db:"max_uses" json:"max_uses,omitempty"`
	UsedCount     int             `db:"used_count" json:"used_count"`
	ExpiresAt     *time.Time      `db:"expires_at" json:"expires_at,omitempty"`
	IsActive      bool            `db:"is_active" json:"is_active"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// CanRedeem checks activity, expiry and remaining uses as of now. The
// authoritative guard is the conditional redemption update; this is the
// pre-check that produces a precise error for the caller.
func (cp *Coupon) CanRedeem(now time.Time) error {
	if !cp.IsActive {
		return ErrCouponInactive
	}
	if cp.ExpiresAt != nil && !cp.ExpiresAt.After(now) {
		return ErrCouponExpired
	}
	if cp.MaxUses != nil && cp.UsedCount >= *cp.MaxUses {
		return ErrCouponExhausted
	}
	return nil
}

// DiscountFor computes the discount against an order subtotal, clamped to
// [0, subtotal] so a coupon can never push the total negative.
func (cp *Coupon) DiscountFor(subtotal decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch cp.DiscountType {
	case DiscountPercentage:
		discount = subtotal.Mul(cp.DiscountValue).Div(decimal.NewFromInt(100))
	case DiscountFixed:
		discount = cp.DiscountValue
	default:
		return decimal.Zero
	}

	if discount.IsNegative() {
		return decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		return subtotal
	}
	return discount
}

type CreateCouponRequest struct {
	Code          string          `json:"code" binding:"required"`
	DiscountType  string          `json:"discount_type" binding:"required"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	MaxUses       *int            `json:"max_uses"`
	ExpiresAt     *time.Time      `json:"expires_at"`
}

type UpdateCouponRequest struct {
	DiscountType  string          `json:"discount_type" binding:"required"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	MaxUses       *int            `json:"max_uses"`
	ExpiresAt     *time.Time      `json:"expires_at"`
	IsActive      bool            `json:"is_active"`
}
