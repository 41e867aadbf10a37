package coupon

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestDiscountFor(t *testing.T) {
	tests := []struct {
		name     string
		coupon   Coupon
		subtotal string
		want     string
	}{
		{
			name:     "Percentage 10 off 20.00",
			coupon:   Coupon{DiscountType: DiscountPercentage, DiscountValue: d("10")},
			subtotal: "20.00",
			want:     "2.00",
		},
		{
			name:     "Fixed 5 off 20.00",
			coupon:   Coupon{DiscountType: DiscountFixed, DiscountValue: d("5.00")},
			subtotal: "20.00",
			want:     "5.00",
		},
		{
			name:     "Fixed larger than subtotal clamps",
			coupon:   Coupon{DiscountType: DiscountFixed, DiscountValue: d("30.00")},
			subtotal: "20.00",
			want:     "20.00",
		},
		{
			name:     "Percentage over 100 clamps",
			coupon:   Coupon{DiscountType: DiscountPercentage, DiscountValue: d("150")},
			subtotal: "20.00",
			want:     "20.00",
		},
		{
			name:     "Negative value clamps to zero",
			coupon:   Coupon{DiscountType: DiscountFixed, DiscountValue: d("-3.00")},
			subtotal: "20.00",
			want:     "0",
		},
		{
			name:     "Unknown type means no discount",
			coupon:   Coupon{DiscountType: "bogus", DiscountValue: d("10")},
			subtotal: "20.00",
			want:     "0",
		},
		{
			name:     "Percentage against multi-quantity subtotal",
			coupon:   Coupon{DiscountType: DiscountPercentage, DiscountValue: d("10")},
			subtotal: "40.00",
			want:     "4.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.coupon.DiscountFor(d(tt.subtotal))
			assert.True(t, got.Equal(d(tt.want)), "got %s, want %s", got, tt.want)
		})
	}
}

func TestCanRedeem(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	five := 5

	t.Run("Active unlimited coupon redeems", func(t *testing.T) {
		cp := Coupon{IsActive: true}
		assert.NoError(t, cp.CanRedeem(now))
	})

	t.Run("Inactive coupon rejected", func(t *testing.T) {
		cp := Coupon{IsActive: false}
		assert.ErrorIs(t, cp.CanRedeem(now), ErrCouponInactive)
	})

	t.Run("Expired coupon rejected permanently", func(t *testing.T) {
		cp := Coupon{IsActive: true, ExpiresAt: &past}
		assert.ErrorIs(t, cp.CanRedeem(now), ErrCouponExpired)
	})

	t.Run("Future expiry still valid", func(t *testing.T) {
		cp := Coupon{IsActive: true, ExpiresAt: &future}
		assert.NoError(t, cp.CanRedeem(now))
	})

	t.Run("Used count at max rejected", func(t *testing.T) {
		cp := Coupon{IsActive: true, MaxUses: &five, UsedCount: 5}
		assert.ErrorIs(t, cp.CanRedeem(now), ErrCouponExhausted)
	})

	t.Run("One use left still valid", func(t *testing.T) {
		cp := Coupon{IsActive: true, MaxUses: &five, UsedCount: 4}
		assert.NoError(t, cp.CanRedeem(now))
	})
}
