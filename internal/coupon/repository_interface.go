package coupon

import "context"

type Repository interface {
	GetByCode(ctx context.Context, code string) (*Coupon, error)
	List(ctx context.Context) ([]Coupon, error)
	Create(ctx context.Context, req CreateCouponRequest) (*Coupon, error)
	Update(ctx context.Context, id string, req UpdateCouponRequest) (*Coupon, error)
	Delete(ctx context.Context, id string) error
}
