package coupon

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByCode(ctx context.Context, code string) (*Coupon, error) {
	var cp Coupon
	err := r.db.GetContext(ctx, &cp,
		`SELECT id, code, discount_type, discount_value, max_uses, used_count, expires_at, is_active, created_at
		 FROM coupons
		 WHERE code = $1`,
		code,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCouponNotFound
		}
		return nil, err
	}

	return &cp, nil
}

func (r *repository) List(ctx context.Context) ([]Coupon, error) {
	var coupons []Coupon
	err := r.db.SelectContext(ctx, &coupons,
		`SELECT id, code, discount_type, discount_value, max_uses, used_count, expires_at, is_active, created_at
		 FROM coupons
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}

	return coupons, nil
}

func (r *repository) Create(ctx context.Context, req CreateCouponRequest) (*Coupon, error) {
	var cp Coupon
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO coupons (code, discount_type, discount_value, max_uses, expires_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, code, discount_type, discount_value, max_uses, used_count, expires_at, is_active, created_at`,
		req.Code, req.DiscountType, req.DiscountValue, req.MaxUses, req.ExpiresAt,
	).StructScan(&cp)
	if err != nil {
		return nil, err
	}

	return &cp, nil
}

func (r *repository) Update(ctx context.Context, id string, req UpdateCouponRequest) (*Coupon, error) {
	var cp Coupon
	err := r.db.QueryRowxContext(ctx,
		`UPDATE coupons
		 SET discount_type = $1, discount_value = $2, max_uses = $3, expires_at = $4, is_active = $5
		 WHERE id = $6
		 RETURNING id, code, discount_type, discount_value, max_uses, used_count, expires_at, is_active, created_at`,
		req.DiscountType, req.DiscountValue, req.MaxUses, req.ExpiresAt, req.IsActive, id,
	).StructScan(&cp)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCouponNotFound
		}
		return nil, err
	}

	return &cp, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrCouponNotFound
	}

	return nil
}

// RedeemTx increments the use count inside the caller's transaction. The
// predicate re-checks activity, expiry and remaining uses at the point of
// write, so two racing orders cannot push used_count past max_uses.
func RedeemTx(ctx context.Context, tx *sqlx.Tx, code string) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE coupons
		 SET used_count = used_count + 1
		 WHERE code = $1
		   AND is_active = true
		   AND (expires_at IS NULL OR expires_at > NOW())
		   AND (max_uses IS NULL OR used_count < max_uses)`,
		code,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrCouponExhausted
	}

	return nil
}
