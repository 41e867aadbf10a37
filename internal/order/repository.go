package order

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"boompay/internal/catalog"
	"boompay/internal/coupon"
	"boompay/internal/token"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrCannotCancel      = errors.New("order can no longer be cancelled")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

const orderColumns = `id, order_number, token_id, product_id, product_option_id, quantity,
	 total_price, discount_amount, coupon_code, status, verification_link,
	 email, password, text_value, stock_content, response_message, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// PurchaseAuto is a single transaction: debit the token, draw stock FIFO,
// insert the order already completed, bump the coupon. Any failure along the
// way rolls everything back, so the customer is never charged for stock that
// was not delivered.
func (r *repository) PurchaseAuto(ctx context.Context, p PurchaseParams) (*Order, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := token.DebitTx(ctx, tx, p.TokenID, p.TotalPrice); err != nil {
		return nil, err
	}

	orderID := uuid.NewString()
	contents, err := catalog.ReserveAndConsumeTx(ctx, tx, p.ProductOptionID, orderID, p.Quantity)
	if err != nil {
		return nil, err
	}
	stockContent := strings.Join(contents, "\n")

	var o Order
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO orders (id, order_number, token_id, product_id, product_option_id,
		        quantity, total_price, discount_amount, coupon_code, status, stock_content)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'completed', $10)
		 RETURNING `+orderColumns,
		orderID, NewOrderNumber(), p.TokenID, p.ProductID, p.ProductOptionID,
		p.Quantity, p.TotalPrice, p.DiscountAmount, p.CouponCode, stockContent,
	).StructScan(&o)
	if err != nil {
		return nil, err
	}

	if p.CouponCode != nil {
		if err := coupon.RedeemTx(ctx, tx, *p.CouponCode); err != nil {
			return nil, err
		}
	}

	return &o, tx.Commit()
}

func (r *repository) PurchaseManual(ctx context.Context, p PurchaseParams) (*Order, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := token.DebitTx(ctx, tx, p.TokenID, p.TotalPrice); err != nil {
		return nil, err
	}

	var o Order
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO orders (id, order_number, token_id, product_id, product_option_id,
		        quantity, total_price, discount_amount, coupon_code, status,
		        verification_link, email, password, text_value)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'pending', $10, $11, $12, $13)
		 RETURNING `+orderColumns,
		uuid.NewString(), NewOrderNumber(), p.TokenID, p.ProductID, p.ProductOptionID,
		p.Quantity, p.TotalPrice, p.DiscountAmount, p.CouponCode,
		p.VerificationLink, p.Email, p.Password, p.TextValue,
	).StructScan(&o)
	if err != nil {
		return nil, err
	}

	if p.CouponCode != nil {
		if err := coupon.RedeemTx(ctx, tx, *p.CouponCode); err != nil {
			return nil, err
		}
	}

	return &o, tx.Commit()
}

func (r *repository) GetByID(ctx context.Context, id string) (*Order, error) {
	var o Order
	err := r.db.GetContext(ctx, &o,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	return &o, nil
}

func (r *repository) ListByToken(ctx context.Context, tokenID string) ([]Order, error) {
	var orders []Order
	err := r.db.SelectContext(ctx, &orders,
		`SELECT `+orderColumns+`
		 FROM orders
		 WHERE token_id = $1
		 ORDER BY created_at DESC`,
		tokenID,
	)
	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *repository) List(ctx context.Context, status string, limit, offset int) ([]OrderWithDetails, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT o.id, o.order_number, o.token_id, o.product_id, o.product_option_id,
	        o.quantity, o.total_price, o.discount_amount, o.coupon_code, o.status,
	        o.verification_link, o.email, o.password, o.text_value, o.stock_content,
	        o.response_message, o.created_at, o.updated_at,
	        p.name AS product_name, po.name AS option_name, t.token AS token_credential
	 FROM orders o
	 JOIN products p ON p.id = o.product_id
	 JOIN product_options po ON po.id = o.product_option_id
	 JOIN tokens t ON t.id = o.token_id`

	args := []interface{}{limit, offset}
	if status != "" {
		query += ` WHERE o.status = $3`
		args = append(args, status)
	}
	query += ` ORDER BY o.created_at DESC LIMIT $1 OFFSET $2`

	var orders []OrderWithDetails
	if err := r.db.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, err
	}

	return orders, nil
}

// Cancel is guarded by the current status inside the UPDATE itself, so two
// racing cancels (or a cancel racing a staff transition) resolve to exactly
// one winner. The refund happens in the same transaction.
func (r *repository) Cancel(ctx context.Context, orderID, tokenID string) (decimal.Decimal, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return decimal.Zero, err
	}
	defer tx.Rollback()

	var total decimal.Decimal
	err = tx.QueryRowxContext(ctx,
		`UPDATE orders
		 SET status = 'cancelled', updated_at = NOW()
		 WHERE id = $1 AND token_id = $2 AND status = 'pending'
		 RETURNING total_price`,
		orderID, tokenID,
	).Scan(&total)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			var exists bool
			if probeErr := tx.GetContext(ctx, &exists,
				`SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1 AND token_id = $2)`,
				orderID, tokenID,
			); probeErr != nil {
				return decimal.Zero, probeErr
			}
			if !exists {
				return decimal.Zero, ErrOrderNotFound
			}
			return decimal.Zero, ErrCannotCancel
		}
		return decimal.Zero, err
	}

	if _, err := token.CreditTx(ctx, tx, tokenID, total); err != nil {
		return decimal.Zero, err
	}

	return total, tx.Commit()
}

func (r *repository) MarkInProgress(ctx context.Context, orderID string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE orders
		 SET status = 'in_progress', updated_at = NOW()
		 WHERE id = $1 AND status = 'pending'`,
		orderID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		if exists, err := r.orderExists(ctx, orderID); err != nil {
			return err
		} else if !exists {
			return ErrOrderNotFound
		}
		return ErrInvalidTransition
	}

	return nil
}

func (r *repository) Complete(ctx context.Context, orderID string, responseMessage *string) (*Order, error) {
	var o Order
	err := r.db.QueryRowxContext(ctx,
		`UPDATE orders
		 SET status = 'completed', response_message = $2, updated_at = NOW()
		 WHERE id = $1 AND status IN ('pending', 'in_progress')
		 RETURNING `+orderColumns,
		orderID, responseMessage,
	).StructScan(&o)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if exists, probeErr := r.orderExists(ctx, orderID); probeErr != nil {
				return nil, probeErr
			} else if !exists {
				return nil, ErrOrderNotFound
			}
			return nil, ErrInvalidTransition
		}
		return nil, err
	}

	return &o, nil
}

func (r *repository) Reject(ctx context.Context, orderID string, responseMessage *string) (decimal.Decimal, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return decimal.Zero, err
	}
	defer tx.Rollback()

	var (
		tokenID string
		total   decimal.Decimal
	)
	err = tx.QueryRowxContext(ctx,
		`UPDATE orders
		 SET status = 'rejected', response_message = $2, updated_at = NOW()
		 WHERE id = $1 AND status IN ('pending', 'in_progress')
		 RETURNING token_id, total_price`,
		orderID, responseMessage,
	).Scan(&tokenID, &total)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			var exists bool
			if probeErr := tx.GetContext(ctx, &exists,
				`SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`, orderID,
			); probeErr != nil {
				return decimal.Zero, probeErr
			}
			if !exists {
				return decimal.Zero, ErrOrderNotFound
			}
			return decimal.Zero, ErrInvalidTransition
		}
		return decimal.Zero, err
	}

	if _, err := token.CreditTx(ctx, tx, tokenID, total); err != nil {
		return decimal.Zero, err
	}

	return total, tx.Commit()
}

func (r *repository) orderExists(ctx context.Context, orderID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`, orderID)
	return exists, err
}
