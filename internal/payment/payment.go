package payment

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrMethodNotFound = errors.New("payment method not found")

type PaymentMethod struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Type          string    `db:"type" json:"type"`
	AccountNumber *string   `db:"account_number" json:"account_number,omitempty"`
	AccountName   *string   `db:"account_name" json:"account_name,omitempty"`
	Instructions  *string   `db:"instructions" json:"instructions,omitempty"`
	IsActive      bool      `db:"is_active" json:"is_active"`
	IsVisible     bool      `db:"is_visible" json:"is_visible"`
	DisplayOrder  int       `db:"display_order" json:"display_order"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

type MethodRequest struct {
	Name          string  `json:"name" binding:"required"`
	Type          string  `json:"type" binding:"required"`
	AccountNumber *string `json:"account_number"`
	AccountName   *string `json:"account_name"`
	Instructions  *string `json:"instructions"`
	IsActive      bool    `json:"is_active"`
	IsVisible     bool    `json:"is_visible"`
	DisplayOrder  int     `json:"display_order"`
}

const methodColumns = `id, name, type, account_number, account_name, instructions,
	 is_active, is_visible, display_order, created_at`

type Repository interface {
	ListVisible(ctx context.Context) ([]PaymentMethod, error)
	ListAll(ctx context.Context) ([]PaymentMethod, error)
	Create(ctx context.Context, req MethodRequest) (*PaymentMethod, error)
	Update(ctx context.Context, id string, req MethodRequest) (*PaymentMethod, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListVisible(ctx context.Context) ([]PaymentMethod, error) {
	var methods []PaymentMethod
	err := r.db.SelectContext(ctx, &methods,
		`SELECT `+methodColumns+`
		 FROM payment_methods
		 WHERE is_active = true AND is_visible = true
		 ORDER BY display_order, created_at`,
	)
	if err != nil {
		return nil, err
	}

	return methods, nil
}

func (r *repository) ListAll(ctx context.Context) ([]PaymentMethod, error) {
	var methods []PaymentMethod
	err := r.db.SelectContext(ctx, &methods,
		`SELECT `+methodColumns+`
		 FROM payment_methods
		 ORDER BY display_order, created_at`,
	)
	if err != nil {
		return nil, err
	}

	return methods, nil
}

func (r *repository) Create(ctx context.Context, req MethodRequest) (*PaymentMethod, error) {
	var m PaymentMethod
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO payment_methods (name, type, account_number, account_name, instructions,
		        is_active, is_visible, display_order)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+methodColumns,
		req.Name, req.Type, req.AccountNumber, req.AccountName, req.Instructions,
		req.IsActive, req.IsVisible, req.DisplayOrder,
	).StructScan(&m)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

func (r *repository) Update(ctx context.Context, id string, req MethodRequest) (*PaymentMethod, error) {
	var m PaymentMethod
	err := r.db.QueryRowxContext(ctx,
		`UPDATE payment_methods
		 SET name = $2, type = $3, account_number = $4, account_name = $5,
		     instructions = $6, is_active = $7, is_visible = $8, display_order = $9
		 WHERE id = $1
		 RETURNING `+methodColumns,
		id, req.Name, req.Type, req.AccountNumber, req.AccountName, req.Instructions,
		req.IsActive, req.IsVisible, req.DisplayOrder,
	).StructScan(&m)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMethodNotFound
		}
		return nil, err
	}

	return &m, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM payment_methods WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrMethodNotFound
	}

	return nil
}
