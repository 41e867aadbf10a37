package recharge

import (
	"context"
	"database/sql"
	"errors"

	"boompay/internal/token"

	"github.com/jmoiron/sqlx"
)

var (
	ErrRechargeNotFound = errors.New("recharge request not found")
	ErrAlreadyProcessed = errors.New("recharge request already processed")
)

const rechargeColumns = `id, token_id, amount, payment_method_id, proof_image_url,
	 sender_name, sender_phone, transaction_reference, status, admin_note,
	 processed_at, created_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, p CreateParams) (*RechargeRequest, error) {
	var req RechargeRequest
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO recharge_requests (token_id, amount, payment_method_id, proof_image_url,
		        sender_name, sender_phone, transaction_reference)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+rechargeColumns,
		p.TokenID, p.Amount, p.PaymentMethodID, p.ProofImageURL,
		p.SenderName, p.SenderPhone, p.TransactionReference,
	).StructScan(&req)
	if err != nil {
		return nil, err
	}

	return &req, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*RechargeRequest, error) {
	var req RechargeRequest
	err := r.db.GetContext(ctx, &req,
		`SELECT `+rechargeColumns+` FROM recharge_requests WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRechargeNotFound
		}
		return nil, err
	}

	return &req, nil
}

func (r *repository) ListByToken(ctx context.Context, tokenID string) ([]RechargeRequest, error) {
	var requests []RechargeRequest
	err := r.db.SelectContext(ctx, &requests,
		`SELECT `+rechargeColumns+`
		 FROM recharge_requests
		 WHERE token_id = $1
		 ORDER BY created_at DESC`,
		tokenID,
	)
	if err != nil {
		return nil, err
	}

	return requests, nil
}

func (r *repository) List(ctx context.Context, status string, limit, offset int) ([]RechargeWithToken, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT r.id, r.token_id, r.amount, r.payment_method_id, r.proof_image_url,
	        r.sender_name, r.sender_phone, r.transaction_reference, r.status,
	        r.admin_note, r.processed_at, r.created_at, t.token AS token_credential
	 FROM recharge_requests r
	 JOIN tokens t ON t.id = r.token_id`

	args := []interface{}{limit, offset}
	if status != "" {
		query += ` WHERE r.status = $3`
		args = append(args, status)
	}
	query += ` ORDER BY r.created_at DESC LIMIT $1 OFFSET $2`

	var requests []RechargeWithToken
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, err
	}

	return requests, nil
}

// Approve keys the credit on the status flip itself: only the update that
// actually moved the row from pending credits the token, so replaying the
// approval can never double-credit.
func (r *repository) Approve(ctx context.Context, id string, adminNote *string) (*RechargeRequest, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var req RechargeRequest
	err = tx.QueryRowxContext(ctx,
		`UPDATE recharge_requests
		 SET status = 'approved', admin_note = $2, processed_at = NOW()
		 WHERE id = $1 AND status = 'pending'
		 RETURNING `+rechargeColumns,
		id, adminNote,
	).StructScan(&req)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.decisionConflict(ctx, tx, id)
		}
		return nil, err
	}

	if _, err := token.CreditTx(ctx, tx, req.TokenID, req.Amount); err != nil {
		return nil, err
	}

	return &req, tx.Commit()
}

func (r *repository) Reject(ctx context.Context, id string, adminNote *string) (*RechargeRequest, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var req RechargeRequest
	err = tx.QueryRowxContext(ctx,
		`UPDATE recharge_requests
		 SET status = 'rejected', admin_note = $2, processed_at = NOW()
		 WHERE id = $1 AND status = 'pending'
		 RETURNING `+rechargeColumns,
		id, adminNote,
	).StructScan(&req)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.decisionConflict(ctx, tx, id)
		}
		return nil, err
	}

	return &req, tx.Commit()
}

func (r *repository) decisionConflict(ctx context.Context, tx *sqlx.Tx, id string) error {
	var exists bool
	if err := tx.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM recharge_requests WHERE id = $1)`, id,
	); err != nil {
		return err
	}
	if !exists {
		return ErrRechargeNotFound
	}
	return ErrAlreadyProcessed
}
