package refund

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var (
	ErrRefundNotFound   = errors.New("refund request not found")
	ErrAlreadyProcessed = errors.New("refund request already processed")
)

const refundColumns = `id, token_id, order_id, reason, status, admin_notes, processed_at, created_at`

type Repository interface {
	Create(ctx context.Context, tokenID string, orderID *string, reason string) (*RefundRequest, error)
	ListByToken(ctx context.Context, tokenID string) ([]RefundRequest, error)
	List(ctx context.Context, status string, limit, offset int) ([]RefundWithToken, error)
	Decide(ctx context.Context, id, status string, adminNotes *string) (*RefundRequest, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, tokenID string, orderID *string, reason string) (*RefundRequest, error) {
	var req RefundRequest
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO refund_requests (token_id, order_id, reason)
		 VALUES ($1, $2, $3)
		 RETURNING `+refundColumns,
		tokenID, orderID, reason,
	).StructScan(&req)
	if err != nil {
		return nil, err
	}

	return &req, nil
}

func (r *repository) ListByToken(ctx context.Context, tokenID string) ([]RefundRequest, error) {
	var requests []RefundRequest
	err := r.db.SelectContext(ctx, &requests,
		`SELECT `+refundColumns+`
		 FROM refund_requests
		 WHERE token_id = $1
		 ORDER BY created_at DESC`,
		tokenID,
	)
	if err != nil {
		return nil, err
	}

	return requests, nil
}

func (r *repository) List(ctx context.Context, status string, limit, offset int) ([]RefundWithToken, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT r.id, r.token_id, r.order_id, r.reason, r.status, r.admin_notes,
	        r.processed_at, r.created_at, t.token AS token_credential
	 FROM refund_requests r
	 JOIN tokens t ON t.id = r.token_id`

	args := []interface{}{limit, offset}
	if status != "" {
		query += ` WHERE r.status = $3`
		args = append(args, status)
	}
	query += ` ORDER BY r.created_at DESC LIMIT $1 OFFSET $2`

	var requests []RefundWithToken
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, err
	}

	return requests, nil
}

// Decide flips a pending request to approved or rejected. Terminal either
// way; a second decision gets ErrAlreadyProcessed.
func (r *repository) Decide(ctx context.Context, id, status string, adminNotes *string) (*RefundRequest, error) {
	if status != StatusApproved && status != StatusRejected {
		return nil, ErrAlreadyProcessed
	}

	var req RefundRequest
	err := r.db.QueryRowxContext(ctx,
		`UPDATE refund_requests
		 SET status = $2, admin_notes = $3, processed_at = NOW()
		 WHERE id = $1 AND status = 'pending'
		 RETURNING `+refundColumns,
		id, status, adminNotes,
	).StructScan(&req)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			var exists bool
			if probeErr := r.db.GetContext(ctx, &exists,
				`SELECT EXISTS(SELECT 1 FROM refund_requests WHERE id = $1)`, id,
			); probeErr != nil {
				return nil, probeErr
			}
			if !exists {
				return nil, ErrRefundNotFound
			}
			return nil, ErrAlreadyProcessed
		}
		return nil, err
	}

	return &req, nil
}
