package chat

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrInvalidSender = errors.New("invalid sender type")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListByOrder(ctx context.Context, orderID string) ([]OrderMessage, error) {
	var messages []OrderMessage
	err := r.db.SelectContext(ctx, &messages,
		`SELECT id, order_id, sender_type, message, is_read, created_at
		 FROM order_messages
		 WHERE order_id = $1
		 ORDER BY created_at, id`,
		orderID,
	)
	if err != nil {
		return nil, err
	}

	return messages, nil
}

func (r *repository) Append(ctx context.Context, orderID, senderType, message string) (*OrderMessage, error) {
	if senderType != SenderCustomer && senderType != SenderAdmin {
		return nil, ErrInvalidSender
	}

	var m OrderMessage
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO order_messages (order_id, sender_type, message)
		 VALUES ($1, $2, $3)
		 RETURNING id, order_id, sender_type, message, is_read, created_at`,
		orderID, senderType, message,
	).StructScan(&m)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

func (r *repository) MarkRead(ctx context.Context, orderID, readerType string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE order_messages
		 SET is_read = true
		 WHERE order_id = $1 AND sender_type <> $2 AND is_read = false`,
		orderID, readerType,
	)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func (r *repository) UnreadCount(ctx context.Context, orderID, readerType string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*)
		 FROM order_messages
		 WHERE order_id = $1 AND sender_type <> $2 AND is_read = false`,
		orderID, readerType,
	)
	return count, err
}
