package chat

import "time"

const (
	SenderCustomer = "customer"
	SenderAdmin    = "admin"
)

type OrderMessage struct {
	ID         string    `db:"id" json:"id"`
	OrderID    string    `db:"order_id" json:"order_id"`
	SenderType string    `db:"sender_type" json:"sender_type"`
	Message    string    `db:"message" json:"message"`
	IsRead     bool      `db:"is_read" json:"is_read"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

type SendMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

type UnreadResponse struct {
	Unread int `json:"unread"`
}
