package chat

import "context"

type Repository interface {
	ListByOrder(ctx context.Context, orderID string) ([]OrderMessage, error)
	Append(ctx context.Context, orderID, senderType, message string) (*OrderMessage, error)
	// MarkRead flips is_read on every message in the conversation not
	// authored by the reader. Returns how many rows changed.
	MarkRead(ctx context.Context, orderID, readerType string) (int64, error)
	UnreadCount(ctx context.Context, orderID, readerType string) (int, error)
}
