package order

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	// PurchaseAuto debits the token, draws quantity stock items and inserts a
	// completed order, all in one transaction.
	PurchaseAuto(ctx context.Context, p PurchaseParams) (*Order, error)
	// PurchaseManual debits the token and inserts a pending order carrying
	// the customer-supplied fulfillment data.
	PurchaseManual(ctx context.Context, p PurchaseParams) (*Order, error)

	GetByID(ctx context.Context, id string) (*Order, error)
	ListByToken(ctx context.Context, tokenID string) ([]Order, error)
	List(ctx context.Context, status string, limit, offset int) ([]OrderWithDetails, error)

	// Cancel moves a pending order to cancelled and refunds its total to the
	// owning token. Returns the refunded amount.
	Cancel(ctx context.Context, orderID, tokenID string) (decimal.Decimal, error)

	MarkInProgress(ctx context.Context, orderID string) error
	Complete(ctx context.Context, orderID string, responseMessage *string) (*Order, error)
	// Reject refunds the order total and records the staff response.
	Reject(ctx context.Context, orderID string, responseMessage *string) (decimal.Decimal, error)
}
