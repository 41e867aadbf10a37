package recharge

import "context"

type Repository interface {
	Create(ctx context.Context, p CreateParams) (*RechargeRequest, error)
	GetByID(ctx context.Context, id string) (*RechargeRequest, error)
	ListByToken(ctx context.Context, tokenID string) ([]RechargeRequest, error)
	List(ctx context.Context, status string, limit, offset int) ([]RechargeWithToken, error)

	// Approve flips pending to approved and credits the token in one
	// transaction. A second approval of the same request fails with
	// ErrAlreadyProcessed and credits nothing.
	Approve(ctx context.Context, id string, adminNote *string) (*RechargeRequest, error)
	// Reject flips pending to rejected. No balance effect.
	Reject(ctx context.Context, id string, adminNote *string) (*RechargeRequest, error)
}
