package refund

import "time"

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// RefundRequest is a manual-settlement record: approval tracks the decision,
// money moves through order rejection or cancellation.
type RefundRequest struct {
	ID          string     `db:"id" json:"id"`
	TokenID     string     `db:"token_id" json:"token_id"`
	OrderID     *string    `db:"order_id" json:"order_id,omitempty"`
	Reason      string     `db:"reason" json:"reason"`
	Status      string     `db:"status" json:"status"`
	AdminNotes  *string    `db:"admin_notes" json:"admin_notes,omitempty"`
	ProcessedAt *time.Time `db:"processed_at" json:"processed_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

type RefundWithToken struct {
	RefundRequest
	TokenCredential string `db:"token_credential" json:"token_credential"`
}

type SubmitRequest struct {
	OrderID *string `json:"order_id"`
	Reason  string  `json:"reason" binding:"required"`
}

type DecisionRequest struct {
	AdminNotes *string `json:"admin_notes"`
}
