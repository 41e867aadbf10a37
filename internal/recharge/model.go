package recharge

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

type RechargeRequest struct {
	ID                   string          `db:"id" json:"id"`
	TokenID              string          `db:"token_id" json:"token_id"`
	Amount               decimal.Decimal `db:"amount" json:"amount"`
	PaymentMethodID      *string         `db:"payment_method_id" json:"payment_method_id,omitempty"`
	ProofImageURL        *string         `db:"proof_image_url" json:"proof_image_url,omitempty"`
	SenderName           *string         `db:"sender_name" json:"sender_name,omitempty"`
	SenderPhone          *string         `db:"sender_phone" json:"sender_phone,omitempty"`
	TransactionReference *string         `db:"transaction_reference" json:"transaction_reference,omitempty"`
	Status               string          `db:"status" json:"status"`
	AdminNote            *string         `db:"admin_note" json:"admin_note,omitempty"`
	ProcessedAt          *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
	CreatedAt            time.Time       `db:"created_at" json:"created_at"`
}

// RechargeWithToken is the admin list view, joined with the credential the
// request tops up.
type RechargeWithToken struct {
	RechargeRequest
	TokenCredential string `db:"token_credential" json:"token_credential"`
}

// SubmitRequest arrives as a multipart form so the proof image can ride
// along. Token is optional: absent means a fresh credential is issued.
type SubmitRequest struct {
	Token                string `form:"token"`
	Amount               string `form:"amount" binding:"required"`
	PaymentMethodID      string `form:"payment_method_id"`
	SenderName           string `form:"sender_name"`
	SenderPhone          string `form:"sender_phone"`
	TransactionReference string `form:"transaction_reference"`
}

type DecisionRequest struct {
	AdminNote *string `json:"admin_note"`
}

// SubmitResult carries the created request plus, for first-time customers,
// the newly issued credential. That credential is shown exactly once.
type SubmitResult struct {
	Request       *RechargeRequest `json:"request"`
	NewCredential *string          `json:"new_credential,omitempty"`
}

type CreateParams struct {
	TokenID              string
	Amount               decimal.Decimal
	PaymentMethodID      *string
	ProofImageURL        *string
	SenderName           *string
	SenderPhone          *string
	TransactionReference *string
}
