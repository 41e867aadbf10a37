package recharge

import (
	"context"
	"errors"

	"boompay/internal/metrics"
	"boompay/internal/notify"
	"boompay/internal/token"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("recharge amount must be positive")

type Service interface {
	// Submit records a recharge request. When credential is empty a new
	// token is issued and its credential returned alongside the request.
	Submit(ctx context.Context, req SubmitRequest, proofImageURL *string) (*SubmitResult, error)
	Approve(ctx context.Context, id string, adminNote *string) (*RechargeRequest, error)
	Reject(ctx context.Context, id string, adminNote *string) (*RechargeRequest, error)
}

type service struct {
	rechargeRepo Repository
	tokenRepo    token.Repository
	publisher    notify.Publisher
}

func NewService(rechargeRepo Repository, tokenRepo token.Repository, publisher notify.Publisher) Service {
	return &service{
		rechargeRepo: rechargeRepo,
		tokenRepo:    tokenRepo,
		publisher:    publisher,
	}
}

func (s *service) Submit(ctx context.Context, req SubmitRequest, proofImageURL *string) (*SubmitResult, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	var (
		tokenID       string
		newCredential *string
	)
	if req.Token != "" {
		tok, err := s.tokenRepo.Resolve(ctx, req.Token)
		if err != nil {
			return nil, err
		}
		tokenID = tok.ID
	} else {
		credential, err := token.GenerateCredential()
		if err != nil {
			return nil, err
		}
		tok, err := s.tokenRepo.Create(ctx, credential, decimal.Zero)
		if err != nil {
			return nil, err
		}
		tokenID = tok.ID
		newCredential = &credential
	}

	params := CreateParams{
		TokenID:              tokenID,
		Amount:               amount,
		ProofImageURL:        proofImageURL,
		PaymentMethodID:      optional(req.PaymentMethodID),
		SenderName:           optional(req.SenderName),
		SenderPhone:          optional(req.SenderPhone),
		TransactionReference: optional(req.TransactionReference),
	}

	request, err := s.rechargeRepo.Create(ctx, params)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, notify.Event{
		Type: "recharge_submitted",
		Data: map[string]interface{}{"recharge_id": request.ID},
	})

	return &SubmitResult{Request: request, NewCredential: newCredential}, nil
}

func (s *service) Approve(ctx context.Context, id string, adminNote *string) (*RechargeRequest, error) {
	req, err := s.rechargeRepo.Approve(ctx, id, adminNote)
	if err != nil {
		return nil, err
	}

	metrics.RecordRechargeDecision(StatusApproved)
	return req, nil
}

func (s *service) Reject(ctx context.Context, id string, adminNote *string) (*RechargeRequest, error) {
	req, err := s.rechargeRepo.Reject(ctx, id, adminNote)
	if err != nil {
		return nil, err
	}

	metrics.RecordRechargeDecision(StatusRejected)
	return req, nil
}

func (s *service) publish(ctx context.Context, event notify.Event) {
	if s.publisher == nil {
		return
	}
	_ = s.publisher.Publish(ctx, notify.TopicRechargesNew, event)
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
