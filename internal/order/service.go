package order

import (
	"context"
	"errors"
	"time"

	"boompay/internal/catalog"
	"boompay/internal/coupon"
	"boompay/internal/metrics"
	"boompay/internal/notify"
	"boompay/internal/token"

	"github.com/shopspring/decimal"
)

var (
	ErrOptionUnavailable      = errors.New("product option is not available")
	ErrMissingFulfillmentData = errors.New("missing fulfillment data for this option")
	ErrInvalidQuantity        = errors.New("quantity must be at least 1")
)

type Service interface {
	Purchase(ctx context.Context, tok *token.Token, req PurchaseRequest) (*Order, error)
	Cancel(ctx context.Context, tok *token.Token, orderID string) (decimal.Decimal, error)
	Transition(ctx context.Context, orderID string, req TransitionRequest) (*Order, error)
}

type service struct {
	orderRepo   Repository
	catalogRepo catalog.Repository
	couponRepo  coupon.Repository
	publisher   notify.Publisher
}

func NewService(orderRepo Repository, catalogRepo catalog.Repository, couponRepo coupon.Repository, publisher notify.Publisher) Service {
	return &service{
		orderRepo:   orderRepo,
		catalogRepo: catalogRepo,
		couponRepo:  couponRepo,
		publisher:   publisher,
	}
}

// Purchase validates and prices the request, then hands the repository a
// fully-resolved PurchaseParams to persist atomically. The balance and stock
// guards live in the repository transaction, so a race between the checks
// here and the write there can only fail the order, never oversell.
func (s *service) Purchase(ctx context.Context, tok *token.Token, req PurchaseRequest) (*Order, error) {
	if tok.IsBlocked {
		return nil, token.ErrTokenBlocked
	}

	opt, err := s.catalogRepo.GetOption(ctx, req.ProductOptionID)
	if err != nil {
		return nil, err
	}
	if !opt.IsActive {
		return nil, ErrOptionUnavailable
	}

	product, err := s.catalogRepo.GetProduct(ctx, opt.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, ErrOptionUnavailable
	}

	quantity := req.Quantity
	if opt.IsAuto() {
		if quantity == 0 {
			quantity = 1
		}
		if quantity < 1 {
			return nil, ErrInvalidQuantity
		}
	} else {
		// Manual fulfillment is one unit per order.
		quantity = 1
	}

	params := PurchaseParams{
		TokenID:         tok.ID,
		ProductID:       product.ID,
		ProductOptionID: opt.ID,
		Quantity:        quantity,
	}
	if err := bindFulfillmentData(&params, opt.Type, req); err != nil {
		return nil, err
	}

	subtotal := opt.Price.Mul(decimal.NewFromInt(int64(quantity)))
	discount := decimal.Zero
	if req.CouponCode != nil && *req.CouponCode != "" {
		cp, err := s.couponRepo.GetByCode(ctx, *req.CouponCode)
		if err != nil {
			return nil, err
		}
		if err := cp.CanRedeem(time.Now()); err != nil {
			return nil, err
		}
		discount = cp.DiscountFor(subtotal)
		params.CouponCode = req.CouponCode
	}
	params.TotalPrice = subtotal.Sub(discount)
	params.DiscountAmount = discount

	var o *Order
	if opt.IsAuto() {
		o, err = s.orderRepo.PurchaseAuto(ctx, params)
	} else {
		o, err = s.orderRepo.PurchaseManual(ctx, params)
	}
	if err != nil {
		return nil, err
	}

	metrics.RecordOrder(opt.Type, o.Status)
	if opt.IsAuto() {
		metrics.RecordStockSold(quantity)
	}
	if params.CouponCode != nil {
		metrics.RecordCouponRedemption()
	}
	s.publish(ctx, notify.TopicOrdersNew, notify.Event{
		Type: "order_created",
		Data: map[string]interface{}{"order_id": o.ID, "order_number": o.OrderNumber, "status": o.Status},
	})

	return o, nil
}

func (s *service) Cancel(ctx context.Context, tok *token.Token, orderID string) (decimal.Decimal, error) {
	refunded, err := s.orderRepo.Cancel(ctx, orderID, tok.ID)
	if err != nil {
		return decimal.Zero, err
	}

	metrics.RecordOrderCancellation()
	s.publish(ctx, notify.OrderTopic(orderID), notify.Event{
		Type: "status_changed",
		Data: map[string]interface{}{"order_id": orderID, "status": StatusCancelled},
	})

	return refunded, nil
}

func (s *service) Transition(ctx context.Context, orderID string, req TransitionRequest) (*Order, error) {
	if !ValidStatus(req.Status) {
		return nil, ErrInvalidTransition
	}

	current, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	// Pre-check against the transition table. The conditional updates below
	// remain the authoritative guard under concurrent staff actions.
	if !ValidTransition(current.Status, req.Status) {
		return nil, ErrInvalidTransition
	}

	var o *Order
	switch req.Status {
	case StatusInProgress:
		if err = s.orderRepo.MarkInProgress(ctx, orderID); err == nil {
			o, err = s.orderRepo.GetByID(ctx, orderID)
		}
	case StatusCompleted:
		o, err = s.orderRepo.Complete(ctx, orderID, req.ResponseMessage)
	case StatusRejected:
		if _, err = s.orderRepo.Reject(ctx, orderID, req.ResponseMessage); err == nil {
			o, err = s.orderRepo.GetByID(ctx, orderID)
		}
	default:
		// pending and cancelled are not staff targets.
		return nil, ErrInvalidTransition
	}
	if err != nil {
		return nil, err
	}

	metrics.RecordOrder("transition", o.Status)
	s.publish(ctx, notify.OrderTopic(orderID), notify.Event{
		Type: "status_changed",
		Data: map[string]interface{}{"order_id": orderID, "status": o.Status},
	})

	return o, nil
}

func (s *service) publish(ctx context.Context, topic string, event notify.Event) {
	if s.publisher == nil {
		return
	}
	// Best effort. Losing a live update never fails the request.
	_ = s.publisher.Publish(ctx, topic, event)
}

func bindFulfillmentData(p *PurchaseParams, optionType string, req PurchaseRequest) error {
	switch optionType {
	case catalog.FulfillmentNone:
		return nil
	case catalog.FulfillmentLink:
		if req.VerificationLink == nil || *req.VerificationLink == "" {
			return ErrMissingFulfillmentData
		}
		p.VerificationLink = req.VerificationLink
	case catalog.FulfillmentEmailPassword:
		if req.Email == nil || *req.Email == "" || req.Password == nil || *req.Password == "" {
			return ErrMissingFulfillmentData
		}
		p.Email = req.Email
		p.Password = req.Password
	case catalog.FulfillmentText:
		if req.TextValue == nil || *req.TextValue == "" {
			return ErrMissingFulfillmentData
		}
		p.TextValue = req.TextValue
	default:
		return ErrOptionUnavailable
	}
	return nil
}
