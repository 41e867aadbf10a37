package recharge

import (
	"context"
	"testing"

	"boompay/internal/token"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRechargeRepo struct{ mock.Mock }
type MockTokenRepo struct{ mock.Mock }

func (m *MockRechargeRepo) Create(ctx context.Context, p CreateParams) (*RechargeRequest, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RechargeRequest), args.Error(1)
}

func (m *MockRechargeRepo) GetByID(ctx context.Context, id string) (*RechargeRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RechargeRequest), args.Error(1)
}

func (m *MockRechargeRepo) ListByToken(ctx context.Context, tokenID string) ([]RechargeRequest, error) {
	args := m.Called(ctx, tokenID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]RechargeRequest), args.Error(1)
}

func (m *MockRechargeRepo) List(ctx context.Context, status string, limit, offset int) ([]RechargeWithToken, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]RechargeWithToken), args.Error(1)
}

func (m *MockRechargeRepo) Approve(ctx context.Context, id string, adminNote *string) (*RechargeRequest, error) {
	args := m.Called(ctx, id, adminNote)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RechargeRequest), args.Error(1)
}

func (m *MockRechargeRepo) Reject(ctx context.Context, id string, adminNote *string) (*RechargeRequest, error) {
	args := m.Called(ctx, id, adminNote)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RechargeRequest), args.Error(1)
}

func (m *MockTokenRepo) Resolve(ctx context.Context, credential string) (*token.Token, error) {
	args := m.Called(ctx, credential)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*token.Token), args.Error(1)
}

func (m *MockTokenRepo) GetByID(ctx context.Context, id string) (*token.Token, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*token.Token), args.Error(1)
}

func (m *MockTokenRepo) Create(ctx context.Context, credential string, balance decimal.Decimal) (*token.Token, error) {
	args := m.Called(ctx, credential, balance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*token.Token), args.Error(1)
}

func (m *MockTokenRepo) Credit(ctx context.Context, tokenID string, amount decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, tokenID, amount)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockTokenRepo) Debit(ctx context.Context, tokenID string, amount decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, tokenID, amount)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockTokenRepo) SetBlocked(ctx context.Context, tokenID string, blocked bool) error {
	return m.Called(ctx, tokenID, blocked).Error(0)
}

func (m *MockTokenRepo) Delete(ctx context.Context, tokenID string) error {
	return m.Called(ctx, tokenID).Error(0)
}

func (m *MockTokenRepo) List(ctx context.Context, limit, offset int) ([]token.Token, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]token.Token), args.Error(1)
}

func TestService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("ExistingToken", func(t *testing.T) {
		rr := new(MockRechargeRepo)
		tr := new(MockTokenRepo)

		tr.On("Resolve", mock.Anything, "ABC123XYZ456").
			Return(&token.Token{ID: "t1", Token: "ABC123XYZ456"}, nil)
		rr.On("Create", mock.Anything, mock.MatchedBy(func(p CreateParams) bool {
			return p.TokenID == "t1" && p.Amount.Equal(decimal.RequireFromString("25.00"))
		})).Return(&RechargeRequest{ID: "r1", TokenID: "t1", Status: StatusPending}, nil)

		result, err := NewService(rr, tr, nil).Submit(ctx, SubmitRequest{
			Token:  "ABC123XYZ456",
			Amount: "25.00",
		}, nil)
		require.NoError(t, err)
		assert.Nil(t, result.NewCredential)
		assert.Equal(t, StatusPending, result.Request.Status)
	})

	t.Run("IssuesCredentialForNewCustomers", func(t *testing.T) {
		rr := new(MockRechargeRepo)
		tr := new(MockTokenRepo)

		tr.On("Create", mock.Anything, mock.MatchedBy(func(cred string) bool {
			return len(cred) == 12
		}), decimal.Zero).Return(&token.Token{ID: "t9"}, nil)
		rr.On("Create", mock.Anything, mock.MatchedBy(func(p CreateParams) bool {
			return p.TokenID == "t9"
		})).Return(&RechargeRequest{ID: "r2", TokenID: "t9", Status: StatusPending}, nil)

		result, err := NewService(rr, tr, nil).Submit(ctx, SubmitRequest{Amount: "10.00"}, nil)
		require.NoError(t, err)
		require.NotNil(t, result.NewCredential)
		assert.Len(t, *result.NewCredential, 12)
		tr.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
	})

	t.Run("RejectsNonPositiveAmount", func(t *testing.T) {
		rr := new(MockRechargeRepo)
		tr := new(MockTokenRepo)

		_, err := NewService(rr, tr, nil).Submit(ctx, SubmitRequest{Amount: "0"}, nil)
		assert.ErrorIs(t, err, ErrInvalidAmount)

		_, err = NewService(rr, tr, nil).Submit(ctx, SubmitRequest{Amount: "not a number"}, nil)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("UnknownTokenFails", func(t *testing.T) {
		rr := new(MockRechargeRepo)
		tr := new(MockTokenRepo)

		tr.On("Resolve", mock.Anything, "NOPE").Return(nil, token.ErrTokenNotFound)

		_, err := NewService(rr, tr, nil).Submit(ctx, SubmitRequest{Token: "NOPE", Amount: "10.00"}, nil)
		assert.ErrorIs(t, err, token.ErrTokenNotFound)
		rr.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}
