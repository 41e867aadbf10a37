package order

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"boompay/internal/catalog"
	"boompay/internal/token"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func setupOrderMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

var (
	lockBalanceSQL  = regexp.QuoteMeta("SELECT balance FROM tokens WHERE id = $1 FOR UPDATE")
	writeBalanceSQL = regexp.QuoteMeta("UPDATE tokens SET balance = $1, updated_at = NOW() WHERE id = $2")
	selectStockSQL  = regexp.QuoteMeta("SELECT id, content FROM stock_items WHERE product_option_id = $1 AND is_sold = false ORDER BY created_at, id LIMIT $2 FOR UPDATE SKIP LOCKED")
	updateStockSQL  = regexp.QuoteMeta("UPDATE stock_items SET is_sold = true, sold_at = NOW(), sold_to_order_id = $1 WHERE id = ANY($2) AND is_sold = false")
)

func orderRow(id, status string, total, discount string, stockContent *string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "order_number", "token_id", "product_id", "product_option_id", "quantity",
		"total_price", "discount_amount", "coupon_code", "status", "verification_link",
		"email", "password", "text_value", "stock_content", "response_message",
		"created_at", "updated_at",
	})
	rows.AddRow(id, "BP-TESTREF", "t1", "p1", "opt1", 2,
		total, discount, nil, status, nil,
		nil, nil, nil, stockContent, nil,
		time.Now(), time.Now())
	return rows
}

func TestPurchaseAuto(t *testing.T) {
	repo, mock, close := setupOrderMock(t)
	defer close()

	ctx := context.Background()

	params := PurchaseParams{
		TokenID:         "t1",
		ProductID:       "p1",
		ProductOptionID: "opt1",
		Quantity:        2,
		TotalPrice:      decimal.RequireFromString("40.00"),
		DiscountAmount:  decimal.Zero,
	}

	t.Run("DebitsDrawsAndCompletesInOneTx", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(lockBalanceSQL).
			WithArgs("t1").
			WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("50.00"))
		mock.ExpectExec(writeBalanceSQL).
			WithArgs(decimal.RequireFromString("10.00"), "t1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(selectStockSQL).
			WithArgs("opt1", 2).
			WillReturnRows(sqlmock.NewRows([]string{"id", "content"}).
				AddRow("s1", "item1").
				AddRow("s2", "item2"))
		mock.ExpectExec(updateStockSQL).
			WithArgs(sqlmock.AnyArg(), pq.Array([]string{"s1", "s2"})).
			WillReturnResult(sqlmock.NewResult(0, 2))
		content := "item1\nitem2"
		mock.ExpectQuery("INSERT INTO orders").
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "t1", "p1", "opt1",
				2, params.TotalPrice, decimal.Zero, nil, content).
			WillReturnRows(orderRow("o1", StatusCompleted, "40.00", "0", &content))
		mock.ExpectCommit()

		o, err := repo.PurchaseAuto(ctx, params)
		require.NoError(t, err)
		require.Equal(t, StatusCompleted, o.Status)
		require.Equal(t, "item1\nitem2", *o.StockContent)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("InsufficientBalanceWritesNothing", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(lockBalanceSQL).
			WithArgs("t1").
			WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("39.99"))
		mock.ExpectRollback()

		_, err := repo.PurchaseAuto(ctx, params)
		require.ErrorIs(t, err, token.ErrInsufficientBalance)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("InsufficientStockRollsBackTheDebit", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(lockBalanceSQL).
			WithArgs("t1").
			WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("50.00"))
		mock.ExpectExec(writeBalanceSQL).
			WithArgs(decimal.RequireFromString("10.00"), "t1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(selectStockSQL).
			WithArgs("opt1", 2).
			WillReturnRows(sqlmock.NewRows([]string{"id", "content"}).
				AddRow("s1", "item1"))
		mock.ExpectRollback()

		_, err := repo.PurchaseAuto(ctx, params)
		require.ErrorIs(t, err, catalog.ErrInsufficientStock)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RedeemsCouponInSameTx", func(t *testing.T) {
		code := "SALE10"
		withCoupon := params
		withCoupon.CouponCode = &code
		withCoupon.TotalPrice = decimal.RequireFromString("36.00")
		withCoupon.DiscountAmount = decimal.RequireFromString("4.00")

		mock.ExpectBegin()
		mock.ExpectQuery(lockBalanceSQL).
			WithArgs("t1").
			WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("50.00"))
		mock.ExpectExec(writeBalanceSQL).
			WithArgs(decimal.RequireFromString("14.00"), "t1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(selectStockSQL).
			WithArgs("opt1", 2).
			WillReturnRows(sqlmock.NewRows([]string{"id", "content"}).
				AddRow("s1", "item1").
				AddRow("s2", "item2"))
		mock.ExpectExec(updateStockSQL).
			WithArgs(sqlmock.AnyArg(), pq.Array([]string{"s1", "s2"})).
			WillReturnResult(sqlmock.NewResult(0, 2))
		content := "item1\nitem2"
		mock.ExpectQuery("INSERT INTO orders").
			WillReturnRows(orderRow("o2", StatusCompleted, "36.00", "4.00", &content))
		mock.ExpectExec("UPDATE coupons").
			WithArgs(code).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		o, err := repo.PurchaseAuto(ctx, withCoupon)
		require.NoError(t, err)
		require.Equal(t, StatusCompleted, o.Status)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPurchaseManual(t *testing.T) {
	repo, mock, close := setupOrderMock(t)
	defer close()

	ctx := context.Background()

	link := "https://example.com/profile"
	params := PurchaseParams{
		TokenID:          "t1",
		ProductID:        "p1",
		ProductOptionID:  "opt1",
		Quantity:         1,
		TotalPrice:       decimal.RequireFromString("15.00"),
		DiscountAmount:   decimal.Zero,
		VerificationLink: &link,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(lockBalanceSQL).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("20.00"))
	mock.ExpectExec(writeBalanceSQL).
		WithArgs(decimal.RequireFromString("5.00"), "t1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "t1", "p1", "opt1",
			1, params.TotalPrice, decimal.Zero, nil, &link, nil, nil, nil).
		WillReturnRows(orderRow("o3", StatusPending, "15.00", "0", nil))
	mock.ExpectCommit()

	o, err := repo.PurchaseManual(ctx, params)
	require.NoError(t, err)
	require.Equal(t, StatusPending, o.Status)
	require.Nil(t, o.StockContent)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancel(t *testing.T) {
	repo, mock, close := setupOrderMock(t)
	defer close()

	ctx := context.Background()

	cancelSQL := regexp.QuoteMeta("UPDATE orders SET status = 'cancelled', updated_at = NOW() WHERE id = $1 AND token_id = $2 AND status = 'pending' RETURNING total_price")
	probeSQL := regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1 AND token_id = $2)")

	t.Run("RefundsPendingOrder", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(cancelSQL).
			WithArgs("o1", "t1").
			WillReturnRows(sqlmock.NewRows([]string{"total_price"}).AddRow("15.00"))
		mock.ExpectQuery(lockBalanceSQL).
			WithArgs("t1").
			WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("5.00"))
		mock.ExpectExec(writeBalanceSQL).
			WithArgs(decimal.RequireFromString("20.00"), "t1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		refunded, err := repo.Cancel(ctx, "o1", "t1")
		require.NoError(t, err)
		require.True(t, refunded.Equal(decimal.RequireFromString("15.00")))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("LosingRacerGetsCannotCancel", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(cancelSQL).
			WithArgs("o1", "t1").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(probeSQL).
			WithArgs("o1", "t1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectRollback()

		_, err := repo.Cancel(ctx, "o1", "t1")
		require.ErrorIs(t, err, ErrCannotCancel)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UnknownOrForeignOrder", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(cancelSQL).
			WithArgs("o9", "t1").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(probeSQL).
			WithArgs("o9", "t1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectRollback()

		_, err := repo.Cancel(ctx, "o9", "t1")
		require.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestReject(t *testing.T) {
	repo, mock, close := setupOrderMock(t)
	defer close()

	ctx := context.Background()

	rejectSQL := regexp.QuoteMeta("UPDATE orders SET status = 'rejected', response_message = $2, updated_at = NOW() WHERE id = $1 AND status IN ('pending', 'in_progress') RETURNING token_id, total_price")

	t.Run("RefundsTheCustomer", func(t *testing.T) {
		note := "cannot fulfill"
		mock.ExpectBegin()
		mock.ExpectQuery(rejectSQL).
			WithArgs("o1", &note).
			WillReturnRows(sqlmock.NewRows([]string{"token_id", "total_price"}).AddRow("t1", "15.00"))
		mock.ExpectQuery(lockBalanceSQL).
			WithArgs("t1").
			WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("0"))
		mock.ExpectExec(writeBalanceSQL).
			WithArgs(decimal.RequireFromString("15.00"), "t1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		refunded, err := repo.Reject(ctx, "o1", &note)
		require.NoError(t, err)
		require.True(t, refunded.Equal(decimal.RequireFromString("15.00")))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("TerminalOrderRejectsTransition", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(rejectSQL).
			WithArgs("o1", nil).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)")).
			WithArgs("o1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectRollback()

		var noNote *string
		_, err := repo.Reject(ctx, "o1", noNote)
		require.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestMarkInProgress(t *testing.T) {
	repo, mock, close := setupOrderMock(t)
	defer close()

	ctx := context.Background()

	inProgressSQL := regexp.QuoteMeta("UPDATE orders SET status = 'in_progress', updated_at = NOW() WHERE id = $1 AND status = 'pending'")

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(inProgressSQL).
			WithArgs("o1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.MarkInProgress(ctx, "o1"))
	})

	t.Run("AlreadyMoved", func(t *testing.T) {
		mock.ExpectExec(inProgressSQL).
			WithArgs("o1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)")).
			WithArgs("o1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		require.ErrorIs(t, repo.MarkInProgress(ctx, "o1"), ErrInvalidTransition)
	})
}
