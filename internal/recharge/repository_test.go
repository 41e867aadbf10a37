package recharge

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func setupRechargeMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func rechargeRow(id, tokenID, amount, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "token_id", "amount", "payment_method_id", "proof_image_url",
		"sender_name", "sender_phone", "transaction_reference", "status",
		"admin_note", "processed_at", "created_at",
	}).AddRow(id, tokenID, amount, nil, nil, nil, nil, nil, status, nil, time.Now(), time.Now())
}

var approveSQL = regexp.QuoteMeta("UPDATE recharge_requests SET status = 'approved', admin_note = $2, processed_at = NOW() WHERE id = $1 AND status = 'pending' RETURNING id, token_id, amount, payment_method_id, proof_image_url, sender_name, sender_phone, transaction_reference, status, admin_note, processed_at, created_at")

func TestApprove(t *testing.T) {
	repo, mock, close := setupRechargeMock(t)
	defer close()

	ctx := context.Background()

	t.Run("CreditsTheTokenOnce", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(approveSQL).
			WithArgs("r1", nil).
			WillReturnRows(rechargeRow("r1", "t1", "25.00", StatusApproved))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT balance FROM tokens WHERE id = $1 FOR UPDATE")).
			WithArgs("t1").
			WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("10.00"))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE tokens SET balance = $1, updated_at = NOW() WHERE id = $2")).
			WithArgs(decimal.RequireFromString("35.00"), "t1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		req, err := repo.Approve(ctx, "r1", nil)
		require.NoError(t, err)
		require.Equal(t, StatusApproved, req.Status)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("SecondApprovalCreditsNothing", func(t *testing.T) {
		// The status predicate lost, so the balance is never touched.
		mock.ExpectBegin()
		mock.ExpectQuery(approveSQL).
			WithArgs("r1", nil).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM recharge_requests WHERE id = $1)")).
			WithArgs("r1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectRollback()

		_, err := repo.Approve(ctx, "r1", nil)
		require.ErrorIs(t, err, ErrAlreadyProcessed)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UnknownRequest", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(approveSQL).
			WithArgs("missing", nil).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM recharge_requests WHERE id = $1)")).
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectRollback()

		_, err := repo.Approve(ctx, "missing", nil)
		require.ErrorIs(t, err, ErrRechargeNotFound)
	})
}

func TestReject(t *testing.T) {
	repo, mock, close := setupRechargeMock(t)
	defer close()

	ctx := context.Background()

	note := "proof image unreadable"
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE recharge_requests SET status = 'rejected', admin_note = $2, processed_at = NOW() WHERE id = $1 AND status = 'pending'")).
		WithArgs("r2", &note).
		WillReturnRows(rechargeRow("r2", "t1", "25.00", StatusRejected))
	mock.ExpectCommit()

	req, err := repo.Reject(ctx, "r2", &note)
	require.NoError(t, err)
	require.Equal(t, StatusRejected, req.Status)
}

func TestCreate(t *testing.T) {
	repo, mock, close := setupRechargeMock(t)
	defer close()

	proof := "/uploads/abc.png"
	mock.ExpectQuery("INSERT INTO recharge_requests").
		WithArgs("t1", decimal.RequireFromString("25.00"), nil, &proof, nil, nil, nil).
		WillReturnRows(rechargeRow("r1", "t1", "25.00", StatusPending))

	req, err := repo.Create(context.Background(), CreateParams{
		TokenID:       "t1",
		Amount:        decimal.RequireFromString("25.00"),
		ProofImageURL: &proof,
	})
	require.NoError(t, err)
	require.Equal(t, StatusPending, req.Status)
}
