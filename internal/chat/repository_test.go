package chat

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupChatMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func TestListByOrder(t *testing.T) {
	repo, mock, close := setupChatMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, order_id, sender_type, message, is_read, created_at FROM order_messages WHERE order_id = $1 ORDER BY created_at, id")).
		WithArgs("o1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "sender_type", "message", "is_read", "created_at"}).
			AddRow("m1", "o1", SenderCustomer, "any update?", true, time.Now()).
			AddRow("m2", "o1", SenderAdmin, "working on it", false, time.Now()))

	messages, err := repo.ListByOrder(context.Background(), "o1")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.Equal(t, SenderCustomer, messages[0].SenderType)
	require.Equal(t, SenderAdmin, messages[1].SenderType)
}

func TestAppend(t *testing.T) {
	repo, mock, close := setupChatMock(t)
	defer close()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO order_messages (order_id, sender_type, message) VALUES ($1, $2, $3) RETURNING id, order_id, sender_type, message, is_read, created_at")).
			WithArgs("o1", SenderCustomer, "hello").
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "sender_type", "message", "is_read", "created_at"}).
				AddRow("m1", "o1", SenderCustomer, "hello", false, time.Now()))

		m, err := repo.Append(context.Background(), "o1", SenderCustomer, "hello")
		require.NoError(t, err)
		require.False(t, m.IsRead)
	})

	t.Run("RejectsUnknownSender", func(t *testing.T) {
		_, err := repo.Append(context.Background(), "o1", "bot", "hello")
		require.ErrorIs(t, err, ErrInvalidSender)
	})
}

func TestMarkRead(t *testing.T) {
	repo, mock, close := setupChatMock(t)
	defer close()

	// Only the other side's messages flip; the reader's own stay untouched.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE order_messages SET is_read = true WHERE order_id = $1 AND sender_type <> $2 AND is_read = false")).
		WithArgs("o1", SenderCustomer).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.MarkRead(context.Background(), "o1", SenderCustomer)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)
}
