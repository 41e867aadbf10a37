package catalog

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func setupCatalogMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	closer := func() { sqlxDB.Close() }
	return sqlxDB, mock, closer
}

func TestAvailableCount(t *testing.T) {
	db, mock, close := setupCatalogMock(t)
	defer close()

	repo := NewRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM stock_items WHERE product_option_id = $1 AND is_sold = false")).
		WithArgs("opt1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.AvailableCount(ctx, "opt1")
	require.NoError(t, err)
	require.Equal(t, 3, count)
}

func TestListActiveProducts(t *testing.T) {
	db, mock, close := setupCatalogMock(t)
	defer close()

	repo := NewRepository(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT id, name, description, image_url, category, is_active, sort_order, created_at, updated_at FROM products").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "image_url", "category", "is_active", "sort_order", "created_at", "updated_at"}).
			AddRow("p1", "Game Keys", nil, nil, "games", true, 1, time.Now(), time.Now()).
			AddRow("p2", "Gift Cards", nil, nil, "cards", true, 2, time.Now(), time.Now()))

	products, err := repo.ListActiveProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	require.Equal(t, "Game Keys", products[0].Name)
}

func TestReserveAndConsumeTx(t *testing.T) {
	db, mock, close := setupCatalogMock(t)
	defer close()

	ctx := context.Background()

	selectStock := regexp.QuoteMeta("SELECT id, content FROM stock_items WHERE product_option_id = $1 AND is_sold = false ORDER BY created_at, id LIMIT $2 FOR UPDATE SKIP LOCKED")
	updateStock := regexp.QuoteMeta("UPDATE stock_items SET is_sold = true, sold_at = NOW(), sold_to_order_id = $1 WHERE id = ANY($2) AND is_sold = false")

	t.Run("DrawsOldestFirstAndMarksSold", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(selectStock).
			WithArgs("opt1", 2).
			WillReturnRows(sqlmock.NewRows([]string{"id", "content"}).
				AddRow("s1", "KEY-AAA").
				AddRow("s2", "KEY-BBB"))
		mock.ExpectExec(updateStock).
			WithArgs("ord1", pq.Array([]string{"s1", "s2"})).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		tx, err := db.BeginTxx(ctx, nil)
		require.NoError(t, err)

		contents, err := ReserveAndConsumeTx(ctx, tx, "opt1", "ord1", 2)
		require.NoError(t, err)
		require.Equal(t, []string{"KEY-AAA", "KEY-BBB"}, contents)

		require.NoError(t, tx.Commit())
	})

	t.Run("FailsWholeWhenShort", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(selectStock).
			WithArgs("opt1", 3).
			WillReturnRows(sqlmock.NewRows([]string{"id", "content"}).
				AddRow("s3", "KEY-CCC"))
		mock.ExpectRollback()

		tx, err := db.BeginTxx(ctx, nil)
		require.NoError(t, err)

		_, err = ReserveAndConsumeTx(ctx, tx, "opt1", "ord1", 3)
		require.ErrorIs(t, err, ErrInsufficientStock)

		require.NoError(t, tx.Rollback())
	})

	t.Run("FailsWhenRowVanishesUnderLock", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(selectStock).
			WithArgs("opt1", 1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "content"}).
				AddRow("s4", "KEY-DDD"))
		mock.ExpectExec(updateStock).
			WithArgs("ord2", pq.Array([]string{"s4"})).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		tx, err := db.BeginTxx(ctx, nil)
		require.NoError(t, err)

		_, err = ReserveAndConsumeTx(ctx, tx, "opt1", "ord2", 1)
		require.ErrorIs(t, err, ErrInsufficientStock)

		require.NoError(t, tx.Rollback())
	})
}

func TestDeleteStockItem(t *testing.T) {
	db, mock, close := setupCatalogMock(t)
	defer close()

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("UnsoldDeletes", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM stock_items WHERE id = $1 AND is_sold = false")).
			WithArgs("s1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.DeleteStockItem(ctx, "s1"))
	})

	t.Run("SoldRefuses", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM stock_items WHERE id = $1 AND is_sold = false")).
			WithArgs("s2").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM stock_items WHERE id = $1)")).
			WithArgs("s2").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		require.ErrorIs(t, repo.DeleteStockItem(ctx, "s2"), ErrStockItemSold)
	})

	t.Run("UnknownIDIsNotFound", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM stock_items WHERE id = $1 AND is_sold = false")).
			WithArgs("missing").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM stock_items WHERE id = $1)")).
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		require.ErrorIs(t, repo.DeleteStockItem(ctx, "missing"), ErrStockItemNotFound)
	})
}

func TestValidFulfillmentType(t *testing.T) {
	require.True(t, ValidFulfillmentType(FulfillmentNone))
	require.True(t, ValidFulfillmentType(FulfillmentLink))
	require.True(t, ValidFulfillmentType(FulfillmentEmailPassword))
	require.True(t, ValidFulfillmentType(FulfillmentText))
	require.False(t, ValidFulfillmentType("carrier_pigeon"))
	require.False(t, ValidFulfillmentType(""))
}
