package news

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupNewsMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func newsRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "content", "is_active", "created_at"})
}

func TestListActive(t *testing.T) {
	repo, mock, close := setupNewsMock(t)
	defer close()

	t.Run("OnlyActiveNewestFirstCapped", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(
			"SELECT id, title, content, is_active, created_at FROM news WHERE is_active = true ORDER BY created_at DESC LIMIT $1")).
			WithArgs(publicListLimit).
			WillReturnRows(newsRows().
				AddRow("n2", "maintenance window", "store pauses at midnight", true, time.Now()).
				AddRow("n1", "new stock", "gift cards restocked", true, time.Now().Add(-time.Hour)))

		items, err := repo.ListActive(context.Background())
		require.NoError(t, err)
		require.Len(t, items, 2)
		require.Equal(t, "n2", items[0].ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCreateAndUpdate(t *testing.T) {
	repo, mock, close := setupNewsMock(t)
	defer close()

	ctx := context.Background()

	t.Run("CreateReturnsTheRow", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(
			"INSERT INTO news (title, content) VALUES ($1, $2) RETURNING id, title, content, is_active, created_at")).
			WithArgs("launch", "boompay is live").
			WillReturnRows(newsRows().AddRow("n1", "launch", "boompay is live", true, time.Now()))

		item, err := repo.Create(ctx, NewsRequest{Title: "launch", Content: "boompay is live"})
		require.NoError(t, err)
		require.Equal(t, "n1", item.ID)
		require.True(t, item.IsActive)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UpdateUnknownIDIsNotFound", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(
			"UPDATE news SET title = $2, content = $3 WHERE id = $1 RETURNING id, title, content, is_active, created_at")).
			WithArgs("missing", "x", "y").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.Update(ctx, "missing", NewsRequest{Title: "x", Content: "y"})
		require.ErrorIs(t, err, ErrNewsNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSetActive(t *testing.T) {
	repo, mock, close := setupNewsMock(t)
	defer close()

	t.Run("HidesAnItem", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(
			"UPDATE news SET is_active = $2 WHERE id = $1 RETURNING id, title, content, is_active, created_at")).
			WithArgs("n1", false).
			WillReturnRows(newsRows().AddRow("n1", "launch", "boompay is live", false, time.Now()))

		item, err := repo.SetActive(context.Background(), "n1", false)
		require.NoError(t, err)
		require.False(t, item.IsActive)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeleteNews(t *testing.T) {
	repo, mock, close := setupNewsMock(t)
	defer close()

	ctx := context.Background()

	t.Run("DeletesExisting", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM news WHERE id = $1")).
			WithArgs("n1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Delete(ctx, "n1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UnknownIDIsNotFound", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM news WHERE id = $1")).
			WithArgs("missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		require.ErrorIs(t, repo.Delete(ctx, "missing"), ErrNewsNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
