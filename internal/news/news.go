package news

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrNewsNotFound = errors.New("news item not found")

// publicListLimit caps the storefront ticker to the freshest items.
const publicListLimit = 5

type NewsItem struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type NewsRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

type SetActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

const newsColumns = `id, title, content, is_active, created_at`

type Repository interface {
	ListActive(ctx context.Context) ([]NewsItem, error)
	ListAll(ctx context.Context) ([]NewsItem, error)
	Create(ctx context.Context, req NewsRequest) (*NewsItem, error)
	Update(ctx context.Context, id string, req NewsRequest) (*NewsItem, error)
	SetActive(ctx context.Context, id string, active bool) (*NewsItem, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListActive(ctx context.Context) ([]NewsItem, error) {
	var items []NewsItem
	err := r.db.SelectContext(ctx, &items,
		`SELECT `+newsColumns+`
		 FROM news
		 WHERE is_active = true
		 ORDER BY created_at DESC
		 LIMIT $1`,
		publicListLimit,
	)
	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *repository) ListAll(ctx context.Context) ([]NewsItem, error) {
	var items []NewsItem
	err := r.db.SelectContext(ctx, &items,
		`SELECT `+newsColumns+`
		 FROM news
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *repository) Create(ctx context.Context, req NewsRequest) (*NewsItem, error) {
	var item NewsItem
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO news (title, content)
		 VALUES ($1, $2)
		 RETURNING `+newsColumns,
		req.Title, req.Content,
	).StructScan(&item)
	if err != nil {
		return nil, err
	}

	return &item, nil
}

func (r *repository) Update(ctx context.Context, id string, req NewsRequest) (*NewsItem, error) {
	var item NewsItem
	err := r.db.QueryRowxContext(ctx,
		`UPDATE news
		 SET title = $2, content = $3
		 WHERE id = $1
		 RETURNING `+newsColumns,
		id, req.Title, req.Content,
	).StructScan(&item)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNewsNotFound
		}
		return nil, err
	}

	return &item, nil
}

func (r *repository) SetActive(ctx context.Context, id string, active bool) (*NewsItem, error) {
	var item NewsItem
	err := r.db.QueryRowxContext(ctx,
		`UPDATE news
		 SET is_active = $2
		 WHERE id = $1
		 RETURNING `+newsColumns,
		id, active,
	).StructScan(&item)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNewsNotFound
		}
		return nil, err
	}

	return &item, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM news WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNewsNotFound
	}

	return nil
}
