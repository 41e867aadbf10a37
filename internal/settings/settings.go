package settings

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrSettingNotFound = errors.New("setting not found")

// publicKeys are the settings the storefront may read without auth.
var publicKeys = map[string]bool{
	"dollar_rate":      true,
	"store_name":       true,
	"support_contact":  true,
	"announcement":     true,
	"maintenance_mode": true,
}

func IsPublicKey(key string) bool {
	return publicKeys[key]
}

type Setting struct {
	Key       string    `db:"key" json:"key"`
	Value     string    `db:"value" json:"value"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type UpsertRequest struct {
	Value string `json:"value" binding:"required"`
}

type Repository interface {
	Get(ctx context.Context, key string) (*Setting, error)
	List(ctx context.Context) ([]Setting, error)
	Upsert(ctx context.Context, key, value string) (*Setting, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context, key string) (*Setting, error) {
	var s Setting
	err := r.db.GetContext(ctx, &s,
		`SELECT key, value, updated_at FROM settings WHERE key = $1`, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSettingNotFound
		}
		return nil, err
	}

	return &s, nil
}

func (r *repository) List(ctx context.Context) ([]Setting, error) {
	var settings []Setting
	err := r.db.SelectContext(ctx, &settings,
		`SELECT key, value, updated_at FROM settings ORDER BY key`)
	if err != nil {
		return nil, err
	}

	return settings, nil
}

func (r *repository) Upsert(ctx context.Context, key, value string) (*Setting, error) {
	var s Setting
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO settings (key, value)
		 VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
		 RETURNING key, value, updated_at`,
		key, value,
	).StructScan(&s)
	if err != nil {
		return nil, err
	}

	return &s, nil
}
