package admin

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrAdminNotFound = errors.New("admin user not found")
	ErrEmailTaken    = errors.New("email already registered")
)

type Repository interface {
	FindByEmail(ctx context.Context, email string) (*AdminUser, error)
	FindByID(ctx context.Context, id string) (*AdminUser, error)
	List(ctx context.Context) ([]AdminUser, error)
	Create(ctx context.Context, email, passwordHash, role string, permissions []string) (*AdminUser, error)
	Delete(ctx context.Context, id string) error

	Permissions(ctx context.Context, adminID string) ([]string, error)
	SetPermissions(ctx context.Context, adminID string, permissions []string) error
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*AdminUser, error) {
	var u AdminUser
	err := r.db.GetContext(ctx, &u,
		`SELECT id, email, password_hash, role, created_at
		 FROM admin_users
		 WHERE email = $1`,
		email,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}

	return &u, nil
}

func (r *repository) FindByID(ctx context.Context, id string) (*AdminUser, error) {
	var u AdminUser
	err := r.db.GetContext(ctx, &u,
		`SELECT id, email, password_hash, role, created_at
		 FROM admin_users
		 WHERE id = $1`,
		id,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}

	return &u, nil
}

func (r *repository) List(ctx context.Context) ([]AdminUser, error) {
	var users []AdminUser
	err := r.db.SelectContext(ctx, &users,
		`SELECT id, email, password_hash, role, created_at
		 FROM admin_users
		 ORDER BY created_at`,
	)
	if err != nil {
		return nil, err
	}

	return users, nil
}

func (r *repository) Create(ctx context.Context, email, passwordHash, role string, permissions []string) (*AdminUser, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var u AdminUser
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO admin_users (email, password_hash, role)
		 VALUES ($1, $2, $3)
		 RETURNING id, email, password_hash, role, created_at`,
		email, passwordHash, role,
	).StructScan(&u)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	for _, p := range permissions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO admin_permissions (admin_id, permission) VALUES ($1, $2)`,
			u.ID, p,
		); err != nil {
			return nil, err
		}
	}

	return &u, tx.Commit()
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM admin_users WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrAdminNotFound
	}

	return nil
}

func (r *repository) Permissions(ctx context.Context, adminID string) ([]string, error) {
	var permissions []string
	err := r.db.SelectContext(ctx, &permissions,
		`SELECT permission FROM admin_permissions WHERE admin_id = $1 ORDER BY permission`,
		adminID,
	)
	if err != nil {
		return nil, err
	}

	return permissions, nil
}

func (r *repository) SetPermissions(ctx context.Context, adminID string, permissions []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM admin_permissions WHERE admin_id = $1`, adminID,
	); err != nil {
		return err
	}

	for _, p := range permissions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO admin_permissions (admin_id, permission) VALUES ($1, $2)`,
			adminID, p,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}
