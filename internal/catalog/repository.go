package catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrOptionNotFound    = errors.New("product option not found")
	ErrStockItemNotFound = errors.New("stock item not found")
	ErrStockItemSold     = errors.New("stock item already sold")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListActiveProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	err := r.db.SelectContext(ctx, &products,
		`SELECT id, name, description, image_url, category, is_active, sort_order, created_at, updated_at
		 FROM products
		 WHERE is_active = true
		 ORDER BY sort_order, created_at`,
	)
	if err != nil {
		return nil, err
	}

	return products, nil
}

func (r *repository) ListActiveOptions(ctx context.Context, productID string) ([]OptionWithStock, error) {
	var options []OptionWithStock
	err := r.db.SelectContext(ctx, &options,
		`SELECT
			o.id, o.product_id, o.name, o.price, o.type, o.estimated_time,
			o.is_active, o.sort_order, o.created_at,
			COUNT(s.id) FILTER (WHERE s.is_sold = false) AS available
		 FROM product_options o
		 LEFT JOIN stock_items s ON s.product_option_id = o.id
		 WHERE o.product_id = $1 AND o.is_active = true
		 GROUP BY o.id
		 ORDER BY o.sort_order, o.created_at`,
		productID,
	)
	if err != nil {
		return nil, err
	}

	return options, nil
}

func (r *repository) GetProduct(ctx context.Context, id string) (*Product, error) {
	var p Product
	err := r.db.GetContext(ctx, &p,
		`SELECT id, name, description, image_url, category, is_active, sort_order, created_at, updated_at
		 FROM products
		 WHERE id = $1`,
		id,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	return &p, nil
}

func (r *repository) GetOption(ctx context.Context, id string) (*ProductOption, error) {
	var o ProductOption
	err := r.db.GetContext(ctx, &o,
		`SELECT id, product_id, name, price, type, estimated_time, is_active, sort_order, created_at
		 FROM product_options
		 WHERE id = $1`,
		id,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOptionNotFound
		}
		return nil, err
	}

	return &o, nil
}

func (r *repository) AvailableCount(ctx context.Context, optionID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*)
		 FROM stock_items
		 WHERE product_option_id = $1 AND is_sold = false`,
		optionID,
	)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *repository) CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error) {
	var p Product
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO products (name, description, image_url, category, sort_order)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, name, description, image_url, category, is_active, sort_order, created_at, updated_at`,
		req.Name, req.Description, req.ImageURL, req.Category, req.SortOrder,
	).StructScan(&p)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *repository) UpdateProduct(ctx context.Context, id string, req UpdateProductRequest) (*Product, error) {
	var p Product
	err := r.db.QueryRowxContext(ctx,
		`UPDATE products
		 SET name = $1, description = $2, image_url = $3, category = $4,
		     is_active = $5, sort_order = $6, updated_at = NOW()
		 WHERE id = $7
		 RETURNING id, name, description, image_url, category, is_active, sort_order, created_at, updated_at`,
		req.Name, req.Description, req.ImageURL, req.Category, req.IsActive, req.SortOrder, id,
	).StructScan(&p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	return &p, nil
}

func (r *repository) DeleteProduct(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

func (r *repository) ListProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	err := r.db.SelectContext(ctx, &products,
		`SELECT id, name, description, image_url, category, is_active, sort_order, created_at, updated_at
		 FROM products
		 ORDER BY sort_order, created_at`,
	)
	if err != nil {
		return nil, err
	}

	return products, nil
}

func (r *repository) CreateOption(ctx context.Context, productID string, req CreateOptionRequest) (*ProductOption, error) {
	optType := req.Type
	if optType == "" {
		optType = FulfillmentNone
	}

	var o ProductOption
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO product_options (product_id, name, price, type, estimated_time, sort_order)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, product_id, name, price, type, estimated_time, is_active, sort_order, created_at`,
		productID, req.Name, req.Price, optType, req.EstimatedTime, req.SortOrder,
	).StructScan(&o)
	if err != nil {
		return nil, err
	}

	return &o, nil
}

func (r *repository) UpdateOption(ctx context.Context, id string, req UpdateOptionRequest) (*ProductOption, error) {
	var o ProductOption
	err := r.db.QueryRowxContext(ctx,
		`UPDATE product_options
		 SET name = $1, price = $2, type = $3, estimated_time = $4, is_active = $5, sort_order = $6
		 WHERE id = $7
		 RETURNING id, product_id, name, price, type, estimated_time, is_active, sort_order, created_at`,
		req.Name, req.Price, req.Type, req.EstimatedTime, req.IsActive, req.SortOrder, id,
	).StructScan(&o)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOptionNotFound
		}
		return nil, err
	}

	return &o, nil
}

func (r *repository) DeleteOption(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM product_options WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrOptionNotFound
	}

	return nil
}

func (r *repository) AddStock(ctx context.Context, optionID string, contents []string) (int, error) {
	if len(contents) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	inserted := 0
	for _, content := range contents {
		if content == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO stock_items (product_option_id, content) VALUES ($1, $2)`,
			optionID, content,
		); err != nil {
			return 0, err
		}
		inserted++
	}

	return inserted, tx.Commit()
}

func (r *repository) ListStock(ctx context.Context, optionID string) ([]StockItem, error) {
	var items []StockItem
	err := r.db.SelectContext(ctx, &items,
		`SELECT id, product_option_id, content, is_sold, sold_at, sold_to_order_id, created_at
		 FROM stock_items
		 WHERE product_option_id = $1
		 ORDER BY created_at, id`,
		optionID,
	)
	if err != nil {
		return nil, err
	}

	return items, nil
}

// DeleteStockItem removes an unsold item. Sold items are part of an order's
// history and stay.
func (r *repository) DeleteStockItem(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM stock_items WHERE id = $1 AND is_sold = false`,
		id,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		// The delete skips both sold and absent rows. Check which it was.
		var exists bool
		if err := r.db.GetContext(ctx, &exists,
			`SELECT EXISTS(SELECT 1 FROM stock_items WHERE id = $1)`, id); err != nil {
			return err
		}
		if !exists {
			return ErrStockItemNotFound
		}
		return ErrStockItemSold
	}

	return nil
}

// ReserveAndConsumeTx draws quantity unsold items for the option inside the
// caller's transaction, oldest first, locking the rows so two concurrent
// purchases can never receive the same item. It fails as a whole when fewer
// than quantity are available; nothing is consumed in that case.
func ReserveAndConsumeTx(ctx context.Context, tx *sqlx.Tx, optionID, orderID string, quantity int) ([]string, error) {
	rows, err := tx.QueryxContext(ctx,
		`SELECT id, content
		 FROM stock_items
		 WHERE product_option_id = $1 AND is_sold = false
		 ORDER BY created_at, id
		 LIMIT $2
		 FOR UPDATE SKIP LOCKED`,
		optionID, quantity,
	)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, quantity)
	contents := make([]string, 0, quantity)
	for rows.Next() {
		var id, content string
		if err := rows.Scan(&id, &content); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
		contents = append(contents, content)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if len(ids) < quantity {
		return nil, ErrInsufficientStock
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE stock_items
		 SET is_sold = true, sold_at = NOW(), sold_to_order_id = $1
		 WHERE id = ANY($2) AND is_sold = false`,
		orderID, pq.Array(ids),
	)
	if err != nil {
		return nil, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if int(rowsAffected) != len(ids) {
		// A locked row was sold out from under us; the tx must not commit.
		return nil, ErrInsufficientStock
	}

	return contents, nil
}
