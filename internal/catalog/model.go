package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Fulfillment types for product options. "none" is auto-delivery backed by
// the stock pool; the other three require the customer to submit data at
// order time and staff to fulfill manually.
const (
	FulfillmentNone          = "none"
	FulfillmentLink          = "link"
	FulfillmentEmailPassword = "email_password"
	FulfillmentText          = "text"
)

func ValidFulfillmentType(t string) bool {
	switch t {
	case FulfillmentNone, FulfillmentLink, FulfillmentEmailPassword, FulfillmentText:
		return true
	}
	return false
}

type Product struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	ImageURL    *string   `db:"image_url" json:"image_url,omitempty"`
	Category    *string   `db:"category" json:"category,omitempty"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	SortOrder   int       `db:"sort_order" json:"sort_order"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type ProductOption struct {
	ID            string          `db:"id" json:"id"`
	ProductID     string          `db:"product_id" json:"product_id"`
	Name          string          `db:"name" json:"name"`
	Price         decimal.Decimal `db:"price" json:"price"`
	Type          string          `db:"type" json:"type"`
	EstimatedTime *string         `db:"estimated_time" json:"estimated_time,omitempty"`
	IsActive      bool            `db:"is_active" json:"is_active"`
	SortOrder     int             `db:"sort_order" json:"sort_order"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// IsAuto reports whether the option delivers from the stock pool with no
// staff action.
func (o ProductOption) IsAuto() bool {
	return o.Type == FulfillmentNone
}

type StockItem struct {
	ID              string     `db:"id" json:"id"`
	ProductOptionID string     `db:"product_option_id" json:"product_option_id"`
	Content         string     `db:"content" json:"content"`
	IsSold          bool       `db:"is_sold" json:"is_sold"`
	SoldAt          *time.Time `db:"sold_at" json:"sold_at,omitempty"`
	SoldToOrderID   *string    `db:"sold_to_order_id" json:"sold_to_order_id,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}

// OptionWithStock is the public catalog view: an option plus how many unsold
// items back it right now.
type OptionWithStock struct {
	ProductOption
	Available int `db:"available" json:"available"`
}

type ProductWithOptions struct {
	Product
	Options []OptionWithStock `json:"options"`
}

type CreateProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	Category    *string `json:"category"`
	SortOrder   int     `json:"sort_order"`
}

type UpdateProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	Category    *string `json:"category"`
	IsActive    bool    `json:"is_active"`
	SortOrder   int     `json:"sort_order"`
}

type CreateOptionRequest struct {
	Name          string          `json:"name" binding:"required"`
	Price         decimal.Decimal `json:"price"`
	Type          string          `json:"type"`
	EstimatedTime *string         `json:"estimated_time"`
	SortOrder     int             `json:"sort_order"`
}

type UpdateOptionRequest struct {
	Name          string          `json:"name" binding:"required"`
	Price         decimal.Decimal `json:"price"`
	Type          string          `json:"type"`
	EstimatedTime *string         `json:"estimated_time"`
	IsActive      bool            `json:"is_active"`
	SortOrder     int             `json:"sort_order"`
}

type AddStockRequest struct {
	// One stock item per line; blank lines are skipped.
	Content string `json:"content" binding:"required"`
}
