package catalog

import "context"

type Repository interface {
	ListActiveProducts(ctx context.Context) ([]Product, error)
	ListActiveOptions(ctx context.Context, productID string) ([]OptionWithStock, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	GetOption(ctx context.Context, id string) (*ProductOption, error)
	AvailableCount(ctx context.Context, optionID string) (int, error)

	CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error)
	UpdateProduct(ctx context.Context, id string, req UpdateProductRequest) (*Product, error)
	DeleteProduct(ctx context.Context, id string) error
	ListProducts(ctx context.Context) ([]Product, error)

	CreateOption(ctx context.Context, productID string, req CreateOptionRequest) (*ProductOption, error)
	UpdateOption(ctx context.Context, id string, req UpdateOptionRequest) (*ProductOption, error)
	DeleteOption(ctx context.Context, id string) error

	AddStock(ctx context.Context, optionID string, contents []string) (int, error)
	ListStock(ctx context.Context, optionID string) ([]StockItem, error)
	DeleteStockItem(ctx context.Context, id string) error
}
