package dependency

import (
	"context"

	"github.com/jekabolt/grbpwr-analytics/internal/entity"
)

// Lookups return (nil, nil) when nothing matches; an error always means the
// collaborator could not answer.
type (
	Orders interface {
		// FindOrders returns orders created inside tr whose status passes filter.
		FindOrders(ctx context.Context, tr entity.TimeRange, filter entity.OrderFilter) ([]entity.Order, error)
		// CountOrders returns the number of non-cancelled orders regardless of date.
		CountOrders(ctx context.Context) (int64, error)
	}

	Products interface {
		FindProductByID(ctx context.Context, id string) (*entity.Product, error)
		// FindProductBySlug matches slug case-insensitively.
		FindProductBySlug(ctx context.Context, slug string) (*entity.Product, error)
		// FindProductBySKU matches sku case-insensitively.
		FindProductBySKU(ctx context.Context, sku string) (*entity.Product, error)
		// FindProductByName matches name case-insensitively.
		FindProductByName(ctx context.Context, name string) (*entity.Product, error)
		// FindProductByNamePattern matches name against a case-insensitive regular expression.
		FindProductByNamePattern(ctx context.Context, pattern string) (*entity.Product, error)
		CountProducts(ctx context.Context) (int64, error)
		// FindLowStockProducts returns up to limit products with stock <= threshold, lowest first.
		FindLowStockProducts(ctx context.Context, threshold int64, limit int) ([]entity.Product, error)
	}

	Categories interface {
		FindCategoryByID(ctx context.Context, id string) (*entity.Category, error)
		// FindCategoryByName matches name case-insensitively.
		FindCategoryByName(ctx context.Context, name string) (*entity.Category, error)
		CountCategories(ctx context.Context) (int64, error)
	}

	Repository interface {
		Orders() Orders
		Products() Products
		Categories() Categories
		Ping(ctx context.Context) error
		Close()
	}
)
