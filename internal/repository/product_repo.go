package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gb112302/agriconnect/internal/domain/entity"
)

// Sort keys accepted by ListProductsParams.SortBy.
const (
	SortNewest     = "newest"
	SortPriceAsc   = "price_asc"
	SortPriceDesc  = "price_desc"
	SortRating     = "rating"
	SortPopularity = "popularity"
)

type ListProductsParams struct {
	Category      entity.Category
	FarmerID      primitive.ObjectID
	Search        string
	State         string
	District      string
	MinPrice      float64
	MaxPrice      float64
	MinRating     float64
	OnlyAvailable bool
	SortBy        string
	Page          int
	PageSize      int
}

type ListProductsResult struct {
	Products   []entity.Product
	TotalCount int64
	Page       int
	PageSize   int
	TotalPages int
}

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Product, error)
	GetManyByIDs(ctx context.Context, ids []primitive.ObjectID) ([]entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, params ListProductsParams) (*ListProductsResult, error)
	Count(ctx context.Context) (int64, error)

	// DecrementStock atomically subtracts quantity from the product's stock,
	// but only if enough units remain. It returns InsufficientStockError when
	// the conditional update matched no document.
	DecrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error
	// IncrementStock adds quantity back, used to roll back a failed checkout
	// and to restore stock on cancellation.
	IncrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error

	// SetRating overwrites the derived rating aggregates on the product.
	SetRating(ctx context.Context, id primitive.ObjectID, average float64, count int64) error
	IncrementOrderCount(ctx context.Context, id primitive.ObjectID, delta int) error
}
