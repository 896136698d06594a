package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gb112302/agriconnect/internal/domain/entity"
)

// RatingSummary is the result of aggregating all reviews of one product.
type RatingSummary struct {
	Average float64
	Count   int64
}

type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Review, error)
	Update(ctx context.Context, review *entity.Review) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	ListByProduct(ctx context.Context, productID primitive.ObjectID, page, pageSize int) ([]entity.Review, int64, error)
	ListByFarmer(ctx context.Context, farmerID primitive.ObjectID, page, pageSize int) ([]entity.Review, int64, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID, page, pageSize int) ([]entity.Review, int64, error)
	// ListFlagged returns reviews at or below the given rating, worst first.
	ListFlagged(ctx context.Context, maxRating, page, pageSize int) ([]entity.Review, int64, error)
	// AggregateProductRating recomputes the average and count over the
	// product's reviews. A product with no reviews yields {0, 0}.
	AggregateProductRating(ctx context.Context, productID primitive.ObjectID) (*RatingSummary, error)
}
