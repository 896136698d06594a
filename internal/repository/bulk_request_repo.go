package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gb112302/agriconnect/internal/domain/entity"
)

type BulkRequestRepository interface {
	Create(ctx context.Context, request *entity.BulkRequest) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.BulkRequest, error)
	Update(ctx context.Context, request *entity.BulkRequest) error
	ListByBuyer(ctx context.Context, buyerID primitive.ObjectID) ([]entity.BulkRequest, error)
	ListByProducts(ctx context.Context, productIDs []primitive.ObjectID) ([]entity.BulkRequest, error)
}
