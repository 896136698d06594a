package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gb112302/agriconnect/internal/domain/entity"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Payment, error)
	GetByOrderID(ctx context.Context, orderID primitive.ObjectID) (*entity.Payment, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status entity.PaymentStatus, transactionID string) error
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]entity.Payment, error)
}
