package repository

import (
	"context"
	"time"

	"github.com/gb112302/agriconnect/internal/domain/entity"
)

type ProductCache interface {
	Get(ctx context.Context, productID string) (*entity.Product, error)
	Set(ctx context.Context, productID string, product *entity.Product, ttl time.Duration) error
	Delete(ctx context.Context, productID string) error
}
