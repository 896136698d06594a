package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gb112302/agriconnect/internal/domain/entity"
	"github.com/gb112302/agriconnect/internal/repository"
)

const productCacheKeyPrefix = "product_detail:"

type productCacheRepository struct {
	client *redis.Client
}

func NewProductCacheRepository(client *redis.Client) repository.ProductCache {
	return &productCacheRepository{client: client}
}

func productKey(productID string) string {
	return productCacheKeyPrefix + productID
}

func (r *productCacheRepository) Get(ctx context.Context, productID string) (*entity.Product, error) {
	val, err := r.client.Get(ctx, productKey(productID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product %s from redis: %w", productID, err)
	}

	var product entity.Product
	if err := json.Unmarshal(val, &product); err != nil {
		// A corrupted entry is dropped so the next read repopulates it.
		_ = r.Delete(ctx, productID)
		return nil, fmt.Errorf("failed to unmarshal cached product %s: %w", productID, err)
	}
	return &product, nil
}

func (r *productCacheRepository) Set(ctx context.Context, productID string, product *entity.Product, ttl time.Duration) error {
	if product == nil || productID == "" {
		return errors.New("cannot cache nil product or empty product ID")
	}

	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product %s: %w", productID, err)
	}

	if err := r.client.Set(ctx, productKey(productID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set product %s to redis: %w", productID, err)
	}
	return nil
}

func (r *productCacheRepository) Delete(ctx context.Context, productID string) error {
	if err := r.client.Del(ctx, productKey(productID)).Err(); err != nil {
		return fmt.Errorf("failed to delete product %s from redis: %w", productID, err)
	}
	return nil
}
