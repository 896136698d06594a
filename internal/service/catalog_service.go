package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gb112302/agriconnect/internal/adapter/storage/s3"
	"github.com/gb112302/agriconnect/internal/domain/entity"
	"github.com/gb112302/agriconnect/internal/platform/logger"
	"github.com/gb112302/agriconnect/internal/repository"
)

type CreateProductParams struct {
	Name        string
	Description string
	Price       float64
	Category    entity.Category
	Subcategory string
	Stock       int
	Unit        entity.Unit
	Location    entity.ProductLocation
	Tags        []string
}

type UpdateProductParams struct {
	Name        *string
	Description *string
	Price       *float64
	Category    *entity.Category
	Subcategory *string
	Stock       *int
	Unit        *entity.Unit
	IsAvailable *bool
	Tags        []string
}

type CatalogService interface {
	CreateProduct(ctx context.Context, farmerID primitive.ObjectID, params CreateProductParams) (*entity.Product, error)
	GetProduct(ctx context.Context, id primitive.ObjectID) (*entity.Product, error)
	UpdateProduct(ctx context.Context, actorID, productID primitive.ObjectID, isAdmin bool, params UpdateProductParams) (*entity.Product, error)
	DeleteProduct(ctx context.Context, actorID, productID primitive.ObjectID, isAdmin bool) error
	ListProducts(ctx context.Context, params repository.ListProductsParams) (*repository.ListProductsResult, error)
	ListFarmerProducts(ctx context.Context, farmerID primitive.ObjectID, page, pageSize int) (*repository.ListProductsResult, error)
	UploadProductImage(ctx context.Context, actorID, productID primitive.ObjectID, fileName string, data []byte) (*entity.Product, error)
	RemoveProductImage(ctx context.Context, actorID, productID primitive.ObjectID, objectKey string) (*entity.Product, error)
}

type catalogService struct {
	productRepo repository.ProductRepository
	cache       repository.ProductCache
	storage     s3.Storage
	cacheTTL    time.Duration
	log         logger.Logger
}

func NewCatalogService(
	productRepo repository.ProductRepository,
	cache repository.ProductCache,
	storage s3.Storage,
	cacheTTL time.Duration,
	log logger.Logger,
) CatalogService {
	return &catalogService{
		productRepo: productRepo,
		cache:       cache,
		storage:     storage,
		cacheTTL:    cacheTTL,
		log:         log,
	}
}

func (s *catalogService) CreateProduct(ctx context.Context, farmerID primitive.ObjectID, params CreateProductParams) (*entity.Product, error) {
	product, err := entity.NewProduct(farmerID, params.Name, params.Description, params.Price, params.Category, params.Stock, params.Unit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	product.Subcategory = params.Subcategory
	product.Location = params.Location
	product.Tags = params.Tags

	id, err := s.productRepo.Create(ctx, product)
	if err != nil {
		return nil, err
	}
	product.ID = id

	s.log.Infof("Product created: %s by farmer %s", product.ID.Hex(), farmerID.Hex())
	return product, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id primitive.ObjectID) (*entity.Product, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, id.Hex()); err == nil {
			return cached, nil
		} else if !errors.Is(err, repository.ErrNotFound) {
			s.log.Warnf("Product cache read failed for %s: %v", id.Hex(), err)
		}
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, id.Hex(), product, s.cacheTTL); err != nil {
			s.log.Warnf("Product cache write failed for %s: %v", id.Hex(), err)
		}
	}
	return product, nil
}

func (s *catalogService) ownedProduct(ctx context.Context, actorID, productID primitive.ObjectID, isAdmin bool) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && product.FarmerID != actorID {
		return nil, fmt.Errorf("%w: product belongs to another farmer", ErrForbidden)
	}
	return product, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, actorID, productID primitive.ObjectID, isAdmin bool, params UpdateProductParams) (*entity.Product, error) {
	product, err := s.ownedProduct(ctx, actorID, productID, isAdmin)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		if *params.Name == "" {
			return nil, fmt.Errorf("%w: product name cannot be empty", ErrValidation)
		}
		product.Name = *params.Name
	}
	if params.Description != nil {
		product.Description = *params.Description
	}
	if params.Price != nil {
		if *params.Price < 0 {
			return nil, fmt.Errorf("%w: price cannot be negative", ErrValidation)
		}
		product.Price = *params.Price
	}
	if params.Category != nil {
		if !params.Category.IsValid() {
			return nil, fmt.Errorf("%w: unknown category %q", ErrValidation, *params.Category)
		}
		product.Category = *params.Category
	}
	if params.Subcategory != nil {
		product.Subcategory = *params.Subcategory
	}
	if params.Stock != nil {
		if *params.Stock < 0 {
			return nil, fmt.Errorf("%w: stock quantity cannot be negative", ErrValidation)
		}
		product.StockQuantity = *params.Stock
	}
	if params.Unit != nil {
		if !params.Unit.IsValid() {
			return nil, fmt.Errorf("%w: unknown unit %q", ErrValidation, *params.Unit)
		}
		product.Unit = *params.Unit
	}
	if params.IsAvailable != nil {
		product.IsAvailable = *params.IsAvailable
	}
	if params.Tags != nil {
		product.Tags = params.Tags
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx, productID)
	return product, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, actorID, productID primitive.ObjectID, isAdmin bool) error {
	product, err := s.ownedProduct(ctx, actorID, productID, isAdmin)
	if err != nil {
		return err
	}

	if err := s.productRepo.Delete(ctx, productID); err != nil {
		return err
	}
	s.invalidateCache(ctx, productID)

	if s.storage != nil {
		for _, img := range product.Images {
			if img.ObjectKey == "" {
				continue
			}
			if err := s.storage.Remove(ctx, img.ObjectKey); err != nil {
				s.log.Warnf("Failed to remove image %s for deleted product %s: %v", img.ObjectKey, productID.Hex(), err)
			}
		}
	}
	return nil
}

func (s *catalogService) invalidateCache(ctx context.Context, productID primitive.ObjectID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, productID.Hex()); err != nil {
		s.log.Warnf("Product cache invalidation failed for %s: %v", productID.Hex(), err)
	}
}

func (s *catalogService) ListProducts(ctx context.Context, params repository.ListProductsParams) (*repository.ListProductsResult, error) {
	if params.PageSize <= 0 {
		params.PageSize = 20
	}
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Category != "" && !params.Category.IsValid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrValidation, params.Category)
	}
	return s.productRepo.List(ctx, params)
}

func (s *catalogService) ListFarmerProducts(ctx context.Context, farmerID primitive.ObjectID, page, pageSize int) (*repository.ListProductsResult, error) {
	if pageSize <= 0 {
		pageSize = 20
	}
	return s.productRepo.List(ctx, repository.ListProductsParams{
		FarmerID: farmerID,
		Page:     page,
		PageSize: pageSize,
	})
}

func (s *catalogService) UploadProductImage(ctx context.Context, actorID, productID primitive.ObjectID, fileName string, data []byte) (*entity.Product, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: image data is empty", ErrValidation)
	}
	product, err := s.ownedProduct(ctx, actorID, productID, false)
	if err != nil {
		return nil, err
	}
	if s.storage == nil {
		return nil, fmt.Errorf("media storage is not configured")
	}

	url, objectKey, err := s.storage.Upload(ctx, fileName, data)
	if err != nil {
		return nil, err
	}

	product.Images = append(product.Images, entity.ProductImage{URL: url, ObjectKey: objectKey})
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx, productID)
	return product, nil
}

func (s *catalogService) RemoveProductImage(ctx context.Context, actorID, productID primitive.ObjectID, objectKey string) (*entity.Product, error) {
	product, err := s.ownedProduct(ctx, actorID, productID, false)
	if err != nil {
		return nil, err
	}

	kept := product.Images[:0]
	found := false
	for _, img := range product.Images {
		if img.ObjectKey == objectKey {
			found = true
			continue
		}
		kept = append(kept, img)
	}
	if !found {
		return nil, repository.ErrNotFound
	}
	product.Images = kept

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx, productID)

	if s.storage != nil {
		if err := s.storage.Remove(ctx, objectKey); err != nil {
			s.log.Warnf("Failed to remove image object %s: %v", objectKey, err)
		}
	}
	return product, nil
}
