package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gb112302/agriconnect/internal/domain/entity"
	"github.com/gb112302/agriconnect/internal/platform/logger"
	"github.com/gb112302/agriconnect/internal/repository"
)

func newTestCatalogService(productRepo *MockProductRepository, cache *MockProductCache) CatalogService {
	if cache == nil {
		return NewCatalogService(productRepo, nil, nil, time.Minute, logger.NewNop())
	}
	return NewCatalogService(productRepo, cache, nil, time.Minute, logger.NewNop())
}

func TestCreateProduct_Valid(t *testing.T) {
	productRepo := new(MockProductRepository)
	svc := newTestCatalogService(productRepo, nil)

	farmerID := primitive.NewObjectID()
	productID := primitive.NewObjectID()
	productRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Product")).Return(productID, nil)

	product, err := svc.CreateProduct(context.Background(), farmerID, CreateProductParams{
		Name:        "Organic Tomatoes",
		Description: "Fresh from the field",
		Price:       55.0,
		Category:    entity.CategoryVegetables,
		Stock:       80,
		Unit:        entity.UnitKg,
	})

	assert.NoError(t, err)
	assert.Equal(t, productID, product.ID)
	assert.True(t, product.IsAvailable)
	assert.Equal(t, farmerID, product.FarmerID)
}

func TestCreateProduct_Validation(t *testing.T) {
	productRepo := new(MockProductRepository)
	svc := newTestCatalogService(productRepo, nil)

	_, err := svc.CreateProduct(context.Background(), primitive.NewObjectID(), CreateProductParams{
		Name:        "",
		Description: "no name",
		Category:    entity.CategoryVegetables,
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateProduct(context.Background(), primitive.NewObjectID(), CreateProductParams{
		Name:        "Mystery",
		Description: "bad category",
		Category:    "Electronics",
	})
	assert.ErrorIs(t, err, ErrValidation)
	productRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetProduct_CacheHitSkipsRepository(t *testing.T) {
	productRepo := new(MockProductRepository)
	cache := new(MockProductCache)
	svc := newTestCatalogService(productRepo, cache)

	product := testProduct(primitive.NewObjectID(), "Cached Apples", 90.0, 30)
	cache.On("Get", mock.Anything, product.ID.Hex()).Return(product, nil)

	got, err := svc.GetProduct(context.Background(), product.ID)

	assert.NoError(t, err)
	assert.Equal(t, product.ID, got.ID)
	productRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestGetProduct_CacheMissFillsCache(t *testing.T) {
	productRepo := new(MockProductRepository)
	cache := new(MockProductCache)
	svc := newTestCatalogService(productRepo, cache)

	product := testProduct(primitive.NewObjectID(), "Apples", 90.0, 30)
	cache.On("Get", mock.Anything, product.ID.Hex()).Return(nil, repository.ErrNotFound)
	productRepo.On("GetByID", mock.Anything, product.ID).Return(product, nil)
	cache.On("Set", mock.Anything, product.ID.Hex(), product, time.Minute).Return(nil)

	got, err := svc.GetProduct(context.Background(), product.ID)

	assert.NoError(t, err)
	assert.Equal(t, product.ID, got.ID)
	cache.AssertExpectations(t)
}

func TestUpdateProduct_OnlyOwner(t *testing.T) {
	productRepo := new(MockProductRepository)
	svc := newTestCatalogService(productRepo, nil)

	product := testProduct(primitive.NewObjectID(), "Cabbage", 35.0, 70)
	productRepo.On("GetByID", mock.Anything, product.ID).Return(product, nil)

	newPrice := 40.0
	_, err := svc.UpdateProduct(context.Background(), primitive.NewObjectID(), product.ID, false, UpdateProductParams{
		Price: &newPrice,
	})

	assert.ErrorIs(t, err, ErrForbidden)
	productRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateProduct_AdminOverride(t *testing.T) {
	productRepo := new(MockProductRepository)
	svc := newTestCatalogService(productRepo, nil)

	product := testProduct(primitive.NewObjectID(), "Cabbage", 35.0, 70)
	productRepo.On("GetByID", mock.Anything, product.ID).Return(product, nil)
	productRepo.On("Update", mock.Anything, product).Return(nil)

	available := false
	got, err := svc.UpdateProduct(context.Background(), primitive.NewObjectID(), product.ID, true, UpdateProductParams{
		IsAvailable: &available,
	})

	assert.NoError(t, err)
	assert.False(t, got.IsAvailable)
}

func TestUpdateProduct_PartialUpdate(t *testing.T) {
	productRepo := new(MockProductRepository)
	svc := newTestCatalogService(productRepo, nil)

	farmerID := primitive.NewObjectID()
	product := testProduct(farmerID, "Cabbage", 35.0, 70)
	product.Description = "original description"
	productRepo.On("GetByID", mock.Anything, product.ID).Return(product, nil)
	productRepo.On("Update", mock.Anything, product).Return(nil)

	newPrice := 42.0
	got, err := svc.UpdateProduct(context.Background(), farmerID, product.ID, false, UpdateProductParams{
		Price: &newPrice,
	})

	assert.NoError(t, err)
	assert.Equal(t, 42.0, got.Price)
	// Fields that were not sent stay as they were.
	assert.Equal(t, "Cabbage", got.Name)
	assert.Equal(t, "original description", got.Description)
}

func TestDeleteProduct_OnlyOwner(t *testing.T) {
	productRepo := new(MockProductRepository)
	svc := newTestCatalogService(productRepo, nil)

	product := testProduct(primitive.NewObjectID(), "Garlic", 110.0, 25)
	productRepo.On("GetByID", mock.Anything, product.ID).Return(product, nil)

	err := svc.DeleteProduct(context.Background(), primitive.NewObjectID(), product.ID, false)

	assert.ErrorIs(t, err, ErrForbidden)
	productRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestListProducts_UnknownCategory(t *testing.T) {
	productRepo := new(MockProductRepository)
	svc := newTestCatalogService(productRepo, nil)

	_, err := svc.ListProducts(context.Background(), repository.ListProductsParams{Category: "Gadgets"})

	assert.ErrorIs(t, err, ErrValidation)
}
