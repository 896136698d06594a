package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gb112302/agriconnect/internal/domain/entity"
	"github.com/gb112302/agriconnect/internal/platform/logger"
	"github.com/gb112302/agriconnect/internal/repository"
)

// stockProductRepository backs the product port with a real conditional
// decrement so concurrent checkouts contend the way the database does.
type stockProductRepository struct {
	MockProductRepository
	mu       sync.Mutex
	products map[primitive.ObjectID]*entity.Product
}

func newStockProductRepository(products ...*entity.Product) *stockProductRepository {
	byID := make(map[primitive.ObjectID]*entity.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &stockProductRepository{products: byID}
}

func (f *stockProductRepository) GetByID(_ context.Context, id primitive.ObjectID) (*entity.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *stockProductRepository) DecrementStock(_ context.Context, id primitive.ObjectID, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	if p.StockQuantity < quantity {
		return &repository.InsufficientStockError{
			ProductID:   id.Hex(),
			ProductName: p.Name,
			Requested:   quantity,
		}
	}
	p.StockQuantity -= quantity
	return nil
}

func (f *stockProductRepository) IncrementStock(_ context.Context, id primitive.ObjectID, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.StockQuantity += quantity
	return nil
}

func (f *stockProductRepository) IncrementOrderCount(context.Context, primitive.ObjectID, int) error {
	return nil
}

func testProduct(farmerID primitive.ObjectID, name string, price float64, stock int) *entity.Product {
	return &entity.Product{
		ID:            primitive.NewObjectID(),
		FarmerID:      farmerID,
		Name:          name,
		Price:         price,
		StockQuantity: stock,
		IsAvailable:   true,
	}
}

func TestPlaceOrder_Success(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	svc := NewOrderService(orderRepo, productRepo, nil, nil, nil, logger.NewNop())

	buyerID := primitive.NewObjectID()
	farmerID := primitive.NewObjectID()
	tomatoes := testProduct(farmerID, "Tomatoes", 50.0, 100)
	onions := testProduct(farmerID, "Onions", 20.0, 100)

	productRepo.On("GetByID", mock.Anything, tomatoes.ID).Return(tomatoes, nil)
	productRepo.On("GetByID", mock.Anything, onions.ID).Return(onions, nil)
	productRepo.On("DecrementStock", mock.Anything, tomatoes.ID, 2).Return(nil)
	productRepo.On("DecrementStock", mock.Anything, onions.ID, 3).Return(nil)
	productRepo.On("IncrementOrderCount", mock.Anything, mock.Anything, 1).Return(nil)

	orderID := primitive.NewObjectID()
	orderRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Order")).Return(orderID, nil)

	order, err := svc.PlaceOrder(context.Background(), buyerID, PlaceOrderParams{
		Items: []OrderItemInput{
			{ProductID: tomatoes.ID, Quantity: 2},
			{ProductID: onions.ID, Quantity: 3},
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, orderID, order.ID)
	assert.Equal(t, entity.OrderStatusPending, order.Status)
	assert.Equal(t, 2*50.0+3*20.0, order.TotalAmount)
	assert.Equal(t, farmerID, order.Items[0].FarmerID)
	productRepo.AssertExpectations(t)
	orderRepo.AssertExpectations(t)
}

func TestPlaceOrder_InsufficientStockRollsBack(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	svc := NewOrderService(orderRepo, productRepo, nil, nil, nil, logger.NewNop())

	buyerID := primitive.NewObjectID()
	farmerID := primitive.NewObjectID()
	first := testProduct(farmerID, "Wheat", 30.0, 100)
	second := testProduct(farmerID, "Rice", 45.0, 2)

	productRepo.On("GetByID", mock.Anything, first.ID).Return(first, nil)
	productRepo.On("GetByID", mock.Anything, second.ID).Return(second, nil)
	productRepo.On("DecrementStock", mock.Anything, first.ID, 5).Return(nil)
	productRepo.On("DecrementStock", mock.Anything, second.ID, 6).Return(&repository.InsufficientStockError{
		ProductID:   second.ID.Hex(),
		ProductName: second.Name,
		Requested:   6,
	})
	// The reservation taken for the first item must come back.
	productRepo.On("IncrementStock", mock.Anything, first.ID, 5).Return(nil)

	order, err := svc.PlaceOrder(context.Background(), buyerID, PlaceOrderParams{
		Items: []OrderItemInput{
			{ProductID: first.ID, Quantity: 5},
			{ProductID: second.ID, Quantity: 6},
		},
	})

	assert.Error(t, err)
	assert.True(t, repository.IsInsufficientStock(err))
	assert.Nil(t, order)
	productRepo.AssertCalled(t, "IncrementStock", mock.Anything, first.ID, 5)
	orderRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPlaceOrder_Validation(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	svc := NewOrderService(orderRepo, productRepo, nil, nil, nil, logger.NewNop())

	buyerID := primitive.NewObjectID()
	productID := primitive.NewObjectID()

	_, err := svc.PlaceOrder(context.Background(), buyerID, PlaceOrderParams{})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.PlaceOrder(context.Background(), buyerID, PlaceOrderParams{
		Items: []OrderItemInput{{ProductID: productID, Quantity: 0}},
	})
	assert.ErrorIs(t, err, ErrValidation)

	unavailable := testProduct(primitive.NewObjectID(), "Sold out", 10.0, 0)
	unavailable.IsAvailable = false
	productRepo.On("GetByID", mock.Anything, unavailable.ID).Return(unavailable, nil)

	_, err = svc.PlaceOrder(context.Background(), buyerID, PlaceOrderParams{
		Items: []OrderItemInput{{ProductID: unavailable.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrValidation)
	productRepo.AssertNotCalled(t, "DecrementStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestPlaceOrder_RejectsDuplicateProduct(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	svc := NewOrderService(orderRepo, productRepo, nil, nil, nil, logger.NewNop())

	product := testProduct(primitive.NewObjectID(), "Apples", 80.0, 50)
	productRepo.On("GetByID", mock.Anything, product.ID).Return(product, nil)

	_, err := svc.PlaceOrder(context.Background(), primitive.NewObjectID(), PlaceOrderParams{
		Items: []OrderItemInput{
			{ProductID: product.ID, Quantity: 1},
			{ProductID: product.ID, Quantity: 2},
		},
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func pendingOrder(buyerID, farmerID primitive.ObjectID) *entity.Order {
	item, _ := entity.NewOrderItem(primitive.NewObjectID(), farmerID, "Carrots", 4, 25.0)
	order, _ := entity.NewOrder(buyerID, []entity.OrderItem{*item}, entity.DeliveryAddress{})
	order.ID = primitive.NewObjectID()
	return order
}

func TestUpdateStatus_SellerAdvancesOrder(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	svc := NewOrderService(orderRepo, productRepo, nil, nil, nil, logger.NewNop())

	farmerID := primitive.NewObjectID()
	order := pendingOrder(primitive.NewObjectID(), farmerID)

	orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	orderRepo.On("UpdateStatus", mock.Anything, repository.UpdateOrderStatusParams{
		OrderID: order.ID,
		Status:  entity.OrderStatusConfirmed,
		Version: 1,
	}).Return(nil)

	updated, err := svc.UpdateStatus(context.Background(), farmerID, entity.RoleFarmer, order.ID, entity.OrderStatusConfirmed)

	assert.NoError(t, err)
	assert.Equal(t, entity.OrderStatusConfirmed, updated.Status)
	assert.Equal(t, 2, updated.Version)
	orderRepo.AssertExpectations(t)
}

func TestUpdateStatus_ForbiddenForOutsider(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	svc := NewOrderService(orderRepo, productRepo, nil, nil, nil, logger.NewNop())

	order := pendingOrder(primitive.NewObjectID(), primitive.NewObjectID())
	orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)

	_, err := svc.UpdateStatus(context.Background(), primitive.NewObjectID(), entity.RoleFarmer, order.ID, entity.OrderStatusConfirmed)

	assert.ErrorIs(t, err, ErrForbidden)
	orderRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
}

func TestCancelOrder_RestoresStock(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	svc := NewOrderService(orderRepo, productRepo, nil, nil, nil, logger.NewNop())

	buyerID := primitive.NewObjectID()
	order := pendingOrder(buyerID, primitive.NewObjectID())
	item := order.Items[0]

	orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	orderRepo.On("UpdateStatus", mock.Anything, repository.UpdateOrderStatusParams{
		OrderID: order.ID,
		Status:  entity.OrderStatusCancelled,
		Version: 1,
	}).Return(nil)
	productRepo.On("IncrementStock", mock.Anything, item.ProductID, item.Quantity).Return(nil)

	cancelled, err := svc.CancelOrder(context.Background(), buyerID, entity.RoleBuyer, order.ID)

	assert.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCancelled, cancelled.Status)
	productRepo.AssertExpectations(t)
}

func TestCancelOrder_BuyerCannotCancelShippedOrder(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	svc := NewOrderService(orderRepo, productRepo, nil, nil, nil, logger.NewNop())

	buyerID := primitive.NewObjectID()
	order := pendingOrder(buyerID, primitive.NewObjectID())
	order.Status = entity.OrderStatusShipped

	orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)

	_, err := svc.CancelOrder(context.Background(), buyerID, entity.RoleBuyer, order.ID)

	assert.ErrorIs(t, err, entity.ErrInvalidTransition)
	productRepo.AssertNotCalled(t, "IncrementStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetOrder_Visibility(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	svc := NewOrderService(orderRepo, productRepo, nil, nil, nil, logger.NewNop())

	buyerID := primitive.NewObjectID()
	farmerID := primitive.NewObjectID()
	order := pendingOrder(buyerID, farmerID)
	orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)

	_, err := svc.GetOrder(context.Background(), buyerID, entity.RoleBuyer, order.ID)
	assert.NoError(t, err)

	_, err = svc.GetOrder(context.Background(), farmerID, entity.RoleFarmer, order.ID)
	assert.NoError(t, err)

	_, err = svc.GetOrder(context.Background(), primitive.NewObjectID(), entity.RoleBuyer, order.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestPlaceOrder_ConcurrentCheckoutsContendOnStock(t *testing.T) {
	farmerID := primitive.NewObjectID()
	apples := testProduct(farmerID, "Apples", 50.0, 9)
	productRepo := newStockProductRepository(apples)

	orderRepo := new(MockOrderRepository)
	orderRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Order")).Return(primitive.NewObjectID(), nil)

	svc := NewOrderService(orderRepo, productRepo, nil, nil, nil, logger.NewNop())

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.PlaceOrder(context.Background(), primitive.NewObjectID(), PlaceOrderParams{
				Items: []OrderItemInput{{ProductID: apples.ID, Quantity: 5}},
			})
		}(i)
	}
	wg.Wait()

	succeeded, outOfStock := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case repository.IsInsufficientStock(err):
			outOfStock++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, outOfStock)

	remaining, err := productRepo.GetByID(context.Background(), apples.ID)
	assert.NoError(t, err)
	assert.Equal(t, 4, remaining.StockQuantity)
}
