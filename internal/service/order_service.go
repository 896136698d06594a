package service

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gb112302/agriconnect/internal/adapter/nats"
	"github.com/gb112302/agriconnect/internal/domain/entity"
	"github.com/gb112302/agriconnect/internal/platform/logger"
	"github.com/gb112302/agriconnect/internal/platform/metrics"
	"github.com/gb112302/agriconnect/internal/repository"
)

type OrderItemInput struct {
	ProductID primitive.ObjectID
	Quantity  int
}

type PlaceOrderParams struct {
	Items           []OrderItemInput
	DeliveryAddress entity.DeliveryAddress
}

type OrderService interface {
	PlaceOrder(ctx context.Context, buyerID primitive.ObjectID, params PlaceOrderParams) (*entity.Order, error)
	GetOrder(ctx context.Context, actorID primitive.ObjectID, actorRole entity.Role, orderID primitive.ObjectID) (*entity.Order, error)
	ListBuyerOrders(ctx context.Context, buyerID primitive.ObjectID, status entity.OrderStatus, page, pageSize int) (*repository.ListOrdersResult, error)
	ListFarmerOrders(ctx context.Context, farmerID primitive.ObjectID, status entity.OrderStatus, page, pageSize int) (*repository.ListOrdersResult, error)
	UpdateStatus(ctx context.Context, actorID primitive.ObjectID, actorRole entity.Role, orderID primitive.ObjectID, status entity.OrderStatus) (*entity.Order, error)
	CancelOrder(ctx context.Context, actorID primitive.ObjectID, actorRole entity.Role, orderID primitive.ObjectID) (*entity.Order, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	cache       repository.ProductCache
	publisher   nats.MessagePublisher
	metrics     *metrics.Manager
	log         logger.Logger
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	cache repository.ProductCache,
	publisher nats.MessagePublisher,
	m *metrics.Manager,
	log logger.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		cache:       cache,
		publisher:   publisher,
		metrics:     m,
		log:         log,
	}
}

// PlaceOrder reserves stock item by item with conditional decrements. If any
// item cannot be satisfied, the decrements applied so far are rolled back and
// no order document is written.
func (s *orderService) PlaceOrder(ctx context.Context, buyerID primitive.ObjectID, params PlaceOrderParams) (*entity.Order, error) {
	if len(params.Items) == 0 {
		return nil, fmt.Errorf("%w: order must contain at least one item", ErrValidation)
	}

	seen := make(map[primitive.ObjectID]bool, len(params.Items))
	items := make([]entity.OrderItem, 0, len(params.Items))
	for _, input := range params.Items {
		if input.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
		}
		if seen[input.ProductID] {
			return nil, fmt.Errorf("%w: duplicate product in order", ErrValidation)
		}
		seen[input.ProductID] = true

		product, err := s.productRepo.GetByID(ctx, input.ProductID)
		if err != nil {
			return nil, err
		}
		if !product.IsAvailable {
			return nil, fmt.Errorf("%w: product %q is not available", ErrValidation, product.Name)
		}

		item, err := entity.NewOrderItem(product.ID, product.FarmerID, product.Name, input.Quantity, product.Price)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		items = append(items, *item)
	}

	var reserved []entity.OrderItem
	for _, item := range items {
		if err := s.productRepo.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.rollbackReservations(ctx, reserved)
			if repository.IsInsufficientStock(err) && s.metrics != nil {
				s.metrics.OrdersRejectedTotal.WithLabelValues("insufficient_stock").Inc()
			}
			return nil, err
		}
		reserved = append(reserved, item)
		s.invalidateProductCache(ctx, item.ProductID)
	}

	order, err := entity.NewOrder(buyerID, items, params.DeliveryAddress)
	if err != nil {
		s.rollbackReservations(ctx, reserved)
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	id, err := s.orderRepo.Create(ctx, order)
	if err != nil {
		s.rollbackReservations(ctx, reserved)
		return nil, err
	}
	order.ID = id

	for _, item := range items {
		if err := s.productRepo.IncrementOrderCount(ctx, item.ProductID, 1); err != nil {
			s.log.Warnf("Failed to bump order count for product %s: %v", item.ProductID.Hex(), err)
		}
	}

	if s.metrics != nil {
		s.metrics.OrdersPlacedTotal.Inc()
	}
	s.publish(ctx, nats.SubjectOrderPlaced, order)
	s.log.Infof("Order %s placed by buyer %s, total %.2f", order.ID.Hex(), buyerID.Hex(), order.TotalAmount)
	return order, nil
}

func (s *orderService) rollbackReservations(ctx context.Context, reserved []entity.OrderItem) {
	for _, item := range reserved {
		if err := s.productRepo.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.log.Errorf("Failed to roll back stock for product %s (qty %d): %v", item.ProductID.Hex(), item.Quantity, err)
		}
		s.invalidateProductCache(ctx, item.ProductID)
	}
}

func (s *orderService) invalidateProductCache(ctx context.Context, productID primitive.ObjectID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, productID.Hex()); err != nil {
		s.log.Warnf("Product cache invalidation failed for %s: %v", productID.Hex(), err)
	}
}

func (s *orderService) publish(ctx context.Context, subject string, payload interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, subject, payload); err != nil {
		s.log.Warnf("Failed to publish %s event: %v", subject, err)
	}
}

func orderVisibleTo(order *entity.Order, actorID primitive.ObjectID, actorRole entity.Role) bool {
	if actorRole == entity.RoleAdmin {
		return true
	}
	if order.BuyerID == actorID {
		return true
	}
	for _, item := range order.Items {
		if item.FarmerID == actorID {
			return true
		}
	}
	return false
}

func (s *orderService) GetOrder(ctx context.Context, actorID primitive.ObjectID, actorRole entity.Role, orderID primitive.ObjectID) (*entity.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !orderVisibleTo(order, actorID, actorRole) {
		return nil, fmt.Errorf("%w: order belongs to another user", ErrForbidden)
	}
	return order, nil
}

func (s *orderService) ListBuyerOrders(ctx context.Context, buyerID primitive.ObjectID, status entity.OrderStatus, page, pageSize int) (*repository.ListOrdersResult, error) {
	if pageSize <= 0 {
		pageSize = 20
	}
	return s.orderRepo.List(ctx, repository.ListOrdersParams{
		BuyerID:  buyerID,
		Status:   status,
		Page:     page,
		PageSize: pageSize,
	})
}

func (s *orderService) ListFarmerOrders(ctx context.Context, farmerID primitive.ObjectID, status entity.OrderStatus, page, pageSize int) (*repository.ListOrdersResult, error) {
	if pageSize <= 0 {
		pageSize = 20
	}
	return s.orderRepo.List(ctx, repository.ListOrdersParams{
		FarmerID: farmerID,
		Status:   status,
		Page:     page,
		PageSize: pageSize,
	})
}

func (s *orderService) UpdateStatus(ctx context.Context, actorID primitive.ObjectID, actorRole entity.Role, orderID primitive.ObjectID, status entity.OrderStatus) (*entity.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	allowed := actorRole == entity.RoleAdmin
	if !allowed {
		for _, item := range order.Items {
			if item.FarmerID == actorID {
				allowed = true
				break
			}
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: only the seller or an admin can update order status", ErrForbidden)
	}

	if err := order.UpdateStatus(status); err != nil {
		return nil, err
	}

	err = s.orderRepo.UpdateStatus(ctx, repository.UpdateOrderStatusParams{
		OrderID: orderID,
		Status:  order.Status,
		Version: order.Version,
	})
	if err != nil {
		return nil, err
	}
	order.Version++

	s.publish(ctx, nats.SubjectOrderStatus, order)
	return order, nil
}

func (s *orderService) CancelOrder(ctx context.Context, actorID primitive.ObjectID, actorRole entity.Role, orderID primitive.ObjectID) (*entity.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if actorRole != entity.RoleAdmin && order.BuyerID != actorID {
		return nil, fmt.Errorf("%w: order belongs to another buyer", ErrForbidden)
	}
	// Buyers can only back out before the order ships.
	if actorRole != entity.RoleAdmin &&
		order.Status != entity.OrderStatusPending && order.Status != entity.OrderStatusConfirmed {
		return nil, fmt.Errorf("%w: order can no longer be cancelled", entity.ErrInvalidTransition)
	}

	if err := order.UpdateStatus(entity.OrderStatusCancelled); err != nil {
		return nil, err
	}

	err = s.orderRepo.UpdateStatus(ctx, repository.UpdateOrderStatusParams{
		OrderID: orderID,
		Status:  entity.OrderStatusCancelled,
		Version: order.Version,
	})
	if err != nil {
		return nil, err
	}
	order.Version++

	// Reserved stock goes back on the shelf.
	for _, item := range order.Items {
		if err := s.productRepo.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.log.Errorf("Failed to restore stock for product %s on cancel: %v", item.ProductID.Hex(), err)
		}
		s.invalidateProductCache(ctx, item.ProductID)
	}

	s.publish(ctx, nats.SubjectOrderStatus, order)
	s.log.Infof("Order %s cancelled", orderID.Hex())
	return order, nil
}
