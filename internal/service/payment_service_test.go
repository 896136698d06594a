package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gb112302/agriconnect/internal/adapter/payment"
	"github.com/gb112302/agriconnect/internal/domain/entity"
	"github.com/gb112302/agriconnect/internal/platform/logger"
	"github.com/gb112302/agriconnect/internal/repository"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) PlaceOrder(ctx context.Context, buyerID primitive.ObjectID, params PlaceOrderParams) (*entity.Order, error) {
	args := m.Called(ctx, buyerID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Order), args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, actorID primitive.ObjectID, actorRole entity.Role, orderID primitive.ObjectID) (*entity.Order, error) {
	args := m.Called(ctx, actorID, actorRole, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Order), args.Error(1)
}

func (m *MockOrderService) ListBuyerOrders(ctx context.Context, buyerID primitive.ObjectID, status entity.OrderStatus, page, pageSize int) (*repository.ListOrdersResult, error) {
	args := m.Called(ctx, buyerID, status, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.ListOrdersResult), args.Error(1)
}

func (m *MockOrderService) ListFarmerOrders(ctx context.Context, farmerID primitive.ObjectID, status entity.OrderStatus, page, pageSize int) (*repository.ListOrdersResult, error) {
	args := m.Called(ctx, farmerID, status, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.ListOrdersResult), args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, actorID primitive.ObjectID, actorRole entity.Role, orderID primitive.ObjectID, status entity.OrderStatus) (*entity.Order, error) {
	args := m.Called(ctx, actorID, actorRole, orderID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Order), args.Error(1)
}

func (m *MockOrderService) CancelOrder(ctx context.Context, actorID primitive.ObjectID, actorRole entity.Role, orderID primitive.ObjectID) (*entity.Order, error) {
	args := m.Called(ctx, actorID, actorRole, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Order), args.Error(1)
}

func newTestPaymentService(
	paymentRepo *MockPaymentRepository,
	orderRepo *MockOrderRepository,
	orders *MockOrderService,
	gateway *MockGateway,
) PaymentService {
	return NewPaymentService(paymentRepo, orderRepo, orders, gateway, nil, "kzt", nil, logger.NewNop())
}

func pendingPayment(buyerID primitive.ObjectID) *entity.Payment {
	pay, _ := entity.NewPayment(primitive.NewObjectID(), buyerID, 350.0, "kzt", entity.PaymentMethodStripe, "pi_test_1")
	pay.ID = primitive.NewObjectID()
	return pay
}

func TestCreateIntent_NewPayment(t *testing.T) {
	paymentRepo := new(MockPaymentRepository)
	orderRepo := new(MockOrderRepository)
	orders := new(MockOrderService)
	gateway := new(MockGateway)
	svc := newTestPaymentService(paymentRepo, orderRepo, orders, gateway)

	buyerID := primitive.NewObjectID()
	order := pendingOrder(buyerID, primitive.NewObjectID())

	orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	paymentRepo.On("GetByOrderID", mock.Anything, order.ID).Return(nil, repository.ErrNotFound)
	gateway.On("CreateIntent", mock.Anything, order.TotalAmount, "kzt", mock.Anything).Return(&payment.Intent{
		ID:           "pi_new",
		ClientSecret: "pi_new_secret",
		Status:       "requires_payment_method",
	}, nil)
	paymentRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Payment")).Return(primitive.NewObjectID(), nil)

	result, err := svc.CreateIntent(context.Background(), buyerID, order.ID)

	assert.NoError(t, err)
	assert.Equal(t, "pi_new_secret", result.ClientSecret)
	assert.Equal(t, entity.PaymentPending, result.Payment.Status)
	assert.Equal(t, "pi_new", result.Payment.IntentID)
}

func TestCreateIntent_ReusesPendingIntent(t *testing.T) {
	paymentRepo := new(MockPaymentRepository)
	orderRepo := new(MockOrderRepository)
	orders := new(MockOrderService)
	gateway := new(MockGateway)
	svc := newTestPaymentService(paymentRepo, orderRepo, orders, gateway)

	buyerID := primitive.NewObjectID()
	order := pendingOrder(buyerID, primitive.NewObjectID())
	existing := pendingPayment(buyerID)
	existing.OrderID = order.ID

	orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	paymentRepo.On("GetByOrderID", mock.Anything, order.ID).Return(existing, nil)
	gateway.On("RetrieveIntent", mock.Anything, existing.IntentID).Return(&payment.Intent{
		ID:           existing.IntentID,
		ClientSecret: "pi_test_1_secret",
	}, nil)

	result, err := svc.CreateIntent(context.Background(), buyerID, order.ID)

	assert.NoError(t, err)
	assert.Equal(t, existing.ID, result.Payment.ID)
	gateway.AssertNotCalled(t, "CreateIntent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateIntent_ForbiddenForOtherBuyer(t *testing.T) {
	paymentRepo := new(MockPaymentRepository)
	orderRepo := new(MockOrderRepository)
	orders := new(MockOrderService)
	gateway := new(MockGateway)
	svc := newTestPaymentService(paymentRepo, orderRepo, orders, gateway)

	order := pendingOrder(primitive.NewObjectID(), primitive.NewObjectID())
	orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)

	_, err := svc.CreateIntent(context.Background(), primitive.NewObjectID(), order.ID)

	assert.ErrorIs(t, err, ErrForbidden)
	gateway.AssertNotCalled(t, "CreateIntent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyPayment_SucceededCompletesOrder(t *testing.T) {
	paymentRepo := new(MockPaymentRepository)
	orderRepo := new(MockOrderRepository)
	orders := new(MockOrderService)
	gateway := new(MockGateway)
	svc := newTestPaymentService(paymentRepo, orderRepo, orders, gateway)

	buyerID := primitive.NewObjectID()
	pay := pendingPayment(buyerID)

	paymentRepo.On("GetByID", mock.Anything, pay.ID).Return(pay, nil)
	gateway.On("RetrieveIntent", mock.Anything, pay.IntentID).Return(&payment.Intent{
		ID:     pay.IntentID,
		Status: payment.IntentStatusSucceeded,
	}, nil)
	paymentRepo.On("UpdateStatus", mock.Anything, pay.ID, entity.PaymentCompleted, pay.IntentID).Return(nil)
	orderRepo.On("SetPayment", mock.Anything, pay.OrderID, pay.ID, entity.PaymentStateCompleted).Return(nil)

	got, err := svc.VerifyPayment(context.Background(), buyerID, pay.ID)

	assert.NoError(t, err)
	assert.Equal(t, entity.PaymentCompleted, got.Status)
	orderRepo.AssertExpectations(t)
}

func TestVerifyPayment_CanceledMarksFailed(t *testing.T) {
	paymentRepo := new(MockPaymentRepository)
	orderRepo := new(MockOrderRepository)
	orders := new(MockOrderService)
	gateway := new(MockGateway)
	svc := newTestPaymentService(paymentRepo, orderRepo, orders, gateway)

	buyerID := primitive.NewObjectID()
	pay := pendingPayment(buyerID)

	paymentRepo.On("GetByID", mock.Anything, pay.ID).Return(pay, nil)
	gateway.On("RetrieveIntent", mock.Anything, pay.IntentID).Return(&payment.Intent{
		ID:     pay.IntentID,
		Status: payment.IntentStatusCanceled,
	}, nil)
	paymentRepo.On("UpdateStatus", mock.Anything, pay.ID, entity.PaymentFailed, "").Return(nil)

	_, err := svc.VerifyPayment(context.Background(), buyerID, pay.ID)

	assert.ErrorIs(t, err, ErrPaymentVerificationFailed)
	paymentRepo.AssertCalled(t, "UpdateStatus", mock.Anything, pay.ID, entity.PaymentFailed, "")
	orderRepo.AssertNotCalled(t, "SetPayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyPayment_AlreadySettledIsIdempotent(t *testing.T) {
	paymentRepo := new(MockPaymentRepository)
	orderRepo := new(MockOrderRepository)
	orders := new(MockOrderService)
	gateway := new(MockGateway)
	svc := newTestPaymentService(paymentRepo, orderRepo, orders, gateway)

	buyerID := primitive.NewObjectID()
	pay := pendingPayment(buyerID)
	pay.Status = entity.PaymentCompleted

	paymentRepo.On("GetByID", mock.Anything, pay.ID).Return(pay, nil)

	got, err := svc.VerifyPayment(context.Background(), buyerID, pay.ID)

	assert.NoError(t, err)
	assert.Equal(t, entity.PaymentCompleted, got.Status)
	gateway.AssertNotCalled(t, "RetrieveIntent", mock.Anything, mock.Anything)
}

func TestRefundPayment_SellerCanRefundAndOrderIsCancelled(t *testing.T) {
	paymentRepo := new(MockPaymentRepository)
	orderRepo := new(MockOrderRepository)
	orders := new(MockOrderService)
	gateway := new(MockGateway)
	svc := newTestPaymentService(paymentRepo, orderRepo, orders, gateway)

	buyerID := primitive.NewObjectID()
	farmerID := primitive.NewObjectID()
	order := pendingOrder(buyerID, farmerID)
	pay := pendingPayment(buyerID)
	pay.OrderID = order.ID
	pay.Status = entity.PaymentCompleted

	paymentRepo.On("GetByID", mock.Anything, pay.ID).Return(pay, nil)
	orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	gateway.On("Refund", mock.Anything, pay.IntentID).Return("re_1", nil)
	paymentRepo.On("UpdateStatus", mock.Anything, pay.ID, entity.PaymentRefunded, "re_1").Return(nil)
	orderRepo.On("SetPayment", mock.Anything, pay.OrderID, pay.ID, entity.PaymentStateRefunded).Return(nil)
	orders.On("CancelOrder", mock.Anything, farmerID, entity.RoleAdmin, pay.OrderID).Return(&entity.Order{}, nil)

	got, err := svc.RefundPayment(context.Background(), farmerID, entity.RoleFarmer, pay.ID)

	assert.NoError(t, err)
	assert.Equal(t, entity.PaymentRefunded, got.Status)
	orders.AssertExpectations(t)
}

func TestRefundPayment_BuyerCannotRefund(t *testing.T) {
	paymentRepo := new(MockPaymentRepository)
	orderRepo := new(MockOrderRepository)
	orders := new(MockOrderService)
	gateway := new(MockGateway)
	svc := newTestPaymentService(paymentRepo, orderRepo, orders, gateway)

	buyerID := primitive.NewObjectID()
	order := pendingOrder(buyerID, primitive.NewObjectID())
	pay := pendingPayment(buyerID)
	pay.OrderID = order.ID
	pay.Status = entity.PaymentCompleted

	paymentRepo.On("GetByID", mock.Anything, pay.ID).Return(pay, nil)
	orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)

	_, err := svc.RefundPayment(context.Background(), buyerID, entity.RoleBuyer, pay.ID)

	assert.ErrorIs(t, err, ErrForbidden)
	gateway.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything)
}

func TestRefundPayment_OnlyCompletedPayments(t *testing.T) {
	paymentRepo := new(MockPaymentRepository)
	orderRepo := new(MockOrderRepository)
	orders := new(MockOrderService)
	gateway := new(MockGateway)
	svc := newTestPaymentService(paymentRepo, orderRepo, orders, gateway)

	pay := pendingPayment(primitive.NewObjectID())

	paymentRepo.On("GetByID", mock.Anything, pay.ID).Return(pay, nil)

	_, err := svc.RefundPayment(context.Background(), primitive.NewObjectID(), entity.RoleAdmin, pay.ID)

	assert.ErrorIs(t, err, ErrValidation)
	gateway.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything)
}
