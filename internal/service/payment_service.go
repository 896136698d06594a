package service

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gb112302/agriconnect/internal/adapter/nats"
	"github.com/gb112302/agriconnect/internal/adapter/payment"
	"github.com/gb112302/agriconnect/internal/domain/entity"
	"github.com/gb112302/agriconnect/internal/platform/logger"
	"github.com/gb112302/agriconnect/internal/platform/metrics"
	"github.com/gb112302/agriconnect/internal/repository"
)

// PaymentIntentResult pairs the stored payment with the client secret the
// frontend needs to complete the charge.
type PaymentIntentResult struct {
	Payment      *entity.Payment
	ClientSecret string
}

type PaymentService interface {
	CreateIntent(ctx context.Context, buyerID, orderID primitive.ObjectID) (*PaymentIntentResult, error)
	VerifyPayment(ctx context.Context, buyerID, paymentID primitive.ObjectID) (*entity.Payment, error)
	RefundPayment(ctx context.Context, actorID primitive.ObjectID, actorRole entity.Role, paymentID primitive.ObjectID) (*entity.Payment, error)
	GetPayment(ctx context.Context, actorID primitive.ObjectID, actorRole entity.Role, paymentID primitive.ObjectID) (*entity.Payment, error)
	ListUserPayments(ctx context.Context, userID primitive.ObjectID) ([]entity.Payment, error)
}

type paymentService struct {
	paymentRepo repository.PaymentRepository
	orderRepo   repository.OrderRepository
	orders      OrderService
	gateway     payment.Gateway
	publisher   nats.MessagePublisher
	currency    string
	metrics     *metrics.Manager
	log         logger.Logger
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	orderRepo repository.OrderRepository,
	orders OrderService,
	gateway payment.Gateway,
	publisher nats.MessagePublisher,
	currency string,
	m *metrics.Manager,
	log logger.Logger,
) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		orders:      orders,
		gateway:     gateway,
		publisher:   publisher,
		currency:    currency,
		metrics:     m,
		log:         log,
	}
}

func (s *paymentService) CreateIntent(ctx context.Context, buyerID, orderID primitive.ObjectID) (*PaymentIntentResult, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != buyerID {
		return nil, fmt.Errorf("%w: order belongs to another buyer", ErrForbidden)
	}
	if order.Status == entity.OrderStatusCancelled {
		return nil, fmt.Errorf("%w: cannot pay for a cancelled order", ErrValidation)
	}
	if order.PaymentStatus == entity.PaymentStateCompleted {
		return nil, fmt.Errorf("%w: order is already paid", repository.ErrAlreadyExists)
	}

	// An intent may already exist from a previous attempt.
	if existing, err := s.paymentRepo.GetByOrderID(ctx, orderID); err == nil {
		if existing.Status == entity.PaymentPending {
			intent, gerr := s.gateway.RetrieveIntent(ctx, existing.IntentID)
			if gerr == nil {
				return &PaymentIntentResult{Payment: existing, ClientSecret: intent.ClientSecret}, nil
			}
			s.log.Warnf("Failed to retrieve existing intent %s: %v", existing.IntentID, gerr)
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	intent, err := s.gateway.CreateIntent(ctx, order.TotalAmount, s.currency, map[string]string{
		"order_id": orderID.Hex(),
		"buyer_id": buyerID.Hex(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentGateway, err)
	}

	pay, err := entity.NewPayment(orderID, buyerID, order.TotalAmount, s.currency, entity.PaymentMethodStripe, intent.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	id, err := s.paymentRepo.Create(ctx, pay)
	if err != nil {
		return nil, err
	}
	pay.ID = id

	return &PaymentIntentResult{Payment: pay, ClientSecret: intent.ClientSecret}, nil
}

// VerifyPayment asks the gateway what happened to the intent and records the
// outcome. Local state only follows what the gateway reports.
func (s *paymentService) VerifyPayment(ctx context.Context, buyerID, paymentID primitive.ObjectID) (*entity.Payment, error) {
	pay, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if pay.UserID != buyerID {
		return nil, fmt.Errorf("%w: payment belongs to another user", ErrForbidden)
	}
	if pay.Status != entity.PaymentPending {
		return pay, nil
	}

	intent, err := s.gateway.RetrieveIntent(ctx, pay.IntentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentGateway, err)
	}

	switch intent.Status {
	case payment.IntentStatusSucceeded:
		pay.Status = entity.PaymentCompleted
		pay.TransactionID = intent.ID
		if err := s.paymentRepo.UpdateStatus(ctx, pay.ID, entity.PaymentCompleted, intent.ID); err != nil {
			return nil, err
		}
		if err := s.orderRepo.SetPayment(ctx, pay.OrderID, pay.ID, entity.PaymentStateCompleted); err != nil {
			s.log.Errorf("Payment %s completed but order %s was not updated: %v", pay.ID.Hex(), pay.OrderID.Hex(), err)
		}
		if s.metrics != nil {
			s.metrics.PaymentsTotal.WithLabelValues("completed").Inc()
		}
		if s.publisher != nil {
			if err := s.publisher.Publish(ctx, nats.SubjectPaymentComplete, pay); err != nil {
				s.log.Warnf("Failed to publish payment event: %v", err)
			}
		}
		s.log.Infof("Payment %s completed for order %s", pay.ID.Hex(), pay.OrderID.Hex())
	case payment.IntentStatusCanceled:
		pay.Status = entity.PaymentFailed
		if err := s.paymentRepo.UpdateStatus(ctx, pay.ID, entity.PaymentFailed, ""); err != nil {
			return nil, err
		}
		if s.metrics != nil {
			s.metrics.PaymentsTotal.WithLabelValues("failed").Inc()
		}
		return nil, fmt.Errorf("%w: gateway canceled intent %s", ErrPaymentVerificationFailed, pay.IntentID)
	default:
		// Still processing on the gateway side; nothing to record yet.
	}

	return pay, nil
}

// RefundPayment refunds a completed payment and cancels the order, which also
// restores the reserved stock. Only an admin or a farmer selling on the
// related order may issue a refund.
func (s *paymentService) RefundPayment(ctx context.Context, actorID primitive.ObjectID, actorRole entity.Role, paymentID primitive.ObjectID) (*entity.Payment, error) {
	pay, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if actorRole != entity.RoleAdmin {
		order, err := s.orderRepo.GetByID(ctx, pay.OrderID)
		if err != nil {
			return nil, err
		}
		seller := false
		for _, item := range order.Items {
			if item.FarmerID == actorID {
				seller = true
				break
			}
		}
		if !seller {
			return nil, fmt.Errorf("%w: only the seller or an admin can refund a payment", ErrForbidden)
		}
	}
	if pay.Status != entity.PaymentCompleted {
		return nil, fmt.Errorf("%w: only completed payments can be refunded", ErrValidation)
	}

	refundID, err := s.gateway.Refund(ctx, pay.IntentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentGateway, err)
	}

	pay.Status = entity.PaymentRefunded
	if err := s.paymentRepo.UpdateStatus(ctx, pay.ID, entity.PaymentRefunded, refundID); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SetPayment(ctx, pay.OrderID, pay.ID, entity.PaymentStateRefunded); err != nil {
		s.log.Errorf("Refund recorded but order %s payment state was not updated: %v", pay.OrderID.Hex(), err)
	}

	if _, err := s.orders.CancelOrder(ctx, actorID, entity.RoleAdmin, pay.OrderID); err != nil {
		if !errors.Is(err, entity.ErrInvalidTransition) {
			s.log.Errorf("Failed to cancel order %s after refund: %v", pay.OrderID.Hex(), err)
		}
	}

	if s.metrics != nil {
		s.metrics.PaymentsTotal.WithLabelValues("refunded").Inc()
	}
	s.log.Infof("Payment %s refunded (refund %s)", pay.ID.Hex(), refundID)
	return pay, nil
}

func (s *paymentService) GetPayment(ctx context.Context, actorID primitive.ObjectID, actorRole entity.Role, paymentID primitive.ObjectID) (*entity.Payment, error) {
	pay, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if actorRole != entity.RoleAdmin && pay.UserID != actorID {
		return nil, fmt.Errorf("%w: payment belongs to another user", ErrForbidden)
	}
	return pay, nil
}

func (s *paymentService) ListUserPayments(ctx context.Context, userID primitive.ObjectID) ([]entity.Payment, error) {
	return s.paymentRepo.ListByUser(ctx, userID)
}
