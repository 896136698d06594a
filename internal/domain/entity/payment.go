package entity

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	PaymentMethodStripe       PaymentMethod = "stripe"
	PaymentMethodCOD          PaymentMethod = "cod"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

type Payment struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID  primitive.ObjectID `bson:"order_id" json:"orderId"`
	UserID   primitive.ObjectID `bson:"user_id" json:"userId"`
	Amount   float64            `bson:"amount" json:"amount"`
	Currency string             `bson:"currency" json:"currency"`
	Method   PaymentMethod      `bson:"payment_method" json:"paymentMethod"`
	Status   PaymentStatus      `bson:"status" json:"status"`
	// IntentID is the gateway's reference for the payment intent; local state
	// only ever follows what the gateway reports for it.
	IntentID      string    `bson:"intent_id,omitempty" json:"intentId,omitempty"`
	TransactionID string    `bson:"transaction_id,omitempty" json:"transactionId,omitempty"`
	CreatedAt     time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updatedAt"`
}

func NewPayment(orderID, userID primitive.ObjectID, amount float64, currency string, method PaymentMethod, intentID string) (*Payment, error) {
	if orderID.IsZero() {
		return nil, errors.New("order ID cannot be empty")
	}
	if userID.IsZero() {
		return nil, errors.New("user ID cannot be empty")
	}
	if amount < 0 {
		return nil, errors.New("amount cannot be negative")
	}
	now := time.Now().UTC()
	return &Payment{
		OrderID:   orderID,
		UserID:    userID,
		Amount:    amount,
		Currency:  currency,
		Method:    method,
		Status:    PaymentPending,
		IntentID:  intentID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
