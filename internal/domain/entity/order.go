package entity

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"

	// OrderStatusCompleted is a legacy alias some historical orders carry;
	// it counts as a finished purchase for review eligibility.
	OrderStatusCompleted OrderStatus = "completed"
)

// rank orders the forward progression. Cancelled and completed sit outside it.
var orderStatusRank = map[OrderStatus]int{
	OrderStatusPending:    0,
	OrderStatusConfirmed:  1,
	OrderStatusProcessing: 2,
	OrderStatusShipped:    3,
	OrderStatusDelivered:  4,
}

func (s OrderStatus) IsValid() bool {
	if s == OrderStatusCancelled {
		return true
	}
	_, ok := orderStatusRank[s]
	return ok
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled || s == OrderStatusCompleted
}

type PaymentState string

const (
	PaymentStateUnpaid    PaymentState = ""
	PaymentStateCompleted PaymentState = "completed"
	PaymentStateRefunded  PaymentState = "refunded"
)

type DeliveryAddress struct {
	Street  string `bson:"street,omitempty" json:"street,omitempty"`
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	State   string `bson:"state,omitempty" json:"state,omitempty"`
	Pincode string `bson:"pincode,omitempty" json:"pincode,omitempty"`
}

type OrderItem struct {
	ProductID primitive.ObjectID `bson:"product_id" json:"productId"`
	// FarmerID is denormalized from the product so sellers can query the
	// orders that contain their produce without a join.
	FarmerID     primitive.ObjectID `bson:"farmer_id" json:"farmerId"`
	ProductName  string             `bson:"product_name" json:"productName"`
	Quantity     int                `bson:"quantity" json:"quantity"`
	PricePerUnit float64            `bson:"price_per_unit" json:"pricePerUnit"`
	TotalPrice   float64            `bson:"total_price" json:"totalPrice"`
}

func NewOrderItem(productID, farmerID primitive.ObjectID, productName string, quantity int, pricePerUnit float64) (*OrderItem, error) {
	if productID.IsZero() {
		return nil, errors.New("product ID cannot be empty")
	}
	if productName == "" {
		return nil, errors.New("product name cannot be empty")
	}
	if quantity < 1 {
		return nil, errors.New("quantity must be at least 1")
	}
	if pricePerUnit < 0 {
		return nil, errors.New("price per unit cannot be negative")
	}
	return &OrderItem{
		ProductID:    productID,
		FarmerID:     farmerID,
		ProductName:  productName,
		Quantity:     quantity,
		PricePerUnit: pricePerUnit,
		TotalPrice:   float64(quantity) * pricePerUnit,
	}, nil
}

type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BuyerID         primitive.ObjectID `bson:"buyer_id" json:"buyerId"`
	Items           []OrderItem        `bson:"items" json:"items"`
	TotalAmount     float64            `bson:"total_amount" json:"totalAmount"`
	Status          OrderStatus        `bson:"status" json:"status"`
	PaymentStatus   PaymentState       `bson:"payment_status,omitempty" json:"paymentStatus,omitempty"`
	PaymentID       primitive.ObjectID `bson:"payment_id,omitempty" json:"paymentId,omitempty"`
	DeliveryAddress DeliveryAddress    `bson:"delivery_address,omitempty" json:"deliveryAddress"`
	CreatedAt       time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updatedAt"`
	Version         int                `bson:"version" json:"-"`
}

func NewOrder(buyerID primitive.ObjectID, items []OrderItem, address DeliveryAddress) (*Order, error) {
	if buyerID.IsZero() {
		return nil, errors.New("buyer ID cannot be empty")
	}
	if len(items) == 0 {
		return nil, errors.New("order must contain at least one item")
	}
	now := time.Now().UTC()
	order := &Order{
		BuyerID:         buyerID,
		Items:           items,
		Status:          OrderStatusPending,
		DeliveryAddress: address,
		CreatedAt:       now,
		UpdatedAt:       now,
		Version:         1,
	}
	order.CalculateTotalAmount()
	return order, nil
}

// CalculateTotalAmount fixes the order total as the sum of its line totals.
// It is computed once at creation and never recomputed afterwards.
func (o *Order) CalculateTotalAmount() {
	var total float64
	for _, item := range o.Items {
		total += item.TotalPrice
	}
	o.TotalAmount = total
}

// ContainsProduct reports whether any line item references the product.
func (o *Order) ContainsProduct(productID primitive.ObjectID) bool {
	for _, item := range o.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

// UpdateStatus enforces the forward-only progression
// pending → confirmed → processing → shipped → delivered, with cancellation
// permitted from any non-terminal state.
func (o *Order) UpdateStatus(newStatus OrderStatus) error {
	if !newStatus.IsValid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, newStatus)
	}
	if o.Status.IsTerminal() {
		return fmt.Errorf("%w: order is already %s", ErrInvalidTransition, o.Status)
	}
	if newStatus == OrderStatusCancelled {
		o.Status = OrderStatusCancelled
		o.UpdatedAt = time.Now().UTC()
		return nil
	}
	if orderStatusRank[newStatus] <= orderStatusRank[o.Status] {
		return fmt.Errorf("%w: cannot move from %s to %s", ErrInvalidTransition, o.Status, newStatus)
	}
	o.Status = newStatus
	o.UpdatedAt = time.Now().UTC()
	return nil
}

var ErrInvalidTransition = errors.New("invalid order status transition")
