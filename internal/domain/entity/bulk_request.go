package entity

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BulkRequestStatus string

const (
	BulkRequestPending     BulkRequestStatus = "pending"
	BulkRequestNegotiating BulkRequestStatus = "negotiating"
	BulkRequestAccepted    BulkRequestStatus = "accepted"
	BulkRequestRejected    BulkRequestStatus = "rejected"
)

func (s BulkRequestStatus) IsValid() bool {
	switch s {
	case BulkRequestPending, BulkRequestNegotiating, BulkRequestAccepted, BulkRequestRejected:
		return true
	}
	return false
}

type FarmerResponse struct {
	Message     string    `bson:"message,omitempty" json:"message,omitempty"`
	CustomPrice float64   `bson:"custom_price,omitempty" json:"customPrice,omitempty"`
	RespondedAt time.Time `bson:"responded_at" json:"respondedAt"`
}

type BulkRequest struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BuyerID           primitive.ObjectID `bson:"buyer_id" json:"buyerId"`
	ProductID         primitive.ObjectID `bson:"product_id" json:"productId"`
	RequestedQuantity int                `bson:"requested_quantity" json:"requestedQuantity"`
	Message           string             `bson:"message,omitempty" json:"message,omitempty"`
	FarmerResponse    *FarmerResponse    `bson:"farmer_response,omitempty" json:"farmerResponse,omitempty"`
	Status            BulkRequestStatus  `bson:"status" json:"status"`
	CreatedAt         time.Time          `bson:"created_at" json:"createdAt"`
}

func NewBulkRequest(buyerID, productID primitive.ObjectID, quantity int, message string) (*BulkRequest, error) {
	if buyerID.IsZero() {
		return nil, errors.New("buyer ID cannot be empty")
	}
	if productID.IsZero() {
		return nil, errors.New("product ID cannot be empty")
	}
	if quantity < 1 {
		return nil, errors.New("requested quantity must be at least 1")
	}
	return &BulkRequest{
		BuyerID:           buyerID,
		ProductID:         productID,
		RequestedQuantity: quantity,
		Message:           message,
		Status:            BulkRequestPending,
		CreatedAt:         time.Now().UTC(),
	}, nil
}

// Respond records the farmer's counter-offer verbatim and moves the status.
// The buyer's original quantity and message are never touched.
func (b *BulkRequest) Respond(message string, customPrice float64, status BulkRequestStatus) error {
	if status == "" {
		status = BulkRequestNegotiating
	}
	if !status.IsValid() {
		return errors.New("unknown bulk request status")
	}
	b.FarmerResponse = &FarmerResponse{
		Message:     message,
		CustomPrice: customPrice,
		RespondedAt: time.Now().UTC(),
	}
	b.Status = status
	return nil
}
