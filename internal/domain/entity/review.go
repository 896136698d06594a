package entity

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"userId"`
	ProductID primitive.ObjectID `bson:"product_id" json:"productId"`
	// FarmerID is denormalized from the product at creation time so farmer
	// review pages never need a product lookup.
	FarmerID  primitive.ObjectID `bson:"farmer_id" json:"farmerId"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment" json:"comment"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

func NewReview(userID, productID, farmerID primitive.ObjectID, rating int, comment string) (*Review, error) {
	if userID.IsZero() {
		return nil, errors.New("user ID cannot be empty")
	}
	if productID.IsZero() {
		return nil, errors.New("product ID cannot be empty")
	}
	if farmerID.IsZero() {
		return nil, errors.New("farmer ID cannot be empty")
	}
	if rating < 1 || rating > 5 {
		return nil, errors.New("rating must be between 1 and 5")
	}
	if comment == "" {
		return nil, errors.New("review comment is required")
	}
	now := time.Now().UTC()
	return &Review{
		UserID:    userID,
		ProductID: productID,
		FarmerID:  farmerID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
