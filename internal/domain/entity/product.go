package entity

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Category string

const (
	CategoryGrains      Category = "Grains"
	CategoryVegetables  Category = "Vegetables"
	CategoryFruits      Category = "Fruits"
	CategoryPulses      Category = "Pulses"
	CategorySpices      Category = "Spices"
	CategoryDairy       Category = "Dairy"
	CategoryOrganic     Category = "Organic"
	CategorySeeds       Category = "Seeds"
	CategoryFertilizers Category = "Fertilizers"
	CategoryEquipment   Category = "Equipment"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryGrains, CategoryVegetables, CategoryFruits, CategoryPulses,
		CategorySpices, CategoryDairy, CategoryOrganic, CategorySeeds,
		CategoryFertilizers, CategoryEquipment:
		return true
	}
	return false
}

type Unit string

const (
	UnitKg      Unit = "kg"
	UnitGram    Unit = "g"
	UnitQuintal Unit = "quintal"
	UnitTon     Unit = "ton"
	UnitLiter   Unit = "liter"
	UnitMl      Unit = "ml"
	UnitPiece   Unit = "piece"
	UnitDozen   Unit = "dozen"
	UnitBundle  Unit = "bundle"
)

func (u Unit) IsValid() bool {
	switch u {
	case UnitKg, UnitGram, UnitQuintal, UnitTon, UnitLiter, UnitMl, UnitPiece, UnitDozen, UnitBundle:
		return true
	}
	return false
}

type ProductImage struct {
	URL       string `bson:"url" json:"url"`
	ObjectKey string `bson:"object_key" json:"objectKey"`
}

type ProductLocation struct {
	State    string `bson:"state,omitempty" json:"state,omitempty"`
	District string `bson:"district,omitempty" json:"district,omitempty"`
}

type Product struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FarmerID      primitive.ObjectID `bson:"farmer_id" json:"farmerId"`
	Name          string             `bson:"name" json:"name"`
	Description   string             `bson:"description" json:"description"`
	Price         float64            `bson:"price" json:"price"`
	Category      Category           `bson:"category" json:"category"`
	Subcategory   string             `bson:"subcategory,omitempty" json:"subcategory,omitempty"`
	Images        []ProductImage     `bson:"images,omitempty" json:"images,omitempty"`
	StockQuantity int                `bson:"stock_quantity" json:"stockQuantity"`
	Unit          Unit               `bson:"unit" json:"unit"`
	Location      ProductLocation    `bson:"location,omitempty" json:"location,omitempty"`
	IsAvailable   bool               `bson:"is_available" json:"isAvailable"`
	AverageRating float64            `bson:"average_rating" json:"averageRating"`
	NumReviews    int                `bson:"num_reviews" json:"numReviews"`
	Tags          []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	CreatedAt     time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updatedAt"`
}

func NewProduct(farmerID primitive.ObjectID, name, description string, price float64, category Category, stock int, unit Unit) (*Product, error) {
	if farmerID.IsZero() {
		return nil, errors.New("farmer ID cannot be empty")
	}
	if name == "" {
		return nil, errors.New("product name is required")
	}
	if description == "" {
		return nil, errors.New("description is required")
	}
	if price < 0 {
		return nil, errors.New("price cannot be negative")
	}
	if !category.IsValid() {
		return nil, errors.New("unknown category")
	}
	if stock < 0 {
		return nil, errors.New("stock quantity cannot be negative")
	}
	if unit == "" {
		unit = UnitKg
	}
	if !unit.IsValid() {
		return nil, errors.New("unknown unit")
	}
	now := time.Now().UTC()
	return &Product{
		FarmerID:      farmerID,
		Name:          name,
		Description:   description,
		Price:         price,
		Category:      category,
		StockQuantity: stock,
		Unit:          unit,
		IsAvailable:   true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}
