package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gb112302/agriconnect/internal/domain/entity"
)

type ListOrdersParams struct {
	BuyerID  primitive.ObjectID
	FarmerID primitive.ObjectID
	Status   entity.OrderStatus
	Page     int
	PageSize int
}

type ListOrdersResult struct {
	Orders     []entity.Order
	TotalCount int64
	Page       int
	PageSize   int
	TotalPages int
}

type UpdateOrderStatusParams struct {
	OrderID primitive.ObjectID
	Status  entity.OrderStatus
	Version int
}

// PlatformStats is the aggregate snapshot served to the admin console.
type PlatformStats struct {
	TotalOrders    int64
	OrdersByStatus map[entity.OrderStatus]int64
	TotalRevenue   float64
	TotalUsers     int64
	TotalFarmers   int64
	TotalBuyers    int64
	TotalProducts  int64
	RecentOrders   []entity.Order
	RecentProducts []entity.Product
}

// DailySales is one row of the sales report, grouped by calendar day.
type DailySales struct {
	Date    string  `bson:"_id" json:"date"`
	Orders  int64   `bson:"orders" json:"orders"`
	Revenue float64 `bson:"revenue" json:"revenue"`
}

type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Order, error)
	UpdateStatus(ctx context.Context, params UpdateOrderStatusParams) error
	SetPayment(ctx context.Context, orderID, paymentID primitive.ObjectID, state entity.PaymentState) error
	List(ctx context.Context, params ListOrdersParams) (*ListOrdersResult, error)
	// HasFinishedPurchase reports whether the buyer has a delivered or
	// completed order containing the product.
	HasFinishedPurchase(ctx context.Context, buyerID, productID primitive.ObjectID) (bool, error)
	CountByStatus(ctx context.Context) (map[entity.OrderStatus]int64, error)
	TotalRevenue(ctx context.Context) (float64, error)
	// SalesReport aggregates non-cancelled orders per day inside [from, to).
	SalesReport(ctx context.Context, from, to time.Time) ([]DailySales, error)
}
