package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gb112302/agriconnect/internal/app/config"
	"github.com/gb112302/agriconnect/internal/domain/entity"
	"github.com/gb112302/agriconnect/internal/platform/logger"
	"github.com/gb112302/agriconnect/internal/repository"
)

const paymentCollectionName = "payments"

type paymentRepository struct {
	collection *mongo.Collection
}

func NewPaymentRepository(client *mongo.Client, cfg config.MongoDBConfig, log logger.Logger) repository.PaymentRepository {
	collection := client.Database(cfg.Database).Collection(paymentCollectionName)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "order_id", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		log.Warnf("Could not create indexes on payments: %v", err)
	}

	return &paymentRepository{collection: collection}
}

func (r *paymentRepository) Create(ctx context.Context, payment *entity.Payment) (primitive.ObjectID, error) {
	res, err := r.collection.InsertOne(ctx, payment)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to create payment: %w", err)
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("failed to convert inserted ID to ObjectID")
	}
	return id, nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Payment, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *paymentRepository) GetByOrderID(ctx context.Context, orderID primitive.ObjectID) (*entity.Payment, error) {
	return r.findOne(ctx, bson.M{"order_id": orderID})
}

func (r *paymentRepository) findOne(ctx context.Context, filter bson.M) (*entity.Payment, error) {
	var payment entity.Payment
	err := r.collection.FindOne(ctx, filter).Decode(&payment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}
	return &payment, nil
}

func (r *paymentRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status entity.PaymentStatus, transactionID string) error {
	set := bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}
	if transactionID != "" {
		set["transaction_id"] = transactionID
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update payment %s: %w", id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *paymentRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]entity.Payment, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer cursor.Close(ctx)

	var payments []entity.Payment
	if err = cursor.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("failed to decode listed payments: %w", err)
	}
	return payments, nil
}
