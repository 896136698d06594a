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

const bulkRequestCollectionName = "bulk_requests"

type bulkRequestRepository struct {
	collection *mongo.Collection
}

func NewBulkRequestRepository(client *mongo.Client, cfg config.MongoDBConfig, log logger.Logger) repository.BulkRequestRepository {
	collection := client.Database(cfg.Database).Collection(bulkRequestCollectionName)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "buyer_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "product_id", Value: 1}}},
	})
	if err != nil {
		log.Warnf("Could not create indexes on bulk_requests: %v", err)
	}

	return &bulkRequestRepository{collection: collection}
}

func (r *bulkRequestRepository) Create(ctx context.Context, request *entity.BulkRequest) (primitive.ObjectID, error) {
	res, err := r.collection.InsertOne(ctx, request)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to create bulk request: %w", err)
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("failed to convert inserted ID to ObjectID")
	}
	return id, nil
}

func (r *bulkRequestRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.BulkRequest, error) {
	var request entity.BulkRequest
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&request)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get bulk request %s: %w", id.Hex(), err)
	}
	return &request, nil
}

func (r *bulkRequestRepository) Update(ctx context.Context, request *entity.BulkRequest) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": request.ID}, bson.M{"$set": bson.M{
		"farmer_response": request.FarmerResponse,
		"status":          request.Status,
	}})
	if err != nil {
		return fmt.Errorf("failed to update bulk request %s: %w", request.ID.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *bulkRequestRepository) ListByBuyer(ctx context.Context, buyerID primitive.ObjectID) ([]entity.BulkRequest, error) {
	return r.list(ctx, bson.M{"buyer_id": buyerID})
}

func (r *bulkRequestRepository) ListByProducts(ctx context.Context, productIDs []primitive.ObjectID) ([]entity.BulkRequest, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	return r.list(ctx, bson.M{"product_id": bson.M{"$in": productIDs}})
}

func (r *bulkRequestRepository) list(ctx context.Context, filter bson.M) ([]entity.BulkRequest, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list bulk requests: %w", err)
	}
	defer cursor.Close(ctx)

	var requests []entity.BulkRequest
	if err = cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode listed bulk requests: %w", err)
	}
	return requests, nil
}
