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

const reviewCollectionName = "reviews"

type reviewRepository struct {
	collection *mongo.Collection
}

func NewReviewRepository(client *mongo.Client, cfg config.MongoDBConfig, log logger.Logger) repository.ReviewRepository {
	collection := client.Database(cfg.Database).Collection(reviewCollectionName)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "product_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "product_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "farmer_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		log.Warnf("Could not create indexes on reviews: %v", err)
	}

	return &reviewRepository{collection: collection}
}

func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) (primitive.ObjectID, error) {
	res, err := r.collection.InsertOne(ctx, review)
	if err != nil {
		if isDuplicateKey(err) {
			return primitive.NilObjectID, repository.ErrDuplicateReview
		}
		return primitive.NilObjectID, fmt.Errorf("failed to create review: %w", err)
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("failed to convert inserted ID to ObjectID")
	}
	return id, nil
}

func (r *reviewRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Review, error) {
	var review entity.Review
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get review %s: %w", id.Hex(), err)
	}
	return &review, nil
}

func (r *reviewRepository) Update(ctx context.Context, review *entity.Review) error {
	review.UpdatedAt = time.Now().UTC()
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": review.ID}, bson.M{"$set": bson.M{
		"rating":     review.Rating,
		"comment":    review.Comment,
		"updated_at": review.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("failed to update review %s: %w", review.ID.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *reviewRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete review %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *reviewRepository) ListByProduct(ctx context.Context, productID primitive.ObjectID, page, pageSize int) ([]entity.Review, int64, error) {
	return r.list(ctx, bson.M{"product_id": productID}, page, pageSize)
}

func (r *reviewRepository) ListByFarmer(ctx context.Context, farmerID primitive.ObjectID, page, pageSize int) ([]entity.Review, int64, error) {
	return r.list(ctx, bson.M{"farmer_id": farmerID}, page, pageSize)
}

func (r *reviewRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, page, pageSize int) ([]entity.Review, int64, error) {
	return r.list(ctx, bson.M{"user_id": userID}, page, pageSize)
}

func (r *reviewRepository) ListFlagged(ctx context.Context, maxRating, page, pageSize int) ([]entity.Review, int64, error) {
	filter := bson.M{"rating": bson.M{"$lte": maxRating}}
	findOptions := options.Find().SetSort(bson.D{{Key: "rating", Value: 1}, {Key: "created_at", Value: -1}})
	if pageSize > 0 {
		if page <= 0 {
			page = 1
		}
		findOptions.SetSkip(int64((page - 1) * pageSize))
		findOptions.SetLimit(int64(pageSize))
	}

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list flagged reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var reviews []entity.Review
	if err = cursor.All(ctx, &reviews); err != nil {
		return nil, 0, fmt.Errorf("failed to decode flagged reviews: %w", err)
	}

	totalCount, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count flagged reviews: %w", err)
	}
	return reviews, totalCount, nil
}

func (r *reviewRepository) list(ctx context.Context, filter bson.M, page, pageSize int) ([]entity.Review, int64, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if pageSize > 0 {
		if page <= 0 {
			page = 1
		}
		findOptions.SetSkip(int64((page - 1) * pageSize))
		findOptions.SetLimit(int64(pageSize))
	}

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var reviews []entity.Review
	if err = cursor.All(ctx, &reviews); err != nil {
		return nil, 0, fmt.Errorf("failed to decode listed reviews: %w", err)
	}

	totalCount, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}
	return reviews, totalCount, nil
}

func (r *reviewRepository) AggregateProductRating(ctx context.Context, productID primitive.ObjectID) (*repository.RatingSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "product_id", Value: productID}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$product_id"},
			{Key: "average", Value: bson.D{{Key: "$avg", Value: "$rating"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate product rating: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Average float64 `bson:"average"`
		Count   int64   `bson:"count"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode rating aggregate: %w", err)
	}

	// No reviews left resets the product back to zero.
	if len(rows) == 0 {
		return &repository.RatingSummary{}, nil
	}
	return &repository.RatingSummary{
		Average: rows[0].Average,
		Count:   rows[0].Count,
	}, nil
}
