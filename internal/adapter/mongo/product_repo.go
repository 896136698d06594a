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

const productCollectionName = "products"

type productRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(client *mongo.Client, cfg config.MongoDBConfig, log logger.Logger) repository.ProductRepository {
	collection := client.Database(cfg.Database).Collection(productCollectionName)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "farmer_id", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "name", Value: "text"}, {Key: "description", Value: "text"}, {Key: "tags", Value: "text"}}},
	})
	if err != nil {
		log.Warnf("Could not create indexes on products: %v", err)
	}

	return &productRepository{collection: collection}
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) (primitive.ObjectID, error) {
	res, err := r.collection.InsertOne(ctx, product)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to create product: %w", err)
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("failed to convert inserted ID to ObjectID")
	}
	return id, nil
}

func (r *productRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Product, error) {
	var product entity.Product
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product %s: %w", id.Hex(), err)
	}
	return &product, nil
}

func (r *productRepository) GetManyByIDs(ctx context.Context, ids []primitive.ObjectID) ([]entity.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []entity.Product
	if err = cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	product.UpdatedAt = time.Now().UTC()
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": product.ID}, product)
	if err != nil {
		return fmt.Errorf("failed to update product %s: %w", product.ID.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func sortForKey(key string) bson.D {
	switch key {
	case repository.SortPriceAsc:
		return bson.D{{Key: "price", Value: 1}}
	case repository.SortPriceDesc:
		return bson.D{{Key: "price", Value: -1}}
	case repository.SortRating:
		return bson.D{{Key: "average_rating", Value: -1}, {Key: "num_reviews", Value: -1}}
	case repository.SortPopularity:
		return bson.D{{Key: "num_reviews", Value: -1}, {Key: "average_rating", Value: -1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}}
	}
}

func (r *productRepository) List(ctx context.Context, params repository.ListProductsParams) (*repository.ListProductsResult, error) {
	filter := bson.M{}
	if params.Category != "" {
		filter["category"] = params.Category
	}
	if !params.FarmerID.IsZero() {
		filter["farmer_id"] = params.FarmerID
	}
	if params.Search != "" {
		filter["$text"] = bson.M{"$search": params.Search}
	}
	if params.State != "" {
		filter["location.state"] = params.State
	}
	if params.District != "" {
		filter["location.district"] = params.District
	}
	if params.OnlyAvailable {
		filter["is_available"] = true
	}
	if params.MinRating > 0 {
		filter["average_rating"] = bson.M{"$gte": params.MinRating}
	}
	priceFilter := bson.M{}
	if params.MinPrice > 0 {
		priceFilter["$gte"] = params.MinPrice
	}
	if params.MaxPrice > 0 {
		priceFilter["$lte"] = params.MaxPrice
	}
	if len(priceFilter) > 0 {
		filter["price"] = priceFilter
	}

	findOptions := options.Find().SetSort(sortForKey(params.SortBy))
	if params.PageSize > 0 {
		if params.Page <= 0 {
			params.Page = 1
		}
		findOptions.SetSkip(int64((params.Page - 1) * params.PageSize))
		findOptions.SetLimit(int64(params.PageSize))
	}

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []entity.Product
	if err = cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode listed products: %w", err)
	}

	totalCount, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	totalPages := 0
	if params.PageSize > 0 {
		totalPages = (int(totalCount) + params.PageSize - 1) / params.PageSize
	} else if totalCount > 0 {
		totalPages = 1
	}

	return &repository.ListProductsResult{
		Products:   products,
		TotalCount: totalCount,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
	}, nil
}

func (r *productRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

// DecrementStock succeeds only when the filter matches a document that still
// has at least quantity units. A matched count of zero means either the
// product is gone or the stock is too low; the two are told apart with a
// follow-up read.
func (r *productRepository) DecrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error {
	filter := bson.M{
		"_id":            id,
		"stock_quantity": bson.M{"$gte": quantity},
	}
	update := bson.M{
		"$inc": bson.M{"stock_quantity": -quantity},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}

	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to decrement stock for product %s: %w", id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		var product entity.Product
		errFind := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
		if errors.Is(errFind, mongo.ErrNoDocuments) {
			return repository.ErrNotFound
		}
		name := ""
		if errFind == nil {
			name = product.Name
		}
		return &repository.InsufficientStockError{
			ProductID:   id.Hex(),
			ProductName: name,
			Requested:   quantity,
		}
	}
	return nil
}

func (r *productRepository) IncrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$inc": bson.M{"stock_quantity": quantity},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("failed to increment stock for product %s: %w", id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *productRepository) SetRating(ctx context.Context, id primitive.ObjectID, average float64, count int64) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"average_rating": average,
		"num_reviews":    count,
		"updated_at":     time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("failed to set rating for product %s: %w", id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *productRepository) IncrementOrderCount(ctx context.Context, id primitive.ObjectID, delta int) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$inc": bson.M{"order_count": delta},
	})
	if err != nil {
		return fmt.Errorf("failed to adjust order count for product %s: %w", id.Hex(), err)
	}
	return nil
}
