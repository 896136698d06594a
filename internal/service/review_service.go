package service

import (
	"context"
	"fmt"
	"math"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gb112302/agriconnect/internal/domain/entity"
	"github.com/gb112302/agriconnect/internal/platform/logger"
	"github.com/gb112302/agriconnect/internal/platform/metrics"
	"github.com/gb112302/agriconnect/internal/repository"
)

type ReviewService interface {
	CreateReview(ctx context.Context, userID, productID primitive.ObjectID, rating int, comment string) (*entity.Review, error)
	UpdateReview(ctx context.Context, actorID, reviewID primitive.ObjectID, rating int, comment string) (*entity.Review, error)
	DeleteReview(ctx context.Context, actorID primitive.ObjectID, actorRole entity.Role, reviewID primitive.ObjectID) error
	ListProductReviews(ctx context.Context, productID primitive.ObjectID, page, pageSize int) ([]entity.Review, int64, error)
	ListFarmerReviews(ctx context.Context, farmerID primitive.ObjectID, page, pageSize int) ([]entity.Review, int64, error)
	ListUserReviews(ctx context.Context, userID primitive.ObjectID, page, pageSize int) ([]entity.Review, int64, error)
}

type reviewService struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	cache       repository.ProductCache
	metrics     *metrics.Manager
	log         logger.Logger
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	cache repository.ProductCache,
	m *metrics.Manager,
	log logger.Logger,
) ReviewService {
	return &reviewService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		cache:       cache,
		metrics:     m,
		log:         log,
	}
}

func (s *reviewService) CreateReview(ctx context.Context, userID, productID primitive.ObjectID, rating int, comment string) (*entity.Review, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	eligible, err := s.orderRepo.HasFinishedPurchase(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, fmt.Errorf("%w: %v", ErrForbidden, ErrNotEligible)
	}

	review, err := entity.NewReview(userID, productID, product.FarmerID, rating, comment)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	id, err := s.reviewRepo.Create(ctx, review)
	if err != nil {
		return nil, err
	}
	review.ID = id

	if err := s.recomputeProductRating(ctx, productID); err != nil {
		s.log.Errorf("Failed to recompute rating for product %s: %v", productID.Hex(), err)
	}

	if s.metrics != nil {
		s.metrics.ReviewsCreatedTotal.Inc()
	}
	s.log.Infof("Review %s created for product %s by user %s", review.ID.Hex(), productID.Hex(), userID.Hex())
	return review, nil
}

func (s *reviewService) UpdateReview(ctx context.Context, actorID, reviewID primitive.ObjectID, rating int, comment string) (*entity.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != actorID {
		return nil, fmt.Errorf("%w: review belongs to another user", ErrForbidden)
	}
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}
	if comment == "" {
		return nil, fmt.Errorf("%w: review comment is required", ErrValidation)
	}

	review.Rating = rating
	review.Comment = comment
	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}

	if err := s.recomputeProductRating(ctx, review.ProductID); err != nil {
		s.log.Errorf("Failed to recompute rating for product %s: %v", review.ProductID.Hex(), err)
	}
	return review, nil
}

func (s *reviewService) DeleteReview(ctx context.Context, actorID primitive.ObjectID, actorRole entity.Role, reviewID primitive.ObjectID) error {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if actorRole != entity.RoleAdmin && review.UserID != actorID {
		return fmt.Errorf("%w: review belongs to another user", ErrForbidden)
	}

	if err := s.reviewRepo.Delete(ctx, reviewID); err != nil {
		return err
	}

	if err := s.recomputeProductRating(ctx, review.ProductID); err != nil {
		s.log.Errorf("Failed to recompute rating for product %s: %v", review.ProductID.Hex(), err)
	}
	return nil
}

// recomputeProductRating rebuilds the derived aggregates from the reviews
// collection. The average is rounded to one decimal; a product with no
// reviews goes back to zero.
func (s *reviewService) recomputeProductRating(ctx context.Context, productID primitive.ObjectID) error {
	summary, err := s.reviewRepo.AggregateProductRating(ctx, productID)
	if err != nil {
		return err
	}

	average := math.Round(summary.Average*10) / 10
	if err := s.productRepo.SetRating(ctx, productID, average, summary.Count); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, productID.Hex()); err != nil {
			s.log.Warnf("Product cache invalidation failed for %s: %v", productID.Hex(), err)
		}
	}
	return nil
}

func (s *reviewService) ListProductReviews(ctx context.Context, productID primitive.ObjectID, page, pageSize int) ([]entity.Review, int64, error) {
	if pageSize <= 0 {
		pageSize = 20
	}
	return s.reviewRepo.ListByProduct(ctx, productID, page, pageSize)
}

func (s *reviewService) ListFarmerReviews(ctx context.Context, farmerID primitive.ObjectID, page, pageSize int) ([]entity.Review, int64, error) {
	if pageSize <= 0 {
		pageSize = 20
	}
	return s.reviewRepo.ListByFarmer(ctx, farmerID, page, pageSize)
}

func (s *reviewService) ListUserReviews(ctx context.Context, userID primitive.ObjectID, page, pageSize int) ([]entity.Review, int64, error) {
	if pageSize <= 0 {
		pageSize = 20
	}
	return s.reviewRepo.ListByUser(ctx, userID, page, pageSize)
}
