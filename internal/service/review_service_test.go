package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gb112302/agriconnect/internal/domain/entity"
	"github.com/gb112302/agriconnect/internal/platform/logger"
	"github.com/gb112302/agriconnect/internal/repository"
)

func TestCreateReview_RequiresFinishedPurchase(t *testing.T) {
	reviewRepo := new(MockReviewRepository)
	productRepo := new(MockProductRepository)
	orderRepo := new(MockOrderRepository)
	svc := NewReviewService(reviewRepo, productRepo, orderRepo, nil, nil, logger.NewNop())

	userID := primitive.NewObjectID()
	product := testProduct(primitive.NewObjectID(), "Mangoes", 120.0, 40)

	productRepo.On("GetByID", mock.Anything, product.ID).Return(product, nil)
	orderRepo.On("HasFinishedPurchase", mock.Anything, userID, product.ID).Return(false, nil)

	_, err := svc.CreateReview(context.Background(), userID, product.ID, 5, "great")

	assert.ErrorIs(t, err, ErrForbidden)
	reviewRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateReview_RecomputesProductRating(t *testing.T) {
	reviewRepo := new(MockReviewRepository)
	productRepo := new(MockProductRepository)
	orderRepo := new(MockOrderRepository)
	svc := NewReviewService(reviewRepo, productRepo, orderRepo, nil, nil, logger.NewNop())

	userID := primitive.NewObjectID()
	farmerID := primitive.NewObjectID()
	product := testProduct(farmerID, "Potatoes", 18.0, 200)

	productRepo.On("GetByID", mock.Anything, product.ID).Return(product, nil)
	orderRepo.On("HasFinishedPurchase", mock.Anything, userID, product.ID).Return(true, nil)
	reviewRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Review")).Return(primitive.NewObjectID(), nil)
	reviewRepo.On("AggregateProductRating", mock.Anything, product.ID).Return(&repository.RatingSummary{
		Average: 4.666666,
		Count:   3,
	}, nil)
	// Average rounds to one decimal.
	productRepo.On("SetRating", mock.Anything, product.ID, 4.7, int64(3)).Return(nil)

	review, err := svc.CreateReview(context.Background(), userID, product.ID, 5, "fresh and well packed")

	assert.NoError(t, err)
	assert.Equal(t, farmerID, review.FarmerID)
	assert.Equal(t, 5, review.Rating)
	productRepo.AssertExpectations(t)
}

func TestCreateReview_InvalidRating(t *testing.T) {
	reviewRepo := new(MockReviewRepository)
	productRepo := new(MockProductRepository)
	orderRepo := new(MockOrderRepository)
	svc := NewReviewService(reviewRepo, productRepo, orderRepo, nil, nil, logger.NewNop())

	userID := primitive.NewObjectID()
	product := testProduct(primitive.NewObjectID(), "Corn", 22.0, 60)

	productRepo.On("GetByID", mock.Anything, product.ID).Return(product, nil)
	orderRepo.On("HasFinishedPurchase", mock.Anything, userID, product.ID).Return(true, nil)

	_, err := svc.CreateReview(context.Background(), userID, product.ID, 6, "too good to be true")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateReview(context.Background(), userID, product.ID, 3, "")
	assert.ErrorIs(t, err, ErrValidation)
	reviewRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func storedReview(userID, productID primitive.ObjectID) *entity.Review {
	review, _ := entity.NewReview(userID, productID, primitive.NewObjectID(), 4, "good")
	review.ID = primitive.NewObjectID()
	return review
}

func TestUpdateReview_OnlyAuthor(t *testing.T) {
	reviewRepo := new(MockReviewRepository)
	productRepo := new(MockProductRepository)
	orderRepo := new(MockOrderRepository)
	svc := NewReviewService(reviewRepo, productRepo, orderRepo, nil, nil, logger.NewNop())

	review := storedReview(primitive.NewObjectID(), primitive.NewObjectID())
	reviewRepo.On("GetByID", mock.Anything, review.ID).Return(review, nil)

	_, err := svc.UpdateReview(context.Background(), primitive.NewObjectID(), review.ID, 1, "changed my mind")

	assert.ErrorIs(t, err, ErrForbidden)
	reviewRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestDeleteReview_ResetsRatingWhenNoneLeft(t *testing.T) {
	reviewRepo := new(MockReviewRepository)
	productRepo := new(MockProductRepository)
	orderRepo := new(MockOrderRepository)
	svc := NewReviewService(reviewRepo, productRepo, orderRepo, nil, nil, logger.NewNop())

	userID := primitive.NewObjectID()
	review := storedReview(userID, primitive.NewObjectID())

	reviewRepo.On("GetByID", mock.Anything, review.ID).Return(review, nil)
	reviewRepo.On("Delete", mock.Anything, review.ID).Return(nil)
	reviewRepo.On("AggregateProductRating", mock.Anything, review.ProductID).Return(&repository.RatingSummary{}, nil)
	productRepo.On("SetRating", mock.Anything, review.ProductID, 0.0, int64(0)).Return(nil)

	err := svc.DeleteReview(context.Background(), userID, entity.RoleBuyer, review.ID)

	assert.NoError(t, err)
	productRepo.AssertExpectations(t)
}

func TestDeleteReview_AdminCanModerate(t *testing.T) {
	reviewRepo := new(MockReviewRepository)
	productRepo := new(MockProductRepository)
	orderRepo := new(MockOrderRepository)
	svc := NewReviewService(reviewRepo, productRepo, orderRepo, nil, nil, logger.NewNop())

	review := storedReview(primitive.NewObjectID(), primitive.NewObjectID())

	reviewRepo.On("GetByID", mock.Anything, review.ID).Return(review, nil)
	reviewRepo.On("Delete", mock.Anything, review.ID).Return(nil)
	reviewRepo.On("AggregateProductRating", mock.Anything, review.ProductID).Return(&repository.RatingSummary{Average: 3.0, Count: 1}, nil)
	productRepo.On("SetRating", mock.Anything, review.ProductID, 3.0, int64(1)).Return(nil)

	err := svc.DeleteReview(context.Background(), primitive.NewObjectID(), entity.RoleAdmin, review.ID)

	assert.NoError(t, err)
	reviewRepo.AssertExpectations(t)
}
