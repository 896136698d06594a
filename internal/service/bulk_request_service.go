package service

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gb112302/agriconnect/internal/domain/entity"
	"github.com/gb112302/agriconnect/internal/platform/logger"
	"github.com/gb112302/agriconnect/internal/repository"
)

type RespondBulkRequestParams struct {
	Message     string
	CustomPrice float64
	Status      entity.BulkRequestStatus
}

type BulkRequestService interface {
	CreateRequest(ctx context.Context, buyerID, productID primitive.ObjectID, quantity int, message string) (*entity.BulkRequest, error)
	Respond(ctx context.Context, farmerID, requestID primitive.ObjectID, params RespondBulkRequestParams) (*entity.BulkRequest, error)
	ListBuyerRequests(ctx context.Context, buyerID primitive.ObjectID) ([]entity.BulkRequest, error)
	ListFarmerRequests(ctx context.Context, farmerID primitive.ObjectID) ([]entity.BulkRequest, error)
}

type bulkRequestService struct {
	bulkRepo    repository.BulkRequestRepository
	productRepo repository.ProductRepository
	log         logger.Logger
}

func NewBulkRequestService(
	bulkRepo repository.BulkRequestRepository,
	productRepo repository.ProductRepository,
	log logger.Logger,
) BulkRequestService {
	return &bulkRequestService{
		bulkRepo:    bulkRepo,
		productRepo: productRepo,
		log:         log,
	}
}

func (s *bulkRequestService) CreateRequest(ctx context.Context, buyerID, productID primitive.ObjectID, quantity int, message string) (*entity.BulkRequest, error) {
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		return nil, err
	}

	request, err := entity.NewBulkRequest(buyerID, productID, quantity, message)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	id, err := s.bulkRepo.Create(ctx, request)
	if err != nil {
		return nil, err
	}
	request.ID = id

	s.log.Infof("Bulk request %s created by buyer %s for product %s (qty %d)",
		request.ID.Hex(), buyerID.Hex(), productID.Hex(), quantity)
	return request, nil
}

// Respond records the counter-offer of the farmer who owns the requested
// product. Only that farmer may answer.
func (s *bulkRequestService) Respond(ctx context.Context, farmerID, requestID primitive.ObjectID, params RespondBulkRequestParams) (*entity.BulkRequest, error) {
	request, err := s.bulkRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, request.ProductID)
	if err != nil {
		return nil, err
	}
	if product.FarmerID != farmerID {
		return nil, fmt.Errorf("%w: request targets another farmer's product", ErrForbidden)
	}
	if params.CustomPrice < 0 {
		return nil, fmt.Errorf("%w: custom price cannot be negative", ErrValidation)
	}

	if err := request.Respond(params.Message, params.CustomPrice, params.Status); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := s.bulkRepo.Update(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

func (s *bulkRequestService) ListBuyerRequests(ctx context.Context, buyerID primitive.ObjectID) ([]entity.BulkRequest, error) {
	return s.bulkRepo.ListByBuyer(ctx, buyerID)
}

// ListFarmerRequests returns the requests aimed at any of the farmer's
// products.
func (s *bulkRequestService) ListFarmerRequests(ctx context.Context, farmerID primitive.ObjectID) ([]entity.BulkRequest, error) {
	result, err := s.productRepo.List(ctx, repository.ListProductsParams{FarmerID: farmerID})
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(result.Products))
	for _, p := range result.Products {
		ids = append(ids, p.ID)
	}
	if len(ids) == 0 {
		return []entity.BulkRequest{}, nil
	}
	return s.bulkRepo.ListByProducts(ctx, ids)
}
