package service

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gb112302/agriconnect/internal/domain/entity"
	"github.com/gb112302/agriconnect/internal/platform/logger"
	"github.com/gb112302/agriconnect/internal/repository"
)

type AdminService interface {
	PlatformStats(ctx context.Context) (*repository.PlatformStats, error)
	ListUsers(ctx context.Context, params repository.ListUsersParams) (*repository.ListUsersResult, error)
	SetUserActive(ctx context.Context, adminID, userID primitive.ObjectID, active bool) error
	DeleteUser(ctx context.Context, adminID, userID primitive.ObjectID) error
	ListAllOrders(ctx context.Context, status entity.OrderStatus, page, pageSize int) (*repository.ListOrdersResult, error)
	FlaggedReviews(ctx context.Context, maxRating, page, pageSize int) ([]entity.Review, int64, error)
	SalesReport(ctx context.Context, from, to time.Time) ([]repository.DailySales, error)
}

const recentSampleSize = 5

type adminService struct {
	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	reviewRepo  repository.ReviewRepository
	sessions    repository.SessionRepository
	log         logger.Logger
}

func NewAdminService(
	userRepo repository.UserRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	reviewRepo repository.ReviewRepository,
	sessions repository.SessionRepository,
	log logger.Logger,
) AdminService {
	return &adminService{
		userRepo:    userRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		reviewRepo:  reviewRepo,
		sessions:    sessions,
		log:         log,
	}
}

func (s *adminService) PlatformStats(ctx context.Context) (*repository.PlatformStats, error) {
	byStatus, err := s.orderRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	revenue, err := s.orderRepo.TotalRevenue(ctx)
	if err != nil {
		return nil, err
	}
	totalUsers, err := s.userRepo.Count(ctx, "")
	if err != nil {
		return nil, err
	}
	farmers, err := s.userRepo.Count(ctx, entity.RoleFarmer)
	if err != nil {
		return nil, err
	}
	buyers, err := s.userRepo.Count(ctx, entity.RoleBuyer)
	if err != nil {
		return nil, err
	}
	products, err := s.productRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	recentOrders, err := s.orderRepo.List(ctx, repository.ListOrdersParams{Page: 1, PageSize: recentSampleSize})
	if err != nil {
		return nil, err
	}
	recentProducts, err := s.productRepo.List(ctx, repository.ListProductsParams{
		SortBy:   repository.SortNewest,
		Page:     1,
		PageSize: recentSampleSize,
	})
	if err != nil {
		return nil, err
	}

	var totalOrders int64
	for _, count := range byStatus {
		totalOrders += count
	}

	return &repository.PlatformStats{
		TotalOrders:    totalOrders,
		OrdersByStatus: byStatus,
		TotalRevenue:   revenue,
		TotalUsers:     totalUsers,
		TotalFarmers:   farmers,
		TotalBuyers:    buyers,
		TotalProducts:  products,
		RecentOrders:   recentOrders.Orders,
		RecentProducts: recentProducts.Products,
	}, nil
}

func (s *adminService) ListUsers(ctx context.Context, params repository.ListUsersParams) (*repository.ListUsersResult, error) {
	if params.PageSize <= 0 {
		params.PageSize = 20
	}
	return s.userRepo.List(ctx, params)
}

func (s *adminService) SetUserActive(ctx context.Context, adminID, userID primitive.ObjectID, active bool) error {
	if adminID == userID {
		return fmt.Errorf("%w: cannot change your own account status", ErrValidation)
	}
	if err := s.userRepo.SetActive(ctx, userID, active); err != nil {
		return err
	}
	if !active {
		// A banned user is logged out immediately.
		if err := s.sessions.InvalidateToken(ctx, userID.Hex()); err != nil {
			s.log.Warnf("Failed to invalidate session for banned user %s: %v", userID.Hex(), err)
		}
	}
	s.log.Infof("Admin %s set user %s active=%v", adminID.Hex(), userID.Hex(), active)
	return nil
}

func (s *adminService) DeleteUser(ctx context.Context, adminID, userID primitive.ObjectID) error {
	if adminID == userID {
		return fmt.Errorf("%w: cannot delete your own account", ErrValidation)
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}
	_ = s.sessions.InvalidateToken(ctx, userID.Hex())
	s.log.Infof("Admin %s deleted user %s", adminID.Hex(), userID.Hex())
	return nil
}

func (s *adminService) ListAllOrders(ctx context.Context, status entity.OrderStatus, page, pageSize int) (*repository.ListOrdersResult, error) {
	if pageSize <= 0 {
		pageSize = 20
	}
	return s.orderRepo.List(ctx, repository.ListOrdersParams{
		Status:   status,
		Page:     page,
		PageSize: pageSize,
	})
}

// SalesReport returns per-day order counts and revenue. An empty range
// defaults to the last 30 days.
func (s *adminService) SalesReport(ctx context.Context, from, to time.Time) ([]repository.DailySales, error) {
	if to.IsZero() {
		to = time.Now().UTC()
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -30)
	}
	if !from.Before(to) {
		return nil, fmt.Errorf("%w: report range start must precede its end", ErrValidation)
	}
	return s.orderRepo.SalesReport(ctx, from, to)
}

// FlaggedReviews surfaces the lowest-rated reviews for moderation.
func (s *adminService) FlaggedReviews(ctx context.Context, maxRating, page, pageSize int) ([]entity.Review, int64, error) {
	if maxRating <= 0 {
		maxRating = 2
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return s.reviewRepo.ListFlagged(ctx, maxRating, page, pageSize)
}
