package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gb112302/agriconnect/internal/domain/entity"
)

type ListUsersParams struct {
	Role     entity.Role
	Search   string
	Page     int
	PageSize int
}

type ListUsersResult struct {
	Users      []entity.User
	TotalCount int64
	Page       int
	PageSize   int
}

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByResetToken(ctx context.Context, token string) (*entity.User, error)
	GetByVerificationToken(ctx context.Context, token string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error
	SetActive(ctx context.Context, id primitive.ObjectID, active bool) error
	AddToWishlist(ctx context.Context, userID, productID primitive.ObjectID) error
	RemoveFromWishlist(ctx context.Context, userID, productID primitive.ObjectID) error
	List(ctx context.Context, params ListUsersParams) (*ListUsersResult, error)
	Count(ctx context.Context, role entity.Role) (int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}
