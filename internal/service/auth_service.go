package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/gb112302/agriconnect/internal/adapter/email"
	"github.com/gb112302/agriconnect/internal/domain/entity"
	"github.com/gb112302/agriconnect/internal/platform/logger"
	"github.com/gb112302/agriconnect/internal/repository"
)

const (
	verificationTokenTTL = 24 * time.Hour
	resetTokenTTL        = 1 * time.Hour
)

type RegisterParams struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Role     entity.Role
	Location entity.Location
}

type UpdateProfileParams struct {
	Name     string
	Phone    string
	Location *entity.Location
}

type AuthService interface {
	Register(ctx context.Context, params RegisterParams) (*entity.User, string, error)
	Login(ctx context.Context, emailAddr, password string) (*entity.User, string, error)
	Logout(ctx context.Context, userID primitive.ObjectID) error
	GetProfile(ctx context.Context, userID primitive.ObjectID) (*entity.User, error)
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, params UpdateProfileParams) (*entity.User, error)
	VerifyEmail(ctx context.Context, token string) error
	ForgotPassword(ctx context.Context, emailAddr string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	ChangePassword(ctx context.Context, userID primitive.ObjectID, current, newPassword string) error
	ResendVerification(ctx context.Context, userID primitive.ObjectID) error
	SelectRole(ctx context.Context, userID primitive.ObjectID, role entity.Role) (*entity.User, string, error)
	SwitchRole(ctx context.Context, userID primitive.ObjectID, role entity.Role) (*entity.User, string, error)
	AddToWishlist(ctx context.Context, userID, productID primitive.ObjectID) error
	RemoveFromWishlist(ctx context.Context, userID, productID primitive.ObjectID) error
	GetWishlist(ctx context.Context, userID primitive.ObjectID) ([]entity.Product, error)
}

type authService struct {
	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
	sessions    repository.SessionRepository
	tokens      *TokenManager
	mailer      email.EmailSender
	log         logger.Logger
}

func NewAuthService(
	userRepo repository.UserRepository,
	productRepo repository.ProductRepository,
	sessions repository.SessionRepository,
	tokens *TokenManager,
	mailer email.EmailSender,
	log logger.Logger,
) AuthService {
	return &authService{
		userRepo:    userRepo,
		productRepo: productRepo,
		sessions:    sessions,
		tokens:      tokens,
		mailer:      mailer,
		log:         log,
	}
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// hashToken is what gets persisted; the raw token only ever travels in the
// email, so a database leak does not expose usable tokens.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *authService) Register(ctx context.Context, params RegisterParams) (*entity.User, string, error) {
	params.Email = strings.ToLower(strings.TrimSpace(params.Email))
	if params.Name == "" || params.Email == "" {
		return nil, "", fmt.Errorf("%w: name and email are required", ErrValidation)
	}
	if !strings.Contains(params.Email, "@") {
		return nil, "", fmt.Errorf("%w: invalid email address", ErrValidation)
	}
	if len(params.Password) < 6 {
		return nil, "", fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}
	role := params.Role
	if role == "" {
		role = entity.RoleBuyer
	}
	if !role.IsValid() || role == entity.RoleAdmin {
		return nil, "", fmt.Errorf("%w: invalid role %q", ErrValidation, params.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	verifyToken, err := randomToken()
	if err != nil {
		return nil, "", err
	}
	verifyExpire := time.Now().UTC().Add(verificationTokenTTL)

	now := time.Now().UTC()
	user := &entity.User{
		Name:                    params.Name,
		Email:                   params.Email,
		Password:                string(hash),
		Phone:                   params.Phone,
		Location:                params.Location,
		Role:                    role,
		CurrentRole:             role,
		AvailableRoles:          []entity.Role{entity.RoleBuyer, entity.RoleFarmer},
		EmailVerificationToken:  hashToken(verifyToken),
		EmailVerificationExpire: &verifyExpire,
		IsActive:                true,
		CreatedAt:               now,
		UpdatedAt:               now,
	}

	id, err := s.userRepo.Create(ctx, user)
	if err != nil {
		return nil, "", err
	}
	user.ID = id

	token, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, "", err
	}

	if s.mailer != nil {
		s.sendVerificationEmail(user, verifyToken)
	}

	s.log.Infof("User registered: %s (%s)", user.Email, user.ID.Hex())
	return user, token, nil
}

func (s *authService) sendVerificationEmail(user *entity.User, token string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		body := fmt.Sprintf("<p>Hello %s,</p><p>Verify your email with this token: <b>%s</b></p>", user.Name, token)
		if err := s.mailer.Send(ctx, []string{user.Email}, "Verify your email", body, ""); err != nil {
			s.log.Warnf("Failed to send verification email to %s: %v", user.Email, err)
		}
	}()
}

func (s *authService) Login(ctx context.Context, emailAddr, password string) (*entity.User, string, error) {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, "", ErrAccountDisabled
	}

	token, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *authService) issueSession(ctx context.Context, user *entity.User) (string, error) {
	token, err := s.tokens.Issue(user.ID.Hex(), user.ActiveRole())
	if err != nil {
		return "", err
	}
	if err := s.sessions.CacheToken(ctx, user.ID.Hex(), token, s.tokens.TTL()); err != nil {
		// Session cache failure must not block login.
		s.log.Warnf("Failed to cache session for user %s: %v", user.ID.Hex(), err)
	}
	return token, nil
}

func (s *authService) Logout(ctx context.Context, userID primitive.ObjectID) error {
	return s.sessions.InvalidateToken(ctx, userID.Hex())
}

func (s *authService) GetProfile(ctx context.Context, userID primitive.ObjectID) (*entity.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *authService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, params UpdateProfileParams) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if params.Name != "" {
		user.Name = params.Name
	}
	if params.Phone != "" {
		user.Phone = params.Phone
	}
	if params.Location != nil {
		user.Location = *params.Location
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("%w: verification token is required", ErrValidation)
	}
	user, err := s.userRepo.GetByVerificationToken(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: invalid or expired verification token", ErrValidation)
		}
		return err
	}

	user.EmailVerified = true
	user.EmailVerificationToken = ""
	user.EmailVerificationExpire = nil
	return s.userRepo.Update(ctx, user)
}

func (s *authService) ForgotPassword(ctx context.Context, emailAddr string) error {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		// Whether the account exists is not disclosed.
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	token, err := randomToken()
	if err != nil {
		return err
	}
	expire := time.Now().UTC().Add(resetTokenTTL)
	user.ResetPasswordToken = hashToken(token)
	user.ResetPasswordExpire = &expire

	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	if s.mailer != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			body := fmt.Sprintf("<p>Hello %s,</p><p>Reset your password with this token: <b>%s</b></p><p>The token expires in 1 hour.</p>", user.Name, token)
			if err := s.mailer.Send(ctx, []string{user.Email}, "Password reset", body, ""); err != nil {
				s.log.Warnf("Failed to send reset email to %s: %v", user.Email, err)
			}
		}()
	}
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}
	user, err := s.userRepo.GetByResetToken(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: invalid or expired reset token", ErrValidation)
		}
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return err
	}

	// Old sessions are cut off after a reset.
	_ = s.sessions.InvalidateToken(ctx, user.ID.Hex())
	return nil
}

func (s *authService) ChangePassword(ctx context.Context, userID primitive.ObjectID, current, newPassword string) error {
	if len(newPassword) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.userRepo.UpdatePassword(ctx, user.ID, string(hash))
}

func (s *authService) ResendVerification(ctx context.Context, userID primitive.ObjectID) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return fmt.Errorf("%w: email is already verified", ErrValidation)
	}

	token, err := randomToken()
	if err != nil {
		return err
	}
	expire := time.Now().UTC().Add(verificationTokenTTL)
	user.EmailVerificationToken = hashToken(token)
	user.EmailVerificationExpire = &expire

	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}
	if s.mailer != nil {
		s.sendVerificationEmail(user, token)
	}
	return nil
}

// SelectRole is the post-registration role pick; it behaves like SwitchRole
// but exists as a distinct step in the onboarding flow.
func (s *authService) SelectRole(ctx context.Context, userID primitive.ObjectID, role entity.Role) (*entity.User, string, error) {
	return s.SwitchRole(ctx, userID, role)
}

func (s *authService) SwitchRole(ctx context.Context, userID primitive.ObjectID, role entity.Role) (*entity.User, string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	if err := user.SwitchRole(role); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrForbidden, err)
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, "", err
	}

	// A fresh token carries the new role.
	token, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *authService) AddToWishlist(ctx context.Context, userID, productID primitive.ObjectID) error {
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		return err
	}
	return s.userRepo.AddToWishlist(ctx, userID, productID)
}

func (s *authService) RemoveFromWishlist(ctx context.Context, userID, productID primitive.ObjectID) error {
	return s.userRepo.RemoveFromWishlist(ctx, userID, productID)
}

func (s *authService) GetWishlist(ctx context.Context, userID primitive.ObjectID) ([]entity.Product, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(user.Wishlist) == 0 {
		return []entity.Product{}, nil
	}
	return s.productRepo.GetManyByIDs(ctx, user.Wishlist)
}
