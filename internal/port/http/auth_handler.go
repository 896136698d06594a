package http

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gb112302/agriconnect/internal/domain/entity"
	"github.com/gb112302/agriconnect/internal/platform/logger"
	"github.com/gb112302/agriconnect/internal/service"
)

type AuthHandler struct {
	auth service.AuthService
	log  logger.Logger
}

func NewAuthHandler(auth service.AuthService, log logger.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log.Named("auth_handler")}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string          `json:"name"`
		Email    string          `json:"email"`
		Password string          `json:"password"`
		Phone    string          `json:"phone"`
		Role     entity.Role     `json:"role"`
		Location entity.Location `json:"location"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}

	user, token, err := h.auth.Register(r.Context(), service.RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Role:     req.Role,
		Location: req.Location,
	})
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusCreated, envelope{"user": user, "token": token})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}

	user, token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"user": user, "token": token})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, _, err := actor(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	if err := h.auth.Logout(r.Context(), userID); err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"message": "logged out"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _, err := actor(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	user, err := h.auth.GetProfile(r.Context(), userID)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"user": user})
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _, err := actor(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	var req struct {
		Name     string           `json:"name"`
		Phone    string           `json:"phone"`
		Location *entity.Location `json:"location"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}

	user, err := h.auth.UpdateProfile(r.Context(), userID, service.UpdateProfileParams{
		Name:     req.Name,
		Phone:    req.Phone,
		Location: req.Location,
	})
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"user": user})
}

func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}
	if err := h.auth.VerifyEmail(r.Context(), req.Token); err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"message": "email verified"})
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}
	if err := h.auth.ForgotPassword(r.Context(), req.Email); err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"message": "if the account exists, a reset email was sent"})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}
	if err := h.auth.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"message": "password reset"})
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, _, err := actor(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}

	if err := h.auth.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"message": "password changed"})
}

func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	userID, _, err := actor(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	if err := h.auth.ResendVerification(r.Context(), userID); err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"message": "verification email sent"})
}

func (h *AuthHandler) SelectRole(w http.ResponseWriter, r *http.Request) {
	h.changeRole(w, r, h.auth.SelectRole)
}

func (h *AuthHandler) SwitchRole(w http.ResponseWriter, r *http.Request) {
	h.changeRole(w, r, h.auth.SwitchRole)
}

func (h *AuthHandler) changeRole(w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, userID primitive.ObjectID, role entity.Role) (*entity.User, string, error)) {
	userID, _, err := actor(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	var req struct {
		Role entity.Role `json:"role"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}

	user, token, err := fn(r.Context(), userID, req.Role)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"user": user, "token": token})
}

func (h *AuthHandler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	userID, _, err := actor(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	productID, err := pathID(r, "productID")
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	if err := h.auth.AddToWishlist(r.Context(), userID, productID); err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"message": "added to wishlist"})
}

func (h *AuthHandler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	userID, _, err := actor(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	productID, err := pathID(r, "productID")
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	if err := h.auth.RemoveFromWishlist(r.Context(), userID, productID); err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"message": "removed from wishlist"})
}

func (h *AuthHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	userID, _, err := actor(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	products, err := h.auth.GetWishlist(r.Context(), userID)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"wishlist": products})
}
