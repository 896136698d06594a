package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/gb112302/agriconnect/internal/domain/entity"
	"github.com/gb112302/agriconnect/internal/platform/logger"
	"github.com/gb112302/agriconnect/internal/platform/metrics"
	"github.com/gb112302/agriconnect/internal/port/http/middleware"
	"github.com/gb112302/agriconnect/internal/repository"
	"github.com/gb112302/agriconnect/internal/service"
)

type RouterDeps struct {
	Auth     *AuthHandler
	Products *ProductHandler
	Orders   *OrderHandler
	Bulk     *BulkRequestHandler
	Reviews  *ReviewHandler
	Payments *PaymentHandler
	Chats    *ChatHandler
	Admin    *AdminHandler

	Tokens   *service.TokenManager
	Sessions repository.SessionRepository
	Metrics  *metrics.Manager
	Log      logger.Logger
}

func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(deps.Log))
	r.Use(chimiddleware.Recoverer)
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondSuccess(w, http.StatusOK, envelope{"status": "ok"})
	})

	authMW := middleware.JWTAuth(deps.Tokens, deps.Sessions, deps.Log)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", deps.Auth.Register)
		r.Post("/login", deps.Auth.Login)
		r.Post("/verify-email", deps.Auth.VerifyEmail)
		r.Post("/forgot-password", deps.Auth.ForgotPassword)
		r.Post("/reset-password", deps.Auth.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(authMW)
			r.Post("/logout", deps.Auth.Logout)
			r.Get("/me", deps.Auth.Me)
			r.Put("/profile", deps.Auth.UpdateProfile)
			r.Put("/change-password", deps.Auth.ChangePassword)
			r.Post("/resend-verification", deps.Auth.ResendVerification)
			r.Post("/select-role", deps.Auth.SelectRole)
			r.Post("/switch-role", deps.Auth.SwitchRole)
			r.Get("/wishlist", deps.Auth.GetWishlist)
			r.Post("/wishlist/{productID}", deps.Auth.AddToWishlist)
			r.Delete("/wishlist/{productID}", deps.Auth.RemoveFromWishlist)
		})
	})

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", deps.Products.List)
		r.Get("/farmer/{farmerID}", deps.Products.ByFarmer)
		r.Get("/{id}", deps.Products.Get)

		r.Group(func(r chi.Router) {
			r.Use(authMW)
			r.Get("/mine", deps.Products.MyProducts)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(entity.RoleFarmer))
				r.Post("/", deps.Products.Create)
				r.Put("/{id}", deps.Products.Update)
				r.Delete("/{id}", deps.Products.Delete)
				r.Post("/{id}/images", deps.Products.UploadImage)
				r.Delete("/{id}/images", deps.Products.RemoveImage)
			})
		})
	})

	r.Route("/api/orders", func(r chi.Router) {
		r.Use(authMW)
		r.With(middleware.RequireRole(entity.RoleBuyer)).Post("/", deps.Orders.Place)
		r.Get("/", deps.Orders.ListMine)
		r.Get("/sales", deps.Orders.ListSales)
		r.Get("/{id}", deps.Orders.Get)
		r.Put("/{id}/status", deps.Orders.UpdateStatus)
		r.Post("/{id}/cancel", deps.Orders.Cancel)
	})

	r.Route("/api/bulk-requests", func(r chi.Router) {
		r.Use(authMW)
		r.With(middleware.RequireRole(entity.RoleBuyer)).Post("/", deps.Bulk.Create)
		r.Get("/", deps.Bulk.ListMine)
		r.Get("/incoming", deps.Bulk.ListIncoming)
		r.Post("/{id}/respond", deps.Bulk.Respond)
	})

	r.Route("/api/reviews", func(r chi.Router) {
		r.Get("/product/{productID}", deps.Reviews.ListByProduct)
		r.Get("/farmer/{farmerID}", deps.Reviews.ListByFarmer)

		r.Group(func(r chi.Router) {
			r.Use(authMW)
			r.Post("/", deps.Reviews.Create)
			r.Get("/mine", deps.Reviews.ListMine)
			r.Put("/{id}", deps.Reviews.Update)
			r.Delete("/{id}", deps.Reviews.Delete)
		})
	})

	r.Route("/api/payments", func(r chi.Router) {
		r.Use(authMW)
		r.Post("/intent", deps.Payments.CreateIntent)
		r.Get("/", deps.Payments.ListMine)
		r.Get("/{id}", deps.Payments.Get)
		r.Post("/{id}/verify", deps.Payments.Verify)
		r.Post("/{id}/refund", deps.Payments.Refund)
	})

	r.Route("/api/chat", func(r chi.Router) {
		r.Use(authMW)
		r.Post("/", deps.Chats.Open)
		r.Get("/", deps.Chats.List)
		r.Get("/{id}", deps.Chats.Get)
		r.Post("/{id}/messages", deps.Chats.Send)
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(authMW)
		r.Use(middleware.RequireAdmin())
		r.Get("/platform-stats", deps.Admin.PlatformStats)
		r.Get("/users", deps.Admin.ListUsers)
		r.Put("/users/{id}/active", deps.Admin.SetUserActive)
		r.Delete("/users/{id}", deps.Admin.DeleteUser)
		r.Get("/orders", deps.Admin.ListOrders)
		r.Put("/products/{id}/approve", deps.Admin.ApproveProduct)
		r.Get("/reports/sales", deps.Admin.SalesReport)
		r.Get("/reviews/flagged", deps.Admin.FlaggedReviews)
	})

	return r
}
