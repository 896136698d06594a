package http

import (
	"net/http"
	"time"

	"github.com/gb112302/agriconnect/internal/domain/entity"
	"github.com/gb112302/agriconnect/internal/platform/logger"
	"github.com/gb112302/agriconnect/internal/repository"
	"github.com/gb112302/agriconnect/internal/service"
)

type AdminHandler struct {
	admin   service.AdminService
	catalog service.CatalogService
	log     logger.Logger
}

func NewAdminHandler(admin service.AdminService, catalog service.CatalogService, log logger.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, catalog: catalog, log: log.Named("admin_handler")}
}

func (h *AdminHandler) PlatformStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.PlatformStats(r.Context())
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"stats": stats})
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.admin.ListUsers(r.Context(), repository.ListUsersParams{
		Role:     entity.Role(q.Get("role")),
		Search:   q.Get("search"),
		Page:     queryInt(r, "page", 1),
		PageSize: queryInt(r, "pageSize", 20),
	})
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{
		"users":      result.Users,
		"totalCount": result.TotalCount,
		"page":       result.Page,
		"pageSize":   result.PageSize,
	})
}

func (h *AdminHandler) SetUserActive(w http.ResponseWriter, r *http.Request) {
	adminID, _, err := actor(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	userID, err := pathID(r, "id")
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	var req struct {
		Active bool `json:"active"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}

	if err := h.admin.SetUserActive(r.Context(), adminID, userID, req.Active); err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"message": "user status updated"})
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	adminID, _, err := actor(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	userID, err := pathID(r, "id")
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	if err := h.admin.DeleteUser(r.Context(), adminID, userID); err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"message": "user deleted"})
}

func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	result, err := h.admin.ListAllOrders(r.Context(),
		entity.OrderStatus(r.URL.Query().Get("status")),
		queryInt(r, "page", 1), queryInt(r, "pageSize", 20))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{
		"orders":     result.Orders,
		"totalCount": result.TotalCount,
		"page":       result.Page,
		"pageSize":   result.PageSize,
		"totalPages": result.TotalPages,
	})
}

// ApproveProduct toggles the listing's availability flag, hiding it from or
// returning it to the public catalog.
func (h *AdminHandler) ApproveProduct(w http.ResponseWriter, r *http.Request) {
	adminID, _, err := actor(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	productID, err := pathID(r, "id")
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	var req struct {
		Available bool `json:"available"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}

	product, err := h.catalog.UpdateProduct(r.Context(), adminID, productID, true, service.UpdateProductParams{
		IsAvailable: &req.Available,
	})
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"product": product})
}

func (h *AdminHandler) SalesReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var from, to time.Time
	if raw := q.Get("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondError(w, h.log, service.ErrValidation)
			return
		}
		from = t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondError(w, h.log, service.ErrValidation)
			return
		}
		to = t
	}

	report, err := h.admin.SalesReport(r.Context(), from, to)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"report": report})
}

func (h *AdminHandler) FlaggedReviews(w http.ResponseWriter, r *http.Request) {
	reviews, total, err := h.admin.FlaggedReviews(r.Context(),
		queryInt(r, "maxRating", 2),
		queryInt(r, "page", 1), queryInt(r, "pageSize", 20))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"reviews": reviews, "totalCount": total})
}
