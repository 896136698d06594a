package http

import (
	"net/http"

	"github.com/gb112302/agriconnect/internal/platform/logger"
	"github.com/gb112302/agriconnect/internal/service"
)

type ReviewHandler struct {
	reviews service.ReviewService
	log     logger.Logger
}

func NewReviewHandler(reviews service.ReviewService, log logger.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, log: log.Named("review_handler")}
}

func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _, err := actor(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	var req struct {
		ProductID string `json:"productId"`
		Rating    int    `json:"rating"`
		Comment   string `json:"comment"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}
	productID, err := parseObjectID(req.ProductID)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	review, err := h.reviews.CreateReview(r.Context(), userID, productID, req.Rating, req.Comment)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusCreated, envelope{"review": review})
}

func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _, err := actor(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}

	review, err := h.reviews.UpdateReview(r.Context(), userID, id, req.Rating, req.Comment)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"review": review})
}

func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, role, err := actor(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	if err := h.reviews.DeleteReview(r.Context(), userID, role, id); err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"message": "review deleted"})
}

func (h *ReviewHandler) ListByProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "productID")
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	reviews, total, err := h.reviews.ListProductReviews(r.Context(), productID,
		queryInt(r, "page", 1), queryInt(r, "pageSize", 20))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"reviews": reviews, "totalCount": total})
}

// ListMine returns the reviews written by the authenticated user.
func (h *ReviewHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, _, err := actor(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	reviews, total, err := h.reviews.ListUserReviews(r.Context(), userID,
		queryInt(r, "page", 1), queryInt(r, "pageSize", 20))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"reviews": reviews, "totalCount": total})
}

func (h *ReviewHandler) ListByFarmer(w http.ResponseWriter, r *http.Request) {
	farmerID, err := pathID(r, "farmerID")
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	reviews, total, err := h.reviews.ListFarmerReviews(r.Context(), farmerID,
		queryInt(r, "page", 1), queryInt(r, "pageSize", 20))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"reviews": reviews, "totalCount": total})
}
