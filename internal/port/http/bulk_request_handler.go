package http

import (
	"net/http"

	"github.com/gb112302/agriconnect/internal/domain/entity"
	"github.com/gb112302/agriconnect/internal/platform/logger"
	"github.com/gb112302/agriconnect/internal/service"
)

type BulkRequestHandler struct {
	bulk service.BulkRequestService
	log  logger.Logger
}

func NewBulkRequestHandler(bulk service.BulkRequestService, log logger.Logger) *BulkRequestHandler {
	return &BulkRequestHandler{bulk: bulk, log: log.Named("bulk_request_handler")}
}

func (h *BulkRequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	buyerID, _, err := actor(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	var req struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"requestedQuantity"`
		Message   string `json:"message"`
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

	request, err := h.bulk.CreateRequest(r.Context(), buyerID, productID, req.Quantity, req.Message)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusCreated, envelope{"bulkRequest": request})
}

func (h *BulkRequestHandler) Respond(w http.ResponseWriter, r *http.Request) {
	farmerID, _, err := actor(r)
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
		Message     string                   `json:"message"`
		CustomPrice float64                  `json:"customPrice"`
		Status      entity.BulkRequestStatus `json:"status"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}

	request, err := h.bulk.Respond(r.Context(), farmerID, id, service.RespondBulkRequestParams{
		Message:     req.Message,
		CustomPrice: req.CustomPrice,
		Status:      req.Status,
	})
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"bulkRequest": request})
}

func (h *BulkRequestHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	buyerID, _, err := actor(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	requests, err := h.bulk.ListBuyerRequests(r.Context(), buyerID)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"bulkRequests": requests})
}

func (h *BulkRequestHandler) ListIncoming(w http.ResponseWriter, r *http.Request) {
	farmerID, _, err := actor(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	requests, err := h.bulk.ListFarmerRequests(r.Context(), farmerID)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"bulkRequests": requests})
}
