package http

import (
	"net/http"

	"github.com/gb112302/agriconnect/internal/platform/logger"
	"github.com/gb112302/agriconnect/internal/service"
)

type PaymentHandler struct {
	payments service.PaymentService
	log      logger.Logger
}

func NewPaymentHandler(payments service.PaymentService, log logger.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, log: log.Named("payment_handler")}
}

func (h *PaymentHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	buyerID, _, err := actor(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	var req struct {
		OrderID string `json:"orderId"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}
	orderID, err := parseObjectID(req.OrderID)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	result, err := h.payments.CreateIntent(r.Context(), buyerID, orderID)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusCreated, envelope{
		"payment":      result.Payment,
		"clientSecret": result.ClientSecret,
	})
}

func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	buyerID, _, err := actor(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	payment, err := h.payments.VerifyPayment(r.Context(), buyerID, id)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"payment": payment})
}

func (h *PaymentHandler) Refund(w http.ResponseWriter, r *http.Request) {
	actorID, role, err := actor(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	payment, err := h.payments.RefundPayment(r.Context(), actorID, role, id)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"payment": payment})
}

func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	actorID, role, err := actor(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	payment, err := h.payments.GetPayment(r.Context(), actorID, role, id)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"payment": payment})
}

func (h *PaymentHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, _, err := actor(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	payments, err := h.payments.ListUserPayments(r.Context(), userID)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"payments": payments})
}
