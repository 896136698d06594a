package http

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gb112302/agriconnect/internal/domain/entity"
	"github.com/gb112302/agriconnect/internal/platform/logger"
	"github.com/gb112302/agriconnect/internal/service"
)

type OrderHandler struct {
	orders service.OrderService
	log    logger.Logger
}

func NewOrderHandler(orders service.OrderService, log logger.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, log: log.Named("order_handler")}
}

func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	buyerID, _, err := actor(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	var req struct {
		Items []struct {
			ProductID string `json:"productId"`
			Quantity  int    `json:"quantity"`
		} `json:"items"`
		DeliveryAddress entity.DeliveryAddress `json:"deliveryAddress"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}

	items := make([]service.OrderItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := primitive.ObjectIDFromHex(item.ProductID)
		if err != nil {
			respondError(w, h.log, service.ErrValidation)
			return
		}
		items = append(items, service.OrderItemInput{ProductID: productID, Quantity: item.Quantity})
	}

	order, err := h.orders.PlaceOrder(r.Context(), buyerID, service.PlaceOrderParams{
		Items:           items,
		DeliveryAddress: req.DeliveryAddress,
	})
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusCreated, envelope{"order": order})
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	order, err := h.orders.GetOrder(r.Context(), actorID, role, id)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"order": order})
}

func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	buyerID, _, err := actor(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	result, err := h.orders.ListBuyerOrders(r.Context(), buyerID,
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

// ListSales shows a farmer the orders containing their produce.
func (h *OrderHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	farmerID, _, err := actor(r)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	result, err := h.orders.ListFarmerOrders(r.Context(), farmerID,
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

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
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

	var req struct {
		Status entity.OrderStatus `json:"status"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), actorID, role, id, req.Status)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"order": order})
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
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

	order, err := h.orders.CancelOrder(r.Context(), actorID, role, id)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"order": order})
}
