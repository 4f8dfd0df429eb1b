package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/storefront/internal/checkout"
	"github.com/vasiliy-maslov/storefront/internal/notify"
	"github.com/vasiliy-maslov/storefront/internal/order"
)

type SubmitOrderRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Comment string `json:"comment"`
}

type SetStatusRequest struct {
	Status string `json:"status"`
}

// OrderHandler — оформление заказа, списки заказов и административная
// смена статуса.
type OrderHandler struct {
	workflow   *checkout.Workflow
	statusFlow *order.StatusFlow
	orders     order.Service
	hub        *notify.Hub
}

func NewOrderHandler(workflow *checkout.Workflow, statusFlow *order.StatusFlow, orders order.Service, hub *notify.Hub) *OrderHandler {
	return &OrderHandler{
		workflow:   workflow,
		statusFlow: statusFlow,
		orders:     orders,
		hub:        hub,
	}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router) {
	router.Post("/orders", h.handleSubmitOrder)
	router.Get("/orders/my", h.handleListMyOrders)
	router.Get("/notifications", h.handleNotifications)

	router.Get("/admin/orders", requireAdmin(h.handleListAllOrders))
	router.Patch("/admin/orders/{id}/status", requireAdmin(h.handleSetStatus))
}

func (h *OrderHandler) handleSubmitOrder(w http.ResponseWriter, r *http.Request) {
	var requestPayload SubmitOrderRequest
	if err := decodeBody(r, &requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request payload: %v", err))
		return
	}

	user := userFrom(r)
	info := order.OrderInfo{
		Name:    requestPayload.Name,
		Phone:   requestPayload.Phone,
		Address: requestPayload.Address,
		Comment: requestPayload.Comment,
	}

	created, err := h.workflow.Submit(r.Context(), user, info)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "failed to place order")
		return
	}
	if created == nil {
		// Предыдущая отправка ещё в полёте — повторный запрос игнорируется.
		respondWithJSON(w, http.StatusAccepted, map[string]string{"status": "submission already in flight"})
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *OrderHandler) handleListMyOrders(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	orders, err := h.orders.ListByUser(r.Context(), user.ID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list user orders")
		respondWithError(w, mapErrorToStatusCode(err), "failed to list orders")
		return
	}

	respondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) handleListAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAll(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list all orders")
		respondWithError(w, mapErrorToStatusCode(err), "failed to list orders")
		return
	}

	respondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var requestPayload SetStatusRequest
	if err := decodeBody(r, &requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request payload: %v", err))
		return
	}

	if err := h.statusFlow.SetStatus(r.Context(), orderID, order.Status(requestPayload.Status)); err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "failed to update order status")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *OrderHandler) handleNotifications(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.hub.Active())
}
