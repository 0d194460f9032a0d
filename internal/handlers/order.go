package handlers

import (
	"net/http"
	"strings"

	"github.com/diewo77/go-pos/httpx"
	"github.com/diewo77/go-pos/internal/models"
	"github.com/diewo77/go-pos/internal/services"
)

// OrderView is an order as served to clients, with its computed balance.
type OrderView struct {
	*models.Order
	Balance services.Balance `json:"balance"`
}

func newOrderView(o *models.Order) OrderView {
	if o.Items == nil {
		o.Items = []models.OrderItem{}
	}
	if o.Payments == nil {
		o.Payments = []models.Payment{}
	}
	return OrderView{Order: o, Balance: services.BalanceOf(o)}
}

type OrderHandler struct {
	orders *services.OrderService
}

func NewOrderHandler(orders *services.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CreateOrderInput
	if !decode(w, r, &in) {
		return
	}
	o, err := h.orders.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, newOrderView(o))
}

// List accepts ?status=pending,ready to filter by one or more statuses.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	var statuses []models.OrderStatus
	for _, raw := range strings.Split(r.URL.Query().Get("status"), ",") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		st, ok := models.ParseOrderStatus(raw)
		if !ok {
			fail(w, r, http.StatusBadRequest, services.CodeValidationFailed, map[string]string{"status": "invalid_value"})
			return
		}
		statuses = append(statuses, st)
	}
	orders, err := h.orders.List(r.Context(), statuses...)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]OrderView, 0, len(orders))
	for i := range orders {
		out = append(out, newOrderView(&orders[i]))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *OrderHandler) View(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	o, err := h.orders.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, newOrderView(o))
}

type appendItemsRequest struct {
	Items []services.ItemInput `json:"items"`
}

func (h *OrderHandler) AppendItems(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req appendItemsRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.orders.AppendItems(r.Context(), id, req.Items)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"additionalPrice": res.AdditionalPrice,
		"order":           newOrderView(res.Order),
	})
}

type setStatusRequest struct {
	Status        string  `json:"status"`
	PaymentMethod *string `json:"paymentMethod"`
}

func (h *OrderHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req setStatusRequest
	if !decode(w, r, &req) {
		return
	}
	status, ok := models.ParseOrderStatus(req.Status)
	if !ok {
		fail(w, r, http.StatusBadRequest, services.CodeValidationFailed, map[string]string{"status": "invalid_value"})
		return
	}
	o, err := h.orders.SetStatus(r.Context(), id, status, req.PaymentMethod)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, newOrderView(o))
}
