package handlers

import (
	"net/http"

	"github.com/diewo77/go-pos/httpx"
	"github.com/diewo77/go-pos/internal/models"
	"github.com/diewo77/go-pos/internal/services"
)

// PaymentView is the stored payment plus the order it was applied to.
type PaymentView struct {
	*models.Payment
	Order OrderView `json:"order"`
}

type PaymentHandler struct {
	payments *services.PaymentService
}

func NewPaymentHandler(payments *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.RecordPaymentInput
	if !decode(w, r, &in) {
		return
	}
	rc, err := h.payments.RecordPayment(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, PaymentView{Payment: rc.Payment, Order: newOrderView(rc.Order)})
}
