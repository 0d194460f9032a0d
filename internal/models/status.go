package models

import "strings"

// OrderStatus is the kitchen/cashier lifecycle of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusInProgress OrderStatus = "in-progress"
	OrderStatusReady      OrderStatus = "ready"
	OrderStatusPaid       OrderStatus = "paid"
)

// orderStatusRank orders statuses along the lifecycle. Transitions are only
// allowed toward an equal or higher rank.
var orderStatusRank = map[OrderStatus]int{
	OrderStatusPending:    0,
	OrderStatusInProgress: 1,
	OrderStatusReady:      2,
	OrderStatusPaid:       3,
}

// OrderStatuses lists every status in lifecycle order.
func OrderStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusPending, OrderStatusInProgress, OrderStatusReady, OrderStatusPaid}
}

// ParseOrderStatus validates a raw status value.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	st := OrderStatus(strings.TrimSpace(s))
	_, ok := orderStatusRank[st]
	return st, ok
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	_, ok := orderStatusRank[s]
	return ok
}

// IsTerminal is true for paid orders.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusPaid
}

// CanTransitionTo reports whether a caller may move an order from s to next.
// Staying in place is allowed; moving backward never is. The ready →
// in-progress demotion caused by new items is applied by the order engine
// itself and does not go through this table.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	from, ok := orderStatusRank[s]
	if !ok {
		return false
	}
	to, ok := orderStatusRank[next]
	if !ok {
		return false
	}
	if s.IsTerminal() {
		return next == s
	}
	return to >= from
}

// AfterAppend is the status an order takes once new items are added.
func (s OrderStatus) AfterAppend() OrderStatus {
	if s == OrderStatusReady {
		return OrderStatusInProgress
	}
	return s
}

// PaymentMethod is how a payment was collected.
type PaymentMethod string

const (
	PaymentMethodCash    PaymentMethod = "cash"
	PaymentMethodCard    PaymentMethod = "card"
	PaymentMethodDigital PaymentMethod = "digital"
)

// ParsePaymentMethod validates a raw method value.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	m := PaymentMethod(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodDigital:
		return m, true
	}
	return "", false
}

// PaymentStatus is fixed to completed; no pending/failed states exist.
type PaymentStatus string

const PaymentStatusCompleted PaymentStatus = "completed"
