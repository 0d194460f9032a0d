package models

import (
	"time"

	"github.com/diewo77/go-pos/internal/money"
)

// Payment is an append-only money transfer against an order.
type Payment struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time     `json:"createdAt"`
	OrderID   uint          `gorm:"index;not null" json:"orderId"`
	Amount    money.Cents   `gorm:"column:amount_cents;not null" json:"amount"`
	Method    PaymentMethod `gorm:"size:20;not null" json:"method"`
	Status    PaymentStatus `gorm:"size:20;not null;default:'completed'" json:"status"`
}
