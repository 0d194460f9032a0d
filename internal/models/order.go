package models

import (
	"time"

	"github.com/diewo77/go-pos/internal/money"
)

// Order is one table's ticket: its line items and the payments made against it.
type Order struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time      `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	OrderNumber   string         `gorm:"size:64;uniqueIndex;not null" json:"orderNumber"`
	TableNumber   int            `gorm:"not null" json:"tableNumber"`
	Status        OrderStatus    `gorm:"size:20;not null;index;default:'pending'" json:"status"`
	TotalPrice    money.Cents    `gorm:"column:total_price_cents;not null;default:0" json:"totalPrice"`
	PaymentMethod *string        `gorm:"size:20" json:"paymentMethod"` // one of the PaymentMethod values
	WaiterName    *string        `gorm:"size:255" json:"waiterName"`
	Notes         *string        `gorm:"type:text" json:"notes"`

	Items    []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Payments []Payment   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"payments"`
}

// ItemsTotal recomputes the total from the loaded items.
func (o *Order) ItemsTotal() money.Cents {
	var total money.Cents
	for _, it := range o.Items {
		total += it.Subtotal()
	}
	return total
}

// PaidTotal sums the loaded payments.
func (o *Order) PaidTotal() money.Cents {
	var paid money.Cents
	for _, p := range o.Payments {
		paid += p.Amount
	}
	return paid
}

// OrderItem is a priced snapshot of a product at the moment it was ordered.
type OrderItem struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time   `json:"createdAt"`
	OrderID     uint        `gorm:"index;not null" json:"orderId"`
	ProductID   uint        `gorm:"index" json:"productId"`
	ProductName string      `gorm:"size:255;not null" json:"productName"`
	Category    string      `gorm:"size:100;not null" json:"category"`
	Price       money.Cents `gorm:"column:price_cents;not null" json:"price"`
	Quantity    int         `gorm:"not null;default:1" json:"quantity"`
}

// Subtotal is price × quantity.
func (it *OrderItem) Subtotal() money.Cents {
	return it.Price.Mul(it.Quantity)
}

// SnapshotItem copies the product fields an order item keeps.
func SnapshotItem(p Product, qty int) OrderItem {
	return OrderItem{
		ProductID:   p.ID,
		ProductName: p.Name,
		Category:    p.Category,
		Price:       p.Price,
		Quantity:    qty,
	}
}
