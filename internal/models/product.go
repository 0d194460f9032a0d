package models

import (
	"strings"
	"time"

	"github.com/diewo77/go-pos/internal/money"
)

// DefaultCategory is used when a product is saved without a category.
const DefaultCategory = "Sin categoría"

// Product is a catalog entry. Stock is advisory and is never decremented by orders.
type Product struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
	Name      string      `gorm:"size:255;not null" json:"name"`
	Category  string      `gorm:"size:100;not null;default:'Sin categoría'" json:"category"`
	Price     money.Cents `gorm:"column:price_cents;not null" json:"price"`
	Stock     int         `gorm:"not null;default:0" json:"stock"`
}

// NormalizeCategory trims c and falls back to DefaultCategory.
func NormalizeCategory(c string) string {
	if c = strings.TrimSpace(c); c == "" {
		return DefaultCategory
	}
	return c
}
