package services

import (
	"context"

	"github.com/diewo77/go-pos/internal/models"
	"github.com/diewo77/go-pos/internal/money"
	"gorm.io/gorm"
)

// DefaultTopProducts is the size of the best seller list when none is asked.
const DefaultTopProducts = 5

// MethodTotal is the money collected through one payment method.
type MethodTotal struct {
	Method models.PaymentMethod `json:"method"`
	Amount money.Cents          `json:"amount"`
	Count  int64                `json:"count"`
}

// ProductSales aggregates the order lines of one product.
type ProductSales struct {
	ProductName string      `json:"productName"`
	Category    string      `json:"category"`
	Quantity    int64       `json:"quantity"`
	Revenue     money.Cents `json:"revenue"`
}

// SalesReport summarises paid orders.
type SalesReport struct {
	PaidOrders  int64          `json:"paidOrders"`
	Revenue     money.Cents    `json:"revenue"`
	ByMethod    []MethodTotal  `json:"byMethod"`
	TopProducts []ProductSales `json:"topProducts"`
}

type ReportService struct {
	db *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

// Sales computes revenue and best sellers over paid orders. A non-positive
// top falls back to DefaultTopProducts.
func (s *ReportService) Sales(ctx context.Context, top int) (*SalesReport, error) {
	if top <= 0 {
		top = DefaultTopProducts
	}
	db := s.db.WithContext(ctx)
	rep := SalesReport{ByMethod: []MethodTotal{}, TopProducts: []ProductSales{}}

	err := db.Model(&models.Order{}).
		Where("status = ?", models.OrderStatusPaid).
		Count(&rep.PaidOrders).Error
	if err != nil {
		return nil, internal("count paid orders", err)
	}
	row := db.Model(&models.Order{}).
		Where("status = ?", models.OrderStatusPaid).
		Select("COALESCE(SUM(total_price_cents), 0)").
		Row()
	if err := row.Scan(&rep.Revenue); err != nil {
		return nil, internal("sum revenue", err)
	}

	err = db.Table("payments").
		Select("payments.method AS method, COALESCE(SUM(payments.amount_cents), 0) AS amount, COUNT(*) AS count").
		Joins("JOIN orders ON orders.id = payments.order_id").
		Where("orders.status = ?", models.OrderStatusPaid).
		Group("payments.method").
		Order("amount desc").
		Scan(&rep.ByMethod).Error
	if err != nil {
		return nil, internal("sum by method", err)
	}

	err = db.Table("order_items").
		Select("order_items.product_name AS product_name, order_items.category AS category, " +
			"SUM(order_items.quantity) AS quantity, SUM(order_items.price_cents * order_items.quantity) AS revenue").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status = ?", models.OrderStatusPaid).
		Group("order_items.product_name, order_items.category").
		Order("quantity desc").
		Order("product_name asc").
		Limit(top).
		Scan(&rep.TopProducts).Error
	if err != nil {
		return nil, internal("top products", err)
	}
	if rep.ByMethod == nil {
		rep.ByMethod = []MethodTotal{}
	}
	if rep.TopProducts == nil {
		rep.TopProducts = []ProductSales{}
	}
	return &rep, nil
}
