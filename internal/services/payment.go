package services

import (
	"context"

	"github.com/diewo77/go-pos/internal/models"
	"github.com/diewo77/go-pos/internal/money"
	"github.com/diewo77/go-pos/validation"
	"gorm.io/gorm"
)

// SettlementTolerance is how far below the total the paid amount may fall
// and still settle the order (0.10 in currency units).
const SettlementTolerance money.Cents = 10

// Balance is the money state of an order. Remaining may be negative when the
// order was overpaid.
type Balance struct {
	Paid      money.Cents `json:"paid"`
	Remaining money.Cents `json:"remaining"`
}

// BalanceOf computes the balance from the loaded payments.
func BalanceOf(o *models.Order) Balance {
	paid := o.PaidTotal()
	return Balance{Paid: paid, Remaining: o.TotalPrice - paid}
}

// Settled reports whether paid covers total within SettlementTolerance.
func Settled(total, paid money.Cents) bool {
	return paid >= total-SettlementTolerance
}

// RecordPaymentInput is one payment attempt.
type RecordPaymentInput struct {
	OrderID uint        `json:"orderId"`
	Amount  money.Cents `json:"amount"`
	Method  string      `json:"method"`
}

// Receipt is the stored payment plus the order state it produced.
type Receipt struct {
	Payment *models.Payment `json:"payment"`
	Order   *models.Order   `json:"order"`
	Balance Balance         `json:"balance"`
}

// PaymentService records payments and settles orders.
type PaymentService struct {
	db *gorm.DB
}

func NewPaymentService(db *gorm.DB) *PaymentService {
	return &PaymentService{db: db}
}

// RecordPayment stores a completed payment and marks the order paid once the
// accumulated amount settles it. Calls are not deduplicated.
func (s *PaymentService) RecordPayment(ctx context.Context, in RecordPaymentInput) (*Receipt, error) {
	v := make(validation.Violations)
	if in.OrderID == 0 {
		v["orderId"] = "required"
	}
	validation.PositiveInt64("amount", int64(in.Amount), v)
	method, ok := models.ParsePaymentMethod(in.Method)
	if !ok {
		v["method"] = "invalid_value"
	}
	if !v.Empty() {
		return nil, validationError(CodeValidationFailed, v)
	}

	payment := models.Payment{
		OrderID: in.OrderID,
		Amount:  in.Amount,
		Method:  method,
		Status:  models.PaymentStatusCompleted,
	}
	var order *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := lockOrder(tx, in.OrderID)
		if err != nil {
			return err
		}
		if current.Status.IsTerminal() {
			return conflict(CodeOrderAlreadyPaid)
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		var paid money.Cents
		row := tx.Model(&models.Payment{}).
			Where("order_id = ?", in.OrderID).
			Select("COALESCE(SUM(amount_cents), 0)").
			Row()
		if err := row.Scan(&paid); err != nil {
			return err
		}
		if Settled(current.TotalPrice, paid) {
			err := tx.Model(&models.Order{}).
				Where("id = ?", in.OrderID).
				Update("status", models.OrderStatusPaid).Error
			if err != nil {
				return err
			}
		}
		order, err = loadOrder(tx, in.OrderID)
		return err
	})
	if err != nil {
		return nil, internal("record payment", err)
	}
	return &Receipt{Payment: &payment, Order: order, Balance: BalanceOf(order)}, nil
}
