package services

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/diewo77/go-pos/internal/models"
	"github.com/diewo77/go-pos/internal/money"
	"github.com/diewo77/go-pos/validation"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaxItemQuantity caps the quantity of a single line.
const MaxItemQuantity = 10_000

// ItemInput is one requested line: a product and how many.
type ItemInput struct {
	ProductID uint     `json:"productId"`
	Quantity  Quantity `json:"quantity"`
}

// Quantity decodes leniently: a whole number, or a string holding one, is
// kept; anything else (fractions, null, text, booleans) decodes to 0 and the
// line falls back to quantity 1.
type Quantity int

func (q *Quantity) UnmarshalJSON(data []byte) error {
	*q = 0
	raw := strings.TrimSpace(string(bytes.Trim(bytes.TrimSpace(data), `"`)))
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*q = clampQuantity(float64(n))
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if (err != nil && !errors.Is(err, strconv.ErrRange)) || math.IsNaN(f) || f != math.Trunc(f) {
		return nil
	}
	*q = clampQuantity(f)
	return nil
}

func clampQuantity(f float64) Quantity {
	switch {
	case f > math.MaxInt32:
		return math.MaxInt32
	case f < 0:
		return 0
	}
	return Quantity(f)
}

// AppendResult is what AppendItems returns: the price added and the new state.
type AppendResult struct {
	AdditionalPrice money.Cents   `json:"additionalPrice"`
	Order           *models.Order `json:"order"`
}

// OrderService owns the order aggregate: its items, total and status.
type OrderService struct {
	db        *gorm.DB
	catalog   ProductFinder
	newNumber func() string
}

func NewOrderService(db *gorm.DB, catalog ProductFinder) *OrderService {
	return &OrderService{db: db, catalog: catalog, newNumber: NewOrderNumber}
}

// WithNumberGenerator replaces the order number generator.
func (s *OrderService) WithNumberGenerator(fn func() string) *OrderService {
	s.newNumber = fn
	return s
}

// NewOrderNumber returns "ORD-" followed by a time-ordered UUIDv7.
func NewOrderNumber() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return "ORD-" + id.String()
}

// Create validates the request against the catalog and stores the order with
// its item snapshots in one transaction. Nothing is written on failure.
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	v := make(validation.Violations)
	validation.PositiveInt("tableNumber", in.TableNumber, v)
	validation.NotEmpty("items", len(in.Items), v)
	method, ok := normalizePaymentMethod(in.PaymentMethod)
	if !ok {
		v["paymentMethod"] = "invalid_value"
	}
	if !v.Empty() {
		return nil, validationError(CodeValidationFailed, v)
	}

	items, total, err := s.resolve(ctx, in.Items)
	if err != nil {
		return nil, err
	}

	order := models.Order{
		OrderNumber:   s.newNumber(),
		TableNumber:   in.TableNumber,
		Status:        models.OrderStatusPending,
		TotalPrice:    total,
		PaymentMethod: method,
		WaiterName:    trimmedOrNil(in.WaiterName),
		Notes:         trimmedOrNil(in.Notes),
		Items:         items,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&order).Error
	})
	if err != nil {
		return nil, internal("create order", err)
	}
	order.Payments = []models.Payment{}
	return &order, nil
}

// AppendItems adds lines to an existing order, increments its total and
// sends a ready order back to the kitchen.
func (s *OrderService) AppendItems(ctx context.Context, orderID uint, in []ItemInput) (*AppendResult, error) {
	v := make(validation.Violations)
	validation.NotEmpty("items", len(in), v)
	if !v.Empty() {
		return nil, validationError(CodeValidationFailed, v)
	}
	items, additional, err := s.resolve(ctx, in)
	if err != nil {
		return nil, err
	}

	var order *models.Order
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := lockOrder(tx, orderID)
		if err != nil {
			return err
		}
		if current.Status.IsTerminal() {
			return conflict(CodeOrderAlreadyPaid)
		}
		if _, ok := current.TotalPrice.AddChecked(additional); !ok {
			return validationError(CodeValidationFailed, validation.Violations{"total": "too_large"})
		}
		for i := range items {
			items[i].OrderID = orderID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		updates := map[string]any{
			"total_price_cents": gorm.Expr("total_price_cents + ?", int64(additional)),
		}
		if next := current.Status.AfterAppend(); next != current.Status {
			updates["status"] = next
		}
		if err := tx.Model(&models.Order{}).Where("id = ?", orderID).Updates(updates).Error; err != nil {
			return err
		}
		order, err = loadOrder(tx, orderID)
		return err
	})
	if err != nil {
		return nil, internal("append items", err)
	}
	return &AppendResult{AdditionalPrice: additional, Order: order}, nil
}

// SetStatus moves an order along its lifecycle. Staying put is a no-op;
// moving backward is a conflict. A payment method, when given, is stored too.
func (s *OrderService) SetStatus(ctx context.Context, orderID uint, status models.OrderStatus, paymentMethod *string) (*models.Order, error) {
	v := make(validation.Violations)
	if !status.Valid() {
		v["status"] = "invalid_value"
	}
	method, ok := normalizePaymentMethod(paymentMethod)
	if !ok {
		v["paymentMethod"] = "invalid_value"
	}
	if !v.Empty() {
		return nil, validationError(CodeValidationFailed, v)
	}

	var order *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := lockOrder(tx, orderID)
		if err != nil {
			return err
		}
		if !current.Status.CanTransitionTo(status) {
			return conflict(CodeIllegalStatusTransition)
		}
		updates := map[string]any{"status": status}
		if method != nil {
			updates["payment_method"] = *method
		}
		if err := tx.Model(&models.Order{}).Where("id = ?", orderID).Updates(updates).Error; err != nil {
			return err
		}
		order, err = loadOrder(tx, orderID)
		return err
	})
	if err != nil {
		return nil, internal("set status", err)
	}
	return order, nil
}

// List returns orders newest first, optionally restricted to some statuses.
func (s *OrderService) List(ctx context.Context, statuses ...models.OrderStatus) ([]models.Order, error) {
	for _, st := range statuses {
		if !st.Valid() {
			return nil, validationError(CodeValidationFailed, validation.Violations{"status": "invalid_value"})
		}
	}
	q := withChildren(s.db.WithContext(ctx))
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	orders := []models.Order{}
	if err := q.Order("created_at desc").Order("id desc").Find(&orders).Error; err != nil {
		return nil, internal("list orders", err)
	}
	return orders, nil
}

// Get loads one order with its items and payments.
func (s *OrderService) Get(ctx context.Context, orderID uint) (*models.Order, error) {
	order, err := loadOrder(s.db.WithContext(ctx), orderID)
	if err != nil {
		return nil, internal("get order", err)
	}
	return order, nil
}

// resolve turns requested lines into priced snapshots. Every product must
// exist; duplicates are resolved once and kept as separate lines.
func (s *OrderService) resolve(ctx context.Context, in []ItemInput) ([]models.OrderItem, money.Cents, error) {
	ids := make([]uint, 0, len(in))
	for _, it := range in {
		ids = append(ids, it.ProductID)
	}
	products, err := s.catalog.FindMany(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var missing []string
	for _, id := range distinctIDs(ids) {
		if _, ok := byID[id]; !ok {
			missing = append(missing, strconv.FormatUint(uint64(id), 10))
		}
	}
	if len(missing) > 0 {
		return nil, 0, validationError(CodeUnknownProducts, validation.Violations{
			"productIds": strings.Join(missing, ","),
		})
	}

	items := make([]models.OrderItem, 0, len(in))
	var total money.Cents
	for i, it := range in {
		qty := int(it.Quantity)
		if qty <= 0 {
			qty = 1
		}
		if qty > MaxItemQuantity {
			return nil, 0, validationError(CodeValidationFailed, validation.Violations{
				"items[" + strconv.Itoa(i) + "].quantity": "too_large",
			})
		}
		item := models.SnapshotItem(byID[it.ProductID], qty)
		sub, ok := item.Price.MulChecked(qty)
		if ok {
			total, ok = total.AddChecked(sub)
		}
		if !ok {
			return nil, 0, validationError(CodeValidationFailed, validation.Violations{"total": "too_large"})
		}
		items = append(items, item)
	}
	return items, total, nil
}

// lockOrder reads the order row inside tx, holding a row lock where the
// dialect supports it. SQLite serializes writers on its own.
func lockOrder(tx *gorm.DB, orderID uint) (*models.Order, error) {
	q := tx
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var o models.Order
	if err := q.First(&o, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(CodeOrderNotFound)
		}
		return nil, err
	}
	return &o, nil
}

func loadOrder(db *gorm.DB, orderID uint) (*models.Order, error) {
	var o models.Order
	if err := withChildren(db).First(&o, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(CodeOrderNotFound)
		}
		return nil, err
	}
	return &o, nil
}

func withChildren(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") })
}

// normalizePaymentMethod validates an optional method. A nil or blank value
// means "not given".
func normalizePaymentMethod(raw *string) (*string, bool) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, true
	}
	m, ok := models.ParsePaymentMethod(*raw)
	if !ok {
		return nil, false
	}
	s := string(m)
	return &s, true
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
