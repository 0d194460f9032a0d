package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/diewo77/go-pos/internal/models"
	"github.com/diewo77/go-pos/internal/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestOrderService_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	coffee := f.product(t, "Café", 1000)

	order, err := f.orders.Create(ctx, CreateOrderInput{
		TableNumber: 3,
		Items:       []ItemInput{{ProductID: coffee.ID, Quantity: 2}},
		WaiterName:  strPtr(" Ana "),
	})
	require.NoError(t, err)
	assert.Equal(t, "ORD-TEST-0001", order.OrderNumber)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, money.Cents(2000), order.TotalPrice)
	assert.Equal(t, order.ItemsTotal(), order.TotalPrice)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Café", order.Items[0].ProductName)
	assert.Equal(t, "Ana", *order.WaiterName)
	assert.Nil(t, order.Notes)

	stored, err := f.orders.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, money.Cents(2000), stored.TotalPrice)
	assert.Equal(t, stored.ItemsTotal(), stored.TotalPrice)
}

func TestOrderService_CreateDefaultsAndDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tea := f.product(t, "Té", 250)

	order, err := f.orders.Create(ctx, CreateOrderInput{
		TableNumber: 1,
		Items: []ItemInput{
			{ProductID: tea.ID, Quantity: 0},
			{ProductID: tea.ID, Quantity: -4},
			{ProductID: tea.ID, Quantity: 3},
		},
		PaymentMethod: strPtr("CARD"),
	})
	require.NoError(t, err)
	require.Len(t, order.Items, 3)
	assert.Equal(t, 1, order.Items[0].Quantity)
	assert.Equal(t, 1, order.Items[1].Quantity)
	assert.Equal(t, money.Cents(250*5), order.TotalPrice)
	require.NotNil(t, order.PaymentMethod)
	assert.Equal(t, "card", *order.PaymentMethod)
}

func TestOrderService_CreateIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	coffee := f.product(t, "Café", 1000)

	_, err := f.orders.Create(ctx, CreateOrderInput{
		TableNumber: 2,
		Items:       []ItemInput{{ProductID: coffee.ID, Quantity: 1}, {ProductID: 9999, Quantity: 1}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, CodeUnknownProducts, se.Code)
	assert.Equal(t, "9999", se.Fields["productIds"])

	assert.Zero(t, f.count(t, &models.Order{}))
	assert.Zero(t, f.count(t, &models.OrderItem{}))
}

func TestOrderService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	coffee := f.product(t, "Café", 1000)

	tests := []struct {
		name  string
		in    CreateOrderInput
		field string
	}{
		{"no table", CreateOrderInput{Items: []ItemInput{{ProductID: coffee.ID}}}, "tableNumber"},
		{"negative table", CreateOrderInput{TableNumber: -1, Items: []ItemInput{{ProductID: coffee.ID}}}, "tableNumber"},
		{"no items", CreateOrderInput{TableNumber: 1}, "items"},
		{"bad method", CreateOrderInput{TableNumber: 1, Items: []ItemInput{{ProductID: coffee.ID}}, PaymentMethod: strPtr("cheque")}, "paymentMethod"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.orders.Create(ctx, tt.in)
			var se *Error
			require.True(t, errors.As(err, &se), "got %v", err)
			assert.Equal(t, KindValidation, se.Kind)
			assert.Contains(t, se.Fields, tt.field)
		})
	}
	assert.Zero(t, f.count(t, &models.Order{}))
}

func TestOrderService_AppendItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	coffee := f.product(t, "Café", 1000)
	cake := f.product(t, "Tarta", 500)

	order, err := f.orders.Create(ctx, CreateOrderInput{TableNumber: 4, Items: []ItemInput{{ProductID: coffee.ID, Quantity: 2}}})
	require.NoError(t, err)
	_, err = f.orders.SetStatus(ctx, order.ID, models.OrderStatusReady, nil)
	require.NoError(t, err)

	res, err := f.orders.AppendItems(ctx, order.ID, []ItemInput{{ProductID: cake.ID, Quantity: 1}})
	require.NoError(t, err)
	assert.Equal(t, money.Cents(500), res.AdditionalPrice)
	assert.Equal(t, money.Cents(2500), res.Order.TotalPrice)
	assert.Equal(t, res.Order.ItemsTotal(), res.Order.TotalPrice)
	assert.Equal(t, models.OrderStatusInProgress, res.Order.Status)
	assert.Len(t, res.Order.Items, 2)
}

func TestOrderService_AppendKeepsNonReadyStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	coffee := f.product(t, "Café", 1000)

	for _, st := range []models.OrderStatus{models.OrderStatusPending, models.OrderStatusInProgress} {
		t.Run(string(st), func(t *testing.T) {
			order, err := f.orders.Create(ctx, CreateOrderInput{TableNumber: 1, Items: []ItemInput{{ProductID: coffee.ID}}})
			require.NoError(t, err)
			_, err = f.orders.SetStatus(ctx, order.ID, st, nil)
			require.NoError(t, err)

			res, err := f.orders.AppendItems(ctx, order.ID, []ItemInput{{ProductID: coffee.ID}})
			require.NoError(t, err)
			assert.Equal(t, st, res.Order.Status)
			assert.Equal(t, money.Cents(2000), res.Order.TotalPrice)
		})
	}
}

func TestOrderService_AppendErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	coffee := f.product(t, "Café", 1000)
	order, err := f.orders.Create(ctx, CreateOrderInput{TableNumber: 1, Items: []ItemInput{{ProductID: coffee.ID}}})
	require.NoError(t, err)

	_, err = f.orders.AppendItems(ctx, 4242, []ItemInput{{ProductID: coffee.ID}})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.orders.AppendItems(ctx, order.ID, nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.orders.AppendItems(ctx, order.ID, []ItemInput{{ProductID: coffee.ID}, {ProductID: 77}})
	assert.ErrorIs(t, err, ErrValidation)

	got, err := f.orders.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 1)
	assert.Equal(t, money.Cents(1000), got.TotalPrice)

	_, err = f.orders.SetStatus(ctx, order.ID, models.OrderStatusPaid, nil)
	require.NoError(t, err)
	_, err = f.orders.AppendItems(ctx, order.ID, []ItemInput{{ProductID: coffee.ID}})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestOrderService_SnapshotSurvivesProductEdit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	coffee := f.product(t, "Café", 1000)
	order, err := f.orders.Create(ctx, CreateOrderInput{TableNumber: 1, Items: []ItemInput{{ProductID: coffee.ID}}})
	require.NoError(t, err)

	price := money.Cents(1500)
	name := "Café doble"
	_, err = f.catalog.Update(ctx, coffee.ID, ProductPatch{Price: &price, Name: &name})
	require.NoError(t, err)

	got, err := f.orders.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, money.Cents(1000), got.Items[0].Price)
	assert.Equal(t, "Café", got.Items[0].ProductName)
	assert.Equal(t, money.Cents(1000), got.TotalPrice)
}

func TestOrderService_SetStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	coffee := f.product(t, "Café", 1000)
	order, err := f.orders.Create(ctx, CreateOrderInput{TableNumber: 1, Items: []ItemInput{{ProductID: coffee.ID}}})
	require.NoError(t, err)

	got, err := f.orders.SetStatus(ctx, order.ID, models.OrderStatusInProgress, strPtr("digital"))
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusInProgress, got.Status)
	require.NotNil(t, got.PaymentMethod)
	assert.Equal(t, "digital", *got.PaymentMethod)

	got, err = f.orders.SetStatus(ctx, order.ID, models.OrderStatusInProgress, nil)
	require.NoError(t, err, "same status is idempotent")
	assert.Equal(t, "digital", *got.PaymentMethod)

	_, err = f.orders.SetStatus(ctx, order.ID, models.OrderStatusPending, nil)
	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, KindConflict, se.Kind)
	assert.Equal(t, CodeIllegalStatusTransition, se.Code)

	_, err = f.orders.SetStatus(ctx, order.ID, models.OrderStatus("cancelled"), nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.orders.SetStatus(ctx, order.ID, models.OrderStatusReady, strPtr("bitcoin"))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.orders.SetStatus(ctx, 999, models.OrderStatusReady, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.orders.SetStatus(ctx, order.ID, models.OrderStatusPaid, nil)
	require.NoError(t, err)
	_, err = f.orders.SetStatus(ctx, order.ID, models.OrderStatusReady, nil)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestOrderService_List(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	coffee := f.product(t, "Café", 1000)

	var ids []uint
	for i := 1; i <= 3; i++ {
		o, err := f.orders.Create(ctx, CreateOrderInput{TableNumber: i, Items: []ItemInput{{ProductID: coffee.ID}}})
		require.NoError(t, err)
		ids = append(ids, o.ID)
	}
	_, err := f.orders.SetStatus(ctx, ids[0], models.OrderStatusReady, nil)
	require.NoError(t, err)

	all, err := f.orders.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].ID, "newest first")
	assert.Len(t, all[0].Items, 1)

	ready, err := f.orders.List(ctx, models.OrderStatusReady)
	require.NoError(t, err)
	require.Len(t, ready, 1)
	assert.Equal(t, ids[0], ready[0].ID)

	open, err := f.orders.List(ctx, models.OrderStatusPending, models.OrderStatusReady)
	require.NoError(t, err)
	assert.Len(t, open, 3)

	_, err = f.orders.List(ctx, models.OrderStatus("nope"))
	assert.ErrorIs(t, err, ErrValidation)
}

// SQLite runs on a single pooled connection here, so the appends queue on the
// pool rather than on a row lock; order_postgres_test.go covers the lock.
func TestOrderService_SerializedConcurrentAppendsKeepTotal(t *testing.T) {
	f := newFixture(t)
	assertConcurrentAppendsKeepTotal(t, f, f.product(t, "Café", 150))
}

func assertConcurrentAppendsKeepTotal(t *testing.T, f *fixture, product *models.Product) {
	t.Helper()
	ctx := context.Background()
	order, err := f.orders.Create(ctx, CreateOrderInput{TableNumber: 1, Items: []ItemInput{{ProductID: product.ID}}})
	require.NoError(t, err)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.orders.AppendItems(ctx, order.ID, []ItemInput{{ProductID: product.ID, Quantity: 2}})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := f.orders.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, product.Price*money.Cents(1+2*workers), got.TotalPrice)
	assert.Equal(t, got.ItemsTotal(), got.TotalPrice)
	assert.Len(t, got.Items, 1+workers)
}

func TestOrderService_QuantityAndTotalBounds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	coffee := f.product(t, "Café", 200)
	pricey := f.product(t, "Botella reserva", money.Max)

	_, err := f.orders.Create(ctx, CreateOrderInput{TableNumber: 1, Items: []ItemInput{{ProductID: coffee.ID, Quantity: MaxItemQuantity + 1}}})
	require.ErrorIs(t, err, ErrValidation)
	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Contains(t, se.Fields, "items[0].quantity")

	_, err = f.orders.Create(ctx, CreateOrderInput{TableNumber: 1, Items: []ItemInput{{ProductID: coffee.ID, Quantity: 1 << 30}}})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.orders.Create(ctx, CreateOrderInput{TableNumber: 1, Items: []ItemInput{{ProductID: pricey.ID, Quantity: 2}}})
	require.ErrorIs(t, err, ErrValidation)
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "too_large", se.Fields["total"])
	assert.Equal(t, int64(0), f.count(t, &models.Order{}))

	order, err := f.orders.Create(ctx, CreateOrderInput{TableNumber: 1, Items: []ItemInput{{ProductID: pricey.ID, Quantity: 1}}})
	require.NoError(t, err)
	assert.Equal(t, money.Max, order.TotalPrice)

	_, err = f.orders.AppendItems(ctx, order.ID, []ItemInput{{ProductID: coffee.ID, Quantity: 1}})
	assert.ErrorIs(t, err, ErrValidation)
	got, err := f.orders.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, money.Max, got.TotalPrice)
	assert.Len(t, got.Items, 1)
}

func TestQuantity_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		raw  string
		want Quantity
	}{
		{`3`, 3},
		{`"2"`, 2},
		{`" 4 "`, 4},
		{`2.0`, 2},
		{`1.5`, 0},
		{`"abc"`, 0},
		{`null`, 0},
		{`true`, 0},
		{`-3`, 0},
		{`{"n":1}`, 0},
		{`1e20`, Quantity(math.MaxInt32)},
		{`99999999999999999999`, Quantity(math.MaxInt32)},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var in ItemInput
			require.NoError(t, json.Unmarshal([]byte(`{"productId":1,"quantity":`+tt.raw+`}`), &in))
			assert.Equal(t, tt.want, in.Quantity)
		})
	}
}

func TestNewOrderNumber(t *testing.T) {
	a, b := NewOrderNumber(), NewOrderNumber()
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^ORD-[0-9a-f-]{36}$`, a)
	assert.Less(t, a, b, "UUIDv7 numbers sort by creation")
}
