package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/diewo77/go-pos/internal/models"
	"github.com/diewo77/go-pos/internal/money"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a private in-memory SQLite database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

type fixture struct {
	db       *gorm.DB
	catalog  *CatalogService
	orders   *OrderService
	payments *PaymentService
	admins   *AdminService
	reports  *ReportService
}

func newFixture(t *testing.T) *fixture {
	return newFixtureDB(setupTestDB(t))
}

func newFixtureDB(db *gorm.DB) *fixture {
	catalog := NewCatalogService(db)
	n := 0
	return &fixture{
		db:      db,
		catalog: catalog,
		orders: NewOrderService(db, catalog).WithNumberGenerator(func() string {
			n++
			return fmt.Sprintf("ORD-TEST-%04d", n)
		}),
		payments: NewPaymentService(db),
		admins:   NewAdminService(db).WithCost(bcrypt.MinCost),
		reports:  NewReportService(db),
	}
}

func (f *fixture) product(t *testing.T, name string, price money.Cents) *models.Product {
	t.Helper()
	p, err := f.catalog.Create(context.Background(), ProductInput{Name: name, Category: "Bebidas", Price: price, Stock: 10})
	require.NoError(t, err)
	return p
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}
