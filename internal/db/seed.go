package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/diewo77/go-pos/internal/models"
	"github.com/diewo77/go-pos/internal/money"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedOptions names the default admin account.
type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
	AdminName     string
}

var starterMenu = []models.Product{
	{Name: "Café americano", Category: "Bebidas calientes", Price: money.Cents(250), Stock: 100},
	{Name: "Capuchino", Category: "Bebidas calientes", Price: money.Cents(320), Stock: 100},
	{Name: "Jugo natural", Category: "Bebidas frías", Price: money.Cents(300), Stock: 40},
	{Name: "Medialuna", Category: "Panadería", Price: money.Cents(150), Stock: 60},
	{Name: "Tostado de jamón y queso", Category: "Comidas", Price: money.Cents(450), Stock: 30},
	{Name: "Cheesecake", Category: "Postres", Price: money.Cents(500), Stock: 12},
}

// Seed inserts the default admin and the starter menu. Existing rows are left
// untouched, so running it twice is harmless.
func Seed(ctx context.Context, db *gorm.DB, opts SeedOptions) error {
	db = db.WithContext(ctx)
	if err := seedAdmin(db, opts); err != nil {
		return err
	}
	for _, p := range starterMenu {
		var existing models.Product
		err := db.Where("name = ?", p.Name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("db: seed product %q: %w", p.Name, err)
		}
		if err := db.Create(&p).Error; err != nil {
			return fmt.Errorf("db: seed product %q: %w", p.Name, err)
		}
	}
	return nil
}

func seedAdmin(db *gorm.DB, opts SeedOptions) error {
	email := strings.ToLower(strings.TrimSpace(opts.AdminEmail))
	if email == "" || opts.AdminPassword == "" {
		return nil
	}
	var existing models.Admin
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("db: seed admin: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(opts.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("db: seed admin: %w", err)
	}
	name := strings.TrimSpace(opts.AdminName)
	if name == "" {
		name = "Administrador"
	}
	admin := models.Admin{Email: email, Password: string(hash), Name: name}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("db: seed admin: %w", err)
	}
	return nil
}
