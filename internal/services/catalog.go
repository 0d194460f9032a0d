package services

import (
	"context"
	"errors"
	"strings"

	"github.com/diewo77/go-pos/internal/models"
	"github.com/diewo77/go-pos/internal/money"
	"github.com/diewo77/go-pos/validation"
	"gorm.io/gorm"
)

// ProductFinder resolves catalog entries for the order engine.
type ProductFinder interface {
	FindMany(ctx context.Context, ids []uint) ([]models.Product, error)
}

type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// ProductInput carries create fields.
type ProductInput struct {
	Name     string      `json:"name"`
	Category string      `json:"category"`
	Price    money.Cents `json:"price"`
	Stock    int         `json:"stock"`
}

// ProductPatch carries partial update fields; nil means unchanged.
type ProductPatch struct {
	Name     *string      `json:"name"`
	Category *string      `json:"category"`
	Price    *money.Cents `json:"price"`
	Stock    *int         `json:"stock"`
}

func (s *CatalogService) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(CodeProductNotFound)
		}
		return nil, internal("find product", err)
	}
	return &p, nil
}

// FindMany returns the products matching ids. Missing ids are simply absent.
func (s *CatalogService) FindMany(ctx context.Context, ids []uint) ([]models.Product, error) {
	ids = distinctIDs(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	var products []models.Product
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, internal("find products", err)
	}
	return products, nil
}

// List returns the whole catalog ordered by name.
func (s *CatalogService) List(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	if err := s.db.WithContext(ctx).Order("name asc").Order("id asc").Find(&products).Error; err != nil {
		return nil, internal("list products", err)
	}
	return products, nil
}

func (s *CatalogService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	p := models.Product{
		Name:     strings.TrimSpace(in.Name),
		Category: models.NormalizeCategory(in.Category),
		Price:    in.Price,
		Stock:    in.Stock,
	}
	if v := validateProduct(&p); !v.Empty() {
		return nil, validationError(CodeValidationFailed, v)
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, internal("create product", err)
	}
	return &p, nil
}

// Update applies a partial edit. Existing order items keep their snapshots.
func (s *CatalogService) Update(ctx context.Context, id uint, patch ProductPatch) (*models.Product, error) {
	p, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		p.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Category != nil {
		p.Category = models.NormalizeCategory(*patch.Category)
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if v := validateProduct(p); !v.Empty() {
		return nil, validationError(CodeValidationFailed, v)
	}
	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return nil, internal("update product", err)
	}
	return p, nil
}

func (s *CatalogService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return internal("delete product", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(CodeProductNotFound)
	}
	return nil
}

func validateProduct(p *models.Product) validation.Violations {
	v := make(validation.Violations)
	validation.Required("name", p.Name, v)
	validation.PositiveInt64("price", int64(p.Price), v)
	validation.NonNegativeInt("stock", p.Stock, v)
	return v
}

func distinctIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
