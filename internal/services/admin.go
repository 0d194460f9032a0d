package services

import (
	"context"
	"errors"
	"strings"

	"github.com/diewo77/go-pos/internal/models"
	"github.com/diewo77/go-pos/validation"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// MinPasswordLength applies to newly registered admins.
const MinPasswordLength = 6

type AdminService struct {
	db   *gorm.DB
	cost int
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db, cost: bcrypt.DefaultCost}
}

// WithCost sets the bcrypt cost, mostly to speed up tests.
func (s *AdminService) WithCost(cost int) *AdminService {
	s.cost = cost
	return s
}

func (s *AdminService) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var a models.Admin
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(CodeAdminNotFound)
		}
		return nil, internal("find admin", err)
	}
	return &a, nil
}

func (s *AdminService) FindByID(ctx context.Context, id uint) (*models.Admin, error) {
	var a models.Admin
	if err := s.db.WithContext(ctx).First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(CodeAdminNotFound)
		}
		return nil, internal("find admin", err)
	}
	return &a, nil
}

// Register hashes the password and stores a new admin.
func (s *AdminService) Register(ctx context.Context, email, password, name string) (*models.Admin, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)
	v := make(validation.Violations)
	validation.Email("email", email, v)
	validation.Required("password", password, v)
	if _, ok := v["password"]; !ok {
		validation.MinLength("password", password, MinPasswordLength, v)
	}
	validation.Required("name", name, v)
	if !v.Empty() {
		return nil, validationError(CodeValidationFailed, v)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Admin{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, internal("register admin", err)
	}
	if count > 0 {
		return nil, conflict(CodeEmailAlreadyRegistered)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, internal("hash password", err)
	}
	a := models.Admin{Email: email, Password: string(hash), Name: name}
	if err := s.db.WithContext(ctx).Create(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(strings.ToLower(err.Error()), "unique") {
			return nil, conflict(CodeEmailAlreadyRegistered)
		}
		return nil, internal("register admin", err)
	}
	return &a, nil
}

// Authenticate checks credentials. Unknown email and wrong password fail the
// same way.
func (s *AdminService) Authenticate(ctx context.Context, email, password string) (*models.Admin, error) {
	a, err := s.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &Error{Kind: KindUnauthorized, Code: CodeInvalidCredentials}
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.Password), []byte(password)); err != nil {
		return nil, &Error{Kind: KindUnauthorized, Code: CodeInvalidCredentials}
	}
	return a, nil
}

// Exists reports whether the admin is still present.
func (s *AdminService) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Admin{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, internal("admin exists", err)
	}
	return count > 0, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
