package models

import "time"

// Admin is a back-office user able to log in.
type Admin struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"` // bcrypt hash
	Name      string    `gorm:"size:255;not null" json:"name"`
}

// All returns every persisted model, in dependency order, for AutoMigrate.
func All() []any {
	return []any{&Admin{}, &Product{}, &Order{}, &OrderItem{}, &Payment{}}
}
