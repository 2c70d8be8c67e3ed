package community

import (
	"contest-app/internal/domain/users"
	"time"
)

type Community struct {
	ID           uint       `gorm:"primaryKey"`
	UserID       uint       `gorm:"not null;index"`
	User         users.User `gorm:"constraint:OnDelete:CASCADE"`
	ProductName  string     `gorm:"not null"`
	ProductImage *string
	Brand        string
	Model        string
	Description  string
	IsApproved   bool `gorm:"not null;default:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
