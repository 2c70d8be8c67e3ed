package votes

import (
	"contest-app/internal/domain/products"
	"contest-app/internal/domain/users"
	"time"
)

// Vote records one user's vote for a product in the monthly contest.
// IsWinner is flipped by an admin when the month's winner is picked.
type Vote struct {
	ID        uint             `gorm:"primaryKey"`
	UserID    uint             `gorm:"not null;index"`
	User      users.User       `gorm:"constraint:OnDelete:CASCADE"`
	ProductID uint             `gorm:"not null;index"`
	Product   products.Product `gorm:"constraint:OnDelete:CASCADE"`
	IsWinner  bool             `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
