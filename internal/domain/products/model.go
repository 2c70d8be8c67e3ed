package products

import "time"

type Product struct {
	ID           uint   `gorm:"primaryKey"`
	ProductName  string `gorm:"not null"`
	BrandName    string `gorm:"not null"`
	Model        string
	Size         string
	Description  string
	Price        float64 `gorm:"not null"`
	ProductImage *string
	IsActive     bool `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
