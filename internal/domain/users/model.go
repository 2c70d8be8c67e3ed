package users

import "time"

type User struct {
	ID           uint    `gorm:"primaryKey"`
	FirstName    string  `gorm:"not null"`
	LastName     string  `gorm:"not null"`
	Email        string  `gorm:"not null;uniqueIndex:idx_users_email"`
	Password     *string `gorm:""`
	AuthProvider string  `gorm:"type:varchar(20);not null;default:'local'"`
	GoogleSub    *string `gorm:"uniqueIndex:idx_users_google_sub"`

	Country      string
	City         string
	ZipCode      string
	Address      string
	ProfileImage *string

	Status     string `gorm:"type:varchar(20);not null;default:'active'"` // active | inactive
	IsAdmin    bool   `gorm:"not null;default:false"`
	IsApproved bool   `gorm:"not null;default:false"`

	// Set exactly once by customer binding, rebound only if the gateway-side
	// customer disappears.
	StripeCustomerID *string `gorm:"column:stripe_customer_id;uniqueIndex:idx_users_stripe_customer_id"`

	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
