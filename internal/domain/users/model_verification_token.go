package users

import "time"

// VerificationToken backs both email verification links and the numeric
// password-reset OTPs. Type distinguishes the flows.
type VerificationToken struct {
	ID         uint   `gorm:"primaryKey"`
	UserID     uint   `gorm:"uniqueIndex"`
	User       User   `gorm:"constraint:OnDelete:CASCADE"`
	Token      string `gorm:"uniqueIndex"`
	Type       string `gorm:"index"`
	ExpiresAt  time.Time
	VerifiedAt *time.Time
	CreatedAt  time.Time
}
