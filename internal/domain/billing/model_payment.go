package billing

import (
	"contest-app/internal/domain/users"
	"time"
)

// PaymentRecord is the local mirror of a user's payment attempt and, once a
// subscription exists, of its billing state. The unique index on UserID keeps
// it to a single billing record per user; the gateway remains the source of
// truth for money movement.
type PaymentRecord struct {
	ID     uint       `gorm:"primaryKey"`
	UserID uint       `gorm:"not null;uniqueIndex:idx_payment_records_user"`
	User   users.User `gorm:"constraint:OnDelete:CASCADE"`

	PaymentIntentID  string `gorm:"uniqueIndex:idx_payment_records_intent"`
	PaymentMethodID  string
	StripeCustomerID string  `gorm:"column:stripe_customer_id"`
	SubscriptionID   *string `gorm:"uniqueIndex:idx_payment_records_subscription"`

	AmountCents int64
	Currency    string `gorm:"type:varchar(3)"`

	Status Status `gorm:"type:varchar(20);not null;default:'pending'"`

	// Unix seconds of the newest gateway event applied to Status. Reconcile
	// discards anything older (last-write-wins by event time).
	LastEventAt int64 `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
