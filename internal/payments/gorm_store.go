package payments

import (
	"context"
	"errors"

	"contest-app/internal/domain/billing"
	"contest-app/internal/domain/users"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStores implements UserStore and PaymentStore on the application
// database.
type GormStores struct {
	db *gorm.DB
}

func NewGormStores(db *gorm.DB) *GormStores {
	return &GormStores{db: db}
}

func (s *GormStores) Get(ctx context.Context, userID uint) (*users.User, error) {
	var u users.User
	if err := s.db.WithContext(ctx).First(&u, userID).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *GormStores) SetStripeCustomerID(ctx context.Context, userID uint, customerID string) error {
	res := s.db.WithContext(ctx).Model(&users.User{}).
		Where("id = ?", userID).
		Update("stripe_customer_id", customerID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStores) CurrentForUser(ctx context.Context, userID uint) (*billing.PaymentRecord, error) {
	var rec billing.PaymentRecord
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&rec).Error; err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

func (s *GormStores) ByIntentID(ctx context.Context, intentID string) (*billing.PaymentRecord, error) {
	var rec billing.PaymentRecord
	if err := s.db.WithContext(ctx).Where("payment_intent_id = ?", intentID).First(&rec).Error; err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

func (s *GormStores) BySubscriptionID(ctx context.Context, subscriptionID string) (*billing.PaymentRecord, error) {
	var rec billing.PaymentRecord
	if err := s.db.WithContext(ctx).Where("subscription_id = ?", subscriptionID).First(&rec).Error; err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

// SaveIntent upserts on the user_id unique index, so two concurrent intent
// creations for the same user end up on one row instead of diverging.
func (s *GormStores) SaveIntent(ctx context.Context, rec *billing.PaymentRecord) error {
	rec.SubscriptionID = nil
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"payment_intent_id",
			"payment_method_id",
			"stripe_customer_id",
			"subscription_id",
			"amount_cents",
			"currency",
			"status",
			"last_event_at",
			"updated_at",
		}),
	}).Create(rec).Error
}

func (s *GormStores) SetIntentStatus(ctx context.Context, intentID string, status billing.Status, eventAt int64) (bool, error) {
	res := s.db.WithContext(ctx).Model(&billing.PaymentRecord{}).
		Where("payment_intent_id = ? AND last_event_at <= ?", intentID, eventAt).
		Updates(map[string]interface{}{
			"status":        status,
			"last_event_at": eventAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}
	if _, err := s.ByIntentID(ctx, intentID); err != nil {
		return false, err
	}
	return false, nil // stale event
}

func (s *GormStores) LinkSubscription(ctx context.Context, recordID uint, subscriptionID string, status billing.Status, eventAt int64) error {
	res := s.db.WithContext(ctx).Model(&billing.PaymentRecord{}).
		Where("id = ?", recordID).
		Updates(map[string]interface{}{
			"subscription_id": subscriptionID,
			"status":          status,
			"last_event_at":   eventAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStores) ApplyStatus(ctx context.Context, subscriptionID string, status billing.Status, eventAt int64) (bool, error) {
	res := s.db.WithContext(ctx).Model(&billing.PaymentRecord{}).
		Where("subscription_id = ? AND last_event_at <= ?", subscriptionID, eventAt).
		Updates(map[string]interface{}{
			"status":        status,
			"last_event_at": eventAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}
	if _, err := s.BySubscriptionID(ctx, subscriptionID); err != nil {
		return false, err
	}
	return false, nil // older than what we already hold
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
