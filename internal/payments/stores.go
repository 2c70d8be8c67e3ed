package payments

import (
	"context"

	"contest-app/internal/domain/billing"
	"contest-app/internal/domain/users"
)

// UserStore is the slice of user persistence the core needs.
type UserStore interface {
	Get(ctx context.Context, userID uint) (*users.User, error)
	SetStripeCustomerID(ctx context.Context, userID uint, customerID string) error
}

// PaymentStore persists the per-user billing record. All Status writes in
// the system go through this interface.
type PaymentStore interface {
	CurrentForUser(ctx context.Context, userID uint) (*billing.PaymentRecord, error)
	ByIntentID(ctx context.Context, intentID string) (*billing.PaymentRecord, error)
	BySubscriptionID(ctx context.Context, subscriptionID string) (*billing.PaymentRecord, error)

	// SaveIntent creates or replaces the user's single billing record with
	// the given intent attempt. Concurrent attempts for one user collapse
	// onto one row.
	SaveIntent(ctx context.Context, rec *billing.PaymentRecord) error

	// SetIntentStatus updates the record keyed by intent ID, discarding
	// events older than the stored LastEventAt. Returns false when the
	// update was stale; ErrNotFound when no such record exists.
	SetIntentStatus(ctx context.Context, intentID string, status billing.Status, eventAt int64) (bool, error)

	LinkSubscription(ctx context.Context, recordID uint, subscriptionID string, status billing.Status, eventAt int64) error

	// ApplyStatus is the compare-and-set behind reconciliation: the update
	// lands only when eventAt is not older than the stored LastEventAt.
	ApplyStatus(ctx context.Context, subscriptionID string, status billing.Status, eventAt int64) (bool, error)
}
