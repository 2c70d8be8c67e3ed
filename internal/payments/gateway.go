package payments

import "context"

// Gateway is the billing-provider surface the core depends on. Every
// operation is a blocking network call; callers bound it with the request
// context. Adapters populate the typed result structs so the core never
// inspects SDK response objects.
type Gateway interface {
	CreateCustomer(ctx context.Context, email, name string) (*CustomerResult, error)
	// GetCustomer returns ErrNotFound (wrapped) when the customer no longer
	// exists gateway-side; transport or provider failures come back as
	// *GatewayError.
	GetCustomer(ctx context.Context, customerID string) (*CustomerResult, error)

	// AttachPaymentMethod returns ErrInvalidPaymentMethod (wrapped) when the
	// gateway rejects the method. Attachment is idempotent gateway-side.
	AttachPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error
	SetDefaultPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error

	// CreatePaymentIntent creates the intent with immediate confirmation so
	// the outcome is known synchronously whenever possible.
	CreatePaymentIntent(ctx context.Context, p IntentParams) (*IntentResult, error)
	GetPaymentIntent(ctx context.Context, intentID string) (*IntentResult, error)
	ConfirmPaymentIntent(ctx context.Context, intentID, paymentMethodID, returnURL string) (*IntentResult, error)

	// CreateSubscription creates in allow-incomplete mode and expands the
	// first invoice's payment intent.
	CreateSubscription(ctx context.Context, customerID, priceID, defaultPaymentMethodID string) (*SubscriptionResult, error)
	GetSubscription(ctx context.Context, subscriptionID string) (*SubscriptionResult, error)
	PauseSubscription(ctx context.Context, subscriptionID string) (*SubscriptionResult, error)
	ResumeSubscription(ctx context.Context, subscriptionID string) (*SubscriptionResult, error)

	GetInvoice(ctx context.Context, invoiceID string) (*InvoiceResult, error)
}

type IntentParams struct {
	CustomerID      string
	PaymentMethodID string
	AmountCents     int64
	Currency        string
	ReturnURL       string
}

type CustomerResult struct {
	ID      string
	Email   string
	Deleted bool
}

type IntentResult struct {
	ID              string
	Status          string
	ClientSecret    string
	RedirectURL     string
	PaymentMethodID string
	AmountCents     int64
	Currency        string
	CreatedAt       int64
	FailureMessage  string
}

type SubscriptionResult struct {
	ID     string
	Status string
	Paused bool
	// EventAt is the subscription's creation time. It never advances on
	// later reads, so it orders only the creation itself; subsequent
	// observations are stamped by the caller.
	EventAt         int64
	LatestInvoiceID string
	LatestIntent    *IntentResult
}

type InvoiceResult struct {
	ID              string
	Status          string
	PaymentIntentID string
}
