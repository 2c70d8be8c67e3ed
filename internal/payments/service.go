package payments

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"contest-app/internal/domain/billing"
)

// IntentState discriminates the outcome of a payment-intent operation.
// RequiresAction is a valid suspended state, not a failure.
type IntentState string

const (
	IntentSucceeded      IntentState = "succeeded"
	IntentRequiresAction IntentState = "requires_action"
	IntentFailed         IntentState = "failed"
	IntentPending        IntentState = "pending"
)

type IntentOutcome struct {
	State        IntentState
	IntentID     string
	ClientSecret string
	RedirectURL  string
	Reason       string
}

type SubscriptionOutcome struct {
	SubscriptionID string
	Status         billing.Status
	ClientSecret   string
	RedirectURL    string
}

// Service ties customer binding, the payment-intent lifecycle and
// subscription reconciliation to one gateway client and one store pair.
type Service struct {
	gw        Gateway
	users     UserStore
	payments  PaymentStore
	returnURL string
}

func NewService(gw Gateway, users UserStore, payments PaymentStore, returnURL string) *Service {
	return &Service{gw: gw, users: users, payments: payments, returnURL: returnURL}
}

// EnsureCustomer returns the gateway customer ID for the user, creating one
// lazily on first use. A stored ID that no longer resolves (or resolves to a
// deleted customer) is rebound; a valid ID is returned without any gateway
// creation call. The user row is written only after creation fully succeeds.
func (s *Service) EnsureCustomer(ctx context.Context, userID uint) (string, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return "", err
	}

	if u.StripeCustomerID != nil && *u.StripeCustomerID != "" {
		cus, err := s.gw.GetCustomer(ctx, *u.StripeCustomerID)
		switch {
		case err == nil && !cus.Deleted:
			return cus.ID, nil
		case err != nil && !errors.Is(err, ErrNotFound):
			// Transport/provider failure: do not rebind on a flaky read.
			return "", err
		}
		log.Printf("billing: customer %s no longer resolves for user %d, rebinding", *u.StripeCustomerID, u.ID)
	}

	cus, err := s.gw.CreateCustomer(ctx, u.Email, displayName(u.FirstName, u.LastName))
	if err != nil {
		return "", err
	}
	if err := s.users.SetStripeCustomerID(ctx, u.ID, cus.ID); err != nil {
		return "", err
	}
	return cus.ID, nil
}

// CreateAndConfirmIntent binds the customer, attaches and defaults the
// payment method, then creates an immediately-confirmed intent. Every
// outcome, including requires_action, is persisted before returning.
func (s *Service) CreateAndConfirmIntent(ctx context.Context, userID uint, paymentMethodID string, amountCents int64, currency string) (*IntentOutcome, error) {
	customerID, err := s.EnsureCustomer(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.gw.AttachPaymentMethod(ctx, customerID, paymentMethodID); err != nil {
		if errors.Is(err, ErrInvalidPaymentMethod) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidPaymentMethod, err)
	}
	if err := s.gw.SetDefaultPaymentMethod(ctx, customerID, paymentMethodID); err != nil {
		return nil, err
	}

	res, err := s.gw.CreatePaymentIntent(ctx, IntentParams{
		CustomerID:      customerID,
		PaymentMethodID: paymentMethodID,
		AmountCents:     amountCents,
		Currency:        currency,
		ReturnURL:       s.returnURL,
	})
	if err != nil {
		return nil, err
	}

	rec := &billing.PaymentRecord{
		UserID:           userID,
		PaymentIntentID:  res.ID,
		PaymentMethodID:  paymentMethodID,
		StripeCustomerID: customerID,
		AmountCents:      amountCents,
		Currency:         currency,
		Status:           billing.FromIntent(res.Status),
		LastEventAt:      eventTime(res.CreatedAt),
	}
	if err := s.payments.SaveIntent(ctx, rec); err != nil {
		return nil, err
	}
	return outcomeFromIntent(res), nil
}

// ConfirmIntent drives an intent that required out-of-band action. The
// current status is read first: an intent already succeeded returns the
// cached success without invoking the gateway confirm again.
func (s *Service) ConfirmIntent(ctx context.Context, intentID, paymentMethodID string) (*IntentOutcome, error) {
	cur, err := s.gw.GetPaymentIntent(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if cur.Status == "succeeded" {
		s.persistIntent(ctx, cur)
		return outcomeFromIntent(cur), nil
	}

	res, err := s.gw.ConfirmPaymentIntent(ctx, intentID, paymentMethodID, s.returnURL)
	if err != nil {
		// Last known status stays in place; the caller re-queries via
		// SyncIntent rather than resubmitting.
		return nil, err
	}
	s.persistIntent(ctx, res)
	return outcomeFromIntent(res), nil
}

// SyncIntent re-reads an intent's status from the gateway and persists it.
// Used by the redirect-completion callback: a read, never a confirm.
func (s *Service) SyncIntent(ctx context.Context, intentID string) (*IntentOutcome, error) {
	res, err := s.gw.GetPaymentIntent(ctx, intentID)
	if err != nil {
		return nil, err
	}
	s.persistIntent(ctx, res)
	return outcomeFromIntent(res), nil
}

// HandleIntentEvent applies an asynchronous intent status push (webhook).
func (s *Service) HandleIntentEvent(ctx context.Context, intentID, externalStatus string, eventAt int64) error {
	_, err := s.payments.SetIntentStatus(ctx, intentID, billing.FromIntent(externalStatus), eventAt)
	if errors.Is(err, ErrNotFound) {
		// Intent we never recorded; nothing to converge.
		return nil
	}
	return err
}

// CreateSubscription starts recurring billing for a user whose payment
// method was confirmed through the intent lifecycle. Precondition failures
// never reach the gateway; gateway failures leave the record unlinked.
func (s *Service) CreateSubscription(ctx context.Context, userID uint, priceID string) (*SubscriptionOutcome, error) {
	rec, err := s.payments.CurrentForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrMissingPaymentMethod
		}
		return nil, err
	}
	if rec.PaymentMethodID == "" {
		return nil, ErrMissingPaymentMethod
	}
	customerID := rec.StripeCustomerID
	if customerID == "" {
		if customerID, err = s.EnsureCustomer(ctx, userID); err != nil {
			return nil, err
		}
	}

	sub, err := s.gw.CreateSubscription(ctx, customerID, priceID, rec.PaymentMethodID)
	if err != nil {
		return nil, err
	}

	status := billing.FromSubscription(sub.Status, sub.Paused)
	out := &SubscriptionOutcome{SubscriptionID: sub.ID, Status: status}
	if li := sub.LatestIntent; li != nil && billing.FromIntent(li.Status) == billing.StatusRequiresAction {
		// First invoice needs cardholder authentication; that wins over the
		// subscription's own status and carries the action data.
		out.Status = billing.StatusRequiresAction
		out.ClientSecret = li.ClientSecret
		out.RedirectURL = li.RedirectURL
		status = billing.StatusRequiresAction
	}

	if err := s.payments.LinkSubscription(ctx, rec.ID, sub.ID, status, eventTime(sub.EventAt)); err != nil {
		return nil, err
	}
	return out, nil
}

// Reconcile reads the subscription's current gateway state and converges the
// local record onto it. A read failure for an already-known subscription is
// logged and the previous status retained.
func (s *Service) Reconcile(ctx context.Context, subscriptionID string) (billing.Status, error) {
	sub, err := s.gw.GetSubscription(ctx, subscriptionID)
	if err != nil {
		if rec, lerr := s.payments.BySubscriptionID(ctx, subscriptionID); lerr == nil {
			log.Printf("billing: reconcile of %s failed (%v), keeping status %s", subscriptionID, err, rec.Status)
			return rec.Status, nil
		}
		return "", err
	}
	return s.applySubscription(ctx, sub)
}

// ApplyEvent merges an externally observed subscription state. Events older
// than the stored one are discarded, so replays and out-of-order delivery
// converge to the newest state.
func (s *Service) ApplyEvent(ctx context.Context, subscriptionID, externalStatus string, paused bool, eventAt int64) (billing.Status, error) {
	status := billing.FromSubscription(externalStatus, paused)
	applied, err := s.payments.ApplyStatus(ctx, subscriptionID, status, eventAt)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrNotFound
		}
		// Never regress a known-good status over a transient write failure.
		if rec, lerr := s.payments.BySubscriptionID(ctx, subscriptionID); lerr == nil {
			log.Printf("billing: apply %s on %s failed (%v), keeping status %s", externalStatus, subscriptionID, err, rec.Status)
			return rec.Status, nil
		}
		return "", err
	}
	if !applied {
		rec, lerr := s.payments.BySubscriptionID(ctx, subscriptionID)
		if lerr != nil {
			return "", lerr
		}
		return rec.Status, nil
	}
	return status, nil
}

// Pause sets the gateway's pause-collection attribute and converges the
// local record on the result, returning the status actually stored.
// Unknown subscriptions are a NotFound signal, not a crash.
func (s *Service) Pause(ctx context.Context, subscriptionID string) (billing.Status, error) {
	if _, err := s.payments.BySubscriptionID(ctx, subscriptionID); err != nil {
		return "", err
	}
	sub, err := s.gw.PauseSubscription(ctx, subscriptionID)
	if err != nil {
		return "", err
	}
	return s.applySubscription(ctx, sub)
}

// Resume clears pause-collection and re-derives the status from the
// gateway's view.
func (s *Service) Resume(ctx context.Context, subscriptionID string) (billing.Status, error) {
	if _, err := s.payments.BySubscriptionID(ctx, subscriptionID); err != nil {
		return "", err
	}
	sub, err := s.gw.ResumeSubscription(ctx, subscriptionID)
	if err != nil {
		return "", err
	}
	return s.applySubscription(ctx, sub)
}

// applySubscription merges a synchronously observed gateway state. The
// observation is stamped with the local read time: the gateway object only
// carries its creation time, which never advances, so ordering against
// webhook events has to come from when we looked.
func (s *Service) applySubscription(ctx context.Context, sub *SubscriptionResult) (billing.Status, error) {
	status := billing.FromSubscription(sub.Status, sub.Paused)
	if li := sub.LatestIntent; li != nil && billing.FromIntent(li.Status) == billing.StatusRequiresAction {
		status = billing.StatusRequiresAction
	}
	applied, err := s.payments.ApplyStatus(ctx, sub.ID, status, time.Now().Unix())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrNotFound
		}
		if rec, lerr := s.payments.BySubscriptionID(ctx, sub.ID); lerr == nil {
			log.Printf("billing: reconcile write on %s failed (%v), keeping status %s", sub.ID, err, rec.Status)
			return rec.Status, nil
		}
		return "", err
	}
	if !applied {
		rec, lerr := s.payments.BySubscriptionID(ctx, sub.ID)
		if lerr != nil {
			return "", lerr
		}
		return rec.Status, nil
	}
	return status, nil
}

func (s *Service) persistIntent(ctx context.Context, res *IntentResult) {
	_, err := s.payments.SetIntentStatus(ctx, res.ID, billing.FromIntent(res.Status), time.Now().Unix())
	if err != nil && !errors.Is(err, ErrNotFound) {
		log.Printf("billing: failed to persist intent %s status %s: %v", res.ID, res.Status, err)
	}
}

func outcomeFromIntent(res *IntentResult) *IntentOutcome {
	out := &IntentOutcome{IntentID: res.ID}
	switch billing.FromIntent(res.Status) {
	case billing.StatusActive:
		out.State = IntentSucceeded
	case billing.StatusRequiresAction:
		out.State = IntentRequiresAction
		out.ClientSecret = res.ClientSecret
		out.RedirectURL = res.RedirectURL
	case billing.StatusFailed:
		out.State = IntentFailed
		out.Reason = res.FailureMessage
		if out.Reason == "" {
			out.Reason = "payment declined"
		}
	default:
		out.State = IntentPending
	}
	return out
}

func eventTime(t int64) int64 {
	if t > 0 {
		return t
	}
	return time.Now().Unix()
}

func displayName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}
