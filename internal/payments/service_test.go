package payments

import (
	"context"
	"errors"
	"testing"

	"contest-app/internal/domain/billing"
	"contest-app/internal/domain/users"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGateway scripts results per operation and counts calls.
type fakeGateway struct {
	customers map[string]*CustomerResult
	intents   map[string]*IntentResult
	subs      map[string]*SubscriptionResult

	getCustomerErr error
	attachErr      error
	createSubErr   error

	createCustomerCalls int
	createIntentCalls   int
	confirmCalls        int
	createSubCalls      int
	nextID              int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		customers: map[string]*CustomerResult{},
		intents:   map[string]*IntentResult{},
		subs:      map[string]*SubscriptionResult{},
	}
}

func (g *fakeGateway) CreateCustomer(_ context.Context, email, _ string) (*CustomerResult, error) {
	g.createCustomerCalls++
	g.nextID++
	cus := &CustomerResult{ID: "cus_" + string(rune('0'+g.nextID)), Email: email}
	g.customers[cus.ID] = cus
	return cus, nil
}

func (g *fakeGateway) GetCustomer(_ context.Context, id string) (*CustomerResult, error) {
	if g.getCustomerErr != nil {
		return nil, g.getCustomerErr
	}
	cus, ok := g.customers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cus, nil
}

func (g *fakeGateway) AttachPaymentMethod(_ context.Context, _, _ string) error { return g.attachErr }

func (g *fakeGateway) SetDefaultPaymentMethod(_ context.Context, _, _ string) error { return nil }

func (g *fakeGateway) CreatePaymentIntent(_ context.Context, p IntentParams) (*IntentResult, error) {
	g.createIntentCalls++
	res := &IntentResult{
		ID:              "pi_test",
		Status:          "succeeded",
		PaymentMethodID: p.PaymentMethodID,
		AmountCents:     p.AmountCents,
		Currency:        p.Currency,
		CreatedAt:       100,
	}
	if scripted, ok := g.intents["pi_test"]; ok {
		res = scripted
	}
	g.intents[res.ID] = res
	return res, nil
}

func (g *fakeGateway) GetPaymentIntent(_ context.Context, id string) (*IntentResult, error) {
	pi, ok := g.intents[id]
	if !ok {
		return nil, ErrNotFound
	}
	return pi, nil
}

func (g *fakeGateway) ConfirmPaymentIntent(_ context.Context, id, _, _ string) (*IntentResult, error) {
	g.confirmCalls++
	pi, ok := g.intents[id]
	if !ok {
		return nil, ErrNotFound
	}
	pi.Status = "succeeded"
	return pi, nil
}

func (g *fakeGateway) CreateSubscription(_ context.Context, _, _, _ string) (*SubscriptionResult, error) {
	g.createSubCalls++
	if g.createSubErr != nil {
		return nil, g.createSubErr
	}
	sub, ok := g.subs["sub_test"]
	if !ok {
		sub = &SubscriptionResult{ID: "sub_test", Status: "active", EventAt: 100}
		g.subs[sub.ID] = sub
	}
	return sub, nil
}

func (g *fakeGateway) GetSubscription(_ context.Context, id string) (*SubscriptionResult, error) {
	sub, ok := g.subs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sub, nil
}

// EventAt stays at the creation value on pause/resume, matching the real
// adapter: Stripe's subscription object never advances its timestamp.
func (g *fakeGateway) PauseSubscription(_ context.Context, id string) (*SubscriptionResult, error) {
	sub, ok := g.subs[id]
	if !ok {
		return nil, ErrNotFound
	}
	sub.Paused = true
	return sub, nil
}

func (g *fakeGateway) ResumeSubscription(_ context.Context, id string) (*SubscriptionResult, error) {
	sub, ok := g.subs[id]
	if !ok {
		return nil, ErrNotFound
	}
	sub.Paused = false
	return sub, nil
}

func (g *fakeGateway) GetInvoice(_ context.Context, id string) (*InvoiceResult, error) {
	return &InvoiceResult{ID: id}, nil
}

// fakeStores holds one user and at most one payment record per user, the same
// shape the real store enforces.
type fakeStores struct {
	user    *users.User
	records map[uint]*billing.PaymentRecord
	nextID  uint
}

func newFakeStores(u *users.User) *fakeStores {
	return &fakeStores{user: u, records: map[uint]*billing.PaymentRecord{}}
}

func (s *fakeStores) Get(_ context.Context, userID uint) (*users.User, error) {
	if s.user == nil || s.user.ID != userID {
		return nil, ErrNotFound
	}
	cp := *s.user
	return &cp, nil
}

func (s *fakeStores) SetStripeCustomerID(_ context.Context, userID uint, customerID string) error {
	if s.user == nil || s.user.ID != userID {
		return ErrNotFound
	}
	s.user.StripeCustomerID = &customerID
	return nil
}

func (s *fakeStores) CurrentForUser(_ context.Context, userID uint) (*billing.PaymentRecord, error) {
	rec, ok := s.records[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *fakeStores) ByIntentID(_ context.Context, intentID string) (*billing.PaymentRecord, error) {
	for _, rec := range s.records {
		if rec.PaymentIntentID == intentID {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *fakeStores) BySubscriptionID(_ context.Context, subscriptionID string) (*billing.PaymentRecord, error) {
	for _, rec := range s.records {
		if rec.SubscriptionID != nil && *rec.SubscriptionID == subscriptionID {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *fakeStores) SaveIntent(_ context.Context, rec *billing.PaymentRecord) error {
	rec.SubscriptionID = nil
	if existing, ok := s.records[rec.UserID]; ok {
		rec.ID = existing.ID
	} else {
		s.nextID++
		rec.ID = s.nextID
	}
	cp := *rec
	s.records[rec.UserID] = &cp
	return nil
}

func (s *fakeStores) SetIntentStatus(_ context.Context, intentID string, status billing.Status, eventAt int64) (bool, error) {
	for _, rec := range s.records {
		if rec.PaymentIntentID == intentID {
			if rec.LastEventAt > eventAt {
				return false, nil
			}
			rec.Status = status
			rec.LastEventAt = eventAt
			return true, nil
		}
	}
	return false, ErrNotFound
}

func (s *fakeStores) LinkSubscription(_ context.Context, recordID uint, subscriptionID string, status billing.Status, eventAt int64) error {
	for _, rec := range s.records {
		if rec.ID == recordID {
			rec.SubscriptionID = &subscriptionID
			rec.Status = status
			rec.LastEventAt = eventAt
			return nil
		}
	}
	return ErrNotFound
}

func (s *fakeStores) ApplyStatus(_ context.Context, subscriptionID string, status billing.Status, eventAt int64) (bool, error) {
	for _, rec := range s.records {
		if rec.SubscriptionID != nil && *rec.SubscriptionID == subscriptionID {
			if rec.LastEventAt > eventAt {
				return false, nil
			}
			rec.Status = status
			rec.LastEventAt = eventAt
			return true, nil
		}
	}
	return false, ErrNotFound
}

func testService() (*Service, *fakeGateway, *fakeStores) {
	gw := newFakeGateway()
	st := newFakeStores(&users.User{ID: 1, Email: "jane@example.com", FirstName: "Jane", LastName: "Doe"})
	return NewService(gw, st, st, "https://app.example.com/payment-confirmation"), gw, st
}

func TestEnsureCustomerCreatesOnce(t *testing.T) {
	svc, gw, st := testService()
	ctx := context.Background()

	id1, err := svc.EnsureCustomer(ctx, 1)
	require.NoError(t, err)
	require.NotEmpty(t, id1)
	assert.Equal(t, 1, gw.createCustomerCalls)
	require.NotNil(t, st.user.StripeCustomerID)
	assert.Equal(t, id1, *st.user.StripeCustomerID)

	id2, err := svc.EnsureCustomer(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
	assert.Equal(t, 1, gw.createCustomerCalls, "second call must not create another customer")
}

func TestEnsureCustomerRebindsStaleID(t *testing.T) {
	svc, gw, st := testService()
	ctx := context.Background()

	stale := "cus_gone"
	st.user.StripeCustomerID = &stale

	id, err := svc.EnsureCustomer(ctx, 1)
	require.NoError(t, err)
	assert.NotEqual(t, stale, id)
	assert.Equal(t, 1, gw.createCustomerCalls)
	assert.Equal(t, id, *st.user.StripeCustomerID)
}

func TestEnsureCustomerRebindsDeletedCustomer(t *testing.T) {
	svc, gw, st := testService()
	ctx := context.Background()

	gw.customers["cus_dead"] = &CustomerResult{ID: "cus_dead", Deleted: true}
	dead := "cus_dead"
	st.user.StripeCustomerID = &dead

	id, err := svc.EnsureCustomer(ctx, 1)
	require.NoError(t, err)
	assert.NotEqual(t, "cus_dead", id)
	assert.Equal(t, 1, gw.createCustomerCalls)
}

func TestEnsureCustomerDoesNotRebindOnTransportError(t *testing.T) {
	svc, gw, st := testService()
	ctx := context.Background()

	bound := "cus_ok"
	st.user.StripeCustomerID = &bound
	gw.getCustomerErr = &GatewayError{Op: "customer.get", Code: "api_error", Message: "boom"}

	_, err := svc.EnsureCustomer(ctx, 1)
	require.Error(t, err)
	assert.Equal(t, 0, gw.createCustomerCalls, "a flaky read must not trigger a rebind")
	assert.Equal(t, "cus_ok", *st.user.StripeCustomerID)
}

func TestCreateAndConfirmIntentSucceeded(t *testing.T) {
	svc, gw, st := testService()
	ctx := context.Background()

	out, err := svc.CreateAndConfirmIntent(ctx, 1, "pm_card", 999, "usd")
	require.NoError(t, err)
	assert.Equal(t, IntentSucceeded, out.State)
	assert.Equal(t, "pi_test", out.IntentID)
	assert.Equal(t, 1, gw.createIntentCalls)

	rec, err := st.CurrentForUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, billing.StatusActive, rec.Status)
	assert.Equal(t, "pm_card", rec.PaymentMethodID)
	assert.EqualValues(t, 999, rec.AmountCents)
}

func TestCreateAndConfirmIntentRequiresAction(t *testing.T) {
	svc, gw, st := testService()
	ctx := context.Background()

	gw.intents["pi_test"] = &IntentResult{
		ID:           "pi_test",
		Status:       "requires_action",
		ClientSecret: "pi_test_secret",
		RedirectURL:  "https://gateway.example.com/3ds",
		CreatedAt:    100,
	}

	out, err := svc.CreateAndConfirmIntent(ctx, 1, "pm_card", 999, "usd")
	require.NoError(t, err)
	assert.Equal(t, IntentRequiresAction, out.State)
	assert.Equal(t, "pi_test_secret", out.ClientSecret)
	assert.Equal(t, "https://gateway.example.com/3ds", out.RedirectURL)

	rec, err := st.CurrentForUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, billing.StatusRequiresAction, rec.Status, "suspended state must be persisted")
}

func TestCreateAndConfirmIntentRejectedMethod(t *testing.T) {
	svc, gw, _ := testService()
	ctx := context.Background()

	gw.attachErr = ErrInvalidPaymentMethod

	_, err := svc.CreateAndConfirmIntent(ctx, 1, "pm_bad", 999, "usd")
	require.ErrorIs(t, err, ErrInvalidPaymentMethod)
	assert.Equal(t, 0, gw.createIntentCalls, "no intent may be created after a rejected attach")
}

func TestConfirmIntentSkipsSucceeded(t *testing.T) {
	svc, gw, _ := testService()
	ctx := context.Background()

	_, err := svc.CreateAndConfirmIntent(ctx, 1, "pm_card", 999, "usd")
	require.NoError(t, err)

	out, err := svc.ConfirmIntent(ctx, "pi_test", "pm_card")
	require.NoError(t, err)
	assert.Equal(t, IntentSucceeded, out.State)
	assert.Equal(t, 0, gw.confirmCalls, "an already-succeeded intent must not be confirmed again")
}

func TestConfirmIntentDrivesPendingIntent(t *testing.T) {
	svc, gw, st := testService()
	ctx := context.Background()

	gw.intents["pi_test"] = &IntentResult{ID: "pi_test", Status: "requires_action", CreatedAt: 100}
	_, err := svc.CreateAndConfirmIntent(ctx, 1, "pm_card", 999, "usd")
	require.NoError(t, err)

	out, err := svc.ConfirmIntent(ctx, "pi_test", "pm_card")
	require.NoError(t, err)
	assert.Equal(t, IntentSucceeded, out.State)
	assert.Equal(t, 1, gw.confirmCalls)

	rec, err := st.ByIntentID(ctx, "pi_test")
	require.NoError(t, err)
	assert.Equal(t, billing.StatusActive, rec.Status)
}

func TestCreateSubscriptionRequiresConfirmedMethod(t *testing.T) {
	svc, gw, _ := testService()
	ctx := context.Background()

	_, err := svc.CreateSubscription(ctx, 1, "price_basic")
	require.ErrorIs(t, err, ErrMissingPaymentMethod)
	assert.Equal(t, 0, gw.createSubCalls, "precondition failures must not reach the gateway")
	assert.Equal(t, 0, gw.createCustomerCalls)
}

func TestCreateSubscriptionActive(t *testing.T) {
	svc, gw, st := testService()
	ctx := context.Background()

	_, err := svc.CreateAndConfirmIntent(ctx, 1, "pm_card", 999, "usd")
	require.NoError(t, err)

	out, err := svc.CreateSubscription(ctx, 1, "price_basic")
	require.NoError(t, err)
	assert.Equal(t, "sub_test", out.SubscriptionID)
	assert.Equal(t, billing.StatusActive, out.Status)
	assert.Equal(t, 1, gw.createSubCalls)

	rec, err := st.BySubscriptionID(ctx, "sub_test")
	require.NoError(t, err)
	assert.Equal(t, billing.StatusActive, rec.Status)
}

func TestCreateSubscriptionFirstInvoiceNeedsAction(t *testing.T) {
	svc, gw, st := testService()
	ctx := context.Background()

	_, err := svc.CreateAndConfirmIntent(ctx, 1, "pm_card", 999, "usd")
	require.NoError(t, err)

	gw.subs["sub_test"] = &SubscriptionResult{
		ID:     "sub_test",
		Status: "incomplete",
		LatestIntent: &IntentResult{
			ID:           "pi_invoice",
			Status:       "requires_action",
			ClientSecret: "pi_invoice_secret",
		},
		EventAt: 200,
	}

	out, err := svc.CreateSubscription(ctx, 1, "price_basic")
	require.NoError(t, err)
	assert.Equal(t, billing.StatusRequiresAction, out.Status, "the first invoice's intent overrides the subscription status")
	assert.Equal(t, "pi_invoice_secret", out.ClientSecret)

	rec, err := st.BySubscriptionID(ctx, "sub_test")
	require.NoError(t, err)
	assert.Equal(t, billing.StatusRequiresAction, rec.Status)
}

func TestApplyEventOrderIndependence(t *testing.T) {
	ctx := context.Background()

	// E1: past_due at t=100. E2: active at t=200. Both orders must end active.
	orders := [][2][3]interface{}{
		{{"past_due", int64(100), billing.StatusIncomplete}, {"active", int64(200), billing.StatusActive}},
		{{"active", int64(200), billing.StatusActive}, {"past_due", int64(100), billing.StatusActive}},
	}

	for _, events := range orders {
		svc, _, st := testService()
		_, err := svc.CreateAndConfirmIntent(ctx, 1, "pm_card", 999, "usd")
		require.NoError(t, err)
		_, err = svc.CreateSubscription(ctx, 1, "price_basic")
		require.NoError(t, err)

		for _, ev := range events {
			got, err := svc.ApplyEvent(ctx, "sub_test", ev[0].(string), false, ev[1].(int64))
			require.NoError(t, err)
			assert.Equal(t, ev[2].(billing.Status), got)
		}

		rec, err := st.BySubscriptionID(ctx, "sub_test")
		require.NoError(t, err)
		assert.Equal(t, billing.StatusActive, rec.Status)
		assert.EqualValues(t, 200, rec.LastEventAt)
	}
}

func TestApplyEventUnknownSubscription(t *testing.T) {
	svc, _, _ := testService()

	_, err := svc.ApplyEvent(context.Background(), "sub_unknown", "active", false, 100)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPauseAndResume(t *testing.T) {
	svc, _, st := testService()
	ctx := context.Background()

	_, err := svc.CreateAndConfirmIntent(ctx, 1, "pm_card", 999, "usd")
	require.NoError(t, err)
	_, err = svc.CreateSubscription(ctx, 1, "price_basic")
	require.NoError(t, err)

	status, err := svc.Pause(ctx, "sub_test")
	require.NoError(t, err)
	assert.Equal(t, billing.StatusPaused, status)

	rec, err := st.BySubscriptionID(ctx, "sub_test")
	require.NoError(t, err)
	assert.Equal(t, billing.StatusPaused, rec.Status)

	status, err = svc.Resume(ctx, "sub_test")
	require.NoError(t, err)
	assert.Equal(t, billing.StatusActive, status)
}

// A webhook may land between subscription creation and a pause/resume or
// reconcile. The synchronous write must still take effect even though the
// gateway object's own timestamp never moved past creation.
func TestPauseAppliesAfterNewerWebhookEvent(t *testing.T) {
	svc, _, st := testService()
	ctx := context.Background()

	_, err := svc.CreateAndConfirmIntent(ctx, 1, "pm_card", 999, "usd")
	require.NoError(t, err)
	_, err = svc.CreateSubscription(ctx, 1, "price_basic")
	require.NoError(t, err)

	// Webhook arrives with an event time well past the creation timestamp.
	_, err = svc.ApplyEvent(ctx, "sub_test", "active", false, 500)
	require.NoError(t, err)

	status, err := svc.Pause(ctx, "sub_test")
	require.NoError(t, err)
	assert.Equal(t, billing.StatusPaused, status)

	rec, err := st.BySubscriptionID(ctx, "sub_test")
	require.NoError(t, err)
	assert.Equal(t, billing.StatusPaused, rec.Status, "the stored record must match what the caller was told")

	status, err = svc.Resume(ctx, "sub_test")
	require.NoError(t, err)
	assert.Equal(t, billing.StatusActive, status)

	rec, err = st.BySubscriptionID(ctx, "sub_test")
	require.NoError(t, err)
	assert.Equal(t, billing.StatusActive, rec.Status)
}

func TestReconcileAppliesAfterNewerWebhookEvent(t *testing.T) {
	svc, gw, st := testService()
	ctx := context.Background()

	_, err := svc.CreateAndConfirmIntent(ctx, 1, "pm_card", 999, "usd")
	require.NoError(t, err)
	_, err = svc.CreateSubscription(ctx, 1, "price_basic")
	require.NoError(t, err)

	_, err = svc.ApplyEvent(ctx, "sub_test", "active", false, 500)
	require.NoError(t, err)

	gw.subs["sub_test"].Status = "past_due"

	status, err := svc.Reconcile(ctx, "sub_test")
	require.NoError(t, err)
	assert.Equal(t, billing.StatusIncomplete, status)

	rec, err := st.BySubscriptionID(ctx, "sub_test")
	require.NoError(t, err)
	assert.Equal(t, billing.StatusIncomplete, rec.Status)
}

func TestPauseUnknownSubscription(t *testing.T) {
	svc, _, _ := testService()

	_, err := svc.Pause(context.Background(), "sub_unknown")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReconcileKeepsStatusOnGatewayFailure(t *testing.T) {
	svc, gw, _ := testService()
	ctx := context.Background()

	_, err := svc.CreateAndConfirmIntent(ctx, 1, "pm_card", 999, "usd")
	require.NoError(t, err)
	_, err = svc.CreateSubscription(ctx, 1, "price_basic")
	require.NoError(t, err)

	delete(gw.subs, "sub_test")
	gw.subs = map[string]*SubscriptionResult{} // gateway read now fails

	status, err := svc.Reconcile(ctx, "sub_test")
	require.NoError(t, err)
	assert.Equal(t, billing.StatusActive, status, "a failed read keeps the previous status")
}

func TestHandleIntentEventUnknownIntentIsIgnored(t *testing.T) {
	svc, _, _ := testService()

	err := svc.HandleIntentEvent(context.Background(), "pi_unknown", "succeeded", 100)
	assert.NoError(t, err)
}

// Full lifecycle: bind, intent with 3DS, out-of-band success, subscribe,
// then a later webhook downgrading the subscription.
func TestFullBillingLifecycle(t *testing.T) {
	svc, gw, st := testService()
	ctx := context.Background()

	require.Nil(t, st.user.StripeCustomerID)
	customerID, err := svc.EnsureCustomer(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, customerID, *st.user.StripeCustomerID)

	gw.intents["pi_test"] = &IntentResult{
		ID: "pi_test", Status: "requires_action",
		ClientSecret: "sec_1", CreatedAt: 100,
	}
	out, err := svc.CreateAndConfirmIntent(ctx, 1, "pm_1", 1000, "usd")
	require.NoError(t, err)
	assert.Equal(t, IntentRequiresAction, out.State)
	assert.Equal(t, "sec_1", out.ClientSecret)

	rec, err := st.CurrentForUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, billing.StatusRequiresAction, rec.Status)

	// Cardholder authenticated; the gateway pushes succeeded.
	require.NoError(t, svc.HandleIntentEvent(ctx, "pi_test", "succeeded", 150))
	rec, err = st.CurrentForUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, billing.StatusActive, rec.Status)

	subOut, err := svc.CreateSubscription(ctx, 1, "price_1")
	require.NoError(t, err)
	assert.Equal(t, "sub_test", subOut.SubscriptionID)
	assert.Equal(t, billing.StatusActive, subOut.Status)

	rec, err = st.CurrentForUser(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, rec.SubscriptionID)
	assert.Equal(t, "sub_test", *rec.SubscriptionID)

	// Later webhook: the subscription went past_due.
	got, err := svc.ApplyEvent(ctx, "sub_test", "past_due", false, 500)
	require.NoError(t, err)
	assert.Equal(t, billing.StatusIncomplete, got)

	rec, err = st.CurrentForUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, billing.StatusIncomplete, rec.Status)
	assert.EqualValues(t, 500, rec.LastEventAt)
}

func TestGatewayErrorUnwraps(t *testing.T) {
	inner := errors.New("tcp reset")
	err := &GatewayError{Op: "intent.create", Code: "api_error", Message: "boom", Err: inner}

	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "intent.create")
}
