// Package stripegw adapts the Stripe SDK to the payments.Gateway interface.
// All SDK response objects are flattened into the typed result structs here;
// nothing above this package touches Stripe types.
package stripegw

import (
	"context"
	"errors"
	"net/http"
	"time"

	"contest-app/internal/payments"

	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/client"
)

type Client struct {
	api *client.API
}

// New builds a gateway client around a dedicated Stripe API instance. The
// key is injected once here instead of mutating the SDK's process-wide
// default.
func New(secretKey string) *Client {
	backends := stripe.NewBackends(&http.Client{Timeout: 20 * time.Second})
	api := &client.API{}
	api.Init(secretKey, backends)
	return &Client{api: api}
}

func (c *Client) CreateCustomer(ctx context.Context, email, name string) (*payments.CustomerResult, error) {
	params := &stripe.CustomerParams{
		Params: stripe.Params{Context: ctx},
		Email:  stripe.String(email),
	}
	if name != "" {
		params.Name = stripe.String(name)
	}
	cus, err := c.api.Customers.New(params)
	if err != nil {
		return nil, wrap("create customer", err)
	}
	return customerResult(cus), nil
}

func (c *Client) GetCustomer(ctx context.Context, customerID string) (*payments.CustomerResult, error) {
	cus, err := c.api.Customers.Get(customerID, &stripe.CustomerParams{Params: stripe.Params{Context: ctx}})
	if err != nil {
		return nil, wrap("get customer", err)
	}
	return customerResult(cus), nil
}

func (c *Client) AttachPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error {
	_, err := c.api.PaymentMethods.Attach(paymentMethodID, &stripe.PaymentMethodAttachParams{
		Params:   stripe.Params{Context: ctx},
		Customer: stripe.String(customerID),
	})
	if err != nil {
		// Attachment failures are terminal for the supplied method.
		return errors.Join(payments.ErrInvalidPaymentMethod, wrap("attach payment method", err))
	}
	return nil
}

func (c *Client) SetDefaultPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error {
	_, err := c.api.Customers.Update(customerID, &stripe.CustomerParams{
		Params: stripe.Params{Context: ctx},
		InvoiceSettings: &stripe.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripe.String(paymentMethodID),
		},
	})
	if err != nil {
		return wrap("set default payment method", err)
	}
	return nil
}

func (c *Client) CreatePaymentIntent(ctx context.Context, p payments.IntentParams) (*payments.IntentResult, error) {
	params := &stripe.PaymentIntentParams{
		Params:        stripe.Params{Context: ctx},
		Customer:      stripe.String(p.CustomerID),
		PaymentMethod: stripe.String(p.PaymentMethodID),
		Amount:        stripe.Int64(p.AmountCents),
		Currency:      stripe.String(p.Currency),
		Confirm:       stripe.Bool(true),
	}
	if p.ReturnURL != "" {
		params.ReturnURL = stripe.String(p.ReturnURL)
	}
	pi, err := c.api.PaymentIntents.New(params)
	if err != nil {
		return nil, wrap("create payment intent", err)
	}
	return intentResult(pi), nil
}

func (c *Client) GetPaymentIntent(ctx context.Context, intentID string) (*payments.IntentResult, error) {
	pi, err := c.api.PaymentIntents.Get(intentID, &stripe.PaymentIntentParams{Params: stripe.Params{Context: ctx}})
	if err != nil {
		return nil, wrap("get payment intent", err)
	}
	return intentResult(pi), nil
}

func (c *Client) ConfirmPaymentIntent(ctx context.Context, intentID, paymentMethodID, returnURL string) (*payments.IntentResult, error) {
	params := &stripe.PaymentIntentConfirmParams{
		Params: stripe.Params{Context: ctx},
	}
	if paymentMethodID != "" {
		params.PaymentMethod = stripe.String(paymentMethodID)
	}
	if returnURL != "" {
		params.ReturnURL = stripe.String(returnURL)
	}
	pi, err := c.api.PaymentIntents.Confirm(intentID, params)
	if err != nil {
		return nil, wrap("confirm payment intent", err)
	}
	return intentResult(pi), nil
}

func (c *Client) CreateSubscription(ctx context.Context, customerID, priceID, defaultPaymentMethodID string) (*payments.SubscriptionResult, error) {
	params := &stripe.SubscriptionParams{
		Params:   stripe.Params{Context: ctx},
		Customer: stripe.String(customerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(priceID)},
		},
		// Return the subscription even when the first invoice needs further
		// action instead of erroring.
		PaymentBehavior: stripe.String("allow_incomplete"),
	}
	if defaultPaymentMethodID != "" {
		params.DefaultPaymentMethod = stripe.String(defaultPaymentMethodID)
	}
	params.AddExpand("latest_invoice.payment_intent")

	sub, err := c.api.Subscriptions.New(params)
	if err != nil {
		return nil, wrap("create subscription", err)
	}
	return subscriptionResult(sub), nil
}

func (c *Client) GetSubscription(ctx context.Context, subscriptionID string) (*payments.SubscriptionResult, error) {
	params := &stripe.SubscriptionParams{Params: stripe.Params{Context: ctx}}
	params.AddExpand("latest_invoice.payment_intent")
	sub, err := c.api.Subscriptions.Get(subscriptionID, params)
	if err != nil {
		return nil, wrap("get subscription", err)
	}
	return subscriptionResult(sub), nil
}

func (c *Client) PauseSubscription(ctx context.Context, subscriptionID string) (*payments.SubscriptionResult, error) {
	params := &stripe.SubscriptionParams{
		Params: stripe.Params{Context: ctx},
		PauseCollection: &stripe.SubscriptionPauseCollectionParams{
			Behavior: stripe.String(string(stripe.SubscriptionPauseCollectionBehaviorVoid)),
		},
	}
	sub, err := c.api.Subscriptions.Update(subscriptionID, params)
	if err != nil {
		return nil, wrap("pause subscription", err)
	}
	return subscriptionResult(sub), nil
}

func (c *Client) ResumeSubscription(ctx context.Context, subscriptionID string) (*payments.SubscriptionResult, error) {
	params := &stripe.SubscriptionParams{Params: stripe.Params{Context: ctx}}
	// Clearing pause_collection needs an explicit empty value.
	params.AddExtra("pause_collection", "")
	params.AddExpand("latest_invoice.payment_intent")
	sub, err := c.api.Subscriptions.Update(subscriptionID, params)
	if err != nil {
		return nil, wrap("resume subscription", err)
	}
	return subscriptionResult(sub), nil
}

func (c *Client) GetInvoice(ctx context.Context, invoiceID string) (*payments.InvoiceResult, error) {
	inv, err := c.api.Invoices.Get(invoiceID, &stripe.InvoiceParams{Params: stripe.Params{Context: ctx}})
	if err != nil {
		return nil, wrap("get invoice", err)
	}
	res := &payments.InvoiceResult{ID: inv.ID, Status: string(inv.Status)}
	if inv.PaymentIntent != nil {
		res.PaymentIntentID = inv.PaymentIntent.ID
	}
	return res, nil
}

func customerResult(cus *stripe.Customer) *payments.CustomerResult {
	return &payments.CustomerResult{ID: cus.ID, Email: cus.Email, Deleted: cus.Deleted}
}

func intentResult(pi *stripe.PaymentIntent) *payments.IntentResult {
	res := &payments.IntentResult{
		ID:           pi.ID,
		Status:       string(pi.Status),
		ClientSecret: pi.ClientSecret,
		AmountCents:  pi.Amount,
		Currency:     string(pi.Currency),
		CreatedAt:    pi.Created,
	}
	if pi.PaymentMethod != nil {
		res.PaymentMethodID = pi.PaymentMethod.ID
	}
	if pi.NextAction != nil && pi.NextAction.RedirectToURL != nil {
		res.RedirectURL = pi.NextAction.RedirectToURL.URL
	}
	if pi.LastPaymentError != nil {
		res.FailureMessage = pi.LastPaymentError.Msg
	}
	return res
}

func subscriptionResult(sub *stripe.Subscription) *payments.SubscriptionResult {
	res := &payments.SubscriptionResult{
		ID:      sub.ID,
		Status:  string(sub.Status),
		Paused:  sub.PauseCollection != nil,
		EventAt: sub.Created,
	}
	if sub.LatestInvoice != nil {
		res.LatestInvoiceID = sub.LatestInvoice.ID
		if sub.LatestInvoice.PaymentIntent != nil {
			res.LatestIntent = intentResult(sub.LatestInvoice.PaymentIntent)
		}
	}
	return res
}

func wrap(op string, err error) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		if se.Code == stripe.ErrorCodeResourceMissing {
			return payments.ErrNotFound
		}
		return &payments.GatewayError{Op: op, Code: string(se.Code), Message: se.Msg, Err: err}
	}
	return &payments.GatewayError{Op: op, Message: err.Error(), Err: err}
}
