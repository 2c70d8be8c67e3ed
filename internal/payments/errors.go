package payments

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("record not found")
	ErrMissingPaymentMethod = errors.New("no payment method on file")
	ErrInvalidPaymentMethod = errors.New("payment method rejected")
)

// GatewayError wraps a billing-provider failure with the provider's error
// code and message. Handlers surface the code, never the raw provider
// internals.
type GatewayError struct {
	Op      string
	Code    string
	Message string
	Err     error
}

func (e *GatewayError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gateway %s: %s (%s)", e.Op, e.Message, e.Code)
	}
	return fmt.Sprintf("gateway %s: %s", e.Op, e.Message)
}

func (e *GatewayError) Unwrap() error { return e.Err }
