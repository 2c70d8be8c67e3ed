package stripewebhooks

import (
	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
)

// Out-of-band intent completion (e.g. after a 3-D Secure redirect) lands
// here and flips the local record off requires_action.
func handlePaymentIntentEvent(c *gin.Context, pi *stripe.PaymentIntent, eventAt int64) error {
	if pi.ID == "" {
		return nil
	}
	return core.HandleIntentEvent(c.Request.Context(), pi.ID, string(pi.Status), eventAt)
}
