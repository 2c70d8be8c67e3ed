package stripewebhooks

import (
	"errors"
	"fmt"

	"contest-app/internal/payments"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
)

// Pushed subscription state converges through the same last-write-wins merge
// as synchronous reconciliation; the event's creation time is the ordering
// key, so replays and late arrivals cannot clobber newer state.
func handleSubscriptionUpdated(c *gin.Context, sub *stripe.Subscription, eventAt int64) error {
	if sub.ID == "" {
		return fmt.Errorf("subscription event missing id")
	}

	paused := sub.PauseCollection != nil
	_, err := core.ApplyEvent(c.Request.Context(), sub.ID, string(sub.Status), paused, eventAt)
	if errors.Is(err, payments.ErrNotFound) {
		// Subscription we never recorded (deleted user, foreign env);
		// acknowledge so the gateway stops retrying.
		return nil
	}
	return err
}

func handleSubscriptionDeleted(c *gin.Context, sub *stripe.Subscription, eventAt int64) error {
	if sub.ID == "" {
		return nil
	}

	_, err := core.ApplyEvent(c.Request.Context(), sub.ID, "canceled", false, eventAt)
	if errors.Is(err, payments.ErrNotFound) {
		return nil
	}
	return err
}
