package middleware

import (
	"net/http"

	"contest-app/database"
	"contest-app/internal/api/response"
	"contest-app/internal/domain/billing"

	"github.com/gin-gonic/gin"
)

// RequireActiveBilling gates contest participation on the user's billing
// record being active. This is the only consumer of the payments core's
// output outside the billing API itself.
func RequireActiveBilling() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")
		if userID == 0 {
			response.Error(c, http.StatusUnauthorized, "User not identified")
			c.Abort()
			return
		}

		var rec billing.PaymentRecord
		if err := database.DB.Where("user_id = ?", userID).First(&rec).Error; err != nil {
			response.Error(c, http.StatusPaymentRequired, "An active payment is required to vote")
			c.Abort()
			return
		}
		if rec.Status != billing.StatusActive {
			response.Error(c, http.StatusPaymentRequired, "Your payment is not active")
			c.Abort()
			return
		}

		c.Next()
	}
}
