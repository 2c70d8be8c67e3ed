package billing

import (
	"net/http"

	"contest-app/database"
	"contest-app/internal/api/response"
	domain "contest-app/internal/domain/billing"

	"github.com/gin-gonic/gin"
)

// POST /subscribe
// Body: {"price_id": "price_..."}
func Subscribe(c *gin.Context) {
	var body struct {
		PriceID string `json:"price_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, "Missing or invalid price_id")
		return
	}

	userID := c.GetUint("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "User not identified")
		return
	}

	out, err := core.CreateSubscription(c.Request.Context(), userID, body.PriceID)
	if err != nil {
		renderPaymentError(c, err)
		return
	}

	if out.Status == domain.StatusRequiresAction {
		response.Success(c, http.StatusPaymentRequired, "Subscription created; payment requires additional authentication.", gin.H{
			"subscription_id": out.SubscriptionID,
			"subscription":    string(out.Status),
			"client_secret":   out.ClientSecret,
			"redirect_url":    out.RedirectURL,
		})
		return
	}

	response.Success(c, http.StatusOK, "Subscription created successfully.", gin.H{
		"subscription_id": out.SubscriptionID,
		"subscription":    string(out.Status),
	})
}

// POST /confirm-subscription
// Body: {"subscription_id": "sub_..."}
func ConfirmSubscription(c *gin.Context) {
	subID, ok := ownedSubscription(c)
	if !ok {
		return
	}

	status, err := core.Reconcile(c.Request.Context(), subID)
	if err != nil {
		renderPaymentError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Subscription status reconciled.", gin.H{
		"subscription_id": subID,
		"subscription":    string(status),
	})
}

// POST /pause-subscription
func PauseSubscription(c *gin.Context) {
	subID, ok := ownedSubscription(c)
	if !ok {
		return
	}

	status, err := core.Pause(c.Request.Context(), subID)
	if err != nil {
		renderPaymentError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Subscription paused.", gin.H{
		"subscription_id": subID,
		"subscription":    string(status),
	})
}

// POST /resume-subscription
func ResumeSubscription(c *gin.Context) {
	subID, ok := ownedSubscription(c)
	if !ok {
		return
	}

	status, err := core.Resume(c.Request.Context(), subID)
	if err != nil {
		renderPaymentError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Subscription resumed.", gin.H{
		"subscription_id": subID,
		"subscription":    string(status),
	})
}

// ownedSubscription binds the subscription_id body field and verifies the
// subscription belongs to the calling user.
func ownedSubscription(c *gin.Context) (string, bool) {
	var body struct {
		SubscriptionID string `json:"subscription_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, "Missing subscription_id")
		return "", false
	}

	userID := c.GetUint("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "User not identified")
		return "", false
	}

	var rec domain.PaymentRecord
	if err := database.DB.Where("subscription_id = ?", body.SubscriptionID).First(&rec).Error; err != nil {
		response.Error(c, http.StatusNotFound, "Subscription not found")
		return "", false
	}
	if rec.UserID != userID {
		response.Error(c, http.StatusForbidden, "You are not authorized to manage this subscription")
		return "", false
	}

	return body.SubscriptionID, true
}
