package billing

import (
	"errors"
	"net/http"

	"contest-app/database"
	"contest-app/internal/api/response"
	domain "contest-app/internal/domain/billing"
	"contest-app/internal/payments"

	"github.com/gin-gonic/gin"
)

// core is wired once at startup from main.
var core *payments.Service

func Init(s *payments.Service) { core = s }

// POST /create-payment-intent
// Body: {"amount": <major units>, "currency"?: "usd", "payment_method": "pm_..."}
func CreatePaymentIntent(c *gin.Context) {
	var body struct {
		Amount        float64 `json:"amount" binding:"required,gt=0"`
		Currency      string  `json:"currency"`
		PaymentMethod string  `json:"payment_method" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, "Missing or invalid amount/payment_method")
		return
	}
	currency := body.Currency
	if currency == "" {
		currency = "usd"
	}

	userID := c.GetUint("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "User not identified")
		return
	}

	amountCents := int64(body.Amount * 100)
	out, err := core.CreateAndConfirmIntent(c.Request.Context(), userID, body.PaymentMethod, amountCents, currency)
	if err != nil {
		renderPaymentError(c, err)
		return
	}
	renderIntentOutcome(c, out)
}

// POST /confirm-payment
// Body: {"payment_intent_id": "pi_...", "payment_method"?: "pm_..."}
func ConfirmPayment(c *gin.Context) {
	var body struct {
		PaymentIntentID string `json:"payment_intent_id" binding:"required"`
		PaymentMethod   string `json:"payment_method"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, "Missing payment_intent_id")
		return
	}

	out, err := core.ConfirmIntent(c.Request.Context(), body.PaymentIntentID, body.PaymentMethod)
	if err != nil {
		renderPaymentError(c, err)
		return
	}
	renderIntentOutcome(c, out)
}

// GET /payment-confirmation?payment_intent=pi_...
// Redirect-completion callback: re-reads the intent's status, never
// re-submits the charge.
func PaymentConfirmation(c *gin.Context) {
	intentID := c.Query("payment_intent")
	if intentID == "" {
		response.Error(c, http.StatusBadRequest, "Missing payment_intent")
		return
	}

	out, err := core.SyncIntent(c.Request.Context(), intentID)
	if err != nil {
		renderPaymentError(c, err)
		return
	}
	renderIntentOutcome(c, out)
}

// GET /payments/user
func GetPaymentHistory(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var records []domain.PaymentRecord
	if err := database.DB.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to load payments")
		return
	}

	response.Success(c, http.StatusOK, "Payments retrieved successfully.", gin.H{"payments": records})
}

func renderIntentOutcome(c *gin.Context, out *payments.IntentOutcome) {
	switch out.State {
	case payments.IntentSucceeded:
		response.Success(c, http.StatusOK, "Payment successfully confirmed.", gin.H{
			"payment_intent_id": out.IntentID,
		})
	case payments.IntentRequiresAction:
		// Expected branch, not an error: the cardholder has to authenticate.
		response.Success(c, http.StatusPaymentRequired, "Payment requires additional authentication.", gin.H{
			"payment_intent_id": out.IntentID,
			"client_secret":     out.ClientSecret,
			"redirect_url":      out.RedirectURL,
		})
	case payments.IntentFailed:
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  false,
			"message": "Payment failed.",
			"error":   out.Reason,
			"data":    gin.H{"payment_intent_id": out.IntentID},
		})
	default:
		response.Success(c, http.StatusOK, "Payment is processing.", gin.H{
			"payment_intent_id": out.IntentID,
		})
	}
}

func renderPaymentError(c *gin.Context, err error) {
	var gwErr *payments.GatewayError
	switch {
	case errors.Is(err, payments.ErrNotFound):
		response.Error(c, http.StatusNotFound, "Record not found")
	case errors.Is(err, payments.ErrMissingPaymentMethod):
		response.Error(c, http.StatusBadRequest, "No confirmed payment method on file. Create a payment first.")
	case errors.Is(err, payments.ErrInvalidPaymentMethod):
		response.Error(c, http.StatusBadRequest, "The payment method was rejected")
	case errors.As(err, &gwErr):
		response.ErrorWith(c, http.StatusBadGateway, "Payment provider error", gwErr.Code)
	default:
		response.Error(c, http.StatusInternalServerError, "Payment operation failed")
	}
}
