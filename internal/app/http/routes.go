package routes

import (
	adminapi "contest-app/internal/api/admin"
	authapi "contest-app/internal/api/auth"
	"contest-app/internal/api/billing"
	communityapi "contest-app/internal/api/community"
	productsapi "contest-app/internal/api/products"
	stripewebhooks "contest-app/internal/api/stripewebhook"
	"contest-app/internal/api/users"
	votesapi "contest-app/internal/api/votes"
	"contest-app/internal/app/http/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	// Webhook takes the raw body, so it stays outside the sanitizer.
	r.POST("/webhook", stripewebhooks.StripeWebhook)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Redirect-completion landing for 3DS flows.
	r.GET("/payment-confirmation", billing.PaymentConfirmation)

	public := r.Group("/")
	public.Use(middleware.SanitizeAndCleanInputMiddleware())

	public.POST("/register", authapi.Register)
	public.POST("/login", authapi.Login)
	public.POST("/forgot-password", authapi.ForgotPassword)
	public.POST("/verify-otp", authapi.VerifyOtp)
	public.POST("/reset-password", authapi.ResetPassword)

	public.GET("/active-products", productsapi.ActiveProducts)
	public.GET("/products/:id", productsapi.Show)
	public.GET("/communities", communityapi.Index)

	public.GET("/auth/google", authapi.GoogleStart)
	public.GET("/auth/google/callback", authapi.GoogleCallback)

	// Authenticated
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware(), middleware.SanitizeAndCleanInputMiddleware())

	auth.GET("/user", users.GetCurrentUser)
	auth.PUT("/user", users.UpdateProfile)

	auth.POST("/create-payment-intent", billing.CreatePaymentIntent)
	auth.POST("/confirm-payment", billing.ConfirmPayment)
	auth.GET("/payments/user", billing.GetPaymentHistory)

	auth.POST("/subscribe", billing.Subscribe)
	auth.POST("/confirm-subscription", billing.ConfirmSubscription)
	auth.POST("/pause-subscription", billing.PauseSubscription)
	auth.POST("/resume-subscription", billing.ResumeSubscription)

	auth.GET("/votes/history", votesapi.VotingHistory)
	auth.POST("/communities", communityapi.Store)

	// Voting is for paying members only.
	subscribed := auth.Group("/")
	subscribed.Use(middleware.RequireActiveBilling())
	subscribed.POST("/products/:id/vote", productsapi.Vote)

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireAdmin())

	admin.GET("/users", adminapi.ListAllUsers)
	admin.GET("/users/export", adminapi.ExportUsers)
	admin.PUT("/users/:id/approve", adminapi.ApproveUser)
	admin.PUT("/users/:id/status", adminapi.ActiveInactive)
	admin.DELETE("/users/:id", adminapi.DeleteUser)
	admin.GET("/payments", adminapi.ListAllPayments)

	admin.POST("/products", productsapi.Store)
	admin.GET("/products", productsapi.Index)
	admin.PUT("/products/:id", productsapi.Update)
	admin.DELETE("/products/:id", productsapi.Destroy)

	admin.GET("/votes", votesapi.Index)
	admin.GET("/votes/export", votesapi.ExportVotes)
	admin.GET("/votes/total-voters", votesapi.TotalVoters)
	admin.PUT("/votes/:id/winner", votesapi.MakeWinner)
	admin.GET("/votes/winners", votesapi.Winners)
	admin.GET("/votes/winners/export", votesapi.ExportWinners)

	admin.PUT("/communities/:id/approve", communityapi.Approve)
}
