package main

import (
	"time"

	"contest-app/config"
	"contest-app/database"
	"contest-app/internal/api/billing"
	stripewebhooks "contest-app/internal/api/stripewebhook"
	routes "contest-app/internal/app/http"
	"contest-app/internal/payments"
	"contest-app/internal/payments/stripegw"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// gin.SetMode(gin.ReleaseMode) uncomment only in production
	config.LoadEnv()
	database.InitDB()

	gw := stripegw.New(config.STRIPE_SECRET_KEY)
	stores := payments.NewGormStores(database.DB)
	core := payments.NewService(gw, stores, stores, config.FRONTEND_URL+"/payment-confirmation")
	billing.Init(core)
	stripewebhooks.Init(core)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.CORS_ORIGIN},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r)

	r.Run(":" + config.PORT)
}
