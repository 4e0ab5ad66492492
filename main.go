package main

import (
	"context"
	"log"
	"time"

	"github.com/TechbroSam/jogiloran/config"
	"github.com/TechbroSam/jogiloran/controllers"
	"github.com/TechbroSam/jogiloran/database"
	"github.com/TechbroSam/jogiloran/email"
	"github.com/TechbroSam/jogiloran/logger"
	"github.com/TechbroSam/jogiloran/middleware"
	"github.com/TechbroSam/jogiloran/repository"
	"github.com/TechbroSam/jogiloran/routes"
	"github.com/TechbroSam/jogiloran/sanity"
	"github.com/TechbroSam/jogiloran/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("[Storefront] ❌ Failed to load config:", err)
	}

	logger.Initialize(cfg.Environment)
	zapLog := logger.Log
	defer zapLog.Sync()

	if err := database.Connect(cfg.MongoURI, cfg.MongoDB); err != nil {
		log.Fatal("[Storefront] ❌ Failed to connect to MongoDB:", err)
	}
	defer database.Close()

	redisClient := database.NewRedisClient(cfg.RedisURL)

	// Repositories
	orderRepo := repository.NewMongoOrderRepository(database.DB)
	userRepo := repository.NewMongoUserRepository(database.DB)
	idemStore := repository.NewRedisIdempotencyStore(redisClient, 7*24*time.Hour)
	settingsCache := repository.NewSettingsCache(redisClient, 5*time.Minute)

	indexCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := orderRepo.EnsureIndexes(indexCtx); err != nil {
		log.Fatal("[Storefront] ❌ Failed to create order indexes:", err)
	}
	if err := userRepo.EnsureIndexes(indexCtx); err != nil {
		log.Fatal("[Storefront] ❌ Failed to create user indexes:", err)
	}

	// External collaborators
	contentStore := sanity.NewClient(cfg.SanityProjectID, cfg.SanityDataset, cfg.SanityAPIVersion, cfg.SanityToken)
	stripeSvc := services.NewStripeService(cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.StripeUKShippingRateID, cfg.StripeIntlShipRateID)
	paypalSvc := services.NewPayPalService(cfg.PayPalClientID, cfg.PayPalClientSecret, cfg.PayPalBaseURL)

	sender, err := email.NewResendSender(cfg.ResendAPIKey, cfg.EmailFrom)
	if err != nil {
		log.Fatal("[Storefront] ❌ Failed to configure email sender:", err)
	}

	// Services
	tokenSvc := services.NewTokenService(cfg.JWTSecret)
	checkoutSvc := services.NewCheckoutService(contentStore, stripeSvc, settingsCache, zapLog)
	orderSvc := services.NewOrderService(orderRepo, idemStore, contentStore, sender, zapLog)
	authSvc := services.NewAuthService(userRepo, tokenSvc, sender, cfg.BaseURL, zapLog)
	reviewSvc := services.NewReviewService(contentStore, zapLog)

	// HTTP server
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(zapLog))

	routes.RegisterRoutes(r, routes.Controllers{
		Checkout: controllers.NewCheckoutController(checkoutSvc),
		PayPal:   controllers.NewPayPalController(paypalSvc, checkoutSvc, orderSvc, zapLog),
		Webhook:  controllers.NewWebhookController(stripeSvc, orderSvc, zapLog),
		Orders:   controllers.NewOrderController(orderSvc),
		Auth:     controllers.NewAuthController(authSvc),
		Reviews:  controllers.NewReviewController(reviewSvc),
	}, tokenSvc)

	log.Println("[Storefront] ✅ Running on port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("[Storefront] ❌ Server failed:", err)
	}
}
