package main

import (
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mahyudindev/e-commerce-sowryzel/controllers"
	"github.com/mahyudindev/e-commerce-sowryzel/database"
	"github.com/mahyudindev/e-commerce-sowryzel/kafka"
	"github.com/mahyudindev/e-commerce-sowryzel/logger"
	"github.com/mahyudindev/e-commerce-sowryzel/middleware"
	"github.com/mahyudindev/e-commerce-sowryzel/models"
	"github.com/mahyudindev/e-commerce-sowryzel/repository"
	"github.com/mahyudindev/e-commerce-sowryzel/routes"
	"github.com/mahyudindev/e-commerce-sowryzel/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zapLogger := logger.Initialize(cfg.Env)
	defer zapLogger.Sync()

	if err := database.Connect(cfg.DSN()); err != nil {
		zapLogger.Fatal("database connection failed", zap.Error(err))
	}
	if err := database.DB.AutoMigrate(
		&models.Customer{},
		&models.Product{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderLine{},
		&models.PaymentAttempt{},
		&models.Review{},
	); err != nil {
		zapLogger.Fatal("migration failed", zap.Error(err))
	}

	var producer *kafka.Producer
	if cfg.KafkaBrokers != "" {
		producer = kafka.NewProducer(strings.Split(cfg.KafkaBrokers, ","), cfg.OrderEventsTopic, zapLogger)
		defer producer.Close()
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer redisClient.Close()
	}

	gateway := services.NewMidtransGateway(cfg.MidtransServerKey, cfg.MidtransProduction)

	orderRepo := repository.NewGormOrderRepository(database.DB)
	productRepo := repository.NewGormProductRepository(database.DB)
	cartRepo := repository.NewGormCartRepository(database.DB)
	customerRepo := repository.NewGormCustomerRepository(database.DB)
	attemptRepo := repository.NewGormAttemptRepository(database.DB)
	reviewRepo := repository.NewGormReviewRepository(database.DB)

	finishURL := cfg.AppBaseURL + "/payments/finish"
	var publisher services.OrderEventPublisher
	if producer != nil {
		publisher = producer
	}
	orderService := services.NewOrderService(
		database.DB,
		orderRepo,
		productRepo,
		cartRepo,
		customerRepo,
		attemptRepo,
		gateway,
		publisher,
		finishURL,
		zapLogger,
	)
	productService := services.NewProductService(productRepo, zapLogger)
	reviewService := services.NewReviewService(reviewRepo, orderRepo, customerRepo, zapLogger)
	shippingService := services.NewRajaOngkirService(
		cfg.RajaOngkirAPIKey,
		cfg.RajaOngkirBaseURL,
		cfg.RajaOngkirOriginCityID,
		redisClient,
		zapLogger,
	)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(zapLogger), gin.Recovery())

	routes.Register(r, routes.Controllers{
		Orders:     controllers.NewOrderController(orderService),
		AdminOrder: controllers.NewAdminOrderController(orderService),
		Webhooks:   controllers.NewWebhookController(orderService, gateway, cfg.FrontendURL, zapLogger),
		Shipping:   controllers.NewShippingController(shippingService),
		Products:   controllers.NewProductController(productService),
		Reviews:    controllers.NewReviewController(reviewService),
	})

	zapLogger.Info("server starting", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		zapLogger.Fatal("server exited", zap.Error(err))
	}
}
