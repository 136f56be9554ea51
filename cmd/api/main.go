// cmd/api/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/domain/inventory"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/infrastructure/database/postgres"
	"github.com/your-org/storefront-backend/internal/infrastructure/database/redis"
	"github.com/your-org/storefront-backend/internal/interfaces/http"
	"github.com/your-org/storefront-backend/internal/interfaces/http/routes"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
	"github.com/your-org/storefront-backend/internal/pkg/logger"
	"github.com/your-org/storefront-backend/internal/pkg/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logr := logger.New(cfg.Logging)
	logr.Infof("🚀 Starting %s v%s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Environment)

	m := metrics.New()

	// Connect to database
	db, err := postgres.NewConnection(cfg, logr)
	if err != nil {
		logr.WithError(err).Fatal("Failed to connect to database")
	}
	defer postgres.Close(db)

	// Connect to Redis
	redisClient, err := redis.NewConnection(cfg, logr)
	if err != nil {
		logr.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redisClient.Close()

	// Run database migrations
	migration := postgres.NewMigration(db, logr)

	if err := migration.RunAutoMigrations(); err != nil {
		logr.WithError(err).Fatal("Database migration failed")
	}

	if err := migration.CreateIndexes(); err != nil {
		logr.WithError(err).Warn("Index creation failed")
	}

	if err := migration.ProtectLedger(); err != nil {
		logr.WithError(err).Fatal("Failed to protect stock ledger")
	}

	// Seed initial data in development
	if cfg.IsDevelopment() {
		if err := migration.SeedInitialData(); err != nil {
			logr.WithError(err).Warn("Data seeding failed")
		}
		_ = migration.GetTableInfo()
	}

	// Repositories and services
	tx := postgres.NewTxManager(db)
	productRepo := postgres.NewProductRepository(db)
	categoryRepo := postgres.NewCategoryRepository(db)
	reviewRepo := postgres.NewReviewRepository(db)
	inventoryRepo := postgres.NewInventoryRepository(db)
	couponRepo := postgres.NewCouponRepository(db)
	orderRepo := postgres.NewOrderRepository(db)

	productService := product.NewService(productRepo, categoryRepo, tx, logr)
	categoryService := product.NewCategoryService(categoryRepo, productRepo, tx, logr)
	reviewService := product.NewReviewService(reviewRepo, productRepo, tx, logr)
	inventoryService := inventory.NewService(productRepo, categoryRepo, inventoryRepo, tx, logr, m)
	couponService := coupon.NewService(couponRepo, tx, redisClient, cfg.Commerce, logr, m)
	cartService := cart.NewService(productRepo, redisClient, cfg.Commerce, logr)
	orderService := order.NewService(orderRepo, productRepo, inventoryService, couponService, tx, cfg.Commerce, logr, m)
	paymentService := payment.NewService(payment.NewRazorpayClient(cfg.Payment), orderService, logr)

	handlers := routes.NewHandlers(routes.Services{
		Products:   productService,
		Categories: categoryService,
		Reviews:    reviewService,
		Inventory:  inventoryService,
		Cart:       cartService,
		Coupons:    couponService,
		Orders:     orderService,
		Payments:   paymentService,
	}, cfg, logr)

	server := http.NewServer(http.Dependencies{
		Config:   cfg,
		Logger:   logr,
		Metrics:  m,
		JWT:      auth.NewJWTManager(cfg),
		Limiter:  redisClient,
		Handlers: handlers,
		Checks: map[string]http.HealthCheck{
			"database": func(ctx context.Context) error { return postgres.Health(ctx, db) },
			"redis":    redisClient.Health,
		},
	})

	logr.Info("✅ All systems operational!")

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			logr.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logr.Info("👋 Shutting down gracefully...")

	// Give server 30 seconds to shutdown gracefully
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		logr.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}

	logr.Info("✅ Server shutdown completed")
}
