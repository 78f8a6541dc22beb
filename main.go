package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"pos-backend/internal/auth"
	"pos-backend/internal/catalog"
	"pos-backend/internal/dashboard"
	"pos-backend/internal/notify"
	"pos-backend/internal/postgres"
	"pos-backend/internal/sales"
	"pos-backend/internal/telemetry"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serviceName := getEnv("SERVICE_NAME", "pos-backend")
	otlpEndpoint := getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318")

	tp, err := telemetry.InitTracer(ctx, serviceName, otlpEndpoint)
	if err != nil {
		logger.Fatal("failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Warn("error shutting down tracer", zap.Error(err))
		}
	}()

	mp, err := telemetry.InitMetrics(ctx, serviceName, otlpEndpoint)
	if err != nil {
		logger.Fatal("failed to initialize metrics", zap.Error(err))
	}
	defer func() {
		if err := mp.Shutdown(context.Background()); err != nil {
			logger.Warn("error shutting down meter", zap.Error(err))
		}
	}()

	pool, err := postgres.Connect(ctx, postgres.Config{
		Host:     getEnv("DATABASE_HOST", "localhost"),
		Port:     getEnv("DATABASE_PORT", "5432"),
		User:     getEnv("DATABASE_USER", "pos"),
		Password: getEnv("DATABASE_PASSWORD", "pos"),
		Name:     getEnv("DATABASE_NAME", "pos_db"),
	}, logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	saleMetrics, err := telemetry.NewSaleMetrics(otel.Meter(serviceName))
	if err != nil {
		logger.Fatal("failed to register sale metrics", zap.Error(err))
	}

	authUseCase := auth.NewAuthUseCase(
		auth.NewPostgresRepository(pool),
		logger,
		[]byte(getEnv("JWT_SECRET", "dev-secret-change-me")),
		24*time.Hour,
	)
	authHandler := auth.NewHandler(authUseCase, logger)

	catalogHandler := catalog.NewHandler(
		catalog.NewCatalogUseCase(catalog.NewPostgresRepository(pool), logger),
		logger,
	)

	processor := sales.NewSaleProcessor(
		sales.NewPostgresRepository(pool),
		logger,
		tp.Tracer(serviceName),
		saleMetrics,
	)
	notifier := notify.NewNotifier(getEnv("SALE_WEBHOOK_URL", ""), logger)
	salesHandler := sales.NewHandler(processor, notifier, logger)

	dashboardHandler := dashboard.NewHandler(
		dashboard.NewDashboardUseCase(dashboard.NewPostgresRepository(pool), logger),
		logger,
	)

	r := gin.Default()
	r.Use(otelgin.Middleware(serviceName))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": serviceName})
	})

	r.POST("/api/auth/register", authHandler.Register)
	r.POST("/api/auth/login", authHandler.Login)

	api := r.Group("/api", auth.Middleware(authUseCase))
	{
		api.POST("/products", catalogHandler.CreateProduct)
		api.GET("/products", catalogHandler.ListProducts)
		api.GET("/products/:id", catalogHandler.GetProduct)
		api.PUT("/products/:id", catalogHandler.UpdateProduct)
		api.DELETE("/products/:id", catalogHandler.DeleteProduct)

		api.POST("/sales", salesHandler.CreateSale)
		api.GET("/sales", salesHandler.ListSales)
		api.GET("/sales/:id", salesHandler.GetSale)

		api.GET("/dashboard", dashboardHandler.Summary)
	}

	port := getEnv("PORT", "8080")
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown incomplete", zap.Error(err))
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
