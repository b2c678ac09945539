package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/labops-platform/routine-service/internal/api/handlers"
	"github.com/labops-platform/routine-service/internal/application"
	"github.com/labops-platform/routine-service/internal/domain"
	mongoRepo "github.com/labops-platform/routine-service/internal/infrastructure/mongodb"
	"github.com/labops-platform/routine-service/pkg/kafka"
	"github.com/labops-platform/routine-service/pkg/labevents"
	"github.com/labops-platform/routine-service/pkg/logging"
	"github.com/labops-platform/routine-service/pkg/metrics"
	"github.com/labops-platform/routine-service/pkg/middleware"
	"github.com/labops-platform/routine-service/pkg/mongodb"
)

const serviceName = "routine-service"

func main() {
	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting routine-service API")

	config := loadConfig()
	ctx := context.Background()

	// Initialize Prometheus metrics
	metricsConfig := metrics.DefaultConfig(serviceName)
	m := metrics.New(metricsConfig)
	logger.Info("Metrics initialized")

	// Initialize MongoDB behind a circuit breaker
	mongoClient, err := mongodb.NewClient(ctx, config.MongoDB)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	protectedMongo := mongodb.NewCircuitBreakerClient(mongoClient, m, logger)
	defer protectedMongo.Close(ctx)
	logger.Info("Connected to MongoDB", "database", config.MongoDB.Database)

	// Initialize Kafka producer with instrumentation
	kafkaProducer := kafka.NewProducer(config.Kafka)
	instrumentedProducer := kafka.NewInstrumentedProducer(kafkaProducer, m, logger)
	defer instrumentedProducer.Close()
	logger.Info("Kafka producer initialized", "brokers", config.Kafka.Brokers)

	// Initialize event factory
	eventFactory := labevents.NewEventFactory("/" + serviceName)

	// Initialize repositories behind the protected client so transactions
	// go through the circuit breaker
	routineRepo := mongoRepo.NewRoutineRepository(protectedMongo)
	executionRepo := mongoRepo.NewExecutionRepository(protectedMongo, logger)
	productRepo := mongoRepo.NewProductRepository(protectedMongo)
	reservationRepo := mongoRepo.NewReservationRepository(protectedMongo)

	// Initialize application services
	routineService := application.NewRoutineApplicationService(routineRepo, executionRepo, instrumentedProducer, eventFactory, logger)
	availabilityService := application.NewAvailabilityService(routineRepo, productRepo, reservationRepo, m, logger)
	executionService := application.NewExecutionApplicationService(routineRepo, executionRepo, instrumentedProducer, eventFactory, m, logger)
	reservationService := application.NewReservationApplicationService(reservationRepo, config.ConflictPolicy, instrumentedProducer, eventFactory, m, logger)
	productService := application.NewProductApplicationService(productRepo, logger)

	// Setup Gin router with middleware
	router := gin.New()

	middlewareConfig := middleware.DefaultConfig(serviceName, logger.Logger)
	middleware.Setup(router, middlewareConfig)

	router.Use(middleware.MetricsMiddleware(m))

	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	// Health check endpoints
	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		return protectedMongo.HealthCheck(ctx)
	}))

	// Metrics endpoint
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	// API v1 routes
	apiV1 := router.Group("/api/v1")

	handlers.NewRoutineHandlers(routineService, availabilityService, config.UpcomingHorizonDays, logger).RegisterRoutes(apiV1)
	handlers.NewExecutionHandlers(executionService, logger).RegisterRoutes(apiV1)
	handlers.NewReservationHandlers(reservationService, logger).RegisterRoutes(apiV1)
	handlers.NewProductHandlers(productService, logger).RegisterRoutes(apiV1)

	// Start server
	srv := &http.Server{
		Addr:         config.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server error", "error", err)
		}
	}()
	logger.Info("Server started", "addr", config.ServerAddr)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server stopped")
}

// Config holds application configuration
type Config struct {
	ServerAddr          string
	MongoDB             *mongodb.Config
	Kafka               *kafka.Config
	ConflictPolicy      domain.ConflictPolicy
	UpcomingHorizonDays int
}

func loadConfig() *Config {
	mongoConfig := mongodb.DefaultConfig()
	mongoConfig.URI = getEnv("MONGODB_URI", mongoConfig.URI)
	mongoConfig.Database = getEnv("MONGODB_DATABASE", mongoConfig.Database)

	kafkaConfig := kafka.DefaultConfig(serviceName)
	kafkaConfig.Brokers = strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ",")

	horizonDays := 7
	if parsed, err := strconv.Atoi(getEnv("UPCOMING_HORIZON_DAYS", "7")); err == nil && parsed > 0 {
		horizonDays = parsed
	}

	return &Config{
		ServerAddr:          getEnv("SERVER_ADDR", ":8080"),
		MongoDB:             mongoConfig,
		Kafka:               kafkaConfig,
		ConflictPolicy:      domain.ConflictPolicy(getEnv("EQUIPMENT_CONFLICT_POLICY", string(domain.PolicyAdvisory))),
		UpcomingHorizonDays: horizonDays,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
