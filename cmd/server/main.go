package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"topup-service/config"
	"topup-service/internal/api"
	"topup-service/internal/broker"
	"topup-service/internal/catalog"
	"topup-service/internal/integrations"
	"topup-service/internal/payment"
	"topup-service/internal/pricing"
	"topup-service/internal/redisclient"
	"topup-service/internal/service"
	"topup-service/internal/store"
	"topup-service/internal/util"
	"topup-service/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting topup service")

	tp, err := util.InitTracer("topup-service", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Redis connected")

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	serviceCatalog := catalog.Default()
	pricingEngine := pricing.NewEngine(pricing.DefaultTable())

	sheetsClient := integrations.NewSheetsClient(
		cfg.Sheets.WebhookURL,
		time.Duration(cfg.Sheets.TimeoutSeconds)*time.Second,
	)
	emailNotifier := integrations.NewEmailNotifier(
		cfg.Email.ResendAPIKey,
		cfg.Email.FromEmail,
		cfg.Email.OperatorTo,
	)
	linkBuilder := payment.NewLinkBuilder(cfg.Payment.UPIVPA, cfg.Payment.PayeeName)

	summaryTTL := time.Duration(cfg.Business.SummaryCacheTTLSeconds) * time.Second

	orderService := service.NewOrderService(
		db,
		serviceCatalog,
		pricingEngine,
		sheetsClient,
		emailNotifier,
		eventPublisher,
		redisClient,
		linkBuilder,
		time.Duration(cfg.Business.SideEffectTimeoutSeconds)*time.Second,
	)
	adminService := service.NewAdminService(db, redisClient, eventPublisher, summaryTTL)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	summaryConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder, cfg.Kafka.ConsumerGroup)
	summaryWorker := worker.NewSummaryWorker(summaryConsumer, db, redisClient, summaryTTL)
	go func() {
		if err := summaryWorker.Start(workerCtx); err != nil {
			log.Printf("Summary worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(orderService, adminService, serviceCatalog, pricingEngine)
	handler.SetupRoutes(router, cfg.CORS.AllowedOrigins)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	summaryWorker.Stop()

	log.Println("Server exited")
}
