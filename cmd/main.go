package main

import (
	"context"

	"billing-backend/config"
	"billing-backend/middleware"
	"billing-backend/utils"

	// Repositories
	invoice_repositories "billing-backend/invoices/repositories"
	rate_repositories "billing-backend/rates/repositories"
	recurring_repositories "billing-backend/recurring/repositories"

	// Services
	invoice_services "billing-backend/invoices/services"
	notification_services "billing-backend/notifications/services"
	rate_services "billing-backend/rates/services"
	recurring_services "billing-backend/recurring/services"

	// Routes
	invoice_routes "billing-backend/invoices/routes"
	rate_routes "billing-backend/rates/routes"
	recurring_routes "billing-backend/recurring/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Initialize Zap logger
	config.InitLogger()

	// Load environment variables
	if err := godotenv.Load(".env"); err != nil {
		config.Logger.Warn("No .env file loaded", zap.Error(err))
	}

	app := fiber.New()

	// Apply CORS middleware from middleware package
	middleware.InitCors(app)

	// Initialize database and configs
	db := config.ConfigureDatabase()
	port := config.GetEnv("PORT")
	if port == "" {
		port = "8080"
	}
	ctx := context.Background()

	// Redis backs both the scheduler claim lease and the asynq mail queue.
	redisAddr := config.GetEnv("REDIS_ADDRESS")
	if redisAddr == "" {
		redisAddr = "localhost:6379" // Default for development
		config.Logger.Warn("REDIS_ADDRESS not set, using default: localhost:6379")
	}

	redisClient := config.InitRedisServer(ctx)

	asynqRedisOpt := asynq.RedisClientOpt{
		Addr:     redisAddr,
		Password: config.GetEnv("REDIS_PASSWORD"),
		DB:       0,
	}

	asynqClient := asynq.NewClient(asynqRedisOpt)
	defer asynqClient.Close()

	// Initialize the mailer
	utils.InitializeMailer()
	if utils.GetMailer() == nil {
		config.Logger.Fatal("Mailer not initialized")
	}

	// Repositories
	recurringRepo := recurring_repositories.NewRecurringInvoiceRepository(db, redisClient)
	invoiceRepo := invoice_repositories.NewInvoiceRepository(db)
	rateRepo := rate_repositories.NewExchangeRateRepository(db)

	// External rate provider is optional; without one only user-entered
	// rates resolve.
	var provider rate_services.Provider
	if apiKey := config.GetEnv("RATE_PROVIDER_API_KEY"); apiKey != "" {
		providerURL := config.GetEnv("RATE_PROVIDER_URL")
		if providerURL == "" {
			providerURL = "https://data.fixer.io/api"
		}
		provider = rate_services.NewProviderClient(providerURL, apiKey)
	}

	// Services
	rateService := rate_services.NewRateService(rateRepo, provider)
	propagator := invoice_services.NewExchangeRatePropagator(invoiceRepo)
	dispatcher := notification_services.NewInvoiceDispatcher(asynqClient)
	generator := recurring_services.NewInvoiceGenerator(invoiceRepo, rateService, invoiceRepo, dispatcher)
	scheduler := recurring_services.NewScheduler(recurringRepo, generator)

	// Routes
	recurring_routes.RecurringInitRoutes(app, recurringRepo, rateService, scheduler, db)
	invoice_routes.InvoiceInitRoutes(app, invoiceRepo, propagator)
	rate_routes.RateInitRoutes(app, rateRepo, propagator, db)

	// Background mail worker
	mailWorker := notification_services.NewMailWorker(invoiceRepo)
	go mailWorker.Run(asynqRedisOpt)

	// Recurring invoice scheduler
	go scheduler.StartScheduler(ctx, config.GetEnv("SCHEDULER_CRON"))

	// Start the application
	config.Logger.Info("Server starting", zap.String("port", port))
	config.Logger.Fatal("Server failed", zap.String("port", port), zap.Error(app.Listen(":"+port)))
}
