package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/workdora/waitlist/internal/config"
	"github.com/workdora/waitlist/internal/infra/database"
	"github.com/workdora/waitlist/internal/infra/http/handlers"
	"github.com/workdora/waitlist/internal/infra/http/middleware"
	"github.com/workdora/waitlist/internal/infra/integration/kommo"
	"github.com/workdora/waitlist/internal/infra/integration/whatsapp"
	"github.com/workdora/waitlist/internal/infra/mail"
	"github.com/workdora/waitlist/internal/infra/queue"
	"github.com/workdora/waitlist/internal/infra/worker"
	"github.com/workdora/waitlist/internal/logging"
	"github.com/workdora/waitlist/internal/usecase"
)

func main() {
	cfg, dotenvFound, err := config.LoadAPI()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()
	if !dotenvFound {
		logger.Info("no .env file found, using process environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(ctx, db, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		logger.Fatal("failed to connect to rabbitmq", zap.Error(err))
	}
	defer rabbitMQ.Close()

	// 1. Repositories and adapters
	leadRepo := database.NewLeadRepository(db)
	producer := queue.NewProducer(rabbitMQ.Ch)
	mailSender := mail.NewEmailSender(
		cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.User, cfg.Mail.Password,
		cfg.Mail.From, cfg.Mail.ProductName,
	)
	whatsappClient := whatsapp.NewClient(cfg.WhatsApp.BaseURL, cfg.WhatsApp.AccessToken, cfg.WhatsApp.PhoneID, logger.Named("whatsapp"))
	whatsappSender := mail.NewWhatsAppSender(whatsappClient, logger.Named("whatsapp"))
	crmClient := kommo.NewClient(cfg.Kommo.BaseURL, cfg.Kommo.APIToken, cfg.Kommo.StatusID, logger.Named("kommo"))
	if !crmClient.Configured() {
		logger.Info("kommo not configured, design partners will not be pushed to the crm")
	}

	// 2. Use cases
	joinUC := usecase.NewJoinWaitlistUseCase(leadRepo, producer, logger.Named("join"))
	referralUC := usecase.NewReferralStatsUseCase(leadRepo)
	processLeadUC := usecase.NewProcessLeadUseCase(leadRepo, mailSender, whatsappSender, crmClient, cfg.SiteURL, logger.Named("process_lead"))
	processLeadUC.ReportError = middleware.RecordIntegrationError
	remindersUC := usecase.NewSendRemindersUseCase(leadRepo, mailSender, cfg.SiteURL, cfg.ReminderDelay, logger.Named("reminders"))

	// 3. Workers
	consumerCh, err := rabbitMQ.Conn.Channel()
	if err != nil {
		logger.Fatal("failed to open consumer channel", zap.Error(err))
	}
	leadWorker := queue.NewWorker(consumerCh, processLeadUC, logger.Named("lead_worker"))
	go func() {
		if err := leadWorker.Start(ctx, queue.QueueName); err != nil {
			logger.Error("lead worker stopped", zap.Error(err))
		}
	}()
	go worker.NewReferralReminderWorker(remindersUC, cfg.ReminderInterval, logger.Named("reminder_worker")).Start(ctx)

	// 4. Handlers
	limiter := handlers.NewRateLimiter(ctx, cfg.RateLimit, cfg.RateLimitWindow)
	leadHandler := handlers.NewLeadHandler(joinUC, referralUC, limiter, logger.Named("http"))
	healthHandler := handlers.NewHealthHandler(cfg.Version,
		handlers.Check{Name: "database", Probe: leadRepo.Ping},
		handlers.Check{Name: "rabbitmq", Probe: rabbitMQ.Check},
	)

	// 5. Router
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "HEAD", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Handle("/metrics", promhttp.Handler())
	r.Route("/api", func(r chi.Router) {
		r.Post("/waitlist", leadHandler.JoinWaitlist)
		r.Get("/referrals/{code}", leadHandler.ReferralStats)
		r.Get("/health", healthHandler.Handle)
		r.Head("/health", healthHandler.Handle)
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	go func() {
		logger.Info("api listening", zap.String("addr", srv.Addr), zap.String("version", cfg.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		os.Exit(1)
	}
}
