package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/dental-booking-platform/cmd/mainconfig"
	"github.com/wolfman30/dental-booking-platform/internal/api/router"
	"github.com/wolfman30/dental-booking-platform/internal/appointments"
	"github.com/wolfman30/dental-booking-platform/internal/auth"
	"github.com/wolfman30/dental-booking-platform/internal/availability"
	appconfig "github.com/wolfman30/dental-booking-platform/internal/config"
	"github.com/wolfman30/dental-booking-platform/internal/conversation"
	"github.com/wolfman30/dental-booking-platform/internal/dialogue"
	"github.com/wolfman30/dental-booking-platform/internal/http/handlers"
	"github.com/wolfman30/dental-booking-platform/internal/messaging"
	"github.com/wolfman30/dental-booking-platform/internal/notify"
	"github.com/wolfman30/dental-booking-platform/internal/observability/metrics"
	"github.com/wolfman30/dental-booking-platform/internal/users"
	"github.com/wolfman30/dental-booking-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting dental-booking-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Admin queries and the dialogue state store run over database/sql.
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open sql db", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	bookingMetrics := metrics.NewBookingMetrics(nil)

	// Booking pipeline.
	userRepo := users.NewPostgresRepository(pool)
	apptRepo := appointments.NewPostgresRepository(pool)
	var calendar appointments.SlotCalendar
	if cfg.BookingEnforceAvailability {
		calendar = availability.NewPostgresCalendar()
	}
	writer := appointments.NewWriter(apptRepo, calendar, logger)

	replies := dialogue.Replies{PracticeName: cfg.PracticeName}
	engine := dialogue.NewEngine(writer, userRepo, replies, logger)
	states := dialogue.NewPostgresStateStore(db)
	turns := conversation.NewService(userRepo, states, engine, bookingMetrics, logger)

	// Outbound and notification sides.
	whatsappSender := messaging.NewWhatsAppSender(
		cfg.WhatsAppToken,
		cfg.WhatsAppPhoneNumberID,
		cfg.WhatsAppAPIBaseURL,
		cfg.WhatsAppSendTimeout,
		logger,
	)

	var emailSender notify.EmailSender
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sg != nil {
		emailSender = sg
	}
	notifier := notify.NewService(emailSender, userRepo, cfg.BookingNotifyEmail, cfg.PracticeName, logger)

	var transcripts *conversation.TranscriptStore
	if cfg.RedisAddr != "" {
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		transcripts = conversation.NewTranscriptStore(redis.NewClient(opts))
		logger.Info("transcript store enabled", "addr", cfg.RedisAddr)
	}

	workerOpts := []conversation.WorkerOption{
		conversation.WithWorkerCount(cfg.WorkerCount),
		conversation.WithBookingNotifier(notifier),
		conversation.WithTranscriptStore(transcripts),
		conversation.WithMetrics(bookingMetrics),
	}

	// Turn queue: in-process channel for single-node deployments, SQS
	// otherwise.
	var (
		publisher *conversation.Publisher
		worker    *conversation.Worker
	)
	if cfg.UseMemoryQueue {
		queue := conversation.NewMemoryQueue(64)
		publisher = conversation.NewPublisher(queue, logger)
		worker = conversation.NewWorker(turns, queue, whatsappSender, logger, workerOpts...)
		logger.Info("using in-memory turn queue")
	} else {
		if cfg.TurnQueueURL == "" {
			logger.Error("TURN_QUEUE_URL is required unless USE_MEMORY_QUEUE=true")
			os.Exit(1)
		}
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		queue := conversation.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.TurnQueueURL)
		publisher = conversation.NewPublisher(queue, logger)
		worker = conversation.NewWorker(turns, queue, whatsappSender, logger, workerOpts...)
	}

	// HTTP surface.
	webhookHandler := messaging.NewHandler(cfg.WhatsAppVerifyToken, cfg.WhatsAppAppSecret, publisher, bookingMetrics, logger)
	authService := auth.NewService(db, cfg.AdminJWTSecret, cfg.AdminJWTTTL, logger)

	r := router.New(&router.Config{
		Logger:               logger,
		WebhookHandler:       webhookHandler,
		AuthHandler:          handlers.NewAuthHandler(authService, logger),
		AdminAppointments:    handlers.NewAdminAppointmentsHandler(db, logger),
		AdminUsers:           handlers.NewAdminUsersHandler(db, logger),
		AdminTimeSlots:       handlers.NewAdminTimeSlotsHandler(db, logger),
		AdminStats:           handlers.NewAdminStatsHandler(db, logger),
		AdminConversations:   handlers.NewAdminConversationsHandler(transcripts, logger),
		AdminAuthSecret:      cfg.AdminJWTSecret,
		MetricsHandler:       promhttp.Handler(),
		CORSAllowedOrigins:   cfg.CORSAllowedOrigins,
		WebhookRatePerSecond: cfg.WebhookRatePerSecond,
		WebhookBurst:         cfg.WebhookBurst,
	})

	worker.Start(ctx)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	cancel()
	worker.Wait()

	logger.Info("server stopped")
}
