package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xavierca1/presale-funnel/internal/config"
	"github.com/xavierca1/presale-funnel/internal/infra/cache"
	"github.com/xavierca1/presale-funnel/internal/infra/database"
	"github.com/xavierca1/presale-funnel/internal/infra/http/handlers"
	"github.com/xavierca1/presale-funnel/internal/infra/http/middleware"
	"github.com/xavierca1/presale-funnel/internal/infra/integration/gcal"
	"github.com/xavierca1/presale-funnel/internal/infra/integration/kommo"
	"github.com/xavierca1/presale-funnel/internal/infra/integration/webhook"
	"github.com/xavierca1/presale-funnel/internal/infra/mail"
	"github.com/xavierca1/presale-funnel/internal/infra/queue"
	"github.com/xavierca1/presale-funnel/internal/scheduling"
	"github.com/xavierca1/presale-funnel/internal/usecase"
)

const (
	dedupTTL        = 24 * time.Hour
	shutdownTimeout = 15 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the lead API, the forward worker and the site",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the lead store schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		db, err := database.NewDBConnection(cfg.DatabaseDriver, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := database.Migrate(cmd.Context(), db); err != nil {
			return err
		}
		logger.Info("schema applied", zap.String("driver", cfg.DatabaseDriver))
		return nil
	},
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDBConnection(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		return err
	}
	leadRepo := database.NewLeadRepository(db)

	// Redis and RabbitMQ are optional: without them leads go straight to the webhook.
	var rdb *redis.Client
	var dedup queue.Deduper
	if cfg.RedisAddr != "" {
		rdb, err = cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			logger.Warn("redis unavailable, forwarding without dedup", zap.Error(err))
			rdb = nil
		} else {
			defer rdb.Close()
			dedup = cache.NewForwardDedup(rdb, dedupTTL)
		}
	}

	var targets []queue.Target
	var webhookClient *webhook.Client
	if cfg.LeadWebhookURL != "" {
		webhookClient = webhook.NewClient(cfg.LeadWebhookURL, logger.Named("webhook"))
		targets = append(targets, queue.Target{Name: "webhook", Deliverer: webhookClient})
	}
	if cfg.KommoEnabled() {
		crm := kommo.NewClient(cfg.Kommo.BaseURL, cfg.Kommo.APIToken, cfg.Kommo.StatusID, logger.Named("kommo"))
		targets = append(targets, queue.Target{Name: "kommo", Deliverer: crm})
	}

	var forwarder usecase.LeadForwarder
	var rabbit *queue.RabbitMQ
	if cfg.RabbitMQURL != "" {
		rabbit, err = queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			return err
		}
		defer rabbit.Close()
		forwarder = queue.NewProducer(rabbit.Ch)

		worker := queue.NewWorker(rabbit.Ch, dedup, logger.Named("worker"), targets...)
		go func() {
			if err := worker.Start(ctx, queue.QueueName); err != nil {
				logger.Error("forward worker stopped", zap.Error(err))
			}
		}()
	} else if webhookClient != nil {
		forwarder = webhookClient
	} else {
		logger.Warn("no forward target configured, leads are stored only")
	}

	var emailService usecase.EmailService
	if cfg.MailEnabled() {
		sender := mail.NewEmailSender(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.User, cfg.Mail.Password, cfg.Mail.From)
		sender.OperatorAddr = cfg.Mail.OperatorAddr
		sender.ProjectName = cfg.Mail.ProjectName
		sender.ScheduleURL = cfg.Schedule.URL
		emailService = sender
	}

	var calendar handlers.EventCreator
	if cfg.CalendarEnabled() {
		client, err := gcal.NewClient(gcal.Config{
			ClientEmail:   cfg.Calendar.ClientEmail,
			PrivateKeyPEM: cfg.Calendar.PrivateKey,
			CalendarID:    cfg.Calendar.CalendarID,
			TokenURI:      cfg.Calendar.TokenURI,
		}, logger.Named("gcal"))
		if err != nil {
			return fmt.Errorf("calendar client: %w", err)
		}
		calendar = client
	}

	captureUC := usecase.NewCaptureLeadUseCase(leadRepo, forwarder, emailService, cfg.ForwardSourceTag, logger.Named("capture"))
	markPaidUC := usecase.NewMarkLeadPaidUseCase(leadRepo, forwarder, cfg.ForwardSourceTag, logger.Named("payments"))
	captureUC.Metrics = middleware.LeadMetrics{}
	markPaidUC.Metrics = middleware.LeadMetrics{}
	statusUC := usecase.NewUpdateLeadStatusUseCase(leadRepo, logger.Named("admin"))
	queryUC := usecase.NewQueryLeadsUseCase(leadRepo)

	leadHandler := handlers.NewLeadHandler(captureUC, logger)
	defer leadHandler.Close()

	widget := newWidget(cfg.Schedule)
	rabbitConn := rabbit.Connection()
	rt := routes{
		Leads:          leadHandler,
		Admin:          handlers.NewAdminHandler(queryUC, statusUC, logger),
		Payments:       handlers.NewPaymentWebhookHandler(markPaidUC, cfg.PaymentWebhookSecret, logger),
		Health:         handlers.NewHealthHandler(db, rabbitConn, rdb, version),
		Calendar:       handlers.NewCalendarHandler(calendar, logger),
		Scheduling:     handlers.NewSchedulingHandler(widget),
		AdminSecret:    cfg.AdminJWTSecret,
		AllowedOrigins: cfg.AllowedOrigins,
	}
	if cfg.SiteDir != "" {
		var popup *scheduling.Widget
		if cfg.Schedule.URL != "" {
			popup = &widget
		}
		rt.Pages = handlers.NewPageHandler(os.DirFS(cfg.SiteDir), scheduling.DefaultAssetLoader(), popup, logger.Named("pages"))
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           newRouter(rt),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.HTTPAddr), zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	captureUC.Wait()
	markPaidUC.Wait()
	return nil
}

func newWidget(cfg config.SchedulingConfig) scheduling.Widget {
	return scheduling.NewWidget(cfg.URL, scheduling.Theme{
		BackgroundColor: cfg.BackgroundColor,
		TextColor:       cfg.TextColor,
		PrimaryColor:    cfg.PrimaryColor,
	})
}
