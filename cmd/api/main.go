package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/aarnav1729/premier-support-hub/internal/api/http"
	"github.com/aarnav1729/premier-support-hub/internal/api/http/handlers"
	"github.com/aarnav1729/premier-support-hub/internal/api/validation"
	"github.com/aarnav1729/premier-support-hub/internal/auth"
	"github.com/aarnav1729/premier-support-hub/internal/config"
	"github.com/aarnav1729/premier-support-hub/internal/domain"
	"github.com/aarnav1729/premier-support-hub/internal/events"
	"github.com/aarnav1729/premier-support-hub/internal/lifecycle"
	"github.com/aarnav1729/premier-support-hub/internal/mail"
	"github.com/aarnav1729/premier-support-hub/internal/numbering"
	"github.com/aarnav1729/premier-support-hub/internal/observability"
	"github.com/aarnav1729/premier-support-hub/internal/persistence"
	"github.com/aarnav1729/premier-support-hub/internal/repository"
	"github.com/aarnav1729/premier-support-hub/internal/service"
	"github.com/aarnav1729/premier-support-hub/internal/worker"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	numbers := numbering.NewCounterAllocator(cfg.App.Location(), map[string]string{
		domain.KindMEP.Prefix(): "mep",
		domain.KindVR.Prefix():  "vr",
	})
	mepRepo := repository.NewMEPRepository(pool, numbers)
	vrRepo := repository.NewVRRepository(pool, numbers)
	historyRepo := repository.NewTicketHistoryRepository(pool)
	chatRepo := repository.NewChatMessageRepository(pool)
	employeeRepo := repository.NewEmployeeRepository(pool)
	analyticsRepo := repository.NewAnalyticsRepository(pool)

	machine := lifecycle.NewMachine(cfg.Routing.TransportMailbox)

	mailer, err := newMailer(cfg.Mail, logger)
	if err != nil {
		logger.Fatal("failed to init mailer", zap.Error(err))
	}
	renderer, err := mail.NewRenderer()
	if err != nil {
		logger.Fatal("failed to parse mail templates", zap.Error(err))
	}

	dispatcher := events.NewAsyncDispatcher(logger, cfg.Notification.QueueSize, cfg.Notification.HandlerTimeout())
	notifications := service.NewNotificationService(service.NotificationDependencies{
		Dispatcher: dispatcher,
		Mailer:     mailer,
		Renderer:   renderer,
		PublicURL:  cfg.App.PublicURL,
		Logger:     logger,
	})
	notificationWorker := worker.StartNotificationWorker(dispatcher, notifications, cfg.Notification.Workers, logger)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		Store:      newOTPStore(cfg, redis, logger),
		Tokens:     tokens,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	assignment := service.NewAssignmentService(service.AssignmentDependencies{
		EmployeeRepo: employeeRepo,
		Router:       cfg.Routing,
		Machine:      machine,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		MEPRepo:     mepRepo,
		VRRepo:      vrRepo,
		HistoryRepo: historyRepo,
		Assignment:  assignment,
		Machine:     machine,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	chatService := service.NewChatService(service.ChatDependencies{
		MessageRepo: chatRepo,
		Tickets:     ticketService,
		HistoryRepo: historyRepo,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	employeeService := service.NewEmployeeService(employeeRepo)
	dashboardService := service.NewDashboardService(service.DashboardDependencies{
		MEPRepo:       mepRepo,
		VRRepo:        vrRepo,
		AnalyticsRepo: analyticsRepo,
	})

	validator := validation.New(cfg.Auth.AllowedEmailDomain)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    10 * 1024 * 1024,
		ReadTimeout:  cfg.App.RequestTimeout(),
		WriteTimeout: cfg.App.RequestTimeout(),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, metrics, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Auth:           handlers.NewAuthHandler(authService, validator, cfg.Auth.CookieSecure),
		Employees:      handlers.NewEmployeeHandler(employeeService),
		Tickets:        handlers.NewTicketsHandler(ticketService, validator),
		Chat:           handlers.NewChatHandler(chatService, validator),
		Dashboard:      handlers.NewDashboardHandler(dashboardService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, cfg.Routing),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	_ = notificationWorker.Stop(shutdownCtx)
}

func newMailer(cfg config.MailConfig, logger *zap.Logger) (mail.Mailer, error) {
	if cfg.Driver != "smtp" {
		logger.Info("mail driver: log")
		return mail.NewLogMailer(logger), nil
	}
	logger.Info("mail driver: smtp", zap.String("host", cfg.SMTPHost), zap.Int("port", cfg.SMTPPort))
	return mail.NewSMTPMailer(mail.SMTPConfig{
		Host:        cfg.SMTPHost,
		Port:        cfg.SMTPPort,
		Username:    cfg.SMTPUsername,
		Password:    cfg.SMTPPassword,
		From:        cfg.From,
		ImplicitTLS: cfg.SMTPImplicitTLS,
	})
}

func newOTPStore(cfg *config.Config, redis *persistence.Redis, logger *zap.Logger) auth.OTPStore {
	if cfg.Auth.OTPStore == "redis" {
		logger.Info("otp store: redis")
		return auth.NewRedisOTPStore(redis.Client, cfg.App.Name+":")
	}
	logger.Info("otp store: memory")
	return auth.NewMemoryOTPStore()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
