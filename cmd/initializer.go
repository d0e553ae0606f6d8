package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"khidmaBack/internal/cache"
	"khidmaBack/internal/config"
	"khidmaBack/internal/events"
	"khidmaBack/internal/handlers"
	"khidmaBack/internal/metrics"
	"khidmaBack/internal/notify"
	"khidmaBack/internal/pay"
	"khidmaBack/internal/repositories"
	"khidmaBack/internal/services"
	"khidmaBack/internal/storage"
	"khidmaBack/internal/validation"
	"khidmaBack/internal/ws"
	"khidmaBack/utils"
)

type application struct {
	logger   *logrus.Logger
	db       *sqlx.DB
	redis    *redis.Client
	metrics  *metrics.Metrics
	registry *prometheus.Registry
	hub      *ws.Hub
	events   events.Publisher
	notifier *services.NotificationService
	localDir string

	userService   *services.UserService
	orderService  *services.OrderService
	payoutService *services.PayoutService
	sessionRepo   *repositories.SessionRepository
	uploadsURL    string

	categoryHandler *handlers.CategoryHandler
	userHandler     *handlers.UserHandler
	serviceHandler  *handlers.ServiceHandler
	orderHandler    *handlers.OrderHandler
	reviewHandler   *handlers.ReviewHandler
	disputeHandler  *handlers.DisputeHandler
	payoutHandler   *handlers.PayoutHandler
	reportHandler   *handlers.ReportHandler
}

func initializeApp(ctx context.Context, cfg config.Config, db *sqlx.DB, logger *logrus.Logger) (*application, error) {
	component := func(name string) *logrus.Entry { return logger.WithField("component", name) }

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	tokens, err := utils.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("token manager: %w", err)
	}

	// Optional infrastructure falls back to no-op implementations.
	var (
		rdb       *redis.Client
		store     cache.Cache      = cache.Noop{}
		publisher events.Publisher = events.Noop{}
		pusher    notify.Pusher    = notify.NoopPusher{}
		mailer    notify.Mailer    = notify.NoopMailer{}
		uploader  storage.Uploader
		localDir  string
	)
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		store = cache.NewRedisCache(rdb, "khidma:")
	}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	}
	if cfg.FCM.CredentialsFile != "" {
		fcm, err := notify.NewFCMPusher(ctx, cfg.FCM.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("fcm: %w", err)
		}
		pusher = fcm
	}
	if cfg.SMTP.Host != "" {
		mailer = notify.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From, cfg.SMTP.FromName)
	}
	switch cfg.Storage.Driver {
	case "s3":
		s3, err := storage.NewS3Uploader(storage.S3Config{
			Endpoint:  cfg.Storage.Endpoint,
			Region:    cfg.Storage.Region,
			Bucket:    cfg.Storage.Bucket,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			PublicURL: cfg.Storage.PublicURL,
		})
		if err != nil {
			return nil, fmt.Errorf("s3: %w", err)
		}
		uploader = s3
	default:
		uploader = &storage.LocalUploader{Dir: cfg.Storage.LocalDir, BaseURL: cfg.Server.UploadsURL}
		localDir = cfg.Storage.LocalDir
	}

	hub := ws.NewHub(component("ws"), m, cfg.Server.AllowedOrigins)
	payments := pay.NewClient(&http.Client{Timeout: 20 * time.Second}, cfg.Payments.BaseURL, cfg.Payments.APIKey, cfg.Payments.WebhookSecret)

	// Repositories
	userRepo := &repositories.UserRepository{DB: db}
	sessionRepo := &repositories.SessionRepository{DB: db}
	deviceRepo := &repositories.DeviceTokenRepository{DB: db}
	categoryRepo := &repositories.CategoryRepository{DB: db}
	serviceRepo := &repositories.ServiceRepository{DB: db}
	orderRepo := &repositories.OrderRepository{DB: db}
	webhookRepo := &repositories.WebhookRepository{DB: db}
	reviewRepo := &repositories.ReviewRepository{DB: db}
	disputeRepo := &repositories.DisputeRepository{DB: db}
	refundRepo := &repositories.RefundRepository{DB: db}
	payoutRepo := &repositories.PayoutRepository{DB: db}
	reportRepo := &repositories.ReportRepository{DB: db}

	// Services
	notifier := &services.NotificationService{
		Publisher: publisher,
		Hub:       hub,
		Pusher:    pusher,
		Mailer:    mailer,
		Users:     userRepo,
		Tokens:    deviceRepo,
		Logger:    component("notify"),
		Metrics:   m,
		AppURL:    cfg.Server.AppURL,
	}
	userService := &services.UserService{
		UserRepo:     userRepo,
		SessionRepo:  sessionRepo,
		DeviceRepo:   deviceRepo,
		TokenManager: tokens,
		RefreshTTL:   cfg.JWT.RefreshTTL,
	}
	categoryService := &services.CategoryService{CategoryRepo: categoryRepo, Cache: store, Logger: component("categories")}
	serviceService := &services.ServiceService{
		ServiceRepo:  serviceRepo,
		CategoryRepo: categoryRepo,
		Uploader:     uploader,
		Notifier:     notifier,
		Logger:       component("services"),
	}
	refundService := &services.RefundService{RefundRepo: refundRepo, Payments: payments, Metrics: m, Logger: component("refunds")}
	disputeService := &services.DisputeService{
		DisputeRepo: disputeRepo,
		OrderRepo:   orderRepo,
		Refunds:     refundService,
		Notifier:    notifier,
		Metrics:     m,
		Logger:      component("disputes"),
	}
	orderService := &services.OrderService{
		OrderRepo:         orderRepo,
		ServiceRepo:       serviceRepo,
		WebhookRepo:       webhookRepo,
		Payments:          payments,
		Refunds:           refundService,
		Disputes:          disputeService,
		Notifier:          notifier,
		Metrics:           m,
		Logger:            component("orders"),
		Currency:          cfg.Payments.Currency,
		CommissionPercent: cfg.Payments.CommissionPercent,
		WebhookSecret:     cfg.Payments.WebhookSecret,
	}
	reviewService := &services.ReviewService{ReviewRepo: reviewRepo, OrderRepo: orderRepo, Notifier: notifier}
	payoutService := &services.PayoutService{
		PayoutRepo: payoutRepo,
		Payments:   payments,
		Notifier:   notifier,
		Metrics:    m,
		Logger:     component("payouts"),
		Currency:   cfg.Payments.Currency,
		Minimum:    cfg.Payments.PayoutMinimum,
	}
	reportService := &services.ReportService{ReportRepo: reportRepo, Cache: store, Logger: component("reports"), Currency: cfg.Payments.Currency}

	// Handlers
	responder := handlers.Responder{Logger: component("http"), Validator: validation.New()}

	return &application{
		logger:   logger,
		db:       db,
		redis:    rdb,
		metrics:  m,
		registry: registry,
		hub:      hub,
		events:   publisher,
		notifier: notifier,
		localDir: localDir,

		userService:   userService,
		orderService:  orderService,
		payoutService: payoutService,
		sessionRepo:   sessionRepo,
		uploadsURL:    cfg.Server.UploadsURL,

		categoryHandler: &handlers.CategoryHandler{Responder: responder, Service: categoryService},
		userHandler:     &handlers.UserHandler{Responder: responder, Service: userService},
		serviceHandler:  &handlers.ServiceHandler{Responder: responder, Service: serviceService},
		orderHandler:    &handlers.OrderHandler{Responder: responder, Service: orderService},
		reviewHandler:   &handlers.ReviewHandler{Responder: responder, Service: reviewService},
		disputeHandler:  &handlers.DisputeHandler{Responder: responder, Service: disputeService},
		payoutHandler:   &handlers.PayoutHandler{Responder: responder, Service: payoutService, Refunds: refundService},
		reportHandler:   &handlers.ReportHandler{Responder: responder, Service: reportService},
	}, nil
}

// close releases the connections opened by initializeApp.
func (app *application) close() {
	if err := app.events.Close(); err != nil {
		app.logger.Errorf("close event publisher: %v", err)
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Errorf("close redis: %v", err)
		}
	}
}
