package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	natsio "github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gb112302/agriconnect/internal/adapter/email"
	mongoadapter "github.com/gb112302/agriconnect/internal/adapter/mongo"
	natsadapter "github.com/gb112302/agriconnect/internal/adapter/nats"
	"github.com/gb112302/agriconnect/internal/adapter/payment"
	redisadapter "github.com/gb112302/agriconnect/internal/adapter/redis"
	"github.com/gb112302/agriconnect/internal/adapter/storage/s3"
	"github.com/gb112302/agriconnect/internal/app/config"
	"github.com/gb112302/agriconnect/internal/platform/logger"
	"github.com/gb112302/agriconnect/internal/platform/metrics"
	httpport "github.com/gb112302/agriconnect/internal/port/http"
	"github.com/gb112302/agriconnect/internal/service"
)

type App struct {
	cfg         *config.Config
	log         logger.Logger
	server      *http.Server
	metrics     *metrics.Manager
	mongoClient *mongo.Client
	redisClient *redis.Client
	natsConn    *natsio.Conn
}

func New(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	appLogger, err := logger.NewZapLogger(logger.Config{
		Level:      cfg.Logger.Level,
		Encoding:   cfg.Logger.Encoding,
		TimeFormat: cfg.Logger.TimeFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	appLogger.Infof("Configuration loaded: Env=%s, HTTP port: %s", cfg.Env, cfg.HTTPServer.Port)

	mongoClient, err := mongoadapter.NewClient(ctx, cfg.MongoDB)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MongoDB client: %w", err)
	}
	appLogger.Info("MongoDB client initialized")

	redisClient, err := redisadapter.NewClient(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis client: %w", err)
	}
	appLogger.Info("Redis client initialized")

	var publisher natsadapter.MessagePublisher
	natsConn, err := natsadapter.NewConnection(cfg.NATS)
	if err != nil {
		// Events are best effort; the API can run without the bus.
		appLogger.Warnf("NATS unavailable, events disabled: %v", err)
	} else {
		publisher, err = natsadapter.NewPublisher(natsConn)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize NATS publisher: %w", err)
		}
		appLogger.Info("NATS publisher initialized")
	}

	var mailer email.EmailSender
	if cfg.SMTP.Host != "" {
		mailer, err = email.NewSMTPSender(cfg.SMTP, appLogger.Named("email"))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SMTP sender: %w", err)
		}
		appLogger.Info("SMTP sender initialized")
	} else {
		appLogger.Warn("SMTP not configured, outgoing email disabled")
	}

	var storage s3.Storage
	if cfg.S3.Endpoint != "" {
		storage, err = s3.NewStorage(cfg.S3, appLogger.Named("s3"))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 storage: %w", err)
		}
		appLogger.Info("S3 storage initialized")
	} else {
		appLogger.Warn("S3 not configured, product media uploads disabled")
	}

	repoLogger := appLogger.Named("mongo")
	userRepo := mongoadapter.NewUserRepository(mongoClient, cfg.MongoDB, repoLogger)
	productRepo := mongoadapter.NewProductRepository(mongoClient, cfg.MongoDB, repoLogger)
	orderRepo := mongoadapter.NewOrderRepository(mongoClient, cfg.MongoDB, repoLogger)
	bulkRepo := mongoadapter.NewBulkRequestRepository(mongoClient, cfg.MongoDB, repoLogger)
	reviewRepo := mongoadapter.NewReviewRepository(mongoClient, cfg.MongoDB, repoLogger)
	chatRepo := mongoadapter.NewChatRepository(mongoClient, cfg.MongoDB, repoLogger)
	paymentRepo := mongoadapter.NewPaymentRepository(mongoClient, cfg.MongoDB, repoLogger)

	sessionRepo := redisadapter.NewSessionRepository(redisClient)
	productCache := redisadapter.NewProductCacheRepository(redisClient)

	tokens := service.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL)
	gateway := payment.NewStripeGateway(cfg.Payment, appLogger.Named("payment"))
	metricsManager := metrics.NewManager(cfg.Metrics.Namespace)

	authSvc := service.NewAuthService(userRepo, productRepo, sessionRepo, tokens, mailer, appLogger.Named("auth"))
	catalogSvc := service.NewCatalogService(productRepo, productCache, storage, cfg.Cache.ProductTTL, appLogger.Named("catalog"))
	orderSvc := service.NewOrderService(orderRepo, productRepo, productCache, publisher, metricsManager, appLogger.Named("orders"))
	bulkSvc := service.NewBulkRequestService(bulkRepo, productRepo, appLogger.Named("bulk"))
	reviewSvc := service.NewReviewService(reviewRepo, productRepo, orderRepo, productCache, metricsManager, appLogger.Named("reviews"))
	paymentSvc := service.NewPaymentService(paymentRepo, orderRepo, orderSvc, gateway, publisher, cfg.Payment.Currency, metricsManager, appLogger.Named("payments"))
	chatSvc := service.NewChatService(chatRepo, userRepo, publisher, appLogger.Named("chat"))
	adminSvc := service.NewAdminService(userRepo, productRepo, orderRepo, reviewRepo, sessionRepo, appLogger.Named("admin"))

	router := httpport.NewRouter(httpport.RouterDeps{
		Auth:     httpport.NewAuthHandler(authSvc, appLogger),
		Products: httpport.NewProductHandler(catalogSvc, appLogger),
		Orders:   httpport.NewOrderHandler(orderSvc, appLogger),
		Bulk:     httpport.NewBulkRequestHandler(bulkSvc, appLogger),
		Reviews:  httpport.NewReviewHandler(reviewSvc, appLogger),
		Payments: httpport.NewPaymentHandler(paymentSvc, appLogger),
		Chats:    httpport.NewChatHandler(chatSvc, appLogger),
		Admin:    httpport.NewAdminHandler(adminSvc, catalogSvc, appLogger),
		Tokens:   tokens,
		Sessions: sessionRepo,
		Metrics:  metricsManager,
		Log:      appLogger,
	})

	server := &http.Server{
		Addr:         ":" + cfg.HTTPServer.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
	}

	return &App{
		cfg:         cfg,
		log:         appLogger,
		server:      server,
		metrics:     metricsManager,
		mongoClient: mongoClient,
		redisClient: redisClient,
		natsConn:    natsConn,
	}, nil
}

func (a *App) Run() {
	go func() {
		a.log.Infof("HTTP server listening on :%s", a.cfg.HTTPServer.Port)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	go func() {
		if err := metrics.StartServer(a.cfg.Metrics.Port, a.log, a.metrics.Registry); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Errorf("Metrics server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-quit
	a.log.Infof("Received shutdown signal: %v. Shutting down...", receivedSignal)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTPServer.TimeoutGraceful+5*time.Second)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.log.Errorf("Error during HTTP server graceful shutdown: %v", err)
	} else {
		a.log.Info("HTTP server stopped")
	}

	if a.natsConn != nil {
		a.natsConn.Close()
		a.log.Info("NATS connection closed")
	}
	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(shutdownCtx); err != nil {
			a.log.Errorf("Error disconnecting from MongoDB: %v", err)
		} else {
			a.log.Info("MongoDB connection closed")
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Errorf("Error closing Redis client: %v", err)
		} else {
			a.log.Info("Redis client closed")
		}
	}

	a.log.Info("Application shut down")
}
