package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/surajpratapsingh112/shree-ecommerce/internal/adapter/email"
	appmongo "github.com/surajpratapsingh112/shree-ecommerce/internal/adapter/mongo"
	appnats "github.com/surajpratapsingh112/shree-ecommerce/internal/adapter/nats"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/adapter/payment"
	appredis "github.com/surajpratapsingh112/shree-ecommerce/internal/adapter/redis"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/adapter/storage/s3"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/app/config"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/platform/logger"
	httpport "github.com/surajpratapsingh112/shree-ecommerce/internal/port/http"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/port/http/handler"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/service"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

type App struct {
	cfg    *config.Config
	log    logger.Logger
	server *httpport.Server

	mongoClient *mongo.Client
	redisClient *redis.Client
	natsConn    *nats.Conn
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log, err := logger.NewZapLogger(logger.ZapLoggerConfig{
		Level:      cfg.Logger.Level,
		Encoding:   cfg.Logger.Encoding,
		TimeFormat: cfg.Logger.TimeFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log = log.With("env", cfg.Env)

	mongoClient, err := appmongo.NewClient(ctx, cfg.MongoDB)
	if err != nil {
		return nil, err
	}
	db := mongoClient.Database(cfg.MongoDB.Database)
	if err := appmongo.EnsureIndexes(ctx, db); err != nil {
		return nil, err
	}

	redisClient, err := appredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}

	var publisher appnats.EventPublisher = appnats.NoOpPublisher{}
	var natsConn *nats.Conn
	if cfg.NATS.URL != "" {
		natsConn, err = appnats.NewConnection(cfg.NATS, log)
		if err != nil {
			log.Warnf("NATS unavailable, order events disabled: %v", err)
		} else {
			publisher = appnats.NewPublisher(natsConn, log)
		}
	}

	sender, err := email.NewSMTPSender(cfg.SMTP, log)
	if err != nil {
		return nil, err
	}

	imageStorage, err := s3.NewImageStorage(cfg.Storage, log)
	if err != nil {
		return nil, err
	}

	gateway := payment.NewRazorpayGateway(cfg.Payment, log)

	userRepo := appmongo.NewUserRepository(db, log)
	productRepo := appmongo.NewProductRepository(db, log)
	categoryRepo := appmongo.NewCategoryRepository(db, log)
	cartRepo := appmongo.NewCartRepository(db, log)
	orderRepo := appmongo.NewOrderRepository(db, log)
	productCache := appredis.NewProductDetailCache(redisClient, log)

	authService := service.NewAuthService(userRepo, sender, cfg.JWT, cfg.Frontend.BaseURL, log)
	catalogService := service.NewCatalogService(productRepo, categoryRepo, userRepo, productCache, imageStorage, log)
	categoryService := service.NewCategoryService(categoryRepo, productRepo, imageStorage, log)
	cartService := service.NewCartService(cartRepo, productRepo, productCache, cfg.Cart.TTL, cfg.ProductCache.TTL, log)
	orderService := service.NewOrderService(orderRepo, productRepo, cartRepo, userRepo,
		gateway, sender, publisher, cfg.Payment, log)

	router := httpport.NewRouter(httpport.Handlers{
		Auth:       handler.NewAuthHandler(authService, log),
		Products:   handler.NewProductHandler(catalogService, log),
		Categories: handler.NewCategoryHandler(categoryService, log),
		Cart:       handler.NewCartHandler(cartService, log),
		Orders:     handler.NewOrderHandler(orderService, log),
	}, cfg.JWT.Secret, log)

	return &App{
		cfg:         cfg,
		log:         log,
		server:      httpport.NewServer(cfg.HTTPServer, router, log),
		mongoClient: mongoClient,
		redisClient: redisClient,
		natsConn:    natsConn,
	}, nil
}

// Run starts the HTTP server and blocks until SIGINT/SIGTERM, then shuts
// everything down within the configured timeout.
func (a *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		a.log.Infof("Received signal %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTPServer.ShutdownTimeout)
	defer cancel()

	if err := a.server.Stop(ctx); err != nil {
		a.log.Errorf("HTTP shutdown error: %v", err)
	}
	if a.natsConn != nil {
		a.natsConn.Close()
	}
	if err := a.redisClient.Close(); err != nil {
		a.log.Errorf("Redis close error: %v", err)
	}
	if err := a.mongoClient.Disconnect(ctx); err != nil {
		a.log.Errorf("MongoDB disconnect error: %v", err)
	}

	a.log.Infof("Shutdown complete")
	return nil
}
