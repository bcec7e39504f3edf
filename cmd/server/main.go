package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/kursline/kursline/config"
	"github.com/kursline/kursline/internal/app/keystore"
	appmodel "github.com/kursline/kursline/internal/app/model"
	apprepository "github.com/kursline/kursline/internal/app/repository"
	appserver "github.com/kursline/kursline/internal/app/server"
	appservice "github.com/kursline/kursline/internal/app/service"
	"github.com/kursline/kursline/internal/app/session"
	"github.com/kursline/kursline/internal/gateway"
	"github.com/kursline/kursline/internal/infra/logger"
	infraNATS "github.com/kursline/kursline/internal/infra/nats"
	infraPostgres "github.com/kursline/kursline/internal/infra/postgres"
	infraPrometheus "github.com/kursline/kursline/internal/infra/prometheus"
	infraRedis "github.com/kursline/kursline/internal/infra/redis"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	isDev := os.Getenv("APP_ENV") != "production"
	log := logger.MustInit(logger.Config{
		Development: isDev,
		Level:       os.Getenv("LOG_LEVEL"),
	})
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}

	log.Info("Configuration loaded successfully",
		zap.String("postgres_user", cfg.Postgres.User),
		zap.String("postgres_host", cfg.Postgres.Host),
		zap.Int("postgres_port", cfg.Postgres.Port),
		zap.String("postgres_db", cfg.Postgres.Database),
		zap.String("redis_host", cfg.Redis.Host),
		zap.Int("redis_port", cfg.Redis.Port),
		zap.String("nats_host", cfg.NATS.Host),
		zap.Int("nats_port", cfg.NATS.Port),
		zap.String("gateway_base_url", cfg.Gateway.BaseURL),
	)

	gormDB, err := infraPostgres.NewGorm(cfg.Postgres)
	if err != nil {
		log.Fatal("Failed to open GORM connection", zap.Error(err))
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatal("Failed to access underlying SQL DB", zap.Error(err))
	}
	defer sqlDB.Close()

	if err := infraPostgres.AutoMigrate(ctx, gormDB,
		&appmodel.Offer{},
		&appmodel.AttributionClick{},
		&appmodel.Transaction{},
		&appmodel.AffiliateEarning{},
	); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}

	pool, err := infraPostgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal("Failed to connect to Postgres", zap.Error(err))
	}
	defer pool.Close()

	log.Info("Connected to Postgres successfully")

	redisClient, err := infraRedis.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("Connected to Redis successfully")

	natsConn, js, err := infraNATS.Connect(cfg.NATS)
	if err != nil {
		log.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	defer natsConn.Drain()
	log.Info("Connected to NATS successfully", zap.Bool("jetstream_ready", js != nil))

	if !isDev {
		promServer := infraPrometheus.NewServer(cfg.Prometheus)
		go func() {
			log.Info("Starting Prometheus metrics server",
				zap.Int("port", cfg.Prometheus.Port))
			if err := promServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Prometheus metrics server stopped unexpectedly", zap.Error(err))
			}
		}()
		defer func() {
			if err := promServer.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Warn("Failed to close Prometheus server", zap.Error(err))
			}
		}()
	} else {
		log.Info("Skipping Prometheus metrics server in development mode")
	}

	offerRepo := apprepository.NewOfferRepository(gormDB)
	clickRepo := apprepository.NewAttributionRepository(gormDB)
	txnRepo := apprepository.NewTransactionRepository(gormDB)
	earningRepo := apprepository.NewEarningRepository(gormDB)

	keys := keystore.NewRedis(ctx, redisClient)
	tracker := appservice.NewAttributionTracker(log, keys, js)

	consumer := appservice.NewClickConsumer(js, log, clickRepo)
	if err := consumer.Start(); err != nil {
		log.Fatal("Failed to start click consumer", zap.Error(err))
	}

	pollInterval := parseDuration(cfg.Settlement.PollInterval, appservice.DefaultPollInterval)
	budget := parseDuration(cfg.Settlement.Budget, appservice.DefaultPollBudget)

	gw := gateway.New(cfg.Gateway.BaseURL, cfg.Gateway.APIKey,
		parseDuration(cfg.Gateway.Timeout, 0))

	affiliateSvc := appservice.NewAffiliateService(log, txnRepo, earningRepo, clickRepo)
	poller := appservice.NewSettlementPoller(log, gw, appservice.RealClock(), pollInterval, budget)
	watcher := appservice.NewSettlementWatcher(log, poller, txnRepo, affiliateSvc)
	checkoutSvc := appservice.NewCheckoutService(log, offerRepo, txnRepo, gw, watcher)

	sweep := appservice.NewSettlementSweep(log, txnRepo, budget)
	sweep.Start()
	defer sweep.Stop()

	signer := session.NewTokenSigner([]byte(cfg.Session.Secret),
		parseDuration(cfg.Session.TTL, 24*time.Hour))

	server := appserver.New(appserver.Dependencies{
		Logger:       log,
		Postgres:     pool,
		Redis:        redisClient,
		Offers:       offerRepo,
		OfferService: appservice.NewOfferService(offerRepo),
		Tracker:      tracker,
		Checkout:     checkoutSvc,
		Affiliate:    affiliateSvc,
		Sessions:     signer,
		PollInterval: int(pollInterval.Seconds()),
		BudgetSecs:   int(budget.Seconds()),
	})

	if err := server.Listen(":8080"); err != nil {
		log.Fatal("Fiber server exited", zap.Error(err))
	}
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}
