package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/robfig/cron/v3"

	"github.com/Skotchmaster/store_rest/internal/access"
	storecfg "github.com/Skotchmaster/store_rest/internal/config"
	"github.com/Skotchmaster/store_rest/internal/es"
	"github.com/Skotchmaster/store_rest/internal/httpserver"
	"github.com/Skotchmaster/store_rest/internal/idempotency"
	"github.com/Skotchmaster/store_rest/internal/migrations"
	"github.com/Skotchmaster/store_rest/internal/mykafka"
	"github.com/Skotchmaster/store_rest/internal/repo"
	"github.com/Skotchmaster/store_rest/internal/service"
	"github.com/Skotchmaster/store_rest/pkg/authclient"
	pkgdb "github.com/Skotchmaster/store_rest/pkg/db"
	"github.com/Skotchmaster/store_rest/pkg/logging"
	authmw "github.com/Skotchmaster/store_rest/pkg/middleware/auth"
	loggingmw "github.com/Skotchmaster/store_rest/pkg/middleware/logging"
	"github.com/Skotchmaster/store_rest/pkg/middleware/metrics"
	"github.com/Skotchmaster/store_rest/pkg/middleware/ratelimit"
	"github.com/Skotchmaster/store_rest/pkg/passwd"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := storecfg.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	if cfg.DBAutoMigrate {
		if err := migrations.Up(cfg.DatabaseURL); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		logger.Info("migrations_applied")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("db handle: %v", err)
	}

	producer := mykafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopicPrefix)

	var index es.ProductIndex = es.Nop{}
	if cfg.ESURL != "" {
		esCfg := es.Config{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword, Index: cfg.ESIndex}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err := es.NewClient(ctx, esCfg)
		cancel()
		if err != nil {
			log.Fatalf("elasticsearch: %v", err)
		}
		index = &es.Products{Client: client, Index: cfg.ESIndex}
	}

	var keys idempotency.Store = idempotency.NewMemory()
	var redisKeys *idempotency.Redis
	if cfg.RedisAddr != "" {
		redisKeys = idempotency.NewRedis(cfg.RedisAddr, cfg.ServiceName)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisKeys.Ping(ctx)
		cancel()
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		keys = redisKeys
	}

	policy := access.Policy{PublicCatalog: cfg.CatalogPublicRead}
	store := &repo.GormRepo{DB: db}

	users := &service.UserService{Repo: store, Policy: policy, Passwords: passwd.Default(), Events: producer}
	catalog := &service.CatalogService{Repo: store, Policy: policy, Index: index, Events: producer}
	orders := &service.OrderService{Repo: store, Policy: policy, Idempotency: keys, Events: producer}

	var refresher authmw.Refresher
	if cfg.AuthHTTPURL != "" {
		refresher = authclient.NewClient(cfg.AuthHTTPURL)
	}

	var scheduler *cron.Cron
	if cfg.SearchReindexCron != "" && index.Enabled() {
		scheduler = cron.New()
		_, err := scheduler.AddFunc(cfg.SearchReindexCron, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			n, err := catalog.Reindex(logging.IntoContext(ctx, logger))
			if err != nil {
				logger.Error("search_reindex_failed", "indexed", n, "error", err)
				return
			}
			logger.Info("search_reindex_done", "indexed", n)
		})
		if err != nil {
			log.Fatalf("reindex schedule %q: %v", cfg.SearchReindexCron, err)
		}
		scheduler.Start()
	}

	serverMetrics := metrics.NewServerMetrics(cfg.ServiceName)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(serverMetrics.Middleware())
	if len(cfg.CORSOrigins) > 0 {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins:     cfg.CORSOrigins,
			AllowCredentials: true,
		}))
	}

	httpserver.Register(e, &httpserver.Deps{
		Users:           &httpserver.UserHTTP{Svc: users},
		Catalog:         &httpserver.CatalogHTTP{Svc: catalog},
		Orders:          &httpserver.OrderHTTP{Svc: orders},
		Items:           &httpserver.OrderItemHTTP{Svc: orders},
		JWTSecret:       cfg.JWTAccessSecret,
		Refresher:       refresher,
		UserLookup:      store,
		DB:              sqlDB,
		Metrics:         serverMetrics,
		RegisterLimiter: ratelimit.PerMinute(cfg.RegisterRatePerMin),
		SecureCookies:   cfg.SecureCookies,
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_failed", "error", err)
	}
	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
	if err := producer.Close(); err != nil {
		logger.Warn("producer_close_failed", "error", err)
	}
	if redisKeys != nil {
		_ = redisKeys.Close()
	}
	_ = sqlDB.Close()

	logger.Info("stopped")
}
