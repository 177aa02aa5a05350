package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Skotchmaster/store_rest/internal/access"
	"github.com/Skotchmaster/store_rest/internal/migrations"
	"github.com/Skotchmaster/store_rest/internal/mykafka"
	"github.com/Skotchmaster/store_rest/internal/repo"
	"github.com/Skotchmaster/store_rest/internal/service"
	"github.com/Skotchmaster/store_rest/pkg/config"
	pkgdb "github.com/Skotchmaster/store_rest/pkg/db"
	"github.com/Skotchmaster/store_rest/pkg/logging"
	"github.com/Skotchmaster/store_rest/pkg/passwd"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	email := flag.String("email", os.Getenv("SUPERUSER_EMAIL"), "superuser email")
	password := flag.String("password", os.Getenv("SUPERUSER_PASSWORD"), "superuser password")
	flag.Parse()

	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmpty(*email, "SUPERUSER_EMAIL / -email")
	config.MustNonEmpty(*password, "SUPERUSER_PASSWORD / -password")

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName, "cmd", "createsuperuser")
	slog.SetDefault(logger)

	if cfg.DBAutoMigrate {
		if err := migrations.Up(cfg.DatabaseURL); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	ctx = logging.IntoContext(ctx, logger)

	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	producer := mykafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopicPrefix)
	defer producer.Close()

	users := &service.UserService{
		Repo:      &repo.GormRepo{DB: db},
		Policy:    access.Policy{},
		Passwords: passwd.Default(),
		Events:    producer,
	}

	u, err := users.CreateSuperuser(ctx, *email, *password)
	if err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			logger.Error("createsuperuser_rejected", "field", ve.Field, "reason", ve.Reason)
			os.Exit(2)
		}
		logger.Error("createsuperuser_failed", "error", err)
		os.Exit(1)
	}

	logger.Info("superuser_created", "user_id", u.ID, "email", u.Email)
}
