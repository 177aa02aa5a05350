package config

import "github.com/Skotchmaster/store_rest/pkg/config"

type ServiceConfig struct {
	config.Config
}

func Load() ServiceConfig {
	cfg := config.Load()

	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")
	config.MustPositive(cfg.ServerPort, "SERVER_PORT")
	config.MustPositive(cfg.RegisterRatePerMin, "REGISTER_RATE_PER_MIN")

	return ServiceConfig{Config: cfg}
}
