package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	ServiceName string

	ServerPort int

	DatabaseURL   string
	DBAutoMigrate bool

	JWTAccessSecret []byte

	AuthHTTPURL string

	LogLevel string

	KafkaBrokers     []string
	KafkaTopicPrefix string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	SearchReindexCron string

	RedisAddr string

	CatalogPublicRead  bool
	RegisterRatePerMin int
	CORSOrigins        []string
	SecureCookies      bool
}

func Load() Config {
	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "store"),

		ServerPort: EnvIntDefault("SERVER_PORT", 8080),

		DatabaseURL:   os.Getenv("DATABASE_URL"),
		DBAutoMigrate: EnvBool("DB_AUTOMIGRATE", false),

		JWTAccessSecret: []byte(os.Getenv("JWT_SECRET")),

		AuthHTTPURL: os.Getenv("AUTH_URL"),

		LogLevel: EnvDefault("LOG_LEVEL", "info"),

		KafkaBrokers:     CSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopicPrefix: EnvDefault("KAFKA_TOPIC_PREFIX", "store"),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "products"),

		SearchReindexCron: os.Getenv("SEARCH_REINDEX_CRON"),

		RedisAddr: os.Getenv("REDIS_ADDR"),

		CatalogPublicRead:  EnvBool("CATALOG_PUBLIC_READ", false),
		RegisterRatePerMin: EnvIntDefault("REGISTER_RATE_PER_MIN", 30),
		CORSOrigins:        CSV(os.Getenv("CORS_ORIGINS")),
		SecureCookies:      EnvBool("SECURE_COOKIES", true),
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
