package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// insecureSecret is the development fallback for the bearer-token secret.
// A prod deployment must never run with it.
const insecureSecret = "dev-secret"

type Config struct {
	Env  string
	Port int

	DBURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Secret used to verify legacy bearer tokens.
	TokenSecret string
	TokenTTL    time.Duration

	SessionTTL time.Duration

	LoginMaxAttempts int
	LoginWindow      time.Duration

	// Per-process cap on open realtime streams.
	MaxStreams int

	SweepInterval time.Duration

	AllowedOrigins []string

	OTLPEndpoint string

	AdminEmail    string
	AdminPassword string
	AdminName     string
	AdminRole     string
}

func Load() (Config, error) {
	// .env is optional; real deployments use the process environment
	_ = godotenv.Load()

	cfg := Config{
		Env:  getEnv("APP_ENV", "dev"),
		Port: getEnvInt("PORT", 8080),

		DBURL: buildDBURL(),

		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		TokenSecret: getEnv("TOKEN_SECRET", insecureSecret),
		TokenTTL:    getEnvDuration("TOKEN_TTL", 7*24*time.Hour),

		SessionTTL: getEnvDuration("SESSION_TTL", 7*24*time.Hour),

		LoginMaxAttempts: getEnvInt("LOGIN_MAX_ATTEMPTS", 5),
		LoginWindow:      getEnvDuration("LOGIN_WINDOW", 15*time.Minute),

		MaxStreams: getEnvInt("MAX_REALTIME_STREAMS", 4096),

		SweepInterval: getEnvDuration("SWEEP_INTERVAL", 10*time.Minute),

		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),

		OTLPEndpoint: getEnv("OTLP_ENDPOINT", ""),

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		AdminName:     getEnv("ADMIN_NAME", "Admin"),
		AdminRole:     getEnv("ADMIN_ROLE", "admin"),
	}

	if cfg.Env == "prod" && cfg.TokenSecret == insecureSecret {
		return Config{}, errors.New("TOKEN_SECRET must be set in prod")
	}

	return cfg, nil
}

func buildDBURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "workpad")
	pass := getEnv("DB_PASSWORD", "workpad")
	name := getEnv("DB_NAME", "workpad")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func splitList(v string) []string {
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

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return d
	}
	return fallback
}
