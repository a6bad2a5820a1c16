package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	defaultPort       = "3000"
	defaultJWTTTL     = 24 * time.Hour
	defaultBcryptCost = 10
)

type DatabaseConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	SSLMode  string
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	MailFrom        string
	S3Bucket        string
	S3Endpoint      string
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
}

// Config is built once at process start and handed to constructors.
type Config struct {
	Port        string
	Env         string
	AppBaseURL  string
	JWTSecret   string
	JWTTTL      time.Duration
	BcryptCost  int
	RedisAddr   string
	KafkaBroker string
	Database    DatabaseConfig
	AWS         AWSConfig
	Google      GoogleConfig
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads the process environment. Call godotenv.Load before it when a
// .env file should be honoured.
func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", defaultPort),
		Env:         getEnv("APP_ENV", "development"),
		AppBaseURL:  getEnv("APP_BASE_URL", "http://localhost:5173"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTTTL:      defaultJWTTTL,
		BcryptCost:  defaultBcryptCost,
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		KafkaBroker: os.Getenv("KAFKA_BROKER"),
		Database: DatabaseConfig{
			Host:     os.Getenv("DB_HOST"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
			Port:     getEnv("DB_PORT", "5432"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			MailFrom:        os.Getenv("MAIL_FROM"),
			S3Bucket:        os.Getenv("S3_BUCKET"),
			S3Endpoint:      os.Getenv("S3_ENDPOINT"),
		},
		Google: GoogleConfig{
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			CallbackURL:  os.Getenv("GOOGLE_CALLBACK_URL"),
		},
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}

	if raw := os.Getenv("JWT_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil || ttl <= 0 {
			return Config{}, fmt.Errorf("invalid JWT_TTL %q", raw)
		}
		cfg.JWTTTL = ttl
	}

	if raw := os.Getenv("BCRYPT_COST"); raw != "" {
		cost, err := strconv.Atoi(raw)
		if err != nil || cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
			return Config{}, fmt.Errorf("invalid BCRYPT_COST %q", raw)
		}
		cfg.BcryptCost = cost
	}

	if cfg.IsProduction() && cfg.BcryptCost < defaultBcryptCost {
		return Config{}, fmt.Errorf("BCRYPT_COST must be at least %d in production", defaultBcryptCost)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
