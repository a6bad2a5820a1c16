package app

import (
	"context"
	"fmt"

	"go-hris-iam/internal/company"
	"go-hris-iam/internal/credential"
	"go-hris-iam/internal/employee"
	"go-hris-iam/internal/messaging/kafka"
	"go-hris-iam/internal/notification"
	"go-hris-iam/internal/oauth"
	"go-hris-iam/internal/secrettoken"
	"go-hris-iam/internal/shared/config"
	"go-hris-iam/internal/shared/connection"
	"go-hris-iam/internal/shared/counter"
	"go-hris-iam/internal/storage"
	"go-hris-iam/internal/token"
	"go-hris-iam/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Migrate creates or updates every table the service owns.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&company.Company{},
		&user.User{},
		&employee.Employee{},
		&counter.Counter{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return kafka.EnsureOutboxTable(ctx, sqlDB)
}

// BuildApp connects the infrastructure named by cfg and registers every route
// on router. The returned func releases the connections.
func BuildApp(ctx context.Context, router *gin.Engine, cfg config.Config) (func(), error) {
	logger := zap.L().Named("app")

	gormDB, err := connection.ConnectGORMWithRetry(cfg.Database, 5)
	if err != nil {
		return nil, err
	}
	logger.Info("database connection established")

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}

	if err := Migrate(ctx, gormDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = connection.ConnectRedisWithRetry(cfg.RedisAddr, 5)
		if err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		logger.Info("redis connection established")
	} else {
		logger.Warn("REDIS_ADDR not set, idempotency keys are ignored")
	}

	cleanup := func() {
		if redisClient != nil {
			_ = redisClient.Close()
		}
		_ = sqlDB.Close()
	}

	m := Modules{
		Users:      user.NewRepository(gormDB),
		Companies:  company.NewRepository(gormDB),
		Employees:  employee.NewRepository(gormDB),
		Counter:    counter.NewRepository(gormDB),
		Outbox:     kafka.NewOutboxRepository(sqlDB),
		Hasher:     credential.NewBcryptHasher(cfg.BcryptCost),
		Issuer:     token.NewIssuer(cfg.JWTSecret, cfg.JWTTTL),
		Secrets:    secrettoken.NewFactory(),
		Redis:      redisClient,
		AppBaseURL: cfg.AppBaseURL,
		Logger:     zap.L(),
	}

	if err := wireExternal(ctx, cfg, &m, logger); err != nil {
		cleanup()
		return nil, err
	}

	registerModules(router, m)
	return cleanup, nil
}

// wireExternal attaches the mail, object storage and identity provider
// adapters. Anything left unconfigured falls back to a local stand-in.
func wireExternal(ctx context.Context, cfg config.Config, m *Modules, logger *zap.Logger) error {
	if cfg.Google.ClientID != "" {
		m.Verifier = oauth.NewGoogleVerifier(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.CallbackURL)
	} else {
		logger.Warn("GOOGLE_CLIENT_ID not set, federated login disabled")
	}

	if cfg.AWS.MailFrom == "" && cfg.AWS.S3Bucket == "" {
		m.Notifier = notification.NewLogSender(logger)
		m.Files = storage.NoopDeleter{}
		logger.Warn("AWS not configured, mail is logged and documents are kept")
		return nil
	}

	awsCfg, err := connection.LoadAWS(ctx, cfg.AWS)
	if err != nil {
		return err
	}

	if cfg.AWS.MailFrom != "" {
		m.Notifier = notification.NewSESSender(connection.NewSESClient(awsCfg), cfg.AWS.MailFrom)
	} else {
		m.Notifier = notification.NewLogSender(logger)
	}

	if cfg.AWS.S3Bucket != "" {
		m.Files = storage.NewS3Deleter(connection.NewS3Client(awsCfg, cfg.AWS), cfg.AWS.S3Bucket)
	} else {
		m.Files = storage.NoopDeleter{}
	}
	return nil
}
