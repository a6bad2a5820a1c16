package app

import (
	"context"
	"fmt"

	"go-hris-iam/internal/company"
	"go-hris-iam/internal/events"
	"go-hris-iam/internal/messaging/kafka/consumer"
	"go-hris-iam/internal/shared/config"
	"go-hris-iam/internal/shared/connection"
	"go-hris-iam/internal/storage"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RunConsumer purges the stored documents of deleted tenants until ctx is
// cancelled.
func RunConsumer(ctx context.Context, cfg config.Config) error {
	logger := zap.L().Named("app.consumer")

	if cfg.KafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}
	if cfg.AWS.S3Bucket == "" {
		return fmt.Errorf("S3_BUCKET is required")
	}

	gormDB, err := connection.ConnectGORMWithRetry(cfg.Database, 5)
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	awsCfg, err := connection.LoadAWS(ctx, cfg.AWS)
	if err != nil {
		return err
	}
	files := storage.NewS3Deleter(connection.NewS3Client(awsCfg, cfg.AWS), cfg.AWS.S3Bucket)

	companyService := company.NewService(company.NewRepository(gormDB), nil, files, logger)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{cfg.KafkaBroker},
		Topic:          events.TenantLifecycleTopic,
		GroupID:        "go-hris-iam-tenant-cleanup",
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	consumer.ConsumeTenantDeleted(ctx, reader, companyService, logger, consumer.DefaultRetryPolicy)

	logger.Info("consumer shutting down")
	return nil
}
