package producer

import (
	"context"
	"time"

	"go-hris-iam/internal/messaging/kafka"

	"go.uber.org/zap"
)

const batchSize = 50

func ProcessOutboxEvents(
	ctx context.Context,
	repo kafka.OutboxRepository,
	writer MessageWriter,
	logger *zap.Logger,
	pollInterval time.Duration,
) {
	if pollInterval <= 0 {
		pollInterval = 3 * time.Second
	}

	log := logger.Named("kafka.producer.worker")
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	log.Info("outbox worker started", zap.Duration("poll_interval", pollInterval))

	for {
		select {
		case <-ctx.Done():
			log.Info("outbox worker stopped")
			return
		case <-ticker.C:
			if err := processPendingEvents(ctx, repo, writer, log); err != nil {
				log.Error("process outbox events failed", zap.Error(err))
			}
		}
	}
}

// ProcessOnce drains a single batch. Used by tests and manual flushes.
func ProcessOnce(ctx context.Context, repo kafka.OutboxRepository, writer MessageWriter, logger *zap.Logger) error {
	return processPendingEvents(ctx, repo, writer, logger.Named("kafka.producer.worker"))
}

func processPendingEvents(
	ctx context.Context,
	repo kafka.OutboxRepository,
	writer MessageWriter,
	logger *zap.Logger,
) error {
	events, err := repo.ListPending(ctx, batchSize)
	if err != nil {
		return err
	}

	if len(events) == 0 {
		return nil
	}

	sent := 0
	for _, event := range events {
		log := logger.With(
			zap.String("outbox_id", event.ID),
			zap.String("event_type", event.EventType),
			zap.String("topic", event.Topic),
		)

		if err := publishEvent(ctx, writer, event); err != nil {
			if event.RetryCount+1 >= kafka.MaxOutboxAttempts {
				log.Error("outbox event dead-lettered", zap.Int("attempts", event.RetryCount+1), zap.Error(err))
			} else {
				log.Warn("publish outbox event failed", zap.Int("attempt", event.RetryCount+1), zap.Error(err))
			}
			if markErr := repo.MarkFailed(ctx, event.ID, err.Error()); markErr != nil {
				log.Error("record outbox failure", zap.Error(markErr))
			}
			continue
		}

		// A failed MarkSent means the row is published again on the next
		// tick; consumers treat events as at-least-once.
		if err := repo.MarkSent(ctx, event.ID); err != nil {
			log.Error("mark outbox sent failed", zap.Error(err))
			continue
		}
		sent++
	}

	logger.Info("outbox batch drained", zap.Int("due", len(events)), zap.Int("sent", sent))
	return nil
}
