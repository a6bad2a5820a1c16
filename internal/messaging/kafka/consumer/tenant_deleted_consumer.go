package consumer

import (
	"context"
	"encoding/json"
	"time"

	"go-hris-iam/internal/events"

	"go.uber.org/zap"
)

type DocumentPurger interface {
	PurgeDocuments(ctx context.Context, companyID string, keys []string) error
}

// RetryPolicy bounds how long one tenant_deleted event is retried in place.
// FetchMessage does not redeliver an uncommitted message once a later offset
// is committed, so a failed purge is retried before moving on.
type RetryPolicy struct {
	Attempts   int
	Backoff    time.Duration
	MaxBackoff time.Duration
}

var DefaultRetryPolicy = RetryPolicy{Attempts: 5, Backoff: time.Second, MaxBackoff: 30 * time.Second}

// purge runs PurgeDocuments until it succeeds, attempts run out or ctx ends.
func (p RetryPolicy) purge(ctx context.Context, purger DocumentPurger, event events.TenantDeletedEvent, log *zap.Logger) error {
	attempts := max(p.Attempts, 1)
	wait := p.Backoff

	var err error
	for attempt := 1; ; attempt++ {
		if err = purger.PurgeDocuments(ctx, event.CompanyID, event.DocumentKeys); err == nil {
			return nil
		}
		if attempt == attempts {
			return err
		}
		log.Warn("purge tenant documents failed, retrying",
			zap.String("company_id", event.CompanyID),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return err
		case <-time.After(wait):
		}
		if wait *= 2; p.MaxBackoff > 0 && wait > p.MaxBackoff {
			wait = p.MaxBackoff
		}
	}
}

func ConsumeTenantDeleted(
	ctx context.Context,
	reader MessageReader,
	purger DocumentPurger,
	logger *zap.Logger,
	retry RetryPolicy,
) {
	log := logger.Named("kafka.consumer.tenant_deleted")
	log.Info("tenant deleted consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("tenant deleted consumer stopped")
				return
			}
			log.Error("fetch tenant lifecycle message failed", zap.Error(err))
			continue
		}

		var event events.TenantDeletedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode tenant_deleted event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if event.EventType != events.EventTenantDeleted {
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := retry.purge(ctx, purger, event, log); err != nil {
			if ctx.Err() != nil {
				// Uncommitted; the group resumes from this offset on restart.
				log.Info("tenant deleted consumer stopped mid-purge", zap.String("company_id", event.CompanyID))
				return
			}
			log.Error("purge tenant documents abandoned, keys need manual cleanup",
				zap.String("company_id", event.CompanyID),
				zap.Strings("failed_keys", event.DocumentKeys),
				zap.Error(err),
			)
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit tenant lifecycle message failed", zap.Error(err))
			continue
		}

		log.Info("tenant lifecycle event handled",
			zap.String("company_id", event.CompanyID),
			zap.Int("documents", len(event.DocumentKeys)),
		)
	}
}
