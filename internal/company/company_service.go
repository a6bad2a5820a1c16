package company

import (
	"context"
	"errors"
	"fmt"
	"time"

	companyerrors "go-hris-iam/internal/company/errors"
	"go-hris-iam/internal/domain"
	"go-hris-iam/internal/events"
	"go-hris-iam/internal/messaging/kafka"
	"go-hris-iam/internal/observability/metrics"
	"go-hris-iam/internal/shared/apperror"
	"go-hris-iam/internal/shared/contextutil"
	"go-hris-iam/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

//go:generate mockgen -source=company_service.go -destination=mock/company_service_mock.go -package=mock
type Service interface {
	GetByID(ctx context.Context, id string) (*CompanyResponse, error)
	Delete(ctx context.Context, actor domain.Principal, tenantID string) (*DeleteCompanyResponse, error)
	PurgeDocuments(ctx context.Context, companyID string, keys []string) error
}

var nowUTC = func() time.Time { return time.Now().UTC() }

type service struct {
	repo    Repository
	outbox  kafka.OutboxRepository
	files   storage.FileDeleter
	deletes singleflight.Group
	logger  *zap.Logger
}

func NewService(
	repo Repository,
	outbox kafka.OutboxRepository,
	files storage.FileDeleter,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("company.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("company.service")
	}
	if files == nil {
		files = storage.NoopDeleter{}
	}
	return &service{repo: repo, outbox: outbox, files: files, logger: l}
}

func (s *service) GetByID(ctx context.Context, id string) (*CompanyResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, companyerrors.ErrInvalidCompanyID
	}

	comp, err := s.repo.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, companyerrors.ErrCompanyNotFound
		}
		return nil, apperror.WithCause(apperror.ErrInternal, err)
	}

	return ToResponse(comp), nil
}

// Delete removes the tenant and all of its scoped rows. Concurrent calls for
// the same tenant share one execution.
func (s *service) Delete(ctx context.Context, actor domain.Principal, tenantID string) (*DeleteCompanyResponse, error) {
	id, err := uuid.Parse(tenantID)
	if err != nil {
		return nil, companyerrors.ErrInvalidCompanyID
	}

	v, err, shared := s.deletes.Do(id.String(), func() (any, error) {
		// Joiners share this call, so one caller going away must not abort it.
		return s.deleteTenant(context.WithoutCancel(ctx), actor, id)
	})
	if shared {
		contextutil.GetLogger(ctx, s.logger).Debug("joined in-flight company deletion", zap.String("company_id", id.String()))
	}
	if err != nil {
		return nil, err
	}
	return v.(*DeleteCompanyResponse), nil
}

func (s *service) deleteTenant(ctx context.Context, actor domain.Principal, id uuid.UUID) (*DeleteCompanyResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger).With(zap.String("company_id", id.String()))

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, companyerrors.ErrCompanyNotFound
		}
		return nil, apperror.WithCause(apperror.ErrInternal, err)
	}

	keys, err := s.repo.DocumentKeys(ctx, id)
	if err != nil {
		return nil, apperror.WithCause(apperror.ErrInternal, fmt.Errorf("collect document keys: %w", err))
	}

	if err := s.repo.Cascade(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, companyerrors.ErrCompanyNotFound
		}

		var cascadeErr *CascadeError
		if errors.As(err, &cascadeErr) {
			metrics.RecordCascadeFailure(cascadeErr.Collection)
			log.Error("company cascade rolled back",
				zap.String("failed_collection", cascadeErr.Collection),
				zap.Error(cascadeErr.Err),
			)
			return nil, apperror.WithCause(companyerrors.ErrTenantCascadeFailed, cascadeErr)
		}
		return nil, apperror.WithCause(apperror.ErrInternal, err)
	}

	log.Info("company deleted",
		zap.String("deleted_by", actor.UserID.String()),
		zap.Int("documents", len(keys)),
	)

	s.enqueueTenantDeleted(ctx, actor, id, keys)

	return &DeleteCompanyResponse{ID: id.String(), DocumentKeys: len(keys)}, nil
}

func (s *service) enqueueTenantDeleted(ctx context.Context, actor domain.Principal, id uuid.UUID, keys []string) {
	if s.outbox == nil {
		return
	}
	log := contextutil.GetLogger(ctx, s.logger)

	payload := events.TenantDeletedEvent{
		EventType:    events.EventTenantDeleted,
		CompanyID:    id.String(),
		DocumentKeys: keys,
		DeletedBy:    actor.UserID.String(),
		OccurredAt:   nowUTC(),
	}
	event, err := kafka.NewOutboxEvent(
		contextutil.GetRequestID(ctx),
		"company",
		id.String(),
		events.EventTenantDeleted,
		events.TenantLifecycleTopic,
		payload,
	)
	if err == nil {
		err = s.outbox.Create(ctx, event)
	}
	if err != nil {
		log.Error("enqueue tenant_deleted failed, stored documents need manual cleanup",
			zap.String("company_id", id.String()),
			zap.Strings("document_keys", keys),
			zap.Error(err),
		)
	}
}

// PurgeDocuments removes the stored objects of a deleted tenant.
func (s *service) PurgeDocuments(ctx context.Context, companyID string, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	failed, err := storage.DeleteAll(ctx, s.files, keys)
	if err != nil {
		s.logger.Warn("tenant document purge incomplete",
			zap.String("company_id", companyID),
			zap.Strings("failed_keys", failed),
			zap.Error(err),
		)
		return err
	}
	return nil
}
