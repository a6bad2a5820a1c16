package employee

import (
	"context"

	"go-hris-iam/internal/domain"
	employeeerrors "go-hris-iam/internal/employee/errors"
	"go-hris-iam/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -source=employee_service.go -destination=mock/employee_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID string, req CreateEmployeeRequest) (EmployeeResponse, error)
	GetAll(ctx context.Context, companyID string) ([]EmployeeResponse, error)
	GetByID(ctx context.Context, companyID, id string) (EmployeeResponse, error)
	Update(ctx context.Context, companyID, id string, req UpdateEmployeeRequest) (EmployeeResponse, error)
	Delete(ctx context.Context, actor domain.Principal, companyID, id string) error
}

type service struct {
	repo   Repository
	sync   *Synchronizer
	logger *zap.Logger
}

func NewService(repo Repository, sync *Synchronizer, logger ...*zap.Logger) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{repo: repo, sync: sync, logger: l}
}

func parseIDs(companyID, id string) (uuid.UUID, uuid.UUID, error) {
	cid, err := uuid.Parse(companyID)
	if err != nil {
		return uuid.Nil, uuid.Nil, employeeerrors.ErrInvalidCompanyID
	}
	if id == "" {
		return cid, uuid.Nil, nil
	}
	eid, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, uuid.Nil, employeeerrors.ErrInvalidEmployeeID
	}
	return cid, eid, nil
}

func (s *service) Create(ctx context.Context, companyID string, req CreateEmployeeRequest) (EmployeeResponse, error) {
	contextutil.GetLogger(ctx, s.logger).Debug("create employee requested",
		zap.String("company_id", companyID),
		zap.String("email", req.OfficialEmail),
	)

	cid, _, err := parseIDs(companyID, "")
	if err != nil {
		return EmployeeResponse{}, err
	}

	e, err := s.sync.CreatePair(ctx, cid, req)
	if err != nil {
		return EmployeeResponse{}, err
	}
	return mapToResponse(*e), nil
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]EmployeeResponse, error) {
	cid, _, err := parseIDs(companyID, "")
	if err != nil {
		return nil, err
	}

	list, err := s.repo.FindAllByCompany(ctx, cid)
	if err != nil {
		contextutil.GetLogger(ctx, s.logger).Error("get all employees failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(list), nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (EmployeeResponse, error) {
	cid, eid, err := parseIDs(companyID, id)
	if err != nil {
		return EmployeeResponse{}, err
	}

	e, err := s.repo.FindByIDAndCompany(ctx, cid, eid)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*e), nil
}

func (s *service) Update(ctx context.Context, companyID, id string, req UpdateEmployeeRequest) (EmployeeResponse, error) {
	cid, eid, err := parseIDs(companyID, id)
	if err != nil {
		return EmployeeResponse{}, err
	}

	e, err := s.sync.UpdatePair(ctx, cid, eid, req)
	if err != nil {
		return EmployeeResponse{}, err
	}
	return mapToResponse(*e), nil
}

func (s *service) Delete(ctx context.Context, actor domain.Principal, companyID, id string) error {
	cid, eid, err := parseIDs(companyID, id)
	if err != nil {
		return err
	}
	return s.sync.DeletePair(ctx, actor, cid, eid)
}
