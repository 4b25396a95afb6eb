package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/dekut-devs/clearance-api/internal/models"
	"github.com/dekut-devs/clearance-api/internal/repository"
	appErrors "github.com/dekut-devs/clearance-api/pkg/errors"
)

type clearanceRepositoryAPI interface {
	Insert(ctx context.Context, request *models.ClearanceRequest) error
	FindByID(ctx context.Context, id string) (*models.ClearanceRequest, error)
	FindByRegNo(ctx context.Context, regNo string) (*models.ClearanceRequest, error)
	List(ctx context.Context, filter models.RequestFilter) ([]models.ClearanceRequest, error)
	ApplyDecision(ctx context.Context, id, department string, decision models.DepartmentDecision) (*models.ClearanceRequest, models.DecisionStatus, error)
	UpdateAlertSettings(ctx context.Context, id string, settings models.ClearanceSettings) error
	AppendFile(ctx context.Context, id, path string) error
	Delete(ctx context.Context, id string) error
}

// clearanceNotifier dispatches student-facing alerts. Implementations must
// never block or fail the calling workflow.
type clearanceNotifier interface {
	RequestStarted(request *models.ClearanceRequest)
	DecisionRecorded(request *models.ClearanceRequest, department string, decision models.DepartmentDecision)
	FullyCleared(request *models.ClearanceRequest)
}

// CreateRequestPayload holds the payload for opening a clearance request.
type CreateRequestPayload struct {
	RegNo       string   `json:"regNo" validate:"required"`
	Name        string   `json:"name" validate:"required"`
	Email       string   `json:"email" validate:"omitempty,email"`
	Phone       string   `json:"phone"`
	Departments []string `json:"departments"`
}

// DecisionPayload holds one department's verdict submission.
type DecisionPayload struct {
	Status    models.DecisionStatus `json:"status" validate:"required"`
	Remarks   string                `json:"remarks"`
	StaffName string                `json:"staffName"`
}

// AlertSettingsPayload holds a student's notification preferences.
type AlertSettingsPayload struct {
	EmailAlerts bool `json:"emailAlerts"`
	SMSAlerts   bool `json:"smsAlerts"`
}

// ClearanceService orchestrates the graduation clearance workflow.
type ClearanceService struct {
	repo      clearanceRepositoryAPI
	notifier  clearanceNotifier
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClearanceService constructs the clearance service.
func NewClearanceService(repo clearanceRepositoryAPI, notifier clearanceNotifier, validate *validator.Validate, logger *zap.Logger) *ClearanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClearanceService{repo: repo, notifier: notifier, validator: validate, logger: logger}
}

// Create opens a clearance request for the student, or restores the
// existing one when the registration number is already on file. The
// restore path never rewrites the existing record and never re-notifies.
// The boolean reports whether a new record was created.
func (s *ClearanceService) Create(ctx context.Context, payload CreateRequestPayload) (*models.ClearanceRequest, bool, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid clearance request payload")
	}

	existing, err := s.repo.FindByRegNo(ctx, payload.RegNo)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up clearance request")
	}

	departments := payload.Departments
	if len(departments) == 0 {
		departments = append([]string(nil), models.DefaultDepartments...)
	}
	now := time.Now().UTC()
	clearance := make(models.ClearanceMap, len(departments))
	for _, dept := range departments {
		clearance[dept] = models.DepartmentDecision{Status: models.DecisionPending, UpdatedAt: now}
	}

	request := &models.ClearanceRequest{
		StudentID:     models.StudentIDFromRegNo(payload.RegNo),
		RegNo:         payload.RegNo,
		Name:          payload.Name,
		Departments:   departments,
		Clearance:     clearance,
		OverallStatus: models.DecisionPending,
		Settings:      models.ClearanceSettings{EmailAlerts: true, SMSAlerts: true},
		Files:         []string{},
	}
	if payload.Email != "" {
		request.Email = &payload.Email
	}
	if payload.Phone != "" {
		request.Phone = &payload.Phone
	}

	if err := s.repo.Insert(ctx, request); err != nil {
		if repository.IsUniqueViolation(err) {
			// Lost the race to a concurrent create. Restore instead.
			restored, findErr := s.repo.FindByRegNo(ctx, payload.RegNo)
			if findErr != nil {
				return nil, false, appErrors.Wrap(findErr, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "registration number already in use")
			}
			return restored, false, nil
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create clearance request")
	}

	if s.notifier != nil {
		s.notifier.RequestStarted(request)
	}
	return request, true, nil
}

// Get returns a clearance request by ID.
func (s *ClearanceService) Get(ctx context.Context, id string) (*models.ClearanceRequest, error) {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "clearance request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load clearance request")
	}
	return request, nil
}

// GetByRegNo returns the clearance request for a registration number.
func (s *ClearanceService) GetByRegNo(ctx context.Context, regNo string) (*models.ClearanceRequest, error) {
	request, err := s.repo.FindByRegNo(ctx, regNo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "clearance request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load clearance request")
	}
	return request, nil
}

// List returns requests newest first, optionally filtered by student and
// overall status.
func (s *ClearanceService) List(ctx context.Context, filter models.RequestFilter) ([]models.ClearanceRequest, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown status filter")
	}
	requests, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list clearance requests")
	}
	if requests == nil {
		requests = []models.ClearanceRequest{}
	}
	return requests, nil
}

// ApplyDecision records one department's verdict and returns the updated
// request. A rejection notifies the student urgently; the first transition
// into full approval sends the congratulations alert exactly once.
func (s *ClearanceService) ApplyDecision(ctx context.Context, id, department string, payload DecisionPayload) (*models.ClearanceRequest, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid decision payload")
	}
	if !payload.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be Pending, Approved or Rejected")
	}
	if department == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "department is required")
	}

	decision := models.DepartmentDecision{
		Status:    payload.Status,
		Remarks:   payload.Remarks,
		StaffName: payload.StaffName,
		UpdatedAt: time.Now().UTC(),
	}

	updated, previous, err := s.repo.ApplyDecision(ctx, id, department, decision)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "clearance request not found")
		}
		if errors.Is(err, repository.ErrUnknownDepartment) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "department is not part of this clearance request")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record decision")
	}

	if s.notifier != nil {
		s.notifier.DecisionRecorded(updated, department, decision)
		if previous != models.DecisionApproved && updated.OverallStatus == models.DecisionApproved {
			s.notifier.FullyCleared(updated)
		}
	}
	return updated, nil
}

// UpdateAlertSettings stores a student's notification preferences.
func (s *ClearanceService) UpdateAlertSettings(ctx context.Context, id string, payload AlertSettingsPayload) error {
	settings := models.ClearanceSettings{EmailAlerts: payload.EmailAlerts, SMSAlerts: payload.SMSAlerts}
	if err := s.repo.UpdateAlertSettings(ctx, id, settings); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "clearance request not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update alert settings")
	}
	return nil
}

// AttachFile links an uploaded supporting document to the request.
func (s *ClearanceService) AttachFile(ctx context.Context, id, path string) error {
	if path == "" {
		return appErrors.Clone(appErrors.ErrValidation, "file path is required")
	}
	if err := s.repo.AppendFile(ctx, id, path); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "clearance request not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to attach file")
	}
	return nil
}

// Delete removes a clearance request. Admin only.
func (s *ClearanceService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "clearance request not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete clearance request")
	}
	return nil
}
