package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dekut-devs/clearance-api/internal/models"
	appErrors "github.com/dekut-devs/clearance-api/pkg/errors"
	"github.com/dekut-devs/clearance-api/pkg/export"
)

type certificateRenderer interface {
	Render(data export.CertificateData) ([]byte, error)
}

type certificateRequestSource interface {
	Get(ctx context.Context, id string) (*models.ClearanceRequest, error)
}

type academicYearSource interface {
	Get(ctx context.Context) (models.SystemSettings, error)
}

// CertificateService issues clearance certificates for fully approved
// requests.
type CertificateService struct {
	requests certificateRequestSource
	settings academicYearSource
	renderer certificateRenderer
	logger   *zap.Logger
}

// NewCertificateService constructs the certificate service.
func NewCertificateService(requests certificateRequestSource, settings academicYearSource, renderer certificateRenderer, logger *zap.Logger) *CertificateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CertificateService{requests: requests, settings: settings, renderer: renderer, logger: logger}
}

// Issue renders the clearance certificate PDF. Only requests whose overall
// status is Approved qualify.
func (s *CertificateService) Issue(ctx context.Context, requestID string) ([]byte, error) {
	request, err := s.requests.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.OverallStatus != models.DecisionApproved {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "clearance is not yet fully approved")
	}

	academicYear := ""
	if s.settings != nil {
		if settings, err := s.settings.Get(ctx); err == nil {
			academicYear = settings.AcademicYear
		}
	}

	pdf, err := s.renderer.Render(export.CertificateData{
		StudentName:  request.Name,
		RegNo:        request.RegNo,
		Departments:  request.Departments,
		AcademicYear: academicYear,
		IssuedAt:     time.Now().UTC(),
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render certificate")
	}
	return pdf, nil
}
