package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/dekut-devs/clearance-api/internal/models"
	appErrors "github.com/dekut-devs/clearance-api/pkg/errors"
	"github.com/dekut-devs/clearance-api/pkg/export"
)

type exportRequestSource interface {
	List(ctx context.Context, filter models.RequestFilter) ([]models.ClearanceRequest, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportService renders administrative report downloads.
type ExportService struct {
	requests exportRequestSource
	csv      csvRenderer
	logger   *zap.Logger
}

// NewExportService constructs the export service.
func NewExportService(requests exportRequestSource, csv csvRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{requests: requests, csv: csv, logger: logger}
}

// ClearanceCSV renders all clearance requests matching the filter as a
// CSV report with one column per standard department.
func (s *ExportService) ClearanceCSV(ctx context.Context, filter models.RequestFilter) ([]byte, error) {
	requests, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	headers := []string{"Reg No", "Name", "Overall Status"}
	headers = append(headers, models.DefaultDepartments...)
	headers = append(headers, "Updated At")

	rows := make([]map[string]string, 0, len(requests))
	for _, request := range requests {
		row := map[string]string{
			"Reg No":         request.RegNo,
			"Name":           request.Name,
			"Overall Status": string(request.OverallStatus),
			"Updated At":     request.UpdatedAt.Format("2006-01-02 15:04"),
		}
		for _, dept := range models.DefaultDepartments {
			if decision, ok := request.Clearance[dept]; ok {
				row[dept] = string(decision.Status)
			}
		}
		rows = append(rows, row)
	}

	data, err := s.csv.Render(export.Dataset{Headers: headers, Rows: rows})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render clearance export")
	}
	return data, nil
}
