package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekut-devs/clearance-api/internal/models"
	"github.com/dekut-devs/clearance-api/pkg/export"
)

type mockExportSource struct {
	requests []models.ClearanceRequest
}

func (m *mockExportSource) List(ctx context.Context, filter models.RequestFilter) ([]models.ClearanceRequest, error) {
	return m.requests, nil
}

type capturingCSV struct {
	dataset export.Dataset
}

func (c *capturingCSV) Render(data export.Dataset) ([]byte, error) {
	c.dataset = data
	return []byte("csv"), nil
}

func TestClearanceCSVLayout(t *testing.T) {
	source := &mockExportSource{requests: []models.ClearanceRequest{{
		RegNo: "C026/01/0001/2021",
		Name:  "Jane Wanjiku",
		Clearance: models.ClearanceMap{
			"Finance": {Status: models.DecisionApproved},
			"Library": {Status: models.DecisionRejected},
		},
		OverallStatus: models.DecisionRejected,
		UpdatedAt:     time.Date(2026, 8, 31, 10, 30, 0, 0, time.UTC),
	}}}
	csv := &capturingCSV{}
	svc := NewExportService(source, csv, nil)

	data, err := svc.ClearanceCSV(context.Background(), models.RequestFilter{})
	require.NoError(t, err)
	assert.Equal(t, []byte("csv"), data)

	assert.Equal(t, "Reg No", csv.dataset.Headers[0])
	assert.Contains(t, csv.dataset.Headers, "Finance")
	assert.Equal(t, "Updated At", csv.dataset.Headers[len(csv.dataset.Headers)-1])

	require.Len(t, csv.dataset.Rows, 1)
	row := csv.dataset.Rows[0]
	assert.Equal(t, "C026/01/0001/2021", row["Reg No"])
	assert.Equal(t, "Rejected", row["Overall Status"])
	assert.Equal(t, "Approved", row["Finance"])
	assert.Equal(t, "Rejected", row["Library"])
	assert.Equal(t, "2026-08-31 10:30", row["Updated At"])
}
