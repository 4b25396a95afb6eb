package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dekut-devs/clearance-api/internal/models"
	"github.com/dekut-devs/clearance-api/internal/repository"
	appErrors "github.com/dekut-devs/clearance-api/pkg/errors"
)

type mockClearanceRepo struct {
	byID      map[string]*models.ClearanceRequest
	byRegNo   map[string]*models.ClearanceRequest
	insertErr error
	inserted  int

	// hideRegNoOnce makes the first FindByRegNo miss, simulating a
	// concurrent creator landing between the lookup and the insert.
	hideRegNoOnce bool
	regNoLookups  int
}

func newMockClearanceRepo() *mockClearanceRepo {
	return &mockClearanceRepo{
		byID:    make(map[string]*models.ClearanceRequest),
		byRegNo: make(map[string]*models.ClearanceRequest),
	}
}

func (m *mockClearanceRepo) add(request *models.ClearanceRequest) {
	m.byID[request.ID] = request
	m.byRegNo[request.RegNo] = request
}

func (m *mockClearanceRepo) Insert(ctx context.Context, request *models.ClearanceRequest) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	if request.ID == "" {
		request.ID = "req-" + request.RegNo
	}
	request.CreatedAt = time.Now().UTC()
	request.UpdatedAt = request.CreatedAt
	m.inserted++
	m.add(request)
	return nil
}

func (m *mockClearanceRepo) FindByID(ctx context.Context, id string) (*models.ClearanceRequest, error) {
	if request, ok := m.byID[id]; ok {
		return request, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockClearanceRepo) FindByRegNo(ctx context.Context, regNo string) (*models.ClearanceRequest, error) {
	m.regNoLookups++
	if m.hideRegNoOnce && m.regNoLookups == 1 {
		return nil, sql.ErrNoRows
	}
	if request, ok := m.byRegNo[regNo]; ok {
		return request, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockClearanceRepo) List(ctx context.Context, filter models.RequestFilter) ([]models.ClearanceRequest, error) {
	requests := make([]models.ClearanceRequest, 0, len(m.byID))
	for _, request := range m.byID {
		if filter.StudentID != "" && request.StudentID != filter.StudentID {
			continue
		}
		if filter.Status != "" && request.OverallStatus != filter.Status {
			continue
		}
		requests = append(requests, *request)
	}
	return requests, nil
}

func (m *mockClearanceRepo) ApplyDecision(ctx context.Context, id, department string, decision models.DepartmentDecision) (*models.ClearanceRequest, models.DecisionStatus, error) {
	request, ok := m.byID[id]
	if !ok {
		return nil, "", sql.ErrNoRows
	}
	if _, ok := request.Clearance[department]; !ok {
		return nil, "", repository.ErrUnknownDepartment
	}
	previous := request.OverallStatus
	request.Clearance[department] = decision
	request.OverallStatus = models.OverallStatus(request.Clearance)
	request.UpdatedAt = time.Now().UTC()
	return request, previous, nil
}

func (m *mockClearanceRepo) UpdateAlertSettings(ctx context.Context, id string, settings models.ClearanceSettings) error {
	request, ok := m.byID[id]
	if !ok {
		return sql.ErrNoRows
	}
	request.Settings = settings
	return nil
}

func (m *mockClearanceRepo) AppendFile(ctx context.Context, id, path string) error {
	request, ok := m.byID[id]
	if !ok {
		return sql.ErrNoRows
	}
	request.Files = append(request.Files, path)
	return nil
}

func (m *mockClearanceRepo) Delete(ctx context.Context, id string) error {
	request, ok := m.byID[id]
	if !ok {
		return sql.ErrNoRows
	}
	delete(m.byID, id)
	delete(m.byRegNo, request.RegNo)
	return nil
}

type mockNotifier struct {
	started      []string
	decisions    []string
	fullyCleared []string
}

func (m *mockNotifier) RequestStarted(request *models.ClearanceRequest) {
	m.started = append(m.started, request.RegNo)
}

func (m *mockNotifier) DecisionRecorded(request *models.ClearanceRequest, department string, decision models.DepartmentDecision) {
	m.decisions = append(m.decisions, department+":"+string(decision.Status))
}

func (m *mockNotifier) FullyCleared(request *models.ClearanceRequest) {
	m.fullyCleared = append(m.fullyCleared, request.RegNo)
}

func newClearanceService(repo *mockClearanceRepo, notifier *mockNotifier) *ClearanceService {
	return NewClearanceService(repo, notifier, validator.New(), zap.NewNop())
}

func TestClearanceServiceCreateNewRequest(t *testing.T) {
	repo := newMockClearanceRepo()
	notifier := &mockNotifier{}
	svc := newClearanceService(repo, notifier)

	request, created, err := svc.Create(context.Background(), CreateRequestPayload{
		RegNo: "C026/01/0001/2021",
		Name:  "Jane Wanjiku",
		Email: "jane@students.dekut.ac.ke",
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "C026-01-0001-2021", request.StudentID)
	assert.Equal(t, models.DecisionPending, request.OverallStatus)
	assert.ElementsMatch(t, models.DefaultDepartments, []string(request.Departments))
	assert.Len(t, request.Clearance, len(models.DefaultDepartments))
	for dept, decision := range request.Clearance {
		assert.Equal(t, models.DecisionPending, decision.Status, dept)
	}
	assert.True(t, request.Settings.EmailAlerts)
	assert.Equal(t, []string{"C026/01/0001/2021"}, notifier.started)
}

func TestClearanceServiceCreateIsIdempotent(t *testing.T) {
	repo := newMockClearanceRepo()
	notifier := &mockNotifier{}
	svc := newClearanceService(repo, notifier)

	first, created, err := svc.Create(context.Background(), CreateRequestPayload{RegNo: "reg-1", Name: "Jane"})
	require.NoError(t, err)
	require.True(t, created)
	firstUpdatedAt := first.UpdatedAt

	second, created, err := svc.Create(context.Background(), CreateRequestPayload{RegNo: "reg-1", Name: "Someone Else"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Jane", second.Name)
	assert.Equal(t, firstUpdatedAt, second.UpdatedAt)
	assert.Equal(t, 1, repo.inserted)
	assert.Len(t, notifier.started, 1)
}

func TestClearanceServiceCreateCustomDepartments(t *testing.T) {
	repo := newMockClearanceRepo()
	svc := newClearanceService(repo, &mockNotifier{})

	request, created, err := svc.Create(context.Background(), CreateRequestPayload{
		RegNo:       "reg-2",
		Name:        "Jane",
		Departments: []string{"Finance", "Library"},
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Len(t, request.Clearance, 2)
	assert.Contains(t, request.Clearance, "Finance")
	assert.Contains(t, request.Clearance, "Library")
}

func TestClearanceServiceCreateValidation(t *testing.T) {
	svc := newClearanceService(newMockClearanceRepo(), &mockNotifier{})

	_, _, err := svc.Create(context.Background(), CreateRequestPayload{RegNo: "reg-3"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestClearanceServiceCreateRestoresOnUniqueViolation(t *testing.T) {
	repo := newMockClearanceRepo()
	notifier := &mockNotifier{}
	svc := newClearanceService(repo, notifier)

	// Another creator won the race between lookup and insert.
	existing := &models.ClearanceRequest{ID: "req-x", RegNo: "reg-4", Name: "Jane"}
	repo.add(existing)
	repo.hideRegNoOnce = true
	repo.insertErr = &pq.Error{Code: "23505"}

	request, created, err := svc.Create(context.Background(), CreateRequestPayload{RegNo: "reg-4", Name: "Jane"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "req-x", request.ID)
	assert.Equal(t, 2, repo.regNoLookups)
	assert.Empty(t, notifier.started)
}

func TestClearanceServiceApplyDecisionRoundTrip(t *testing.T) {
	repo := newMockClearanceRepo()
	notifier := &mockNotifier{}
	svc := newClearanceService(repo, notifier)

	request, _, err := svc.Create(context.Background(), CreateRequestPayload{
		RegNo:       "reg-5",
		Name:        "Jane",
		Departments: []string{"Finance", "Library", "Registrar"},
	})
	require.NoError(t, err)

	updated, err := svc.ApplyDecision(context.Background(), request.ID, "Finance", DecisionPayload{
		Status:    models.DecisionApproved,
		Remarks:   "ok",
		StaffName: "Mr. Kamau",
	})
	require.NoError(t, err)
	assert.Equal(t, models.DecisionApproved, updated.Clearance["Finance"].Status)
	assert.Equal(t, "ok", updated.Clearance["Finance"].Remarks)
	assert.Equal(t, "Mr. Kamau", updated.Clearance["Finance"].StaffName)
	assert.Equal(t, models.DecisionPending, updated.OverallStatus)

	fetched, err := svc.Get(context.Background(), request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DecisionApproved, fetched.Clearance["Finance"].Status)
	assert.Equal(t, "ok", fetched.Clearance["Finance"].Remarks)
}

func TestClearanceServiceApplyDecisionAggregation(t *testing.T) {
	repo := newMockClearanceRepo()
	svc := newClearanceService(repo, &mockNotifier{})

	request, _, err := svc.Create(context.Background(), CreateRequestPayload{
		RegNo:       "reg-6",
		Name:        "Jane",
		Departments: []string{"Finance", "Library"},
	})
	require.NoError(t, err)

	updated, err := svc.ApplyDecision(context.Background(), request.ID, "Finance", DecisionPayload{Status: models.DecisionApproved})
	require.NoError(t, err)
	assert.Equal(t, models.DecisionPending, updated.OverallStatus)

	updated, err = svc.ApplyDecision(context.Background(), request.ID, "Library", DecisionPayload{Status: models.DecisionRejected, Remarks: "unreturned books"})
	require.NoError(t, err)
	assert.Equal(t, models.DecisionRejected, updated.OverallStatus)

	updated, err = svc.ApplyDecision(context.Background(), request.ID, "Library", DecisionPayload{Status: models.DecisionApproved})
	require.NoError(t, err)
	assert.Equal(t, models.DecisionApproved, updated.OverallStatus)
}

func TestClearanceServiceApplyDecisionUnknownDepartment(t *testing.T) {
	repo := newMockClearanceRepo()
	svc := newClearanceService(repo, &mockNotifier{})

	request, _, err := svc.Create(context.Background(), CreateRequestPayload{
		RegNo:       "reg-7",
		Name:        "Jane",
		Departments: []string{"Finance"},
	})
	require.NoError(t, err)
	before := request.Clearance["Finance"]

	_, err = svc.ApplyDecision(context.Background(), request.ID, "Catering", DecisionPayload{Status: models.DecisionApproved})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	fetched, err := svc.Get(context.Background(), request.ID)
	require.NoError(t, err)
	assert.Equal(t, before, fetched.Clearance["Finance"])
	assert.NotContains(t, fetched.Clearance, "Catering")
}

func TestClearanceServiceApplyDecisionInvalidStatus(t *testing.T) {
	svc := newClearanceService(newMockClearanceRepo(), &mockNotifier{})

	_, err := svc.ApplyDecision(context.Background(), "req-1", "Finance", DecisionPayload{Status: "Done"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestClearanceServiceApplyDecisionNotFound(t *testing.T) {
	svc := newClearanceService(newMockClearanceRepo(), &mockNotifier{})

	_, err := svc.ApplyDecision(context.Background(), "missing", "Finance", DecisionPayload{Status: models.DecisionApproved})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestClearanceServiceFullyClearedFiredOnce(t *testing.T) {
	repo := newMockClearanceRepo()
	notifier := &mockNotifier{}
	svc := newClearanceService(repo, notifier)

	request, _, err := svc.Create(context.Background(), CreateRequestPayload{
		RegNo:       "reg-8",
		Name:        "Jane",
		Departments: []string{"Finance", "Library"},
	})
	require.NoError(t, err)

	_, err = svc.ApplyDecision(context.Background(), request.ID, "Finance", DecisionPayload{Status: models.DecisionApproved})
	require.NoError(t, err)
	assert.Empty(t, notifier.fullyCleared)

	_, err = svc.ApplyDecision(context.Background(), request.ID, "Library", DecisionPayload{Status: models.DecisionApproved})
	require.NoError(t, err)
	assert.Equal(t, []string{"reg-8"}, notifier.fullyCleared)

	// Re-approving while already cleared stays quiet.
	_, err = svc.ApplyDecision(context.Background(), request.ID, "Finance", DecisionPayload{Status: models.DecisionApproved})
	require.NoError(t, err)
	assert.Len(t, notifier.fullyCleared, 1)
	assert.Len(t, notifier.decisions, 3)
}

func TestClearanceServiceUpdateAlertSettings(t *testing.T) {
	repo := newMockClearanceRepo()
	svc := newClearanceService(repo, &mockNotifier{})

	request, _, err := svc.Create(context.Background(), CreateRequestPayload{RegNo: "reg-9", Name: "Jane"})
	require.NoError(t, err)

	require.NoError(t, svc.UpdateAlertSettings(context.Background(), request.ID, AlertSettingsPayload{EmailAlerts: false, SMSAlerts: true}))
	fetched, err := svc.Get(context.Background(), request.ID)
	require.NoError(t, err)
	assert.False(t, fetched.Settings.EmailAlerts)
	assert.True(t, fetched.Settings.SMSAlerts)

	err = svc.UpdateAlertSettings(context.Background(), "missing", AlertSettingsPayload{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestClearanceServiceDelete(t *testing.T) {
	repo := newMockClearanceRepo()
	svc := newClearanceService(repo, &mockNotifier{})

	request, _, err := svc.Create(context.Background(), CreateRequestPayload{RegNo: "reg-10", Name: "Jane"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), request.ID))
	_, err = svc.Get(context.Background(), request.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestClearanceServiceListFilters(t *testing.T) {
	repo := newMockClearanceRepo()
	svc := newClearanceService(repo, &mockNotifier{})

	_, _, err := svc.Create(context.Background(), CreateRequestPayload{RegNo: "reg-11", Name: "Jane"})
	require.NoError(t, err)
	_, _, err = svc.Create(context.Background(), CreateRequestPayload{RegNo: "reg-12", Name: "John"})
	require.NoError(t, err)

	all, err := svc.List(context.Background(), models.RequestFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := svc.List(context.Background(), models.RequestFilter{StudentID: "reg-11"})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = svc.List(context.Background(), models.RequestFilter{Status: "Bogus"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestClearanceServiceInternalErrorPassthrough(t *testing.T) {
	repo := newMockClearanceRepo()
	repo.insertErr = errors.New("connection reset")
	svc := newClearanceService(repo, &mockNotifier{})

	_, _, err := svc.Create(context.Background(), CreateRequestPayload{RegNo: "reg-13", Name: "Jane"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}
