package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekut-devs/clearance-api/internal/models"
)

func newClearanceRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var clearanceTestColumns = []string{
	"id", "student_id", "reg_no", "name", "email", "phone", "departments", "clearance",
	"overall_status", "settings", "files", "gown_issued", "gown_details", "created_at", "updated_at",
}

func clearanceRow(t *testing.T, id string, clearance models.ClearanceMap, overall models.DecisionStatus) []driver.Value {
	t.Helper()
	clearanceJSON, err := json.Marshal(clearance)
	require.NoError(t, err)
	settingsJSON, err := json.Marshal(models.ClearanceSettings{EmailAlerts: true, SMSAlerts: true})
	require.NoError(t, err)
	now := time.Now().UTC()
	return []driver.Value{
		id, "stu-1", "C026/01/0001/2021", "Jane Wanjiku", nil, nil,
		[]byte(`{Finance,Library}`), clearanceJSON, string(overall), settingsJSON,
		[]byte(`{}`), false, nil, now, now,
	}
}

func TestClearanceRepositoryInsert(t *testing.T) {
	db, mock, cleanup := newClearanceRepoMock(t)
	defer cleanup()

	repo := NewClearanceRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO clearance_requests")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	request := &models.ClearanceRequest{
		StudentID:     "stu-1",
		RegNo:         "C026/01/0001/2021",
		Name:          "Jane Wanjiku",
		Departments:   pq.StringArray{"Finance", "Library"},
		Clearance:     models.ClearanceMap{"Finance": {Status: models.DecisionPending}},
		OverallStatus: models.DecisionPending,
		Settings:      models.ClearanceSettings{EmailAlerts: true, SMSAlerts: true},
		Files:         pq.StringArray{},
	}
	require.NoError(t, repo.Insert(context.Background(), request))
	assert.NotEmpty(t, request.ID)
	assert.False(t, request.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClearanceRepositoryInsertUniqueViolation(t *testing.T) {
	db, mock, cleanup := newClearanceRepoMock(t)
	defer cleanup()

	repo := NewClearanceRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO clearance_requests")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "clearance_requests_reg_no_key"})

	err := repo.Insert(context.Background(), &models.ClearanceRequest{
		RegNo: "C026/01/0001/2021",
		Name:  "Jane Wanjiku",
	})
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClearanceRepositoryFindByRegNo(t *testing.T) {
	db, mock, cleanup := newClearanceRepoMock(t)
	defer cleanup()

	repo := NewClearanceRepository(db)
	clearance := models.ClearanceMap{
		"Finance": {Status: models.DecisionApproved, Remarks: "ok"},
		"Library": {Status: models.DecisionPending},
	}
	rows := sqlmock.NewRows(clearanceTestColumns).
		AddRow(clearanceRow(t, "req-1", clearance, models.DecisionPending)...)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE reg_no = $1")).
		WithArgs("C026/01/0001/2021").
		WillReturnRows(rows)

	found, err := repo.FindByRegNo(context.Background(), "C026/01/0001/2021")
	require.NoError(t, err)
	assert.Equal(t, "req-1", found.ID)
	assert.Equal(t, models.DecisionApproved, found.Clearance["Finance"].Status)
	assert.Equal(t, "ok", found.Clearance["Finance"].Remarks)
	assert.Equal(t, pq.StringArray{"Finance", "Library"}, found.Departments)
	assert.True(t, found.Settings.EmailAlerts)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClearanceRepositoryFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newClearanceRepoMock(t)
	defer cleanup()

	repo := NewClearanceRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClearanceRepositoryApplyDecisionRecomputesOverall(t *testing.T) {
	db, mock, cleanup := newClearanceRepoMock(t)
	defer cleanup()

	repo := NewClearanceRepository(db)
	clearance := models.ClearanceMap{
		"Finance": {Status: models.DecisionApproved},
		"Library": {Status: models.DecisionPending},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("req-1").
		WillReturnRows(sqlmock.NewRows(clearanceTestColumns).
			AddRow(clearanceRow(t, "req-1", clearance, models.DecisionPending)...))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE clearance_requests SET clearance = $2, overall_status = $3, updated_at = $4 WHERE id = $1")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	updated, previous, err := repo.ApplyDecision(context.Background(), "req-1", "Library", models.DepartmentDecision{
		Status:    models.DecisionApproved,
		Remarks:   "all books returned",
		UpdatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.Equal(t, models.DecisionPending, previous)
	assert.Equal(t, models.DecisionApproved, updated.OverallStatus)
	assert.Equal(t, "all books returned", updated.Clearance["Library"].Remarks)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClearanceRepositoryApplyDecisionUnknownDepartment(t *testing.T) {
	db, mock, cleanup := newClearanceRepoMock(t)
	defer cleanup()

	repo := NewClearanceRepository(db)
	clearance := models.ClearanceMap{"Finance": {Status: models.DecisionPending}}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("req-1").
		WillReturnRows(sqlmock.NewRows(clearanceTestColumns).
			AddRow(clearanceRow(t, "req-1", clearance, models.DecisionPending)...))
	mock.ExpectRollback()

	_, _, err := repo.ApplyDecision(context.Background(), "req-1", "Catering", models.DepartmentDecision{Status: models.DecisionApproved})
	assert.ErrorIs(t, err, ErrUnknownDepartment)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClearanceRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newClearanceRepoMock(t)
	defer cleanup()

	repo := NewClearanceRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM clearance_requests WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClearanceRepositoryUpdateAlertSettings(t *testing.T) {
	db, mock, cleanup := newClearanceRepoMock(t)
	defer cleanup()

	repo := NewClearanceRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE clearance_requests SET settings = $2")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateAlertSettings(context.Background(), "req-1", models.ClearanceSettings{EmailAlerts: false, SMSAlerts: true})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
