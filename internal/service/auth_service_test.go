package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/dekut-devs/clearance-api/internal/models"
	appErrors "github.com/dekut-devs/clearance-api/pkg/errors"
)

type mockStaffRepo struct {
	staff map[string]*models.Staff
}

func (m *mockStaffRepo) FindByEmail(ctx context.Context, email string) (*models.Staff, error) {
	if staff, ok := m.staff[email]; ok {
		return staff, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStaffRepo) List(ctx context.Context) ([]models.Staff, error) {
	result := make([]models.Staff, 0, len(m.staff))
	for _, staff := range m.staff {
		result = append(result, *staff)
	}
	return result, nil
}

type mockStudentRepo struct {
	students map[string]*models.Student
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if student, ok := m.students[id]; ok {
		return student, nil
	}
	return nil, sql.ErrNoRows
}

type staticMaintenance struct {
	on bool
}

func (s staticMaintenance) MaintenanceMode(ctx context.Context) bool { return s.on }

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func newAuthService(t *testing.T, maintenance bool) *AuthService {
	t.Helper()
	staffRepo := &mockStaffRepo{staff: map[string]*models.Staff{
		"finance@dekut.ac.ke": {
			ID:           "staff-1",
			Name:         "Mr. Kamau",
			Email:        "finance@dekut.ac.ke",
			Department:   "Finance",
			Role:         models.RoleDepartment,
			PasswordHash: hashPassword(t, "secret123"),
		},
	}}
	studentRepo := &mockStudentRepo{students: map[string]*models.Student{
		"C026-01-0001-2021": {
			ID:           "C026-01-0001-2021",
			RegNo:        "C026/01/0001/2021",
			Name:         "Jane Wanjiku",
			PasswordHash: hashPassword(t, "studentpass"),
		},
	}}
	return NewAuthService(staffRepo, studentRepo, staticMaintenance{on: maintenance}, validator.New(), zap.NewNop(), AuthConfig{
		Secret:     "test-secret",
		Expiration: time.Hour,
		Issuer:     "clearance-api",
	})
}

func TestAuthServiceStaffLogin(t *testing.T) {
	svc := newAuthService(t, false)

	result, err := svc.StaffLogin(context.Background(), models.StaffLoginRequest{
		Email:    "finance@dekut.ac.ke",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.Equal(t, models.RoleDepartment, result.Role)
	assert.Equal(t, "Finance", result.Department)

	claims, err := svc.ValidateToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "staff-1", claims.UserID)
	assert.Equal(t, "Finance", claims.Department)
	assert.False(t, claims.Student)
}

func TestAuthServiceStaffLoginWrongPassword(t *testing.T) {
	svc := newAuthService(t, false)

	_, err := svc.StaffLogin(context.Background(), models.StaffLoginRequest{
		Email:    "finance@dekut.ac.ke",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceStaffLoginUnknownEmail(t *testing.T) {
	svc := newAuthService(t, false)

	_, err := svc.StaffLogin(context.Background(), models.StaffLoginRequest{
		Email:    "nobody@dekut.ac.ke",
		Password: "secret123",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceStudentLoginSanitisesRegNo(t *testing.T) {
	svc := newAuthService(t, false)

	result, err := svc.StudentLogin(context.Background(), models.StudentLoginRequest{
		RegNo:    "C026/01/0001/2021",
		Password: "studentpass",
	})
	require.NoError(t, err)
	assert.Equal(t, "C026/01/0001/2021", result.RegNo)

	claims, err := svc.ValidateToken(result.AccessToken)
	require.NoError(t, err)
	assert.True(t, claims.Student)
	assert.Equal(t, "C026-01-0001-2021", claims.UserID)
}

func TestAuthServiceStudentLoginMaintenanceMode(t *testing.T) {
	svc := newAuthService(t, true)

	_, err := svc.StudentLogin(context.Background(), models.StudentLoginRequest{
		RegNo:    "C026/01/0001/2021",
		Password: "studentpass",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrMaintenance.Code, appErr.Code)
	assert.Equal(t, 503, appErr.Status)
}

func TestAuthServiceValidateTokenRejectsGarbage(t *testing.T) {
	svc := newAuthService(t, false)

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceListStaff(t *testing.T) {
	svc := newAuthService(t, false)

	staff, err := svc.ListStaff(context.Background())
	require.NoError(t, err)
	require.Len(t, staff, 1)
	assert.Equal(t, "Mr. Kamau", staff[0].Name)
}
