package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekut-devs/clearance-api/internal/models"
	appErrors "github.com/dekut-devs/clearance-api/pkg/errors"
)

type mockSettingsRepo struct {
	stored  *models.SystemSettings
	getErr  error
	upserts int
}

func (m *mockSettingsRepo) Get(ctx context.Context) (*models.SystemSettings, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.stored, nil
}

func (m *mockSettingsRepo) Upsert(ctx context.Context, settings models.SystemSettings) error {
	m.upserts++
	m.stored = &settings
	return nil
}

type mockSettingsCache struct {
	entries map[string]models.SystemSettings
	deleted []string
	sets    int
}

func newMockSettingsCache() *mockSettingsCache {
	return &mockSettingsCache{entries: map[string]models.SystemSettings{}}
}

func (m *mockSettingsCache) Get(ctx context.Context, key string, dest interface{}) error {
	cached, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	*dest.(*models.SystemSettings) = cached
	return nil
}

func (m *mockSettingsCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.sets++
	switch v := value.(type) {
	case *models.SystemSettings:
		m.entries[key] = *v
	case models.SystemSettings:
		m.entries[key] = v
	}
	return nil
}

func (m *mockSettingsCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.deleted = append(m.deleted, pattern)
	for key := range m.entries {
		delete(m.entries, key)
	}
	return nil
}

func TestSettingsGetDefaultsWhenUnsaved(t *testing.T) {
	repo := &mockSettingsRepo{getErr: sql.ErrNoRows}
	svc := NewSettingsService(repo, nil, 0, nil, nil)

	settings, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.False(t, settings.MaintenanceMode)
	assert.True(t, settings.AllowRegistration)
	assert.Equal(t, models.DefaultSystemSettings().AcademicYear, settings.AcademicYear)
}

func TestSettingsGetCachesResult(t *testing.T) {
	repo := &mockSettingsRepo{stored: &models.SystemSettings{AcademicYear: "2025/2026"}}
	cache := newMockSettingsCache()
	svc := NewSettingsService(repo, cache, time.Minute, nil, nil)

	first, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2025/2026", first.AcademicYear)
	assert.Equal(t, 1, cache.sets)

	// Served from cache even after the repo starts failing.
	repo.getErr = errors.New("db gone")
	second, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2025/2026", second.AcademicYear)
}

func TestSettingsUpdateInvalidatesCache(t *testing.T) {
	repo := &mockSettingsRepo{}
	cache := newMockSettingsCache()
	cache.entries["settings:system"] = models.SystemSettings{AcademicYear: "2024/2025"}
	svc := NewSettingsService(repo, cache, time.Minute, nil, nil)

	updated, err := svc.Update(context.Background(), UpdateSettingsPayload{
		MaintenanceMode: true,
		AcademicYear:    "2025/2026",
	})
	require.NoError(t, err)
	assert.True(t, updated.MaintenanceMode)
	assert.Equal(t, 1, repo.upserts)
	assert.Equal(t, []string{"settings:system"}, cache.deleted)
	assert.Empty(t, cache.entries)
}

func TestSettingsUpdateRequiresAcademicYear(t *testing.T) {
	svc := NewSettingsService(&mockSettingsRepo{}, nil, 0, nil, nil)

	_, err := svc.Update(context.Background(), UpdateSettingsPayload{MaintenanceMode: true})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestMaintenanceModeFailsOpen(t *testing.T) {
	repo := &mockSettingsRepo{getErr: errors.New("db gone")}
	svc := NewSettingsService(repo, nil, 0, nil, nil)

	assert.False(t, svc.MaintenanceMode(context.Background()))

	repo.getErr = nil
	repo.stored = &models.SystemSettings{MaintenanceMode: true, AcademicYear: "2025/2026"}
	assert.True(t, svc.MaintenanceMode(context.Background()))
}
