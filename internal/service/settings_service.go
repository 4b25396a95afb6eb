package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/dekut-devs/clearance-api/internal/models"
	appErrors "github.com/dekut-devs/clearance-api/pkg/errors"
)

const settingsCacheKey = "settings:system"

type settingsRepositoryAPI interface {
	Get(ctx context.Context) (*models.SystemSettings, error)
	Upsert(ctx context.Context, settings models.SystemSettings) error
}

type settingsCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// UpdateSettingsPayload carries the administrative configuration document.
type UpdateSettingsPayload struct {
	MaintenanceMode   bool   `json:"maintenanceMode"`
	AllowRegistration bool   `json:"allowRegistration"`
	AcademicYear      string `json:"academicYear" validate:"required"`
}

// SettingsService manages the system settings document.
type SettingsService struct {
	repo      settingsRepositoryAPI
	cache     settingsCache
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSettingsService constructs the settings service. cache may be nil.
func NewSettingsService(repo settingsRepositoryAPI, cache settingsCache, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *SettingsService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{repo: repo, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

// Get returns the current settings, falling back to defaults when the
// document has never been saved.
func (s *SettingsService) Get(ctx context.Context) (models.SystemSettings, error) {
	if s.cache != nil {
		var cached models.SystemSettings
		if err := s.cache.Get(ctx, settingsCacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	settings, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DefaultSystemSettings(), nil
		}
		return models.SystemSettings{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load settings")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, settingsCacheKey, settings, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache settings", zap.Error(err))
		}
	}
	return *settings, nil
}

// Update saves the settings document and drops the cached copy.
func (s *SettingsService) Update(ctx context.Context, payload UpdateSettingsPayload) (models.SystemSettings, error) {
	if err := s.validator.Struct(payload); err != nil {
		return models.SystemSettings{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid settings payload")
	}

	settings := models.SystemSettings{
		MaintenanceMode:   payload.MaintenanceMode,
		AllowRegistration: payload.AllowRegistration,
		AcademicYear:      payload.AcademicYear,
		UpdatedAt:         time.Now().UTC(),
	}
	if err := s.repo.Upsert(ctx, settings); err != nil {
		return models.SystemSettings{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save settings")
	}

	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, settingsCacheKey); err != nil {
			s.logger.Warn("failed to invalidate settings cache", zap.Error(err))
		}
	}
	return settings, nil
}

// MaintenanceMode reports whether the student portal is closed. Lookup
// failures fail open so an unreachable settings row never locks students
// out.
func (s *SettingsService) MaintenanceMode(ctx context.Context) bool {
	settings, err := s.Get(ctx)
	if err != nil {
		s.logger.Warn("maintenance check failed", zap.Error(err))
		return false
	}
	return settings.MaintenanceMode
}
