package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/dekut-devs/clearance-api/internal/models"
)

// SettingsRepository persists the single system settings document.
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository constructs the repository.
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the settings row. Callers treat sql.ErrNoRows as "not yet
// saved" and fall back to defaults.
func (r *SettingsRepository) Get(ctx context.Context) (*models.SystemSettings, error) {
	const query = `SELECT maintenance_mode, allow_registration, academic_year, updated_at FROM system_settings WHERE id = 1`
	var settings models.SystemSettings
	if err := r.db.GetContext(ctx, &settings, query); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Upsert writes the settings document, creating it on first save.
func (r *SettingsRepository) Upsert(ctx context.Context, settings models.SystemSettings) error {
	const query = `INSERT INTO system_settings (id, maintenance_mode, allow_registration, academic_year, updated_at)
        VALUES (1, $1, $2, $3, $4)
        ON CONFLICT (id) DO UPDATE SET
            maintenance_mode = EXCLUDED.maintenance_mode,
            allow_registration = EXCLUDED.allow_registration,
            academic_year = EXCLUDED.academic_year,
            updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, settings.MaintenanceMode, settings.AllowRegistration, settings.AcademicYear, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert system settings: %w", err)
	}
	return nil
}
