package models

import "time"

// SystemSettings is the single administrative configuration document.
type SystemSettings struct {
	MaintenanceMode   bool      `db:"maintenance_mode" json:"maintenanceMode"`
	AllowRegistration bool      `db:"allow_registration" json:"allowRegistration"`
	AcademicYear      string    `db:"academic_year" json:"academicYear"`
	UpdatedAt         time.Time `db:"updated_at" json:"updatedAt"`
}

// DefaultSystemSettings mirrors the values assumed before an admin has
// saved the document for the first time.
func DefaultSystemSettings() SystemSettings {
	return SystemSettings{
		MaintenanceMode:   false,
		AllowRegistration: true,
		AcademicYear:      "2024/2025",
	}
}
