package models

import "time"

// StaffRole determines what a staff account may do.
type StaffRole string

const (
	RoleAdmin      StaffRole = "ADMIN"
	RoleDepartment StaffRole = "DEPARTMENT"
)

// Staff is a university staff account able to record clearance decisions.
type Staff struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	Department   string    `db:"department" json:"department"`
	Role         StaffRole `db:"role" json:"role"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// Student is a registry record used for portal login. The ID is the
// registration number with path separators sanitised.
type Student struct {
	ID           string    `db:"id" json:"id"`
	RegNo        string    `db:"reg_no" json:"regNo"`
	Name         string    `db:"name" json:"name"`
	Email        *string   `db:"email" json:"email,omitempty"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	Department   string    `db:"department" json:"department"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}
