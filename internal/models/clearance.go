package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

// DecisionStatus is a department's verdict on a clearance request.
type DecisionStatus string

// The three recognised decision states. Departments may not record
// anything outside this set.
const (
	DecisionPending  DecisionStatus = "Pending"
	DecisionApproved DecisionStatus = "Approved"
	DecisionRejected DecisionStatus = "Rejected"
)

// Valid reports whether the status is one of the recognised values.
func (s DecisionStatus) Valid() bool {
	switch s {
	case DecisionPending, DecisionApproved, DecisionRejected:
		return true
	}
	return false
}

// DefaultDepartments is the university's standard clearance circuit, used
// when a request does not name its own department list.
var DefaultDepartments = []string{"Finance", "Library", "Registrar", "SportsWelfare", "Dean", "Department"}

// DepartmentDecision records one department's verdict for one request.
type DepartmentDecision struct {
	Status    DecisionStatus `json:"status"`
	Remarks   string         `json:"remarks"`
	StaffName string         `json:"staffName,omitempty"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// ClearanceMap holds the per-department decisions keyed by literal
// department name. Persisted as JSONB.
type ClearanceMap map[string]DepartmentDecision

// Value implements driver.Valuer.
func (m ClearanceMap) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *ClearanceMap) Scan(src interface{}) error {
	if src == nil {
		*m = ClearanceMap{}
		return nil
	}
	raw, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("clearance map: unsupported scan type %T", src)
	}
	return json.Unmarshal(raw, m)
}

// ClearanceSettings carries the student's notification preferences.
type ClearanceSettings struct {
	EmailAlerts bool `json:"emailAlerts"`
	SMSAlerts   bool `json:"smsAlerts"`
}

// Value implements driver.Valuer.
func (s ClearanceSettings) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner.
func (s *ClearanceSettings) Scan(src interface{}) error {
	if src == nil {
		*s = ClearanceSettings{EmailAlerts: true, SMSAlerts: true}
		return nil
	}
	raw, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("clearance settings: unsupported scan type %T", src)
	}
	return json.Unmarshal(raw, s)
}

// GownDetails is set once regalia has been booked for the request.
type GownDetails struct {
	Type string `json:"type"`
	Size string `json:"size"`
}

// Value implements driver.Valuer.
func (g *GownDetails) Value() (driver.Value, error) {
	if g == nil {
		return nil, nil
	}
	return json.Marshal(g)
}

// Scan implements sql.Scanner.
func (g *GownDetails) Scan(src interface{}) error {
	raw, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("gown details: unsupported scan type %T", src)
	}
	return json.Unmarshal(raw, g)
}

// ClearanceRequest is a student's graduation sign-off case, tracked until
// every required department approves.
type ClearanceRequest struct {
	ID            string            `db:"id" json:"id"`
	StudentID     string            `db:"student_id" json:"studentId"`
	RegNo         string            `db:"reg_no" json:"regNo"`
	Name          string            `db:"name" json:"name"`
	Email         *string           `db:"email" json:"email,omitempty"`
	Phone         *string           `db:"phone" json:"phone,omitempty"`
	Departments   pq.StringArray    `db:"departments" json:"departments"`
	Clearance     ClearanceMap      `db:"clearance" json:"clearance"`
	OverallStatus DecisionStatus    `db:"overall_status" json:"overallStatus"`
	Settings      ClearanceSettings `db:"settings" json:"settings"`
	Files         pq.StringArray    `db:"files" json:"files"`
	GownIssued    bool              `db:"gown_issued" json:"gownIssued"`
	GownDetails   *GownDetails      `db:"gown_details" json:"gownDetails,omitempty"`
	CreatedAt     time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time         `db:"updated_at" json:"updatedAt"`
}

// StudentIDFromRegNo converts a registration number into its storable
// student identifier. Registration numbers carry slashes, which are not
// safe as path or key segments.
func StudentIDFromRegNo(regNo string) string {
	return strings.ReplaceAll(regNo, "/", "-")
}

// RequestFilter constrains clearance request listings.
type RequestFilter struct {
	StudentID string
	Status    DecisionStatus
}

// OverallStatus derives the request-level status from a clearance map.
// All departments approved wins; a single rejection anywhere overrides any
// number of approvals; otherwise the request is still pending.
func OverallStatus(clearance ClearanceMap) DecisionStatus {
	if len(clearance) == 0 {
		return DecisionPending
	}
	allApproved := true
	for _, decision := range clearance {
		switch decision.Status {
		case DecisionRejected:
			return DecisionRejected
		case DecisionApproved:
		default:
			allApproved = false
		}
	}
	if allApproved {
		return DecisionApproved
	}
	return DecisionPending
}
