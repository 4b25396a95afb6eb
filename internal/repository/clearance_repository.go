package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/dekut-devs/clearance-api/internal/models"
)

const clearanceColumns = `id, student_id, reg_no, name, email, phone, departments, clearance,
        overall_status, settings, files, gown_issued, gown_details, created_at, updated_at`

// ClearanceRepository handles persistence of clearance requests.
type ClearanceRepository struct {
	db *sqlx.DB
}

// NewClearanceRepository constructs the repository.
func NewClearanceRepository(db *sqlx.DB) *ClearanceRepository {
	return &ClearanceRepository{db: db}
}

// ErrUnknownDepartment is returned when a decision names a department the
// request was not created with.
var ErrUnknownDepartment = errors.New("department not part of request")

// IsUniqueViolation reports whether the error is a Postgres unique
// constraint failure. Used to resolve the create/restore race on reg_no.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// Insert persists a new clearance request. The reg_no unique index is the
// final backstop against concurrent duplicate creation.
func (r *ClearanceRepository) Insert(ctx context.Context, request *models.ClearanceRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if request.CreatedAt.IsZero() {
		request.CreatedAt = now
	}
	request.UpdatedAt = now
	const query = `INSERT INTO clearance_requests
        (id, student_id, reg_no, name, email, phone, departments, clearance, overall_status, settings, files, gown_issued, gown_details, created_at, updated_at)
        VALUES (:id, :student_id, :reg_no, :name, :email, :phone, :departments, :clearance, :overall_status, :settings, :files, :gown_issued, :gown_details, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		if IsUniqueViolation(err) {
			return err
		}
		return fmt.Errorf("insert clearance request: %w", err)
	}
	return nil
}

// FindByID returns a clearance request by its ID.
func (r *ClearanceRepository) FindByID(ctx context.Context, id string) (*models.ClearanceRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM clearance_requests WHERE id = $1`, clearanceColumns)
	var request models.ClearanceRequest
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		return nil, err
	}
	return &request, nil
}

// FindByRegNo returns the request holding the unique registration number.
func (r *ClearanceRepository) FindByRegNo(ctx context.Context, regNo string) (*models.ClearanceRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM clearance_requests WHERE reg_no = $1`, clearanceColumns)
	var request models.ClearanceRequest
	if err := r.db.GetContext(ctx, &request, query, regNo); err != nil {
		return nil, err
	}
	return &request, nil
}

// List returns requests newest first, optionally filtered.
func (r *ClearanceRepository) List(ctx context.Context, filter models.RequestFilter) ([]models.ClearanceRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM clearance_requests`, clearanceColumns)
	var args []interface{}
	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		query += fmt.Sprintf(" WHERE student_id = $%d", len(args))
	}
	if filter.Status != "" {
		if len(args) == 0 {
			query += " WHERE"
		} else {
			query += " AND"
		}
		args = append(args, filter.Status)
		query += fmt.Sprintf(" overall_status = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	var requests []models.ClearanceRequest
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, fmt.Errorf("list clearance requests: %w", err)
	}
	return requests, nil
}

// ApplyDecision replaces one department's decision and recomputes the
// overall status inside a single transaction. The row lock guarantees two
// concurrent decisions for different departments both land and the stored
// overall status always reflects the full map. The overall status held
// before the write is returned alongside the updated request so callers
// can detect the transition into full approval.
func (r *ClearanceRepository) ApplyDecision(ctx context.Context, id, department string, decision models.DepartmentDecision) (request *models.ClearanceRequest, previous models.DecisionStatus, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, "", fmt.Errorf("begin decision transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	selectQuery := fmt.Sprintf(`SELECT %s FROM clearance_requests WHERE id = $1 FOR UPDATE`, clearanceColumns)
	var current models.ClearanceRequest
	if err = tx.GetContext(ctx, &current, selectQuery, id); err != nil {
		return nil, "", err
	}

	if _, ok := current.Clearance[department]; !ok {
		err = ErrUnknownDepartment
		return nil, "", err
	}

	previous = current.OverallStatus
	current.Clearance[department] = decision
	current.OverallStatus = models.OverallStatus(current.Clearance)
	current.UpdatedAt = time.Now().UTC()

	const updateQuery = `UPDATE clearance_requests SET clearance = $2, overall_status = $3, updated_at = $4 WHERE id = $1`
	if _, err = tx.ExecContext(ctx, updateQuery, id, current.Clearance, current.OverallStatus, current.UpdatedAt); err != nil {
		return nil, "", fmt.Errorf("update department decision: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, "", fmt.Errorf("commit department decision: %w", err)
	}
	return &current, previous, nil
}

// UpdateAlertSettings stores the student's notification preferences.
func (r *ClearanceRepository) UpdateAlertSettings(ctx context.Context, id string, settings models.ClearanceSettings) error {
	const query = `UPDATE clearance_requests SET settings = $2, updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, settings, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update alert settings: %w", err)
	}
	return requireRow(result)
}

// SetGownDetails marks regalia as booked on the request.
func (r *ClearanceRepository) SetGownDetails(ctx context.Context, id string, details models.GownDetails) error {
	const query = `UPDATE clearance_requests SET gown_issued = TRUE, gown_details = $2, updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, &details, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set gown details: %w", err)
	}
	return requireRow(result)
}

// AppendFile records an uploaded document path against the request.
func (r *ClearanceRepository) AppendFile(ctx context.Context, id, path string) error {
	const query = `UPDATE clearance_requests SET files = array_append(files, $2), updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, path, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("append clearance file: %w", err)
	}
	return requireRow(result)
}

// Delete removes the request record. Bookings are not cascade-deleted.
func (r *ClearanceRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM clearance_requests WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete clearance request: %w", err)
	}
	return requireRow(result)
}

func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
