package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/dekut-devs/clearance-api/internal/models"
)

// StudentRepository reads registry student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByID returns the registry record for a sanitised registration number.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	const query = `SELECT id, reg_no, name, email, phone, department, password_hash, created_at FROM students WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}
