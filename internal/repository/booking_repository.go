package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dekut-devs/clearance-api/internal/models"
)

const bookingColumns = `id, request_id, student_id, gown_type, gown_size, amount, currency,
        payment_ref, status, fine, created_at, updated_at`

// BookingRepository handles persistence of gown bookings.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository constructs the repository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Insert persists a new booking record.
func (r *BookingRepository) Insert(ctx context.Context, booking *models.GownBooking) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = now
	}
	booking.UpdatedAt = now
	const query = `INSERT INTO gown_bookings
        (id, request_id, student_id, gown_type, gown_size, amount, currency, payment_ref, status, fine, created_at, updated_at)
        VALUES (:id, :request_id, :student_id, :gown_type, :gown_size, :amount, :currency, :payment_ref, :status, :fine, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, booking); err != nil {
		return fmt.Errorf("insert gown booking: %w", err)
	}
	return nil
}

// FindByID returns a booking by its ID.
func (r *BookingRepository) FindByID(ctx context.Context, id string) (*models.GownBooking, error) {
	query := fmt.Sprintf(`SELECT %s FROM gown_bookings WHERE id = $1`, bookingColumns)
	var booking models.GownBooking
	if err := r.db.GetContext(ctx, &booking, query, id); err != nil {
		return nil, err
	}
	return &booking, nil
}

// List returns bookings newest first, optionally filtered.
func (r *BookingRepository) List(ctx context.Context, filter models.BookingFilter) ([]models.GownBooking, error) {
	query := fmt.Sprintf(`SELECT %s FROM gown_bookings`, bookingColumns)
	var args []interface{}
	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		query += fmt.Sprintf(" WHERE student_id = $%d", len(args))
	}
	if filter.RequestID != "" {
		if len(args) == 0 {
			query += " WHERE"
		} else {
			query += " AND"
		}
		args = append(args, filter.RequestID)
		query += fmt.Sprintf(" request_id = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	var bookings []models.GownBooking
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, fmt.Errorf("list gown bookings: %w", err)
	}
	return bookings, nil
}

// UpdateStatusAndFine writes the derived status and fine state together.
func (r *BookingRepository) UpdateStatusAndFine(ctx context.Context, id string, status models.BookingStatus, fine *models.Fine) error {
	const query = `UPDATE gown_bookings SET status = $2, fine = $3, updated_at = $4 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, status, fine, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update gown booking: %w", err)
	}
	return requireRow(result)
}
