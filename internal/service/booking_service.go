package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/dekut-devs/clearance-api/internal/models"
	appErrors "github.com/dekut-devs/clearance-api/pkg/errors"
)

type bookingRepositoryAPI interface {
	Insert(ctx context.Context, booking *models.GownBooking) error
	FindByID(ctx context.Context, id string) (*models.GownBooking, error)
	List(ctx context.Context, filter models.BookingFilter) ([]models.GownBooking, error)
	UpdateStatusAndFine(ctx context.Context, id string, status models.BookingStatus, fine *models.Fine) error
}

type bookingRequestResolver interface {
	FindByID(ctx context.Context, id string) (*models.ClearanceRequest, error)
}

// CreateBookingPayload holds the payload for reserving a gown.
type CreateBookingPayload struct {
	RequestID  string  `json:"requestId" validate:"required"`
	StudentID  string  `json:"studentId" validate:"required"`
	GownType   string  `json:"gownType" validate:"required"`
	GownSize   string  `json:"gownSize" validate:"required"`
	Amount     float64 `json:"amount" validate:"gte=0"`
	Currency   string  `json:"currency"`
	PaymentRef *string `json:"paymentRef"`
}

// UpdateBookingPayload carries an explicit status, a fine, or both.
type UpdateBookingPayload struct {
	Status *models.BookingStatus `json:"status"`
	Fine   *models.Fine          `json:"fine"`
}

// BookingService manages gown bookings and their derived statuses.
type BookingService struct {
	repo      bookingRepositoryAPI
	requests  bookingRequestResolver
	currency  string
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBookingService constructs the booking service. currency is the code
// used when a booking does not name its own.
func NewBookingService(repo bookingRepositoryAPI, requests bookingRequestResolver, currency string, validate *validator.Validate, logger *zap.Logger) *BookingService {
	if currency == "" {
		currency = "KES"
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{repo: repo, requests: requests, currency: currency, validator: validate, logger: logger}
}

// Create reserves a gown against a clearance request. A payment reference
// supplied at creation marks the booking paid immediately.
func (s *BookingService) Create(ctx context.Context, payload CreateBookingPayload) (*models.GownBooking, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}

	if _, err := s.requests.FindByID(ctx, payload.RequestID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "clearance request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve clearance request")
	}

	currency := payload.Currency
	if currency == "" {
		currency = s.currency
	}
	status := models.BookingPending
	if payload.PaymentRef != nil && *payload.PaymentRef != "" {
		status = models.BookingPaid
	}

	booking := &models.GownBooking{
		RequestID:  payload.RequestID,
		StudentID:  payload.StudentID,
		GownType:   payload.GownType,
		GownSize:   payload.GownSize,
		Amount:     payload.Amount,
		Currency:   currency,
		PaymentRef: payload.PaymentRef,
		Status:     status,
	}
	if err := s.repo.Insert(ctx, booking); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create booking")
	}
	return booking, nil
}

// Get returns a booking by ID.
func (s *BookingService) Get(ctx context.Context, id string) (*models.GownBooking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking")
	}
	return booking, nil
}

// List returns bookings newest first, optionally filtered.
func (s *BookingService) List(ctx context.Context, filter models.BookingFilter) ([]models.GownBooking, error) {
	bookings, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bookings")
	}
	if bookings == nil {
		bookings = []models.GownBooking{}
	}
	return bookings, nil
}

// Update applies an explicit status change and fine replacement together.
// Fine state takes priority over the explicit status: an unpaid positive
// fine always lands on FINE_PENDING, and settling a fine clears the
// booking unless staff explicitly recorded the gown as returned in the
// same call.
func (s *BookingService) Update(ctx context.Context, id string, payload UpdateBookingPayload) (*models.GownBooking, error) {
	if payload.Status == nil && payload.Fine == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "nothing to update")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking")
	}

	status := booking.Status
	if payload.Status != nil {
		status = *payload.Status
	}
	fine := booking.Fine
	if payload.Fine != nil {
		fine = payload.Fine
		status = deriveFineStatus(*payload.Fine, payload.Status, status)
	}
	// A fine rule may override whatever status the caller sent; only the
	// status that would actually be stored has to be a recognised one.
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown booking status")
	}

	if err := s.repo.UpdateStatusAndFine(ctx, id, status, fine); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update booking")
	}

	booking.Status = status
	booking.Fine = fine
	return booking, nil
}

// deriveFineStatus resolves the status override when a fine is recorded.
// explicit is the status supplied in the same call, if any; base is the
// status standing before the fine rule runs.
func deriveFineStatus(fine models.Fine, explicit *models.BookingStatus, base models.BookingStatus) models.BookingStatus {
	if fine.Amount > 0 && !fine.IsPaid {
		return models.BookingFinePending
	}
	if fine.IsPaid && (explicit == nil || *explicit != models.BookingReturned) {
		return models.BookingCleared
	}
	return base
}
