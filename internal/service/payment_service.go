package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/dekut-devs/clearance-api/internal/models"
	"github.com/dekut-devs/clearance-api/internal/payment"
	appErrors "github.com/dekut-devs/clearance-api/pkg/errors"
)

type stkPusher interface {
	STKPush(ctx context.Context, phone string, amount float64, accountRef string) (*payment.STKPushResult, error)
}

type paymentRequestRepository interface {
	FindByID(ctx context.Context, id string) (*models.ClearanceRequest, error)
	SetGownDetails(ctx context.Context, id string, details models.GownDetails) error
}

type paymentBookingCreator interface {
	Create(ctx context.Context, payload CreateBookingPayload) (*models.GownBooking, error)
}

// GownPaymentPayload initiates an M-Pesa gown payment.
type GownPaymentPayload struct {
	RequestID string `json:"requestId" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
	GownType  string `json:"gownType" validate:"required"`
	GownSize  string `json:"gownSize" validate:"required"`
}

// PaymentService drives gown payments through the Daraja gateway and
// records the resulting paid booking.
type PaymentService struct {
	gateway    stkPusher
	requests   paymentRequestRepository
	bookings   paymentBookingCreator
	gownAmount float64
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewPaymentService constructs the payment service.
func NewPaymentService(gateway stkPusher, requests paymentRequestRepository, bookings paymentBookingCreator, gownAmount float64, validate *validator.Validate, logger *zap.Logger) *PaymentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{gateway: gateway, requests: requests, bookings: bookings, gownAmount: gownAmount, validator: validate, logger: logger}
}

// InitiateGownPayment pushes the payment prompt to the student's phone
// and, once the gateway accepts the push, records the paid booking and
// marks gown details on the clearance request. The clearance workflow is
// never blocked on the payment outcome.
func (s *PaymentService) InitiateGownPayment(ctx context.Context, payload GownPaymentPayload) (*models.GownBooking, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}
	if s.gateway == nil {
		return nil, appErrors.Clone(appErrors.ErrMaintenance, "gown payments are currently disabled")
	}

	request, err := s.requests.FindByID(ctx, payload.RequestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "clearance request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve clearance request")
	}

	result, err := s.gateway.STKPush(ctx, payload.Phone, s.gownAmount, request.RegNo)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "payment gateway rejected the push")
	}
	s.logger.Info("stk push accepted",
		zap.String("request_id", request.ID),
		zap.String("checkout_request_id", result.CheckoutRequestID))

	ref := fmt.Sprintf("MPESA_%s", time.Now().Format("20060102150405"))
	booking, err := s.bookings.Create(ctx, CreateBookingPayload{
		RequestID:  request.ID,
		StudentID:  request.StudentID,
		GownType:   payload.GownType,
		GownSize:   payload.GownSize,
		Amount:     s.gownAmount,
		PaymentRef: &ref,
	})
	if err != nil {
		return nil, err
	}

	if err := s.requests.SetGownDetails(ctx, request.ID, models.GownDetails{Type: payload.GownType, Size: payload.GownSize}); err != nil {
		s.logger.Warn("failed to mark gown details", zap.String("request_id", request.ID), zap.Error(err))
	}
	return booking, nil
}
