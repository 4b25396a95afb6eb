package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dekut-devs/clearance-api/internal/service"
	appErrors "github.com/dekut-devs/clearance-api/pkg/errors"
	"github.com/dekut-devs/clearance-api/pkg/response"
)

// PaymentHandler exposes the gown payment endpoint.
type PaymentHandler struct {
	payments *service.PaymentService
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// PayForGown godoc
// @Summary Pay for a graduation gown via M-Pesa
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body service.GownPaymentPayload true "Payment payload"
// @Success 201 {object} response.Envelope
// @Router /payments/gown [post]
func (h *PaymentHandler) PayForGown(c *gin.Context) {
	var payload service.GownPaymentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	booking, err := h.payments.InitiateGownPayment(c.Request.Context(), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, booking)
}
