package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dekut-devs/clearance-api/internal/models"
	"github.com/dekut-devs/clearance-api/internal/service"
	appErrors "github.com/dekut-devs/clearance-api/pkg/errors"
	"github.com/dekut-devs/clearance-api/pkg/response"
)

// ClearanceHandler exposes the clearance workflow endpoints.
type ClearanceHandler struct {
	clearance    *service.ClearanceService
	certificates *service.CertificateService
	exports      *service.ExportService
	metrics      *service.MetricsService
}

// NewClearanceHandler constructs ClearanceHandler.
func NewClearanceHandler(clearance *service.ClearanceService, certificates *service.CertificateService, exports *service.ExportService, metrics *service.MetricsService) *ClearanceHandler {
	return &ClearanceHandler{clearance: clearance, certificates: certificates, exports: exports, metrics: metrics}
}

// Create godoc
// @Summary Start a clearance request
// @Description Opens a clearance request, or returns the existing one for the registration number.
// @Tags Clearance
// @Accept json
// @Produce json
// @Param payload body service.CreateRequestPayload true "Request payload"
// @Success 200 {object} response.Envelope
// @Success 201 {object} response.Envelope
// @Router /requests [post]
func (h *ClearanceHandler) Create(c *gin.Context) {
	var payload service.CreateRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	request, created, err := h.clearance.Create(c.Request.Context(), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	if created {
		response.Created(c, request)
		return
	}
	response.JSON(c, http.StatusOK, request, nil, map[string]interface{}{"restored": true})
}

// List godoc
// @Summary List clearance requests
// @Tags Clearance
// @Produce json
// @Param studentId query string false "Filter by student"
// @Param status query string false "Filter by overall status"
// @Success 200 {object} response.Envelope
// @Router /requests [get]
func (h *ClearanceHandler) List(c *gin.Context) {
	filter := models.RequestFilter{
		StudentID: c.Query("studentId"),
		Status:    models.DecisionStatus(c.Query("status")),
	}
	requests, err := h.clearance.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// Get godoc
// @Summary Get a clearance request
// @Tags Clearance
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id} [get]
func (h *ClearanceHandler) Get(c *gin.Context) {
	request, err := h.clearance.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Decide godoc
// @Summary Record a department decision
// @Tags Clearance
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param department path string true "Department name"
// @Param payload body service.DecisionPayload true "Decision payload"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/clearance/{department} [patch]
func (h *ClearanceHandler) Decide(c *gin.Context) {
	var payload service.DecisionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	department := c.Param("department")
	request, err := h.clearance.ApplyDecision(c.Request.Context(), c.Param("id"), department, payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordDecision(department, payload.Status)
	response.JSON(c, http.StatusOK, request, nil)
}

// UpdateAlertSettings godoc
// @Summary Update notification preferences
// @Tags Clearance
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body service.AlertSettingsPayload true "Settings payload"
// @Success 204 "No Content"
// @Router /requests/{id}/settings [patch]
func (h *ClearanceHandler) UpdateAlertSettings(c *gin.Context) {
	var payload service.AlertSettingsPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.clearance.UpdateAlertSettings(c.Request.Context(), c.Param("id"), payload); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Delete godoc
// @Summary Delete a clearance request
// @Tags Clearance
// @Produce json
// @Param id path string true "Request ID"
// @Success 204 "No Content"
// @Router /requests/{id} [delete]
func (h *ClearanceHandler) Delete(c *gin.Context) {
	if err := h.clearance.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Certificate godoc
// @Summary Download the clearance certificate
// @Tags Clearance
// @Produce application/pdf
// @Param id path string true "Request ID"
// @Success 200 {file} binary
// @Router /requests/{id}/certificate [get]
func (h *ClearanceHandler) Certificate(c *gin.Context) {
	pdf, err := h.certificates.Issue(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=clearance_certificate_%s.pdf", c.Param("id")))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// Export godoc
// @Summary Export clearance requests as CSV
// @Tags Clearance
// @Produce text/csv
// @Param status query string false "Filter by overall status"
// @Success 200 {file} binary
// @Router /requests/export [get]
func (h *ClearanceHandler) Export(c *gin.Context) {
	filter := models.RequestFilter{Status: models.DecisionStatus(c.Query("status"))}
	data, err := h.exports.ClearanceCSV(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("clearance_requests_%s.csv", time.Now().Format("20060102"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", data)
}
