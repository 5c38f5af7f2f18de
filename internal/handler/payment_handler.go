package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/valiant-11/psu-enrollment-api/internal/models"
	"github.com/valiant-11/psu-enrollment-api/internal/service"
	appErrors "github.com/valiant-11/psu-enrollment-api/pkg/errors"
	"github.com/valiant-11/psu-enrollment-api/pkg/response"
)

// PaymentHandler exposes assessment and ledger endpoints.
type PaymentHandler struct {
	payments *service.PaymentService
	metrics  *service.MetricsService
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(payments *service.PaymentService, metrics *service.MetricsService) *PaymentHandler {
	return &PaymentHandler{payments: payments, metrics: metrics}
}

// Assessment godoc
// @Summary Get fee assessment
// @Description Fee statement for the enrolled load with ledger totals
// @Tags Payments
// @Produce json
// @Param semester query string true "Semester"
// @Param academicYear query string true "Academic year"
// @Success 200 {object} response.Envelope
// @Router /payments/assessment [get]
func (h *PaymentHandler) Assessment(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	semester, academicYear, err := termFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	assessment, err := h.payments.Assessment(c.Request.Context(), claims.StudentID, semester, academicYear)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assessment, nil)
}

// Record godoc
// @Summary Record a payment
// @Description Appends a ledger entry; amounts above the balance are rejected
// @Tags Payments
// @Accept json
// @Produce json
// @Param semester query string true "Semester"
// @Param academicYear query string true "Academic year"
// @Param payload body models.RecordPaymentRequest true "Payment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /payments [post]
func (h *PaymentHandler) Record(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	semester, academicYear, err := termFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req models.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payment payload"))
		return
	}

	payment, err := h.payments.RecordPayment(c.Request.Context(), claims.StudentID, semester, academicYear, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordPayment()
	response.Created(c, payment)
}

// History godoc
// @Summary List payment history
// @Tags Payments
// @Produce json
// @Param semester query string true "Semester"
// @Param academicYear query string true "Academic year"
// @Success 200 {object} response.Envelope
// @Router /payments [get]
func (h *PaymentHandler) History(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	semester, academicYear, err := termFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	history, err := h.payments.History(c.Request.Context(), claims.StudentID, semester, academicYear)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, history, nil)
}

// ExportCSV godoc
// @Summary Download payment history as CSV
// @Tags Payments
// @Produce text/csv
// @Param semester query string true "Semester"
// @Param academicYear query string true "Academic year"
// @Success 200 {file} file
// @Router /payments/export [get]
func (h *PaymentHandler) ExportCSV(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	semester, academicYear, err := termFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	raw, filename, err := h.payments.ExportHistoryCSV(c.Request.Context(), claims.StudentID, semester, academicYear)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", raw)
}

// ExportPDF godoc
// @Summary Download the fee assessment as PDF
// @Tags Payments
// @Produce application/pdf
// @Param semester query string true "Semester"
// @Param academicYear query string true "Academic year"
// @Success 200 {file} file
// @Router /payments/assessment/export [get]
func (h *PaymentHandler) ExportPDF(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	semester, academicYear, err := termFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	raw, filename, err := h.payments.ExportAssessmentPDF(c.Request.Context(), claims.StudentID, semester, academicYear)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", raw)
}
