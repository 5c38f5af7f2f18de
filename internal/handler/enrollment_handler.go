package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/valiant-11/psu-enrollment-api/internal/models"
	"github.com/valiant-11/psu-enrollment-api/internal/service"
	appErrors "github.com/valiant-11/psu-enrollment-api/pkg/errors"
	"github.com/valiant-11/psu-enrollment-api/pkg/response"
)

// EnrollmentHandler exposes catalog, selection and confirmation endpoints.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
	metrics     *service.MetricsService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService, metrics *service.MetricsService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments, metrics: metrics}
}

// Eligible godoc
// @Summary List eligible offerings
// @Description Term offerings the student may add, with cross-enrollment flagged
// @Tags Enrollment
// @Produce json
// @Param semester query string true "Semester"
// @Param academicYear query string true "Academic year"
// @Param college query string false "Filter by college"
// @Param course query string false "Filter by course"
// @Success 200 {object} response.Envelope
// @Router /enrollment/offerings [get]
func (h *EnrollmentHandler) Eligible(c *gin.Context) {
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

	subjects, err := h.enrollments.ListEligible(c.Request.Context(), claims.StudentID, semester, academicYear)
	if err != nil {
		response.Error(c, err)
		return
	}

	college := c.Query("college")
	course := c.Query("course")
	if college != "" || course != "" {
		filtered := make([]models.EligibleSubject, 0, len(subjects))
		for _, subject := range subjects {
			if college != "" && subject.College != college {
				continue
			}
			if course != "" && subject.Course != course {
				continue
			}
			filtered = append(filtered, subject)
		}
		subjects = filtered
	}

	response.JSON(c, http.StatusOK, subjects, nil)
}

// Toggle godoc
// @Summary Toggle a subject in the selection
// @Description Adds the subject if absent, removes it if present
// @Tags Enrollment
// @Accept json
// @Produce json
// @Param payload body models.ToggleRequest true "Toggle payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /enrollment/selection/toggle [post]
func (h *EnrollmentHandler) Toggle(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid toggle payload"))
		return
	}

	selection, err := h.enrollments.Toggle(c.Request.Context(), claims.StudentID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, selection, nil)
}

// ClearSelection godoc
// @Summary Clear the selection
// @Tags Enrollment
// @Produce json
// @Param semester query string true "Semester"
// @Param academicYear query string true "Academic year"
// @Success 204 {object} response.Envelope
// @Router /enrollment/selection [delete]
func (h *EnrollmentHandler) ClearSelection(c *gin.Context) {
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

	if err := h.enrollments.ClearSelection(c.Request.Context(), claims.StudentID, semester, academicYear); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Quote godoc
// @Summary Get the current selection with totals
// @Description Units, fee breakdown and warnings for the candidate selection
// @Tags Enrollment
// @Produce json
// @Param semester query string true "Semester"
// @Param academicYear query string true "Academic year"
// @Success 200 {object} response.Envelope
// @Router /enrollment/selection [get]
func (h *EnrollmentHandler) Quote(c *gin.Context) {
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

	quote, err := h.enrollments.Quote(c.Request.Context(), claims.StudentID, semester, academicYear)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, quote, nil)
}

// Confirm godoc
// @Summary Confirm the selection
// @Description Commits the selection, posts the tuition assessment and marks the student enrolled
// @Tags Enrollment
// @Accept json
// @Produce json
// @Param payload body models.ConfirmRequest true "Confirm payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /enrollment/confirm [post]
func (h *EnrollmentHandler) Confirm(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid confirm payload"))
		return
	}

	result, err := h.enrollments.Confirm(c.Request.Context(), claims.StudentID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordEnrollmentConfirm()
	response.JSON(c, http.StatusOK, result, nil)
}

// Enrolled godoc
// @Summary List enrolled subjects
// @Tags Enrollment
// @Produce json
// @Param semester query string true "Semester"
// @Param academicYear query string true "Academic year"
// @Success 200 {object} response.Envelope
// @Router /enrollment/enrolled [get]
func (h *EnrollmentHandler) Enrolled(c *gin.Context) {
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

	enrolled, err := h.enrollments.ListEnrolled(c.Request.Context(), claims.StudentID, semester, academicYear)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrolled, nil)
}
