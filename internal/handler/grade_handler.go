package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/valiant-11/psu-enrollment-api/internal/service"
	appErrors "github.com/valiant-11/psu-enrollment-api/pkg/errors"
	"github.com/valiant-11/psu-enrollment-api/pkg/response"
)

// GradeHandler exposes the grade report endpoint.
type GradeHandler struct {
	grades *service.GradeService
}

// NewGradeHandler constructs GradeHandler.
func NewGradeHandler(grades *service.GradeService) *GradeHandler {
	return &GradeHandler{grades: grades}
}

// Report godoc
// @Summary Get grade report
// @Description Posted grades for the term with the general weighted average
// @Tags Grades
// @Produce json
// @Param semester query string true "Semester"
// @Param academicYear query string true "Academic year"
// @Success 200 {object} response.Envelope
// @Router /grades [get]
func (h *GradeHandler) Report(c *gin.Context) {
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

	report, err := h.grades.Report(c.Request.Context(), claims.StudentID, semester, academicYear)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
