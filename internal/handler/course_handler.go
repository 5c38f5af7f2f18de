package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/valiant-11/psu-enrollment-api/internal/service"
	"github.com/valiant-11/psu-enrollment-api/pkg/response"
)

// CourseHandler exposes the course catalog.
type CourseHandler struct {
	courses *service.CourseService
}

// NewCourseHandler constructs CourseHandler.
func NewCourseHandler(courses *service.CourseService) *CourseHandler {
	return &CourseHandler{courses: courses}
}

// List godoc
// @Summary List courses
// @Tags Courses
// @Produce json
// @Param college query string false "Filter by college"
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.courses.List(c.Request.Context(), c.Query("college"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}
