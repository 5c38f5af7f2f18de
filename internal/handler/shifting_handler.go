package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/valiant-11/psu-enrollment-api/internal/models"
	"github.com/valiant-11/psu-enrollment-api/internal/service"
	appErrors "github.com/valiant-11/psu-enrollment-api/pkg/errors"
	"github.com/valiant-11/psu-enrollment-api/pkg/response"
)

// ShiftingHandler exposes the course-shift request endpoints.
type ShiftingHandler struct {
	shifting *service.ShiftingService
}

// NewShiftingHandler constructs ShiftingHandler.
func NewShiftingHandler(shifting *service.ShiftingService) *ShiftingHandler {
	return &ShiftingHandler{shifting: shifting}
}

// Current godoc
// @Summary Get the live shifting request
// @Tags Shifting
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /shifting [get]
func (h *ShiftingHandler) Current(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	request, err := h.shifting.Current(c.Request.Context(), claims.StudentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if request == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "no shifting request"))
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Submit godoc
// @Summary Submit a shifting request
// @Description Opens a pending request; only one live request may exist
// @Tags Shifting
// @Accept json
// @Produce json
// @Param payload body models.SubmitShiftRequest true "Shifting payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /shifting [post]
func (h *ShiftingHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.SubmitShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid shifting payload"))
		return
	}

	request, err := h.shifting.Submit(c.Request.Context(), claims.StudentID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, request)
}

// Approve godoc
// @Summary Approve the pending request
// @Description Moves the student to the target course
// @Tags Shifting
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /shifting/approve [post]
func (h *ShiftingHandler) Approve(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	request, err := h.shifting.Approve(c.Request.Context(), claims.StudentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Reject godoc
// @Summary Reject the pending request
// @Tags Shifting
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /shifting/reject [post]
func (h *ShiftingHandler) Reject(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	request, err := h.shifting.Reject(c.Request.Context(), claims.StudentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Cancel godoc
// @Summary Cancel the live request
// @Tags Shifting
// @Produce json
// @Success 204 {object} response.Envelope
// @Router /shifting [delete]
func (h *ShiftingHandler) Cancel(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.shifting.Cancel(c.Request.Context(), claims.StudentID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
