package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/valiant-11/psu-enrollment-api/internal/models"
	"github.com/valiant-11/psu-enrollment-api/internal/service"
	appErrors "github.com/valiant-11/psu-enrollment-api/pkg/errors"
	"github.com/valiant-11/psu-enrollment-api/pkg/response"
)

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// Register godoc
// @Summary Register student account
// @Description Create a student account; the institutional email is derived from the student number
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.RegisterRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid registration payload"))
		return
	}

	student, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, student)
}

// RequestOTP godoc
// @Summary Request login code
// @Description Issue a one-time login code for the given email
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.OTPRequest true "OTP request payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /auth/otp/request [post]
func (h *AuthHandler) RequestOTP(c *gin.Context) {
	var req models.OTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid otp request payload"))
		return
	}

	res, err := h.service.RequestOTP(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	// Demo-mode code echo travels in meta so the data payload stays stable
	// between environments.
	var meta map[string]interface{}
	if res.DebugCode != "" {
		meta = map[string]interface{}{"debug_code": res.DebugCode}
	}
	response.JSON(c, http.StatusOK, res, nil, meta)
}

// VerifyOTP godoc
// @Summary Verify login code
// @Description Exchange a one-time code for an access token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.OTPVerifyRequest true "OTP verify payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/otp/verify [post]
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req models.OTPVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid otp verify payload"))
		return
	}

	res, err := h.service.VerifyOTP(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Me godoc
// @Summary Get current student
// @Description Returns the authenticated student's claims
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	info := models.StudentInfo{
		ID:            claims.StudentID,
		StudentNumber: claims.StudentNumber,
		Email:         claims.Email,
	}
	response.JSON(c, http.StatusOK, info, nil)
}
