package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/valiant-11/psu-enrollment-api/internal/middleware"
	"github.com/valiant-11/psu-enrollment-api/internal/models"
	appErrors "github.com/valiant-11/psu-enrollment-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextStudentKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// termFromQuery reads the semester and academic year every term-scoped
// endpoint requires.
func termFromQuery(c *gin.Context) (string, string, error) {
	semester := c.Query("semester")
	academicYear := c.Query("academicYear")
	if semester == "" || academicYear == "" {
		return "", "", appErrors.Clone(appErrors.ErrValidation, "semester and academicYear are required")
	}
	return semester, academicYear, nil
}
