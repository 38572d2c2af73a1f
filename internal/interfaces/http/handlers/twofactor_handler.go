package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/identra/identra/internal/application/dto"
	"github.com/identra/identra/internal/application/service"
	"github.com/identra/identra/pkg/errors"
)

// TwoFactorHandler serves TOTP enrollment and verification.
type TwoFactorHandler struct {
	app *service.AuthAppService
}

// NewTwoFactorHandler creates a TwoFactorHandler.
func NewTwoFactorHandler(app *service.AuthAppService) *TwoFactorHandler {
	return &TwoFactorHandler{app: app}
}

// Provision enrolls the calling principal in TOTP and returns the enrollment
// material. POST /2fa/provision
func (h *TwoFactorHandler) Provision(c *gin.Context) {
	resp, err := h.app.ProvisionTwoFactor(c.Request.Context(), principalFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Verify checks a submitted PIN. POST /2fa/verify
func (h *TwoFactorHandler) Verify(c *gin.Context) {
	var in dto.VerifyTOTPInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, errors.ErrValidationFailed(errors.FieldError{
			Field: "body", Message: "request body is not valid JSON",
		}))
		return
	}

	resp, err := h.app.VerifyTwoFactor(c.Request.Context(), principalFrom(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
