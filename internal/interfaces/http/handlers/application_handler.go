package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/identra/identra/internal/application/dto"
	"github.com/identra/identra/internal/application/service"
	"github.com/identra/identra/pkg/errors"
)

// ApplicationHandler serves client application registration. Registration is
// an administrative operation; the pipeline enforces the required claim.
type ApplicationHandler struct {
	app *service.AuthAppService
}

// NewApplicationHandler creates an ApplicationHandler.
func NewApplicationHandler(app *service.AuthAppService) *ApplicationHandler {
	return &ApplicationHandler{app: app}
}

// Create registers a new application. POST /applications
func (h *ApplicationHandler) Create(c *gin.Context) {
	var in dto.CreateApplicationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, errors.ErrValidationFailed(errors.FieldError{
			Field: "body", Message: "request body is not valid JSON",
		}))
		return
	}

	resp, err := h.app.CreateApplication(c.Request.Context(), principalFrom(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
