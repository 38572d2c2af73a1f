// Package handlers provides the HTTP request handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/identra/identra/internal/domain/models"
	"github.com/identra/identra/pkg/constants"
	"github.com/identra/identra/pkg/errors"
)

// errorResponse is the JSON error envelope returned for every failed request.
type errorResponse struct {
	Error       string       `json:"error"`
	Description string       `json:"error_description,omitempty"`
	Fields      []fieldError `json:"fields,omitempty"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// respondError maps an application error to its HTTP status and envelope.
// Foreign errors fall through as 500 with no detail exposed.
func respondError(c *gin.Context, err error) {
	var app *errors.AppError
	if !errors.As(err, &app) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{
			Error: string(constants.ErrCodeInternal),
		})
		return
	}

	resp := errorResponse{
		Error:       string(app.Code()),
		Description: app.Error(),
	}
	for _, f := range app.Fields() {
		resp.Fields = append(resp.Fields, fieldError{Field: f.Field, Message: f.Message})
	}
	c.AbortWithStatusJSON(app.HTTPStatus(), resp)
}

// principalFrom returns the authenticated principal placed on the context by
// the auth middleware, or the anonymous principal when none is present.
func principalFrom(c *gin.Context) *models.User {
	if v, ok := c.Get(string(constants.ContextKeyPrincipal)); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return models.Anonymous()
}
