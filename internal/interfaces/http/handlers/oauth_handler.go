package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/identra/identra/internal/application/dto"
	"github.com/identra/identra/internal/application/service"
	"github.com/identra/identra/pkg/errors"
)

// OAuthHandler exposes the authorization-code flow over HTTP.
type OAuthHandler struct {
	app *service.AuthAppService
}

// NewOAuthHandler creates an OAuthHandler.
func NewOAuthHandler(app *service.AuthAppService) *OAuthHandler {
	return &OAuthHandler{app: app}
}

// Authorize issues a single-use authorization code for the authenticated
// principal. POST /oauth/authorize
func (h *OAuthHandler) Authorize(c *gin.Context) {
	var in dto.AuthorizeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, errors.ErrValidationFailed(errors.FieldError{
			Field: "body", Message: "request body is not valid JSON",
		}))
		return
	}

	resp, err := h.app.Authorize(c.Request.Context(), principalFrom(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// tokenRequest covers the grant types served by the token endpoint.
type tokenRequest struct {
	GrantType    string `json:"grant_type" form:"grant_type"`
	Code         string `json:"code" form:"code"`
	RefreshToken string `json:"refresh_token" form:"refresh_token"`
	Username     string `json:"username" form:"username"`
	Password     string `json:"password" form:"password"`
	ClientID     string `json:"client_id" form:"client_id"`
	ClientSecret string `json:"client_secret" form:"client_secret"`
}

// Token is the token endpoint: it redeems an authorization code, rotates a
// refresh token or serves the password grant, depending on grant_type.
// POST /oauth/token
func (h *OAuthHandler) Token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, errors.ErrValidationFailed(errors.FieldError{
			Field: "body", Message: "request body could not be parsed",
		}))
		return
	}

	switch req.GrantType {
	case "authorization_code":
		resp, err := h.app.ExchangeCode(c.Request.Context(), dto.ExchangeCodeInput{
			Code:         req.Code,
			ClientCode:   req.ClientID,
			ClientSecret: req.ClientSecret,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)

	case "refresh_token":
		resp, err := h.app.Refresh(c.Request.Context(), dto.RefreshInput{
			RefreshToken: req.RefreshToken,
			ClientCode:   req.ClientID,
			ClientSecret: req.ClientSecret,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)

	case "password":
		resp, err := h.app.PasswordGrant(c.Request.Context(), dto.PasswordGrantInput{
			Username:     req.Username,
			Password:     req.Password,
			ClientCode:   req.ClientID,
			ClientSecret: req.ClientSecret,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)

	default:
		respondError(c, errors.ErrValidationFailed(errors.FieldError{
			Field: "GrantType", Message: "grant_type must be authorization_code, refresh_token or password",
		}))
	}
}
