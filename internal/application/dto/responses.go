package dto

// ApplicationResponse echoes a registered application, including any
// auto-generated secret (the only time it is returned in clear).
type ApplicationResponse struct {
	ID           string   `json:"id"`
	Code         string   `json:"code"`
	DisplayName  string   `json:"display_name"`
	RedirectUris []string `json:"redirect_uris"`
	Secrets      []string `json:"secrets"`
}

// AuthorizeResponse carries the freshly issued authorization code.
type AuthorizeResponse struct {
	Code        string `json:"code"`
	RedirectURI string `json:"redirect_uri"`
}

// TokenResponse is the token-leg result.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// ProvisionTOTPResponse is the 2FA enrollment material.
type ProvisionTOTPResponse struct {
	ManualKey            string `json:"manual_key"`
	ProvisioningURI      string `json:"provisioning_uri"`
	ProvisioningImageURL string `json:"provisioning_image_url"`
}

// VerifyTOTPResponse reports whether the submitted PIN was accepted.
type VerifyTOTPResponse struct {
	Valid bool `json:"valid"`
}
