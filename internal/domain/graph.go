/**
 * @description
 * This file defines the Go structs that map to the Meta Graph API payloads used
 * during onboarding: the OAuth code exchange, phone number lookup, Cloud API
 * registration, and webhook subscription endpoints.
 *
 * @notes
 * - Field names mirror the Graph API wire format exactly; they are part of
 *   Meta's fixed protocol and must not be renamed.
 */
package domain

// TokenResponse is returned by POST /oauth/access_token.
type TokenResponse struct {
	AccessToken string            `json:"access_token"`
	TokenType   string            `json:"token_type,omitempty"`
	Error       *GraphErrorDetail `json:"error,omitempty"`
}

// PhoneNumberInfo is returned by GET /{phone-number-id}.
type PhoneNumberInfo struct {
	ID                 string `json:"id"`
	DisplayPhoneNumber string `json:"display_phone_number"`
	VerifiedName       string `json:"verified_name,omitempty"`
	QualityRating      string `json:"quality_rating,omitempty"`
}

// RegisterPhoneNumberRequest is the body for POST /{phone-number-id}/register.
type RegisterPhoneNumberRequest struct {
	MessagingProduct string `json:"messaging_product"` // always "whatsapp"
	Pin              string `json:"pin"`
}

// SubscribeAppsRequest is the body for POST /{waba-id}/subscribed_apps.
type SubscribeAppsRequest struct {
	SubscribedFields []string `json:"subscribed_fields"`
}

// SuccessResponse covers the Graph endpoints that acknowledge with {"success": true}.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// GraphErrorDetail is the error object embedded in Graph API failure responses.
type GraphErrorDetail struct {
	Message   string `json:"message"`
	Type      string `json:"type,omitempty"`
	Code      int    `json:"code,omitempty"`
	FBTraceID string `json:"fbtrace_id,omitempty"`
}

// GraphErrorResponse is the top-level shape of a Graph API error body.
type GraphErrorResponse struct {
	Error GraphErrorDetail `json:"error"`
}
