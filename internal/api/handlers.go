/**
 * @description
 * This file defines the HTTP handlers for the onboarding-service's API
 * endpoints. Handlers are responsible for parsing requests, calling the
 * appropriate service method, and writing the response.
 *
 * @dependencies
 * - Standard Go libraries for HTTP, JSON, etc.
 * - Chi router for URL parameter handling.
 * - The service's internal packages for app logic and storage errors.
 */
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/waconnect/onboarding-service/internal/app"
	"github.com/waconnect/onboarding-service/internal/store"
)

// OnboardingHandler holds the dependencies for onboarding-related handlers.
type OnboardingHandler struct {
	service *app.OnboardingService
}

// NewOnboardingHandler creates a new OnboardingHandler.
func NewOnboardingHandler(service *app.OnboardingService) *OnboardingHandler {
	return &OnboardingHandler{service: service}
}

// OnboardRequest defines the expected JSON body for starting an onboarding run.
type OnboardRequest struct {
	Code          string `json:"code"`
	WABAID        string `json:"waba_id"`
	PhoneNumberID string `json:"phone_number_id"`
	PortfolioID   string `json:"portfolio_id,omitempty"`
	BusinessName  string `json:"business_name,omitempty"`
	Email         string `json:"email,omitempty"`
}

// Onboard handles POST /onboarding.
func (h *OnboardingHandler) Onboard(w http.ResponseWriter, r *http.Request) {
	var req OnboardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}

	result, err := h.service.Onboard(r.Context(), app.OnboardInput{
		Code:          req.Code,
		WABAID:        req.WABAID,
		PhoneNumberID: req.PhoneNumberID,
		PortfolioID:   req.PortfolioID,
		BusinessName:  req.BusinessName,
		Email:         req.Email,
	})
	if err != nil {
		var validationErr *app.ValidationError
		var upstreamErr *app.UpstreamError
		var persistenceErr *app.PersistenceError
		switch {
		case errors.As(err, &validationErr):
			writeError(w, http.StatusBadRequest, validationErr.Msg, "")
		case errors.As(err, &upstreamErr):
			writeError(w, http.StatusBadRequest, upstreamErr.Msg, upstreamErr.Details)
		case errors.As(err, &persistenceErr):
			writeError(w, http.StatusInternalServerError, "Failed to save the onboarded account", "")
		default:
			log.Printf("ERROR: Unexpected onboarding failure: %v", err)
			writeError(w, http.StatusInternalServerError, "An unexpected server error occurred during onboarding", "")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// GetAccount handles GET /accounts/{id}. The stored business token is never
// part of the response.
func (h *OnboardingHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	account, err := h.service.GetAccount(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			writeError(w, http.StatusNotFound, "Account not found", "")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to retrieve account", "")
		return
	}

	writeJSON(w, http.StatusOK, account)
}

// errorResponse is the JSON body for all non-success responses.
type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg, details string) {
	writeJSON(w, status, errorResponse{Error: msg, Details: details})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: Failed to encode response: %v", err)
	}
}
