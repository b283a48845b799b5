/**
 * @description
 * This file sets up the HTTP router for the onboarding-service using the `chi`
 * routing library. It defines all the API routes.
 *
 * @dependencies
 * - github.com/go-chi/chi/v5: The routing library.
 * - The service's internal packages for handlers and configuration.
 */
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/waconnect/onboarding-service/internal/app"
	"github.com/waconnect/onboarding-service/internal/config"
)

// NewRouter creates and configures a new HTTP router.
func NewRouter(cfg *config.Config, service *app.OnboardingService, dispatcher *app.WebhookDispatcher) http.Handler {
	r := chi.NewRouter()

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	onboardingHandler := NewOnboardingHandler(service)
	webhookHandler := NewWebhookHandler(cfg.WebhookVerifyToken, cfg.WebhookAppSecret, dispatcher)

	r.Post("/onboarding", onboardingHandler.Onboard)
	r.Get("/accounts/{id}", onboardingHandler.GetAccount)

	r.Get("/webhook", webhookHandler.Verify)
	r.Post("/webhook", webhookHandler.Receive)

	return r
}
