/**
 * @description
 * This file contains the HTTP handlers for the webhook endpoint Meta calls.
 * One logical endpoint serves two request shapes: the one-time subscription
 * verification handshake (GET) and event delivery (POST).
 *
 * Key features:
 * - The handshake is a pure comparison against configuration: no database or
 *   network access, idempotent, no side effects.
 * - Event delivery is always acknowledged with 200 after dispatch attempts so
 *   an unprocessable payload cannot trigger provider-side redelivery storms;
 *   500 is reserved for a request-level read/parse failure.
 * - When a webhook app secret is configured, the X-Hub-Signature-256 HMAC of
 *   the raw body is validated before dispatch.
 *
 * @dependencies
 * - crypto/hmac, crypto/sha256, encoding/hex: For webhook signature validation.
 * - github.com/google/uuid: Request IDs for log correlation.
 * - The service's internal packages for domain models and the dispatcher.
 */
package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/waconnect/onboarding-service/internal/app"
	"github.com/waconnect/onboarding-service/internal/domain"
)

// subscribeMode is the hub.mode value Meta sends during verification.
const subscribeMode = "subscribe"

// WebhookHandler serves the verification handshake and event deliveries.
type WebhookHandler struct {
	verifyToken string
	appSecret   string // optional; enables signature validation when set
	dispatcher  *app.WebhookDispatcher
}

// NewWebhookHandler creates a new handler for the webhook endpoint.
func NewWebhookHandler(verifyToken, appSecret string, dispatcher *app.WebhookDispatcher) *WebhookHandler {
	return &WebhookHandler{
		verifyToken: verifyToken,
		appSecret:   appSecret,
		dispatcher:  dispatcher,
	}
}

// Verify handles the GET verification handshake. On a token match the
// challenge is echoed back verbatim; anything else is forbidden.
func (h *WebhookHandler) Verify(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode == subscribeMode && subtle.ConstantTimeCompare([]byte(token), []byte(h.verifyToken)) == 1 {
		log.Printf("Webhook verification handshake succeeded")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(challenge))
		return
	}

	log.Printf("Webhook verification handshake failed: mode or token mismatch")
	w.WriteHeader(http.StatusForbidden)
}

// Receive handles POST event deliveries.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("[%s] ERROR: Cannot read webhook body: %v", requestID, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if h.appSecret != "" && !h.isValidSignature(r.Header.Get("X-Hub-Signature-256"), body) {
		log.Printf("[%s] ERROR: Invalid webhook signature", requestID)
		w.WriteHeader(http.StatusForbidden)
		return
	}

	var envelope domain.WebhookEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		log.Printf("[%s] ERROR: Cannot decode webhook JSON: %v", requestID, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	log.Printf("[%s] Webhook delivery received: object=%s entries=%d", requestID, envelope.Object, len(envelope.Entry))
	h.dispatcher.Dispatch(r.Context(), envelope)

	// Always acknowledge once dispatch has been attempted; per-change faults
	// were logged at the dispatch boundary.
	w.WriteHeader(http.StatusOK)
}

// isValidSignature checks the X-Hub-Signature-256 header against the HMAC of
// the raw body.
func (h *WebhookHandler) isValidSignature(header string, body []byte) bool {
	signature := strings.TrimPrefix(header, "sha256=")
	if signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(h.appSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}
