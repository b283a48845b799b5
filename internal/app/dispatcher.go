/**
 * @description
 * This file implements the webhook change dispatcher. Meta delivers webhook
 * notifications as envelopes of (field, value) changes; the dispatcher routes
 * each change to the handler registered for its field.
 *
 * Key features:
 * - Unknown fields are ignored, not errors: Meta adds fields over time and an
 *   unrecognized notification must not fail the delivery.
 * - Handler faults are logged and swallowed at the dispatch boundary so a
 *   single bad change can never make the provider retry-storm the endpoint.
 */
package app

import (
	"context"
	"encoding/json"
	"log"

	"github.com/waconnect/onboarding-service/internal/domain"
)

// ChangeHandler processes the value payload of one webhook change for a WABA.
type ChangeHandler func(ctx context.Context, wabaID string, value json.RawMessage) error

// WebhookDispatcher routes webhook changes to handlers keyed by field name.
type WebhookDispatcher struct {
	handlers map[string]ChangeHandler
}

// NewWebhookDispatcher creates an empty dispatcher.
func NewWebhookDispatcher() *WebhookDispatcher {
	return &WebhookDispatcher{handlers: make(map[string]ChangeHandler)}
}

// Register binds a handler to a webhook field. Later registrations for the
// same field replace earlier ones.
func (d *WebhookDispatcher) Register(field string, handler ChangeHandler) {
	d.handlers[field] = handler
}

// Dispatch routes every change in the envelope to its field's handler. It
// never returns an error: faults are logged per change and delivery is always
// acknowledged.
func (d *WebhookDispatcher) Dispatch(ctx context.Context, envelope domain.WebhookEnvelope) {
	for _, entry := range envelope.Entry {
		for _, change := range entry.Changes {
			handler, ok := d.handlers[change.Field]
			if !ok {
				log.Printf("Ignoring webhook change with unhandled field %q for WABA %s", change.Field, entry.ID)
				continue
			}
			if err := handler(ctx, entry.ID, change.Value); err != nil {
				log.Printf("ERROR: Webhook handler for field %q failed for WABA %s: %v", change.Field, entry.ID, err)
			}
		}
	}
}
