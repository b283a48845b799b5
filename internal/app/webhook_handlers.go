/**
 * @description
 * This file contains the handlers for the webhook fields the service acts on.
 * They reconcile asynchronous provider notifications into the durable account
 * record and fan the events out to the internal message broker.
 *
 * @notes
 * - The provider reports account activation through two independent channels:
 *   the registration call during onboarding and the account_update webhook.
 *   The stored status is derived from whichever reports success first, with a
 *   monotonic transition so completed never regresses to pending.
 */
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/waconnect/onboarding-service/internal/domain"
	"github.com/waconnect/onboarding-service/internal/store"
)

// WebhookEventHandler reconciles webhook notifications into account state.
type WebhookEventHandler struct {
	repo      store.AccountRepository
	publisher EventPublisher // optional
}

// NewWebhookEventHandler creates a new instance of WebhookEventHandler.
func NewWebhookEventHandler(repo store.AccountRepository, publisher EventPublisher) *WebhookEventHandler {
	return &WebhookEventHandler{repo: repo, publisher: publisher}
}

// RegisterHandlers binds this handler's fields on the dispatcher.
func (h *WebhookEventHandler) RegisterHandlers(d *WebhookDispatcher) {
	d.Register("messages", h.HandleMessages)
	d.Register("account_update", h.HandleAccountUpdate)
}

// HandleMessages forwards inbound message notifications to the broker. The
// service itself has no message pipeline; downstream consumers do.
func (h *WebhookEventHandler) HandleMessages(ctx context.Context, wabaID string, value json.RawMessage) error {
	log.Printf("Received messages webhook change for WABA %s", wabaID)
	if h.publisher == nil {
		return nil
	}
	event := domain.MessageReceivedEvent{WABAID: wabaID, Payload: value}
	if err := h.publisher.Publish(ctx, EventsExchange, "message.received", event); err != nil {
		return fmt.Errorf("failed to publish message.received: %w", err)
	}
	return nil
}

// HandleAccountUpdate applies provider-side account status changes to the
// stored record.
func (h *WebhookEventHandler) HandleAccountUpdate(ctx context.Context, wabaID string, value json.RawMessage) error {
	var update domain.AccountUpdateValue
	if err := json.Unmarshal(value, &update); err != nil {
		return fmt.Errorf("failed to decode account_update value: %w", err)
	}
	log.Printf("Received account_update webhook event %q for WABA %s", update.Event, wabaID)

	switch classifyAccountUpdate(update.Event) {
	case accountUpdateVerified:
		if err := h.repo.MarkOnboardingCompleted(ctx, wabaID); err != nil {
			return err
		}
	case accountUpdateBanned:
		if err := h.repo.MarkOnboardingFailed(ctx, wabaID); err != nil {
			return err
		}
	case accountUpdatePayment:
		if err := h.repo.MarkPaymentMethodAdded(ctx, wabaID); err != nil {
			return err
		}
	default:
		// Status-neutral update; nothing to reconcile.
	}

	if h.publisher != nil {
		event := domain.AccountUpdatedEvent{WABAID: wabaID, Event: update.Event}
		if err := h.publisher.Publish(ctx, EventsExchange, "account.updated", event); err != nil {
			// The record is already reconciled; a broker fault should not fail
			// the delivery.
			log.Printf("WARN: Failed to publish account.updated for WABA %s: %v", wabaID, err)
		}
	}
	return nil
}

type accountUpdateKind int

const (
	accountUpdateOther accountUpdateKind = iota
	accountUpdateVerified
	accountUpdateBanned
	accountUpdatePayment
)

// classifyAccountUpdate maps the free-form account_update event name onto the
// reconciliation action it triggers.
func classifyAccountUpdate(event string) accountUpdateKind {
	switch strings.ToUpper(event) {
	case "VERIFIED_ACCOUNT", "ACCOUNT_VERIFIED", "PHONE_NUMBER_VERIFIED":
		return accountUpdateVerified
	case "DISABLED_UPDATE", "ACCOUNT_BANNED", "ACCOUNT_DELETED":
		return accountUpdateBanned
	case "PAYMENT_METHOD_ADDED", "PAYMENT_CONFIGURED":
		return accountUpdatePayment
	default:
		return accountUpdateOther
	}
}
