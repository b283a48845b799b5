/**
 * @description
 * This file defines the internal events the service publishes to the message
 * broker so downstream services can react to onboarding progress without
 * polling. These structs are the contract for messages on the
 * `whatsapp_events` topic exchange.
 */
package domain

import "encoding/json"

// AccountOnboardedEvent is published after a successful onboarding run.
type AccountOnboardedEvent struct {
	AccountID     string `json:"account_id"`
	WABAID        string `json:"waba_id"`
	PhoneNumberID string `json:"phone_number_id"`
	PhoneNumber   string `json:"phone_number,omitempty"`
}

// AccountUpdatedEvent is published when an account_update webhook changes the
// stored onboarding state.
type AccountUpdatedEvent struct {
	WABAID string `json:"waba_id"`
	Event  string `json:"event"`
}

// MessageReceivedEvent is published for inbound "messages" webhook changes so
// a downstream pipeline can pick them up.
type MessageReceivedEvent struct {
	WABAID  string          `json:"waba_id"`
	Payload json.RawMessage `json:"payload"`
}
