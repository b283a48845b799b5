/**
 * @description
 * This file defines the Go structs that model incoming webhook payloads from
 * Meta. These structures are essential for safely unmarshaling the JSON data
 * received at the webhook endpoint and routing it in a type-safe manner.
 *
 * @notes
 * - Meta delivers events as an envelope containing one or more entries, each
 *   carrying a list of (field, value) changes. The `value` payload differs per
 *   field, so it is kept as raw JSON and decoded by the field's handler.
 */
package domain

import "encoding/json"

// WebhookEnvelope represents the top-level structure of a webhook delivery.
type WebhookEnvelope struct {
	Object string         `json:"object"` // e.g. "whatsapp_business_account"
	Entry  []WebhookEntry `json:"entry"`
}

// WebhookEntry is a single entry within the envelope, scoped to one WABA.
type WebhookEntry struct {
	ID      string          `json:"id"` // the WABA ID the changes belong to
	Time    int64           `json:"time,omitempty"`
	Changes []WebhookChange `json:"changes"`
}

// WebhookChange is one (field, value) notification inside an entry.
type WebhookChange struct {
	Field string          `json:"field"` // e.g. "messages", "account_update"
	Value json.RawMessage `json:"value"`
}

// AccountUpdateValue is the decoded value payload for "account_update" changes.
type AccountUpdateValue struct {
	Event       string `json:"event,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	BanInfo     *struct {
		WABABanState string `json:"waba_ban_state,omitempty"`
	} `json:"ban_info,omitempty"`
}
