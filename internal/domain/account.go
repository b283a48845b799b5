/**
 * @description
 * This file defines the core domain model for an onboarded WhatsApp Business
 * account. It represents the durable record written at the end of a successful
 * onboarding run and read back by status lookups.
 *
 * @notes
 * - `WABAID` (the WhatsApp Business Account ID) is the stable external key;
 *   re-running onboarding for the same WABA updates the record in place.
 * - `BusinessToken` is the long-lived access credential obtained during
 *   onboarding. It is tagged `json:"-"` so it can never leak through an API
 *   response, and the store never selects it on read paths.
 */
package domain

import "time"

// OnboardingStatus tracks where an account is in the onboarding lifecycle.
type OnboardingStatus string

const (
	OnboardingPending   OnboardingStatus = "pending"
	OnboardingCompleted OnboardingStatus = "completed"
	OnboardingFailed    OnboardingStatus = "failed"
)

// Account represents an onboarded WhatsApp Business customer in our system.
type Account struct {
	ID                 string           `json:"id"`
	BusinessName       string           `json:"business_name,omitempty"`
	Email              string           `json:"email,omitempty"`
	WABAID             string           `json:"waba_id"`
	PhoneNumberID      string           `json:"phone_number_id"`
	PhoneNumber        string           `json:"phone_number,omitempty"`
	BusinessToken      string           `json:"-"`
	PortfolioID        string           `json:"portfolio_id,omitempty"`
	OnboardingStatus   OnboardingStatus `json:"onboarding_status"`
	PaymentMethodAdded bool             `json:"payment_method_added"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}
