/**
 * @description
 * This file contains the core business logic for the onboarding-service: the
 * onboarding saga that takes the authorization code produced by Meta's
 * Embedded Signup flow and turns it into a connected, persisted WhatsApp
 * Business account.
 *
 * Saga steps and failure policy:
 *  1. Exchange the authorization code for a business access token. Critical.
 *  2. Fetch the phone number details (display number). Critical.
 *  3. Register the phone number with the Cloud API using the configured PIN.
 *     Best-effort: this call regularly fails while business verification is
 *     still pending on Meta's side, and we do not gate onboarding on it.
 *  4. Subscribe the WABA to our app's webhooks. Best-effort.
 *  5. Upsert the account record. Critical.
 * Steps run strictly in order; a critical failure aborts before the next step.
 * There is no compensation: provider-side state is not rolled back.
 *
 * @dependencies
 * - The service's internal packages for domain models and storage.
 * - pkg/graphclient for the Meta Graph API calls.
 */
package app

import (
	"context"
	"errors"
	"log"

	"github.com/waconnect/onboarding-service/internal/domain"
	"github.com/waconnect/onboarding-service/internal/store"
	"github.com/waconnect/onboarding-service/pkg/graphclient"
)

// EventsExchange is the topic exchange internal events are published to.
const EventsExchange = "whatsapp_events"

// subscribedFields is the fixed set of webhook fields every onboarded WABA is
// subscribed to.
var subscribedFields = []string{
	"messages",
	"message_deliveries",
	"message_reads",
	"message_reactions",
	"messaging_handovers",
	"account_update",
}

// GraphAPI is the subset of the Graph client the saga depends on.
type GraphAPI interface {
	ExchangeCode(ctx context.Context, code string) (string, error)
	GetPhoneNumber(ctx context.Context, phoneNumberID, token string) (*domain.PhoneNumberInfo, error)
	RegisterPhoneNumber(ctx context.Context, phoneNumberID, token, pin string) error
	SubscribeApps(ctx context.Context, wabaID, token string, fields []string) error
}

// EventPublisher publishes internal events to the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body interface{}) error
}

// OnboardingService orchestrates the onboarding saga and account lookups.
type OnboardingService struct {
	repo      store.AccountRepository
	graph     GraphAPI
	publisher EventPublisher // optional; nil disables event publishing
	pin       string
}

// NewOnboardingService creates a new instance of OnboardingService.
func NewOnboardingService(repo store.AccountRepository, graph GraphAPI, publisher EventPublisher, pin string) *OnboardingService {
	return &OnboardingService{
		repo:      repo,
		graph:     graph,
		publisher: publisher,
		pin:       pin,
	}
}

// OnboardInput is the data collected from the Embedded Signup flow.
type OnboardInput struct {
	Code          string
	WABAID        string
	PhoneNumberID string
	PortfolioID   string
	BusinessName  string
	Email         string
}

// OnboardingResult is returned to the caller after a successful run.
type OnboardingResult struct {
	AccountID       string `json:"account_id"`
	WABAID          string `json:"waba_id"`
	PhoneNumberID   string `json:"phone_number_id"`
	PhoneNumber     string `json:"phone_number,omitempty"`
	RequiresPayment bool   `json:"requires_payment"`
}

// Onboard runs the onboarding saga for one Embedded Signup completion.
func (s *OnboardingService) Onboard(ctx context.Context, input OnboardInput) (*OnboardingResult, error) {
	if input.Code == "" || input.WABAID == "" || input.PhoneNumberID == "" {
		return nil, &ValidationError{Msg: "code, waba_id and phone_number_id are all required"}
	}

	// Step 1: exchange the authorization code for a business access token.
	log.Printf("Onboarding WABA %s: exchanging authorization code", input.WABAID)
	token, err := s.graph.ExchangeCode(ctx, input.Code)
	if err != nil {
		log.Printf("ERROR: Token exchange failed for WABA %s: %v", input.WABAID, err)
		return nil, upstreamError("failed to exchange authorization code for a token", err)
	}

	// Step 2: fetch the phone number details to populate the durable record.
	phoneInfo, err := s.graph.GetPhoneNumber(ctx, input.PhoneNumberID, token)
	if err != nil {
		log.Printf("ERROR: Phone number lookup failed for %s: %v", input.PhoneNumberID, err)
		return nil, upstreamError("failed to fetch phone number details", err)
	}
	log.Printf("Onboarding WABA %s: phone number resolved to %s", input.WABAID, phoneInfo.DisplayPhoneNumber)

	// Step 3: register the number with the Cloud API. Best-effort; Meta often
	// rejects this while business verification is still pending.
	if err := s.graph.RegisterPhoneNumber(ctx, input.PhoneNumberID, token, s.pin); err != nil {
		log.Printf("WARN: Phone number registration failed for %s, continuing onboarding: %v", input.PhoneNumberID, err)
	}

	// Step 4: subscribe the WABA to our webhooks. Best-effort.
	if err := s.graph.SubscribeApps(ctx, input.WABAID, token, subscribedFields); err != nil {
		log.Printf("WARN: Webhook subscription failed for WABA %s, continuing onboarding: %v", input.WABAID, err)
	}

	// Step 5: persist the merged result. Critical; the upstream account may
	// already be partially activated, but without a record the run failed.
	account, err := s.repo.UpsertAccount(ctx, store.UpsertAccountParams{
		WABAID:           input.WABAID,
		PhoneNumberID:    input.PhoneNumberID,
		PhoneNumber:      phoneInfo.DisplayPhoneNumber,
		BusinessToken:    token,
		PortfolioID:      input.PortfolioID,
		BusinessName:     input.BusinessName,
		Email:            input.Email,
		OnboardingStatus: domain.OnboardingCompleted,
	})
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}
	log.Printf("Onboarding WABA %s: account %s saved", input.WABAID, account.ID)

	s.publish(ctx, "account.onboarded", domain.AccountOnboardedEvent{
		AccountID:     account.ID,
		WABAID:        account.WABAID,
		PhoneNumberID: account.PhoneNumberID,
		PhoneNumber:   account.PhoneNumber,
	})

	return &OnboardingResult{
		AccountID:       account.ID,
		WABAID:          account.WABAID,
		PhoneNumberID:   account.PhoneNumberID,
		PhoneNumber:     account.PhoneNumber,
		RequiresPayment: true, // Meta requires a payment method before volume messaging.
	}, nil
}

// GetAccount retrieves an onboarded account by its internal ID. The business
// token is never part of the returned projection.
func (s *OnboardingService) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return s.repo.FindAccountByID(ctx, id)
}

// publish sends an internal event if a publisher is configured. Failures are
// logged and swallowed; the broker is not on the critical path.
func (s *OnboardingService) publish(ctx context.Context, routingKey string, body interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, EventsExchange, routingKey, body); err != nil {
		log.Printf("WARN: Failed to publish %s event: %v", routingKey, err)
	}
}

// upstreamError wraps a Graph client failure, carrying the upstream diagnostic
// when one is available.
func upstreamError(msg string, err error) *UpstreamError {
	var apiErr *graphclient.APIError
	if errors.As(err, &apiErr) {
		detail := apiErr.Message
		if detail == "" {
			detail = apiErr.Body
		}
		return &UpstreamError{Msg: msg, Details: detail}
	}
	return &UpstreamError{Msg: msg, Details: err.Error()}
}
