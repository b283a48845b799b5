/**
 * @description
 * This file defines the repository interface for account persistence, along
 * with the sentinel errors and parameter types shared by its implementations.
 *
 * @notes
 * - `UpsertAccountParams` carries only the fields a caller wants to write;
 *   empty strings mean "leave the stored value untouched" so repeated
 *   onboarding runs merge rather than overwrite.
 */
package store

import (
	"context"
	"errors"

	"github.com/waconnect/onboarding-service/internal/domain"
)

// ErrAccountNotFound is returned when no account matches the given key.
var ErrAccountNotFound = errors.New("account not found")

// UpsertAccountParams holds the fields written by an onboarding run.
// WABAID is the conflict key; the remaining fields are merged into any
// existing record.
type UpsertAccountParams struct {
	WABAID           string
	PhoneNumberID    string
	PhoneNumber      string
	BusinessToken    string
	PortfolioID      string
	BusinessName     string
	Email            string
	OnboardingStatus domain.OnboardingStatus
}

// AccountRepository defines the interface for account data storage.
type AccountRepository interface {
	UpsertAccount(ctx context.Context, params UpsertAccountParams) (*domain.Account, error)
	FindAccountByID(ctx context.Context, id string) (*domain.Account, error)
	FindAccountByWABAID(ctx context.Context, wabaID string) (*domain.Account, error)
	MarkOnboardingCompleted(ctx context.Context, wabaID string) error
	MarkOnboardingFailed(ctx context.Context, wabaID string) error
	MarkPaymentMethodAdded(ctx context.Context, wabaID string) error
}
