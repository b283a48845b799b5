/**
 * @description
 * This file provides an in-memory implementation of the AccountRepository.
 * It mirrors the merge and monotonic-transition semantics of the Postgres
 * implementation and backs the service's tests, where a database is not
 * available.
 */
package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/waconnect/onboarding-service/internal/domain"
)

// MemoryAccountRepository is a mutex-guarded, map-backed AccountRepository.
type MemoryAccountRepository struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account // keyed by WABA ID
}

// NewMemoryAccountRepository creates an empty in-memory repository.
func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{accounts: make(map[string]*domain.Account)}
}

// mergeAccount applies UpsertAccountParams onto an existing account following
// the same rules as the SQL upsert: empty fields leave stored values untouched,
// and a completed onboarding status never regresses.
func mergeAccount(existing domain.Account, params UpsertAccountParams) domain.Account {
	merged := existing
	if params.PhoneNumberID != "" {
		merged.PhoneNumberID = params.PhoneNumberID
	}
	if params.PhoneNumber != "" {
		merged.PhoneNumber = params.PhoneNumber
	}
	if params.BusinessToken != "" {
		merged.BusinessToken = params.BusinessToken
	}
	if params.PortfolioID != "" {
		merged.PortfolioID = params.PortfolioID
	}
	if params.BusinessName != "" {
		merged.BusinessName = params.BusinessName
	}
	if params.Email != "" {
		merged.Email = params.Email
	}
	if params.OnboardingStatus != "" && existing.OnboardingStatus != domain.OnboardingCompleted {
		merged.OnboardingStatus = params.OnboardingStatus
	}
	merged.UpdatedAt = time.Now().UTC()
	return merged
}

// UpsertAccount creates or merges the record for params.WABAID.
func (r *MemoryAccountRepository) UpsertAccount(ctx context.Context, params UpsertAccountParams) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	status := params.OnboardingStatus
	if status == "" {
		status = domain.OnboardingPending
	}

	existing, ok := r.accounts[params.WABAID]
	if !ok {
		now := time.Now().UTC()
		account := domain.Account{
			ID:               uuid.New().String(),
			WABAID:           params.WABAID,
			OnboardingStatus: domain.OnboardingPending,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		params.OnboardingStatus = status
		account = mergeAccount(account, params)
		r.accounts[params.WABAID] = &account
		return redacted(&account), nil
	}

	params.OnboardingStatus = status
	merged := mergeAccount(*existing, params)
	r.accounts[params.WABAID] = &merged
	return redacted(&merged), nil
}

// FindAccountByID retrieves an account by internal ID. The business token is
// stripped from the returned copy, matching the Postgres read projection.
func (r *MemoryAccountRepository) FindAccountByID(ctx context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, account := range r.accounts {
		if account.ID == id {
			return redacted(account), nil
		}
	}
	return nil, ErrAccountNotFound
}

// FindAccountByWABAID retrieves an account by WABA ID with the token stripped.
func (r *MemoryAccountRepository) FindAccountByWABAID(ctx context.Context, wabaID string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[wabaID]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return redacted(account), nil
}

// MarkOnboardingCompleted applies the monotonic completed transition.
func (r *MemoryAccountRepository) MarkOnboardingCompleted(ctx context.Context, wabaID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[wabaID]
	if !ok {
		return nil
	}
	if account.OnboardingStatus != domain.OnboardingCompleted {
		account.OnboardingStatus = domain.OnboardingCompleted
		account.UpdatedAt = time.Now().UTC()
	}
	return nil
}

// MarkOnboardingFailed records a terminal failure unless already completed.
func (r *MemoryAccountRepository) MarkOnboardingFailed(ctx context.Context, wabaID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[wabaID]
	if !ok {
		return nil
	}
	if account.OnboardingStatus != domain.OnboardingCompleted {
		account.OnboardingStatus = domain.OnboardingFailed
		account.UpdatedAt = time.Now().UTC()
	}
	return nil
}

// MarkPaymentMethodAdded flips the payment flag.
func (r *MemoryAccountRepository) MarkPaymentMethodAdded(ctx context.Context, wabaID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if account, ok := r.accounts[wabaID]; ok {
		account.PaymentMethodAdded = true
		account.UpdatedAt = time.Now().UTC()
	}
	return nil
}

// redacted returns a copy with the business token stripped, matching the
// Postgres read projection.
func redacted(a *domain.Account) *domain.Account {
	c := *a
	c.BusinessToken = ""
	return &c
}
