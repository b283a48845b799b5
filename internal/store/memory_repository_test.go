package store

import (
	"context"
	"testing"

	"github.com/waconnect/onboarding-service/internal/domain"
)

func TestUpsertAccount_MergesNonOverlappingFields(t *testing.T) {
	repo := NewMemoryAccountRepository()
	ctx := context.Background()

	first, err := repo.UpsertAccount(ctx, UpsertAccountParams{
		WABAID:        "waba1",
		PhoneNumberID: "phone1",
		BusinessToken: "tok1",
	})
	if err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}

	second, err := repo.UpsertAccount(ctx, UpsertAccountParams{
		WABAID:      "waba1",
		PhoneNumber: "+15551234567",
		Email:       "owner@example.com",
	})
	if err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	if second.ID != first.ID {
		t.Fatalf("expected one record, got two IDs %q and %q", first.ID, second.ID)
	}
	if second.PhoneNumberID != "phone1" {
		t.Fatalf("second upsert erased phone_number_id, got %q", second.PhoneNumberID)
	}
	if second.PhoneNumber != "+15551234567" {
		t.Fatalf("expected merged phone number, got %q", second.PhoneNumber)
	}
	if second.Email != "owner@example.com" {
		t.Fatalf("expected merged email, got %q", second.Email)
	}
}

func TestUpsertAccount_IdempotentForIdenticalInput(t *testing.T) {
	repo := NewMemoryAccountRepository()
	ctx := context.Background()

	params := UpsertAccountParams{
		WABAID:           "waba1",
		PhoneNumberID:    "phone1",
		BusinessToken:    "tok1",
		OnboardingStatus: domain.OnboardingCompleted,
	}

	first, err := repo.UpsertAccount(ctx, params)
	if err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	second, err := repo.UpsertAccount(ctx, params)
	if err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("idempotent upsert created a duplicate record")
	}
	if second.OnboardingStatus != domain.OnboardingCompleted {
		t.Fatalf("expected completed status, got %q", second.OnboardingStatus)
	}
}

func TestUpsertAccount_CompletedStatusNeverRegresses(t *testing.T) {
	repo := NewMemoryAccountRepository()
	ctx := context.Background()

	_, err := repo.UpsertAccount(ctx, UpsertAccountParams{
		WABAID:           "waba1",
		OnboardingStatus: domain.OnboardingCompleted,
	})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	account, err := repo.UpsertAccount(ctx, UpsertAccountParams{
		WABAID:           "waba1",
		OnboardingStatus: domain.OnboardingPending,
	})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if account.OnboardingStatus != domain.OnboardingCompleted {
		t.Fatalf("completed status regressed to %q", account.OnboardingStatus)
	}

	if err := repo.MarkOnboardingFailed(ctx, "waba1"); err != nil {
		t.Fatalf("mark failed errored: %v", err)
	}
	stored, err := repo.FindAccountByWABAID(ctx, "waba1")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if stored.OnboardingStatus != domain.OnboardingCompleted {
		t.Fatalf("terminal failure overwrote completed status with %q", stored.OnboardingStatus)
	}
}

func TestFindAccount_NeverReturnsBusinessToken(t *testing.T) {
	repo := NewMemoryAccountRepository()
	ctx := context.Background()

	created, err := repo.UpsertAccount(ctx, UpsertAccountParams{
		WABAID:        "waba1",
		BusinessToken: "super-secret",
	})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	byID, err := repo.FindAccountByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("find by id failed: %v", err)
	}
	if byID.BusinessToken != "" {
		t.Fatal("FindAccountByID leaked the business token")
	}

	byWABA, err := repo.FindAccountByWABAID(ctx, "waba1")
	if err != nil {
		t.Fatalf("find by waba failed: %v", err)
	}
	if byWABA.BusinessToken != "" {
		t.Fatal("FindAccountByWABAID leaked the business token")
	}
}

func TestFindAccountByID_NotFound(t *testing.T) {
	repo := NewMemoryAccountRepository()
	if _, err := repo.FindAccountByID(context.Background(), "missing"); err != ErrAccountNotFound {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}
