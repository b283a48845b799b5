package app

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/waconnect/onboarding-service/internal/domain"
)

func envelopeWith(changes ...domain.WebhookChange) domain.WebhookEnvelope {
	return domain.WebhookEnvelope{
		Object: "whatsapp_business_account",
		Entry:  []domain.WebhookEntry{{ID: "waba1", Changes: changes}},
	}
}

func TestDispatch_InvokesOneHandlerPerField(t *testing.T) {
	dispatcher := NewWebhookDispatcher()

	var messageCalls, accountCalls int
	dispatcher.Register("messages", func(ctx context.Context, wabaID string, value json.RawMessage) error {
		messageCalls++
		return nil
	})
	dispatcher.Register("account_update", func(ctx context.Context, wabaID string, value json.RawMessage) error {
		accountCalls++
		return nil
	})

	dispatcher.Dispatch(context.Background(), envelopeWith(
		domain.WebhookChange{Field: "messages", Value: json.RawMessage(`{}`)},
		domain.WebhookChange{Field: "account_update", Value: json.RawMessage(`{}`)},
	))

	if messageCalls != 1 {
		t.Fatalf("expected one messages handler call, got %d", messageCalls)
	}
	if accountCalls != 1 {
		t.Fatalf("expected one account_update handler call, got %d", accountCalls)
	}
}

func TestDispatch_IgnoresUnknownFields(t *testing.T) {
	dispatcher := NewWebhookDispatcher()

	var calls int
	dispatcher.Register("messages", func(ctx context.Context, wabaID string, value json.RawMessage) error {
		calls++
		return nil
	})

	dispatcher.Dispatch(context.Background(), envelopeWith(
		domain.WebhookChange{Field: "security", Value: json.RawMessage(`{}`)},
	))

	if calls != 0 {
		t.Fatalf("unknown field should not invoke handlers, got %d calls", calls)
	}
}

func TestDispatch_SwallowsHandlerFailures(t *testing.T) {
	dispatcher := NewWebhookDispatcher()

	var secondCalled bool
	dispatcher.Register("messages", func(ctx context.Context, wabaID string, value json.RawMessage) error {
		return errors.New("handler blew up")
	})
	dispatcher.Register("account_update", func(ctx context.Context, wabaID string, value json.RawMessage) error {
		secondCalled = true
		return nil
	})

	dispatcher.Dispatch(context.Background(), envelopeWith(
		domain.WebhookChange{Field: "messages", Value: json.RawMessage(`{}`)},
		domain.WebhookChange{Field: "account_update", Value: json.RawMessage(`{}`)},
	))

	if !secondCalled {
		t.Fatal("a failing handler must not stop dispatch of later changes")
	}
}
