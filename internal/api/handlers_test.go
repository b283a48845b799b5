package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/waconnect/onboarding-service/internal/app"
	"github.com/waconnect/onboarding-service/internal/config"
	"github.com/waconnect/onboarding-service/internal/store"
	"github.com/waconnect/onboarding-service/pkg/graphclient"
)

// newTestRouter wires the real service against a fake Graph API and an
// in-memory store, matching the production wiring in cmd/main.go. overrides
// replaces the default handler for a Graph endpoint pattern.
func newTestRouter(t *testing.T, overrides map[string]http.HandlerFunc) (http.Handler, *store.MemoryAccountRepository) {
	t.Helper()

	graphHandlers := map[string]http.HandlerFunc{
		"POST /oauth/access_token": func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"access_token": "tok1"})
		},
		"GET /phone1": func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"id": "phone1", "display_phone_number": "+15550001111"})
		},
		"POST /phone1/register": func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]bool{"success": true})
		},
		"POST /waba1/subscribed_apps": func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]bool{"success": true})
		},
	}
	for pattern, handler := range overrides {
		graphHandlers[pattern] = handler
	}

	// Go 1.21's ServeMux does not understand "METHOD /path" patterns, so
	// split each pattern and enforce the method in a wrapper.
	mux := http.NewServeMux()
	for pattern, handler := range graphHandlers {
		method, path, _ := strings.Cut(pattern, " ")
		h := handler
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != method {
				http.NotFound(w, r)
				return
			}
			h(w, r)
		})
	}
	graphServer := httptest.NewServer(mux)
	t.Cleanup(graphServer.Close)

	repo := store.NewMemoryAccountRepository()
	client := graphclient.NewClient(graphServer.URL, "app-id", "app-secret")
	service := app.NewOnboardingService(repo, client, nil, "123456")

	dispatcher := app.NewWebhookDispatcher()
	app.NewWebhookEventHandler(repo, nil).RegisterHandlers(dispatcher)

	cfg := &config.Config{WebhookVerifyToken: "verify-token"}
	return NewRouter(cfg, service, dispatcher), repo
}

func TestOnboardEndpoint_Success(t *testing.T) {
	router, repo := newTestRouter(t, nil)

	body := `{"code":"abc","waba_id":"waba1","phone_number_id":"phone1"}`
	req := httptest.NewRequest(http.MethodPost, "/onboarding", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result app.OnboardingResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.AccountID == "" {
		t.Fatal("expected account_id in response")
	}
	if !result.RequiresPayment {
		t.Fatal("expected requires_payment true")
	}
	if result.PhoneNumber != "+15550001111" {
		t.Fatalf("expected resolved phone number, got %q", result.PhoneNumber)
	}

	stored, err := repo.FindAccountByWABAID(req.Context(), "waba1")
	if err != nil {
		t.Fatalf("expected persisted account: %v", err)
	}
	if stored.ID != result.AccountID {
		t.Fatalf("stored account %q does not match response %q", stored.ID, result.AccountID)
	}
}

func TestOnboardEndpoint_MissingFields(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/onboarding", strings.NewReader(`{"code":"abc"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if resp["error"] == "" {
		t.Fatal("expected error message in body")
	}
}

func TestOnboardEndpoint_UpstreamRejection(t *testing.T) {
	router, _ := newTestRouter(t, map[string]http.HandlerFunc{
		"POST /oauth/access_token": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]map[string]string{"error": {"message": "code already used"}})
		},
	})

	body := `{"code":"abc","waba_id":"waba1","phone_number_id":"phone1"}`
	req := httptest.NewRequest(http.MethodPost, "/onboarding", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "code already used") {
		t.Fatalf("expected upstream diagnostic echoed, got %s", rec.Body.String())
	}
}

func TestGetAccountEndpoint_OmitsBusinessToken(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	body := `{"code":"abc","waba_id":"waba1","phone_number_id":"phone1"}`
	req := httptest.NewRequest(http.MethodPost, "/onboarding", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("onboarding failed: %d", rec.Code)
	}
	var result app.OnboardingResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/accounts/"+result.AccountID, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	raw := rec.Body.String()
	if strings.Contains(raw, "tok1") {
		t.Fatal("account response leaked the business token")
	}
	if !strings.Contains(raw, `"onboarding_status":"completed"`) {
		t.Fatalf("expected completed status in response, got %s", raw)
	}
}

func TestGetAccountEndpoint_NotFound(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/accounts/does-not-exist", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
