/**
 * @description
 * This package provides a client for interacting with the Meta Graph API.
 * It encapsulates the logic for making authenticated HTTP requests to the
 * endpoints used during WhatsApp Business onboarding.
 *
 * Key features:
 * - Manages the API base URL and the app's OAuth credentials.
 * - Provides methods for the specific Graph operations the onboarding saga
 *   needs (token exchange, phone number lookup, registration, webhook
 *   subscription).
 * - Handles JSON serialization/deserialization and surfaces non-success
 *   responses as *APIError so callers can apply their own failure policy.
 *
 * @dependencies
 * - bytes, context, encoding/json, fmt, io, net/http, time: Standard Go libraries.
 * - The service's internal domain package for Graph API request/response models.
 */
package graphclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/waconnect/onboarding-service/internal/domain"
)

// APIError represents a non-success response from the Graph API. It carries the
// upstream diagnostic so the caller can echo it to operators.
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("graph API error: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("graph API error: status %d", e.StatusCode)
}

// Client is a client for the Meta Graph API.
type Client struct {
	baseURL    string
	appID      string
	appSecret  string
	httpClient *http.Client
}

// NewClient creates a new Graph API client. baseURL includes the API version,
// e.g. "https://graph.facebook.com/v21.0".
func NewClient(baseURL, appID, appSecret string) *Client {
	return &Client{
		baseURL:   baseURL,
		appID:     appID,
		appSecret: appSecret,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ExchangeCode exchanges the short-lived authorization code from the Embedded
// Signup flow for a long-lived business access token.
func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	url := fmt.Sprintf("%s/oauth/access_token", c.baseURL)
	body := map[string]string{
		"client_id":     c.appID,
		"client_secret": c.appSecret,
		"code":          code,
	}

	var resp domain.TokenResponse
	if err := c.do(ctx, http.MethodPost, url, "", body, &resp); err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		msg := "no access token was returned"
		if resp.Error != nil && resp.Error.Message != "" {
			msg = resp.Error.Message
		}
		return "", &APIError{StatusCode: http.StatusOK, Message: msg}
	}
	return resp.AccessToken, nil
}

// GetPhoneNumber fetches the details of a WhatsApp phone number, including its
// display phone number, using the business access token.
func (c *Client) GetPhoneNumber(ctx context.Context, phoneNumberID, token string) (*domain.PhoneNumberInfo, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, phoneNumberID)
	var resp domain.PhoneNumberInfo
	if err := c.do(ctx, http.MethodGet, url, token, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RegisterPhoneNumber registers the phone number with the WhatsApp Cloud API.
// This is the call that moves the number from "Pending" to "Connected" on the
// provider side.
func (c *Client) RegisterPhoneNumber(ctx context.Context, phoneNumberID, token, pin string) error {
	url := fmt.Sprintf("%s/%s/register", c.baseURL, phoneNumberID)
	body := domain.RegisterPhoneNumberRequest{
		MessagingProduct: "whatsapp",
		Pin:              pin,
	}

	var resp domain.SuccessResponse
	if err := c.do(ctx, http.MethodPost, url, token, body, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return &APIError{StatusCode: http.StatusOK, Message: "registration endpoint did not report success"}
	}
	return nil
}

// SubscribeApps subscribes the WABA to this app so Meta starts delivering
// webhook notifications for the given fields.
func (c *Client) SubscribeApps(ctx context.Context, wabaID, token string, fields []string) error {
	url := fmt.Sprintf("%s/%s/subscribed_apps", c.baseURL, wabaID)
	body := domain.SubscribeAppsRequest{SubscribedFields: fields}

	var resp domain.SuccessResponse
	if err := c.do(ctx, http.MethodPost, url, token, body, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return &APIError{StatusCode: http.StatusOK, Message: "subscription endpoint did not report success"}
	}
	return nil
}

// do is a helper function to make HTTP requests to the Graph API.
func (c *Client) do(ctx context.Context, method, url, token string, body, target interface{}) error {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create http request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	log.Printf("Making Graph API request: %s %s", method, url)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
		var graphErr domain.GraphErrorResponse
		if err := json.Unmarshal(respBody, &graphErr); err == nil {
			apiErr.Message = graphErr.Error.Message
		}
		log.Printf("Graph API returned non-success status code %d for %s %s", resp.StatusCode, method, url)
		return apiErr
	}

	if target != nil {
		if err := json.Unmarshal(respBody, target); err != nil {
			return fmt.Errorf("failed to unmarshal response body: %w", err)
		}
	}

	return nil
}
