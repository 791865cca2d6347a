// Package codeapi validates credential payloads and fetches
// verification codes from the external lookup endpoints.
package codeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"mailshop/internal/logging"
	"mailshop/internal/model"
)

var (
	ErrInvalidFormat  = errors.New("invalid credential format")
	ErrUnknownService = errors.New("unknown code service")
)

const defaultTimeout = 30 * time.Second

var (
	// email|password|token|client_id, all four non-empty.
	hotmailPayloadRe = regexp.MustCompile(`^[^|]+\|[^|]+\|[^|]+\|[^|]+$`)
	gmailPayloadRe   = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@gmail\.com$`)
)

// Result carries one lookup outcome. Code set means success; an empty
// Code with a Message is a business failure reported by the endpoint.
// Infrastructure failures come back as an error instead.
type Result struct {
	Code    string
	Message string
}

type apiResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

type Client struct {
	hotmailURL string
	gmailURL   string
	timeout    time.Duration
	httpClient *http.Client
}

func NewClient(hotmailURL, gmailURL string) *Client {
	return &Client{
		hotmailURL: hotmailURL,
		gmailURL:   gmailURL,
		timeout:    defaultTimeout,
		httpClient: http.DefaultClient,
	}
}

// WithTimeout overrides the lookup deadline.
func (c *Client) WithTimeout(d time.Duration) *Client {
	c.timeout = d
	return c
}

// Validate checks the payload against the service's required shape
// without calling the endpoint.
func (c *Client) Validate(service model.CodeService, payload string) error {
	switch service {
	case model.CodeHotmail:
		if !hotmailPayloadRe.MatchString(payload) {
			return ErrInvalidFormat
		}
	case model.CodeGmail:
		if !gmailPayloadRe.MatchString(payload) {
			return ErrInvalidFormat
		}
	default:
		return ErrUnknownService
	}
	return nil
}

// FetchCode validates the payload and asks the service's endpoint for
// a verification code. The credential fields travel as GET query
// parameters, matching the endpoint contract.
func (c *Client) FetchCode(ctx context.Context, service model.CodeService, payload string) (Result, error) {
	if err := c.Validate(service, payload); err != nil {
		return Result{}, err
	}

	endpoint, params := c.request(service, payload)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.Logg.Error("Code lookup request failed", "service", service, "error", err)
		return Result{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logging.Logg.Error("Code lookup bad status", "service", service, "status", resp.StatusCode)
		return Result{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		logging.Logg.Error("Code lookup bad response", "service", service, "error", err)
		return Result{}, fmt.Errorf("failed to decode response: %w", err)
	}

	logging.Logg.Info("Code lookup response",
		"service", service, "has_code", apiResp.Code != "", "status", apiResp.Status)

	if apiResp.Code != "" {
		return Result{Code: apiResp.Code}, nil
	}

	message := apiResp.Message
	if message == "" {
		message = "Unknown error occurred"
	}
	return Result{Message: message}, nil
}

func (c *Client) request(service model.CodeService, payload string) (string, url.Values) {
	params := url.Values{}
	switch service {
	case model.CodeHotmail:
		fields := strings.Split(payload, "|")
		params.Set("email", fields[0])
		params.Set("password", fields[1])
		params.Set("token", fields[2])
		params.Set("client_id", fields[3])
		return c.hotmailURL, params
	default:
		params.Set("email", payload)
		return c.gmailURL, params
	}
}
