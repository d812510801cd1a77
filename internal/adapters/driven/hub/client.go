package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/windlass-labs/windlass/internal/core/domain"
	"github.com/windlass-labs/windlass/internal/core/ports/driven"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRequestsPerSecond bounds the request rate to the hub.
	DefaultRequestsPerSecond = 10
)

// Config holds hub client settings.
type Config struct {
	// BaseURL is the hub API root, e.g. "https://hub.example.com".
	BaseURL string

	// APIKey authenticates this service to the hub.
	APIKey string

	// Timeout overrides the HTTP request timeout when positive.
	Timeout time.Duration

	// RequestsPerSecond overrides the rate limit when positive.
	RequestsPerSecond float64
}

// Ensure Client implements the port.
var _ driven.Sink = (*Client)(nil)

// Client talks to the hub's REST API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a hub client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = DefaultRequestsPerSecond
	}
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// userPayload is the wire shape of one user record.
type userPayload struct {
	ID               string   `json:"id"`
	DisplayName      string   `json:"displayName"`
	Email            string   `json:"email,omitempty"`
	AdditionalEmails []string `json:"additionalEmails,omitempty"`
}

// UpsertUsers pushes one batch of users for the organisation.
func (c *Client) UpsertUsers(ctx context.Context, organisationID string, users []domain.UserRecord) error {
	payload := struct {
		OrganisationID string        `json:"organisationId"`
		Users          []userPayload `json:"users"`
	}{
		OrganisationID: organisationID,
		Users:          make([]userPayload, 0, len(users)),
	}
	for _, u := range users {
		payload.Users = append(payload.Users, userPayload{
			ID:               u.ID,
			DisplayName:      u.DisplayName,
			Email:            u.Email,
			AdditionalEmails: u.AdditionalEmails,
		})
	}

	if err := c.do(ctx, http.MethodPost, "/api/rest/users", payload); err != nil {
		return fmt.Errorf("upsert users: %w", err)
	}
	return nil
}

// DeleteUsersSyncedBefore tombstones hub records not refreshed since
// the watermark.
func (c *Client) DeleteUsersSyncedBefore(ctx context.Context, organisationID string, syncedBefore time.Time) error {
	payload := struct {
		OrganisationID string `json:"organisationId"`
		SyncedBefore   string `json:"syncedBefore"`
	}{
		OrganisationID: organisationID,
		SyncedBefore:   syncedBefore.UTC().Format(time.RFC3339),
	}

	if err := c.do(ctx, http.MethodDelete, "/api/rest/users", payload); err != nil {
		return fmt.Errorf("delete users: %w", err)
	}
	return nil
}

// UpdateConnectionStatus flags the organisation's connection state.
func (c *Client) UpdateConnectionStatus(ctx context.Context, organisationID string, hasError bool) error {
	payload := struct {
		OrganisationID string `json:"organisationId"`
		HasError       bool   `json:"hasError"`
	}{
		OrganisationID: organisationID,
		HasError:       hasError,
	}

	if err := c.do(ctx, http.MethodPost, "/api/rest/connection-status", payload); err != nil {
		return fmt.Errorf("update connection status: %w", err)
	}
	return nil
}

// do sends one JSON request and checks the response status.
func (c *Client) do(ctx context.Context, method, path string, payload any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(msg)),
		}
	}
	return nil
}
