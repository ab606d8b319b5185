// Package cli provides the HTTP client and output helpers for the pv command.
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/promptvaultapp/promptvault-server/internal/api"
	"github.com/promptvaultapp/promptvault-server/internal/backup"
	"github.com/promptvaultapp/promptvault-server/internal/domain"
)

// Client is an HTTP client for the PromptVault API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new API client. apiKey may be empty when the
// server allows localhost bypass.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// envelope matches the server's response envelope.
type envelope[T any] struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errEnv envelope[any]
		if json.Unmarshal(respBody, &errEnv) == nil {
			if errEnv.Message != "" {
				return nil, fmt.Errorf("server error (%d): %s", resp.StatusCode, errEnv.Message)
			}
			if errEnv.Error != "" {
				return nil, fmt.Errorf("server error (%d): %s", resp.StatusCode, errEnv.Error)
			}
		}
		return nil, fmt.Errorf("server error (%d): %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

// request performs a call and unwraps the data envelope.
func request[T any](ctx context.Context, c *Client, method, path string, body any) (*T, error) {
	respBody, err := c.do(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	var env envelope[T]
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !env.Success {
		return nil, fmt.Errorf("server reported failure: %s", env.Error)
	}

	return &env.Data, nil
}

// ListOptions carries filters for listing prompts.
type ListOptions struct {
	Search   string
	Category string
	Tags     []string
	Sort     string
	Limit    int
	Offset   int
}

func (o ListOptions) query() string {
	q := url.Values{}
	if o.Search != "" {
		q.Set("q", o.Search)
	}
	if o.Category != "" {
		q.Set("category", o.Category)
	}
	for _, tag := range o.Tags {
		q.Add("tag", tag)
	}
	if o.Sort != "" {
		q.Set("sort", o.Sort)
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Offset > 0 {
		q.Set("offset", strconv.Itoa(o.Offset))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// Health checks server liveness.
func (c *Client) Health(ctx context.Context) (*api.HealthResponse, error) {
	return request[api.HealthResponse](ctx, c, http.MethodGet, "/health", nil)
}

// CreatePrompt creates a new prompt.
func (c *Client) CreatePrompt(ctx context.Context, req api.CreatePromptRequest) (*api.PromptResponse, error) {
	return request[api.PromptResponse](ctx, c, http.MethodPost, "/api/v1/prompts", req)
}

// GetPrompt fetches a prompt by slug, optionally recording a use.
func (c *Client) GetPrompt(ctx context.Context, slug string, track bool) (*api.PromptResponse, error) {
	path := "/api/v1/prompts/" + url.PathEscape(slug)
	if track {
		path += "?track=true"
	}
	return request[api.PromptResponse](ctx, c, http.MethodGet, path, nil)
}

// ListPrompts returns prompts matching the given filters.
func (c *Client) ListPrompts(ctx context.Context, opts ListOptions) (*api.ListPromptsResponse, error) {
	return request[api.ListPromptsResponse](ctx, c, http.MethodGet, "/api/v1/prompts"+opts.query(), nil)
}

// UpdatePrompt applies a partial update to a prompt.
func (c *Client) UpdatePrompt(ctx context.Context, slug string, req api.UpdatePromptRequest) (*api.PromptResponse, error) {
	return request[api.PromptResponse](ctx, c, http.MethodPatch, "/api/v1/prompts/"+url.PathEscape(slug), req)
}

// DeletePrompt deletes a prompt.
func (c *Client) DeletePrompt(ctx context.Context, slug string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/v1/prompts/"+url.PathEscape(slug), nil)
	return err
}

// RandomPrompt returns a random prompt, optionally filtered.
func (c *Client) RandomPrompt(ctx context.Context, category, tag string) (*api.PromptResponse, error) {
	q := url.Values{}
	if category != "" {
		q.Set("category", category)
	}
	if tag != "" {
		q.Set("tag", tag)
	}
	path := "/api/v1/prompts/random"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	return request[api.PromptResponse](ctx, c, http.MethodGet, path, nil)
}

// RenderPrompt substitutes variables into a template prompt.
func (c *Client) RenderPrompt(ctx context.Context, slug string, variables map[string]any) (*api.RenderPromptResponse, error) {
	req := api.RenderPromptRequest{Variables: variables}
	return request[api.RenderPromptResponse](ctx, c, http.MethodPost, "/api/v1/prompts/"+url.PathEscape(slug)+"/render", req)
}

// ValidateTemplate checks template syntax on the server.
func (c *Client) ValidateTemplate(ctx context.Context, content string) (*api.ValidateTemplateResponse, error) {
	req := api.ValidateTemplateRequest{Content: content}
	return request[api.ValidateTemplateResponse](ctx, c, http.MethodPost, "/api/v1/templates/validate", req)
}

// ListVersions returns the version ledger of a prompt, newest first.
func (c *Client) ListVersions(ctx context.Context, slug string) (*api.ListVersionsResponse, error) {
	return request[api.ListVersionsResponse](ctx, c, http.MethodGet, "/api/v1/prompts/"+url.PathEscape(slug)+"/versions", nil)
}

// GetVersion returns a single ledger entry.
func (c *Client) GetVersion(ctx context.Context, slug string, version int) (*api.VersionResponse, error) {
	path := fmt.Sprintf("/api/v1/prompts/%s/versions/%d", url.PathEscape(slug), version)
	return request[api.VersionResponse](ctx, c, http.MethodGet, path, nil)
}

// RestoreVersion copies an old version's content forward.
func (c *Client) RestoreVersion(ctx context.Context, slug string, version int) (*api.PromptResponse, error) {
	path := fmt.Sprintf("/api/v1/prompts/%s/versions/%d/restore", url.PathEscape(slug), version)
	return request[api.PromptResponse](ctx, c, http.MethodPost, path, nil)
}

// AddNote appends to a prompt's success and failure note logs.
func (c *Client) AddNote(ctx context.Context, slug, success, failure string) (*api.PromptResponse, error) {
	req := api.AddNoteRequest{Success: success, Failure: failure}
	return request[api.PromptResponse](ctx, c, http.MethodPost, "/api/v1/prompts/"+url.PathEscape(slug)+"/notes", req)
}

// Stats returns library-wide usage statistics.
func (c *Client) Stats(ctx context.Context) (*domain.Stats, error) {
	return request[domain.Stats](ctx, c, http.MethodGet, "/api/v1/stats", nil)
}

// Categories returns all categories in use.
func (c *Client) Categories(ctx context.Context) (*api.ListCategoriesResponse, error) {
	return request[api.ListCategoriesResponse](ctx, c, http.MethodGet, "/api/v1/categories", nil)
}

// Tags returns all tags in use with their prompt counts.
func (c *Client) Tags(ctx context.Context) (*api.ListTagsResponse, error) {
	return request[api.ListTagsResponse](ctx, c, http.MethodGet, "/api/v1/tags", nil)
}

// CreateBackup creates a new database snapshot on the server.
func (c *Client) CreateBackup(ctx context.Context) (*backup.Info, error) {
	return request[backup.Info](ctx, c, http.MethodPost, "/api/v1/backups", nil)
}

// ListBackups returns all server-side snapshots, newest first.
func (c *Client) ListBackups(ctx context.Context) (*api.ListBackupsResponse, error) {
	return request[api.ListBackupsResponse](ctx, c, http.MethodGet, "/api/v1/backups", nil)
}

// DeleteBackup removes a server-side snapshot.
func (c *Client) DeleteBackup(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/v1/backups/"+url.PathEscape(id), nil)
	return err
}
