package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultRequestTimeout = 30 * time.Second

type apiClient struct {
	baseURL string
	http    *http.Client
	token   func() string
}

func newAPIClient(baseURL string, token func() string) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultRequestTimeout},
		token:   token,
	}
}

// apiError is a non-2xx response. Error() starts with the status code so
// views that match on a "401" prefix keep working against older handlers.
type apiError struct {
	Status int
	Body   string
}

func (e *apiError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		body = http.StatusText(e.Status)
	}
	return fmt.Sprintf("%d %s", e.Status, body)
}

func isUnauthorized(err error) bool {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusUnauthorized
	}
	return err != nil && strings.HasPrefix(err.Error(), "401")
}

func (c *apiClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != nil {
		if tok := strings.TrimSpace(c.token()); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &apiError{Status: resp.StatusCode, Body: string(data)}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *apiClient) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *apiClient) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *apiClient) Me(ctx context.Context) (*accountInfo, error) {
	var info accountInfo
	if err := c.get(ctx, "/api/me", &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *apiClient) Orgs(ctx context.Context) ([]organization, error) {
	var orgs []organization
	if err := c.get(ctx, "/api/orgs", &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}

func (c *apiClient) Posts(ctx context.Context) ([]post, error) {
	var posts []post
	if err := c.get(ctx, "/api/posts", &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *apiClient) Approved(ctx context.Context) ([]post, error) {
	var posts []post
	if err := c.get(ctx, "/api/approved", &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *apiClient) RunBatch(ctx context.Context) (*runBatchResponse, error) {
	var resp runBatchResponse
	if err := c.post(ctx, "/api/run-batch", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *apiClient) PublishApproved(ctx context.Context, req publishRequest) (*publishResponse, error) {
	var resp publishResponse
	if err := c.post(ctx, "/api/approved/publish", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *apiClient) ClearApproved(ctx context.Context) error {
	return c.post(ctx, "/api/approved/clear", nil, nil)
}

func (c *apiClient) CreatePost(ctx context.Context, req createPostRequest) (*createPostResponse, error) {
	var resp createPostResponse
	if err := c.post(ctx, "/api/posts", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *apiClient) ApprovePost(ctx context.Context, id string) error {
	return c.post(ctx, "/api/posts/"+id+"/approve", nil, nil)
}

func (c *apiClient) RefreshShowcase(ctx context.Context) error {
	return c.post(ctx, "/api/showcase/refresh", nil, nil)
}

func (c *apiClient) Agents(ctx context.Context) ([]agentSummary, error) {
	var agents []agentSummary
	if err := c.get(ctx, "/api/prompts/agents", &agents); err != nil {
		return nil, err
	}
	return agents, nil
}

func (c *apiClient) PromptBundle(ctx context.Context, agent string) (*promptBundle, error) {
	var bundle promptBundle
	if err := c.get(ctx, "/api/prompts/"+agent, &bundle); err != nil {
		return nil, err
	}
	return &bundle, nil
}

func (c *apiClient) SavePrompt(ctx context.Context, agent string, update promptUpdate) error {
	return c.do(ctx, http.MethodPut, "/api/prompts/"+agent, update, nil)
}

func (c *apiClient) ResetPrompt(ctx context.Context, agent string) error {
	return c.do(ctx, http.MethodDelete, "/api/prompts/"+agent, nil, nil)
}

func (c *apiClient) LinkedInSettings(ctx context.Context) (*linkedInSettings, error) {
	var settings linkedInSettings
	if err := c.get(ctx, "/api/settings/linkedin", &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

func (c *apiClient) SaveLinkedInSettings(ctx context.Context, settings linkedInSettings) (*linkedInSettings, error) {
	var saved linkedInSettings
	if err := c.post(ctx, "/api/settings/linkedin", settings, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (c *apiClient) BrandDefaults(ctx context.Context) (*brandSettings, error) {
	var brand brandSettings
	if err := c.get(ctx, "/api/wizard/brand-defaults", &brand); err != nil {
		return nil, err
	}
	return &brand, nil
}

func (c *apiClient) InspirationSources(ctx context.Context) ([]inspirationSource, error) {
	var sources []inspirationSource
	if err := c.get(ctx, "/api/wizard/inspiration-sources", &sources); err != nil {
		return nil, err
	}
	return sources, nil
}

func (c *apiClient) GeneratePost(ctx context.Context, req generateRequest) (*generatedPost, error) {
	var generated generatedPost
	if err := c.post(ctx, "/api/wizard/generate", req, &generated); err != nil {
		return nil, err
	}
	return &generated, nil
}

func (c *apiClient) CostSummary(ctx context.Context) (*costSummary, error) {
	var summary costSummary
	if err := c.get(ctx, "/api/costs/summary", &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *apiClient) CostRecords(ctx context.Context) ([]costRecord, error) {
	var records []costRecord
	if err := c.get(ctx, "/api/costs/records", &records); err != nil {
		return nil, err
	}
	return records, nil
}

// LoginURL is handed to the user's browser, never fetched by the portal.
func (c *apiClient) LoginURL() string {
	return c.baseURL + "/auth/linkedin/login"
}
