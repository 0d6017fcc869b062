package mcpserver

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
)

// Config holds the configuration for connecting to the FraudGuard API.
type Config struct {
	APIURL string // Base URL, e.g. "http://localhost:8080"
}

// FraudGuardClient is a pure HTTP client for the FraudGuard API.
type FraudGuardClient struct {
	cfg        Config
	httpClient *http.Client
}

// NewFraudGuardClient creates a new client for the FraudGuard API.
func NewFraudGuardClient(cfg Config) *FraudGuardClient {
	return &FraudGuardClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// apiError represents an error response from the API.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// doRequest makes an HTTP request to the API and returns the response body.
func (c *FraudGuardClient) doRequest(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	u, err := url.Parse(c.cfg.APIURL + path)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Message)
		}
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	return json.RawMessage(respBody), nil
}

// ScoreTransaction submits a transaction for risk scoring.
func (c *FraudGuardClient) ScoreTransaction(ctx context.Context, tx map[string]any) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodPost, "/api/v1/risk/score", nil, tx)
}

// GetUserProfile returns the behavioral profile for a user.
func (c *FraudGuardClient) GetUserProfile(ctx context.Context, userID string) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodGet, "/api/v1/profiles/"+userID, nil, nil)
}

// GenerateHistory generates and stores a synthetic history batch for a user.
func (c *FraudGuardClient) GenerateHistory(ctx context.Context, userID string, count int, fraudRatio float64, seed int64) (json.RawMessage, error) {
	body := map[string]any{
		"userId":     userID,
		"count":      count,
		"fraudRatio": fraudRatio,
	}
	if seed != 0 {
		body["seed"] = seed
	}
	return c.doRequest(ctx, http.MethodPost, "/api/v1/simulator/history", nil, body)
}

// ListAssessments returns recent risk assessments.
func (c *FraudGuardClient) ListAssessments(ctx context.Context, limit int) (json.RawMessage, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return c.doRequest(ctx, http.MethodGet, "/api/v1/risk/assessments", q, nil)
}

// GetFraudStats returns aggregate scoring statistics.
func (c *FraudGuardClient) GetFraudStats(ctx context.Context) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodGet, "/api/v1/risk/stats", nil, nil)
}
