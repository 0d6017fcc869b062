package fraudguard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client is an HTTP client for the FraudGuard risk-scoring API.
type Client struct {
	httpClient *http.Client
	baseURL    string

	// Configuration
	APIPrefix string // API path prefix (default: /api/v1)
}

// NewClient creates a client for the FraudGuard API at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:   strings.TrimRight(baseURL, "/"),
		APIPrefix: "/api/v1",
	}
}

// NewClientWithHTTP creates a client that uses the given http.Client.
func NewClientWithHTTP(baseURL string, hc *http.Client) *Client {
	c := NewClient(baseURL)
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// ScoreTransaction submits a transaction for risk scoring.
func (c *Client) ScoreTransaction(ctx context.Context, tx Transaction) (*Assessment, error) {
	var resp struct {
		Assessment *Assessment `json:"assessment"`
	}
	if err := c.do(ctx, http.MethodPost, "/risk/score", tx, &resp); err != nil {
		return nil, err
	}
	return resp.Assessment, nil
}

// GetAssessment fetches a stored assessment by ID.
func (c *Client) GetAssessment(ctx context.Context, id string) (*Assessment, error) {
	var resp struct {
		Assessment *Assessment `json:"assessment"`
	}
	if err := c.do(ctx, http.MethodGet, "/risk/assessments/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Assessment, nil
}

// AssessmentPage is one page of assessments, newest first.
type AssessmentPage struct {
	Assessments []*Assessment `json:"assessments"`
	Count       int           `json:"count"`
	HasMore     bool          `json:"has_more"`
	NextCursor  string        `json:"next_cursor"`
}

// ListAssessments fetches recent assessments. Pass limit 0 for the server
// default and an empty cursor for the first page.
func (c *Client) ListAssessments(ctx context.Context, limit int, cursor string) (*AssessmentPage, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	path := "/risk/assessments"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var page AssessmentPage
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetStats fetches aggregate assessment statistics.
func (c *Client) GetStats(ctx context.Context) (*Stats, error) {
	var resp struct {
		Stats *Stats `json:"stats"`
	}
	if err := c.do(ctx, http.MethodGet, "/risk/stats", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Stats, nil
}

// GetProfile fetches a user's behavioral profile.
func (c *Client) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	var resp struct {
		Profile *Profile `json:"profile"`
	}
	if err := c.do(ctx, http.MethodGet, "/profiles/"+url.PathEscape(userID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Profile, nil
}

// PutProfile creates or replaces a user's profile. The profile's UserID
// selects the target user.
func (c *Client) PutProfile(ctx context.Context, p Profile) (*Profile, error) {
	var resp struct {
		Profile *Profile `json:"profile"`
	}
	if err := c.do(ctx, http.MethodPut, "/profiles/"+url.PathEscape(p.UserID), p, &resp); err != nil {
		return nil, err
	}
	return resp.Profile, nil
}

// HistoryRequest asks the simulator to generate transaction history.
type HistoryRequest struct {
	UserID     string  `json:"userId"`
	Count      int     `json:"count,omitempty"`
	FraudRatio float64 `json:"fraudRatio,omitempty"`
	Seed       int64   `json:"seed,omitempty"`
}

// GenerateHistory generates simulated transaction history for a user.
func (c *Client) GenerateHistory(ctx context.Context, req HistoryRequest) (*HistoryResult, error) {
	var result HistoryResult
	if err := c.do(ctx, http.MethodPost, "/simulator/history", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+c.APIPrefix+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Code == "" {
			apiErr.Code = "unexpected_response"
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
