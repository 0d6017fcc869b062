package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// Handlers holds the handler functions for each MCP tool.
type Handlers struct {
	client *FraudGuardClient
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(client *FraudGuardClient) *Handlers {
	return &Handlers{client: client}
}

// HandleScoreTransaction scores a transaction for fraud risk.
func (h *Handlers) HandleScoreTransaction(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID := req.GetString("user_id", "")
	if userID == "" {
		return mcp.NewToolResultError("user_id is required"), nil
	}
	amount := req.GetFloat("amount", 0)
	if amount <= 0 {
		return mcp.NewToolResultError("amount must be positive"), nil
	}

	tx := map[string]any{
		"userId": userID,
		"amount": amount,
	}
	if v := req.GetString("merchant", ""); v != "" {
		tx["merchant"] = v
	}
	if v := req.GetString("device", ""); v != "" {
		tx["device"] = v
	}
	if v := req.GetString("timestamp", ""); v != "" {
		tx["timestamp"] = v
	}
	if v := req.GetFloat("typing_speed", 0); v > 0 {
		tx["typingSpeed"] = v
	}

	raw, err := h.client.ScoreTransaction(ctx, tx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to score transaction: %v", err)), nil
	}

	text, err := formatAssessment(raw)
	if err != nil {
		// Response didn't match the assessment envelope; hand back the raw
		// payload rather than dropping it.
		return mcp.NewToolResultText(formatJSON(raw)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleGetUserProfile looks up a user's behavioral baseline.
func (h *Handlers) HandleGetUserProfile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID := req.GetString("user_id", "")
	if userID == "" {
		return mcp.NewToolResultError("user_id is required"), nil
	}

	raw, err := h.client.GetUserProfile(ctx, userID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get profile: %v", err)), nil
	}

	text, err := formatProfile(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse profile: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleGenerateHistory generates a synthetic history batch.
func (h *Handlers) HandleGenerateHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID := req.GetString("user_id", "")
	if userID == "" {
		return mcp.NewToolResultError("user_id is required"), nil
	}
	count := req.GetInt("count", 20)
	fraudRatio := req.GetFloat("fraud_ratio", 0.2)
	seed := int64(req.GetInt("seed", 0))

	raw, err := h.client.GenerateHistory(ctx, userID, count, fraudRatio, seed)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to generate history: %v", err)), nil
	}

	var resp struct {
		Generated  int `json:"generated"`
		FraudCount int `json:"fraudCount"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse response: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Generated %d transaction(s) for %s (%d fraudulent).\n"+
			"Run profile aggregation to fold the new history into the user's baseline.",
		resp.Generated, userID, resp.FraudCount)), nil
}

// HandleListAssessments lists recent risk assessments.
func (h *Handlers) HandleListAssessments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 20)

	raw, err := h.client.ListAssessments(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list assessments: %v", err)), nil
	}

	text, err := formatAssessmentList(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse assessments: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleGetFraudStats returns aggregate scoring statistics.
func (h *Handlers) HandleGetFraudStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := h.client.GetFraudStats(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get stats: %v", err)), nil
	}

	text, err := formatStats(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse stats: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// --- Formatting helpers ---

func formatAssessment(raw json.RawMessage) (string, error) {
	var resp struct {
		Assessment struct {
			ID      string  `json:"id"`
			UserID  string  `json:"userId"`
			Score   float64 `json:"score"`
			Status  string  `json:"status"`
			Variant string  `json:"variant"`
			Factors []struct {
				Rule   string  `json:"rule"`
				Detail string  `json:"detail"`
				Delta  float64 `json:"delta"`
			} `json:"factors"`
		} `json:"assessment"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", err
	}
	a := resp.Assessment

	var sb strings.Builder
	fmt.Fprintf(&sb, "Risk Assessment for %s:\n", a.UserID)
	fmt.Fprintf(&sb, "  Score: %.2f / 100\n", a.Score)
	fmt.Fprintf(&sb, "  Verdict: %s\n", a.Status)
	fmt.Fprintf(&sb, "  ID: %s\n", a.ID)

	if len(a.Factors) == 0 {
		sb.WriteString("\nNo risk factors fired - the transaction fits the user's baseline.")
	} else {
		sb.WriteString("\nRisk factors:\n")
		for _, f := range a.Factors {
			fmt.Fprintf(&sb, "  +%.1f %s: %s\n", f.Delta, f.Rule, f.Detail)
		}
	}
	return sb.String(), nil
}

func formatProfile(raw json.RawMessage) (string, error) {
	var resp struct {
		Profile struct {
			UserID       string   `json:"userId"`
			HoursStart   int      `json:"hoursStart"`
			HoursEnd     int      `json:"hoursEnd"`
			CommonHours  []int    `json:"commonHours"`
			AvgAmount    float64  `json:"avgAmount"`
			KnownDevices []string `json:"knownDevices"`
			Merchants    []string `json:"favoriteMerchants"`
		} `json:"profile"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", err
	}
	p := resp.Profile

	var sb strings.Builder
	fmt.Fprintf(&sb, "Behavioral profile for %s:\n", p.UserID)
	fmt.Fprintf(&sb, "  Normal hours: %02d:00 - %02d:00\n", p.HoursStart, p.HoursEnd)
	if len(p.CommonHours) > 0 {
		fmt.Fprintf(&sb, "  Common hours: %v\n", p.CommonHours)
	}
	fmt.Fprintf(&sb, "  Average amount: $%.2f\n", p.AvgAmount)
	if len(p.KnownDevices) > 0 {
		fmt.Fprintf(&sb, "  Known devices: %s\n", strings.Join(p.KnownDevices, ", "))
	}
	if len(p.Merchants) > 0 {
		fmt.Fprintf(&sb, "  Favorite merchants: %s\n", strings.Join(p.Merchants, ", "))
	}
	return sb.String(), nil
}

func formatAssessmentList(raw json.RawMessage) (string, error) {
	var resp struct {
		Assessments []struct {
			ID     string  `json:"id"`
			UserID string  `json:"userId"`
			Score  float64 `json:"score"`
			Status string  `json:"status"`
		} `json:"assessments"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", err
	}

	if len(resp.Assessments) == 0 {
		return "No assessments recorded yet.", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d assessment(s), newest first:\n\n", len(resp.Assessments))
	for i, a := range resp.Assessments {
		fmt.Fprintf(&sb, "%d. %s - score %.2f - %s (%s)\n", i+1, a.UserID, a.Score, a.Status, a.ID)
	}
	return sb.String(), nil
}

func formatStats(raw json.RawMessage) (string, error) {
	var resp struct {
		Stats struct {
			Total    int            `json:"total"`
			ByStatus map[string]int `json:"byStatus"`
			AvgScore float64        `json:"avgScore"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", err
	}
	s := resp.Stats

	if s.Total == 0 {
		return "No assessments recorded yet.", nil
	}

	var sb strings.Builder
	sb.WriteString("Fraud detection statistics:\n")
	fmt.Fprintf(&sb, "  Total assessments: %d\n", s.Total)
	fmt.Fprintf(&sb, "  Average score: %.2f\n", s.AvgScore)
	for _, status := range []string{"APPROVED", "REVIEW_NEEDED", "BLOCKED"} {
		if n, ok := s.ByStatus[status]; ok {
			fmt.Fprintf(&sb, "  %s: %d\n", status, n)
		}
	}
	return sb.String(), nil
}

func formatJSON(raw json.RawMessage) string {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		return string(raw)
	}
	return pretty.String()
}
