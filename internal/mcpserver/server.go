package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer creates a configured MCP server with all FraudGuard tools registered.
func NewMCPServer(cfg Config) *server.MCPServer {
	s := server.NewMCPServer("fraudguard", "1.0.0")
	client := NewFraudGuardClient(cfg)
	h := NewHandlers(client)

	s.AddTool(ToolScoreTransaction, h.HandleScoreTransaction)
	s.AddTool(ToolGetUserProfile, h.HandleGetUserProfile)
	s.AddTool(ToolGenerateHistory, h.HandleGenerateHistory)
	s.AddTool(ToolListAssessments, h.HandleListAssessments)
	s.AddTool(ToolGetFraudStats, h.HandleGetFraudStats)

	return s
}
