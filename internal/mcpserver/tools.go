package mcpserver

import "github.com/mark3labs/mcp-go/mcp"

// Tool definitions for the FraudGuard MCP server.
// Descriptions are what the LLM reads to decide which tool to use.

var ToolScoreTransaction = mcp.NewTool("score_transaction",
	mcp.WithDescription(
		"Score a transaction for fraud risk against the user's behavioral profile. "+
			"Returns a 0-100 risk score, a verdict (APPROVED, REVIEW_NEEDED, or BLOCKED), "+
			"and the individual risk factors that contributed to the score."),
	mcp.WithString("user_id",
		mcp.Required(),
		mcp.Description("The user making the transaction (e.g. 'sarah123')")),
	mcp.WithNumber("amount",
		mcp.Required(),
		mcp.Description("Transaction amount in dollars (e.g. 250.00)")),
	mcp.WithString("merchant",
		mcp.Description("Merchant name (e.g. 'Amazon')")),
	mcp.WithString("device",
		mcp.Description("Device used for the transaction (e.g. 'iPhone', 'Tor_Browser')")),
	mcp.WithString("timestamp",
		mcp.Description("Transaction time in RFC 3339 format. Defaults to now if omitted.")),
	mcp.WithNumber("typing_speed",
		mcp.Description("Measured typing speed in characters per minute. An omitted speed is treated as suspiciously slow.")),
)

var ToolGetUserProfile = mcp.NewTool("get_user_profile",
	mcp.WithDescription(
		"Look up a user's behavioral baseline: normal shopping hours, average spend, "+
			"known devices, and favorite merchants. Use this to understand why a "+
			"transaction scored the way it did."),
	mcp.WithString("user_id",
		mcp.Required(),
		mcp.Description("The user to look up (e.g. 'sarah123')")),
)

var ToolGenerateHistory = mcp.NewTool("generate_history",
	mcp.WithDescription(
		"Generate a synthetic transaction history for a user, mixing legitimate "+
			"transactions with fraud patterns. Useful for demos and for seeding the "+
			"profile aggregation pipeline."),
	mcp.WithString("user_id",
		mcp.Required(),
		mcp.Description("The user to generate history for")),
	mcp.WithNumber("count",
		mcp.Description("Number of transactions to generate (default 20, max 1000)")),
	mcp.WithNumber("fraud_ratio",
		mcp.Description("Fraction of transactions that should be fraudulent, 0 to 1 (default 0.2)")),
	mcp.WithNumber("seed",
		mcp.Description("Random seed for reproducible output")),
)

var ToolListAssessments = mcp.NewTool("list_assessments",
	mcp.WithDescription(
		"List recent risk assessments, newest first. "+
			"Shows each assessment's score, verdict, and the user involved."),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of assessments to return (default 20, max 200)")),
)

var ToolGetFraudStats = mcp.NewTool("get_fraud_stats",
	mcp.WithDescription(
		"Get aggregate fraud statistics: total assessments, counts by verdict "+
			"(APPROVED / REVIEW_NEEDED / BLOCKED), and the average risk score."),
)
