// ABOUTME: MCP server subcommand
// ABOUTME: Starts the MCP server exposing feedback tools, resources and prompts over stdio
package cli

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/amanks009/feedback-client/handlers"
)

// NewMCPServer registers every feedback tool, resource and prompt.
func NewMCPServer(store handlers.Store, version string) *mcp.Server {
	feedbackHandlers := handlers.NewFeedbackHandlers(store)
	resourceHandlers := handlers.NewResourceHandlers(store)
	promptHandlers := handlers.NewPromptHandlers(store)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "feedback",
		Version: version,
	}, nil)

	// Manager tools
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_team",
		Description: "List direct reports with feedback counts and sentiment breakdown",
	}, feedbackHandlers.ListTeam)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_employee_feedback",
		Description: "List all feedback given to one employee, newest first",
	}, feedbackHandlers.ListEmployeeFeedback)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "give_feedback",
		Description: "Give feedback to a direct report with strengths, areas to improve and a sentiment",
	}, feedbackHandlers.GiveFeedback)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_feedback",
		Description: "Update an existing feedback item",
	}, feedbackHandlers.UpdateFeedback)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_feedback",
		Description: "Permanently delete a feedback item",
	}, feedbackHandlers.DeleteFeedback)

	// Employee tools
	mcp.AddTool(server, &mcp.Tool{
		Name:        "my_feedback",
		Description: "List feedback received by the signed-in employee",
	}, feedbackHandlers.MyFeedback)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "acknowledge_feedback",
		Description: "Acknowledge a feedback item received by the signed-in employee",
	}, feedbackHandlers.AcknowledgeFeedback)

	server.AddResource(&mcp.Resource{
		URI:         "feedback://team",
		Name:        "team",
		Description: "Team roster with feedback aggregates",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResource(&mcp.Resource{
		URI:         "feedback://timeline",
		Name:        "timeline",
		Description: "Feedback received by the signed-in employee",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "feedback://employees/{id}/feedback",
		Name:        "employee-feedback",
		Description: "Feedback given to one employee",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddPrompt(&mcp.Prompt{
		Name:        "feedback-review",
		Description: "Review an employee's feedback history",
		Arguments: []*mcp.PromptArgument{
			{Name: "employee_id", Description: "Employee ID", Required: true},
		},
	}, promptHandlers.GetPrompt)

	server.AddPrompt(&mcp.Prompt{
		Name:        "team-overview",
		Description: "Summarize feedback coverage across the team",
	}, promptHandlers.GetPrompt)

	return server
}

// MCPCommand starts the MCP server on stdio
func MCPCommand(store handlers.Store, logger *zap.Logger, version string) error {
	logger.Info("starting feedback MCP server")

	server := NewMCPServer(store, version)

	// Run server on stdio transport
	ctx := context.Background()
	return server.Run(ctx, &mcp.StdioTransport{})
}
