// ABOUTME: MCP resource handlers for exposing feedback data
// ABOUTME: Provides read-only access to the team roster, per-employee feedback and the caller's timeline
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const resourceScheme = "feedback://"

type ResourceHandlers struct {
	store Store
}

func NewResourceHandlers(store Store) *ResourceHandlers {
	return &ResourceHandlers{store: store}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, resourceScheme) {
		return nil, fmt.Errorf("invalid URI scheme: expected %s", resourceScheme)
	}

	parts := strings.Split(strings.TrimPrefix(uri, resourceScheme), "/")
	switch {
	case len(parts) == 1 && parts[0] == "team":
		return h.readTeam(ctx, uri)
	case len(parts) == 1 && parts[0] == "timeline":
		return h.readTimeline(ctx, uri)
	case len(parts) == 3 && parts[0] == "employees" && parts[2] == "feedback":
		return h.readEmployeeFeedback(ctx, uri, parts[1])
	}
	return nil, mcp.ResourceNotFoundError(uri)
}

func (h *ResourceHandlers) readTeam(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	team, err := h.store.Team(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch team: %w", err)
	}

	entries := make([]RosterEntryOutput, len(team))
	for i, entry := range team {
		entries[i] = rosterEntryToOutput(entry)
	}
	return jsonResource(uri, entries)
}

func (h *ResourceHandlers) readTimeline(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	timeline, err := h.store.Timeline(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch timeline: %w", err)
	}
	return jsonResource(uri, feedbackToOutputs(timeline))
}

func (h *ResourceHandlers) readEmployeeFeedback(ctx context.Context, uri, idStr string) (*mcp.ReadResourceResult, error) {
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("invalid employee id: %q", idStr)
	}

	items, err := h.store.EmployeeFeedback(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feedback: %w", err)
	}
	return jsonResource(uri, feedbackToOutputs(items))
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}
