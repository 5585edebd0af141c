package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/neilberkman/ccshare/internal/core/export"
	"github.com/neilberkman/ccshare/internal/core/models"
	"github.com/neilberkman/ccshare/internal/core/share"
)

// ShareDataArgs defines arguments for the get_share_data tool
type ShareDataArgs struct {
	ShareID string `json:"share_id" jsonschema:"description=Share id to read,required"`
}

// RenderShareArgs defines arguments for the render_share tool
type RenderShareArgs struct {
	ShareID string `json:"share_id" jsonschema:"description=Share id to render,required"`
	Format  string `json:"format,omitempty" jsonschema:"description=md (default), json, jsonl or yaml"`
}

// ListSharesArgs defines arguments for the list_shares tool
type ListSharesArgs struct {
	Limit int `json:"limit,omitempty" jsonschema:"description=Max shares to return (default: 20)"`
}

// ShareListing represents a share in the list_shares result
type ShareListing struct {
	ID            string `json:"id"`
	SessionID     string `json:"session_id"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
	PendingEvents int    `json:"pending_events"`
	Compacted     bool   `json:"compacted"`
}

// NewServer registers the share tools on a new MCP server.
func NewServer(svc *share.Service, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"ccshare",
		version,
	)

	// Register get_share_data tool
	dataTool := mcp.NewTool("get_share_data",
		mcp.WithDescription("Get the current state of a shared coding session as a list of session, message, part, session_diff and model events"),
		mcp.WithString("share_id",
			mcp.Required(),
			mcp.Description("Share id to read")),
	)
	s.AddTool(dataTool, makeShareDataHandler(svc))

	// Register render_share tool
	renderTool := mcp.NewTool("render_share",
		mcp.WithDescription("Render a shared coding session as a readable transcript"),
		mcp.WithString("share_id",
			mcp.Required(),
			mcp.Description("Share id to render")),
		mcp.WithString("format",
			mcp.Description("Output format: md (default), json, jsonl or yaml")),
	)
	s.AddTool(renderTool, makeRenderShareHandler(svc))

	// Register list_shares tool
	listTool := mcp.NewTool("list_shares",
		mcp.WithDescription("List shares, most recently updated first"),
		mcp.WithNumber("limit",
			mcp.Description("Max shares to return (default: 20)")),
	)
	s.AddTool(listTool, makeListSharesHandler(svc))

	return s
}

// StartServer serves the share tools over stdio until stdin closes.
func StartServer(svc *share.Service, version string) error {
	return server.ServeStdio(NewServer(svc, version))
}

func bindArgs(request mcp.CallToolRequest, v any) error {
	argsBytes, err := json.Marshal(request.Params.Arguments)
	if err != nil {
		return err
	}
	return json.Unmarshal(argsBytes, v)
}

func shareError(shareID string, err error) *mcp.CallToolResult {
	if errors.Is(err, share.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("share not found: %s", shareID))
	}
	return mcp.NewToolResultError(fmt.Sprintf("failed to read share: %v", err))
}

func makeShareDataHandler(svc *share.Service) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args ShareDataArgs
		if err := bindArgs(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if args.ShareID == "" {
			return mcp.NewToolResultError("share_id is required"), nil
		}

		events, err := svc.Data(ctx, args.ShareID)
		if err != nil {
			return shareError(args.ShareID, err), nil
		}

		resultJSON, err := json.MarshalIndent(models.Events(events), "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal events: %v", err)), nil
		}
		return mcp.NewToolResultText(string(resultJSON)), nil
	}
}

func makeRenderShareHandler(svc *share.Service) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args RenderShareArgs
		if err := bindArgs(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if args.ShareID == "" {
			return mcp.NewToolResultError("share_id is required"), nil
		}
		if args.Format == "" {
			args.Format = "md"
		}

		exporter, err := export.NewExporter(args.Format)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		st, s, err := svc.State(ctx, args.ShareID)
		if err != nil {
			return shareError(args.ShareID, err), nil
		}

		var buf bytes.Buffer
		if err := exporter.Export(&export.Document{Share: s, State: st}, &buf); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to render share: %v", err)), nil
		}
		return mcp.NewToolResultText(buf.String()), nil
	}
}

func makeListSharesHandler(svc *share.Service) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args ListSharesArgs
		if err := bindArgs(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if args.Limit <= 0 {
			args.Limit = 20
		}

		list, err := svc.List(ctx, args.Limit)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
		}

		results := make([]ShareListing, 0, len(list))
		for _, s := range list {
			results = append(results, ShareListing{
				ID:            s.ID,
				SessionID:     s.SessionID,
				CreatedAt:     s.CreatedAt.Format(time.RFC3339),
				UpdatedAt:     s.UpdatedAt.Format(time.RFC3339),
				PendingEvents: s.PendingEvents,
				Compacted:     s.SnapshotSeq > 0,
			})
		}

		resultJSON, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcp.NewToolResultText(string(resultJSON)), nil
	}
}
