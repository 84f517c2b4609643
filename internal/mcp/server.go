// Package mcp exposes the signature cleaner over the Model Context
// Protocol, so agent frontends can strip signature blocks from email
// bodies without shelling out to the CLI. Stdio transport only.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/inboxtools/sigscrub/internal/clean"
	"github.com/inboxtools/sigscrub/internal/detect"
	"github.com/inboxtools/sigscrub/internal/extract"
)

// ServerConfig holds configuration for the MCP server.
type ServerConfig struct {
	Cleaner *clean.Cleaner
	Version string // version string for MCP server info
}

// NewServer creates a configured MCP server with the sigscrub tools.
func NewServer(cfg ServerConfig) *server.MCPServer {
	ver := cfg.Version
	if ver == "" {
		ver = "dev"
	}

	s := server.NewMCPServer(
		"sigscrub",
		ver,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(true, false),
	)

	registerCleanTool(s, cfg.Cleaner)
	registerClassifyTool(s, cfg.Cleaner)
	registerReasonsResource(s)

	return s
}

// Serve runs the server on stdio until the client disconnects.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func registerCleanTool(s *server.MCPServer, cleaner *clean.Cleaner) {
	tool := mcp.NewTool("sigscrub_clean",
		mcp.WithDescription("Remove the trailing signature/contact block from a plaintext email body. Quoted threads and blank-line structure are preserved. Returns the cleaned body."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("The email body text to clean"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		body, err := req.RequireString("body")
		if err != nil {
			return mcp.NewToolResultError("body is required"), nil
		}

		res, err := cleaner.Text(ctx, extract.Normalize(body))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("clean error: %v", err)), nil
		}

		return mcp.NewToolResultText(res.Cleaned), nil
	})
}

func registerClassifyTool(s *server.MCPServer, cleaner *clean.Cleaner) {
	tool := mcp.NewTool("sigscrub_classify",
		mcp.WithDescription("Classify each line of a plaintext email body as kept or dropped, with a diagnostic reason tag per line (SIGNATURE_OPENING, CONTACT_PATTERN, QUOTE_DELIMITER, ...). Returns JSON."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("The email body text to classify"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		body, err := req.RequireString("body")
		if err != nil {
			return mcp.NewToolResultError("body is required"), nil
		}

		res, err := cleaner.Text(ctx, extract.Normalize(body))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("classify error: %v", err)), nil
		}

		data, _ := json.MarshalIndent(res.Decisions, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerReasonsResource(s *server.MCPServer) {
	resource := mcp.NewResource(
		"sigscrub://reasons",
		"Classification Reasons",
		mcp.WithResourceDescription("The diagnostic reason tags the classifier can emit, with their meanings."),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(resource, func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		reasons := map[detect.Reason]string{
			detect.ReasonQuoteDelimiter:        "quoted-reply or forwarded-message delimiter; always kept, resets to conversation",
			detect.ReasonSignatureOpening:      "cue that opened signature mode; salutation cues are kept, probabilistic cues dropped",
			detect.ReasonContactPattern:        "structural contact-card line; dropped",
			detect.ReasonSignatureContinuation: "line inside a signature block; dropped",
			detect.ReasonEmailHeader:           "embedded message header; kept, ends signature mode",
			detect.ReasonOrdinary:              "ordinary conversational content; kept",
		}

		data, err := json.MarshalIndent(reasons, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling reasons resource: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "sigscrub://reasons",
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
