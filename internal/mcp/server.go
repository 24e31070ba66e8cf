// Package mcp exposes the bridge's HTTP surface as MCP tools so AI agents
// can drive the app. Every tool is a thin 1:1 mapping to one bridge route:
// JSON in, JSON out, with an {error, tool, hint} object on any client-side
// failure, including the bridge simply not running.
package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const version = "1.0.0"

// ToolError is the structured failure object returned to the agent.
type ToolError struct {
	Error string `json:"error"`
	Tool  string `json:"tool"`
	Hint  string `json:"hint"`
}

// Adapter proxies MCP tool calls to a running bridge.
type Adapter struct {
	baseURL string
	client  *http.Client
	server  *mcp.Server
}

// NewAdapter builds the MCP server with all tools registered. baseURL is
// the bridge's address, e.g. "http://127.0.0.1:8791".
func NewAdapter(baseURL string) *Adapter {
	a := &Adapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 60 * time.Second},
	}
	a.server = mcp.NewServer(&mcp.Implementation{
		Name:    "deskdial",
		Version: version,
	}, nil)
	a.register()
	return a
}

// Run serves the adapter over stdio until ctx is cancelled.
func (a *Adapter) Run(ctx context.Context) error {
	return a.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler serves the adapter over streamable HTTP. Stateless: the tools
// hold no per-session state, every call round-trips to the bridge.
func (a *Adapter) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(
		func(*http.Request) *mcp.Server { return a.server },
		&mcp.StreamableHTTPOptions{Stateless: true},
	)
}

type numberInput struct {
	Number string `json:"number" jsonschema:"required,Phone number to dial, any formatting"`
}

type smsInput struct {
	Number string `json:"number" jsonschema:"required,Recipient phone number"`
	Text   string `json:"text" jsonschema:"required,Message body"`
}

type themeInput struct {
	Theme string `json:"theme" jsonschema:"required,Theme name: default, dracula, solar, minty, cerulean, darkplus"`
}

type limitInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of items to return"`
}

type searchInput struct {
	Query string `json:"query" jsonschema:"required,Search text"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of results"`
}

type emptyInput struct{}

func (a *Adapter) register() {
	mcp.AddTool(a.server, &mcp.Tool{
		Name:        "make_call",
		Description: "Place a phone call. Returns how far the UI automation got (queued, dialer_open, call_button_clicked, failed); check the status field, not just success.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input numberInput) (*mcp.CallToolResult, any, error) {
		return a.post(ctx, "make_call", "/call", input)
	})

	mcp.AddTool(a.server, &mcp.Tool{
		Name:        "send_sms",
		Description: "Send an SMS through the telephony page's compose flow.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input smsInput) (*mcp.CallToolResult, any, error) {
		return a.post(ctx, "send_sms", "/sms", input)
	})

	mcp.AddTool(a.server, &mcp.Tool{
		Name:        "get_status",
		Description: "Read the bridge status: unread notification count, active theme, connectivity.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, any, error) {
		return a.get(ctx, "get_status", "/status")
	})

	mcp.AddTool(a.server, &mcp.Tool{
		Name:        "get_notifications",
		Description: "Read the current unread notification count from the page badges.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, any, error) {
		return a.get(ctx, "get_notifications", "/unread")
	})

	mcp.AddTool(a.server, &mcp.Tool{
		Name:        "set_theme",
		Description: "Switch the shell's UI theme.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input themeInput) (*mcp.CallToolResult, any, error) {
		return a.post(ctx, "set_theme", "/theme", input)
	})

	mcp.AddTool(a.server, &mcp.Tool{
		Name:        "reload",
		Description: "Reload the embedded page back to its base URL.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, any, error) {
		return a.post(ctx, "reload", "/reload", struct{}{})
	})

	mcp.AddTool(a.server, &mcp.Tool{
		Name:        "get_messages",
		Description: "List recent conversation threads scraped from the page.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input limitInput) (*mcp.CallToolResult, any, error) {
		return a.get(ctx, "get_messages", withLimit("/messages", input.Limit))
	})

	mcp.AddTool(a.server, &mcp.Tool{
		Name:        "get_contacts",
		Description: "List contacts scraped from the page.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input limitInput) (*mcp.CallToolResult, any, error) {
		return a.get(ctx, "get_contacts", withLimit("/contacts", input.Limit))
	})

	mcp.AddTool(a.server, &mcp.Tool{
		Name:        "get_calls",
		Description: "List recent call history scraped from the page.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input limitInput) (*mcp.CallToolResult, any, error) {
		return a.get(ctx, "get_calls", withLimit("/calls", input.Limit))
	})

	mcp.AddTool(a.server, &mcp.Tool{
		Name:        "get_voicemails",
		Description: "List voicemails scraped from the page.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input limitInput) (*mcp.CallToolResult, any, error) {
		return a.get(ctx, "get_voicemails", withLimit("/voicemails", input.Limit))
	})

	mcp.AddTool(a.server, &mcp.Tool{
		Name:        "search",
		Description: "Type into the page's search box and return the result rows.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input searchInput) (*mcp.CallToolResult, any, error) {
		path := "/search?q=" + url.QueryEscape(input.Query)
		if input.Limit > 0 {
			path += fmt.Sprintf("&limit=%d", input.Limit)
		}
		return a.get(ctx, "search", path)
	})

	mcp.AddTool(a.server, &mcp.Tool{
		Name:        "dump_dom",
		Description: "Capture a diagnostic DOM snapshot of the page. Use this to recalibrate selectors when automation reports not-found.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, any, error) {
		return a.get(ctx, "dump_dom", "/dump-dom")
	})
}

func withLimit(path string, limit int) string {
	if limit > 0 {
		return fmt.Sprintf("%s?limit=%d", path, limit)
	}
	return path
}

func (a *Adapter) get(ctx context.Context, tool, path string) (*mcp.CallToolResult, any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return nil, a.toolError(tool, err), nil
	}
	return a.do(tool, req)
}

func (a *Adapter) post(ctx context.Context, tool, path string, body any) (*mcp.CallToolResult, any, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, a.toolError(tool, err), nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, a.toolError(tool, err), nil
	}
	req.Header.Set("Content-Type", "application/json")
	return a.do(tool, req)
}

func (a *Adapter) do(tool string, req *http.Request) (*mcp.CallToolResult, any, error) {
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, a.toolError(tool, err), nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, a.toolError(tool, err), nil
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		decoded = string(body)
	}
	if resp.StatusCode >= 400 {
		return nil, ToolError{
			Error: fmt.Sprintf("bridge returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
			Tool:  tool,
			Hint:  "check the request parameters",
		}, nil
	}
	return nil, decoded, nil
}

// toolError maps client-side failures to the {error, tool, hint} shape.
// Connection refused means the app is not running, which is by far the
// most common operator mistake.
func (a *Adapter) toolError(tool string, err error) ToolError {
	hint := "retry or check the bridge logs"
	if strings.Contains(err.Error(), "connection refused") {
		hint = "make sure the deskdial app is running"
	}
	return ToolError{Error: err.Error(), Tool: tool, Hint: hint}
}
