package mcp

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/fa-friend/fa/pkg/model"
	"github.com/fa-friend/fa/pkg/usecase/alert"
	"github.com/fa-friend/fa/pkg/usecase/user"
	"github.com/fa-friend/fa/pkg/utils/logging"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/m-mizutani/goerr/v2"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	serverName    = "fa"
	serverVersion = "0.1.0"
)

// Server exposes the assistant's alerts and per-user data as MCP tools
type Server struct {
	users  *user.UseCase
	alerts *alert.UseCase
	server *mcp.Server
}

// New builds the MCP server and registers all tools
func New(users *user.UseCase, alerts *alert.UseCase) *Server {
	s := &Server{
		users:  users,
		alerts: alerts,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    serverName,
			Version: serverVersion,
		}, nil),
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_alerts",
		Description: "List active earthquake and news alerts, newest first",
		InputSchema: listAlertsSchema(),
	}, s.listAlerts)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "critical_summary",
		Description: "Count and list CRITICAL alerts fetched in the last hours",
	}, s.criticalSummary)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_memory",
		Description: "Show what the assistant remembers about a user",
	}, s.getMemory)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_reminders",
		Description: "List pending reminders of a user ordered by time",
	}, s.listReminders)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "add_reminder",
		Description: `Add a reminder from text such as "2025-03-01 14:30 message", "14:30 message" or "tomorrow 08:00 message"`,
	}, s.addReminder)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "morning_brief",
		Description: "Summarize today's reminders and routines of a user",
	}, s.morningBrief)

	return s
}

// MCPServer returns the underlying server, e.g. to connect an in-memory transport
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}

// ServeStdio runs the server over stdin/stdout until the client disconnects
func (s *Server) ServeStdio(ctx context.Context) error {
	if err := s.server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return goerr.Wrap(err, "mcp server stopped")
	}
	return nil
}

// HTTPHandler serves the streamable HTTP transport
func (s *Server) HTTPHandler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return s.server
	}, nil)
}

func listAlertsSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"severity": {
				Type:        "string",
				Description: "Only alerts of this severity: critical, warning or info (case-insensitive)",
			},
			"limit": {
				Type:        "integer",
				Description: "Maximum number of alerts, 20 when omitted",
			},
		},
	}
}

type listAlertsParams struct {
	Severity string `json:"severity,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

type criticalSummaryParams struct {
	Hours int `json:"hours,omitempty" jsonschema:"Look-back window in hours, 6 when omitted"`
}

type userParams struct {
	UserID string `json:"user_id" jsonschema:"User ID returned at registration"`
}

type addReminderParams struct {
	UserID string `json:"user_id" jsonschema:"User ID returned at registration"`
	Text   string `json:"text" jsonschema:"Reminder time followed by the message"`
}

func (s *Server) listAlerts(ctx context.Context, req *mcp.CallToolRequest, params *listAlertsParams) (*mcp.CallToolResult, any, error) {
	alerts, err := s.alerts.ListActive(ctx, alert.ListOptions{
		Severity: model.Severity(params.Severity),
		Limit:    params.Limit,
	})
	if err != nil {
		return toolError(ctx, "list_alerts", err), nil, nil
	}
	return jsonResult(alerts)
}

func (s *Server) criticalSummary(ctx context.Context, req *mcp.CallToolRequest, params *criticalSummaryParams) (*mcp.CallToolResult, any, error) {
	summary, err := s.alerts.CriticalSummary(ctx, params.Hours)
	if err != nil {
		return toolError(ctx, "critical_summary", err), nil, nil
	}
	return jsonResult(summary)
}

func (s *Server) getMemory(ctx context.Context, req *mcp.CallToolRequest, params *userParams) (*mcp.CallToolResult, any, error) {
	mem, err := s.users.Memory(ctx, model.UserID(params.UserID))
	if err != nil {
		return toolError(ctx, "get_memory", err), nil, nil
	}
	return jsonResult(mem)
}

func (s *Server) listReminders(ctx context.Context, req *mcp.CallToolRequest, params *userParams) (*mcp.CallToolResult, any, error) {
	reminders, err := s.users.Reminders(ctx, model.UserID(params.UserID))
	if err != nil {
		return toolError(ctx, "list_reminders", err), nil, nil
	}
	return jsonResult(reminders)
}

func (s *Server) addReminder(ctx context.Context, req *mcp.CallToolRequest, params *addReminderParams) (*mcp.CallToolResult, any, error) {
	reminder, err := s.users.AddReminder(ctx, model.UserID(params.UserID), params.Text)
	if err != nil {
		return toolError(ctx, "add_reminder", err), nil, nil
	}
	return jsonResult(reminder)
}

func (s *Server) morningBrief(ctx context.Context, req *mcp.CallToolRequest, params *userParams) (*mcp.CallToolResult, any, error) {
	brief, err := s.users.MorningBrief(ctx, model.UserID(params.UserID))
	if err != nil {
		return toolError(ctx, "morning_brief", err), nil, nil
	}
	return textResult(brief), nil, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func jsonResult(v any) (*mcp.CallToolResult, any, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to marshal tool result")
	}
	return textResult(string(raw)), nil, nil
}

// toolError reports a failure to the client as a tool result so the caller
// can read the reason instead of getting a protocol error
func toolError(ctx context.Context, tool string, err error) *mcp.CallToolResult {
	logging.From(ctx).Warn("mcp tool failed", "tool", tool, logging.ErrAttr(err))
	res := textResult(err.Error())
	res.IsError = true
	return res
}
