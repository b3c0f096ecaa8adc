// Package mcp exposes a running feed session as Model Context Protocol tools,
// so an agent can read the flattened list, load more and dismiss content.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/feedstream"
	"github.com/aretw0/feedstream/internal/logging"
	feedhttp "github.com/aretw0/feedstream/pkg/adapters/http"
	"github.com/aretw0/feedstream/pkg/domain"
	"github.com/aretw0/feedstream/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// LeavesURI is the resource holding the current flattened list.
const LeavesURI = "feedstream://leaves"

const shutdownTimeout = 5 * time.Second

// Feed is the slice of feedstream.Stream the tools drive.
type Feed interface {
	Leaves(ctx context.Context) ([]domain.ViewState, error)
	Click(ctx context.Context, index int) error
	Dismiss(ctx context.Context, key domain.ChildKey, undo domain.UndoAction, cb ports.PendingDismissCallback) error
	ShowZeroState(ctx context.Context, reason domain.ZeroStateReason) error
	Status(ctx context.Context) (feedstream.Status, error)
}

var _ Feed = (*feedstream.Stream)(nil)

// Snackbars is the pending-snackbar board agents answer in place of a user.
type Snackbars interface {
	List() []feedhttp.Snackbar
	Resolve(id string, withAction bool) error
}

var _ Snackbars = (*feedhttp.SnackbarBoard)(nil)

// GraphFunc renders the content tree as a Mermaid diagram.
type GraphFunc func(ctx context.Context) (string, error)

// LeavesResponse is the list after a tool ran.
type LeavesResponse struct {
	Leaves []domain.ViewState `json:"leaves"`
}

// SnackbarsResponse lists the snackbars waiting for an answer.
type SnackbarsResponse struct {
	Snackbars []feedhttp.Snackbar `json:"snackbars"`
}

// ClickArgs selects the leaf to activate.
type ClickArgs struct {
	Index int `json:"index"`
}

// DismissArgs selects the content to dismiss and labels its snackbar.
type DismissArgs struct {
	Key               string `json:"key"`
	ConfirmationLabel string `json:"confirmation_label"`
	ActionLabel       string `json:"action_label"`
}

// ResolveArgs answers one snackbar.
type ResolveArgs struct {
	ID   string `json:"id"`
	Undo bool   `json:"undo"`
}

// Server wraps a feed session and exposes it as an MCP server.
type Server struct {
	feed      Feed
	snackbars Snackbars
	graph     GraphFunc
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithSnackbars exposes the snackbar tools.
func WithSnackbars(b Snackbars) Option {
	return func(s *Server) {
		s.snackbars = b
	}
}

// WithGraph exposes the get_graph tool.
func WithGraph(fn GraphFunc) Option {
	return func(s *Server) {
		s.graph = fn
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(feed Feed, opts ...Option) *Server {
	s := &Server{
		feed:   feed,
		logger: logging.NewNop(),
		mcpServer: server.NewMCPServer("feedstream-mcp", strings.TrimSpace(feedstream.Version),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "mcp")
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// ServeStdio serves on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over Server-Sent Events until ctx is canceled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(fmt.Sprintf("http://localhost:%d", port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "addr", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_leaves",
		mcp.WithDescription("Flatten the feed, if needed, and list what every leaf renders."),
	), mcp.NewStructuredToolHandler(s.handleLeaves))

	s.mcpServer.AddTool(mcp.NewTool("click_leaf",
		mcp.WithDescription("Activate the leaf at index. Continuation leaves load the next page."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Position of the leaf in the flattened list")),
	), mcp.NewStructuredToolHandler(s.handleClick))

	s.mcpServer.AddTool(mcp.NewTool("dismiss_content",
		mcp.WithDescription("Remove a content leaf pending confirmation. A snackbar offers the undo."),
		mcp.WithString("key", mcp.Required(), mcp.Description("Top-level child key or content key")),
		mcp.WithString("confirmation_label", mcp.Description("Snackbar message (default \"Removed\")")),
		mcp.WithString("action_label", mcp.Description("Snackbar action label (default \"Undo\")")),
	), mcp.NewStructuredToolHandler(s.handleDismiss))

	s.mcpServer.AddTool(mcp.NewTool("show_zero_state",
		mcp.WithDescription("Replace the feed with the error zero state."),
	), mcp.NewStructuredToolHandler(s.handleZeroState))

	s.mcpServer.AddTool(mcp.NewTool("get_status",
		mcp.WithDescription("Summarize what the stream currently shows."),
		mcp.WithOutputSchema[feedstream.Status](),
	), mcp.NewStructuredToolHandler(s.handleStatus))

	if s.snackbars != nil {
		s.mcpServer.AddTool(mcp.NewTool("list_snackbars",
			mcp.WithDescription("List snackbars waiting for an answer."),
		), mcp.NewStructuredToolHandler(s.handleListSnackbars))

		s.mcpServer.AddTool(mcp.NewTool("resolve_snackbar",
			mcp.WithDescription("Answer a snackbar. undo=true takes its action, otherwise it times out."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Snackbar id")),
			mcp.WithBoolean("undo", mcp.Description("Take the snackbar action")),
		), mcp.NewStructuredToolHandler(s.handleResolveSnackbar))
	}

	if s.graph != nil {
		s.mcpServer.AddTool(mcp.NewTool("get_graph",
			mcp.WithDescription("Get the content tree as a Mermaid diagram."),
		), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			diagram, err := s.graph(ctx)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("graph failed: %v", err)), nil
			}
			return mcp.NewToolResultText(diagram), nil
		})
	}
}

func (s *Server) handleLeaves(ctx context.Context, _ mcp.CallToolRequest, _ struct{}) (LeavesResponse, error) {
	return s.leaves(ctx)
}

func (s *Server) handleClick(ctx context.Context, _ mcp.CallToolRequest, args ClickArgs) (LeavesResponse, error) {
	if err := s.feed.Click(ctx, args.Index); err != nil {
		return LeavesResponse{}, fmt.Errorf("click failed: %w", err)
	}
	s.logger.Debug("leaf clicked", "index", args.Index)
	return s.leaves(ctx)
}

func (s *Server) handleDismiss(ctx context.Context, _ mcp.CallToolRequest, args DismissArgs) (LeavesResponse, error) {
	if args.Key == "" {
		return LeavesResponse{}, errors.New("key is required")
	}
	undo := domain.UndoAction{ConfirmationLabel: args.ConfirmationLabel, ActionLabel: args.ActionLabel}
	if undo.ConfirmationLabel == "" {
		undo.ConfirmationLabel = "Removed"
	}
	if err := s.feed.Dismiss(ctx, domain.ChildKey(args.Key), undo, nil); err != nil {
		return LeavesResponse{}, fmt.Errorf("dismiss failed: %w", err)
	}
	s.logger.Debug("content dismissed", "key", args.Key)
	return s.leaves(ctx)
}

func (s *Server) handleZeroState(ctx context.Context, _ mcp.CallToolRequest, _ struct{}) (LeavesResponse, error) {
	if err := s.feed.ShowZeroState(ctx, domain.ZeroStateError); err != nil {
		return LeavesResponse{}, fmt.Errorf("zero state failed: %w", err)
	}
	return s.leaves(ctx)
}

func (s *Server) handleStatus(ctx context.Context, _ mcp.CallToolRequest, _ struct{}) (feedstream.Status, error) {
	status, err := s.feed.Status(ctx)
	if err != nil {
		return feedstream.Status{}, fmt.Errorf("status failed: %w", err)
	}
	return status, nil
}

func (s *Server) handleListSnackbars(_ context.Context, _ mcp.CallToolRequest, _ struct{}) (SnackbarsResponse, error) {
	return SnackbarsResponse{Snackbars: s.snackbars.List()}, nil
}

func (s *Server) handleResolveSnackbar(_ context.Context, _ mcp.CallToolRequest, args ResolveArgs) (SnackbarsResponse, error) {
	if err := s.snackbars.Resolve(args.ID, args.Undo); err != nil {
		return SnackbarsResponse{}, err
	}
	return SnackbarsResponse{Snackbars: s.snackbars.List()}, nil
}

func (s *Server) leaves(ctx context.Context) (LeavesResponse, error) {
	leaves, err := s.feed.Leaves(ctx)
	if err != nil {
		return LeavesResponse{}, fmt.Errorf("leaves failed: %w", err)
	}
	if leaves == nil {
		leaves = []domain.ViewState{}
	}
	return LeavesResponse{Leaves: leaves}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(LeavesURI, "Flattened feed",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		resp, err := s.leaves(ctx)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(resp.Leaves)
		if err != nil {
			return nil, fmt.Errorf("failed to encode leaves: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      LeavesURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
