package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/automator"
	"github.com/aretw0/automator/pkg/builder"
	"github.com/aretw0/automator/pkg/domain"
	"github.com/aretw0/automator/pkg/session"
	"github.com/aretw0/automator/pkg/view"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

// DefaultSessionID is the session edited when none is configured.
const DefaultSessionID = "mcp"

// Resource URIs.
const (
	WorkflowURI = "automator://workflow"
	CatalogURI  = "automator://catalog"
)

// WorkflowResponse is the result of every workflow tool.
type WorkflowResponse struct {
	Changed bool                 `json:"changed" jsonschema_description:"False when the call degraded to a no-op"`
	Action  *domain.Action       `json:"action,omitempty" jsonschema_description:"The action added or removed"`
	Diff    *domain.SnapshotDiff `json:"diff,omitempty" jsonschema_description:"What changed in the builder state"`
	View    view.View            `json:"view" jsonschema_description:"The editor view after the call"`
}

// CatalogResponse lists the addable action kinds.
type CatalogResponse struct {
	Entries []domain.CatalogEntry `json:"entries" jsonschema_description:"Action catalog in display order"`
}

// Server exposes a builder session as an MCP server.
type Server struct {
	sessions  *session.Manager
	sessionID string
	logger    *zap.Logger
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithSessionID selects the session the tools operate on.
func WithSessionID(id string) Option {
	return func(s *Server) {
		s.sessionID = id
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		sessions:  sessions,
		sessionID: DefaultSessionID,
		logger:    zap.NewNop(),
		mcpServer: server.NewMCPServer("automator-mcp", automator.Version),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and shuts it down
// when ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", zap.String("address", addr))
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_catalog",
		mcp.WithDescription("List the action kinds that can be added to a workflow, in display order."),
		mcp.WithOutputSchema[CatalogResponse](),
	), mcp.NewStructuredToolHandler(s.handleListCatalog))

	s.mcpServer.AddTool(mcp.NewTool("show_workflow",
		mcp.WithDescription("Show the selected workflow with its numbered actions."),
		mcp.WithOutputSchema[WorkflowResponse](),
	), mcp.NewStructuredToolHandler(s.handleShowWorkflow))

	s.mcpServer.AddTool(mcp.NewTool("add_action",
		mcp.WithDescription("Append an action to a workflow. The name defaults to the catalog name for the type."),
		mcp.WithString("type", mcp.Required(), mcp.Description("Action type tag, e.g. files, shell, http")),
		mcp.WithString("name", mcp.Description("Display name (required for types outside the catalog)")),
		mcp.WithString("workflow_id", mcp.Description("Target workflow (defaults to the selected one)")),
		mcp.WithOutputSchema[WorkflowResponse](),
	), mcp.NewStructuredToolHandler(s.handleAddAction))

	s.mcpServer.AddTool(mcp.NewTool("remove_action",
		mcp.WithDescription("Remove an action from the selected workflow by ID or by its 1-based position."),
		mcp.WithString("action_id", mcp.Description("Action ID")),
		mcp.WithNumber("index", mcp.Description("1-based position shown next to the action")),
		mcp.WithOutputSchema[WorkflowResponse](),
	), mcp.NewStructuredToolHandler(s.handleRemoveAction))

	s.mcpServer.AddTool(mcp.NewTool("rename_workflow",
		mcp.WithDescription("Rename the selected workflow. The name is stored verbatim."),
		mcp.WithString("name", mcp.Required(), mcp.Description("New workflow name")),
		mcp.WithOutputSchema[WorkflowResponse](),
	), mcp.NewStructuredToolHandler(s.handleRenameWorkflow))

	s.mcpServer.AddTool(mcp.NewTool("select_workflow",
		mcp.WithDescription("Select the workflow that subsequent edits apply to."),
		mcp.WithString("workflow_id", mcp.Required(), mcp.Description("Workflow ID")),
		mcp.WithOutputSchema[WorkflowResponse](),
	), mcp.NewStructuredToolHandler(s.handleSelectWorkflow))

	s.mcpServer.AddTool(mcp.NewTool("toggle_library",
		mcp.WithDescription("Show or hide the action library panel."),
		mcp.WithOutputSchema[WorkflowResponse](),
	), mcp.NewStructuredToolHandler(s.handleToggleLibrary))
}

type addActionArgs struct {
	Type       string `mapstructure:"type"`
	Name       string `mapstructure:"name"`
	WorkflowID string `mapstructure:"workflow_id"`
}

type removeActionArgs struct {
	ActionID string `mapstructure:"action_id"`
	Index    int    `mapstructure:"index"`
}

type renameArgs struct {
	Name *string `mapstructure:"name"`
}

type selectArgs struct {
	WorkflowID *string `mapstructure:"workflow_id"`
}

func decodeArgs(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(args); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func (s *Server) handleListCatalog(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (CatalogResponse, error) {
	return CatalogResponse{Entries: domain.Catalog()}, nil
}

func (s *Server) handleShowWorkflow(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (WorkflowResponse, error) {
	return s.mutate(ctx, func(context.Context, *builder.Store) error { return nil })
}

func (s *Server) handleAddAction(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (WorkflowResponse, error) {
	var in addActionArgs
	if err := decodeArgs(args, &in); err != nil {
		return WorkflowResponse{}, err
	}
	if in.Type == "" {
		return WorkflowResponse{}, errors.New("type is required")
	}
	if in.Name == "" {
		entry, ok := domain.LookupCatalog(in.Type)
		if !ok {
			return WorkflowResponse{}, fmt.Errorf("%w: %s", domain.ErrUnknownActionType, in.Type)
		}
		in.Name = entry.Name
	}

	var added domain.Action
	resp, err := s.mutate(ctx, func(ctx context.Context, store *builder.Store) error {
		target := in.WorkflowID
		if target == "" {
			target = store.SelectedID()
		}
		var err error
		added, err = store.AddAction(ctx, target, in.Type, in.Name)
		return err
	})
	if err != nil {
		return WorkflowResponse{}, err
	}
	if added.ID != "" {
		resp.Action = &added
	}
	return resp, nil
}

func (s *Server) handleRemoveAction(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (WorkflowResponse, error) {
	var in removeActionArgs
	if err := decodeArgs(args, &in); err != nil {
		return WorkflowResponse{}, err
	}
	if in.ActionID == "" && in.Index == 0 {
		return WorkflowResponse{}, errors.New("action_id or index is required")
	}

	var removed *domain.Action
	resp, err := s.mutate(ctx, func(ctx context.Context, store *builder.Store) error {
		id := in.ActionID
		if id == "" {
			card, ok := view.Project(store.Snapshot()).CardByIndex(in.Index)
			if !ok {
				if store.Strict() {
					return fmt.Errorf("%w: position %d", domain.ErrActionNotFound, in.Index)
				}
				return nil
			}
			id = card.ID
		}
		if w, ok := store.Current(); ok {
			if pos := w.IndexOf(id); pos >= 0 {
				a := w.Actions[pos]
				removed = &a
			}
		}
		return store.RemoveAction(ctx, id)
	})
	if err != nil {
		return WorkflowResponse{}, err
	}
	if resp.Changed {
		resp.Action = removed
	}
	return resp, nil
}

func (s *Server) handleRenameWorkflow(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (WorkflowResponse, error) {
	var in renameArgs
	if err := decodeArgs(args, &in); err != nil {
		return WorkflowResponse{}, err
	}
	if in.Name == nil {
		return WorkflowResponse{}, errors.New("name is required")
	}
	return s.mutate(ctx, func(ctx context.Context, store *builder.Store) error {
		return store.RenameWorkflow(ctx, *in.Name)
	})
}

func (s *Server) handleSelectWorkflow(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (WorkflowResponse, error) {
	var in selectArgs
	if err := decodeArgs(args, &in); err != nil {
		return WorkflowResponse{}, err
	}
	if in.WorkflowID == nil {
		return WorkflowResponse{}, errors.New("workflow_id is required")
	}
	return s.mutate(ctx, func(ctx context.Context, store *builder.Store) error {
		return store.SelectWorkflow(ctx, *in.WorkflowID)
	})
}

func (s *Server) handleToggleLibrary(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (WorkflowResponse, error) {
	return s.mutate(ctx, func(ctx context.Context, store *builder.Store) error {
		store.ToggleLibrary(ctx)
		return nil
	})
}

func (s *Server) mutate(ctx context.Context, fn func(context.Context, *builder.Store) error) (WorkflowResponse, error) {
	var resp WorkflowResponse
	err := s.sessions.WithSession(ctx, s.sessionID, func(ctx context.Context, store *builder.Store) error {
		before := store.Snapshot()
		if err := fn(ctx, store); err != nil {
			return err
		}
		after := store.Snapshot()
		resp.Diff = domain.Diff(&before, &after)
		resp.View = view.Project(after)
		return nil
	})
	if err != nil {
		s.logger.Debug("MCP tool failed", zap.String("session_id", s.sessionID), zap.Error(err))
		return WorkflowResponse{}, err
	}
	resp.Changed = resp.Diff != nil
	return resp, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(WorkflowURI, "Selected Workflow",
		mcp.WithResourceDescription("The selected workflow rendered as Markdown"),
		mcp.WithMIMEType("text/markdown"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		var snap domain.Snapshot
		err := s.sessions.WithSession(ctx, s.sessionID, func(_ context.Context, store *builder.Store) error {
			snap = store.Snapshot()
			return nil
		})
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      WorkflowURI,
				MIMEType: "text/markdown",
				Text:     view.Markdown(view.Project(snap)),
			},
		}, nil
	})

	s.mcpServer.AddResource(mcp.NewResource(CatalogURI, "Action Catalog",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(domain.Catalog()); err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      CatalogURI,
				MIMEType: "application/json",
				Text:     buf.String(),
			},
		}, nil
	})
}
