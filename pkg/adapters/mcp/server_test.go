package mcp

import (
	"context"
	"testing"

	"github.com/aretw0/automator/pkg/builder"
	"github.com/aretw0/automator/pkg/domain"
	"github.com/aretw0/automator/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, opts ...builder.Option) *Server {
	t.Helper()
	opts = append(opts, builder.WithIDGenerator(builder.NewCounterGenerator("a")))
	return NewServer(session.NewManager(session.NewFactory(opts...)), WithSessionID("test"))
}

func call(args map[string]any) (context.Context, mcp.CallToolRequest, map[string]any) {
	return context.Background(), mcp.CallToolRequest{}, args
}

func TestListCatalog(t *testing.T) {
	s := newTestServer(t)

	resp, err := s.handleListCatalog(call(nil))
	require.NoError(t, err)
	require.Len(t, resp.Entries, 12)
	assert.Equal(t, "Get Specified Files", resp.Entries[0].Name)
}

func TestAddShowRemove(t *testing.T) {
	s := newTestServer(t)

	resp, err := s.handleAddAction(call(map[string]any{"type": "shell"}))
	require.NoError(t, err)
	require.NotNil(t, resp.Action)
	assert.Equal(t, "Run Shell Script", resp.Action.Name)
	assert.True(t, resp.Changed)

	_, err = s.handleAddAction(call(map[string]any{"type": "custom", "name": "Resize Images"}))
	require.NoError(t, err)
	_, err = s.handleAddAction(call(map[string]any{"type": "delay"}))
	require.NoError(t, err)

	show, err := s.handleShowWorkflow(call(nil))
	require.NoError(t, err)
	assert.False(t, show.Changed)
	require.Len(t, show.View.Cards, 3)
	assert.Equal(t, "Resize Images", show.View.Cards[1].Name)

	// Index arrives as a JSON number.
	resp, err = s.handleRemoveAction(call(map[string]any{"index": float64(2)}))
	require.NoError(t, err)
	require.NotNil(t, resp.Action)
	assert.Equal(t, "a2", resp.Action.ID)
	require.Len(t, resp.View.Cards, 2)
	assert.Equal(t, "a3", resp.View.Cards[1].ID)
	assert.Equal(t, 2, resp.View.Cards[1].Index)

	resp, err = s.handleRemoveAction(call(map[string]any{"action_id": "a1"}))
	require.NoError(t, err)
	assert.True(t, resp.Changed)
	require.Len(t, resp.View.Cards, 1)
}

func TestAddAction_InvalidArguments(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleAddAction(call(map[string]any{}))
	assert.Error(t, err)

	_, err = s.handleAddAction(call(map[string]any{"type": "teleport"}))
	assert.ErrorIs(t, err, domain.ErrUnknownActionType)

	_, err = s.handleRemoveAction(call(map[string]any{}))
	assert.Error(t, err)

	_, err = s.handleRemoveAction(call(map[string]any{"index": "not a number"}))
	assert.Error(t, err)
}

func TestLenientNoOps(t *testing.T) {
	s := newTestServer(t)

	resp, err := s.handleAddAction(call(map[string]any{"type": "files", "workflow_id": "missing"}))
	require.NoError(t, err)
	assert.False(t, resp.Changed)
	assert.Nil(t, resp.Action)

	resp, err = s.handleRemoveAction(call(map[string]any{"index": 9}))
	require.NoError(t, err)
	assert.False(t, resp.Changed)
	assert.Nil(t, resp.Action)
}

func TestStrictErrors(t *testing.T) {
	s := newTestServer(t, builder.WithStrict(true))

	_, err := s.handleAddAction(call(map[string]any{"type": "files", "workflow_id": "missing"}))
	assert.ErrorIs(t, err, domain.ErrWorkflowNotFound)

	_, err = s.handleRemoveAction(call(map[string]any{"index": 1}))
	assert.ErrorIs(t, err, domain.ErrActionNotFound)

	_, err = s.handleSelectWorkflow(call(map[string]any{"workflow_id": "missing"}))
	assert.ErrorIs(t, err, domain.ErrWorkflowNotFound)
}

func TestRenameSelectToggle(t *testing.T) {
	s := newTestServer(t)

	resp, err := s.handleRenameWorkflow(call(map[string]any{"name": ""}))
	require.NoError(t, err)
	assert.Equal(t, "", resp.View.Title)
	assert.True(t, resp.Changed)

	_, err = s.handleRenameWorkflow(call(map[string]any{}))
	assert.Error(t, err)

	resp, err = s.handleToggleLibrary(call(nil))
	require.NoError(t, err)
	assert.False(t, resp.View.Library.Visible)

	resp, err = s.handleSelectWorkflow(call(map[string]any{"workflow_id": "2"}))
	require.NoError(t, err)
	assert.Equal(t, "2", resp.View.WorkflowID)
	assert.Empty(t, resp.View.Cards)
}
