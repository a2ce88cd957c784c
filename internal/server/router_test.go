package server

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/atlassian-mcp/internal/common"
	"github.com/ternarybob/atlassian-mcp/internal/models"
)

func TestDispatchUnknownTool(t *testing.T) {
	router := NewRouter(common.GetLogger())

	_, err := router.Dispatch(context.Background(), "no_such_tool", nil)

	var unknown *models.UnknownToolError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "no_such_tool", unknown.Name)
}

func TestDispatchWrapsHandlerErrors(t *testing.T) {
	router := NewRouter(common.GetLogger())
	boom := errors.New("remote exploded")
	router.Register(mcp.NewTool("failing"), func(ctx context.Context, args map[string]any) (any, error) {
		return nil, boom
	})

	_, err := router.Dispatch(context.Background(), "failing", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tool execution failed:")
	assert.ErrorIs(t, err, boom, "the underlying cause stays in the chain")
}

func TestDispatchSerializesResult(t *testing.T) {
	router := NewRouter(common.GetLogger())
	router.Register(mcp.NewTool("echo"), func(ctx context.Context, args map[string]any) (any, error) {
		return map[string]any{"content": "hello"}, nil
	})

	text, err := router.Dispatch(context.Background(), "echo", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"content": "hello"}`, text)
	assert.Contains(t, text, "\n", "results are rendered as indented JSON")
}
