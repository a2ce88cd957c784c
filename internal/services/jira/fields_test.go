package jira

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/atlassian-mcp/internal/common"
)

func TestFieldCatalogResolve(t *testing.T) {
	catalog := NewFieldCatalog(nil, common.GetLogger())

	t.Run("seed mapping", func(t *testing.T) {
		id, ok := catalog.Resolve("Epic Name")
		require.True(t, ok)
		assert.Equal(t, "customfield_10021", id)
	})

	t.Run("canonical id passes through", func(t *testing.T) {
		id, ok := catalog.Resolve("customfield_99999")
		require.True(t, ok)
		assert.Equal(t, "customfield_99999", id)
	})

	t.Run("unknown name resolves to false", func(t *testing.T) {
		id, ok := catalog.Resolve("Definitely Not A Field")
		assert.False(t, ok)
		assert.Empty(t, id)
	})

	t.Run("empty name resolves to false", func(t *testing.T) {
		_, ok := catalog.Resolve("")
		assert.False(t, ok)
	})
}

func TestFieldCatalogInitialize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/api/2/field", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": "summary", "name": "Summary", "custom": false},
			{"id": "customfield_12345", "name": "Team", "custom": true},
			{"id": "customfield_20019", "name": "Epic Link", "custom": true}
		]`))
	}))
	t.Cleanup(server.Close)

	logger := common.GetLogger()
	client := NewClient(common.CredentialConfig{URL: server.URL, Username: "bot", APIToken: "token"}, logger)
	catalog := NewFieldCatalog(client, logger)

	require.NoError(t, catalog.Initialize(context.Background()))

	id, ok := catalog.Resolve("Team")
	require.True(t, ok)
	assert.Equal(t, "customfield_12345", id)

	// Discovery overrides a seed mapping with the instance's actual id
	id, ok = catalog.Resolve("Epic Link")
	require.True(t, ok)
	assert.Equal(t, "customfield_20019", id)

	// Non-custom fields never enter the catalog
	_, ok = catalog.Resolve("Summary")
	assert.False(t, ok)

	// Seeds without a discovered replacement survive
	id, ok = catalog.Resolve("Story Points")
	require.True(t, ok)
	assert.Equal(t, "customfield_10026", id)

	assert.Contains(t, catalog.KnownFields(), "Team")
}

func TestFieldCatalogInitializeFailureKeepsSeeds(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	t.Cleanup(server.Close)

	logger := common.GetLogger()
	client := NewClient(common.CredentialConfig{URL: server.URL, Username: "bot", APIToken: "token"}, logger)
	catalog := NewFieldCatalog(client, logger)

	assert.Error(t, catalog.Initialize(context.Background()))

	// Degraded mode: seed mappings still work
	id, ok := catalog.Resolve("Epic Name")
	require.True(t, ok)
	assert.Equal(t, "customfield_10021", id)
}

func TestFieldCatalogDisplayFields(t *testing.T) {
	catalog := NewFieldCatalog(nil, common.GetLogger())

	named := catalog.DisplayFields(map[string]any{
		"customfield_10021": "Checkout revamp",
		"customfield_55555": "unmapped",
	})

	assert.Equal(t, map[string]any{"Epic Name": "Checkout revamp"}, named)
}
