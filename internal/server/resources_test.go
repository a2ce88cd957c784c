package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/atlassian-mcp/internal/common"
	"github.com/ternarybob/atlassian-mcp/internal/models"
)

func newTestResourceRouter(confluenceSvc *fakeConfluence, jiraSvc *fakeJira) *ResourceRouter {
	return NewResourceRouter(confluenceSvc, jiraSvc, common.GetLogger())
}

func TestReadSpaceListing(t *testing.T) {
	confluenceSvc := &fakeConfluence{spacePages: []*models.Document{
		models.NewDocument("first body", map[string]any{"title": "First"}),
		models.NewDocument("second body", map[string]any{"title": "Second"}),
	}}
	rr := newTestResourceRouter(confluenceSvc, &fakeJira{})

	text, err := rr.Read(context.Background(), "confluence://DEV")
	require.NoError(t, err)
	assert.Equal(t, "# First\n\nfirst body\n---\n\n# Second\n\nsecond body\n---", text)
}

func TestReadPageByTitle(t *testing.T) {
	confluenceSvc := &fakeConfluence{pageDoc: models.NewDocument("page body", map[string]any{"title": "Runbook"})}
	rr := newTestResourceRouter(confluenceSvc, &fakeJira{})

	text, err := rr.Read(context.Background(), "confluence://DEV/pages/Runbook")
	require.NoError(t, err)
	assert.Equal(t, "page body", text)
}

func TestReadProjectListing(t *testing.T) {
	jiraSvc := &fakeJira{searchDocs: []*models.Document{
		models.NewDocument("issue body", map[string]any{"key": "PROJ-1", "title": "Checkout revamp"}),
	}}
	rr := newTestResourceRouter(&fakeConfluence{}, jiraSvc)

	text, err := rr.Read(context.Background(), "jira://PROJ")
	require.NoError(t, err)
	assert.Equal(t, "# PROJ-1: Checkout revamp\n\nissue body\n---", text)
}

func TestReadIssueByKey(t *testing.T) {
	jiraSvc := &fakeJira{issueDoc: models.NewDocument("Issue: PROJ-1", map[string]any{"key": "PROJ-1"})}
	rr := newTestResourceRouter(&fakeConfluence{}, jiraSvc)

	text, err := rr.Read(context.Background(), "jira://PROJ/issues/PROJ-1")
	require.NoError(t, err)
	assert.Equal(t, "Issue: PROJ-1", text)
}

func TestReadInvalidURIs(t *testing.T) {
	rr := newTestResourceRouter(&fakeConfluence{}, &fakeJira{})

	for _, uri := range []string{
		"ftp://somewhere",
		"confluence://",
		"confluence://DEV/unknown/x",
		"jira://PROJ/issues/",
		"jira://",
		"notauri",
	} {
		_, err := rr.Read(context.Background(), uri)
		var invalid *models.InvalidResourceError
		require.ErrorAs(t, err, &invalid, "uri %q must be rejected", uri)
		assert.Equal(t, uri, invalid.URI)
	}
}
