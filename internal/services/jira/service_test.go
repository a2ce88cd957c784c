package jira

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/atlassian-mcp/internal/common"
	"github.com/ternarybob/atlassian-mcp/internal/models"
	"github.com/ternarybob/atlassian-mcp/internal/services/preprocess"
)

const issueJSON = `{
	"id": "10001",
	"key": "PROJ-1",
	"fields": {
		"summary": "Checkout revamp",
		"description": "h1. Goal\nShip the new checkout",
		"issuetype": {"name": "Epic"},
		"status": {"name": "In Progress"},
		"priority": null,
		"created": "2024-01-05T10:00:00.000+0000",
		"customfield_10021": "Checkout revamp",
		"customfield_99999": "not in catalog",
		"comment": {"comments": [
			{"body": "Looks good", "created": "2024-01-06T09:00:00.000+0000", "author": {"displayName": "Ana Reyes"}}
		]}
	}
}`

func newTestService(t *testing.T, handler http.Handler) (*Service, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := common.GetLogger()
	client := NewClient(common.CredentialConfig{URL: server.URL, Username: "bot", APIToken: "token"}, logger)
	catalog := NewFieldCatalog(client, logger)
	svc := NewService(client, catalog, preprocess.New(server.URL, logger), logger)
	return svc, server
}

func TestGetIssueDocument(t *testing.T) {
	svc, server := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/api/2/issue/PROJ-1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(issueJSON))
	}))

	doc, err := svc.GetIssue(context.Background(), "PROJ-1", "")
	require.NoError(t, err)

	assert.Contains(t, doc.PageContent, "Issue: PROJ-1\n")
	assert.Contains(t, doc.PageContent, "Title: Checkout revamp\n")
	assert.Contains(t, doc.PageContent, "Type: Epic\n")
	assert.Contains(t, doc.PageContent, "Status: In Progress\n")
	assert.Contains(t, doc.PageContent, "Created: 2024-01-05\n")
	assert.Contains(t, doc.PageContent, "Description:\n# Goal\nShip the new checkout")
	assert.Contains(t, doc.PageContent, "Custom Fields:\nEpic Name: Checkout revamp\n")
	assert.Contains(t, doc.PageContent, "Comments:\n2024-01-06 - Ana Reyes: Looks good")

	assert.Equal(t, "PROJ-1", doc.Metadata["key"])
	assert.Equal(t, "Epic", doc.Metadata["type"])
	assert.Equal(t, "In Progress", doc.Metadata["status"])
	assert.Equal(t, "2024-01-05", doc.Metadata["created_date"])
	assert.Equal(t, "None", doc.Metadata["priority"], "null priority must render as None")
	assert.Equal(t, server.URL+"/browse/PROJ-1", doc.Metadata["link"])
	assert.Equal(t, map[string]any{"Epic Name": "Checkout revamp"}, doc.Metadata["custom_fields"],
		"custom fields outside the catalog stay out of metadata")
}

func TestGetIssueNotFound(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errorMessages":["Issue does not exist"]}`, http.StatusNotFound)
	}))

	_, err := svc.GetIssue(context.Background(), "PROJ-404", "")
	assert.True(t, models.IsNotFound(err))
}

func TestCreateEpicInjectsEpicName(t *testing.T) {
	var createdFields map[string]any

	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/rest/api/2/project/PROJ":
			w.Write([]byte(`{"id": "1", "key": "PROJ", "name": "Project"}`))
		case r.URL.Path == "/rest/api/2/issue" && r.Method == http.MethodPost:
			var payload struct {
				Fields map[string]any `json:"fields"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			createdFields = payload.Fields
			w.Write([]byte(`{"id": "10001", "key": "PROJ-1"}`))
		case r.URL.Path == "/rest/api/2/issue/PROJ-1":
			w.Write([]byte(issueJSON))
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))

	request, err := models.NewIssueCreateRequest("PROJ", "Checkout revamp", "desc", models.IssueTypeEpic, "", map[string]any{
		"Story Points":     8,
		"No Such Field":    "dropped",
		"customfield_7777": "kept verbatim",
	})
	require.NoError(t, err)

	doc, err := svc.CreateIssue(context.Background(), request)
	require.NoError(t, err)

	assert.Equal(t, "Checkout revamp", createdFields["customfield_10021"], "epic name mirrors the summary")
	assert.Equal(t, map[string]any{"name": "Epic"}, createdFields["issuetype"])
	assert.Equal(t, float64(8), createdFields["customfield_10026"])
	assert.Equal(t, "kept verbatim", createdFields["customfield_7777"])
	assert.NotContains(t, createdFields, "No Such Field")

	assert.Equal(t, "Epic", doc.Metadata["type"])
}

func TestCreateStoryRejectsInvalidEpicLink(t *testing.T) {
	t.Run("epic does not exist", func(t *testing.T) {
		svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			switch r.URL.Path {
			case "/rest/api/2/project/PROJ":
				w.Write([]byte(`{"id": "1", "key": "PROJ", "name": "Project"}`))
			case "/rest/api/2/issue/PROJ-9":
				http.Error(w, "{}", http.StatusNotFound)
			default:
				t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			}
		}))

		request, err := models.NewIssueCreateRequest("PROJ", "Cart button", "", models.IssueTypeStory, "PROJ-9", nil)
		require.NoError(t, err)

		_, err = svc.CreateIssue(context.Background(), request)
		var linkErr *models.InvalidEpicLinkError
		require.ErrorAs(t, err, &linkErr)
		assert.Equal(t, "PROJ-9", linkErr.Key)
	})

	t.Run("linked issue is not an epic", func(t *testing.T) {
		svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			switch r.URL.Path {
			case "/rest/api/2/project/PROJ":
				w.Write([]byte(`{"id": "1", "key": "PROJ", "name": "Project"}`))
			case "/rest/api/2/issue/PROJ-2":
				w.Write([]byte(`{"id": "10002", "key": "PROJ-2", "fields": {"issuetype": {"name": "Story"}}}`))
			default:
				t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			}
		}))

		request, err := models.NewIssueCreateRequest("PROJ", "Cart button", "", models.IssueTypeStory, "PROJ-2", nil)
		require.NoError(t, err)

		_, err = svc.CreateIssue(context.Background(), request)
		var linkErr *models.InvalidEpicLinkError
		assert.ErrorAs(t, err, &linkErr)
	})
}

func TestUpdateIssueFieldTranslation(t *testing.T) {
	var updatedFields map[string]any

	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/rest/api/2/issue/PROJ-1" && r.Method == http.MethodPut:
			var payload struct {
				Fields map[string]any `json:"fields"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			updatedFields = payload.Fields
			w.WriteHeader(http.StatusNoContent)
		case r.URL.Path == "/rest/api/2/issue/PROJ-1":
			w.Write([]byte(issueJSON))
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))

	request, err := models.NewIssueUpdateRequest("PROJ-1", map[string]any{
		"Summary":       "New title",
		"Story Points":  13,
		"Weird Field ?": "dropped",
	})
	require.NoError(t, err)

	_, err = svc.UpdateIssue(context.Background(), request)
	require.NoError(t, err)

	assert.Equal(t, "New title", updatedFields["summary"], "catalog misses fall through to standard fields")
	assert.Equal(t, float64(13), updatedFields["customfield_10026"])
	assert.NotContains(t, updatedFields, "Weird Field ?")
	assert.NotContains(t, updatedFields, "weird field ?")
}

func TestUpdateIssueAllFieldsDropped(t *testing.T) {
	var putSeen bool

	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			putSeen = true
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(issueJSON))
	}))

	request, err := models.NewIssueUpdateRequest("PROJ-1", map[string]any{"Totally Unknown ?": 1})
	require.NoError(t, err)

	_, err = svc.UpdateIssue(context.Background(), request)
	var validationErr *models.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.False(t, putSeen, "no write when every field is dropped")
}

func TestGetProjectIssues(t *testing.T) {
	var searchJQL string

	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/rest/api/2/search":
			searchJQL = r.URL.Query().Get("jql")
			w.Write([]byte(`{"issues": [{"id": "10001", "key": "PROJ-1", "fields": {"summary": "Checkout revamp"}}], "total": 1}`))
		case "/rest/api/2/issue/PROJ-1":
			w.Write([]byte(issueJSON))
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))

	documents, err := svc.GetProjectIssues(context.Background(), "PROJ", 0, 10)
	require.NoError(t, err)

	assert.Equal(t, "project = PROJ ORDER BY created DESC", searchJQL)
	require.Len(t, documents, 1)
	assert.Equal(t, "PROJ-1", documents[0].Metadata["key"])
}

func TestIssueFieldsUnmarshalCapturesCustomFields(t *testing.T) {
	var fields IssueFields
	require.NoError(t, json.Unmarshal([]byte(`{
		"summary": "S",
		"customfield_10026": 5,
		"customfield_11738": null,
		"other": "ignored"
	}`), &fields))

	assert.Equal(t, "S", fields.Summary)
	assert.Equal(t, float64(5), fields.Custom["customfield_10026"])
	assert.NotContains(t, fields.Custom, "customfield_11738", "null custom values are skipped")
	assert.NotContains(t, fields.Custom, "other")
}
