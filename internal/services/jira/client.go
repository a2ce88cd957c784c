// -----------------------------------------------------------------------
// Jira REST client - typed wrappers over the v2 REST API
// -----------------------------------------------------------------------

package jira

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

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/atlassian-mcp/internal/common"
	"github.com/ternarybob/atlassian-mcp/internal/models"
)

// Issue is a Jira issue response
type Issue struct {
	ID     string      `json:"id"`
	Key    string      `json:"key"`
	Fields IssueFields `json:"fields"`
}

// IssueFields carries the declared system fields plus every customfield_*
// entry the remote returned, captured dynamically into Custom.
type IssueFields struct {
	Summary     string       `json:"summary"`
	Description string       `json:"description"`
	IssueType   *NamedEntity `json:"issuetype"`
	Status      *NamedEntity `json:"status"`
	Priority    *NamedEntity `json:"priority"`
	Created     string       `json:"created"`
	Comment     *CommentList `json:"comment"`

	Custom map[string]any `json:"-"`
}

// UnmarshalJSON decodes the declared fields, then sweeps the raw object for
// customfield_* keys. Null custom values are skipped.
func (f *IssueFields) UnmarshalJSON(data []byte) error {
	type fields IssueFields
	var declared fields
	if err := json.Unmarshal(data, &declared); err != nil {
		return err
	}
	*f = IssueFields(declared)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	f.Custom = make(map[string]any)
	for key, value := range raw {
		if !strings.HasPrefix(key, "customfield_") {
			continue
		}
		var decoded any
		if err := json.Unmarshal(value, &decoded); err != nil {
			continue
		}
		if decoded != nil {
			f.Custom[key] = decoded
		}
	}
	return nil
}

// NamedEntity is any Jira reference object carrying a display name
type NamedEntity struct {
	Name string `json:"name"`
}

type CommentList struct {
	Comments []IssueComment `json:"comments"`
}

type IssueComment struct {
	Body    string   `json:"body"`
	Created string   `json:"created"`
	Author  *UserRef `json:"author"`
}

// UserRef is a Jira user reference; only the display name is consumed
type UserRef struct {
	DisplayName string `json:"displayName"`
}

// Field is one entry from the field catalog endpoint
type Field struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Custom bool   `json:"custom"`
}

// Project is a Jira project response
type Project struct {
	ID          string `json:"id"`
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type searchResult struct {
	Issues     []Issue `json:"issues"`
	StartAt    int     `json:"startAt"`
	MaxResults int     `json:"maxResults"`
	Total      int     `json:"total"`
}

type createdIssue struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

// Client is an authenticated Jira REST client. Requests are paced by a shared
// rate limiter; all methods honor the caller's context.
type Client struct {
	httpClient *http.Client
	baseURL    string
	username   string
	apiToken   string
	limiter    *rate.Limiter
	logger     arbor.ILogger
}

// NewClient creates a Jira client from credentials
func NewClient(creds common.CredentialConfig, logger arbor.ILogger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(creds.URL, "/"),
		username:   creds.Username,
		apiToken:   creds.APIToken,
		limiter:    rate.NewLimiter(rate.Limit(10), 20),
		logger:     logger,
	}
}

// BaseURL returns the configured base URL without a trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) doRequest(ctx context.Context, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &models.RemoteError{Service: "jira", Operation: method + " " + path, Err: err}
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return &models.RemoteError{Service: "jira", Operation: method + " " + path, Err: err}
	}
	req.SetBasicAuth(c.username, c.apiToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &models.RemoteError{Service: "jira", Operation: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &models.RemoteError{Service: "jira", Operation: method + " " + path, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &models.RemoteError{
			Service:    "jira",
			Operation:  method + " " + path,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", truncateBody(data)),
		}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return &models.RemoteError{Service: "jira", Operation: method + " " + path, Err: fmt.Errorf("failed to parse response: %w", err)}
		}
	}

	return nil
}

func truncateBody(data []byte) string {
	const max = 256
	if len(data) > max {
		return string(data[:max])
	}
	return string(data)
}

// GetIssue fetches an issue by key. expand is passed through to the remote
// API; an empty expand fetches the default field set.
func (c *Client) GetIssue(ctx context.Context, issueKey, expand string) (*Issue, error) {
	path := fmt.Sprintf("/rest/api/2/issue/%s", url.PathEscape(issueKey))
	if expand != "" {
		path += "?expand=" + url.QueryEscape(expand)
	}

	var issue Issue
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &issue); err != nil {
		if models.RemoteStatus(err) == http.StatusNotFound {
			return nil, &models.NotFoundError{Resource: "issue", Key: issueKey}
		}
		return nil, err
	}
	return &issue, nil
}

// SearchIssues runs a JQL query. fields limits the returned field set when
// non-empty.
func (c *Client) SearchIssues(ctx context.Context, jql, fields string, startAt, maxResults int) ([]Issue, error) {
	path := fmt.Sprintf("/rest/api/2/search?jql=%s&startAt=%d&maxResults=%d",
		url.QueryEscape(jql), startAt, maxResults)
	if fields != "" {
		path += "&fields=" + url.QueryEscape(fields)
	}

	var result searchResult
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result.Issues, nil
}

// CreateIssue posts a raw fields payload and returns the new issue's id and key
func (c *Client) CreateIssue(ctx context.Context, fields map[string]any) (string, error) {
	payload := map[string]any{"fields": fields}

	var created createdIssue
	if err := c.doRequest(ctx, http.MethodPost, "/rest/api/2/issue", payload, &created); err != nil {
		return "", err
	}
	return created.Key, nil
}

// UpdateIssue overwrites the given fields on an issue. The remote returns no
// body on success.
func (c *Client) UpdateIssue(ctx context.Context, issueKey string, fields map[string]any) error {
	path := fmt.Sprintf("/rest/api/2/issue/%s", url.PathEscape(issueKey))
	payload := map[string]any{"fields": fields}

	if err := c.doRequest(ctx, http.MethodPut, path, payload, nil); err != nil {
		if models.RemoteStatus(err) == http.StatusNotFound {
			return &models.NotFoundError{Resource: "issue", Key: issueKey}
		}
		return err
	}
	return nil
}

// ListFields fetches the full field catalog, system and custom fields alike
func (c *Client) ListFields(ctx context.Context) ([]Field, error) {
	var fields []Field
	if err := c.doRequest(ctx, http.MethodGet, "/rest/api/2/field", nil, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// GetProject fetches a single project by key
func (c *Client) GetProject(ctx context.Context, projectKey string) (*Project, error) {
	path := fmt.Sprintf("/rest/api/2/project/%s", url.PathEscape(projectKey))

	var project Project
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &project); err != nil {
		if models.RemoteStatus(err) == http.StatusNotFound {
			return nil, &models.NotFoundError{Resource: "project", Key: projectKey}
		}
		return nil, err
	}
	return &project, nil
}

// ListProjects enumerates visible projects
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var projects []Project
	if err := c.doRequest(ctx, http.MethodGet, "/rest/api/2/project", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}
