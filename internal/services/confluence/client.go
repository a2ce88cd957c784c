// -----------------------------------------------------------------------
// Confluence REST client - typed wrappers over the wiki REST API
// -----------------------------------------------------------------------

package confluence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/atlassian-mcp/internal/common"
	"github.com/ternarybob/atlassian-mcp/internal/models"
)

// Page is a Confluence page response. Optional substructures are pointers so
// a missing expand is distinguishable from an empty value.
type Page struct {
	ID      string       `json:"id"`
	Type    string       `json:"type"`
	Title   string       `json:"title"`
	Space   *Space       `json:"space,omitempty"`
	Body    *PageBody    `json:"body,omitempty"`
	Version *PageVersion `json:"version,omitempty"`
	Links   PageLinks    `json:"_links"`
}

type PageBody struct {
	Storage *BodyContent `json:"storage,omitempty"`
	View    *BodyContent `json:"view,omitempty"`
}

type BodyContent struct {
	Value          string `json:"value"`
	Representation string `json:"representation"`
}

type PageVersion struct {
	Number int    `json:"number"`
	When   string `json:"when"`
	By     *User  `json:"by,omitempty"`
}

type User struct {
	DisplayName string `json:"displayName"`
}

type PageLinks struct {
	WebUI string `json:"webui"`
}

// Space is a Confluence space response
type Space struct {
	Key         string            `json:"key"`
	Name        string            `json:"name"`
	Description *SpaceDescription `json:"description,omitempty"`
}

type SpaceDescription struct {
	Plain struct {
		Value string `json:"value"`
	} `json:"plain"`
}

// Comment is a page comment; the editor is carried by the latest version
type Comment struct {
	ID      string       `json:"id"`
	Body    *PageBody    `json:"body,omitempty"`
	Version *PageVersion `json:"version,omitempty"`
}

// SearchResult is one CQL search hit; the excerpt is remote-rendered summary text
type SearchResult struct {
	Content      *SearchContent `json:"content,omitempty"`
	Title        string         `json:"title"`
	Excerpt      string         `json:"excerpt"`
	URL          string         `json:"url"`
	LastModified string         `json:"lastModified"`
	Container    *Container     `json:"resultGlobalContainer,omitempty"`
}

type SearchContent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

type Container struct {
	Title string `json:"title"`
}

type resultPage[T any] struct {
	Results []T `json:"results"`
	Start   int `json:"start"`
	Limit   int `json:"limit"`
	Size    int `json:"size"`
}

// Client is an authenticated Confluence REST client. Requests are paced by a
// shared rate limiter; all methods honor the caller's context.
type Client struct {
	httpClient *http.Client
	baseURL    string
	username   string
	apiToken   string
	limiter    *rate.Limiter
	logger     arbor.ILogger
}

// NewClient creates a Confluence client from credentials
func NewClient(creds common.CredentialConfig, logger arbor.ILogger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    trimSlash(creds.URL),
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

func trimSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}

func (c *Client) doRequest(ctx context.Context, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &models.RemoteError{Service: "confluence", Operation: method + " " + path, Err: err}
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
		return &models.RemoteError{Service: "confluence", Operation: method + " " + path, Err: err}
	}
	req.SetBasicAuth(c.username, c.apiToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &models.RemoteError{Service: "confluence", Operation: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &models.RemoteError{Service: "confluence", Operation: method + " " + path, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &models.RemoteError{
			Service:    "confluence",
			Operation:  method + " " + path,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", truncateBody(data)),
		}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return &models.RemoteError{Service: "confluence", Operation: method + " " + path, Err: fmt.Errorf("failed to parse response: %w", err)}
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

// GetPage fetches a page by id with the given expand specification
func (c *Client) GetPage(ctx context.Context, pageID, expand string) (*Page, error) {
	path := fmt.Sprintf("/wiki/rest/api/content/%s?expand=%s", url.PathEscape(pageID), url.QueryEscape(expand))

	var page Page
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &page); err != nil {
		if statusOf(err) == http.StatusNotFound {
			return nil, &models.NotFoundError{Resource: "page", Key: pageID}
		}
		return nil, err
	}
	return &page, nil
}

// FindPageByTitle looks up a page by space key and exact title. Returns
// NotFoundError when the space holds no page with that title.
func (c *Client) FindPageByTitle(ctx context.Context, spaceKey, title string) (*Page, error) {
	path := fmt.Sprintf("/wiki/rest/api/content?spaceKey=%s&title=%s&expand=body.storage,version,space",
		url.QueryEscape(spaceKey), url.QueryEscape(title))

	var result resultPage[Page]
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	if len(result.Results) == 0 {
		return nil, &models.NotFoundError{Resource: "page", Key: title}
	}
	return &result.Results[0], nil
}

// ListSpacePages lists pages in a space with storage bodies expanded
func (c *Client) ListSpacePages(ctx context.Context, spaceKey string, start, limit int) ([]Page, error) {
	path := fmt.Sprintf("/wiki/rest/api/content?spaceKey=%s&type=page&start=%d&limit=%d&expand=body.storage,version,space",
		url.QueryEscape(spaceKey), start, limit)

	var result resultPage[Page]
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}

// GetSpace fetches a single space by key
func (c *Client) GetSpace(ctx context.Context, spaceKey string) (*Space, error) {
	path := fmt.Sprintf("/wiki/rest/api/space/%s", url.PathEscape(spaceKey))

	var space Space
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &space); err != nil {
		if statusOf(err) == http.StatusNotFound {
			return nil, &models.NotFoundError{Resource: "space", Key: spaceKey}
		}
		return nil, err
	}
	return &space, nil
}

// ListSpaces enumerates spaces with plain descriptions expanded
func (c *Client) ListSpaces(ctx context.Context, start, limit int) ([]Space, error) {
	path := fmt.Sprintf("/wiki/rest/api/space?start=%d&limit=%d&expand=description.plain", start, limit)

	var result resultPage[Space]
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}

// ListComments fetches all comments for a page, view bodies and versions expanded
func (c *Client) ListComments(ctx context.Context, pageID string) ([]Comment, error) {
	path := fmt.Sprintf("/wiki/rest/api/content/%s/child/comment?expand=body.view,version&depth=all",
		url.PathEscape(pageID))

	var result resultPage[Comment]
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &result); err != nil {
		if statusOf(err) == http.StatusNotFound {
			return nil, &models.NotFoundError{Resource: "page", Key: pageID}
		}
		return nil, err
	}
	return result.Results, nil
}

// SearchCQL runs a CQL query
func (c *Client) SearchCQL(ctx context.Context, cql string, limit int) ([]SearchResult, error) {
	path := fmt.Sprintf("/wiki/rest/api/content/search?cql=%s&limit=%d", url.QueryEscape(cql), limit)

	var result resultPage[SearchResult]
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}

type pageWriteBody struct {
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Space     *spaceRef  `json:"space,omitempty"`
	Ancestors []idRef    `json:"ancestors,omitempty"`
	Body      body       `json:"body"`
	Version   *verNumber `json:"version,omitempty"`
}

type spaceRef struct {
	Key string `json:"key"`
}

type idRef struct {
	ID string `json:"id"`
}

type body struct {
	Storage BodyContent `json:"storage"`
}

type verNumber struct {
	Number int `json:"number"`
}

// CreatePage creates a page from wiki-markup content
func (c *Client) CreatePage(ctx context.Context, spaceKey, title, content, parentID string) (*Page, error) {
	payload := pageWriteBody{
		Type:  "page",
		Title: title,
		Space: &spaceRef{Key: spaceKey},
		Body:  body{Storage: BodyContent{Value: content, Representation: "wiki"}},
	}
	if parentID != "" {
		payload.Ancestors = []idRef{{ID: parentID}}
	}

	var page Page
	if err := c.doRequest(ctx, http.MethodPost, "/wiki/rest/api/content", payload, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// UpdatePage writes a new page revision. newVersion must be the successor of
// the current remote version; the version check itself lives in the service.
func (c *Client) UpdatePage(ctx context.Context, pageID, title, content string, newVersion int) (*Page, error) {
	payload := pageWriteBody{
		Type:    "page",
		Title:   title,
		Body:    body{Storage: BodyContent{Value: content, Representation: "wiki"}},
		Version: &verNumber{Number: newVersion},
	}

	var page Page
	path := fmt.Sprintf("/wiki/rest/api/content/%s", url.PathEscape(pageID))
	if err := c.doRequest(ctx, http.MethodPut, path, payload, &page); err != nil {
		if statusOf(err) == http.StatusNotFound {
			return nil, &models.NotFoundError{Resource: "page", Key: pageID}
		}
		return nil, err
	}
	return &page, nil
}

func statusOf(err error) int {
	return models.RemoteStatus(err)
}
