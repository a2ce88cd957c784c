// -----------------------------------------------------------------------
// Tool handlers - argument extraction and result shaping per tool
// -----------------------------------------------------------------------

package server

import (
	"context"

	"github.com/ternarybob/atlassian-mcp/internal/interfaces"
	"github.com/ternarybob/atlassian-mcp/internal/models"
)

const (
	defaultLimit = 10
	maxLimit     = 50
)

// RegisterTools wires every Confluence and Jira tool into the router
func RegisterTools(r *Router, confluenceSvc interfaces.ConfluenceService, jiraSvc interfaces.JiraService) {
	r.Register(createContentSearchTool(), handleContentSearch(confluenceSvc))
	r.Register(createContentGetPageTool(), handleContentGetPage(confluenceSvc))
	r.Register(createContentCreatePageTool(), handleContentCreatePage(confluenceSvc))
	r.Register(createContentUpdatePageTool(), handleContentUpdatePage(confluenceSvc))
	r.Register(createContentGetCommentsTool(), handleContentGetComments(confluenceSvc))

	r.Register(createIssueGetTool(), handleIssueGet(jiraSvc))
	r.Register(createIssueCreateEpicTool(), handleIssueCreate(jiraSvc, models.IssueTypeEpic))
	r.Register(createIssueCreateStoryTool(), handleIssueCreate(jiraSvc, models.IssueTypeStory))
	r.Register(createIssueUpdateTool(), handleIssueUpdate(jiraSvc))
	r.Register(createIssueSearchTool(), handleIssueSearch(jiraSvc))
	r.Register(createIssueGetProjectIssuesTool(), handleIssueGetProjectIssues(jiraSvc))
}

// handleContentSearch implements the content_search tool
func handleContentSearch(svc interfaces.ConfluenceService) ToolFunc {
	return func(ctx context.Context, args map[string]any) (any, error) {
		query, err := requireString(args, "query")
		if err != nil {
			return nil, err
		}

		documents, err := svc.Search(ctx, query, clampLimit(args))
		if err != nil {
			return nil, err
		}

		results := make([]map[string]any, 0, len(documents))
		for _, doc := range documents {
			results = append(results, map[string]any{
				"page_id":       doc.Metadata["page_id"],
				"title":         doc.Metadata["title"],
				"space":         doc.Metadata["space"],
				"url":           doc.Metadata["url"],
				"last_modified": doc.Metadata["last_modified"],
				"type":          doc.Metadata["type"],
				"excerpt":       doc.PageContent,
			})
		}
		return results, nil
	}
}

// handleContentGetPage implements the content_get_page tool
func handleContentGetPage(svc interfaces.ConfluenceService) ToolFunc {
	return func(ctx context.Context, args map[string]any) (any, error) {
		pageID, err := requireString(args, "page_id")
		if err != nil {
			return nil, err
		}

		doc, err := svc.GetPage(ctx, pageID, true)
		if err != nil {
			return nil, err
		}

		if !getBool(args, "include_metadata", true) {
			return map[string]any{"content": doc.PageContent}, nil
		}
		return map[string]any{"content": doc.PageContent, "metadata": doc.Metadata}, nil
	}
}

// handleContentCreatePage implements the content_create_page tool
func handleContentCreatePage(svc interfaces.ConfluenceService) ToolFunc {
	return func(ctx context.Context, args map[string]any) (any, error) {
		request, err := models.NewPageCreateRequest(
			getString(args, "space_key", ""),
			getString(args, "title", ""),
			getString(args, "content", ""),
			getString(args, "parent_id", ""),
		)
		if err != nil {
			return nil, err
		}

		doc, err := svc.CreatePage(ctx, request)
		if err != nil {
			return nil, err
		}
		return map[string]any{"content": doc.PageContent, "metadata": doc.Metadata}, nil
	}
}

// handleContentUpdatePage implements the content_update_page tool
func handleContentUpdatePage(svc interfaces.ConfluenceService) ToolFunc {
	return func(ctx context.Context, args map[string]any) (any, error) {
		request, err := models.NewPageUpdateRequest(
			getString(args, "page_id", ""),
			getString(args, "title", ""),
			getString(args, "content", ""),
			getInt(args, "version", 0),
		)
		if err != nil {
			return nil, err
		}

		doc, err := svc.UpdatePage(ctx, request)
		if err != nil {
			return nil, err
		}
		return map[string]any{"content": doc.PageContent, "metadata": doc.Metadata}, nil
	}
}

// handleContentGetComments implements the content_get_comments tool
func handleContentGetComments(svc interfaces.ConfluenceService) ToolFunc {
	return func(ctx context.Context, args map[string]any) (any, error) {
		pageID, err := requireString(args, "page_id")
		if err != nil {
			return nil, err
		}

		comments, err := svc.GetComments(ctx, pageID, true)
		if err != nil {
			return nil, err
		}

		results := make([]map[string]any, 0, len(comments))
		for _, comment := range comments {
			results = append(results, map[string]any{
				"author":  comment.Metadata["author_name"],
				"created": comment.Metadata["last_modified"],
				"content": comment.PageContent,
			})
		}
		return results, nil
	}
}

// handleIssueGet implements the issue_get tool
func handleIssueGet(svc interfaces.JiraService) ToolFunc {
	return func(ctx context.Context, args map[string]any) (any, error) {
		issueKey, err := requireString(args, "issue_key")
		if err != nil {
			return nil, err
		}

		doc, err := svc.GetIssue(ctx, issueKey, getString(args, "expand", ""))
		if err != nil {
			return nil, err
		}
		return map[string]any{"content": doc.PageContent, "metadata": doc.Metadata}, nil
	}
}

// handleIssueCreate implements issue_create_epic and issue_create_story; the
// two tools differ only in the fixed issue type and the story's epic_link.
func handleIssueCreate(svc interfaces.JiraService, issueType string) ToolFunc {
	return func(ctx context.Context, args map[string]any) (any, error) {
		epicLink := ""
		if issueType == models.IssueTypeStory {
			epicLink = getString(args, "epic_link", "")
		}

		request, err := models.NewIssueCreateRequest(
			getString(args, "project_key", ""),
			getString(args, "summary", ""),
			getString(args, "description", ""),
			issueType,
			epicLink,
			getMap(args, "custom_fields"),
		)
		if err != nil {
			return nil, err
		}

		doc, err := svc.CreateIssue(ctx, request)
		if err != nil {
			return nil, err
		}
		return map[string]any{"content": doc.PageContent, "metadata": doc.Metadata}, nil
	}
}

// handleIssueUpdate implements the issue_update tool
func handleIssueUpdate(svc interfaces.JiraService) ToolFunc {
	return func(ctx context.Context, args map[string]any) (any, error) {
		request, err := models.NewIssueUpdateRequest(
			getString(args, "issue_key", ""),
			getMap(args, "fields"),
		)
		if err != nil {
			return nil, err
		}

		doc, err := svc.UpdateIssue(ctx, request)
		if err != nil {
			return nil, err
		}
		return map[string]any{"content": doc.PageContent, "metadata": doc.Metadata}, nil
	}
}

// handleIssueSearch implements the issue_search tool
func handleIssueSearch(svc interfaces.JiraService) ToolFunc {
	return func(ctx context.Context, args map[string]any) (any, error) {
		jql, err := requireString(args, "jql")
		if err != nil {
			return nil, err
		}

		documents, err := svc.SearchIssues(ctx, jql, getString(args, "fields", "*all"), 0, clampLimit(args))
		if err != nil {
			return nil, err
		}

		results := make([]map[string]any, 0, len(documents))
		for _, doc := range documents {
			results = append(results, map[string]any{
				"key":          doc.Metadata["key"],
				"title":        doc.Metadata["title"],
				"type":         doc.Metadata["type"],
				"status":       doc.Metadata["status"],
				"created_date": doc.Metadata["created_date"],
				"priority":     doc.Metadata["priority"],
				"link":         doc.Metadata["link"],
				"excerpt":      excerpt(doc.PageContent),
			})
		}
		return results, nil
	}
}

// handleIssueGetProjectIssues implements the issue_get_project_issues tool
func handleIssueGetProjectIssues(svc interfaces.JiraService) ToolFunc {
	return func(ctx context.Context, args map[string]any) (any, error) {
		projectKey, err := requireString(args, "project_key")
		if err != nil {
			return nil, err
		}

		documents, err := svc.GetProjectIssues(ctx, projectKey, 0, clampLimit(args))
		if err != nil {
			return nil, err
		}

		results := make([]map[string]any, 0, len(documents))
		for _, doc := range documents {
			results = append(results, map[string]any{
				"key":          doc.Metadata["key"],
				"title":        doc.Metadata["title"],
				"type":         doc.Metadata["type"],
				"status":       doc.Metadata["status"],
				"created_date": doc.Metadata["created_date"],
				"link":         doc.Metadata["link"],
			})
		}
		return results, nil
	}
}

// excerpt truncates issue content to 500 characters for search summaries
func excerpt(content string) string {
	runes := []rune(content)
	if len(runes) > 500 {
		return string(runes[:500]) + "..."
	}
	return content
}

func requireString(args map[string]any, key string) (string, error) {
	value, ok := args[key].(string)
	if !ok || value == "" {
		return "", models.NewValidationError("%s parameter is required", key)
	}
	return value, nil
}

func getString(args map[string]any, key, fallback string) string {
	if value, ok := args[key].(string); ok {
		return value
	}
	return fallback
}

func getBool(args map[string]any, key string, fallback bool) bool {
	if value, ok := args[key].(bool); ok {
		return value
	}
	return fallback
}

// getInt accepts the numeric shapes a JSON argument map can carry
func getInt(args map[string]any, key string, fallback int) int {
	switch value := args[key].(type) {
	case float64:
		return int(value)
	case int:
		return value
	default:
		return fallback
	}
}

func getMap(args map[string]any, key string) map[string]any {
	if value, ok := args[key].(map[string]any); ok {
		return value
	}
	return nil
}

// clampLimit bounds the limit argument to [1, 50] with a default of 10
func clampLimit(args map[string]any) int {
	limit := getInt(args, "limit", defaultLimit)
	if limit < 1 {
		limit = 1
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit
}
