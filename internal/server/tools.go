package server

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createContentSearchTool returns the content_search tool definition
func createContentSearchTool() mcp.Tool {
	return mcp.NewTool("content_search",
		mcp.WithDescription("Search Confluence content using CQL"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("CQL query string (e.g. 'type=page AND space=DEV')"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results (default: 10, max: 50)"),
		),
	)
}

// createContentGetPageTool returns the content_get_page tool definition
func createContentGetPageTool() mcp.Tool {
	return mcp.NewTool("content_get_page",
		mcp.WithDescription("Get content of a specific Confluence page by ID"),
		mcp.WithString("page_id",
			mcp.Required(),
			mcp.Description("Confluence page ID"),
		),
		mcp.WithBoolean("include_metadata",
			mcp.Description("Whether to include page metadata (default: true)"),
		),
	)
}

// createContentCreatePageTool returns the content_create_page tool definition
func createContentCreatePageTool() mcp.Tool {
	return mcp.NewTool("content_create_page",
		mcp.WithDescription("Create a new Confluence page"),
		mcp.WithString("space_key",
			mcp.Required(),
			mcp.Description("Space key where the page will be created"),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Page title"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Page content in wiki markup format"),
		),
		mcp.WithString("parent_id",
			mcp.Description("Optional parent page ID"),
		),
	)
}

// createContentUpdatePageTool returns the content_update_page tool definition
func createContentUpdatePageTool() mcp.Tool {
	return mcp.NewTool("content_update_page",
		mcp.WithDescription("Update an existing Confluence page"),
		mcp.WithString("page_id",
			mcp.Required(),
			mcp.Description("ID of the page to update"),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("New page title"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("New page content in wiki markup format"),
		),
		mcp.WithNumber("version",
			mcp.Required(),
			mcp.Description("Current page version number; the update is rejected if it no longer matches"),
		),
	)
}

// createContentGetCommentsTool returns the content_get_comments tool definition
func createContentGetCommentsTool() mcp.Tool {
	return mcp.NewTool("content_get_comments",
		mcp.WithDescription("Get comments for a specific Confluence page"),
		mcp.WithString("page_id",
			mcp.Required(),
			mcp.Description("Confluence page ID"),
		),
	)
}

// createIssueGetTool returns the issue_get tool definition
func createIssueGetTool() mcp.Tool {
	return mcp.NewTool("issue_get",
		mcp.WithDescription("Get details of a specific Jira issue"),
		mcp.WithString("issue_key",
			mcp.Required(),
			mcp.Description("Jira issue key (e.g., 'PROJ-123')"),
		),
		mcp.WithString("expand",
			mcp.Description("Optional fields to expand"),
		),
	)
}

// createIssueCreateEpicTool returns the issue_create_epic tool definition
func createIssueCreateEpicTool() mcp.Tool {
	return mcp.NewTool("issue_create_epic",
		mcp.WithDescription("Create a new Jira epic"),
		mcp.WithString("project_key",
			mcp.Required(),
			mcp.Description("Project key where the epic will be created"),
		),
		mcp.WithString("summary",
			mcp.Required(),
			mcp.Description("Epic summary/title"),
		),
		mcp.WithString("description",
			mcp.Description("Epic description"),
		),
		mcp.WithObject("custom_fields",
			mcp.Description("Custom fields by display name (e.g., Acceptance Criteria)"),
		),
	)
}

// createIssueCreateStoryTool returns the issue_create_story tool definition
func createIssueCreateStoryTool() mcp.Tool {
	return mcp.NewTool("issue_create_story",
		mcp.WithDescription("Create a new Jira story"),
		mcp.WithString("project_key",
			mcp.Required(),
			mcp.Description("Project key where the story will be created"),
		),
		mcp.WithString("summary",
			mcp.Required(),
			mcp.Description("Story summary/title"),
		),
		mcp.WithString("description",
			mcp.Description("Story description"),
		),
		mcp.WithString("epic_link",
			mcp.Description("Optional epic key to link the story to"),
		),
		mcp.WithObject("custom_fields",
			mcp.Description("Custom fields by display name (e.g., {'Acceptance Criteria': 'Criteria here'})"),
		),
	)
}

// createIssueUpdateTool returns the issue_update tool definition
func createIssueUpdateTool() mcp.Tool {
	return mcp.NewTool("issue_update",
		mcp.WithDescription("Update an existing Jira issue"),
		mcp.WithString("issue_key",
			mcp.Required(),
			mcp.Description("Key of the issue to update"),
		),
		mcp.WithObject("fields",
			mcp.Required(),
			mcp.Description("Fields to update, including custom fields (e.g., {'summary': 'New title', 'Acceptance Criteria': 'New criteria'})"),
		),
	)
}

// createIssueSearchTool returns the issue_search tool definition
func createIssueSearchTool() mcp.Tool {
	return mcp.NewTool("issue_search",
		mcp.WithDescription("Search Jira issues using JQL"),
		mcp.WithString("jql",
			mcp.Required(),
			mcp.Description("JQL query string"),
		),
		mcp.WithString("fields",
			mcp.Description("Comma-separated fields to return (default: *all)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results (default: 10, max: 50)"),
		),
	)
}

// createIssueGetProjectIssuesTool returns the issue_get_project_issues tool definition
func createIssueGetProjectIssuesTool() mcp.Tool {
	return mcp.NewTool("issue_get_project_issues",
		mcp.WithDescription("Get all issues for a specific Jira project, newest first"),
		mcp.WithString("project_key",
			mcp.Required(),
			mcp.Description("The project key"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results (default: 10, max: 50)"),
		),
	)
}
