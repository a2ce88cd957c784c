package interfaces

import (
	"context"

	"github.com/ternarybob/atlassian-mcp/internal/models"
)

// JiraService exposes Jira operations as normalized documents
type JiraService interface {
	// GetIssue fetches a single issue with description, custom fields, and
	// comment transcript rendered into the document content
	GetIssue(ctx context.Context, issueKey, expand string) (*models.Document, error)

	// SearchIssues runs a JQL query and returns full issue documents
	SearchIssues(ctx context.Context, jql, fields string, start, limit int) ([]*models.Document, error)

	// GetProjectIssues lists a project's issues ordered by creation descending
	GetProjectIssues(ctx context.Context, projectKey string, start, limit int) ([]*models.Document, error)

	// CreateIssue creates an Epic or Story and returns it as a document
	CreateIssue(ctx context.Context, request *models.IssueCreateRequest) (*models.Document, error)

	// UpdateIssue overwrites the named fields on an issue unconditionally
	UpdateIssue(ctx context.Context, request *models.IssueUpdateRequest) (*models.Document, error)

	// ListProjects enumerates available projects for resource listing
	ListProjects(ctx context.Context) ([]models.ProjectInfo, error)
}
