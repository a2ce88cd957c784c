package models

import (
	"github.com/go-playground/validator/v10"
)

const (
	IssueTypeEpic  = "Epic"
	IssueTypeStory = "Story"
)

var validate = validator.New()

// PageCreateRequest holds parameters for creating a Confluence page
type PageCreateRequest struct {
	SpaceKey string `json:"space_key" validate:"required"`
	Title    string `json:"title" validate:"required"`
	Content  string `json:"content" validate:"required"`
	ParentID string `json:"parent_id,omitempty"`
}

// NewPageCreateRequest validates and constructs a page-create request
func NewPageCreateRequest(spaceKey, title, content, parentID string) (*PageCreateRequest, error) {
	request := &PageCreateRequest{
		SpaceKey: spaceKey,
		Title:    title,
		Content:  content,
		ParentID: parentID,
	}
	if err := validate.Struct(request); err != nil {
		return nil, NewValidationError("invalid page create request: %v", err)
	}
	return request, nil
}

// PageUpdateRequest holds parameters for updating a Confluence page. Version
// must match the remote page version at update time (optimistic concurrency).
type PageUpdateRequest struct {
	PageID  string `json:"page_id" validate:"required"`
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
	Version int    `json:"version" validate:"gte=1"`
}

// NewPageUpdateRequest validates and constructs a page-update request
func NewPageUpdateRequest(pageID, title, content string, version int) (*PageUpdateRequest, error) {
	request := &PageUpdateRequest{
		PageID:  pageID,
		Title:   title,
		Content: content,
		Version: version,
	}
	if err := validate.Struct(request); err != nil {
		return nil, NewValidationError("invalid page update request: %v", err)
	}
	return request, nil
}

// IssueCreateRequest holds parameters for creating a Jira issue (Epic or Story)
type IssueCreateRequest struct {
	ProjectKey   string         `json:"project_key" validate:"required"`
	Summary      string         `json:"summary" validate:"required"`
	Description  string         `json:"description"`
	IssueType    string         `json:"issue_type" validate:"required,oneof=Epic Story"`
	EpicLink     string         `json:"epic_link,omitempty"` // Stories only
	CustomFields map[string]any `json:"custom_fields"`
}

// NewIssueCreateRequest validates and constructs an issue-create request.
// Construction fails for issue types outside {Epic, Story} and for an Epic
// carrying an epic link; an absent custom-fields map normalizes to empty.
// No partial request value is produced on failure.
func NewIssueCreateRequest(projectKey, summary, description, issueType, epicLink string, customFields map[string]any) (*IssueCreateRequest, error) {
	request := &IssueCreateRequest{
		ProjectKey:   projectKey,
		Summary:      summary,
		Description:  description,
		IssueType:    issueType,
		EpicLink:     epicLink,
		CustomFields: customFields,
	}

	if err := validate.Struct(request); err != nil {
		return nil, NewValidationError("issue_type must be either 'Epic' or 'Story': %v", err)
	}
	if request.IssueType == IssueTypeEpic && request.EpicLink != "" {
		return nil, NewValidationError("Epic issues cannot have an epic_link")
	}
	if request.CustomFields == nil {
		request.CustomFields = map[string]any{}
	}

	return request, nil
}

// IssueUpdateRequest holds parameters for updating fields on a Jira issue.
// Updates are unconditional overwrites; there is no version guard for issues.
type IssueUpdateRequest struct {
	IssueKey string         `json:"issue_key" validate:"required"`
	Fields   map[string]any `json:"fields" validate:"required,min=1"`
}

// NewIssueUpdateRequest validates and constructs an issue-update request
func NewIssueUpdateRequest(issueKey string, fields map[string]any) (*IssueUpdateRequest, error) {
	request := &IssueUpdateRequest{
		IssueKey: issueKey,
		Fields:   fields,
	}
	if err := validate.Struct(request); err != nil {
		return nil, NewValidationError("invalid issue update request: %v", err)
	}
	return request, nil
}
