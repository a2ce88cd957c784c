// -----------------------------------------------------------------------
// Jira service - renders issues as documents and applies the custom-field
// translation rules on create and update
// -----------------------------------------------------------------------

package jira

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/atlassian-mcp/internal/common"
	"github.com/ternarybob/atlassian-mcp/internal/interfaces"
	"github.com/ternarybob/atlassian-mcp/internal/models"
)

// Standard Jira field names are lowercase identifiers (summary, duedate,
// labels). Anything else that misses the catalog is dropped.
var standardFieldRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Service implements interfaces.JiraService
type Service struct {
	client       *Client
	catalog      *FieldCatalog
	preprocessor interfaces.TextPreprocessor
	logger       arbor.ILogger
}

// NewService creates a Jira service
func NewService(client *Client, catalog *FieldCatalog, preprocessor interfaces.TextPreprocessor, logger arbor.ILogger) *Service {
	return &Service{
		client:       client,
		catalog:      catalog,
		preprocessor: preprocessor,
		logger:       logger,
	}
}

// GetIssue fetches an issue and renders it as a document
func (s *Service) GetIssue(ctx context.Context, issueKey, expand string) (*models.Document, error) {
	issue, err := s.client.GetIssue(ctx, issueKey, expand)
	if err != nil {
		return nil, err
	}
	return s.issueDocument(issue), nil
}

// SearchIssues runs a JQL query. Each hit is re-fetched so the documents
// carry the full description, custom fields, and comment transcript.
func (s *Service) SearchIssues(ctx context.Context, jql, fields string, start, limit int) ([]*models.Document, error) {
	issues, err := s.client.SearchIssues(ctx, jql, fields, start, limit)
	if err != nil {
		return nil, err
	}

	documents := make([]*models.Document, 0, len(issues))
	for _, issue := range issues {
		document, err := s.GetIssue(ctx, issue.Key, "")
		if err != nil {
			return nil, err
		}
		documents = append(documents, document)
	}
	return documents, nil
}

// GetProjectIssues lists a project's issues, newest first
func (s *Service) GetProjectIssues(ctx context.Context, projectKey string, start, limit int) ([]*models.Document, error) {
	jql := fmt.Sprintf("project = %s ORDER BY created DESC", projectKey)
	return s.SearchIssues(ctx, jql, "", start, limit)
}

// CreateIssue creates an Epic or Story. Epics get their summary copied into
// the Epic Name field; a Story's epic link must reference an existing Epic.
// Custom fields with names the catalog cannot resolve are dropped.
func (s *Service) CreateIssue(ctx context.Context, request *models.IssueCreateRequest) (*models.Document, error) {
	if _, err := s.client.GetProject(ctx, request.ProjectKey); err != nil {
		return nil, err
	}

	fields := map[string]any{
		"project":     map[string]any{"key": request.ProjectKey},
		"summary":     request.Summary,
		"description": request.Description,
		"issuetype":   map[string]any{"name": request.IssueType},
	}

	switch request.IssueType {
	case models.IssueTypeEpic:
		if id, ok := s.catalog.Resolve("Epic Name"); ok {
			fields[id] = request.Summary
		}
	case models.IssueTypeStory:
		if request.EpicLink != "" {
			epic, err := s.client.GetIssue(ctx, request.EpicLink, "")
			if err != nil {
				if models.IsNotFound(err) {
					return nil, &models.InvalidEpicLinkError{Key: request.EpicLink}
				}
				return nil, err
			}
			if epic.Fields.IssueType == nil || epic.Fields.IssueType.Name != models.IssueTypeEpic {
				return nil, &models.InvalidEpicLinkError{Key: request.EpicLink}
			}
			if id, ok := s.catalog.Resolve("Epic Link"); ok {
				fields[id] = request.EpicLink
			}
		}
	}

	for name, value := range request.CustomFields {
		if id, ok := s.catalog.Resolve(name); ok {
			fields[id] = value
		}
	}

	key, err := s.client.CreateIssue(ctx, fields)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("issue", key).Str("type", request.IssueType).Msg("Created Jira issue")
	return s.GetIssue(ctx, key, "")
}

// UpdateIssue overwrites fields on an issue. Field names resolve through the
// custom-field catalog first; catalog misses that look like standard field
// names pass through lowercased, everything else is dropped with a warning.
func (s *Service) UpdateIssue(ctx context.Context, request *models.IssueUpdateRequest) (*models.Document, error) {
	if _, err := s.client.GetIssue(ctx, request.IssueKey, ""); err != nil {
		return nil, err
	}

	fields := make(map[string]any, len(request.Fields))
	for name, value := range request.Fields {
		if strings.HasPrefix(name, "customfield_") {
			fields[name] = value
			continue
		}
		if id, ok := s.catalog.lookup(name); ok {
			fields[id] = value
			continue
		}
		lowered := strings.ToLower(name)
		if standardFieldRe.MatchString(lowered) && !strings.Contains(name, " ") {
			fields[lowered] = value
			continue
		}
		s.logger.Warn().Str("field", name).Msg("Unknown field name on update, dropping")
	}

	if len(fields) == 0 {
		return nil, models.NewValidationError("no resolvable fields in update for %s", request.IssueKey)
	}

	if err := s.client.UpdateIssue(ctx, request.IssueKey, fields); err != nil {
		return nil, err
	}

	s.logger.Info().Str("issue", request.IssueKey).Int("fields", len(fields)).Msg("Updated Jira issue")
	return s.GetIssue(ctx, request.IssueKey, "")
}

// ListProjects enumerates projects for resource listing
func (s *Service) ListProjects(ctx context.Context) ([]models.ProjectInfo, error) {
	projects, err := s.client.ListProjects(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]models.ProjectInfo, 0, len(projects))
	for _, project := range projects {
		infos = append(infos, models.ProjectInfo{
			Key:         project.Key,
			Name:        project.Name,
			Description: project.Description,
		})
	}
	return infos, nil
}

// issueDocument renders an issue into the structured content block and its
// companion metadata.
func (s *Service) issueDocument(issue *Issue) *models.Document {
	fields := issue.Fields

	typeName, statusName := "", ""
	if fields.IssueType != nil {
		typeName = fields.IssueType.Name
	}
	if fields.Status != nil {
		statusName = fields.Status.Name
	}
	priority := "None"
	if fields.Priority != nil && fields.Priority.Name != "" {
		priority = fields.Priority.Name
	}

	created := common.FormatDisplayDate(fields.Created)
	description := s.preprocessor.CleanText(fields.Description)
	customFields := s.catalog.DisplayFields(fields.Custom)

	var content strings.Builder
	fmt.Fprintf(&content, "Issue: %s\n", issue.Key)
	fmt.Fprintf(&content, "Title: %s\n", fields.Summary)
	fmt.Fprintf(&content, "Type: %s\n", typeName)
	fmt.Fprintf(&content, "Status: %s\n", statusName)
	fmt.Fprintf(&content, "Created: %s\n\n", created)
	fmt.Fprintf(&content, "Description:\n%s\n\n", description)

	if len(customFields) > 0 {
		names := make([]string, 0, len(customFields))
		for name := range customFields {
			names = append(names, name)
		}
		sort.Strings(names)

		content.WriteString("Custom Fields:\n")
		for _, name := range names {
			if rendered := formatCustomValue(customFields[name]); rendered != "" {
				fmt.Fprintf(&content, "%s: %s\n", name, rendered)
			}
		}
		content.WriteString("\n")
	}

	content.WriteString("Comments:\n")
	if fields.Comment != nil {
		lines := make([]string, 0, len(fields.Comment.Comments))
		for _, comment := range fields.Comment.Comments {
			author := "Unknown"
			if comment.Author != nil && comment.Author.DisplayName != "" {
				author = comment.Author.DisplayName
			}
			lines = append(lines, fmt.Sprintf("%s - %s: %s",
				common.FormatDisplayDate(comment.Created), author, s.preprocessor.CleanText(comment.Body)))
		}
		content.WriteString(strings.Join(lines, "\n"))
	}

	return models.NewDocument(content.String(), map[string]any{
		"key":           issue.Key,
		"title":         fields.Summary,
		"type":          typeName,
		"status":        statusName,
		"created_date":  created,
		"priority":      priority,
		"link":          fmt.Sprintf("%s/browse/%s", s.client.BaseURL(), issue.Key),
		"custom_fields": customFields,
	})
}

// formatCustomValue renders a custom field value for the content block.
// Empty values render as "" and are omitted by the caller.
func formatCustomValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return ""
	case float64:
		if v == 0 {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if rendered := formatCustomValue(item); rendered != "" {
				parts = append(parts, rendered)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		for _, key := range []string{"value", "name", "displayName"} {
			if inner, ok := v[key].(string); ok && inner != "" {
				return inner
			}
		}
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
