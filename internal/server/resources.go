// -----------------------------------------------------------------------
// Resource router - serves confluence:// and jira:// URIs
// -----------------------------------------------------------------------

package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/atlassian-mcp/internal/interfaces"
	"github.com/ternarybob/atlassian-mcp/internal/models"
)

// resourcePageLimit bounds how many pages or issues a container listing pulls
const resourcePageLimit = 50

// ResourceRouter reads confluence:// and jira:// resource URIs. Four shapes
// are served:
//
//	confluence://{space_key}                  all pages in a space
//	confluence://{space_key}/pages/{title}    one page by title
//	jira://{project_key}                      all issues in a project
//	jira://{project_key}/issues/{issue_key}   one issue by key
type ResourceRouter struct {
	confluence interfaces.ConfluenceService
	jira       interfaces.JiraService
	logger     arbor.ILogger
}

// NewResourceRouter creates a resource router over both services
func NewResourceRouter(confluenceSvc interfaces.ConfluenceService, jiraSvc interfaces.JiraService, logger arbor.ILogger) *ResourceRouter {
	return &ResourceRouter{
		confluence: confluenceSvc,
		jira:       jiraSvc,
		logger:     logger,
	}
}

// Read resolves a resource URI to its text content. URIs outside the four
// served shapes fail with InvalidResourceError.
func (rr *ResourceRouter) Read(ctx context.Context, uri string) (string, error) {
	switch {
	case strings.HasPrefix(uri, "confluence://"):
		parts := strings.Split(strings.TrimPrefix(uri, "confluence://"), "/")

		if len(parts) == 1 && parts[0] != "" {
			return rr.readSpace(ctx, parts[0])
		}
		if len(parts) >= 3 && parts[1] == "pages" && parts[0] != "" && parts[2] != "" {
			doc, err := rr.confluence.GetPageByTitle(ctx, parts[0], parts[2], true)
			if err != nil {
				return "", err
			}
			return doc.PageContent, nil
		}

	case strings.HasPrefix(uri, "jira://"):
		parts := strings.Split(strings.TrimPrefix(uri, "jira://"), "/")

		if len(parts) == 1 && parts[0] != "" {
			return rr.readProject(ctx, parts[0])
		}
		if len(parts) >= 3 && parts[1] == "issues" && parts[2] != "" {
			doc, err := rr.jira.GetIssue(ctx, parts[2], "")
			if err != nil {
				return "", err
			}
			return doc.PageContent, nil
		}
	}

	return "", &models.InvalidResourceError{URI: uri}
}

func (rr *ResourceRouter) readSpace(ctx context.Context, spaceKey string) (string, error) {
	documents, err := rr.confluence.GetSpacePages(ctx, spaceKey, 0, resourcePageLimit, true)
	if err != nil {
		return "", err
	}

	sections := make([]string, 0, len(documents))
	for _, doc := range documents {
		sections = append(sections, fmt.Sprintf("# %v\n\n%s\n---", doc.Metadata["title"], doc.PageContent))
	}
	return strings.Join(sections, "\n\n"), nil
}

func (rr *ResourceRouter) readProject(ctx context.Context, projectKey string) (string, error) {
	documents, err := rr.jira.GetProjectIssues(ctx, projectKey, 0, resourcePageLimit)
	if err != nil {
		return "", err
	}

	sections := make([]string, 0, len(documents))
	for _, doc := range documents {
		sections = append(sections, fmt.Sprintf("# %v: %v\n\n%s\n---", doc.Metadata["key"], doc.Metadata["title"], doc.PageContent))
	}
	return strings.Join(sections, "\n\n"), nil
}

func (rr *ResourceRouter) handleRead(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	text, err := rr.Read(ctx, request.Params.URI)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "text/plain",
			Text:     text,
		},
	}, nil
}

// Attach registers the resource URI templates with the MCP server
func (rr *ResourceRouter) Attach(s *mcpserver.MCPServer) {
	s.AddResourceTemplate(mcp.NewResourceTemplate(
		"confluence://{space_key}",
		"Confluence Space",
		mcp.WithTemplateDescription("All pages in a Confluence space"),
		mcp.WithTemplateMIMEType("text/plain"),
	), rr.handleRead)

	s.AddResourceTemplate(mcp.NewResourceTemplate(
		"confluence://{space_key}/pages/{title}",
		"Confluence Page",
		mcp.WithTemplateDescription("A Confluence page by space key and title"),
		mcp.WithTemplateMIMEType("text/plain"),
	), rr.handleRead)

	s.AddResourceTemplate(mcp.NewResourceTemplate(
		"jira://{project_key}",
		"Jira Project",
		mcp.WithTemplateDescription("All issues in a Jira project, newest first"),
		mcp.WithTemplateMIMEType("text/plain"),
	), rr.handleRead)

	s.AddResourceTemplate(mcp.NewResourceTemplate(
		"jira://{project_key}/issues/{issue_key}",
		"Jira Issue",
		mcp.WithTemplateDescription("A Jira issue by key"),
		mcp.WithTemplateMIMEType("text/plain"),
	), rr.handleRead)
}

// RegisterKnownContainers lists the reachable spaces and projects and
// registers each as a concrete resource. Listing failures are logged and
// skipped so startup never blocks on a flaky remote.
func (rr *ResourceRouter) RegisterKnownContainers(ctx context.Context, s *mcpserver.MCPServer) {
	spaces, err := rr.confluence.ListSpaces(ctx, 0, resourcePageLimit)
	if err != nil {
		rr.logger.Warn().Err(err).Msg("Could not list Confluence spaces for resource registration")
	} else {
		for _, space := range spaces {
			s.AddResource(mcp.NewResource(
				"confluence://"+space.Key,
				"Confluence Space: "+space.Name,
				mcp.WithResourceDescription(space.Description),
				mcp.WithMIMEType("text/plain"),
			), rr.handleRead)
		}
	}

	projects, err := rr.jira.ListProjects(ctx)
	if err != nil {
		rr.logger.Warn().Err(err).Msg("Could not list Jira projects for resource registration")
		return
	}
	for _, project := range projects {
		s.AddResource(mcp.NewResource(
			"jira://"+project.Key,
			"Jira Project: "+project.Name,
			mcp.WithResourceDescription(project.Description),
			mcp.WithMIMEType("text/plain"),
		), rr.handleRead)
	}
}
