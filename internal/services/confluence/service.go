// -----------------------------------------------------------------------
// Confluence service - normalizes page, comment, and search responses into
// documents and guards page updates with an optimistic version check
// -----------------------------------------------------------------------

package confluence

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/atlassian-mcp/internal/common"
	"github.com/ternarybob/atlassian-mcp/internal/interfaces"
	"github.com/ternarybob/atlassian-mcp/internal/models"
)

// Service implements interfaces.ConfluenceService
type Service struct {
	client       *Client
	preprocessor interfaces.TextPreprocessor
	logger       arbor.ILogger
}

// NewService creates a Confluence service
func NewService(client *Client, preprocessor interfaces.TextPreprocessor, logger arbor.ILogger) *Service {
	return &Service{
		client:       client,
		preprocessor: preprocessor,
		logger:       logger,
	}
}

// GetPage fetches a page by id and returns it as a document
func (s *Service) GetPage(ctx context.Context, pageID string, cleanHTML bool) (*models.Document, error) {
	page, err := s.client.GetPage(ctx, pageID, "body.storage,version,space")
	if err != nil {
		return nil, err
	}
	return s.pageDocument(page, cleanHTML), nil
}

// GetPageByTitle fetches a page by space key and title
func (s *Service) GetPageByTitle(ctx context.Context, spaceKey, title string, cleanHTML bool) (*models.Document, error) {
	page, err := s.client.FindPageByTitle(ctx, spaceKey, title)
	if err != nil {
		return nil, err
	}
	return s.pageDocument(page, cleanHTML), nil
}

// GetSpacePages returns one document per page in a space
func (s *Service) GetSpacePages(ctx context.Context, spaceKey string, start, limit int, cleanHTML bool) ([]*models.Document, error) {
	pages, err := s.client.ListSpacePages(ctx, spaceKey, start, limit)
	if err != nil {
		return nil, err
	}

	documents := make([]*models.Document, 0, len(pages))
	for i := range pages {
		documents = append(documents, s.pageDocument(&pages[i], cleanHTML))
	}
	return documents, nil
}

// GetComments returns one document per comment on a page. The author recorded
// in metadata is the latest revision's editor, not the original commenter.
func (s *Service) GetComments(ctx context.Context, pageID string, cleanHTML bool) ([]*models.Document, error) {
	page, err := s.client.GetPage(ctx, pageID, "space")
	if err != nil {
		return nil, err
	}

	spaceKey, spaceName := "", ""
	if page.Space != nil {
		spaceKey, spaceName = page.Space.Key, page.Space.Name
	}

	comments, err := s.client.ListComments(ctx, pageID)
	if err != nil {
		return nil, err
	}

	documents := make([]*models.Document, 0, len(comments))
	for _, comment := range comments {
		var bodyHTML string
		if comment.Body != nil && comment.Body.View != nil {
			bodyHTML = comment.Body.View.Value
		}
		processedHTML, processedMarkdown := s.preprocessor.ProcessHTML(bodyHTML, spaceKey)

		authorName, lastModified := "", ""
		if comment.Version != nil {
			lastModified = common.FormatDisplayDate(comment.Version.When)
			if comment.Version.By != nil {
				authorName = comment.Version.By.DisplayName
			}
		}

		content := processedMarkdown
		if !cleanHTML {
			content = processedHTML
		}

		documents = append(documents, models.NewDocument(content, map[string]any{
			"page_id":       pageID,
			"comment_id":    comment.ID,
			"last_modified": lastModified,
			"type":          "comment",
			"author_name":   authorName,
			"space_key":     spaceKey,
			"space_name":    spaceName,
		}))
	}

	return documents, nil
}

// Search runs a CQL query. Hits are summaries: the remote excerpt is used
// verbatim as content with no HTML conversion.
func (s *Service) Search(ctx context.Context, cql string, limit int) ([]*models.Document, error) {
	results, err := s.client.SearchCQL(ctx, cql, limit)
	if err != nil {
		return nil, err
	}

	documents := make([]*models.Document, 0, len(results))
	for _, result := range results {
		if result.Content == nil || result.Content.Type != "page" {
			continue
		}

		spaceName := ""
		if result.Container != nil {
			spaceName = result.Container.Title
		}

		documents = append(documents, models.NewDocument(result.Excerpt, map[string]any{
			"page_id":       result.Content.ID,
			"title":         result.Title,
			"space":         spaceName,
			"url":           s.client.BaseURL() + result.URL,
			"last_modified": common.FormatDisplayDate(result.LastModified),
			"type":          result.Content.Type,
		}))
	}

	return documents, nil
}

// CreatePage creates a page after verifying the target space exists, then
// returns the created page as a full document.
func (s *Service) CreatePage(ctx context.Context, request *models.PageCreateRequest) (*models.Document, error) {
	if _, err := s.client.GetSpace(ctx, request.SpaceKey); err != nil {
		return nil, err
	}

	page, err := s.client.CreatePage(ctx, request.SpaceKey, request.Title, request.Content, request.ParentID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("page_id", page.ID).Str("space", request.SpaceKey).Msg("Created Confluence page")
	return s.GetPage(ctx, page.ID, true)
}

// UpdatePage applies an optimistic-concurrency-guarded update: the remote
// version must equal the caller-supplied version exactly, otherwise the
// update fails with a version conflict and no write is issued.
func (s *Service) UpdatePage(ctx context.Context, request *models.PageUpdateRequest) (*models.Document, error) {
	current, err := s.client.GetPage(ctx, request.PageID, "version")
	if err != nil {
		return nil, err
	}
	if current.Version == nil {
		return nil, &models.RemoteError{Service: "confluence", Operation: "get page version",
			Err: fmt.Errorf("page %s has no version information", request.PageID)}
	}

	if current.Version.Number != request.Version {
		return nil, &models.VersionConflictError{
			PageID:    request.PageID,
			Current:   current.Version.Number,
			Requested: request.Version,
		}
	}

	page, err := s.client.UpdatePage(ctx, request.PageID, request.Title, request.Content, current.Version.Number+1)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("page_id", page.ID).Int("version", current.Version.Number+1).Msg("Updated Confluence page")
	return s.GetPage(ctx, page.ID, true)
}

// ListSpaces enumerates spaces for resource listing
func (s *Service) ListSpaces(ctx context.Context, start, limit int) ([]models.SpaceInfo, error) {
	spaces, err := s.client.ListSpaces(ctx, start, limit)
	if err != nil {
		return nil, err
	}

	infos := make([]models.SpaceInfo, 0, len(spaces))
	for _, space := range spaces {
		info := models.SpaceInfo{Key: space.Key, Name: space.Name}
		if space.Description != nil {
			info.Description = space.Description.Plain.Value
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (s *Service) pageDocument(page *Page, cleanHTML bool) *models.Document {
	spaceKey, spaceName := "", ""
	if page.Space != nil {
		spaceKey, spaceName = page.Space.Key, page.Space.Name
	}

	var storageHTML string
	if page.Body != nil && page.Body.Storage != nil {
		storageHTML = page.Body.Storage.Value
	}
	processedHTML, processedMarkdown := s.preprocessor.ProcessHTML(storageHTML, spaceKey)

	var version int
	authorName, lastModified := "", ""
	if page.Version != nil {
		version = page.Version.Number
		lastModified = common.FormatDisplayDate(page.Version.When)
		if page.Version.By != nil {
			authorName = page.Version.By.DisplayName
		}
	}

	content := processedMarkdown
	if !cleanHTML {
		content = processedHTML
	}

	return models.NewDocument(content, map[string]any{
		"page_id":       page.ID,
		"title":         page.Title,
		"version":       version,
		"url":           fmt.Sprintf("%s/wiki/spaces/%s/pages/%s", s.client.BaseURL(), spaceKey, page.ID),
		"space_key":     spaceKey,
		"space_name":    spaceName,
		"author_name":   authorName,
		"last_modified": lastModified,
	})
}
