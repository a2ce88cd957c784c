package interfaces

import (
	"context"

	"github.com/ternarybob/atlassian-mcp/internal/models"
)

// ConfluenceService exposes Confluence operations as normalized documents
type ConfluenceService interface {
	// Search runs a CQL query and returns one summary document per page hit.
	// The remote excerpt is used verbatim as document content.
	Search(ctx context.Context, cql string, limit int) ([]*models.Document, error)

	// GetPage fetches a page by id. cleanHTML selects markdown output;
	// otherwise the cleaned HTML body is returned.
	GetPage(ctx context.Context, pageID string, cleanHTML bool) (*models.Document, error)

	// GetPageByTitle fetches a page by space key and title
	GetPageByTitle(ctx context.Context, spaceKey, title string, cleanHTML bool) (*models.Document, error)

	// GetSpacePages returns one document per page in a space
	GetSpacePages(ctx context.Context, spaceKey string, start, limit int, cleanHTML bool) ([]*models.Document, error)

	// GetComments returns one document per comment on a page
	GetComments(ctx context.Context, pageID string, cleanHTML bool) ([]*models.Document, error)

	// CreatePage creates a page and returns the created page as a document
	CreatePage(ctx context.Context, request *models.PageCreateRequest) (*models.Document, error)

	// UpdatePage applies an optimistic-concurrency-guarded update and returns
	// the updated page as a document
	UpdatePage(ctx context.Context, request *models.PageUpdateRequest) (*models.Document, error)

	// ListSpaces enumerates available spaces for resource listing
	ListSpaces(ctx context.Context, start, limit int) ([]models.SpaceInfo, error)
}
