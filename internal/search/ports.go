package search

import (
	"context"

	"libraryexplorer/internal/catalog"
	"libraryexplorer/internal/platform/openlibrary"
)

// CatalogClient is the transport the orchestrator searches through.
type CatalogClient interface {
	SearchBooks(ctx context.Context, query string, page, limit int) (*openlibrary.SearchResponse, error)
	SearchAuthors(ctx context.Context, query string, page, limit int) (*openlibrary.AuthorSearchResponse, error)
	GetSubjectWorks(ctx context.Context, subject string, limit int) (*openlibrary.SubjectResponse, error)
}

// Shelf exposes locally published user books for merging into book searches.
type Shelf interface {
	Published() []catalog.Book
}
