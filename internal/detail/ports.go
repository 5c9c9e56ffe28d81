package detail

import (
	"context"

	"libraryexplorer/internal/platform/openlibrary"
)

// Client is the transport used for enrichment fetches.
type Client interface {
	GetWork(ctx context.Context, key string) (*openlibrary.WorkDetails, error)
	GetAuthor(ctx context.Context, key string) (*openlibrary.AuthorDetails, error)
}
