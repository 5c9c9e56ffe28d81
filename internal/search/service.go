package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"libraryexplorer/internal/catalog"
	"libraryexplorer/internal/rating"
)

// ErrSearchFailed wraps any transport failure. Callers surface it as a single
// generic condition; partial failures are not distinguished.
var ErrSearchFailed = errors.New("search failed")

// DefaultPageSize matches the catalog's result page length.
const DefaultPageSize = 20

// Service drives paginated catalog search. Each call is independent; a new
// call does not cancel a prior in-flight one, and the consuming layer is
// responsible for discarding stale completions.
type Service struct {
	client   CatalogClient
	shelf    Shelf
	pageSize int
}

func NewService(client CatalogClient, shelf Shelf, pageSize int) *Service {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Service{client: client, shelf: shelf, pageSize: pageSize}
}

func (s *Service) PageSize() int { return s.pageSize }

// Search issues one paged query. An empty or whitespace query returns an
// empty page without touching the network. Book results are rating-enriched
// and locally published user books are prepended ahead of remote ordering,
// uncounted by pagination.
func (s *Service) Search(ctx context.Context, query string, kind catalog.Kind, page int) (catalog.Page, error) {
	if strings.TrimSpace(query) == "" {
		return catalog.Page{Items: []catalog.Item{}}, nil
	}
	if page < 1 {
		page = 1
	}

	switch kind {
	case catalog.KindAuthors:
		return s.searchAuthors(ctx, query, page)
	default:
		return s.searchBooks(ctx, query, page)
	}
}

func (s *Service) searchBooks(ctx context.Context, query string, page int) (catalog.Page, error) {
	res, err := s.client.SearchBooks(ctx, query, page, s.pageSize)
	if err != nil {
		return catalog.Page{}, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	items := make([]catalog.Item, 0, len(res.Docs))
	if s.shelf != nil {
		for _, b := range s.shelf.Published() {
			items = append(items, catalog.BookItem(b))
		}
	}
	for _, doc := range res.Docs {
		b := catalog.Book{
			Key:              doc.Key,
			Title:            doc.Title,
			AuthorNames:      doc.AuthorNames,
			FirstPublishYear: doc.FirstPublishYear,
			CoverID:          doc.CoverID,
		}
		rating.Apply(&b)
		items = append(items, catalog.BookItem(b))
	}

	return catalog.Page{
		Items:      items,
		TotalFound: res.NumFound,
		TotalPages: catalog.TotalPages(res.NumFound, s.pageSize),
	}, nil
}

func (s *Service) searchAuthors(ctx context.Context, query string, page int) (catalog.Page, error) {
	res, err := s.client.SearchAuthors(ctx, query, page, s.pageSize)
	if err != nil {
		return catalog.Page{}, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	items := make([]catalog.Item, 0, len(res.Docs))
	for _, doc := range res.Docs {
		items = append(items, catalog.AuthorItem(catalog.Author{
			Key:       doc.Key,
			Name:      doc.Name,
			TopWork:   doc.TopWork,
			WorkCount: doc.WorkCount,
		}))
	}

	return catalog.Page{
		Items:      items,
		TotalFound: res.NumFound,
		TotalPages: catalog.TotalPages(res.NumFound, s.pageSize),
	}, nil
}

// BrowseSubject lists rating-enriched books for a subject shelf. Works with
// no author credit fall back to "Unknown Author".
func (s *Service) BrowseSubject(ctx context.Context, subject string, limit int) ([]catalog.Book, error) {
	if limit <= 0 {
		limit = 10
	}
	res, err := s.client.GetSubjectWorks(ctx, subject, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	books := make([]catalog.Book, 0, len(res.Works))
	for _, w := range res.Works {
		names := make([]string, 0, len(w.Authors))
		for _, a := range w.Authors {
			names = append(names, a.Name)
		}
		if len(names) == 0 {
			names = []string{"Unknown Author"}
		}
		b := catalog.Book{
			Key:              w.Key,
			Title:            w.Title,
			AuthorNames:      names,
			FirstPublishYear: w.FirstPublishYear,
			CoverID:          w.CoverID,
		}
		rating.Apply(&b)
		books = append(books, b)
	}
	return books, nil
}
