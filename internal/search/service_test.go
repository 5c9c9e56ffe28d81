package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"libraryexplorer/internal/catalog"
	"libraryexplorer/internal/platform/openlibrary"
)

type mockCatalogClient struct {
	mock.Mock
}

func (m *mockCatalogClient) SearchBooks(ctx context.Context, query string, page, limit int) (*openlibrary.SearchResponse, error) {
	args := m.Called(ctx, query, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*openlibrary.SearchResponse), args.Error(1)
}

func (m *mockCatalogClient) SearchAuthors(ctx context.Context, query string, page, limit int) (*openlibrary.AuthorSearchResponse, error) {
	args := m.Called(ctx, query, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*openlibrary.AuthorSearchResponse), args.Error(1)
}

func (m *mockCatalogClient) GetSubjectWorks(ctx context.Context, subject string, limit int) (*openlibrary.SubjectResponse, error) {
	args := m.Called(ctx, subject, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*openlibrary.SubjectResponse), args.Error(1)
}

type stubShelf struct {
	published []catalog.Book
}

func (s *stubShelf) Published() []catalog.Book { return s.published }

func TestSearch_EmptyQueryShortCircuits(t *testing.T) {
	ctx := context.Background()
	mClient := new(mockCatalogClient)
	s := NewService(mClient, &stubShelf{}, 20)

	for _, q := range []string{"", "   ", "\t\n"} {
		page, err := s.Search(ctx, q, catalog.KindBooks, 1)
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.Zero(t, page.TotalFound)
		assert.Zero(t, page.TotalPages)
	}

	mClient.AssertNotCalled(t, "SearchBooks", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mClient.AssertNotCalled(t, "SearchAuthors", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSearch_Books(t *testing.T) {
	ctx := context.Background()
	mClient := new(mockCatalogClient)
	s := NewService(mClient, &stubShelf{}, 20)

	mClient.On("SearchBooks", ctx, "dune", 1, 20).Return(&openlibrary.SearchResponse{
		NumFound: 41,
		Docs: []openlibrary.BookDoc{
			{Key: "/works/OL1W", Title: "Dune", AuthorNames: []string{"Frank Herbert"}, FirstPublishYear: 1965, CoverID: 11481354},
			{Key: "/works/OL2W", Title: "Dune Messiah"},
		},
	}, nil)

	page, err := s.Search(ctx, "dune", catalog.KindBooks, 1)
	require.NoError(t, err)

	assert.Equal(t, 41, page.TotalFound)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Items, 2)

	first := page.Items[0]
	assert.Equal(t, catalog.KindBooks, first.Kind)
	require.NotNil(t, first.Book)
	assert.Equal(t, "Dune", first.Book.Title)
	assert.Equal(t, []string{"Frank Herbert"}, first.Book.AuthorNames)
	require.NotNil(t, first.Book.AverageRating, "book results must be rating-enriched")
	require.NotNil(t, first.Book.RatingsCount)
	assert.GreaterOrEqual(t, *first.Book.AverageRating, 1.5)
	assert.LessOrEqual(t, *first.Book.AverageRating, 4.9)

	mClient.AssertExpectations(t)
}

func TestSearch_PrependsPublishedUserBooks(t *testing.T) {
	ctx := context.Background()
	mClient := new(mockCatalogClient)
	sh := &stubShelf{published: []catalog.Book{
		{Key: "user-1", Title: "Mine", IsUserBook: true, Status: catalog.StatusPublished},
	}}
	s := NewService(mClient, sh, 20)

	mClient.On("SearchBooks", ctx, "dune", 1, 20).Return(&openlibrary.SearchResponse{
		NumFound: 1,
		Docs:     []openlibrary.BookDoc{{Key: "/works/OL1W", Title: "Dune"}},
	}, nil)

	page, err := s.Search(ctx, "dune", catalog.KindBooks, 1)
	require.NoError(t, err)

	require.Len(t, page.Items, 2)
	assert.Equal(t, "user-1", page.Items[0].Key(), "local books come ahead of remote ordering")
	assert.Equal(t, "/works/OL1W", page.Items[1].Key())
	assert.Equal(t, 1, page.TotalFound, "local books do not count toward pagination")
	assert.Equal(t, 1, page.TotalPages)
}

func TestSearch_Authors(t *testing.T) {
	ctx := context.Background()
	mClient := new(mockCatalogClient)
	s := NewService(mClient, &stubShelf{published: []catalog.Book{{Key: "user-1", Status: catalog.StatusPublished}}}, 20)

	mClient.On("SearchAuthors", ctx, "herbert", 2, 20).Return(&openlibrary.AuthorSearchResponse{
		NumFound: 1,
		Docs:     []openlibrary.AuthorDoc{{Key: "OL79034A", Name: "Frank Herbert", TopWork: "Dune", WorkCount: 279}},
	}, nil)

	page, err := s.Search(ctx, "herbert", catalog.KindAuthors, 2)
	require.NoError(t, err)

	require.Len(t, page.Items, 1, "user books are merged into book searches only")
	item := page.Items[0]
	assert.Equal(t, catalog.KindAuthors, item.Kind)
	require.NotNil(t, item.Author)
	assert.Equal(t, "Frank Herbert", item.Author.Name)
	assert.Equal(t, "Dune", item.Author.TopWork)
	assert.Equal(t, 279, item.Author.WorkCount)
}

func TestSearch_TransportErrorIsGeneric(t *testing.T) {
	ctx := context.Background()
	mClient := new(mockCatalogClient)
	s := NewService(mClient, &stubShelf{}, 20)

	mClient.On("SearchBooks", ctx, "dune", 1, 20).
		Return(nil, &openlibrary.APIError{StatusCode: 503, Body: "unavailable"})

	_, err := s.Search(ctx, "dune", catalog.KindBooks, 1)
	assert.ErrorIs(t, err, ErrSearchFailed)

	mClient.On("SearchAuthors", ctx, "x", 1, 20).Return(nil, errors.New("connection refused"))
	_, err = s.Search(ctx, "x", catalog.KindAuthors, 1)
	assert.ErrorIs(t, err, ErrSearchFailed)
}

func TestBrowseSubject(t *testing.T) {
	ctx := context.Background()
	mClient := new(mockCatalogClient)
	s := NewService(mClient, &stubShelf{}, 20)

	res := &openlibrary.SubjectResponse{Works: []openlibrary.SubjectWork{
		{Key: "/works/OL1W", Title: "Dune", FirstPublishYear: 1965, CoverID: 42},
		{Key: "/works/OL2W", Title: "Anonymous Work"},
	}}
	res.Works[0].Authors = []struct {
		Name string `json:"name"`
	}{{Name: "Frank Herbert"}}
	mClient.On("GetSubjectWorks", ctx, "science_fiction", 10).Return(res, nil)

	books, err := s.BrowseSubject(ctx, "science_fiction", 10)
	require.NoError(t, err)
	require.Len(t, books, 2)

	assert.Equal(t, []string{"Frank Herbert"}, books[0].AuthorNames)
	assert.Equal(t, 42, books[0].CoverID)
	assert.Equal(t, []string{"Unknown Author"}, books[1].AuthorNames, "missing authors fall back")
	assert.NotNil(t, books[0].AverageRating)
	assert.NotNil(t, books[1].AverageRating)
}
