package detail

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libraryexplorer/internal/catalog"
	"libraryexplorer/internal/platform/openlibrary"
)

type stubClient struct {
	getWork   func(ctx context.Context, key string) (*openlibrary.WorkDetails, error)
	getAuthor func(ctx context.Context, key string) (*openlibrary.AuthorDetails, error)
}

func (s *stubClient) GetWork(ctx context.Context, key string) (*openlibrary.WorkDetails, error) {
	return s.getWork(ctx, key)
}

func (s *stubClient) GetAuthor(ctx context.Context, key string) (*openlibrary.AuthorDetails, error) {
	return s.getAuthor(ctx, key)
}

func awaitUpdate(t *testing.T, ch <-chan Update) Update {
	t.Helper()
	select {
	case u, ok := <-ch:
		require.True(t, ok, "channel closed without an update")
		return u
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for enrichment")
		return Update{}
	}
}

func awaitClosed(t *testing.T, ch <-chan Update) {
	t.Helper()
	select {
	case u, ok := <-ch:
		require.False(t, ok, "expected closed channel, got update %+v", u)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}

func TestResolve_UserBookShortCircuits(t *testing.T) {
	called := false
	client := &stubClient{
		getWork: func(context.Context, string) (*openlibrary.WorkDetails, error) {
			called = true
			return nil, nil
		},
	}
	r := NewResolver(client)

	book := catalog.Book{Key: "user-1", Title: "Mine", IsUserBook: true, Description: "local"}
	res := r.Resolve(context.Background(), catalog.BookItem(book))

	assert.Equal(t, PhaseFull, res.Phase)
	require.NotNil(t, res.Record.Book)
	assert.Equal(t, "Mine", res.Record.Book.Title)
	awaitClosed(t, res.Updates)
	assert.False(t, called, "locally submitted books need no remote fetch")
}

func TestResolve_BookEnrichment(t *testing.T) {
	client := &stubClient{
		getWork: func(_ context.Context, key string) (*openlibrary.WorkDetails, error) {
			assert.Equal(t, "/works/OL1W", key)
			return &openlibrary.WorkDetails{
				Description:      "Arrakis.",
				Subjects:         []string{"Science fiction"},
				Covers:           []int{42, 43},
				FirstPublishDate: "1965",
			}, nil
		},
	}
	r := NewResolver(client)

	book := catalog.Book{Key: "/works/OL1W", Title: "Dune", AuthorNames: []string{"Frank Herbert"}}
	res := r.Resolve(context.Background(), catalog.BookItem(book))

	assert.Equal(t, PhasePartial, res.Phase)
	assert.Equal(t, "Dune", res.Record.Book.Title)
	assert.Empty(t, res.Record.Book.Description, "partial record carries summary fields only")

	u := awaitUpdate(t, res.Updates)
	assert.Equal(t, res.Seq, u.Seq)
	assert.Equal(t, PhaseFull, u.Phase)
	require.NotNil(t, u.Record.Book)
	assert.Equal(t, "Dune", u.Record.Book.Title, "empty fetched title does not clobber the summary")
	assert.Equal(t, "Arrakis.", u.Record.Book.Description)
	assert.Equal(t, []string{"Science fiction"}, u.Record.Book.Subjects)
	assert.Equal(t, 42, u.Record.Book.CoverID, "first cover backfills a missing cover id")
	assert.NotNil(t, u.Record.Book.AverageRating, "full records are rating-enriched")
	awaitClosed(t, res.Updates)
}

func TestResolve_AuthorEnrichment(t *testing.T) {
	client := &stubClient{
		getAuthor: func(_ context.Context, key string) (*openlibrary.AuthorDetails, error) {
			return &openlibrary.AuthorDetails{
				Bio:       map[string]interface{}{"type": "/type/text", "value": "SF author."},
				BirthDate: "8 October 1920",
				DeathDate: "11 February 1986",
				Photos:    []int{6257571},
			}, nil
		},
	}
	r := NewResolver(client)

	author := catalog.Author{Key: "OL79034A", Name: "Frank Herbert", TopWork: "Dune", WorkCount: 279}
	res := r.Resolve(context.Background(), catalog.AuthorItem(author))

	u := awaitUpdate(t, res.Updates)
	assert.Equal(t, PhaseFull, u.Phase)
	require.NotNil(t, u.Record.Author)
	assert.Equal(t, "Frank Herbert", u.Record.Author.Name)
	assert.Equal(t, "SF author.", u.Record.Author.Bio)
	assert.Equal(t, "8 October 1920", u.Record.Author.BirthDate)
	assert.Equal(t, []int{6257571}, u.Record.Author.Photos)
}

func TestResolve_FailureKeepsPartialRecord(t *testing.T) {
	client := &stubClient{
		getWork: func(context.Context, string) (*openlibrary.WorkDetails, error) {
			return nil, &openlibrary.APIError{StatusCode: 500, Body: "boom"}
		},
	}
	r := NewResolver(client)

	book := catalog.Book{Key: "/works/OL1W", Title: "Dune"}
	res := r.Resolve(context.Background(), catalog.BookItem(book))

	u := awaitUpdate(t, res.Updates)
	assert.Equal(t, PhaseFailed, u.Phase)
	assert.Error(t, u.Err)
	require.NotNil(t, u.Record.Book)
	assert.Equal(t, "Dune", u.Record.Book.Title, "the partial record survives a failed enrichment")
}

func TestResolve_SupersededCompletionIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	client := &stubClient{
		getWork: func(_ context.Context, key string) (*openlibrary.WorkDetails, error) {
			if key == "/works/SLOW" {
				<-release
			}
			return &openlibrary.WorkDetails{Description: "fetched " + key}, nil
		},
	}
	r := NewResolver(client)
	ctx := context.Background()

	slow := r.Resolve(ctx, catalog.BookItem(catalog.Book{Key: "/works/SLOW", Title: "Old"}))
	fast := r.Resolve(ctx, catalog.BookItem(catalog.Book{Key: "/works/FAST", Title: "New"}))

	u := awaitUpdate(t, fast.Updates)
	assert.Equal(t, PhaseFull, u.Phase)
	assert.Equal(t, "fetched /works/FAST", u.Record.Book.Description)

	// Let the first fetch finish now that it is stale. Its channel must close
	// without ever delivering the outdated result.
	close(release)
	awaitClosed(t, slow.Updates)
	assert.Greater(t, fast.Seq, slow.Seq)
}
