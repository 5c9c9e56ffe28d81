package detail

import (
	"context"
	"sync/atomic"

	"libraryexplorer/internal/catalog"
	"libraryexplorer/internal/platform/openlibrary"
	"libraryexplorer/internal/rating"
)

// Resolver performs two-phase detail resolution: the already-known summary is
// returned immediately as a partial record and the enrichment fetch completes
// asynchronously. Each Resolve takes a fresh sequence number; a completion
// whose number is no longer the latest is discarded instead of racing into
// state owned by a newer selection.
type Resolver struct {
	client Client
	seq    atomic.Uint64
}

func NewResolver(client Client) *Resolver {
	return &Resolver{client: client}
}

// Resolution is the outcome of one Resolve call. Record and Phase describe
// the immediately available data; Updates yields at most one enrichment
// outcome and is then closed. Enrichment cannot be cancelled.
type Resolution struct {
	Seq     uint64
	Phase   Phase
	Record  Record
	Updates <-chan Update
}

// Resolve starts resolution for a selected item. Locally submitted books have
// no remote identity, so they short-circuit: already full, no network call.
func (r *Resolver) Resolve(ctx context.Context, item catalog.Item) Resolution {
	seq := r.seq.Add(1)
	rec := recordFromItem(item)

	ch := make(chan Update, 1)
	if item.Kind == catalog.KindBooks && item.Book != nil && item.Book.IsUserBook {
		close(ch)
		return Resolution{Seq: seq, Phase: PhaseFull, Record: rec, Updates: ch}
	}

	go r.enrich(ctx, seq, rec, ch)
	return Resolution{Seq: seq, Phase: PhasePartial, Record: rec, Updates: ch}
}

func (r *Resolver) enrich(ctx context.Context, seq uint64, rec Record, ch chan<- Update) {
	defer close(ch)

	var err error
	switch rec.Kind {
	case catalog.KindBooks:
		var details *openlibrary.WorkDetails
		details, err = r.client.GetWork(ctx, rec.Book.Key)
		if err == nil {
			mergeBook(rec.Book, details)
		}
	case catalog.KindAuthors:
		var details *openlibrary.AuthorDetails
		details, err = r.client.GetAuthor(ctx, rec.Author.Key)
		if err == nil {
			mergeAuthor(rec.Author, details)
		}
	}

	// A newer selection supersedes this one; its completion must not land.
	if r.seq.Load() != seq {
		return
	}

	if err != nil {
		ch <- Update{Seq: seq, Phase: PhaseFailed, Record: rec, Err: err}
		return
	}
	ch <- Update{Seq: seq, Phase: PhaseFull, Record: rec}
}

func recordFromItem(item catalog.Item) Record {
	rec := Record{Kind: item.Kind}
	switch item.Kind {
	case catalog.KindBooks:
		b := catalog.BookDetail{}
		if item.Book != nil {
			b.Book = *item.Book
		}
		rec.Book = &b
	case catalog.KindAuthors:
		a := catalog.AuthorDetail{}
		if item.Author != nil {
			a.Author = *item.Author
		}
		rec.Author = &a
	}
	return rec
}

// mergeBook folds fetched work details into the held record. Only non-empty
// incoming fields land, so a sparse response cannot clobber fields already
// filled from the summary.
func mergeBook(dst *catalog.BookDetail, src *openlibrary.WorkDetails) {
	if src.Title != "" {
		dst.Title = src.Title
	}
	if desc := openlibrary.FormatText(src.Description); desc != "" {
		dst.Description = desc
	}
	if len(src.Subjects) > 0 {
		dst.Subjects = src.Subjects
	}
	if len(src.Covers) > 0 {
		dst.Covers = src.Covers
		if dst.CoverID == 0 {
			dst.CoverID = src.Covers[0]
		}
	}
	if src.FirstPublishDate != "" {
		dst.FirstPublishDate = src.FirstPublishDate
	}
	rating.Apply(&dst.Book)
}

func mergeAuthor(dst *catalog.AuthorDetail, src *openlibrary.AuthorDetails) {
	if src.Name != "" {
		dst.Name = src.Name
	}
	if bio := openlibrary.FormatText(src.Bio); bio != "" {
		dst.Bio = bio
	}
	if src.BirthDate != "" {
		dst.BirthDate = src.BirthDate
	}
	if src.DeathDate != "" {
		dst.DeathDate = src.DeathDate
	}
	if len(src.Photos) > 0 {
		dst.Photos = src.Photos
	}
}
