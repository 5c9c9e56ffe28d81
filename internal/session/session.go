package session

import (
	"context"
	"errors"
	"sync"

	"libraryexplorer/internal/catalog"
	"libraryexplorer/internal/detail"
	"libraryexplorer/internal/ledger"
	"libraryexplorer/internal/saved"
	"libraryexplorer/internal/shelf"
)

// ErrStaleResult marks a completion that lost the race to a newer request for
// the same slot. The completion's effect is discarded, not applied.
var ErrStaleResult = errors.New("stale result discarded")

// Searcher is the search orchestration port.
type Searcher interface {
	Search(ctx context.Context, query string, kind catalog.Kind, page int) (catalog.Page, error)
}

// Resolver is the two-phase detail resolution port.
type Resolver interface {
	Resolve(ctx context.Context, item catalog.Item) detail.Resolution
}

// SearchState is the search slot of the session.
type SearchState struct {
	Query      string         `json:"query"`
	Kind       catalog.Kind   `json:"kind"`
	Page       int            `json:"page"`
	TotalPages int            `json:"total_pages"`
	TotalFound int            `json:"total_found"`
	Results    []catalog.Item `json:"results"`
	Failed     bool           `json:"failed"`
	Message    string         `json:"message,omitempty"`
}

// Selection is the current detail slot.
type Selection struct {
	Key     string        `json:"key"`
	Kind    catalog.Kind  `json:"kind"`
	Phase   detail.Phase  `json:"phase"`
	Record  detail.Record `json:"record"`
	Failed  bool          `json:"failed"`
	Message string        `json:"message,omitempty"`
}

// Session is the single logical owner of all orchestration state. Operations
// on its stores apply in call order; async completions (search responses,
// enrichment fetches) are tagged with sequence numbers and only the latest
// request per slot may land.
type Session struct {
	searcher Searcher
	resolver Resolver
	shelf    *shelf.Store
	saved    *saved.Store
	ledger   *ledger.Engine

	onDetail func(detail.Update)

	mu        sync.RWMutex
	search    SearchState
	selection *Selection

	searchSeq    uint64 // latest issued search request
	selectionSeq uint64 // sequence of the selection updates may land on
}

func New(searcher Searcher, resolver Resolver, sh *shelf.Store, sv *saved.Store, le *ledger.Engine) *Session {
	return &Session{
		searcher: searcher,
		resolver: resolver,
		shelf:    sh,
		saved:    sv,
		ledger:   le,
	}
}

// Search runs one paged query and applies the outcome to the search slot,
// unless a newer Search was issued while this one was in flight; then the
// completion is dropped and ErrStaleResult returned. A transport failure
// degrades the slot to an error state with prior results cleared.
func (s *Session) Search(ctx context.Context, query string, kind catalog.Kind, page int) (SearchState, error) {
	s.mu.Lock()
	s.searchSeq++
	seq := s.searchSeq
	s.mu.Unlock()

	pageData, err := s.searcher.Search(ctx, query, kind, page)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.searchSeq != seq {
		return s.searchSnapshotLocked(), ErrStaleResult
	}

	if err != nil {
		s.search = SearchState{
			Query:   query,
			Kind:    kind,
			Page:    page,
			Failed:  true,
			Message: "Failed to fetch results. Please try again.",
		}
		return s.searchSnapshotLocked(), nil
	}

	s.search = SearchState{
		Query:      query,
		Kind:       kind,
		Page:       page,
		TotalPages: pageData.TotalPages,
		TotalFound: pageData.TotalFound,
		Results:    pageData.Items,
	}
	return s.searchSnapshotLocked(), nil
}

// Select starts two-phase resolution for an item: the partial record is
// installed immediately and the enrichment outcome is applied when it
// arrives, guarded by the selection sequence.
func (s *Session) Select(ctx context.Context, item catalog.Item) Selection {
	res := s.resolver.Resolve(ctx, item)

	s.mu.Lock()
	s.selection = &Selection{
		Key:    item.Key(),
		Kind:   item.Kind,
		Phase:  res.Phase,
		Record: res.Record,
	}
	s.selectionSeq = res.Seq
	snap := *s.selection
	s.mu.Unlock()

	go func() {
		for u := range res.Updates {
			s.applyDetailUpdate(u)
		}
	}()
	return snap
}

// SetOnDetail registers a hook invoked for every enrichment outcome that
// lands on the current selection. Set before the first Select.
func (s *Session) SetOnDetail(fn func(detail.Update)) {
	s.onDetail = fn
}

func (s *Session) applyDetailUpdate(u detail.Update) {
	s.mu.Lock()
	if s.selection == nil || s.selectionSeq != u.Seq {
		s.mu.Unlock()
		return
	}
	s.selection.Phase = u.Phase
	s.selection.Record = u.Record
	if u.Err != nil {
		s.selection.Failed = true
		s.selection.Message = "Failed to fetch details. Please try again."
	}
	s.mu.Unlock()

	if s.onDetail != nil {
		s.onDetail(u)
	}
}

// SelectKey resolves a key/kind pair against the local stores and current
// results, then selects it.
func (s *Session) SelectKey(ctx context.Context, key string, kind catalog.Kind) (Selection, error) {
	item, ok := s.findItem(key, kind)
	if !ok {
		return Selection{}, catalog.ErrNotFound
	}
	return s.Select(ctx, item), nil
}

func (s *Session) findItem(key string, kind catalog.Kind) (catalog.Item, bool) {
	if kind == catalog.KindBooks {
		if b, ok := s.shelf.Get(key); ok {
			return catalog.BookItem(b), true
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.search.Results {
		if it.Kind == kind && it.Key() == key {
			return it, true
		}
	}
	return catalog.Item{}, false
}

// ClearSelection drops the current selection. Any in-flight enrichment for
// it becomes stale and will not land.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = nil
	s.selectionSeq = 0
}

// CurrentSelection returns the selection slot, or false when nothing is
// selected.
func (s *Session) CurrentSelection() (Selection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selection == nil {
		return Selection{}, false
	}
	sel := *s.selection
	s.decorateSelection(&sel)
	return sel, true
}

// SearchState returns the search slot with saved flags freshly applied.
func (s *Session) SearchState() SearchState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searchSnapshotLocked()
}

// searchSnapshotLocked copies the slot and decorates book results with their
// current saved status. Callers hold at least the read lock.
func (s *Session) searchSnapshotLocked() SearchState {
	snap := s.search
	snap.Results = make([]catalog.Item, len(s.search.Results))
	for i, it := range s.search.Results {
		if it.Kind == catalog.KindBooks && it.Book != nil {
			b := *it.Book
			b.Saved = s.saved.IsSaved(b.Key)
			it = catalog.BookItem(b)
		}
		snap.Results[i] = it
	}
	return snap
}

func (s *Session) decorateSelection(sel *Selection) {
	if sel.Kind != catalog.KindBooks || sel.Record.Book == nil {
		return
	}
	b := *sel.Record.Book
	b.Saved = s.saved.IsSaved(b.Key)
	sel.Record.Book = &b
}

// Submit hands a new book to the review pipeline.
func (s *Session) Submit(sub shelf.Submission) (catalog.Book, error) {
	return s.shelf.Submit(sub)
}

// ToggleSave flips the saved state of a book found by key and reports the
// new state.
func (s *Session) ToggleSave(key string) (bool, error) {
	item, ok := s.findBook(key)
	if !ok {
		return false, catalog.ErrNotFound
	}
	return s.saved.Toggle(item), nil
}

// Purchase executes the commission split for a book found by key.
func (s *Session) Purchase(key string) (ledger.Transaction, error) {
	b, ok := s.findBook(key)
	if !ok {
		return ledger.Transaction{}, catalog.ErrNotFound
	}
	return s.ledger.Purchase(b)
}

// findBook resolves a book key against the shelf, the saved set, the current
// selection and the current results, in that order.
func (s *Session) findBook(key string) (catalog.Book, bool) {
	if b, ok := s.shelf.Get(key); ok {
		return b, true
	}
	for _, b := range s.saved.Books() {
		if b.Key == key {
			return b, true
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selection != nil && s.selection.Record.Book != nil && s.selection.Record.Book.Key == key {
		return s.selection.Record.Book.Book, true
	}
	for _, it := range s.search.Results {
		if it.Kind == catalog.KindBooks && it.Book != nil && it.Book.Key == key {
			return *it.Book, true
		}
	}
	return catalog.Book{}, false
}

// Withdraw acknowledges a simulated payout for the party.
func (s *Session) Withdraw(p ledger.Party) (ledger.Withdrawal, error) {
	return s.ledger.Withdraw(p)
}

// Ledger exposes the ledger engine for read-side handlers.
func (s *Session) Ledger() *ledger.Engine { return s.ledger }

// Shelf exposes the submitted-books store.
func (s *Session) Shelf() *shelf.Store { return s.shelf }

// SavedBooks lists the saved set.
func (s *Session) SavedBooks() []catalog.Book { return s.saved.Books() }

// PurchasedUserBooks lists user submissions that have been bought this
// session.
func (s *Session) PurchasedUserBooks() []catalog.Book {
	var out []catalog.Book
	for _, b := range s.shelf.All() {
		if s.ledger.Purchased(b.Key) {
			out = append(out, b)
		}
	}
	return out
}
