package saved

import (
	"sync"

	"libraryexplorer/internal/catalog"
)

// Store is the session's saved-book set, keyed by catalog key. Mutation
// replaces the whole map so readers never observe a torn update.
type Store struct {
	mu    sync.RWMutex
	books map[string]catalog.Book
}

func NewStore() *Store {
	return &Store{books: make(map[string]catalog.Book)}
}

// Toggle saves the book if absent and removes it if present. It reports
// whether the book is saved afterwards. Toggling twice restores the prior
// membership state.
func (s *Store) Toggle(b catalog.Book) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]catalog.Book, len(s.books)+1)
	for k, v := range s.books {
		next[k] = v
	}
	_, present := next[b.Key]
	if present {
		delete(next, b.Key)
	} else {
		b.Saved = true
		next[b.Key] = b
	}
	s.books = next
	return !present
}

// IsSaved reports membership for a key.
func (s *Store) IsSaved(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.books[key]
	return ok
}

// Books returns the saved books in unspecified order.
func (s *Store) Books() []catalog.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]catalog.Book, 0, len(s.books))
	for _, b := range s.books {
		out = append(out, b)
	}
	return out
}

// Len returns the number of saved books.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.books)
}
