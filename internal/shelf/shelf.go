package shelf

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"libraryexplorer/internal/catalog"
)

// ErrInvalidSubmission is a local guard failure; nothing reaches the network
// or the store.
var ErrInvalidSubmission = errors.New("invalid submission")

// DefaultReviewDelay is how long a submission stays pending before the
// simulated review publishes it.
const DefaultReviewDelay = 5 * time.Second

// Submission is the payload for a self-published book.
type Submission struct {
	Title          string
	Author         string
	Description    string
	Price          float64
	PaymentMethods []string
	CoverImageURL  string
}

// Store holds user-submitted books and runs the review simulation. Each
// submission starts pending and transitions exactly once to published after a
// fixed delay. Timers are fire-and-forget: they are independent of any
// observer, run concurrently per submission, and cannot be cancelled.
type Store struct {
	mu          sync.RWMutex
	books       []catalog.Book // newest first
	reviewDelay time.Duration
	onPublish   func(catalog.Book)
}

func NewStore(reviewDelay time.Duration) *Store {
	if reviewDelay <= 0 {
		reviewDelay = DefaultReviewDelay
	}
	return &Store{reviewDelay: reviewDelay}
}

// SetOnPublish registers a hook invoked after a book transitions to
// published. Set before the first Submit.
func (s *Store) SetOnPublish(fn func(catalog.Book)) {
	s.onPublish = fn
}

// Submit validates and stores a new book in pending state and schedules its
// review transition.
func (s *Store) Submit(sub Submission) (catalog.Book, error) {
	if sub.Title == "" || sub.Author == "" || sub.Price <= 0 {
		return catalog.Book{}, ErrInvalidSubmission
	}

	price := sub.Price
	b := catalog.Book{
		Key:            "user-" + uuid.New().String(),
		Title:          sub.Title,
		AuthorNames:    []string{sub.Author},
		Description:    sub.Description,
		Price:          &price,
		PaymentMethods: sub.PaymentMethods,
		CoverImageURL:  sub.CoverImageURL,
		IsUserBook:     true,
		Status:         catalog.StatusPending,
	}

	s.mu.Lock()
	books := make([]catalog.Book, 0, len(s.books)+1)
	books = append(books, b)
	books = append(books, s.books...)
	s.books = books
	s.mu.Unlock()

	time.AfterFunc(s.reviewDelay, func() { s.publish(b.Key) })
	return b, nil
}

// publish flips the book's status. A book that no longer exists makes the
// transition a no-op.
func (s *Store) publish(key string) {
	s.mu.Lock()
	var published *catalog.Book
	books := make([]catalog.Book, len(s.books))
	for i, b := range s.books {
		if b.Key == key {
			b.Status = catalog.StatusPublished
			published = &b
		}
		books[i] = b
	}
	s.books = books
	s.mu.Unlock()

	if published != nil && s.onPublish != nil {
		s.onPublish(*published)
	}
}

// Get looks a submitted book up by key.
func (s *Store) Get(key string) (catalog.Book, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.books {
		if b.Key == key {
			return b, true
		}
	}
	return catalog.Book{}, false
}

// All returns every submitted book, newest first.
func (s *Store) All() []catalog.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]catalog.Book, len(s.books))
	copy(out, s.books)
	return out
}

// Published returns only the books the review simulation has published.
func (s *Store) Published() []catalog.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []catalog.Book
	for _, b := range s.books {
		if b.Status == catalog.StatusPublished {
			out = append(out, b)
		}
	}
	return out
}
