package catalog

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an item cannot be located in any local store.
var ErrNotFound = errors.New("item not found")

// Kind discriminates the two catalog item variants. It is set at construction
// time and never inferred by probing fields.
type Kind string

const (
	KindBooks   Kind = "books"
	KindAuthors Kind = "authors"
)

// ParseKind validates a client-supplied search type tag.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindBooks, KindAuthors:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("invalid search type: %q", s)
	}
}

// Status is the review lifecycle of a user-submitted book.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPublished Status = "published"
	StatusRejected  Status = "rejected"
)

// Book is a catalog book record. Summary fields come from search results;
// commerce fields are only present on user-submitted books.
type Book struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorNames      []string `json:"author_name,omitempty"`
	FirstPublishYear int      `json:"first_publish_year,omitempty"`
	CoverID          int      `json:"cover_i,omitempty"`
	Description      string   `json:"description,omitempty"`

	AverageRating *float64 `json:"average_rating,omitempty"`
	RatingsCount  *int     `json:"ratings_count,omitempty"`

	Price          *float64 `json:"price,omitempty"`
	PaymentMethods []string `json:"payment_methods,omitempty"`
	IsUserBook     bool     `json:"is_user_book,omitempty"`
	CoverImageURL  string   `json:"cover_image_url,omitempty"`
	Status         Status   `json:"status,omitempty"`

	Saved bool `json:"is_saved,omitempty"`
}

// Author is a catalog author record.
type Author struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	TopWork   string `json:"top_work,omitempty"`
	WorkCount int    `json:"work_count,omitempty"`
}

// Item is the tagged Book | Author variant. Exactly one of Book and Author is
// non-nil, matching Kind.
type Item struct {
	Kind   Kind    `json:"kind"`
	Book   *Book   `json:"book,omitempty"`
	Author *Author `json:"author,omitempty"`
}

func BookItem(b Book) Item {
	return Item{Kind: KindBooks, Book: &b}
}

func AuthorItem(a Author) Item {
	return Item{Kind: KindAuthors, Author: &a}
}

// Key returns the item's catalog identifier regardless of variant.
func (i Item) Key() string {
	switch i.Kind {
	case KindBooks:
		if i.Book != nil {
			return i.Book.Key
		}
	case KindAuthors:
		if i.Author != nil {
			return i.Author.Key
		}
	}
	return ""
}

// BookDetail extends a Book with enrichment fields. The extra fields stay
// zero-valued until the enrichment fetch completes.
type BookDetail struct {
	Book
	Subjects         []string `json:"subjects,omitempty"`
	Covers           []int    `json:"covers,omitempty"`
	FirstPublishDate string   `json:"first_publish_date,omitempty"`
}

// AuthorDetail extends an Author with enrichment fields.
type AuthorDetail struct {
	Author
	Bio       string `json:"bio,omitempty"`
	BirthDate string `json:"birth_date,omitempty"`
	DeathDate string `json:"death_date,omitempty"`
	Photos    []int  `json:"photos,omitempty"`
}

// Page is one page of search results. TotalFound counts remote matches only;
// locally published books prepended to Items are not part of pagination.
type Page struct {
	Items      []Item `json:"items"`
	TotalFound int    `json:"total_found"`
	TotalPages int    `json:"total_pages"`
}

// TotalPages computes ceil(totalFound / pageSize); zero found means zero pages.
func TotalPages(totalFound, pageSize int) int {
	if totalFound <= 0 || pageSize <= 0 {
		return 0
	}
	return (totalFound + pageSize - 1) / pageSize
}
