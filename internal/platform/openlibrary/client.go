package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Client wraps the Open Library search, detail and subject endpoints. It is a
// thin transport layer: responses come back as raw records, failures as
// *APIError or the underlying network error. Failed calls are never retried.
type Client struct {
	httpClient *http.Client
	userAgent  string
	baseURL    string
	limiter    *rate.Limiter
}

func NewClient(baseURL, userAgent string, rps int) *Client {
	if rps <= 0 {
		rps = 1
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		userAgent: userAgent,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		limiter:   rate.NewLimiter(rate.Every(time.Second/time.Duration(rps)), 1),
	}
}

// APIError is a non-2xx response from the catalog, carrying the status code
// and response body.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openlibrary: unexpected status %d: %s", e.StatusCode, e.Body)
}

// BookDoc matches one doc of search.json.
type BookDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorNames      []string `json:"author_name"`
	FirstPublishYear int      `json:"first_publish_year"`
	CoverID          int      `json:"cover_i"`
}

// SearchResponse matches search.json.
type SearchResponse struct {
	NumFound int       `json:"numFound"`
	Docs     []BookDoc `json:"docs"`
}

// AuthorDoc matches one doc of search/authors.json.
type AuthorDoc struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	TopWork   string `json:"top_work"`
	WorkCount int    `json:"work_count"`
}

// AuthorSearchResponse matches search/authors.json.
type AuthorSearchResponse struct {
	NumFound int         `json:"numFound"`
	Docs     []AuthorDoc `json:"docs"`
}

// WorkDetails matches a work detail object, e.g. /works/OL45883W.json.
// Description can be a plain string or a {type, value} object.
type WorkDetails struct {
	Key              string      `json:"key"`
	Title            string      `json:"title"`
	Description      interface{} `json:"description"`
	Subjects         []string    `json:"subjects"`
	Covers           []int       `json:"covers"`
	FirstPublishDate string      `json:"first_publish_date"`
}

// AuthorDetails matches /authors/{key}.json. Bio has the same string-or-object
// shape as work descriptions.
type AuthorDetails struct {
	Key       string      `json:"key"`
	Name      string      `json:"name"`
	Bio       interface{} `json:"bio"`
	BirthDate string      `json:"birth_date"`
	DeathDate string      `json:"death_date"`
	Photos    []int       `json:"photos"`
}

// SubjectWork matches one work of /subjects/{subject}.json.
type SubjectWork struct {
	Key              string `json:"key"`
	Title            string `json:"title"`
	FirstPublishYear int    `json:"first_publish_year"`
	CoverID          int    `json:"cover_id"`
	Authors          []struct {
		Name string `json:"name"`
	} `json:"authors"`
}

// SubjectResponse matches /subjects/{subject}.json.
type SubjectResponse struct {
	Works []SubjectWork `json:"works"`
}

func (c *Client) SearchBooks(ctx context.Context, query string, page, limit int) (*SearchResponse, error) {
	u := fmt.Sprintf("%s/search.json?q=%s&page=%d&limit=%d",
		c.baseURL, url.QueryEscape(query), page, limit)

	var res SearchResponse
	if err := c.get(ctx, u, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) SearchAuthors(ctx context.Context, query string, page, limit int) (*AuthorSearchResponse, error) {
	u := fmt.Sprintf("%s/search/authors.json?q=%s&page=%d&limit=%d",
		c.baseURL, url.QueryEscape(query), page, limit)

	var res AuthorSearchResponse
	if err := c.get(ctx, u, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetWork fetches details for a book key, typically "/works/OL...W".
func (c *Client) GetWork(ctx context.Context, key string) (*WorkDetails, error) {
	if !strings.HasPrefix(key, "/") {
		key = "/" + key
	}
	u := fmt.Sprintf("%s%s.json", c.baseURL, key)

	var res WorkDetails
	if err := c.get(ctx, u, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetAuthor fetches details for an author key, with or without the
// "/authors/" prefix.
func (c *Client) GetAuthor(ctx context.Context, key string) (*AuthorDetails, error) {
	key = strings.TrimPrefix(key, "/authors/")
	u := fmt.Sprintf("%s/authors/%s.json", c.baseURL, key)

	var res AuthorDetails
	if err := c.get(ctx, u, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) GetSubjectWorks(ctx context.Context, subject string, limit int) (*SubjectResponse, error) {
	u := fmt.Sprintf("%s/subjects/%s.json?limit=%d",
		c.baseURL, url.PathEscape(subject), limit)

	var res SubjectResponse
	if err := c.get(ctx, u, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) get(ctx context.Context, url string, target interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	return json.NewDecoder(resp.Body).Decode(target)
}

// FormatText normalizes the string-or-object shape Open Library uses for
// descriptions and bios.
func FormatText(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	if m, ok := v.(map[string]interface{}); ok {
		if s, ok := m["value"].(string); ok {
			return s
		}
	}
	return ""
}
