// Package gutendex fetches import candidates from the Gutendex catalogue
// of Project Gutenberg books (https://gutendex.com).
package gutendex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mrlokans/readinglist/internal/catalogue"
	"github.com/mrlokans/readinglist/internal/entities"
)

const (
	DefaultBaseURL = "https://gutendex.com"
	DefaultTimeout = 10 * time.Second

	userAgent = "ReadingList/1.0 (https://github.com/mrlokans/readinglist)"
)

// Client fetches a single page of books from the Gutendex API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a new Gutendex API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		baseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchCandidates fetches the first page of the catalogue. Each result
// becomes a candidate with the first listed author, or "Unknown".
// Results without a title are dropped.
func (c *Client) FetchCandidates(ctx context.Context) ([]catalogue.Candidate, error) {
	url := c.baseURL + "/books/"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch books: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var page booksPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if page.Results == nil {
		return nil, fmt.Errorf("decode response: missing results")
	}

	candidates := make([]catalogue.Candidate, 0, len(page.Results))
	for _, b := range page.Results {
		title := strings.TrimSpace(b.Title)
		if title == "" {
			continue
		}
		candidates = append(candidates, catalogue.Candidate{
			Title:  title,
			Author: firstAuthor(b.Authors),
		})
	}
	return candidates, nil
}

func firstAuthor(authors []person) string {
	if len(authors) == 0 {
		return entities.UnknownAuthor
	}
	name := strings.TrimSpace(authors[0].Name)
	if name == "" {
		return entities.UnknownAuthor
	}
	return name
}

// Gutendex API response types (internal)

type booksPage struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []gbook `json:"results"`
}

type gbook struct {
	ID      int      `json:"id"`
	Title   string   `json:"title"`
	Authors []person `json:"authors"`
}

type person struct {
	Name      string `json:"name"`
	BirthYear *int   `json:"birth_year"`
	DeathYear *int   `json:"death_year"`
}
