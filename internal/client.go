package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	q "github.com/antchfx/htmlquery"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var (
	_stripTags = bluemonday.StrictPolicy()
	_lineBreak = regexp.MustCompile(`(?i)<br\s*/?>`)
	_isbnLabel = regexp.MustCompile(`ISBN.+:`)
)

// _maxISBNsPerRequest is the most ISBNs the bibliography service accepts at
// once.
const _maxISBNsPerRequest = 1000

// UpstreamConfig names the hosts we talk to.
type UpstreamConfig struct {
	ReadingHost string  // Reading log, e.g. bookmeter.com.
	BiblioHost  string  // Bibliographic metadata, e.g. api.openbd.jp.
	StoreHost   string  // Product pages, e.g. www.amazon.co.jp.
	RPS         float64 // Per-host request rate. Zero is unlimited.
}

// Client implements upstream over HTTP.
type Client struct {
	reading *http.Client
	biblio  *http.Client
	store   *http.Client
	images  *http.Client
}

var _ upstream = (*Client)(nil)

// NewClient creates an upstream client. base may be nil to use the default
// transport.
func NewClient(cfg UpstreamConfig, base http.RoundTripper) (*Client, error) {
	if cfg.ReadingHost == "" || cfg.BiblioHost == "" || cfg.StoreHost == "" {
		return nil, errors.Join(fmt.Errorf("upstream hosts must be configured"), ErrInvalidInput)
	}
	return &Client{
		reading: newUpstreamClient(cfg.ReadingHost, cfg.RPS, base),
		biblio:  newUpstreamClient(cfg.BiblioHost, cfg.RPS, base),
		store:   newUpstreamClient(cfg.StoreHost, cfg.RPS, base),
		images:  newUpstreamClient("", cfg.RPS, base),
	}, nil
}

// listResponse is the reading log's paginated envelope.
type listResponse[T any] struct {
	Metadata struct {
		Sort   string `json:"sort"`
		Order  string `json:"order"`
		Offset int    `json:"offset"`
		Limit  int    `json:"limit"`
		Count  int    `json:"count"`
	} `json:"metadata"`
	Resources []T `json:"resources"`
}

// SearchUser returns the first user matching name.
func (c *Client) SearchUser(ctx context.Context, name string) (*User, error) {
	var resp listResponse[User]
	err := getJSON(ctx, c.reading, "/users/search.json?name="+url.QueryEscape(name), &resp)
	if err != nil {
		return nil, err
	}
	if len(resp.Resources) == 0 {
		return nil, errors.Join(fmt.Errorf("no user named %q", name), ErrNotFound)
	}
	return &resp.Resources[0], nil
}

// GetBookPage returns one page of a user's read books. The reading log counts
// pages from 1.
func (c *Client) GetBookPage(ctx context.Context, userID int64, page int) (Page[BookEntry], error) {
	var resp listResponse[BookEntry]
	err := getJSON(ctx, c.reading, fmt.Sprintf("/users/%d/books/read.json?page=%d", userID, page+1), &resp)
	if err != nil {
		return Page[BookEntry]{}, err
	}
	return Page[BookEntry]{
		Items:      resp.Resources,
		PageSize:   resp.Metadata.Limit,
		TotalCount: resp.Metadata.Count,
	}, nil
}

// GetBibliography looks up ISBNs in batches.
func (c *Client) GetBibliography(ctx context.Context, isbns []string) ([]*Bibliography, error) {
	out := make([]*Bibliography, 0, len(isbns))
	for start := 0; start < len(isbns); start += _maxISBNsPerRequest {
		end := min(start+_maxISBNsPerRequest, len(isbns))

		var chunk []*Bibliography
		err := getJSON(ctx, c.biblio, "/v1/get?isbn="+url.QueryEscape(strings.Join(isbns[start:end], ",")), &chunk)
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
	}
	return out, nil
}

// LookupDetail scrapes a product page for its description and ISBN.
func (c *Client) LookupDetail(ctx context.Context, asin string) (*Details, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "/dp/"+url.PathEscape(asin), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.store.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	doc, err := q.Parse(resp.Body)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("parsing product page: %w", err), ErrUpstream)
	}
	return scrapeDetails(doc)
}

// FetchImage downloads an absolute URL.
func (c *Client) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, errors.Join(err, ErrInvalidInput)
	}
	resp, err := c.images.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("reading image: %w", err), ErrUpstream)
	}
	return out, nil
}

func getJSON(ctx context.Context, client *http.Client, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}

	Log(ctx).Debug("fetching", "path", path)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return errors.Join(fmt.Errorf("decoding %s: %w", path, err), ErrUpstream)
	}
	return nil
}

// scrapeDetails expects a product page as input.
func scrapeDetails(doc *html.Node) (*Details, error) {
	details := &Details{}

	node, err := q.Query(doc, `//*[@id="productDescription"]//p`)
	if err != nil {
		return nil, fmt.Errorf("problem scraping description: %w", err)
	}
	if node != nil {
		raw := _lineBreak.ReplaceAllString(q.OutputHTML(node, false), "\n")
		details.Description = strings.TrimSpace(html.UnescapeString(_stripTags.Sanitize(raw)))
	}

	node, err = q.Query(doc, `//*[@id="detail_bullets_id"]//b[contains(text(), "ISBN-13")]/..`)
	if err != nil {
		return nil, fmt.Errorf("problem scraping isbn: %w", err)
	}
	if node != nil {
		details.ISBN = strings.TrimSpace(_isbnLabel.ReplaceAllString(q.InnerText(node), ""))
	}

	return details, nil
}
