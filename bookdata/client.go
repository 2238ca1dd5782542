// Package bookdata wraps the two external services used to enrich the library
// catalog: the book-metadata provider and the classification lookup. Both are
// single-attempt best-effort calls; only connection failures are retried.
package bookdata

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"netsoc/constants"
)

const (
	defaultMetadataURL = "https://www.goodreads.com"
	defaultClassifyURL = "http://classify.oclc.org/classify2/Classify"
)

var ErrMalformedResponse = errors.New("malformed provider response")

// Author is one author entry from the metadata provider.
type Author struct {
	Name     string
	Link     string
	ImageURL string
}

// BookInfo is the normalized record returned by Lookup.
type BookInfo struct {
	Title       string
	Authors     []Author
	Publisher   string
	Description string
	Rating      float64
	NumPages    int
	ISBN        string
	ISBN13      string
	ImageURL    string
	Link        string

	// Raw is the provider payload as received, stored with the book.
	Raw []byte
}

type Client struct {
	http        *http.Client
	key         string
	secret      string
	metadataURL string
	classifyURL string
}

type Option func(*Client)

// WithHTTPClient replaces the retrying transport, used by tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithMetadataURL(u string) Option {
	return func(c *Client) { c.metadataURL = strings.TrimRight(u, "/") }
}

func WithClassifyURL(u string) Option {
	return func(c *Client) { c.classifyURL = u }
}

func New(key, secret string, opts ...Option) *Client {
	retry := retryablehttp.NewClient()
	retry.RetryMax = 5
	retry.RetryWaitMin = 1 * time.Second
	retry.RetryWaitMax = 32 * time.Second
	retry.Logger = nil
	retry.CheckRetry = retryOnConnectionError

	c := &Client{
		http:        retry.StandardClient(),
		key:         key,
		secret:      secret,
		metadataURL: defaultMetadataURL,
		classifyURL: defaultClassifyURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// retryOnConnectionError retries transport-level failures only. An HTTP
// response, whatever its status code, is never retried.
func retryOnConnectionError(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return true, nil
	}
	return false, nil
}

type xmlAuthor struct {
	Name     string `xml:"name"`
	Link     string `xml:"link"`
	ImageURL string `xml:"image_url"`
}

type xmlBook struct {
	Title         string      `xml:"title"`
	ISBN          string      `xml:"isbn"`
	ISBN13        string      `xml:"isbn13"`
	ImageURL      string      `xml:"image_url"`
	Link          string      `xml:"link"`
	Publisher     string      `xml:"publisher"`
	Description   string      `xml:"description"`
	AverageRating string      `xml:"average_rating"`
	NumPages      string      `xml:"num_pages"`
	Authors       []xmlAuthor `xml:"authors>author"`
}

type lookupResponse struct {
	Book xmlBook `xml:"book"`
}

// Lookup fetches the provider's record for an ISBN.
func (c *Client) Lookup(ctx context.Context, isbn string) (*BookInfo, error) {
	u := fmt.Sprintf("%s/book/isbn/%s?format=xml&key=%s", c.metadataURL, url.PathEscape(isbn), url.QueryEscape(c.key))

	body, err := c.get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("metadata lookup for %s: %w", isbn, err)
	}

	var parsed lookupResponse
	if err := xml.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("metadata lookup for %s: %w: %v", isbn, ErrMalformedResponse, err)
	}
	if parsed.Book.Title == "" {
		return nil, fmt.Errorf("metadata lookup for %s: %w: no book in response", isbn, ErrMalformedResponse)
	}

	info := &BookInfo{
		Title:       parsed.Book.Title,
		Publisher:   parsed.Book.Publisher,
		Description: parsed.Book.Description,
		ISBN:        parsed.Book.ISBN,
		ISBN13:      parsed.Book.ISBN13,
		ImageURL:    parsed.Book.ImageURL,
		Link:        parsed.Book.Link,
		Raw:         body,
	}
	// Rating and page count arrive as text and are sometimes empty; treat
	// unparseable values as absent rather than failing the whole lookup.
	info.Rating, _ = strconv.ParseFloat(strings.TrimSpace(parsed.Book.AverageRating), 64)
	info.NumPages, _ = strconv.Atoi(strings.TrimSpace(parsed.Book.NumPages))

	for _, a := range parsed.Book.Authors {
		info.Authors = append(info.Authors, Author{Name: a.Name, Link: a.Link, ImageURL: a.ImageURL})
	}
	return info, nil
}

// IsPlaceholderImage reports whether the provider returned its stock
// "no photo" cover rather than a real one.
func IsPlaceholderImage(imageURL string) bool {
	return strings.Contains(imageURL, constants.NO_PHOTO_MARKER)
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
