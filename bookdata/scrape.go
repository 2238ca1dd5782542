package bookdata

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/PuerkitoBio/goquery"
)

var ErrNoCoverImage = errors.New("no cover image on item page")

// ScrapeCoverImage fetches the provider's item page and pulls the cover image
// out of the HTML. Used when the API itself only returned a placeholder.
func (c *Client) ScrapeCoverImage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching item page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching item page: unexpected status %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parsing item page: %w", err)
	}

	src, ok := doc.Find("#coverImage").Attr("src")
	if !ok || src == "" {
		return "", ErrNoCoverImage
	}
	return src, nil
}
