package bookdata

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"

	"github.com/agnivade/levenshtein"
)

// Response codes from the classification service.
const (
	classifySingleWork = 0
	classifyFoundWork  = 2
	classifyMultiWork  = 4
)

type classifyWork struct {
	Title string `xml:"title,attr"`
	OWI   string `xml:"owi,attr"`
}

type classifyResponse struct {
	Response struct {
		Code int `xml:"code,attr"`
	} `xml:"response"`
	Works []classifyWork `xml:"works>work"`
	DDC   struct {
		MostPopular struct {
			SFA string `xml:"sfa,attr"`
		} `xml:"mostPopular"`
	} `xml:"recommendations>ddc"`
}

// Classify looks up the Dewey classification for an ISBN. When the service
// reports several candidate works, the one whose title is the closest edit
// distance to the provider's title is selected and re-queried by work id.
// A missing classification returns "" with a nil error; the caller decides
// what prefix to fall back to.
func (c *Client) Classify(ctx context.Context, isbn, title string) (string, error) {
	parsed, err := c.classifyQuery(ctx, "isbn", isbn)
	if err != nil {
		return "", err
	}

	if parsed.Response.Code == classifyMultiWork {
		if len(parsed.Works) == 0 {
			return "", nil
		}
		work := closestWork(title, parsed.Works)
		parsed, err = c.classifyQuery(ctx, "owi", work.OWI)
		if err != nil {
			return "", err
		}
	}

	switch parsed.Response.Code {
	case classifySingleWork, classifyFoundWork:
		return parsed.DDC.MostPopular.SFA, nil
	}
	return "", nil
}

func (c *Client) classifyQuery(ctx context.Context, paramType, value string) (*classifyResponse, error) {
	u := fmt.Sprintf("%s?%s=%s&summary=true", c.classifyURL, paramType, url.QueryEscape(value))

	body, err := c.get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("classification lookup by %s: %w", paramType, err)
	}

	var parsed classifyResponse
	if err := xml.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("classification lookup by %s: %w: %v", paramType, ErrMalformedResponse, err)
	}
	return &parsed, nil
}

// closestWork picks the candidate with the smallest edit distance to the
// wanted title. Ties go to the first candidate encountered.
func closestWork(title string, works []classifyWork) classifyWork {
	best := works[0]
	bestDist := levenshtein.ComputeDistance(title, best.Title)
	for _, w := range works[1:] {
		if d := levenshtein.ComputeDistance(title, w.Title); d < bestDist {
			best, bestDist = w, d
		}
	}
	return best
}
