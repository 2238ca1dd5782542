package bookdata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lookupXML = `<?xml version="1.0" encoding="UTF-8"?>
<response>
  <book>
    <title>The Go Programming Language</title>
    <isbn>0134190440</isbn>
    <isbn13>9780134190440</isbn13>
    <image_url>https://images.example.com/cover.jpg</image_url>
    <link>https://books.example.com/show/25080953</link>
    <publisher>Addison-Wesley</publisher>
    <description>The authoritative resource.</description>
    <average_rating>4.36</average_rating>
    <num_pages>380</num_pages>
    <authors>
      <author>
        <name>Alan A. A. Donovan</name>
        <link>https://books.example.com/author/1</link>
        <image_url>https://images.example.com/author1.jpg</image_url>
      </author>
      <author>
        <name>Brian W. Kernighan</name>
        <link>https://books.example.com/author/2</link>
        <image_url>https://images.example.com/author2.jpg</image_url>
      </author>
    </authors>
  </book>
</response>`

func TestLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/book/isbn/9780134190440")
		assert.Equal(t, "testkey", r.URL.Query().Get("key"))
		fmt.Fprint(w, lookupXML)
	}))
	defer srv.Close()

	c := New("testkey", "testsecret", WithMetadataURL(srv.URL))

	info, err := c.Lookup(context.Background(), "9780134190440")
	require.NoError(t, err)

	assert.Equal(t, "The Go Programming Language", info.Title)
	assert.Equal(t, "0134190440", info.ISBN)
	assert.Equal(t, "9780134190440", info.ISBN13)
	assert.Equal(t, "Addison-Wesley", info.Publisher)
	assert.InDelta(t, 4.36, info.Rating, 0.001)
	assert.Equal(t, 380, info.NumPages)
	require.Len(t, info.Authors, 2)
	assert.Equal(t, "Alan A. A. Donovan", info.Authors[0].Name)
	assert.NotEmpty(t, info.Raw)
}

func TestLookupMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<response><error>no such book</error></response>`)
	}))
	defer srv.Close()

	c := New("k", "s", WithMetadataURL(srv.URL))

	_, err := c.Lookup(context.Background(), "0000000000000")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func classifyServer(t *testing.T, byISBN, byOWI string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "true", q.Get("summary"))
		switch {
		case q.Get("isbn") != "":
			fmt.Fprint(w, byISBN)
		case q.Get("owi") != "":
			fmt.Fprint(w, byOWI)
		default:
			t.Errorf("unexpected classify query: %s", r.URL.RawQuery)
		}
	}))
}

const classifySingle = `<?xml version="1.0" encoding="UTF-8"?>
<classify xmlns="http://classify.oclc.org">
  <response code="0"/>
  <recommendations>
    <ddc>
      <mostPopular holdings="500" nsfa="005.133" sfa="005.133"/>
    </ddc>
  </recommendations>
</classify>`

const classifyMulti = `<?xml version="1.0" encoding="UTF-8"?>
<classify xmlns="http://classify.oclc.org">
  <response code="4"/>
  <works>
    <work owi="1111" title="The Go Programming Language Phrasebook"/>
    <work owi="2222" title="The Go Programming Language"/>
    <work owi="3333" title="Programming in Go"/>
  </works>
</classify>`

func TestClassifySingleWork(t *testing.T) {
	srv := classifyServer(t, classifySingle, "")
	defer srv.Close()

	c := New("k", "s", WithClassifyURL(srv.URL))

	ddc, err := c.Classify(context.Background(), "9780134190440", "The Go Programming Language")
	require.NoError(t, err)
	assert.Equal(t, "005.133", ddc)
}

func TestClassifyMultiWorkPicksClosestTitle(t *testing.T) {
	var requestedOWI string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if owi := q.Get("owi"); owi != "" {
			requestedOWI = owi
			fmt.Fprint(w, classifySingle)
			return
		}
		fmt.Fprint(w, classifyMulti)
	}))
	defer srv.Close()

	c := New("k", "s", WithClassifyURL(srv.URL))

	ddc, err := c.Classify(context.Background(), "9780134190440", "The Go Programming Language")
	require.NoError(t, err)
	assert.Equal(t, "005.133", ddc)
	assert.Equal(t, "2222", requestedOWI, "must re-query the closest-titled work")
}

func TestClassifyNotFound(t *testing.T) {
	srv := classifyServer(t, `<classify><response code="101"/></classify>`, "")
	defer srv.Close()

	c := New("k", "s", WithClassifyURL(srv.URL))

	ddc, err := c.Classify(context.Background(), "0000000000", "whatever")
	require.NoError(t, err)
	assert.Empty(t, ddc)
}

func TestClosestWork(t *testing.T) {
	works := []classifyWork{
		{OWI: "1", Title: "Compilers: Principles, Techniques, and Tools"},
		{OWI: "2", Title: "Compilers"},
		{OWI: "3", Title: "Programming Language Pragmatics"},
	}
	assert.Equal(t, "2", closestWork("Compilers", works).OWI)
	assert.Equal(t, "1", closestWork("Compilers: Principles, Techniques, and Tools", works).OWI)
}

func TestScrapeCoverImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<img id="other" src="https://images.example.com/banner.png">
			<img id="coverImage" src="https://images.example.com/real-cover.jpg">
		</body></html>`)
	}))
	defer srv.Close()

	c := New("k", "s")

	src, err := c.ScrapeCoverImage(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "https://images.example.com/real-cover.jpg", src)
}

func TestScrapeCoverImageMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>no cover here</p></body></html>`)
	}))
	defer srv.Close()

	c := New("k", "s")

	_, err := c.ScrapeCoverImage(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrNoCoverImage)
}

func TestRetryPolicy(t *testing.T) {
	// Connection-level failures retry; HTTP-level errors never do.
	retry, err := retryOnConnectionError(context.Background(), nil, errors.New("dial tcp: connection refused"))
	require.NoError(t, err)
	assert.True(t, retry)

	retry, err = retryOnConnectionError(context.Background(), &http.Response{StatusCode: http.StatusInternalServerError}, nil)
	require.NoError(t, err)
	assert.False(t, retry)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = retryOnConnectionError(cancelled, nil, errors.New("dial tcp: connection refused"))
	assert.Error(t, err)
}

func TestIsPlaceholderImage(t *testing.T) {
	assert.True(t, IsPlaceholderImage("https://images.example.com/nophoto/111.jpg"))
	assert.False(t, IsPlaceholderImage("https://images.example.com/cover.jpg"))
}
