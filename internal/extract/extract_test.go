package extract

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articlePage = `<!DOCTYPE html>
<html>
<head><title>The Long Read</title></head>
<body>
<article>
	<h1>The Long Read</h1>
	<p>%s</p>
	<p>%s</p>
</article>
</body>
</html>`

func longParagraph(seed string) string {
	return strings.Repeat(seed+" is a word that keeps the paragraph going. ", 10)
}

func TestExtract_Article(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		fmt.Fprintf(w, articlePage, longParagraph("first"), longParagraph("second"))
	}))
	defer srv.Close()

	got, err := New().Extract(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "The Long Read", got.Title)
	assert.Contains(t, got.Text, "first is a word")
	assert.Contains(t, got.HTML, "<p>")
	assert.Equal(t, browserUserAgent, gotUA)
}

func TestExtract_TooShort(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><article><p>tiny</p></article></body></html>`)
	}))
	defer srv.Close()

	_, err := New().Extract(context.Background(), srv.URL)
	require.ErrorIs(t, err, ErrInsufficient)
}

func TestExtract_BadURL(t *testing.T) {
	_, err := New().Extract(context.Background(), "")
	require.Error(t, err)
}

func TestExtract_ClientErrorNotRetried(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := New().Extract(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Equal(t, 1, hits)
}

func TestExtract_ServerErrorRetried(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		if hits < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprintf(w, articlePage, longParagraph("first"), longParagraph("second"))
	}))
	defer srv.Close()

	got, err := New().Extract(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, 3, hits)
	assert.NotEmpty(t, got.Text)
}

func TestParagraphHTML(t *testing.T) {
	got := paragraphHTML("one & two\n\n\n\nthree <b>")

	assert.Equal(t, "<p>one &amp; two</p><p>three &lt;b&gt;</p>", got)
}
