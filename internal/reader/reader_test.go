package reader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJina(t *testing.T, handler http.HandlerFunc, maxChars int) *JinaReader {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	j := NewJinaReader("secret", 5*time.Second, maxChars)
	j.baseURL = srv.URL + "/"
	return j
}

func TestJinaReaderFetch(t *testing.T) {
	var gotPath, gotFormat, gotAuth string
	j := newJina(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotFormat = r.Header.Get("X-Return-Format")
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte("Title: Hello\n\nBody text"))
	}, 100000)

	text, err := j.Fetch(context.Background(), "https://example.com/post")
	require.NoError(t, err)
	assert.Equal(t, "Title: Hello\n\nBody text", text)
	assert.Equal(t, "/https://example.com/post", gotPath)
	assert.Equal(t, "text", gotFormat)
	assert.Equal(t, "Bearer secret", gotAuth)
}

func TestJinaReaderTruncates(t *testing.T) {
	j := newJina(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", 50)))
	}, 10)

	text, err := j.Fetch(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Len(t, text, 10)
}

func TestJinaReaderPageNotFound(t *testing.T) {
	j := newJina(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("Warning: Page Not Found"))
	}, 100000)

	text, err := j.Fetch(context.Background(), "https://example.com/missing")
	assert.Empty(t, text)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPageNotFound))
	assert.Equal(t, "Warning: Page Not Found", err.Error())
}

func TestJinaReaderEmptyBody(t *testing.T) {
	j := newJina(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("   "))
	}, 100000)

	text, err := j.Fetch(context.Background(), "https://example.com")
	assert.NoError(t, err)
	assert.Empty(t, text)
}

func TestJinaReaderRejectsErrorStatus(t *testing.T) {
	j := newJina(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "<html>502 Bad Gateway</html>", http.StatusBadGateway)
	}, 100000)

	text, err := j.Fetch(context.Background(), "https://example.com/down")
	assert.Empty(t, text)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadStatus)
	assert.NotContains(t, err.Error(), "Bad Gateway")

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "https://example.com/down", fetchErr.URL)
}

func TestJinaReaderNotFoundStatusKeepsBody(t *testing.T) {
	j := newJina(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte("Page Not Found"))
	}, 100000)

	_, err := j.Fetch(context.Background(), "https://example.com/missing")
	assert.ErrorIs(t, err, ErrPageNotFound)
	assert.Equal(t, "Page Not Found", err.Error())
}

func TestLocalReaderFetch(t *testing.T) {
	page := `<html><head><title>Go Release</title></head><body>
<nav>menu</nav>
<article><h1>Go Release</h1>
<p>` + strings.Repeat("The Go team announced a new release with many improvements to the toolchain. ", 20) + `</p>
<p>` + strings.Repeat("Generic type aliases are now fully supported by the compiler. ", 20) + `</p>
</article></body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	l := NewLocalReader(5*time.Second, 100000)

	text, err := l.Fetch(context.Background(), srv.URL+"/post")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "Title: Go Release"))
	assert.Contains(t, text, "Generic type aliases")

	_, err = l.Fetch(context.Background(), srv.URL+"/missing")
	assert.ErrorIs(t, err, ErrPageNotFound)
}
