package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"hn-digest/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name    string
		message string
		limit   int
		want    []string
	}{
		{name: "short", message: "hello", limit: 10, want: []string{"hello"}},
		{name: "breaks at last newline", message: "aaaa\nbbbb\ncccc", limit: 10, want: []string{"aaaa\nbbbb", "\ncccc"}},
		{name: "no newline hard cut", message: "abcdefghijkl", limit: 5, want: []string{"abcde", "fghij", "kl"}},
		{name: "newline at start hard cut", message: "\nabcdefgh", limit: 5, want: []string{"\nabcd", "efgh"}},
		{name: "multibyte", message: "中文中文中文", limit: 4, want: []string{"中文中文", "中文"}},
		{name: "empty", message: "", limit: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Split(tt.message, tt.limit))
		})
	}
}

func TestDiscordSend(t *testing.T) {
	var (
		mu       sync.Mutex
		received []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Content string `json:"content"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		mu.Lock()
		received = append(received, r.URL.Path+"|"+body.Content)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := NewDiscord([]string{srv.URL + "/a", srv.URL + "/b"})
	require.True(t, d.Enabled())

	long := strings.Repeat("x", 1500) + "\n" + strings.Repeat("y", 1000)
	require.NoError(t, d.Send(context.Background(), long))

	assert.Len(t, received, 4)
	assert.True(t, strings.HasPrefix(received[0], "/a|x"))
	assert.True(t, strings.HasPrefix(received[1], "/a|\ny"))
	assert.True(t, strings.HasPrefix(received[2], "/b|x"))
}

func TestDiscordSendReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	err := NewDiscord([]string{srv.URL}).Send(context.Background(), "hi")
	assert.Error(t, err)

	assert.NoError(t, NewDiscord(nil).Send(context.Background(), "hi"))
}

func TestFormatStory(t *testing.T) {
	story := models.Story{
		URL:             "https://a.example",
		Summary:         "Headline\n- one",
		HackerNewsURL:   "https://news.ycombinator.com/item?id=1",
		Score:           120,
		CommentsSummary: "- people liked it",
	}

	got := FormatStory(story, "Top Hacker News:")
	assert.Equal(t, "Top Hacker News:\n**Article**: <https://a.example>\n**Summary**:\n Headline\n- one\n"+
		"**HNUrl**: <https://news.ycombinator.com/item?id=1>\n**Score**: 120\n**Discussion Highlights**:\n - people liked it\n ----------", got)
}

func TestFormatLink(t *testing.T) {
	assert.Equal(t, "AI on TechCrunch\n<https://tc.example>\nHeadline\n- one", FormatLink("https://tc.example", "Headline\n\n- one", "AI on TechCrunch"))
	assert.Equal(t, "\n<https://tc.example>\nsummary", FormatLink("https://tc.example", "summary", ""))
}
