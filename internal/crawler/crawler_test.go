package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hn-digest/config"
	"hn-digest/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const itemPage = `<html><body><table class="comment-tree">
<tr class="athing comtr" id="11"><td><table><tr>
  <td class="ind" indent="0"></td>
  <td class="default"><a class="hnuser">alice</a><div class="comment"><div class="commtext c00">Great write-up.</div></div></td>
</tr></table></td></tr>
<tr class="athing comtr" id="12"><td><table><tr>
  <td class="ind" indent="1"></td>
  <td class="default"><a class="hnuser">bob</a><div class="comment"><div class="commtext c00">Disagree, <i>benchmarks</i> are flawed.</div></div></td>
</tr></table></td></tr>
<tr class="athing comtr" id="13"><td><table><tr>
  <td class="ind" indent="0"></td>
  <td class="default"><a class="hnuser">carol</a><div class="comment"><div class="commtext c00"></div></div></td>
</tr></table></td></tr>
</table></body></html>`

func newHNServer(t *testing.T) *HackerNewsClient {
	t.Helper()
	items := map[string]string{
		"/item/1.json": `{"id":1,"type":"story","title":"Show HN: an LLM router","url":"https://a.example","score":120}`,
		"/item/2.json": `{"id":2,"type":"story","title":"Serverless Postgres","url":"https://b.example","score":300}`,
		"/item/3.json": `{"id":3,"type":"story","title":"Ask HN: which LLM do you use?","score":500}`,
		"/item/4.json": `{"id":4,"type":"story","title":"Gardening tips","url":"https://d.example","score":900}`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/topstories.json":
			_, _ = w.Write([]byte(`[1,2,3,4,5]`))
		case r.URL.Path == "/item" && r.URL.Query().Get("id") == "1":
			_, _ = w.Write([]byte(itemPage))
		case items[r.URL.Path] != "":
			_, _ = w.Write([]byte(items[r.URL.Path]))
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	t.Cleanup(srv.Close)

	return NewHackerNewsClient(&config.HackerNewsConfig{APIBase: srv.URL, SiteBase: srv.URL, Source: "HackerNews"})
}

func TestTopStoryIDs(t *testing.T) {
	c := newHNServer(t)
	ids, err := c.TopStoryIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids)
}

func TestStory(t *testing.T) {
	c := newHNServer(t)

	story, err := c.Story(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, story)
	assert.Equal(t, "Show HN: an LLM router", story.Title)
	assert.Equal(t, 120, story.Score)
	assert.Equal(t, "HackerNews", story.Source)
	assert.True(t, strings.HasSuffix(story.HackerNewsURL, "/item?id=1"))

	story, err = c.Story(context.Background(), 3)
	require.NoError(t, err)
	assert.Nil(t, story)
}

func TestCandidates(t *testing.T) {
	c := newHNServer(t)
	filter := Filter{Keywords: []string{"llm", " serverless", "gpt"}, MinScore: 40}

	stories, err := c.Candidates(context.Background(), []int64{1, 2, 3, 4, 5}, func(ctx context.Context, s models.Story) bool {
		return filter.Match(s)
	})
	require.NoError(t, err)
	require.Len(t, stories, 2)
	assert.Equal(t, int64(2), stories[0].ID)
	assert.Equal(t, int64(1), stories[1].ID)
}

func TestFilterMatch(t *testing.T) {
	f := Filter{Keywords: []string{"llm", "gpt"}, MinScore: 40}

	tests := []struct {
		name  string
		story models.Story
		want  bool
	}{
		{name: "keyword", story: models.Story{Title: "Fast LLM inference", URL: "u", Score: 41}, want: true},
		{name: "score equal to minimum", story: models.Story{Title: "Fast LLM inference", URL: "u", Score: 40}},
		{name: "partial word", story: models.Story{Title: "LLMs everywhere", URL: "u", Score: 100}},
		{name: "ask hn", story: models.Story{Title: "Ask HN: GPT tips?", URL: "u", Score: 100}},
		{name: "no url", story: models.Story{Title: "GPT", Score: 100}},
		{name: "no keyword", story: models.Story{Title: "Rust 2.0", URL: "u", Score: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Match(tt.story))
		})
	}
}

func TestComments(t *testing.T) {
	c := newHNServer(t)

	got, err := c.Comments(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "[Comment by alice]: Great write-up.\n  └─ [Comment by bob]: Disagree, benchmarks are flawed.", got)

	_, err = c.Comments(context.Background(), 2)
	assert.Error(t, err)
}

func TestTechCrunchArticleURLs(t *testing.T) {
	page := `<html><body>
<a href="https://techcrunch.com/2024/11/20/openai-ships-o1/">o1</a>
<a href="/2024/11/19/anthropic-raises/">relative</a>
<a href="https://techcrunch.com/2024/11/20/openai-ships-o1/#comments">dup</a>
<a href="https://techcrunch.com/wp-content/uploads/2024/11/20/hero.jpg">img</a>
<a href="https://techcrunch.com/2024/11/10/old-news/">old</a>
<a href="https://techcrunch.com/category/ai/">category</a>
</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	c, err := NewTechCrunchClient(&config.TechCrunchConfig{CategoryURL: srv.URL + "/category/ai/", Timezone: "America/Los_Angeles"})
	require.NoError(t, err)

	// 2024-11-21 03:00 UTC is still 2024-11-20 in Los Angeles
	now := time.Date(2024, 11, 21, 3, 0, 0, 0, time.UTC)
	urls, err := c.ArticleURLs(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://techcrunch.com/2024/11/20/openai-ships-o1/",
		srv.URL + "/2024/11/19/anthropic-raises/",
	}, urls)
}

func TestNewTechCrunchClientBadTimezone(t *testing.T) {
	_, err := NewTechCrunchClient(&config.TechCrunchConfig{Timezone: "Mars/Olympus"})
	assert.Error(t, err)
}
