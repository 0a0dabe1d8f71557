package digest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"hn-digest/internal/crawler"
	"hn-digest/internal/models"
	"hn-digest/internal/notify"
	"hn-digest/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHN struct {
	ids      []int64
	stories  []models.Story
	comments map[int64]string
	kept     []int64
}

func (f *fakeHN) TopStoryIDs(ctx context.Context) ([]int64, error) { return f.ids, nil }

func (f *fakeHN) Candidates(ctx context.Context, ids []int64, keep func(ctx context.Context, story models.Story) bool) ([]models.Story, error) {
	var out []models.Story
	for _, s := range f.stories {
		if keep(ctx, s) {
			f.kept = append(f.kept, s.ID)
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeHN) Comments(ctx context.Context, id int64) (string, error) {
	if c, ok := f.comments[id]; ok {
		return c, nil
	}
	return "", errors.New("no comments page")
}

type fakeTC struct{ urls []string }

func (f fakeTC) ArticleURLs(ctx context.Context, now time.Time) ([]string, error) { return f.urls, nil }

type fakeComments struct{}

func (fakeComments) Summarize(ctx context.Context, comments string) (string, error) {
	if comments == "" {
		return "", nil
	}
	return "- " + comments, nil
}

type fakeEnricher struct {
	mu       sync.Mutex
	requests []models.EnrichmentRequest
	results  map[string]models.EnrichmentResult
	block    chan struct{}
}

func (f *fakeEnricher) Run(ctx context.Context, req models.EnrichmentRequest) models.EnrichmentResult {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.results[req.URL]
}

type fakeRepo struct {
	existing map[string]bool
	inserted []models.Story
	updates  map[int64]map[string]any
	missing  []models.Story
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{existing: map[string]bool{}, updates: map[int64]map[string]any{}}
}

func (f *fakeRepo) Exists(ctx context.Context, column string, value any) (bool, error) {
	return f.existing[column+"="+fmt.Sprint(value)], nil
}

func (f *fakeRepo) Insert(ctx context.Context, story models.Story) error {
	f.inserted = append(f.inserted, story)
	return nil
}

func (f *fakeRepo) UpdateColumns(ctx context.Context, id int64, columns map[string]any) error {
	f.updates[id] = columns
	return nil
}

func (f *fakeRepo) ListMissing(ctx context.Context, column string, limit uint64) ([]models.Story, error) {
	return f.missing, nil
}

type fakeNotifier struct{ messages []string }

func (f *fakeNotifier) Send(ctx context.Context, message string) error {
	f.messages = append(f.messages, message)
	return nil
}

type fakeNewsletter struct {
	subjects []string
	batches  [][]models.Story
}

func (f *fakeNewsletter) Deliver(ctx context.Context, subject string, stories []models.Story) (notify.Report, error) {
	f.subjects = append(f.subjects, subject)
	f.batches = append(f.batches, stories)
	return notify.Report{Total: 1, Success: 1}, nil
}

func newTestService(hn *fakeHN, tc fakeTC, enricher *fakeEnricher, repo *fakeRepo, n *fakeNotifier) *Service {
	s := NewService(hn, tc, fakeComments{}, enricher, repo, n, Options{
		Filter:           crawler.Filter{Keywords: []string{"llm"}, MinScore: 40},
		MaxItems:         30,
		TechCrunchSource: "TechCrunch",
		HackerNewsHeader: "Top Hacker News:",
		TechCrunchHeader: "AI on TechCrunch",
	})
	s.now = func() time.Time { return time.Unix(1732000000, 0) }
	return s
}

func TestRunHackerNews(t *testing.T) {
	hn := &fakeHN{
		ids: []int64{1, 2, 3},
		stories: []models.Story{
			{ID: 1, Title: "Fast LLM inference", URL: "https://a.example", Score: 120, HackerNewsURL: "hn/1"},
			{ID: 2, Title: "Old LLM news", URL: "https://b.example", Score: 300},
			{ID: 3, Title: "Gardening", URL: "https://c.example", Score: 900},
		},
		comments: map[int64]string{1: "nice"},
	}
	repo := newFakeRepo()
	repo.existing[store.ColumnStoryID+"=2"] = true
	enricher := &fakeEnricher{results: map[string]models.EnrichmentResult{
		"https://a.example": {Summary: "Headline\n- one", SpeechURL: "s.mp3", NotebookLMURL: "p.mp3", Title: "ignored"},
	}}
	n := &fakeNotifier{}

	count, err := newTestService(hn, fakeTC{}, enricher, repo, n).RunHackerNews(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// 已存在的文章只刷新分数
	assert.Equal(t, map[string]any{store.ColumnScore: 300}, repo.updates[2])

	require.Len(t, enricher.requests, 1)
	assert.Equal(t, models.EnrichmentRequest{Topic: "Fast LLM inference", URL: "https://a.example", Options: models.AllArtifacts()}, enricher.requests[0])

	require.Len(t, repo.inserted, 1)
	got := repo.inserted[0]
	assert.Equal(t, "Headline\n- one", got.Summary)
	assert.Equal(t, "- nice", got.CommentsSummary)
	assert.Equal(t, "s.mp3", got.SpeechURL)
	assert.Equal(t, "p.mp3", got.NotebookLMURL)
	assert.Equal(t, "Fast LLM inference", got.Title)

	require.Len(t, n.messages, 2)
	assert.True(t, strings.HasPrefix(n.messages[0], "Top Hacker News:\n"))
	assert.Equal(t, notify.Footer, n.messages[1])
}

func TestRunHackerNewsNoCandidates(t *testing.T) {
	n := &fakeNotifier{}
	count, err := newTestService(&fakeHN{ids: []int64{1}}, fakeTC{}, &fakeEnricher{}, newFakeRepo(), n).RunHackerNews(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, n.messages)
}

func TestRunTechCrunch(t *testing.T) {
	tc := fakeTC{urls: []string{"https://tc/seen", "https://tc/new", "https://tc/empty", "https://tc/none"}}
	repo := newFakeRepo()
	repo.existing[store.ColumnURL+"=https://tc/seen"] = true
	enricher := &fakeEnricher{results: map[string]models.EnrichmentResult{
		"https://tc/new":  {Summary: "\"(OpenAI ships o1)\"\n- faster"},
		"https://tc/none": {Summary: models.NoRelevantContent},
	}}
	n := &fakeNotifier{}

	count, err := newTestService(&fakeHN{}, tc, enricher, repo, n).RunTechCrunch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	assert.Len(t, enricher.requests, 3)
	assert.Equal(t, "https://tc/new", enricher.requests[0].Topic)

	require.Len(t, repo.inserted, 1)
	assert.Equal(t, "OpenAI ships o1", repo.inserted[0].Title)
	assert.Equal(t, "TechCrunch", repo.inserted[0].Source)
	assert.Equal(t, time.Unix(1732000000, 0).UnixMicro(), repo.inserted[0].ID)

	require.Len(t, n.messages, 2)
	assert.Equal(t, "AI on TechCrunch\n<https://tc/new>\n\"(OpenAI ships o1)\"\n- faster", n.messages[0])
	assert.Equal(t, notify.Footer, n.messages[1])
}

func TestRunMailsNewsletter(t *testing.T) {
	hn := &fakeHN{
		stories:  []models.Story{{ID: 1, Title: "Fast LLM inference", URL: "https://a.example", Score: 120}},
		comments: map[int64]string{1: "nice"},
	}
	tc := fakeTC{urls: []string{"https://tc/new", "https://tc/none"}}
	enricher := &fakeEnricher{results: map[string]models.EnrichmentResult{
		"https://a.example": {Summary: "Headline\n- one", SpeechURL: "s.mp3"},
		"https://tc/new":    {Summary: "OpenAI ships o1\n- faster"},
	}}
	mailer := &fakeNewsletter{}
	repo := newFakeRepo()
	s := newTestService(hn, tc, enricher, repo, &fakeNotifier{})
	s.SetNewsletter(mailer)

	_, err := s.RunHackerNews(context.Background())
	require.NoError(t, err)
	_, err = s.RunTechCrunch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Top Hacker News:", "AI on TechCrunch"}, mailer.subjects)
	require.Len(t, mailer.batches, 2)
	require.Len(t, mailer.batches[0], 1)
	assert.Equal(t, "- nice", mailer.batches[0][0].CommentsSummary)
	assert.Equal(t, "s.mp3", mailer.batches[0][0].SpeechURL)
	require.Len(t, mailer.batches[1], 1)
	assert.Equal(t, "OpenAI ships o1", mailer.batches[1][0].Title)

	// 没有新文章时不发邮件
	repo.existing[store.ColumnURL+"=https://tc/new"] = true
	count, err := s.RunTechCrunch(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Len(t, mailer.subjects, 2)
}

func TestBackfill(t *testing.T) {
	repo := newFakeRepo()
	repo.missing = []models.Story{
		{ID: 1, Title: "HN story", URL: "https://a.example", HackerNewsURL: "hn/1"},
		{ID: 2, URL: "https://tc/b"},
	}
	enricher := &fakeEnricher{results: map[string]models.EnrichmentResult{
		"https://a.example": {SpeechURL: "s.mp3", Summary: "should not be written"},
	}}

	updated, err := newTestService(&fakeHN{}, fakeTC{}, enricher, repo, nil).Backfill(context.Background(), "speech", 10)
	require.NoError(t, err)
	assert.Equal(t, 1, updated)
	assert.Equal(t, map[int64]map[string]any{1: {store.ColumnSpeechURL: "s.mp3"}}, repo.updates)

	require.Len(t, enricher.requests, 2)
	assert.Equal(t, "HN story", enricher.requests[0].Topic)
	assert.Equal(t, "https://tc/b", enricher.requests[1].Topic)
	assert.Equal(t, models.EnrichmentOptions{Speech: true}, enricher.requests[0].Options)

	_, err = newTestService(&fakeHN{}, fakeTC{}, enricher, repo, nil).Backfill(context.Background(), "video", 10)
	assert.ErrorIs(t, err, ErrUnknownArtifact)
}

func TestTriggerRejectsConcurrentRuns(t *testing.T) {
	tc := fakeTC{urls: []string{"https://tc/new"}}
	enricher := &fakeEnricher{block: make(chan struct{}), results: map[string]models.EnrichmentResult{}}
	s := newTestService(&fakeHN{}, tc, enricher, newFakeRepo(), nil)

	require.NoError(t, s.Trigger(JobTechCrunch))
	assert.True(t, s.Status().Running)
	assert.Equal(t, JobTechCrunch, s.Status().Job)

	assert.ErrorIs(t, s.Trigger(JobHackerNews), ErrRunning)
	_, err := s.RunHackerNews(context.Background())
	assert.ErrorIs(t, err, ErrRunning)
	assert.ErrorIs(t, s.Trigger("weather"), ErrUnknownJob)

	close(enricher.block)
	assert.Eventually(t, func() bool { return !s.Status().Running }, time.Second, 5*time.Millisecond)
	assert.Empty(t, s.Status().LastError)
}

func TestTitleFromSummary(t *testing.T) {
	assert.Equal(t, "OpenAI ships o1", TitleFromSummary("\"OpenAI ships o1\"\n- x"))
	assert.Equal(t, "Plain", TitleFromSummary("Plain"))
	assert.Equal(t, "", TitleFromSummary(""))
}
