package store

import (
	"context"
	"errors"
	"testing"

	"hn-digest/internal/models"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) (*StoryRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewStoryRepository(mock, "stories"), mock
}

func TestExists(t *testing.T) {
	repo, mock := newRepo(t)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT 1 FROM stories WHERE story_id = \$1`).
		WithArgs(int64(42)).
		WillReturnRows(pgxmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(`SELECT 1 FROM stories WHERE url = \$1`).
		WithArgs("https://example.com").
		WillReturnRows(pgxmock.NewRows([]string{"?column?"}))

	ok, err := repo.Exists(ctx, ColumnStoryID, int64(42))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists(ctx, ColumnURL, "https://example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.Exists(ctx, "password; DROP TABLE", "x")
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert(t *testing.T) {
	repo, mock := newRepo(t)
	story := models.Story{
		ID:            7,
		Title:         "Serverless Postgres",
		URL:           "https://b.example",
		Score:         300,
		HackerNewsURL: "https://news.ycombinator.com/item?id=7",
		Summary:       "summary",
		Source:        "HackerNews",
		SpeechURL:     "https://cdn/s.mp3",
	}

	mock.ExpectExec(`INSERT INTO stories \(story_id,title,url,score,hn_url,summary,comments_summary,source,content,speech_url,notebooklm_url\) VALUES .* ON CONFLICT \(story_id\) DO NOTHING`).
		WithArgs(int64(7), "Serverless Postgres", "https://b.example", 300, "https://news.ycombinator.com/item?id=7",
			"summary", "", "HackerNews", "", "https://cdn/s.mp3", "").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Insert(context.Background(), story))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertError(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectExec(`INSERT INTO stories`).WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).WillReturnError(errors.New("connection reset"))

	err := repo.Insert(context.Background(), models.Story{ID: 1})
	assert.ErrorContains(t, err, "connection reset")
}

func TestUpdateColumns(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec(`UPDATE stories SET speech_url = \$1 WHERE story_id = \$2`).
		WithArgs("https://cdn/s.mp3", int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.UpdateColumns(context.Background(), 7, map[string]any{ColumnSpeechURL: "https://cdn/s.mp3"}))
	assert.NoError(t, repo.UpdateColumns(context.Background(), 7, nil))
	assert.Error(t, repo.UpdateColumns(context.Background(), 7, map[string]any{ColumnStoryID: 8}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListMissing(t *testing.T) {
	repo, mock := newRepo(t)

	rows := pgxmock.NewRows([]string{"story_id", "title", "url", "score", "hn_url", "source"}).
		AddRow(int64(1), "First", "https://a.example", 120, "https://news.ycombinator.com/item?id=1", "HackerNews").
		AddRow(int64(2), "Second", "https://b.example", 0, "", "TechCrunch")
	mock.ExpectQuery(`FROM stories WHERE \(notebooklm_url IS NULL OR notebooklm_url = \$1\) ORDER BY created_at DESC LIMIT 10`).
		WithArgs("").
		WillReturnRows(rows)

	stories, err := repo.ListMissing(context.Background(), ColumnNotebookLMURL, 10)
	require.NoError(t, err)
	require.Len(t, stories, 2)
	assert.Equal(t, models.Story{ID: 1, Title: "First", URL: "https://a.example", Score: 120, HackerNewsURL: "https://news.ycombinator.com/item?id=1", Source: "HackerNews"}, stories[0])
	assert.Equal(t, "TechCrunch", stories[1].Source)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS "stories"`).WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	require.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
