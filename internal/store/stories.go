package store

import (
	"context"
	"errors"
	"fmt"

	"hn-digest/internal/models"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// 可按列查询/更新的字段
const (
	ColumnStoryID         = "story_id"
	ColumnURL             = "url"
	ColumnScore           = "score"
	ColumnSummary         = "summary"
	ColumnCommentsSummary = "comments_summary"
	ColumnSpeechURL       = "speech_url"
	ColumnNotebookLMURL   = "notebooklm_url"
	ColumnSource          = "source"
)

var knownColumns = map[string]bool{
	ColumnStoryID:         true,
	ColumnURL:             true,
	ColumnScore:           true,
	"title":               true,
	"hn_url":              true,
	ColumnSummary:         true,
	ColumnCommentsSummary: true,
	ColumnSource:          true,
	"content":             true,
	ColumnSpeechURL:       true,
	ColumnNotebookLMURL:   true,
}

var storyColumns = []string{
	ColumnStoryID, "title", ColumnURL, ColumnScore, "hn_url", ColumnSummary,
	ColumnCommentsSummary, ColumnSource, "content", ColumnSpeechURL, ColumnNotebookLMURL,
}

// DB 是 pgxpool.Pool 的子集
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// StoryRepository 存储已处理的文章
type StoryRepository struct {
	db    DB
	table string
	sql   sq.StatementBuilderType
}

// Open 连接数据库
func Open(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("数据库不可用: %w", err)
	}
	return pool, nil
}

// NewStoryRepository 创建文章仓库
func NewStoryRepository(db DB, table string) *StoryRepository {
	return &StoryRepository{
		db:    db,
		table: table,
		sql:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// EnsureSchema 表不存在时创建
func (r *StoryRepository) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	story_id BIGINT PRIMARY KEY,
	title TEXT NOT NULL DEFAULT '',
	url TEXT NOT NULL DEFAULT '',
	score INTEGER NOT NULL DEFAULT 0,
	hn_url TEXT,
	summary TEXT,
	comments_summary TEXT,
	source TEXT NOT NULL DEFAULT '',
	content TEXT,
	speech_url TEXT,
	notebooklm_url TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`, pgx.Identifier{r.table}.Sanitize())
	if _, err := r.db.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("创建表失败: %w", err)
	}
	return nil
}

// Exists 判断某列等于 value 的记录是否存在
func (r *StoryRepository) Exists(ctx context.Context, column string, value any) (bool, error) {
	if !knownColumns[column] {
		return false, fmt.Errorf("未知列: %s", column)
	}

	query, args, err := r.sql.Select("1").From(r.table).Where(sq.Eq{column: value}).Limit(1).ToSql()
	if err != nil {
		return false, err
	}

	var one int
	err = r.db.QueryRow(ctx, query, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("查询 %s 失败: %w", column, err)
	}
	return true, nil
}

// Insert 写入一篇文章，story_id 已存在时忽略
func (r *StoryRepository) Insert(ctx context.Context, story models.Story) error {
	query, args, err := r.sql.Insert(r.table).
		Columns(storyColumns...).
		Values(story.ID, story.Title, story.URL, story.Score, story.HackerNewsURL, story.Summary,
			story.CommentsSummary, story.Source, story.Content, story.SpeechURL, story.NotebookLMURL).
		Suffix("ON CONFLICT (story_id) DO NOTHING").
		ToSql()
	if err != nil {
		return err
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("保存文章 %d 失败: %w", story.ID, err)
	}
	log.WithField("story_id", story.ID).Debug("文章已保存")
	return nil
}

// UpdateColumns 只更新给定的列
func (r *StoryRepository) UpdateColumns(ctx context.Context, id int64, columns map[string]any) error {
	if len(columns) == 0 {
		return nil
	}
	for column := range columns {
		if !knownColumns[column] || column == ColumnStoryID {
			return fmt.Errorf("不可更新的列: %s", column)
		}
	}

	query, args, err := r.sql.Update(r.table).SetMap(columns).Where(sq.Eq{ColumnStoryID: id}).ToSql()
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("更新文章 %d 失败: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		log.WithField("story_id", id).Warn("更新未命中任何记录")
	}
	return nil
}

// ListMissing 列出某列为空的文章，最新的优先
func (r *StoryRepository) ListMissing(ctx context.Context, column string, limit uint64) ([]models.Story, error) {
	if !knownColumns[column] {
		return nil, fmt.Errorf("未知列: %s", column)
	}

	query, args, err := r.sql.Select(
		ColumnStoryID, "title", ColumnURL, ColumnScore,
		"COALESCE(hn_url, '')", ColumnSource,
	).
		From(r.table).
		Where(sq.Or{sq.Eq{column: nil}, sq.Eq{column: ""}}).
		OrderBy("created_at DESC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("查询缺少 %s 的文章失败: %w", column, err)
	}
	defer rows.Close()

	var stories []models.Story
	for rows.Next() {
		var s models.Story
		if err := rows.Scan(&s.ID, &s.Title, &s.URL, &s.Score, &s.HackerNewsURL, &s.Source); err != nil {
			return nil, fmt.Errorf("读取文章失败: %w", err)
		}
		stories = append(stories, s)
	}
	return stories, rows.Err()
}
