package digest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"hn-digest/internal/crawler"
	"hn-digest/internal/models"
	"hn-digest/internal/notify"
	"hn-digest/internal/store"

	log "github.com/sirupsen/logrus"
)

// 任务名称
const (
	JobHackerNews = "hackernews"
	JobTechCrunch = "techcrunch"
)

var (
	// ErrRunning 已有任务在执行
	ErrRunning = errors.New("已有任务在执行")
	// ErrUnknownJob 未知任务
	ErrUnknownJob = errors.New("未知任务")
	// ErrUnknownArtifact 未知的补全产物
	ErrUnknownArtifact = errors.New("未知产物，可选 summary, speech, podcast")
)

// Enricher 文章加工流程
type Enricher interface {
	Run(ctx context.Context, req models.EnrichmentRequest) models.EnrichmentResult
}

// HackerNewsSource Hacker News 数据源
type HackerNewsSource interface {
	TopStoryIDs(ctx context.Context) ([]int64, error)
	Candidates(ctx context.Context, ids []int64, keep func(ctx context.Context, story models.Story) bool) ([]models.Story, error)
	Comments(ctx context.Context, id int64) (string, error)
}

// TechCrunchSource TechCrunch 数据源
type TechCrunchSource interface {
	ArticleURLs(ctx context.Context, now time.Time) ([]string, error)
}

// CommentsSummarizer 评论总结
type CommentsSummarizer interface {
	Summarize(ctx context.Context, comments string) (string, error)
}

// Repository 文章存储
type Repository interface {
	Exists(ctx context.Context, column string, value any) (bool, error)
	Insert(ctx context.Context, story models.Story) error
	UpdateColumns(ctx context.Context, id int64, columns map[string]any) error
	ListMissing(ctx context.Context, column string, limit uint64) ([]models.Story, error)
}

// Notifier 消息推送
type Notifier interface {
	Send(ctx context.Context, message string) error
}

// Newsletter 邮件简报
type Newsletter interface {
	Deliver(ctx context.Context, subject string, stories []models.Story) (notify.Report, error)
}

// Options 批处理参数
type Options struct {
	Filter           crawler.Filter
	MaxItems         int
	TechCrunchSource string
	HackerNewsHeader string
	TechCrunchHeader string
}

// Status 当前/最近一次任务的状态
type Status struct {
	Running   bool      `json:"running"`
	Job       string    `json:"job,omitempty"`
	StartedAt time.Time `json:"startedAt,omitempty"`
	LastRunAt time.Time `json:"lastRunAt,omitempty"`
	LastCount int       `json:"lastCount"`
	LastError string    `json:"lastError,omitempty"`
}

// Service 定时抓取、加工、推送、入库
type Service struct {
	hn       HackerNewsSource
	tc       TechCrunchSource
	comments CommentsSummarizer
	enricher Enricher
	repo     Repository
	notifier Notifier
	mailer   Newsletter
	opts     Options
	now      func() time.Time

	mu     sync.Mutex
	status Status
}

// NewService 创建批处理服务；notifier 可以为 nil
func NewService(hn HackerNewsSource, tc TechCrunchSource, comments CommentsSummarizer, enricher Enricher, repo Repository, notifier Notifier, opts Options) *Service {
	return &Service{
		hn:       hn,
		tc:       tc,
		comments: comments,
		enricher: enricher,
		repo:     repo,
		notifier: notifier,
		opts:     opts,
		now:      time.Now,
	}
}

// SetNewsletter 每次任务结束后把本次的文章发成邮件简报
func (s *Service) SetNewsletter(n Newsletter) {
	s.mailer = n
}

// Status 返回任务状态
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Trigger 在后台启动任务，已有任务执行时返回 ErrRunning
func (s *Service) Trigger(job string) error {
	run, err := s.job(job)
	if err != nil {
		return err
	}
	if err := s.begin(job); err != nil {
		return err
	}
	go func() {
		n, err := run(context.Background())
		s.finish(n, err)
	}()
	return nil
}

// RunHackerNews 处理 Hacker News 热门文章，返回处理的篇数
func (s *Service) RunHackerNews(ctx context.Context) (int, error) {
	return s.runExclusive(ctx, JobHackerNews, s.runHackerNews)
}

// RunTechCrunch 处理 TechCrunch 新文章，返回处理的篇数
func (s *Service) RunTechCrunch(ctx context.Context) (int, error) {
	return s.runExclusive(ctx, JobTechCrunch, s.runTechCrunch)
}

// Backfill 为缺少某个产物的文章补齐该产物，只更新对应的列
func (s *Service) Backfill(ctx context.Context, artifact string, limit uint64) (int, error) {
	column, opts, err := artifactColumn(artifact)
	if err != nil {
		return 0, err
	}
	return s.runExclusive(ctx, "backfill-"+artifact, func(ctx context.Context) (int, error) {
		return s.backfill(ctx, column, opts, limit)
	})
}

func (s *Service) job(name string) (func(ctx context.Context) (int, error), error) {
	switch name {
	case JobHackerNews:
		return s.runHackerNews, nil
	case JobTechCrunch:
		return s.runTechCrunch, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
}

func (s *Service) runExclusive(ctx context.Context, job string, run func(ctx context.Context) (int, error)) (int, error) {
	if err := s.begin(job); err != nil {
		return 0, err
	}
	n, err := run(ctx)
	s.finish(n, err)
	return n, err
}

func (s *Service) begin(job string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.Running {
		return fmt.Errorf("%w: %s", ErrRunning, s.status.Job)
	}
	s.status.Running = true
	s.status.Job = job
	s.status.StartedAt = s.now()
	return nil
}

func (s *Service) finish(n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.Running = false
	s.status.LastRunAt = s.now()
	s.status.LastCount = n
	s.status.LastError = ""
	if err != nil {
		s.status.LastError = err.Error()
	}
	log.WithFields(log.Fields{"job": s.status.Job, "count": n}).Info("任务结束")
}

func (s *Service) runHackerNews(ctx context.Context) (int, error) {
	ids, err := s.hn.TopStoryIDs(ctx)
	if err != nil {
		return 0, err
	}
	if s.opts.MaxItems > 0 && len(ids) > s.opts.MaxItems {
		ids = ids[:s.opts.MaxItems]
	}

	stories, err := s.hn.Candidates(ctx, ids, s.keepNewStory)
	if err != nil {
		return 0, err
	}
	if len(stories) == 0 {
		log.Warn("没有找到新文章")
		return 0, nil
	}

	processed := make([]models.Story, 0, len(stories))
	for i, story := range stories {
		header := ""
		if i == 0 {
			header = s.opts.HackerNewsHeader
		}
		processed = append(processed, s.processHackerNewsStory(ctx, story, header))
	}
	s.notify(ctx, notify.Footer)
	s.mail(ctx, s.opts.HackerNewsHeader, processed)
	return len(stories), nil
}

// keepNewStory 已入库的文章只刷新分数，新文章再按关键词和分数过滤
func (s *Service) keepNewStory(ctx context.Context, story models.Story) bool {
	exists, err := s.repo.Exists(ctx, store.ColumnStoryID, story.ID)
	if err != nil {
		log.Warnf("检查文章 %d 是否存在失败: %v", story.ID, err)
		return false
	}
	if exists {
		if err := s.repo.UpdateColumns(ctx, story.ID, map[string]any{store.ColumnScore: story.Score}); err != nil {
			log.Warnf("刷新文章 %d 分数失败: %v", story.ID, err)
		}
		return false
	}
	return s.opts.Filter.Match(story)
}

func (s *Service) processHackerNewsStory(ctx context.Context, story models.Story, header string) models.Story {
	logger := log.WithFields(log.Fields{"story_id": story.ID, "title": story.Title})
	logger.Info("开始处理文章")

	comments, err := s.hn.Comments(ctx, story.ID)
	if err != nil {
		logger.Warnf("获取评论失败: %v", err)
	}
	if story.CommentsSummary, err = s.comments.Summarize(ctx, comments); err != nil {
		logger.Warnf("%v", err)
	}

	result := s.enricher.Run(ctx, models.EnrichmentRequest{
		Topic:   story.Title,
		URL:     story.URL,
		Options: models.AllArtifacts(),
	})
	result.Apply(&story)

	s.notify(ctx, notify.FormatStory(story, header))
	if err := s.repo.Insert(ctx, story); err != nil {
		logger.Errorf("%v", err)
	}
	return story
}

func (s *Service) runTechCrunch(ctx context.Context) (int, error) {
	urls, err := s.tc.ArticleURLs(ctx, s.now())
	if err != nil {
		return 0, err
	}

	var sent []models.Story
	for _, url := range urls {
		exists, err := s.repo.Exists(ctx, store.ColumnURL, url)
		if err != nil {
			log.Warnf("检查 %s 是否存在失败: %v", url, err)
			continue
		}
		if exists {
			continue
		}

		result := s.enricher.Run(ctx, models.EnrichmentRequest{
			Topic:   url,
			URL:     url,
			Options: models.AllArtifacts(),
		})
		if !usableSummary(result.Summary) {
			log.WithField("url", url).Infof("没有可用摘要，跳过: %s", result.Summary)
			continue
		}

		story := models.Story{
			ID:     s.now().UnixMicro(),
			URL:    url,
			Title:  TitleFromSummary(result.Summary),
			Source: s.opts.TechCrunchSource,
		}
		result.Apply(&story)

		header := ""
		if len(sent) == 0 {
			header = s.opts.TechCrunchHeader
		}
		s.notify(ctx, notify.FormatLink(url, story.Summary, header))
		if err := s.repo.Insert(ctx, story); err != nil {
			log.WithField("url", url).Errorf("%v", err)
		}
		sent = append(sent, story)
	}

	if len(sent) > 0 {
		s.notify(ctx, notify.Footer)
		s.mail(ctx, s.opts.TechCrunchHeader, sent)
	}
	return len(sent), nil
}

func (s *Service) backfill(ctx context.Context, column string, opts models.EnrichmentOptions, limit uint64) (int, error) {
	stories, err := s.repo.ListMissing(ctx, column, limit)
	if err != nil {
		return 0, err
	}
	log.Infof("共有 %d 篇文章缺少 %s", len(stories), column)

	updated := 0
	for _, story := range stories {
		topic := story.URL
		if story.HackerNewsURL != "" {
			topic = story.Title
		}
		result := s.enricher.Run(ctx, models.EnrichmentRequest{Topic: topic, URL: story.URL, Options: opts})

		value := artifactValue(column, result)
		if value == "" || (column == store.ColumnSummary && !usableSummary(value)) {
			log.WithField("story_id", story.ID).Warnf("未能生成 %s", column)
			continue
		}
		if err := s.repo.UpdateColumns(ctx, story.ID, map[string]any{column: value}); err != nil {
			log.Errorf("%v", err)
			continue
		}
		updated++
	}
	return updated, nil
}

func (s *Service) notify(ctx context.Context, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, message); err != nil {
		log.Warnf("推送失败: %v", err)
	}
}

func (s *Service) mail(ctx context.Context, subject string, stories []models.Story) {
	if s.mailer == nil || len(stories) == 0 {
		return
	}
	report, err := s.mailer.Deliver(ctx, subject, stories)
	if err != nil {
		log.Warnf("邮件简报发送失败: %v", err)
		return
	}
	if report.Failed > 0 {
		log.Warnf("邮件简报 %d/%d 封发送失败", report.Failed, report.Total)
	}
}

func artifactColumn(artifact string) (string, models.EnrichmentOptions, error) {
	switch artifact {
	case "summary":
		return store.ColumnSummary, models.EnrichmentOptions{Summary: true}, nil
	case "speech":
		return store.ColumnSpeechURL, models.EnrichmentOptions{Speech: true}, nil
	case "podcast":
		return store.ColumnNotebookLMURL, models.EnrichmentOptions{Podcast: true}, nil
	default:
		return "", models.EnrichmentOptions{}, fmt.Errorf("%w: %s", ErrUnknownArtifact, artifact)
	}
}

func artifactValue(column string, result models.EnrichmentResult) string {
	switch column {
	case store.ColumnSummary:
		return result.Summary
	case store.ColumnSpeechURL:
		return result.SpeechURL
	case store.ColumnNotebookLMURL:
		return result.NotebookLMURL
	}
	return ""
}

// usableSummary 排除空摘要和"无内容"类哨兵值
func usableSummary(summary string) bool {
	return summary != "" && summary != models.NoRelevantContent && summary != models.NoContentExtracted
}

// TitleFromSummary 取摘要首行作为标题，去掉包裹的引号和括号
func TitleFromSummary(summary string) string {
	title, _, _ := strings.Cut(summary, "\n")
	title = strings.TrimSpace(title)
	title = strings.Trim(title, `"`)
	title = strings.Trim(title, "()")
	title = strings.Trim(title, "'")
	return strings.TrimSpace(title)
}
