package app

import (
	"context"
	"errors"

	"hn-digest/config"
	"hn-digest/internal/ai"
	"hn-digest/internal/crawler"
	"hn-digest/internal/digest"
	"hn-digest/internal/enrich"
	"hn-digest/internal/notify"
	"hn-digest/internal/podcast"
	"hn-digest/internal/reader"
	"hn-digest/internal/retry"
	"hn-digest/internal/storage"
	"hn-digest/internal/store"
	"hn-digest/internal/summarizer"
	"hn-digest/internal/tts"

	"github.com/jackc/pgx/v5/pgxpool"
)

// 推送消息的标题
const (
	HackerNewsHeader = "Top Hacker News:"
	TechCrunchHeader = "AI on TechCrunch"
)

// App 持有按配置组装好的各个组件
type App struct {
	Config   *config.Config
	LLM      *ai.Client
	Storage  *storage.MinioClient
	Speech   tts.Service
	Enricher *enrich.Orchestrator
	Digest   *digest.Service

	pool *pgxpool.Pool
}

// New 组装文章加工流程，不连接数据库
func New(cfg *config.Config) (*App, error) {
	llm, err := ai.NewClient(&cfg.LLM)
	if err != nil {
		return nil, err
	}

	minioClient, err := storage.NewMinioClient(&cfg.MinIO)
	if err != nil {
		return nil, err
	}

	speech, err := tts.Factory(&cfg.TTS)
	if err != nil {
		return nil, err
	}
	voices := tts.VoicesFromConfig(&cfg.TTS)

	narrator := tts.NewNarrator(speech, minioClient, voices.Narrator, cfg.MinIO.CacheDir, cfg.Pipeline.MinSpeechChars)
	dialogue := podcast.NewSynthesizer(llm, speech, voices, podcast.NewJoiner(), minioClient, podcast.Options{
		Concurrency: cfg.Pipeline.PodcastConcurrency,
		MinChars:    cfg.Pipeline.MinPodcastChars,
		CacheDir:    cfg.MinIO.CacheDir,
	})

	orchestrator := enrich.NewOrchestrator(
		summarizer.NewExtractor(reader.NewFetcher(&cfg.Reader), llm),
		summarizer.NewSummarizer(llm, retry.NewPolicy(cfg.Pipeline.RetryDelays...)),
		narrator,
		dialogue,
		enrich.Options{
			ShortContentChars: cfg.Pipeline.ShortContentChars,
			StoryTimeout:      cfg.Pipeline.StoryTimeout,
		},
	)

	return &App{
		Config:   cfg,
		LLM:      llm,
		Storage:  minioClient,
		Speech:   speech,
		Enricher: orchestrator,
	}, nil
}

// OpenDigest 连接数据库并组装批处理服务
func (a *App) OpenDigest(ctx context.Context) error {
	cfg := a.Config
	if cfg.Database.DSN == "" {
		return errors.New("未配置 DATABASE_URL")
	}

	tc, err := crawler.NewTechCrunchClient(&cfg.TechCrunch)
	if err != nil {
		return err
	}

	pool, err := store.Open(ctx, cfg.Database.DSN)
	if err != nil {
		return err
	}
	repo := store.NewStoryRepository(pool, cfg.Database.Table)
	if err := repo.EnsureSchema(ctx); err != nil {
		pool.Close()
		return err
	}
	a.pool = pool

	var newsletter *notify.Newsletter
	if cfg.Email.Enabled() {
		subscribers := store.NewSubscriberRepository(pool, cfg.Email.SubscribersTable)
		if err := subscribers.EnsureSchema(ctx); err != nil {
			pool.Close()
			return err
		}
		newsletter = notify.NewNewsletter(notify.NewResend(cfg.Email.APIBase, cfg.Email.ResendAPIKey), subscribers, cfg.Email)
	}

	a.Digest = digest.NewService(
		crawler.NewHackerNewsClient(&cfg.HackerNews),
		tc,
		summarizer.NewCommentsSummarizer(a.LLM),
		a.Enricher,
		repo,
		notify.NewDiscord(cfg.Discord.Webhooks),
		digest.Options{
			Filter:           crawler.Filter{Keywords: cfg.HackerNews.Keywords, MinScore: cfg.HackerNews.MinScore},
			MaxItems:         cfg.HackerNews.MaxItems,
			TechCrunchSource: cfg.TechCrunch.Source,
			HackerNewsHeader: HackerNewsHeader,
			TechCrunchHeader: TechCrunchHeader,
		},
	)
	if newsletter != nil {
		a.Digest.SetNewsletter(newsletter)
	}
	return nil
}

// Close 释放数据库连接
func (a *App) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}
