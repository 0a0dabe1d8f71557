package enrich

import (
	"context"
	"time"
	"unicode/utf8"

	"hn-digest/internal/models"
	"hn-digest/internal/summarizer"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ContentExtractor 抓取并抽取正文
type ContentExtractor interface {
	Extract(ctx context.Context, url, topic string) models.ContentRecord
}

// ArticleSummarizer 生成多轮摘要
type ArticleSummarizer interface {
	Summarize(ctx context.Context, article string) (models.SummaryResult, error)
}

// SpeechSynthesizer 生成朗读音频，失败时返回空串
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, article string) string
}

// PodcastSynthesizer 生成双人播客音频
type PodcastSynthesizer interface {
	Synthesize(ctx context.Context, article string) (string, error)
}

// Options 流程参数
type Options struct {
	// ShortContentChars 正文短于该字符数时直接作为摘要
	ShortContentChars int
	// StoryTimeout 单篇文章的总时限，0 表示不限制
	StoryTimeout time.Duration
}

// Orchestrator 组合抽取、摘要、朗读、播客四个阶段
type Orchestrator struct {
	extractor  ContentExtractor
	summarizer ArticleSummarizer
	speech     SpeechSynthesizer
	podcast    PodcastSynthesizer
	opts       Options
}

// NewOrchestrator 创建加工流程
func NewOrchestrator(extractor ContentExtractor, summarizer ArticleSummarizer, speech SpeechSynthesizer, podcast PodcastSynthesizer, opts Options) *Orchestrator {
	return &Orchestrator{
		extractor:  extractor,
		summarizer: summarizer,
		speech:     speech,
		podcast:    podcast,
		opts:       opts,
	}
}

// Run 执行一次加工，从不返回错误；各产物互不影响，失败的产物字段留空
func (o *Orchestrator) Run(ctx context.Context, req models.EnrichmentRequest) models.EnrichmentResult {
	if o.opts.StoryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.StoryTimeout)
		defer cancel()
	}

	logger := log.WithField("url", req.URL)
	var result models.EnrichmentResult

	article := req.Content
	failed := article == models.NoContentExtracted
	if article == "" {
		record := o.extractor.Extract(ctx, req.URL, req.Topic)
		article, failed = record.Article, record.Failed
		result.Title = record.Title
	}

	if failed {
		logger.Warnf("没有可用正文，跳过后续加工: %s", article)
		result.Summary = article
		return result
	}

	var g errgroup.Group

	if req.Options.Speech {
		g.Go(func() error {
			result.SpeechURL = o.speech.Synthesize(ctx, article)
			return nil
		})
	}

	if req.Options.Podcast {
		g.Go(func() error {
			url, err := o.podcast.Synthesize(ctx, article)
			if err != nil {
				logger.Errorf("生成播客失败: %v", err)
				return nil
			}
			result.NotebookLMURL = url
			return nil
		})
	}

	if utf8.RuneCountInString(article) < o.opts.ShortContentChars {
		logger.Info("正文较短，直接作为摘要")
		result.Summary = article
	} else if req.Options.Summary {
		g.Go(func() error {
			summary, err := o.summarizer.Summarize(ctx, article)
			if err != nil {
				logger.Errorf("生成摘要失败: %v", err)
				return nil
			}
			result.Summary = summarizer.NormalizeSummary(summary.FinalSummary)
			return nil
		})
	}

	_ = g.Wait()
	return result
}
