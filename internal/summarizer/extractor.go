package summarizer

import (
	"context"
	"fmt"
	"strings"

	"hn-digest/internal/ai"
	"hn-digest/internal/models"
	"hn-digest/internal/reader"

	log "github.com/sirupsen/logrus"
)

// extractErrorPrefix 抽取阶段调用模型失败时写入 Article 的前缀
const extractErrorPrefix = "Error extracting content: "

// Extractor 抓取网页并让模型抽取与主题相关的正文
type Extractor struct {
	fetcher reader.Fetcher
	llm     ai.Completer
}

// NewExtractor 创建正文抽取器
func NewExtractor(fetcher reader.Fetcher, llm ai.Completer) *Extractor {
	return &Extractor{fetcher: fetcher, llm: llm}
}

// Extract 抽取正文，从不返回错误：失败时 Failed 为 true，Article 为错误信息或哨兵值
func (e *Extractor) Extract(ctx context.Context, url, topic string) models.ContentRecord {
	logger := log.WithField("url", url)

	text, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		logger.Warnf("抓取网页失败: %v", err)
		return models.ContentRecord{Article: err.Error(), Failed: true}
	}
	if text == "" {
		logger.Warn("抓取结果为空")
		return models.ContentRecord{Article: models.NoContentExtracted, Failed: true}
	}

	if topic == "" {
		topic = url
	}

	resp := ai.Call(ctx, e.llm, ai.ExtractContentSystemPrompt, fmt.Sprintf(ai.ExtractContentUserPrompt, text, topic))
	if ai.IsCallError(resp) {
		return models.ContentRecord{Article: extractErrorPrefix + resp, Failed: true}
	}

	record := models.ContentRecord{Article: ai.ExtractTagged(resp, "extracted_content")}
	if ai.HasTag(resp, "title") {
		record.Title = ai.ExtractTagged(resp, "title")
	}

	if record.Article == "" || strings.HasPrefix(record.Article, models.NoRelevantContent) {
		logger.Info("模型未找到相关内容")
		record.Article = models.NoContentExtracted
		record.Failed = true
		return record
	}

	logger.WithField("title", record.Title).Infof("正文抽取完成，长度 %d", len(record.Article))
	return record
}
