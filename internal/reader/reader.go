package reader

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hn-digest/config"
)

// PageNotFoundMarker 出现在正文里即视为抓取失败
const PageNotFoundMarker = "Page Not Found"

// ErrPageNotFound 页面不存在
var ErrPageNotFound = errors.New(PageNotFoundMarker)

// ErrBadStatus 服务端返回非 200 状态码
var ErrBadStatus = errors.New("非 200 响应")

// Fetcher 抓取网页并返回清洗后的正文
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// FetchError 抓取失败，Body 保留服务端返回的内容以便上游展示
type FetchError struct {
	URL  string
	Body string
	Err  error
}

func (e *FetchError) Error() string {
	if e.Body != "" {
		return e.Body
	}
	return fmt.Sprintf("抓取 %s 失败: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetcher 根据配置选择抓取实现
func NewFetcher(cfg *config.ReaderConfig) Fetcher {
	switch strings.ToLower(cfg.Provider) {
	case "local":
		return NewLocalReader(cfg.Timeout, cfg.MaxChars)
	default:
		return NewJinaReader(cfg.JinaKey, cfg.Timeout, cfg.MaxChars)
	}
}

// truncate 限制正文长度，避免后续 LLM 调用超出 token 限制
func truncate(text string, maxChars int) string {
	if maxChars <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return string(runes[:maxChars])
}

// checkBody 统一处理空正文和"页面不存在"
func checkBody(url, body string) (string, error) {
	if strings.Contains(body, PageNotFoundMarker) {
		return "", &FetchError{URL: url, Body: body, Err: ErrPageNotFound}
	}
	if strings.TrimSpace(body) == "" {
		return "", nil
	}
	return body, nil
}
