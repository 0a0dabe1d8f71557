package reader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const defaultJinaBaseURL = "https://r.jina.ai/"

// JinaReader 通过 r.jina.ai 获取网页正文
type JinaReader struct {
	baseURL  string
	apiKey   string
	maxChars int
	client   *http.Client
}

// NewJinaReader 创建 Jina Reader 客户端
func NewJinaReader(apiKey string, timeout time.Duration, maxChars int) *JinaReader {
	return &JinaReader{
		baseURL:  defaultJinaBaseURL,
		apiKey:   apiKey,
		maxChars: maxChars,
		client:   &http.Client{Timeout: timeout},
	}
}

// Fetch 获取网页正文
func (j *JinaReader) Fetch(ctx context.Context, url string) (string, error) {
	target := j.baseURL + url
	log.Printf("调用 Jina Reader: %s", target)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", &FetchError{URL: url, Err: fmt.Errorf("创建请求失败: %w", err)}
	}
	req.Header.Set("X-Return-Format", "text")
	if j.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+j.apiKey)
	}

	resp, err := j.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: url, Err: fmt.Errorf("发送请求失败: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &FetchError{URL: url, Err: fmt.Errorf("读取响应失败: %w", err)}
	}

	text := string(body)
	if resp.StatusCode != http.StatusOK {
		log.Warnf("Jina Reader 返回状态码 %d: %s", resp.StatusCode, url)
		if strings.Contains(text, PageNotFoundMarker) {
			return checkBody(url, truncate(text, j.maxChars))
		}
		return "", &FetchError{URL: url, Err: fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)}
	}
	return checkBody(url, truncate(text, j.maxChars))
}
