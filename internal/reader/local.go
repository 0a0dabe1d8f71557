package reader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strings"
	"time"

	"codeberg.org/readeck/go-readability/v2"
	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
)

// LocalReader 直接抓取网页并用 readability 提取正文
type LocalReader struct {
	maxChars int
	client   *http.Client
}

// NewLocalReader 创建本地正文抽取器
func NewLocalReader(timeout time.Duration, maxChars int) *LocalReader {
	return &LocalReader{
		maxChars: maxChars,
		client:   &http.Client{Timeout: timeout},
	}
}

// Fetch 获取网页正文，首行为页面标题
func (l *LocalReader) Fetch(ctx context.Context, url string) (string, error) {
	pageURL, err := neturl.Parse(url)
	if err != nil {
		return "", &FetchError{URL: url, Err: fmt.Errorf("解析URL失败: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &FetchError{URL: url, Err: fmt.Errorf("创建请求失败: %w", err)}
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml")

	resp, err := l.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: url, Err: fmt.Errorf("发送请求失败: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", &FetchError{URL: url, Body: PageNotFoundMarker, Err: ErrPageNotFound}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &FetchError{URL: url, Err: fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &FetchError{URL: url, Err: fmt.Errorf("读取响应失败: %w", err)}
	}

	title := pageTitle(raw)
	article, err := readability.FromReader(bytes.NewReader(raw), pageURL)
	if err != nil {
		return "", &FetchError{URL: url, Err: fmt.Errorf("解析正文失败: %w", err)}
	}

	var text strings.Builder
	if err := article.RenderText(&text); err != nil {
		return "", &FetchError{URL: url, Err: fmt.Errorf("渲染正文失败: %w", err)}
	}

	body := strings.TrimSpace(text.String())
	if title != "" && body != "" {
		body = "Title: " + title + "\n\n" + body
	}
	log.Debugf("本地抽取完成: %s，长度 %d", url, len(body))
	return checkBody(url, truncate(body, l.maxChars))
}

// pageTitle 读取 <title>
func pageTitle(raw []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("head > title").First().Text())
}
