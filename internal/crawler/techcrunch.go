package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
	_ "time/tzdata"

	"hn-digest/config"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
)

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp"}

// TechCrunchClient 抓取 TechCrunch 分类页
type TechCrunchClient struct {
	categoryURL string
	location    *time.Location
	client      *http.Client
}

// NewTechCrunchClient 创建 TechCrunch 客户端
func NewTechCrunchClient(cfg *config.TechCrunchConfig) (*TechCrunchClient, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("加载时区 %s 失败: %w", cfg.Timezone, err)
	}
	return &TechCrunchClient{
		categoryURL: cfg.CategoryURL,
		location:    loc,
		client:      &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// ArticleURLs 返回分类页上今天和昨天发布的文章链接，保持页面顺序并去重
func (c *TechCrunchClient) ArticleURLs(ctx context.Context, now time.Time) ([]string, error) {
	body, err := httpGet(ctx, c.client, c.categoryURL)
	if err != nil {
		return nil, fmt.Errorf("获取分类页失败: %w", err)
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("解析HTML失败: %w", err)
	}

	base, _ := url.Parse(c.categoryURL)
	dates := c.dates(now)
	seen := make(map[string]bool)
	var urls []string

	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		u, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		if base != nil {
			u = base.ResolveReference(u)
		}
		u.Fragment = ""
		link := u.String()

		if seen[link] || isImageURL(u) || !containsAny(u.Path, dates) {
			return
		}
		seen[link] = true
		urls = append(urls, link)
	})

	log.Printf("TechCrunch 找到 %d 篇文章 (%s)", len(urls), strings.Join(dates, ", "))
	return urls, nil
}

// dates 返回配置时区下今天和昨天的 YYYY/MM/DD
func (c *TechCrunchClient) dates(now time.Time) []string {
	today := now.In(c.location)
	return []string{
		today.Format("2006/01/02"),
		today.AddDate(0, 0, -1).Format("2006/01/02"),
	}
}

func isImageURL(u *url.URL) bool {
	ext := strings.ToLower(path.Ext(u.Path))
	for _, e := range imageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
