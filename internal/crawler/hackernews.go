package crawler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"hn-digest/config"
	"hn-digest/internal/models"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// fetchConcurrency 并发拉取条目的上限
const fetchConcurrency = 8

// HackerNewsClient 用于与Hacker News交互的客户端
type HackerNewsClient struct {
	apiBase  string
	siteBase string
	source   string
	client   *http.Client
}

// NewHackerNewsClient 创建一个新的HackerNews客户端
func NewHackerNewsClient(cfg *config.HackerNewsConfig) *HackerNewsClient {
	return &HackerNewsClient{
		apiBase:  strings.TrimRight(cfg.APIBase, "/"),
		siteBase: strings.TrimRight(cfg.SiteBase, "/"),
		source:   cfg.Source,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// item 是 Firebase API 返回的条目
type item struct {
	ID    int64  `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Score int    `json:"score"`
	By    string `json:"by"`
}

// TopStoryIDs 获取热门文章ID列表
func (c *HackerNewsClient) TopStoryIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := c.getJSON(ctx, c.apiBase+"/topstories.json", &ids); err != nil {
		return nil, fmt.Errorf("获取热门文章失败: %w", err)
	}
	log.Printf("获取到 %d 个热门文章ID", len(ids))
	return ids, nil
}

// Story 获取单篇文章；没有外链的条目(Ask HN 等)返回 nil
func (c *HackerNewsClient) Story(ctx context.Context, id int64) (*models.Story, error) {
	var it item
	if err := c.getJSON(ctx, fmt.Sprintf("%s/item/%d.json", c.apiBase, id), &it); err != nil {
		return nil, fmt.Errorf("获取文章 %d 失败: %w", id, err)
	}
	if it.URL == "" {
		return nil, nil
	}
	return &models.Story{
		ID:            id,
		Title:         it.Title,
		URL:           it.URL,
		Score:         it.Score,
		HackerNewsURL: c.ItemURL(id),
		Source:        c.source,
	}, nil
}

// ItemURL 返回文章的讨论页地址
func (c *HackerNewsClient) ItemURL(id int64) string {
	return fmt.Sprintf("%s/item?id=%d", c.siteBase, id)
}

// Candidates 并发获取文章并用 keep 过滤，结果按分数从高到低排列；
// 单篇文章获取失败只记录日志
func (c *HackerNewsClient) Candidates(ctx context.Context, ids []int64, keep func(ctx context.Context, story models.Story) bool) ([]models.Story, error) {
	var (
		mu      sync.Mutex
		stories []models.Story
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for _, id := range ids {
		g.Go(func() error {
			story, err := c.Story(gctx, id)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Warnf("%v", err)
				return nil
			}
			if story == nil || !keep(gctx, *story) {
				return nil
			}
			mu.Lock()
			stories = append(stories, *story)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(stories, func(i, j int) bool {
		return stories[i].Score > stories[j].Score
	})
	log.Printf("找到 %d 篇符合条件的文章", len(stories))
	return stories, nil
}

// Filter 关键词与分数过滤条件
type Filter struct {
	Keywords []string
	MinScore int
}

// Match 有外链、不是 Ask HN、标题包含完整关键词且分数大于阈值
func (f Filter) Match(story models.Story) bool {
	if story.URL == "" || story.Score <= f.MinScore {
		return false
	}
	title := strings.ToLower(story.Title)
	if strings.Contains(title, "ask hn") {
		return false
	}
	for _, keyword := range f.Keywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword == "" {
			continue
		}
		if regexp.MustCompile(`\b` + regexp.QuoteMeta(keyword) + `\b`).MatchString(title) {
			return true
		}
	}
	return false
}

// Comments 抓取讨论页并整理成适合模型阅读的文本
func (c *HackerNewsClient) Comments(ctx context.Context, id int64) (string, error) {
	commentURL := c.ItemURL(id)
	body, err := c.get(ctx, commentURL)
	if err != nil {
		return "", fmt.Errorf("获取评论失败: %w", err)
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return "", fmt.Errorf("解析HTML失败: %w", err)
	}

	var b strings.Builder
	doc.Find(".comment-tree tr.athing.comtr").Each(func(i int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Find(".commtext").First().Text())
		if text == "" {
			return
		}
		author := s.Find(".hnuser").First().Text()
		indent, _ := strconv.Atoi(s.Find("td.ind").AttrOr("indent", "0"))

		if indent > 0 {
			b.WriteString(strings.Repeat("  ", indent))
			b.WriteString("└─ ")
		} else {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "[Comment by %s]: %s\n", author, text)
	})

	return strings.TrimSpace(b.String()), nil
}

func (c *HackerNewsClient) getJSON(ctx context.Context, url string, v any) error {
	body, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()
	return json.NewDecoder(body).Decode(v)
}

func (c *HackerNewsClient) get(ctx context.Context, url string) (io.ReadCloser, error) {
	return httpGet(ctx, c.client, url)
}

// httpGet 模拟浏览器发送GET请求，非200状态码视为错误
func httpGet(ctx context.Context, client *http.Client, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml,application/json")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("发送请求失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("状态码: %s", resp.Status)
	}
	return resp.Body, nil
}
