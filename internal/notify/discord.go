package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"hn-digest/internal/models"

	log "github.com/sirupsen/logrus"
)

// MaxMessageLength Discord 单条消息的字符上限
const MaxMessageLength = 2000

// Footer 每批推送结束时发送
const Footer = "Interested in listening to the podcast? Visit <https://aicrafter.info> 🎧"

// Discord 通过 webhook 推送消息
type Discord struct {
	webhooks []string
	client   *http.Client
}

// NewDiscord 创建 Discord 推送器
func NewDiscord(webhooks []string) *Discord {
	return &Discord{
		webhooks: webhooks,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Enabled 是否配置了 webhook
func (d *Discord) Enabled() bool {
	return len(d.webhooks) > 0
}

// Send 把消息按长度拆分后发往每个 webhook；某个 webhook 失败不影响其他
func (d *Discord) Send(ctx context.Context, message string) error {
	if message == "" {
		return nil
	}

	var failed []string
	for _, webhook := range d.webhooks {
		for _, chunk := range Split(message, MaxMessageLength) {
			if err := d.post(ctx, webhook, chunk); err != nil {
				log.Errorf("发送 Discord 消息失败: %v", err)
				failed = append(failed, err.Error())
				break
			}
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d 个 webhook 发送失败: %s", len(failed), strings.Join(failed, "; "))
	}
	return nil
}

func (d *Discord) post(ctx context.Context, webhook, content string) error {
	payload, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhook, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("发送请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("状态码: %d", resp.StatusCode)
	}
	return nil
}

// Split 按字符数拆分消息，尽量在最后一个换行处断开
func Split(message string, limit int) []string {
	var chunks []string
	runes := []rune(message)
	for len(runes) > 0 {
		if len(runes) < limit {
			chunks = append(chunks, string(runes))
			break
		}
		cut := lastNewline(runes[:limit])
		if cut <= 0 {
			cut = limit
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
	}
	return chunks
}

func lastNewline(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == '\n' {
			return i
		}
	}
	return -1
}

// FormatStory 渲染一篇 Hacker News 文章的推送消息
func FormatStory(story models.Story, header string) string {
	var b strings.Builder
	if header != "" {
		b.WriteString(header)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "**Article**: <%s>\n**Summary**:\n %s", story.URL, story.Summary)
	if story.HackerNewsURL != "" {
		fmt.Fprintf(&b, "\n**HNUrl**: <%s>\n**Score**: %d\n**Discussion Highlights**:\n %s\n ----------",
			story.HackerNewsURL, story.Score, story.CommentsSummary)
	}
	return b.String()
}

// FormatLink 渲染一条只有链接和摘要的推送消息
func FormatLink(url, summary, header string) string {
	message := fmt.Sprintf("\n<%s>\n%s", url, summary)
	if header != "" {
		message = header + message
	}
	return strings.ReplaceAll(message, "\n\n", "\n")
}
