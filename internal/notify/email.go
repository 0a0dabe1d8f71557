package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"hn-digest/config"
	"hn-digest/internal/models"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Email 一封待发送的邮件
type Email struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// EmailSender 发送单封邮件
type EmailSender interface {
	SendEmail(ctx context.Context, email Email) error
}

// Resend 通过 Resend REST API 发信
type Resend struct {
	apiBase string
	apiKey  string
	client  *http.Client
}

// NewResend 创建 Resend 发信器
func NewResend(apiBase, apiKey string) *Resend {
	return &Resend{
		apiBase: strings.TrimRight(apiBase, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// SendEmail 发送一封邮件
func (r *Resend) SendEmail(ctx context.Context, email Email) error {
	payload, err := json.Marshal(email)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.apiBase+"/emails", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("发送请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("状态码: %d, %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// Subscribers 订阅者来源
type Subscribers interface {
	ActiveEmails(ctx context.Context) ([]string, error)
}

// Report 一次群发的结果
type Report struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// Newsletter 把一批文章渲染成邮件，分批并发发给所有订阅者
type Newsletter struct {
	sender      EmailSender
	subscribers Subscribers
	from        string
	recipients  []string
	batchSize   int
	concurrency int
	pause       time.Duration
}

// NewNewsletter 创建邮件简报；subscribers 可以为 nil，此时只发给固定收件人
func NewNewsletter(sender EmailSender, subscribers Subscribers, cfg config.EmailConfig) *Newsletter {
	n := &Newsletter{
		sender:      sender,
		subscribers: subscribers,
		from:        cfg.From,
		recipients:  cfg.Recipients,
		batchSize:   cfg.BatchSize,
		concurrency: cfg.Concurrency,
		pause:       cfg.BatchPause,
	}
	if n.batchSize <= 0 {
		n.batchSize = 50
	}
	if n.concurrency <= 0 {
		n.concurrency = 10
	}
	return n
}

// Deliver 发送本次任务的文章；没有文章或没有收件人时不发送
func (n *Newsletter) Deliver(ctx context.Context, subject string, stories []models.Story) (Report, error) {
	if len(stories) == 0 {
		return Report{}, nil
	}

	recipients, err := n.allRecipients(ctx)
	if err != nil {
		return Report{}, err
	}
	if len(recipients) == 0 {
		log.Info("没有订阅者，跳过邮件发送")
		return Report{}, nil
	}

	html, err := RenderNewsletter(subject, stories)
	if err != nil {
		return Report{}, err
	}

	report := Report{Total: len(recipients)}
	var success, failed atomic.Int64
	for start := 0; start < len(recipients); start += n.batchSize {
		if start > 0 && n.pause > 0 {
			select {
			case <-ctx.Done():
				report.Success, report.Failed = int(success.Load()), int(failed.Load())
				return report, ctx.Err()
			case <-time.After(n.pause):
			}
		}
		end := min(start+n.batchSize, len(recipients))

		var g errgroup.Group
		g.SetLimit(n.concurrency)
		for _, to := range recipients[start:end] {
			g.Go(func() error {
				err := n.sender.SendEmail(ctx, Email{From: n.from, To: []string{to}, Subject: subject, HTML: html})
				if err != nil {
					log.WithField("to", to).Warnf("发送邮件失败: %v", err)
					failed.Add(1)
					return nil
				}
				success.Add(1)
				return nil
			})
		}
		_ = g.Wait()
		log.Infof("第 %d 批邮件发送完成，共 %d 封", start/n.batchSize+1, end-start)
	}

	report.Success, report.Failed = int(success.Load()), int(failed.Load())
	log.WithFields(log.Fields{"success": report.Success, "failed": report.Failed}).Info("邮件简报发送完成")
	return report, nil
}

// allRecipients 合并固定收件人和订阅者并去重
func (n *Newsletter) allRecipients(ctx context.Context) ([]string, error) {
	all := append([]string(nil), n.recipients...)
	if n.subscribers != nil {
		emails, err := n.subscribers.ActiveEmails(ctx)
		if err != nil {
			return nil, err
		}
		all = append(all, emails...)
	}

	seen := make(map[string]bool, len(all))
	out := all[:0]
	for _, email := range all {
		key := strings.ToLower(strings.TrimSpace(email))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, strings.TrimSpace(email))
	}
	return out, nil
}
