package notify

import (
	"bytes"
	"html/template"
	"strings"
	"time"

	"hn-digest/internal/models"
)

// SiteURL 简报里引导收听音频的站点
const SiteURL = "https://aicrafter.info"

var newsletterTemplate = template.Must(template.New("newsletter").Funcs(template.FuncMap{
	"bullets":  Bullets,
	"absolute": absoluteURL,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Subject}}</title>
<style>
  body { font-family: system-ui, -apple-system, 'Segoe UI', Roboto, sans-serif; color: #1e293b; background: #f8fafc; }
  .container { max-width: 640px; margin: 0 auto; padding: 24px; background: #ffffff; }
  .header { font-size: 18px; font-weight: 600; margin-bottom: 8px; }
  .story-meta { font-size: 14px; line-height: 1.6; color: #475569; }
  .story-link, .hn-link { color: #3b82f6; }
  .digest-list { list-style: none; padding-left: 0; }
  .story-divider { border: 0; border-top: 1px solid #e2e8f0; margin: 24px 0; }
  .footer { font-size: 12px; color: #64748b; text-align: center; }
</style>
</head>
<body>
<div class="container">
<h1>{{.Subject}}</h1>
<p>{{.Date}}</p>
{{range .Stories}}
<div class="section">
  <div class="header">{{.Title}}</div>
  <div class="story-meta">
    &bull; Article: <a href="{{absolute .URL}}" class="story-link">{{.URL}}</a><br>
    {{- if .HackerNewsURL}}
    &bull; HN Discussion: <a href="{{absolute .HackerNewsURL}}" class="hn-link">{{.HackerNewsURL}}</a><br>
    {{- end}}
    {{- if gt .Score 0}}
    &bull; Score: {{.Score}}<br>
    {{- end}}
    {{- if .SpeechURL}}
    &bull; Text-to-Speech audio: <a href="{{.SpeechURL}}" class="story-link">Listen</a><br>
    {{- end}}
    {{- if .NotebookLMURL}}
    &bull; AI-generated podcast: <a href="{{.NotebookLMURL}}" class="story-link">Listen</a><br>
    {{- end}}
    <div>You can listen to the audio and podcast with better experience on <a href="{{$.Site}}" class="story-link">aicrafter.info</a>.</div>
  </div>
  {{- with bullets .Summary}}
  <div class="story-content">
    <h3>Article Summary:</h3>
    <ul class="digest-list">{{range .}}<li>{{.}}</li>{{end}}</ul>
  </div>
  {{- end}}
  {{- with bullets .CommentsSummary}}
  <div class="story-content">
    <h3>Discussion Highlights:</h3>
    <ul class="digest-list">{{range .}}<li>{{.}}</li>{{end}}</ul>
  </div>
  {{- end}}
</div>
<hr class="story-divider">
{{end}}
<div class="footer">
  Interested in listening to the podcast? Visit <a href="{{.Site}}">aicrafter.info</a>.
</div>
</div>
</body>
</html>
`))

type newsletterData struct {
	Subject string
	Date    string
	Site    string
	Stories []models.Story
}

// RenderNewsletter 把一批文章渲染成 HTML 邮件正文
func RenderNewsletter(subject string, stories []models.Story) (string, error) {
	var buf bytes.Buffer
	err := newsletterTemplate.Execute(&buf, newsletterData{
		Subject: subject,
		Date:    time.Now().Format("January 2, 2006"),
		Site:    SiteURL,
		Stories: stories,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Bullets 把摘要拆成列表项：去掉首尾的引号和括号，行首的 "-" 换成 "•"
func Bullets(text string) []string {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.Trim(line, `"`)
		line = strings.Trim(line, "()")
		line = strings.Trim(line, "'")
		if line == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(line, "-"); ok {
			line = "•" + rest
		}
		items = append(items, line)
	}
	return items
}

func absoluteURL(url string) string {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}
	return "https://" + url
}
