package models

// NoContentExtracted 表示抓取/抽取后没有可用正文的哨兵值
const NoContentExtracted = "Jina Reader returned no content"

// NoRelevantContent 是抽取提示词约定的"无相关内容"短语
const NoRelevantContent = "No relevant content found"

// Story 表示一篇待推送/入库的文章
type Story struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	URL             string `json:"url"`
	Score           int    `json:"score"`
	HackerNewsURL   string `json:"hnUrl,omitempty"`
	Summary         string `json:"summary,omitempty"`
	CommentsSummary string `json:"commentsSummary,omitempty"`
	Source          string `json:"source"`
	Content         string `json:"content,omitempty"`
	SpeechURL       string `json:"speechUrl,omitempty"`
	NotebookLMURL   string `json:"notebooklmUrl,omitempty"`
}

// ContentRecord 表示正文抽取结果
type ContentRecord struct {
	Article string `json:"article"`
	Title   string `json:"title"`
	// Failed 为 true 时 Article 是哨兵值或错误信息，不能当作正文处理
	Failed bool `json:"-"`
}

// SummaryResult 表示一次 初稿-反思-定稿 的摘要结果
type SummaryResult struct {
	InitialSummary string `json:"initialSummary"`
	Reflection     string `json:"reflection"`
	FinalSummary   string `json:"finalSummary"`
}

// EnrichmentOptions 控制生成哪些产物
type EnrichmentOptions struct {
	Summary bool `json:"generateSummary"`
	Speech  bool `json:"generateSpeech"`
	Podcast bool `json:"generatePodcast"`
}

// AllArtifacts 返回全部开启的选项
func AllArtifacts() EnrichmentOptions {
	return EnrichmentOptions{Summary: true, Speech: true, Podcast: true}
}

// EnrichmentRequest 表示一次文章加工请求
type EnrichmentRequest struct {
	Topic   string            `json:"topic"`
	URL     string            `json:"url"`
	Content string            `json:"content,omitempty"`
	Options EnrichmentOptions `json:"options"`
}

// EnrichmentResult 是加工流程对外唯一的输出
type EnrichmentResult struct {
	Summary       string `json:"summary"`
	SpeechURL     string `json:"speech_url"`
	NotebookLMURL string `json:"notebooklm_url"`
	Title         string `json:"title"`
}

// Apply 把加工结果写回文章
func (r EnrichmentResult) Apply(story *Story) {
	if r.Summary != "" {
		story.Summary = r.Summary
	}
	if r.SpeechURL != "" {
		story.SpeechURL = r.SpeechURL
	}
	if r.NotebookLMURL != "" {
		story.NotebookLMURL = r.NotebookLMURL
	}
}
