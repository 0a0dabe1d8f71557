package summarizer

import (
	"context"
	"fmt"
	"strings"

	"hn-digest/internal/ai"
)

// CommentsSummarizer 总结 Hacker News 评论区
type CommentsSummarizer struct {
	llm ai.Completer
}

// NewCommentsSummarizer 创建评论总结器
func NewCommentsSummarizer(llm ai.Completer) *CommentsSummarizer {
	return &CommentsSummarizer{llm: llm}
}

// Summarize 没有评论时返回空串；模型失败时返回错误
func (c *CommentsSummarizer) Summarize(ctx context.Context, comments string) (string, error) {
	if strings.TrimSpace(comments) == "" {
		return "", nil
	}

	resp, err := c.llm.Complete(ctx, ai.CommentsSystemPrompt, fmt.Sprintf(ai.CommentsUserPrompt, comments))
	if err != nil {
		return "", fmt.Errorf("总结评论失败: %w", err)
	}
	return ai.ExtractTagged(resp, "summary"), nil
}
