package summarizer

import (
	"context"
	"fmt"
	"strings"

	"hn-digest/internal/ai"
	"hn-digest/internal/models"
	"hn-digest/internal/retry"

	log "github.com/sirupsen/logrus"
)

// Summarizer 按 初稿 -> 反思 -> 定稿 三步生成摘要
type Summarizer struct {
	llm    ai.Completer
	policy retry.Policy
}

// NewSummarizer 创建摘要生成器，每一步都按 policy 独立重试
func NewSummarizer(llm ai.Completer, policy retry.Policy) *Summarizer {
	return &Summarizer{llm: llm, policy: policy}
}

// Summarize 三步依次执行，任一步重试耗尽即整体失败
func (s *Summarizer) Summarize(ctx context.Context, article string) (models.SummaryResult, error) {
	initial, err := s.step(ctx, "初稿",
		ai.InitialSummarySystemPrompt,
		fmt.Sprintf(ai.InitialSummaryUserPrompt, ai.SummaryConstraints, article))
	if err != nil {
		return models.SummaryResult{}, err
	}

	reflection, err := s.step(ctx, "反思",
		ai.ReflectionSystemPrompt,
		fmt.Sprintf(ai.ReflectionUserPrompt, article, initial, ai.SummaryConstraints))
	if err != nil {
		return models.SummaryResult{}, err
	}

	final, err := s.step(ctx, "定稿",
		ai.FinalSummarySystemPrompt,
		fmt.Sprintf(ai.FinalSummaryUserPrompt, article, initial, reflection, ai.SummaryConstraints))
	if err != nil {
		return models.SummaryResult{}, err
	}

	return models.SummaryResult{
		InitialSummary: initial,
		Reflection:     reflection,
		FinalSummary:   final,
	}, nil
}

func (s *Summarizer) step(ctx context.Context, name, systemPrompt, userPrompt string) (string, error) {
	var out string
	err := s.policy.Do(ctx, "摘要"+name, func(ctx context.Context) error {
		text, err := s.llm.Complete(ctx, systemPrompt, userPrompt)
		if err != nil {
			return err
		}
		out = strings.TrimSpace(text)
		return nil
	})
	if err != nil {
		return "", err
	}
	log.Debugf("摘要%s完成，长度 %d", name, len(out))
	return out, nil
}

// NormalizeSummary 把连续的空行合并为单个换行
func NormalizeSummary(summary string) string {
	return strings.ReplaceAll(summary, "\n\n", "\n")
}
