package ai

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	log "github.com/sirupsen/logrus"
)

type anthropicBackend struct {
	client    *anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

func newAnthropicBackend(ep Endpoint, maxTokens int) *anthropicBackend {
	opts := []option.RequestOption{option.WithAPIKey(ep.APIKey)}
	if ep.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(ep.BaseURL))
	}
	client := anthropic.NewClient(opts...)
	return &anthropicBackend{
		client:    &client,
		model:     anthropic.Model(ep.Model),
		maxTokens: int64(maxTokens),
	}
}

func (b *anthropicBackend) chat(ctx context.Context, systemPrompt, userPrompt string, images []string) (string, error) {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(images)+1)
	for _, path := range images {
		mimeType, encoded, err := readImage(path)
		if err != nil {
			log.Warnf("读取图片失败，已忽略: %v", err)
			continue
		}
		blocks = append(blocks, anthropic.NewImageBlockBase64(mimeType, encoded))
	}
	blocks = append(blocks, anthropic.NewTextBlock(userPrompt))

	resp, err := b.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     b.model,
		MaxTokens: b.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(blocks...),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Content) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Content[0].Text, nil
}
