package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"hn-digest/config"

	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
)

// CallErrorPrefix 是 Call 在调用失败时返回的诊断前缀
const CallErrorPrefix = "LLM Call error: "

// ErrEmptyResponse 模型没有返回内容
var ErrEmptyResponse = errors.New("AI响应中没有内容")

// Completer 一次系统提示词+用户输入的对话补全
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, images ...string) (string, error)
}

// backend 屏蔽不同服务商的SDK差异
type backend interface {
	chat(ctx context.Context, systemPrompt, userPrompt string, images []string) (string, error)
}

// Client 是AI接口的客户端
type Client struct {
	backend  backend
	endpoint Endpoint
	timeout  time.Duration
}

// NewClient 创建一个新的AI客户端
func NewClient(cfg *config.LLMConfig) (*Client, error) {
	ep, err := ResolveProvider(*cfg)
	if err != nil {
		return nil, err
	}

	var b backend
	switch ep.Provider {
	case ProviderAnthropic:
		b = newAnthropicBackend(ep, cfg.MaxTokens)
	case ProviderAzure:
		clientConfig := openai.DefaultAzureConfig(ep.APIKey, ep.BaseURL)
		if ep.APIVersion != "" {
			clientConfig.APIVersion = ep.APIVersion
		}
		b = &openAIBackend{client: openai.NewClientWithConfig(clientConfig), model: ep.Model, maxTokens: cfg.MaxTokens}
	default:
		clientConfig := openai.DefaultConfig(ep.APIKey)
		clientConfig.BaseURL = ep.BaseURL
		b = &openAIBackend{client: openai.NewClientWithConfig(clientConfig), model: ep.Model, maxTokens: cfg.MaxTokens}
	}

	log.Printf("LLM客户端初始化完成，服务商: %s，模型: %s", ep.Provider, ep.Model)
	return &Client{backend: b, endpoint: ep, timeout: cfg.Timeout}, nil
}

// Model 返回当前使用的模型
func (c *Client) Model() string {
	return c.endpoint.Model
}

// Complete 发送一次对话请求，失败时返回错误
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string, images ...string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	text, err := c.backend.chat(ctx, systemPrompt, userPrompt, images)
	if err != nil {
		return "", fmt.Errorf("生成AI内容失败: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// Call 发送一次对话请求，从不返回错误：失败时返回以 CallErrorPrefix 开头的诊断信息
func Call(ctx context.Context, c Completer, systemPrompt, userPrompt string, images ...string) string {
	text, err := c.Complete(ctx, systemPrompt, userPrompt, images...)
	if err != nil {
		log.Warnf("LLM调用失败: %v", err)
		return CallErrorPrefix + err.Error()
	}
	return text
}

// IsCallError 判断 Call 的返回值是否为诊断信息
func IsCallError(text string) bool {
	return strings.HasPrefix(text, CallErrorPrefix)
}

type openAIBackend struct {
	client    *openai.Client
	model     string
	maxTokens int
}

func (b *openAIBackend) chat(ctx context.Context, systemPrompt, userPrompt string, images []string) (string, error) {
	user := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: userPrompt}
	if len(images) > 0 {
		parts := []openai.ChatMessagePart{{Type: openai.ChatMessagePartTypeText, Text: userPrompt}}
		for _, path := range images {
			dataURL, err := encodeImage(path)
			if err != nil {
				log.Warnf("读取图片失败，已忽略: %v", err)
				continue
			}
			parts = append(parts, openai.ChatMessagePart{
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{URL: dataURL, Detail: openai.ImageURLDetailAuto},
			})
		}
		user = openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, MultiContent: parts}
	}

	req := openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			user,
		},
		MaxTokens:   b.maxTokens,
		Temperature: 0.7,
	}

	resp, err := b.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	log.Debugf("AI内容生成成功，使用tokens: %d", resp.Usage.TotalTokens)
	return resp.Choices[0].Message.Content, nil
}

// readImage 读取本地图片，返回 MIME 类型和 base64 编码
func readImage(path string) (mimeType, encoded string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	return http.DetectContentType(data), base64.StdEncoding.EncodeToString(data), nil
}

// encodeImage 把本地图片编码为 data URL
func encodeImage(path string) (string, error) {
	mimeType, encoded, err := readImage(path)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, encoded), nil
}
