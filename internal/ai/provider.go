package ai

import (
	"fmt"
	"strings"

	"hn-digest/config"
)

// Provider 大模型服务商
type Provider string

const (
	ProviderOpenAI     Provider = "openai"
	ProviderDeepSeek   Provider = "deepseek"
	ProviderOpenRouter Provider = "openrouter"
	ProviderAzure      Provider = "azure"
	ProviderAnthropic  Provider = "anthropic"
)

// Endpoint 是服务商解析后的调用参数
type Endpoint struct {
	Provider   Provider
	BaseURL    string
	APIKey     string
	Model      string
	APIVersion string
}

type providerDefaults struct {
	baseURL string
	model   string
}

var defaults = map[Provider]providerDefaults{
	ProviderOpenAI:     {baseURL: "https://api.openai.com/v1", model: "gpt-4o-mini"},
	ProviderDeepSeek:   {baseURL: "https://api.deepseek.com/v1", model: "deepseek-chat"},
	ProviderOpenRouter: {baseURL: "https://openrouter.ai/api/v1", model: "mistralai/mistral-7b-instruct:free"},
	ProviderAzure:      {model: "gpt-4o"},
	ProviderAnthropic:  {model: "claude-3-5-haiku-latest"},
}

// ResolveProvider 把配置解析为具体的 endpoint/凭证/模型
func ResolveProvider(cfg config.LLMConfig) (Endpoint, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(cfg.Provider)))
	d, ok := defaults[p]
	if !ok {
		return Endpoint{}, fmt.Errorf("未知的LLM服务商: %q", cfg.Provider)
	}
	if cfg.APIKey == "" {
		return Endpoint{}, fmt.Errorf("LLM服务商 %s 缺少 LLM_API_KEY", p)
	}

	ep := Endpoint{
		Provider:   p,
		BaseURL:    firstNonEmpty(cfg.BaseURL, d.baseURL),
		APIKey:     cfg.APIKey,
		Model:      firstNonEmpty(cfg.Model, d.model),
		APIVersion: cfg.APIVersion,
	}
	if p == ProviderAzure && ep.BaseURL == "" {
		return Endpoint{}, fmt.Errorf("azure 需要设置 LLM_BASE_URL")
	}
	return ep, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
