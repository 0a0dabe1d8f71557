package tts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"hn-digest/config"

	log "github.com/sirupsen/logrus"
)

const defaultEdgeEndpoint = "https://speech.platform.bing.com/consumer/speech/synthesize/readaloud/edge/v1"

// EdgeTTS 实现Edge TTS服务
type EdgeTTS struct {
	endpoint     string
	outputFormat string
	client       *http.Client
}

// NewEdgeTTS 创建一个新的Edge TTS服务
func NewEdgeTTS(cfg config.EdgeTTSConfig) (*EdgeTTS, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEdgeEndpoint
	}
	return &EdgeTTS{
		endpoint:     endpoint,
		outputFormat: cfg.OutputFormat,
		client:       &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// SynthesizeSpeech 将文本转换为语音
func (e *EdgeTTS) SynthesizeSpeech(ctx context.Context, text string, voice string) ([]byte, error) {
	if voice == "" {
		return nil, fmt.Errorf("未指定音色")
	}
	log.Debugf("使用Edge TTS转换文本，语音ID: %s", voice)

	// 构建SSML文本
	ssml := fmt.Sprintf(`
<speak version="1.0" xmlns="http://www.w3.org/2001/10/synthesis" xml:lang="%s">
	<voice name="%s">
		<prosody rate="0%%" pitch="0%%">%s</prosody>
	</voice>
</speak>`, voiceLocale(voice), voice, escapeXML(text))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, strings.NewReader(ssml))
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}

	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("X-Microsoft-OutputFormat", e.outputFormat)
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/93.0.4577.63 Safari/537.36 Edg/93.0.961.47")
	req.Header.Set("Origin", "https://speech.platform.bing.com")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("发送请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("TTS请求失败，状态码: %d", resp.StatusCode)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应内容失败: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("TTS返回空音频")
	}

	log.Debugf("TTS转换成功，音频大小: %d 字节", len(audio))
	return audio, nil
}

// Provider 返回TTS提供商名称
func (e *EdgeTTS) Provider() string {
	return "edge"
}

// voiceLocale 从音色名取出语言区域，如 en-US-AvaMultilingualNeural -> en-US
func voiceLocale(voice string) string {
	parts := strings.SplitN(voice, "-", 3)
	if len(parts) < 3 {
		return "en-US"
	}
	return parts[0] + "-" + parts[1]
}

// escapeXML 转义XML特殊字符
func escapeXML(text string) string {
	text = strings.ReplaceAll(text, "&", "&amp;")
	text = strings.ReplaceAll(text, "<", "&lt;")
	text = strings.ReplaceAll(text, ">", "&gt;")
	text = strings.ReplaceAll(text, "\"", "&quot;")
	text = strings.ReplaceAll(text, "'", "&apos;")
	return text
}
