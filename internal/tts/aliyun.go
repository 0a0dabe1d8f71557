package tts

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"hn-digest/config"

	log "github.com/sirupsen/logrus"
)

// AliyunTTS 实现阿里云TTS服务
type AliyunTTS struct {
	config     config.AliyunTTSConfig
	gatewayURL string
	client     *http.Client
	now        func() time.Time
}

// NewAliyunTTS 创建一个新的阿里云TTS服务
func NewAliyunTTS(cfg config.AliyunTTSConfig) (*AliyunTTS, error) {
	if cfg.AccessKeyID == "" || cfg.AccessKeySecret == "" {
		return nil, fmt.Errorf("阿里云TTS缺少 AccessKey 配置")
	}
	return &AliyunTTS{
		config:     cfg,
		gatewayURL: fmt.Sprintf("https://nls-gateway-%s.aliyuncs.com/", cfg.Region),
		client:     &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}, nil
}

// SynthesizeSpeech 将文本转换为语音
func (a *AliyunTTS) SynthesizeSpeech(ctx context.Context, text string, voice string) ([]byte, error) {
	if voice == "" {
		return nil, fmt.Errorf("未指定音色")
	}
	log.Debugf("使用阿里云TTS转换文本，语音ID: %s", voice)

	now := a.now()
	params := map[string]string{
		"Action":           "SpeechSynthesis",
		"Format":           "mp3",
		"Voice":            voice,
		"Volume":           "50",
		"SpeechRate":       "0",
		"PitchRate":        "0",
		"Text":             text,
		"Version":          "2019-08-10",
		"RegionId":         a.config.Region,
		"Timestamp":        now.UTC().Format("2006-01-02T15:04:05Z"),
		"SignatureMethod":  "HMAC-SHA1",
		"SignatureVersion": "1.0",
		"SignatureNonce":   fmt.Sprintf("%d", now.UnixNano()),
		"AccessKeyId":      a.config.AccessKeyID,
	}
	params["Signature"] = computeSignature(params, a.config.AccessKeySecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.gatewayURL, nil)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	q := req.URL.Query()
	for k, v := range params {
		q.Add(k, v)
	}
	req.URL.RawQuery = q.Encode()

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("发送请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("TTS请求失败，状态码: %d，响应: %s", resp.StatusCode, string(body))
	}

	var result struct {
		RequestId string `json:"RequestId"`
		Code      string `json:"Code"`
		Message   string `json:"Message"`
		Data      struct {
			AudioAddress string `json:"AudioAddress"`
		} `json:"Data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}
	if result.Code != "Success" {
		return nil, fmt.Errorf("TTS请求失败: %s", result.Message)
	}

	return a.download(ctx, result.Data.AudioAddress)
}

// download 下载合成好的音频
func (a *AliyunTTS) download(ctx context.Context, address string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, address, nil)
	if err != nil {
		return nil, fmt.Errorf("创建下载请求失败: %w", err)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("下载音频失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("下载音频失败，状态码: %d", resp.StatusCode)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取音频数据失败: %w", err)
	}

	log.Debugf("TTS转换成功，音频大小: %d 字节", len(audio))
	return audio, nil
}

// Provider 返回TTS提供商名称
func (a *AliyunTTS) Provider() string {
	return "aliyun"
}

// computeSignature 计算阿里云API签名
func computeSignature(params map[string]string, secretKey string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "Signature" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, url.QueryEscape(k)+"="+url.QueryEscape(params[k]))
	}

	stringToSign := "GET&" + url.QueryEscape("/") + "&" + url.QueryEscape(strings.Join(pairs, "&"))

	mac := hmac.New(sha1.New, []byte(secretKey+"&"))
	mac.Write([]byte(stringToSign))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
