package tts

import (
	"context"
	"strings"

	"hn-digest/config"
	"hn-digest/internal/models"
)

// Service 定义TTS服务接口
type Service interface {
	// SynthesizeSpeech 用指定音色把文本转换为语音
	SynthesizeSpeech(ctx context.Context, text string, voice string) ([]byte, error)

	// Provider 返回TTS提供商名称
	Provider() string
}

// Factory 创建TTS服务
func Factory(cfg *config.TTSConfig) (Service, error) {
	// 根据配置选择TTS服务
	switch strings.ToLower(cfg.Provider) {
	case "aliyun":
		return NewAliyunTTS(cfg.AliyunTTS)
	default:
		// 默认使用Edge TTS
		return NewEdgeTTS(cfg.EdgeTTS)
	}
}

// Voices 播客主持人/嘉宾和朗读使用的音色
type Voices struct {
	Host     string
	Guest    string
	Narrator string
}

// VoicesFromConfig 从配置读取音色
func VoicesFromConfig(cfg *config.TTSConfig) Voices {
	return Voices{
		Host:     cfg.HostVoice,
		Guest:    cfg.GuestVoice,
		Narrator: cfg.NarratorVoice,
	}
}

// For 根据角色返回音色：只有 "Speaker 1" 是主持人，其余都用嘉宾音色
func (v Voices) For(speaker string) string {
	if speaker == models.SpeakerHost {
		return v.Host
	}
	return v.Guest
}
