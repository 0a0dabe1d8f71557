package tts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Uploader 上传本地文件并返回公开URL，无论成功与否都会删除本地文件
type Uploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

// Narrator 把整篇文章朗读成一段音频
type Narrator struct {
	service  Service
	uploader Uploader
	voice    string
	cacheDir string
	minChars int
}

// NewNarrator 创建朗读器
func NewNarrator(service Service, uploader Uploader, voice, cacheDir string, minChars int) *Narrator {
	return &Narrator{
		service:  service,
		uploader: uploader,
		voice:    voice,
		cacheDir: cacheDir,
		minChars: minChars,
	}
}

// Synthesize 生成朗读音频并返回URL；文本过短或任何失败都返回空串
func (n *Narrator) Synthesize(ctx context.Context, article string) string {
	if strings.TrimSpace(article) == "" || utf8.RuneCountInString(article) < n.minChars {
		log.Debugf("文本过短(%d 字符)，跳过朗读", utf8.RuneCountInString(article))
		return ""
	}

	url, err := n.synthesize(ctx, article)
	if err != nil {
		log.Errorf("生成朗读音频失败: %v", err)
		return ""
	}
	log.Infof("朗读音频已上传: %s", url)
	return url
}

func (n *Narrator) synthesize(ctx context.Context, article string) (string, error) {
	audio, err := n.service.SynthesizeSpeech(ctx, article, n.voice)
	if err != nil {
		return "", fmt.Errorf("TTS转换失败: %w", err)
	}

	path, err := WriteTempAudio(n.cacheDir, audio)
	if err != nil {
		return "", err
	}
	return n.uploader.Upload(ctx, path)
}

// WriteTempAudio 把音频写入缓存目录下的唯一文件
func WriteTempAudio(dir string, audio []byte) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("创建缓存目录失败: %w", err)
	}
	path := filepath.Join(dir, uuid.New().String()+".mp3")
	if err := os.WriteFile(path, audio, 0644); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("写入音频文件失败: %w", err)
	}
	return path, nil
}
