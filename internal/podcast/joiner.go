package podcast

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// Joiner 按顺序把多段音频拼接成一段
type Joiner interface {
	Join(ctx context.Context, segments [][]byte) ([]byte, error)
}

// NewJoiner 系统里有 ffmpeg 时使用 ffmpeg，否则直接拼接 MP3 帧
func NewJoiner() Joiner {
	if path, err := exec.LookPath("ffmpeg"); err == nil {
		return FFmpegJoiner{Binary: path}
	}
	log.Warn("未找到 ffmpeg，使用字节拼接合并音频")
	return ConcatJoiner{}
}

// FFmpegJoiner 使用 ffmpeg concat demuxer 无损拼接
type FFmpegJoiner struct {
	Binary string
}

// Join 合并音频
func (j FFmpegJoiner) Join(ctx context.Context, segments [][]byte) ([]byte, error) {
	tempDir, err := os.MkdirTemp("", "audio-merge")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tempDir)

	var list bytes.Buffer
	for i, segment := range segments {
		segPath := filepath.Join(tempDir, fmt.Sprintf("seg%03d.mp3", i))
		if err := os.WriteFile(segPath, segment, 0644); err != nil {
			return nil, err
		}
		fmt.Fprintf(&list, "file '%s'\n", segPath)
	}

	listPath := filepath.Join(tempDir, "filelist.txt")
	if err := os.WriteFile(listPath, list.Bytes(), 0644); err != nil {
		return nil, err
	}

	outPath := filepath.Join(tempDir, "merged.mp3")
	cmd := exec.CommandContext(ctx, j.Binary, "-y", "-f", "concat", "-safe", "0", "-i", listPath, "-c", "copy", outPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("ffmpeg 合并失败: %w: %s", err, out)
	}
	return os.ReadFile(outPath)
}

// ConcatJoiner 直接首尾相接
type ConcatJoiner struct{}

// Join 合并音频
func (ConcatJoiner) Join(ctx context.Context, segments [][]byte) ([]byte, error) {
	return bytes.Join(segments, nil), nil
}
