package podcast

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"hn-digest/internal/ai"
	"hn-digest/internal/models"
	"hn-digest/internal/tts"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

// ErrNoSegments 所有对话行都合成失败
var ErrNoSegments = errors.New("没有可用的音频片段")

// Options 播客合成参数
type Options struct {
	Concurrency int64
	MinChars    int
	CacheDir    string
}

// Synthesizer 生成双人对话脚本并合成为一段播客音频
type Synthesizer struct {
	llm      ai.Completer
	speech   tts.Service
	voices   tts.Voices
	joiner   Joiner
	uploader tts.Uploader
	opts     Options
}

// NewSynthesizer 创建播客合成器
func NewSynthesizer(llm ai.Completer, speech tts.Service, voices tts.Voices, joiner Joiner, uploader tts.Uploader, opts Options) *Synthesizer {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &Synthesizer{
		llm:      llm,
		speech:   speech,
		voices:   voices,
		joiner:   joiner,
		uploader: uploader,
		opts:     opts,
	}
}

// Synthesize 返回上传后的播客URL；文本过短时返回空串且不报错
func (s *Synthesizer) Synthesize(ctx context.Context, article string) (string, error) {
	if utf8.RuneCountInString(article) < s.opts.MinChars {
		log.Debugf("文本过短(%d 字符)，跳过播客", utf8.RuneCountInString(article))
		return "", nil
	}

	script, err := s.Script(ctx, article)
	if err != nil {
		return "", err
	}
	log.Infof("对话脚本生成完成，共 %d 句", len(script))

	segments, err := s.SynthesizeLines(ctx, script)
	if err != nil {
		return "", err
	}

	data := make([][]byte, len(segments))
	for i, seg := range segments {
		data[i] = seg.AudioData
	}
	audio, err := s.joiner.Join(ctx, data)
	if err != nil {
		return "", fmt.Errorf("合并音频失败: %w", err)
	}

	path, err := tts.WriteTempAudio(s.opts.CacheDir, audio)
	if err != nil {
		return "", err
	}
	url, err := s.uploader.Upload(ctx, path)
	if err != nil {
		return "", fmt.Errorf("上传播客失败: %w", err)
	}
	log.Infof("播客已上传: %s", url)
	return url, nil
}

// Script 调用模型生成对话脚本，模型失败或格式不合法都直接返回错误
func (s *Synthesizer) Script(ctx context.Context, article string) (models.DialogueScript, error) {
	resp, err := s.llm.Complete(ctx, ai.PodcastScriptPrompt, article)
	if err != nil {
		return nil, fmt.Errorf("生成对话脚本失败: %w", err)
	}
	script, err := ParseScript(resp)
	if err != nil {
		return nil, fmt.Errorf("解析对话脚本失败: %w", err)
	}
	return script, nil
}

// SynthesizeLines 并发合成每一句，同时在途数不超过 Concurrency；
// 返回值保持脚本顺序，失败的句子被丢弃，全部失败时返回 ErrNoSegments
func (s *Synthesizer) SynthesizeLines(ctx context.Context, script models.DialogueScript) ([]models.AudioSegment, error) {
	sem := semaphore.NewWeighted(s.opts.Concurrency)
	results := make([]models.AudioSegment, len(script))
	var wg sync.WaitGroup

	for i, line := range script {
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Warnf("合成被取消，剩余 %d 句未提交: %v", len(script)-i, err)
			break
		}

		wg.Add(1)
		go func(i int, line models.DialogueLine) {
			defer wg.Done()
			defer sem.Release(1)

			voice := s.voices.For(line.Speaker)
			audio, err := s.speech.SynthesizeSpeech(ctx, line.Text, voice)
			if err != nil {
				log.WithFields(log.Fields{"line": i, "speaker": line.Speaker}).Warnf("合成失败，已跳过: %v", err)
				return
			}
			results[i] = models.AudioSegment{
				Index:     i,
				Text:      line.Text,
				Speaker:   line.Speaker,
				Voice:     voice,
				AudioData: audio,
			}
		}(i, line)
	}
	wg.Wait()

	segments := make([]models.AudioSegment, 0, len(results))
	for _, seg := range results {
		if len(seg.AudioData) > 0 {
			segments = append(segments, seg)
		}
	}
	if len(segments) == 0 {
		return nil, ErrNoSegments
	}
	if dropped := len(script) - len(segments); dropped > 0 {
		log.Warnf("%d/%d 句合成失败", dropped, len(script))
	}
	return segments, nil
}
