package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func init() {
	// 加载.env文件
	if err := godotenv.Load(); err != nil {
		log.Debugf("未加载.env文件: %v", err)
	}
}

// Config 应用配置
type Config struct {
	Server     ServerConfig
	Log        LogConfig
	LLM        LLMConfig
	Reader     ReaderConfig
	MinIO      MinIOConfig
	TTS        TTSConfig
	Pipeline   PipelineConfig
	HackerNews HackerNewsConfig
	TechCrunch TechCrunchConfig
	Database   DatabaseConfig
	Discord    DiscordConfig
	Email      EmailConfig
	Schedule   ScheduleConfig
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string
	Format string // "text" 或 "json"
}

// LLMConfig 大模型配置，Provider 决定 endpoint/凭证/模型 的解析方式
type LLMConfig struct {
	Provider   string // openai, deepseek, openrouter, azure, anthropic
	APIKey     string
	BaseURL    string
	Model      string
	APIVersion string // 仅 azure 使用
	MaxTokens  int
	Timeout    time.Duration
}

// ReaderConfig 网页正文抓取配置
type ReaderConfig struct {
	Provider string // "jina" 或 "local"
	JinaKey  string
	MaxChars int
	Timeout  time.Duration
}

// MinIOConfig MinIO存储配置
type MinIOConfig struct {
	Endpoint        string
	BucketName      string
	AccessKeyID     string
	SecretAccessKey string
	PublicURL       string // 为空时返回预签名URL
	CacheDir        string // 本地临时音频目录
}

// TTSConfig 文本转语音配置
type TTSConfig struct {
	Provider      string // "edge", "aliyun"
	HostVoice     string
	GuestVoice    string
	NarratorVoice string
	EdgeTTS       EdgeTTSConfig
	AliyunTTS     AliyunTTSConfig
}

// EdgeTTSConfig Edge TTS配置
type EdgeTTSConfig struct {
	OutputFormat string
	Endpoint     string
}

// AliyunTTSConfig 阿里云TTS配置
type AliyunTTSConfig struct {
	AccessKeyID     string
	AccessKeySecret string
	Region          string
}

// PipelineConfig 摘要/音频流水线参数
type PipelineConfig struct {
	ShortContentChars  int
	MinSpeechChars     int
	MinPodcastChars    int
	PodcastConcurrency int64
	RetryDelays        []time.Duration
	StoryTimeout       time.Duration
}

// HackerNewsConfig Hacker News相关配置
type HackerNewsConfig struct {
	APIBase  string
	SiteBase string
	Keywords []string
	MinScore int
	MaxItems int
	Source   string
}

// TechCrunchConfig TechCrunch相关配置
type TechCrunchConfig struct {
	CategoryURL string
	Timezone    string
	Source      string
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	DSN   string
	Table string
}

// DiscordConfig Discord webhook配置
type DiscordConfig struct {
	Webhooks []string
}

// EmailConfig 邮件简报配置，ResendAPIKey 为空时不发送
type EmailConfig struct {
	ResendAPIKey     string
	APIBase          string
	From             string
	Recipients       []string // 固定收件人，和订阅表合并
	SubscribersTable string
	BatchSize        int
	Concurrency      int
	BatchPause       time.Duration
}

// Enabled 是否配置了发信凭证
func (c EmailConfig) Enabled() bool {
	return c.ResendAPIKey != ""
}

// ScheduleConfig 定时任务配置
type ScheduleConfig struct {
	HackerNews string
	TechCrunch string
}

// LoadConfig 从环境变量加载配置
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           getEnvOrDefault("APP_PORT", "3001"),
			Env:            getEnvOrDefault("WORKER_ENV", "production"),
			AllowedOrigins: getEnvListOrDefault("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Log: LogConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "text"),
		},
		LLM: LLMConfig{
			Provider:   getEnvOrDefault("LLM_PROVIDER", "openai"),
			APIKey:     getEnvOrDefault("LLM_API_KEY", ""),
			BaseURL:    getEnvOrDefault("LLM_BASE_URL", ""),
			Model:      getEnvOrDefault("LLM_MODEL", ""),
			APIVersion: getEnvOrDefault("AZURE_OPENAI_API_VERSION", "2024-02-15-preview"),
			MaxTokens:  getEnvIntOrDefault("LLM_MAX_TOKENS", 4096),
			Timeout:    getEnvDurationOrDefault("LLM_TIMEOUT", 2*time.Minute),
		},
		Reader: ReaderConfig{
			Provider: getEnvOrDefault("READER_PROVIDER", "jina"),
			JinaKey:  getEnvOrDefault("JINA_KEY", ""),
			MaxChars: getEnvIntOrDefault("READER_MAX_CHARS", 100000),
			Timeout:  getEnvDurationOrDefault("READER_TIMEOUT", 60*time.Second),
		},
		MinIO: MinIOConfig{
			Endpoint:        getEnvOrDefault("MINIO_ENDPOINT", "http://localhost:9000"),
			BucketName:      getEnvOrDefault("MINIO_BUCKET_NAME", "hacker-news"),
			AccessKeyID:     getEnvOrDefault("MINIO_ACCESS_KEY", "minioadmin"),
			SecretAccessKey: getEnvOrDefault("MINIO_SECRET_KEY", "minioadmin"),
			PublicURL:       getEnvOrDefault("AUDIO_PUBLIC_URL", ""),
			CacheDir:        getEnvOrDefault("AUDIO_CACHE_DIR", "tmp/cache"),
		},
		TTS: TTSConfig{
			Provider:      getEnvOrDefault("TTS_PROVIDER", "edge"),
			HostVoice:     getEnvOrDefault("TTS_HOST_VOICE", "en-US-AvaMultilingualNeural"),
			GuestVoice:    getEnvOrDefault("TTS_GUEST_VOICE", "en-US-AndrewMultilingualNeural"),
			NarratorVoice: getEnvOrDefault("TTS_NARRATOR_VOICE", "en-US-AvaMultilingualNeural"),
			EdgeTTS: EdgeTTSConfig{
				OutputFormat: getEnvOrDefault("EDGE_TTS_FORMAT", "audio-24khz-48kbitrate-mono-mp3"),
				Endpoint:     getEnvOrDefault("EDGE_TTS_ENDPOINT", "https://speech.platform.bing.com/consumer/speech/synthesize/readaloud/edge/v1"),
			},
			AliyunTTS: AliyunTTSConfig{
				AccessKeyID:     getEnvOrDefault("ALIYUN_ACCESS_KEY_ID", ""),
				AccessKeySecret: getEnvOrDefault("ALIYUN_ACCESS_KEY_SECRET", ""),
				Region:          getEnvOrDefault("ALIYUN_REGION", "cn-shanghai"),
			},
		},
		Pipeline: PipelineConfig{
			ShortContentChars:  getEnvIntOrDefault("PIPELINE_SHORT_CONTENT_CHARS", 500),
			MinSpeechChars:     getEnvIntOrDefault("PIPELINE_MIN_SPEECH_CHARS", 100),
			MinPodcastChars:    getEnvIntOrDefault("PIPELINE_MIN_PODCAST_CHARS", 100),
			PodcastConcurrency: int64(getEnvIntOrDefault("PIPELINE_PODCAST_CONCURRENCY", 3)),
			RetryDelays:        getEnvDurationListOrDefault("PIPELINE_RETRY_DELAYS", []time.Duration{5 * time.Second, 10 * time.Second}),
			StoryTimeout:       getEnvDurationOrDefault("PIPELINE_STORY_TIMEOUT", 15*time.Minute),
		},
		HackerNews: HackerNewsConfig{
			APIBase:  getEnvOrDefault("HN_API_BASE", "https://hacker-news.firebaseio.com/v0"),
			SiteBase: getEnvOrDefault("HN_SITE_BASE", "https://news.ycombinator.com"),
			Keywords: getEnvListOrDefault("HN_KEYWORDS", []string{"gpt", "llm", "workflow", "serverless"}),
			MinScore: getEnvIntOrDefault("HN_MIN_SCORE", 40),
			MaxItems: getEnvIntOrDefault("MAX_ITEMS", 100),
			Source:   getEnvOrDefault("HN_SOURCE_NAME", "HackerNews"),
		},
		TechCrunch: TechCrunchConfig{
			CategoryURL: getEnvOrDefault("TC_CATEGORY_URL", "https://techcrunch.com/category/artificial-intelligence/"),
			Timezone:    getEnvOrDefault("TC_TIMEZONE", "America/Los_Angeles"),
			Source:      getEnvOrDefault("TC_SOURCE_NAME", "TechCrunch"),
		},
		Database: DatabaseConfig{
			DSN:   getEnvOrDefault("DATABASE_URL", ""),
			Table: getEnvOrDefault("DATABASE_TABLE", "stories"),
		},
		Discord: DiscordConfig{
			Webhooks: getEnvListOrDefault("DISCORD_WEBHOOKS", nil),
		},
		Email: EmailConfig{
			ResendAPIKey:     getEnvOrDefault("RESEND_API_KEY", ""),
			APIBase:          getEnvOrDefault("RESEND_API_BASE", "https://api.resend.com"),
			From:             getEnvOrDefault("EMAIL_FROM", "AI Frontiers <newsletter.digest@aicrafter.info>"),
			Recipients:       getEnvListOrDefault("EMAIL_RECIPIENTS", nil),
			SubscribersTable: getEnvOrDefault("EMAIL_SUBSCRIBERS_TABLE", "newsletter_subs"),
			BatchSize:        getEnvIntOrDefault("EMAIL_BATCH_SIZE", 50),
			Concurrency:      getEnvIntOrDefault("EMAIL_CONCURRENCY", 10),
			BatchPause:       getEnvDurationOrDefault("EMAIL_BATCH_PAUSE", time.Second),
		},
		Schedule: ScheduleConfig{
			HackerNews: getEnvOrDefault("SCHEDULE_HN", "0 0 */2 * * *"),
			TechCrunch: getEnvOrDefault("SCHEDULE_TC", "0 30 1 * * *"),
		},
	}
}

// getEnvOrDefault 获取环境变量或默认值
func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvIntOrDefault 获取环境变量(整数)或默认值
func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

// getEnvDurationOrDefault 获取环境变量(时长，如 30s)或默认值
func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

// getEnvListOrDefault 获取逗号分隔的环境变量
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// getEnvDurationListOrDefault 获取逗号分隔的时长列表，任一项非法则使用默认值
func getEnvDurationListOrDefault(key string, defaultValue []time.Duration) []time.Duration {
	items := getEnvListOrDefault(key, nil)
	if items == nil {
		return defaultValue
	}
	delays := make([]time.Duration, 0, len(items))
	for _, item := range items {
		d, err := time.ParseDuration(item)
		if err != nil {
			return defaultValue
		}
		delays = append(delays, d)
	}
	return delays
}
