package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("PIPELINE_RETRY_DELAYS", "")
	t.Setenv("HN_KEYWORDS", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("RESEND_API_KEY", "")
	t.Setenv("EMAIL_BATCH_SIZE", "")
	t.Setenv("EMAIL_CONCURRENCY", "")

	cfg := LoadConfig()

	assert.False(t, cfg.Email.Enabled())
	assert.Equal(t, 50, cfg.Email.BatchSize)
	assert.Equal(t, 10, cfg.Email.Concurrency)
	assert.Equal(t, time.Second, cfg.Email.BatchPause)
	assert.Equal(t, "newsletter_subs", cfg.Email.SubscribersTable)

	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, 500, cfg.Pipeline.ShortContentChars)
	assert.Equal(t, 100, cfg.Pipeline.MinSpeechChars)
	assert.Equal(t, int64(3), cfg.Pipeline.PodcastConcurrency)
	assert.Equal(t, []time.Duration{5 * time.Second, 10 * time.Second}, cfg.Pipeline.RetryDelays)
	assert.Equal(t, []string{"gpt", "llm", "workflow", "serverless"}, cfg.HackerNews.Keywords)
	assert.Equal(t, "en-US-AvaMultilingualNeural", cfg.TTS.HostVoice)
	assert.Equal(t, "en-US-AndrewMultilingualNeural", cfg.TTS.GuestVoice)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PIPELINE_RETRY_DELAYS", "1s, 2s,3s")
	t.Setenv("HN_KEYWORDS", "rust, go ,,")
	t.Setenv("HN_MIN_SCORE", "not-a-number")
	t.Setenv("LLM_TIMEOUT", "45s")
	t.Setenv("RESEND_API_KEY", "re_test")
	t.Setenv("EMAIL_RECIPIENTS", "a@example.com, b@example.com")

	cfg := LoadConfig()

	assert.True(t, cfg.Email.Enabled())
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.Email.Recipients)

	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 3 * time.Second}, cfg.Pipeline.RetryDelays)
	assert.Equal(t, []string{"rust", "go"}, cfg.HackerNews.Keywords)
	assert.Equal(t, 40, cfg.HackerNews.MinScore)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
}

func TestGetEnvDurationListInvalidFallsBack(t *testing.T) {
	t.Setenv("X_DELAYS", "1s,oops")
	def := []time.Duration{time.Minute}

	assert.Equal(t, def, getEnvDurationListOrDefault("X_DELAYS", def))
}
