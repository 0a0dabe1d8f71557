package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"hn-digest/config"
	"hn-digest/internal/digest"
	"hn-digest/internal/models"
	"hn-digest/internal/tts"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Enricher 文章加工流程
type Enricher interface {
	Run(ctx context.Context, req models.EnrichmentRequest) models.EnrichmentResult
}

// Jobs 后台批处理任务
type Jobs interface {
	Trigger(job string) error
	Status() digest.Status
}

// Server 是API服务器结构
type Server struct {
	config     *config.Config
	router     *gin.Engine
	enricher   Enricher
	jobs       Jobs
	ttsService tts.Service
	uploader   tts.Uploader
}

// NewServer 创建一个新的API服务器
func NewServer(cfg *config.Config, enricher Enricher, jobs Jobs, ttsService tts.Service, uploader tts.Uploader) *Server {
	router := gin.Default()

	// 启用CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
	}))

	server := &Server{
		config:     cfg,
		router:     router,
		enricher:   enricher,
		jobs:       jobs,
		ttsService: ttsService,
		uploader:   uploader,
	}
	server.registerRoutes()
	return server
}

// registerRoutes 注册API路由
func (s *Server) registerRoutes() {
	s.router.GET("/health", s.healthHandler)

	v1 := s.router.Group("/api/v1")
	{
		// 单篇文章加工
		v1.POST("/enrich", s.enrichHandler)

		// 启动后台批处理
		v1.POST("/process", s.processHandler)

		// 获取处理状态
		v1.GET("/status", s.getStatusHandler)

		// 文本转语音
		v1.POST("/tts", s.ttsHandler)
	}
}

// Handler 返回路由，供 http.Server 使用
func (s *Server) Handler() http.Handler {
	return s.router
}

// healthHandler 健康检查处理程序
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

type enrichRequest struct {
	URL             string `json:"url"`
	Topic           string `json:"topic"`
	Content         string `json:"content"`
	GenerateSummary *bool  `json:"generateSummary"`
	GenerateSpeech  *bool  `json:"generateSpeech"`
	GeneratePodcast *bool  `json:"generatePodcast"`
}

// flag 未传的开关默认开启
func flag(v *bool) bool {
	return v == nil || *v
}

// enrichHandler 同步执行一次文章加工
func (s *Server) enrichHandler(c *gin.Context) {
	var req enrichRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求参数"})
		return
	}
	if strings.TrimSpace(req.URL) == "" && strings.TrimSpace(req.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url 和 content 不能同时为空"})
		return
	}

	result := s.enricher.Run(c.Request.Context(), models.EnrichmentRequest{
		Topic:   req.Topic,
		URL:     req.URL,
		Content: req.Content,
		Options: models.EnrichmentOptions{
			Summary: flag(req.GenerateSummary),
			Speech:  flag(req.GenerateSpeech),
			Podcast: flag(req.GeneratePodcast),
		},
	})
	c.JSON(http.StatusOK, result)
}

// processHandler 在后台启动 Hacker News 或 TechCrunch 批处理
func (s *Server) processHandler(c *gin.Context) {
	var req struct {
		Job string `json:"job"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求参数"})
		return
	}
	if req.Job == "" {
		req.Job = digest.JobHackerNews
	}

	err := s.jobs.Trigger(req.Job)
	switch {
	case errors.Is(err, digest.ErrRunning):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, digest.ErrUnknownJob):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		log.Errorf("启动任务失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "启动任务失败"})
	default:
		c.JSON(http.StatusAccepted, gin.H{
			"job":     req.Job,
			"message": "处理已开始",
		})
	}
}

// getStatusHandler 获取处理状态
func (s *Server) getStatusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.jobs.Status())
}

// ttsHandler 文本转语音并上传
func (s *Server) ttsHandler(c *gin.Context) {
	var req struct {
		Text  string `json:"text" binding:"required"`
		Voice string `json:"voice"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求参数"})
		return
	}
	if req.Voice == "" {
		req.Voice = s.config.TTS.NarratorVoice
	}

	ctx := c.Request.Context()
	audio, err := s.ttsService.SynthesizeSpeech(ctx, req.Text, req.Voice)
	if err != nil {
		log.Errorf("文本转语音失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "文本转语音失败"})
		return
	}

	path, err := tts.WriteTempAudio(s.config.MinIO.CacheDir, audio)
	if err != nil {
		log.Errorf("写入临时音频失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "写入音频失败"})
		return
	}
	audioURL, err := s.uploader.Upload(ctx, path)
	if err != nil {
		log.Errorf("上传音频失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "上传音频失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"audioUrl": audioURL})
}
