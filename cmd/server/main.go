package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"hn-digest/config"
	"hn-digest/internal/api"
	"hn-digest/internal/app"
	"hn-digest/internal/digest"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

func main() {
	// 加载配置
	cfg := config.LoadConfig()
	config.SetupLogging(cfg.Log)
	log.Info("启动 HN Digest 服务")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("初始化失败: %v", err)
	}
	if err := application.OpenDigest(ctx); err != nil {
		log.Fatalf("初始化批处理失败: %v", err)
	}
	defer application.Close()

	jobs := application.Digest

	// 创建定时任务
	c := cron.New(cron.WithSeconds())
	schedules := []struct {
		name string
		spec string
		run  func(context.Context) (int, error)
	}{
		{name: digest.JobHackerNews, spec: cfg.Schedule.HackerNews, run: jobs.RunHackerNews},
		{name: digest.JobTechCrunch, spec: cfg.Schedule.TechCrunch, run: jobs.RunTechCrunch},
	}
	for _, job := range schedules {
		if job.spec == "" {
			continue
		}
		job := job
		if _, err := c.AddFunc(job.spec, func() {
			log.Infof("定时任务触发: %s", job.name)
			if _, err := job.run(ctx); err != nil {
				log.Warnf("定时任务 %s 失败: %v", job.name, err)
			}
		}); err != nil {
			log.Errorf("添加定时任务 %s(%q) 失败: %v", job.name, job.spec, err)
		}
	}
	c.Start()
	log.Info("定时任务已启动")

	server := api.NewServer(cfg, application.Enricher, jobs, application.Speech, application.Storage)
	httpServer := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: server.Handler(),
	}

	// 启动服务器（非阻塞）
	go func() {
		log.Infof("服务器正在监听端口 %s", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务器运行失败: %v", err)
		}
	}()

	// 等待退出信号
	<-ctx.Done()
	log.Info("收到退出信号，正在关闭服务")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Errorf("关闭服务器失败: %v", err)
	}
	<-c.Stop().Done()
}
