package config

import (
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// SetupLogging 根据配置初始化全局日志
func SetupLogging(cfg LogConfig) {
	log.SetOutput(os.Stdout)
	if strings.EqualFold(cfg.Format, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		log.Warnf("无效的日志级别 %q，使用 info", cfg.Level)
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
