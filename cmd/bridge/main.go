package main

import (
	"flag"
	"log"

	"github.com/gin-gonic/gin"

	"udp2amqp/internal/worker"
	"udp2amqp/pkg/config"
	"udp2amqp/pkg/logger"
)

var (
	configPath = flag.String("config", "", "配置文件路径（可选，环境变量优先）")
)

func main() {
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Config validation failed: %v", err)
	}

	// 2. 初始化 Logger
	zapLogger, err := logger.NewZapLogger(cfg.LogLevel())
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 3. 创建 Manager（探针端口在此绑定）
	mgr, err := worker.NewManagerInstance(cfg, zapLogger)
	if err != nil {
		zapLogger.Sync()
		log.Fatalf("Failed to create manager: %v", err)
	}

	// 4. 阻塞运行，直到致命错误或不重连模式下的首次故障
	if err := mgr.Start(); err != nil {
		zapLogger.Sync()
		log.Fatalf("Bridge stopped on fatal error: %v", err)
	}

	mgr.Shutdown()
	log.Println("Bridge stopped, reconnect disabled")
}
