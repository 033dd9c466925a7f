package server

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"udp2amqp/pkg/logger"
	"udp2amqp/pkg/metrics"
)

// NewMetricsRouter Prometheus 指标路由：GET /metrics
func NewMetricsRouter(m *metrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/metrics", gin.WrapH(m.Handler()))
	return r
}

// NewExporter 绑定指标端口（与探针端口分开，探针只保留一个路由）
func NewExporter(port uint16, m *metrics.Metrics, log logger.Logger) (*Server, error) {
	return Listen("metrics", fmt.Sprintf("0.0.0.0:%d", port), NewMetricsRouter(m), log)
}
