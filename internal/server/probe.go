package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"udp2amqp/pkg/logger"
)

// NewProbeRouter 就绪探针路由：只有 GET /
// 就绪返回 200，否则 500，响应体均为空
func NewProbeRouter(state *State) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/", func(c *gin.Context) {
		if state.Ready() {
			c.Status(http.StatusOK)
			return
		}
		c.Status(http.StatusInternalServerError)
	})

	return r
}

// NewProbe 在所有网卡的指定端口上绑定探针
func NewProbe(port uint16, state *State, log logger.Logger) (*Server, error) {
	return Listen("probe", fmt.Sprintf("0.0.0.0:%d", port), NewProbeRouter(state), log)
}
