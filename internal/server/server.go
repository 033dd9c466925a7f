package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"udp2amqp/pkg/errorutil"
	"udp2amqp/pkg/logger"
)

// Server HTTP 服务（监听在启动时同步完成，绑定失败立即返回）
type Server struct {
	name   string
	srv    *http.Server
	ln     net.Listener
	logger logger.Logger
}

// Listen 绑定监听地址
func Listen(name, addr string, handler http.Handler, log logger.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errorutil.NonRetriable(fmt.Sprintf("bind %s listener `%s`", name, addr), err)
	}

	return &Server{
		name:   name,
		srv:    &http.Server{Handler: handler},
		ln:     ln,
		logger: log,
	}, nil
}

// Addr 实际监听地址
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Serve 处理请求，阻塞直到 Shutdown 或出错
func (s *Server) Serve() error {
	s.logger.Infof(context.Background(), "%s listening on `%s`", s.name, s.ln.Addr())
	if err := s.srv.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errorutil.NonRetriable(fmt.Sprintf("serve %s", s.name), err)
	}
	return nil
}

// Shutdown 优雅关闭，未进入 Serve 时也释放监听
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.srv.Shutdown(ctx)
	_ = s.ln.Close()
	return err
}
