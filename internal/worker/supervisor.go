package worker

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"

	"udp2amqp/internal/framework"
	"udp2amqp/internal/server"
	"udp2amqp/pkg/errorutil"
	"udp2amqp/pkg/logger"
	"udp2amqp/pkg/metrics"
)

// Broker 一次连接周期内的 AMQP 发布端
type Broker interface {
	framework.Publisher
	// Closed broker 关闭连接时可读，异常关闭时先收到原因
	Closed() <-chan error
	Close() error
}

// BindFunc 绑定 UDP socket
type BindFunc func(addr string) (net.PacketConn, error)

// DialFunc 连接 broker，返回的错误须已按 errorutil 分类
type DialFunc func(ctx context.Context, sessionID string) (Broker, error)

// SupervisorConfig Supervisor 配置
type SupervisorConfig struct {
	BindAddr              string
	ReconnectDelayLimitMS uint64 // 退避上限
	NoReconnect           bool   // 首次瞬时故障后停止
}

// Supervisor 连接生命周期管理：绑定 → 连接 → 转发 → 退避重连
type Supervisor struct {
	cfg     SupervisorConfig
	state   *server.State
	bind    BindFunc
	dial    DialFunc
	sleep   func(ctx context.Context, d time.Duration) error
	metrics *metrics.Metrics
	logger  logger.Logger

	// retries 只增不减，重连成功也不清零
	retries uint64
}

// NewSupervisor 创建 Supervisor
func NewSupervisor(
	cfg SupervisorConfig,
	state *server.State,
	bind BindFunc,
	dial DialFunc,
	m *metrics.Metrics,
	log logger.Logger,
) *Supervisor {
	return &Supervisor{
		cfg:     cfg,
		state:   state,
		bind:    bind,
		dial:    dial,
		sleep:   sleepContext,
		metrics: m,
		logger:  log,
	}
}

// ListenUDP 默认的 UDP 绑定实现
func ListenUDP(addr string) (net.PacketConn, error) {
	return net.ListenPacket("udp", addr)
}

// Run 循环执行连接周期
// 返回 nil：NoReconnect 模式下遇到第一次瞬时故障
// 返回不可重试错误：致命故障，调用方应终止进程
// 返回 ctx.Err()：ctx 被取消
func (s *Supervisor) Run(ctx context.Context) error {
	for {
		attemptCtx := logger.WithAttempt(ctx, s.retries)
		err := s.cycle(attemptCtx)

		// 1. 标记未就绪
		s.setReady(attemptCtx, false)

		if ctx.Err() != nil {
			return ctx.Err()
		}

		// 2. 致命错误不重试（未分类错误按致命处理）
		classified := errorutil.Wrap(err)
		if classified == nil {
			classified = errorutil.NonRetriable("connection cycle", errors.New("ended without error"))
			err = classified
		}
		if !classified.Retryable {
			s.logger.Errorf(attemptCtx, "stopping on %s error: %v", classified.Kind(), err)
			return err
		}

		// 3. 不重连模式：正常结束
		if s.cfg.NoReconnect {
			s.logger.Errorf(attemptCtx, "stopping after %s error, reconnect disabled: %v", classified.Kind(), err)
			return nil
		}

		// 4. 退避后重连
		delay := Backoff(s.retries, s.cfg.ReconnectDelayLimitMS)
		s.logger.Errorf(attemptCtx, "retrying in %v after %s error: %v", delay, classified.Kind(), err)
		s.metrics.ObserveRetry(delay)
		if err := s.sleep(ctx, delay); err != nil {
			return err
		}
		s.retries++
	}
}

// cycle 一个完整的连接周期，总是以错误结束
func (s *Supervisor) cycle(ctx context.Context) error {
	// 1. 绑定 UDP（失败为致命错误）
	conn, err := s.bind(s.cfg.BindAddr)
	if err != nil {
		return errorutil.NonRetriable(fmt.Sprintf("bind udp socket `%s`", s.cfg.BindAddr), err)
	}
	defer conn.Close()
	s.logger.Infof(ctx, "bound to udp socket `%s`", conn.LocalAddr())

	// 2. 连接 broker
	sessionID := uuid.NewString()
	ctx = logger.WithSession(ctx, sessionID)

	broker, err := s.dial(ctx, sessionID)
	if err != nil {
		s.metrics.ObserveConnectFailure()
		return err
	}
	defer broker.Close()

	// 3. 就绪，开始转发
	s.setReady(ctx, true)
	return s.forward(ctx, conn, broker)
}

// forward 运行转发循环，同时监听 broker 关闭通知
// broker 关闭时取消转发循环（关闭 socket 以唤醒阻塞的接收）
func (s *Supervisor) forward(ctx context.Context, conn net.PacketConn, broker Broker) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	reason := atomic.NewError(nil)
	go func() {
		select {
		case err, ok := <-broker.Closed():
			if ok && err != nil {
				reason.Store(err)
			}
			cancel()
		case <-runCtx.Done():
		}
	}()

	fwd := framework.NewForwarder(conn, broker, s.logger.Named("forwarder"), s.metrics)
	err := fwd.Run(runCtx)

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if closeErr := reason.Load(); closeErr != nil {
		return errorutil.Retriable("amqp connection closed", closeErr)
	}
	if errors.Is(err, context.Canceled) {
		return errorutil.Retriable("amqp connection closed", err)
	}
	return err
}

// setReady 更新就绪状态，仅在变化时记录日志
func (s *Supervisor) setReady(ctx context.Context, ready bool) {
	if !s.state.SetReady(ready) {
		return
	}
	s.metrics.SetReady(ready)
	if ready {
		s.logger.Infof(ctx, "setting ready status")
	} else {
		s.logger.Infof(ctx, "setting not ready status")
	}
}
