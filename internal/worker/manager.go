package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/atomic"

	"udp2amqp/internal/server"
	"udp2amqp/pkg/config"
	"udp2amqp/pkg/infra/amqp"
	"udp2amqp/pkg/logger"
	"udp2amqp/pkg/metrics"
)

const shutdownTimeout = 5 * time.Second

// Manager 接口
type Manager interface {
	Start() error
	Shutdown()
}

// ManagerInstance Manager 实例：探针、指标服务、Supervisor 的装配与生命周期
type ManagerInstance struct {
	ctx        context.Context
	cancel     context.CancelFunc
	cfg        *config.Config
	state      *server.State
	metrics    *metrics.Metrics
	supervisor *Supervisor
	servers    []*server.Server
	closing    *atomic.Bool
	wg         sync.WaitGroup
	logger     logger.Logger
}

// NewManagerInstance 创建 Manager
// 探针/指标端口在这里同步绑定，绑定失败直接返回（致命错误）
func NewManagerInstance(cfg *config.Config, log logger.Logger) (Manager, error) {
	ctx, cancel := context.WithCancel(context.Background())

	m := &ManagerInstance{
		ctx:     ctx,
		cancel:  cancel,
		cfg:     cfg,
		state:   server.NewState(),
		metrics: metrics.New(),
		closing: atomic.NewBool(false),
		logger:  log,
	}

	// 1. 就绪探针（端口为 0 时不启动）
	if cfg.HTTPProbePort != 0 {
		probe, err := server.NewProbe(cfg.HTTPProbePort, m.state, log.Named("probe"))
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to start readiness probe: %w", err)
		}
		m.servers = append(m.servers, probe)
	}

	// 2. Prometheus 指标（端口为 0 时不启动）
	if cfg.MetricsPort != 0 {
		exporter, err := server.NewExporter(cfg.MetricsPort, m.metrics, log.Named("metrics"))
		if err != nil {
			m.closeServers()
			cancel()
			return nil, fmt.Errorf("failed to start metrics exporter: %w", err)
		}
		m.servers = append(m.servers, exporter)
	}

	// 3. Supervisor
	m.supervisor = NewSupervisor(
		SupervisorConfig{
			BindAddr:              cfg.UDPBindAddr,
			ReconnectDelayLimitMS: cfg.ReconnectDelayLimitMS,
			NoReconnect:           cfg.NoReconnect,
		},
		m.state,
		ListenUDP,
		m.dialBroker,
		m.metrics,
		log.Named("supervisor"),
	)

	log.Infof(ctx, "[Manager] Initialized: udp=%s, amqp=%s, exchange=%q, routing_key=%q",
		cfg.UDPBindAddr, cfg.RedactedAMQPURI(), cfg.AMQPExchange, cfg.AMQPRoutingKey)

	return m, nil
}

// dialBroker 为每个连接周期新建 AMQP 发布端
func (m *ManagerInstance) dialBroker(ctx context.Context, sessionID string) (Broker, error) {
	return amqp.NewPublisher(ctx, amqp.Options{
		URI:            m.cfg.AMQPURI,
		Exchange:       m.cfg.AMQPExchange,
		RoutingKey:     m.cfg.AMQPRoutingKey,
		ConnectionName: "udp2amqp-" + sessionID,
		Logger:         m.logger.Named("amqp"),
	})
}

// Start 启动 Manager，阻塞直到 Supervisor 结束或 HTTP 服务出错
// 返回 nil 表示正常结束（不重连模式下的第一次瞬时故障）
func (m *ManagerInstance) Start() error {
	m.logger.Infof(m.ctx, "[Manager] Starting...")

	errCh := make(chan error, len(m.servers)+1)

	// 1. HTTP 服务（每个在独立 goroutine）
	for _, srv := range m.servers {
		s := srv
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			if err := s.Serve(); err != nil {
				errCh <- err
			}
		}()
	}

	// 2. Supervisor
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		errCh <- m.supervisor.Run(m.ctx)
	}()

	// 3. 阻塞等待第一个结果
	err := <-errCh
	if m.closing.Load() {
		return nil
	}
	return err
}

// Shutdown 关闭 HTTP 服务并停止 Supervisor
func (m *ManagerInstance) Shutdown() {
	// 原子操作，保证只执行一次
	if m.closing.CAS(false, true) {
		m.logger.Infof(m.ctx, "[Manager] Began to close")
		m.cancel()
		m.closeServers()
		m.wg.Wait()
		m.logger.Infof(context.Background(), "[Manager] Shutdown complete")
	}
}

func (m *ManagerInstance) closeServers() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, srv := range m.servers {
		if err := srv.Shutdown(ctx); err != nil {
			m.logger.Warnf(ctx, "[Manager] HTTP server shutdown error: %v", err)
		}
	}
}
