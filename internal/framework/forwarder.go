package framework

import (
	"context"
	"net"
	"time"

	"udp2amqp/pkg/errorutil"
	"udp2amqp/pkg/metrics"
)

// Forwarder 转发循环：从 UDP socket 接收数据报，逐条同步发布到 AMQP
// 同一时刻最多一条发布在途，保证顺序、不丢不重
type Forwarder struct {
	conn      net.PacketConn
	publisher Publisher
	logger    Logger
	metrics   *metrics.Metrics
	buf       []byte
}

// NewForwarder 创建转发循环
func NewForwarder(conn net.PacketConn, publisher Publisher, logger Logger, m *metrics.Metrics) *Forwarder {
	return &Forwarder{
		conn:      conn,
		publisher: publisher,
		logger:    logger,
		metrics:   m,
		buf:       make([]byte, MaxDatagramSize),
	}
}

// Run 运行转发循环，直到接收或发布失败
// 失败立即返回（可重试错误），不做本地恢复；ctx 取消时关闭 socket 并返回 ctx.Err()
func (f *Forwarder) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		_ = f.conn.Close()
	})
	defer stop()

	for {
		// 1. 阻塞接收
		n, addr, err := f.conn.ReadFrom(f.buf)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			f.metrics.ObserveReceiveError()
			return errorutil.Retriable("udp receive", err)
		}

		dg := Datagram{Payload: f.buf[:n], Source: addr}
		f.metrics.ObserveDatagram(n)
		f.logger.Debugf(ctx, "received %d bytes from `%s`", n, dg.Source)

		// 2. 同步发布，完成后才接收下一条
		if err := f.forward(ctx, dg); err != nil {
			return err
		}
	}
}

// forward 发布单个数据报
func (f *Forwarder) forward(ctx context.Context, dg Datagram) error {
	start := time.Now()
	err := f.publisher.Publish(ctx, dg.Payload)
	f.metrics.ObservePublish(time.Since(start), err)
	if err != nil {
		return errorutil.Retriable("amqp publish", err)
	}
	return nil
}
