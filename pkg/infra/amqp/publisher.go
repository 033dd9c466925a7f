package amqp

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"udp2amqp/pkg/logger"
)

// Options 发布端参数
type Options struct {
	URI            string
	Exchange       string // 为空时使用 broker 默认 exchange，不做 declare
	RoutingKey     string
	ConnectionName string // 作为 connection_name 客户端属性上报给 broker
	Logger         logger.Logger
}

// channel 发布端用到的 *amqp.Channel 方法
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	NotifyClose(c chan *amqp.Error) chan *amqp.Error
	Close() error
}

// Publisher AMQP 发布端：一个连接 + 一个 channel
type Publisher struct {
	conn       *amqp.Connection
	ch         channel
	exchange   string
	routingKey string
	closed     chan error
	logger     logger.Logger
}

// NewPublisher 连接 broker 并打开 channel
// Exchange 非空时声明为 direct、durable、非 auto-delete、非 internal 的 exchange
// 返回的错误已按 errorutil 分类：I/O 故障可重试，其余为致命错误
func NewPublisher(ctx context.Context, opts Options) (*Publisher, error) {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}

	props := amqp.NewConnectionProperties()
	if opts.ConnectionName != "" {
		props.SetClientConnectionName(opts.ConnectionName)
	}

	// 1. 建立连接
	conn, err := amqp.DialConfig(opts.URI, amqp.Config{
		Heartbeat:  10 * time.Second,
		Locale:     "en_US",
		Properties: props,
	})
	if err != nil {
		return nil, classifyConnectError("amqp connect", err)
	}
	log.Infof(ctx, "connected to AMQP server `%s`", conn.RemoteAddr())

	// 2. 打开 channel
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, classifyConnectError("amqp open channel", err)
	}

	// 3. 声明 exchange（可选）
	if err := declareExchange(ctx, ch, opts.Exchange, log); err != nil {
		_ = conn.Close()
		return nil, err
	}

	p := newPublisher(conn, ch, opts, log)
	p.watch()

	return p, nil
}

func newPublisher(conn *amqp.Connection, ch channel, opts Options, log logger.Logger) *Publisher {
	return &Publisher{
		conn:       conn,
		ch:         ch,
		exchange:   opts.Exchange,
		routingKey: opts.RoutingKey,
		closed:     make(chan error, 1),
		logger:     log,
	}
}

// declareExchange exchange 为空时不声明，直接使用默认 exchange
func declareExchange(ctx context.Context, ch channel, exchange string, log logger.Logger) error {
	if exchange == "" {
		return nil
	}

	log.Infof(ctx, "declaring direct exchange `%s`", exchange)
	err := ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeDirect,
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return classifyConnectError(fmt.Sprintf("amqp declare exchange `%s`", exchange), err)
	}
	return nil
}

// watch 监听连接和 channel 的关闭通知
// broker 主动关闭时把原因写入 closed，随后关闭 closed
func (p *Publisher) watch() {
	connClosed := p.conn.NotifyClose(make(chan *amqp.Error, 1))
	chClosed := p.ch.NotifyClose(make(chan *amqp.Error, 1))

	go func() {
		var reason *amqp.Error
		select {
		case reason = <-connClosed:
		case reason = <-chClosed:
		}
		if reason != nil {
			p.closed <- reason
		}
		close(p.closed)
	}()
}

// Closed 连接或 channel 关闭时可读
// broker 异常关闭时先收到关闭原因；主动 Close 时只会被关闭
func (p *Publisher) Closed() <-chan error {
	return p.closed
}

// Publish 发布一条消息（默认发布选项、默认消息属性）
// 返回时消息帧已写出，调用方可以复用 body
func (p *Publisher) Publish(ctx context.Context, body []byte) error {
	err := p.ch.PublishWithContext(ctx, p.exchange, p.routingKey, false, false, amqp.Publishing{
		Body: body,
	})
	if err != nil {
		return fmt.Errorf("amqp publish failed: %w", err)
	}
	return nil
}

// Close 关闭 channel 和连接
func (p *Publisher) Close() error {
	_ = p.ch.Close()
	if err := p.conn.Close(); err != nil && err != amqp.ErrClosed {
		return err
	}
	return nil
}
