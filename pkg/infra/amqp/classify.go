package amqp

import (
	"errors"
	"io"
	"net"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"

	"udp2amqp/pkg/errorutil"
)

// classifyConnectError 连接/声明错误分类
// 网络层故障可重试；协议错误、认证失败、exchange 类型冲突、URI 错误为致命错误
func classifyConnectError(op string, err error) error {
	if IsIOFault(err) {
		return errorutil.Retriable(op, err)
	}
	return errorutil.NonRetriable(op, err)
}

// IsIOFault 判断错误是否为网络 I/O 故障
func IsIOFault(err error) bool {
	if err == nil {
		return false
	}

	// 连接在握手过程中被断开
	if errors.Is(err, amqp.ErrClosed) {
		return true
	}

	// 其余 AMQP 协议层错误（403 ACCESS_REFUSED、406 PRECONDITION_FAILED 等）
	var amqpErr *amqp.Error
	if errors.As(err, &amqpErr) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE)
}
