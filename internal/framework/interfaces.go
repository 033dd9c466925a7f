package framework

import (
	"context"
)

// Publisher 消息发布接口（适配不同 MQ）
type Publisher interface {
	// Publish 发布一条消息，返回前消息已写出，调用方可以复用 body
	Publish(ctx context.Context, body []byte) error
}

// Logger 日志接口
type Logger interface {
	Debugf(ctx context.Context, format string, args ...interface{})
	Infof(ctx context.Context, format string, args ...interface{})
	Warnf(ctx context.Context, format string, args ...interface{})
	Errorf(ctx context.Context, format string, args ...interface{})
}
