package logger

import "context"

type ctxKey string

const (
	sessionKey ctxKey = "session_id"
	attemptKey ctxKey = "attempt"
)

// WithSession 注入连接会话 ID
func WithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey, sessionID)
}

// WithAttempt 注入重试计数
func WithAttempt(ctx context.Context, attempt uint64) context.Context {
	return context.WithValue(ctx, attemptKey, attempt)
}
