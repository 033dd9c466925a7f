package errorutil

import "errors"

// Error 错误结构（包含可重试标记）
// Retryable=true 表示瞬时故障（网络抖动、连接断开），由 Supervisor 退避重连
// Retryable=false 表示致命故障（配置错误、认证失败），进程直接退出
type Error struct {
	Op        string // 出错的操作
	Retryable bool
	Err       error
}

// Error 实现 error 接口
func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op
	}
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

// Unwrap 支持 errors.Is / errors.As
func (e *Error) Unwrap() error {
	return e.Err
}

// Kind 返回错误类别（用于日志）
func (e *Error) Kind() string {
	if e.Retryable {
		return "transient"
	}
	return "fatal"
}

// Retriable 创建可重试错误（网络错误、临时故障等）
func Retriable(op string, err error) *Error {
	return &Error{
		Op:        op,
		Retryable: true,
		Err:       err,
	}
}

// NonRetriable 创建不可重试错误（绑定失败、协议错误、认证失败等）
func NonRetriable(op string, err error) *Error {
	return &Error{
		Op:        op,
		Retryable: false,
		Err:       err,
	}
}

// Wrap 包装错误（自动判断是否可重试）
func Wrap(err error) *Error {
	if err == nil {
		return nil
	}

	// 错误链中已有 Error 类型，直接返回
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	// 默认为不可重试错误
	return NonRetriable("", err)
}

// IsRetriable 判断错误是否可重试
// 未分类的错误一律视为致命错误
func IsRetriable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}
