package worker

import (
	"context"
	"math"
	"time"
)

const backoffBaseMS = 100

// Backoff 计算第 retries 次重连前的等待时间
// min(limitMS, 2^retries * 100ms)，溢出时取上限
func Backoff(retries uint64, limitMS uint64) time.Duration {
	ms := limitMS
	if retries < 64 && uint64(1)<<retries <= limitMS/backoffBaseMS {
		ms = backoffBaseMS << retries
	}

	if ms > uint64(math.MaxInt64/int64(time.Millisecond)) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ms) * time.Millisecond
}

// sleepContext 等待 d 或 ctx 取消
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
