// Package retry 有限次数地重复执行操作,两次尝试之间的等待逐渐增加
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrMaxAttemptsExceeded 所有尝试都失败时返回,并包装最后一次的错误
var ErrMaxAttemptsExceeded = errors.New("max retry attempts exceeded")

// Backoff 返回第 attempt 次(从1开始)失败后的等待时间
type Backoff func(attempt int) time.Duration

// Linear 每次失败后等待 2*attempt*unit: 2u, 4u, 6u...
func Linear(unit time.Duration) Backoff {
	return func(attempt int) time.Duration {
		return time.Duration(2*attempt) * unit
	}
}

// Constant 固定等待 d
func Constant(d time.Duration) Backoff {
	return func(int) time.Duration { return d }
}

// Do 重复调用 op,直到成功、达到 maxAttempts 或 ctx 结束
// op 收到从1开始的尝试序号
func Do(ctx context.Context, maxAttempts int, backoff Backoff, op func(ctx context.Context, attempt int) error) error {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = op(ctx, attempt)
		if lastErr == nil {
			return nil
		}
		if attempt == maxAttempts || backoff == nil {
			continue
		}
		if err := Sleep(ctx, backoff(attempt)); err != nil {
			return err
		}
	}
	return fmt.Errorf("%w (%d): %w", ErrMaxAttemptsExceeded, maxAttempts, lastErr)
}

// Sleep 等待 d,ctx 结束时提前返回
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
