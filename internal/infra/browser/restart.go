package browser

import (
	"context"
	"time"

	"github.com/LouYuanbo1/rostercrawler/internal/config"
	"github.com/LouYuanbo1/rostercrawler/internal/errs"
	"github.com/LouYuanbo1/rostercrawler/internal/retry"
)

// RestartPolicy 会话重启的重试策略
type RestartPolicy struct {
	Attempts int
	Backoff  retry.Backoff
	// 重启成功后等待浏览器稳定的时间
	Pause time.Duration
}

func NewRestartPolicy(cfg *config.Config) RestartPolicy {
	return RestartPolicy{
		Attempts: cfg.Crawl.RestartAttempts,
		Backoff:  retry.Linear(cfg.Crawl.BackoffUnit),
		Pause:    cfg.Crawl.RestartPause,
	}
}

// RestartSession 在有限次数内重启会话,全部失败时返回 *errs.SessionError
func RestartSession(ctx context.Context, s Session, p RestartPolicy) error {
	err := retry.Do(ctx, p.Attempts, p.Backoff, func(ctx context.Context, _ int) error {
		return s.Restart(ctx)
	})
	if err != nil {
		return &errs.SessionError{Attempts: p.Attempts, Err: err}
	}
	return retry.Sleep(ctx, p.Pause)
}
