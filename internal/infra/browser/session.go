package browser

import (
	"context"
	"fmt"

	"github.com/LouYuanbo1/rostercrawler/internal/config"
)

// Open 按配置的驱动创建浏览器会话,浏览器进程由 RestartSession 启动
func Open(ctx context.Context, cfg config.Browser) (Session, error) {
	switch cfg.Driver {
	case "chromedp":
		return InitChromedpSession(ctx, cfg), nil
	case "rod":
		return InitRodSession(cfg), nil
	default:
		return nil, fmt.Errorf("未知的浏览器驱动: %q", cfg.Driver)
	}
}
