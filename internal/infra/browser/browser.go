// Package browser 封装爬取所需的浏览器会话操作,屏蔽 chromedp 与 rod 的差异
package browser

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout 在给定时间内元素未出现、未消失或URL未变化
var ErrTimeout = errors.New("browser: wait timed out")

// Page 一个浏览上下文(主页面或辅助标签页)支持的操作
// 选择器以 / 或 ( 开头时按 XPath 处理,否则按 CSS 处理
type Page interface {
	Navigate(ctx context.Context, url string) error
	CurrentURL(ctx context.Context) (string, error)
	WaitPresent(ctx context.Context, selector string, timeout time.Duration) error
	WaitURLChange(ctx context.Context, from string, timeout time.Duration) error
	Input(ctx context.Context, selector, text string, timeout time.Duration) error
	Click(ctx context.Context, selector string, timeout time.Duration) error
	// ClickLast 点击最后一个匹配元素
	ClickLast(ctx context.Context, selector string, timeout time.Duration) error
	Text(ctx context.Context, selector string, timeout time.Duration) (string, error)
	// Texts 返回所有匹配元素可见文本的快照,按文档顺序
	Texts(ctx context.Context, selector string) ([]string, error)
	// MarkFirst 给第一个匹配元素打上标记,用于之后确认它已从文档中移除
	MarkFirst(ctx context.Context, selector string) (string, error)
	WaitDetached(ctx context.Context, marker string, timeout time.Duration) error
}

// Tab 辅助标签页,使用完必须关闭
type Tab interface {
	Page
	Close() error
}

// Session 主浏览会话,同一时间最多只有一个辅助标签页
type Session interface {
	Page
	OpenTab(ctx context.Context) (Tab, error)
	// Restart 关闭浏览器进程并重新启动,之前打开的页面全部失效
	Restart(ctx context.Context) error
	Close() error
}
