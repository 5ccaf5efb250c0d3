package browser

import (
	"context"
	"errors"
	"fmt"

	"github.com/LouYuanbo1/rostercrawler/internal/config"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// 去掉 navigator.webdriver 标记,作用同 rod 的 stealth
const hideWebdriver = `Object.defineProperty(navigator, 'webdriver', {get: () => undefined})`

type chromedpSession struct {
	scriptPage
	baseCtx     context.Context
	opts        []chromedp.ExecAllocatorOption
	allocCtx    context.Context
	allocCancel context.CancelFunc
	pageCtx     context.Context
	pageCancel  context.CancelFunc
}

// InitChromedpSession 创建主会话,浏览器在第一次 Restart 时启动;baseCtx 决定浏览器进程的最长生命周期
func InitChromedpSession(baseCtx context.Context, cfg config.Browser) Session {
	s := &chromedpSession{
		baseCtx: baseCtx,
		opts:    chromedpOptions(cfg),
	}
	s.scriptPage = scriptPage{d: &chromedpDriver{target: func() context.Context { return s.pageCtx }}}
	return s
}

func stealthAction() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(hideWebdriver).Do(ctx)
		return err
	})
}

func chromedpOptions(cfg config.Browser) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-dev-shm-usage", cfg.DisableDevShmUsage),
		chromedp.Flag("no-sandbox", cfg.NoSandbox),
		chromedp.Flag("disable-gpu", cfg.DisableGPU),
		chromedp.Flag("disable-extensions", cfg.DisableExtensions),
		chromedp.Flag("ignore-certificate-errors", cfg.IgnoreCertificateErrors),
		chromedp.Flag("ignore-ssl-errors", cfg.IgnoreCertificateErrors),
		chromedp.Flag("start-maximized", true),
		chromedp.WindowSize(1920, 1080),
	)
	if cfg.DisableBlinkFeatures != "" {
		opts = append(opts, chromedp.Flag("disable-blink-features", cfg.DisableBlinkFeatures))
	}
	if cfg.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(cfg.UserDataDir))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	if cfg.Bin != "" {
		opts = append(opts, chromedp.ExecPath(cfg.Bin))
	}
	return opts
}

func (s *chromedpSession) start() error {
	allocCtx, allocCancel := chromedp.NewExecAllocator(s.baseCtx, s.opts...)
	pageCtx, pageCancel := chromedp.NewContext(allocCtx)
	// 第一次 Run 会真正启动浏览器并打开第一个标签页
	if err := chromedp.Run(pageCtx, stealthAction()); err != nil {
		pageCancel()
		allocCancel()
		return fmt.Errorf("启动浏览器失败: %w", err)
	}
	s.allocCtx, s.allocCancel = allocCtx, allocCancel
	s.pageCtx, s.pageCancel = pageCtx, pageCancel
	return nil
}

func (s *chromedpSession) OpenTab(ctx context.Context) (Tab, error) {
	if s.pageCtx == nil {
		return nil, errors.New("浏览器会话已关闭")
	}
	tabCtx, cancel := chromedp.NewContext(s.pageCtx)
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	if err := chromedp.Run(tabCtx, stealthAction()); err != nil {
		cancel()
		return nil, fmt.Errorf("打开新标签页失败: %w", err)
	}
	return &chromedpTab{
		scriptPage: scriptPage{d: &chromedpDriver{target: func() context.Context { return tabCtx }}},
		ctx:        tabCtx,
		cancel:     cancel,
	}, nil
}

func (s *chromedpSession) Restart(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_ = s.Close()
	return s.start()
}

func (s *chromedpSession) Close() error {
	if s.pageCtx == nil {
		return nil
	}
	err := chromedp.Cancel(s.pageCtx)
	s.pageCancel()
	s.allocCancel()
	s.pageCtx = nil
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

type chromedpTab struct {
	scriptPage
	ctx    context.Context
	cancel context.CancelFunc
}

func (t *chromedpTab) Close() error {
	err := chromedp.Cancel(t.ctx)
	t.cancel()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("关闭标签页失败: %w", err)
	}
	return nil
}

type chromedpDriver struct {
	target func() context.Context
}

// run 在目标标签页的上下文中执行动作,调用方的 ctx 取消或超时时中止
func (d *chromedpDriver) run(ctx context.Context, actions ...chromedp.Action) error {
	target := d.target()
	if target == nil {
		return errors.New("浏览器会话已关闭")
	}
	runCtx, cancel := context.WithCancel(target)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (d *chromedpDriver) navigate(ctx context.Context, url string) error {
	return d.run(ctx, chromedp.Navigate(url))
}

func (d *chromedpDriver) location(ctx context.Context) (string, error) {
	var u string
	err := d.run(ctx, chromedp.Location(&u))
	return u, err
}

func (d *chromedpDriver) eval(ctx context.Context, fn string, out any) error {
	return d.run(ctx, chromedp.Evaluate("("+fn+")()", out))
}

func (d *chromedpDriver) input(ctx context.Context, css, text string) error {
	return d.run(ctx, chromedp.SendKeys(css, text, chromedp.ByQuery))
}

func (d *chromedpDriver) click(ctx context.Context, css string) error {
	return d.run(ctx, chromedp.Click(css, chromedp.ByQuery))
}
