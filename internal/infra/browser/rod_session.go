package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/LouYuanbo1/rostercrawler/internal/config"
	"github.com/LouYuanbo1/rostercrawler/internal/infra/browser/options"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

type rodSession struct {
	scriptPage
	opts     []options.LauncherOption
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
}

// InitRodSession 创建主会话,浏览器和带反检测脚本的主页面在第一次 Restart 时创建
func InitRodSession(cfg config.Browser) Session {
	s := &rodSession{
		opts: []options.LauncherOption{
			options.WithBin(cfg.Bin),
			options.WithUserDataDir(cfg.UserDataDir),
			options.WithHeadless(cfg.Headless),
			options.WithNoSandbox(cfg.NoSandbox),
			options.WithLeakless(cfg.Leakless),
			options.WithUserAgent(cfg.UserAgent),
			options.WithDisableBlinkFeatures(cfg.DisableBlinkFeatures),
			options.WithDisableDevShmUsage(cfg.DisableDevShmUsage),
			options.WithDisableGPU(cfg.DisableGPU),
			options.WithDisableExtensions(cfg.DisableExtensions),
			options.WithIgnoreCertificateErrors(cfg.IgnoreCertificateErrors),
		},
	}
	s.scriptPage = scriptPage{d: &rodDriver{page: func() *rod.Page { return s.page }}}
	return s
}

func (s *rodSession) start() error {
	l := options.CreateLauncher(s.opts...)
	controlURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("启动浏览器失败: %w", err)
	}
	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("连接浏览器失败: %w", err)
	}
	page, err := stealth.Page(browser)
	if err != nil {
		_ = browser.Close()
		l.Kill()
		return fmt.Errorf("创建页面失败: %w", err)
	}
	s.launcher, s.browser, s.page = l, browser, page
	return nil
}

func (s *rodSession) OpenTab(ctx context.Context) (Tab, error) {
	if s.browser == nil {
		return nil, errors.New("浏览器会话已关闭")
	}
	page, err := stealth.Page(s.browser.Context(ctx))
	if err != nil {
		return nil, fmt.Errorf("打开新标签页失败: %w", err)
	}
	// 标签页之后的操作各自携带调用方的 ctx
	page = page.Context(context.Background())
	return &rodTab{
		scriptPage: scriptPage{d: &rodDriver{page: func() *rod.Page { return page }}},
		page:       page,
	}, nil
}

func (s *rodSession) Restart(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_ = s.Close()
	return s.start()
}

func (s *rodSession) Close() error {
	if s.browser == nil {
		return nil
	}
	err := s.browser.Close()
	s.launcher.Kill()
	s.browser, s.page = nil, nil
	return err
}

type rodTab struct {
	scriptPage
	page *rod.Page
}

func (t *rodTab) Close() error {
	if err := t.page.Close(); err != nil {
		return fmt.Errorf("关闭标签页失败: %w", err)
	}
	return nil
}

type rodDriver struct {
	page func() *rod.Page
}

func (d *rodDriver) current(ctx context.Context) (*rod.Page, error) {
	p := d.page()
	if p == nil {
		return nil, errors.New("浏览器会话已关闭")
	}
	return p.Context(ctx), nil
}

func (d *rodDriver) navigate(ctx context.Context, url string) error {
	p, err := d.current(ctx)
	if err != nil {
		return err
	}
	if err := p.Navigate(url); err != nil {
		return err
	}
	return p.WaitLoad()
}

func (d *rodDriver) location(ctx context.Context) (string, error) {
	p, err := d.current(ctx)
	if err != nil {
		return "", err
	}
	info, err := p.Info()
	if err != nil {
		return "", err
	}
	return info.URL, nil
}

func (d *rodDriver) eval(ctx context.Context, fn string, out any) error {
	p, err := d.current(ctx)
	if err != nil {
		return err
	}
	res, err := p.Eval(fn)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(res.Value.JSON("", "")), out)
}

func (d *rodDriver) input(ctx context.Context, css, text string) error {
	p, err := d.current(ctx)
	if err != nil {
		return err
	}
	el, err := p.Element(css)
	if err != nil {
		return err
	}
	return el.Input(text)
}

func (d *rodDriver) click(ctx context.Context, css string) error {
	p, err := d.current(ctx)
	if err != nil {
		return err
	}
	el, err := p.Element(css)
	if err != nil {
		return err
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}
