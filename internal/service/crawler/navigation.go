package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/LouYuanbo1/rostercrawler/internal/domain/model"
	"github.com/LouYuanbo1/rostercrawler/internal/errs"
	"github.com/LouYuanbo1/rostercrawler/internal/infra/browser"
	"github.com/LouYuanbo1/rostercrawler/internal/logger"
	"github.com/LouYuanbo1/rostercrawler/param"
)

// authenticate 提交登录表单,地址离开登录页即视为登录成功
func (c *rosterCrawler) authenticate(ctx context.Context) error {
	c.transition(StageAuthenticating)
	sel, t := c.cfg.Selectors, c.cfg.Timeouts
	loginURL := c.cfg.Platform.LoginURL

	fail := func(err error) error {
		return &errs.StageError{Stage: string(StageAuthenticating), Err: err}
	}
	if err := c.open(ctx, loginURL); err != nil {
		return fail(err)
	}
	// 登录页可能带重定向参数,以实际地址为准
	from := loginURL
	if current, err := c.session.CurrentURL(ctx); err == nil && current != "" {
		from = current
	}
	if err := c.session.Input(ctx, sel.LoginEmail, c.cfg.Credentials.Email, t.Page); err != nil {
		return fail(fmt.Errorf("填写邮箱: %w", err))
	}
	if err := c.session.Input(ctx, sel.LoginPassword, c.cfg.Credentials.Password, t.Page); err != nil {
		return fail(fmt.Errorf("填写密码: %w", err))
	}
	if err := c.session.Click(ctx, sel.LoginSubmit, t.Page); err != nil {
		return fail(fmt.Errorf("提交登录: %w", err))
	}
	if err := c.session.WaitURLChange(ctx, from, t.Page); err != nil {
		return fail(fmt.Errorf("登录后页面未跳转: %w", err))
	}
	c.log.Info("登录成功")
	return nil
}

// navigate 打开成员列表的指定页并等待成员卡片出现
func (c *rosterCrawler) navigate(ctx context.Context, page int) error {
	c.transition(StageNavigating)
	target, err := c.pageURL(page)
	if err != nil {
		return &errs.StageError{Stage: string(StageNavigating), Err: err}
	}
	if err := c.open(ctx, target); err != nil {
		return &errs.StageError{Stage: string(StageNavigating), Err: err}
	}
	if err := c.session.WaitPresent(ctx, c.cfg.Selectors.MemberTile, c.cfg.Timeouts.Page); err != nil {
		return &errs.StageError{Stage: string(StageNavigating), Err: fmt.Errorf("成员列表未加载: %w", err)}
	}
	c.log.Info("已打开成员列表", logger.String("url", target), logger.Int("page", page))
	return nil
}

// open 导航到地址,页面加载受 timeouts.navigation 限制
func (c *rosterCrawler) open(ctx context.Context, target string) error {
	if d := c.cfg.Timeouts.Navigation; d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	return c.session.Navigate(ctx, target)
}

func (c *rosterCrawler) pageURL(page int) (string, error) {
	members := c.cfg.Platform.MembersURL
	if page <= 1 {
		return members, nil
	}
	u, err := url.Parse(members)
	if err != nil {
		return "", fmt.Errorf("解析成员列表地址: %w", err)
	}
	q := u.Query()
	q.Set(c.cfg.Platform.PageParam, strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// resolveTarget 确定目标数量和总页数;读取失败时不终止运行
func (c *rosterCrawler) resolveTarget(ctx context.Context, state *model.CrawlState, params *param.Crawl) {
	if params.TargetCount > 0 {
		state.Target = params.TargetCount
	} else if active, err := c.activeCount(ctx); err != nil {
		c.log.Warn("无法读取活跃成员数,将爬取到最后一页", logger.Error(err))
		state.Target = 0
	} else {
		state.Target = active + params.TargetPadding
	}
	state.Pages = c.pageCount(ctx)
	c.log.Info("目标已确定", logger.Int("target", state.Target), logger.Int("pages", state.Pages))
}

// activeCount 读取筛选标签上的活跃人数,例如 "1,234 Active"
func (c *rosterCrawler) activeCount(ctx context.Context) (int, error) {
	text, err := c.session.Text(ctx, c.cfg.Selectors.ActiveCount, c.cfg.Timeouts.Element)
	if err != nil {
		return 0, err
	}
	digits := strings.TrimSpace(strings.ReplaceAll(text, "Active", ""))
	digits = strings.ReplaceAll(digits, ",", "")
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("活跃人数格式错误 %q: %w", text, err)
	}
	return n, nil
}

// pageCount 分页按钮中最后一个纯数字按钮即总页数,找不到时为1
func (c *rosterCrawler) pageCount(ctx context.Context) int {
	buttons, err := c.session.Texts(ctx, c.cfg.Selectors.PageButtons)
	if err != nil {
		c.log.Warn("读取分页按钮失败", logger.Error(err))
		return 1
	}
	for i := len(buttons) - 1; i >= 0; i-- {
		if n, err := strconv.Atoi(strings.TrimSpace(buttons[i])); err == nil && n > 0 {
			return n
		}
	}
	return 1
}

// nextPage 点击"下一页"并等待旧的成员卡片离开文档;返回 false 表示分页正常结束
func (c *rosterCrawler) nextPage(ctx context.Context, state *model.CrawlState) (bool, error) {
	sel, t := c.cfg.Selectors, c.cfg.Timeouts
	fail := func(err error) (bool, error) {
		return false, &errs.StageError{Stage: string(StageNextPageCheck), Err: err}
	}

	if err := c.session.WaitPresent(ctx, sel.NextPage, t.Page); err != nil {
		if errors.Is(err, browser.ErrTimeout) {
			c.log.Info("没有下一页,分页结束", logger.Int("page", state.Page))
			return false, nil
		}
		return fail(err)
	}

	marker, err := c.session.MarkFirst(ctx, sel.MemberTile)
	if err != nil {
		c.log.Warn("无法标记当前页的成员卡片", logger.Error(err))
		marker = ""
	}
	if err := c.session.Click(ctx, sel.NextPage, t.Element); err != nil {
		if errors.Is(err, browser.ErrTimeout) {
			c.log.Info("下一页按钮不可点击,分页结束", logger.Int("page", state.Page))
			return false, nil
		}
		return fail(err)
	}
	if marker != "" {
		if err := c.session.WaitDetached(ctx, marker, t.Page); err != nil {
			if errors.Is(err, browser.ErrTimeout) {
				c.log.Warn("点击后页面没有变化,分页结束", logger.Int("page", state.Page))
				return false, nil
			}
			return fail(err)
		}
	}
	if err := c.session.WaitPresent(ctx, sel.MemberTile, t.Page); err != nil {
		if errors.Is(err, browser.ErrTimeout) {
			c.log.Info("下一页没有成员,分页结束", logger.Int("page", state.Page+1))
			return false, nil
		}
		return fail(err)
	}
	state.Page++
	return true, nil
}
