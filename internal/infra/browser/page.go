package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/LouYuanbo1/rostercrawler/internal/retry"
)

const pollInterval = 250 * time.Millisecond

// driver 各浏览器库需要实现的最小操作集合,其余操作由 scriptPage 通过脚本组合完成
type driver interface {
	navigate(ctx context.Context, url string) error
	location(ctx context.Context) (string, error)
	// eval 执行一个函数定义形式的脚本并把返回值解码到 out
	eval(ctx context.Context, fn string, out any) error
	input(ctx context.Context, css, text string) error
	click(ctx context.Context, css string) error
}

type scriptPage struct {
	d driver
}

func (p *scriptPage) Navigate(ctx context.Context, url string) error {
	if err := p.d.navigate(ctx, url); err != nil {
		return fmt.Errorf("导航到 %s 失败: %w", url, err)
	}
	return nil
}

func (p *scriptPage) CurrentURL(ctx context.Context) (string, error) {
	return p.d.location(ctx)
}

func (p *scriptPage) WaitPresent(ctx context.Context, selector string, timeout time.Duration) error {
	return p.poll(ctx, timeout, func(ctx context.Context) (bool, error) {
		n, err := p.count(ctx, selector)
		return n > 0, err
	})
}

func (p *scriptPage) WaitURLChange(ctx context.Context, from string, timeout time.Duration) error {
	return p.poll(ctx, timeout, func(ctx context.Context) (bool, error) {
		u, err := p.d.location(ctx)
		return u != "" && u != from, err
	})
}

func (p *scriptPage) Input(ctx context.Context, selector, text string, timeout time.Duration) error {
	css, err := p.mark(ctx, selector, 0, timeout)
	if err != nil {
		return err
	}
	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.d.input(actx, css, text)
}

func (p *scriptPage) Click(ctx context.Context, selector string, timeout time.Duration) error {
	css, err := p.mark(ctx, selector, 0, timeout)
	if err != nil {
		return err
	}
	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.d.click(actx, css)
}

func (p *scriptPage) ClickLast(ctx context.Context, selector string, timeout time.Duration) error {
	css, err := p.mark(ctx, selector, -1, timeout)
	if err != nil {
		return err
	}
	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.d.click(actx, css)
}

func (p *scriptPage) Text(ctx context.Context, selector string, timeout time.Duration) (string, error) {
	var text string
	err := p.poll(ctx, timeout, func(ctx context.Context) (bool, error) {
		texts, err := p.Texts(ctx, selector)
		if err != nil || len(texts) == 0 {
			return false, err
		}
		text = strings.TrimSpace(texts[0])
		return true, nil
	})
	return text, err
}

func (p *scriptPage) Texts(ctx context.Context, selector string) ([]string, error) {
	var texts []string
	if err := p.d.eval(ctx, textsScript(selector), &texts); err != nil {
		return nil, fmt.Errorf("读取 %s 文本失败: %w", selector, err)
	}
	return texts, nil
}

func (p *scriptPage) MarkFirst(ctx context.Context, selector string) (string, error) {
	marker := nextMarker()
	var got string
	if err := p.d.eval(ctx, markScript(selector, 0, marker), &got); err != nil {
		return "", err
	}
	if got == "" {
		return "", fmt.Errorf("没有匹配 %s 的元素", selector)
	}
	return marker, nil
}

func (p *scriptPage) WaitDetached(ctx context.Context, marker string, timeout time.Duration) error {
	return p.poll(ctx, timeout, func(ctx context.Context) (bool, error) {
		var attached bool
		err := p.d.eval(ctx, attachedScript(marker), &attached)
		return !attached, err
	})
}

func (p *scriptPage) count(ctx context.Context, selector string) (int, error) {
	var n int
	err := p.d.eval(ctx, countScript(selector), &n)
	return n, err
}

// mark 等待元素出现并打上标记,返回指向该元素的 CSS 选择器
func (p *scriptPage) mark(ctx context.Context, selector string, index int, timeout time.Duration) (string, error) {
	marker := nextMarker()
	err := p.poll(ctx, timeout, func(ctx context.Context) (bool, error) {
		var got string
		if err := p.d.eval(ctx, markScript(selector, index, marker), &got); err != nil {
			return false, err
		}
		return got != "", nil
	})
	if err != nil {
		return "", fmt.Errorf("等待元素 %s 失败: %w", selector, err)
	}
	return markerSelector(marker), nil
}

// poll 反复检查直到条件成立或超时;检查本身出错时继续重试,超时后返回 ErrTimeout 并附带最后一次错误
func (p *scriptPage) poll(ctx context.Context, timeout time.Duration, check func(ctx context.Context) (bool, error)) error {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for {
		ok, err := check(ctx)
		if err == nil && ok {
			return nil
		}
		if err != nil {
			lastErr = err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !time.Now().Before(deadline) {
			if lastErr != nil && !errors.Is(lastErr, context.DeadlineExceeded) {
				return fmt.Errorf("%w: %w", ErrTimeout, lastErr)
			}
			return ErrTimeout
		}
		if err := retry.Sleep(ctx, min(pollInterval, time.Until(deadline))); err != nil {
			return err
		}
	}
}
