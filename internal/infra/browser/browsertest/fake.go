// Package browsertest 提供内存中的浏览器会话,按选择器角色模拟成员列表和成员详情页
package browsertest

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/LouYuanbo1/rostercrawler/internal/config"
	"github.com/LouYuanbo1/rostercrawler/internal/infra/browser"
)

// Profile 成员详情页上可以读到的内容,空字符串表示元素不存在
type Profile struct {
	Email        string
	Contribution string
}

// Fake 模拟一个已部署的平台;字段在会话使用前设置
type Fake struct {
	Sel config.Selectors

	LoginURL string
	// 提交登录表单后跳转到的地址,为空表示停留在登录页
	AfterLoginURL string
	NoLoginForm   bool

	// 每页的成员卡片文本
	Pages       [][]string
	ActiveCount string
	PageButtons []string
	// 大于0时只有前 NextPages 页有"下一页"按钮
	NextPages int

	Profiles map[string]Profile

	OpenTabErr  error
	TabCloseErr error
	// 前 FailRestarts 次重启失败
	FailRestarts int

	mu       sync.Mutex
	url      string
	page     int
	markers  map[string]int
	restarts int
	closed   bool
	visited  []string
	inputs   map[string]string
}

var _ browser.Session = (*Fake)(nil)

func (f *Fake) Navigate(_ context.Context, target string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.url = target
	f.visited = append(f.visited, target)
	f.page = 0
	if u, err := url.Parse(target); err == nil {
		if p, err := strconv.Atoi(u.Query().Get("p")); err == nil && p > 0 {
			f.page = p - 1
		}
	}
	return nil
}

func (f *Fake) CurrentURL(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.url, nil
}

func (f *Fake) WaitPresent(_ context.Context, selector string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch selector {
	case f.Sel.LoginEmail, f.Sel.LoginPassword, f.Sel.LoginSubmit:
		if f.NoLoginForm {
			return browser.ErrTimeout
		}
	case f.Sel.MemberTile:
		if f.page >= len(f.Pages) || len(f.Pages[f.page]) == 0 {
			return browser.ErrTimeout
		}
	case f.Sel.NextPage:
		if !f.hasNext() {
			return browser.ErrTimeout
		}
	}
	return nil
}

func (f *Fake) WaitURLChange(_ context.Context, from string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.url == from {
		return browser.ErrTimeout
	}
	return nil
}

func (f *Fake) Input(_ context.Context, selector, text string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.inputs == nil {
		f.inputs = make(map[string]string)
	}
	f.inputs[selector] = text
	return nil
}

func (f *Fake) Click(_ context.Context, selector string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch selector {
	case f.Sel.LoginSubmit:
		if f.AfterLoginURL != "" {
			f.url = f.AfterLoginURL
		}
	case f.Sel.NextPage:
		if !f.hasNext() {
			return browser.ErrTimeout
		}
		f.page++
	}
	return nil
}

func (f *Fake) ClickLast(ctx context.Context, selector string, timeout time.Duration) error {
	return f.Click(ctx, selector, timeout)
}

func (f *Fake) Text(_ context.Context, selector string, _ time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if selector == f.Sel.ActiveCount && f.ActiveCount != "" {
		return f.ActiveCount, nil
	}
	return "", browser.ErrTimeout
}

func (f *Fake) Texts(_ context.Context, selector string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch selector {
	case f.Sel.MemberTile:
		if f.page < len(f.Pages) {
			return append([]string(nil), f.Pages[f.page]...), nil
		}
	case f.Sel.PageButtons:
		return f.PageButtons, nil
	}
	return nil, nil
}

func (f *Fake) MarkFirst(_ context.Context, selector string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markers == nil {
		f.markers = make(map[string]int)
	}
	marker := fmt.Sprintf("%s#%d", selector, f.page)
	f.markers[marker] = f.page
	return marker, nil
}

func (f *Fake) WaitDetached(_ context.Context, marker string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if page, ok := f.markers[marker]; ok && page == f.page {
		return browser.ErrTimeout
	}
	return nil
}

func (f *Fake) OpenTab(context.Context) (browser.Tab, error) {
	if f.OpenTabErr != nil {
		return nil, f.OpenTabErr
	}
	return &fakeTab{f: f}, nil
}

func (f *Fake) Restart(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restarts++
	if f.restarts <= f.FailRestarts {
		return errors.New("browser did not start")
	}
	f.url = ""
	f.page = 0
	f.closed = false
	return nil
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Restarts 返回调用 Restart 的次数(包括失败的)
func (f *Fake) Restarts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.restarts
}

func (f *Fake) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Visited 返回主页面导航过的地址
func (f *Fake) Visited() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.visited...)
}

func (f *Fake) Inputs() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(f.inputs))
	for k, v := range f.inputs {
		out[k] = v
	}
	return out
}

func (f *Fake) hasNext() bool {
	if f.page+1 >= len(f.Pages) {
		return false
	}
	return f.NextPages <= 0 || f.page < f.NextPages
}

type fakeTab struct {
	f       *Fake
	profile Profile
	menu    bool
}

func (t *fakeTab) Navigate(_ context.Context, target string) error {
	for handle, p := range t.f.Profiles {
		if strings.Contains(target, "/"+handle+"?") || strings.HasSuffix(target, "/"+handle) {
			t.profile = p
		}
	}
	return nil
}

func (t *fakeTab) CurrentURL(context.Context) (string, error) { return "", nil }

func (t *fakeTab) WaitPresent(context.Context, string, time.Duration) error { return nil }

func (t *fakeTab) WaitURLChange(context.Context, string, time.Duration) error { return nil }

func (t *fakeTab) Input(context.Context, string, string, time.Duration) error { return nil }

func (t *fakeTab) Click(_ context.Context, selector string, _ time.Duration) error {
	if selector == t.f.Sel.MembershipSettings && !t.menu {
		return browser.ErrTimeout
	}
	return nil
}

func (t *fakeTab) ClickLast(_ context.Context, selector string, _ time.Duration) error {
	if selector == t.f.Sel.ProfileMenu {
		t.menu = true
	}
	return nil
}

func (t *fakeTab) Text(_ context.Context, selector string, _ time.Duration) (string, error) {
	switch selector {
	case t.f.Sel.ProfileContrib:
		if t.profile.Contribution != "" {
			return t.profile.Contribution, nil
		}
	case t.f.Sel.MembershipEmail:
		if t.menu && t.profile.Email != "" {
			return t.profile.Email, nil
		}
	}
	return "", browser.ErrTimeout
}

func (t *fakeTab) Texts(context.Context, string) ([]string, error) { return nil, nil }

func (t *fakeTab) MarkFirst(context.Context, string) (string, error) { return "", nil }

func (t *fakeTab) WaitDetached(context.Context, string, time.Duration) error { return nil }

func (t *fakeTab) Close() error { return t.f.TabCloseErr }
