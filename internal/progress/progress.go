// Package progress 单行进度条,只在整数百分比变化时重绘
package progress

import (
	"fmt"
	"io"
	"sync"

	bubbles "github.com/charmbracelet/bubbles/progress"
)

const barWidth = 30

type Reporter interface {
	Update(current, total int)
}

type Bar struct {
	out   io.Writer
	model bubbles.Model
	mu    sync.Mutex
	last  int
}

func NewBar(out io.Writer) *Bar {
	return &Bar{
		out: out,
		model: bubbles.New(
			bubbles.WithDefaultGradient(),
			bubbles.WithWidth(barWidth),
			bubbles.WithoutPercentage(),
		),
		last: -1,
	}
}

// Update 当 current/total 落到新的整数百分比时重绘;100% 时换行
func (b *Bar) Update(current, total int) {
	if total <= 0 {
		return
	}
	current = max(min(current, total), 0)
	pct := current * 100 / total

	b.mu.Lock()
	defer b.mu.Unlock()
	if pct == b.last {
		return
	}
	b.last = pct

	fmt.Fprintf(b.out, "\rProgreso: %3d%% %s %d/%d", pct, b.model.ViewAs(float64(current)/float64(total)), current, total)
	if pct >= 100 {
		fmt.Fprintln(b.out)
	}
}

// Nop 丢弃所有更新
type Nop struct{}

func (Nop) Update(int, int) {}
