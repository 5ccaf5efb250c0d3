package browser

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubDriver 根据脚本内容返回预设结果
type stubDriver struct {
	url     string
	count   int
	texts   []string
	marked  bool
	clicked []string
	evalErr error
}

func (d *stubDriver) navigate(_ context.Context, url string) error { d.url = url; return nil }

func (d *stubDriver) location(context.Context) (string, error) { return d.url, nil }

func (d *stubDriver) eval(_ context.Context, fn string, out any) error {
	if d.evalErr != nil {
		return d.evalErr
	}
	var v any
	switch {
	case strings.Contains(fn, "setAttribute"):
		if d.count == 0 {
			v = ""
		} else {
			d.marked = true
			v = "marked"
		}
	case strings.Contains(fn, ".length"):
		v = d.count
	case strings.Contains(fn, "innerText"):
		v = d.texts
	default:
		v = d.marked
	}
	raw, _ := json.Marshal(v)
	return json.Unmarshal(raw, out)
}

func (d *stubDriver) input(context.Context, string, string) error { return nil }

func (d *stubDriver) click(_ context.Context, css string) error {
	d.clicked = append(d.clicked, css)
	return nil
}

func TestWaitPresent(t *testing.T) {
	d := &stubDriver{count: 2}
	p := &scriptPage{d: d}

	require.NoError(t, p.WaitPresent(context.Background(), ".tile", time.Second))

	d.count = 0
	err := p.WaitPresent(context.Background(), ".tile", 10*time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestWaitPresent_KeepsLastEvalError(t *testing.T) {
	boom := errors.New("target closed")
	p := &scriptPage{d: &stubDriver{evalErr: boom}}

	err := p.WaitPresent(context.Background(), ".tile", 10*time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.ErrorIs(t, err, boom)
}

func TestWaitURLChange(t *testing.T) {
	d := &stubDriver{url: "https://example.com/login"}
	p := &scriptPage{d: d}

	err := p.WaitURLChange(context.Background(), "https://example.com/login", 10*time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)

	d.url = "https://example.com/home"
	assert.NoError(t, p.WaitURLChange(context.Background(), "https://example.com/login", time.Second))
}

func TestClickUsesMarkerSelector(t *testing.T) {
	d := &stubDriver{count: 1}
	p := &scriptPage{d: d}

	require.NoError(t, p.ClickLast(context.Background(), "button.menu", time.Second))
	require.Len(t, d.clicked, 1)
	assert.True(t, strings.HasPrefix(d.clicked[0], "["+markerAttr+"="))
}

func TestText(t *testing.T) {
	p := &scriptPage{d: &stubDriver{texts: []string{"  45 Active  ", "other"}}}

	text, err := p.Text(context.Background(), "#chip", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "45 Active", text)
}

func TestPollStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &scriptPage{d: &stubDriver{}}

	err := p.WaitPresent(ctx, ".tile", time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScripts(t *testing.T) {
	assert.Contains(t, countScript(`//button[@type="submit"]`), `"//button[@type=\"submit\"]"`)
	assert.Contains(t, markScript(".tile", -1, "m9"), `"m9"`)
	assert.Equal(t, `[data-roster-marker="m9"]`, markerSelector("m9"))
	assert.NotEqual(t, nextMarker(), nextMarker())
}
