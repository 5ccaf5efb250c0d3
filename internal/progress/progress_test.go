package progress

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBar_RedrawsOnlyOnPercentChange(t *testing.T) {
	var buf bytes.Buffer
	b := NewBar(&buf)

	for i := 1; i <= 400; i++ {
		b.Update(i, 400)
	}

	// 400 次更新只对应 0..100 共 101 个不同的百分比
	assert.Equal(t, 101, strings.Count(buf.String(), "\r"))
	assert.True(t, strings.HasSuffix(buf.String(), " 400/400\n"))
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestBar_Format(t *testing.T) {
	var buf bytes.Buffer
	NewBar(&buf).Update(10, 40)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\rProgreso:  25% "))
	assert.True(t, strings.HasSuffix(out, " 10/40"))
	assert.NotContains(t, out, "\n")
}

func TestBar_SamePercentIsSilent(t *testing.T) {
	var buf bytes.Buffer
	b := NewBar(&buf)
	b.Update(1, 1000)
	n := buf.Len()

	b.Update(2, 1000)
	b.Update(9, 1000)

	assert.Equal(t, n, buf.Len())
}

func TestBar_IgnoresUnknownTotal(t *testing.T) {
	var buf bytes.Buffer
	NewBar(&buf).Update(3, 0)

	assert.Empty(t, buf.String())
}
