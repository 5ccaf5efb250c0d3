package param

import (
	"testing"

	"github.com/LouYuanbo1/rostercrawler/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestNewCrawl(t *testing.T) {
	cfg := config.Defaults()
	cfg.Crawl.TargetCount = 30

	p := NewCrawl("run-1", cfg, 0)
	assert.Equal(t, 30, p.TargetCount)
	assert.Equal(t, 10, p.TargetPadding)
	assert.True(t, p.IsValid())

	p = NewCrawl("run-1", cfg, 5)
	assert.Equal(t, 5, p.TargetCount)
}

func TestCrawl_IsValid(t *testing.T) {
	assert.False(t, (&Crawl{}).IsValid())
	assert.False(t, (&Crawl{RunID: "r", TargetCount: -1}).IsValid())
	assert.False(t, (&Crawl{RunID: "r", TargetPadding: -1}).IsValid())
	assert.True(t, (&Crawl{RunID: "r"}).IsValid())
}
