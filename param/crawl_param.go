package param

import "github.com/LouYuanbo1/rostercrawler/internal/config"

// Crawl 一次爬取运行的参数
type Crawl struct {
	RunID string `json:"run_id"`
	// 目标成员数,0 表示使用平台显示的活跃人数加上 TargetPadding
	TargetCount   int `json:"target_count"`
	TargetPadding int `json:"target_padding"`
}

// NewCrawl 从配置构造运行参数,targetOverride 大于0时覆盖配置中的目标数
func NewCrawl(runID string, cfg *config.Config, targetOverride int) *Crawl {
	p := &Crawl{
		RunID:         runID,
		TargetCount:   cfg.Crawl.TargetCount,
		TargetPadding: cfg.Crawl.TargetPadding,
	}
	if targetOverride > 0 {
		p.TargetCount = targetOverride
	}
	return p
}

func (c *Crawl) IsValid() bool {
	return c.RunID != "" && c.TargetCount >= 0 && c.TargetPadding >= 0
}
