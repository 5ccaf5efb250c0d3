package crawler

import (
	"context"
	"time"

	"github.com/LouYuanbo1/rostercrawler/internal/domain/model"
	"github.com/LouYuanbo1/rostercrawler/internal/logger"
	"github.com/LouYuanbo1/rostercrawler/internal/retry"
	"github.com/jedib0t/go-pretty/v6/table"
)

const timeLayout = "2006-01-02 15:04:05"

// 运行被取消后仍需要写入汇总
const recordTimeout = 10 * time.Second

// finalize 在所有退出路径上执行:确认输出文件、完成汇总、保存并打印
func (c *rosterCrawler) finalize(ctx context.Context, summary *model.RunSummary, state *model.CrawlState, runErr error) {
	if runErr != nil {
		c.transition(StageFailed)
	} else {
		c.transition(StageDone)
	}

	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	summary.ArtifactVerified = c.verifyArtifact(bg, summary.Artifact)
	summary.Finish(c.now(), state, runErr)
	summary.NextRunAt = c.nextRun(summary.FinishedAt)
	c.sink.RecordRun(bg, summary)
	c.render(summary)

	fields := []logger.Field{
		logger.String("run_id", summary.RunID),
		logger.String("status", string(summary.Status)),
		logger.Int("processed", summary.Processed),
		logger.Int("persisted", summary.Persisted),
		logger.Int("last_page", summary.LastPage),
		logger.Duration("elapsed", summary.Elapsed),
		logger.Bool("artifact_verified", summary.ArtifactVerified),
	}
	if runErr != nil {
		c.log.Error("爬取失败", append(fields, logger.Error(runErr))...)
		return
	}
	c.log.Info("爬取完成", fields...)
}

// verifyArtifact 文件可能稍后才出现在磁盘上,有限次数地轮询
func (c *rosterCrawler) verifyArtifact(ctx context.Context, path string) bool {
	attempts := max(c.cfg.Output.VerifyAttempts, 1)
	for i := range attempts {
		if c.exists(path) {
			return true
		}
		if i < attempts-1 {
			if err := retry.Sleep(ctx, c.cfg.Output.VerifyInterval); err != nil {
				break
			}
		}
	}
	c.log.Warn("未找到输出文件", logger.String("path", path))
	return false
}

func (c *rosterCrawler) render(s *model.RunSummary) {
	verified := "no"
	if s.ArtifactVerified {
		verified = "yes"
	}
	t := table.NewWriter()
	t.SetOutputMirror(c.out)
	t.SetTitle("Run summary")
	t.AppendHeader(table.Row{"Field", "Value"})
	t.AppendRows([]table.Row{
		{"Run ID", s.RunID},
		{"Status", s.Status},
		{"Started", s.StartedAt.Format(timeLayout)},
		{"Finished", s.FinishedAt.Format(timeLayout)},
		{"Elapsed", s.Elapsed.Round(time.Second)},
		{"Last page", s.LastPage},
		{"Members processed", s.Processed},
		{"Rows written", s.Persisted},
		{"Output file", s.Artifact},
		{"Output verified", verified},
		{"Next run", s.NextRunAt.Format(timeLayout)},
	})
	if s.Err != nil {
		t.AppendRow(table.Row{"Error", s.Err.Error()})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}
