// Package crawler 驱动一次完整的成员名单爬取:登录、定位列表、逐页提取、补充详情、持久化和汇总
package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/LouYuanbo1/rostercrawler/internal/classifier"
	"github.com/LouYuanbo1/rostercrawler/internal/config"
	"github.com/LouYuanbo1/rostercrawler/internal/domain/entity"
	"github.com/LouYuanbo1/rostercrawler/internal/domain/model"
	"github.com/LouYuanbo1/rostercrawler/internal/errs"
	"github.com/LouYuanbo1/rostercrawler/internal/infra/browser"
	"github.com/LouYuanbo1/rostercrawler/internal/infra/persistence/csvfile"
	"github.com/LouYuanbo1/rostercrawler/internal/logger"
	"github.com/LouYuanbo1/rostercrawler/internal/progress"
	"github.com/LouYuanbo1/rostercrawler/internal/service/enricher"
	"github.com/LouYuanbo1/rostercrawler/internal/service/sink"
	"github.com/LouYuanbo1/rostercrawler/param"
)

type Stage string

const (
	StageInit           Stage = "INIT"
	StageAuthenticating Stage = "AUTHENTICATING"
	StageNavigating     Stage = "NAVIGATING"
	StageExtracting     Stage = "EXTRACTING_PAGE"
	StagePersisting     Stage = "PERSISTING"
	StageNextPageCheck  Stage = "NEXT_PAGE_CHECK"
	StageDone           Stage = "DONE"
	StageFailed         Stage = "FAILED"
)

// 下一次计划运行与本次结束的间隔
const defaultRunInterval = 24 * time.Hour

type Crawler interface {
	// Run 执行一次爬取;无论成功与否都返回汇总,致命错误同时通过 error 返回。
	// 参数无效时不会开始运行,只返回 *errs.ConfigError,汇总为 nil
	Run(ctx context.Context, params *param.Crawl) (*model.RunSummary, error)
}

type Option func(*rosterCrawler)

// WithClassifier 替换成员卡片分类函数
func WithClassifier(classify func(text string) model.MemberRecord) Option {
	return func(c *rosterCrawler) { c.classify = classify }
}

func WithClock(now func() time.Time) Option {
	return func(c *rosterCrawler) { c.now = now }
}

func WithProgress(r progress.Reporter) Option {
	return func(c *rosterCrawler) { c.progress = r }
}

// WithSummaryOutput 设置运行汇总表格的输出位置
func WithSummaryOutput(w io.Writer) Option {
	return func(c *rosterCrawler) { c.out = w }
}

// WithNextRun 根据结束时间计算汇总中的下一次运行时间,例如调度器的下一次触发
func WithNextRun(next func(finished time.Time) time.Time) Option {
	return func(c *rosterCrawler) { c.nextRun = next }
}

// WithArtifactCheck 替换输出文件存在性检查
func WithArtifactCheck(exists func(path string) bool) Option {
	return func(c *rosterCrawler) { c.exists = exists }
}

type rosterCrawler struct {
	session  browser.Session
	enricher enricher.Enricher
	sink     sink.Sink
	cfg      *config.Config
	policy   browser.RestartPolicy
	log      logger.Logger

	classify func(text string) model.MemberRecord
	now      func() time.Time
	progress progress.Reporter
	out      io.Writer
	nextRun  func(finished time.Time) time.Time
	exists   func(path string) bool

	stage Stage
}

func InitRosterCrawler(
	session browser.Session,
	enricher enricher.Enricher,
	sink sink.Sink,
	cfg *config.Config,
	log logger.Logger,
	opts ...Option,
) Crawler {
	c := &rosterCrawler{
		session:  session,
		enricher: enricher,
		sink:     sink,
		cfg:      cfg,
		policy:   browser.NewRestartPolicy(cfg),
		log:      log,
		classify: classifier.Classify,
		now:      time.Now,
		progress: progress.NewBar(os.Stdout),
		out:      os.Stdout,
		nextRun:  func(t time.Time) time.Time { return t.Add(defaultRunInterval) },
		exists:   csvfile.Exists,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *rosterCrawler) Run(ctx context.Context, params *param.Crawl) (summary *model.RunSummary, err error) {
	if params == nil || !params.IsValid() {
		return nil, &errs.ConfigError{Key: "crawl", Err: errors.New("无效的爬取参数")}
	}
	c.stage = ""
	state := &model.CrawlState{Page: 1, Pages: 1, Target: params.TargetCount}
	summary = model.NewRunSummary(params.RunID, c.now(), c.sink.Artifact())
	c.log.Info("开始爬取",
		logger.String("run_id", params.RunID),
		logger.String("artifact", summary.Artifact),
	)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("爬取过程中发生panic: %v", r)
		}
		c.finalize(ctx, summary, state, err)
	}()

	c.transition(StageInit)
	if err = browser.RestartSession(ctx, c.session, c.policy); err != nil {
		return summary, err
	}
	if err = c.authenticate(ctx); err != nil {
		return summary, err
	}
	if err = c.navigate(ctx, state.Page); err != nil {
		return summary, err
	}
	c.resolveTarget(ctx, state, params)

	err = c.paginate(ctx, state, summary)
	return summary, err
}

func (c *rosterCrawler) transition(to Stage) {
	if c.stage == to {
		return
	}
	c.log.Debug("状态切换", logger.String("from", string(c.stage)), logger.String("to", string(to)))
	c.stage = to
}

// paginate 逐页提取并持久化,直到达到目标、没有下一页或发生致命错误
func (c *rosterCrawler) paginate(ctx context.Context, state *model.CrawlState, summary *model.RunSummary) error {
	for {
		c.transition(StageExtracting)
		records, err := c.extractPage(ctx, state)

		if err == nil || len(records) > 0 {
			c.transition(StagePersisting)
			if werr := c.sink.WritePage(ctx, records); werr != nil {
				return werr
			}
			summary.Persisted += len(records)
			c.log.Info("本页已保存",
				logger.Int("page", state.Page),
				logger.Int("records", len(records)),
				logger.Int("count", state.Count),
			)
		}
		if err != nil {
			return err
		}
		if len(records) == 0 {
			c.log.Warn("本页没有可保存的成员,分页结束", logger.Int("page", state.Page))
			break
		}

		c.transition(StageNextPageCheck)
		if state.TargetReached() {
			c.log.Info("已达到目标数量", logger.Int("target", state.Target), logger.Int("count", state.Count))
			break
		}
		more, err := c.nextPage(ctx, state)
		if err != nil {
			return err
		}
		if !more {
			break
		}
	}
	state.Done = true
	return nil
}

// extractPage 按快照的成员卡片文本逐个处理,单个成员失败只记录并跳过
func (c *rosterCrawler) extractPage(ctx context.Context, state *model.CrawlState) ([]model.MemberRecord, error) {
	texts, err := c.session.Texts(ctx, c.cfg.Selectors.MemberTile)
	if err != nil {
		return nil, &errs.StageError{Stage: string(StageExtracting), Err: err}
	}
	tiles := entity.Tiles(state.Page, texts)
	c.log.Info("开始处理页面",
		logger.Int("page", state.Page),
		logger.Int("pages", state.Pages),
		logger.Int("tiles", len(tiles)),
	)

	records := make([]model.MemberRecord, 0, len(tiles))
	for _, tile := range tiles {
		if err := ctx.Err(); err != nil {
			return records, err
		}
		if state.TargetReached() {
			break
		}
		seq := state.NextSequence()
		rec, enr, err := c.processTile(ctx, tile, seq)
		if err != nil {
			c.log.Error("成员处理失败,跳过", logger.Error(err))
		} else {
			records = append(records, rec)
		}
		c.report(state)
		// 补充详情时重启耗尽,会话已不可用
		if enr.RestartErr != nil {
			return records, enr.RestartErr
		}
		if enr.Restarted {
			if err := c.recoverSession(ctx, state.Page); err != nil {
				return records, err
			}
		}
	}
	return records, nil
}

func (c *rosterCrawler) processTile(ctx context.Context, tile entity.Tile, seq int) (rec model.MemberRecord, enr model.Enrichment, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &errs.RecordError{
				Page:     tile.Page,
				Position: tile.Position,
				Sequence: seq,
				Err:      fmt.Errorf("panic: %v", r),
			}
		}
	}()

	rec = c.classify(tile.Text)
	if rec.Diagnostic != "" {
		c.log.Warn("成员卡片分类失败,使用默认值",
			logger.Int("sequence", seq),
			logger.String("diagnostic", rec.Diagnostic),
		)
	}
	rec.Page, rec.Position, rec.Sequence = tile.Page, tile.Position, seq
	rec.JoinedAt, rec.TenureDays, rec.TenureMonths = classifier.Tenure(rec.Joined, c.now())

	enr = c.enricher.Enrich(ctx, rec.Handle)
	rec.Email, rec.Contribution = enr.Email, enr.Contribution
	return rec, enr, nil
}

func (c *rosterCrawler) report(state *model.CrawlState) {
	if state.Target > 0 {
		c.progress.Update(state.Count, state.Target)
		return
	}
	c.progress.Update(state.Page, state.Pages)
}

// recoverSession 浏览器重启后登录状态和当前页都已丢失,重新登录并直接打开当前页
func (c *rosterCrawler) recoverSession(ctx context.Context, page int) error {
	c.log.Warn("浏览器已重启,重新登录并返回当前页", logger.Int("page", page))
	if err := c.authenticate(ctx); err != nil {
		return err
	}
	if err := c.navigate(ctx, page); err != nil {
		return err
	}
	c.transition(StageExtracting)
	return nil
}
