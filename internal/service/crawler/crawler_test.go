package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/LouYuanbo1/rostercrawler/internal/classifier"
	"github.com/LouYuanbo1/rostercrawler/internal/config"
	"github.com/LouYuanbo1/rostercrawler/internal/domain/model"
	"github.com/LouYuanbo1/rostercrawler/internal/errs"
	"github.com/LouYuanbo1/rostercrawler/internal/infra/browser"
	"github.com/LouYuanbo1/rostercrawler/internal/infra/browser/browsertest"
	"github.com/LouYuanbo1/rostercrawler/internal/logger"
	"github.com/LouYuanbo1/rostercrawler/internal/progress"
	"github.com/LouYuanbo1/rostercrawler/internal/service/enricher"
	"github.com/LouYuanbo1/rostercrawler/param"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const afterLogin = "https://www.skool.com/antoecomclub"

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type recordingSink struct {
	mu       sync.Mutex
	pages    [][]model.MemberRecord
	run      *model.RunSummary
	writeErr error
}

func (s *recordingSink) WritePage(_ context.Context, records []model.MemberRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return &errs.FileSinkError{Path: s.Artifact(), Err: s.writeErr}
	}
	s.pages = append(s.pages, records)
	return nil
}

func (s *recordingSink) RecordRun(_ context.Context, summary *model.RunSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.run = summary
}

func (s *recordingSink) Artifact() string { return "/tmp/Miembros_Skool_01_06_2025.csv" }

func (s *recordingSink) records() []model.MemberRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.MemberRecord
	for _, page := range s.pages {
		out = append(out, page...)
	}
	return out
}

type countingBar struct {
	updates int
}

func (b *countingBar) Update(int, int) { b.updates++ }

var _ progress.Reporter = (*countingBar)(nil)

func testConfig() *config.Config {
	cfg := config.Defaults()
	cfg.Credentials.Email = "bot@example.com"
	cfg.Credentials.Password = "s3cret-pass"
	cfg.Crawl.BackoffUnit = 0
	cfg.Crawl.RestartPause = 0
	cfg.Output.VerifyInterval = time.Millisecond
	return cfg
}

func tileText(n int) string {
	return fmt.Sprintf("Level 1\nMember %d\nActive 2h ago\n@member-%d\nJoined Mar 3, 2025\nFree", n, n)
}

// rosterPages 生成 pages 页,每页 perPage 个成员卡片,编号从1开始连续
func rosterPages(pages, perPage int) [][]string {
	out := make([][]string, pages)
	n := 1
	for p := range out {
		for range perPage {
			out[p] = append(out[p], tileText(n))
			n++
		}
	}
	return out
}

func newFake(cfg *config.Config, pages [][]string) *browsertest.Fake {
	return &browsertest.Fake{
		Sel:           cfg.Selectors,
		LoginURL:      cfg.Platform.LoginURL,
		AfterLoginURL: afterLogin,
		Pages:         pages,
		Profiles:      map[string]browsertest.Profile{},
	}
}

type harness struct {
	crawler Crawler
	sink    *recordingSink
	bar     *countingBar
	out     *bytes.Buffer
}

func newHarness(cfg *config.Config, session browser.Session, opts ...Option) *harness {
	log := logger.NewNop()
	h := &harness{sink: &recordingSink{}, bar: &countingBar{}, out: &bytes.Buffer{}}
	base := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithProgress(h.bar),
		WithSummaryOutput(h.out),
		WithArtifactCheck(func(string) bool { return true }),
	}
	h.crawler = InitRosterCrawler(session, enricher.InitProfileEnricher(session, cfg, log), h.sink, cfg, log, append(base, opts...)...)
	return h
}

// dyingSession 前 healthy 次重启正常,之后浏览器再也起不来
type dyingSession struct {
	*browsertest.Fake
	healthy int
	calls   int
}

func (s *dyingSession) Restart(ctx context.Context) error {
	s.calls++
	if s.calls > s.healthy {
		return errors.New("chrome exited")
	}
	return s.Fake.Restart(ctx)
}

func sequences(records []model.MemberRecord) []int {
	seqs := make([]int, 0, len(records))
	for _, r := range records {
		seqs = append(seqs, r.Sequence)
	}
	return seqs
}

func TestRun_StopsAtPaddedActiveCount(t *testing.T) {
	cfg := testConfig()
	fake := newFake(cfg, rosterPages(3, 20))
	fake.ActiveCount = "45 Active"
	fake.PageButtons = []string{"1", "2", "3", "Next"}
	h := newHarness(cfg, fake)

	summary, err := h.crawler.Run(context.Background(), &param.Crawl{RunID: "run-1", TargetPadding: 10})

	require.NoError(t, err)
	records := h.sink.records()
	require.Len(t, records, 55)
	assert.Equal(t, 1, records[0].Sequence)
	assert.Equal(t, 55, records[54].Sequence)
	assert.Equal(t, 3, records[54].Page)
	assert.Equal(t, 15, records[54].Position)

	assert.Equal(t, model.RunCompleted, summary.Status)
	assert.Equal(t, 55, summary.Processed)
	assert.Equal(t, 55, summary.Persisted)
	assert.Equal(t, 3, summary.LastPage)
	assert.True(t, summary.ArtifactVerified)
	assert.Equal(t, fixedNow.Add(24*time.Hour), summary.NextRunAt)
	assert.Same(t, summary, h.sink.run)
	assert.Equal(t, 55, h.bar.updates)
	assert.Equal(t, 1, fake.Restarts())
}

func TestRun_EndsWhenNoNextControl(t *testing.T) {
	cfg := testConfig()
	fake := newFake(cfg, rosterPages(1, 3))
	h := newHarness(cfg, fake)

	summary, err := h.crawler.Run(context.Background(), &param.Crawl{RunID: "run-1", TargetCount: 50})

	require.NoError(t, err)
	assert.Len(t, h.sink.records(), 3)
	assert.Equal(t, model.RunCompleted, summary.Status)
	assert.Equal(t, 3, summary.Processed)
	assert.Equal(t, 1, summary.LastPage)
}

func TestRun_UnreadableActiveCountCrawlsAllPages(t *testing.T) {
	cfg := testConfig()
	fake := newFake(cfg, rosterPages(2, 4))
	h := newHarness(cfg, fake)

	summary, err := h.crawler.Run(context.Background(), &param.Crawl{RunID: "run-1", TargetPadding: 10})

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, sequences(h.sink.records()))
	assert.Equal(t, 2, summary.LastPage)
	assert.Len(t, h.sink.pages, 2)
}

func TestRun_SequencesStayGaplessAcrossRecordFailures(t *testing.T) {
	cfg := testConfig()
	fake := newFake(cfg, rosterPages(2, 3))
	classify := func(text string) model.MemberRecord {
		if strings.Contains(text, "Member 2\n") {
			panic("broken tile")
		}
		return classifier.Classify(text)
	}
	h := newHarness(cfg, fake, WithClassifier(classify))

	summary, err := h.crawler.Run(context.Background(), &param.Crawl{RunID: "run-1", TargetCount: 100})

	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 4, 5, 6}, sequences(h.sink.records()))
	assert.Equal(t, 6, summary.Processed)
	assert.Equal(t, 5, summary.Persisted)
	assert.Equal(t, model.RunCompleted, summary.Status)
}

func TestRun_RecordsCarryClassificationAndEnrichment(t *testing.T) {
	cfg := testConfig()
	fake := newFake(cfg, rosterPages(1, 2))
	fake.Profiles["@member-1"] = browsertest.Profile{Email: "one@example.com", Contribution: "7"}
	h := newHarness(cfg, fake)

	_, err := h.crawler.Run(context.Background(), &param.Crawl{RunID: "run-1", TargetCount: 2})

	require.NoError(t, err)
	records := h.sink.records()
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "Member 1", first.Name)
	assert.Equal(t, "@member-1", first.Handle)
	assert.Equal(t, "one@example.com", first.Email)
	assert.Equal(t, "7", first.Contribution)
	require.NotNil(t, first.TenureDays)
	assert.Equal(t, 90, *first.TenureDays)
	assert.Equal(t, 3, *first.TenureMonths)

	assert.Equal(t, enricher.NoEmail, records[1].Email)
	assert.Equal(t, enricher.NoContribution, records[1].Contribution)
}

func TestRun_AuthenticationFailure(t *testing.T) {
	cfg := testConfig()
	fake := newFake(cfg, rosterPages(1, 3))
	fake.AfterLoginURL = ""
	h := newHarness(cfg, fake)

	summary, err := h.crawler.Run(context.Background(), &param.Crawl{RunID: "run-1", TargetCount: 3})

	var stageErr *errs.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, string(StageAuthenticating), stageErr.Stage)
	assert.Equal(t, model.RunFailed, summary.Status)
	assert.Zero(t, summary.Processed)
	assert.Empty(t, h.sink.pages)
	assert.Same(t, summary, h.sink.run)
	assert.Equal(t, "bot@example.com", fake.Inputs()[cfg.Selectors.LoginEmail])
	assert.Contains(t, h.out.String(), "FAILED")
}

func TestRun_NavigationFailure(t *testing.T) {
	cfg := testConfig()
	fake := newFake(cfg, nil)
	h := newHarness(cfg, fake)

	summary, err := h.crawler.Run(context.Background(), &param.Crawl{RunID: "run-1"})

	var stageErr *errs.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, string(StageNavigating), stageErr.Stage)
	assert.Equal(t, model.RunFailed, summary.Status)
}

func TestRun_SessionFailure(t *testing.T) {
	cfg := testConfig()
	fake := newFake(cfg, rosterPages(1, 3))
	fake.FailRestarts = 10
	h := newHarness(cfg, fake)

	summary, err := h.crawler.Run(context.Background(), &param.Crawl{RunID: "run-1"})

	var sessionErr *errs.SessionError
	require.ErrorAs(t, err, &sessionErr)
	assert.Equal(t, cfg.Crawl.RestartAttempts, fake.Restarts())
	assert.Equal(t, model.RunFailed, summary.Status)
	assert.NotNil(t, h.sink.run)
}

func TestRun_FileSinkFailureIsFatal(t *testing.T) {
	cfg := testConfig()
	fake := newFake(cfg, rosterPages(2, 3))
	h := newHarness(cfg, fake)
	h.sink.writeErr = errors.New("disk full")

	summary, err := h.crawler.Run(context.Background(), &param.Crawl{RunID: "run-1", TargetCount: 6})

	var fileErr *errs.FileSinkError
	require.ErrorAs(t, err, &fileErr)
	assert.Equal(t, model.RunFailed, summary.Status)
	assert.Equal(t, 1, summary.LastPage)
	assert.Equal(t, 3, summary.Processed)
	assert.Zero(t, summary.Persisted)
}

func TestRun_RecoversSessionAfterRestart(t *testing.T) {
	cfg := testConfig()
	fake := newFake(cfg, rosterPages(2, 2))
	fake.OpenTabErr = errors.New("target crashed")
	h := newHarness(cfg, fake)

	summary, err := h.crawler.Run(context.Background(), &param.Crawl{RunID: "run-1", TargetCount: 4})

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, sequences(h.sink.records()))
	assert.Equal(t, 2, summary.LastPage)
	// 一次初始化加上每个成员一次重启
	assert.Equal(t, 5, fake.Restarts())

	var resumed bool
	for _, u := range fake.Visited() {
		if strings.Contains(u, "p=2") {
			resumed = true
		}
	}
	assert.True(t, resumed, "session should resume on page 2 after a restart")
}

func TestRun_EnricherRestartExhaustionFailsRun(t *testing.T) {
	cfg := testConfig()
	fake := newFake(cfg, rosterPages(2, 3))
	fake.OpenTabErr = errors.New("target crashed")
	session := &dyingSession{Fake: fake, healthy: 1}
	h := newHarness(cfg, session)

	summary, err := h.crawler.Run(context.Background(), &param.Crawl{RunID: "run-1", TargetCount: 6})

	var sessionErr *errs.SessionError
	require.ErrorAs(t, err, &sessionErr)
	assert.Equal(t, model.RunFailed, summary.Status)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.LastPage)
	// 已处理的成员仍然写入
	require.Len(t, h.sink.records(), 1)
	assert.Equal(t, enricher.NoEmail, h.sink.records()[0].Email)
	assert.Equal(t, 1+cfg.Crawl.RestartAttempts, session.calls)
	assert.Same(t, summary, h.sink.run)
}

func TestRun_PageWithoutRecordsEndsPagination(t *testing.T) {
	cfg := testConfig()
	fake := newFake(cfg, rosterPages(2, 3))
	h := newHarness(cfg, fake, WithClassifier(func(string) model.MemberRecord {
		panic("unreadable tile")
	}))

	summary, err := h.crawler.Run(context.Background(), &param.Crawl{RunID: "run-1", TargetCount: 100})

	require.NoError(t, err)
	assert.Empty(t, h.sink.records())
	assert.Equal(t, 1, summary.LastPage)
	assert.Equal(t, 3, summary.Processed)
	assert.Zero(t, summary.Persisted)
	assert.Equal(t, model.RunCompleted, summary.Status)
	for _, u := range fake.Visited() {
		assert.NotContains(t, u, "p=2")
	}
}

func TestRun_UnverifiedArtifact(t *testing.T) {
	cfg := testConfig()
	cfg.Output.VerifyAttempts = 3
	fake := newFake(cfg, rosterPages(1, 1))
	var checks int
	h := newHarness(cfg, fake, WithArtifactCheck(func(string) bool {
		checks++
		return false
	}))

	summary, err := h.crawler.Run(context.Background(), &param.Crawl{RunID: "run-1", TargetCount: 1})

	require.NoError(t, err)
	assert.False(t, summary.ArtifactVerified)
	assert.Equal(t, 3, checks)
	assert.Equal(t, model.RunCompleted, summary.Status)
}

func TestRun_InvalidParams(t *testing.T) {
	cfg := testConfig()
	h := newHarness(cfg, newFake(cfg, nil))

	summary, err := h.crawler.Run(context.Background(), &param.Crawl{TargetCount: 5})

	var cfgErr *errs.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Nil(t, summary)
}

func TestRun_RendersSummaryTable(t *testing.T) {
	cfg := testConfig()
	h := newHarness(cfg, newFake(cfg, rosterPages(1, 2)))

	_, err := h.crawler.Run(context.Background(), &param.Crawl{RunID: "run-42", TargetCount: 2})

	require.NoError(t, err)
	out := h.out.String()
	assert.Contains(t, out, "run-42")
	assert.Contains(t, out, "COMPLETED")
	assert.Contains(t, out, "/tmp/Miembros_Skool_01_06_2025.csv")
}
