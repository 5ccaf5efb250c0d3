// Package sink 把每页记录同时写入文件、数据库和搜索索引;文件是权威输出,其余为尽力而为
package sink

import (
	"context"
	"time"

	"github.com/LouYuanbo1/rostercrawler/internal/domain/model"
	"github.com/LouYuanbo1/rostercrawler/internal/errs"
	"github.com/LouYuanbo1/rostercrawler/internal/infra/persistence/postgres"
	"github.com/LouYuanbo1/rostercrawler/internal/logger"
)

type Sink interface {
	// WritePage 只有文件写入失败时返回错误(*errs.FileSinkError)
	WritePage(ctx context.Context, records []model.MemberRecord) error
	// RecordRun 尽力保存运行汇总,失败只记录警告
	RecordRun(ctx context.Context, summary *model.RunSummary)
	Artifact() string
}

type FileWriter interface {
	Append(records []model.MemberRecord) error
	Path() string
}

type MemberStore interface {
	InsertMembers(ctx context.Context, batch postgres.Batch, records []model.MemberRecord) error
	InsertRun(ctx context.Context, summary *model.RunSummary) error
}

type MemberIndex interface {
	BulkIndexDocsWithID(ctx context.Context, docs []*model.MemberDoc) (int, error)
}

// RunMeta 写入数据库和索引的来源信息
type RunMeta struct {
	RunID  string
	Script string
}

type Option func(*dualSink)

// WithStore 启用数据库写入
func WithStore(store MemberStore) Option {
	return func(s *dualSink) { s.store = store }
}

// WithIndex 启用搜索索引写入
func WithIndex(index MemberIndex) Option {
	return func(s *dualSink) { s.index = index }
}

func WithClock(now func() time.Time) Option {
	return func(s *dualSink) { s.now = now }
}

type dualSink struct {
	file  FileWriter
	store MemberStore
	index MemberIndex
	meta  RunMeta
	log   logger.Logger
	now   func() time.Time
}

func InitDualSink(file FileWriter, meta RunMeta, log logger.Logger, opts ...Option) Sink {
	s := &dualSink{file: file, meta: meta, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *dualSink) Artifact() string {
	return s.file.Path()
}

func (s *dualSink) WritePage(ctx context.Context, records []model.MemberRecord) error {
	if err := s.file.Append(records); err != nil {
		return &errs.FileSinkError{Path: s.file.Path(), Err: err}
	}
	s.log.Info("CSV已更新", logger.String("path", s.file.Path()), logger.Int("rows", len(records)))
	if len(records) == 0 {
		return nil
	}

	extractedAt := s.now()
	if s.store != nil {
		batch := postgres.Batch{
			RunID:       s.meta.RunID,
			Script:      s.meta.Script,
			Artifact:    s.file.Path(),
			ExtractedAt: extractedAt,
		}
		if err := s.store.InsertMembers(ctx, batch, records); err != nil {
			s.log.Warn("数据库写入失败,本页只保存在文件中",
				logger.Int("page", records[0].Page),
				logger.Error(&errs.StoreError{Op: "insert members", Err: err}))
		} else {
			s.log.Info("数据库已写入", logger.Int("page", records[0].Page), logger.Int("rows", len(records)))
		}
	}

	if s.index != nil {
		docs := make([]*model.MemberDoc, 0, len(records))
		for _, rec := range records {
			docs = append(docs, model.NewMemberDoc(s.meta.RunID, s.file.Path(), extractedAt, rec))
		}
		if n, err := s.index.BulkIndexDocsWithID(ctx, docs); err != nil {
			s.log.Warn("搜索索引写入失败",
				logger.Int("page", records[0].Page),
				logger.Int("indexed", n),
				logger.Error(&errs.StoreError{Op: "index members", Err: err}))
		}
	}
	return nil
}

func (s *dualSink) RecordRun(ctx context.Context, summary *model.RunSummary) {
	if s.store == nil {
		s.log.Warn("未配置数据库,运行汇总不会保存")
		return
	}
	if err := s.store.InsertRun(ctx, summary); err != nil {
		s.log.Warn("运行汇总保存失败", logger.Error(&errs.StoreError{Op: "insert run", Err: err}))
		return
	}
	s.log.Info("运行汇总已保存", logger.String("run_id", summary.RunID))
}
