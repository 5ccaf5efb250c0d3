package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/LouYuanbo1/rostercrawler/internal/config"
	"github.com/LouYuanbo1/rostercrawler/internal/domain/model"
	"github.com/LouYuanbo1/rostercrawler/internal/errs"
	"github.com/LouYuanbo1/rostercrawler/internal/infra/browser"
	"github.com/LouYuanbo1/rostercrawler/internal/infra/persistence/csvfile"
	"github.com/LouYuanbo1/rostercrawler/internal/infra/persistence/es"
	"github.com/LouYuanbo1/rostercrawler/internal/infra/persistence/postgres"
	"github.com/LouYuanbo1/rostercrawler/internal/logger"
	"github.com/LouYuanbo1/rostercrawler/internal/service/crawler"
	"github.com/LouYuanbo1/rostercrawler/internal/service/enricher"
	"github.com/LouYuanbo1/rostercrawler/internal/service/sink"
	"github.com/LouYuanbo1/rostercrawler/param"
	"github.com/google/uuid"
)

// connectStore 建立数据库连接,测试中可替换
var connectStore = postgres.NewPostgresConnection

// runOnce 为一次运行组装浏览器、输出和可选的数据库与索引,然后执行爬取
func runOnce(ctx context.Context, cfg *config.Config, log logger.Logger, target int, opts ...crawler.Option) (*model.RunSummary, error) {
	runID := uuid.NewString()
	params := param.NewCrawl(runID, cfg, target)
	// 参数无效时不创建任何资源,也没有运行汇总
	if !params.IsValid() {
		return nil, &errs.ConfigError{Key: "crawl", Err: errors.New("目标数量和补充数量不能为负数")}
	}
	log = log.With(logger.String("run_id", runID))

	artifact, err := csvfile.UniqueName(cfg.Output.Dir, cfg.Output.BaseName, time.Now())
	if err != nil {
		return nil, &errs.FileSinkError{Path: cfg.Output.Dir, Err: err}
	}
	script := filepath.Base(os.Args[0])
	var provenance *csvfile.Provenance
	if cfg.Output.ProvenanceColumns {
		provenance = &csvfile.Provenance{Script: script, Artifact: artifact}
	}

	var sinkOpts []sink.Option
	if store := openStore(ctx, cfg, log); store != nil {
		defer store.Close()
		sinkOpts = append(sinkOpts, sink.WithStore(store))
	}
	if index := openIndex(ctx, cfg, log); index != nil {
		sinkOpts = append(sinkOpts, sink.WithIndex(index))
	}
	out := sink.InitDualSink(
		csvfile.NewWriter(artifact, provenance),
		sink.RunMeta{RunID: runID, Script: script},
		log,
		sinkOpts...,
	)

	session, err := browser.Open(ctx, cfg.Browser)
	if err != nil {
		return nil, &errs.ConfigError{Key: "browser.driver", Err: err}
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Warn("关闭浏览器失败", logger.Error(err))
		}
	}()

	c := crawler.InitRosterCrawler(session, enricher.InitProfileEnricher(session, cfg, log), out, cfg, log, opts...)
	return c.Run(ctx, params)
}

// openStore 数据库不可用时只记录警告,运行继续只写文件
func openStore(ctx context.Context, cfg *config.Config, log logger.Logger) *postgres.Store {
	if !cfg.StoreEnabled() {
		log.Info("未配置数据库,只写CSV文件")
		return nil
	}
	db, err := connectStore(ctx, postgres.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.Name,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		log.Warn("连接数据库失败,只写CSV文件", logger.Error(&errs.StoreError{Op: "connect", Err: err}))
		return nil
	}
	store := postgres.NewStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		log.Warn("创建数据表失败,只写CSV文件", logger.Error(&errs.StoreError{Op: "schema", Err: err}))
		_ = store.Close()
		return nil
	}
	return store
}

// openIndex 搜索索引同样是尽力而为
func openIndex(ctx context.Context, cfg *config.Config, log logger.Logger) sink.MemberIndex {
	if !cfg.IndexEnabled() {
		return nil
	}
	client, err := es.InitTypedEsClient[*model.MemberDoc](cfg, log)
	if err != nil {
		log.Warn("初始化Elasticsearch客户端失败", logger.Error(&errs.StoreError{Op: "index", Err: err}))
		return nil
	}
	if err := client.CreateIndexWithMapping(ctx); err != nil {
		log.Warn("创建索引失败", logger.Error(&errs.StoreError{Op: "index", Err: err}))
		return nil
	}
	return client
}
