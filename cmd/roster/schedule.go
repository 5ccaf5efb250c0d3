package main

import (
	"fmt"
	"sync"

	"github.com/LouYuanbo1/rostercrawler/internal/logger"
	"github.com/LouYuanbo1/rostercrawler/internal/service/crawler"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

func newScheduleCmd(root *rootOptions) *cobra.Command {
	var (
		spec      string
		immediate bool
	)
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the crawl on a recurring schedule until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup(root)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			if spec == "" {
				spec = cfg.Schedule.Cron
			}

			schedule, err := cron.ParseStandard(spec)
			if err != nil {
				return fmt.Errorf("无效的调度表达式 %q: %w", spec, err)
			}

			ctx := cmd.Context()
			cronLog := logger.CronLogger{L: log}
			// 同一个包装后的任务同时用于立即执行和定时执行,两者不会重叠
			job := cron.NewChain(
				cron.Recover(cronLog),
				cron.SkipIfStillRunning(cronLog),
			).Then(cron.FuncJob(func() {
				// 单次运行失败不影响之后的调度
				if _, err := runOnce(ctx, cfg, log, root.target, crawler.WithNextRun(schedule.Next)); err != nil {
					log.Error("计划任务运行失败", logger.Error(err))
				}
			}))

			c := cron.New(cron.WithLogger(cronLog))
			c.Schedule(schedule, job)

			log.Info("调度已启动", logger.String("cron", spec), logger.Bool("immediate", immediate))
			c.Start()
			var wg sync.WaitGroup
			if immediate {
				wg.Go(job.Run)
			}
			<-ctx.Done()
			log.Info("收到退出信号,等待当前运行结束")
			<-c.Stop().Done()
			wg.Wait()
			return nil
		},
	}
	cmd.Flags().StringVar(&spec, "cron", "", "调度表达式,默认使用配置中的 schedule.cron")
	cmd.Flags().BoolVar(&immediate, "now", true, "启动时立即运行一次")
	return cmd
}
