package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/LouYuanbo1/rostercrawler/internal/config"
	"github.com/LouYuanbo1/rostercrawler/internal/logger"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	target     int
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "roster",
		Short:         "Crawl a community member roster into a CSV file",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCommand(cmd.Context(), opts)
		},
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML 配置文件路径,未指定时只使用内置默认值和环境变量")
	cmd.PersistentFlags().IntVarP(&opts.target, "target", "n", 0, "目标成员数,覆盖 NUM_MEMBERS;0 表示使用平台显示的活跃人数")
	cmd.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Run a single crawl (default)",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runCommand(cmd.Context(), opts)
			},
		},
		newScheduleCmd(opts),
	)
	return cmd
}

func runCommand(ctx context.Context, opts *rootOptions) error {
	cfg, log, err := setup(opts)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	_, err = runOnce(ctx, cfg, log, opts.target)
	return err
}

func setup(opts *rootOptions) (*config.Config, logger.Logger, error) {
	if opts.target < 0 {
		return nil, nil, errors.New("--target 不能为负数")
	}
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("加载配置失败: %w", err)
	}
	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("初始化日志失败: %w", err)
	}
	return cfg, log, nil
}

// execute 运行命令并返回进程退出码
func execute(ctx context.Context) int {
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
