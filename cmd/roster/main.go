// roster 登录成员社区,逐页爬取成员名单并写入CSV文件,可选同步到PostgreSQL和Elasticsearch
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx)
	stop()
	os.Exit(code)
}
