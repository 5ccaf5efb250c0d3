// Package enricher 打开成员详情页补充邮箱和贡献值
package enricher

import (
	"context"
	"fmt"

	"github.com/LouYuanbo1/rostercrawler/internal/config"
	"github.com/LouYuanbo1/rostercrawler/internal/domain/model"
	"github.com/LouYuanbo1/rostercrawler/internal/infra/browser"
	"github.com/LouYuanbo1/rostercrawler/internal/logger"
)

const (
	NoEmail        = "NA_Email"
	NoContribution = "NA_Contrib"
)

type Enricher interface {
	// Enrich 永远不返回错误,取不到的字段使用占位值
	Enrich(ctx context.Context, handle string) model.Enrichment
}

type profileEnricher struct {
	session browser.Session
	cfg     *config.Config
	policy  browser.RestartPolicy
	log     logger.Logger
}

func InitProfileEnricher(session browser.Session, cfg *config.Config, log logger.Logger) Enricher {
	return &profileEnricher{
		session: session,
		cfg:     cfg,
		policy:  browser.NewRestartPolicy(cfg),
		log:     log,
	}
}

func (e *profileEnricher) Enrich(ctx context.Context, handle string) (res model.Enrichment) {
	res = model.Enrichment{Email: NoEmail, Contribution: NoContribution}
	if handle == "" || handle == model.NotAvailable {
		return res
	}
	log := e.log.With(logger.String("handle", handle))
	defer func() {
		if r := recover(); r != nil {
			log.Error("补充成员信息时发生panic", logger.Any("panic", r))
		}
	}()

	tab, err := e.session.OpenTab(ctx)
	if err != nil {
		log.Warn("打开辅助标签页失败,重启浏览器", logger.Error(err))
		res.Restarted, res.RestartErr = true, e.restart(ctx, log)
		return res
	}
	// 无论从哪条路径返回都要关闭标签页;关闭失败说明会话已不一致,整体重启
	defer func() {
		if err := tab.Close(); err != nil {
			log.Warn("关闭辅助标签页失败,重启浏览器", logger.Error(err))
			res.Restarted, res.RestartErr = true, e.restart(ctx, log)
		}
	}()

	t := e.cfg.Timeouts
	sel := e.cfg.Selectors
	navCtx := ctx
	if t.Navigation > 0 {
		var cancel context.CancelFunc
		navCtx, cancel = context.WithTimeout(ctx, t.Navigation)
		defer cancel()
	}
	if err := tab.Navigate(navCtx, fmt.Sprintf(e.cfg.Platform.ProfileURL, handle)); err != nil {
		log.Warn("打开成员详情页失败", logger.Error(err))
		return res
	}
	if err := tab.WaitPresent(ctx, sel.ProfileBody, t.Page); err != nil {
		log.Warn("成员详情页未加载", logger.Error(err))
		return res
	}

	if text, err := tab.Text(ctx, sel.ProfileContrib, t.Optional); err == nil && text != "" {
		res.Contribution = text
	} else {
		log.Debug("未找到贡献值", logger.Error(err))
	}

	if err := tab.ClickLast(ctx, sel.ProfileMenu, t.Element); err != nil {
		log.Warn("未找到成员菜单", logger.Error(err))
		return res
	}
	if err := tab.Click(ctx, sel.MembershipSettings, t.Element); err != nil {
		log.Warn("未找到会员设置入口", logger.Error(err))
		return res
	}
	if text, err := tab.Text(ctx, sel.MembershipEmail, t.Optional); err == nil && text != "" {
		res.Email = text
	} else {
		log.Debug("未找到邮箱", logger.Error(err))
	}
	return res
}

// restart 重启整个会话;重试耗尽时返回 *errs.SessionError,由调用方终止运行
func (e *profileEnricher) restart(ctx context.Context, log logger.Logger) error {
	err := browser.RestartSession(ctx, e.session, e.policy)
	if err != nil {
		log.Error("重启浏览器失败", logger.Error(err))
	}
	return err
}
