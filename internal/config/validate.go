package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/LouYuanbo1/rostercrawler/internal/errs"
)

const (
	minPasswordLen   = 8
	minDBPasswordLen = 4
	minDBPort        = 1024
	maxDBPort        = 65535
)

// Validate 在启动浏览器之前检查所有必需的配置项
func (c *Config) Validate() error {
	if !strings.Contains(c.Credentials.Email, "@") {
		return &errs.ConfigError{Key: "SKOOL_EMAIL", Err: errors.New("must be a valid email address")}
	}
	if len(c.Credentials.Password) < minPasswordLen {
		return &errs.ConfigError{Key: "SKOOL_PASSWORD", Err: fmt.Errorf("must be at least %d characters", minPasswordLen)}
	}
	if c.Crawl.TargetCount < 0 {
		return &errs.ConfigError{Key: "NUM_MEMBERS", Err: errors.New("must not be negative")}
	}
	if c.Platform.LoginURL == "" || c.Platform.MembersURL == "" {
		return &errs.ConfigError{Key: "platform", Err: errors.New("login and members urls are required")}
	}
	if !strings.Contains(c.Platform.ProfileURL, "%s") {
		return &errs.ConfigError{Key: "platform.profile_url", Err: errors.New("must contain %s for the member handle")}
	}
	if c.Crawl.RestartAttempts < 1 {
		return &errs.ConfigError{Key: "crawl.restart_attempts", Err: errors.New("must be at least 1")}
	}
	switch c.Browser.Driver {
	case "chromedp", "rod":
	default:
		return &errs.ConfigError{Key: "BROWSER_DRIVER", Err: fmt.Errorf("unknown driver %q", c.Browser.Driver)}
	}
	if c.Output.BaseName == "" {
		return &errs.ConfigError{Key: "output.base_name", Err: errors.New("must not be empty")}
	}
	if c.StoreEnabled() {
		if c.Database.Port < minDBPort || c.Database.Port > maxDBPort {
			return &errs.ConfigError{Key: "DB_PORT", Err: fmt.Errorf("must be between %d and %d", minDBPort, maxDBPort)}
		}
		if len(c.Database.Password) < minDBPasswordLen {
			return &errs.ConfigError{Key: "DB_PASSWORD", Err: fmt.Errorf("must be at least %d characters", minDBPasswordLen)}
		}
	}
	return nil
}
