package config

import (
	"time"

	"github.com/LouYuanbo1/rostercrawler/internal/logger"
)

type Config struct {
	Platform struct {
		LoginURL   string `yaml:"login_url"`
		MembersURL string `yaml:"members_url" env:"SKOOL_MEMBERS_URL"`
		// ProfileURL 中的 %s 会被替换为成员的 @handle
		ProfileURL string `yaml:"profile_url" env:"SKOOL_PROFILE_URL"`
		PageParam  string `yaml:"page_param"`
	} `yaml:"platform"`

	Credentials struct {
		Email    string `yaml:"email" env:"SKOOL_EMAIL"`
		Password string `yaml:"password" env:"SKOOL_PASSWORD"`
	} `yaml:"credentials"`

	Crawl struct {
		// 0 表示使用平台报告的活跃成员数
		TargetCount     int           `yaml:"target_count" env:"NUM_MEMBERS"`
		TargetPadding   int           `yaml:"target_padding"`
		RestartAttempts int           `yaml:"restart_attempts"`
		BackoffUnit     time.Duration `yaml:"backoff_unit"`
		RestartPause    time.Duration `yaml:"restart_pause"`
	} `yaml:"crawl"`

	Timeouts struct {
		Page       time.Duration `yaml:"page"`
		Element    time.Duration `yaml:"element"`
		Optional   time.Duration `yaml:"optional"`
		Navigation time.Duration `yaml:"navigation"`
	} `yaml:"timeouts"`

	Selectors Selectors `yaml:"selectors"`

	Output struct {
		Dir               string        `yaml:"dir" env:"OUTPUT_DIR"`
		BaseName          string        `yaml:"base_name"`
		ProvenanceColumns bool          `yaml:"provenance_columns"`
		VerifyAttempts    int           `yaml:"verify_attempts"`
		VerifyInterval    time.Duration `yaml:"verify_interval"`
	} `yaml:"output"`

	Browser Browser `yaml:"browser"`

	Database struct {
		Host     string `yaml:"host" env:"DB_HOST"`
		Port     int    `yaml:"port" env:"DB_PORT"`
		Name     string `yaml:"name" env:"DB_NAME"`
		User     string `yaml:"user" env:"DB_USER"`
		Password string `yaml:"password" env:"DB_PASSWORD"`
		SSLMode  string `yaml:"sslmode" env:"DB_SSLMODE"`
	} `yaml:"database"`

	Elasticsearch struct {
		Address  string `yaml:"address" env:"ES_ADDRESS"`
		Username string `yaml:"username" env:"ES_USERNAME"`
		Password string `yaml:"password" env:"ES_PASSWORD"`
	} `yaml:"elasticsearch"`

	Logging logger.Config `yaml:"logging"`

	Schedule struct {
		Cron string `yaml:"cron" env:"SCHEDULE_CRON"`
	} `yaml:"schedule"`
}

// Selectors 平台页面元素定位;以 / 或 ( 开头的按 XPath 处理,其余按 CSS 处理
type Selectors struct {
	LoginEmail         string `yaml:"login_email"`
	LoginPassword      string `yaml:"login_password"`
	LoginSubmit        string `yaml:"login_submit"`
	MemberTile         string `yaml:"member_tile"`
	ActiveCount        string `yaml:"active_count"`
	PageButtons        string `yaml:"page_buttons"`
	NextPage           string `yaml:"next_page"`
	ProfileBody        string `yaml:"profile_body"`
	ProfileContrib     string `yaml:"profile_contribution"`
	ProfileMenu        string `yaml:"profile_menu"`
	MembershipSettings string `yaml:"membership_settings"`
	MembershipEmail    string `yaml:"membership_email"`
}

// StoreEnabled 数据库配置不完整时不使用数据库,运行只写文件
func (c *Config) StoreEnabled() bool {
	return c.Database.Host != "" && c.Database.Name != "" && c.Database.User != ""
}

// IndexEnabled 配置了地址时才把记录同步到搜索索引
func (c *Config) IndexEnabled() bool {
	return c.Elasticsearch.Address != ""
}

// Browser 浏览器启动参数,chromedp 和 rod 共用
type Browser struct {
	// chromedp 或 rod
	Driver                  string `yaml:"driver" env:"BROWSER_DRIVER"`
	Bin                     string `yaml:"bin" env:"BROWSER_BIN"`
	UserDataDir             string `yaml:"user_data_dir"`
	Headless                bool   `yaml:"headless" env:"BROWSER_HEADLESS"`
	NoSandbox               bool   `yaml:"no_sandbox"`
	DisableGPU              bool   `yaml:"disable_gpu"`
	DisableDevShmUsage      bool   `yaml:"disable_dev_shm_usage"`
	DisableExtensions       bool   `yaml:"disable_extensions"`
	DisableBlinkFeatures    string `yaml:"disable_blink_features"`
	IgnoreCertificateErrors bool   `yaml:"ignore_certificate_errors"`
	UserAgent               string `yaml:"user_agent"`
	Leakless                bool   `yaml:"leakless"`
}
