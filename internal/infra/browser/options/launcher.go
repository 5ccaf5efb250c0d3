// Package options 以函数式选项构建 rod 浏览器启动器
package options

import (
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
)

type LauncherOption func(*launcher.Launcher)

// CreateLauncher 创建启动器并依次应用选项,调用方负责 Launch
func CreateLauncher(opts ...LauncherOption) *launcher.Launcher {
	l := launcher.New()
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func WithBin(bin string) LauncherOption {
	return func(l *launcher.Launcher) {
		if bin != "" {
			l.Bin(bin)
		}
	}
}

func WithUserDataDir(dir string) LauncherOption {
	return func(l *launcher.Launcher) {
		if dir != "" {
			l.UserDataDir(dir)
		}
	}
}

func WithHeadless(headless bool) LauncherOption {
	return func(l *launcher.Launcher) {
		l.Headless(headless)
	}
}

func WithNoSandbox(noSandbox bool) LauncherOption {
	return func(l *launcher.Launcher) {
		l.NoSandbox(noSandbox)
	}
}

func WithLeakless(leakless bool) LauncherOption {
	return func(l *launcher.Launcher) {
		l.Leakless(leakless)
	}
}

func WithUserAgent(userAgent string) LauncherOption {
	return func(l *launcher.Launcher) {
		if userAgent != "" {
			l.Set("user-agent", userAgent)
		}
	}
}

func WithDisableBlinkFeatures(features string) LauncherOption {
	return func(l *launcher.Launcher) {
		if features != "" {
			l.Set("disable-blink-features", features)
		}
	}
}

func WithSwitch(name string, enabled bool) LauncherOption {
	return func(l *launcher.Launcher) {
		if enabled {
			l.Set(flags.Flag(name))
		} else {
			l.Delete(flags.Flag(name))
		}
	}
}

func WithDisableDevShmUsage(disable bool) LauncherOption {
	return WithSwitch("disable-dev-shm-usage", disable)
}

func WithDisableGPU(disable bool) LauncherOption {
	return WithSwitch("disable-gpu", disable)
}

func WithDisableExtensions(disable bool) LauncherOption {
	return WithSwitch("disable-extensions", disable)
}

func WithIgnoreCertificateErrors(ignore bool) LauncherOption {
	return func(l *launcher.Launcher) {
		WithSwitch("ignore-certificate-errors", ignore)(l)
		WithSwitch("ignore-ssl-errors", ignore)(l)
	}
}
