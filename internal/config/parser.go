package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/LouYuanbo1/rostercrawler/internal/errs"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultYAML []byte

// 按顺序加载的 env 文件,已存在的环境变量不会被覆盖
var envFiles = []string{"variables.env", ".env.local", ".env"}

// Load 加载默认配置,叠加 path 指向的 YAML 文件(可为空),再应用环境变量并校验
func Load(path string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, &errs.ConfigError{Err: err}
	}
	var override []byte
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &errs.ConfigError{Key: "config", Err: fmt.Errorf("read config file %s: %w", path, err)}
		}
		override = data
	}
	return ParseConfig(override)
}

// ParseConfig 在内置默认值之上解析 YAML 字节,然后应用环境变量覆盖并校验
func ParseConfig(byteConfig []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		return nil, &errs.ConfigError{Key: "defaults", Err: err}
	}
	if len(byteConfig) > 0 {
		if err := yaml.Unmarshal(byteConfig, &cfg); err != nil {
			return nil, &errs.ConfigError{Key: "config", Err: fmt.Errorf("parse config: %w", err)}
		}
	}
	if err := applyEnvToStruct(reflect.ValueOf(&cfg).Elem()); err != nil {
		return nil, err
	}
	if cfg.Browser.UserDataDir != "" {
		absPath, err := filepath.Abs(cfg.Browser.UserDataDir)
		if err != nil {
			return nil, &errs.ConfigError{Key: "browser.user_data_dir", Err: err}
		}
		cfg.Browser.UserDataDir = absPath
	}
	cfg.Logging.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Defaults 返回只包含内置默认值的配置,不读取环境变量也不校验
func Defaults() *Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		panic(fmt.Sprintf("config: invalid embedded defaults: %v", err))
	}
	cfg.Logging.SetDefaults()
	return &cfg
}

func loadEnvFiles() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}
	for _, name := range envFiles {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", name, err)
		}
	}
	return nil
}

func applyEnvToStruct(v reflect.Value) error {
	t := v.Type()
	for i := range v.NumField() {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}
		if field.Kind() == reflect.Struct && field.Type() != reflect.TypeOf(time.Time{}) {
			if err := applyEnvToStruct(field); err != nil {
				return err
			}
			continue
		}
		key := t.Field(i).Tag.Get("env")
		if key == "" {
			continue
		}
		val, ok := os.LookupEnv(key)
		if !ok || strings.TrimSpace(val) == "" {
			continue
		}
		if err := setFieldFromString(field, strings.TrimSpace(val)); err != nil {
			return &errs.ConfigError{Key: key, Err: err}
		}
	}
	return nil
}

// 与容错式覆盖不同,无法解析的数值直接报错
func setFieldFromString(field reflect.Value, val string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(val)
	case reflect.Int, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(val)
			if err != nil {
				return fmt.Errorf("expected duration, got %q", val)
			}
			field.SetInt(int64(d))
			return nil
		}
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return fmt.Errorf("expected int, got %q", val)
		}
		field.SetInt(n)
	case reflect.Bool:
		b, err := parseBool(val)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type %s", field.Type())
		}
		parts := strings.Split(val, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		field.Set(reflect.ValueOf(out))
	default:
		return fmt.Errorf("unsupported field type %s", field.Type())
	}
	return nil
}

func parseBool(val string) (bool, error) {
	switch strings.ToLower(val) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("expected bool, got %q", val)
}
