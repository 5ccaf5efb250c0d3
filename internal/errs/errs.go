// Package errs 定义一次爬取运行中各阶段的错误分类
package errs

import "fmt"

// ConfigError 配置缺失或无效,在启动浏览器之前即为致命错误
type ConfigError struct {
	Key string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("configuration error: %v", e.Err)
	}
	return fmt.Sprintf("configuration error: %s: %v", e.Key, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// SessionError 浏览器会话在有限次重试后仍不可用
type SessionError struct {
	Attempts int
	Err      error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("browser session unrecoverable after %d attempts: %v", e.Attempts, e.Err)
}

func (e *SessionError) Unwrap() error { return e.Err }

// StageError 登录或导航的前置条件不满足,终止运行,但仍会生成汇总
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// RecordError 单个成员提取失败,记录后跳过
type RecordError struct {
	Page     int
	Position int
	Sequence int
	Err      error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("member page=%d position=%d sequence=%d: %v", e.Page, e.Position, e.Sequence, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// FileSinkError 文件输出失败;文件是权威输出,因此是致命错误
type FileSinkError struct {
	Path string
	Err  error
}

func (e *FileSinkError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *FileSinkError) Unwrap() error { return e.Err }

// StoreError 数据库或索引写入失败,只作为警告,运行继续
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
