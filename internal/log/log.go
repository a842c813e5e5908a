// Package log 提供统一的结构化日志：slog 的薄封装，按依赖注入传入各组件。
// Package log is the thin slog wrapper providing unified structured logging,
// injected into components as a dependency.
package log

import (
	"io"
	"log/slog"
	"os"
)

// Logger *slog.Logger 的别名，组件以它作为依赖
// Logger is an alias for *slog.Logger, taken by components as a dependency
type Logger = *slog.Logger

// Config 日志配置 / Config holds logger options
type Config struct {
	// Level 最低输出级别，默认 Info / Level is the minimum level, default Info
	Level slog.Level
	// JSON 以 JSON 格式输出，默认文本 / JSON enables JSON output, default text
	JSON bool
}

// New 创建输出到 stderr 的 logger / New creates a logger writing to stderr
func New(cfg Config) Logger {
	return NewWithWriter(os.Stderr, cfg)
}

// NewWithWriter 创建写入指定 writer 的 logger（测试用于捕获输出）
// NewWithWriter creates a logger writing to w (tests capture output this way)
func NewWithWriter(w io.Writer, cfg Config) Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level}
	if cfg.JSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// NewNop 丢弃全部输出的 logger（测试用） / NewNop discards everything (for tests)
func NewNop() Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
