// Package clog 提供基于 slog 的结构化日志组件。
//
// 特性：
//   - 抽象接口，不暴露底层实现（slog）
//   - 支持层级命名空间，便于区分组件来源
//   - 零外部依赖（仅依赖 Go 标准库）
//   - 采用函数式选项模式
//
// 基本使用：
//
//	logger, _ := clog.New(&clog.Config{
//	    Level:  "info",
//	    Format: "console",
//	    Output: "stdout",
//	})
//	logger.Info("Hello, World!", clog.String("key", "value"))
//
// 创建子 Logger：
//
//	childLogger := logger.With(clog.String("component", "breaker"))
//	namespacedLogger := logger.WithNamespace("cache")
package clog

// Logger 日志接口，提供结构化日志记录功能
//
// 支持四个日志级别：Debug、Info、Warn、Error。
//
// 基本使用：
//
//	logger.Info("Hello, World", clog.String("key", "value"))
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// With 返回带有附加字段的子 Logger
	With(fields ...Field) Logger

	// WithNamespace 返回带有层级命名空间的子 Logger
	// 多级命名空间以 "." 连接，作为日志中的 namespace 字段
	WithNamespace(parts ...string) Logger
}
