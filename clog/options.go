package clog

import "strings"

// NamespaceKey 是日志中命名空间的字段名，用于标识组件来源
const NamespaceKey = "namespace"

// Option 函数式选项，用于配置 Logger 实例
type Option func(*options)

// options 内部选项结构
type options struct {
	namespaceParts  []string
	namespaceJoiner string
}

// WithNamespace 设置日志命名空间，支持多级命名空间
//
// 命名空间会以 "." 连接，作为日志中的 namespace 字段。
//
// 示例：
//
//	// 设置为 "fuse.breaker"
//	clog.WithNamespace("fuse", "breaker")
func WithNamespace(parts ...string) Option {
	return func(o *options) {
		o.namespaceParts = append(o.namespaceParts, parts...)
	}
}

// applyOptions 应用所有选项并返回配置（内部使用）
func applyOptions(opts ...Option) *options {
	o := &options{
		namespaceParts:  []string{},
		namespaceJoiner: ".",
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// getNamespaceString 根据 options 中的 parts 和 joiner 生成完整的命名空间字符串。
func getNamespaceString(options *options) string {
	if options == nil || len(options.namespaceParts) == 0 {
		return ""
	}
	joiner := options.namespaceJoiner
	if joiner == "" {
		joiner = "."
	}
	return strings.Join(options.namespaceParts, joiner)
}
