package cache

import (
	"github.com/ceyewan/fuse/clog"
	"github.com/ceyewan/fuse/metrics"
)

// Option 缓存组件选项函数
type Option func(*options)

// options 选项结构（内部使用）
type options struct {
	Logger clog.Logger
	Meter  metrics.Meter
	Memory *Memory
}

// WithLogger 注入日志记录器
// 组件内部会自动追加 Namespace: logger.WithNamespace("cache")
func WithLogger(l clog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.Logger = l.WithNamespace("cache")
		}
	}
}

// WithMeter 注入指标 Meter
func WithMeter(m metrics.Meter) Option {
	return func(o *options) {
		o.Meter = m
	}
}

// WithMemory 注入共享的内存缓存层
//
// 多个 Tiered 实例可以共享同一个 Memory，使所有键在同一容量
// 配额下竞争淘汰。未注入时每个实例会创建自己独立的内存层。
func WithMemory(m *Memory) Option {
	return func(o *options) {
		o.Memory = m
	}
}
