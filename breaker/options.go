package breaker

import (
	"github.com/ceyewan/fuse/cache"
	"github.com/ceyewan/fuse/clog"
	"github.com/ceyewan/fuse/metrics"
)

// Option 熔断器选项函数
type Option func(*options)

// options 选项结构（内部使用）
type options struct {
	logger clog.Logger
	meter  metrics.Meter
	memory *cache.Memory
}

// WithLogger 注入日志记录器
// 组件内部会自动追加 Namespace: logger.WithNamespace("breaker")
func WithLogger(l clog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l.WithNamespace("breaker")
		}
	}
}

// WithMeter 注入指标 Meter
func WithMeter(m metrics.Meter) Option {
	return func(o *options) {
		o.meter = m
	}
}

// WithMemory 注入共享的内存缓存层
// 多个熔断器实例可以共享同一个内存层，在同一容量配额下竞争淘汰
func WithMemory(m *cache.Memory) Option {
	return func(o *options) {
		o.memory = m
	}
}
