package cache

import (
	"context"
	"time"

	"github.com/maypok86/otter/v2"
	"github.com/maypok86/otter/v2/stats"

	"github.com/ceyewan/fuse/clog"
	"github.com/ceyewan/fuse/xerrors"
)

// maxTTL 当未指定 TTL 时使用的默认过期时间（100年，模拟永久）
const maxTTL = 24 * 365 * 100 * time.Hour

// memoryEntry 内存层条目，除值外记录淘汰权重与滑动续期时长
type memoryEntry struct {
	value   any
	weight  uint32
	sliding time.Duration
}

// Memory 进程内缓存层，基于 otter 实现
//
// 条目按优先级加权计入容量配额：低优先级条目权重更大，
// 在容量压力下会更早被淘汰。可以被多个 Tiered 实例共享。
type Memory struct {
	cache  *otter.Cache[string, memoryEntry]
	logger clog.Logger
}

// MemoryConfig 内存缓存层配置
type MemoryConfig struct {
	// Capacity 容量配额（普通优先级条目数，默认：10000）
	Capacity int `mapstructure:"capacity" json:"capacity" yaml:"capacity"`
}

// NewMemory 创建内存缓存层
func NewMemory(cfg *MemoryConfig, opts ...Option) (*Memory, error) {
	if cfg == nil {
		cfg = &MemoryConfig{Capacity: DefaultCapacity}
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}

	opt := options{}
	for _, o := range opts {
		o(&opt)
	}
	if opt.Logger == nil {
		opt.Logger = clog.Discard()
	}

	// 使用写入过期策略（过期时间从写入开始计算，读取不重置 TTL），
	// 具体 TTL 在 Set 时通过 SetExpiresAfter 覆盖；滑动过期由 Get 显式续期。
	// 容量采用权重配额：普通优先级条目权重为 2，配额按条目数换算。
	otterOpts := &otter.Options[string, memoryEntry]{
		MaximumWeight:    uint64(cfg.Capacity) * uint64(PriorityNormal.weight()),
		Weigher:          func(key string, e memoryEntry) uint32 { return e.weight },
		StatsRecorder:    stats.NewCounter(),
		ExpiryCalculator: otter.ExpiryWriting[string, memoryEntry](maxTTL),
	}

	cache, err := otter.New(otterOpts)
	if err != nil {
		return nil, xerrors.Wrap(err, "failed to build otter cache")
	}

	return &Memory{
		cache:  cache,
		logger: opt.Logger,
	}, nil
}

// entryPolicy 单个条目的过期与淘汰策略
type entryPolicy struct {
	ttl      time.Duration
	sliding  time.Duration
	priority Priority
}

// set 写入条目并应用过期策略
//
// 设置了滑动过期时，条目的初始存活时间为滑动时长，之后每次命中续期；
// 否则按绝对时长过期。
func (m *Memory) set(ctx context.Context, key string, value any, pol entryPolicy) {
	m.cache.Set(key, memoryEntry{
		value:   value,
		weight:  pol.priority.weight(),
		sliding: pol.sliding,
	})

	switch {
	case pol.sliding > 0:
		m.cache.SetExpiresAfter(key, pol.sliding)
	case pol.ttl > 0:
		m.cache.SetExpiresAfter(key, pol.ttl)
	}
}

// get 查找条目；命中且配置了滑动过期时续期
func (m *Memory) get(ctx context.Context, key string) (any, bool) {
	e, ok := m.cache.GetIfPresent(key)
	if !ok {
		return nil, false
	}
	if e.sliding > 0 {
		m.cache.SetExpiresAfter(key, e.sliding)
	}
	return e.value, true
}

// delete 移除条目
func (m *Memory) delete(ctx context.Context, key string) {
	m.cache.Invalidate(key)
}

// Len 返回当前条目数
func (m *Memory) Len() int {
	return m.cache.EstimatedSize()
}

// Close 释放内存层持有的后台资源
func (m *Memory) Close() error {
	m.cache.StopAllGoroutines()
	return nil
}
