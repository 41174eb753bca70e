// Package cache 提供分层缓存组件：内存层 → 文件层 → 回源计算。
//
// Tiered 按顺序尝试各层解析一个缓存键对应的值：
//   - 内存层（otter）：进程内命中，最快路径
//   - 文件层（可选）：按文件修改时间判定新鲜度，命中后晋升到内存层
//   - 回源计算：两层均未命中时调用 compute，结果回填两层
//
// 基本使用：
//
//	resolver, _ := cache.New[string](&cache.Config{
//	    Key: "weather:london",
//	    TTL: 5 * time.Minute,
//	    Dir: "/var/cache/weather",
//	}, cache.WithLogger(logger))
//
//	value, err := resolver.Load(ctx, func(ctx context.Context) (string, error) {
//	    return fetchWeather(ctx, "london")
//	})
//
// 并发语义：Load 自身不加锁，仅在回源计算前对内存层做一次二次检查，
// 用于缩小重复计算的窗口。需要"同一时刻至多一次计算"保证的调用方
// 应在外层自行串行化（breaker 组件按熔断器标识加锁正是这种用法）。
package cache

import (
	"context"

	"github.com/ceyewan/fuse/cache/serializer"
	"github.com/ceyewan/fuse/clog"
	"github.com/ceyewan/fuse/metrics"
)

// Tiered 分层缓存解析器，绑定一个缓存键
type Tiered[T any] struct {
	cfg    *Config
	mem    *Memory
	file   *fileStore
	logger clog.Logger
	meter  metrics.Meter
	done   chan struct{}
}

// New 创建分层缓存解析器
//
// 参数:
//   - cfg: 缓存配置（Key 必填；Dir 为空时禁用文件层）
//   - opts: 可选参数 (Logger, Meter, Memory)
func New[T any](cfg *Config, opts ...Option) (*Tiered[T], error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	opt := options{}
	for _, o := range opts {
		o(&opt)
	}
	if opt.Logger == nil {
		opt.Logger = clog.Discard()
	}

	mem := opt.Memory
	if mem == nil {
		var err error
		mem, err = NewMemory(&MemoryConfig{Capacity: cfg.Capacity})
		if err != nil {
			return nil, err
		}
	}

	t := &Tiered[T]{
		cfg:    cfg,
		mem:    mem,
		logger: opt.Logger,
		meter:  opt.Meter,
		done:   make(chan struct{}),
	}

	if cfg.Dir != "" {
		codec, err := serializer.New(cfg.Serializer)
		if err != nil {
			return nil, err
		}
		if cfg.Compress {
			codec, err = serializer.WithCompression(codec)
			if err != nil {
				return nil, err
			}
		}
		t.file, err = newFileStore(cfg.Dir, cfg.TTL, codec, opt.Logger)
		if err != nil {
			return nil, err
		}
	}

	if cfg.Invalidate != nil {
		go t.watchInvalidate(cfg.Invalidate)
	}

	return t, nil
}

// Key 返回绑定的缓存键
func (t *Tiered[T]) Key() string {
	return t.cfg.Key
}

// Get 按层查找缓存值，不触发回源计算
func (t *Tiered[T]) Get(ctx context.Context) (T, bool) {
	if v, ok := t.fromMemory(ctx); ok {
		return v, true
	}
	if v, ok := t.fromFile(ctx); ok {
		return v, true
	}
	t.count(ctx, MetricMissesTotal)
	var zero T
	return zero, false
}

// Load 按层解析缓存值，两层均未命中时调用 compute 并回填
//
// 回源计算前会对内存层做一次二次检查，防御调用方在第一次查找
// 与进入临界区之间发生的并发填充。compute 返回错误时不回填任何层，
// 错误原样返回。
func (t *Tiered[T]) Load(ctx context.Context, compute func(context.Context) (T, error)) (T, error) {
	if v, ok := t.fromMemory(ctx); ok {
		return v, nil
	}
	if v, ok := t.fromFile(ctx); ok {
		return v, nil
	}

	// 二次检查：并发的填充可能发生在首次查找之后
	if v, ok := t.fromMemory(ctx); ok {
		return v, nil
	}

	t.count(ctx, MetricMissesTotal)
	t.count(ctx, MetricComputeTotal)
	var zero T
	value, err := compute(ctx)
	if err != nil {
		return zero, err
	}

	t.populate(ctx, value)
	return value, nil
}

// Invalidate 同时丢弃内存层与文件层的条目
func (t *Tiered[T]) Invalidate(ctx context.Context) error {
	t.mem.delete(ctx, t.cfg.Key)
	if t.file != nil {
		return t.file.delete(t.cfg.Key)
	}
	return nil
}

// Close 停止失效监听。不关闭注入的共享内存层。
func (t *Tiered[T]) Close() error {
	select {
	case <-t.done:
	default:
		close(t.done)
	}
	return nil
}

// fromMemory 内存层查找，要求值为期望的类型
func (t *Tiered[T]) fromMemory(ctx context.Context) (T, bool) {
	var zero T
	raw, ok := t.mem.get(ctx, t.cfg.Key)
	if !ok {
		return zero, false
	}
	v, ok := raw.(T)
	if !ok {
		// 同一个键被其他类型的实例占用，按未命中处理
		return zero, false
	}
	t.countTier(ctx, MetricHitsTotal, TierMemory)
	return v, true
}

// fromFile 文件层查找，命中后晋升到内存层
func (t *Tiered[T]) fromFile(ctx context.Context) (T, bool) {
	var zero T
	if t.file == nil {
		return zero, false
	}

	var v T
	ok, err := t.file.load(t.cfg.Key, &v)
	if err != nil {
		t.logger.Warn("file tier read failed",
			clog.String("key", t.cfg.Key),
			clog.Error(err))
		return zero, false
	}
	if !ok {
		return zero, false
	}

	t.countTier(ctx, MetricHitsTotal, TierFile)
	t.mem.set(ctx, t.cfg.Key, v, t.policy())
	return v, true
}

// populate 将计算结果回填两层
func (t *Tiered[T]) populate(ctx context.Context, value T) {
	t.mem.set(ctx, t.cfg.Key, value, t.policy())

	if t.file != nil {
		if err := t.file.store(t.cfg.Key, value); err != nil {
			// 文件层写入失败不影响本次结果，下次未命中时重新计算
			t.logger.Warn("file tier write failed",
				clog.String("key", t.cfg.Key),
				clog.Error(err))
		}
	}
}

// policy 根据配置构造条目策略
func (t *Tiered[T]) policy() entryPolicy {
	return entryPolicy{
		ttl:      t.cfg.TTL,
		sliding:  t.cfg.SlidingTTL,
		priority: t.cfg.Priority,
	}
}

// watchInvalidate 监听失效触发器，触发时丢弃两层条目
func (t *Tiered[T]) watchInvalidate(trigger <-chan struct{}) {
	for {
		select {
		case _, ok := <-trigger:
			if !ok {
				return
			}
			t.count(context.Background(), MetricInvalidationsTotal)
			t.logger.Info("cache invalidated by trigger",
				clog.String("key", t.cfg.Key))
			_ = t.Invalidate(context.Background())
		case <-t.done:
			return
		}
	}
}

// count 记录计数指标
func (t *Tiered[T]) count(ctx context.Context, name string) {
	if t.meter == nil {
		return
	}
	if counter, err := t.meter.Counter(name, "Tiered cache events"); err == nil && counter != nil {
		counter.Inc(ctx)
	}
}

// countTier 记录带层标签的计数指标
func (t *Tiered[T]) countTier(ctx context.Context, name, tier string) {
	if t.meter == nil {
		return
	}
	if counter, err := t.meter.Counter(name, "Tiered cache events"); err == nil && counter != nil {
		counter.Inc(ctx, metrics.L(LabelTier, tier))
	}
}
