// Package breaker 提供熔断器组件，保护调用方免于反复调用一个
// 易失败的操作（如远程调用或昂贵计算），并叠加分层缓存。
//
// breaker 提供了：
// - 三状态（Closed/Open/HalfOpen）失败跟踪状态机，冷却结束后自动半开试探
// - 按熔断器标识共享的锁与失败计数（同名实例贡献同一个健康信号）
// - 同一标识下同一时刻至多一次回源计算（由每标识的互斥锁保证）
// - 可选的分层缓存（内存 → 文件 → 计算），命中即不再调用受保护操作
// - 阻塞与可取消两种执行路径，以及 Trip/Reset 人工干预
//
// ## 基本使用
//
//	reg := breaker.NewRegistry()
//
//	brk, _ := breaker.New[string](reg, &breaker.Config{
//		Name:             "weather-api",
//		FailureThreshold: 3,
//		OpenTimeout:      5 * time.Second,
//		Cache: &cache.Config{
//			Key: "weather:london",
//			TTL: 5 * time.Minute,
//			Dir: "/var/cache/weather",
//		},
//	}, breaker.WithLogger(logger))
//
//	value, err := brk.Execute(func() (string, error) {
//		return fetchWeather("london")
//	})
//
// ## Open 状态的返回值
//
// Execute 在 Open 状态下直接返回类型零值且不返回错误，调用方不应将
// 零值当作成功，而应结合 IsOpen/LastError 判断；Do/DoContext 在 Open
// 状态下返回 ErrOpenState。
package breaker

import (
	"context"

	"github.com/ceyewan/fuse/cache"
	"github.com/ceyewan/fuse/clog"
)

// ========================================
// 接口定义 (Interface Definitions)
// ========================================

// Breaker 熔断器核心接口
type Breaker[T any] interface {
	// Execute 执行受熔断保护的函数（阻塞路径）
	//
	// 持有每标识的锁完成状态检查、缓存解析与回源计算；
	// Open 状态下返回类型零值与 nil 错误，操作本身的错误原样传播。
	Execute(fn func() (T, error)) (T, error)

	// ExecuteContext 执行受熔断保护的函数（可取消路径）
	//
	// 与 Execute 使用同一把锁，但以 ctx 获取：排队等待期间 ctx 到期时
	// 返回 ctx 的错误，且不改变熔断器状态。
	ExecuteContext(ctx context.Context, fn func(context.Context) (T, error)) (T, error)

	// Do 执行无返回值的受保护动作
	// Open 状态下返回 ErrOpenState
	Do(fn func() error) error

	// DoContext 可取消地执行无返回值的受保护动作
	DoContext(ctx context.Context, fn func(context.Context) error) error

	// State 返回当前状态
	// 状态观察是惰性转移点：冷却结束的 Open 会在此被提升为 HalfOpen
	State() State

	// IsClosed / IsOpen / IsHalfOpen 状态谓词，语义同 State
	IsClosed() bool
	IsOpen() bool
	IsHalfOpen() bool

	// LastError 返回最近一次受保护操作的失败原因，从未失败时为 nil
	LastError() error

	// Trip 人工打开熔断器（运维干预）
	Trip()

	// Reset 人工闭合熔断器并清零共享失败计数（运维干预）
	Reset()
}

// ========================================
// 工厂函数 (Factory Functions)
// ========================================

// New 创建熔断器实例
//
// 参数:
//   - reg: 熔断器注册表（必填），同名实例传入同一个 reg 才会共享运行时
//   - cfg: 熔断器配置
//   - opts: 可选参数 (Logger, Meter, Memory)
//
// 使用示例:
//
//	brk, _ := breaker.New[string](reg, &breaker.Config{
//		Name:             "weather-api",
//		FailureThreshold: 3,
//		OpenTimeout:      5 * time.Second,
//	}, breaker.WithLogger(logger))
func New[T any](reg *Registry, cfg *Config, opts ...Option) (Breaker[T], error) {
	if reg == nil {
		return nil, ErrRegistryNil
	}
	if cfg == nil {
		return nil, ErrConfigNil
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// 应用选项
	opt := options{}
	for _, o := range opts {
		o(&opt)
	}
	if opt.logger == nil {
		opt.logger = clog.Discard()
	}

	var resolver *cache.Tiered[T]
	if cfg.Cache != nil {
		cacheOpts := []cache.Option{
			cache.WithLogger(opt.logger),
		}
		if opt.meter != nil {
			cacheOpts = append(cacheOpts, cache.WithMeter(opt.meter))
		}
		if opt.memory != nil {
			cacheOpts = append(cacheOpts, cache.WithMemory(opt.memory))
		}

		var err error
		resolver, err = cache.New[T](cfg.Cache, cacheOpts...)
		if err != nil {
			return nil, err
		}
	}

	return newBreaker(reg, cfg, resolver, opt.logger, opt.meter)
}
