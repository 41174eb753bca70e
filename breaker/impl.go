package breaker

import (
	"context"
	"time"

	"github.com/ceyewan/fuse/cache"
	"github.com/ceyewan/fuse/clog"
	"github.com/ceyewan/fuse/metrics"
)

// circuitBreaker 熔断器实现（非导出）
//
// 状态快照与 lastErr 属于单个实例；失败计数属于注册表中的共享运行时。
// 两者都只允许在持有该标识的锁时读写。
type circuitBreaker[T any] struct {
	cfg      *Config
	logger   clog.Logger
	meter    metrics.Meter
	rt       *circuit
	resolver *cache.Tiered[T]

	// 以下字段仅在持有 rt 锁时访问
	snap    snapshot
	lastErr error
}

// newBreaker 创建熔断器实例（内部函数）
// 注意：cfg 已在 New() 中调用 validate() 设置了默认值
func newBreaker[T any](
	reg *Registry,
	cfg *Config,
	resolver *cache.Tiered[T],
	logger clog.Logger,
	meter metrics.Meter,
) (Breaker[T], error) {
	b := &circuitBreaker[T]{
		cfg:      cfg,
		logger:   logger,
		meter:    meter,
		rt:       reg.get(cfg.Name),
		resolver: resolver,
	}

	// 初始状态为 Closed：进入 Closed 时共享失败计数清零
	b.rt.lock()
	b.snap = snapshot{state: StateClosed}
	b.rt.failures = 0
	b.rt.unlock()

	logger.Info("circuit breaker created",
		clog.String("circuit", cfg.Name),
		clog.Int("failure_threshold", cfg.FailureThreshold),
		clog.Duration("open_timeout", cfg.OpenTimeout),
		clog.Bool("cached", resolver != nil))

	return b, nil
}

// Execute 执行受熔断保护的函数（阻塞路径）
func (b *circuitBreaker[T]) Execute(fn func() (T, error)) (T, error) {
	b.rt.lock()
	defer b.rt.unlock()
	return b.run(context.Background(), func(context.Context) (T, error) {
		return fn()
	})
}

// ExecuteContext 执行受熔断保护的函数（可取消路径）
//
// 使用与 Execute 相同的每标识锁，但以调用方的 ctx 获取：
// 排队等待时 ctx 到期会放弃排队并返回 ctx 的错误，不触碰熔断器状态。
// 因为两条路径共用一把锁，"同一时刻至多一次回源计算"的保证同样成立。
func (b *circuitBreaker[T]) ExecuteContext(ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	if err := b.rt.lockContext(ctx); err != nil {
		var zero T
		return zero, err
	}
	defer b.rt.unlock()
	return b.run(ctx, fn)
}

// Do 执行无返回值的受保护动作
func (b *circuitBreaker[T]) Do(fn func() error) error {
	b.rt.lock()
	defer b.rt.unlock()
	return b.runAction(context.Background(), func(context.Context) error {
		return fn()
	})
}

// DoContext 可取消地执行无返回值的受保护动作
func (b *circuitBreaker[T]) DoContext(ctx context.Context, fn func(context.Context) error) error {
	if err := b.rt.lockContext(ctx); err != nil {
		return err
	}
	defer b.rt.unlock()
	return b.runAction(ctx, fn)
}

// run 执行引擎核心（要求已持有 rt 锁）
//
// 流程：状态观察（可能惰性提升 Open → HalfOpen）→ Open 则短路 →
// 经缓存解析或直接调用受保护操作 → 向状态机汇报成败。
// 错误在 defer 解锁之后才传播给调用方。
func (b *circuitBreaker[T]) run(ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	start := time.Now()

	b.applyLocked(ctx, eventObserve, start)
	if b.snap.state == StateOpen {
		b.reject(ctx)
		// Open 状态下返回零值：调用方结合 IsOpen/LastError 判断
		return zero, nil
	}

	var (
		value T
		err   error
	)
	if b.resolver != nil {
		value, err = b.resolver.Load(ctx, fn)
	} else {
		value, err = fn(ctx)
	}

	b.record(ctx, start, err)
	if err != nil {
		b.lastErr = err
		b.applyLocked(ctx, eventFailure, time.Now())
		return zero, err
	}

	b.applyLocked(ctx, eventSuccess, time.Now())
	return value, nil
}

// runAction 动作路径的执行引擎（要求已持有 rt 锁）
// 动作没有可缓存的值，始终直接调用受保护操作
func (b *circuitBreaker[T]) runAction(ctx context.Context, fn func(context.Context) error) error {
	start := time.Now()

	b.applyLocked(ctx, eventObserve, start)
	if b.snap.state == StateOpen {
		b.reject(ctx)
		return ErrOpenState
	}

	err := fn(ctx)

	b.record(ctx, start, err)
	if err != nil {
		b.lastErr = err
		b.applyLocked(ctx, eventFailure, time.Now())
		return err
	}

	b.applyLocked(ctx, eventSuccess, time.Now())
	return nil
}

// State 返回当前状态（观察可能触发 Open → HalfOpen 提升）
func (b *circuitBreaker[T]) State() State {
	b.rt.lock()
	defer b.rt.unlock()
	b.applyLocked(context.Background(), eventObserve, time.Now())
	return b.snap.state
}

func (b *circuitBreaker[T]) IsClosed() bool {
	return b.State() == StateClosed
}

func (b *circuitBreaker[T]) IsOpen() bool {
	return b.State() == StateOpen
}

func (b *circuitBreaker[T]) IsHalfOpen() bool {
	return b.State() == StateHalfOpen
}

// LastError 返回最近一次受保护操作的失败原因
func (b *circuitBreaker[T]) LastError() error {
	b.rt.lock()
	defer b.rt.unlock()
	return b.lastErr
}

// Trip 人工打开熔断器
func (b *circuitBreaker[T]) Trip() {
	b.rt.lock()
	defer b.rt.unlock()

	from := b.snap.state
	b.snap = snapshot{state: StateOpen, openedAt: time.Now()}
	b.logStateChange(context.Background(), from, StateOpen)
}

// Reset 人工闭合熔断器并清零共享失败计数
func (b *circuitBreaker[T]) Reset() {
	b.rt.lock()
	defer b.rt.unlock()

	from := b.snap.state
	b.snap = snapshot{state: StateClosed}
	b.rt.failures = 0
	b.logStateChange(context.Background(), from, StateClosed)
}

// applyLocked 应用状态机事件（要求已持有 rt 锁）
// 将纯转移函数的结果落到实例快照与共享失败计数上
func (b *circuitBreaker[T]) applyLocked(ctx context.Context, ev event, now time.Time) {
	next, op := transition(b.snap, ev, b.rt.failures, b.cfg.FailureThreshold, b.cfg.OpenTimeout, now)

	switch op {
	case counterIncrement:
		b.rt.failures++
	case counterReset:
		b.rt.failures = 0
	}

	if next.state != b.snap.state {
		b.logStateChange(ctx, b.snap.state, next.state)
	}
	b.snap = next
}

// logStateChange 记录状态变更日志与指标
func (b *circuitBreaker[T]) logStateChange(ctx context.Context, from, to State) {
	b.logger.Info("circuit state changed",
		clog.String("circuit", b.cfg.Name),
		clog.String("from", from.String()),
		clog.String("to", to.String()),
		clog.Int("failures", b.rt.failures))

	if b.meter != nil {
		counter, err := b.meter.Counter(MetricStateChanges, "Circuit breaker state changes")
		if err == nil && counter != nil {
			counter.Inc(ctx,
				metrics.L(LabelCircuit, b.cfg.Name),
				metrics.L(LabelFromState, from.String()),
				metrics.L(LabelToState, to.String()))
		}
	}
}

// reject 记录被熔断拒绝的请求
func (b *circuitBreaker[T]) reject(ctx context.Context) {
	b.logger.Debug("execution short-circuited",
		clog.String("circuit", b.cfg.Name))

	if b.meter == nil {
		return
	}
	if counter, err := b.meter.Counter(MetricRejectsTotal, "Rejected requests"); err == nil && counter != nil {
		counter.Inc(ctx, metrics.L(LabelCircuit, b.cfg.Name))
	}
}

// record 记录请求结果指标
func (b *circuitBreaker[T]) record(ctx context.Context, start time.Time, err error) {
	if b.meter == nil {
		return
	}

	if counter, e := b.meter.Counter(MetricRequestsTotal, "Total requests"); e == nil && counter != nil {
		counter.Inc(ctx, metrics.L(LabelCircuit, b.cfg.Name))
	}

	if histogram, e := b.meter.Histogram(MetricRequestDuration, "Request duration", metrics.WithUnit("seconds")); e == nil && histogram != nil {
		histogram.Record(ctx, time.Since(start).Seconds(), metrics.L(LabelCircuit, b.cfg.Name))
	}

	name := MetricSuccessTotal
	desc := "Successful requests"
	if err != nil {
		name = MetricFailuresTotal
		desc = "Failed requests"
	}
	if counter, e := b.meter.Counter(name, desc); e == nil && counter != nil {
		counter.Inc(ctx, metrics.L(LabelCircuit, b.cfg.Name))
	}
}
