package breaker

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Registry 进程级的熔断器运行时注册表
//
// 按熔断器标识维护互斥锁与共享失败计数，同名的多个熔断器实例
// 共享同一份运行时，使多个调用点对同一脆弱资源贡献同一个健康信号。
//
// Registry 由应用显式构造并传入每个熔断器实例，随应用生命周期存在。
// 条目一经创建不会被移除：熔断器标识通常是一个小而固定的集合
// （每个被保护的依赖一个），可通过 Len 观察异常增长。
type Registry struct {
	mu       sync.Mutex
	circuits map[string]*circuit
}

// NewRegistry 创建熔断器注册表
func NewRegistry() *Registry {
	return &Registry{
		circuits: make(map[string]*circuit),
	}
}

// get 获取或创建指定标识的运行时条目
func (r *Registry) get(name string) *circuit {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.circuits[name]
	if !ok {
		c = &circuit{
			sem: semaphore.NewWeighted(1),
		}
		r.circuits[name] = c
	}
	return c
}

// Len 返回注册表中的熔断器标识数量
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.circuits)
}

// circuit 单个熔断器标识的运行时：互斥锁与共享失败计数
//
// 锁采用容量为 1 的加权信号量，阻塞路径与可取消路径共用同一把锁，
// 保证同一标识下状态转移与计数修改全序，且回源计算同一时刻至多一次。
// failures 仅允许在持有锁时读写。
type circuit struct {
	sem      *semaphore.Weighted
	failures int
}

// lock 阻塞式获取锁
func (c *circuit) lock() {
	// Background context 下 Acquire 不会返回错误
	_ = c.sem.Acquire(context.Background(), 1)
}

// lockContext 可取消地获取锁；ctx 到期时返回 ctx 的错误
func (c *circuit) lockContext(ctx context.Context) error {
	return c.sem.Acquire(ctx, 1)
}

// unlock 释放锁
func (c *circuit) unlock() {
	c.sem.Release(1)
}
