package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMemory(t *testing.T, capacity int) *Memory {
	t.Helper()
	mem, err := NewMemory(&MemoryConfig{Capacity: capacity})
	require.NoError(t, err)
	t.Cleanup(func() { _ = mem.Close() })
	return mem
}

// TestMemorySetGet 基本写入与读取
func TestMemorySetGet(t *testing.T) {
	mem := newTestMemory(t, 100)
	ctx := context.Background()

	mem.set(ctx, "key", "value", entryPolicy{ttl: time.Minute})

	got, ok := mem.get(ctx, "key")
	assert.True(t, ok)
	assert.Equal(t, "value", got)
	assert.Equal(t, 1, mem.Len())
}

// TestMemoryMiss 未写入的键未命中
func TestMemoryMiss(t *testing.T) {
	mem := newTestMemory(t, 100)

	_, ok := mem.get(context.Background(), "absent")
	assert.False(t, ok)
}

// TestMemoryDelete 删除后未命中
func TestMemoryDelete(t *testing.T) {
	mem := newTestMemory(t, 100)
	ctx := context.Background()

	mem.set(ctx, "key", "value", entryPolicy{ttl: time.Minute})
	mem.delete(ctx, "key")

	_, ok := mem.get(ctx, "key")
	assert.False(t, ok)
}

// TestMemoryOverwrite 同键覆盖写入
func TestMemoryOverwrite(t *testing.T) {
	mem := newTestMemory(t, 100)
	ctx := context.Background()

	mem.set(ctx, "key", "v1", entryPolicy{ttl: time.Minute})
	mem.set(ctx, "key", "v2", entryPolicy{ttl: time.Minute})

	got, ok := mem.get(ctx, "key")
	assert.True(t, ok)
	assert.Equal(t, "v2", got)
}

// TestMemoryTTLExpiry 绝对过期后未命中
func TestMemoryTTLExpiry(t *testing.T) {
	mem := newTestMemory(t, 100)
	ctx := context.Background()

	mem.set(ctx, "short", "value", entryPolicy{ttl: 30 * time.Millisecond})

	_, ok := mem.get(ctx, "short")
	assert.True(t, ok)

	time.Sleep(60 * time.Millisecond)

	_, ok = mem.get(ctx, "short")
	assert.False(t, ok)
}

// TestMemorySlidingRenewal 滑动过期在命中时续期
func TestMemorySlidingRenewal(t *testing.T) {
	mem := newTestMemory(t, 100)
	ctx := context.Background()

	mem.set(ctx, "sliding", "value", entryPolicy{sliding: 80 * time.Millisecond})

	// 每次命中都应续期，总时长超过单个滑动窗口
	for i := 0; i < 4; i++ {
		time.Sleep(40 * time.Millisecond)
		_, ok := mem.get(ctx, "sliding")
		require.True(t, ok, "hit %d should renew the entry", i)
	}

	// 停止访问后条目最终过期
	time.Sleep(120 * time.Millisecond)
	_, ok := mem.get(ctx, "sliding")
	assert.False(t, ok)
}

// TestPriorityWeight 优先级到容量权重的映射
func TestPriorityWeight(t *testing.T) {
	assert.Equal(t, uint32(2), PriorityNormal.weight())
	assert.Equal(t, uint32(4), PriorityLow.weight())
	assert.Equal(t, uint32(1), PriorityHigh.weight())
}
