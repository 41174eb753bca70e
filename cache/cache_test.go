package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceyewan/fuse/xerrors"
)

func newTestTiered(t *testing.T, cfg *Config, opts ...Option) *Tiered[string] {
	t.Helper()
	resolver, err := New[string](cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resolver.Close() })
	return resolver
}

// TestNewValidation 构造参数校验
func TestNewValidation(t *testing.T) {
	_, err := New[string](nil)
	assert.ErrorIs(t, err, ErrConfigNil)

	_, err = New[string](&Config{})
	assert.ErrorIs(t, err, ErrKeyEmpty)

	_, err = New[string](&Config{Key: "k", TTL: -time.Second})
	assert.ErrorIs(t, err, ErrInvalidTTL)

	_, err = New[string](&Config{Key: "k", Dir: t.TempDir(), Serializer: "xml"})
	assert.Error(t, err)
}

// TestLoadComputesOnMiss 两层均未命中时回源计算并回填
func TestLoadComputesOnMiss(t *testing.T) {
	resolver := newTestTiered(t, &Config{Key: "compute", TTL: time.Minute})
	ctx := context.Background()

	computes := 0
	value, err := resolver.Load(ctx, func(context.Context) (string, error) {
		computes++
		return "fresh", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", value)
	assert.Equal(t, 1, computes)

	// 第二次命中内存层，不再计算
	value, err = resolver.Load(ctx, func(context.Context) (string, error) {
		computes++
		return "recomputed", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", value)
	assert.Equal(t, 1, computes)
}

// TestLoadComputeError 回源失败时错误原样返回且不回填
func TestLoadComputeError(t *testing.T) {
	resolver := newTestTiered(t, &Config{Key: "fail", TTL: time.Minute, Dir: t.TempDir()})
	ctx := context.Background()

	boom := xerrors.New("backend down")
	_, err := resolver.Load(ctx, func(context.Context) (string, error) {
		return "", boom
	})
	assert.ErrorIs(t, err, boom)

	// 失败不产生缓存条目
	_, ok := resolver.Get(ctx)
	assert.False(t, ok)
}

// TestFileTierPromotion 文件层命中晋升到内存层
func TestFileTierPromotion(t *testing.T) {
	dir := t.TempDir()
	cfg := func() *Config {
		return &Config{Key: "promote", TTL: time.Minute, Dir: dir}
	}

	// 第一个实例回填两层
	first := newTestTiered(t, cfg())
	_, err := first.Load(context.Background(), func(context.Context) (string, error) {
		return "persisted", nil
	})
	require.NoError(t, err)

	// 新实例的内存层为空，应从文件层命中并晋升
	second := newTestTiered(t, cfg())
	ctx := context.Background()

	value, ok := second.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, "persisted", value)

	// 晋升后内存层直接命中，即使文件被删掉
	require.NoError(t, os.Remove(second.file.path("promote")))
	value, ok = second.Get(ctx)
	assert.True(t, ok)
	assert.Equal(t, "persisted", value)
}

// TestStaleFileRecompute 过期文件被删除并触发重新计算
func TestStaleFileRecompute(t *testing.T) {
	dir := t.TempDir()
	resolver := newTestTiered(t, &Config{Key: "stale", TTL: time.Minute, Dir: dir})
	ctx := context.Background()

	_, err := resolver.Load(ctx, func(context.Context) (string, error) {
		return "old", nil
	})
	require.NoError(t, err)

	// 清空内存层并把文件拨旧，模拟跨进程的冷启动读到过期文件
	resolver.mem.delete(ctx, "stale")
	old := time.Now().Add(-2 * time.Minute)
	require.NoError(t, os.Chtimes(resolver.file.path("stale"), old, old))

	computes := 0
	value, err := resolver.Load(ctx, func(context.Context) (string, error) {
		computes++
		return "new", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "new", value)
	assert.Equal(t, 1, computes)
}

// TestInvalidate 手动失效同时清空两层
func TestInvalidate(t *testing.T) {
	resolver := newTestTiered(t, &Config{Key: "manual", TTL: time.Minute, Dir: t.TempDir()})
	ctx := context.Background()

	_, err := resolver.Load(ctx, func(context.Context) (string, error) {
		return "value", nil
	})
	require.NoError(t, err)

	require.NoError(t, resolver.Invalidate(ctx))

	_, ok := resolver.Get(ctx)
	assert.False(t, ok)

	_, err = os.Stat(resolver.file.path("manual"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// TestInvalidateTrigger 失效触发器触发后两层条目被丢弃
func TestInvalidateTrigger(t *testing.T) {
	trigger := make(chan struct{})
	resolver := newTestTiered(t, &Config{
		Key:        "triggered",
		TTL:        time.Minute,
		Dir:        t.TempDir(),
		Invalidate: trigger,
	})
	ctx := context.Background()

	_, err := resolver.Load(ctx, func(context.Context) (string, error) {
		return "value", nil
	})
	require.NoError(t, err)

	trigger <- struct{}{}

	// 失效在监听协程中异步执行
	assert.Eventually(t, func() bool {
		_, ok := resolver.Get(ctx)
		return !ok
	}, time.Second, 10*time.Millisecond)
}

// TestCompressedFileTier 压缩文件层的写入与跨实例读取
func TestCompressedFileTier(t *testing.T) {
	dir := t.TempDir()
	cfg := func() *Config {
		return &Config{
			Key:        "compressed",
			TTL:        time.Minute,
			Dir:        dir,
			Serializer: "msgpack",
			Compress:   true,
		}
	}

	first := newTestTiered(t, cfg())
	_, err := first.Load(context.Background(), func(context.Context) (string, error) {
		return "zstd framed", nil
	})
	require.NoError(t, err)

	second := newTestTiered(t, cfg())
	value, ok := second.Get(context.Background())
	require.True(t, ok)
	assert.Equal(t, "zstd framed", value)
}

// TestSharedMemoryAcrossResolvers 注入的共享内存层在实例间可见
func TestSharedMemoryAcrossResolvers(t *testing.T) {
	mem := newTestMemory(t, 100)

	first := newTestTiered(t, &Config{Key: "shared", TTL: time.Minute}, WithMemory(mem))
	second := newTestTiered(t, &Config{Key: "shared", TTL: time.Minute}, WithMemory(mem))

	ctx := context.Background()
	_, err := first.Load(ctx, func(context.Context) (string, error) {
		return "visible", nil
	})
	require.NoError(t, err)

	value, ok := second.Get(ctx)
	assert.True(t, ok)
	assert.Equal(t, "visible", value)
}

// TestTypeMismatchIsMiss 同键被其他类型占用时按未命中处理
func TestTypeMismatchIsMiss(t *testing.T) {
	mem := newTestMemory(t, 100)

	ints, err := New[int](&Config{Key: "mixed", TTL: time.Minute}, WithMemory(mem))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ints.Close() })

	_, err = ints.Load(context.Background(), func(context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)

	strings := newTestTiered(t, &Config{Key: "mixed", TTL: time.Minute}, WithMemory(mem))
	_, ok := strings.Get(context.Background())
	assert.False(t, ok)
}
