// Package config 提供统一的配置管理能力。
// 支持多源配置加载、热更新和配置验证，基于 Viper 实现。
//
// 特性：
//   - 多源配置加载：YAML/JSON 文件、环境变量、.env 文件
//   - 配置优先级：环境变量 > .env > 环境特定配置 > 基础配置
//   - 热更新支持：实时监听配置文件变化，自动通知应用
//   - 时长字段支持 "5s" / "5m" 字符串写法，适合熔断与缓存配置
//
// 基本使用：
//
//	loader, _ := config.New(
//		config.WithConfigName("fuse"),
//		config.WithConfigPaths("./config"),
//		config.WithEnvPrefix("FUSE"),
//	)
//	if err := loader.Load(ctx); err != nil {
//		panic(err)
//	}
//
//	var cfg breaker.Config
//	if err := loader.UnmarshalKey("circuits.weather", &cfg); err != nil {
//		panic(err)
//	}
//
//	// 监听配置变化
//	ch, _ := loader.Watch(context.Background(), "circuits.weather.failure_threshold")
//	for event := range ch {
//		fmt.Printf("config changed: %s = %v\n", event.Key, event.Value)
//	}
package config

import (
	"context"
	"time"
)

// Loader 定义配置加载器的核心行为
// 职责：加载、解析和监听配置变化
type Loader interface {
	// Load 加载配置并初始化内部状态
	Load(ctx context.Context) error

	// Get 获取原始配置值
	Get(key string) any

	// Unmarshal 将整个配置反序列化到结构体
	Unmarshal(v any) error

	// UnmarshalKey 将指定 Key 的配置反序列化到结构体
	UnmarshalKey(key string, v any) error

	// Watch 监听配置变化，通过 context 取消监听
	Watch(ctx context.Context, key string) (<-chan Event, error)

	// Validate 验证当前配置的有效性
	Validate() error
}

// Event 配置变更事件
type Event struct {
	Key       string // 配置 key
	Value     any    // 新值
	OldValue  any    // 旧值
	Source    string // "file" | "env"
	Timestamp time.Time
}

// New 创建配置加载器
func New(opts ...Option) (Loader, error) {
	options := defaultOptions()
	for _, o := range opts {
		o(options)
	}
	return newLoader(options)
}

// MustLoad 创建加载器并立即加载配置，失败时 panic
// 适合在程序入口处一步完成初始化
func MustLoad(opts ...Option) Loader {
	loader, err := New(opts...)
	if err != nil {
		panic(err)
	}
	if err := loader.Load(context.Background()); err != nil {
		panic(err)
	}
	return loader
}
