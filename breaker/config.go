package breaker

import (
	"time"

	"github.com/ceyewan/fuse/cache"
)

// 默认值
const (
	// DefaultFailureThreshold 默认失败阈值
	DefaultFailureThreshold = 3

	// DefaultOpenTimeout 默认冷却时长
	DefaultOpenTimeout = 5 * time.Second
)

// Config 熔断器配置（构造时固定，不可变）
type Config struct {
	// Name 熔断器标识（必填）
	// 用作注册表中锁与失败计数的键，同名实例共享运行时
	Name string `mapstructure:"name" json:"name" yaml:"name"`

	// FailureThreshold 失败阈值（默认：3）
	// Closed 状态下连续累计达到该值时进入 Open
	FailureThreshold int `mapstructure:"failure_threshold" json:"failure_threshold" yaml:"failure_threshold"`

	// OpenTimeout 冷却时长（默认：5s）
	// Open 状态持续该时长后，下一次观察会进入 HalfOpen 试探
	OpenTimeout time.Duration `mapstructure:"open_timeout" json:"open_timeout" yaml:"open_timeout"`

	// Cache 分层缓存配置（可选）
	// 为 nil 或 Key 为空时禁用缓存，每次执行都会调用受保护操作
	Cache *cache.Config `mapstructure:"cache" json:"cache" yaml:"cache"`
}

// validate 校验配置并填充默认值（内部使用）
func (c *Config) validate() error {
	if c.Name == "" {
		return ErrNameEmpty
	}
	if c.FailureThreshold < 0 {
		return ErrInvalidThreshold
	}
	if c.FailureThreshold == 0 {
		c.FailureThreshold = DefaultFailureThreshold
	}
	if c.OpenTimeout < 0 {
		return ErrInvalidOpenTimeout
	}
	if c.OpenTimeout == 0 {
		c.OpenTimeout = DefaultOpenTimeout
	}
	// 缓存键为空且未配置文件目录时视作未启用缓存；
	// 配置了文件目录却没有缓存键属于配置错误，由 cache 侧校验报出
	if c.Cache != nil && c.Cache.Key == "" && c.Cache.Dir == "" {
		c.Cache = nil
	}
	return nil
}
