package cache

import "time"

// 默认值
const (
	// DefaultTTL 默认缓存绝对时长
	DefaultTTL = 5 * time.Minute

	// DefaultCapacity 内存层默认容量（条目数）
	DefaultCapacity = 10000
)

// Priority 缓存条目的淘汰优先级提示
//
// 仅影响内存层容量不足时的淘汰偏好：低优先级条目占用更多容量配额，
// 因此在容量压力下会更早被淘汰。
type Priority int

const (
	// PriorityNormal 普通优先级（默认）
	PriorityNormal Priority = iota
	// PriorityLow 低优先级，优先被淘汰
	PriorityLow
	// PriorityHigh 高优先级，尽量保留
	PriorityHigh
)

// weight 将优先级映射为内存层的容量权重
func (p Priority) weight() uint32 {
	switch p {
	case PriorityLow:
		return 4
	case PriorityHigh:
		return 1
	default:
		return 2
	}
}

// Config 分层缓存配置
type Config struct {
	// Key 缓存键（必填）
	Key string `mapstructure:"key" json:"key" yaml:"key"`

	// TTL 缓存绝对时长（默认：5 分钟）
	// 同时约束内存层条目与文件层条目的新鲜度
	TTL time.Duration `mapstructure:"ttl" json:"ttl" yaml:"ttl"`

	// SlidingTTL 滑动过期时长（可选）
	// 设置后内存层条目在每次命中时续期
	SlidingTTL time.Duration `mapstructure:"sliding_ttl" json:"sliding_ttl" yaml:"sliding_ttl"`

	// Priority 内存层淘汰优先级提示
	Priority Priority `mapstructure:"priority" json:"priority" yaml:"priority"`

	// Dir 文件缓存工作目录（可选）
	// 为空时禁用文件层
	Dir string `mapstructure:"dir" json:"dir" yaml:"dir"`

	// Serializer 文件层序列化格式: "json" | "msgpack"（默认 "json"）
	Serializer string `mapstructure:"serializer" json:"serializer" yaml:"serializer"`

	// Compress 是否对文件层条目启用 zstd 压缩
	Compress bool `mapstructure:"compress" json:"compress" yaml:"compress"`

	// Capacity 内存层容量（条目数，默认：10000）
	// 仅在未通过 WithMemory 注入共享内存层时生效
	Capacity int `mapstructure:"capacity" json:"capacity" yaml:"capacity"`

	// Invalidate 失效触发器（可选）
	// 这是一个不透明的能力句柄：本组件不解释其来源，
	// 仅在其触发时同时丢弃内存层与文件层的条目；通道关闭后监听停止
	Invalidate <-chan struct{} `mapstructure:"-" json:"-" yaml:"-"`
}

// validate 校验配置并填充默认值（内部使用）
func (c *Config) validate() error {
	if c.Key == "" {
		return ErrKeyEmpty
	}
	if c.TTL < 0 || c.SlidingTTL < 0 {
		return ErrInvalidTTL
	}
	if c.TTL == 0 {
		c.TTL = DefaultTTL
	}
	if c.Capacity <= 0 {
		c.Capacity = DefaultCapacity
	}
	if c.Dir != "" && Slug(c.Key) == "" {
		return ErrSlugEmpty
	}
	return nil
}
