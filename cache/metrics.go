package cache

// Metrics 指标常量定义
const (
	// MetricHitsTotal 缓存命中数 (Counter)，按 tier 区分
	MetricHitsTotal = "cache_hits_total"

	// MetricMissesTotal 缓存未命中数 (Counter)
	MetricMissesTotal = "cache_misses_total"

	// MetricComputeTotal 回源计算次数 (Counter)
	MetricComputeTotal = "cache_compute_total"

	// MetricInvalidationsTotal 失效触发次数 (Counter)
	MetricInvalidationsTotal = "cache_invalidations_total"

	// LabelTier 缓存层标签 (memory/file)
	LabelTier = "tier"

	// TierMemory 内存层
	TierMemory = "memory"

	// TierFile 文件层
	TierFile = "file"
)
