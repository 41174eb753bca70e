package cache

import "github.com/ceyewan/fuse/xerrors"

// 错误定义
var (
	// ErrConfigNil 配置为空
	ErrConfigNil = xerrors.New("cache: config is nil")

	// ErrKeyEmpty 缓存键为空
	ErrKeyEmpty = xerrors.New("cache: key is empty")

	// ErrInvalidTTL 缓存时长非法（必须大于 0）
	ErrInvalidTTL = xerrors.New("cache: ttl must be positive")

	// ErrSlugEmpty 缓存键无法派生出合法的文件名
	ErrSlugEmpty = xerrors.New("cache: key yields an empty slug")
)
