package breaker

import "github.com/ceyewan/fuse/xerrors"

// 错误定义
var (
	// ErrConfigNil 配置为空
	ErrConfigNil = xerrors.New("breaker: config is nil")

	// ErrRegistryNil 注册表为空
	ErrRegistryNil = xerrors.New("breaker: registry is nil")

	// ErrNameEmpty 熔断器标识为空
	ErrNameEmpty = xerrors.New("breaker: circuit name is empty")

	// ErrInvalidThreshold 失败阈值非法（必须大于 0）
	ErrInvalidThreshold = xerrors.New("breaker: failure threshold must be positive")

	// ErrInvalidOpenTimeout 冷却时长非法（必须大于 0）
	ErrInvalidOpenTimeout = xerrors.New("breaker: open timeout must be positive")

	// ErrOpenState 熔断器处于 Open 状态，动作被拒绝
	// 仅由 Do/DoContext 返回；Execute 在 Open 状态下返回零值
	ErrOpenState = xerrors.New("breaker: circuit is open")
)
