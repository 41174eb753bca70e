package breaker

import "time"

// State 熔断器状态
type State int8

const (
	// StateClosed 闭合状态（正常），允许执行
	StateClosed State = iota
	// StateOpen 打开状态（熔断中），执行被短路
	StateOpen
	// StateHalfOpen 半开状态（探测恢复），允许一次试探执行
	StateHalfOpen
)

// String 返回状态的字符串表示
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// snapshot 熔断器状态快照
// Open 状态额外携带进入时刻，用于惰性判定冷却是否结束
type snapshot struct {
	state    State
	openedAt time.Time
}

// event 状态机事件
type event int8

const (
	// eventObserve 状态观察：执行前或状态查询时触发，
	// 可能将冷却结束的 Open 惰性提升为 HalfOpen
	eventObserve event = iota
	// eventSuccess 受保护操作成功完成
	eventSuccess
	// eventFailure 受保护操作失败
	eventFailure
)

// counterOp 状态转移对共享失败计数的要求
type counterOp int8

const (
	counterKeep counterOp = iota
	counterReset
	counterIncrement
)

// transition 纯状态转移函数
//
// 根据当前快照、事件、共享失败计数与策略计算下一个快照，
// 以及对失败计数的操作。函数本身无副作用，计数的实际修改由
// 调用方在持有对应熔断器锁时完成。
//
// 转移规则：
//   - Closed + failure: 计数 +1；达到阈值则进入 Open(now)
//   - Open + observe: 冷却结束则进入 HalfOpen
//   - Open + failure: 防御性计数 +1（引擎正确使用下不会出现）
//   - HalfOpen + success: 进入 Closed，计数清零
//   - HalfOpen + failure: 回到 Open(now)，重新计时冷却
//
// 计数清零严格发生在进入 Closed 时，其余转移只增不减。
func transition(s snapshot, ev event, failures, threshold int, cooldown time.Duration, now time.Time) (snapshot, counterOp) {
	switch ev {
	case eventObserve:
		if s.state == StateOpen && now.Sub(s.openedAt) >= cooldown {
			return snapshot{state: StateHalfOpen}, counterKeep
		}
		return s, counterKeep

	case eventSuccess:
		if s.state == StateHalfOpen {
			return snapshot{state: StateClosed}, counterReset
		}
		return s, counterKeep

	case eventFailure:
		switch s.state {
		case StateHalfOpen:
			return snapshot{state: StateOpen, openedAt: now}, counterIncrement
		case StateClosed:
			if failures+1 >= threshold {
				return snapshot{state: StateOpen, openedAt: now}, counterIncrement
			}
			return s, counterIncrement
		default: // StateOpen
			return s, counterIncrement
		}

	default:
		return s, counterKeep
	}
}
