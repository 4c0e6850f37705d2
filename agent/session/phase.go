// Package session 维护单个学习会话的状态与出题/作答状态机。
package session

import "fmt"

// Phase 会话所处阶段
type Phase string

const (
	PhaseIdle           Phase = "idle"            // 无待回答问题
	PhaseAwaitingAnswer Phase = "awaiting_answer" // 已出题，下一轮输入视为作答
)

// validTransitions 定义合法的阶段转换
var validTransitions = map[Phase][]Phase{
	PhaseIdle:           {PhaseAwaitingAnswer},
	PhaseAwaitingAnswer: {PhaseIdle},
}

// CanTransition 检查阶段转换是否合法
func CanTransition(from, to Phase) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, p := range allowed {
		if p == to {
			return true
		}
	}
	return false
}

// ErrInvalidTransition 非法阶段转换错误
type ErrInvalidTransition struct {
	From Phase
	To   Phase
}

func (e ErrInvalidTransition) Error() string {
	return fmt.Sprintf("invalid session transition: %s -> %s", e.From, e.To)
}
