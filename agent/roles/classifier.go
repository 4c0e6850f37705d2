package roles

import (
	"context"

	"go.uber.org/zap"
)

// Classify 选出下一个处理角色。
// available 为空时使用 DefaultAgents；模型给出的名字不在列表内时回落到 interactive。
func (a *Agents) Classify(ctx context.Context, input string, available []AgentDescriptor, contextSummary string) string {
	if len(available) == 0 {
		available = DefaultAgents()
	}
	out := a.Invoke(ctx, NewRequest(ClassifierInput{
		LatestContextSummary: contextSummary,
		UserInput:            input,
		AvailableAgents:      available,
	})).Payload.(ClassifierOutput)

	for _, agent := range available {
		if agent.Name == out.NextAgent {
			return out.NextAgent
		}
	}
	a.logger.Debug("classifier result not allowed, falling back",
		zap.String("next_agent", out.NextAgent),
		zap.String("fallback", string(FallbackAgent)))
	return string(FallbackAgent)
}
