package roles

import (
	"context"

	"go.uber.org/zap"
)

// CheckSafety 安全门。
//
// 以 safetyRequest=true 调用网关，审核短语不会覆盖判定结果。
// 状态大小写不敏感，未知或缺失时按 SAFE 放行（fail-open）。
func (a *Agents) CheckSafety(ctx context.Context, input, contextSummary string) SafetyResult {
	res := a.Invoke(ctx, NewRequest(SafetyInput{
		LatestContextSummary: contextSummary,
		UserInput:            input,
	})).Payload.(SafetyResult)

	if res.Status.Blocking() {
		a.logger.Info("safety gate blocked input",
			zap.String("status", res.Status.String()),
			zap.String("explanation", res.Explanation))
	}
	return res
}
