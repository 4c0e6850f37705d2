// Package ratelimit 提供 LLM 出站请求的最小间隔限流。
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter 在发出请求前阻塞等待令牌。*rate.Limiter 天然满足该接口。
type Limiter interface {
	Wait(ctx context.Context) error
}

// NewIntervalLimiter 保证相邻两次请求至少间隔 minInterval。
// minInterval <= 0 时不限流。
func NewIntervalLimiter(minInterval time.Duration) *rate.Limiter {
	if minInterval <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Every(minInterval), 1)
}

// Unlimited 返回不做任何等待的限流器，供测试与离线工具使用。
func Unlimited() Limiter {
	return rate.NewLimiter(rate.Inf, 0)
}

var _ Limiter = (*rate.Limiter)(nil)
