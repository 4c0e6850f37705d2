package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// FallbackProvider 按顺序尝试一组 Provider，前一个失败时切到下一个。
// 内容安全拦截与 context 取消不会触发降级，直接返回。
type FallbackProvider struct {
	chain  []Provider
	logger *zap.Logger
}

// NewFallbackProvider 创建降级链，至少需要一个 Provider。
func NewFallbackProvider(logger *zap.Logger, chain ...Provider) (*FallbackProvider, error) {
	if len(chain) == 0 {
		return nil, errors.New("fallback chain requires at least one provider")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackProvider{
		chain:  chain,
		logger: logger.With(zap.String("component", "llm_fallback")),
	}, nil
}

func (p *FallbackProvider) Name() string {
	return "fallback(" + p.chain[0].Name() + ")"
}

func (p *FallbackProvider) Completion(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	var lastErr error
	for i, provider := range p.chain {
		resp, err := provider.Completion(ctx, req)
		if err == nil {
			if i > 0 {
				p.logger.Info("fallback provider served request",
					zap.String("provider", provider.Name()),
					zap.Int("position", i))
			}
			return resp, nil
		}
		lastErr = err

		if ctx.Err() != nil || IsContentFiltered(err) {
			return nil, err
		}
		p.logger.Warn("provider failed, trying next",
			zap.String("provider", provider.Name()),
			zap.Error(err))
	}
	return nil, fmt.Errorf("all %d providers failed: %w", len(p.chain), lastErr)
}

// HealthCheck 只要链上有一个健康即视为健康。
func (p *FallbackProvider) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	start := time.Now()
	var lastErr error
	for _, provider := range p.chain {
		st, err := provider.HealthCheck(ctx)
		if err == nil && st != nil && st.Healthy {
			return &HealthStatus{Healthy: true, Latency: time.Since(start)}, nil
		}
		if err != nil {
			lastErr = err
		}
	}
	if lastErr == nil {
		lastErr = errors.New("no healthy provider")
	}
	return &HealthStatus{Healthy: false, Latency: time.Since(start)}, lastErr
}
