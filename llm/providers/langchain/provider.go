// Package langchain 把任意 langchaingo llms.Model 适配为 llm.Provider。
// GitHub Models 走其 OpenAI 兼容端点，通过 NewGitHubModels 构造。
package langchain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"github.com/BaSui01/mindflow/llm"
	"github.com/BaSui01/mindflow/llm/providers"
)

const (
	// GitHubModelsEndpoint GitHub Models 推理端点
	GitHubModelsEndpoint = "https://models.github.ai/inference"
	// GitHubModelsDefaultModel 默认模型
	GitHubModelsDefaultModel = "openai/gpt-4o"
)

// Provider 包装 llms.Model
type Provider struct {
	model     llms.Model
	name      string
	modelName string
	logger    *zap.Logger
}

// New 包装已有的 llms.Model
func New(name, modelName string, model llms.Model, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		model:     model,
		name:      name,
		modelName: modelName,
		logger:    logger.With(zap.String("component", "langchain"), zap.String("provider", name)),
	}
}

// NewGitHubModels 构造 GitHub Models Provider
func NewGitHubModels(token, baseURL, model string, logger *zap.Logger) (*Provider, error) {
	if token == "" {
		return nil, errors.New("github models token is required")
	}
	if baseURL == "" {
		baseURL = GitHubModelsEndpoint
	}
	if model == "" {
		model = GitHubModelsDefaultModel
	}

	client, err := openai.New(
		openai.WithToken(token),
		openai.WithBaseURL(baseURL),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("create github models client: %w", err)
	}
	return New("github-models", model, client, logger), nil
}

func (p *Provider) Name() string { return p.name }

func (p *Provider) Completion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	var opts []llms.CallOption
	if req.Temperature > 0 {
		opts = append(opts, llms.WithTemperature(float64(req.Temperature)))
	}
	if req.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxTokens))
	}

	resp, err := p.model.GenerateContent(ctx, toMessages(req.Messages), opts...)
	if err != nil {
		p.logger.Debug("generate content failed", zap.Error(err))
		return nil, providers.MapError(err, p.name)
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
		return nil, &llm.Error{
			Code:      llm.ErrEmptyResponse,
			Message:   "model returned no content",
			Retryable: true,
			Provider:  p.name,
		}
	}

	choice := resp.Choices[0]
	if choice.StopReason == "content_filter" {
		return nil, &llm.Error{
			Code:     llm.ErrContentFiltered,
			Message:  "response stopped by SAFETY content filter",
			Provider: p.name,
		}
	}

	out := &llm.ChatResponse{
		Provider: p.name,
		Model:    p.modelName,
		Choices: []llm.ChatChoice{{
			FinishReason: choice.StopReason,
			Message:      llm.Message{Role: llm.RoleAssistant, Content: choice.Content},
		}},
		CreatedAt: time.Now(),
	}
	if info := choice.GenerationInfo; info != nil {
		out.Usage = llm.ChatUsage{
			PromptTokens:     intFrom(info, "PromptTokens"),
			CompletionTokens: intFrom(info, "CompletionTokens"),
			TotalTokens:      intFrom(info, "TotalTokens"),
		}
	}
	return out, nil
}

// HealthCheck 发一条极短的请求探活
func (p *Provider) HealthCheck(ctx context.Context) (*llm.HealthStatus, error) {
	start := time.Now()
	_, err := p.model.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, "ping"),
	}, llms.WithMaxTokens(1))
	latency := time.Since(start)
	if err != nil {
		return &llm.HealthStatus{Healthy: false, Latency: latency}, providers.MapError(err, p.name)
	}
	return &llm.HealthStatus{Healthy: true, Latency: latency}, nil
}

func toMessages(msgs []llm.Message) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(msgs))
	for _, m := range msgs {
		role := llms.ChatMessageTypeHuman
		switch m.Role {
		case llm.RoleSystem:
			role = llms.ChatMessageTypeSystem
		case llm.RoleAssistant:
			role = llms.ChatMessageTypeAI
		}
		out = append(out, llms.TextParts(role, m.Content))
	}
	return out
}

func intFrom(info map[string]any, key string) int {
	switch v := info[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}
