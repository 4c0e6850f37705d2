package gemini

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/BaSui01/mindflow/llm"
	"github.com/BaSui01/mindflow/llm/providers"
)

const (
	// DefaultModel 主力模型
	DefaultModel = "gemini-1.5-pro-latest"
	// LightModel 降级用的廉价模型
	LightModel = "gemini-1.5-flash"
)

// Config Gemini Provider 配置
type Config struct {
	APIKey  string        `yaml:"api_key" env:"API_KEY"`
	Model   string        `yaml:"model" env:"MODEL"`
	BaseURL string        `yaml:"base_url" env:"BASE_URL"`
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// Provider 基于 google.golang.org/genai 的 Gemini 接入
type Provider struct {
	client *genai.Client
	model  string
	name   string
	logger *zap.Logger
}

// New 创建 Gemini Provider。BaseURL 仅用于测试或代理。
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		timeout := cfg.Timeout
		cc.HTTPOptions.Timeout = &timeout
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Provider{
		client: client,
		model:  cfg.Model,
		name:   "gemini/" + cfg.Model,
		logger: logger.With(zap.String("component", "gemini"), zap.String("model", cfg.Model)),
	}, nil
}

func (p *Provider) Name() string { return p.name }

// Completion system 消息并入 SystemInstruction，assistant 映射为 model 角色。
// 请求中的 Model 为空时使用 Provider 自身的模型。
func (p *Provider) Completion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	model := p.model
	if req.Model != "" && req.Model != p.model && isGeminiModel(req.Model) {
		model = req.Model
	}

	contents, system := toContents(req.Messages)
	config := &genai.GenerateContentConfig{SystemInstruction: system}
	if req.Temperature > 0 {
		t := req.Temperature
		config.Temperature = &t
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}

	resp, err := p.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, p.mapError(err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return nil, &llm.Error{
			Code:     llm.ErrContentFiltered,
			Message:  fmt.Sprintf("prompt blocked: %s", resp.PromptFeedback.BlockReason),
			Provider: p.name,
		}
	}
	finish := ""
	if len(resp.Candidates) > 0 && resp.Candidates[0] != nil {
		finish = string(resp.Candidates[0].FinishReason)
		if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
			return nil, &llm.Error{
				Code:     llm.ErrContentFiltered,
				Message:  "candidate finished with reason SAFETY",
				Provider: p.name,
			}
		}
	}

	text := resp.Text()
	if text == "" {
		return nil, &llm.Error{
			Code:      llm.ErrEmptyResponse,
			Message:   "gemini returned no text",
			Retryable: true,
			Provider:  p.name,
		}
	}

	out := &llm.ChatResponse{
		ID:       resp.ResponseID,
		Provider: p.name,
		Model:    model,
		Choices: []llm.ChatChoice{{
			FinishReason: finish,
			Message:      llm.Message{Role: llm.RoleAssistant, Content: text},
		}},
		CreatedAt: time.Now(),
	}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = llm.ChatUsage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}
	return out, nil
}

// HealthCheck 通过查询模型元数据探活
func (p *Provider) HealthCheck(ctx context.Context) (*llm.HealthStatus, error) {
	start := time.Now()
	_, err := p.client.Models.Get(ctx, p.model, nil)
	latency := time.Since(start)
	if err != nil {
		return &llm.HealthStatus{Healthy: false, Latency: latency}, p.mapError(err)
	}
	return &llm.HealthStatus{Healthy: true, Latency: latency}, nil
}

func (p *Provider) mapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return providers.MapHTTPError(apiErr.Code, apiErr.Message, p.name)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return providers.MapHTTPError(apiErrPtr.Code, apiErrPtr.Message, p.name)
	}
	p.logger.Debug("unmapped gemini error", zap.Error(err))
	return providers.MapError(err, p.name)
}

func toContents(msgs []llm.Message) ([]*genai.Content, *genai.Content) {
	var system *genai.Content
	contents := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case llm.RoleSystem:
			system = genai.NewContentFromText(m.Content, genai.RoleUser)
		case llm.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	return contents, system
}

func isGeminiModel(model string) bool {
	return len(model) >= 6 && model[:6] == "gemini"
}
