package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/mindflow/llm"
	"github.com/BaSui01/mindflow/llm/ratelimit"
	"github.com/BaSui01/mindflow/llm/retry"
	"github.com/BaSui01/mindflow/llm/tokenizer"
)

const (
	// Acknowledgement 第二条消息：模型确认已理解角色指令
	Acknowledgement = "I understand my role and instructions. Ready to process input."

	// FormatInstructions 附加在载荷上的输出格式要求
	FormatInstructions = "Return only valid JSON without any markdown formatting or additional text."
)

// Config 网关配置
type Config struct {
	Model         string        `yaml:"model" env:"MODEL"`
	MinInterval   time.Duration `yaml:"min_interval" env:"MIN_INTERVAL"`
	RetryAttempts int           `yaml:"retry_attempts" env:"RETRY_ATTEMPTS"`
	BaseDelay     time.Duration `yaml:"base_delay" env:"BASE_DELAY"`
}

// DefaultConfig 请求间隔 1s，失败后最多再试 2 次，退避基数 500ms
func DefaultConfig() Config {
	return Config{
		MinInterval:   time.Second,
		RetryAttempts: 2,
		BaseDelay:     500 * time.Millisecond,
	}
}

// LLMRecorder 记录每次 LLM 调用，*metrics.Collector 满足该接口
type LLMRecorder interface {
	RecordLLMRequest(provider, model, status string, duration time.Duration, promptTokens, completionTokens int)
}

// Request 一次角色调用
type Request struct {
	Role          string // 仅用于日志与指标
	Instructions  string
	Payload       any
	SafetyRequest bool
}

// Gateway 角色层与 LLM Provider 之间的唯一出口。
// Call 从不向调用方返回错误，所有失败都折算成固定话术的 Result。
type Gateway struct {
	provider  llm.Provider
	limiter   ratelimit.Limiter
	retryer   retry.Retryer
	model     string
	recorder  LLMRecorder
	tokenizer tokenizer.Tokenizer
	logger    *zap.Logger
}

// Option 网关可选项
type Option func(*Gateway)

// WithLimiter 替换默认的最小间隔限流器
func WithLimiter(l ratelimit.Limiter) Option {
	return func(g *Gateway) { g.limiter = l }
}

// WithRecorder 注入指标记录器
func WithRecorder(r LLMRecorder) Option {
	return func(g *Gateway) { g.recorder = r }
}

// WithTokenizer 替换默认的 token 估算器
func WithTokenizer(t tokenizer.Tokenizer) Option {
	return func(g *Gateway) { g.tokenizer = t }
}

// WithRetryer 替换默认重试器
func WithRetryer(r retry.Retryer) Option {
	return func(g *Gateway) { g.retryer = r }
}

// New 创建网关
func New(provider llm.Provider, cfg Config, logger *zap.Logger, opts ...Option) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultConfig()
	if cfg.RetryAttempts < 0 {
		cfg.RetryAttempts = def.RetryAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = def.BaseDelay
	}

	g := &Gateway{
		provider:  provider,
		model:     cfg.Model,
		limiter:   ratelimit.NewIntervalLimiter(cfg.MinInterval),
		tokenizer: tokenizer.ForModel(cfg.Model),
		logger:    logger.With(zap.String("component", "llm_gateway")),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.retryer == nil {
		g.retryer = retry.NewBackoffRetryer(&retry.RetryPolicy{
			MaxRetries:   cfg.RetryAttempts,
			InitialDelay: cfg.BaseDelay,
			Multiplier:   2.0,
			RetryIf:      llm.IsRetryable,
		}, logger)
	}
	return g
}

// Call 组装三段式消息，限流后调用 Provider（瞬时错误指数退避重试），再归一化回复。
func (g *Gateway) Call(ctx context.Context, req Request) Result {
	body, err := buildPayload(req.Payload)
	if err != nil {
		g.logger.Error("encode payload failed", zap.String("role", req.Role), zap.Error(err))
		return ProcessingErrorResult()
	}

	chatReq := &llm.ChatRequest{
		Model: g.model,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: req.Instructions},
			{Role: llm.RoleAssistant, Content: Acknowledgement},
			{Role: llm.RoleUser, Content: body},
		},
		Metadata: map[string]string{"role": req.Role},
	}

	text, err := g.invoke(ctx, req.Role, chatReq)
	switch {
	case errors.Is(err, ErrContentFiltered):
		return ApologyResult()
	case err != nil:
		return ProcessingErrorResult()
	}
	return Normalize(text, req.SafetyRequest)
}

// TextRequest 一次自由文本生成：可选系统提示加单条用户提示，回复不做 JSON 归一化
type TextRequest struct {
	Role   string // 仅用于日志与指标
	System string
	Prompt string
}

// ErrNoCompletion Complete 未拿到可用回复
var ErrNoCompletion = errors.New("llm returned no usable completion")

// ErrContentFiltered Complete 被上游内容审核拦截
var ErrContentFiltered = errors.New("llm completion filtered")

// Complete 与 Call 共用限流、重试与指标，返回去除首尾空白的原文。
// 失败时返回 ErrContentFiltered 或 ErrNoCompletion。
func (g *Gateway) Complete(ctx context.Context, req TextRequest) (string, error) {
	msgs := make([]llm.Message, 0, 2)
	if req.System != "" {
		msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: req.System})
	}
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: req.Prompt})

	text, err := g.invoke(ctx, req.Role, &llm.ChatRequest{
		Model:    g.model,
		Messages: msgs,
		Metadata: map[string]string{"role": req.Role},
	})
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoCompletion
	}
	return text, nil
}

// invoke 限流后调用 Provider，瞬时错误指数退避重试。
// 错误只有 ErrContentFiltered 与 ErrNoCompletion 两类，原始错误只进日志。
func (g *Gateway) invoke(ctx context.Context, role string, chatReq *llm.ChatRequest) (string, error) {
	start := time.Now()
	resp, err := retry.DoWithResultTyped[*llm.ChatResponse](g.retryer, ctx, func() (*llm.ChatResponse, error) {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
		return g.provider.Completion(ctx, chatReq)
	})
	duration := time.Since(start)

	if err != nil {
		filtered := llm.IsContentFiltered(err)
		status := "error"
		if filtered {
			status = "filtered"
		}
		g.record(status, duration, chatReq, nil)
		g.logger.Warn("llm call failed",
			zap.String("role", role),
			zap.Bool("content_filtered", filtered),
			zap.Duration("duration", duration),
			zap.Error(err))
		if filtered {
			return "", ErrContentFiltered
		}
		return "", ErrNoCompletion
	}

	g.record("success", duration, chatReq, resp)
	text := resp.FirstText()
	g.logger.Debug("llm call succeeded",
		zap.String("role", role),
		zap.Int("response_len", len(text)),
		zap.Duration("duration", duration))
	return text, nil
}

func (g *Gateway) record(status string, d time.Duration, req *llm.ChatRequest, resp *llm.ChatResponse) {
	if g.recorder == nil {
		return
	}
	model := g.model
	prompt, completion := 0, 0
	if resp != nil {
		if resp.Model != "" {
			model = resp.Model
		}
		prompt, completion = resp.Usage.PromptTokens, resp.Usage.CompletionTokens
		if prompt == 0 && completion == 0 {
			prompt = g.countMessages(req.Messages)
			completion, _ = g.tokenizer.CountTokens(resp.FirstText())
		}
	}
	g.recorder.RecordLLMRequest(g.provider.Name(), model, status, d, prompt, completion)
}

func (g *Gateway) countMessages(msgs []llm.Message) int {
	tm := make([]tokenizer.Message, 0, len(msgs))
	for _, m := range msgs {
		tm = append(tm, tokenizer.Message{Role: string(m.Role), Content: m.Content})
	}
	n, _ := g.tokenizer.CountMessages(tm)
	return n
}

// buildPayload 载荷须能序列化为 JSON 对象，再附加输出格式字段。
func buildPayload(payload any) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return "", fmt.Errorf("payload must encode as a JSON object: %w", err)
	}
	if fields == nil {
		fields = map[string]any{}
	}
	fields["response_format"] = "json"
	fields["format_instructions"] = FormatInstructions

	out, err := json.Marshal(fields)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
