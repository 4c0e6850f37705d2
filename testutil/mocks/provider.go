// MockProvider 的 LLM 提供商测试模拟实现。
//
// 支持固定响应、按指令文本路由的脚本化响应与错误注入场景。
package mocks

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/BaSui01/mindflow/llm"
)

// --- 脚本化响应 ---

// Reply 是一次调用的预设结果
type Reply struct {
	Text string
	Err  error
}

// Text 构造文本响应
func Text(s string) Reply { return Reply{Text: s} }

// Fail 构造错误响应
func Fail(err error) Reply { return Reply{Err: err} }

// rule 按首条消息（角色指令）中的关键字匹配请求，onPrompt 时改为匹配末条消息。
// replies 依次消费，最后一条会一直重复。
type rule struct {
	match    string
	onPrompt bool
	replies  []Reply
	next     int
}

func (r *rule) take() Reply {
	reply := r.replies[r.next]
	if r.next < len(r.replies)-1 {
		r.next++
	}
	return reply
}

// --- MockProvider 结构 ---

// MockProvider 是 LLM Provider 的模拟实现
type MockProvider struct {
	mu sync.Mutex

	response string
	err      error
	rules    []*rule

	promptTokens     int
	completionTokens int

	calls          []MockProviderCall
	completionFunc func(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error)

	delay   time.Duration
	healthy bool
}

// MockProviderCall 记录单次调用
type MockProviderCall struct {
	Request  *llm.ChatRequest
	Response *llm.ChatResponse
	Error    error
}

// Instructions 返回该次调用的角色指令（首条消息）
func (c MockProviderCall) Instructions() string {
	if c.Request == nil || len(c.Request.Messages) == 0 {
		return ""
	}
	return c.Request.Messages[0].Content
}

// Payload 返回该次调用的 JSON 载荷（末条消息）
func (c MockProviderCall) Payload() string {
	if c.Request == nil || len(c.Request.Messages) == 0 {
		return ""
	}
	return c.Request.Messages[len(c.Request.Messages)-1].Content
}

// --- 构造函数和 Builder 方法 ---

// NewMockProvider 创建新的 MockProvider
func NewMockProvider() *MockProvider {
	return &MockProvider{
		response:         "{}",
		promptTokens:     10,
		completionTokens: 20,
		healthy:          true,
	}
}

// WithResponse 设置未命中任何规则时的固定响应
func (m *MockProvider) WithResponse(response string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.response = response
	return m
}

// WithError 设置返回错误（优先于规则）
func (m *MockProvider) WithError(err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithRule 当角色指令包含 match 时按顺序返回 replies
func (m *MockProvider) WithRule(match string, replies ...Reply) *MockProvider {
	if len(replies) == 0 {
		return m
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, &rule{match: match, replies: replies})
	return m
}

// WithPromptRule 当末条消息（载荷或自由文本提示）包含 match 时按顺序返回 replies
func (m *MockProvider) WithPromptRule(match string, replies ...Reply) *MockProvider {
	if len(replies) == 0 {
		return m
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, &rule{match: match, onPrompt: true, replies: replies})
	return m
}

// WithTokenUsage 设置 Token 使用量
func (m *MockProvider) WithTokenUsage(prompt, completion int) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.promptTokens = prompt
	m.completionTokens = completion
	return m
}

// WithDelay 设置响应延迟
func (m *MockProvider) WithDelay(d time.Duration) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
	return m
}

// WithHealthy 设置健康检查结果
func (m *MockProvider) WithHealthy(healthy bool) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.healthy = healthy
	return m
}

// WithCompletionFunc 设置自定义 Completion 函数
func (m *MockProvider) WithCompletionFunc(fn func(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error)) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completionFunc = fn
	return m
}

// --- Provider 接口实现 ---

// Name 返回 Provider 名称
func (m *MockProvider) Name() string {
	return "mock"
}

// HealthCheck 执行健康检查
func (m *MockProvider) HealthCheck(ctx context.Context) (*llm.HealthStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.healthy {
		return &llm.HealthStatus{Healthy: false}, &llm.Error{Code: llm.ErrProviderUnavailable, Message: "mock unhealthy", Provider: "mock"}
	}
	return &llm.HealthStatus{Healthy: true, Latency: time.Millisecond}, nil
}

// Completion 生成响应
func (m *MockProvider) Completion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	m.mu.Lock()
	delay := m.delay
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		m.calls = append(m.calls, MockProviderCall{Request: req, Error: m.err})
		return nil, m.err
	}

	if m.completionFunc != nil {
		resp, err := m.completionFunc(ctx, req)
		m.calls = append(m.calls, MockProviderCall{Request: req, Response: resp, Error: err})
		return resp, err
	}

	text := m.response
	if r := m.matchRule(req); r != nil {
		reply := r.take()
		if reply.Err != nil {
			m.calls = append(m.calls, MockProviderCall{Request: req, Error: reply.Err})
			return nil, reply.Err
		}
		text = reply.Text
	}

	resp := &llm.ChatResponse{
		ID:       "mock-response-id",
		Provider: "mock",
		Model:    req.Model,
		Choices: []llm.ChatChoice{{
			Index:        0,
			FinishReason: "stop",
			Message:      llm.Message{Role: llm.RoleAssistant, Content: text},
		}},
		Usage: llm.ChatUsage{
			PromptTokens:     m.promptTokens,
			CompletionTokens: m.completionTokens,
			TotalTokens:      m.promptTokens + m.completionTokens,
		},
		CreatedAt: time.Now(),
	}
	m.calls = append(m.calls, MockProviderCall{Request: req, Response: resp})
	return resp, nil
}

func (m *MockProvider) matchRule(req *llm.ChatRequest) *rule {
	if req == nil || len(req.Messages) == 0 {
		return nil
	}
	instructions := req.Messages[0].Content
	prompt := req.Messages[len(req.Messages)-1].Content
	for _, r := range m.rules {
		target := instructions
		if r.onPrompt {
			target = prompt
		}
		if strings.Contains(target, r.match) {
			return r
		}
	}
	return nil
}

// --- 调用记录查询 ---

// Calls 返回所有调用记录
func (m *MockProvider) Calls() []MockProviderCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockProviderCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount 返回调用次数
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// CallsMatching 返回角色指令包含 match 的调用次数
func (m *MockProvider) CallsMatching(match string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if strings.Contains(c.Instructions(), match) {
			n++
		}
	}
	return n
}

// LastCall 返回最后一次调用
func (m *MockProvider) LastCall() (MockProviderCall, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return MockProviderCall{}, false
	}
	return m.calls[len(m.calls)-1], true
}

// Reset 清空调用记录与规则游标
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	for _, r := range m.rules {
		r.next = 0
	}
}
