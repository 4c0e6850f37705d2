// Package tokenizer 为网关提供 token 用量估算，用于指标上报。
// OpenAI 家族模型走 tiktoken，其他模型（如 Gemini）走字符估算。
package tokenizer

import "strings"

// Tokenizer 是统一的 token 计数接口.
type Tokenizer interface {
	// CountTokens 返回给定文本的 token 数.
	CountTokens(text string) (int, error)

	// CountMessages 返回消息列表的总 token 数，含每条消息的角色与分隔开销。
	CountMessages(messages []Message) (int, error)

	// Name 返回分词器的名称.
	Name() string
}

// Message 是 tokenizer 包使用的轻量消息结构，避免依赖 llm 包。
type Message struct {
	Role    string
	Content string
}

// ForModel 按模型名挑选分词器。
// "openai/gpt-4o" 这类带厂商前缀的名称会先去掉前缀再匹配。
func ForModel(model string) Tokenizer {
	name := model
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if _, ok := lookupEncoding(name); ok {
		return &fallbackTokenizer{
			primary:  NewTiktokenTokenizer(name),
			fallback: NewEstimatorTokenizer(),
		}
	}
	return NewEstimatorTokenizer()
}

// fallbackTokenizer tiktoken 编码不可用（离线无法下载）时退回估算。
type fallbackTokenizer struct {
	primary  Tokenizer
	fallback Tokenizer
}

func (f *fallbackTokenizer) CountTokens(text string) (int, error) {
	if n, err := f.primary.CountTokens(text); err == nil {
		return n, nil
	}
	return f.fallback.CountTokens(text)
}

func (f *fallbackTokenizer) CountMessages(messages []Message) (int, error) {
	if n, err := f.primary.CountMessages(messages); err == nil {
		return n, nil
	}
	return f.fallback.CountMessages(messages)
}

func (f *fallbackTokenizer) Name() string { return f.primary.Name() }
