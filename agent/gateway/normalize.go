package gateway

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/BaSui01/mindflow/types"
)

const (
	// ApologyMessage 命中内容审核或上游安全拦截时返回给学习者的固定话术
	ApologyMessage = "I apologize, but I cannot generate that type of content. Let's focus on something else."

	// ProcessingErrorMessage 上游调用失败（重试耗尽或非安全类错误）时的固定话术
	ProcessingErrorMessage = "I encountered an error processing your request. Could you please rephrase it?"
)

// moderationPhrases 出现在模型回复中即视为模型自行拒答
var moderationPhrases = []string{
	"cannot help",
	"inappropriate",
	"harmful",
	"unacceptable",
	"i'm sorry",
	"i am sorry",
	"i apologize",
	"not appropriate",
	"racism",
}

// Result 归一化后的 LLM 回复。字段缺失或类型不符一律视为不存在。
type Result map[string]any

// String 读取字符串字段
func (r Result) String(key string) (string, bool) {
	s, ok := r[key].(string)
	return s, ok
}

// StringOr 读取字符串字段，缺失时返回 def
func (r Result) StringOr(key, def string) string {
	if s, ok := r.String(key); ok {
		return s
	}
	return def
}

// Bool 读取布尔字段
func (r Result) Bool(key string) (bool, bool) {
	b, ok := r[key].(bool)
	return b, ok
}

// StringList 读取字符串数组，任一元素不是字符串即视为缺失
func (r Result) StringList(key string) ([]string, bool) {
	raw, ok := r[key].([]any)
	if !ok {
		if typed, ok := r[key].([]string); ok {
			return append([]string{}, typed...), true
		}
		return nil, false
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// StringListOr 读取字符串数组，缺失时返回 def 的副本
func (r Result) StringListOr(key string, def []string) []string {
	if l, ok := r.StringList(key); ok {
		return l
	}
	return append([]string{}, def...)
}

// Status 读取 status 字段并报告是否为已知的安全状态
func (r Result) Status() (types.SafetyStatus, bool) {
	s, ok := r.String("status")
	if !ok {
		return "", false
	}
	return types.LookupSafetyStatus(s)
}

// FallbackResult 解析失败时的兜底：原文去空白后作为 explanation
func FallbackResult(raw string) Result {
	return Result{
		"status":        string(types.SafetySafe),
		"explanation":   strings.TrimSpace(raw),
		"subtopics":     []any{},
		"prerequisites": []any{},
		"summary":       "",
	}
}

// ApologyResult 内容拦截时的统一回复
func ApologyResult() Result {
	return Result{
		"status":      string(types.SafetyInappropriate),
		"explanation": ApologyMessage,
	}
}

// ProcessingErrorResult 调用失败时的统一回复
func ProcessingErrorResult() Result {
	return FallbackResult(ProcessingErrorMessage)
}

// Normalize 把 LLM 原始文本转成 Result。
//
// 取第一个 '{' 到最后一个 '}' 之间的内容宽松解析（容忍字符串内的裸控制字符），
// 失败则走 FallbackResult。safetyRequest 为 false 时，
// 解析结果序列化后小写命中任一审核短语即替换为 ApologyResult。
func Normalize(raw string, safetyRequest bool) Result {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end < start {
		return FallbackResult(raw)
	}

	var parsed any
	if err := json.Unmarshal(escapeControlChars(raw[start:end+1]), &parsed); err != nil {
		return FallbackResult(raw)
	}
	obj, ok := parsed.(map[string]any)
	if !ok {
		return FallbackResult(raw)
	}

	if !safetyRequest && containsModerationPhrase(obj) {
		return ApologyResult()
	}
	return Result(obj)
}

func containsModerationPhrase(obj map[string]any) bool {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(obj); err != nil {
		return false
	}
	text := strings.ToLower(buf.String())
	for _, phrase := range moderationPhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}

// escapeControlChars 把 JSON 字符串字面量内的裸控制字符改写成转义序列。
// 字符串外的空白保持不变。
func escapeControlChars(s string) []byte {
	out := make([]byte, 0, len(s)+8)
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !inString {
			if c == '"' {
				inString = true
			}
			out = append(out, c)
			continue
		}
		switch {
		case escaped:
			escaped = false
			out = append(out, c)
		case c == '\\':
			escaped = true
			out = append(out, c)
		case c == '"':
			inString = false
			out = append(out, c)
		case c == '\n':
			out = append(out, '\\', 'n')
		case c == '\r':
			out = append(out, '\\', 'r')
		case c == '\t':
			out = append(out, '\\', 't')
		case c < 0x20:
			const hex = "0123456789abcdef"
			out = append(out, '\\', 'u', '0', '0', hex[c>>4], hex[c&0xf])
		default:
			out = append(out, c)
		}
	}
	return out
}
