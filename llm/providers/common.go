package providers

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/BaSui01/mindflow/llm"
)

// MapHTTPError 将 HTTP 状态码映射为带有合适重试标记的 llm.Error
// 这是所有提供者使用的通用错误映射函数
func MapHTTPError(status int, msg string, provider string) *llm.Error {
	e := &llm.Error{Message: msg, HTTPStatus: status, Provider: provider}

	switch status {
	case http.StatusUnauthorized:
		e.Code = llm.ErrUnauthorized
	case http.StatusForbidden:
		e.Code = llm.ErrForbidden
	case http.StatusTooManyRequests:
		e.Code = llm.ErrRateLimited
		e.Retryable = true
	case http.StatusBadRequest:
		// 检查配额/信用关键字
		lower := strings.ToLower(msg)
		if strings.Contains(lower, "quota") || strings.Contains(lower, "credit") || strings.Contains(lower, "limit") {
			e.Code = llm.ErrQuotaExceeded
		} else {
			e.Code = llm.ErrInvalidRequest
		}
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		e.Code = llm.ErrUpstreamTimeout
		e.Retryable = true
	case http.StatusServiceUnavailable, http.StatusBadGateway:
		e.Code = llm.ErrUpstreamError
		e.Retryable = true
	case 529: // 部分厂商用于表示模型过载
		e.Code = llm.ErrModelOverloaded
		e.Retryable = true
	default:
		e.Code = llm.ErrUpstreamError
		e.Retryable = status >= 500
	}
	return e
}

var statusPattern = regexp.MustCompile(`(?i)(?:status(?:\s*code)?|http)[\s:=]*(\d{3})\b`)

// StatusFromText 从 SDK 错误文本中提取 HTTP 状态码，找不到返回 0。
func StatusFromText(text string) int {
	m := statusPattern.FindStringSubmatch(text)
	if len(m) < 2 {
		return 0
	}
	code, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return code
}

// MapError 把任意 SDK 错误归一成 *llm.Error。
// 已是 *llm.Error 的原样返回；context 错误映射为超时且不重试；
// 文本含 SAFETY 的视为内容拦截；其余按文本中的状态码映射，没有状态码按可重试的上游错误处理。
func MapError(err error, provider string) error {
	if err == nil {
		return nil
	}
	if e, ok := llm.AsError(err); ok {
		return e
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &llm.Error{Code: llm.ErrUpstreamTimeout, Message: err.Error(), Provider: provider}
	}
	msg := err.Error()
	if strings.Contains(msg, "SAFETY") {
		return &llm.Error{Code: llm.ErrContentFiltered, Message: msg, Provider: provider}
	}
	if status := StatusFromText(msg); status != 0 {
		return MapHTTPError(status, msg, provider)
	}
	return &llm.Error{Code: llm.ErrUpstreamError, Message: msg, Retryable: true, Provider: provider}
}
