package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/BaSui01/mindflow/agent/content"
	"github.com/BaSui01/mindflow/agent/gateway"
	"github.com/BaSui01/mindflow/gamification"
	"github.com/BaSui01/mindflow/types"
)

// =============================================================================
// 📝 学习内容 Handler
// =============================================================================
// 与会话无关的一次性生成：进一步讲解、互动选择题、笔记整理。
// =============================================================================

// ContentService 内容生成，*content.Service 满足该接口
type ContentService interface {
	ExplainMore(ctx context.Context, question, topic string) (string, error)
	InteractiveQuestions(ctx context.Context, topic string) ([]content.Question, error)
	Process(ctx context.Context, notes string, mode content.Mode) (*content.Processed, error)
}

// ActivityAwarder 发放固定活动积分，Ledger 的子集
type ActivityAwarder interface {
	AwardActivity(ctx context.Context, userID, activity, description string) (*gamification.Award, error)
}

// ContentHandler 学习内容处理器
type ContentHandler struct {
	svc     ContentService
	awarder ActivityAwarder
	logger  *zap.Logger
}

// ContentOption 内容处理器配置项
type ContentOption func(*ContentHandler)

// WithActivityAwarder 生成互动题时为带 user_id 的请求发放 content_upload 积分
func WithActivityAwarder(a ActivityAwarder) ContentOption {
	return func(h *ContentHandler) { h.awarder = a }
}

// NewContentHandler 创建学习内容处理器
func NewContentHandler(svc ContentService, logger *zap.Logger, opts ...ContentOption) *ContentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &ContentHandler{
		svc:    svc,
		logger: logger.With(zap.String("component", "content_handler")),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ExplainMoreRequest POST /api/v1/content/explain-more 请求体
type ExplainMoreRequest struct {
	Question string `json:"question,omitempty"`
	Context  string `json:"context"`
}

// ExplainMoreResponse 讲解结果
type ExplainMoreResponse struct {
	Response string `json:"response"`
}

// QuestionsRequest POST /api/v1/content/interactive-questions 请求体
type QuestionsRequest struct {
	Context string `json:"context"`
	UserID  string `json:"user_id,omitempty"`
}

// QuestionsResponse 互动题结果，PointsEarned 仅在发放成功时出现
type QuestionsResponse struct {
	Questions    []content.Question `json:"questions"`
	PointsEarned int                `json:"points_earned,omitempty"`
}

// ProcessRequest POST /api/v1/content/process 请求体。Files 仅用于给出明确的拒绝。
type ProcessRequest struct {
	Notes string   `json:"notes"`
	Mode  string   `json:"mode,omitempty"`
	Files []string `json:"files,omitempty"`
}

// HandleExplainMore POST /api/v1/content/explain-more
func (h *ContentHandler) HandleExplainMore(w http.ResponseWriter, r *http.Request) {
	var req ExplainMoreRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	text, err := h.svc.ExplainMore(r.Context(), req.Question, req.Context)
	if err != nil {
		WriteError(w, contentError(err), h.logger)
		return
	}
	WriteSuccess(w, ExplainMoreResponse{Response: text})
}

// HandleInteractiveQuestions POST /api/v1/content/interactive-questions
func (h *ContentHandler) HandleInteractiveQuestions(w http.ResponseWriter, r *http.Request) {
	var req QuestionsRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	questions, err := h.svc.InteractiveQuestions(r.Context(), req.Context)
	if err != nil {
		WriteError(w, contentError(err), h.logger)
		return
	}

	resp := QuestionsResponse{Questions: questions}
	if userID := callerID(r, req.UserID); userID != "" && h.awarder != nil {
		// 积分失败不影响出题
		award, err := h.awarder.AwardActivity(r.Context(), userID, gamification.ActivityContentUpload,
			fmt.Sprintf("Uploaded Quiz Generation: %s", truncate(req.Context, 50)))
		if err != nil {
			h.logger.Warn("content upload award failed", zap.String("user_id", userID), zap.Error(err))
		} else {
			resp.PointsEarned = award.PointsEarned
		}
	}
	WriteSuccess(w, resp)
}

// HandleProcess POST /api/v1/content/process
func (h *ContentHandler) HandleProcess(w http.ResponseWriter, r *http.Request) {
	var req ProcessRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}
	if len(req.Files) > 0 {
		WriteErrorMessage(w, types.ErrInvalidRequest, "file extraction is not supported, send the text as notes", h.logger)
		return
	}
	mode, err := content.ParseMode(req.Mode)
	if err != nil {
		WriteErrorMessage(w, types.ErrInvalidRequest, "mode must be learn or quiz", h.logger)
		return
	}

	out, err := h.svc.Process(r.Context(), req.Notes, mode)
	if err != nil {
		WriteError(w, contentError(err), h.logger)
		return
	}
	WriteSuccess(w, out)
}

// contentError 内容服务错误到 API 错误
func contentError(err error) *types.Error {
	switch {
	case errors.Is(err, content.ErrEmptyContent):
		return types.NewError(types.ErrInvalidRequest, "no content provided").WithCause(err)
	case errors.Is(err, content.ErrInvalidMode):
		return types.NewError(types.ErrInvalidRequest, "mode must be learn or quiz").WithCause(err)
	case errors.Is(err, gateway.ErrContentFiltered):
		return types.NewError(types.ErrUnsafeContent, gateway.ApologyMessage).WithCause(err)
	case errors.Is(err, context.DeadlineExceeded):
		return types.NewError(types.ErrTimeout, "content generation timed out").WithCause(err).WithRetryable(true)
	default:
		return types.NewError(types.ErrUpstreamError, "failed to get response from AI").WithCause(err).WithRetryable(true)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
