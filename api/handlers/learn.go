package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/mindflow/agent/orchestrator"
	"github.com/BaSui01/mindflow/agent/roles"
	"github.com/BaSui01/mindflow/agent/session"
	"github.com/BaSui01/mindflow/types"
)

// =============================================================================
// 🎓 学习会话 Handler
// =============================================================================

// SessionStore 会话存储，*orchestrator.Registry 满足该接口
type SessionStore interface {
	Acquire(id string) (*orchestrator.Session, func(), error)
	Lookup(id string) (*orchestrator.Session, bool)
	Remove(id string)
	Ephemeral() *orchestrator.Orchestrator
}

// LearnHandler 学习会话处理器
type LearnHandler struct {
	sessions SessionStore
	logger   *zap.Logger
}

// NewLearnHandler 创建学习会话处理器
func NewLearnHandler(sessions SessionStore, logger *zap.Logger) *LearnHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LearnHandler{
		sessions: sessions,
		logger:   logger.With(zap.String("component", "learn_handler")),
	}
}

// TurnRequest POST /api/v1/learn/turn 请求体
type TurnRequest struct {
	SessionID      string   `json:"session_id,omitempty"`
	Input          string   `json:"input"`
	CurrentTopic   string   `json:"current_topic,omitempty"`
	ActiveSubtopic string   `json:"active_subtopic,omitempty"`
	SessionHistory []string `json:"session_history,omitempty"`
}

// TurnResponse 一轮对话结果
type TurnResponse struct {
	SessionID string                `json:"session_id"`
	Response  orchestrator.Response `json:"response"`
}

// SafetyRequest POST /api/v1/learn/safety 请求体
type SafetyRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Text      string `json:"text"`
}

// SessionState GET /api/v1/learn/session 响应
type SessionState struct {
	SessionID string           `json:"session_id"`
	State     session.Snapshot `json:"state"`
}

// HandleTurn POST /api/v1/learn/turn
func (h *LearnHandler) HandleTurn(w http.ResponseWriter, r *http.Request) {
	var req TurnRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}
	if strings.TrimSpace(req.Input) == "" {
		WriteErrorMessage(w, types.ErrInvalidRequest, "input is required", h.logger)
		return
	}

	sess, release, err := h.sessions.Acquire(req.SessionID)
	if err != nil {
		WriteError(w, registryError(err), h.logger)
		return
	}
	defer release()

	ctx := types.WithSessionID(r.Context(), sess.ID)
	overrides := session.Overrides{
		CurrentTopic:   req.CurrentTopic,
		ActiveSubtopic: req.ActiveSubtopic,
		SessionHistory: req.SessionHistory,
		Continue:       true,
	}

	var resp orchestrator.Response
	sess.Do(func(o *orchestrator.Orchestrator) {
		resp = o.HandleTurn(ctx, req.Input, overrides)
	})

	WriteSuccess(w, TurnResponse{SessionID: sess.ID, Response: resp})
}

// HandleSafety POST /api/v1/learn/safety。未给 session_id 时使用临时编排器。
func (h *LearnHandler) HandleSafety(w http.ResponseWriter, r *http.Request) {
	var req SafetyRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		WriteErrorMessage(w, types.ErrInvalidRequest, "text is required", h.logger)
		return
	}

	var result roles.SafetyResult
	if req.SessionID == "" {
		result = h.sessions.Ephemeral().RunSafetyCheck(r.Context(), req.Text)
		WriteSuccess(w, result)
		return
	}

	sess, ok := h.sessions.Lookup(req.SessionID)
	if !ok {
		WriteError(w, sessionNotFound(req.SessionID), h.logger)
		return
	}
	ctx := types.WithSessionID(r.Context(), sess.ID)
	sess.Do(func(o *orchestrator.Orchestrator) {
		result = o.RunSafetyCheck(ctx, req.Text)
	})
	WriteSuccess(w, result)
}

// HandleSummary GET /api/v1/learn/summary?session_id=
func (h *LearnHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	ctx := types.WithSessionID(r.Context(), sess.ID)

	var summary roles.SummaryResult
	sess.Do(func(o *orchestrator.Orchestrator) {
		summary = o.SessionSummary(ctx)
	})
	WriteSuccess(w, summary)
}

// HandleSession GET /api/v1/learn/session?session_id=
func (h *LearnHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var snap session.Snapshot
	sess.Do(func(o *orchestrator.Orchestrator) {
		snap = o.State()
	})
	WriteSuccess(w, SessionState{SessionID: sess.ID, State: snap})
}

// HandleEndSession DELETE /api/v1/learn/session?session_id=
func (h *LearnHandler) HandleEndSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.sessions.Remove(sess.ID)
	h.logger.Debug("session ended", zap.String("session_id", sess.ID))
	WriteSuccess(w, map[string]string{"session_id": sess.ID})
}

func (h *LearnHandler) lookup(w http.ResponseWriter, r *http.Request) (*orchestrator.Session, bool) {
	id := r.URL.Query().Get("session_id")
	if id == "" {
		WriteErrorMessage(w, types.ErrInvalidRequest, "session_id is required", h.logger)
		return nil, false
	}
	sess, ok := h.sessions.Lookup(id)
	if !ok {
		WriteError(w, sessionNotFound(id), h.logger)
		return nil, false
	}
	return sess, true
}

func sessionNotFound(id string) *types.Error {
	return types.NewError(types.ErrSessionNotFound, "session not found: "+id)
}

func registryError(err error) *types.Error {
	if errors.Is(err, orchestrator.ErrRegistryClosed) {
		return types.NewError(types.ErrServiceUnavailable, "server is shutting down").
			WithCause(err).
			WithRetryable(true)
	}
	return types.NewError(types.ErrInternalError, "session unavailable").WithCause(err)
}
