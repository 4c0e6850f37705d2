package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/BaSui01/mindflow/gamification"
	"github.com/BaSui01/mindflow/types"
)

// =============================================================================
// 🏆 积分 / 徽章 / 排行榜 Handler
// =============================================================================

// Ledger 积分账本，*gamification.Service 满足该接口
type Ledger interface {
	InitializeUser(ctx context.Context, userID, username, email string) (*gamification.User, error)
	UserStats(ctx context.Context, userID string) (*gamification.UserStats, error)
	UserBadges(ctx context.Context, userID string) ([]gamification.EarnedBadge, error)
	SubmitQuiz(ctx context.Context, userID string, score float64, quizData map[string]any) (*gamification.QuizResult, error)
	AwardActivity(ctx context.Context, userID, activity, description string) (*gamification.Award, error)
	Leaderboard(ctx context.Context, limit int) ([]gamification.LeaderboardEntry, error)
}

// GamificationHandler 积分处理器
type GamificationHandler struct {
	ledger       Ledger
	defaultLimit int
	logger       *zap.Logger
}

// GamificationOption 积分处理器配置项
type GamificationOption func(*GamificationHandler)

// WithDefaultLeaderboardLimit 未带 limit 参数时的排行榜条数
func WithDefaultLeaderboardLimit(n int) GamificationOption {
	return func(h *GamificationHandler) {
		if n > 0 {
			h.defaultLimit = n
		}
	}
}

// NewGamificationHandler 创建积分处理器
func NewGamificationHandler(ledger Ledger, logger *zap.Logger, opts ...GamificationOption) *GamificationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &GamificationHandler{
		ledger:       ledger,
		defaultLimit: gamification.DefaultLeaderboardLimit,
		logger:       logger.With(zap.String("component", "gamification_handler")),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// InitializeUserRequest POST /api/v1/users/initialize
type InitializeUserRequest struct {
	UserID   string `json:"user_id"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// SubmitQuizRequest POST /api/v1/quiz/submit
type SubmitQuizRequest struct {
	UserID   string         `json:"user_id"`
	Score    *float64       `json:"score"`
	QuizData map[string]any `json:"quiz_data,omitempty"`
}

// AwardPointsRequest POST /api/v1/points/award
type AwardPointsRequest struct {
	UserID       string `json:"user_id"`
	ActivityType string `json:"activity_type"`
	Description  string `json:"description,omitempty"`
}

// HandleInitializeUser POST /api/v1/users/initialize
func (h *GamificationHandler) HandleInitializeUser(w http.ResponseWriter, r *http.Request) {
	var req InitializeUserRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}
	user, err := h.ledger.InitializeUser(r.Context(), callerID(r, req.UserID), req.Username, req.Email)
	if err != nil {
		WriteError(w, ledgerError(err), h.logger)
		return
	}
	WriteSuccess(w, user)
}

// HandleUserStats GET /api/v1/users/{id}/stats
func (h *GamificationHandler) HandleUserStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.ledger.UserStats(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, ledgerError(err), h.logger)
		return
	}
	WriteSuccess(w, stats)
}

// HandleUserBadges GET /api/v1/users/{id}/badges
func (h *GamificationHandler) HandleUserBadges(w http.ResponseWriter, r *http.Request) {
	badges, err := h.ledger.UserBadges(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, ledgerError(err), h.logger)
		return
	}
	WriteSuccess(w, badges)
}

// HandleSubmitQuiz POST /api/v1/quiz/submit
func (h *GamificationHandler) HandleSubmitQuiz(w http.ResponseWriter, r *http.Request) {
	var req SubmitQuizRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}
	if req.Score == nil {
		WriteErrorMessage(w, types.ErrInvalidRequest, "score is required", h.logger)
		return
	}

	result, err := h.ledger.SubmitQuiz(r.Context(), callerID(r, req.UserID), *req.Score, req.QuizData)
	if err != nil {
		WriteError(w, ledgerError(err), h.logger)
		return
	}
	WriteSuccess(w, result)
}

// HandleAwardPoints POST /api/v1/points/award
func (h *GamificationHandler) HandleAwardPoints(w http.ResponseWriter, r *http.Request) {
	var req AwardPointsRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}
	userID := callerID(r, req.UserID)
	if userID == "" {
		WriteError(w, ledgerError(gamification.ErrInvalidUserID), h.logger)
		return
	}

	award, err := h.ledger.AwardActivity(r.Context(), userID, req.ActivityType, req.Description)
	if err != nil {
		WriteError(w, ledgerError(err), h.logger)
		return
	}
	WriteSuccess(w, award)
}

// HandleLeaderboard GET /api/v1/leaderboard?limit=
func (h *GamificationHandler) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := h.defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			WriteErrorMessage(w, types.ErrInvalidRequest, "limit must be a positive integer", h.logger)
			return
		}
		limit = n
	}

	entries, err := h.ledger.Leaderboard(r.Context(), limit)
	if err != nil {
		WriteError(w, ledgerError(err), h.logger)
		return
	}
	WriteSuccess(w, entries)
}

// callerID 请求体未给 user_id 时回落为认证中间件注入的用户
func callerID(r *http.Request, given string) string {
	if given != "" {
		return given
	}
	id, _ := types.UserID(r.Context())
	return id
}

// ledgerError 账本错误到 API 错误
func ledgerError(err error) *types.Error {
	switch {
	case errors.Is(err, gamification.ErrUserNotFound):
		return types.NewError(types.ErrUserNotFound, "user not found").WithCause(err)
	case errors.Is(err, gamification.ErrUnknownActivity):
		return types.NewError(types.ErrUnknownActivity, err.Error()).WithCause(err)
	case errors.Is(err, gamification.ErrInvalidUserID), errors.Is(err, gamification.ErrInvalidScore):
		return types.NewError(types.ErrInvalidRequest, err.Error()).WithCause(err)
	case errors.Is(err, context.DeadlineExceeded):
		return types.NewError(types.ErrTimeout, "ledger request timed out").WithCause(err).WithRetryable(true)
	default:
		return types.NewError(types.ErrInternalError, "ledger unavailable").WithCause(err)
	}
}
