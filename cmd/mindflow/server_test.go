package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/mindflow/api/handlers"
	"github.com/BaSui01/mindflow/config"
	"github.com/BaSui01/mindflow/gamification"
	"github.com/BaSui01/mindflow/types"
)

// 端到端：离线 LLM + 临时 sqlite，覆盖启动迁移、认证、学习轮次与积分路由。
// 指标收集器注册在默认 Registry 上，同一测试进程只能启动一次 Server。
func TestServer_EndToEnd(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.HTTPPort = 0
	cfg.Server.MetricsPort = 0
	cfg.Server.APIKeys = []string{"test-key"}
	cfg.LLM.Provider = "mock"
	cfg.LLM.MinInterval = 0
	cfg.LLM.BaseDelay = time.Millisecond
	cfg.Database.Driver = "sqlite"
	cfg.Database.Name = filepath.Join(t.TempDir(), "mindflow.db")

	s := NewServer(cfg, zap.NewNop())
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	require.NotNil(t, s.ledger, "ledger should be wired on sqlite")

	base := "http://" + s.httpManager.Addr()
	client := &http.Client{Timeout: 10 * time.Second}

	do := func(method, path string, body any, withKey bool) (*http.Response, handlers.Response) {
		t.Helper()
		var buf bytes.Buffer
		if body != nil {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
		req, err := http.NewRequest(method, base+path, &buf)
		require.NoError(t, err)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if withKey {
			req.Header.Set("X-API-Key", "test-key")
		}
		resp, err := client.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		var env handlers.Response
		_ = json.NewDecoder(resp.Body).Decode(&env)
		return resp, env
	}
	data := func(env handlers.Response, dst any) {
		t.Helper()
		raw, err := json.Marshal(env.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, dst))
	}

	t.Run("probes skip auth", func(t *testing.T) {
		resp, _ := do(http.MethodGet, "/health", nil, false)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

		resp, _ = do(http.MethodGet, "/ready", nil, false)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("api requires key", func(t *testing.T) {
		resp, env := do(http.MethodPost, "/api/v1/learn/turn", handlers.TurnRequest{Input: "hi"}, false)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.NotNil(t, env.Error)
		assert.Equal(t, string(types.ErrUnauthorized), env.Error.Code)
	})

	t.Run("learn turn", func(t *testing.T) {
		resp, env := do(http.MethodPost, "/api/v1/learn/turn", handlers.TurnRequest{Input: "Teach me about photosynthesis"}, true)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var turn handlers.TurnResponse
		data(env, &turn)
		assert.NotEmpty(t, turn.SessionID)
		assert.Equal(t, types.SafetySafe, turn.Response.Status)

		resp, _ = do(http.MethodGet, "/api/v1/learn/session?session_id="+turn.SessionID, nil, true)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		resp, _ = do(http.MethodDelete, "/api/v1/learn/session?session_id="+turn.SessionID, nil, true)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		resp, _ = do(http.MethodGet, "/api/v1/learn/session?session_id="+turn.SessionID, nil, true)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("quiz then leaderboard", func(t *testing.T) {
		score := 1.0
		resp, env := do(http.MethodPost, "/api/v1/quiz/submit", handlers.SubmitQuizRequest{UserID: "ada", Score: &score}, true)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var quiz gamification.QuizResult
		data(env, &quiz)
		assert.Equal(t, 75, quiz.PointsEarned)
		assert.True(t, quiz.IsFirstQuiz)

		resp, env = do(http.MethodGet, "/api/v1/leaderboard", nil, true)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var board []gamification.LeaderboardEntry
		data(env, &board)
		require.Len(t, board, 1)
		assert.Equal(t, "ada", board[0].UserID)
		assert.Equal(t, 1, board[0].Rank)
	})

	t.Run("content routes", func(t *testing.T) {
		// 离线回复不是 JSON 数组，返回占位题，积分照常发放
		resp, env := do(http.MethodPost, "/api/v1/content/interactive-questions",
			handlers.QuestionsRequest{Context: "Photosynthesis", UserID: "grace"}, true)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var questions handlers.QuestionsResponse
		data(env, &questions)
		require.Len(t, questions.Questions, 1)
		assert.Equal(t, gamification.PointValues[gamification.ActivityContentUpload], questions.PointsEarned)

		resp, _ = do(http.MethodPost, "/api/v1/content/process", handlers.ProcessRequest{Notes: "Cells", Mode: "quiz"}, true)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		resp, _ = do(http.MethodPost, "/api/v1/content/explain-more", handlers.ExplainMoreRequest{Context: "ATP"}, true)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("method mismatch", func(t *testing.T) {
		resp, _ := do(http.MethodGet, "/api/v1/learn/turn", nil, true)
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})

	require.NoError(t, s.Shutdown(context.Background()))
	assert.False(t, s.httpManager.IsRunning())
}
