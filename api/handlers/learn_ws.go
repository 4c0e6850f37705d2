package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"

	"github.com/BaSui01/mindflow/agent/orchestrator"
	"github.com/BaSui01/mindflow/agent/session"
	"github.com/BaSui01/mindflow/types"
)

// =============================================================================
// 🔌 WebSocket 学习会话
// =============================================================================
// 一条连接绑定一个会话。客户端每发一条 {input} 即一轮对话，服务端按序回一帧。
// =============================================================================

// WSMessage 客户端帧
type WSMessage struct {
	Input          string `json:"input"`
	CurrentTopic   string `json:"current_topic,omitempty"`
	ActiveSubtopic string `json:"active_subtopic,omitempty"`
}

// WSFrame 服务端帧，Response 与 Error 二选一
type WSFrame struct {
	SessionID string                 `json:"session_id"`
	Response  *orchestrator.Response `json:"response,omitempty"`
	Error     *ErrorInfo             `json:"error,omitempty"`
}

// HandleWebSocket GET /api/v1/learn/ws?session_id=
func (h *LearnHandler) HandleWebSocket(originPatterns []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// 先取会话，失败时仍可以普通 HTTP 响应报错。连接存续期间会话保持钉住。
		sess, release, err := h.sessions.Acquire(r.URL.Query().Get("session_id"))
		if err != nil {
			WriteError(w, registryError(err), h.logger)
			return
		}
		defer release()

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: originPatterns})
		if err != nil {
			// Accept 已写出错误响应
			h.logger.Debug("websocket accept failed", zap.Error(err))
			return
		}
		defer conn.CloseNow()
		conn.SetReadLimit(maxBodyBytes)

		ctx := types.WithSessionID(r.Context(), sess.ID)
		log := h.logger.With(zap.String("session_id", sess.ID))
		log.Debug("websocket session opened")

		if err := h.serveConn(ctx, conn, sess); err != nil {
			log.Warn("websocket session aborted", zap.Error(err))
			return
		}
		conn.Close(websocket.StatusNormalClosure, "")
		log.Debug("websocket session closed")
	}
}

func (h *LearnHandler) serveConn(ctx context.Context, conn *websocket.Conn, sess *orchestrator.Session) error {
	for {
		var msg WSMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if isClientClose(err) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		frame := WSFrame{SessionID: sess.ID}
		if strings.TrimSpace(msg.Input) == "" {
			frame.Error = &ErrorInfo{Code: string(types.ErrInvalidRequest), Message: "input is required"}
		} else {
			overrides := session.Overrides{
				CurrentTopic:   msg.CurrentTopic,
				ActiveSubtopic: msg.ActiveSubtopic,
				Continue:       true,
			}
			sess.Do(func(o *orchestrator.Orchestrator) {
				resp := o.HandleTurn(ctx, msg.Input, overrides)
				frame.Response = &resp
			})
		}

		if err := wsjson.Write(ctx, conn, frame); err != nil {
			if isClientClose(err) {
				return nil
			}
			return err
		}
	}
}

func isClientClose(err error) bool {
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	}
	return false
}
