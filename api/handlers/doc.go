/*
Package handlers 实现 MindFlow HTTP API 的请求处理器。

# 端点

  - LearnHandler         学习会话：/api/v1/learn/turn、safety、summary、session、ws
  - GamificationHandler  积分账本：users、quiz/submit、points/award、leaderboard
  - HealthHandler        探针：/health、/healthz、/ready、/readyz、/version

所有 JSON 响应使用统一信封 {success, data, error{code,message}, timestamp}。
错误一律经 WriteError 输出，状态码由 types.HTTPStatusOf 决定；非 *types.Error
按内部错误处理，不向客户端透出原始错误文本。

# 会话

学习会话由 orchestrator.Registry 在服务端持有，请求只需携带 session_id。
首轮不带 session_id 时由服务端生成。同一会话的轮次在会话锁内串行执行，
WebSocket 连接与 HTTP 请求可以交替驱动同一会话。

就绪检查通过 RegisterCheck 注册，HandleReady 用 errgroup 并发执行全部检查。
*/
package handlers
