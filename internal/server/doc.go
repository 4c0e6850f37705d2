/*
Package server 管理 MindFlow 的 HTTP 监听生命周期。

serve 命令启动两个 Manager：业务 API 端口与 Prometheus 指标端口。
Start 非阻塞，Wait 在 context 结束（SIGINT/SIGTERM 经
signal.NotifyContext 触发）或服务异常退出时执行优雅关闭。
*/
package server
