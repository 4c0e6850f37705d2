// Package telemetry 负责 MindFlow 的 OpenTelemetry 启动与关闭。
// 未启用时不创建任何 exporter，全局 Provider 保持 noop。
package telemetry
