// Copyright (c) MindFlow Authors.
// Licensed under the MIT License.

/*
Package main 提供 MindFlow 服务端程序入口。

# 概述

cmd/mindflow 组装学习会话编排、积分账本与可观测性组件，提供 HTTP / WebSocket
API、终端对话、数据库迁移、健康检查和版本查询等子命令。

# 核心类型

  - Server：持有会话注册表、账本、缓存与连接池，管理 API 与 Metrics 双端口及优雅关闭
  - Middleware：HTTP 中间件函数签名 func(http.Handler) http.Handler
  - statusRecorder：捕获状态码与响应大小，并通过 Unwrap 暴露底层 Writer

# 主要能力

  - 子命令：serve、chat、migrate、health、version
  - 中间件链：Recovery、RequestID、SecurityHeaders、RequestLogger、Metrics、
    OTelTracing、CORS、按 IP 限流，以及 APIKeyAuth 或 JWTAuth
  - LLM 后端：GitHub Models 与 Gemini 组成降级链，mock 为离线模式
  - 启动时执行数据库迁移并写入徽章定义
  - 构建注入：Version、BuildTime、GitCommit 通过 ldflags 设置
*/
package main
