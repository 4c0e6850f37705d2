// Copyright (c) MindFlow Authors.
// Licensed under the MIT License.

/*
Package types 提供 MindFlow 的全局共享类型定义。

# 概述

types 是最底层的公共包，不依赖任何内部包，为 agent、gamification、
api 等上层模块提供统一的类型契约。

# 核心类型

  - Error / ErrorCode：结构化错误体系，含 HTTP 状态码与 Retryable 标记
  - SafetyStatus：安全判定（SAFE < NEEDS_HELP < DANGEROUS < INAPPROPRIATE）

# 主要能力

  - Context 传播：WithTraceID / WithUserID / WithSessionID / WithRoles
  - 错误工具链：AsError / IsErrorCode / IsRetryable / HTTPStatusOf
  - 安全判定解析：ParseSafetyStatus（未知值 fail-open 为 SAFE）
*/
package types
