/*
包 llm 定义 MindFlow 与大模型后端之间的最小契约。

# 核心类型

  - Provider：Completion 与 HealthCheck 两个方法，gemini 与 langchain
    两个子包各自实现。
  - ChatRequest / ChatResponse：只保留三段式对话需要的字段，
    FirstText 取第一条候选的文本。
  - Error：带 ErrorCode、HTTP 状态与可重试标记的统一错误，
    IsRetryable 与 IsContentFiltered 供网关决定重试或降级。
  - FallbackProvider：按顺序尝试多个后端，内容过滤不切换后端，
    其余错误依次降级。

# 子包

  - providers/gemini：Google genai SDK
  - providers/langchain：langchaingo 的 OpenAI 兼容客户端（GitHub Models）
  - ratelimit：请求最小间隔
  - retry：指数退避重试
  - tokenizer：tiktoken 计数与估算回退
*/
package llm
