/*
Package gemini 通过官方 google.golang.org/genai SDK 接入 Google Gemini。

安全拦截（PromptFeedback.BlockReason 或候选 FinishReason 为 SAFETY）
统一转成 llm.ErrContentFiltered，上层据此返回道歉话术而不是重试。
*/
package gemini
