/*
Package gateway 是角色层访问 LLM 的唯一出口。

# 核心组件

  - Normalize：把模型原始文本宽松解析为 Result，并对非安全请求做拒答短语审核
  - Gateway：组装三段式消息（指令 / 确认 / JSON 载荷），限流、指数退避重试后归一化

Gateway.Call 不返回错误：内容拦截折算为 ApologyResult，
其余失败折算为 ProcessingErrorResult，原始错误只进日志与指标。
*/
package gateway
