/*
包 metrics 提供基于 Prometheus 的指标采集能力，覆盖
HTTP、LLM 网关、编排、积分、缓存与数据库六个维度。

# 概述

Collector 通过 promauto.With(reg) 注册全部向量指标。NewCollector 使用
默认 Registry，NewCollectorWithRegistry 接受独立 Registry，
便于测试隔离与 promhttp.HandlerFor 暴露。

# 主要能力

  - HTTP 指标：请求总数、耗时、请求/响应体大小，状态码归类为 2xx/3xx/4xx/5xx。
  - LLM 指标：按 provider/model/status 统计调用次数、耗时与 Token 用量。
  - 编排指标：每轮处理角色、会话阶段转换、安全门判定、在线会话数。
  - 积分指标：按活动类型累计发放的积分。
  - 缓存与数据库指标：命中/未命中、连接池 Gauge、查询耗时。
*/
package metrics
