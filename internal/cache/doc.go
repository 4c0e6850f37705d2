/*
包 cache 提供基于 Redis 的缓存管理能力，服务排行榜与用户统计等读多写少的数据。

# 核心类型

  - Manager：持有 go-redis 客户端，提供 Get/Set/Delete/DeletePrefix 等基础操作、
    GetJSON/SetJSON 序列化方法，以及合并并发回源的 GetOrLoadJSON。
  - Config：地址、密码、连接池大小、默认 TTL 与健康检查间隔。
  - HitRecorder：命中/未命中上报接口，由 internal/metrics.Collector 实现。

# 错误语义

未命中返回 ErrCacheMiss，可用 IsCacheMiss 判断；Manager 关闭后返回 ErrClosed。
*/
package cache
