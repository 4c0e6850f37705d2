// Copyright (c) MindFlow Authors.
// Licensed under the MIT License.

/*
包 database 负责积分账本使用的关系库：按驱动打开 GORM 连接，
并通过 PoolManager 管理连接池、健康检查与事务重试。

# 核心类型

  - Open：按 config.DatabaseConfig 选择 postgres / mysql / sqlite 方言。
  - PoolManager：持有 GORM DB 与底层 sql.DB，提供 Ping、Stats、Close，
    以及 WithTransaction / WithTransactionRetry。
  - PoolConfig：最大连接数、空闲连接数、生命周期与健康检查间隔。
  - StatsRecorder：连接数上报接口，由 internal/metrics.Collector 实现。
  - InstrumentQueries：在 GORM 回调链上为增删改查计时，经 QueryRecorder 上报。

# 事务重试

死锁、序列化失败、锁超时与连接中断视为可重试，按 100ms 起的指数退避重试。
*/
package database
