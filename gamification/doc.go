// Copyright (c) MindFlow Authors.
// Licensed under the MIT License.

/*
Package gamification 维护学习者的积分账本：积分流水、等级、连续学习天数、
徽章与排行榜。

# 规则

  - 等级 = total_points/100 + 1
  - 测验得分 >= 1.0 记 perfect_quiz（25 分），>= 0.8 记 20 分，>= 0.6 记 10 分，
    其余 15 分；首次测验额外 50 分
  - 徽章由 BadgeRule 的类型化判定决定，计数全部从流水推导

# 存储

表结构由 internal/migration 管理，模型见 models.go。每次发放在一个事务内
完成，生产环境经 database.PoolManager 的重试事务执行。排行榜结果缓存在
Redis（internal/cache），任何发放都会清除 leaderboard: 前缀下的缓存。

编排器不依赖本包，积分发放由 HTTP 层在学习事件之后调用。
*/
package gamification
