/*
Package migration 管理积分账本（users、point_transactions、badges、
user_badges）的 Schema 版本，基于 golang-migrate。

三种方言的 SQL 通过 embed.FS 内嵌，000002 迁移写入默认徽章种子。
CLI 为 `mindflow migrate` 提供 up/down/reset/steps/goto/force/
version/status/info 子命令。
*/
package migration
