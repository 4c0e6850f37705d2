/*
Package orchestrator 串联安全门、分类器与各角色，驱动一次学习对话轮次。

# 轮次流程

每轮严格按以下顺序执行：

 1. 应用 session.Overrides（恢复 topic/subtopic/history）
 2. 安全门：非 SAFE 直接返回，不再调用其它角色
 3. 分类器：始终调用；若存在待回答的问题，其结果被丢弃
 4. 待作答时转入 AnswerEval 并清除等待标记
 5. 否则按分类结果分发到具体角色

HandleTurn 不返回 error，所有失败都已在网关与角色层折叠为默认值。

# 会话注册表

Orchestrator 只服务单个会话、不做并发保护。Registry 按会话 ID 持有实例，
以会话级互斥串行化同一会话的轮次，并由后台 janitor 回收空闲会话。
*/
package orchestrator
