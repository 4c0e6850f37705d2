/*
Package roles 定义 MindFlow 的角色契约层。

每个角色（exploration、question、safety 等）拥有固定的系统指令、
带标签的请求载荷与响应载荷。Agents 把请求交给网关，再用显式解码器
按字段填充默认值，模型回复缺字段或类型不符都不会向上抛错。

安全门 CheckSafety 采用 fail-open 策略：未知状态按 SAFE 放行。
分类器 Classify 只接受白名单内的角色名，其余一律回落到 interactive。
*/
package roles
