/*
Package content 提供会话之外的三项学习内容生成：

  - ExplainMore：针对一段上下文生成 "More About This Topic" 讲解；
  - InteractiveQuestions：用轻量模型生成三道带讲解与图示的选择题；
  - Process：把学习笔记整理成讲解（learn）或测验（quiz）。

三者都输出 markdown 自由文本或 JSON 数组，走网关的 Complete 通道，
与角色层共用限流、重试与指标。选择题解析失败时返回占位题，
笔记整理在模型不可用时返回离线兜底文本。
*/
package content
