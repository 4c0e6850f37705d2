// Copyright 2026 MindFlow Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license.

/*
Package testutil 提供 MindFlow 测试的共享工具和辅助函数。

# 核心能力

  - 上下文辅助: TestContext / CancelledContext，
    自动注册 Cleanup 防止泄漏
  - 断言工具: AssertEventuallyTrue / WaitFor
  - 数据工具: MustParseJSON

# 子包

  - testutil/mocks: MockProvider（LLM Provider），支持按角色指令路由的
    脚本化回复、错误注入与调用记录
  - testutil/fixtures: 各角色的典型 LLM 原始回复样例

# 使用示例

	provider := mocks.NewMockProvider().
		WithRule("Safety Agent", mocks.Text(fixtures.SafetySafe)).
		WithRule("Classifier Agent", mocks.Text(fixtures.Classify("exploration")))
*/
package testutil
