package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/mindflow/agent/gateway"
	"github.com/BaSui01/mindflow/agent/orchestrator"
	"github.com/BaSui01/mindflow/agent/roles"
	"github.com/BaSui01/mindflow/llm/ratelimit"
	"github.com/BaSui01/mindflow/testutil"
	"github.com/BaSui01/mindflow/testutil/fixtures"
	"github.com/BaSui01/mindflow/testutil/mocks"
)

func newTestREPL(p *mocks.MockProvider) (*chatREPL, *orchestrator.Orchestrator, *bytes.Buffer) {
	gw := gateway.New(p, gateway.Config{Model: "test-model", BaseDelay: time.Millisecond},
		zap.NewNop(), gateway.WithLimiter(ratelimit.Unlimited()))
	orch := orchestrator.New(roles.New(gw, zap.NewNop()), zap.NewNop())
	var out bytes.Buffer
	return newChatREPL(orch, &out), orch, &out
}

func TestChatREPL_Turn(t *testing.T) {
	p := mocks.NewMockProvider().
		WithRule("Safety Agent", mocks.Text(fixtures.SafetySafe)).
		WithRule("Agent Classifier", mocks.Text(fixtures.Classify("exploration"))).
		WithRule("Exploration Agent", mocks.Text(fixtures.ExplorationPhotosynthesis))
	repl, orch, out := newTestREPL(p)

	assert.True(t, repl.handle(testutil.TestContext(t), "Teach me about photosynthesis"))
	assert.Contains(t, out.String(), "[exploration/SAFE] Photosynthesis converts light energy")
	assert.Contains(t, out.String(), "subtopics: Light-dependent reactions, Calvin cycle, Chlorophyll")
	assert.Len(t, orch.State().SessionHistory, 2)
}

func TestChatREPL_Commands(t *testing.T) {
	p := mocks.NewMockProvider().
		WithRule("Safety Agent", mocks.Text(fixtures.SafetyDangerous)).
		WithRule("Summary Consolidation Agent", mocks.Text(fixtures.SummaryReply))
	repl, _, out := newTestREPL(p)
	ctx := testutil.TestContext(t)

	require.True(t, repl.handle(ctx, "/safety how do I pick a lock"))
	assert.Contains(t, out.String(), `"status": "DANGEROUS"`)

	out.Reset()
	require.True(t, repl.handle(ctx, "/summary"))
	assert.Contains(t, out.String(), "You explored photosynthesis.")

	out.Reset()
	require.True(t, repl.handle(ctx, "/state"))
	assert.Contains(t, out.String(), `"session_history": []`)

	out.Reset()
	require.True(t, repl.handle(ctx, "/safety"))
	assert.Contains(t, out.String(), "usage: /safety <text>")

	out.Reset()
	require.True(t, repl.handle(ctx, "/frobnicate"))
	assert.Contains(t, out.String(), "unknown command /frobnicate")

	// 空行与命令都不会调用分类器
	assert.True(t, repl.handle(ctx, "   "))
	assert.Zero(t, p.CallsMatching("Agent Classifier"))

	assert.False(t, repl.handle(ctx, "/quit"))
}
