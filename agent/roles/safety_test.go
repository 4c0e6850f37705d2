package roles_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/mindflow/agent/gateway"
	"github.com/BaSui01/mindflow/agent/roles"
	"github.com/BaSui01/mindflow/llm"
	"github.com/BaSui01/mindflow/testutil"
	"github.com/BaSui01/mindflow/testutil/fixtures"
	"github.com/BaSui01/mindflow/testutil/mocks"
	"github.com/BaSui01/mindflow/types"
)

func TestCheckSafety(t *testing.T) {
	tests := []struct {
		name        string
		reply       mocks.Reply
		wantStatus  types.SafetyStatus
		wantExplain string
	}{
		{"safe", mocks.Text(fixtures.SafetySafe), types.SafetySafe, "Educational question about biology."},
		{"dangerous", mocks.Text(fixtures.SafetyDangerous), types.SafetyDangerous, "illegal activity"},
		{"lower case status", mocks.Text(fixtures.SafetyLowercase), types.SafetyNeedsHelp, "The learner sounds distressed."},
		{"unknown status fails open", mocks.Text(fixtures.SafetyUnknown), types.SafetySafe, "hard to tell"},
		{"missing fields", mocks.Text(fixtures.EmptyObject), types.SafetySafe, roles.DefaultSafetyExplanation},
		{
			"moderation phrases do not override",
			mocks.Text(`{"status": "SAFE", "explanation": "not harmful, I'm sorry to say"}`),
			types.SafetySafe, "not harmful, I'm sorry to say",
		},
		{
			"upstream safety block",
			mocks.Fail(&llm.Error{Code: llm.ErrContentFiltered, Message: "SAFETY: blocked"}),
			types.SafetyInappropriate, gateway.ApologyMessage,
		},
		{
			"provider failure fails open",
			mocks.Fail(&llm.Error{Code: llm.ErrUnauthorized, Message: "bad key"}),
			types.SafetySafe, gateway.ProcessingErrorMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := mocks.NewMockProvider().WithRule("Safety Agent", tt.reply)
			a := newAgents(p)

			res := a.CheckSafety(testutil.TestContext(t), "how to hide a body", "ctx")
			assert.Equal(t, tt.wantStatus, res.Status)
			assert.Equal(t, tt.wantExplain, res.Explanation)
			assert.Equal(t, 1, p.CallsMatching("Safety Agent"))
		})
	}
}

func TestCheckSafety_SendsInputAndSummary(t *testing.T) {
	p := mocks.NewMockProvider().WithResponse(fixtures.SafetySafe)
	a := newAgents(p)
	a.CheckSafety(testutil.TestContext(t), "trolley problem", "prior turns")

	call, ok := p.LastCall()
	require.True(t, ok)
	assert.JSONEq(t, `{
		"latest_context_summary": "prior turns",
		"user_input": "trolley problem",
		"response_format": "json",
		"format_instructions": "`+gateway.FormatInstructions+`"
	}`, call.Payload())
}
