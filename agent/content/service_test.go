package content_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/mindflow/agent/content"
	"github.com/BaSui01/mindflow/agent/gateway"
	"github.com/BaSui01/mindflow/llm"
	"github.com/BaSui01/mindflow/llm/ratelimit"
	"github.com/BaSui01/mindflow/testutil"
	"github.com/BaSui01/mindflow/testutil/mocks"
)

const questionsReply = "```json\n" + `[
  {"question_text": "What do plants absorb?", "options": ["CO2", "O2", "N2", "He"], "correct_answer": "CO2", "explanation": "## 🌱 Intake\n- stomata", "diagram": "leaf -> CO2"},
  {"question_text": "Where does it happen?", "options": ["Chloroplast", "Nucleus"], "correct_answer": "Chloroplast", "explanation": "- organelle", "diagram": ""},
  {"question_text": "What is released?", "options": ["Oxygen", "Methane"], "correct_answer": "Oxygen", "explanation": "- by-product", "diagram": ""}
]` + "\n```"

func newGateway(p *mocks.MockProvider, model string) *gateway.Gateway {
	return gateway.New(p, gateway.Config{Model: model, BaseDelay: time.Millisecond},
		zap.NewNop(), gateway.WithLimiter(ratelimit.Unlimited()))
}

func newService(p *mocks.MockProvider) *content.Service {
	return content.New(newGateway(p, "lead-model"), zap.NewNop(),
		content.WithLightCompleter(newGateway(p, "light-model")))
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    content.Mode
		wantErr bool
	}{
		{"", content.ModeLearn, false},
		{"learn", content.ModeLearn, false},
		{" Quiz ", content.ModeQuiz, false},
		{"summary", "", true},
	}
	for _, tt := range tests {
		got, err := content.ParseMode(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, content.ErrInvalidMode, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

// =============================================================================
// 🤔 ExplainMore
// =============================================================================

func TestExplainMore_UsesLeadModelAndHeadingFormat(t *testing.T) {
	p := mocks.NewMockProvider().WithResponse("## 🤔 Photosynthesis\n- light")
	svc := newService(p)

	text, err := svc.ExplainMore(testutil.TestContext(t), "why?", "Calvin cycle")
	require.NoError(t, err)
	assert.Equal(t, "## 🤔 Photosynthesis\n- light", text)

	call, ok := p.LastCall()
	require.True(t, ok)
	assert.Equal(t, "lead-model", call.Request.Model)
	assert.Contains(t, call.Instructions(), "Always include at least one diagram")
	assert.True(t, strings.HasPrefix(call.Payload(), "## 🤔 More About This Topic\n"))
	assert.Contains(t, call.Payload(), "Content to answer: Calvin cycle")
}

func TestExplainMore_FallsBackToQuestion(t *testing.T) {
	p := mocks.NewMockProvider().WithResponse("ok")
	svc := newService(p)

	_, err := svc.ExplainMore(testutil.TestContext(t), "What is ATP?", "  ")
	require.NoError(t, err)
	call, _ := p.LastCall()
	assert.Contains(t, call.Payload(), "Content to answer: What is ATP?")

	_, err = svc.ExplainMore(testutil.TestContext(t), "", "")
	assert.ErrorIs(t, err, content.ErrEmptyContent)
	assert.Equal(t, 1, p.CallCount())
}

func TestExplainMore_ReportsGatewayFailure(t *testing.T) {
	p := mocks.NewMockProvider().WithError(&llm.Error{Code: llm.ErrUnauthorized, Message: "bad key"})
	_, err := newService(p).ExplainMore(testutil.TestContext(t), "", "topic")
	assert.ErrorIs(t, err, gateway.ErrNoCompletion)
}

// =============================================================================
// ❓ InteractiveQuestions
// =============================================================================

func TestInteractiveQuestions_ParsesFencedArray(t *testing.T) {
	p := mocks.NewMockProvider().WithPromptRule("educational quiz generator", mocks.Text(questionsReply))
	svc := newService(p)

	questions, err := svc.InteractiveQuestions(testutil.TestContext(t), "Photosynthesis")
	require.NoError(t, err)
	require.Len(t, questions, content.QuestionCount)
	assert.Equal(t, "What do plants absorb?", questions[0].QuestionText)
	assert.Equal(t, []string{"CO2", "O2", "N2", "He"}, questions[0].Options)
	assert.Equal(t, "CO2", questions[0].CorrectAnswer)
	assert.Equal(t, "leaf -> CO2", questions[0].Diagram)

	call, _ := p.LastCall()
	assert.Equal(t, "light-model", call.Request.Model)
	assert.Contains(t, call.Payload(), "generate exactly 3 multiple-choice questions")
	assert.Contains(t, call.Payload(), "Topic: Photosynthesis")
}

func TestInteractiveQuestions_PlaceholderOnBadReply(t *testing.T) {
	replies := map[string]*mocks.MockProvider{
		"prose":        mocks.NewMockProvider().WithResponse("Here are some questions about plants."),
		"object":       mocks.NewMockProvider().WithResponse(`{"question_text": "single"}`),
		"empty array":  mocks.NewMockProvider().WithResponse("[]"),
		"broken json":  mocks.NewMockProvider().WithResponse(`[{"question_text": }]`),
		"gateway down": mocks.NewMockProvider().WithError(&llm.Error{Code: llm.ErrUnauthorized, Message: "bad key"}),
	}
	for name, p := range replies {
		t.Run(name, func(t *testing.T) {
			questions, err := newService(p).InteractiveQuestions(testutil.TestContext(t), "Cells")
			require.NoError(t, err)
			assert.Equal(t, []content.Question{content.PlaceholderQuestion()}, questions)
		})
	}
}

func TestInteractiveQuestions_EmptyTopic(t *testing.T) {
	p := mocks.NewMockProvider()
	_, err := newService(p).InteractiveQuestions(testutil.TestContext(t), " ")
	assert.ErrorIs(t, err, content.ErrEmptyContent)
	assert.Zero(t, p.CallCount())
}

func TestNew_LightDefaultsToLead(t *testing.T) {
	p := mocks.NewMockProvider().WithResponse(questionsReply)
	svc := content.New(newGateway(p, "lead-model"), nil)

	_, err := svc.InteractiveQuestions(testutil.TestContext(t), "Cells")
	require.NoError(t, err)
	call, _ := p.LastCall()
	assert.Equal(t, "lead-model", call.Request.Model)
}

// =============================================================================
// 📒 Process
// =============================================================================

func TestProcess_Learn(t *testing.T) {
	p := mocks.NewMockProvider().WithPromptRule("## 📘 AI Answer", mocks.Text("## 📘 Cells\n- membrane"))
	got, err := newService(p).Process(testutil.TestContext(t), "  Cells have membranes.  ", content.ModeLearn)
	require.NoError(t, err)

	assert.Equal(t, "## 📘 Cells\n- membrane", got.Response)
	assert.Equal(t, content.ModeLearn, got.Mode)
	assert.Equal(t, len("Cells have membranes."), got.ContentLength)
	assert.False(t, got.Fallback)

	call, _ := p.LastCall()
	assert.Equal(t, "light-model", call.Request.Model)
	assert.Contains(t, call.Payload(), "Content to answer: Cells have membranes.")
}

func TestProcess_QuizStripsFences(t *testing.T) {
	reply := "**QUIZ START**\n**Diagram:**\n```mermaid\nflowchart TD\n    A --> B\n```\n---\n**QUIZ END**"
	p := mocks.NewMockProvider().WithPromptRule("Content to create quiz from: Mitosis", mocks.Text(reply))

	got, err := newService(p).Process(testutil.TestContext(t), "Mitosis", content.ModeQuiz)
	require.NoError(t, err)
	assert.Equal(t, "**QUIZ START**\n**Diagram:**\nflowchart TD\n    A --> B\n\n**QUIZ END**", got.Response)
	assert.False(t, got.Fallback)
}

func TestProcess_OfflineFallback(t *testing.T) {
	notes := strings.Repeat("Enzymes lower activation energy. ", 10)
	p := mocks.NewMockProvider().WithError(&llm.Error{Code: llm.ErrUnauthorized, Message: "bad key"})
	svc := newService(p)

	learn, err := svc.Process(testutil.TestContext(t), notes, content.ModeLearn)
	require.NoError(t, err)
	assert.True(t, learn.Fallback)
	assert.Contains(t, learn.Response, "## 📘 AI Answer")
	assert.Contains(t, learn.Response, "...")

	quiz, err := svc.Process(testutil.TestContext(t), "Short notes", content.ModeQuiz)
	require.NoError(t, err)
	assert.True(t, quiz.Fallback)
	assert.True(t, strings.HasPrefix(quiz.Response, "**QUIZ START**"))
	assert.Contains(t, quiz.Response, `"Short notes"`)
}

func TestProcess_FilteredReturnsApology(t *testing.T) {
	p := mocks.NewMockProvider().WithError(&llm.Error{Code: llm.ErrContentFiltered, Message: "blocked"})
	got, err := newService(p).Process(testutil.TestContext(t), "notes", content.ModeLearn)
	require.NoError(t, err)
	assert.True(t, got.Fallback)
	assert.Equal(t, gateway.ApologyMessage, got.Response)
}

func TestProcess_Validation(t *testing.T) {
	p := mocks.NewMockProvider()
	svc := newService(p)

	_, err := svc.Process(testutil.TestContext(t), "\n\t", content.ModeLearn)
	assert.ErrorIs(t, err, content.ErrEmptyContent)
	_, err = svc.Process(testutil.TestContext(t), "notes", content.Mode("podcast"))
	assert.ErrorIs(t, err, content.ErrInvalidMode)
	assert.Zero(t, p.CallCount())
}
