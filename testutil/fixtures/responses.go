// =============================================================================
// 📦 测试数据工厂 - LLM 原始回复
// =============================================================================
// 提供各角色的典型 LLM 文本回复，部分故意夹带 markdown 围栏或前后缀，
// 用于覆盖归一化器的容错路径。
// =============================================================================
package fixtures

import (
	"time"

	"github.com/BaSui01/mindflow/llm"
)

// =============================================================================
// 🛡️ 安全门
// =============================================================================

const (
	SafetySafe      = `{"status": "SAFE", "explanation": "Educational question about biology."}`
	SafetyDangerous = `{"status": "DANGEROUS", "explanation": "illegal activity"}`
	SafetyUnknown   = `{"status": "UNSURE", "explanation": "hard to tell"}`
	SafetyLowercase = `{"status": "needs_help", "explanation": "The learner sounds distressed."}`
)

// =============================================================================
// 🧭 分类器
// =============================================================================

// Classify 返回指定 next_agent 的分类器回复
func Classify(agent string) string {
	return `{"next_agent": "` + agent + `"}`
}

// =============================================================================
// 📚 内容角色
// =============================================================================

// ExplorationPhotosynthesis 带 markdown 围栏的探索回复
const ExplorationPhotosynthesis = "```json\n" + `{
  "explanation": "Photosynthesis converts light energy into chemical energy stored in glucose.",
  "subtopics": ["Light-dependent reactions", "Calvin cycle", "Chlorophyll"],
  "prerequisites": ["Basic cell biology"],
  "summary": "Plants turn light, water and CO2 into sugar and oxygen."
}` + "\n```"

// QuestionChlorophyllMCQ 叶绿素选择题
const QuestionChlorophyllMCQ = `Here you go: {
  "question": "Which pigment gives plants their green color?",
  "type": "MCQ",
  "options": ["A) Carotene", "B) Chlorophyll", "C) Xanthophyll", "D) Anthocyanin"],
  "correct_answer": "B"
}`

// QuestionShortAnswer 简答题
const QuestionShortAnswer = `{"question": "Describe the role of chlorophyll.", "type": "SHORT_ANSWER", "options": ["ignored"], "correct_answer": "absorbs light"}`

const (
	AnswerCorrect     = `{"is_correct": true, "feedback": "Correct! Chlorophyll reflects green light."}`
	AnswerIncorrect   = `{"is_correct": false, "feedback": "Not quite. Think about which pigment reflects green."}`
	InteractiveReply  = `{"response": "Great question! Leaves change color in autumn as chlorophyll breaks down."}`
	DeepDiveReply     = `{"breakdown": "Step 1: photons excite electrons.", "mermaid_diagram": "graph TD\nA-->B", "analogy": "Like a solar panel.", "code_example": "print('light')"}`
	FlashcardReply    = `{"csv_content": "question,answer\nWhat is ATP?,Energy currency"}`
	CheatsheetReply   = `{"content": "Photosynthesis: 6CO2 + 6H2O -> C6H12O6 + 6O2"}`
	MermaidReply      = `{"mermaid_code": "graph TD\nSun-->Leaf"}`
	ConfigReply       = `{"prompt_addition": "Use simpler vocabulary."}`
	SummaryReply      = `{"summary": "You explored photosynthesis.", "key_points": ["Light reactions", "Calvin cycle"], "recommendations": ["Review chlorophyll"]}`
	ModeratedRefusal  = `{"explanation": "I'm sorry, but I cannot help with that request."}`
	NotJSON           = "Sure! Photosynthesis is how plants make food."
	EmptyObject       = `{}`
	WrongTypedFields  = `{"explanation": 42, "subtopics": "not a list", "summary": null}`
)

// =============================================================================
// 🎯 ChatResponse 工厂
// =============================================================================

// SimpleResponse 返回简单的文本响应
func SimpleResponse(content string) *llm.ChatResponse {
	return &llm.ChatResponse{
		ID:       "resp-001",
		Provider: "mock",
		Model:    "mock-model",
		Choices: []llm.ChatChoice{{
			Index:        0,
			FinishReason: "stop",
			Message:      llm.Message{Role: llm.RoleAssistant, Content: content},
		}},
		Usage: llm.ChatUsage{
			PromptTokens:     10,
			CompletionTokens: 20,
			TotalTokens:      30,
		},
		CreatedAt: time.Now(),
	}
}
