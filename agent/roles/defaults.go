package roles

// 模型回复缺字段（或类型不符）时使用的默认值
const (
	DefaultExplorationExplanation = "Let me help you explore this topic."
	DefaultExplorationSummary     = ""

	DefaultInteractiveResponse = "I understand. Let me help you with that."

	QuestionTypeMCQ              = "MCQ"
	DefaultQuestion              = "What do you know about this topic?"
	DefaultQuestionType          = QuestionTypeMCQ
	DefaultQuestionCorrectAnswer = ""

	DefaultAnswerIsCorrect = false
	DefaultAnswerFeedback  = "Let me help you understand this better."

	DefaultDeepDiveBreakdown      = "Let me explain this concept in detail."
	DefaultDeepDiveMermaidDiagram = ""
	DefaultDeepDiveAnalogy        = ""

	DefaultFlashcardCSV = "question,answer\nWhat is this topic about?,Basic introduction"

	DefaultCheatsheetContent = "Quick Reference Guide:\n- Key points will be listed here"

	DefaultMermaidCode = "graph TD\nA[Topic] --> B[Subtopic]"

	DefaultConfigPromptAddition = "Configuration updated successfully."

	DefaultSummary = "Session summary will be provided here."

	DefaultSafetyExplanation = "Content appears to be safe and appropriate."

	// FallbackAgent 分类器无法给出合法结果时的去向
	FallbackAgent = RoleInteractive
)

// 切片类默认值以函数返回，避免调用方改写共享状态
func defaultSummaryKeyPoints() []string {
	return []string{"Key learning points will be listed here"}
}

func defaultSummaryRecommendations() []string {
	return []string{"Recommendations will be provided here"}
}
