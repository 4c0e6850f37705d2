package roles

import (
	"github.com/BaSui01/mindflow/agent/gateway"
	"github.com/BaSui01/mindflow/types"
)

// decoders 每个角色一个显式解码器：字段存在且类型正确则采用，否则取默认值
var decoders = map[Role]func(gateway.Result) any{
	RoleExploration: func(r gateway.Result) any { return decodeExploration(r) },
	RoleInteractive: func(r gateway.Result) any { return decodeInteractive(r) },
	RoleQuestion:    func(r gateway.Result) any { return decodeQuestion(r) },
	RoleAnswerEval:  func(r gateway.Result) any { return decodeAnswerEval(r) },
	RoleClassifier:  func(r gateway.Result) any { return decodeClassifier(r) },
	RoleSafety:      func(r gateway.Result) any { return decodeSafety(r) },
	RoleSummary:     func(r gateway.Result) any { return decodeSummary(r) },
	RoleDeepDive:    func(r gateway.Result) any { return decodeDeepDive(r) },
	RoleFlashcard:   func(r gateway.Result) any { return decodeFlashcard(r) },
	RoleCheatsheet:  func(r gateway.Result) any { return decodeCheatsheet(r) },
	RoleMermaid:     func(r gateway.Result) any { return decodeMermaid(r) },
	RoleConfig:      func(r gateway.Result) any { return decodeConfig(r) },
}

// decodeExploration 仅当归一化结果带有已知的非 SAFE 状态时才透传，
// 审核替换后的回复因此保持 INAPPROPRIATE。
func decodeExploration(r gateway.Result) ExplorationOutput {
	status := types.SafetySafe
	if st, ok := r.Status(); ok && st.Blocking() {
		status = st
	}
	return ExplorationOutput{
		Status:        status,
		Explanation:   r.StringOr("explanation", DefaultExplorationExplanation),
		Subtopics:     r.StringListOr("subtopics", nil),
		Prerequisites: r.StringListOr("prerequisites", nil),
		Summary:       r.StringOr("summary", DefaultExplorationSummary),
	}
}

func decodeInteractive(r gateway.Result) InteractiveOutput {
	return InteractiveOutput{Response: r.StringOr("response", DefaultInteractiveResponse)}
}

func decodeQuestion(r gateway.Result) QuestionOutput {
	return QuestionOutput{
		Question:      r.StringOr("question", DefaultQuestion),
		Type:          r.StringOr("type", DefaultQuestionType),
		Options:       r.StringListOr("options", nil),
		CorrectAnswer: r.StringOr("correct_answer", DefaultQuestionCorrectAnswer),
	}
}

func decodeAnswerEval(r gateway.Result) AnswerEvalOutput {
	correct, ok := r.Bool("is_correct")
	if !ok {
		correct = DefaultAnswerIsCorrect
	}
	return AnswerEvalOutput{
		IsCorrect: correct,
		Feedback:  r.StringOr("feedback", DefaultAnswerFeedback),
	}
}

func decodeClassifier(r gateway.Result) ClassifierOutput {
	return ClassifierOutput{NextAgent: r.StringOr("next_agent", "")}
}

// decodeSafety fail-open：状态缺失或无法识别一律视为 SAFE
func decodeSafety(r gateway.Result) SafetyResult {
	return SafetyResult{
		Status:      types.ParseSafetyStatus(r.StringOr("status", "")),
		Explanation: r.StringOr("explanation", DefaultSafetyExplanation),
	}
}

func decodeSummary(r gateway.Result) SummaryResult {
	return SummaryResult{
		Summary:         r.StringOr("summary", DefaultSummary),
		KeyPoints:       r.StringListOr("key_points", defaultSummaryKeyPoints()),
		Recommendations: r.StringListOr("recommendations", defaultSummaryRecommendations()),
	}
}

func decodeDeepDive(r gateway.Result) DeepDiveOutput {
	out := DeepDiveOutput{
		Breakdown:      r.StringOr("breakdown", DefaultDeepDiveBreakdown),
		MermaidDiagram: r.StringOr("mermaid_diagram", DefaultDeepDiveMermaidDiagram),
		Analogy:        r.StringOr("analogy", DefaultDeepDiveAnalogy),
	}
	if code, ok := r.String("code_example"); ok {
		out.CodeExample = &code
	}
	return out
}

func decodeFlashcard(r gateway.Result) FlashcardOutput {
	return FlashcardOutput{CSVContent: r.StringOr("csv_content", DefaultFlashcardCSV)}
}

func decodeCheatsheet(r gateway.Result) CheatsheetOutput {
	return CheatsheetOutput{Content: r.StringOr("content", DefaultCheatsheetContent)}
}

func decodeMermaid(r gateway.Result) MermaidOutput {
	return MermaidOutput{MermaidCode: r.StringOr("mermaid_code", DefaultMermaidCode)}
}

func decodeConfig(r gateway.Result) ConfigOutput {
	return ConfigOutput{PromptAddition: r.StringOr("prompt_addition", DefaultConfigPromptAddition)}
}
