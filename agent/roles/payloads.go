package roles

import "github.com/BaSui01/mindflow/types"

// =============================================================================
// 📨 请求载荷
// =============================================================================

// Payload 每种角色的请求载荷，按 Role 打标
type Payload interface {
	Role() Role
}

// Request 带角色标签的请求
type Request struct {
	Role    Role
	Payload Payload
}

// NewRequest 以载荷自身的角色打标
func NewRequest(p Payload) Request {
	return Request{Role: p.Role(), Payload: p}
}

type ExplorationInput struct {
	LatestContextSummary string `json:"latest_context_summary"`
	UserPrompt           string `json:"user_prompt"`
}

type InteractiveInput struct {
	LatestContextSummary string `json:"latest_context_summary"`
	UserInput            string `json:"user_input"`
}

type QuestionInput struct {
	LatestContextSummary string `json:"latest_context_summary"`
	Subtopic             string `json:"subtopic"`
	BroaderTopic         string `json:"broader_topic"`
}

type AnswerEvalInput struct {
	LatestContextSummary string `json:"latest_context_summary"`
	Subtopic             string `json:"subtopic"`
	BroaderTopic         string `json:"broader_topic"`
	QuestionAsked        string `json:"question_asked"`
	UserQuestionAnswer   string `json:"user_question_answer"`
}

type ClassifierInput struct {
	LatestContextSummary string            `json:"latest_context_summary"`
	UserInput            string            `json:"user_input"`
	AvailableAgents      []AgentDescriptor `json:"available_agents"`
}

type SafetyInput struct {
	LatestContextSummary string `json:"latest_context_summary"`
	UserInput            string `json:"user_input"`
}

// SummaryInput 最近一次角色的输入输出可以为空，序列化为 null
type SummaryInput struct {
	LatestContextSummary string `json:"latest_context_summary"`
	LastAgentInput       any    `json:"last_agent_input"`
	LastAgentOutput      any    `json:"last_agent_output"`
}

type DeepDiveInput struct {
	LatestContextSummary string `json:"latest_context_summary"`
	Subtopic             string `json:"subtopic"`
	BroaderTopic         string `json:"broader_topic"`
}

type FlashcardInput struct {
	LatestContextSummary string `json:"latest_context_summary"`
	BroaderTopic         string `json:"broader_topic"`
	Subtopic             string `json:"subtopic"`
}

type CheatsheetInput struct {
	LatestContextSummary string `json:"latest_context_summary"`
	BroaderTopic         string `json:"broader_topic"`
	Subtopic             string `json:"subtopic"`
}

type MermaidInput struct {
	LatestContextSummary  string   `json:"latest_context_summary"`
	BroaderTopic          string   `json:"broader_topic"`
	Subtopic              string   `json:"subtopic"`
	AvailableDiagramTypes []string `json:"available_diagram_types"`
}

type ConfigInput struct {
	LatestContextSummary string `json:"latest_context_summary"`
	UserInput            string `json:"user_input"`
}

func (ExplorationInput) Role() Role { return RoleExploration }
func (InteractiveInput) Role() Role { return RoleInteractive }
func (QuestionInput) Role() Role    { return RoleQuestion }
func (AnswerEvalInput) Role() Role  { return RoleAnswerEval }
func (ClassifierInput) Role() Role  { return RoleClassifier }
func (SafetyInput) Role() Role      { return RoleSafety }
func (SummaryInput) Role() Role     { return RoleSummary }
func (DeepDiveInput) Role() Role    { return RoleDeepDive }
func (FlashcardInput) Role() Role   { return RoleFlashcard }
func (CheatsheetInput) Role() Role  { return RoleCheatsheet }
func (MermaidInput) Role() Role     { return RoleMermaid }
func (ConfigInput) Role() Role      { return RoleConfig }

// =============================================================================
// 📬 响应载荷
// =============================================================================

// Response 带角色标签的响应，Payload 为对应的 *Output 值类型
type Response struct {
	Role    Role
	Payload any
}

type ExplorationOutput struct {
	Status        types.SafetyStatus `json:"status"`
	Explanation   string             `json:"explanation"`
	Subtopics     []string           `json:"subtopics"`
	Prerequisites []string           `json:"prerequisites"`
	Summary       string             `json:"summary"`
}

type InteractiveOutput struct {
	Response string `json:"response"`
}

type QuestionOutput struct {
	Question      string   `json:"question"`
	Type          string   `json:"type"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

// IsMCQ 选择题
func (q QuestionOutput) IsMCQ() bool { return q.Type == QuestionTypeMCQ }

type AnswerEvalOutput struct {
	IsCorrect bool   `json:"is_correct"`
	Feedback  string `json:"feedback"`
}

type ClassifierOutput struct {
	NextAgent string `json:"next_agent"`
}

type SafetyResult struct {
	Status      types.SafetyStatus `json:"status"`
	Explanation string             `json:"explanation"`
}

type SummaryResult struct {
	Summary         string   `json:"summary"`
	KeyPoints       []string `json:"key_points"`
	Recommendations []string `json:"recommendations"`
}

type DeepDiveOutput struct {
	Breakdown      string  `json:"breakdown"`
	MermaidDiagram string  `json:"mermaid_diagram"`
	Analogy        string  `json:"analogy"`
	CodeExample    *string `json:"code_example,omitempty"`
}

type FlashcardOutput struct {
	CSVContent string `json:"csv_content"`
}

type CheatsheetOutput struct {
	Content string `json:"content"`
}

type MermaidOutput struct {
	MermaidCode string `json:"mermaid_code"`
}

type ConfigOutput struct {
	PromptAddition string `json:"prompt_addition"`
}
