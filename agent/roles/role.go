package roles

// Role 封闭的角色枚举，取值即线上协议中的角色名
type Role string

const (
	RoleExploration Role = "exploration"
	RoleInteractive Role = "interactive"
	RoleQuestion    Role = "question"
	RoleAnswerEval  Role = "answerEval"
	RoleClassifier  Role = "classifier"
	RoleSafety      Role = "safety"
	RoleSummary     Role = "summary"
	RoleDeepDive    Role = "deepDive"
	RoleFlashcard   Role = "flashcard"
	RoleCheatsheet  Role = "cheatsheet"
	RoleMermaid     Role = "mermaid"
	RoleConfig      Role = "config"
)

// AllRoles 全部角色，顺序固定
var AllRoles = []Role{
	RoleExploration, RoleInteractive, RoleQuestion, RoleAnswerEval,
	RoleClassifier, RoleSafety, RoleSummary, RoleDeepDive,
	RoleFlashcard, RoleCheatsheet, RoleMermaid, RoleConfig,
}

// ParseRole 精确匹配角色名
func ParseRole(s string) (Role, bool) {
	for _, r := range AllRoles {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

func (r Role) String() string { return string(r) }

// AgentDescriptor 分类器可选的目标
type AgentDescriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// DefaultAgents 分类器的白名单，顺序即提示词中的顺序
func DefaultAgents() []AgentDescriptor {
	return []AgentDescriptor{
		{Name: string(RoleExploration), Description: "Explores new topics"},
		{Name: string(RoleInteractive), Description: "Handles questions and answers"},
		{Name: string(RoleQuestion), Description: "Generates quiz questions"},
		{Name: string(RoleAnswerEval), Description: "Evaluates answers to questions"},
		{Name: string(RoleDeepDive), Description: "Provides detailed concept breakdowns"},
		{Name: string(RoleFlashcard), Description: "Creates study flashcards"},
		{Name: string(RoleCheatsheet), Description: "Generates quick reference guides"},
		{Name: string(RoleMermaid), Description: "Creates visual diagrams"},
		{Name: string(RoleConfig), Description: "Handles system configuration"},
	}
}

// DiagramTypes Mermaid 角色可选的图类型
var DiagramTypes = []string{"graph", "flowchart", "sequence", "class", "state"}
