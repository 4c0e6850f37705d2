package roles

import (
	"context"

	"go.uber.org/zap"

	"github.com/BaSui01/mindflow/agent/gateway"
)

// Caller 角色层唯一依赖的网关能力，*gateway.Gateway 满足该接口
type Caller interface {
	Call(ctx context.Context, req gateway.Request) gateway.Result
}

// Agents 所有角色的调用入口。
// 每个角色：组装请求 → 携带固定指令调用网关 → 按字段默认值解码。
type Agents struct {
	gw     Caller
	logger *zap.Logger
}

// New 创建角色层
func New(gw Caller, logger *zap.Logger) *Agents {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Agents{
		gw:     gw,
		logger: logger.With(zap.String("component", "agent_roles")),
	}
}

// Invoke 按角色分发请求，返回同角色标签的响应。
// 未知角色不会访问网关，Payload 为 nil。
func (a *Agents) Invoke(ctx context.Context, req Request) Response {
	decode, ok := decoders[req.Role]
	if !ok {
		a.logger.Warn("unknown role", zap.String("role", string(req.Role)))
		return Response{Role: req.Role}
	}

	result := a.gw.Call(ctx, gateway.Request{
		Role:          string(req.Role),
		Instructions:  req.Role.Instructions(),
		Payload:       req.Payload,
		SafetyRequest: req.Role == RoleSafety,
	})
	a.logger.Debug("role invoked", zap.String("role", string(req.Role)), zap.Int("fields", len(result)))
	return Response{Role: req.Role, Payload: decode(result)}
}

// Exploration 把学习请求拆成子主题与前置知识，回复带非 SAFE 状态时透传
func (a *Agents) Exploration(ctx context.Context, in ExplorationInput) ExplorationOutput {
	return a.Invoke(ctx, NewRequest(in)).Payload.(ExplorationOutput)
}

// Interactive 自由问答，模型未给出 response 时使用默认话术
func (a *Agents) Interactive(ctx context.Context, in InteractiveInput) InteractiveOutput {
	return a.Invoke(ctx, NewRequest(in)).Payload.(InteractiveOutput)
}

// Question 按当前子主题出一道选择题
func (a *Agents) Question(ctx context.Context, in QuestionInput) QuestionOutput {
	return a.Invoke(ctx, NewRequest(in)).Payload.(QuestionOutput)
}

// AnswerEval 判定学习者对上一题的作答并给出反馈
func (a *Agents) AnswerEval(ctx context.Context, in AnswerEvalInput) AnswerEvalOutput {
	return a.Invoke(ctx, NewRequest(in)).Payload.(AnswerEvalOutput)
}

// Summary 汇总会话历史与最近一轮的输入输出
func (a *Agents) Summary(ctx context.Context, in SummaryInput) SummaryResult {
	return a.Invoke(ctx, NewRequest(in)).Payload.(SummaryResult)
}

// DeepDive 深入讲解子主题，附 Mermaid 图示、类比与可选代码示例
func (a *Agents) DeepDive(ctx context.Context, in DeepDiveInput) DeepDiveOutput {
	return a.Invoke(ctx, NewRequest(in)).Payload.(DeepDiveOutput)
}

// Flashcard 生成 question,answer 两列的 CSV 闪卡
func (a *Agents) Flashcard(ctx context.Context, in FlashcardInput) FlashcardOutput {
	return a.Invoke(ctx, NewRequest(in)).Payload.(FlashcardOutput)
}

// Cheatsheet 生成速查表
func (a *Agents) Cheatsheet(ctx context.Context, in CheatsheetInput) CheatsheetOutput {
	return a.Invoke(ctx, NewRequest(in)).Payload.(CheatsheetOutput)
}

// Mermaid 未指定图类型时使用 DiagramTypes
func (a *Agents) Mermaid(ctx context.Context, in MermaidInput) MermaidOutput {
	if len(in.AvailableDiagramTypes) == 0 {
		in.AvailableDiagramTypes = append([]string{}, DiagramTypes...)
	}
	return a.Invoke(ctx, NewRequest(in)).Payload.(MermaidOutput)
}

// Config 把学习者的偏好设置转成追加到提示词的指令
func (a *Agents) Config(ctx context.Context, in ConfigInput) ConfigOutput {
	return a.Invoke(ctx, NewRequest(in)).Payload.(ConfigOutput)
}
