package orchestrator

import (
	"context"

	"go.uber.org/zap"

	"github.com/BaSui01/mindflow/agent/roles"
	"github.com/BaSui01/mindflow/types"
)

// FlashcardPreamble 闪卡内容前缀
const FlashcardPreamble = "Here are your study flashcards\n\n"

// turnInput 分发阶段各角色共用的输入
type turnInput struct {
	input          string
	contextSummary string
	topic          string
	subtopic       string
}

type handler func(o *Orchestrator, ctx context.Context, in turnInput) Response

// handlers 分类结果到角色处理函数的映射，未命中时走 exploration
var handlers = map[roles.Role]handler{
	roles.RoleExploration: (*Orchestrator).explore,
	roles.RoleInteractive: (*Orchestrator).interact,
	roles.RoleQuestion:    (*Orchestrator).ask,
	roles.RoleDeepDive:    (*Orchestrator).deepDive,
	roles.RoleFlashcard:   (*Orchestrator).flashcards,
	roles.RoleCheatsheet:  (*Orchestrator).cheatsheet,
	roles.RoleMermaid:     (*Orchestrator).diagram,
	roles.RoleConfig:      (*Orchestrator).configure,
}

func (o *Orchestrator) dispatch(ctx context.Context, next, input, contextSummary string) Response {
	in := turnInput{
		input:          input,
		contextSummary: contextSummary,
		topic:          o.state.CurrentTopic(),
		subtopic:       o.state.ActiveSubtopic(),
	}
	h, ok := handlers[roles.Role(next)]
	if !ok {
		o.logger.Debug("no handler for agent, exploring", zap.String("next_agent", next))
		h = (*Orchestrator).explore
	}
	return h(o, ctx, in)
}

func textResponse(agent roles.Role, explanation, summary string) Response {
	return Response{
		Status:        types.SafetySafe,
		Explanation:   explanation,
		Subtopics:     []string{},
		Prerequisites: []string{},
		Summary:       summary,
		Agent:         string(agent),
	}
}

func (o *Orchestrator) explore(ctx context.Context, in turnInput) Response {
	out := o.agents.Exploration(ctx, roles.ExplorationInput{
		LatestContextSummary: in.contextSummary,
		UserPrompt:           in.input,
	})
	o.state.SetLearningPath(out.Subtopics)
	return Response{
		Status:        out.Status,
		Explanation:   out.Explanation,
		Subtopics:     out.Subtopics,
		Prerequisites: out.Prerequisites,
		Summary:       out.Summary,
		Agent:         string(roles.RoleExploration),
	}
}

func (o *Orchestrator) interact(ctx context.Context, in turnInput) Response {
	out := o.agents.Interactive(ctx, roles.InteractiveInput{
		LatestContextSummary: in.contextSummary,
		UserInput:            in.input,
	})
	return textResponse(roles.RoleInteractive, out.Response, out.Response)
}

func (o *Orchestrator) ask(ctx context.Context, in turnInput) Response {
	out := o.agents.Question(ctx, roles.QuestionInput{
		LatestContextSummary: in.contextSummary,
		Subtopic:             in.subtopic,
		BroaderTopic:         in.topic,
	})
	if err := o.state.ArmQuestion(out.Question, out.Type); err != nil {
		o.logger.Warn("question not armed", zap.Error(err))
	}

	resp := textResponse(roles.RoleQuestion, out.Question, out.Question)
	if out.IsMCQ() {
		resp.Subtopics = out.Options
	}
	return resp
}

func (o *Orchestrator) deepDive(ctx context.Context, in turnInput) Response {
	out := o.agents.DeepDive(ctx, roles.DeepDiveInput{
		LatestContextSummary: in.contextSummary,
		Subtopic:             in.subtopic,
		BroaderTopic:         in.topic,
	})
	return textResponse(roles.RoleDeepDive, out.Breakdown, out.Breakdown)
}

func (o *Orchestrator) flashcards(ctx context.Context, in turnInput) Response {
	out := o.agents.Flashcard(ctx, roles.FlashcardInput{
		LatestContextSummary: in.contextSummary,
		BroaderTopic:         in.topic,
		Subtopic:             in.subtopic,
	})
	return textResponse(roles.RoleFlashcard, FlashcardPreamble+out.CSVContent, in.contextSummary)
}

func (o *Orchestrator) cheatsheet(ctx context.Context, in turnInput) Response {
	out := o.agents.Cheatsheet(ctx, roles.CheatsheetInput{
		LatestContextSummary: in.contextSummary,
		BroaderTopic:         in.topic,
		Subtopic:             in.subtopic,
	})
	return textResponse(roles.RoleCheatsheet, out.Content, out.Content)
}

func (o *Orchestrator) diagram(ctx context.Context, in turnInput) Response {
	out := o.agents.Mermaid(ctx, roles.MermaidInput{
		LatestContextSummary:  in.contextSummary,
		BroaderTopic:          in.topic,
		Subtopic:              in.subtopic,
		AvailableDiagramTypes: roles.DiagramTypes,
	})
	return textResponse(roles.RoleMermaid, out.MermaidCode, in.contextSummary)
}

func (o *Orchestrator) configure(ctx context.Context, in turnInput) Response {
	out := o.agents.Config(ctx, roles.ConfigInput{
		LatestContextSummary: in.contextSummary,
		UserInput:            in.input,
	})
	return textResponse(roles.RoleConfig, out.PromptAddition, out.PromptAddition)
}
