package orchestrator

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BaSui01/mindflow/agent/roles"
	"github.com/BaSui01/mindflow/agent/session"
	"github.com/BaSui01/mindflow/types"
)

// AgentSafety 被安全门拦截时 Response.Agent 的取值
const AgentSafety = string(roles.RoleSafety)

// Evaluation 作答评估结果
type Evaluation struct {
	IsCorrect bool   `json:"is_correct"`
	Feedback  string `json:"feedback"`
}

// Response 一轮对话的统一输出
type Response struct {
	Status        types.SafetyStatus `json:"status"`
	Explanation   string             `json:"explanation"`
	Subtopics     []string           `json:"subtopics"`
	Prerequisites []string           `json:"prerequisites"`
	Summary       string             `json:"summary"`
	// Agent 实际处理本轮的角色
	Agent string `json:"agent"`
	// Evaluation 仅在作答轮次出现
	Evaluation *Evaluation `json:"evaluation,omitempty"`
}

// Orchestrator 单会话编排器
type Orchestrator struct {
	agents    *roles.Agents
	state     *session.State
	available []roles.AgentDescriptor

	recorder Recorder
	inst     *instruments
	logger   *zap.Logger

	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	stateOpts      []session.Option
}

// Option 编排器配置项
type Option func(*Orchestrator)

// WithRecorder 注入 Prometheus 指标
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.recorder = r
		}
	}
}

// WithTracerProvider 替换全局 TracerProvider
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *Orchestrator) { o.tracerProvider = tp }
}

// WithMeterProvider 替换全局 MeterProvider
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *Orchestrator) { o.meterProvider = mp }
}

// WithAvailableAgents 替换分类器可选角色列表
func WithAvailableAgents(agents []roles.AgentDescriptor) Option {
	return func(o *Orchestrator) { o.available = agents }
}

// WithStateOptions 透传给 session.New
func WithStateOptions(opts ...session.Option) Option {
	return func(o *Orchestrator) { o.stateOpts = append(o.stateOpts, opts...) }
}

// New 创建编排器
func New(agents *roles.Agents, logger *zap.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := &Orchestrator{
		agents:    agents,
		available: roles.DefaultAgents(),
		recorder:  nopRecorder{},
		logger:    logger.With(zap.String("component", "orchestrator")),
	}
	for _, opt := range opts {
		opt(o)
	}

	o.inst = newInstruments(o.tracerProvider, o.meterProvider)

	hook := session.WithTransitionHook(func(from, to session.Phase) {
		o.recorder.RecordAgentStateTransition(string(from), string(to))
	})
	o.state = session.New(append([]session.Option{hook}, o.stateOpts...)...)

	return o
}

// StartNewTopic HandleTurn 的别名
func (o *Orchestrator) StartNewTopic(ctx context.Context, input string, overrides session.Overrides) Response {
	return o.HandleTurn(ctx, input, overrides)
}

// HandleTurn 处理一轮用户输入，不返回错误
func (o *Orchestrator) HandleTurn(ctx context.Context, input string, overrides session.Overrides) Response {
	start := time.Now()
	ctx, span := o.inst.tracer.Start(ctx, "orchestrator.HandleTurn")
	defer span.End()

	// 1. 恢复会话
	o.state.Apply(input, overrides)
	contextSummary := o.state.ContextSummary()

	resp := o.turn(ctx, input, contextSummary)

	o.state.Append(session.Entry{Type: "user", Content: input})
	o.state.Append(session.Entry{Type: resp.Agent, Content: resp.Explanation})

	elapsed := time.Since(start)
	o.recorder.RecordAgentExecution(resp.Agent, resp.Status.String(), elapsed)
	o.inst.recordTurn(ctx, resp.Agent, resp.Status.String(), elapsed)

	span.SetAttributes(
		attribute.String("mindflow.agent", resp.Agent),
		attribute.String("mindflow.status", resp.Status.String()),
		attribute.Bool("mindflow.awaiting_answer", o.state.AwaitingAnswer()),
	)
	o.logger.Debug("turn handled",
		zap.String("agent", resp.Agent),
		zap.String("status", resp.Status.String()),
		zap.Duration("duration", elapsed))

	return resp
}

func (o *Orchestrator) turn(ctx context.Context, input, contextSummary string) Response {
	// 2. 安全门
	safety := o.agents.CheckSafety(ctx, input, contextSummary)
	o.recorder.RecordSafetyDecision(safety.Status.String())
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("mindflow.safety_status", safety.Status.String()))
	if safety.Status.Blocking() {
		return Response{
			Status:        safety.Status,
			Explanation:   safety.Explanation,
			Subtopics:     []string{},
			Prerequisites: []string{},
			Summary:       safety.Explanation,
			Agent:         AgentSafety,
		}
	}

	// 3. 分类器总会调用；待作答时结果不用
	next := o.agents.Classify(ctx, input, o.available, contextSummary)

	// 4. 作答评估
	if o.state.AwaitingAnswer() && o.state.LastQuestion() != "" {
		return o.evaluateAnswer(ctx, input, next)
	}

	// 5. 分发
	return o.dispatch(ctx, next, input, contextSummary)
}

func (o *Orchestrator) evaluateAnswer(ctx context.Context, input, discarded string) Response {
	question, err := o.state.ResolveAnswer()
	if err != nil {
		o.logger.Error("resolve pending question", zap.Error(err))
	}
	o.logger.Debug("pending answer, classifier result discarded", zap.String("next_agent", discarded))

	out := o.agents.AnswerEval(ctx, roles.AnswerEvalInput{
		LatestContextSummary: "",
		Subtopic:             o.state.ActiveSubtopic(),
		BroaderTopic:         o.state.CurrentTopic(),
		QuestionAsked:        question,
		UserQuestionAnswer:   input,
	})
	o.state.RecordEvaluation(out.IsCorrect)

	return Response{
		Status:        types.SafetySafe,
		Explanation:   out.Feedback,
		Subtopics:     []string{},
		Prerequisites: []string{},
		Summary:       out.Feedback,
		Agent:         string(roles.RoleAnswerEval),
		Evaluation:    &Evaluation{IsCorrect: out.IsCorrect, Feedback: out.Feedback},
	}
}

// RunSafetyCheck 独立的安全探测，以当前历史作为上下文
func (o *Orchestrator) RunSafetyCheck(ctx context.Context, text string) roles.SafetyResult {
	ctx, span := o.inst.tracer.Start(ctx, "orchestrator.RunSafetyCheck")
	defer span.End()

	res := o.agents.CheckSafety(ctx, text, o.state.ContextSummary())
	o.recorder.RecordSafetyDecision(res.Status.String())
	span.SetAttributes(attribute.String("mindflow.safety_status", res.Status.String()))
	return res
}

// SessionSummary 汇总当前会话
func (o *Orchestrator) SessionSummary(ctx context.Context) roles.SummaryResult {
	ctx, span := o.inst.tracer.Start(ctx, "orchestrator.SessionSummary")
	defer span.End()

	start := time.Now()
	res := o.agents.Summary(ctx, roles.SummaryInput{
		LatestContextSummary: o.state.ContextSummary(),
	})
	o.recorder.RecordAgentExecution(string(roles.RoleSummary), types.SafetySafe.String(), time.Since(start))
	return res
}

// State 返回会话状态的只读副本
func (o *Orchestrator) State() session.Snapshot {
	return o.state.Snapshot()
}
