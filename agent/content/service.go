package content

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/mindflow/agent/gateway"
)

// QuestionCount 每次生成的选择题数量
const QuestionCount = 3

var (
	// ErrEmptyContent 没有可处理的文本
	ErrEmptyContent = errors.New("no content to process")
	// ErrInvalidMode 未知的笔记处理模式
	ErrInvalidMode = errors.New("invalid processing mode")
)

// Completer 自由文本生成能力，*gateway.Gateway 满足该接口
type Completer interface {
	Complete(ctx context.Context, req gateway.TextRequest) (string, error)
}

// Mode 笔记处理模式
type Mode string

const (
	ModeLearn Mode = "learn"
	ModeQuiz  Mode = "quiz"
)

// ParseMode 空串视为 learn
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeLearn:
		return ModeLearn, nil
	case ModeQuiz:
		return ModeQuiz, nil
	}
	return "", ErrInvalidMode
}

// Question 一道带讲解与图示的选择题
type Question struct {
	QuestionText  string   `json:"question_text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
	Diagram       string   `json:"diagram"`
}

// PlaceholderQuestion 选择题生成或解析失败时返回的占位题
func PlaceholderQuestion() Question {
	return Question{
		QuestionText:  "Could not generate proper questions.",
		Options:       []string{"Try again", "Contact support"},
		CorrectAnswer: "Try again",
		Explanation:   "There was an error processing the content.",
	}
}

// Processed 笔记处理结果。Fallback 为 true 表示模型不可用，Response 是离线兜底文本。
type Processed struct {
	Response      string `json:"response"`
	Mode          Mode   `json:"mode"`
	ContentLength int    `json:"content_length"`
	Fallback      bool   `json:"fallback"`
}

// Service 内容生成服务
type Service struct {
	lead   Completer
	light  Completer
	logger *zap.Logger
}

// Option 服务配置项
type Option func(*Service)

// WithLightCompleter 选择题与笔记处理改用轻量模型
func WithLightCompleter(c Completer) Option {
	return func(s *Service) { s.light = c }
}

// New 创建内容服务，未配置轻量模型时全部走 lead
func New(lead Completer, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		lead:   lead,
		logger: logger.With(zap.String("component", "content")),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.light == nil {
		s.light = lead
	}
	return s
}

// ExplainMore 对上下文做进一步讲解。topic 为空时退用 question。
// 模型不可用时返回网关错误，由调用方决定如何降级。
func (s *Service) ExplainMore(ctx context.Context, question, topic string) (string, error) {
	body := strings.TrimSpace(topic)
	if body == "" {
		body = strings.TrimSpace(question)
	}
	if body == "" {
		return "", ErrEmptyContent
	}

	text, err := s.lead.Complete(ctx, gateway.TextRequest{
		Role:   "explain_more",
		System: systemPrompt,
		Prompt: headingPrompt(explainMoreTitle, body, explainMoreIcon),
	})
	if err != nil {
		s.logger.Warn("explain more failed", zap.Error(err))
		return "", err
	}
	return text, nil
}

// InteractiveQuestions 为主题生成选择题，任何失败都返回单道占位题。
func (s *Service) InteractiveQuestions(ctx context.Context, topic string) ([]Question, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, ErrEmptyContent
	}

	text, err := s.light.Complete(ctx, gateway.TextRequest{
		Role:   "interactive_questions",
		System: systemPrompt,
		Prompt: questionsPrompt(topic),
	})
	if err != nil {
		s.logger.Warn("question generation failed", zap.Error(err))
		return []Question{PlaceholderQuestion()}, nil
	}

	questions, ok := parseQuestions(text)
	if !ok {
		s.logger.Warn("question reply is not a JSON array", zap.Int("response_len", len(text)))
		return []Question{PlaceholderQuestion()}, nil
	}
	return questions, nil
}

// Process 把笔记整理成讲解或测验。模型不可用时返回离线兜底文本，不返回错误。
func (s *Service) Process(ctx context.Context, notes string, mode Mode) (*Processed, error) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return nil, ErrEmptyContent
	}

	var prompt, role string
	switch mode {
	case ModeLearn:
		role, prompt = "process_learn", headingPrompt(learnTitle, notes, learnIcon)
	case ModeQuiz:
		role, prompt = "process_quiz", quizPrompt(notes)
	default:
		return nil, ErrInvalidMode
	}

	out := &Processed{Mode: mode, ContentLength: len(notes)}
	text, err := s.light.Complete(ctx, gateway.TextRequest{Role: role, System: systemPrompt, Prompt: prompt})
	switch {
	case errors.Is(err, gateway.ErrContentFiltered):
		out.Response, out.Fallback = gateway.ApologyMessage, true
	case err != nil:
		s.logger.Warn("note processing fell back to offline text", zap.String("mode", string(mode)), zap.Error(err))
		out.Fallback = true
		if mode == ModeQuiz {
			out.Response = offlineQuiz(notes)
		} else {
			out.Response = offlineLearn(notes)
		}
	case mode == ModeQuiz:
		out.Response = cleanQuiz(text)
	default:
		out.Response = text
	}
	return out, nil
}

// parseQuestions 取第一个 '[' 到最后一个 ']' 之间的内容解析，空数组视为失败。
func parseQuestions(text string) ([]Question, bool) {
	start := strings.IndexByte(text, '[')
	end := strings.LastIndexByte(text, ']')
	if start < 0 || end < start {
		return nil, false
	}
	var questions []Question
	if err := json.Unmarshal([]byte(text[start:end+1]), &questions); err != nil {
		return nil, false
	}
	if len(questions) == 0 {
		return nil, false
	}
	for i := range questions {
		if questions[i].Options == nil {
			questions[i].Options = []string{}
		}
	}
	return questions, true
}
