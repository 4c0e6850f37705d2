package session

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrInvalidHistoryEntry 历史条目缺少 type 或 content，属于调用方编程错误
	ErrInvalidHistoryEntry = errors.New("session history entry must contain type and content")

	// ErrEmptyQuestion 出题内容为空时拒绝进入 AWAITING_ANSWER
	ErrEmptyQuestion = errors.New("cannot await an answer to an empty question")
)

// ResumedEntryType 通过 Overrides 恢复的历史条目类型
const ResumedEntryType = "context"

// Entry 会话历史条目，时间戳在追加时写入
type Entry struct {
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Progress 学习进度
type Progress struct {
	CompletedSubtopics []string `json:"completed_subtopics"`
	MasteredConcepts   []string `json:"mastered_concepts"`
	NeedsReview        []string `json:"needs_review"`
}

// Overrides 每轮开始时应用的会话恢复参数。
//
// 空字符串视为未提供：CurrentTopic/ActiveSubtopic 回落为本轮输入；
// SessionHistory 为 nil 时历史被清空。Continue 为 true 时未提供的字段保持原值，
// 供服务端持有状态的长连接会话使用。
type Overrides struct {
	CurrentTopic   string
	ActiveSubtopic string
	SessionHistory []string
	Continue       bool
}

// State 单个学习会话的状态。只由所属编排器读写，不做并发保护。
type State struct {
	currentTopic     string
	activeSubtopic   string
	learningPath     []string
	progress         Progress
	history          []Entry
	lastQuestion     string
	lastQuestionType string
	phase            Phase

	now          func() time.Time
	onTransition func(from, to Phase)
}

// Option 状态配置项
type Option func(*State)

// WithClock 替换时间源
func WithClock(now func() time.Time) Option {
	return func(s *State) { s.now = now }
}

// WithTransitionHook 每次阶段转换后回调
func WithTransitionHook(fn func(from, to Phase)) Option {
	return func(s *State) { s.onTransition = fn }
}

// New 创建空闲状态的会话
func New(opts ...Option) *State {
	s := &State{
		learningPath: []string{},
		progress: Progress{
			CompletedSubtopics: []string{},
			MasteredConcepts:   []string{},
			NeedsReview:        []string{},
		},
		history: []Entry{},
		phase:   PhaseIdle,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *State) Phase() Phase             { return s.phase }
func (s *State) AwaitingAnswer() bool     { return s.phase == PhaseAwaitingAnswer }
func (s *State) CurrentTopic() string     { return s.currentTopic }
func (s *State) ActiveSubtopic() string   { return s.activeSubtopic }
func (s *State) LastQuestion() string     { return s.lastQuestion }
func (s *State) LastQuestionType() string { return s.lastQuestionType }

// Apply 应用本轮的恢复参数
func (s *State) Apply(topic string, o Overrides) {
	s.currentTopic = pick(o.CurrentTopic, s.currentTopic, topic, o.Continue)
	s.activeSubtopic = pick(o.ActiveSubtopic, s.activeSubtopic, topic, o.Continue)

	switch {
	case o.SessionHistory != nil:
		at := s.now()
		s.history = make([]Entry, 0, len(o.SessionHistory))
		for _, content := range o.SessionHistory {
			s.history = append(s.history, Entry{Type: ResumedEntryType, Content: content, Timestamp: at})
		}
	case !o.Continue:
		s.history = []Entry{}
	}
}

func pick(given, current, fallback string, keep bool) string {
	if given != "" {
		return given
	}
	if keep && current != "" {
		return current
	}
	return fallback
}

// ArmQuestion IDLE → AWAITING_ANSWER
func (s *State) ArmQuestion(question, qtype string) error {
	if question == "" {
		return ErrEmptyQuestion
	}
	if err := s.transition(PhaseAwaitingAnswer); err != nil {
		return err
	}
	s.lastQuestion = question
	s.lastQuestionType = qtype
	return nil
}

// ResolveAnswer AWAITING_ANSWER → IDLE，返回待回答的问题
func (s *State) ResolveAnswer() (string, error) {
	if err := s.transition(PhaseIdle); err != nil {
		return "", err
	}
	return s.lastQuestion, nil
}

func (s *State) transition(to Phase) error {
	from := s.phase
	if !CanTransition(from, to) {
		return ErrInvalidTransition{From: from, To: to}
	}
	s.phase = to
	if s.onTransition != nil {
		s.onTransition(from, to)
	}
	return nil
}

// Append 追加历史条目。Type 为空视为编程错误并 panic。
// Content 允许为空串，与 AppendMap 的"字段存在即可"语义一致。
func (s *State) Append(e Entry) {
	if e.Type == "" {
		panic(ErrInvalidHistoryEntry)
	}
	e.Timestamp = s.now()
	s.history = append(s.history, e)
}

// AppendMap 以 map 形式追加，type/content 缺失或不是字符串时 panic
func (s *State) AppendMap(m map[string]any) {
	typ, ok1 := m["type"].(string)
	content, ok2 := m["content"].(string)
	if !ok1 || !ok2 || typ == "" {
		panic(ErrInvalidHistoryEntry)
	}
	s.Append(Entry{Type: typ, Content: content})
}

// ContextSummary 按顺序以换行拼接历史内容，不单独存储
func (s *State) ContextSummary() string {
	parts := make([]string, len(s.history))
	for i, e := range s.history {
		parts[i] = e.Content
	}
	return strings.Join(parts, "\n")
}

// HistoryLen 历史条目数
func (s *State) HistoryLen() int { return len(s.history) }

// SetLearningPath 记录探索得到的子主题
func (s *State) SetLearningPath(subtopics []string) {
	s.learningPath = append([]string{}, subtopics...)
}

// RecordEvaluation 根据作答结果更新进度：答对计入已完成与已掌握，答错计入待复习
func (s *State) RecordEvaluation(correct bool) {
	sub := s.activeSubtopic
	if sub == "" {
		return
	}
	if correct {
		s.progress.CompletedSubtopics = addUnique(s.progress.CompletedSubtopics, sub)
		s.progress.MasteredConcepts = addUnique(s.progress.MasteredConcepts, sub)
		s.progress.NeedsReview = remove(s.progress.NeedsReview, sub)
		return
	}
	s.progress.NeedsReview = addUnique(s.progress.NeedsReview, sub)
}

func addUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}

func remove(list []string, v string) []string {
	out := list[:0]
	for _, x := range list {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}
