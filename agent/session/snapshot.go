package session

// Snapshot 会话状态的只读副本
type Snapshot struct {
	CurrentTopic     string   `json:"current_topic"`
	ActiveSubtopic   string   `json:"active_subtopic"`
	LearningPath     []string `json:"learning_path"`
	Progress         Progress `json:"progress"`
	SessionHistory   []Entry  `json:"session_history"`
	LastQuestion     string   `json:"last_question"`
	LastQuestionType string   `json:"last_question_type"`
	AwaitingAnswer   bool     `json:"awaiting_answer"`
	Phase            Phase    `json:"phase"`
}

// Snapshot 深拷贝当前状态
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		CurrentTopic:   s.currentTopic,
		ActiveSubtopic: s.activeSubtopic,
		LearningPath:   append([]string{}, s.learningPath...),
		Progress: Progress{
			CompletedSubtopics: append([]string{}, s.progress.CompletedSubtopics...),
			MasteredConcepts:   append([]string{}, s.progress.MasteredConcepts...),
			NeedsReview:        append([]string{}, s.progress.NeedsReview...),
		},
		SessionHistory:   append([]Entry{}, s.history...),
		LastQuestion:     s.lastQuestion,
		LastQuestionType: s.lastQuestionType,
		AwaitingAnswer:   s.AwaitingAnswer(),
		Phase:            s.phase,
	}
}
