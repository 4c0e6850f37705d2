package session

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func fixedClock() func() time.Time {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(PhaseIdle, PhaseAwaitingAnswer))
	assert.True(t, CanTransition(PhaseAwaitingAnswer, PhaseIdle))
	assert.False(t, CanTransition(PhaseIdle, PhaseIdle))
	assert.False(t, CanTransition(PhaseAwaitingAnswer, PhaseAwaitingAnswer))
	assert.False(t, CanTransition("bogus", PhaseIdle))
}

func TestArmAndResolve(t *testing.T) {
	var transitions []string
	s := New(WithTransitionHook(func(from, to Phase) {
		transitions = append(transitions, string(from)+"->"+string(to))
	}))

	require.NoError(t, s.ArmQuestion("Which pigment is green?", "MCQ"))
	assert.True(t, s.AwaitingAnswer())
	assert.Equal(t, "MCQ", s.LastQuestionType())

	err := s.ArmQuestion("second question", "MCQ")
	var invalid ErrInvalidTransition
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, PhaseAwaitingAnswer, invalid.From)
	assert.Equal(t, "Which pigment is green?", s.LastQuestion())

	q, err := s.ResolveAnswer()
	require.NoError(t, err)
	assert.Equal(t, "Which pigment is green?", q)
	assert.False(t, s.AwaitingAnswer())

	_, err = s.ResolveAnswer()
	assert.Error(t, err)
	assert.Equal(t, []string{"idle->awaiting_answer", "awaiting_answer->idle"}, transitions)
}

func TestArmQuestion_RejectsEmpty(t *testing.T) {
	s := New()
	assert.ErrorIs(t, s.ArmQuestion("", "MCQ"), ErrEmptyQuestion)
	assert.Equal(t, PhaseIdle, s.Phase())
}

func TestAppend(t *testing.T) {
	s := New(WithClock(fixedClock()))
	s.Append(Entry{Type: "user", Content: "photosynthesis"})
	s.AppendMap(map[string]any{"type": "exploration", "content": "Plants make sugar."})
	s.Append(Entry{Type: "interactive", Content: ""})

	snap := s.Snapshot()
	require.Len(t, snap.SessionHistory, 3)
	assert.Equal(t, fixedClock()(), snap.SessionHistory[0].Timestamp)
	assert.Equal(t, "photosynthesis\nPlants make sugar.\n", s.ContextSummary())
}

func TestAppend_PanicsOnMissingFields(t *testing.T) {
	s := New()
	assert.PanicsWithValue(t, ErrInvalidHistoryEntry, func() { s.Append(Entry{Content: "x"}) })
	assert.PanicsWithValue(t, ErrInvalidHistoryEntry, func() { s.AppendMap(map[string]any{"type": "user"}) })
	assert.PanicsWithValue(t, ErrInvalidHistoryEntry, func() { s.AppendMap(map[string]any{"content": "x"}) })
	assert.PanicsWithValue(t, ErrInvalidHistoryEntry, func() { s.AppendMap(map[string]any{"type": "user", "content": 3}) })
	assert.Zero(t, s.HistoryLen())
}

func TestApply(t *testing.T) {
	tests := []struct {
		name         string
		overrides    Overrides
		wantTopic    string
		wantSubtopic string
		wantSummary  string
	}{
		{"defaults to turn topic and resets history", Overrides{}, "leaves", "leaves", ""},
		{"explicit topic", Overrides{CurrentTopic: "Biology", ActiveSubtopic: "Chlorophyll"}, "Biology", "Chlorophyll", ""},
		{"history replaced", Overrides{SessionHistory: []string{"a", "b"}}, "leaves", "leaves", "a\nb"},
		{"empty history given", Overrides{SessionHistory: []string{}}, "leaves", "leaves", ""},
		{"continue keeps state", Overrides{Continue: true}, "Photosynthesis", "Calvin cycle", "earlier"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			s.Apply("Photosynthesis", Overrides{ActiveSubtopic: "Calvin cycle"})
			s.Append(Entry{Type: "user", Content: "earlier"})

			s.Apply("leaves", tt.overrides)
			assert.Equal(t, tt.wantTopic, s.CurrentTopic())
			assert.Equal(t, tt.wantSubtopic, s.ActiveSubtopic())
			assert.Equal(t, tt.wantSummary, s.ContextSummary())
		})
	}
}

func TestApply_KeepsPendingQuestion(t *testing.T) {
	s := New()
	require.NoError(t, s.ArmQuestion("Q?", "MCQ"))
	s.Apply("B", Overrides{})
	assert.True(t, s.AwaitingAnswer())
	assert.Equal(t, "Q?", s.LastQuestion())
}

func TestRecordEvaluation(t *testing.T) {
	s := New()
	s.Apply("Photosynthesis", Overrides{ActiveSubtopic: "Chlorophyll"})

	s.RecordEvaluation(false)
	s.RecordEvaluation(false)
	assert.Equal(t, []string{"Chlorophyll"}, s.Snapshot().Progress.NeedsReview)

	s.RecordEvaluation(true)
	p := s.Snapshot().Progress
	assert.Empty(t, p.NeedsReview)
	assert.Equal(t, []string{"Chlorophyll"}, p.CompletedSubtopics)
	assert.Equal(t, []string{"Chlorophyll"}, p.MasteredConcepts)
}

func TestSnapshot_IsACopy(t *testing.T) {
	s := New()
	s.SetLearningPath([]string{"a"})
	s.Append(Entry{Type: "user", Content: "x"})

	snap := s.Snapshot()
	snap.LearningPath[0] = "mutated"
	snap.SessionHistory[0].Content = "mutated"

	again := s.Snapshot()
	assert.Equal(t, "a", again.LearningPath[0])
	assert.Equal(t, "x", again.SessionHistory[0].Content)
}

func TestSnapshot_FullShape(t *testing.T) {
	clock := fixedClock()
	s := New(WithClock(clock))
	s.Apply("Photosynthesis", Overrides{ActiveSubtopic: "Chlorophyll"})
	s.SetLearningPath([]string{"Light reactions", "Calvin cycle"})
	s.Append(Entry{Type: "user", Content: "quiz me"})
	require.NoError(t, s.ArmQuestion("Which pigment?", "MCQ"))

	want := Snapshot{
		CurrentTopic:   "Photosynthesis",
		ActiveSubtopic: "Chlorophyll",
		LearningPath:   []string{"Light reactions", "Calvin cycle"},
		Progress: Progress{
			CompletedSubtopics: []string{},
			MasteredConcepts:   []string{},
			NeedsReview:        []string{},
		},
		SessionHistory:   []Entry{{Type: "user", Content: "quiz me", Timestamp: clock()}},
		LastQuestion:     "Which pigment?",
		LastQuestionType: "MCQ",
		AwaitingAnswer:   true,
		Phase:            PhaseAwaitingAnswer,
	}
	if diff := cmp.Diff(want, s.Snapshot()); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

// awaiting_answer 为真时 last_question 必不为空，且解答后标志必然清除
func TestProperty_AwaitingImpliesQuestion(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := New()
		t.Repeat(map[string]func(*rapid.T){
			"arm": func(t *rapid.T) {
				q := rapid.StringMatching(`[a-z ]{0,12}`).Draw(t, "question")
				before := s.Phase()
				err := s.ArmQuestion(q, "MCQ")
				switch {
				case q == "":
					if !errors.Is(err, ErrEmptyQuestion) || s.Phase() != before {
						t.Fatalf("empty question accepted")
					}
				case before == PhaseAwaitingAnswer:
					if err == nil {
						t.Fatalf("second question armed")
					}
				default:
					if err != nil || s.LastQuestion() != q {
						t.Fatalf("arm failed: %v", err)
					}
				}
			},
			"resolve": func(t *rapid.T) {
				wasAwaiting := s.AwaitingAnswer()
				_, err := s.ResolveAnswer()
				if wasAwaiting != (err == nil) {
					t.Fatalf("resolve: awaiting=%v err=%v", wasAwaiting, err)
				}
				if s.AwaitingAnswer() {
					t.Fatalf("still awaiting after resolve")
				}
			},
			"apply": func(t *rapid.T) {
				s.Apply(rapid.String().Draw(t, "topic"), Overrides{})
			},
			"": func(t *rapid.T) {
				if s.AwaitingAnswer() && s.LastQuestion() == "" {
					t.Fatalf("awaiting answer without a question")
				}
			},
		})
	})
}
