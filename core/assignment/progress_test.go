package assignment

import (
	"testing"

	"github.com/volatiletech/null/v8"
)

func firstAnswer(questionID string, choice int) Answer {
	return Answer{QuestionID: questionID, FirstChoice: choice}
}

func fullAnswer(questionID string, first, second int) Answer {
	return Answer{QuestionID: questionID, FirstChoice: first, SecondChoice: null.IntFrom(second)}
}

func TestCurrentQuestion(t *testing.T) {
	qs := makeQuestions(3)

	tests := []struct {
		name      string
		answers   []Answer
		wantID    string // "" means nil
		wantState ProgressState
	}{
		{
			name:      "no answers",
			wantID:    "q0",
			wantState: FirstRoundInProgress,
		},
		{
			name:      "first question answered",
			answers:   []Answer{firstAnswer("q0", 0)},
			wantID:    "q1",
			wantState: FirstRoundInProgress,
		},
		{
			name:      "gap in the middle",
			answers:   []Answer{firstAnswer("q0", 0), firstAnswer("q2", 1)},
			wantID:    "q1",
			wantState: FirstRoundInProgress,
		},
		{
			name:      "first round complete",
			answers:   []Answer{firstAnswer("q0", 0), firstAnswer("q1", 1), firstAnswer("q2", 2)},
			wantID:    "q0",
			wantState: SecondRoundInProgress,
		},
		{
			name: "second round in progress",
			answers: []Answer{
				fullAnswer("q0", 0, 1),
				firstAnswer("q1", 1),
				firstAnswer("q2", 2),
			},
			wantID:    "q1",
			wantState: SecondRoundInProgress,
		},
		{
			name: "second round gap in the middle",
			answers: []Answer{
				fullAnswer("q0", 0, 1),
				firstAnswer("q1", 1),
				fullAnswer("q2", 2, 0),
			},
			wantID:    "q1",
			wantState: SecondRoundInProgress,
		},
		{
			name: "done",
			answers: []Answer{
				fullAnswer("q0", 0, 1),
				fullAnswer("q1", 1, 2),
				fullAnswer("q2", 2, 0),
			},
			wantID:    "",
			wantState: Done,
		},
		{
			name:      "stray answers do not count",
			answers:   []Answer{firstAnswer("other-q", 0)},
			wantID:    "q0",
			wantState: FirstRoundInProgress,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, state := CurrentQuestion(qs, tt.answers)
			if state != tt.wantState {
				t.Errorf("CurrentQuestion() state = %v, want %v", state, tt.wantState)
			}
			if tt.wantID == "" {
				if got != nil {
					t.Errorf("CurrentQuestion() = %v, want nil", got)
				}
				return
			}
			if got == nil || got.ID != tt.wantID {
				t.Errorf("CurrentQuestion() = %v, want %s", got, tt.wantID)
			}
		})
	}
}

// the scan follows the instance order, not the template order.
func TestCurrentQuestion_reorderedInstance(t *testing.T) {
	tmpl := Template{Questions: makeQuestions(3)}
	qs := Questions(Instance{Order: []int{2, 0, 1}}, tmpl)

	cur, state := CurrentQuestion(qs, nil)
	if cur == nil || cur.ID != "q2" || state != FirstRoundInProgress {
		t.Errorf("CurrentQuestion() = %v, %v; want q2, first round", cur, state)
	}

	cur, state = CurrentQuestion(qs, []Answer{firstAnswer("q2", 0)})
	if cur == nil || cur.ID != "q0" || state != FirstRoundInProgress {
		t.Errorf("CurrentQuestion() = %v, %v; want q0, first round", cur, state)
	}
}

func TestCurrentQuestion_noQuestions(t *testing.T) {
	cur, state := CurrentQuestion(nil, nil)
	if cur != nil || state != Done {
		t.Errorf("CurrentQuestion() = %v, %v; want nil, done", cur, state)
	}
}

func TestProgressState_String(t *testing.T) {
	tests := []struct {
		state ProgressState
		want  string
	}{
		{FirstRoundInProgress, "first-round-in-progress"},
		{SecondRoundInProgress, "second-round-in-progress"},
		{Done, "done"},
		{ProgressState(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("String() = %s, want %s", got, tt.want)
		}
	}
}
