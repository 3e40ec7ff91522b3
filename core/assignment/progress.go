package assignment

// ProgressState is a student's position in the two-round answering flow.
// Rounds are strictly ordered and global: round 2 cannot start on any question
// before round 1 is complete for every question of the instance.
type ProgressState int

const (
	FirstRoundInProgress ProgressState = iota
	SecondRoundInProgress
	Done
)

func (s ProgressState) String() string {
	switch s {
	case FirstRoundInProgress:
		return "first-round-in-progress"
	case SecondRoundInProgress:
		return "second-round-in-progress"
	case Done:
		return "done"
	}
	return "unknown"
}

// answersByQuestion indexes answers by question id, keeping only answers for
// questions that actually belong to the given question list. Answers from a
// template clone sharing question ids but recorded against another instance
// never reach here; the per-instance scoping happens at the store.
func answersByQuestion(qs []Question, answers []Answer) map[string]Answer {
	ids := make(map[string]struct{}, len(qs))
	for _, q := range qs {
		ids[q.ID] = struct{}{}
	}
	m := make(map[string]Answer, len(answers))
	for _, a := range answers {
		if _, ok := ids[a.QuestionID]; ok {
			m[a.QuestionID] = a
		}
	}
	return m
}

// CurrentQuestion determines the question a student must answer next, and the
// round they are in, from one snapshot of their answers.
//
// Phase 1 scans the ordered list for the first question with no answer at all;
// phase 2 (only once phase 1 finds no gap) for the first answer lacking a
// second choice. A nil question means there is nothing left to answer.
func CurrentQuestion(qs []Question, answers []Answer) (*Question, ProgressState) {
	m := answersByQuestion(qs, answers)

	for _, q := range qs {
		if _, ok := m[q.ID]; !ok {
			q := q
			return &q, FirstRoundInProgress
		}
	}

	for _, q := range qs {
		if !m[q.ID].HasSecondChoice() {
			q := q
			return &q, SecondRoundInProgress
		}
	}

	return nil, Done
}
