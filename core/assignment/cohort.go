package assignment

import (
	"github.com/trezcool/darasa/core/student"
)

// QuestionStats is one row of the instructor progress report: per-question
// answer counts rolled up over the whole roster, with the roster attached.
type QuestionStats struct {
	Question      Question          `json:"question"`
	Students      []student.Student `json:"students"`
	First         int               `json:"first"`
	FirstCorrect  int               `json:"first_correct"`
	Second        int               `json:"second"`
	SecondCorrect int               `json:"second_correct"`
}

// AggregateProgress rolls up every student's per-question counters into one
// record per ordered question. It is a plain sum of booleans over the roster;
// the O(students x questions) cost is deliberate and visible here rather than
// hidden behind per-student lookups.
func AggregateProgress(qs []Question, roster []student.Student, answersByStudent map[string][]Answer) []QuestionStats {
	indexed := make(map[string]map[string]Answer, len(roster))
	for _, stu := range roster {
		indexed[stu.ID] = answersByQuestion(qs, answersByStudent[stu.ID])
	}

	stats := make([]QuestionStats, 0, len(qs))
	for _, q := range qs {
		st := QuestionStats{Question: q, Students: roster}
		for _, stu := range roster {
			a, ok := indexed[stu.ID][q.ID]
			if !ok {
				continue
			}
			st.First++
			if q.IsCorrect(a.FirstChoice) {
				st.FirstCorrect++
			}
			if a.HasSecondChoice() {
				st.Second++
				if q.IsCorrect(int(a.SecondChoice.Int)) {
					st.SecondCorrect++
				}
			}
		}
		stats = append(stats, st)
	}
	return stats
}
