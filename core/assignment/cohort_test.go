package assignment

import (
	"testing"

	"github.com/trezcool/darasa/core/student"
)

func TestAggregateProgress(t *testing.T) {
	qs := makeQuestions(2)
	roster := []student.Student{
		{ID: "s1", Name: "Amani"},
		{ID: "s2", Name: "Baraka"},
		{ID: "s3", Name: "Chiku"},
	}
	answersByStudent := map[string][]Answer{
		// s1 finished both questions, all correct
		"s1": {fullAnswer("q0", 0, 0), fullAnswer("q1", 0, 0)},
		// s2 is halfway through the first round, first answer wrong
		"s2": {firstAnswer("q0", 1)},
		// s3 has not started
	}

	stats := AggregateProgress(qs, roster, answersByStudent)
	if len(stats) != 2 {
		t.Fatalf("AggregateProgress() len = %d, want 2", len(stats))
	}

	q0 := stats[0]
	if q0.Question.ID != "q0" {
		t.Errorf("stats[0].Question.ID = %s, want q0", q0.Question.ID)
	}
	if q0.First != 2 || q0.FirstCorrect != 1 || q0.Second != 1 || q0.SecondCorrect != 1 {
		t.Errorf("stats[0] counters = %+v", q0)
	}
	if len(q0.Students) != len(roster) {
		t.Errorf("stats[0].Students len = %d, want %d", len(q0.Students), len(roster))
	}

	q1 := stats[1]
	if q1.First != 1 || q1.FirstCorrect != 1 || q1.Second != 1 || q1.SecondCorrect != 1 {
		t.Errorf("stats[1] counters = %+v", q1)
	}
}

func TestAggregateProgress_emptyRoster(t *testing.T) {
	stats := AggregateProgress(makeQuestions(2), nil, nil)
	if len(stats) != 2 {
		t.Fatalf("AggregateProgress() len = %d, want 2", len(stats))
	}
	for _, st := range stats {
		if st.First != 0 || st.FirstCorrect != 0 || st.Second != 0 || st.SecondCorrect != 0 {
			t.Errorf("counters = %+v, want zeros", st)
		}
	}
}

// stats follow the instance order.
func TestAggregateProgress_orderedOutput(t *testing.T) {
	tmpl := Template{Questions: makeQuestions(3)}
	qs := Questions(Instance{Order: []int{2, 0, 1}}, tmpl)

	stats := AggregateProgress(qs, nil, nil)
	want := []string{"q2", "q0", "q1"}
	for i, st := range stats {
		if st.Question.ID != want[i] {
			t.Errorf("stats[%d].Question.ID = %s, want %s", i, st.Question.ID, want[i])
		}
	}
}
